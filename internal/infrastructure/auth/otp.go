package auth

import (
	"fmt"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// Login codes are short TOTP values valid for one 5 minute period either side
const (
	otpDigits = otp.Digits(4)
	otpPeriod = 300
	otpSkew   = 1
)

// TOTPCodec generates and validates login codes with pquerna/otp
type TOTPCodec struct {
	issuer string
}

// NewTOTPCodec creates a codec whose secrets are labelled with issuer
func NewTOTPCodec(issuer string) *TOTPCodec {
	if issuer == "" {
		issuer = "Stitchline"
	}
	return &TOTPCodec{issuer: issuer}
}

func (c *TOTPCodec) opts() totp.ValidateOpts {
	return totp.ValidateOpts{
		Period:    otpPeriod,
		Skew:      otpSkew,
		Digits:    otpDigits,
		Algorithm: otp.AlgorithmSHA1,
	}
}

// Generate creates a fresh secret and the code valid at now
func (c *TOTPCodec) Generate(now time.Time) (string, string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      c.issuer,
		AccountName: "login",
		Period:      otpPeriod,
		Digits:      otpDigits,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", "", fmt.Errorf("generate otp secret: %w", err)
	}
	code, err := totp.GenerateCodeCustom(key.Secret(), now, c.opts())
	if err != nil {
		return "", "", fmt.Errorf("generate otp code: %w", err)
	}
	return key.Secret(), code, nil
}

// Validate checks code against secret at now
func (c *TOTPCodec) Validate(code, secret string, now time.Time) bool {
	ok, err := totp.ValidateCustom(code, secret, now, c.opts())
	return err == nil && ok
}
