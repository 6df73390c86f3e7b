package identity

import (
	"time"

	"github.com/stitchline/backend/internal/domain/shared"
)

const (
	// OTPValidity is how long an issued login code stays usable
	OTPValidity = 5 * time.Minute
	// MaxOTPAttempts is the number of wrong codes that burn a challenge
	MaxOTPAttempts = 5
)

var (
	ErrInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	ErrOTPExpired         = shared.NewDomainError("OTP_EXPIRED", "OTP expired or not requested")
	ErrInvalidOTP         = shared.NewDomainError("INVALID_OTP", "Invalid OTP. Please check and try again.")
	ErrOTPLocked          = shared.NewDomainError("OTP_LOCKED", "Too many invalid codes. Please log in again.")
)

// OTPChallenge is a pending second-factor login keyed by email.
// Only the TOTP secret is kept; the code is derived from it.
type OTPChallenge struct {
	Email     string    `json:"email"`
	Secret    string    `json:"secret"`
	ExpiresAt time.Time `json:"expires_at"`
	Attempts  int       `json:"attempts"`
}

// NewOTPChallenge opens a challenge valid for OTPValidity
func NewOTPChallenge(email, secret string, now time.Time) OTPChallenge {
	return OTPChallenge{
		Email:     normalizeEmail(email),
		Secret:    secret,
		ExpiresAt: now.Add(OTPValidity),
	}
}

// Expired reports whether the challenge can no longer be answered
func (c OTPChallenge) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// RecordFailure counts a wrong code and reports whether the challenge is used up
func (c *OTPChallenge) RecordFailure() bool {
	c.Attempts++
	return c.Attempts >= MaxOTPAttempts
}

// Remaining is the time left before the challenge expires
func (c OTPChallenge) Remaining(now time.Time) time.Duration {
	return c.ExpiresAt.Sub(now)
}

// NormalizeEmail lowercases and trims an email address
func NormalizeEmail(email string) string {
	return normalizeEmail(email)
}
