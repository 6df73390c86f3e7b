package identity

import (
	"context"
	"errors"
	"time"

	"github.com/stitchline/backend/internal/domain/identity"
	"github.com/stitchline/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// TokenIssuer signs access tokens for authenticated users
type TokenIssuer interface {
	IssueToken(user *identity.User) (string, error)
}

// OTPCodec generates and checks time-based one-time codes
type OTPCodec interface {
	// Generate creates a fresh secret and the current code for it
	Generate(now time.Time) (secret, code string, err error)

	// Validate checks a code against a secret, tolerating one period of skew
	Validate(code, secret string, now time.Time) bool
}

// OTPStore keeps pending OTP challenges keyed by email
type OTPStore interface {
	Save(ctx context.Context, challenge identity.OTPChallenge, ttl time.Duration) error

	// Load returns shared.ErrNotFound when no challenge is pending
	Load(ctx context.Context, email string) (*identity.OTPChallenge, error)

	Delete(ctx context.Context, email string) error
}

// OTPSender delivers a code to the account holder
type OTPSender interface {
	SendOTP(ctx context.Context, email, code string) error
}

// AuthServiceConfig contains configuration for the auth service
type AuthServiceConfig struct {
	OTPRequired    bool
	StorageTimeout time.Duration
}

// AuthService handles registration and login
type AuthService struct {
	userRepo identity.UserRepository
	tokens   TokenIssuer
	otp      OTPCodec
	otpStore OTPStore
	sender   OTPSender
	config   AuthServiceConfig
	now      func() time.Time
	logger   *zap.Logger
}

// NewAuthService creates a new authentication service.
// otp, otpStore and sender are only used when config.OTPRequired is set.
func NewAuthService(
	userRepo identity.UserRepository,
	tokens TokenIssuer,
	otp OTPCodec,
	otpStore OTPStore,
	sender OTPSender,
	config AuthServiceConfig,
	logger *zap.Logger,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		otp:      otp,
		otpStore: otpStore,
		sender:   sender,
		config:   config,
		now:      time.Now,
		logger:   logger,
	}
}

// Register creates a verified customer account
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*ProfileResponse, error) {
	user, err := identity.Register(identity.Registration{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Gender:   req.Gender,
		Phone:    req.Phone,
		DOB:      req.DOB,
		Address:  req.Address,
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := shared.WithStorageDeadline(ctx, s.config.StorageTimeout)
	defer cancel()

	taken, err := s.userRepo.ExistsByEmail(ctx, user.Email, user.ID)
	if err != nil {
		return nil, shared.TranslateStorageError(err)
	}
	if taken {
		return nil, shared.NewDomainError(shared.ErrAlreadyExists.Code, "User with this email already exists")
	}
	taken, err = s.userRepo.ExistsByPhone(ctx, user.Phone, user.ID)
	if err != nil {
		return nil, shared.TranslateStorageError(err)
	}
	if taken {
		return nil, shared.NewDomainError(shared.ErrAlreadyExists.Code, "User with this phone number already exists")
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, shared.TranslateStorageError(err)
	}

	s.logger.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email))
	resp := ToProfileResponse(user)
	return &resp, nil
}

// Login checks credentials. It issues a token directly, or opens an OTP
// challenge when second-factor login is enabled.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	email := identity.NormalizeEmail(req.Email)

	ctx, cancel := shared.WithStorageDeadline(ctx, s.config.StorageTimeout)
	defer cancel()

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Login for unknown email", zap.String("email", email))
			return nil, identity.ErrInvalidCredentials
		}
		return nil, shared.TranslateStorageError(err)
	}
	if !user.VerifyPassword(req.Password) {
		s.logger.Warn("Invalid password attempt", zap.String("user_id", user.ID.String()))
		return nil, identity.ErrInvalidCredentials
	}

	if !s.config.OTPRequired {
		return s.issue(user)
	}

	now := s.now()
	secret, code, err := s.otp.Generate(now)
	if err != nil {
		return nil, err
	}
	challenge := identity.NewOTPChallenge(email, secret, now)
	if err := s.otpStore.Save(ctx, challenge, identity.OTPValidity); err != nil {
		return nil, shared.TranslateStorageError(err)
	}
	if err := s.sender.SendOTP(ctx, email, code); err != nil {
		s.logger.Error("Failed to deliver OTP", zap.String("email", email), zap.Error(err))
		return nil, err
	}

	s.logger.Info("OTP issued", zap.String("user_id", user.ID.String()))
	return &LoginResponse{OTPRequired: true, Message: "OTP sent to your email"}, nil
}

// VerifyOTP answers a pending challenge and issues a token
func (s *AuthService) VerifyOTP(ctx context.Context, req VerifyOTPRequest) (*LoginResponse, error) {
	email := identity.NormalizeEmail(req.Email)

	ctx, cancel := shared.WithStorageDeadline(ctx, s.config.StorageTimeout)
	defer cancel()

	challenge, err := s.otpStore.Load(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, identity.ErrOTPExpired
		}
		return nil, shared.TranslateStorageError(err)
	}

	now := s.now()
	if challenge.Expired(now) {
		_ = s.otpStore.Delete(ctx, email)
		return nil, shared.NewDomainError(identity.ErrOTPExpired.Code, "OTP has expired")
	}
	if !s.otp.Validate(req.OTP, challenge.Secret, now) {
		return nil, s.rejectOTP(ctx, challenge, now)
	}

	if err := s.otpStore.Delete(ctx, email); err != nil {
		return nil, shared.TranslateStorageError(err)
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, shared.TranslateStorageError(err)
	}
	if !user.IsVerified {
		user.MarkVerified()
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, shared.TranslateStorageError(err)
		}
	}
	return s.issue(user)
}

// rejectOTP counts a wrong code against the challenge and drops it once
// MaxOTPAttempts is reached
func (s *AuthService) rejectOTP(ctx context.Context, challenge *identity.OTPChallenge, now time.Time) error {
	if challenge.RecordFailure() {
		if err := s.otpStore.Delete(ctx, challenge.Email); err != nil {
			return shared.TranslateStorageError(err)
		}
		s.logger.Warn("OTP challenge locked", zap.String("email", challenge.Email))
		return identity.ErrOTPLocked
	}
	if err := s.otpStore.Save(ctx, *challenge, challenge.Remaining(now)); err != nil {
		return shared.TranslateStorageError(err)
	}
	return identity.ErrInvalidOTP
}

func (s *AuthService) issue(user *identity.User) (*LoginResponse, error) {
	token, err := s.tokens.IssueToken(user)
	if err != nil {
		s.logger.Error("Failed to generate token", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication token")
	}
	s.logger.Info("User logged in", zap.String("user_id", user.ID.String()))
	return &LoginResponse{Token: token, Role: user.Role}, nil
}
