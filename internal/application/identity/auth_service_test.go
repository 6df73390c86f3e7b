package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stitchline/backend/internal/domain/identity"
	"github.com/stitchline/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func validRegistration() RegisterRequest {
	return RegisterRequest{
		Name:     "Ayesha Perera",
		Email:    "Ayesha@Example.com",
		Password: "secret1",
		Gender:   "Female",
		Phone:    "0771234567",
		DOB:      "1994-03-18",
		Address:  "12 Temple Road, Kandy",
	}
}

func existingUser(t *testing.T, role shared.Role) *identity.User {
	t.Helper()
	u, err := identity.NewUser("Nimal Silva", "nimal@example.com", "secret1", "0719876543", role)
	require.NoError(t, err)
	return u
}

func TestAuthService_Register(t *testing.T) {
	t.Run("creates a verified customer", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := NewAuthService(repo, stubTokens{}, nil, nil, nil, AuthServiceConfig{}, nil)

		repo.On("ExistsByEmail", mock.Anything, "ayesha@example.com", mock.Anything).Return(false, nil)
		repo.On("ExistsByPhone", mock.Anything, "0771234567", mock.Anything).Return(false, nil)
		repo.On("Create", mock.Anything, mock.MatchedBy(func(u *identity.User) bool {
			return u.Role == shared.RoleUser && u.IsVerified && u.PasswordHash != "secret1"
		})).Return(nil)

		resp, err := svc.Register(context.Background(), validRegistration())
		require.NoError(t, err)
		assert.Equal(t, "ayesha@example.com", resp.Email)
		assert.Equal(t, "1994-03-18", resp.DOB)
		repo.AssertExpectations(t)
	})

	t.Run("reports every violation", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := NewAuthService(repo, stubTokens{}, nil, nil, nil, AuthServiceConfig{}, nil)

		_, err := svc.Register(context.Background(), RegisterRequest{Email: "bad", Gender: "x", DOB: "18/03/1994"})
		var de *shared.DomainError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, shared.ErrInvalidInput.Code, de.Code)
		assert.Len(t, de.Details["errors"], 7)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := NewAuthService(repo, stubTokens{}, nil, nil, nil, AuthServiceConfig{}, nil)
		repo.On("ExistsByEmail", mock.Anything, "ayesha@example.com", mock.Anything).Return(true, nil)

		_, err := svc.Register(context.Background(), validRegistration())
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})
}

func TestAuthService_Login(t *testing.T) {
	t.Run("issues token without OTP", func(t *testing.T) {
		repo := new(MockUserRepository)
		user := existingUser(t, shared.RoleAdmin)
		svc := NewAuthService(repo, stubTokens{}, nil, nil, nil, AuthServiceConfig{}, nil)
		repo.On("FindByEmail", mock.Anything, "nimal@example.com").Return(user, nil)

		resp, err := svc.Login(context.Background(), LoginRequest{Email: " NIMAL@example.com ", Password: "secret1"})
		require.NoError(t, err)
		assert.Equal(t, "token-"+user.ID.String(), resp.Token)
		assert.Equal(t, shared.RoleAdmin, resp.Role)
		assert.False(t, resp.OTPRequired)
	})

	t.Run("wrong password and unknown email look the same", func(t *testing.T) {
		repo := new(MockUserRepository)
		user := existingUser(t, shared.RoleUser)
		svc := NewAuthService(repo, stubTokens{}, nil, nil, nil, AuthServiceConfig{}, nil)
		repo.On("FindByEmail", mock.Anything, "nimal@example.com").Return(user, nil)
		repo.On("FindByEmail", mock.Anything, "ghost@example.com").Return(nil, shared.ErrNotFound)

		_, err := svc.Login(context.Background(), LoginRequest{Email: "nimal@example.com", Password: "nope"})
		assert.ErrorIs(t, err, identity.ErrInvalidCredentials)
		_, err = svc.Login(context.Background(), LoginRequest{Email: "ghost@example.com", Password: "nope"})
		assert.ErrorIs(t, err, identity.ErrInvalidCredentials)
	})
}

func TestAuthService_OTPFlow(t *testing.T) {
	repo := new(MockUserRepository)
	user := existingUser(t, shared.RoleUser)
	user.IsVerified = false
	store := newMemOTPStore()
	sender := &recordingSender{}
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)

	svc := NewAuthService(repo, stubTokens{}, stubOTP{secret: "JBSWY3DPEHPK3PXP"}, store, sender,
		AuthServiceConfig{OTPRequired: true}, nil)
	svc.now = func() time.Time { return now }

	repo.On("FindByEmail", mock.Anything, "nimal@example.com").Return(user, nil)
	repo.On("Update", mock.Anything, user).Return(nil)

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "nimal@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.True(t, resp.OTPRequired)
	assert.Empty(t, resp.Token)
	assert.Equal(t, "1234", sender.sent["nimal@example.com"])

	_, err = svc.VerifyOTP(context.Background(), VerifyOTPRequest{Email: "nimal@example.com", OTP: "0000"})
	assert.ErrorIs(t, err, identity.ErrInvalidOTP)

	resp, err = svc.VerifyOTP(context.Background(), VerifyOTPRequest{Email: "nimal@example.com", OTP: "1234"})
	require.NoError(t, err)
	assert.Equal(t, "token-"+user.ID.String(), resp.Token)
	assert.True(t, user.IsVerified)

	_, err = svc.VerifyOTP(context.Background(), VerifyOTPRequest{Email: "nimal@example.com", OTP: "1234"})
	assert.ErrorIs(t, err, identity.ErrOTPExpired)
}

func TestAuthService_VerifyOTP_Expired(t *testing.T) {
	store := newMemOTPStore()
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(context.Background(),
		identity.NewOTPChallenge("late@example.com", "S", now.Add(-identity.OTPValidity)), time.Minute))

	svc := NewAuthService(new(MockUserRepository), stubTokens{}, stubOTP{secret: "S"}, store, &recordingSender{},
		AuthServiceConfig{OTPRequired: true}, nil)
	svc.now = func() time.Time { return now }

	_, err := svc.VerifyOTP(context.Background(), VerifyOTPRequest{Email: "late@example.com", OTP: "1234"})
	require.ErrorIs(t, err, identity.ErrOTPExpired)

	_, err = store.Load(context.Background(), "late@example.com")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestAuthService_VerifyOTP_LocksAfterRepeatedFailures(t *testing.T) {
	store := newMemOTPStore()
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(context.Background(),
		identity.NewOTPChallenge("guess@example.com", "S", now), identity.OTPValidity))

	svc := NewAuthService(new(MockUserRepository), stubTokens{}, stubOTP{secret: "S"}, store, &recordingSender{},
		AuthServiceConfig{OTPRequired: true}, nil)
	svc.now = func() time.Time { return now }

	for i := 1; i < identity.MaxOTPAttempts; i++ {
		_, err := svc.VerifyOTP(context.Background(), VerifyOTPRequest{Email: "guess@example.com", OTP: "0000"})
		require.ErrorIs(t, err, identity.ErrInvalidOTP)

		pending, err := store.Load(context.Background(), "guess@example.com")
		require.NoError(t, err)
		assert.Equal(t, i, pending.Attempts)
	}

	_, err := svc.VerifyOTP(context.Background(), VerifyOTPRequest{Email: "guess@example.com", OTP: "0000"})
	require.ErrorIs(t, err, identity.ErrOTPLocked)

	// even the right code is refused once the challenge is burned
	_, err = svc.VerifyOTP(context.Background(), VerifyOTPRequest{Email: "guess@example.com", OTP: "1234"})
	assert.ErrorIs(t, err, identity.ErrOTPExpired)
}

func TestAuthService_VerifyOTP_UnknownEmail(t *testing.T) {
	svc := NewAuthService(new(MockUserRepository), stubTokens{}, stubOTP{}, newMemOTPStore(), &recordingSender{},
		AuthServiceConfig{OTPRequired: true}, nil)
	_, err := svc.VerifyOTP(context.Background(), VerifyOTPRequest{Email: uuid.NewString() + "@x.io", OTP: "1234"})
	assert.ErrorIs(t, err, identity.ErrOTPExpired)
}
