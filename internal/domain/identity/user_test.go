package identity

import (
	"errors"
	"testing"

	"github.com/stitchline/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRegistration() Registration {
	return Registration{
		Name:     "Ada Stitch",
		Email:    " Ada@Example.com ",
		Password: "secret1",
		Gender:   "Female",
		Phone:    "0123456789",
		DOB:      "1990-05-17",
		Address:  "42 Bobbin Road, Threadville",
	}
}

func TestRegister(t *testing.T) {
	t.Run("creates verified customer", func(t *testing.T) {
		u, err := Register(validRegistration())
		require.NoError(t, err)

		assert.Equal(t, "ada@example.com", u.Email)
		assert.Equal(t, shared.RoleUser, u.Role)
		assert.True(t, u.IsVerified)
		assert.Equal(t, GenderFemale, u.Gender)
		require.NotNil(t, u.DateOfBirth)
		assert.Equal(t, 1990, u.DateOfBirth.Year())
		assert.NotEqual(t, "secret1", u.PasswordHash)
		assert.True(t, u.VerifyPassword("secret1"))
		assert.False(t, u.VerifyPassword("wrong"))
	})

	t.Run("reports every violation", func(t *testing.T) {
		_, err := Register(Registration{Email: "nope", Password: "123", Gender: "x", Phone: "12", DOB: "17/05/1990", Address: "short"})
		require.ErrorIs(t, err, shared.ErrInvalidInput)

		var de *shared.DomainError
		require.True(t, errors.As(err, &de))
		violations, ok := de.Details["errors"].([]string)
		require.True(t, ok)
		assert.Len(t, violations, 7)
	})
}

func TestNewUser(t *testing.T) {
	t.Run("defaults role to user", func(t *testing.T) {
		u, err := NewUser("Bob", "bob@example.com", "secret1", "", "")
		require.NoError(t, err)
		assert.Equal(t, shared.RoleUser, u.Role)
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		_, err := NewUser("Bob", "bob@example.com", "secret1", "", shared.Role("root"))
		assert.Error(t, err)
	})

	t.Run("rejects short password", func(t *testing.T) {
		_, err := NewUser("Bob", "bob@example.com", "12345", "", shared.RoleAdmin)
		assert.Error(t, err)
	})
}

func TestUser_UpdateProfile(t *testing.T) {
	u, err := Register(validRegistration())
	require.NoError(t, err)

	t.Run("keeps values when empty", func(t *testing.T) {
		require.NoError(t, u.UpdateProfile("", ""))
		assert.Equal(t, "0123456789", u.Phone)
	})

	t.Run("updates phone and address", func(t *testing.T) {
		require.NoError(t, u.UpdateProfile("98765432101", "7 Hem Street, Seamtown"))
		assert.Equal(t, "98765432101", u.Phone)
		assert.Equal(t, "7 Hem Street, Seamtown", u.Address)
	})

	t.Run("rejects bad phone", func(t *testing.T) {
		assert.Error(t, u.UpdateProfile("abc", ""))
	})

	t.Run("rejects short address", func(t *testing.T) {
		assert.Error(t, u.UpdateProfile("", "tiny"))
	})
}
