package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTOTPCodec(t *testing.T) {
	codec := NewTOTPCodec("Stitchline")
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	secret, code, err := codec.Generate(now)
	require.NoError(t, err)
	assert.NotEmpty(t, secret)
	assert.Len(t, code, 4)

	t.Run("valid within the period", func(t *testing.T) {
		assert.True(t, codec.Validate(code, secret, now.Add(2*time.Minute)))
	})

	t.Run("one period of skew is tolerated", func(t *testing.T) {
		assert.True(t, codec.Validate(code, secret, now.Add(5*time.Minute)))
	})

	t.Run("rejected after the skew window", func(t *testing.T) {
		assert.False(t, codec.Validate(code, secret, now.Add(15*time.Minute)))
	})

	t.Run("rejected for another secret", func(t *testing.T) {
		other, _, err := codec.Generate(now)
		require.NoError(t, err)
		assert.False(t, codec.Validate(code, other, now))
	})

	t.Run("malformed code", func(t *testing.T) {
		assert.False(t, codec.Validate("12", secret, now))
	})
}
