package cache

import (
	"context"
	"io"
	"time"

	"github.com/stitchline/backend/internal/domain/identity"
	"github.com/stitchline/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// OTPStore is implemented by both stores
type OTPStore interface {
	Save(ctx context.Context, challenge identity.OTPChallenge, ttl time.Duration) error
	Load(ctx context.Context, email string) (*identity.OTPChallenge, error)
	Delete(ctx context.Context, email string) error
}

// NewOTPStore returns a Redis store when Redis is enabled and reachable,
// otherwise the in-memory store. The returned closer releases the store.
func NewOTPStore(cfg config.RedisConfig, logger *zap.Logger) (OTPStore, io.Closer) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if cfg.Enabled {
		client, err := NewRedisClient(cfg)
		if err == nil {
			logger.Info("Using Redis OTP store", zap.String("addr", cfg.Addr()))
			return NewRedisOTPStore(client), client
		}
		logger.Warn("Redis unavailable, falling back to in-memory OTP store. "+
			"Codes will not be shared between instances.",
			zap.Error(err))
	}

	store := NewInMemoryOTPStore()
	return store, store
}

var (
	_ OTPStore = (*RedisOTPStore)(nil)
	_ OTPStore = (*InMemoryOTPStore)(nil)
)
