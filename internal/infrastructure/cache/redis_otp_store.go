package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stitchline/backend/internal/domain/identity"
	"github.com/stitchline/backend/internal/domain/shared"
	"github.com/stitchline/backend/internal/infrastructure/config"
)

const otpKeyPrefix = "otp:"

// RedisOTPStore keeps OTP challenges in Redis with SET EX, so they are
// shared by every instance and expire on their own
type RedisOTPStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisClient connects to Redis and pings it
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewRedisOTPStore creates a store on an existing client
func NewRedisOTPStore(client *redis.Client) *RedisOTPStore {
	return &RedisOTPStore{client: client, keyPrefix: otpKeyPrefix}
}

// Save stores the challenge under its email for ttl
func (s *RedisOTPStore) Save(ctx context.Context, challenge identity.OTPChallenge, ttl time.Duration) error {
	data, err := json.Marshal(challenge)
	if err != nil {
		return fmt.Errorf("failed to encode otp challenge: %w", err)
	}
	if err := s.client.Set(ctx, s.key(challenge.Email), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save otp challenge: %w", err)
	}
	return nil
}

// Load returns the pending challenge for email
func (s *RedisOTPStore) Load(ctx context.Context, email string) (*identity.OTPChallenge, error) {
	data, err := s.client.Get(ctx, s.key(email)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load otp challenge: %w", err)
	}

	var challenge identity.OTPChallenge
	if err := json.Unmarshal(data, &challenge); err != nil {
		return nil, fmt.Errorf("failed to decode otp challenge: %w", err)
	}
	return &challenge, nil
}

// Delete removes the challenge for email
func (s *RedisOTPStore) Delete(ctx context.Context, email string) error {
	if err := s.client.Del(ctx, s.key(email)).Err(); err != nil {
		return fmt.Errorf("failed to delete otp challenge: %w", err)
	}
	return nil
}

func (s *RedisOTPStore) key(email string) string {
	return s.keyPrefix + identity.NormalizeEmail(email)
}
