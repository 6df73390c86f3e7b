package cache

import (
	"context"
	"sync"
	"time"

	"github.com/stitchline/backend/internal/domain/identity"
	"github.com/stitchline/backend/internal/domain/shared"
)

const janitorInterval = time.Minute

type otpEntry struct {
	challenge identity.OTPChallenge
	expiresAt time.Time
}

// InMemoryOTPStore keeps OTP challenges in process memory.
// A janitor goroutine drops expired entries every minute.
type InMemoryOTPStore struct {
	mu        sync.RWMutex
	entries   map[string]otpEntry
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryOTPStore creates the store and starts its janitor
func NewInMemoryOTPStore() *InMemoryOTPStore {
	s := &InMemoryOTPStore{
		entries:  make(map[string]otpEntry),
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
	s.wg.Add(1)
	go s.janitor()
	return s
}

// Save stores the challenge under its email for ttl
func (s *InMemoryOTPStore) Save(_ context.Context, challenge identity.OTPChallenge, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[identity.NormalizeEmail(challenge.Email)] = otpEntry{
		challenge: challenge,
		expiresAt: s.now().Add(ttl),
	}
	return nil
}

// Load returns the pending challenge for email
func (s *InMemoryOTPStore) Load(_ context.Context, email string) (*identity.OTPChallenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[identity.NormalizeEmail(email)]
	if !ok || !s.now().Before(e.expiresAt) {
		return nil, shared.ErrNotFound
	}
	c := e.challenge
	return &c, nil
}

// Delete removes the challenge for email
func (s *InMemoryOTPStore) Delete(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, identity.NormalizeEmail(email))
	return nil
}

// Close stops the janitor. Safe to call multiple times.
func (s *InMemoryOTPStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

// Size returns the number of stored entries, expired ones included
func (s *InMemoryOTPStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *InMemoryOTPStore) janitor() {
	defer s.wg.Done()

	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *InMemoryOTPStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for email, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, email)
		}
	}
}
