package identity

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stitchline/backend/internal/domain/identity"
	"github.com/stitchline/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *identity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *identity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context) ([]identity.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]identity.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string, excludeID uuid.UUID) (bool, error) {
	args := m.Called(ctx, email, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) ExistsByPhone(ctx context.Context, phone string, excludeID uuid.UUID) (bool, error) {
	args := m.Called(ctx, phone, excludeID)
	return args.Bool(0), args.Error(1)
}

// MockCounter implements CartCounter and OrderCounter
type MockCounter struct {
	mock.Mock
}

func (m *MockCounter) CountForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCounter) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

// stubTokens issues predictable tokens
type stubTokens struct{}

func (stubTokens) IssueToken(u *identity.User) (string, error) {
	return "token-" + u.ID.String(), nil
}

// stubOTP issues the secret as its own code
type stubOTP struct{ secret string }

func (s stubOTP) Generate(time.Time) (string, string, error) {
	return s.secret, "1234", nil
}

func (s stubOTP) Validate(code, secret string, _ time.Time) bool {
	return code == "1234" && secret == s.secret
}

// memOTPStore keeps challenges in a map
type memOTPStore struct {
	mu         sync.Mutex
	challenges map[string]identity.OTPChallenge
}

func newMemOTPStore() *memOTPStore {
	return &memOTPStore{challenges: make(map[string]identity.OTPChallenge)}
}

func (s *memOTPStore) Save(_ context.Context, c identity.OTPChallenge, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.challenges[c.Email] = c
	return nil
}

func (s *memOTPStore) Load(_ context.Context, email string) (*identity.OTPChallenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.challenges[strings.ToLower(email)]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &c, nil
}

func (s *memOTPStore) Delete(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.challenges, email)
	return nil
}

// recordingSender remembers delivered codes
type recordingSender struct {
	sent map[string]string
}

func (r *recordingSender) SendOTP(_ context.Context, email, code string) error {
	if r.sent == nil {
		r.sent = make(map[string]string)
	}
	r.sent[email] = code
	return nil
}

var (
	_ identity.UserRepository = (*MockUserRepository)(nil)
	_ CartCounter             = (*MockCounter)(nil)
	_ OrderCounter            = (*MockCounter)(nil)
	_ TokenIssuer             = stubTokens{}
	_ OTPCodec                = stubOTP{}
	_ OTPStore                = (*memOTPStore)(nil)
	_ OTPSender               = (*recordingSender)(nil)
)
