package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/stitchline/backend/internal/domain/identity"
	"github.com/stitchline/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CartCounter counts the cart lines of a user
type CartCounter interface {
	CountForUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

// OrderCounter counts the orders of a user
type OrderCounter interface {
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

// UserService serves the caller's profile and the back office user management
type UserService struct {
	userRepo identity.UserRepository
	carts    CartCounter
	orders   OrderCounter
	timeout  time.Duration
	logger   *zap.Logger
}

// NewUserService creates a new UserService
func NewUserService(
	userRepo identity.UserRepository,
	carts CartCounter,
	orders OrderCounter,
	storageTimeout time.Duration,
	logger *zap.Logger,
) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		userRepo: userRepo,
		carts:    carts,
		orders:   orders,
		timeout:  storageTimeout,
		logger:   logger,
	}
}

// GetProfile returns the caller's own account
func (s *UserService) GetProfile(ctx context.Context, p shared.Principal) (*ProfileResponse, error) {
	if p.IsAnonymous() {
		return nil, shared.ErrUnauthorized
	}
	ctx, cancel := shared.WithStorageDeadline(ctx, s.timeout)
	defer cancel()

	user, err := s.userRepo.FindByID(ctx, p.UserID)
	if err != nil {
		return nil, userError(err)
	}
	resp := ToProfileResponse(user)
	return &resp, nil
}

// UpdateProfile changes the caller's phone and address
func (s *UserService) UpdateProfile(ctx context.Context, p shared.Principal, req UpdateProfileRequest) (*ProfileResponse, error) {
	if p.IsAnonymous() {
		return nil, shared.ErrUnauthorized
	}
	ctx, cancel := shared.WithStorageDeadline(ctx, s.timeout)
	defer cancel()

	user, err := s.userRepo.FindByID(ctx, p.UserID)
	if err != nil {
		return nil, userError(err)
	}
	if err := user.UpdateProfile(req.Phone, req.Address); err != nil {
		return nil, err
	}
	if err := s.ensurePhoneFree(ctx, user.Phone, user.ID); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, shared.TranslateStorageError(err)
	}

	resp := ToProfileResponse(user)
	return &resp, nil
}

// List returns every account, newest first
func (s *UserService) List(ctx context.Context, p shared.Principal) ([]UserResponse, error) {
	if err := p.RequireAdmin(); err != nil {
		return nil, err
	}
	ctx, cancel := shared.WithStorageDeadline(ctx, s.timeout)
	defer cancel()

	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, shared.TranslateStorageError(err)
	}
	out := make([]UserResponse, len(users))
	for i := range users {
		out[i] = ToUserResponse(&users[i])
	}
	return out, nil
}

// Get returns one account
func (s *UserService) Get(ctx context.Context, p shared.Principal, id uuid.UUID) (*UserResponse, error) {
	if err := p.RequireAdmin(); err != nil {
		return nil, err
	}
	ctx, cancel := shared.WithStorageDeadline(ctx, s.timeout)
	defer cancel()

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, userError(err)
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// Create adds an account from the back office
func (s *UserService) Create(ctx context.Context, p shared.Principal, req CreateUserRequest) (*UserResponse, error) {
	if err := p.RequireAdmin(); err != nil {
		return nil, err
	}
	user, err := identity.NewUser(req.Name, req.Email, req.Password, req.Phone, req.Role)
	if err != nil {
		return nil, err
	}

	ctx, cancel := shared.WithStorageDeadline(ctx, s.timeout)
	defer cancel()

	if err := s.ensureEmailFree(ctx, user.Email, uuid.Nil); err != nil {
		return nil, err
	}
	if err := s.ensurePhoneFree(ctx, user.Phone, uuid.Nil); err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, shared.TranslateStorageError(err)
	}

	s.logger.Info("User created by admin",
		zap.String("user_id", user.ID.String()),
		zap.String("admin_id", p.UserID.String()),
		zap.String("role", user.Role.String()))
	resp := ToUserResponse(user)
	return &resp, nil
}

// Update edits name, email, phone and optionally role and verification
func (s *UserService) Update(ctx context.Context, p shared.Principal, id uuid.UUID, req UpdateUserRequest) (*UserResponse, error) {
	if err := p.RequireAdmin(); err != nil {
		return nil, err
	}
	ctx, cancel := shared.WithStorageDeadline(ctx, s.timeout)
	defer cancel()

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, userError(err)
	}
	if err := user.UpdateDetails(req.Name, req.Email, req.Phone); err != nil {
		return nil, err
	}
	if req.Role != "" {
		if err := user.ChangeRole(req.Role); err != nil {
			return nil, err
		}
	}
	if req.IsVerified != nil {
		user.IsVerified = *req.IsVerified
	}

	if err := s.ensureEmailFree(ctx, user.Email, user.ID); err != nil {
		return nil, err
	}
	if err := s.ensurePhoneFree(ctx, user.Phone, user.ID); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, shared.TranslateStorageError(err)
	}

	resp := ToUserResponse(user)
	return &resp, nil
}

// UpdateRole changes the role of an account
func (s *UserService) UpdateRole(ctx context.Context, p shared.Principal, id uuid.UUID, req UpdateRoleRequest) (*UserResponse, error) {
	if err := p.RequireAdmin(); err != nil {
		return nil, err
	}
	ctx, cancel := shared.WithStorageDeadline(ctx, s.timeout)
	defer cancel()

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, userError(err)
	}
	if err := user.ChangeRole(req.Role); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, shared.TranslateStorageError(err)
	}

	s.logger.Info("User role changed",
		zap.String("user_id", user.ID.String()),
		zap.String("role", user.Role.String()))
	resp := ToUserResponse(user)
	return &resp, nil
}

// Delete removes an account without carts or orders. Admins cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, p shared.Principal, id uuid.UUID) error {
	if err := p.RequireAdmin(); err != nil {
		return err
	}
	ctx, cancel := shared.WithStorageDeadline(ctx, s.timeout)
	defer cancel()

	if _, err := s.userRepo.FindByID(ctx, id); err != nil {
		return userError(err)
	}
	if id == p.UserID {
		return shared.NewDomainError(shared.ErrInvalidInput.Code, "Cannot delete your own account")
	}

	carts, err := s.carts.CountForUser(ctx, id)
	if err != nil {
		return shared.TranslateStorageError(err)
	}
	if carts > 0 {
		return shared.NewDomainError(shared.ErrInvalidInput.Code, "Cannot delete user. User has active cart items.")
	}
	orders, err := s.orders.CountByUser(ctx, id)
	if err != nil {
		return shared.TranslateStorageError(err)
	}
	if orders > 0 {
		return shared.NewDomainError(shared.ErrInvalidInput.Code, "Cannot delete user. User has order history.")
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return userError(err)
	}
	s.logger.Info("User deleted",
		zap.String("user_id", id.String()),
		zap.String("admin_id", p.UserID.String()))
	return nil
}

// ResetPassword sets a new password for an account
func (s *UserService) ResetPassword(ctx context.Context, p shared.Principal, id uuid.UUID, req ResetPasswordRequest) error {
	if err := p.RequireAdmin(); err != nil {
		return err
	}
	ctx, cancel := shared.WithStorageDeadline(ctx, s.timeout)
	defer cancel()

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return userError(err)
	}
	if err := user.SetPassword(req.NewPassword); err != nil {
		return err
	}
	return shared.TranslateStorageError(s.userRepo.Update(ctx, user))
}

func (s *UserService) ensureEmailFree(ctx context.Context, email string, excludeID uuid.UUID) error {
	taken, err := s.userRepo.ExistsByEmail(ctx, email, excludeID)
	if err != nil {
		return shared.TranslateStorageError(err)
	}
	if taken {
		return shared.NewDomainError(shared.ErrAlreadyExists.Code, "Email already exists for another user")
	}
	return nil
}

func (s *UserService) ensurePhoneFree(ctx context.Context, phone string, excludeID uuid.UUID) error {
	if phone == "" {
		return nil
	}
	taken, err := s.userRepo.ExistsByPhone(ctx, phone, excludeID)
	if err != nil {
		return shared.TranslateStorageError(err)
	}
	if taken {
		return shared.NewDomainError(shared.ErrAlreadyExists.Code, "Phone number already exists for another user")
	}
	return nil
}

func userError(err error) error {
	err = shared.TranslateStorageError(err)
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NewDomainError(shared.ErrNotFound.Code, "User not found")
	}
	return err
}
