package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/stitchline/backend/internal/domain/identity"
	"github.com/stitchline/backend/internal/domain/shared"
)

// RegisterRequest is the self-service signup form.
// Field rules are enforced by the domain so every violation is reported at once.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Gender   string `json:"gender"`
	Phone    string `json:"phone"`
	DOB      string `json:"dob"`
	Address  string `json:"address"`
}

// LoginRequest carries credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// VerifyOTPRequest answers a pending OTP challenge
type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required"`
	OTP   string `json:"otp" binding:"required"`
}

// LoginResponse is either an issued token or a pending OTP challenge
type LoginResponse struct {
	Token       string      `json:"token,omitempty"`
	Role        shared.Role `json:"role,omitempty"`
	OTPRequired bool        `json:"otp_required,omitempty"`
	Message     string      `json:"message,omitempty"`
}

// UpdateProfileRequest changes the caller's contact details
type UpdateProfileRequest struct {
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// ProfileResponse is the caller's own account
type ProfileResponse struct {
	ID      uuid.UUID       `json:"user_id"`
	Name    string          `json:"name"`
	Email   string          `json:"email"`
	Gender  identity.Gender `json:"gender"`
	Phone   string          `json:"phone"`
	DOB     string          `json:"dob,omitempty"`
	Address string          `json:"address"`
	Role    shared.Role     `json:"role"`
}

// CreateUserRequest creates an account from the back office
type CreateUserRequest struct {
	Name     string      `json:"name" binding:"required"`
	Email    string      `json:"email" binding:"required"`
	Password string      `json:"password" binding:"required"`
	Phone    string      `json:"phone"`
	Role     shared.Role `json:"role"`
}

// UpdateUserRequest edits an account from the back office.
// Role and IsVerified keep their current value when omitted.
type UpdateUserRequest struct {
	Name       string      `json:"name" binding:"required"`
	Email      string      `json:"email" binding:"required"`
	Phone      string      `json:"phone"`
	Role       shared.Role `json:"role"`
	IsVerified *bool       `json:"is_verified"`
}

// UpdateRoleRequest changes the role of an account
type UpdateRoleRequest struct {
	Role shared.Role `json:"role" binding:"required"`
}

// ResetPasswordRequest sets a new password for an account
type ResetPasswordRequest struct {
	NewPassword string `json:"newPassword" binding:"required"`
}

// UserResponse is the back office view of an account
type UserResponse struct {
	ID         uuid.UUID   `json:"user_id"`
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	Phone      string      `json:"phone"`
	Role       shared.Role `json:"role"`
	IsVerified bool        `json:"is_verified"`
	CreatedAt  time.Time   `json:"created_at"`
}

// ToUserResponse converts a domain user to its back office representation
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Phone:      u.Phone,
		Role:       u.Role,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
	}
}

// ToProfileResponse converts a domain user to the self view
func ToProfileResponse(u *identity.User) ProfileResponse {
	resp := ProfileResponse{
		ID:      u.ID,
		Name:    u.Name,
		Email:   u.Email,
		Gender:  u.Gender,
		Phone:   u.Phone,
		Address: u.Address,
		Role:    u.Role,
	}
	if u.DateOfBirth != nil {
		resp.DOB = u.DateOfBirth.Format(identity.DateLayout)
	}
	return resp
}
