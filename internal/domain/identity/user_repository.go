package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *User) error

	// Update updates an existing user
	Update(ctx context.Context, user *User) error

	// Delete deletes a user by ID
	Delete(ctx context.Context, id uuid.UUID) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByEmail finds a user by lowercase email
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindAll returns every user, newest first
	FindAll(ctx context.Context) ([]User, error)

	// ExistsByEmail checks whether another user holds the email; excludeID may be uuid.Nil
	ExistsByEmail(ctx context.Context, email string, excludeID uuid.UUID) (bool, error)

	// ExistsByPhone checks whether another user holds the phone; excludeID may be uuid.Nil
	ExistsByPhone(ctx context.Context, phone string, excludeID uuid.UUID) (bool, error)
}
