package cart

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for cart persistence.
// Every lookup is scoped by user so another user's line reads as not found.
type Repository interface {
	// AddOrMerge inserts the line, or adds its quantity to the existing (user, product) line
	AddOrMerge(ctx context.Context, item *CartItem) error

	FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*CartItem, error)

	// FindLines returns the user's lines joined with product data, newest first
	FindLines(ctx context.Context, userID uuid.UUID) ([]Line, error)

	UpdateQuantity(ctx context.Context, id, userID uuid.UUID, quantity int) error

	// DeleteForUser removes one line; ErrNotFound when the user owns no such line
	DeleteForUser(ctx context.Context, id, userID uuid.UUID) error

	// ClearForUser removes all lines of the user and returns how many were removed
	ClearForUser(ctx context.Context, userID uuid.UUID) (int64, error)

	CountForUser(ctx context.Context, userID uuid.UUID) (int64, error)
}
