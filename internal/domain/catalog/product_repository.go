package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/stitchline/backend/internal/domain/shared"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindAll returns products newest first. Supported filter keys: "category".
	// Filter.Search matches the product name.
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, int64, error)

	Save(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id uuid.UUID) error

	// CountCartReferences counts cart lines that still point at the product
	CountCartReferences(ctx context.Context, id uuid.UUID) (int64, error)
}

// StockRepository mutates stock levels inside an order transaction
type StockRepository interface {
	// DecrementStock removes qty units if at least qty are available.
	// It returns ErrInsufficientStock when the guard fails.
	DecrementStock(ctx context.Context, productID uuid.UUID, qty int) error

	// IncrementStock puts qty units back
	IncrementStock(ctx context.Context, productID uuid.UUID, qty int) error
}
