package order

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CustomerOrder is an order joined with the customer's contact fields
type CustomerOrder struct {
	Order
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
}

// Repository defines the interface for order persistence
type Repository interface {
	// Create inserts the order row and its item snapshots
	Create(ctx context.Context, o *Order) error

	// FindByID loads the order with its items
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindAllWithCustomer returns every order newest first
	FindAllWithCustomer(ctx context.Context) ([]CustomerOrder, error)

	// FindByUser returns the user's orders newest first, items included
	FindByUser(ctx context.Context, userID uuid.UUID) ([]Order, error)

	UpdateStatus(ctx context.Context, id uuid.UUID, status Status, at time.Time) error

	TrackingNumberExists(ctx context.Context, trackingNumber string) (bool, error)

	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

// HistoryRepository stores the append-only status timeline
type HistoryRepository interface {
	Append(ctx context.Context, entries ...StatusEntry) error

	// FindByOrder returns entries oldest first
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]StatusEntry, error)
}
