package order

import (
	"context"

	"github.com/stitchline/backend/internal/domain/cart"
	"github.com/stitchline/backend/internal/domain/catalog"
	"github.com/stitchline/backend/internal/domain/order"
	"github.com/stitchline/backend/internal/domain/shared"
)

// TransactionScope runs order work inside one database transaction.
// If fn returns an error every write made through repos is rolled back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides the repositories touched by checkout and
// status updates. All of them share the same underlying transaction.
type TransactionalRepositories interface {
	OrderRepo() order.Repository
	HistoryRepo() order.HistoryRepository
	CartRepo() cart.Repository
	StockRepo() catalog.StockRepository
	// Events writes domain events to the outbox in the same transaction
	Events() shared.EventRecorder
}

// NoOpTransactionScope hands out plain repositories without a transaction.
// Used by tests and tools that do not need atomicity.
type NoOpTransactionScope struct {
	orderRepo   order.Repository
	historyRepo order.HistoryRepository
	cartRepo    cart.Repository
	stockRepo   catalog.StockRepository
	events      shared.EventRecorder
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	orderRepo order.Repository,
	historyRepo order.HistoryRepository,
	cartRepo cart.Repository,
	stockRepo catalog.StockRepository,
	events shared.EventRecorder,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		orderRepo:   orderRepo,
		historyRepo: historyRepo,
		cartRepo:    cartRepo,
		stockRepo:   stockRepo,
		events:      events,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) OrderRepo() order.Repository          { return s.orderRepo }
func (s *NoOpTransactionScope) HistoryRepo() order.HistoryRepository { return s.historyRepo }
func (s *NoOpTransactionScope) CartRepo() cart.Repository            { return s.cartRepo }
func (s *NoOpTransactionScope) StockRepo() catalog.StockRepository   { return s.stockRepo }
func (s *NoOpTransactionScope) Events() shared.EventRecorder         { return s.events }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
