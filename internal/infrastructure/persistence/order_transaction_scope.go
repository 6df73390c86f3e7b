package persistence

import (
	"context"

	apporder "github.com/stitchline/backend/internal/application/order"
	"github.com/stitchline/backend/internal/domain/cart"
	"github.com/stitchline/backend/internal/domain/catalog"
	"github.com/stitchline/backend/internal/domain/order"
	"github.com/stitchline/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// RecorderFactory binds an event recorder to a transaction
type RecorderFactory func(tx *gorm.DB) shared.EventRecorder

// GormTransactionScope runs order work inside one GORM transaction.
// If fn returns an error the transaction is rolled back.
type GormTransactionScope struct {
	db     *gorm.DB
	events RecorderFactory
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB, events RecorderFactory) *GormTransactionScope {
	return &GormTransactionScope{db: db, events: events}
}

// Execute runs fn with repositories bound to a fresh transaction
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos apporder.TransactionalRepositories) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx, events: s.events})
	})
	return translateError(err)
}

type gormTransactionalRepositories struct {
	tx     *gorm.DB
	events RecorderFactory
}

func (r *gormTransactionalRepositories) OrderRepo() order.Repository {
	return NewGormOrderRepository(r.tx)
}

func (r *gormTransactionalRepositories) HistoryRepo() order.HistoryRepository {
	return NewGormOrderRepository(r.tx)
}

func (r *gormTransactionalRepositories) CartRepo() cart.Repository {
	return NewGormCartRepository(r.tx)
}

func (r *gormTransactionalRepositories) StockRepo() catalog.StockRepository {
	return NewGormProductRepository(r.tx)
}

func (r *gormTransactionalRepositories) Events() shared.EventRecorder {
	if r.events == nil {
		return discardRecorder{}
	}
	return r.events(r.tx)
}

type discardRecorder struct{}

func (discardRecorder) Record(context.Context, ...shared.DomainEvent) error { return nil }

var (
	_ apporder.TransactionScope          = (*GormTransactionScope)(nil)
	_ apporder.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
)
