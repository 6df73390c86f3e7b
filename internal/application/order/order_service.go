package order

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stitchline/backend/internal/domain/cart"
	"github.com/stitchline/backend/internal/domain/order"
	"github.com/stitchline/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const maxTrackingAttempts = 3

// Config holds the order workflow settings
type Config struct {
	StorageTimeout  time.Duration
	RestockOnCancel bool
}

// Metrics records business measurements of the order workflow
type Metrics interface {
	OrderPlaced(ctx context.Context, total decimal.Decimal, items int)
	OrderStatusChanged(ctx context.Context, status string)
	StockConflict(ctx context.Context)
}

type noopMetrics struct{}

func (noopMetrics) OrderPlaced(context.Context, decimal.Decimal, int) {}
func (noopMetrics) OrderStatusChanged(context.Context, string)        {}
func (noopMetrics) StockConflict(context.Context)                     {}

// OrderService runs checkout and the order back office
type OrderService struct {
	orderRepo   order.Repository
	historyRepo order.HistoryRepository
	txScope     TransactionScope
	cfg         Config
	logger      *zap.Logger
	metrics     Metrics
	now         func() time.Time
	newTracking order.TrackingNumberGenerator
}

// Option configures an OrderService
type Option func(*OrderService)

// WithMetrics sets the metrics recorder
func WithMetrics(m Metrics) Option {
	return func(s *OrderService) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *OrderService) { s.now = now }
}

// WithTrackingNumberGenerator overrides how tracking numbers are produced
func WithTrackingNumberGenerator(g order.TrackingNumberGenerator) Option {
	return func(s *OrderService) { s.newTracking = g }
}

// NewOrderService creates a new OrderService
func NewOrderService(
	orderRepo order.Repository,
	historyRepo order.HistoryRepository,
	txScope TransactionScope,
	cfg Config,
	logger *zap.Logger,
	opts ...Option,
) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &OrderService{
		orderRepo:   orderRepo,
		historyRepo: historyRepo,
		txScope:     txScope,
		cfg:         cfg,
		logger:      logger,
		metrics:     noopMetrics{},
		now:         time.Now,
		newTracking: order.NewTrackingNumber,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PlaceOrder converts the caller's cart into an order.
// Order, items, stock decrement, first history entry, cart clearing and the
// OrderPlaced event commit together or not at all.
func (s *OrderService) PlaceOrder(ctx context.Context, p shared.Principal, req PlaceOrderRequest) (*PlaceOrderResponse, error) {
	if p.IsAnonymous() {
		return nil, shared.ErrUnauthorized
	}

	ctx, cancel := shared.WithStorageDeadline(ctx, s.cfg.StorageTimeout)
	defer cancel()

	var placed *order.Order
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		lines, err := repos.CartRepo().FindLines(ctx, p.UserID)
		if err != nil {
			return err
		}
		basket := cart.Cart{UserID: p.UserID, Lines: lines}
		if basket.IsEmpty() {
			return shared.ErrEmptyCart
		}
		if err := order.CheckStock(basket.Lines); err != nil {
			return err
		}

		now := s.now()
		tracking, err := s.uniqueTrackingNumber(ctx, repos.OrderRepo(), now)
		if err != nil {
			return err
		}

		o, err := order.Place(order.PlaceRequest{
			UserID:          p.UserID,
			Lines:           basket.Lines,
			ShippingAddress: req.ShippingAddress,
			PaymentMethod:   req.PaymentMethod,
			TrackingNumber:  tracking,
			Now:             now,
		})
		if err != nil {
			return err
		}

		if err := repos.OrderRepo().Create(ctx, o); err != nil {
			return err
		}
		for _, it := range o.Items {
			if err := repos.StockRepo().DecrementStock(ctx, it.ProductID, it.Quantity); err != nil {
				return err
			}
		}
		if err := repos.HistoryRepo().Append(ctx, o.PendingHistory()...); err != nil {
			return err
		}
		if _, err := repos.CartRepo().ClearForUser(ctx, p.UserID); err != nil {
			return err
		}
		if err := repos.Events().Record(ctx, o.GetDomainEvents()...); err != nil {
			return err
		}

		o.ClearPendingHistory()
		o.ClearDomainEvents()
		placed = o
		return nil
	})
	if err != nil {
		err = shared.TranslateStorageError(err)
		if errors.Is(err, shared.ErrInsufficientStock) {
			s.metrics.StockConflict(ctx)
			s.logger.Warn("Order rejected for stock",
				zap.String("user_id", p.UserID.String()),
				zap.Error(err))
		}
		return nil, err
	}

	s.metrics.OrderPlaced(ctx, placed.Total, placed.ItemCount())
	s.logger.Info("Order placed",
		zap.String("order_id", placed.ID.String()),
		zap.String("user_id", p.UserID.String()),
		zap.String("tracking_number", placed.TrackingNumber),
		zap.String("total", placed.Total.StringFixed(2)))

	return &PlaceOrderResponse{
		Message:        order.PlacedNote,
		OrderID:        placed.ID,
		TrackingNumber: placed.TrackingNumber,
		Total:          placed.Total,
	}, nil
}

func (s *OrderService) uniqueTrackingNumber(ctx context.Context, repo order.Repository, now time.Time) (string, error) {
	for attempt := 0; attempt < maxTrackingAttempts; attempt++ {
		candidate := s.newTracking(now)
		exists, err := repo.TrackingNumberExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", shared.NewDomainError(shared.ErrAlreadyExists.Code, "Could not allocate a unique tracking number")
}

// UpdateOrderStatus moves an order to a new status. Admin only.
// The status change, its history entry and the OrderStatusChanged event commit together.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, p shared.Principal, orderID uuid.UUID, req UpdateStatusRequest) (*OrderResponse, error) {
	if err := p.RequireAdmin(); err != nil {
		return nil, err
	}
	next, err := order.ParseStatus(req.Status)
	if err != nil {
		return nil, shared.NewDomainError(shared.ErrInvalidStatus.Code, "Invalid status").
			WithDetail("allowed", order.AllStatuses)
	}

	ctx, cancel := shared.WithStorageDeadline(ctx, s.cfg.StorageTimeout)
	defer cancel()

	var updated *order.Order
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		o, err := repos.OrderRepo().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		restock := false
		if s.cfg.RestockOnCancel && next == order.StatusCancelled {
			history, err := repos.HistoryRepo().FindByOrder(ctx, o.ID)
			if err != nil {
				return err
			}
			restock = order.FirstCancellation(next, history)
		}
		if err := o.ChangeStatus(next, req.Notes, s.now()); err != nil {
			return err
		}
		if err := repos.OrderRepo().UpdateStatus(ctx, o.ID, o.Status, o.UpdatedAt); err != nil {
			return err
		}
		if err := repos.HistoryRepo().Append(ctx, o.PendingHistory()...); err != nil {
			return err
		}
		if restock {
			for _, it := range o.Items {
				if err := repos.StockRepo().IncrementStock(ctx, it.ProductID, it.Quantity); err != nil {
					return err
				}
			}
		}
		if err := repos.Events().Record(ctx, o.GetDomainEvents()...); err != nil {
			return err
		}

		o.ClearPendingHistory()
		o.ClearDomainEvents()
		updated = o
		return nil
	})
	if err != nil {
		return nil, shared.TranslateStorageError(err)
	}

	s.metrics.OrderStatusChanged(ctx, updated.Status.String())
	s.logger.Info("Order status changed",
		zap.String("order_id", updated.ID.String()),
		zap.String("status", updated.Status.String()),
		zap.String("admin_id", p.UserID.String()))

	resp := ToOrderResponse(updated)
	return &resp, nil
}

// GetOrderStatusHistory returns the order timeline, oldest first
func (s *OrderService) GetOrderStatusHistory(ctx context.Context, p shared.Principal, orderID uuid.UUID) ([]StatusHistoryResponse, error) {
	ctx, cancel := shared.WithStorageDeadline(ctx, s.cfg.StorageTimeout)
	defer cancel()

	if _, err := s.loadAccessible(ctx, p, orderID); err != nil {
		return nil, err
	}
	entries, err := s.historyRepo.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, shared.TranslateStorageError(err)
	}
	return ToStatusHistoryResponses(entries), nil
}

// GetOrder returns one order with its items. Owner or admin.
func (s *OrderService) GetOrder(ctx context.Context, p shared.Principal, orderID uuid.UUID) (*OrderResponse, error) {
	ctx, cancel := shared.WithStorageDeadline(ctx, s.cfg.StorageTimeout)
	defer cancel()

	o, err := s.loadAccessible(ctx, p, orderID)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// ListOrders returns every order with customer contact data. Admin only.
func (s *OrderService) ListOrders(ctx context.Context, p shared.Principal) ([]AdminOrderResponse, error) {
	if err := p.RequireAdmin(); err != nil {
		return nil, err
	}
	ctx, cancel := shared.WithStorageDeadline(ctx, s.cfg.StorageTimeout)
	defer cancel()

	orders, err := s.orderRepo.FindAllWithCustomer(ctx)
	if err != nil {
		return nil, shared.TranslateStorageError(err)
	}
	out := make([]AdminOrderResponse, len(orders))
	for i := range orders {
		out[i] = AdminOrderResponse{
			OrderResponse: ToOrderResponse(&orders[i].Order),
			CustomerName:  orders[i].CustomerName,
			CustomerEmail: orders[i].CustomerEmail,
			CustomerPhone: orders[i].CustomerPhone,
		}
	}
	return out, nil
}

// ListUserOrders returns the caller's orders with item summaries
func (s *OrderService) ListUserOrders(ctx context.Context, p shared.Principal) ([]OrderResponse, error) {
	if p.IsAnonymous() {
		return nil, shared.ErrUnauthorized
	}
	ctx, cancel := shared.WithStorageDeadline(ctx, s.cfg.StorageTimeout)
	defer cancel()

	orders, err := s.orderRepo.FindByUser(ctx, p.UserID)
	if err != nil {
		return nil, shared.TranslateStorageError(err)
	}
	out := make([]OrderResponse, len(orders))
	for i := range orders {
		out[i] = ToOrderResponse(&orders[i])
	}
	return out, nil
}

// loadAccessible reports unknown ids as NOT_FOUND before the access check
func (s *OrderService) loadAccessible(ctx context.Context, p shared.Principal, orderID uuid.UUID) (*order.Order, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, shared.TranslateStorageError(err)
	}
	if !order.CanAccessOrder(p, o) {
		return nil, shared.ErrForbidden
	}
	return o, nil
}
