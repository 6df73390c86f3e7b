package event

import (
	"context"

	"github.com/stitchline/backend/internal/domain/order"
	"github.com/stitchline/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// OrderEventLogger writes relayed order events to the business log
type OrderEventLogger struct {
	logger *zap.Logger
}

// NewOrderEventLogger creates a new OrderEventLogger
func NewOrderEventLogger(logger *zap.Logger) *OrderEventLogger {
	return &OrderEventLogger{logger: logger.Named("order-events")}
}

// EventTypes returns the order event types
func (h *OrderEventLogger) EventTypes() []string {
	return []string{order.EventTypeOrderPlaced, order.EventTypeOrderStatusChanged}
}

// Handle logs one event
func (h *OrderEventLogger) Handle(_ context.Context, e shared.DomainEvent) error {
	switch ev := e.(type) {
	case *order.OrderPlacedEvent:
		h.logger.Info("order placed",
			zap.String("order_id", ev.OrderID.String()),
			zap.String("tracking_number", ev.TrackingNumber),
			zap.String("total", ev.Total.StringFixed(2)),
			zap.Int("lines", len(ev.Items)),
		)
	case *order.OrderStatusChangedEvent:
		h.logger.Info("order status changed",
			zap.String("order_id", ev.OrderID.String()),
			zap.String("from", ev.FromStatus.String()),
			zap.String("to", ev.ToStatus.String()),
		)
	}
	return nil
}
