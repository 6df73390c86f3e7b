package telemetry

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OrderMetrics records checkout and fulfilment measurements.
type OrderMetrics struct {
	placed         metric.Int64Counter
	revenue        metric.Float64Counter
	itemsPerOrder  metric.Int64Histogram
	statusChanges  metric.Int64Counter
	stockConflicts metric.Int64Counter
}

// NewOrderMetrics registers the order instruments on meter.
func NewOrderMetrics(meter metric.Meter) (*OrderMetrics, error) {
	if meter == nil {
		return nil, fmt.Errorf("NewOrderMetrics: meter cannot be nil")
	}

	placed, err := meter.Int64Counter("shop_orders_placed_total",
		metric.WithDescription("Orders placed through checkout"),
		metric.WithUnit("{order}"))
	if err != nil {
		return nil, err
	}
	revenue, err := meter.Float64Counter("shop_order_revenue_total",
		metric.WithDescription("Sum of placed order totals"),
		metric.WithUnit("{currency}"))
	if err != nil {
		return nil, err
	}
	items, err := meter.Int64Histogram("shop_order_items",
		metric.WithDescription("Units per placed order"),
		metric.WithUnit("{item}"),
		metric.WithExplicitBucketBoundaries(1, 2, 3, 5, 10, 20, 50))
	if err != nil {
		return nil, err
	}
	statusChanges, err := meter.Int64Counter("shop_order_status_changes_total",
		metric.WithDescription("Order status transitions by target status"),
		metric.WithUnit("{transition}"))
	if err != nil {
		return nil, err
	}
	conflicts, err := meter.Int64Counter("shop_stock_conflicts_total",
		metric.WithDescription("Checkouts rejected for insufficient stock"),
		metric.WithUnit("{checkout}"))
	if err != nil {
		return nil, err
	}

	return &OrderMetrics{
		placed:         placed,
		revenue:        revenue,
		itemsPerOrder:  items,
		statusChanges:  statusChanges,
		stockConflicts: conflicts,
	}, nil
}

// OrderPlaced records a successful checkout.
func (m *OrderMetrics) OrderPlaced(ctx context.Context, total decimal.Decimal, items int) {
	m.placed.Add(ctx, 1)
	m.revenue.Add(ctx, total.InexactFloat64())
	m.itemsPerOrder.Record(ctx, int64(items))
}

// OrderStatusChanged records an admin status transition.
func (m *OrderMetrics) OrderStatusChanged(ctx context.Context, status string) {
	m.statusChanges.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

// StockConflict records a checkout that lost the race for stock.
func (m *OrderMetrics) StockConflict(ctx context.Context) {
	m.stockConflicts.Add(ctx, 1)
}

// RegisterPoolMetrics exposes database/sql pool statistics as observable gauges.
func RegisterPoolMetrics(meter metric.Meter, db *sql.DB) error {
	open, err := meter.Int64ObservableGauge("db_pool_connections",
		metric.WithDescription("Number of connections in the pool by state"),
		metric.WithUnit("{connection}"))
	if err != nil {
		return err
	}
	maxOpen, err := meter.Int64ObservableGauge("db_pool_connections_max",
		metric.WithDescription("Maximum number of connections in the pool"),
		metric.WithUnit("{connection}"))
	if err != nil {
		return err
	}

	_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := db.Stats()
		o.ObserveInt64(maxOpen, int64(stats.MaxOpenConnections))
		o.ObserveInt64(open, int64(stats.Idle), metric.WithAttributes(attribute.String("state", "idle")))
		o.ObserveInt64(open, int64(stats.InUse), metric.WithAttributes(attribute.String("state", "in_use")))
		o.ObserveInt64(open, int64(stats.OpenConnections), metric.WithAttributes(attribute.String("state", "open")))
		return nil
	}, open, maxOpen)
	return err
}
