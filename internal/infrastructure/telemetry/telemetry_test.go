package telemetry

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stitchline/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestProviders_Disabled(t *testing.T) {
	ctx := context.Background()
	logger := zaptest.NewLogger(t)
	cfg := config.TelemetryConfig{ServiceName: "stitchline-test"}

	tp, err := NewTracerProvider(ctx, cfg, logger)
	require.NoError(t, err)
	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("test"))
	tp.EnableSpanProfiles()
	assert.NoError(t, tp.Shutdown(ctx))

	mp, err := NewMeterProvider(ctx, cfg, logger)
	require.NoError(t, err)
	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter())
	assert.NoError(t, mp.Shutdown(ctx))

	lp, err := NewLoggerProvider(ctx, cfg, logger)
	require.NoError(t, err)
	assert.Nil(t, lp.Core("test", zapcore.InfoLevel))
	assert.NoError(t, lp.Shutdown(ctx))

	p, err := NewProfiler(cfg, "test", logger)
	require.NoError(t, err)
	assert.False(t, p.IsEnabled())
	assert.NoError(t, p.Stop())
	assert.NoError(t, p.Stop())
}

func TestSamplerFor(t *testing.T) {
	assert.Contains(t, samplerFor(1).Description(), "AlwaysOnSampler")
	assert.Equal(t, "AlwaysOffSampler", samplerFor(0).Description())
	assert.Contains(t, samplerFor(0.25).Description(), "TraceIDRatioBased{0.25}")
}

func TestOrderMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter(MeterName)

	m, err := NewOrderMetrics(meter)
	require.NoError(t, err)

	ctx := context.Background()
	m.OrderPlaced(ctx, decimal.RequireFromString("87002"), 6)
	m.OrderPlaced(ctx, decimal.RequireFromString("1000.50"), 1)
	m.OrderStatusChanged(ctx, "Shipped")
	m.StockConflict(ctx)

	got := collect(t, reader)

	placed := got["shop_orders_placed_total"].Data.(metricdata.Sum[int64])
	require.Len(t, placed.DataPoints, 1)
	assert.Equal(t, int64(2), placed.DataPoints[0].Value)

	revenue := got["shop_order_revenue_total"].Data.(metricdata.Sum[float64])
	assert.InDelta(t, 88002.5, revenue.DataPoints[0].Value, 0.001)

	items := got["shop_order_items"].Data.(metricdata.Histogram[int64])
	assert.Equal(t, uint64(2), items.DataPoints[0].Count)

	status := got["shop_order_status_changes_total"].Data.(metricdata.Sum[int64])
	v, ok := status.DataPoints[0].Attributes.Value("status")
	require.True(t, ok)
	assert.Equal(t, "Shipped", v.AsString())

	conflicts := got["shop_stock_conflicts_total"].Data.(metricdata.Sum[int64])
	assert.Equal(t, int64(1), conflicts.DataPoints[0].Value)
}

func TestNewOrderMetrics_NilMeter(t *testing.T) {
	_, err := NewOrderMetrics(nil)
	assert.EqualError(t, err, "NewOrderMetrics: meter cannot be nil")
}

func TestRegisterPoolMetrics(t *testing.T) {
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	db, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	db.SetMaxOpenConns(3)

	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter(MeterName)
	require.NoError(t, RegisterPoolMetrics(meter, db))

	got := collect(t, reader)
	maxOpen := got["db_pool_connections_max"].Data.(metricdata.Gauge[int64])
	assert.Equal(t, int64(3), maxOpen.DataPoints[0].Value)
	assert.Len(t, got["db_pool_connections"].Data.(metricdata.Gauge[int64]).DataPoints, 3)
}

func TestRegisterDBTracing_DisabledIsNoop(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, RegisterDBTracing(db, config.TelemetryConfig{DBTraceEnabled: true}, nil))
	assert.Nil(t, db.Callback().Query().Get("telemetry:before_query"))
}

func TestRegisterDBTracing_Enabled(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	cfg := config.TelemetryConfig{Enabled: true, DBTraceEnabled: true}
	require.NoError(t, RegisterDBTracing(db, cfg, zaptest.NewLogger(t)))
	assert.NotNil(t, db.Callback().Query().Get("telemetry:before_query"))
	assert.NotNil(t, db.Callback().Create().Get("telemetry:after_create"))

	var n int
	require.NoError(t, db.Raw("SELECT 1").Scan(&n).Error)
	assert.Equal(t, 1, n)
}
