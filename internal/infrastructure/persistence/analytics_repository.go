package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stitchline/backend/internal/domain/order"
	"github.com/stitchline/backend/internal/domain/report"
	"github.com/stitchline/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormAnalyticsRepository runs the back office aggregate queries.
// Sales figures only count delivered orders.
type GormAnalyticsRepository struct {
	db *gorm.DB
}

// NewGormAnalyticsRepository creates a new GormAnalyticsRepository
func NewGormAnalyticsRepository(db *gorm.DB) *GormAnalyticsRepository {
	return &GormAnalyticsRepository{db: db}
}

const productPerformanceSQL = `
SELECT p.id AS product_id, p.name, p.category, p.price, p.stock,
	COALESCE(SUM(s.quantity), 0) AS total_sold,
	COALESCE(SUM(s.total_price), 0) AS total_revenue,
	COALESCE(AVG(s.price_at_time), 0) AS avg_price
FROM products p
LEFT JOIN (
	SELECT oi.product_id, oi.quantity, oi.total_price, oi.price_at_time
	FROM order_items oi
	JOIN orders o ON o.id = oi.order_id
	WHERE o.status = ?
) s ON s.product_id = p.id
GROUP BY p.id, p.name, p.category, p.price, p.stock`

type performanceRow struct {
	ProductID    uuid.UUID
	Name         string
	Category     string
	Price        decimal.Decimal
	Stock        int
	TotalSold    int64
	TotalRevenue decimal.Decimal
	AvgPrice     decimal.Decimal
}

// ProductPerformance returns every product with its delivered sales, zero when unsold
func (r *GormAnalyticsRepository) ProductPerformance(ctx context.Context) ([]report.ProductPerformance, error) {
	var rows []performanceRow
	if err := r.db.WithContext(ctx).Raw(productPerformanceSQL, order.StatusDelivered).Scan(&rows).Error; err != nil {
		return nil, translateError(err)
	}

	out := make([]report.ProductPerformance, len(rows))
	for i, row := range rows {
		out[i] = report.ProductPerformance{
			ProductID:    row.ProductID,
			Name:         row.Name,
			Category:     row.Category,
			Price:        row.Price,
			Stock:        row.Stock,
			TotalSold:    row.TotalSold,
			TotalRevenue: row.TotalRevenue.Round(2),
			AvgPrice:     row.AvgPrice.Round(2),
		}
	}
	return out, nil
}

// DeliveredOrdersSince lists delivered orders placed at or after since
func (r *GormAnalyticsRepository) DeliveredOrdersSince(ctx context.Context, since time.Time) ([]report.DeliveredOrder, error) {
	var rows []models.OrderModel
	err := r.db.WithContext(ctx).
		Select("id", "total", "order_date").
		Where("status = ? AND order_date >= ?", order.StatusDelivered, since).
		Order("order_date DESC").
		Find(&rows).Error
	if err != nil {
		return nil, translateError(err)
	}

	out := make([]report.DeliveredOrder, len(rows))
	for i, row := range rows {
		out[i] = report.DeliveredOrder{OrderID: row.ID, Total: row.Total, OrderDate: row.OrderDate}
	}
	return out, nil
}

// StatusDistribution counts orders per status, most frequent first
func (r *GormAnalyticsRepository) StatusDistribution(ctx context.Context) ([]report.StatusCount, error) {
	var rows []report.StatusCount
	err := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Order("count DESC").
		Scan(&rows).Error
	return rows, translateError(err)
}

// DeliveredTotals summarizes delivered orders
func (r *GormAnalyticsRepository) DeliveredTotals(ctx context.Context) (report.TotalMetrics, error) {
	var row struct {
		TotalOrders    int64
		TotalRevenue   decimal.Decimal
		AvgOrderValue  decimal.Decimal
		TotalCustomers int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Select(`COUNT(*) AS total_orders, COALESCE(SUM(total), 0) AS total_revenue,
			COALESCE(AVG(total), 0) AS avg_order_value, COUNT(DISTINCT user_id) AS total_customers`).
		Where("status = ?", order.StatusDelivered).
		Scan(&row).Error
	if err != nil {
		return report.TotalMetrics{}, translateError(err)
	}
	return report.TotalMetrics{
		TotalOrders:    row.TotalOrders,
		TotalRevenue:   row.TotalRevenue.Round(2),
		AvgOrderValue:  row.AvgOrderValue.Round(2),
		TotalCustomers: row.TotalCustomers,
	}, nil
}

// CountOrders counts orders of every status
func (r *GormAnalyticsRepository) CountOrders(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.OrderModel{}).Count(&count).Error
	return count, translateError(err)
}

var _ report.AnalyticsRepository = (*GormAnalyticsRepository)(nil)
