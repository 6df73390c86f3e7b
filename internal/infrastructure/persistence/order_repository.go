package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stitchline/backend/internal/domain/order"
	"github.com/stitchline/backend/internal/domain/shared"
	"github.com/stitchline/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements order.Repository and order.HistoryRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Create inserts the order row followed by its item snapshots
func (r *GormOrderRepository) Create(ctx context.Context, o *order.Order) error {
	return translateError(r.db.WithContext(ctx).Create(models.OrderModelFromDomain(o)).Error)
}

// FindByID loads the order with its items
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var m models.OrderModel
	if err := r.db.WithContext(ctx).Preload("Items").First(&m, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return m.ToDomain(), nil
}

type customerOrderRow struct {
	models.OrderModel
	CustomerName  string
	CustomerEmail string
	CustomerPhone *string
}

// FindAllWithCustomer returns every order with the customer's contact fields, newest first
func (r *GormOrderRepository) FindAllWithCustomer(ctx context.Context) ([]order.CustomerOrder, error) {
	var rows []customerOrderRow
	err := r.db.WithContext(ctx).
		Table("orders").
		Select(`orders.*, users.name AS customer_name, users.email AS customer_email,
			users.phone AS customer_phone`).
		Joins("LEFT JOIN users ON users.id = orders.user_id").
		Order("orders.order_date DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, translateError(err)
	}

	out := make([]order.CustomerOrder, len(rows))
	for i := range rows {
		co := order.CustomerOrder{
			Order:         *rows[i].OrderModel.ToDomain(),
			CustomerName:  rows[i].CustomerName,
			CustomerEmail: rows[i].CustomerEmail,
		}
		if rows[i].CustomerPhone != nil {
			co.CustomerPhone = *rows[i].CustomerPhone
		}
		out[i] = co
	}
	return out, nil
}

// FindByUser returns the user's orders newest first, items included
func (r *GormOrderRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]order.Order, error) {
	var rows []models.OrderModel
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("order_date DESC").
		Find(&rows).Error
	if err != nil {
		return nil, translateError(err)
	}

	out := make([]order.Order, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// UpdateStatus sets the status column
func (r *GormOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status order.Status, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": at})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// TrackingNumberExists reports whether an order already uses the number
func (r *GormOrderRepository) TrackingNumberExists(ctx context.Context, trackingNumber string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where("tracking_number = ?", trackingNumber).
		Count(&count).Error
	return count > 0, translateError(err)
}

// CountByUser counts the user's orders
func (r *GormOrderRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.OrderModel{}).Where("user_id = ?", userID).Count(&count).Error
	return count, translateError(err)
}

// Append inserts timeline rows
func (r *GormOrderRepository) Append(ctx context.Context, entries ...order.StatusEntry) error {
	if len(entries) == 0 {
		return nil
	}
	rows := make([]models.OrderStatusHistoryModel, len(entries))
	for i, e := range entries {
		rows[i] = models.StatusHistoryModelFromDomain(e)
	}
	return translateError(r.db.WithContext(ctx).Create(&rows).Error)
}

// FindByOrder returns the order's timeline, oldest first
func (r *GormOrderRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]order.StatusEntry, error) {
	var rows []models.OrderStatusHistoryModel
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order(clause.OrderBy{Columns: []clause.OrderByColumn{
			{Column: clause.Column{Name: "timestamp"}},
			{Column: clause.Column{Name: "seq"}},
		}}).
		Find(&rows).Error
	if err != nil {
		return nil, translateError(err)
	}

	out := make([]order.StatusEntry, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

var (
	_ order.Repository        = (*GormOrderRepository)(nil)
	_ order.HistoryRepository = (*GormOrderRepository)(nil)
)
