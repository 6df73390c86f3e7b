package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stitchline/backend/internal/domain/order"
	"github.com/stitchline/backend/internal/domain/shared"
)

// OrderModel is the persistence model for order.Order
type OrderModel struct {
	ID                uuid.UUID        `gorm:"type:uuid;primaryKey"`
	UserID            uuid.UUID        `gorm:"type:uuid;not null;index"`
	Total             decimal.Decimal  `gorm:"type:numeric(12,2);not null"`
	Status            order.Status     `gorm:"type:varchar(30);not null;index"`
	TrackingNumber    string           `gorm:"type:varchar(40);not null;uniqueIndex"`
	ShippingAddress   string           `gorm:"type:text;not null"`
	PaymentMethod     string           `gorm:"type:varchar(30);not null"`
	OrderDate         time.Time        `gorm:"not null;index"`
	EstimatedDelivery time.Time        `gorm:"not null"`
	UpdatedAt         time.Time        `gorm:"not null"`
	Items             []OrderItemModel `gorm:"foreignKey:OrderID"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the model, with any preloaded items, to a domain Order
func (m *OrderModel) ToDomain() *order.Order {
	o := &order.Order{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{ID: m.ID, CreatedAt: m.OrderDate, UpdatedAt: m.UpdatedAt},
		},
		UserID:            m.UserID,
		Total:             m.Total,
		Status:            m.Status,
		TrackingNumber:    m.TrackingNumber,
		ShippingAddress:   m.ShippingAddress,
		PaymentMethod:     m.PaymentMethod,
		EstimatedDelivery: m.EstimatedDelivery,
	}
	o.Items = make([]order.Item, len(m.Items))
	for i := range m.Items {
		o.Items[i] = m.Items[i].ToDomain()
	}
	return o
}

// OrderModelFromDomain creates a model, items included, from a domain Order
func OrderModelFromDomain(o *order.Order) *OrderModel {
	m := &OrderModel{
		ID:                o.ID,
		UserID:            o.UserID,
		Total:             o.Total,
		Status:            o.Status,
		TrackingNumber:    o.TrackingNumber,
		ShippingAddress:   o.ShippingAddress,
		PaymentMethod:     o.PaymentMethod,
		OrderDate:         o.CreatedAt,
		EstimatedDelivery: o.EstimatedDelivery,
		UpdatedAt:         o.UpdatedAt,
	}
	m.Items = make([]OrderItemModel, len(o.Items))
	for i, it := range o.Items {
		m.Items[i] = OrderItemModel{
			ID:          it.ID,
			OrderID:     o.ID,
			ProductID:   nullableID(it.ProductID),
			ProductName: it.ProductName,
			ImageURL:    it.ImageURL,
			Quantity:    it.Quantity,
			PriceAtTime: it.UnitPrice,
			TotalPrice:  it.LineTotal,
		}
	}
	return m
}

// OrderItemModel is an immutable line snapshot. The product reference is
// cleared when the product is deleted; the name snapshot remains.
type OrderItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   *uuid.UUID      `gorm:"type:uuid;index"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	ImageURL    string          `gorm:"column:image_url;type:text"`
	Quantity    int             `gorm:"not null"`
	PriceAtTime decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	TotalPrice  decimal.Decimal `gorm:"type:numeric(12,2);not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the model to a domain Item
func (m *OrderItemModel) ToDomain() order.Item {
	return order.Item{
		ID:          m.ID,
		OrderID:     m.OrderID,
		ProductID:   derefID(m.ProductID),
		ProductName: m.ProductName,
		ImageURL:    m.ImageURL,
		Quantity:    m.Quantity,
		UnitPrice:   m.PriceAtTime,
		LineTotal:   m.TotalPrice,
	}
}

// OrderStatusHistoryModel is one append-only timeline row. Seq is assigned
// by the database and breaks timestamp ties in insertion order.
type OrderStatusHistoryModel struct {
	ID        uuid.UUID    `gorm:"type:uuid;primaryKey"`
	Seq       int64        `gorm:"->;default:0"`
	OrderID   uuid.UUID    `gorm:"type:uuid;not null;index"`
	Status    order.Status `gorm:"type:varchar(30);not null"`
	Notes     string       `gorm:"type:text"`
	Timestamp time.Time    `gorm:"column:timestamp;not null"`
}

// TableName returns the table name for GORM
func (OrderStatusHistoryModel) TableName() string {
	return "order_status_history"
}

// ToDomain converts the model to a domain StatusEntry
func (m *OrderStatusHistoryModel) ToDomain() order.StatusEntry {
	return order.StatusEntry{ID: m.ID, OrderID: m.OrderID, Status: m.Status, Notes: m.Notes, Timestamp: m.Timestamp}
}

// StatusHistoryModelFromDomain creates a model from a domain StatusEntry
func StatusHistoryModelFromDomain(e order.StatusEntry) OrderStatusHistoryModel {
	return OrderStatusHistoryModel{ID: e.ID, OrderID: e.OrderID, Status: e.Status, Notes: e.Notes, Timestamp: e.Timestamp}
}
