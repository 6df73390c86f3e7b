package models

import (
	"github.com/google/uuid"
	"github.com/stitchline/backend/internal/domain/cart"
)

// CartItemModel is one row of the cart table.
// A user holds at most one line per product.
type CartItemModel struct {
	BaseModel
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_user_product,priority:1"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_user_product,priority:2;index"`
	Quantity  int       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CartItemModel) TableName() string {
	return "cart"
}

// ToDomain converts the model to a domain CartItem
func (m *CartItemModel) ToDomain() *cart.CartItem {
	return &cart.CartItem{
		BaseEntity: m.BaseModel.ToDomain(),
		UserID:     m.UserID,
		ProductID:  m.ProductID,
		Quantity:   m.Quantity,
	}
}

// CartItemModelFromDomain creates a model from a domain CartItem
func CartItemModelFromDomain(c *cart.CartItem) *CartItemModel {
	m := &CartItemModel{UserID: c.UserID, ProductID: c.ProductID, Quantity: c.Quantity}
	m.FromDomainBaseEntity(c.BaseEntity)
	return m
}
