package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stitchline/backend/internal/domain/order"
)

// PlaceOrderRequest is the checkout form
type PlaceOrderRequest struct {
	ShippingAddress string `json:"shipping_address" binding:"required"`
	PaymentMethod   string `json:"payment_method"`
}

// PlaceOrderResponse is returned after a successful checkout
type PlaceOrderResponse struct {
	Message        string          `json:"message"`
	OrderID        uuid.UUID       `json:"order_id"`
	TrackingNumber string          `json:"tracking_number"`
	Total          decimal.Decimal `json:"total"`
}

// UpdateStatusRequest is the admin status change form
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes"`
}

// OrderItemResponse is one item of an order
type OrderItemResponse struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	ImageURL    string          `json:"image_url,omitempty"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Total       decimal.Decimal `json:"total"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID                uuid.UUID           `json:"order_id"`
	UserID            uuid.UUID           `json:"user_id"`
	Total             decimal.Decimal     `json:"total"`
	Status            string              `json:"status"`
	TrackingNumber    string              `json:"tracking_number"`
	ShippingAddress   string              `json:"shipping_address"`
	PaymentMethod     string              `json:"payment_method"`
	OrderDate         time.Time           `json:"order_date"`
	EstimatedDelivery time.Time           `json:"estimated_delivery"`
	UpdatedAt         time.Time           `json:"updated_at"`
	Items             []OrderItemResponse `json:"items,omitempty"`
}

// AdminOrderResponse adds customer contact fields to an order
type AdminOrderResponse struct {
	OrderResponse
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
}

// StatusHistoryResponse is one entry of an order's timeline
type StatusHistoryResponse struct {
	ID        uuid.UUID `json:"id"`
	Status    string    `json:"status"`
	Notes     string    `json:"notes"`
	Timestamp time.Time `json:"timestamp"`
}

// ToOrderResponse converts a domain Order to OrderResponse
func ToOrderResponse(o *order.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = OrderItemResponse{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			ImageURL:    it.ImageURL,
			Quantity:    it.Quantity,
			Price:       it.UnitPrice,
			Total:       it.LineTotal,
		}
	}
	return OrderResponse{
		ID:                o.ID,
		UserID:            o.UserID,
		Total:             o.Total,
		Status:            o.Status.String(),
		TrackingNumber:    o.TrackingNumber,
		ShippingAddress:   o.ShippingAddress,
		PaymentMethod:     o.PaymentMethod,
		OrderDate:         o.CreatedAt,
		EstimatedDelivery: o.EstimatedDelivery,
		UpdatedAt:         o.UpdatedAt,
		Items:             items,
	}
}

// ToStatusHistoryResponses converts history entries
func ToStatusHistoryResponses(entries []order.StatusEntry) []StatusHistoryResponse {
	out := make([]StatusHistoryResponse, len(entries))
	for i, e := range entries {
		out[i] = StatusHistoryResponse{
			ID:        e.ID,
			Status:    e.Status.String(),
			Notes:     e.Notes,
			Timestamp: e.Timestamp,
		}
	}
	return out
}
