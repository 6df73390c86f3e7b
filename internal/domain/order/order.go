package order

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stitchline/backend/internal/domain/cart"
	"github.com/stitchline/backend/internal/domain/shared"
)

// Status is the lifecycle state of an order
type Status string

const (
	StatusConfirmed  Status = "Order Confirmed"
	StatusProcessing Status = "Processing"
	StatusShipped    Status = "Shipped"
	StatusDelivered  Status = "Delivered"
	StatusCancelled  Status = "Cancelled"
)

// AllStatuses lists every status an admin may set
var AllStatuses = []Status{StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}

// IsValid checks if the status is a known Status
func (s Status) IsValid() bool {
	switch s {
	case StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// CountsAsRevenue reports whether orders in this status are recognized as revenue.
// Only delivered orders count.
func (s Status) CountsAsRevenue() bool {
	return s == StatusDelivered
}

// ParseStatus validates a raw status value
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.IsValid() {
		return "", shared.ErrInvalidStatus
	}
	return s, nil
}

const (
	DefaultPaymentMethod = "COD"
	DeliveryWindow       = 7 * 24 * time.Hour
	PlacedNote           = "Order has been placed successfully"
)

// Item is the immutable snapshot of one purchased product
type Item struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	ImageURL    string
	Quantity    int
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
}

// StatusEntry is one row of the append-only status timeline
type StatusEntry struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	Status    Status
	Notes     string
	Timestamp time.Time
}

// Order is the aggregate created exactly once per successful checkout.
// Total is fixed at creation time.
type Order struct {
	shared.BaseAggregateRoot
	UserID            uuid.UUID
	Total             decimal.Decimal
	Status            Status
	TrackingNumber    string
	ShippingAddress   string
	PaymentMethod     string
	EstimatedDelivery time.Time
	Items             []Item

	pendingHistory []StatusEntry
}

// PlaceRequest holds everything needed to build a new order
type PlaceRequest struct {
	UserID          uuid.UUID
	Lines           []cart.Line
	ShippingAddress string
	PaymentMethod   string
	TrackingNumber  string
	Now             time.Time
}

// Place builds a confirmed order from a cart snapshot.
// Prices come from the snapshot so the charged total is what the customer saw.
func Place(req PlaceRequest) (*Order, error) {
	if req.UserID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if len(req.Lines) == 0 {
		return nil, shared.ErrEmptyCart
	}
	address := strings.TrimSpace(req.ShippingAddress)
	if address == "" {
		return nil, shared.NewDomainError("INVALID_ADDRESS", "Shipping address is required")
	}
	if req.TrackingNumber == "" {
		return nil, shared.NewDomainError("INVALID_TRACKING_NUMBER", "Tracking number is required")
	}
	if err := CheckStock(req.Lines); err != nil {
		return nil, err
	}

	payment := strings.TrimSpace(req.PaymentMethod)
	if payment == "" {
		payment = DefaultPaymentMethod
	}
	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            req.UserID,
		Status:            StatusConfirmed,
		TrackingNumber:    req.TrackingNumber,
		ShippingAddress:   address,
		PaymentMethod:     payment,
		EstimatedDelivery: now.Add(DeliveryWindow),
	}
	o.CreatedAt = now
	o.UpdatedAt = now

	total := decimal.Zero
	for _, line := range req.Lines {
		item := Item{
			ID:          uuid.New(),
			OrderID:     o.ID,
			ProductID:   line.ProductID,
			ProductName: line.Name,
			ImageURL:    line.ImageURL,
			Quantity:    line.Quantity,
			UnitPrice:   line.Price,
			LineTotal:   line.Total(),
		}
		total = total.Add(item.LineTotal)
		o.Items = append(o.Items, item)
	}
	o.Total = total

	o.recordStatus(StatusConfirmed, PlacedNote, now)
	o.AddDomainEvent(NewOrderPlacedEvent(o))

	return o, nil
}

// CheckStock fails on the first line whose product cannot cover the requested quantity
func CheckStock(lines []cart.Line) error {
	for _, line := range lines {
		if !line.HasEnoughStock() {
			return shared.NewInsufficientStockError(line.ProductID, line.Name, line.Stock, line.Quantity)
		}
	}
	return nil
}

// ChangeStatus moves the order to a new status and records a history entry.
// An empty note becomes "Status updated to <status>".
func (o *Order) ChangeStatus(next Status, note string, now time.Time) error {
	if !next.IsValid() {
		return shared.ErrInvalidStatus
	}
	if strings.TrimSpace(note) == "" {
		note = "Status updated to " + next.String()
	}
	if now.IsZero() {
		now = time.Now()
	}

	prev := o.Status
	o.Status = next
	o.UpdatedAt = now
	o.recordStatus(next, note, now)
	o.AddDomainEvent(NewOrderStatusChangedEvent(o, prev, note))
	return nil
}

// FirstCancellation reports whether moving to next cancels the order for the
// first time, given its persisted history. A reopened order that is cancelled
// again has already returned its stock.
func FirstCancellation(next Status, history []StatusEntry) bool {
	if next != StatusCancelled {
		return false
	}
	for _, e := range history {
		if e.Status == StatusCancelled {
			return false
		}
	}
	return true
}

// PendingHistory returns the status entries not yet persisted
func (o *Order) PendingHistory() []StatusEntry {
	return o.pendingHistory
}

// ClearPendingHistory drops entries once they are persisted
func (o *Order) ClearPendingHistory() {
	o.pendingHistory = nil
}

// ItemCount sums quantities over all items
func (o *Order) ItemCount() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}

func (o *Order) recordStatus(status Status, note string, at time.Time) {
	o.pendingHistory = append(o.pendingHistory, StatusEntry{
		ID:        uuid.New(),
		OrderID:   o.ID,
		Status:    status,
		Notes:     note,
		Timestamp: at,
	})
}

// CanAccessOrder reports whether the principal may read the order:
// admins see every order, customers only their own.
func CanAccessOrder(p shared.Principal, o *Order) bool {
	if o == nil {
		return false
	}
	if p.IsAdmin() {
		return true
	}
	return !p.IsAnonymous() && p.UserID == o.UserID
}
