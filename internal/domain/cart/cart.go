package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stitchline/backend/internal/domain/shared"
)

// CartItem is one (user, product, quantity) line of purchase intent.
// A user holds at most one line per product.
type CartItem struct {
	shared.BaseEntity
	UserID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int
}

// NewCartItem creates a cart line
func NewCartItem(userID, productID uuid.UUID, quantity int) (*CartItem, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.ErrInvalidQuantity
	}
	return &CartItem{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
		ProductID:  productID,
		Quantity:   quantity,
	}, nil
}

// Line is a cart item joined with the current state of its product
type Line struct {
	CartItemID uuid.UUID
	ProductID  uuid.UUID
	Name       string
	Price      decimal.Decimal
	ImageURL   string
	Stock      int
	Quantity   int
	AddedAt    time.Time
}

// Total returns price times quantity for the line
func (l Line) Total() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// HasEnoughStock reports whether the product can cover the line
func (l Line) HasEnoughStock() bool {
	return l.Stock >= l.Quantity
}

// Cart is the read model of a user's cart
type Cart struct {
	UserID uuid.UUID
	Lines  []Line
}

// Total sums the line totals
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Total())
	}
	return total
}

// IsEmpty reports whether the cart has no lines
func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// ItemCount sums the quantities of all lines
func (c Cart) ItemCount() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}
