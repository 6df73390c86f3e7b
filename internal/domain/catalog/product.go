package catalog

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stitchline/backend/internal/domain/shared"
)

// Stock thresholds used by the back office stock report
const (
	CriticalStockThreshold = 5
	LowStockThreshold      = 10
)

// StockStatus classifies how much of a product is left
type StockStatus string

const (
	StockStatusOutOfStock StockStatus = "Out of Stock"
	StockStatusCritical   StockStatus = "Critical"
	StockStatusLow        StockStatus = "Low"
	StockStatusGood       StockStatus = "Good"
)

// ClassifyStock maps a stock level to its StockStatus
func ClassifyStock(stock int) StockStatus {
	switch {
	case stock <= 0:
		return StockStatusOutOfStock
	case stock < CriticalStockThreshold:
		return StockStatusCritical
	case stock < LowStockThreshold:
		return StockStatusLow
	default:
		return StockStatusGood
	}
}

// Product is a sewing machine or accessory offered in the shop.
// Stock is the only field changed outside of admin edits, by order placement.
type Product struct {
	shared.BaseEntity
	Name        string
	Price       decimal.Decimal
	Stock       int
	Category    string
	ImageURL    string
	Description string
	Condition   string
}

// ProductDetails carries the editable attributes of a product
type ProductDetails struct {
	Name        string
	Price       decimal.Decimal
	Stock       int
	Category    string
	ImageURL    string
	Description string
	Condition   string
}

// NewProduct creates a new product after validating its details
func NewProduct(details ProductDetails) (*Product, error) {
	if err := details.validate(); err != nil {
		return nil, err
	}

	p := &Product{BaseEntity: shared.NewBaseEntity()}
	p.apply(details)
	return p, nil
}

// Update replaces the product's editable attributes
func (p *Product) Update(details ProductDetails) error {
	if err := details.validate(); err != nil {
		return err
	}
	p.apply(details)
	p.UpdatedAt = time.Now()
	return nil
}

// HasStock reports whether at least qty units are available
func (p *Product) HasStock(qty int) bool {
	return p.Stock >= qty
}

// StockStatus returns the stock classification of the product
func (p *Product) StockStatus() StockStatus {
	return ClassifyStock(p.Stock)
}

func (p *Product) apply(d ProductDetails) {
	p.Name = strings.TrimSpace(d.Name)
	p.Price = d.Price.Round(2)
	p.Stock = d.Stock
	p.Category = strings.TrimSpace(d.Category)
	p.ImageURL = strings.TrimSpace(d.ImageURL)
	p.Description = d.Description
	p.Condition = strings.TrimSpace(d.Condition)
}

func (d ProductDetails) validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(d.Name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	if strings.TrimSpace(d.Category) == "" {
		return shared.NewDomainError("INVALID_CATEGORY", "Category is required")
	}
	if !d.Price.IsPositive() {
		return shared.NewDomainError("INVALID_PRICE", "Price must be greater than 0")
	}
	if d.Stock < 0 {
		return shared.NewDomainError("INVALID_STOCK", "Stock cannot be negative")
	}
	return nil
}
