package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stitchline/backend/internal/domain/catalog"
)

// ProductRequest is the body of product create and update calls
type ProductRequest struct {
	Name        string          `json:"name" binding:"required,max=200"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock" binding:"min=0"`
	Category    string          `json:"category" binding:"required,max=100"`
	ImageURL    string          `json:"image_url" binding:"max=500"`
	Description string          `json:"description"`
	Condition   string          `json:"condition" binding:"max=50"`
}

func (r ProductRequest) details() catalog.ProductDetails {
	return catalog.ProductDetails{
		Name:        r.Name,
		Price:       r.Price,
		Stock:       r.Stock,
		Category:    r.Category,
		ImageURL:    r.ImageURL,
		Description: r.Description,
		Condition:   r.Condition,
	}
}

// ProductListFilter is the query of the product listing
type ProductListFilter struct {
	Category string `form:"category"`
	Search   string `form:"q"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ProductResponse is the public representation of a product
type ProductResponse struct {
	ID          uuid.UUID           `json:"id"`
	Name        string              `json:"name"`
	Price       decimal.Decimal     `json:"price"`
	Stock       int                 `json:"stock"`
	StockStatus catalog.StockStatus `json:"stock_status"`
	Category    string              `json:"category"`
	ImageURL    string              `json:"image_url"`
	Description string              `json:"description"`
	Condition   string              `json:"condition"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// ToProductResponse converts a domain product to its response
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Stock:       p.Stock,
		StockStatus: p.StockStatus(),
		Category:    p.Category,
		ImageURL:    p.ImageURL,
		Description: p.Description,
		Condition:   p.Condition,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// ImageUploadRequest asks for a presigned product image upload
type ImageUploadRequest struct {
	ContentType string `json:"content_type" binding:"required"`
}

// ImageUploadResponse tells the client where to PUT the image
type ImageUploadResponse struct {
	UploadURL  string    `json:"upload_url"`
	StorageKey string    `json:"storage_key"`
	ImageURL   string    `json:"image_url"`
	ExpiresAt  time.Time `json:"expires_at"`
}
