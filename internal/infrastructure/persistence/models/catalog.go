package models

import (
	"github.com/shopspring/decimal"
	"github.com/stitchline/backend/internal/domain/catalog"
)

// ProductModel is the persistence model for catalog.Product
type ProductModel struct {
	BaseModel
	Name        string          `gorm:"type:varchar(200);not null"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Stock       int             `gorm:"not null;default:0"`
	Category    string          `gorm:"type:varchar(100);not null;index"`
	ImageURL    string          `gorm:"column:image_url;type:text"`
	Description string          `gorm:"type:text"`
	Condition   string          `gorm:"column:condition;type:varchar(50)"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the model to a domain Product
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseEntity:  m.BaseModel.ToDomain(),
		Name:        m.Name,
		Price:       m.Price,
		Stock:       m.Stock,
		Category:    m.Category,
		ImageURL:    m.ImageURL,
		Description: m.Description,
		Condition:   m.Condition,
	}
}

// FromDomain populates the model from a domain Product
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.Name = p.Name
	m.Price = p.Price
	m.Stock = p.Stock
	m.Category = p.Category
	m.ImageURL = p.ImageURL
	m.Description = p.Description
	m.Condition = p.Condition
}

// ProductModelFromDomain creates a model from a domain Product
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}
