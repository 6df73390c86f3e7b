package models

import (
	"github.com/google/uuid"
	"github.com/stitchline/backend/internal/domain/company"
)

// CompanyModel holds the shop's public profile
type CompanyModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"type:varchar(200);not null"`
	Description string    `gorm:"type:text"`
	Contact     string    `gorm:"type:varchar(255)"`
	Address     string    `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (CompanyModel) TableName() string {
	return "company"
}

// ToDomain converts the model to a domain Profile
func (m *CompanyModel) ToDomain() *company.Profile {
	return &company.Profile{ID: m.ID, Name: m.Name, Description: m.Description, Contact: m.Contact, Address: m.Address}
}
