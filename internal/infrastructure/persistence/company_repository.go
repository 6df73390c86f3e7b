package persistence

import (
	"context"

	"github.com/stitchline/backend/internal/domain/company"
	"github.com/stitchline/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCompanyRepository reads the company profile
type GormCompanyRepository struct {
	db *gorm.DB
}

// NewGormCompanyRepository creates a new GormCompanyRepository
func NewGormCompanyRepository(db *gorm.DB) *GormCompanyRepository {
	return &GormCompanyRepository{db: db}
}

// FindFirst returns the first stored profile
func (r *GormCompanyRepository) FindFirst(ctx context.Context) (*company.Profile, error) {
	var m models.CompanyModel
	if err := r.db.WithContext(ctx).Take(&m).Error; err != nil {
		return nil, translateError(err)
	}
	return m.ToDomain(), nil
}

var _ company.Repository = (*GormCompanyRepository)(nil)
