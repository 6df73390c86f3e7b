package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/stitchline/backend/internal/domain/servicedesk"
	"github.com/stitchline/backend/internal/domain/shared"
	"github.com/stitchline/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormServiceRequestRepository implements servicedesk.Repository using GORM
type GormServiceRequestRepository struct {
	db *gorm.DB
}

// NewGormServiceRequestRepository creates a new GormServiceRequestRepository
func NewGormServiceRequestRepository(db *gorm.DB) *GormServiceRequestRepository {
	return &GormServiceRequestRepository{db: db}
}

func (r *GormServiceRequestRepository) Create(ctx context.Context, req *servicedesk.ServiceRequest) error {
	return translateError(r.db.WithContext(ctx).Create(models.ServiceRequestModelFromDomain(req)).Error)
}

func (r *GormServiceRequestRepository) Update(ctx context.Context, req *servicedesk.ServiceRequest) error {
	result := r.db.WithContext(ctx).
		Model(&models.ServiceRequestModel{}).
		Where("id = ?", req.ID).
		Updates(map[string]any{
			"status":      req.Status,
			"admin_notes": req.AdminNotes,
			"updated_at":  req.UpdatedAt,
		})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormServiceRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*servicedesk.ServiceRequest, error) {
	var m models.ServiceRequestModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return m.ToDomain(), nil
}

// FindAll returns requests newest first; an empty status means all
func (r *GormServiceRequestRepository) FindAll(ctx context.Context, status servicedesk.Status) ([]servicedesk.ServiceRequest, error) {
	q := r.db.WithContext(ctx).Order("request_date DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	return r.find(q)
}

func (r *GormServiceRequestRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]servicedesk.ServiceRequest, error) {
	return r.find(r.db.WithContext(ctx).Where("user_id = ?", userID).Order("request_date DESC"))
}

func (r *GormServiceRequestRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ServiceRequestModel{}).Count(&count).Error
	return count, translateError(err)
}

func (r *GormServiceRequestRepository) find(q *gorm.DB) ([]servicedesk.ServiceRequest, error) {
	var rows []models.ServiceRequestModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, translateError(err)
	}
	out := make([]servicedesk.ServiceRequest, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

var _ servicedesk.Repository = (*GormServiceRequestRepository)(nil)
