package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stitchline/backend/internal/domain/cart"
	"github.com/stitchline/backend/internal/domain/shared"
	"github.com/stitchline/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCartRepository implements cart.Repository using GORM
type GormCartRepository struct {
	db *gorm.DB
}

// NewGormCartRepository creates a new GormCartRepository
func NewGormCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// AddOrMerge inserts the line or adds its quantity to the user's existing line
// for the same product.
func (r *GormCartRepository) AddOrMerge(ctx context.Context, item *cart.CartItem) error {
	m := models.CartItemModelFromDomain(item)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"quantity":   gorm.Expr("cart.quantity + excluded.quantity"),
			"updated_at": m.UpdatedAt,
		}),
	}).Create(m).Error
	return translateError(err)
}

// FindByIDForUser loads one line owned by the user
func (r *GormCartRepository) FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*cart.CartItem, error) {
	var m models.CartItemModel
	if err := r.db.WithContext(ctx).First(&m, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		return nil, translateError(err)
	}
	return m.ToDomain(), nil
}

type cartLineRow struct {
	CartItemID uuid.UUID
	ProductID  uuid.UUID
	Name       string
	Price      decimal.Decimal
	ImageURL   string
	Stock      int
	Quantity   int
	AddedAt    time.Time
}

// FindLines returns the user's lines joined with current product data, newest first
func (r *GormCartRepository) FindLines(ctx context.Context, userID uuid.UUID) ([]cart.Line, error) {
	var rows []cartLineRow
	err := r.db.WithContext(ctx).
		Table("cart").
		Select(`cart.id AS cart_item_id, cart.product_id, products.name, products.price,
			products.image_url, products.stock, cart.quantity, cart.created_at AS added_at`).
		Joins("JOIN products ON products.id = cart.product_id").
		Where("cart.user_id = ?", userID).
		Order("cart.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, translateError(err)
	}

	lines := make([]cart.Line, len(rows))
	for i, row := range rows {
		lines[i] = cart.Line(row)
	}
	return lines, nil
}

// UpdateQuantity sets the quantity of a line owned by the user
func (r *GormCartRepository) UpdateQuantity(ctx context.Context, id, userID uuid.UUID, quantity int) error {
	result := r.db.WithContext(ctx).
		Model(&models.CartItemModel{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]any{"quantity": quantity, "updated_at": time.Now()})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteForUser removes one line owned by the user
func (r *GormCartRepository) DeleteForUser(ctx context.Context, id, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.CartItemModel{}, "id = ? AND user_id = ?", id, userID)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ClearForUser removes every line of the user
func (r *GormCartRepository) ClearForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&models.CartItemModel{}, "user_id = ?", userID)
	return result.RowsAffected, translateError(result.Error)
}

// CountForUser counts the user's lines
func (r *GormCartRepository) CountForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.CartItemModel{}).Where("user_id = ?", userID).Count(&count).Error
	return count, translateError(err)
}

var _ cart.Repository = (*GormCartRepository)(nil)
