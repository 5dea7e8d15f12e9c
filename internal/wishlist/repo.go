package wishlist

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/ecom-backend/internal/repo"
	"github.com/angelmondragon/ecom-backend/pkg/db/models"
	"github.com/angelmondragon/ecom-backend/pkg/pagination"
)

// Repository stores wishlist entries. A (user, product) pair is unique.
type Repository struct {
	base repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{base: repo.NewBase(db)}
}

// AddItem inserts item. A repeated pair fails with a unique violation.
func (r *Repository) AddItem(ctx context.Context, item *models.WishlistItem) error {
	if item.UserID == uuid.Nil || item.ProductID == uuid.Nil {
		return gorm.ErrInvalidValue
	}
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	return r.base.DB(ctx).Omit(clause.Associations).Create(item).Error
}

// RemoveItem is a no-op when the pair is absent.
func (r *Repository) RemoveItem(ctx context.Context, userID, productID uuid.UUID) error {
	return r.base.DB(ctx).
		Delete(&models.WishlistItem{}, "user_id = ? AND product_id = ?", userID, productID).
		Error
}

func (r *Repository) ProductExists(ctx context.Context, productID uuid.UUID) (bool, error) {
	return r.base.Exists(ctx, &models.Product{}, "id = ?", productID)
}

// ListItems pages through a user's entries newest first, fetching one row
// past the page.
func (r *Repository) ListItems(ctx context.Context, userID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.WishlistItem, error) {
	var rows []models.WishlistItem
	err := r.base.DB(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Scopes(pagination.After(cursor, "created_at")).
		Limit(pagination.FetchSize(limit)).
		Find(&rows).Error
	return rows, err
}
