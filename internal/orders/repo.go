package orders

import (
	"context"

	"github.com/angelmondragon/ecom-backend/pkg/db/models"
	"github.com/angelmondragon/ecom-backend/pkg/enums"
	"github.com/angelmondragon/ecom-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the read side of orders plus admin status changes.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByTrackingID(ctx context.Context, trackingID uuid.UUID) (*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, statuses []enums.OrderStatus) ([]models.Order, error)
	ListPlaced(ctx context.Context, params pagination.Params) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) withDetail(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Items.Product").
		Preload("Coupon").
		Preload("User")
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.withDetail(ctx).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindByTrackingID(ctx context.Context, trackingID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.withDetail(ctx).Where("tracking_id = ?", trackingID).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// ListByUser returns the user's orders in the given statuses, newest placement first.
func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, statuses []enums.OrderStatus) ([]models.Order, error) {
	var orders []models.Order
	err := r.withDetail(ctx).
		Where("user_id = ?", userID).
		Where("status IN ?", statuses).
		Order("placed_at DESC").
		Order("id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// ListPlaced pages through every non-pending order, newest placement first.
// One extra row is fetched so callers can detect a following page.
func (r *repository) ListPlaced(ctx context.Context, params pagination.Params) ([]models.Order, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	var orders []models.Order
	err = r.withDetail(ctx).
		Where("status IN ?", enums.PlacedOrderStatuses).
		Scopes(pagination.After(cursor, "placed_at")).
		Limit(pagination.FetchSize(params.Limit)).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
