package cart

import (
	"context"
	"time"

	"github.com/angelmondragon/ecom-backend/pkg/db/models"
	"github.com/angelmondragon/ecom-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository is the persistence surface of the cart engine. Every method is
// expected to run on a transaction-bound handle obtained through WithTx.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	UserExists(ctx context.Context, userID uuid.UUID) (bool, error)
	FindPendingOrder(ctx context.Context, userID uuid.UUID, lock bool) (*models.Order, error)
	CreateOrder(ctx context.Context, order *models.Order) error
	SaveOrder(ctx context.Context, order *models.Order) error
	FindProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	FindCouponByCode(ctx context.Context, code string) (*models.Coupon, error)
	CreateItem(ctx context.Context, item *models.CartItem) error
	UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int64) error
	DeleteItem(ctx context.Context, itemID uuid.UUID) error
	DeleteItemsByOrder(ctx context.Context, orderID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) UserExists(ctx context.Context, userID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindPendingOrder loads the user's PENDING order with its lines, their
// products and the applied coupon. With lock set the order row is held
// FOR UPDATE until the surrounding transaction ends.
func (r *repository) FindPendingOrder(ctx context.Context, userID uuid.UUID, lock bool) (*models.Order, error) {
	query := r.db.WithContext(ctx)
	if lock {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var order models.Order
	err := query.
		Where("user_id = ? AND status = ?", userID, enums.OrderStatusPending).
		First(&order).Error
	if err != nil {
		return nil, err
	}

	var items []models.CartItem
	err = r.db.WithContext(ctx).
		Preload("Product").
		Where("order_id = ?", order.ID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	order.Items = items

	if order.CouponID != nil {
		var coupon models.Coupon
		if err := r.db.WithContext(ctx).Where("id = ?", *order.CouponID).First(&coupon).Error; err != nil {
			return nil, err
		}
		order.Coupon = &coupon
	}
	return &order, nil
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(order).Error
}

// SaveOrder persists the order header: amounts, coupon, checkout fields and status.
func (r *repository) SaveOrder(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", order.ID).
		Updates(map[string]any{
			"amount_cents":       order.AmountCents,
			"total_amount_cents": order.TotalAmountCents,
			"discount_cents":     order.DiscountCents,
			"coupon_id":          order.CouponID,
			"order_description":  order.Description,
			"address":            order.Address,
			"payment":            order.Payment,
			"placed_at":          order.PlacedAt,
			"status":             order.Status,
			"tracking_id":        order.TrackingID,
			"updated_at":         time.Now().UTC(),
		}).Error
}

func (r *repository) FindProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Where("id = ?", productID).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) FindCouponByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&coupon).Error; err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *repository) CreateItem(ctx context.Context, item *models.CartItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(item).Error
}

func (r *repository) UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int64) error {
	return r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", itemID).
		Update("quantity", quantity).Error
}

func (r *repository) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", itemID).Delete(&models.CartItem{}).Error
}

func (r *repository) DeleteItemsByOrder(ctx context.Context, orderID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("order_id = ?", orderID).Delete(&models.CartItem{}).Error
}
