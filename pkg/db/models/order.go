package models

import (
	"time"

	"github.com/angelmondragon/ecom-backend/pkg/enums"
	"github.com/google/uuid"
)

// Order is either the user's live cart (PENDING) or a placed order.
// TotalAmountCents is the gross line sum; AmountCents is what the customer pays.
type Order struct {
	ID               uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID           uuid.UUID         `gorm:"column:user_id;type:uuid;not null"`
	User             *User             `gorm:"foreignKey:UserID"`
	Description      *string           `gorm:"column:order_description"`
	Address          *string           `gorm:"column:address"`
	Payment          *string           `gorm:"column:payment"`
	PlacedAt         *time.Time        `gorm:"column:placed_at"`
	AmountCents      int64             `gorm:"column:amount_cents;not null;default:0"`
	TotalAmountCents int64             `gorm:"column:total_amount_cents;not null;default:0"`
	DiscountCents    int64             `gorm:"column:discount_cents;not null;default:0"`
	Status           enums.OrderStatus `gorm:"column:status;not null;default:'PENDING'"`
	TrackingID       *uuid.UUID        `gorm:"column:tracking_id;type:uuid;uniqueIndex"`
	CouponID         *uuid.UUID        `gorm:"column:coupon_id;type:uuid"`
	Coupon           *Coupon           `gorm:"foreignKey:CouponID"`
	Items            []CartItem        `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (Order) TableName() string { return "order" }
