package models

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is a line on an order. PriceCents snapshots the unit price at add time.
type CartItem struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID    uuid.UUID `gorm:"column:order_id;type:uuid;not null"`
	ProductID  uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	Product    *Product  `gorm:"foreignKey:ProductID"`
	UserID     uuid.UUID `gorm:"column:user_id;type:uuid;not null"`
	PriceCents int64     `gorm:"column:price_cents;not null"`
	Quantity   int64     `gorm:"column:quantity;not null;default:1"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (CartItem) TableName() string { return "cart_items" }

// LineTotal returns unit price times quantity.
func (c CartItem) LineTotal() int64 {
	return c.PriceCents * c.Quantity
}
