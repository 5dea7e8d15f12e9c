package models

import (
	"time"

	"github.com/google/uuid"
)

// Coupon grants a percentage discount on a pending order until ExpiresAt.
type Coupon struct {
	ID              uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name            string     `gorm:"column:name;not null"`
	Code            string     `gorm:"column:code;not null;uniqueIndex"`
	DiscountPercent int64      `gorm:"column:discount_percent;not null"`
	ExpiresAt       *time.Time `gorm:"column:expires_at"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (Coupon) TableName() string { return "coupon" }

// ExpiredAt reports whether the coupon is past its expiration at now.
func (c Coupon) ExpiredAt(now time.Time) bool {
	return c.ExpiresAt != nil && c.ExpiresAt.Before(now)
}
