package models

import (
	"time"

	"github.com/angelmondragon/ecom-backend/pkg/enums"
	"github.com/google/uuid"
)

// User is the local account, linked to an external identity once one signs in.
type User struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ExternalID   *string        `gorm:"column:external_id;uniqueIndex"`
	Email        string         `gorm:"column:email;type:text;not null;uniqueIndex"`
	Name         string         `gorm:"column:name;not null"`
	PasswordHash *string        `gorm:"column:password_hash"`
	Role         enums.UserRole `gorm:"column:role;not null;default:'CUSTOMER'"`
	ImageURL     *string        `gorm:"column:image_url"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string { return "users" }
