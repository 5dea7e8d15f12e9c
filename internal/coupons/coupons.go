package coupons

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/ecom-backend/pkg/db"
	"github.com/angelmondragon/ecom-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/ecom-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CouponDTO is the admin view of a coupon.
type CouponDTO struct {
	ID              uuid.UUID  `json:"id"`
	Name            string     `json:"name"`
	Code            string     `json:"code"`
	DiscountPercent int64      `json:"discount_percent"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
	Expired         bool       `json:"expired"`
	CreatedAt       time.Time  `json:"created_at"`
}

// CreateCouponInput is the body of POST /api/admin/coupons.
type CreateCouponInput struct {
	Name            string     `json:"name" validate:"required,max=120"`
	Code            string     `json:"code" validate:"required,max=64"`
	DiscountPercent int64      `json:"discount_percent" validate:"required,min=1,max=100"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
}

// Repository persists coupons.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, coupon *models.Coupon) error {
	if coupon.ID == uuid.Nil {
		coupon.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(coupon).Error
}

func (r *Repository) List(ctx context.Context) ([]models.Coupon, error) {
	var rows []models.Coupon
	if err := r.db.WithContext(ctx).Order("created_at DESC").Order("code ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Service manages the coupon catalog used by the cart.
type Service interface {
	Create(ctx context.Context, input CreateCouponInput) (*CouponDTO, error)
	List(ctx context.Context) ([]CouponDTO, error)
}

type service struct {
	repo *Repository
	now  func() time.Time
}

// NewService builds a coupon service. A nil clock uses the wall clock.
func NewService(repo *Repository, clock func() time.Time) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("coupon repository required")
	}
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &service{repo: repo, now: clock}, nil
}

// Create stores a new coupon. Codes are unique and matched exactly.
func (s *service) Create(ctx context.Context, input CreateCouponInput) (*CouponDTO, error) {
	name := strings.TrimSpace(input.Name)
	code := strings.TrimSpace(input.Code)
	if name == "" || code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name and code are required")
	}
	if input.DiscountPercent < 1 || input.DiscountPercent > 100 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount_percent must be between 1 and 100")
	}

	coupon := &models.Coupon{
		Name:            name,
		Code:            code,
		DiscountPercent: input.DiscountPercent,
	}
	if input.ExpiresAt != nil {
		expires := input.ExpiresAt.UTC()
		coupon.ExpiresAt = &expires
	}
	if err := s.repo.Create(ctx, coupon); err != nil {
		if db.IsUniqueViolation(err, "coupon_code_key") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "coupon code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create coupon")
	}
	dto := s.toDTO(*coupon)
	return &dto, nil
}

func (s *service) List(ctx context.Context) ([]CouponDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list coupons")
	}
	out := make([]CouponDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, s.toDTO(row))
	}
	return out, nil
}

func (s *service) toDTO(c models.Coupon) CouponDTO {
	return CouponDTO{
		ID:              c.ID,
		Name:            c.Name,
		Code:            c.Code,
		DiscountPercent: c.DiscountPercent,
		ExpiresAt:       c.ExpiresAt,
		Expired:         c.ExpiredAt(s.now()),
		CreatedAt:       c.CreatedAt,
	}
}
