package reviews

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/ecom-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/ecom-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service lets customers review what they bought.
type Service interface {
	OrderedProducts(ctx context.Context, userID, orderID uuid.UUID) (*OrderedProductsDTO, error)
	GiveReview(ctx context.Context, userID uuid.UUID, input GiveReviewInput) (*ReviewDTO, error)
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("review repository required")
	}
	return &service{repo: repo}, nil
}

// OrderedProducts lists the products of one of the caller's placed orders and
// flags those already reviewed. Orders of other users are NOT_FOUND.
func (s *service) OrderedProducts(ctx context.Context, userID, orderID uuid.UUID) (*OrderedProductsDTO, error) {
	order, err := s.repo.FindPlacedOrder(ctx, userID, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}

	productIDs := make([]uuid.UUID, 0, len(order.Items))
	for _, item := range order.Items {
		productIDs = append(productIDs, item.ProductID)
	}
	reviewed, err := s.repo.ReviewedProductIDs(ctx, userID, productIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load reviews")
	}

	out := &OrderedProductsDTO{
		OrderID:     order.ID,
		AmountCents: order.AmountCents,
		Products:    make([]OrderedProductDTO, 0, len(order.Items)),
	}
	for _, item := range order.Items {
		dto := OrderedProductDTO{
			ProductID:  item.ProductID,
			PriceCents: item.PriceCents,
			Quantity:   item.Quantity,
			Reviewed:   reviewed[item.ProductID],
		}
		if item.Product != nil {
			dto.Name = item.Product.Name
			dto.ImageURL = item.Product.ImageURL
		}
		out.Products = append(out.Products, dto)
	}
	return out, nil
}

// GiveReview records the caller's rating of a product they ordered. A second
// review of the same product replaces the first.
func (s *service) GiveReview(ctx context.Context, userID uuid.UUID, input GiveReviewInput) (*ReviewDTO, error) {
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product_id is required")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}
	description := input.Description
	if description != nil {
		trimmed := strings.TrimSpace(*description)
		description = &trimmed
		if trimmed == "" {
			description = nil
		}
	}

	ordered, err := s.repo.HasOrdered(ctx, userID, input.ProductID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check ordered products")
	}
	if !ordered {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only ordered products can be reviewed")
	}

	existing, err := s.repo.FindReview(ctx, userID, input.ProductID)
	switch {
	case err == nil:
		existing.Rating = input.Rating
		existing.Description = description
		if err := s.repo.Update(ctx, existing); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update review")
		}
		return toDTO(*existing), nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load review")
	}

	review := &models.Review{
		UserID:      userID,
		ProductID:   input.ProductID,
		Rating:      input.Rating,
		Description: description,
	}
	if err := s.repo.Create(ctx, review); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create review")
	}
	return toDTO(*review), nil
}

func toDTO(r models.Review) *ReviewDTO {
	return &ReviewDTO{
		ID:          r.ID,
		ProductID:   r.ProductID,
		UserID:      r.UserID,
		Rating:      r.Rating,
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
	}
}
