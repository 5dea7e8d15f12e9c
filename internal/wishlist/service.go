package wishlist

import (
	"context"

	"github.com/angelmondragon/ecom-backend/pkg/db"
	"github.com/angelmondragon/ecom-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/ecom-backend/pkg/errors"
	"github.com/angelmondragon/ecom-backend/pkg/pagination"
	"github.com/google/uuid"
)

// Service exposes business rules for wishlist management.
type Service interface {
	GetWishlist(ctx context.Context, userID uuid.UUID, params pagination.Params) (pagination.Page[WishlistItemDTO], error)
	AddItem(ctx context.Context, userID, productID uuid.UUID) (*WishlistItemDTO, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) error
}

type service struct {
	repo *Repository
}

// NewService builds a wishlist service.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wishlist repo is required")
	}
	return &service{repo: repo}, nil
}

// GetWishlist returns the paginated wishlist of a user.
func (s *service) GetWishlist(ctx context.Context, userID uuid.UUID, params pagination.Params) (pagination.Page[WishlistItemDTO], error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return pagination.Page[WishlistItemDTO]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.ListItems(ctx, userID, cursor, params.Limit)
	if err != nil {
		return pagination.Page[WishlistItemDTO]{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list wishlist")
	}

	page := pagination.Trim(rows, params.Limit, func(item models.WishlistItem) pagination.Cursor {
		return pagination.Cursor{At: item.CreatedAt, ID: item.ID}
	})
	items := make([]WishlistItemDTO, 0, len(page.Items))
	for _, row := range page.Items {
		items = append(items, itemFromModel(row))
	}
	return pagination.Page[WishlistItemDTO]{Items: items, NextCursor: page.NextCursor}, nil
}

// AddItem saves a product for later. Missing products are NOT_FOUND and a
// product already on the list is NOT_ACCEPTABLE.
func (s *service) AddItem(ctx context.Context, userID, productID uuid.UUID) (*WishlistItemDTO, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	exists, err := s.repo.ProductExists(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	item := &models.WishlistItem{UserID: userID, ProductID: productID}
	if err := s.repo.AddItem(ctx, item); err != nil {
		if db.IsUniqueViolation(err, "wishlist_user_product_key") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotAcceptable, err, "product already in wishlist")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "add wishlist item")
	}
	dto := itemFromModel(*item)
	return &dto, nil
}

// RemoveItem drops the wishlist entry regardless of prior state.
func (s *service) RemoveItem(ctx context.Context, userID, productID uuid.UUID) error {
	if err := s.repo.RemoveItem(ctx, userID, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "remove wishlist item")
	}
	return nil
}
