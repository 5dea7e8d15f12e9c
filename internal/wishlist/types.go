package wishlist

import (
	"time"

	"github.com/angelmondragon/ecom-backend/pkg/db/models"
	"github.com/google/uuid"
)

// ProductSnapshot is the product data shown next to a wishlist entry.
type ProductSnapshot struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	PriceCents int64     `json:"price_cents"`
	Stock      int       `json:"stock"`
	ImageURL   *string   `json:"image_url,omitempty"`
}

// WishlistItemDTO wraps the product included in a wishlist row.
type WishlistItemDTO struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Product   ProductSnapshot `json:"product"`
	CreatedAt time.Time       `json:"created_at"`
}

// AddItemRequest is the body of POST /api/customer/wishlist.
type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
}

func itemFromModel(item models.WishlistItem) WishlistItemDTO {
	dto := WishlistItemDTO{
		ID:        item.ID,
		ProductID: item.ProductID,
		CreatedAt: item.CreatedAt,
	}
	if item.Product != nil {
		dto.Product = ProductSnapshot{
			ID:         item.Product.ID,
			Name:       item.Product.Name,
			PriceCents: item.Product.PriceCents,
			Stock:      item.Product.Stock,
			ImageURL:   item.Product.ImageURL,
		}
	}
	return dto
}
