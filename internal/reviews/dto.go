package reviews

import (
	"time"

	"github.com/google/uuid"
)

// OrderedProductDTO is a product from a placed order, offered for review.
type OrderedProductDTO struct {
	ProductID  uuid.UUID `json:"product_id"`
	Name       string    `json:"name"`
	ImageURL   *string   `json:"image_url,omitempty"`
	PriceCents int64     `json:"price_cents"`
	Quantity   int64     `json:"quantity"`
	Reviewed   bool      `json:"reviewed"`
}

// OrderedProductsDTO lists the products of one order.
type OrderedProductsDTO struct {
	OrderID     uuid.UUID           `json:"order_id"`
	AmountCents int64               `json:"amount_cents"`
	Products    []OrderedProductDTO `json:"products"`
}

// GiveReviewInput is the body of POST /api/customer/review.
type GiveReviewInput struct {
	ProductID   uuid.UUID `json:"product_id" validate:"required"`
	Rating      int       `json:"rating" validate:"required,min=1,max=5"`
	Description *string   `json:"description,omitempty" validate:"omitempty,max=2000"`
}

// ReviewDTO is a stored review.
type ReviewDTO struct {
	ID          uuid.UUID `json:"id"`
	ProductID   uuid.UUID `json:"product_id"`
	UserID      uuid.UUID `json:"user_id"`
	Rating      int       `json:"rating"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
