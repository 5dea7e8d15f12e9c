package orders

import (
	"time"

	"github.com/angelmondragon/ecom-backend/pkg/db/models"
	"github.com/angelmondragon/ecom-backend/pkg/enums"
	"github.com/google/uuid"
)

// ItemView is one cart line as rendered to clients.
type ItemView struct {
	ID             uuid.UUID `json:"id"`
	ProductID      uuid.UUID `json:"product_id"`
	ProductName    string    `json:"product_name"`
	ImageURL       *string   `json:"image_url,omitempty"`
	PriceCents     int64     `json:"price_cents"`
	Quantity       int64     `json:"quantity"`
	LineTotalCents int64     `json:"line_total_cents"`
}

// OrderView is the client-facing shape of a pending cart or a placed order.
type OrderView struct {
	ID               uuid.UUID         `json:"id"`
	UserID           uuid.UUID         `json:"user_id"`
	UserName         string            `json:"user_name,omitempty"`
	Description      *string           `json:"order_description,omitempty"`
	Address          *string           `json:"address,omitempty"`
	Payment          *string           `json:"payment,omitempty"`
	PlacedAt         *time.Time        `json:"placed_at,omitempty"`
	AmountCents      int64             `json:"amount_cents"`
	TotalAmountCents int64             `json:"total_amount_cents"`
	DiscountCents    int64             `json:"discount_cents"`
	Status           enums.OrderStatus `json:"status"`
	TrackingID       *uuid.UUID        `json:"tracking_id,omitempty"`
	CouponName       *string           `json:"coupon_name,omitempty"`
	Items            []ItemView        `json:"cart_items"`
}

// NewOrderView maps a loaded order, including whatever associations were preloaded.
func NewOrderView(order models.Order) OrderView {
	view := OrderView{
		ID:               order.ID,
		UserID:           order.UserID,
		Description:      order.Description,
		Address:          order.Address,
		Payment:          order.Payment,
		PlacedAt:         order.PlacedAt,
		AmountCents:      order.AmountCents,
		TotalAmountCents: order.TotalAmountCents,
		DiscountCents:    order.DiscountCents,
		Status:           order.Status,
		TrackingID:       order.TrackingID,
		Items:            make([]ItemView, 0, len(order.Items)),
	}
	if order.User != nil {
		view.UserName = order.User.Name
	}
	if order.Coupon != nil {
		name := order.Coupon.Name
		view.CouponName = &name
	}
	for _, item := range order.Items {
		view.Items = append(view.Items, newItemView(item))
	}
	return view
}

// TrackingView is the public, unauthenticated shape of a placed order. It
// carries nothing that identifies the customer or where the order ships.
type TrackingView struct {
	ID               uuid.UUID         `json:"id"`
	PlacedAt         *time.Time        `json:"placed_at,omitempty"`
	AmountCents      int64             `json:"amount_cents"`
	TotalAmountCents int64             `json:"total_amount_cents"`
	DiscountCents    int64             `json:"discount_cents"`
	Status           enums.OrderStatus `json:"status"`
	TrackingID       *uuid.UUID        `json:"tracking_id,omitempty"`
	CouponName       *string           `json:"coupon_name,omitempty"`
	Items            []ItemView        `json:"cart_items"`
}

// NewTrackingView drops the customer, address, payment and description.
func NewTrackingView(order models.Order) TrackingView {
	full := NewOrderView(order)
	return TrackingView{
		ID:               full.ID,
		PlacedAt:         full.PlacedAt,
		AmountCents:      full.AmountCents,
		TotalAmountCents: full.TotalAmountCents,
		DiscountCents:    full.DiscountCents,
		Status:           full.Status,
		TrackingID:       full.TrackingID,
		CouponName:       full.CouponName,
		Items:            full.Items,
	}
}

func newItemView(item models.CartItem) ItemView {
	view := ItemView{
		ID:             item.ID,
		ProductID:      item.ProductID,
		PriceCents:     item.PriceCents,
		Quantity:       item.Quantity,
		LineTotalCents: item.LineTotal(),
	}
	if item.Product != nil {
		view.ProductName = item.Product.Name
		view.ImageURL = item.Product.ImageURL
	}
	return view
}
