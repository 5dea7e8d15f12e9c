package cart

import (
	"github.com/google/uuid"

	cartsvc "github.com/angelmondragon/ecom-backend/internal/cart"
)

// ProductRequest is the body of the add, addition and deduction endpoints.
type ProductRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
}

// PlaceOrderRequest is the body of POST /api/customer/placeOrder.
type PlaceOrderRequest struct {
	OrderDescription string `json:"order_description" validate:"max=1000"`
	Address          string `json:"address" validate:"required,max=500"`
	Payment          string `json:"payment,omitempty" validate:"max=120"`
}

func (p PlaceOrderRequest) toInput() cartsvc.PlaceOrderInput {
	return cartsvc.PlaceOrderInput{
		Description: p.OrderDescription,
		Address:     p.Address,
		Payment:     p.Payment,
	}
}
