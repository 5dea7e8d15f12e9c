package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/ecom-backend/internal/orders"
	"github.com/angelmondragon/ecom-backend/pkg/db"
	"github.com/angelmondragon/ecom-backend/pkg/db/models"
	"github.com/angelmondragon/ecom-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/ecom-backend/pkg/errors"
	"github.com/angelmondragon/ecom-backend/pkg/logger"
	"github.com/angelmondragon/ecom-backend/pkg/metrics"
	"github.com/angelmondragon/ecom-backend/pkg/money"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const pendingOrderConstraint = "uq_order_one_pending_per_user"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service maintains each user's single PENDING order and turns it into a
// placed order.
type Service interface {
	ActiveCart(ctx context.Context, userID uuid.UUID) (*orders.OrderView, error)
	AddItem(ctx context.Context, userID, productID uuid.UUID) (*orders.OrderView, bool, error)
	ChangeQuantity(ctx context.Context, userID, productID uuid.UUID, delta int64) (*orders.OrderView, error)
	RemoveItem(ctx context.Context, userID, cartItemID uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) error
	ApplyCoupon(ctx context.Context, userID uuid.UUID, code string) (*orders.OrderView, error)
	PlaceOrder(ctx context.Context, userID uuid.UUID, input PlaceOrderInput) (*orders.OrderView, error)
}

// PlaceOrderInput carries the checkout details recorded on the order.
type PlaceOrderInput struct {
	Description string
	Address     string
	Payment     string
}

// ServiceParams groups dependencies for the cart service.
type ServiceParams struct {
	Repo    Repository
	Tx      txRunner
	Metrics *metrics.CommerceMetrics
	Logger  *logger.Logger
	Clock   func() time.Time
}

type service struct {
	repo    Repository
	tx      txRunner
	metrics *metrics.CommerceMetrics
	logg    *logger.Logger
	now     func() time.Time
}

// NewService builds a cart service backed by the provided stack.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	clock := params.Clock
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		repo:    params.Repo,
		tx:      params.Tx,
		metrics: params.Metrics,
		logg:    params.Logger,
		now:     clock,
	}, nil
}

// ActiveCart returns the pending order, creating an empty one when missing.
func (s *service) ActiveCart(ctx context.Context, userID uuid.UUID) (*orders.OrderView, error) {
	var view orders.OrderView
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		order, err := s.ensurePending(ctx, s.repo.WithTx(tx), userID, false)
		if err != nil {
			return err
		}
		view = orders.NewOrderView(*order)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// AddItem puts one unit of the product on the pending order at its current
// price. A product already in the cart leaves the cart untouched and reports
// added=false.
func (s *service) AddItem(ctx context.Context, userID, productID uuid.UUID) (*orders.OrderView, bool, error) {
	if productID == uuid.Nil {
		return nil, false, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	var (
		view  orders.OrderView
		added bool
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.ensurePending(ctx, repo, userID, true)
		if err != nil {
			return err
		}

		product, err := repo.FindProduct(ctx, productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
		}

		if findItemByProduct(order, productID) != nil {
			view = orders.NewOrderView(*order)
			return nil
		}

		item := models.CartItem{
			ID:         uuid.New(),
			OrderID:    order.ID,
			ProductID:  product.ID,
			UserID:     userID,
			PriceCents: product.PriceCents,
			Quantity:   1,
		}
		if err := repo.CreateItem(ctx, &item); err != nil {
			if db.IsUniqueViolation(err, "uq_cart_items_order_product") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "product is already in the cart")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create cart item")
		}
		item.Product = product
		order.Items = append(order.Items, item)

		if err := s.persistTotals(ctx, repo, order); err != nil {
			return err
		}
		view = orders.NewOrderView(*order)
		added = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	if added {
		s.metrics.IncCartMutation(metrics.CartOpAdd)
		s.logInfo(ctx, userID, "cart.item_added", map[string]any{"product_id": productID})
	}
	return &view, added, nil
}

// ChangeQuantity moves a line's quantity by exactly one unit. Quantities never
// drop below 1; removing a line goes through RemoveItem.
func (s *service) ChangeQuantity(ctx context.Context, userID, productID uuid.UUID, delta int64) (*orders.OrderView, error) {
	if delta != 1 && delta != -1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity can only change by one unit")
	}
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	var view orders.OrderView
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.ensurePending(ctx, repo, userID, true)
		if err != nil {
			return err
		}

		item := findItemByProduct(order, productID)
		if item == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}

		quantity := item.Quantity + delta
		if quantity < 1 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "quantity cannot go below 1; remove the item instead").
				WithDetails(map[string]any{"product_id": productID, "quantity": item.Quantity})
		}
		if err := repo.UpdateItemQuantity(ctx, item.ID, quantity); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update cart item quantity")
		}
		item.Quantity = quantity

		if err := s.persistTotals(ctx, repo, order); err != nil {
			return err
		}
		view = orders.NewOrderView(*order)
		return nil
	})
	if err != nil {
		return nil, err
	}

	op := metrics.CartOpIncrement
	if delta < 0 {
		op = metrics.CartOpDecrement
	}
	s.metrics.IncCartMutation(op)
	return &view, nil
}

// RemoveItem deletes a line from the caller's pending order. Unknown ids and
// lines on any other order are ignored without error.
func (s *service) RemoveItem(ctx context.Context, userID, cartItemID uuid.UUID) error {
	removed := false
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindPendingOrder(ctx, userID, true)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load pending order")
		}

		idx := -1
		for i := range order.Items {
			if order.Items[i].ID == cartItemID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil
		}

		if err := repo.DeleteItem(ctx, cartItemID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete cart item")
		}
		order.Items = append(order.Items[:idx], order.Items[idx+1:]...)
		removed = true
		return s.persistTotals(ctx, repo, order)
	})
	if err != nil {
		return err
	}
	if removed {
		s.metrics.IncCartMutation(metrics.CartOpRemove)
	}
	return nil
}

// Clear empties the pending order and zeroes its amounts. The applied coupon
// stays attached.
func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindPendingOrder(ctx, userID, true)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load pending order")
		}
		if err := repo.DeleteItemsByOrder(ctx, order.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart items")
		}
		order.Items = nil
		return s.persistTotals(ctx, repo, order)
	})
	if err != nil {
		return err
	}
	s.metrics.IncCartMutation(metrics.CartOpClear)
	return nil
}

// ApplyCoupon attaches the coupon to the pending order, replacing any coupon
// applied before.
func (s *service) ApplyCoupon(ctx context.Context, userID uuid.UUID, code string) (*orders.OrderView, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Coupon not found")
	}

	var view orders.OrderView
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		coupon, err := repo.FindCouponByCode(ctx, code)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeValidation, "Coupon not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load coupon")
		}
		if coupon.ExpiredAt(s.now()) {
			return pkgerrors.New(pkgerrors.CodeValidation, "Coupon has expired")
		}

		order, err := s.ensurePending(ctx, repo, userID, true)
		if err != nil {
			return err
		}
		order.CouponID = &coupon.ID
		order.Coupon = coupon

		if err := s.persistTotals(ctx, repo, order); err != nil {
			return err
		}
		view = orders.NewOrderView(*order)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncCartMutation(metrics.CartOpApplyCoupon)
	return &view, nil
}

// PlaceOrder stamps the pending order as PLACED with a fresh tracking id and
// opens a new empty PENDING order for the user in the same transaction. The
// cart is not required to hold items.
func (s *service) PlaceOrder(ctx context.Context, userID uuid.UUID, input PlaceOrderInput) (*orders.OrderView, error) {
	var view orders.OrderView
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindPendingOrder(ctx, userID, true)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "no pending order")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load pending order")
		}

		placedAt := s.now()
		trackingID := uuid.New()
		order.Description = optionalString(input.Description)
		order.Address = optionalString(input.Address)
		order.Payment = optionalString(input.Payment)
		order.PlacedAt = &placedAt
		order.Status = enums.OrderStatusPlaced
		order.TrackingID = &trackingID
		if err := repo.SaveOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "place order")
		}

		next := &models.Order{ID: uuid.New(), UserID: userID, Status: enums.OrderStatusPending}
		if err := repo.CreateOrder(ctx, next); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "open next pending order")
		}

		view = orders.NewOrderView(*order)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveOrderPlaced(view.AmountCents)
	s.logInfo(ctx, userID, "order.placed", map[string]any{
		"order_id":     view.ID,
		"tracking_id":  view.TrackingID,
		"amount_cents": view.AmountCents,
	})
	return &view, nil
}

// ensurePending returns the user's pending order, creating an empty one when
// none exists. A missing user is reported as NOT_FOUND.
func (s *service) ensurePending(ctx context.Context, repo Repository, userID uuid.UUID, lock bool) (*models.Order, error) {
	order, err := repo.FindPendingOrder(ctx, userID, lock)
	if err == nil {
		return order, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load pending order")
	}

	exists, err := repo.UserExists(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}

	order = &models.Order{ID: uuid.New(), UserID: userID, Status: enums.OrderStatusPending}
	if err := repo.CreateOrder(ctx, order); err != nil {
		if db.IsUniqueViolation(err, pendingOrderConstraint) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "cart was modified concurrently, retry the request")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create pending order")
	}
	return order, nil
}

func (s *service) persistTotals(ctx context.Context, repo Repository, order *models.Order) error {
	recalculate(order)
	if err := repo.SaveOrder(ctx, order); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save order totals")
	}
	return nil
}

func (s *service) logInfo(ctx context.Context, userID uuid.UUID, msg string, fields map[string]any) {
	if s.logg == nil {
		return
	}
	ctx = s.logg.WithUserID(ctx, userID.String())
	ctx = s.logg.WithFields(ctx, fields)
	s.logg.Info(ctx, msg)
}

// recalculate derives the order amounts from its lines: the gross total is the
// sum of snapshot price times quantity, the discount is the coupon percentage
// of that total rounded to whole cents, and the amount due is the difference.
func recalculate(order *models.Order) {
	var total int64
	for _, item := range order.Items {
		total += item.LineTotal()
	}
	total = money.FloorZero(total)

	var discount int64
	if order.Coupon != nil {
		discount = money.PercentOf(total, order.Coupon.DiscountPercent)
	}

	order.TotalAmountCents = total
	order.DiscountCents = discount
	order.AmountCents = money.FloorZero(total - discount)
}

func findItemByProduct(order *models.Order, productID uuid.UUID) *models.CartItem {
	for i := range order.Items {
		if order.Items[i].ProductID == productID {
			return &order.Items[i]
		}
	}
	return nil
}

func optionalString(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
