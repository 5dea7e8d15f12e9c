package orders

import (
	"context"
	"errors"
	"strings"

	"github.com/angelmondragon/ecom-backend/pkg/db/models"
	"github.com/angelmondragon/ecom-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/ecom-backend/pkg/errors"
	"github.com/angelmondragon/ecom-backend/pkg/logger"
	"github.com/angelmondragon/ecom-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service exposes placed orders to customers, the public tracker and admins.
type Service interface {
	ListPlaced(ctx context.Context, userID uuid.UUID) ([]OrderView, error)
	Track(ctx context.Context, trackingID string) (*TrackingView, error)
	ListAllPlaced(ctx context.Context, params pagination.Params) (pagination.Page[OrderView], error)
	ChangeStatus(ctx context.Context, orderID uuid.UUID, status string) (*OrderView, error)
}

// ServiceParams groups dependencies for the orders service.
type ServiceParams struct {
	Repo   Repository
	Logger *logger.Logger
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService builds an orders service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "orders repository is required")
	}
	return &service{
		repo: params.Repo,
		logg: params.Logger,
	}, nil
}

func (s *service) ListPlaced(ctx context.Context, userID uuid.UUID) ([]OrderView, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	rows, err := s.repo.ListByUser(ctx, userID, enums.PlacedOrderStatuses)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list placed orders")
	}
	return toViews(rows), nil
}

// Track is the unauthenticated lookup by tracking id.
func (s *service) Track(ctx context.Context, trackingID string) (*TrackingView, error) {
	id, err := uuid.Parse(strings.TrimSpace(trackingID))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid tracking id")
	}
	order, err := s.repo.FindByTrackingID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order by tracking id")
	}
	view := NewTrackingView(*order)
	return &view, nil
}

func (s *service) ListAllPlaced(ctx context.Context, params pagination.Params) (pagination.Page[OrderView], error) {
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return pagination.Page[OrderView]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.ListPlaced(ctx, params)
	if err != nil {
		return pagination.Page[OrderView]{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list placed orders")
	}
	views := toViews(rows)
	return pagination.Trim(views, params.Limit, func(v OrderView) pagination.Cursor {
		cursor := pagination.Cursor{ID: v.ID}
		if v.PlacedAt != nil {
			cursor.At = *v.PlacedAt
		}
		return cursor
	}), nil
}

// ChangeStatus moves a placed order between PLACED, SHIPPED and DELIVERED.
// Pending carts are never touched here.
func (s *service) ChangeStatus(ctx context.Context, orderID uuid.UUID, status string) (*OrderView, error) {
	target, err := enums.ParseOrderStatus(status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown order status")
	}
	if !target.IsPlaced() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "orders cannot be moved back to PENDING")
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	if !order.Status.IsPlaced() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "pending orders cannot change status").
			WithDetails(map[string]any{"order_id": orderID, "status": order.Status})
	}

	if order.Status != target {
		if err := s.repo.UpdateStatus(ctx, orderID, target); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order status")
		}
		if s.logg != nil {
			logCtx := s.logg.WithOrderID(ctx, orderID.String())
			logCtx = s.logg.WithFields(logCtx, map[string]any{"from": order.Status, "to": target})
			s.logg.Info(logCtx, "order.status_changed")
		}
		order.Status = target
	}

	view := NewOrderView(*order)
	return &view, nil
}

func toViews(rows []models.Order) []OrderView {
	views := make([]OrderView, 0, len(rows))
	for _, row := range rows {
		views = append(views, NewOrderView(row))
	}
	return views
}
