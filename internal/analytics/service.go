package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/ecom-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/ecom-backend/pkg/errors"
	"github.com/angelmondragon/ecom-backend/pkg/logger"
	"github.com/angelmondragon/ecom-backend/pkg/money"
)

const (
	cacheScope       = "analytics"
	topProductsLimit = 5
)

// Service provides order analytics for the admin dashboard.
type Service interface {
	// Summary returns order and revenue aggregates for all time, the current
	// month and the previous month.
	Summary(ctx context.Context) (*Summary, error)
}

// Cache stores computed summaries. *redis.Client satisfies it.
type Cache interface {
	CacheKey(scope string, parts ...string) string
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

type ServiceParams struct {
	Repo     *Repository
	Cache    Cache
	CacheTTL time.Duration
	Clock    func() time.Time
	Logger   *logger.Logger
}

type service struct {
	repo     *Repository
	cache    Cache
	cacheTTL time.Duration
	now      func() time.Time
	logg     *logger.Logger
}

// NewService builds an analytics service over the order tables.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("analytics repository required")
	}
	clock := params.Clock
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		repo:     params.Repo,
		cache:    params.Cache,
		cacheTTL: params.CacheTTL,
		now:      clock,
		logg:     params.Logger,
	}, nil
}

func (s *service) Summary(ctx context.Context) (*Summary, error) {
	now := s.now().UTC()
	current, previous := MonthWindows(now)

	key := ""
	if s.cachingEnabled() {
		key = s.cache.CacheKey(cacheScope, "summary", current.Start.Format("2006-01"))
		var cached Summary
		hit, err := s.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			s.warn(ctx, "analytics.cache_read_failed", err)
		} else if hit {
			return &cached, nil
		}
	}

	summary, err := s.compute(ctx, now, current, previous)
	if err != nil {
		return nil, err
	}

	if key != "" {
		if err := s.cache.SetJSON(ctx, key, summary, s.cacheTTL); err != nil {
			s.warn(ctx, "analytics.cache_write_failed", err)
		}
	}
	return summary, nil
}

func (s *service) compute(ctx context.Context, now time.Time, current, previous Window) (*Summary, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count orders by status")
	}
	overall, err := s.repo.Totals(ctx, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum order totals")
	}
	thisMonth, err := s.repo.Totals(ctx, &current)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum current month totals")
	}
	lastMonth, err := s.repo.Totals(ctx, &previous)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum previous month totals")
	}
	customers, err := s.repo.CountCustomers(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count customers")
	}
	top, err := s.repo.TopProducts(ctx, topProductsLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rank top products")
	}

	return &Summary{
		TotalOrders:          overall.Orders,
		Placed:               counts[enums.OrderStatusPlaced],
		Shipped:              counts[enums.OrderStatusShipped],
		Delivered:            counts[enums.OrderStatusDelivered],
		OrdersThisMonth:      thisMonth.Orders,
		OrdersPreviousMonth:  lastMonth.Orders,
		RevenueCents:         overall.RevenueCents,
		RevenueThisMonth:     thisMonth.RevenueCents,
		RevenuePreviousMonth: lastMonth.RevenueCents,
		OrdersGrowthPercent:  money.GrowthPercent(thisMonth.Orders, lastMonth.Orders),
		RevenueGrowthPercent: money.GrowthPercent(thisMonth.RevenueCents, lastMonth.RevenueCents),
		Customers:            customers,
		TopProducts:          top,
		GeneratedAt:          now,
	}, nil
}

func (s *service) cachingEnabled() bool {
	return s.cache != nil && s.cacheTTL > 0
}

func (s *service) warn(ctx context.Context, msg string, err error) {
	if s.logg == nil {
		return
	}
	s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), msg)
}
