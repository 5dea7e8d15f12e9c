package analytics

import (
	"context"

	"github.com/angelmondragon/ecom-backend/internal/repo"
	"github.com/angelmondragon/ecom-backend/pkg/db/models"
	"github.com/angelmondragon/ecom-backend/pkg/enums"
	"gorm.io/gorm"
)

const topProductsSQL = `
SELECT p.name AS label, SUM(ci.quantity) AS value
FROM cart_items ci
JOIN "order" o ON o.id = ci.order_id
JOIN product p ON p.id = ci.product_id
WHERE o.status IN ?
GROUP BY p.id, p.name
ORDER BY value DESC, label ASC
LIMIT ?`

// Repository runs the aggregate queries behind the dashboard. Every query
// ignores PENDING orders.
type Repository struct {
	base repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{base: repo.NewBase(db)}
}

type statusCount struct {
	Status enums.OrderStatus
	Count  int64
}

// CountByStatus returns the number of orders per post-checkout status.
func (r *Repository) CountByStatus(ctx context.Context) (map[enums.OrderStatus]int64, error) {
	var rows []statusCount
	err := r.base.DB(ctx).
		Model(&models.Order{}).
		Select("status, COUNT(*) AS count").
		Where("status IN ?", enums.PlacedOrderStatuses).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[enums.OrderStatus]int64, len(enums.PlacedOrderStatuses))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// Totals sums orders and net revenue. A nil window covers all time; otherwise
// orders are bucketed by placed_at.
func (r *Repository) Totals(ctx context.Context, window *Window) (PeriodTotals, error) {
	var totals PeriodTotals
	q := r.base.DB(ctx).
		Model(&models.Order{}).
		Select("COUNT(*) AS orders, COALESCE(SUM(amount_cents), 0) AS revenue_cents").
		Where("status IN ?", enums.PlacedOrderStatuses)
	if window != nil {
		q = q.Where("placed_at >= ? AND placed_at < ?", window.Start, window.End)
	}
	if err := q.Scan(&totals).Error; err != nil {
		return PeriodTotals{}, err
	}
	return totals, nil
}

// TopProducts ranks products by units sold.
func (r *Repository) TopProducts(ctx context.Context, limit int) ([]LabelValue, error) {
	rows := []LabelValue{}
	if err := r.base.DB(ctx).
		Raw(topProductsSQL, enums.PlacedOrderStatuses, limit).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CountCustomers returns the number of customer accounts.
func (r *Repository) CountCustomers(ctx context.Context) (int64, error) {
	return r.base.Count(ctx, &models.User{}, "role = ?", enums.UserRoleCustomer)
}
