package analytics

import "time"

// LabelValue represents a top-N entry such as a best selling product.
type LabelValue struct {
	Label string `json:"label"`
	Value int64  `json:"value"`
}

// PeriodTotals aggregates orders placed inside one window.
type PeriodTotals struct {
	Orders       int64 `json:"orders"`
	RevenueCents int64 `json:"revenue_cents"`
}

// Summary is the admin dashboard payload.
type Summary struct {
	TotalOrders          int64        `json:"total_orders"`
	Placed               int64        `json:"placed"`
	Shipped              int64        `json:"shipped"`
	Delivered            int64        `json:"delivered"`
	OrdersThisMonth      int64        `json:"orders_this_month"`
	OrdersPreviousMonth  int64        `json:"orders_previous_month"`
	RevenueCents         int64        `json:"revenue_cents"`
	RevenueThisMonth     int64        `json:"revenue_this_month_cents"`
	RevenuePreviousMonth int64        `json:"revenue_previous_month_cents"`
	OrdersGrowthPercent  float64      `json:"orders_growth_percent"`
	RevenueGrowthPercent float64      `json:"revenue_growth_percent"`
	Customers            int64        `json:"customers"`
	TopProducts          []LabelValue `json:"top_products"`
	GeneratedAt          time.Time    `json:"generated_at"`
}
