package metrics

import "github.com/prometheus/client_golang/prometheus"

// Cart operations reported through CommerceMetrics.IncCartMutation.
const (
	CartOpAdd         = "add"
	CartOpIncrement   = "increment"
	CartOpDecrement   = "decrement"
	CartOpRemove      = "remove"
	CartOpClear       = "clear"
	CartOpApplyCoupon = "apply_coupon"
)

// CommerceMetrics tracks cart activity and placed orders.
type CommerceMetrics struct {
	cartMutations *prometheus.CounterVec
	ordersPlaced  prometheus.Counter
	orderAmount   prometheus.Histogram
}

// NewCommerceMetrics registers the commerce metrics on the provided registerer.
func NewCommerceMetrics(reg prometheus.Registerer) *CommerceMetrics {
	if reg == nil {
		return &CommerceMetrics{}
	}
	cartMutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Committed cart mutations by operation.",
	}, []string{"op"})
	ordersPlaced := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Orders transitioned from PENDING to PLACED.",
	})
	orderAmount := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "order_amount_cents",
		Help:    "Net amount of placed orders in minor currency units.",
		Buckets: prometheus.ExponentialBuckets(500, 2, 12),
	})
	reg.MustRegister(cartMutations, ordersPlaced, orderAmount)
	return &CommerceMetrics{
		cartMutations: cartMutations,
		ordersPlaced:  ordersPlaced,
		orderAmount:   orderAmount,
	}
}

// IncCartMutation counts a committed cart operation.
func (c *CommerceMetrics) IncCartMutation(op string) {
	if c == nil || c.cartMutations == nil {
		return
	}
	c.cartMutations.WithLabelValues(normalizeLabel(op)).Inc()
}

// ObserveOrderPlaced counts a placed order and records its net amount.
func (c *CommerceMetrics) ObserveOrderPlaced(amountCents int64) {
	if c == nil || c.ordersPlaced == nil {
		return
	}
	c.ordersPlaced.Inc()
	c.orderAmount.Observe(float64(amountCents))
}
