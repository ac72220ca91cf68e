package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics tracks order placement outcomes.
type OrderMetrics struct {
	placed          *prometheus.CounterVec
	rejected        *prometheus.CounterVec
	duration        prometheus.Histogram
	pointsAccrued   prometheus.Counter
	stockShortfalls prometheus.Counter
}

// NewOrderMetrics registers the order metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	placed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_orders_placed_total",
		Help: "Orders committed, by buyer identity path.",
	}, []string{"buyer_kind"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_orders_rejected_total",
		Help: "Order placements rolled back, by error code.",
	}, []string{"code"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "storefront_order_placement_duration_seconds",
		Help:    "Duration of the order placement transaction.",
		Buckets: prometheus.DefBuckets,
	})
	points := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "storefront_loyalty_points_accrued_total",
		Help: "Loyalty points credited by committed orders.",
	})
	shortfalls := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "storefront_stock_shortfalls_total",
		Help: "Stock checks that failed during order placement or cart adds.",
	})
	reg.MustRegister(placed, rejected, duration, points, shortfalls)
	return &OrderMetrics{
		placed:          placed,
		rejected:        rejected,
		duration:        duration,
		pointsAccrued:   points,
		stockShortfalls: shortfalls,
	}
}

// ObservePlaced records a committed order.
func (m *OrderMetrics) ObservePlaced(buyerKind string, points int, duration time.Duration) {
	if m == nil || m.placed == nil {
		return
	}
	m.placed.WithLabelValues(normalizeLabel(buyerKind)).Inc()
	m.duration.Observe(duration.Seconds())
	if points > 0 {
		m.pointsAccrued.Add(float64(points))
	}
}

// ObserveRejected records a rolled back placement.
func (m *OrderMetrics) ObserveRejected(code string) {
	if m == nil || m.rejected == nil {
		return
	}
	m.rejected.WithLabelValues(normalizeLabel(code)).Inc()
}

// IncStockShortfall counts an insufficient stock rejection.
func (m *OrderMetrics) IncStockShortfall() {
	if m == nil || m.stockShortfalls == nil {
		return
	}
	m.stockShortfalls.Inc()
}
