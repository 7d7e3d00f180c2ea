package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StorefrontMetrics records cart and inventory activity.
type StorefrontMetrics struct {
	cartOps        *prometheus.CounterVec
	cartOpDuration *prometheus.HistogramVec
	stockMutations *prometheus.CounterVec
	trackingAssign *prometheus.CounterVec
}

// NewStorefrontMetrics registers the storefront metrics on the provided registerer.
func NewStorefrontMetrics(reg prometheus.Registerer) *StorefrontMetrics {
	if reg == nil {
		return &StorefrontMetrics{}
	}
	cartOps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_operations_total",
		Help: "Cart operations by operation and backend.",
	}, []string{"operation", "backend"})
	cartOpDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cart_operation_duration_seconds",
		Help:    "Duration of cart operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	stockMutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_mutations_total",
		Help: "Stock ledger mutations by action and outcome.",
	}, []string{"action", "outcome"})
	trackingAssign := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tracking_assignments_total",
		Help: "Tracking numbers assigned by delivery method.",
	}, []string{"method"})
	reg.MustRegister(cartOps, cartOpDuration, stockMutations, trackingAssign)
	return &StorefrontMetrics{
		cartOps:        cartOps,
		cartOpDuration: cartOpDuration,
		stockMutations: stockMutations,
		trackingAssign: trackingAssign,
	}
}

// IncCartOp increments the cart operation counter.
func (m *StorefrontMetrics) IncCartOp(operation, backend string) {
	if m == nil || m.cartOps == nil {
		return
	}
	m.cartOps.WithLabelValues(normalizeLabel(operation), normalizeLabel(backend)).Inc()
}

// ObserveCartOp records the duration for the named cart operation.
func (m *StorefrontMetrics) ObserveCartOp(operation string, duration time.Duration) {
	if m == nil || m.cartOpDuration == nil {
		return
	}
	m.cartOpDuration.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

// IncStockMutation increments the stock mutation counter.
func (m *StorefrontMetrics) IncStockMutation(action, outcome string) {
	if m == nil || m.stockMutations == nil {
		return
	}
	m.stockMutations.WithLabelValues(normalizeLabel(action), normalizeLabel(outcome)).Inc()
}

// IncTrackingAssigned increments the tracking assignment counter.
func (m *StorefrontMetrics) IncTrackingAssigned(method string) {
	if m == nil || m.trackingAssign == nil {
		return
	}
	m.trackingAssign.WithLabelValues(normalizeLabel(method)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
