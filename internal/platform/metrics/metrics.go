package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the storefront gateway.
type Metrics struct {
	RemoteCallDuration *prometheus.HistogramVec
	StoreRefreshes     *prometheus.CounterVec
	StaleRefreshDrops  *prometheus.CounterVec
	OrdersSubmitted    prometheus.Counter
	HTTPLatency        *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		RemoteCallDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "storefront_remote_call_duration_ms",
			Help:    "Latency of upstream store API calls in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		}, []string{"operation", "status"}),
		StoreRefreshes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_store_refreshes_total",
			Help: "Store reconciliation refreshes by store and outcome",
		}, []string{"store", "outcome"}),
		StaleRefreshDrops: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_stale_refresh_drops_total",
			Help: "Refresh results discarded because the session changed mid-flight",
		}, []string{"store"}),
		OrdersSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "storefront_orders_submitted_total",
			Help: "Orders successfully submitted through checkout",
		}),
		HTTPLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "storefront_http_request_duration_ms",
			Help:    "Facade request latency in milliseconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500},
		}, []string{"route", "method", "status"}),
	}
}
