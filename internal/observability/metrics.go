package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linen_store_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "linen_store_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	checkoutOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linen_store_checkout_outcomes_total",
			Help: "Checkout attempts by final state and error code",
		},
		[]string{"state", "code"},
	)

	priceMismatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linen_store_checkout_price_mismatch_total",
			Help: "Client-submitted amounts that disagreed with the server recomputation",
		},
		[]string{"field"},
	)

	bestEffortFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linen_store_post_order_task_failures_total",
			Help: "Failed post-commit tasks (notifications, email, events)",
		},
		[]string{"task"},
	)
)

// 終わったチェックアウトを数える。成功ならcodeは空
func RecordCheckout(state string, code string) {
	checkoutOutcomes.WithLabelValues(state, code).Inc()
}

func RecordPriceMismatch(field string) {
	priceMismatches.WithLabelValues(field).Inc()
}

func RecordPostOrderTaskFailure(task string) {
	bestEffortFailures.WithLabelValues(task).Inc()
}
