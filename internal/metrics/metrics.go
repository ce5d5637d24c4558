// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Checkout outcomes used as the "outcome" label.
const (
	OutcomeCommitted         = "committed"
	OutcomeReplayed          = "replayed"
	OutcomeValidationError   = "validation_error"
	OutcomeProductNotFound   = "product_not_found"
	OutcomeInsufficientStock = "insufficient_stock"
	OutcomeConflict          = "conflict"
	OutcomeDuplicateRequest  = "duplicate_request"
	OutcomeStorageFailure    = "storage_failure"
)

var (
	checkoutTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_total",
			Help: "Total number of checkouts by outcome",
		},
		[]string{"outcome"},
	)

	checkoutDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "checkout_duration_seconds",
			Help:    "Duration of checkouts including retries",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"outcome"},
	)

	checkoutRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "checkout_retries_total",
			Help: "Total number of checkout attempts retried after a conflict",
		},
	)

	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// ObserveCheckout records one finished checkout.
func ObserveCheckout(outcome string, duration time.Duration) {
	checkoutTotal.WithLabelValues(outcome).Inc()
	checkoutDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// IncCheckoutRetries counts a checkout attempt that is about to be retried.
func IncCheckoutRetries() {
	checkoutRetries.Inc()
}

// ObserveHTTP records one served HTTP request. path should be the route
// pattern, not the raw URL, to keep label cardinality bounded.
func ObserveHTTP(method, path string, status int, duration time.Duration) {
	httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
