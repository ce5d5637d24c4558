package middleware

import (
	"net/http"
	"time"

	"cashier/internal/metrics"

	"github.com/go-chi/chi/v5"
)

// Metrics records request counts and latency per route pattern, so
// /api/orders/1 and /api/orders/2 share a series.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := wrapResponseWriter(w)

		next.ServeHTTP(rw, r)

		path := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}

		metrics.ObserveHTTP(r.Method, path, rw.statusCode, time.Since(start))
	})
}
