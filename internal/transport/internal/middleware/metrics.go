package middleware

import (
	"net/http"
	"time"

	"github.com/jamesprial/storefront-api/internal/metrics"
	"github.com/jamesprial/storefront-api/internal/transport/transportcore"
)

// NewMetricsMiddleware creates middleware that records request counts and
// latency. routeOf maps a request to its route template so raw paths never
// become label values.
func NewMetricsMiddleware(m *metrics.Metrics, routeOf func(*http.Request) string) transportcore.Middleware {
	if m == nil {
		panic("metrics cannot be nil")
	}
	if routeOf == nil {
		routeOf = func(*http.Request) string { return "" }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			done := m.StartRequest()
			defer done()

			start := time.Now()
			wrapped := transportcore.WrapResponseWriter(w)

			next.ServeHTTP(wrapped, r)

			m.ObserveRequest(r.Method, routeOf(r), wrapped.Status(), time.Since(start))
		})
	}
}
