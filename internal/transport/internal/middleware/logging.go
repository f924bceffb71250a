package middleware

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jamesprial/storefront-api/internal/logging"
	"github.com/jamesprial/storefront-api/internal/transport/transportcore"
)

// NewLoggingMiddleware creates middleware that logs HTTP requests.
// It logs the request method, path, status code, and duration using structured logging.
// If logger is nil, it uses the logrus standard logger.
func NewLoggingMiddleware(logger logrus.FieldLogger) transportcore.Middleware {
	logger = logging.OrDefault(logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Wrap response writer to capture status code
			wrapped := transportcore.WrapResponseWriter(w)

			next.ServeHTTP(wrapped, r)

			logger.WithFields(logrus.Fields{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      wrapped.Status(),
				"duration_ms": time.Since(start).Milliseconds(),
				"remote_addr": r.RemoteAddr,
				"request_id":  transportcore.RequestIDFromContext(r.Context()),
			}).Info("http request")
		})
	}
}
