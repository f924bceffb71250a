package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/sirupsen/logrus"

	"github.com/jamesprial/storefront-api/internal/logging"
	"github.com/jamesprial/storefront-api/internal/transport/transportcore"
)

// NewRecoveryMiddleware creates middleware that recovers from panics.
// It logs the panic with a stack trace and hands it to the responder as an
// unclassified fault, so the client gets the generic 500 envelope.
// If logger is nil, it uses the logrus standard logger.
func NewRecoveryMiddleware(responder transportcore.ErrorResponder, logger logrus.FieldLogger) transportcore.Middleware {
	if responder == nil {
		panic("responder cannot be nil")
	}
	logger = logging.OrDefault(logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tw := transportcore.WrapResponseWriter(w)

			defer func() {
				recovered := recover()
				if recovered == nil {
					return
				}
				// net/http uses this sentinel to abort a response on purpose.
				if recovered == http.ErrAbortHandler {
					panic(recovered)
				}

				logger.WithFields(logrus.Fields{
					"panic":      recovered,
					"method":     r.Method,
					"path":       r.URL.Path,
					"request_id": transportcore.RequestIDFromContext(r.Context()),
					"stack":      string(debug.Stack()),
				}).Error("panic recovered")

				responder.Respond(tw, r, fmt.Errorf("panic: %v", recovered))
			}()

			next.ServeHTTP(tw, r)
		})
	}
}
