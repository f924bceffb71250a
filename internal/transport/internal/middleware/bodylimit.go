package middleware

import (
	"net/http"

	internalerrors "github.com/jamesprial/storefront-api/internal/errors"
	"github.com/jamesprial/storefront-api/internal/transport/transportcore"
)

// NewBodyLimitMiddleware creates middleware that caps request bodies at
// maxBytes. A declared Content-Length over the cap is rejected up front;
// otherwise reading past the cap fails with *http.MaxBytesError, which the
// responder renders as 413.
func NewBodyLimitMiddleware(maxBytes int64, responder transportcore.ErrorResponder) transportcore.Middleware {
	if maxBytes <= 0 {
		panic("maxBytes must be positive")
	}
	if responder == nil {
		panic("responder cannot be nil")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				responder.Respond(w, r, internalerrors.PayloadTooLarge(""))
				return
			}
			if r.Body != nil && r.Body != http.NoBody {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
