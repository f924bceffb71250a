// Package handlers provides the built-in endpoints served by the transport layer.
package handlers

import (
	"context"
	"net/http"
	"time"

	internalerrors "github.com/jamesprial/storefront-api/internal/errors"
	"github.com/jamesprial/storefront-api/internal/transport/transportcore"
)

// defaultReadyTimeout bounds a readiness probe.
const defaultReadyTimeout = 2 * time.Second

// statusResponse represents the JSON response for health and readiness checks.
type statusResponse struct {
	Status string `json:"status"`
}

// Health reports that the process is up. It has no dependencies, so it
// never fails.
func Health(w http.ResponseWriter, _ *http.Request, _ *transportcore.RequestContext) error {
	return transportcore.WriteJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

// NewReadyHandler creates a handler that reports ready once every dependency
// answers a ping within timeout. A nil pinger means there is nothing to wait
// for. Failures surface as 503 SERVICE_UNAVAILABLE.
func NewReadyHandler(pinger transportcore.Pinger, timeout time.Duration) transportcore.Handler {
	if timeout <= 0 {
		timeout = defaultReadyTimeout
	}

	return func(w http.ResponseWriter, r *http.Request, _ *transportcore.RequestContext) error {
		if pinger != nil {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			if err := pinger.Ping(ctx); err != nil {
				return internalerrors.ServiceUnavailable("Database unavailable", err)
			}
		}
		return transportcore.WriteJSON(w, http.StatusOK, statusResponse{Status: "ready"})
	}
}
