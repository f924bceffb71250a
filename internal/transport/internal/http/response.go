package http

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	internalerrors "github.com/jamesprial/storefront-api/internal/errors"
	"github.com/jamesprial/storefront-api/internal/logging"
	"github.com/jamesprial/storefront-api/internal/transport/transportcore"
	"github.com/jamesprial/storefront-api/pkg/api"
)

// errorResponse represents a JSON error response body.
type errorResponse struct {
	Error   internalerrors.Code `json:"error"`
	Message string              `json:"message"`
	Details any                 `json:"details,omitempty"`
}

// errorResponder implements transportcore.ErrorResponder.
type errorResponder struct {
	logger   logrus.FieldLogger
	observer transportcore.ErrorObserver
}

// NewErrorResponder creates the responder that renders every failure as
// {"error": code, "message": message, "details": details}. observer may be nil.
func NewErrorResponder(logger logrus.FieldLogger, observer transportcore.ErrorObserver) transportcore.ErrorResponder {
	return &errorResponder{
		logger:   logging.OrDefault(logger),
		observer: observer,
	}
}

// Respond classifies err and writes the matching response.
//
// AppErrors keep their status, code and message. Oversized bodies become 413.
// Anything else is an unclassified fault: the client sees a generic 500 and
// the original error only reaches the log.
func (e *errorResponder) Respond(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	appErr := classify(err)
	entry := e.logger.WithFields(logrus.Fields{
		"method":     r.Method,
		"path":       r.URL.Path,
		"request_id": transportcore.RequestIDFromContext(r.Context()),
		"status":     appErr.Status(),
		"code":       appErr.Code(),
	})

	if tracked, ok := w.(transportcore.ResponseWriter); ok && tracked.Written() {
		entry.WithError(err).Error("Error after response was started")
		return
	}

	if appErr.Status() >= http.StatusInternalServerError {
		entry.WithError(err).Error(appErr.Message)
	} else {
		entry.Warn(appErr.Message)
	}

	if appErr.Status() == http.StatusUnauthorized {
		w.Header().Set(api.HeaderWWWAuthenticate, api.BearerScheme)
	}

	resp := errorResponse{
		Error:   appErr.Code(),
		Message: appErr.Message,
		Details: appErr.Details,
	}
	if encodeErr := transportcore.WriteJSON(w, appErr.Status(), resp); encodeErr != nil {
		entry.WithError(encodeErr).Error("Failed to encode error response")
	}

	if e.observer != nil {
		e.observer.ObserveError(string(appErr.Code()))
	}
}

// classify maps err onto the taxonomy.
func classify(err error) *internalerrors.AppError {
	if appErr, ok := internalerrors.As(err); ok {
		return appErr
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return internalerrors.PayloadTooLarge("").WithCause(err)
	}

	return internalerrors.Internal("", err)
}
