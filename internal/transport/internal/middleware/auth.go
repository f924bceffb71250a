// Package middleware provides HTTP middleware and pipeline stages for the
// transport layer.
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/jamesprial/storefront-api/internal/auth"
	internalerrors "github.com/jamesprial/storefront-api/internal/errors"
	"github.com/jamesprial/storefront-api/internal/logging"
	"github.com/jamesprial/storefront-api/internal/transport/transportcore"
	"github.com/jamesprial/storefront-api/pkg/api"
)

// Messages returned to clients. The reason a token was rejected is logged,
// never returned.
const (
	MessageMissingCredentials = "Missing Authorization header"
	MessageInvalidCredentials = "Invalid or expired token"
)

// authStage implements the authentication stage.
type authStage struct {
	verifier auth.TokenVerifier
	logger   logrus.FieldLogger
	observer transportcore.AuthFailureObserver
}

// NewAuthStage creates the stage that requires a valid bearer token and
// attaches the caller's identity. observer may be nil.
func NewAuthStage(
	verifier auth.TokenVerifier,
	logger logrus.FieldLogger,
	observer transportcore.AuthFailureObserver,
) transportcore.Stage {
	if verifier == nil {
		panic("verifier cannot be nil")
	}

	return &authStage{
		verifier: verifier,
		logger:   logging.OrDefault(logger),
		observer: observer,
	}
}

// Phase returns PhaseAuthenticate.
func (s *authStage) Phase() transportcore.Phase {
	return transportcore.PhaseAuthenticate
}

// Process validates the Authorization header.
//
// Format: Authorization: Bearer <token>
func (s *authStage) Process(r *http.Request, rc *transportcore.RequestContext) error {
	header := r.Header.Get(api.HeaderAuthorization)
	if !strings.HasPrefix(header, api.BearerPrefix) {
		s.reject(r, rc, "missing", nil)
		return internalerrors.Unauthorized(MessageMissingCredentials)
	}

	token := header[len(api.BearerPrefix):]
	identity, err := s.verifier.Verify(r.Context(), token)
	if err != nil || identity == nil {
		s.reject(r, rc, failureReason(err), err)
		return internalerrors.Unauthorized(MessageInvalidCredentials)
	}

	if err := rc.SetIdentity(*identity); err != nil {
		return internalerrors.Internal("", err)
	}
	return nil
}

func (s *authStage) reject(r *http.Request, rc *transportcore.RequestContext, reason string, err error) {
	entry := s.logger.WithFields(logrus.Fields{
		"method":     r.Method,
		"path":       r.URL.Path,
		"request_id": rc.RequestID(),
		"reason":     reason,
	})
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Debug("Bearer authentication failed")

	if s.observer != nil {
		s.observer.ObserveAuthFailure(reason)
	}
}

// failureReason buckets verification errors for logs and metrics.
func failureReason(err error) string {
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		return "expired"
	case errors.Is(err, auth.ErrInvalidSignature):
		return "invalid_signature"
	case errors.Is(err, auth.ErrUnsupportedAlgorithm):
		return "unsupported_algorithm"
	case errors.Is(err, auth.ErrMissingClaim):
		return "missing_claim"
	case errors.Is(err, auth.ErrMalformedToken):
		return "malformed"
	default:
		return "other"
	}
}
