package transport

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jamesprial/storefront-api/internal/auth"
	"github.com/jamesprial/storefront-api/internal/config"
	"github.com/jamesprial/storefront-api/internal/logging"
	"github.com/jamesprial/storefront-api/internal/metrics"
	"github.com/jamesprial/storefront-api/internal/schema"
	"github.com/jamesprial/storefront-api/internal/transport/internal/handlers"
	transporthttp "github.com/jamesprial/storefront-api/internal/transport/internal/http"
	"github.com/jamesprial/storefront-api/internal/transport/internal/middleware"
	"github.com/jamesprial/storefront-api/internal/transport/transportcore"
)

// Rate limiter housekeeping.
const (
	rateLimitCleanupInterval = time.Minute
	rateLimitMaxIdle         = 10 * time.Minute
)

// NewServer creates a configured HTTP server.
// The server is configured with timeouts from the config and serves handler.
func NewServer(cfg *config.Config, handler http.Handler, logger logrus.FieldLogger) Server {
	return transporthttp.NewServer(cfg, handler, logger)
}

// NewRouter creates a router whose unmatched requests are answered by responder.
func NewRouter(responder ErrorResponder, logger logrus.FieldLogger) Router {
	return transporthttp.NewRouter(responder, logger)
}

// NewErrorResponder creates the error translation stage. observer may be nil.
func NewErrorResponder(logger logrus.FieldLogger, observer transportcore.ErrorObserver) ErrorResponder {
	return transporthttp.NewErrorResponder(logger, observer)
}

// NewAuthStage creates the bearer authentication stage. observer may be nil.
func NewAuthStage(verifier auth.TokenVerifier, logger logrus.FieldLogger, observer transportcore.AuthFailureObserver) Stage {
	return middleware.NewAuthStage(verifier, logger, observer)
}

// Validate creates a validation stage that parses source against s.
//
//	router.Handle(http.MethodPost, "/api/admin/categories", create,
//		svc.RequireAuth(), transport.Validate(transport.SourceBody, schema.For[CreateCategory]()))
func Validate(source Source, s schema.Schema) Stage {
	return middleware.NewValidateStage(source, s)
}

// NewRecoveryMiddleware creates panic recovery middleware.
// If logger is nil, it uses the logrus standard logger.
func NewRecoveryMiddleware(responder ErrorResponder, logger logrus.FieldLogger) Middleware {
	return middleware.NewRecoveryMiddleware(responder, logger)
}

// NewLoggingMiddleware creates request logging middleware.
// If logger is nil, it uses the logrus standard logger.
func NewLoggingMiddleware(logger logrus.FieldLogger) Middleware {
	return middleware.NewLoggingMiddleware(logger)
}

// Config holds the configuration needed for the transport layer.
type Config struct {
	// ServerConfig is the server configuration.
	ServerConfig *config.Config

	// Verifier validates bearer tokens.
	Verifier auth.TokenVerifier

	// Logger receives request, error and lifecycle logs. Optional.
	Logger logrus.FieldLogger

	// Metrics records HTTP metrics and backs GET /metrics. Optional.
	Metrics *metrics.Metrics

	// Database is probed by GET /ready. Optional.
	Database Pinger
}

// Services is the wired transport layer.
type Services struct {
	// Server serves Router.
	Server Server

	// Router accepts route registrations until the server starts.
	Router Router

	requireAuth Stage
	rateLimiter *middleware.RateLimiter
}

// RequireAuth returns the authentication stage for protected routes.
func (s *Services) RequireAuth() Stage {
	return s.requireAuth
}

// StartCleanup evicts idle rate limiter entries until ctx is done.
// It does nothing when rate limiting is disabled.
func (s *Services) StartCleanup(ctx context.Context) {
	if s.rateLimiter != nil {
		s.rateLimiter.StartCleanup(ctx, rateLimitCleanupInterval, rateLimitMaxIdle)
	}
}

// NewTransportServices creates all transport layer services from the configuration.
// This is a convenience function for dependency injection that wires up the complete
// HTTP transport layer with routing, middleware, and the built-in endpoints.
func NewTransportServices(cfg *Config) (*Services, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.ServerConfig == nil {
		return nil, fmt.Errorf("server config cannot be nil")
	}
	if cfg.Verifier == nil {
		return nil, fmt.Errorf("token verifier cannot be nil")
	}

	logger := logging.OrDefault(cfg.Logger)
	serverCfg := cfg.ServerConfig

	// Metrics are optional; keep nil interfaces nil.
	var errorObserver transportcore.ErrorObserver
	var authObserver transportcore.AuthFailureObserver
	if cfg.Metrics != nil {
		errorObserver = cfg.Metrics
		authObserver = cfg.Metrics
	}

	responder := NewErrorResponder(logger, errorObserver)
	router := NewRouter(responder, logger)

	// Apply global middleware
	middlewares := []Middleware{
		NewRecoveryMiddleware(responder, logger),
		middleware.NewRequestIDMiddleware(),
		NewLoggingMiddleware(logger),
	}
	if cfg.Metrics != nil {
		middlewares = append(middlewares, middleware.NewMetricsMiddleware(cfg.Metrics, router.RouteTemplate))
	}
	middlewares = append(middlewares,
		middleware.NewSecurityHeadersMiddleware(),
		middleware.NewCORSMiddleware(serverCfg.AllowOrigin),
		middleware.NewBodyLimitMiddleware(serverCfg.MaxBodyBytes, responder),
	)

	var limiter *middleware.RateLimiter
	if serverCfg.RateLimitRPS > 0 {
		limiter = middleware.NewRateLimiter(serverCfg.RateLimitRPS, serverCfg.RateLimitBurst, logger)
		middlewares = append(middlewares, limiter.Middleware(responder))
	}
	router.Use(middlewares...)

	// Register built-in endpoints (no auth, no validation)
	router.Handle(http.MethodGet, "/health", handlers.Health)
	router.Handle(http.MethodGet, "/ready", handlers.NewReadyHandler(cfg.Database, 0))
	if cfg.Metrics != nil && serverCfg.MetricsEnabled {
		router.HandleHTTP(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	return &Services{
		Server:      NewServer(serverCfg, router, logger),
		Router:      router,
		requireAuth: NewAuthStage(cfg.Verifier, logger, authObserver),
		rateLimiter: limiter,
	}, nil
}
