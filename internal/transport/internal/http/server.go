// Package http provides the HTTP server, router, route pipeline and error
// responder for the transport layer.
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jamesprial/storefront-api/internal/config"
	"github.com/jamesprial/storefront-api/internal/logging"
	"github.com/jamesprial/storefront-api/internal/transport/transportcore"
)

// defaultShutdownTimeout bounds Shutdown when the caller's context has no deadline.
const defaultShutdownTimeout = 30 * time.Second

// server implements transportcore.Server using net/http.Server.
type server struct {
	httpServer      *http.Server
	shutdownTimeout time.Duration
	logger          logrus.FieldLogger
	errorLog        io.Closer

	mu       sync.RWMutex
	listener net.Listener
	started  bool
	closed   bool
	errCh    chan error

	shutdownOnce sync.Once
	shutdownErr  error
}

// NewServer creates a new HTTP server with the provided configuration and handler.
// The server is configured with timeouts and the handler as its root.
func NewServer(cfg *config.Config, handler http.Handler, logger logrus.FieldLogger) transportcore.Server {
	if cfg == nil {
		panic("config cannot be nil")
	}
	if handler == nil {
		panic("handler cannot be nil")
	}

	shutdownTimeout := cfg.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}

	logger = logging.OrDefault(logger)
	stdLogger, errorLog := newStdLogger(logger)
	httpServer := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
		ErrorLog:     stdLogger,
	}

	return &server{
		httpServer:      httpServer,
		shutdownTimeout: shutdownTimeout,
		logger:          logger,
		errorLog:        errorLog,
		errCh:           make(chan error, 1),
	}
}

// Start binds the configured address and serves in a background goroutine.
// It returns once the listener is bound, so Addr is valid afterwards.
func (s *server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return transportcore.ErrServerClosed
	}
	if s.started {
		return transportcore.ErrServerStarted
	}

	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	s.listener = listener
	s.started = true

	s.logger.WithField("addr", listener.Addr().String()).
		Infof("Server listening on %s", listener.Addr().String())

	go s.serve(listener)
	return nil
}

func (s *server) serve(listener net.Listener) {
	defer close(s.errCh)

	if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.WithError(err).Error("Server stopped unexpectedly")
		s.errCh <- fmt.Errorf("server error: %w", err)
	}
}

// Shutdown gracefully shuts down the server without interrupting active connections.
// It waits for active connections to close or the context to be cancelled/expired,
// then forcibly closes whatever remains. Only the first call has any effect.
func (s *server) Shutdown(ctx context.Context) error {
	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		started := s.started
		s.mu.Unlock()

		s.logger.Info("Shutting down server...")

		// Set a reasonable deadline if the context doesn't have one
		if _, hasDeadline := ctx.Deadline(); !hasDeadline {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.shutdownTimeout)
			defer cancel()
		}

		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.shutdownErr = fmt.Errorf("shutdown failed: %w", err)
			_ = s.httpServer.Close()
		}

		if !started {
			close(s.errCh)
		}

		if s.shutdownErr != nil {
			s.logger.WithError(s.shutdownErr).Warn("Server closed before in-flight requests finished")
		}
		s.logger.Info("Server closed")
		_ = s.errorLog.Close()
	})

	return s.shutdownErr
}

// Addr returns the address the server is listening on.
// This is useful when the server is configured to bind to a random port (":0").
func (s *server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.listener == nil {
		return s.httpServer.Addr
	}
	return s.listener.Addr().String()
}

// Err returns a channel that yields a fatal serve error, if any, and is
// closed when serving stops.
func (s *server) Err() <-chan error {
	return s.errCh
}
