// Package main provides the entry point for the storefront API server.
// It wires together all components using dependency injection and manages
// the server lifecycle with graceful shutdown.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/jamesprial/storefront-api/internal/auth"
	"github.com/jamesprial/storefront-api/internal/config"
	"github.com/jamesprial/storefront-api/internal/logging"
	"github.com/jamesprial/storefront-api/internal/metrics"
	"github.com/jamesprial/storefront-api/internal/storage"
	"github.com/jamesprial/storefront-api/internal/transport"
)

func main() {
	os.Exit(run())
}

// run starts the server and blocks until it stops. It returns the process
// exit code: 1 when startup fails, 0 after a clean shutdown.
func run() int {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Error("failed to load config")
		return 1
	}

	logger, err := logging.New(cfg.LogLevel, cfg.ResolvedLogFormat(), os.Stdout)
	if err != nil {
		logrus.WithError(err).Error("failed to create logger")
		return 1
	}

	logger.WithFields(logrus.Fields{
		"addr":        cfg.Addr(),
		"environment": cfg.Environment,
		"log_level":   cfg.LogLevel,
	}).Info("server configuration loaded")
	logger.Debug(cfg.String())

	// Create context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Open the shared database handle when one is configured
	var db *storage.DB
	if cfg.DatabaseURL != "" {
		db, err = storage.Open(ctx, cfg.DatabaseURL, storage.DefaultOptions(), logger)
		if err != nil {
			logger.WithError(err).Error("failed to open database")
			return 1
		}
		defer func() {
			if err := db.Close(); err != nil {
				logger.WithError(err).Warn("failed to close database")
			}
		}()
	}

	// Wire transport layer
	transportCfg := &transport.Config{
		ServerConfig: cfg,
		Verifier:     auth.NewTokenVerifier(cfg.JWTSecret, cfg.ClockSkew),
		Logger:       logger,
		Metrics:      metrics.New(),
	}
	if db != nil {
		transportCfg.Database = db
	}

	services, err := transport.NewTransportServices(transportCfg)
	if err != nil {
		logger.WithError(err).Error("failed to create transport services")
		return 1
	}
	services.StartCleanup(ctx)

	if err := services.Server.Start(); err != nil {
		logger.WithError(err).Error("failed to start server")
		return 1
	}

	// Wait for shutdown signal or server error
	exitCode := 0
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping server gracefully...")
	case err := <-services.Server.Err():
		if err != nil {
			logger.WithError(err).Error("server error")
			exitCode = 1
		}
	}
	stop()

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := services.Server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("shutdown error")
		return 1
	}

	logger.Info("server stopped successfully")
	return exitCode
}
