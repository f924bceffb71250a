package config

import (
	"fmt"
	"net/url"

	"github.com/sirupsen/logrus"
)

// Validate checks that the configuration is valid and complete.
// It returns an error if required fields are missing or values are invalid.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if err := validateServer(cfg); err != nil {
		return fmt.Errorf("invalid server config: %w", err)
	}

	if err := validateAuth(cfg); err != nil {
		return fmt.Errorf("invalid auth config: %w", err)
	}

	if err := validateRuntime(cfg); err != nil {
		return fmt.Errorf("invalid runtime config: %w", err)
	}

	return nil
}

// validateServer validates the listener and HTTP-related fields.
func validateServer(cfg *Config) error {
	if cfg.Port < 0 || cfg.Port > 65535 {
		return fmt.Errorf("PORT must be between 0 and 65535, got %d", cfg.Port)
	}

	if cfg.ReadTimeout <= 0 {
		return fmt.Errorf("SERVER_READ_TIMEOUT must be positive")
	}

	if cfg.WriteTimeout <= 0 {
		return fmt.Errorf("SERVER_WRITE_TIMEOUT must be positive")
	}

	// 0 is allowed and means no idle timeout
	if cfg.IdleTimeout < 0 {
		return fmt.Errorf("SERVER_IDLE_TIMEOUT must be non-negative")
	}

	if cfg.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}

	if cfg.MaxBodyBytes <= 0 {
		return fmt.Errorf("MAX_BODY_BYTES must be positive")
	}

	if cfg.AllowOrigin != "" && cfg.AllowOrigin != "*" {
		parsed, err := url.Parse(cfg.AllowOrigin)
		if err != nil {
			return fmt.Errorf("invalid ALLOW_ORIGIN: %w", err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("ALLOW_ORIGIN must use http or https scheme")
		}
	}

	if cfg.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be non-negative")
	}

	if cfg.RateLimitRPS > 0 && cfg.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must be positive when rate limiting is enabled")
	}

	return nil
}

// validateAuth validates the token verification fields.
func validateAuth(cfg *Config) error {
	if cfg.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if cfg.ClockSkew < 0 {
		return fmt.Errorf("JWT_CLOCK_SKEW must be non-negative")
	}

	return nil
}

// validateRuntime validates environment, logging and persistence fields.
func validateRuntime(cfg *Config) error {
	switch cfg.Environment {
	case EnvDevelopment, EnvProduction, EnvTest:
	default:
		return fmt.Errorf("APP_ENV must be one of development, production, test, got %q", cfg.Environment)
	}

	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	switch cfg.LogFormat {
	case "", "json", "text":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or text, got %q", cfg.LogFormat)
	}

	if cfg.DatabaseURL != "" {
		parsed, err := url.Parse(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("invalid DATABASE_URL: %w", err)
		}
		if parsed.Scheme != "postgres" && parsed.Scheme != "postgresql" {
			return fmt.Errorf("DATABASE_URL must use postgres scheme")
		}
	}

	return nil
}
