// Package config provides configuration management for the storefront API.
// Configuration is loaded from environment variables (optionally seeded from a
// .env file) with sensible defaults, and is read-only after startup.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"strconv"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// Environment names recognized by APP_ENV.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// DefaultEnvFile is the dotenv file read by Load when present.
const DefaultEnvFile = ".env"

// Config holds the complete server configuration in a flat structure.
type Config struct {
	// Server settings
	// Host is the interface to bind; empty binds all interfaces.
	Host string `env:"HOST"`

	// Port is the TCP port to listen on.
	Port int `env:"PORT,default=4000"`

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT,default=30s"`

	// WriteTimeout is the maximum duration before timing out writes of the response.
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT,default=30s"`

	// IdleTimeout is the maximum duration to wait for the next request when keep-alives are enabled.
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT,default=120s"`

	// ShutdownTimeout bounds how long in-flight requests may drain on shutdown.
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=30s"`

	// MaxBodyBytes caps inbound request bodies.
	MaxBodyBytes int64 `env:"MAX_BODY_BYTES,default=1048576"`

	// AllowOrigin is the origin allowed by CORS.
	AllowOrigin string `env:"ALLOW_ORIGIN,default=http://localhost:5173"`

	// Auth settings
	// JWTSecret is the pre-shared HMAC secret for bearer tokens.
	JWTSecret string `env:"JWT_SECRET,required"`

	// ClockSkew is the leeway applied to token expiry checks.
	ClockSkew time.Duration `env:"JWT_CLOCK_SKEW,default=0s"`

	// Runtime settings
	// Environment is one of development, production, test.
	Environment string `env:"APP_ENV,default=development"`

	// LogLevel is a logrus level name.
	LogLevel string `env:"LOG_LEVEL,default=info"`

	// LogFormat is "json" or "text"; empty derives it from Environment.
	LogFormat string `env:"LOG_FORMAT"`

	// DatabaseURL is an optional postgres DSN for the shared persistence handle.
	DatabaseURL string `env:"DATABASE_URL"`

	// MetricsEnabled exposes GET /metrics.
	MetricsEnabled bool `env:"METRICS_ENABLED,default=true"`

	// RateLimitRPS is the per-client request rate; 0 disables limiting.
	RateLimitRPS float64 `env:"RATE_LIMIT_RPS,default=0"`

	// RateLimitBurst is the per-client burst size.
	RateLimitBurst int `env:"RATE_LIMIT_BURST,default=20"`
}

// Load reads configuration from the environment and returns a validated Config.
// A .env file in the working directory is applied first when it exists;
// variables already present in the environment take precedence.
func Load() (*Config, error) {
	return LoadFiles(DefaultEnvFile)
}

// LoadFiles is Load with explicit dotenv files. Missing files are ignored.
func LoadFiles(files ...string) (*Config, error) {
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}
	}

	cfg := &Config{}
	if err := envdecode.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode environment: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Addr returns the listen address in host:port form.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// IsProduction reports whether the server runs with APP_ENV=production.
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// ResolvedLogFormat returns LogFormat, defaulting to json in production and text elsewhere.
func (c *Config) ResolvedLogFormat() string {
	if c.LogFormat != "" {
		return c.LogFormat
	}
	if c.IsProduction() {
		return "json"
	}
	return "text"
}

// String returns a string representation of the configuration (for debugging).
// Sensitive values are redacted.
func (c *Config) String() string {
	secret := ""
	if c.JWTSecret != "" {
		secret = "[redacted]"
	}
	database := ""
	if c.DatabaseURL != "" {
		database = "[redacted]"
	}
	return fmt.Sprintf("Config{Addr: %s, Environment: %s, LogLevel: %s, LogFormat: %s, JWTSecret: %s, DatabaseURL: %s, AllowOrigin: %s, MaxBodyBytes: %d, ReadTimeout: %v, WriteTimeout: %v, IdleTimeout: %v, ShutdownTimeout: %v, MetricsEnabled: %t, RateLimitRPS: %v}",
		c.Addr(), c.Environment, c.LogLevel, c.ResolvedLogFormat(), secret, database,
		c.AllowOrigin, c.MaxBodyBytes, c.ReadTimeout, c.WriteTimeout, c.IdleTimeout,
		c.ShutdownTimeout, c.MetricsEnabled, c.RateLimitRPS)
}
