// Package storage owns the process-wide database handle. The pipeline core
// only manages its lifecycle (open, ping, close); queries belong to the CRUD
// handlers that receive the handle.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/jamesprial/storefront-api/internal/logging"
)

// DriverName is the database/sql driver used for DATABASE_URL.
const DriverName = "postgres"

// ErrNotConfigured indicates no DSN was supplied.
var ErrNotConfigured = errors.New("database not configured")

// Options tunes the connection pool. Zero values keep database/sql defaults.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// PingTimeout bounds the connectivity check performed by Open.
	PingTimeout time.Duration
}

// DefaultOptions returns the pool settings used by the server.
func DefaultOptions() Options {
	return Options{
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
		PingTimeout:     5 * time.Second,
	}
}

// DB is a shared, concurrency-safe database handle.
type DB struct {
	db     *sqlx.DB
	logger logrus.FieldLogger

	closeOnce sync.Once
	closeErr  error
}

// Open connects to dsn and verifies the connection with a ping.
// The handle is closed again if the ping fails.
func Open(ctx context.Context, dsn string, opts Options, logger logrus.FieldLogger) (*DB, error) {
	if dsn == "" {
		return nil, ErrNotConfigured
	}

	db, err := sqlx.Open(DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	handle := &DB{db: db, logger: logging.OrDefault(logger)}

	pingCtx := ctx
	if opts.PingTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, opts.PingTimeout)
		defer cancel()
	}
	if err := handle.Ping(pingCtx); err != nil {
		_ = handle.Close()
		return nil, err
	}

	handle.logger.Info("Database connection established")
	return handle, nil
}

// New wraps an existing *sql.DB, e.g. one created by a test double.
func New(db *sql.DB, logger logrus.FieldLogger) *DB {
	if db == nil {
		panic("storage: db cannot be nil")
	}
	return &DB{db: sqlx.NewDb(db, DriverName), logger: logging.OrDefault(logger)}
}

// Ping reports whether the database is reachable.
func (d *DB) Ping(ctx context.Context) error {
	if err := d.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// X returns the underlying sqlx handle for query code.
func (d *DB) X() *sqlx.DB {
	return d.db
}

// Close releases the pool. It is safe to call more than once; later calls
// return the first result.
func (d *DB) Close() error {
	d.closeOnce.Do(func() {
		d.closeErr = d.db.Close()
		if d.closeErr != nil {
			d.logger.WithError(d.closeErr).Error("Failed to close database")
			return
		}
		d.logger.Info("Database connection closed")
	})
	return d.closeErr
}
