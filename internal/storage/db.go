package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
)

// DB wraps the database connection and provides health checks
type DB struct {
	conn         *sqlx.DB
	queryTimeout time.Duration
}

// DBConfig holds database configuration
type DBConfig struct {
	// DSN is a lib/pq connection string or postgres:// URL
	DSN string

	// Pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	// Query timeouts
	QueryTimeout time.Duration
}

// DefaultDBConfig returns default database configuration
func DefaultDBConfig() DBConfig {
	return DBConfig{
		MaxOpenConns:    10,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 1 * time.Minute,
		QueryTimeout:    5 * time.Second,
	}
}

// NewDB connects to PostgreSQL and configures the pool
func NewDB(cfg DBConfig) (*DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database DSN is required")
	}

	conn, err := sqlx.Connect("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	conn.SetMaxOpenConns(cfg.MaxOpenConns)
	conn.SetMaxIdleConns(cfg.MaxIdleConns)
	conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	conn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return &DB{conn: conn, queryTimeout: cfg.QueryTimeout}, nil
}

// NewDBFromConn wraps an existing connection. Used with sqlmock in tests.
func NewDBFromConn(conn *sqlx.DB, queryTimeout time.Duration) *DB {
	return &DB{conn: conn, queryTimeout: queryTimeout}
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// Health pings the database and runs a trivial query
func (db *DB) Health(ctx context.Context) error {
	if err := db.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	var result int
	if err := db.conn.GetContext(ctx, &result, "SELECT 1"); err != nil {
		return fmt.Errorf("health check query failed: %w", err)
	}

	return nil
}

const credentialsSchema = `
CREATE TABLE IF NOT EXISTS provider_credentials (
	id                UUID PRIMARY KEY,
	provider          TEXT NOT NULL UNIQUE,
	display_name      TEXT NOT NULL DEFAULT '',
	encrypted_api_key TEXT NOT NULL,
	enabled           BOOLEAN NOT NULL DEFAULT TRUE,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// Migrate creates the tables this service owns if they are absent
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, credentialsSchema); err != nil {
		return fmt.Errorf("failed to create provider_credentials: %w", err)
	}
	return nil
}

// withTimeout bounds a repository query by the configured timeout
func (db *DB) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if db.queryTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, db.queryTimeout)
}

// NewCredentialRepository creates a new credential repository
func (db *DB) NewCredentialRepository() *CredentialRepository {
	return NewCredentialRepository(db)
}
