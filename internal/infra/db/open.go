package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	pkgconfig "credit-gateway/internal/pkg/config"
)

// ConnectionConfig holds database connection pool configuration.
type ConnectionConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DefaultConnectionConfig returns the default connection pool configuration.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		MaxOpenConns:    25,
		MaxIdleConns:    10,
		ConnMaxLifetime: 1 * time.Hour,
		ConnMaxIdleTime: 30 * time.Minute,
	}
}

// ErrMissingDSN is returned by Open when no connection string was supplied.
var ErrMissingDSN = errors.New("database dsn not set")

const pingTimeout = 5 * time.Second

// Open creates a connection pool for dsn, applies the pool settings from the
// environment and verifies the connection with a ping.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, ErrMissingDSN
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	cfg := loadConnectionConfig()
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	slog.Info("database connection pool configured",
		slog.Int("max_open_conns", cfg.MaxOpenConns),
		slog.Int("max_idle_conns", cfg.MaxIdleConns),
		slog.Duration("conn_max_lifetime", cfg.ConnMaxLifetime),
		slog.Duration("conn_max_idle_time", cfg.ConnMaxIdleTime))

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	slog.Info("database connection established")
	return db, nil
}

// loadConnectionConfig reads pool settings from DB_* environment variables.
// Invalid values fall back to the defaults with a warning.
func loadConnectionConfig() ConnectionConfig {
	def := DefaultConnectionConfig()
	t := pkgconfig.NewTracker(slog.Default(), nil)

	return ConnectionConfig{
		MaxOpenConns:    pkgconfig.Apply(t, "DB_MAX_OPEN_CONNS", pkgconfig.Int("DB_MAX_OPEN_CONNS", def.MaxOpenConns, pkgconfig.ValidatePositiveInt)),
		MaxIdleConns:    pkgconfig.Apply(t, "DB_MAX_IDLE_CONNS", pkgconfig.Int("DB_MAX_IDLE_CONNS", def.MaxIdleConns, pkgconfig.ValidatePositiveInt)),
		ConnMaxLifetime: pkgconfig.Apply(t, "DB_CONN_MAX_LIFETIME", pkgconfig.Duration("DB_CONN_MAX_LIFETIME", def.ConnMaxLifetime, pkgconfig.ValidatePositiveDuration)),
		ConnMaxIdleTime: pkgconfig.Apply(t, "DB_CONN_MAX_IDLE_TIME", pkgconfig.Duration("DB_CONN_MAX_IDLE_TIME", def.ConnMaxIdleTime, pkgconfig.ValidatePositiveDuration)),
	}
}
