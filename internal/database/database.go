// Package database owns the PostgreSQL connection pool and the schema.
package database

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"cashier/internal/config"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const applicationName = "cashier"

// NewPool creates the PostgreSQL connection pool and waits until the
// database answers a ping, retrying with backoff up to cfg.ConnectAttempts.
func NewPool(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConnections)
	poolConfig.MinConns = int32(cfg.MinConnections)
	poolConfig.MaxConnLifetime = time.Duration(cfg.MaxConnLifetime) * time.Second
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute
	applyRuntimeParams(poolConfig.ConnConfig.RuntimeParams, cfg)

	logger.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Database).
		Int("max_connections", cfg.MaxConnections).
		Dur("lock_timeout", cfg.LockTimeout).
		Msg("creating database connection pool")

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	attempts := max(cfg.ConnectAttempts, 1)
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(attempts-1)), ctx)
	notify := func(err error, wait time.Duration) {
		logger.Warn().Err(err).Dur("backoff", wait).Msg("database not ready, retrying")
	}

	if err := backoff.RetryNotify(func() error { return pool.Ping(ctx) }, policy, notify); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info().Msg("database connection pool created successfully")

	return pool, nil
}

// applyRuntimeParams sets the session parameters every pooled connection
// starts with.
func applyRuntimeParams(params map[string]string, cfg config.DatabaseConfig) {
	params["application_name"] = applicationName
	if cfg.LockTimeout > 0 {
		params["lock_timeout"] = strconv.FormatInt(cfg.LockTimeout.Milliseconds(), 10)
	}
}
