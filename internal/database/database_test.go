package database

import (
	"context"
	"testing"
	"time"

	"cashier/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startPostgres starts a PostgreSQL testcontainer and returns its connection string.
func startPostgres(t *testing.T) string {
	if testing.Short() {
		t.Skip("Skipping database test in short mode")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgContainer.Terminate(ctx) })

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	return connStr
}

func TestNewPool_InvalidHost(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cfg := config.DatabaseConfig{
		Host:            "invalid-host.invalid",
		Port:            5432,
		User:            "user",
		Password:        "pass",
		Database:        "testdb",
		MaxConnections:  2,
		MinConnections:  1,
		MaxConnLifetime: 60,
		ConnectAttempts: 1,
	}

	pool, err := NewPool(ctx, cfg, zerolog.Nop())

	require.Error(t, err)
	assert.Nil(t, pool)
}

func TestMigrate(t *testing.T) {
	connStr := startPostgres(t)
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	defer pool.Close()

	// Running twice must not fail or duplicate the admin user
	require.NoError(t, Migrate(ctx, pool, zerolog.Nop()))
	require.NoError(t, Migrate(ctx, pool, zerolog.Nop()))

	var count int
	err = pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE username = $1 AND role = 'admin'`,
		DefaultAdminUsername).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	for _, table := range []string{"products", "orders", "order_items"} {
		var exists bool
		err := pool.QueryRow(ctx, `SELECT to_regclass($1) IS NOT NULL`, table).Scan(&exists)
		require.NoError(t, err)
		assert.True(t, exists, "table %s should exist", table)
	}
}

func TestMigrate_StockCannotGoNegative(t *testing.T) {
	connStr := startPostgres(t)
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	defer pool.Close()

	require.NoError(t, Migrate(ctx, pool, zerolog.Nop()))

	_, err = pool.Exec(ctx,
		`INSERT INTO products (name, price, description, stock) VALUES ('Widget', 1.00, 'test', 1)`)
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `UPDATE products SET stock = stock - 2`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "check constraint")
}

func TestApplyRuntimeParams(t *testing.T) {
	t.Run("lock timeout in milliseconds", func(t *testing.T) {
		params := map[string]string{}
		applyRuntimeParams(params, config.DatabaseConfig{LockTimeout: 1500 * time.Millisecond})

		assert.Equal(t, "cashier", params["application_name"])
		assert.Equal(t, "1500", params["lock_timeout"])
	})

	t.Run("zero lock timeout leaves the server default", func(t *testing.T) {
		params := map[string]string{}
		applyRuntimeParams(params, config.DatabaseConfig{})

		assert.NotContains(t, params, "lock_timeout")
	})
}

func TestNewPool_SessionSettings(t *testing.T) {
	connStr := startPostgres(t)
	ctx := context.Background()

	poolCfg, err := pgxpool.ParseConfig(connStr)
	require.NoError(t, err)
	conn := poolCfg.ConnConfig

	cfg := config.DatabaseConfig{
		Host:            conn.Host,
		Port:            int(conn.Port),
		User:            conn.User,
		Password:        conn.Password,
		Database:        conn.Database,
		MaxConnections:  2,
		MinConnections:  1,
		MaxConnLifetime: 60,
		LockTimeout:     750 * time.Millisecond,
		ConnectAttempts: 3,
	}

	pool, err := NewPool(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	defer pool.Close()

	var lockTimeout, appName string
	require.NoError(t, pool.QueryRow(ctx, `SHOW lock_timeout`).Scan(&lockTimeout))
	require.NoError(t, pool.QueryRow(ctx, `SHOW application_name`).Scan(&appName))

	assert.Equal(t, "750ms", lockTimeout)
	assert.Equal(t, "cashier", appName)
}
