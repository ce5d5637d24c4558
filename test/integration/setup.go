// Package integration runs the HTTP API and the checkout engine against a
// real PostgreSQL started with testcontainers.
package integration

import (
	"context"
	"testing"
	"time"

	"cashier/internal/database"
	"cashier/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container with the application
// schema and the default admin user.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		t.Fatalf("failed to parse connection string: %v", err)
	}
	poolConfig.MaxConns = 20

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := database.Migrate(ctx, pool, zerolog.Nop()); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// CleanupDB removes all orders, products and non-admin users.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()
	if _, err := pool.Exec(ctx, `TRUNCATE order_items, orders, products RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}
	if _, err := pool.Exec(ctx, `DELETE FROM users WHERE username <> $1`, database.DefaultAdminUsername); err != nil {
		t.Fatalf("failed to delete users: %v", err)
	}
}

// SeedProduct inserts one product and returns its id.
func SeedProduct(t *testing.T, pool *pgxpool.Pool, name, price string, stock int) int64 {
	t.Helper()

	var id int64
	err := pool.QueryRow(context.Background(), `
		INSERT INTO products (name, price, description, stock)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, name, decimal.RequireFromString(price), name+" description", stock).Scan(&id)
	if err != nil {
		t.Fatalf("failed to seed product %s: %v", name, err)
	}
	return id
}

// CreateUser inserts a user and returns its id.
func CreateUser(t *testing.T, pool *pgxpool.Pool, username string, role model.Role, active bool) int64 {
	t.Helper()

	var id int64
	err := pool.QueryRow(context.Background(), `
		INSERT INTO users (username, email, role, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, username, username+"@shop.test", string(role), active).Scan(&id)
	if err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return id
}

// AdminID returns the id of the default admin user.
func AdminID(t *testing.T, pool *pgxpool.Pool) int64 {
	t.Helper()

	var id int64
	err := pool.QueryRow(context.Background(), `SELECT id FROM users WHERE username = $1`, database.DefaultAdminUsername).Scan(&id)
	if err != nil {
		t.Fatalf("failed to find admin user: %v", err)
	}
	return id
}

// Stock returns the current stock of a product.
func Stock(t *testing.T, pool *pgxpool.Pool, productID int64) int {
	t.Helper()

	var stock int
	if err := pool.QueryRow(context.Background(), `SELECT stock FROM products WHERE id = $1`, productID).Scan(&stock); err != nil {
		t.Fatalf("failed to read stock of product %d: %v", productID, err)
	}
	return stock
}

// CountRows returns the number of rows in table.
func CountRows(t *testing.T, pool *pgxpool.Pool, table string) int {
	t.Helper()

	var n int
	if err := pool.QueryRow(context.Background(), `SELECT COUNT(*) FROM `+pgx.Identifier{table}.Sanitize()).Scan(&n); err != nil {
		t.Fatalf("failed to count %s: %v", table, err)
	}
	return n
}
