package database

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

//go:embed schema.sql
var schema string

// Default administrator created on first start.
const (
	DefaultAdminUsername = "admin"
	DefaultAdminEmail    = "admin@cashier.local"
)

// Migrate applies the schema and makes sure the default admin user exists.
// It is idempotent and safe to run on every start.
func Migrate(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	tag, err := pool.Exec(ctx, `
		INSERT INTO users (username, email, role, is_active)
		VALUES ($1, $2, 'admin', TRUE)
		ON CONFLICT (username) DO NOTHING
	`, DefaultAdminUsername, DefaultAdminEmail)
	if err != nil {
		return fmt.Errorf("failed to create default admin user: %w", err)
	}

	if tag.RowsAffected() > 0 {
		logger.Info().Str("username", DefaultAdminUsername).Msg("default admin user created")
	}

	logger.Info().Msg("database schema is up to date")

	return nil
}
