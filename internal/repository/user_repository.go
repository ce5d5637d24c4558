package repository

import (
	"context"
	"errors"

	"cashier/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const userColumns = `id, username, email, role, is_active, created_at, updated_at`

// userRepository implements the UserRepository interface using PostgreSQL.
type userRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(pool *pgxpool.Pool, logger zerolog.Logger) UserRepository {
	return &userRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "user").Logger(),
	}
}

func scanUser(row pgx.Row, u *model.User) error {
	return row.Scan(&u.ID, &u.Username, &u.Email, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
}

// Create inserts a user.
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (username, email, role, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query, user.Username, user.Email, user.Role, user.IsActive).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			r.logger.Debug().Str("username", user.Username).Msg("user already exists")
			return model.ErrUserExists
		}
		r.logger.Error().Err(err).Str("username", user.Username).Msg("failed to create user")
		return ClassifyError("create user", err)
	}

	return nil
}

// GetByID retrieves a user by ID.
func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByUsername retrieves a user by username.
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

// SetActive updates the active flag.
func (r *userRepository) SetActive(ctx context.Context, id int64, active bool) (*model.User, error) {
	query := `
		UPDATE users SET is_active = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	return r.getOne(ctx, query, id, active)
}

func (r *userRepository) getOne(ctx context.Context, query string, args ...any) (*model.User, error) {
	var u model.User
	if err := scanUser(r.pool.QueryRow(ctx, query, args...), &u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Msg("failed to query user")
		return nil, ClassifyError("query user", err)
	}
	return &u, nil
}
