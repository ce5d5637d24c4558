package service

import (
	"context"
	"net/mail"
	"strings"

	"cashier/internal/model"
	"cashier/internal/repository"

	"github.com/rs/zerolog"
)

// userService implements UserService.
type userService struct {
	userRepo repository.UserRepository
	logger   zerolog.Logger
}

// NewUserService creates a new user service.
func NewUserService(userRepo repository.UserRepository, logger zerolog.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		logger:   logger.With().Str("service", "user").Logger(),
	}
}

// Create registers a new user. Role defaults to cashier.
func (s *userService) Create(ctx context.Context, req *model.UserRequest) (*model.User, error) {
	if req == nil {
		return nil, model.NewValidationError("request", "must not be empty")
	}

	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, model.NewValidationError("username", "is required")
	}

	email := strings.TrimSpace(req.Email)
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, model.NewValidationError("email", "must be a valid email address")
	}

	role := req.Role
	if role == "" {
		role = model.RoleCashier
	}
	if !role.Valid() {
		return nil, model.NewValidationError("role", "must be admin or cashier")
	}

	user := &model.User{
		Username: username,
		Email:    email,
		Role:     role,
		IsActive: true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		s.logger.Warn().Err(err).Str("username", username).Msg("failed to create user")
		return nil, err
	}

	s.logger.Info().
		Int64("user_id", user.ID).
		Str("username", user.Username).
		Str("role", string(user.Role)).
		Msg("user created")

	return user, nil
}

// GetByID retrieves a user by ID.
func (s *userService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", id).Msg("failed to get user")
		return nil, err
	}
	if user == nil {
		return nil, model.ErrUserNotFound
	}
	return user, nil
}

// SetActive enables or disables a user.
func (s *userService) SetActive(ctx context.Context, id int64, active bool) (*model.User, error) {
	user, err := s.userRepo.SetActive(ctx, id, active)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", id).Msg("failed to update user status")
		return nil, err
	}
	if user == nil {
		return nil, model.ErrUserNotFound
	}

	s.logger.Info().Int64("user_id", id).Bool("active", active).Msg("user status updated")

	return user, nil
}
