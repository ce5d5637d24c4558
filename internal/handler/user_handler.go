package handler

import (
	"net/http"

	"cashier/internal/middleware"
	"cashier/internal/model"
	"cashier/internal/service"

	"github.com/rs/zerolog"
)

// UserHandler handles user-related HTTP requests.
type UserHandler struct {
	service service.UserService
	logger  zerolog.Logger
}

// NewUserHandler creates a new user handler.
func NewUserHandler(service service.UserService, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		logger:  logger.With().Str("handler", "user").Logger(),
	}
}

// Me handles GET /api/users/me.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, model.ErrorResponse{
			Error:   model.ErrCodeUnauthorised,
			Message: "no authenticated user",
		})
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// Create handles POST /api/users.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.UserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.service.Create(r.Context(), &req)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// GetByID handles GET /api/users/{id}.
func (h *UserHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	user, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// SetStatus handles PATCH /api/users/{id}/status.
func (h *UserHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	var req model.UserStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.IsActive == nil {
		respondError(w, r, model.NewValidationError("isActive", "is required"), h.logger)
		return
	}

	user, err := h.service.SetActive(r.Context(), id, *req.IsActive)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
