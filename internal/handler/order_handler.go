package handler

import (
	"errors"
	"net/http"

	"cashier/internal/middleware"
	"cashier/internal/model"
	"cashier/internal/service"

	"github.com/rs/zerolog"
)

const (
	// IdempotencyKeyHeader lets a till retry a checkout safely.
	IdempotencyKeyHeader = "Idempotency-Key"

	maxIdempotencyKeyLen = 255
)

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// Create handles POST /api/orders requests. The acting user comes from
// the identity middleware, never from the body.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, model.ErrorResponse{
			Error:   model.ErrCodeUnauthorised,
			Message: "no authenticated user",
		})
		return
	}

	key := r.Header.Get(IdempotencyKeyHeader)
	if len(key) > maxIdempotencyKeyLen {
		respondError(w, r, model.NewValidationError(IdempotencyKeyHeader, "must be at most %d characters", maxIdempotencyKeyLen), h.logger)
		return
	}

	var req model.CheckoutRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.UserID = user.ID
	req.IdempotencyKey = key

	order, err := h.service.CreateOrder(r.Context(), &req)
	if err != nil {
		// A missing product is a bad cart, not a missing resource
		if errors.Is(err, model.ErrProductNotFound) {
			_, resp := errorResponse(err)
			h.logger.Warn().Err(err).Msg("checkout references unknown product")
			writeError(w, r, http.StatusUnprocessableEntity, resp)
			return
		}
		respondError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// GetByID handles GET /api/orders/{id} requests.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	order, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// List handles GET /api/orders requests, newest first.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pagination(r)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	orders, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}
