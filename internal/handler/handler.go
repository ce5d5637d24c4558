package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"cashier/internal/middleware"
	"cashier/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are gone, nothing left to tell the client
		return
	}
}

// writeError writes an error response body.
func writeError(w http.ResponseWriter, r *http.Request, status int, resp model.ErrorResponse) {
	resp.CorrelationID = middleware.RequestIDFromContext(r.Context())
	writeJSON(w, status, resp)
}

// respondError maps a service error to its HTTP status and error code.
func respondError(w http.ResponseWriter, r *http.Request, err error, logger zerolog.Logger) {
	status, resp := errorResponse(err)

	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Err(err).
		Int("status", status).
		Str("code", resp.Error).
		Str("request_id", middleware.RequestIDFromContext(r.Context())).
		Msg("request failed")

	writeError(w, r, status, resp)
}

func errorResponse(err error) (int, model.ErrorResponse) {
	var (
		validationErr *model.ValidationError
		notFoundErr   *model.ProductNotFoundError
		stockErr      *model.InsufficientStockError
	)

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, model.ErrorResponse{
			Error:   model.ErrCodeValidation,
			Message: validationErr.Error(),
			Field:   validationErr.Field,
		}
	case errors.As(err, &stockErr):
		return http.StatusConflict, model.ErrorResponse{
			Error:   model.ErrCodeInsufficientStock,
			Message: stockErr.Error(),
			Details: map[string]any{
				"productId": stockErr.ProductID,
				"requested": stockErr.Requested,
				"available": stockErr.Available,
				"shortfall": stockErr.Shortfall(),
			},
		}
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound, model.ErrorResponse{
			Error:   model.ErrCodeProductNotFound,
			Message: notFoundErr.Error(),
			Details: map[string]any{"productId": notFoundErr.ProductID},
		}
	}

	for _, m := range []struct {
		target *model.DomainError
		status int
	}{
		{model.ErrProductNotFound, http.StatusNotFound},
		{model.ErrOrderNotFound, http.StatusNotFound},
		{model.ErrUserNotFound, http.StatusNotFound},
		{model.ErrProductInUse, http.StatusConflict},
		{model.ErrUserExists, http.StatusConflict},
		{model.ErrConflict, http.StatusConflict},
		{model.ErrDuplicateRequest, http.StatusConflict},
		{model.ErrStorageFailure, http.StatusServiceUnavailable},
	} {
		if errors.Is(err, m.target) {
			return m.status, model.ErrorResponse{Error: m.target.Code, Message: m.target.Message}
		}
	}

	return http.StatusInternalServerError, model.ErrorResponse{
		Error:   model.ErrCodeInternalError,
		Message: "internal server error",
	}
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrorResponse{
			Error:   model.ErrCodeInvalidJSON,
			Message: "invalid request body",
		})
		return false
	}
	return true
}

// pathID parses the {id} route parameter.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, model.NewValidationError("id", "must be a positive integer")
	}
	return id, nil
}

// pagination reads limit and offset query parameters. Zero values are
// defaulted by the services.
func pagination(r *http.Request) (limit, offset int, err error) {
	if s := r.URL.Query().Get("limit"); s != "" {
		if limit, err = strconv.Atoi(s); err != nil {
			return 0, 0, model.NewValidationError("limit", "must be an integer")
		}
	}
	if s := r.URL.Query().Get("offset"); s != "" {
		if offset, err = strconv.Atoi(s); err != nil {
			return 0, 0, model.NewValidationError("offset", "must be an integer")
		}
	}
	return limit, offset, nil
}
