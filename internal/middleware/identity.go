package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"cashier/internal/model"

	"github.com/rs/zerolog"
)

// UserIDHeader is set by the upstream authentication gateway.
const UserIDHeader = "X-User-ID"

type userKey struct{}

// UserLookup resolves the acting user.
type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// Identity resolves the X-User-ID header to an active user and stores it in
// the request context.
func Identity(users UserLookup, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(UserIDHeader)
			id, err := strconv.ParseInt(raw, 10, 64)
			if raw == "" || err != nil || id <= 0 {
				logger.Warn().Str("path", r.URL.Path).Str("user_id", raw).Msg("missing or malformed user id")
				writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthorised, "missing or malformed "+UserIDHeader+" header")
				return
			}

			user, err := users.GetByID(r.Context(), id)
			switch {
			case errors.Is(err, model.ErrUserNotFound):
				logger.Warn().Int64("user_id", id).Msg("unknown user")
				writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthorised, "unknown user")
				return
			case errors.Is(err, model.ErrStorageFailure):
				writeError(w, r, http.StatusServiceUnavailable, model.ErrCodeStorageFailure, model.ErrStorageFailure.Message)
				return
			case err != nil:
				logger.Error().Err(err).Int64("user_id", id).Msg("failed to resolve user")
				writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "failed to resolve user")
				return
			}

			if !user.IsActive {
				logger.Warn().Int64("user_id", id).Msg("inactive user")
				writeError(w, r, http.StatusForbidden, model.ErrCodeForbidden, "user is inactive")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// RequireRole rejects users whose role is not listed. It must run after Identity.
func RequireRole(roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthorised, "no authenticated user")
				return
			}

			for _, role := range roles {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			writeError(w, r, http.StatusForbidden, model.ErrCodeForbidden, "insufficient role")
		})
	}
}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// UserFromContext returns the user resolved by Identity.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userKey{}).(*model.User)
	return user, ok && user != nil
}
