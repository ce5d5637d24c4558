package router

import (
	"net/http"

	"cashier/internal/handler"
	"cashier/internal/metrics"
	"cashier/internal/middleware"
	"cashier/internal/model"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers the router mounts.
type Handlers struct {
	Product *handler.ProductHandler
	Order   *handler.OrderHandler
	User    *handler.UserHandler
	System  *handler.SystemHandler
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, users middleware.UserLookup, apiKey string, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Outermost first: Recovery -> RequestID -> Logging -> Metrics -> CORS -> APIKeyAuth
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics)
	r.Use(middleware.CORS)
	r.Use(middleware.APIKeyAuth(apiKey, logger))

	r.Get("/health", h.System.Health)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Identity(users, logger))

		adminOnly := middleware.RequireRole(model.RoleAdmin)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.Product.GetAll)
			r.Get("/{id}", h.Product.GetByID)

			r.With(adminOnly).Post("/", h.Product.Create)
			r.With(adminOnly).Put("/{id}", h.Product.Update)
			r.With(adminOnly).Delete("/{id}", h.Product.Delete)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.Order.List)
			r.Post("/", h.Order.Create)
			r.Get("/{id}", h.Order.GetByID)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/me", h.User.Me)

			r.With(adminOnly).Post("/", h.User.Create)
			r.With(adminOnly).Get("/{id}", h.User.GetByID)
			r.With(adminOnly).Patch("/{id}/status", h.User.SetStatus)
		})

		r.With(adminOnly).Post("/sync", h.System.Sync)
	})

	return r
}
