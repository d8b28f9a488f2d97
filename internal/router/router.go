package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-society-hub/internal/config"
	"go-society-hub/internal/handler"
	"go-society-hub/internal/middleware"
)

type Handlers struct {
	User   *handler.UserHandler
	Docs   *handler.DocsHandler
	Health *handler.HealthHandler
}

func New(cfg *config.Config, authMiddleware *middleware.AuthMiddleware, h Handlers) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", h.Health.Health)
	r.Get("/openapi.yaml", h.Docs.OpenAPI)
	r.Get("/swagger", h.Docs.SwaggerUI)

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/users", func(users chi.Router) {
			users.Post("/register", h.User.Register)
			users.Post("/login", h.User.Login)

			users.Group(func(authed chi.Router) {
				authed.Use(authMiddleware.RequireAuth)
				authed.Get("/{id}", h.User.Get)
				authed.Put("/{id}", h.User.Update)
				authed.Post("/{id}/change-password", h.User.ChangePassword)
			})
		})
	})

	return r
}
