package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/reelbase/catalog/middleware"
	"github.com/reelbase/catalog/service"
)

type RouterConfig struct {
	Guard       *service.AccessGuard
	Auth        *AuthHandler
	Videos      *VideosHandler
	Health      *HealthHandler
	Media       *MediaHandler // nil leaves /api/media unmounted
	CORSOrigins []string
	Log         *zap.Logger
}

func NewRouter(c RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.CORS(c.CORSOrigins))
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(c.Log))
	r.Use(chimw.Recoverer)

	r.Get("/health", c.Health.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Authenticate(c.Guard, c.Log))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", c.Auth.Register)
			r.Post("/login", c.Auth.Login)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth(c.Log))
				r.Get("/profile", c.Auth.Profile)
				r.Put("/profile", c.Auth.UpdateProfile)
				r.Post("/logout", c.Auth.Logout)
				r.Post("/watchlist/{videoId}", c.Auth.AddToWatchlist)
				r.Delete("/watchlist/{videoId}", c.Auth.RemoveFromWatchlist)
			})
		})

		r.Route("/videos", func(r chi.Router) {
			r.Get("/", c.Videos.List)
			r.Get("/featured", c.Videos.Featured)
			r.Get("/trending", c.Videos.Trending)
			r.Get("/genre/{genre}", c.Videos.ByGenre)
			r.Get("/{id}", c.Videos.Get)
			r.Get("/{id}/stream", c.Videos.Stream)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin(c.Log))
				r.Post("/", c.Videos.Create)
				r.Put("/{id}", c.Videos.Update)
				r.Delete("/{id}", c.Videos.Delete)
				r.Patch("/{id}/publish", c.Videos.TogglePublish)
				r.Patch("/{id}/feature", c.Videos.ToggleFeature)
			})
		})

		if c.Media != nil {
			r.With(middleware.RequireAdmin(c.Log)).Post("/media", c.Media.Upload)
		}
	})

	return r
}
