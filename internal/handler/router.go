package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/taskflow/taskflow-go/internal/crypto"
	"github.com/taskflow/taskflow-go/internal/middleware"
)

// RouterConfig collects what NewRouter wires together.
type RouterConfig struct {
	Auth           *AuthHandler
	Tasks          *TaskHandler
	Categories     *CategoryHandler
	Tokens         *crypto.TokenService
	AllowedOrigins []string
	// AuthRateLimit and AuthBurst bound the unauthenticated auth endpoints per client IP.
	AuthRateLimit float64
	AuthBurst     int
	// TrustProxy takes the client IP from X-Forwarded-For / X-Real-IP. Enable
	// it only when a reverse proxy overwrites those headers.
	TrustProxy bool
}

// NewRouter builds the HTTP API. ctx bounds background work such as the rate
// limiter's sweeper.
func NewRouter(ctx context.Context, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	if cfg.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	auth := middleware.JWTAuth(cfg.Tokens)

	r.Route("/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(ctx, cfg.AuthRateLimit, cfg.AuthBurst))
			r.Post("/register", wrap(cfg.Auth.HandleRegister))
			r.Post("/login", wrap(cfg.Auth.HandleLogin))
			r.Post("/refresh", wrap(cfg.Auth.HandleRefresh))
		})
		r.With(auth).Post("/logout", wrap(cfg.Auth.HandleLogout))
	})

	r.Route("/tasks", func(r chi.Router) {
		r.Use(auth)
		r.Get("/", wrap(cfg.Tasks.HandleList))
		r.Post("/", wrap(cfg.Tasks.HandleCreate))
		r.Get("/analytics", wrap(cfg.Tasks.HandleAnalytics))
		r.Get("/{id}", wrap(cfg.Tasks.HandleGet))
		r.Patch("/{id}", wrap(cfg.Tasks.HandleUpdate))
		r.Patch("/{id}/toggle", wrap(cfg.Tasks.HandleToggle))
		r.Delete("/{id}", wrap(cfg.Tasks.HandleDelete))
	})

	r.Route("/categories", func(r chi.Router) {
		r.Use(auth)
		r.Get("/", wrap(cfg.Categories.HandleList))
		r.Post("/", wrap(cfg.Categories.HandleCreate))
		r.Delete("/{id}", wrap(cfg.Categories.HandleDelete))
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, envelope{Success: false, Message: "route not found"})
	})

	return r
}
