package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/portfolio/backend/pkg/auth"
)

// AdminLoginPath is where unauthenticated admin page requests are sent.
const AdminLoginPath = "/admin/login"

// RouterConfig collects everything the HTTP surface is built from.
type RouterConfig struct {
	Health         *Handler
	Contact        *ContactHandler
	Admin          *AdminHandler
	Sessions       auth.SessionValidator
	ContactLimiter *RateLimiter
	// Metrics is mounted on /metrics when set.
	Metrics http.Handler
	// StaticDir enables serving the site and the gated /admin pages.
	StaticDir string
}

// NewRouter builds the chi router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.CleanPath)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(SecurityHeaders)
	r.Use(cfg.Health.CORS)

	r.Get("/api/health", cfg.Health.Health)
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics)
	}

	r.With(cfg.ContactLimiter.Middleware).Post("/api/contact", cfg.Contact.Submit)

	r.Post("/api/admin/login", cfg.Admin.Login)
	r.Post("/api/admin/logout", cfg.Admin.Logout)

	var site http.Handler
	if cfg.StaticDir != "" {
		site = StaticSite(cfg.StaticDir)
	}

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAdmin(cfg.Sessions, AdminLoginPath))

		r.Get("/api/admin/session", cfg.Admin.Session)
		r.Get("/api/admin/submissions", cfg.Admin.List)
		r.Get("/api/admin/submissions/export", cfg.Admin.Export)
		r.Get("/api/admin/submissions/{id}", cfg.Admin.Get)
		r.Delete("/api/admin/submissions/{id}", cfg.Admin.Delete)
		r.Get("/api/admin/stats", cfg.Admin.Stats)

		if site != nil {
			r.Handle("/admin", site)
			r.Handle("/admin/*", site)
		}
	})

	if site != nil {
		r.Handle("/*", site)
	}
	return r
}
