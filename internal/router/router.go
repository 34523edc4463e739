// Package router sets up all HTTP routes and middleware chains for the
// mon-site server. It organizes routes into public, API, and moderation
// groups with appropriate middleware stacks.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Junito34/mon-site/internal/handlers"
	"github.com/Junito34/mon-site/internal/middleware"
	"github.com/Junito34/mon-site/internal/session"
)

// Deps collects everything the router mounts.
type Deps struct {
	Sessions   *session.Store
	Auth       *handlers.Auth
	Public     *handlers.Public
	Comments   *handlers.Comments
	Moderation *handlers.Moderation
	Users      *handlers.Users

	// SecureCookies marks the CSRF cookie Secure. False only in local
	// development over plain HTTP, matching the session cookie.
	SecureCookies bool
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up. The returned stop function releases the
// rate limiters' background cleanup goroutines.
func New(deps Deps) (chi.Router, func()) {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(deps.Sessions))

	loginLimiter := middleware.NewRateLimiter(10, time.Minute)
	commentLimiter := middleware.NewRateLimiter(20, time.Minute)
	stop := func() {
		loginLimiter.Stop()
		commentLimiter.Stop()
	}

	// Health check — no auth, no CSRF.
	r.Get("/health", healthHandler)

	// Reader-facing JSON API.
	r.Route("/api", func(r chi.Router) {
		r.Get("/articles/latest", deps.Public.LatestArticles)

		r.Route("/comments", func(r chi.Router) {
			r.Get("/{year}/{slug}", deps.Comments.List)
			r.Get("/{year}/{slug}/stream", deps.Comments.Stream)

			r.Group(func(r chi.Router) {
				r.Use(commentLimiter.Middleware)
				r.Post("/{year}/{slug}", deps.Comments.Create)
				r.Put("/{id}", deps.Comments.Update)
				r.Delete("/{id}", deps.Comments.Delete)
			})
		})
	})

	// Moderation routes — the editor SPA's backend.
	r.Route("/moderation", func(r chi.Router) {
		r.Use(middleware.NewCSRF(deps.SecureCookies))

		// Auth endpoints — accessible without a session.
		r.With(loginLimiter.Middleware).Post("/login", deps.Auth.Login)
		r.Post("/logout", deps.Auth.Logout)

		// 2FA — requires auth but NOT completed 2FA.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Post("/2fa/setup", deps.Auth.TwoFASetup)
			r.Post("/2fa/verify", deps.Auth.TwoFAVerify)
		})

		// Authenticated + 2FA-verified moderation area.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.Require2FA)

			r.Route("/articles", func(r chi.Router) {
				r.Get("/", deps.Moderation.ListArticles)
				r.Post("/", deps.Moderation.CreateArticle)
				r.Get("/{id}", deps.Moderation.GetArticle)
				r.Put("/{id}", deps.Moderation.UpdateArticle)
				r.Delete("/{id}", deps.Moderation.DeleteArticle)
			})

			// Account management — admin only.
			r.Route("/users", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Get("/", deps.Users.List)
				r.Post("/{id}/reset-2fa", deps.Users.ResetTwoFA)
			})
		})
	})

	// Public article pages, addressed by year and slug.
	r.Get("/{year}/{slug}", deps.Public.ArticlePage)

	return r, stop
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
