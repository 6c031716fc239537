// Package router sets up all HTTP routes and middleware chains for the
// Lexipedia API. It organizes routes into public, authenticated, and
// admin groups with appropriate middleware stacks.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"lexipedia/internal/handlers"
	"lexipedia/internal/middleware"
	"lexipedia/internal/session"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(sessionStore *session.Store, auth *handlers.Auth, public *handlers.Public, entries *handlers.Entries, admin *handlers.Admin) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(sessionStore))

	// Health check — no auth.
	r.Get("/health", healthHandler)

	// Brute-force limiter for credential endpoints.
	loginLimiter := middleware.NewRateLimiter(10, time.Minute)
	// Spam limiter for interaction endpoints.
	writeLimiter := middleware.NewRateLimiter(60, time.Minute)

	// Auth.
	r.Route("/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(loginLimiter.Middleware)
			r.Post("/register", auth.Register)
			r.Post("/login", auth.Login)
		})
		r.Post("/logout", auth.Logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/me", auth.Me)
			// 2FA endpoints need auth but NOT completed 2FA.
			r.Post("/2fa/setup", auth.TwoFASetup)
			r.Post("/2fa/verify", auth.TwoFAVerify)
		})
	})

	// Public reads.
	r.Get("/", public.Home)
	r.Get("/entries", public.EntriesList)
	r.Get("/entries/{slug}", public.EntryDetail)
	r.Get("/categories", public.CategoriesList)
	r.Get("/categories/{slug}", public.CategoryDetail)
	r.Get("/tags", public.TagsList)

	// Authenticated writes.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Use(middleware.Require2FA)
		r.Use(writeLimiter.Middleware)

		r.Post("/entries", entries.Create)
		r.Put("/entries/{slug}", entries.Update)
		r.Delete("/entries/{slug}", entries.Delete)

		r.Post("/entries/{slug}/like", entries.ToggleLike)
		r.Post("/entries/{slug}/comments", entries.AddComment)
		r.Post("/entries/{slug}/tags", entries.AttachTag)
		r.Delete("/entries/{slug}/tags/{name}", entries.DetachTag)
		r.Post("/entries/{slug}/images", entries.UploadImage)
		r.Delete("/images/{id}", entries.DeleteImage)

		r.Post("/comments/{id}/deactivate", entries.SetCommentActive(false))
		r.Post("/comments/{id}/activate", entries.SetCommentActive(true))
	})

	// Admin area.
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Use(middleware.Require2FA)
		r.Use(middleware.RequireAdmin)

		r.Post("/categories", admin.CategoryCreate)
		r.Put("/categories/{id}", admin.CategoryUpdate)
		r.Delete("/categories/{id}", admin.CategoryDelete)

		r.Get("/users", admin.UsersList)
		r.Post("/users/{id}/reset-2fa", admin.UserResetTwoFA)
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
