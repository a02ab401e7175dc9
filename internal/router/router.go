// Package router sets up all HTTP routes and middleware chains for the legal
// updates site. Routes are organized into the permalink router, the public
// listing pages and API, and the admin panel.
package router

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"legalupdates/internal/handlers"
	"legalupdates/internal/metrics"
	"legalupdates/internal/middleware"
	"legalupdates/internal/permalink"
)

// Deps carries everything the router wires together.
type Deps struct {
	Sessions   middleware.SessionLoader
	Permalinks *permalink.Router
	Admin      *handlers.Admin
	Auth       *handlers.Auth
	Public     *handlers.Public
	Metrics    *metrics.Metrics

	// Static holds the files served under /static/. May be nil.
	Static fs.FS
	// Limiter throttles login attempts and listing requests. May be nil.
	Limiter middleware.Limiter
}

// Options are the site settings that shape routing.
type Options struct {
	BasePath      string
	SecureCookies bool
	CORSOrigins   []string
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(d Deps, opts Options) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.NewSecureHeaders(opts.SecureCookies))
	r.Use(middleware.LoadSession(d.Sessions))
	r.Use(middleware.NewCSRF(opts.SecureCookies))

	// Permalinks are claimed before any route matching.
	if d.Permalinks != nil {
		r.Use(d.Permalinks.Middleware)
	}

	r.Get("/health", healthHandler)
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}
	if d.Static != nil {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(d.Static))))
	}

	adminRoutes(r, d)

	if opts.BasePath == "" {
		publicRoutes(r, d, opts)
	} else {
		r.Route(opts.BasePath, func(r chi.Router) {
			publicRoutes(r, d, opts)
		})
	}

	return r
}

// publicRoutes registers the tab page and the listing API.
func publicRoutes(r chi.Router, d Deps, opts Options) {
	if d.Static != nil && opts.BasePath != "" {
		prefix := opts.BasePath + "/static/"
		r.Handle("/static/*", http.StripPrefix(prefix, http.FileServer(http.FS(d.Static))))
	}

	r.Get("/legal-updates", d.Public.Index)
	r.Get("/legal-updates/", d.Public.Index)

	r.Route("/legal-updates/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   allowedOrigins(opts.CORSOrigins),
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Content-Type", middleware.CSRFHeaderName},
			AllowCredentials: len(opts.CORSOrigins) > 0,
			MaxAge:           300,
		}))

		r.With(limit(d.Limiter, "listing")).Post("/updates", d.Public.ListingFragment)
		r.Get("/categories", d.Public.Categories)
		r.Get("/categories/{slug}/updates", d.Public.CategoryUpdates)
	})
}

// adminRoutes registers the authenticated admin panel.
func adminRoutes(r chi.Router, d Deps) {
	r.Route("/admin", func(r chi.Router) {
		// Auth pages, accessible without a session.
		r.Get("/login", d.Auth.LoginPage)
		r.With(limit(d.Limiter, "login")).Post("/login", d.Auth.LoginSubmit)
		r.Post("/logout", d.Auth.Logout)

		// 2FA requires auth but not completed 2FA.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/2fa/setup", d.Auth.TwoFASetupPage)
			r.Get("/2fa/verify", d.Auth.TwoFAVerifyPage)
			r.Post("/2fa/verify", d.Auth.TwoFAVerifySubmit)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.Require2FA)
			r.Use(middleware.RequireEditor)

			r.Get("/", func(w http.ResponseWriter, r *http.Request) {
				http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
			})
			r.Get("/dashboard", d.Admin.Dashboard)

			r.Route("/updates", func(r chi.Router) {
				r.Get("/", d.Admin.UpdatesList)
				r.Get("/new", d.Admin.UpdateNew)
				r.Post("/", d.Admin.UpdateCreate)
				r.Get("/{id}", d.Admin.UpdateEdit)
				r.Post("/{id}", d.Admin.UpdateSave)
				r.Post("/{id}/delete", d.Admin.UpdateDelete)
			})

			// Categories are admin only.
			r.Route("/categories", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Get("/", d.Admin.CategoriesList)
				r.Get("/new", d.Admin.CategoryNew)
				r.Post("/", d.Admin.CategoryCreate)
				r.Get("/{id}", d.Admin.CategoryEdit)
				r.Post("/{id}", d.Admin.CategorySave)
				r.Post("/{id}/delete", d.Admin.CategoryDelete)
			})
		})
	})
}

// limit applies l under scope, or nothing when l is nil.
func limit(l middleware.Limiter, scope string) func(http.Handler) http.Handler {
	if l == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return middleware.RateLimit(l, scope)
}

// allowedOrigins falls back to any origin when none are configured.
func allowedOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
