// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"legalupdates/internal/models"
	"legalupdates/internal/session"
)

type contextKey string

// SessionKey is the context key LoadSession stores *session.Data under.
const SessionKey contextKey = "session"

// SessionLoader is satisfied by *session.Store.
type SessionLoader interface {
	Get(ctx context.Context, r *http.Request) (*session.Data, error)
}

// LoadSession puts the visitor's session, if any, into the request context.
// A store failure is logged and the request continues anonymously.
func LoadSession(store SessionLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			data, err := store.Get(r.Context(), r)
			if err != nil {
				slog.Warn("session load failed", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			if data != nil {
				r = r.WithContext(context.WithValue(r.Context(), SessionKey, data))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// redirect sends the browser to target. HTMX requests get HX-Redirect so
// the whole page navigates instead of swapping the login form into a panel.
func redirect(w http.ResponseWriter, r *http.Request, target string) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// RequireAuth sends anonymous visitors to the login page.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if SessionFromCtx(r.Context()) == nil {
			redirect(w, r, "/admin/login")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Require2FA holds a signed-in user at the TOTP step until it is passed.
func Require2FA(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sess := SessionFromCtx(r.Context()); sess != nil && !sess.TwoFADone {
			redirect(w, r, "/admin/2fa/setup")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole answers 403 unless the session's role satisfies allowed.
// It runs after RequireAuth and Require2FA.
func RequireRole(allowed func(models.Role) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := SessionFromCtx(r.Context())
			if sess == nil || !allowed(models.Role(sess.Role)) {
				slog.Warn("access denied", "path", r.URL.Path, "role", roleOf(sess))
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireEditor admits roles that may author legal updates.
func RequireEditor(next http.Handler) http.Handler {
	return RequireRole(models.Role.CanManageUpdates)(next)
}

// RequireAdmin admits administrators only; categories sit behind it.
func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole(models.Role.IsAdmin)(next)
}

func roleOf(sess *session.Data) string {
	if sess == nil {
		return ""
	}
	return sess.Role
}

// SessionFromCtx returns the loaded session, or nil for anonymous requests.
func SessionFromCtx(ctx context.Context) *session.Data {
	data, _ := ctx.Value(SessionKey).(*session.Data)
	return data
}
