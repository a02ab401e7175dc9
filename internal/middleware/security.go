// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net/http"
	"strings"
)

// NewSecureHeaders returns middleware that sets the site's security headers.
// hsts adds Strict-Transport-Security and should only be set behind HTTPS.
// Admin pages are additionally kept out of search engines.
func NewSecureHeaders(hsts bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "SAMEORIGIN")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Permissions-Policy", "interest-cohort=(), camera=(), microphone=()")
			h.Set("Content-Security-Policy", "frame-ancestors 'self'")

			if hsts {
				h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}
			if strings.HasPrefix(r.URL.Path, "/admin") {
				h.Set("X-Robots-Tag", "noindex, nofollow")
			}

			next.ServeHTTP(w, r)
		})
	}
}
