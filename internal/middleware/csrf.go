package middleware

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"log/slog"
	"net/http"
)

const (
	csrfTokenLength = 32 // bytes; 64 hex chars

	// CSRFCookieName is the cookie that holds the CSRF token.
	CSRFCookieName = "lu_csrf"

	// CSRFHeaderName is the header HTMX and the tab script send the token in.
	CSRFHeaderName = "X-CSRF-Token"

	// CSRFFormField is the hidden form field name for admin forms.
	CSRFFormField = "csrf_token"

	// NonceFormField is the field the public listing script posts the token in.
	NonceFormField = "nonce"

	csrfKey contextKey = "csrf_token"
)

// NewCSRF returns double-submit cookie protection. Every response carries a
// token cookie, available to templates through CSRFTokenFromCtx. Requests
// other than GET, HEAD and OPTIONS must echo the token in the header, the
// admin form field or the listing nonce field; listing API failures are
// answered with a JSON envelope.
func NewCSRF(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := GetCSRFToken(r)
			if token == "" {
				var err error
				token, err = generateCSRFToken()
				if err != nil {
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     CSRFCookieName,
					Value:    token,
					Path:     "/",
					HttpOnly: false, // read by JS for hx-headers
					Secure:   secure,
					SameSite: http.SameSiteStrictMode,
				})
			}

			r = r.WithContext(context.WithValue(r.Context(), csrfKey, token))

			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			if !ValidCSRFToken(token, submittedToken(r)) {
				slog.Warn("csrf token rejected", "method", r.Method, "path", r.URL.Path)
				if isAPIRequest(r) {
					apiError(w, http.StatusForbidden, "Security check failed")
					return
				}
				http.Error(w, "CSRF token mismatch", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// submittedToken checks the header first (HTMX, fetch), then the admin form
// field, then the listing nonce field.
func submittedToken(r *http.Request) string {
	if v := r.Header.Get(CSRFHeaderName); v != "" {
		return v
	}
	if v := r.FormValue(CSRFFormField); v != "" {
		return v
	}
	return r.FormValue(NonceFormField)
}

// ValidCSRFToken compares a submitted token with the expected one in
// constant time. Empty tokens never match.
func ValidCSRFToken(expected, submitted string) bool {
	if expected == "" || submitted == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(submitted)) == 1
}

// CSRFTokenFromCtx returns the token stored by the CSRF middleware, or "".
func CSRFTokenFromCtx(ctx context.Context) string {
	token, _ := ctx.Value(csrfKey).(string)
	return token
}

// GetCSRFToken extracts the current CSRF token from the request cookie.
func GetCSRFToken(r *http.Request) string {
	cookie, err := r.Cookie(CSRFCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func generateCSRFToken() (string, error) {
	b := make([]byte, csrfTokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
