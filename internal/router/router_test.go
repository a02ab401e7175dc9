// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router tests verify the HTTP routing configuration, middleware
// chains, and the health endpoint.
package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/uuid"

	"legalupdates/internal/handlers"
	"legalupdates/internal/metrics"
	"legalupdates/internal/models"
	"legalupdates/internal/permalink"
	"legalupdates/internal/render"
	"legalupdates/internal/session"
)

type fakeSessions struct {
	data *session.Data
}

func (f *fakeSessions) Get(context.Context, *http.Request) (*session.Data, error) {
	return f.data, nil
}

// fakeContent serves one category with one update.
type fakeContent struct{}

var sampleUpdate = models.Update{
	ID:        7,
	Heading:   "New Parental Leave Rules",
	Content:   "<p>Leave is extended.</p>",
	Category:  "employment",
	CreatedAt: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
}

func (fakeContent) List(context.Context) ([]models.Category, error) {
	return []models.Category{{ID: 1, Slug: "employment", Name: "Employment"}}, nil
}

func (fakeContent) FindBySlug(_ context.Context, slug string) (*models.Category, error) {
	if slug == "employment" {
		return &models.Category{ID: 1, Slug: "employment", Name: "Employment"}, nil
	}
	return nil, nil
}

func (fakeContent) ListByCategory(_ context.Context, category string) ([]models.Update, error) {
	if category == "employment" {
		return []models.Update{sampleUpdate}, nil
	}
	return nil, nil
}

// updateFinder adapts fakeContent to permalink.UpdateFinder.
type updateFinder struct{ fakeContent }

func (updateFinder) FindBySlug(context.Context, string, string) (*models.Update, error) {
	return nil, nil
}

func newTestRouter(t *testing.T, sess *session.Data, opts Options) http.Handler {
	t.Helper()
	return New(testDeps(t, sess, opts), opts)
}

func testDeps(t *testing.T, sess *session.Data, opts Options) Deps {
	t.Helper()
	renderer, err := render.New(true)
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}
	m := metrics.New()
	content := fakeContent{}
	resolver := permalink.NewResolver(updateFinder{}, "computed", opts.BasePath)

	d := Deps{
		Sessions: &fakeSessions{data: sess},
		Permalinks: permalink.NewRouter(resolver, content, renderer, m, permalink.RouterConfig{
			SiteName: "Example Firm",
			HomeURL:  "https://example.com" + opts.BasePath,
			BasePath: opts.BasePath,
		}),
		Admin:   handlers.NewAdmin(renderer, nil, nil, nil, handlers.AdminOptions{}),
		Auth:    handlers.NewAuth(renderer, nil, nil),
		Public:  handlers.NewPublic(renderer, content, nil, handlers.PublicOptions{SiteName: "Example Firm", BasePath: opts.BasePath}),
		Metrics: m,
		Static:  fstest.MapFS{"legal-updates.css": {Data: []byte(".lu-tab{}")}},
	}
	return d
}

func serve(h http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestHealthHandler(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/health", nil)

	healthHandler(w, r)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}

	ct := resp.Header.Get("Content-Type")
	if ct != "application/json" {
		t.Errorf("content-type: got %q, want %q", ct, "application/json")
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field: got %q, want %q", body["status"], "ok")
	}
}

func TestGlobalMiddleware(t *testing.T) {
	h := newTestRouter(t, nil, Options{})
	rec := serve(h, http.MethodGet, "/health")

	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}
	var hasCSRF bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == "lu_csrf" {
			hasCSRF = true
		}
	}
	if !hasCSRF {
		t.Error("CSRF cookie should be issued")
	}
}

func TestPermalinkRouting(t *testing.T) {
	h := newTestRouter(t, nil, Options{})

	rec := serve(h, http.MethodGet, "/legal-updates/employment/new-parental-leave-rules/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "<title>New Parental Leave Rules - Example Firm</title>") {
		t.Error("article title missing")
	}
	if !strings.Contains(body, "Leave is extended.") {
		t.Error("article content missing")
	}

	rec = serve(h, http.MethodGet, "/legal-updates/employment/unknown-article/")
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown slug: status %d, want 404 from the mux", rec.Code)
	}

	metricsRec := serve(h, http.MethodGet, "/metrics")
	out := metricsRec.Body.String()
	for _, want := range []string{
		`legal_updates_router_requests_total{outcome="matched"} 1`,
		`legal_updates_router_requests_total{outcome="pass_through"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestPublicRoutes(t *testing.T) {
	for _, base := range []string{"", "/site"} {
		t.Run("base="+base, func(t *testing.T) {
			h := newTestRouter(t, nil, Options{BasePath: base})

			rec := serve(h, http.MethodGet, base+"/legal-updates/")
			if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `data-category="employment"`) {
				t.Errorf("index: status %d", rec.Code)
			}

			rec = serve(h, http.MethodGet, base+"/legal-updates/api/categories")
			if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"slug":"employment"`) {
				t.Errorf("categories: status %d body %s", rec.Code, rec.Body.String())
			}

			rec = serve(h, http.MethodGet, base+"/static/legal-updates.css")
			if rec.Code != http.StatusOK || rec.Body.String() != ".lu-tab{}" {
				t.Errorf("static: status %d", rec.Code)
			}

			rec = serve(h, http.MethodGet, base+"/legal-updates/employment/new-parental-leave-rules/")
			if rec.Code != http.StatusOK {
				t.Errorf("permalink: status %d", rec.Code)
			}
		})
	}
}

func TestListingRequiresNonce(t *testing.T) {
	h := newTestRouter(t, nil, Options{})
	req := httptest.NewRequest(http.MethodPost, "/legal-updates/api/updates", strings.NewReader("category=employment"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status %d, want 403", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	h := newTestRouter(t, nil, Options{CORSOrigins: []string{"https://firm.example"}})
	req := httptest.NewRequest(http.MethodOptions, "/legal-updates/api/categories", nil)
	req.Header.Set("Origin", "https://firm.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://firm.example" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestAdminAccess(t *testing.T) {
	editor := &session.Data{UserID: uuid.New(), Role: "editor", TwoFADone: true}
	pending := &session.Data{UserID: uuid.New(), Role: "admin", TwoFADone: false}

	tests := []struct {
		name     string
		sess     *session.Data
		path     string
		status   int
		location string
	}{
		{"anonymous dashboard", nil, "/admin/dashboard", http.StatusSeeOther, "/admin/login"},
		{"anonymous updates", nil, "/admin/updates/", http.StatusSeeOther, "/admin/login"},
		{"2fa pending", pending, "/admin/dashboard", http.StatusSeeOther, "/admin/2fa/setup"},
		{"admin root", editor, "/admin/", http.StatusSeeOther, "/admin/dashboard"},
		{"editor categories", editor, "/admin/categories/", http.StatusForbidden, ""},
		{"login page", nil, "/admin/login", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestRouter(t, tt.sess, Options{})
			rec := serve(h, http.MethodGet, tt.path)
			if rec.Code != tt.status {
				t.Fatalf("status %d, want %d", rec.Code, tt.status)
			}
			if tt.location != "" && rec.Header().Get("Location") != tt.location {
				t.Errorf("Location = %q, want %q", rec.Header().Get("Location"), tt.location)
			}
		})
	}
}

// denyAll refuses every request and records the keys it saw.
type denyAll struct{ keys []string }

func (d *denyAll) Allow(_ context.Context, key string) (bool, time.Duration) {
	d.keys = append(d.keys, key)
	return false, 45 * time.Second
}

func TestRateLimitedRoutes(t *testing.T) {
	limiter := &denyAll{}
	d := testDeps(t, nil, Options{})
	d.Limiter = limiter
	h := New(d, Options{})

	const token = "tok"
	post := func(target, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("X-CSRF-Token", token)
		req.AddCookie(&http.Cookie{Name: "lu_csrf", Value: token})
		req.RemoteAddr = "198.51.100.4:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	for _, target := range []string{"/admin/login", "/legal-updates/api/updates"} {
		rec := post(target, "category=employment")
		if rec.Code != http.StatusTooManyRequests {
			t.Errorf("POST %s: status %d, want 429", target, rec.Code)
		}
		if got := rec.Header().Get("Retry-After"); got != "45" {
			t.Errorf("POST %s: Retry-After %q, want 45", target, got)
		}
		if strings.Contains(target, "/api/") && !strings.Contains(rec.Body.String(), `"success":false`) {
			t.Errorf("POST %s: want JSON envelope, got %q", target, rec.Body.String())
		}
	}

	if rec := serve(h, http.MethodGet, "/admin/login"); rec.Code != http.StatusOK {
		t.Errorf("GET /admin/login should not be limited: status %d", rec.Code)
	}

	want := []string{"login:198.51.100.4", "listing:198.51.100.4"}
	if strings.Join(limiter.keys, ",") != strings.Join(want, ",") {
		t.Errorf("limiter keys: got %v, want %v", limiter.keys, want)
	}
}
