// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for the handler tests:
// in-memory stores that mirror the Postgres stores' ordering and not-found
// behavior, and request helpers for chi URL params and sessions.
package handlers

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"legalupdates/internal/cache"
	"legalupdates/internal/listing"
	"legalupdates/internal/middleware"
	"legalupdates/internal/models"
	"legalupdates/internal/render"
	"legalupdates/internal/session"
	"legalupdates/internal/store"
)

// The production types satisfy the handler interfaces.
var (
	_ CategoryRepo        = (*store.CategoryStore)(nil)
	_ UpdateRepo          = (*store.UpdateStore)(nil)
	_ UserRepo            = (*store.UserStore)(nil)
	_ SessionManager      = (*session.Store)(nil)
	_ FragmentInvalidator = (*cache.FragmentCache)(nil)
	_ ListingService      = (*listing.Service)(nil)
)

// memCategories is an in-memory CategoryRepo.
type memCategories struct {
	mu     sync.Mutex
	nextID int64
	items  []models.Category
	// updates lets List report counts and Update rename references.
	updates *memUpdates
	err     error
}

func (m *memCategories) add(slug, name string) *models.Category {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	c := models.Category{ID: m.nextID, Slug: slug, Name: name}
	m.items = append(m.items, c)
	return &c
}

func (m *memCategories) List(context.Context) ([]models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]models.Category, len(m.items))
	copy(out, m.items)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	for i := range out {
		if m.updates != nil {
			out[i].UpdateCount, _ = m.updates.CountByCategory(context.Background(), out[i].Slug)
		}
	}
	return out, nil
}

func (m *memCategories) Map(ctx context.Context) (map[string]string, []string, error) {
	cats, err := m.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	names := make(map[string]string, len(cats))
	order := make([]string, 0, len(cats))
	for _, c := range cats {
		names[c.Slug] = c.Name
		order = append(order, c.Slug)
	}
	return names, order, nil
}

func (m *memCategories) FindByID(_ context.Context, id int64) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, c := range m.items {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memCategories) FindBySlug(_ context.Context, slug string) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, c := range m.items {
		if c.Slug == slug {
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memCategories) SlugTaken(_ context.Context, slug string, exceptID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.items {
		if c.Slug == slug && c.ID != exceptID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memCategories) Create(_ context.Context, c *models.Category) (*models.Category, error) {
	for _, existing := range m.items {
		if existing.Slug == c.Slug {
			return nil, store.ErrSlugTaken
		}
	}
	return m.add(c.Slug, c.Name), nil
}

func (m *memCategories) Update(ctx context.Context, c *models.Category, oldSlug string) error {
	m.mu.Lock()
	for i := range m.items {
		if m.items[i].ID == c.ID {
			m.items[i].Slug = c.Slug
			m.items[i].Name = c.Name
		}
	}
	m.mu.Unlock()
	if m.updates != nil && oldSlug != c.Slug {
		m.updates.renameCategory(oldSlug, c.Slug)
	}
	return nil
}

func (m *memCategories) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *memCategories) Count(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items), nil
}

// memUpdates is an in-memory UpdateRepo. Items are kept in insertion order.
type memUpdates struct {
	mu     sync.Mutex
	nextID int64
	items  []models.Update
	clock  time.Time
	err    error
}

func (m *memUpdates) add(u models.Update) models.Update {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	if m.clock.IsZero() {
		m.clock = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	}
	m.clock = m.clock.Add(time.Hour)
	u.ID = m.nextID
	u.CreatedAt = m.clock
	u.UpdatedAt = m.clock
	if u.ContentFormat == "" {
		u.ContentFormat = models.ContentFormatHTML
	}
	m.items = append(m.items, u)
	return u
}

func (m *memUpdates) newest(category string) []models.Update {
	var out []models.Update
	for i := len(m.items) - 1; i >= 0; i-- {
		if category == "" || m.items[i].Category == category {
			out = append(out, m.items[i])
		}
	}
	return out
}

func (m *memUpdates) List(_ context.Context, f store.UpdateFilter) ([]models.Update, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := m.newest(f.Category)
	if f.Offset > 0 {
		if int(f.Offset) >= len(out) {
			return nil, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && int(f.Limit) < len(out) {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m *memUpdates) ListByCategory(_ context.Context, category string) ([]models.Update, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Update
	for _, u := range m.items {
		if u.Category == category {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *memUpdates) ListByCategoryNewest(_ context.Context, category string) ([]models.Update, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.newest(category), nil
}

func (m *memUpdates) FindByID(_ context.Context, id int64) (*models.Update, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.items {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, nil
}

func (m *memUpdates) FindBySlug(_ context.Context, category, slug string) (*models.Update, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.items {
		if u.Category == category && u.Slug == slug {
			return &u, nil
		}
	}
	return nil, nil
}

func (m *memUpdates) CountByCategory(_ context.Context, category string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, u := range m.items {
		if u.Category == category {
			n++
		}
	}
	return n, nil
}

func (m *memUpdates) Count(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items), nil
}

func (m *memUpdates) Create(_ context.Context, u *models.Update) (*models.Update, error) {
	created := m.add(*u)
	return &created, nil
}

func (m *memUpdates) Update(_ context.Context, u *models.Update) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == u.ID {
			created := m.items[i].CreatedAt
			m.items[i] = *u
			m.items[i].CreatedAt = created
		}
	}
	return nil
}

func (m *memUpdates) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *memUpdates) renameCategory(oldSlug, newSlug string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].Category == oldSlug {
			m.items[i].Category = newSlug
		}
	}
}

// recordingInvalidator records the categories passed to Invalidate.
type recordingInvalidator struct {
	invalidated []string
}

func (r *recordingInvalidator) Invalidate(_ context.Context, categories ...string) {
	r.invalidated = append(r.invalidated, categories...)
}

// testEnv holds all dependencies for handler tests.
type testEnv struct {
	Renderer   *render.Renderer
	Categories *memCategories
	Updates    *memUpdates
	Fragments  *recordingInvalidator
	Admin      *Admin
}

// newTestEnv creates an admin test environment seeded with two categories.
func newTestEnv(t *testing.T, slugMode string) *testEnv {
	t.Helper()

	renderer, err := render.New(true)
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	updates := &memUpdates{}
	categories := &memCategories{updates: updates}
	categories.add("employment", "Employment")
	categories.add("immigration-citizenship", "Immigration and Citizenship")
	fragments := &recordingInvalidator{}

	return &testEnv{
		Renderer:   renderer,
		Categories: categories,
		Updates:    updates,
		Fragments:  fragments,
		Admin: NewAdmin(renderer, categories, updates, fragments, AdminOptions{
			HomeURL:  "https://example.com",
			SlugMode: slugMode,
		}),
	}
}

// ctxWithSession adds session data to a context using the middleware key.
func ctxWithSession(ctx context.Context, data *session.Data) context.Context {
	return context.WithValue(ctx, middleware.SessionKey, data)
}

// testSession creates a session.Data for testing.
func testSession(role string, twoFADone bool) *session.Data {
	return &session.Data{
		UserID:      uuid.New(),
		Email:       "admin@test.local",
		DisplayName: "Test User",
		Role:        role,
		TwoFADone:   twoFADone,
	}
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// formRequest builds a form POST carrying an admin session.
func formRequest(target string, form url.Values) *http.Request {
	req, _ := http.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req.WithContext(ctxWithSession(req.Context(), testSession("admin", true)))
}

// getRequest builds a GET carrying an admin session.
func getRequest(target string) *http.Request {
	req, _ := http.NewRequest(http.MethodGet, target, nil)
	return req.WithContext(ctxWithSession(req.Context(), testSession("admin", true)))
}
