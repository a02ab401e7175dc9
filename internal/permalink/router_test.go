package permalink

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"legalupdates/internal/config"
	"legalupdates/internal/metrics"
	"legalupdates/internal/models"
	"legalupdates/internal/render"
)

type fakeCategories struct {
	names map[string]string
	err   error
}

func (f *fakeCategories) FindBySlug(_ context.Context, s string) (*models.Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	name, ok := f.names[s]
	if !ok {
		return nil, nil
	}
	return &models.Category{Slug: s, Name: name}, nil
}

// captureRenderer records the view it is asked to render.
type captureRenderer struct {
	view *render.ArticleView
	err  error
}

func (c *captureRenderer) Article(w io.Writer, v *render.ArticleView) error {
	c.view = v
	if c.err != nil {
		return c.err
	}
	_, err := io.WriteString(w, "<article>"+v.Heading+"</article>")
	return err
}

func newTestRouter(f *fakeUpdates, cats *fakeCategories, rn ArticleRenderer, m *metrics.Metrics) *Router {
	return NewRouter(
		NewResolver(f, config.SlugModeComputed, ""),
		cats, rn, m,
		RouterConfig{SiteName: "Acme Law", HomeURL: "https://example.com", StaticBase: "/static"},
	)
}

var nextHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusTeapot)
	io.WriteString(w, "next")
})

func TestMiddlewareMatched(t *testing.T) {
	m := metrics.New()
	rn := &captureRenderer{}
	f := sampleUpdates()
	f.updates[0].Content = `<p onclick="x()">Hello <script>alert(1)</script>world</p>`
	h := newTestRouter(f, &fakeCategories{names: map[string]string{"employment": "Employment"}}, rn, m).Middleware(nextHandler)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/legal-updates/employment/new-rules/", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Body.String() != "<article>New Rules</article>" {
		t.Errorf("unexpected body %q", w.Body.String())
	}
	v := rn.view
	if v.Title != "New Rules - Acme Law" {
		t.Errorf("Title = %q", v.Title)
	}
	if v.Date != "March 5, 2024" || v.ISODate != "2024-03-05" {
		t.Errorf("dates = %q / %q", v.Date, v.ISODate)
	}
	if v.CategoryName != "Employment" {
		t.Errorf("CategoryName = %q", v.CategoryName)
	}
	if v.BackURL != "https://example.com/legal-updates/" {
		t.Errorf("BackURL = %q", v.BackURL)
	}
	body := string(v.Content)
	if strings.Contains(body, "script") || strings.Contains(body, "onclick") {
		t.Errorf("content not sanitized: %q", body)
	}
	if !strings.Contains(body, "Hello") {
		t.Errorf("content lost text: %q", body)
	}
	if !strings.Contains(scrape(t, m), `legal_updates_router_requests_total{outcome="matched"} 1`) {
		t.Error("matched counter not incremented")
	}
}

func TestMiddlewarePassThrough(t *testing.T) {
	tests := []struct {
		name   string
		method string
		target string
	}{
		{"post not intercepted", http.MethodPost, "/legal-updates/employment/new-rules/"},
		{"unknown slug", http.MethodGet, "/legal-updates/employment/missing/"},
		{"unknown category", http.MethodGet, "/legal-updates/tax/new-rules/"},
		{"non permalink path", http.MethodGet, "/admin/login"},
		{"index page", http.MethodGet, "/legal-updates/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rn := &captureRenderer{}
			h := newTestRouter(sampleUpdates(), &fakeCategories{}, rn, nil).Middleware(nextHandler)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(tt.method, tt.target, nil))

			if w.Code != http.StatusTeapot || w.Body.String() != "next" {
				t.Errorf("expected pass-through, got %d %q", w.Code, w.Body.String())
			}
			if rn.view != nil {
				t.Error("renderer should not be called")
			}
		})
	}
}

func TestMiddlewareHead(t *testing.T) {
	rn := &captureRenderer{}
	h := newTestRouter(sampleUpdates(), &fakeCategories{}, rn, nil).Middleware(nextHandler)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodHead, "/legal-updates/employment/new-rules/", nil))
	if w.Code != http.StatusOK {
		t.Errorf("HEAD expected 200, got %d", w.Code)
	}
}

func TestMiddlewareCategoryFallback(t *testing.T) {
	for _, cats := range []*fakeCategories{{}, {err: errors.New("down")}} {
		rn := &captureRenderer{}
		h := newTestRouter(sampleUpdates(), cats, rn, nil).Middleware(nextHandler)
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/legal-updates/employment/new-rules/", nil))
		if rn.view == nil || rn.view.CategoryName != "employment" {
			t.Errorf("expected raw slug fallback, got %+v", rn.view)
		}
	}
}

func TestMiddlewareResolverError(t *testing.T) {
	m := metrics.New()
	f := sampleUpdates()
	f.err = errors.New("connection refused")
	h := newTestRouter(f, &fakeCategories{}, &captureRenderer{}, m).Middleware(nextHandler)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/legal-updates/employment/new-rules/", nil))

	if w.Code != http.StatusTeapot {
		t.Errorf("resolver error should pass through, got %d", w.Code)
	}
	if !strings.Contains(scrape(t, m), `legal_updates_router_requests_total{outcome="error"} 1`) {
		t.Error("error counter not incremented")
	}
}

func TestMiddlewareRenderError(t *testing.T) {
	h := newTestRouter(sampleUpdates(), &fakeCategories{}, &captureRenderer{err: errors.New("bad template")}, nil).Middleware(nextHandler)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/legal-updates/employment/new-rules/", nil))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}

func TestMiddlewareWithRenderer(t *testing.T) {
	rn, err := render.New(false)
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}
	f := sampleUpdates()
	f.updates[0].Content = "**Bold** statement"
	f.updates[0].ContentFormat = models.ContentFormatMarkdown
	h := newTestRouter(f, &fakeCategories{names: map[string]string{"employment": "Employment"}}, rn, nil).Middleware(nextHandler)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/legal-updates/employment/new-rules", nil))

	body := w.Body.String()
	for _, want := range []string{"<title>New Rules - Acme Law</title>", "<strong>Bold</strong>", `datetime="2024-03-05"`} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

// scrape returns the text exposition of m.
func scrape(t *testing.T, m *metrics.Metrics) string {
	t.Helper()
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	return w.Body.String()
}

func TestContentHTMLMarkdownCitations(t *testing.T) {
	u := &models.Update{
		ContentFormat: models.ContentFormatMarkdown,
		Content:       "# Summary\n\nLeave doubles.[^1]\n\n[^1]: Parental Leave Act, s. 4.\n\n<script>alert(1)</script>",
	}
	got, err := ContentHTML(u)
	if err != nil {
		t.Fatalf("ContentHTML: %v", err)
	}
	for _, want := range []string{`<h2 id="summary">Summary</h2>`, `href="#fn:1"`, `class="footnotes"`, "Parental Leave Act"} {
		if !strings.Contains(got, want) {
			t.Errorf("ContentHTML missing %q in %q", want, got)
		}
	}
	if strings.Contains(got, "<script") {
		t.Errorf("script survived sanitizing: %q", got)
	}
}

func TestMiddlewareArticleTitle(t *testing.T) {
	f := sampleUpdates()
	rn := &captureRenderer{}
	h := newTestRouter(f, &fakeCategories{}, rn, nil).Middleware(nextHandler)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/legal-updates/employment/new-rules/", nil))

	if rn.view == nil {
		t.Fatal("article was not rendered")
	}
	// The first of the duplicate headings wins, and its title is the one
	// ArticleTitle builds.
	if want := ArticleTitle(&f.updates[0], "Acme Law"); rn.view.Title != want {
		t.Errorf("Title = %q, want %q", rn.view.Title, want)
	}
	if rn.view.Title != "New Rules - Acme Law" {
		t.Errorf("Title = %q", rn.view.Title)
	}
}
