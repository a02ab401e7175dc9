package permalink

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"

	"legalupdates/internal/markdown"
	"legalupdates/internal/metrics"
	"legalupdates/internal/models"
	"legalupdates/internal/render"
	"legalupdates/internal/sanitize"
)

// CategoryFinder looks up a category's display name by slug.
type CategoryFinder interface {
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
}

// ArticleRenderer writes the standalone article page.
type ArticleRenderer interface {
	Article(w io.Writer, v *render.ArticleView) error
}

// RouterConfig carries the site settings the router needs.
type RouterConfig struct {
	SiteName   string
	HomeURL    string // absolute site URL including base path
	BasePath   string
	StaticBase string
}

// Router intercepts permalink requests ahead of the regular routes.
type Router struct {
	resolver   *Resolver
	categories CategoryFinder
	renderer   ArticleRenderer
	metrics    *metrics.Metrics
	cfg        RouterConfig
}

// NewRouter creates a Router. m may be nil.
func NewRouter(resolver *Resolver, categories CategoryFinder, renderer ArticleRenderer, m *metrics.Metrics, cfg RouterConfig) *Router {
	return &Router{
		resolver:   resolver,
		categories: categories,
		renderer:   renderer,
		metrics:    m,
		cfg:        cfg,
	}
}

// Middleware serves the article page when a GET or HEAD request matches an
// existing update and calls next for everything else. Lookup failures are
// logged and fall through to next.
func (rt *Router) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			next.ServeHTTP(w, r)
			return
		}
		route, ok := ParsePath(r.URL.RequestURI(), rt.cfg.BasePath)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		u, err := rt.resolver.ResolveArticleBySlug(r.Context(), route)
		if err != nil {
			slog.Error("resolve permalink failed", "category", route.Category, "slug", route.Slug, "error", err)
			rt.metrics.RouterRequest(metrics.OutcomeError)
			next.ServeHTTP(w, r)
			return
		}
		if u == nil {
			rt.metrics.RouterRequest(metrics.OutcomePassThrough)
			next.ServeHTTP(w, r)
			return
		}

		var buf bytes.Buffer
		if err := rt.renderArticle(r.Context(), &buf, u); err != nil {
			slog.Error("render article failed", "id", u.ID, "error", err)
			rt.metrics.RouterRequest(metrics.OutcomeError)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		rt.metrics.RouterRequest(metrics.OutcomeMatched)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write(buf.Bytes())
	})
}

func (rt *Router) renderArticle(ctx context.Context, w io.Writer, u *models.Update) error {
	body, err := ContentHTML(u)
	if err != nil {
		return err
	}

	return rt.renderer.Article(w, &render.ArticleView{
		SiteName:     rt.cfg.SiteName,
		Title:        ArticleTitle(u, rt.cfg.SiteName),
		Heading:      u.Heading,
		Date:         u.CreatedAt.Format(render.DateFormat),
		ISODate:      u.CreatedAt.Format("2006-01-02"),
		CategorySlug: u.Category,
		CategoryName: rt.categoryName(ctx, u.Category),
		Content:      template.HTML(body),
		BackURL:      IndexURL(rt.cfg.HomeURL),
		StaticBase:   rt.cfg.StaticBase,
	})
}

// categoryName returns the display name of a category, or the slug itself
// when the category no longer exists.
func (rt *Router) categoryName(ctx context.Context, categorySlug string) string {
	c, err := rt.categories.FindBySlug(ctx, categorySlug)
	if err != nil {
		slog.Warn("category lookup failed", "category", categorySlug, "error", err)
		return categorySlug
	}
	if c == nil {
		return categorySlug
	}
	return c.Name
}

// ContentHTML returns the sanitized HTML body of an update, converting
// markdown content first.
func ContentHTML(u *models.Update) (string, error) {
	content := u.Content
	if u.IsMarkdown() {
		html, err := markdown.ToHTML(content)
		if err != nil {
			return "", fmt.Errorf("convert markdown: %w", err)
		}
		content = html
	}
	return sanitize.Content(content), nil
}
