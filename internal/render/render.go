// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render provides HTML template rendering for the admin interface
// and the public legal updates pages. Admin pages support full-page and
// HTMX partial rendering, detected via the HX-Request header.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"legalupdates/internal/middleware"
	"legalupdates/internal/session"
)

//go:embed templates/admin/*.html templates/public/*.html
var templateFS embed.FS

// DateFormat is the human-readable date used on public pages and listings.
const DateFormat = "January 2, 2006"

// PageData holds all data passed to admin templates.
type PageData struct {
	Title     string         // Page title for <title> tag
	Section   string         // Active sidebar section (e.g., "dashboard", "updates")
	Session   *session.Data  // Current user session (nil if unauthenticated)
	CSRFToken string         // CSRF token for forms and HTMX headers
	Data      map[string]any // Page-specific data
	Flashes   []Flash        // One-time notification messages
}

// Flash represents a one-time notification message displayed to the user.
type Flash struct {
	Type    string // "success", "error", "warning", "info"
	Message string
}

// Renderer handles template parsing and execution.
type Renderer struct {
	admin   map[string]*template.Template
	public  map[string]*template.Template
	funcMap template.FuncMap
}

// standaloneTemplates lists admin templates that render as full HTML pages
// without the base layout.
var standaloneTemplates = map[string]bool{
	"login":      true,
	"2fa_setup":  true,
	"2fa_verify": true,
}

// New parses all embedded templates. Admin page templates are paired with
// the admin base layout; public templates stand alone except for the shared
// "layout" definition. When devMode is true, admin templates use CDN-hosted
// assets; otherwise they reference local static files.
func New(devMode bool) (*Renderer, error) {
	r := &Renderer{
		admin:  make(map[string]*template.Template),
		public: make(map[string]*template.Template),
		funcMap: template.FuncMap{
			"activeClass": func(current, target string) string {
				if current == target {
					return "bg-gray-900 text-white"
				}
				return "text-gray-300 hover:bg-gray-700 hover:text-white"
			},
			"isDev": func() bool {
				return devMode
			},
			"date": func(t time.Time) string {
				return t.Format(DateFormat)
			},
			"datetime": func(t time.Time) string {
				return t.Format("2006-01-02 15:04")
			},
			"truncate": func(n int, s string) string {
				runes := []rune(s)
				if len(runes) <= n {
					return s
				}
				return string(runes[:n]) + "…"
			},
		},
	}

	if err := r.parseAdmin(); err != nil {
		return nil, err
	}
	if err := r.parsePublic(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Renderer) parseAdmin() error {
	pages, err := fs.Glob(templateFS, "templates/admin/*.html")
	if err != nil {
		return fmt.Errorf("glob admin templates: %w", err)
	}
	for _, page := range pages {
		name := path.Base(page)
		if name == "base.html" {
			continue
		}
		tmplName := strings.TrimSuffix(name, ".html")

		var tmpl *template.Template
		if standaloneTemplates[tmplName] {
			tmpl, err = template.New(name).Funcs(r.funcMap).ParseFS(templateFS, page)
		} else {
			tmpl, err = template.New("base.html").Funcs(r.funcMap).ParseFS(
				templateFS, "templates/admin/base.html", page,
			)
		}
		if err != nil {
			return fmt.Errorf("parse template %s: %w", name, err)
		}
		r.admin[tmplName] = tmpl
	}
	return nil
}

func (r *Renderer) parsePublic() error {
	pages, err := fs.Glob(templateFS, "templates/public/*.html")
	if err != nil {
		return fmt.Errorf("glob public templates: %w", err)
	}
	for _, page := range pages {
		name := path.Base(page)
		if name == "layout.html" {
			continue
		}
		tmpl, err := template.New(name).Funcs(r.funcMap).ParseFS(
			templateFS, "templates/public/layout.html", page,
		)
		if err != nil {
			return fmt.Errorf("parse template %s: %w", name, err)
		}
		r.public[strings.TrimSuffix(name, ".html")] = tmpl
	}
	return nil
}

// Page renders a full admin page or an HTMX partial, depending on the
// request headers. For HTMX requests, only the "content" block is sent.
func (rn *Renderer) Page(w http.ResponseWriter, r *http.Request, name string, data *PageData) {
	rn.PageStatus(w, r, http.StatusOK, name, data)
}

// PageStatus is like Page but writes the given status code.
func (rn *Renderer) PageStatus(w http.ResponseWriter, r *http.Request, status int, name string, data *PageData) {
	tmpl, ok := rn.admin[name]
	if !ok {
		http.Error(w, fmt.Sprintf("template %q not found", name), http.StatusInternalServerError)
		return
	}

	data.CSRFToken = middleware.CSRFTokenFromCtx(r.Context())
	if data.Session == nil {
		data.Session = middleware.SessionFromCtx(r.Context())
	}

	execName := "base.html"
	if standaloneTemplates[name] {
		execName = name + ".html"
	}
	if isHTMX(r) && !standaloneTemplates[name] {
		execName = "content"
	}

	// Buffer so a template error can still produce a clean 500.
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, execName, data); err != nil {
		slog.Error("render template", "template", name, "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

// publicTemplate executes a public template by name into w.
func (rn *Renderer) publicTemplate(w io.Writer, name string, data any) error {
	tmpl, ok := rn.public[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	if err := tmpl.ExecuteTemplate(w, name+".html", data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	return nil
}

// isHTMX returns true if the request was made by HTMX (has HX-Request header).
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
