// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"legalupdates/internal/listing"
	"legalupdates/internal/middleware"
	"legalupdates/internal/models"
	"legalupdates/internal/render"
	"legalupdates/internal/sanitize"
)

// ListingService builds category listings.
// *listing.Service implements it.
type ListingService interface {
	Build(ctx context.Context, categorySlug string) (*listing.Listing, error)
	Fragment(ctx context.Context, categorySlug string) ([]byte, error)
}

// CategoryLister lists categories in display order.
type CategoryLister interface {
	List(ctx context.Context) ([]models.Category, error)
}

// PublicOptions carries the site settings the public handlers need.
type PublicOptions struct {
	SiteName   string
	BasePath   string
	StaticBase string
}

// Public groups handlers for the public legal updates pages and the
// listing API used by the tab script.
type Public struct {
	renderer   *render.Renderer
	categories CategoryLister
	listings   ListingService
	opts       PublicOptions
}

// NewPublic creates a new Public handler group.
func NewPublic(renderer *render.Renderer, categories CategoryLister, listings ListingService, opts PublicOptions) *Public {
	return &Public{
		renderer:   renderer,
		categories: categories,
		listings:   listings,
		opts:       opts,
	}
}

// envelope is the JSON shape returned by the listing endpoint.
type envelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// Index renders the tabbed legal updates page with one tab per category.
func (p *Public) Index(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cats, err := p.categories.List(ctx)
	if err != nil {
		slog.Error("list categories failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	tabs := make([]render.Tab, 0, len(cats))
	for i, c := range cats {
		tabs = append(tabs, render.Tab{Slug: c.Slug, Name: c.Name, Active: i == 0})
	}

	var buf bytes.Buffer
	err = p.renderer.Tabs(&buf, &render.TabsView{
		SiteName:   p.opts.SiteName,
		Title:      "Legal Updates - " + p.opts.SiteName,
		Tabs:       tabs,
		Endpoint:   p.opts.BasePath + "/legal-updates/api/updates",
		Nonce:      middleware.CSRFTokenFromCtx(ctx),
		StaticBase: p.opts.StaticBase,
	})
	if err != nil {
		slog.Error("render tabs failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// ListingFragment answers the tab script: form field "category" selects the
// category and the response carries the rendered item list. The anti-forgery
// nonce is checked by the CSRF middleware before this handler runs.
func (p *Public) ListingFragment(w http.ResponseWriter, r *http.Request) {
	category := sanitize.Text(r.FormValue("category"))

	html, err := p.listings.Fragment(r.Context(), category)
	if errors.Is(err, listing.ErrUnknownCategory) {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Data: "Invalid category"})
		return
	}
	if err != nil {
		slog.Error("listing fragment failed", "category", category, "error", err)
		writeJSON(w, http.StatusInternalServerError, envelope{Success: false, Data: "Error loading updates"})
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: string(html)})
}

// CategoryUpdates returns the listing of {slug} as JSON data.
func (p *Public) CategoryUpdates(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "slug")

	l, err := p.listings.Build(r.Context(), category)
	if errors.Is(err, listing.ErrUnknownCategory) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "category not found"})
		return
	}
	if err != nil {
		slog.Error("category listing failed", "category", category, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// Categories returns every category in display order as JSON.
func (p *Public) Categories(w http.ResponseWriter, r *http.Request) {
	cats, err := p.categories.List(r.Context())
	if err != nil {
		slog.Error("list categories failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if cats == nil {
		cats = []models.Category{}
	}
	writeJSON(w, http.StatusOK, cats)
}
