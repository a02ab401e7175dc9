// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package listing builds the per-category list of legal updates shown in
// the tabbed index, both as data and as a cached HTML fragment.
package listing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"legalupdates/internal/metrics"
	"legalupdates/internal/models"
	"legalupdates/internal/permalink"
	"legalupdates/internal/render"
	"legalupdates/internal/summary"
)

// ErrUnknownCategory is returned when the requested category does not exist.
var ErrUnknownCategory = errors.New("unknown category")

// CategoryFinder looks up categories by slug.
type CategoryFinder interface {
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
}

// UpdateLister lists a category's updates, newest first.
type UpdateLister interface {
	ListByCategoryNewest(ctx context.Context, category string) ([]models.Update, error)
}

// FragmentRenderer renders the listing HTML fragment.
type FragmentRenderer interface {
	Listing(v *render.ListingView) ([]byte, error)
}

// FragmentCache stores rendered fragments per category.
type FragmentCache interface {
	Get(ctx context.Context, category string) ([]byte, bool)
	Set(ctx context.Context, category string, html []byte)
}

// Item is one update as shown in a listing.
type Item struct {
	ID        int64  `json:"id"`
	Heading   string `json:"heading"`
	Date      string `json:"date"`
	Summary   string `json:"summary"`
	HasMore   bool   `json:"has_more"`
	Permalink string `json:"permalink"`
}

// Listing is the content of one category tab.
type Listing struct {
	Category models.Category `json:"category"`
	Items    []Item          `json:"items"`
}

// Options configures a Service.
type Options struct {
	HomeURL       string // absolute site URL including base path
	SlugMode      string
	SummaryLength int
}

// Service builds category listings.
type Service struct {
	categories CategoryFinder
	updates    UpdateLister
	renderer   FragmentRenderer
	cache      FragmentCache
	metrics    *metrics.Metrics
	opts       Options
}

// NewService creates a listing Service. fc and m may be nil.
func NewService(categories CategoryFinder, updates UpdateLister, renderer FragmentRenderer, fc FragmentCache, m *metrics.Metrics, opts Options) *Service {
	if opts.SummaryLength <= 0 {
		opts.SummaryLength = summary.DefaultLength
	}
	return &Service{
		categories: categories,
		updates:    updates,
		renderer:   renderer,
		cache:      fc,
		metrics:    m,
		opts:       opts,
	}
}

// Build returns the listing for categorySlug, or ErrUnknownCategory.
func (s *Service) Build(ctx context.Context, categorySlug string) (*Listing, error) {
	l, err := s.build(ctx, categorySlug)
	s.record(err)
	return l, err
}

// Fragment returns the rendered HTML fragment for categorySlug, serving it
// from the cache when possible.
func (s *Service) Fragment(ctx context.Context, categorySlug string) ([]byte, error) {
	if s.cache != nil {
		if html, ok := s.cache.Get(ctx, categorySlug); ok {
			s.metrics.FragmentCache(true)
			s.record(nil)
			return html, nil
		}
		s.metrics.FragmentCache(false)
	}

	html, err := s.fragment(ctx, categorySlug)
	s.record(err)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, categorySlug, html)
	}
	return html, nil
}

func (s *Service) fragment(ctx context.Context, categorySlug string) ([]byte, error) {
	l, err := s.build(ctx, categorySlug)
	if err != nil {
		return nil, err
	}

	view := &render.ListingView{Items: make([]render.ListingItem, 0, len(l.Items))}
	for _, it := range l.Items {
		view.Items = append(view.Items, render.ListingItem{
			Heading:   it.Heading,
			Date:      it.Date,
			Summary:   it.Summary,
			HasMore:   it.HasMore,
			Permalink: it.Permalink,
		})
	}
	html, err := s.renderer.Listing(view)
	if err != nil {
		return nil, fmt.Errorf("render listing: %w", err)
	}
	return html, nil
}

func (s *Service) build(ctx context.Context, categorySlug string) (*Listing, error) {
	cat, err := s.categories.FindBySlug(ctx, categorySlug)
	if err != nil {
		return nil, fmt.Errorf("find category: %w", err)
	}
	if cat == nil {
		return nil, ErrUnknownCategory
	}

	updates, err := s.updates.ListByCategoryNewest(ctx, cat.Slug)
	if err != nil {
		return nil, fmt.Errorf("list updates: %w", err)
	}

	l := &Listing{Category: *cat, Items: make([]Item, 0, len(updates))}
	for i := range updates {
		l.Items = append(l.Items, s.item(&updates[i]))
	}
	return l, nil
}

func (s *Service) item(u *models.Update) Item {
	content, err := permalink.ContentHTML(u)
	if err != nil {
		slog.Warn("listing content conversion failed", "id", u.ID, "error", err)
		content = u.Content
	}
	return Item{
		ID:        u.ID,
		Heading:   u.Heading,
		Date:      u.CreatedAt.Format(render.DateFormat),
		Summary:   summary.Generate(content, s.opts.SummaryLength),
		HasMore:   summary.HasMore(content, s.opts.SummaryLength),
		Permalink: permalink.Permalink(s.opts.HomeURL, s.opts.SlugMode, u),
	}
}

func (s *Service) record(err error) {
	switch {
	case err == nil:
		s.metrics.ListingRequest(metrics.ResultOK)
	case errors.Is(err, ErrUnknownCategory):
		s.metrics.ListingRequest(metrics.ResultUnknownCategory)
	default:
		s.metrics.ListingRequest(metrics.ResultError)
	}
}
