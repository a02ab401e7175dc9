// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package permalink

import (
	"context"
	"fmt"

	"legalupdates/internal/config"
	"legalupdates/internal/models"
	"legalupdates/internal/slug"
)

// UpdateFinder is the subset of the update store the resolver needs.
type UpdateFinder interface {
	ListByCategory(ctx context.Context, category string) ([]models.Update, error)
	FindBySlug(ctx context.Context, category, slug string) (*models.Update, error)
}

// Resolver finds the update a Route points to.
type Resolver struct {
	updates  UpdateFinder
	mode     string
	basePath string
}

// NewResolver creates a Resolver. mode is config.SlugModeComputed or
// config.SlugModeStored; any other value behaves as computed. basePath is
// the site base path stripped by ParsePath.
func NewResolver(updates UpdateFinder, mode, basePath string) *Resolver {
	return &Resolver{updates: updates, mode: mode, basePath: basePath}
}

// SlugFor returns the slug the update is addressed by under the given mode.
func SlugFor(mode string, u *models.Update) string {
	if mode == config.SlugModeStored && u.Slug != "" {
		return u.Slug
	}
	return slug.Generate(u.Heading)
}

// Permalink returns the public URL of u under the given slug mode; the
// router resolves exactly these URLs.
func Permalink(siteURL, mode string, u *models.Update) string {
	return LinkSlug(siteURL, u.Category, SlugFor(mode, u))
}

// ResolveArticleBySlug returns the first update, by insertion order, in the
// route's category whose slug equals the route's slug. It returns (nil, nil)
// when nothing matches.
func (r *Resolver) ResolveArticleBySlug(ctx context.Context, route Route) (*models.Update, error) {
	if err := route.Validate(); err != nil {
		return nil, err
	}

	if r.mode == config.SlugModeStored {
		u, err := r.updates.FindBySlug(ctx, route.Category, route.Slug)
		if err != nil {
			return nil, fmt.Errorf("resolve stored slug: %w", err)
		}
		return u, nil
	}

	updates, err := r.updates.ListByCategory(ctx, route.Category)
	if err != nil {
		return nil, fmt.Errorf("resolve computed slug: %w", err)
	}
	for i := range updates {
		if slug.Generate(updates[i].Heading) == route.Slug {
			return &updates[i], nil
		}
	}
	return nil, nil
}

// ArticleTitle is the document title of an update's page, built from the
// update ResolveArticleBySlug returned. A nil update leaves siteName as is.
func ArticleTitle(u *models.Update, siteName string) string {
	if u == nil {
		return siteName
	}
	return u.Heading + " - " + siteName
}
