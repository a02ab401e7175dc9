// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the legal updates site.
// Handlers are grouped by concern (admin, public, auth) and receive
// their dependencies through the handler struct.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"legalupdates/internal/models"
	"legalupdates/internal/store"
)

// CategoryRepo is the category persistence used by the handlers.
// *store.CategoryStore implements it.
type CategoryRepo interface {
	List(ctx context.Context) ([]models.Category, error)
	FindByID(ctx context.Context, id int64) (*models.Category, error)
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
	SlugTaken(ctx context.Context, slug string, exceptID int64) (bool, error)
	Create(ctx context.Context, c *models.Category) (*models.Category, error)
	Update(ctx context.Context, c *models.Category, oldSlug string) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}

// UpdateRepo is the legal update persistence used by the handlers.
// *store.UpdateStore implements it.
type UpdateRepo interface {
	List(ctx context.Context, f store.UpdateFilter) ([]models.Update, error)
	FindByID(ctx context.Context, id int64) (*models.Update, error)
	FindBySlug(ctx context.Context, category, slug string) (*models.Update, error)
	CountByCategory(ctx context.Context, category string) (int, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, u *models.Update) (*models.Update, error)
	Update(ctx context.Context, u *models.Update) error
	Delete(ctx context.Context, id int64) error
}

// FragmentInvalidator drops cached listing fragments after admin writes.
// *cache.FragmentCache implements it.
type FragmentInvalidator interface {
	Invalidate(ctx context.Context, categories ...string)
}

// parseID reads the {id} URL parameter as a positive integer.
func parseID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode json response", "error", err)
	}
}
