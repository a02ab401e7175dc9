// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"legalupdates/internal/config"
	"legalupdates/internal/models"
	"legalupdates/internal/permalink"
	"legalupdates/internal/render"
	"legalupdates/internal/sanitize"
	"legalupdates/internal/slug"
	"legalupdates/internal/store"
)

// adminPageSize is the number of updates per page in the admin list.
const adminPageSize = 20

// AdminOptions carries the site settings the admin handlers need.
type AdminOptions struct {
	HomeURL  string
	SlugMode string
}

// Admin groups all admin panel HTTP handlers and their dependencies.
type Admin struct {
	renderer   *render.Renderer
	categories CategoryRepo
	updates    UpdateRepo
	fragments  FragmentInvalidator
	opts       AdminOptions
}

// NewAdmin creates a new Admin handler group with the given dependencies.
func NewAdmin(renderer *render.Renderer, categories CategoryRepo, updates UpdateRepo, fragments FragmentInvalidator, opts AdminOptions) *Admin {
	return &Admin{
		renderer:   renderer,
		categories: categories,
		updates:    updates,
		fragments:  fragments,
		opts:       opts,
	}
}

// flashMessages maps the ?msg= code set by post-redirect-get to a notice.
var flashMessages = map[string]render.Flash{
	"update_created":   {Type: "success", Message: "Legal update added successfully."},
	"update_saved":     {Type: "success", Message: "Legal update updated successfully."},
	"update_deleted":   {Type: "success", Message: "Legal update deleted successfully."},
	"category_created": {Type: "success", Message: "Category added successfully."},
	"category_saved":   {Type: "success", Message: "Category updated successfully."},
	"category_deleted": {Type: "success", Message: "Category deleted successfully."},
}

func flashFromQuery(r *http.Request) []render.Flash {
	if f, ok := flashMessages[r.URL.Query().Get("msg")]; ok {
		return []render.Flash{f}
	}
	return nil
}

func errorFlash(msg string) []render.Flash {
	return []render.Flash{{Type: "error", Message: msg}}
}

func (a *Admin) invalidate(ctx context.Context, categories ...string) {
	if a.fragments != nil {
		a.fragments.Invalidate(ctx, categories...)
	}
}

// notFound renders the admin error page with a 404 status.
func (a *Admin) notFound(w http.ResponseWriter, r *http.Request, section, msg, back string) {
	a.renderer.PageStatus(w, r, http.StatusNotFound, "error", &render.PageData{
		Title:   "Not Found",
		Section: section,
		Data:    map[string]any{"Message": msg, "Back": back},
	})
}

// Dashboard renders the admin dashboard page with update and category counts.
func (a *Admin) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	updateCount, err := a.updates.Count(ctx)
	if err != nil {
		slog.Error("count updates failed", "error", err)
	}
	categoryCount, err := a.categories.Count(ctx)
	if err != nil {
		slog.Error("count categories failed", "error", err)
	}
	recent, err := a.updates.List(ctx, store.UpdateFilter{Limit: 5})
	if err != nil {
		slog.Error("list recent updates failed", "error", err)
	}

	a.renderer.Page(w, r, "dashboard", &render.PageData{
		Title:   "Dashboard",
		Section: "dashboard",
		Data: map[string]any{
			"UpdateCount":   updateCount,
			"CategoryCount": categoryCount,
			"Recent":        recent,
		},
	})
}

// --- Legal updates CRUD ---

// pagination is the page navigation shown under the updates list.
type pagination struct {
	Page     int
	Prev     int
	Next     int
	HasPrev  bool
	HasNext  bool
	Category string
}

// UpdatesList renders all legal updates, newest first, optionally filtered
// by ?category=.
func (a *Admin) UpdatesList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	category := r.URL.Query().Get("category")
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	// Fetch one extra row to know whether a next page exists.
	items, err := a.updates.List(ctx, store.UpdateFilter{
		Category: category,
		Limit:    adminPageSize + 1,
		Offset:   uint64((page - 1) * adminPageSize),
	})
	if err != nil {
		slog.Error("list updates failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	hasNext := len(items) > adminPageSize
	if hasNext {
		items = items[:adminPageSize]
	}

	cats, err := a.categories.List(ctx)
	if err != nil {
		slog.Error("list categories failed", "error", err)
	}
	names := make(map[string]string, len(cats))
	for _, c := range cats {
		names[c.Slug] = c.Name
	}

	a.renderer.Page(w, r, "updates_list", &render.PageData{
		Title:   "Legal Updates",
		Section: "updates",
		Flashes: flashFromQuery(r),
		Data: map[string]any{
			"Updates":       items,
			"Categories":    cats,
			"CategoryNames": names,
			"Category":      category,
			"Pagination": pagination{
				Page:     page,
				Prev:     page - 1,
				Next:     page + 1,
				HasPrev:  page > 1,
				HasNext:  hasNext,
				Category: category,
			},
		},
	})
}

// updateFormData holds the submitted or stored values of the update form.
type updateFormData struct {
	Category string
	Heading  string
	Slug     string
	Format   models.ContentFormat
	Content  string
}

func readUpdateForm(r *http.Request) updateFormData {
	return updateFormData{
		Category: strings.TrimSpace(r.FormValue("category")),
		Heading:  sanitize.Text(r.FormValue("heading")),
		Slug:     strings.TrimSpace(r.FormValue("slug")),
		Format:   models.ParseContentFormat(r.FormValue("content_format")),
		Content:  r.FormValue("content"),
	}
}

// renderUpdateForm renders the add/edit form. existing is nil for new updates.
func (a *Admin) renderUpdateForm(w http.ResponseWriter, r *http.Request, status int, existing *models.Update, f updateFormData, flashes []render.Flash) {
	cats, err := a.categories.List(r.Context())
	if err != nil {
		slog.Error("list categories failed", "error", err)
	}

	title := "Add New Legal Update"
	var link string
	if existing != nil {
		title = "Edit Legal Update"
		link = permalink.Permalink(a.opts.HomeURL, a.opts.SlugMode, existing)
	}

	a.renderer.PageStatus(w, r, status, "update_form", &render.PageData{
		Title:   title,
		Section: "updates",
		Flashes: flashes,
		Data: map[string]any{
			"Update":     existing,
			"Categories": cats,
			"Category":   f.Category,
			"Heading":    f.Heading,
			"Slug":       f.Slug,
			"Format":     string(f.Format),
			"Content":    f.Content,
			"Permalink":  link,
		},
	})
}

// UpdateNew renders the empty add form.
func (a *Admin) UpdateNew(w http.ResponseWriter, r *http.Request) {
	a.renderUpdateForm(w, r, http.StatusOK, nil, updateFormData{
		Category: r.URL.Query().Get("category"),
		Format:   models.ContentFormatHTML,
	}, nil)
}

// UpdateCreate handles the add form submission.
func (a *Admin) UpdateCreate(w http.ResponseWriter, r *http.Request) {
	f := readUpdateForm(r)

	u, msg, err := a.prepareUpdate(r, f, 0)
	if err != nil {
		slog.Error("prepare update failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if msg != "" {
		a.renderUpdateForm(w, r, http.StatusBadRequest, nil, f, errorFlash(msg))
		return
	}

	created, err := a.updates.Create(r.Context(), u)
	if err != nil {
		slog.Error("create update failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	slog.Info("legal update created", "id", created.ID, "category", created.Category)
	a.invalidate(r.Context(), created.Category)

	http.Redirect(w, r, "/admin/updates?msg=update_created", http.StatusSeeOther)
}

// UpdateEdit renders the edit form for an existing update.
func (a *Admin) UpdateEdit(w http.ResponseWriter, r *http.Request) {
	existing, ok := a.loadUpdate(w, r)
	if !ok {
		return
	}
	a.renderUpdateForm(w, r, http.StatusOK, existing, updateFormData{
		Category: existing.Category,
		Heading:  existing.Heading,
		Slug:     existing.Slug,
		Format:   existing.ContentFormat,
		Content:  existing.Content,
	}, flashFromQuery(r))
}

// UpdateSave handles the edit form submission.
func (a *Admin) UpdateSave(w http.ResponseWriter, r *http.Request) {
	existing, ok := a.loadUpdate(w, r)
	if !ok {
		return
	}
	f := readUpdateForm(r)

	u, msg, err := a.prepareUpdate(r, f, existing.ID)
	if err != nil {
		slog.Error("prepare update failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if msg != "" {
		a.renderUpdateForm(w, r, http.StatusBadRequest, existing, f, errorFlash(msg))
		return
	}

	u.ID = existing.ID
	if err := a.updates.Update(r.Context(), u); err != nil {
		slog.Error("update legal update failed", "id", u.ID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	slog.Info("legal update saved", "id", u.ID, "category", u.Category)
	a.invalidate(r.Context(), existing.Category, u.Category)

	http.Redirect(w, r, "/admin/updates?msg=update_saved", http.StatusSeeOther)
}

// UpdateDelete removes an update.
func (a *Admin) UpdateDelete(w http.ResponseWriter, r *http.Request) {
	existing, ok := a.loadUpdate(w, r)
	if !ok {
		return
	}
	if err := a.updates.Delete(r.Context(), existing.ID); err != nil {
		slog.Error("delete update failed", "id", existing.ID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	slog.Info("legal update deleted", "id", existing.ID)
	a.invalidate(r.Context(), existing.Category)

	http.Redirect(w, r, "/admin/updates?msg=update_deleted", http.StatusSeeOther)
}

// loadUpdate resolves the {id} parameter, writing 400 or 404 when it cannot.
func (a *Admin) loadUpdate(w http.ResponseWriter, r *http.Request) (*models.Update, bool) {
	id, ok := parseID(r)
	if !ok {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return nil, false
	}
	u, err := a.updates.FindByID(r.Context(), id)
	if err != nil {
		slog.Error("find update failed", "id", id, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil, false
	}
	if u == nil {
		a.notFound(w, r, "updates", msgUpdateNotFound, "/admin/updates")
		return nil, false
	}
	return u, true
}

// prepareUpdate validates the form and builds the record to persist. A
// non-empty message is a validation failure for the user; err is a store
// failure. selfID is the ID of the update being edited, 0 when creating.
func (a *Admin) prepareUpdate(r *http.Request, f updateFormData, selfID int64) (*models.Update, string, error) {
	ctx := r.Context()
	if msg := validateUpdate(f.Heading, f.Content); msg != "" {
		return nil, msg, nil
	}

	cat, err := a.categories.FindBySlug(ctx, f.Category)
	if err != nil {
		return nil, "", err
	}
	if cat == nil {
		return nil, msgInvalidCategory, nil
	}

	content := f.Content
	if f.Format == models.ContentFormatHTML {
		content = sanitize.Content(content)
	}

	u := &models.Update{
		Heading:       f.Heading,
		Content:       content,
		ContentFormat: f.Format,
		Category:      cat.Slug,
		Slug:          slug.Generate(f.Heading),
	}

	if a.opts.SlugMode == config.SlugModeStored {
		if f.Slug != "" {
			if !slug.Valid(f.Slug) {
				return nil, msgUpdateSlugInvalid, nil
			}
			u.Slug = f.Slug
		}
		if u.Slug == "" {
			return nil, "Heading must contain at least one letter or digit.", nil
		}
		dup, err := a.updates.FindBySlug(ctx, u.Category, u.Slug)
		if err != nil {
			return nil, "", err
		}
		if dup != nil && dup.ID != selfID {
			return nil, msgUpdateSlugTaken, nil
		}
	}
	return u, "", nil
}
