package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"legalupdates/internal/models"
	"legalupdates/internal/render"
	"legalupdates/internal/sanitize"
	"legalupdates/internal/slug"
	"legalupdates/internal/store"
)

// CategoriesList renders all categories in name order with update counts.
func (a *Admin) CategoriesList(w http.ResponseWriter, r *http.Request) {
	cats, err := a.categories.List(r.Context())
	if err != nil {
		slog.Error("list categories failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	a.renderCategories(w, r, http.StatusOK, cats, flashFromQuery(r))
}

func (a *Admin) renderCategories(w http.ResponseWriter, r *http.Request, status int, cats []models.Category, flashes []render.Flash) {
	a.renderer.PageStatus(w, r, status, "categories_list", &render.PageData{
		Title:   "Categories",
		Section: "categories",
		Flashes: flashes,
		Data:    map[string]any{"Categories": cats},
	})
}

func (a *Admin) renderCategoryForm(w http.ResponseWriter, r *http.Request, status int, existing *models.Category, name, catSlug string, flashes []render.Flash) {
	title := "Add New Category"
	if existing != nil {
		title = "Edit Category"
	}
	a.renderer.PageStatus(w, r, status, "category_form", &render.PageData{
		Title:   title,
		Section: "categories",
		Flashes: flashes,
		Data: map[string]any{
			"Category": existing,
			"Name":     name,
			"Slug":     catSlug,
		},
	})
}

// CategoryNew renders the empty category form.
func (a *Admin) CategoryNew(w http.ResponseWriter, r *http.Request) {
	a.renderCategoryForm(w, r, http.StatusOK, nil, "", "", nil)
}

// readCategoryForm returns the sanitized name and the normalized slug. An
// empty slug field is derived from the name.
func readCategoryForm(r *http.Request) (name, catSlug string) {
	name = sanitize.Text(r.FormValue("name"))
	catSlug = slug.Generate(sanitize.Text(r.FormValue("slug")))
	if catSlug == "" {
		catSlug = slug.Generate(name)
	}
	return name, catSlug
}

// CategoryCreate handles the new category form submission.
func (a *Admin) CategoryCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name, catSlug := readCategoryForm(r)

	if msg := validateCategory(name, catSlug); msg != "" {
		a.renderCategoryForm(w, r, http.StatusBadRequest, nil, name, catSlug, errorFlash(msg))
		return
	}

	taken, err := a.categories.SlugTaken(ctx, catSlug, 0)
	if err != nil {
		slog.Error("check category slug failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if taken {
		a.renderCategoryForm(w, r, http.StatusConflict, nil, name, catSlug, errorFlash(msgSlugTaken))
		return
	}

	created, err := a.categories.Create(ctx, &models.Category{Slug: catSlug, Name: name})
	if errors.Is(err, store.ErrSlugTaken) {
		a.renderCategoryForm(w, r, http.StatusConflict, nil, name, catSlug, errorFlash(msgSlugTaken))
		return
	}
	if err != nil {
		slog.Error("create category failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	slog.Info("category created", "id", created.ID, "slug", created.Slug)

	http.Redirect(w, r, "/admin/categories?msg=category_created", http.StatusSeeOther)
}

// CategoryEdit renders the edit form for an existing category.
func (a *Admin) CategoryEdit(w http.ResponseWriter, r *http.Request) {
	existing, ok := a.loadCategory(w, r)
	if !ok {
		return
	}
	a.renderCategoryForm(w, r, http.StatusOK, existing, existing.Name, existing.Slug, nil)
}

// CategorySave handles the edit form submission. Renaming the slug moves
// every update of the category along with it.
func (a *Admin) CategorySave(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	existing, ok := a.loadCategory(w, r)
	if !ok {
		return
	}
	name, catSlug := readCategoryForm(r)

	if msg := validateCategory(name, catSlug); msg != "" {
		a.renderCategoryForm(w, r, http.StatusBadRequest, existing, name, catSlug, errorFlash(msg))
		return
	}

	taken, err := a.categories.SlugTaken(ctx, catSlug, existing.ID)
	if err != nil {
		slog.Error("check category slug failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if taken {
		a.renderCategoryForm(w, r, http.StatusConflict, existing, name, catSlug, errorFlash(msgSlugTaken))
		return
	}

	updated := &models.Category{ID: existing.ID, Slug: catSlug, Name: name}
	err = a.categories.Update(ctx, updated, existing.Slug)
	if errors.Is(err, store.ErrSlugTaken) {
		a.renderCategoryForm(w, r, http.StatusConflict, existing, name, catSlug, errorFlash(msgSlugTaken))
		return
	}
	if err != nil {
		slog.Error("update category failed", "id", existing.ID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	slog.Info("category saved", "id", existing.ID, "slug", catSlug, "old_slug", existing.Slug)
	a.invalidate(ctx, existing.Slug, catSlug)

	http.Redirect(w, r, "/admin/categories?msg=category_saved", http.StatusSeeOther)
}

// CategoryDelete removes a category that no update references. A category
// still in use is kept and the list is re-rendered with a 409.
func (a *Admin) CategoryDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	existing, ok := a.loadCategory(w, r)
	if !ok {
		return
	}

	inUse, err := a.updates.CountByCategory(ctx, existing.Slug)
	if err != nil {
		slog.Error("count category references failed", "slug", existing.Slug, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if inUse > 0 {
		cats, err := a.categories.List(ctx)
		if err != nil {
			slog.Error("list categories failed", "error", err)
		}
		msg := fmt.Sprintf("Cannot delete category. It is being used by %d legal update(s).", inUse)
		a.renderCategories(w, r, http.StatusConflict, cats, errorFlash(msg))
		return
	}

	if err := a.categories.Delete(ctx, existing.ID); err != nil {
		slog.Error("delete category failed", "id", existing.ID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	slog.Info("category deleted", "id", existing.ID, "slug", existing.Slug)
	a.invalidate(ctx, existing.Slug)

	http.Redirect(w, r, "/admin/categories?msg=category_deleted", http.StatusSeeOther)
}

// loadCategory resolves the {id} parameter, writing 400 or 404 when it cannot.
func (a *Admin) loadCategory(w http.ResponseWriter, r *http.Request) (*models.Category, bool) {
	id, ok := parseID(r)
	if !ok {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return nil, false
	}
	c, err := a.categories.FindByID(r.Context(), id)
	if err != nil {
		slog.Error("find category failed", "id", id, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil, false
	}
	if c == nil {
		a.notFound(w, r, "categories", msgCategoryNotFound, "/admin/categories")
		return nil, false
	}
	return c, true
}
