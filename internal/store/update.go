// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"legalupdates/internal/models"
)

// UpdateStore handles all legal update database operations.
type UpdateStore struct {
	db *sql.DB
}

// NewUpdateStore creates a new UpdateStore with the given database connection.
func NewUpdateStore(db *sql.DB) *UpdateStore {
	return &UpdateStore{db: db}
}

var updateColumns = []string{
	"id", "heading", "content", "content_format", "category", "slug", "created_at", "updated_at",
}

// UpdateFilter narrows UpdateStore.List. Zero values mean "no filter".
type UpdateFilter struct {
	Category string
	Limit    uint64
	Offset   uint64
}

func scanUpdate(row scanner) (*models.Update, error) {
	var u models.Update
	err := row.Scan(
		&u.ID, &u.Heading, &u.Content, &u.ContentFormat,
		&u.Category, &u.Slug, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *UpdateStore) query(ctx context.Context, b sq.SelectBuilder) ([]models.Update, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list updates: %w", err)
	}
	defer rows.Close()

	var items []models.Update
	for rows.Next() {
		u, err := scanUpdate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan update: %w", err)
		}
		items = append(items, *u)
	}
	return items, rows.Err()
}

// List returns updates newest first, optionally restricted to one category.
func (s *UpdateStore) List(ctx context.Context, f UpdateFilter) ([]models.Update, error) {
	b := psql.Select(updateColumns...).From("legal_updates").
		OrderBy("created_at DESC", "id DESC")
	if f.Category != "" {
		b = b.Where(sq.Eq{"category": f.Category})
	}
	if f.Limit > 0 {
		b = b.Limit(f.Limit)
	}
	if f.Offset > 0 {
		b = b.Offset(f.Offset)
	}
	return s.query(ctx, b)
}

// ListByCategory returns a category's updates in insertion order. The
// permalink resolver scans this order so the earliest match wins.
func (s *UpdateStore) ListByCategory(ctx context.Context, category string) ([]models.Update, error) {
	return s.query(ctx, psql.Select(updateColumns...).From("legal_updates").
		Where(sq.Eq{"category": category}).
		OrderBy("created_at ASC", "id ASC"))
}

// ListByCategoryNewest returns a category's updates newest first.
func (s *UpdateStore) ListByCategoryNewest(ctx context.Context, category string) ([]models.Update, error) {
	return s.List(ctx, UpdateFilter{Category: category})
}

// FindByID retrieves an update by ID. Returns nil if not found.
func (s *UpdateStore) FindByID(ctx context.Context, id int64) (*models.Update, error) {
	return s.findOne(ctx, "find update by id",
		psql.Select(updateColumns...).From("legal_updates").Where(sq.Eq{"id": id}))
}

// FindBySlug retrieves the earliest update in category whose stored slug
// equals slug. Returns nil if not found.
func (s *UpdateStore) FindBySlug(ctx context.Context, category, slug string) (*models.Update, error) {
	return s.findOne(ctx, "find update by slug",
		psql.Select(updateColumns...).From("legal_updates").
			Where(sq.Eq{"category": category, "slug": slug}).
			OrderBy("created_at ASC", "id ASC").
			Limit(1))
}

func (s *UpdateStore) findOne(ctx context.Context, op string, b sq.SelectBuilder) (*models.Update, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	u, err := scanUpdate(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// CountByCategory returns how many updates reference category.
func (s *UpdateStore) CountByCategory(ctx context.Context, category string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM legal_updates WHERE category = $1`, category,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count updates by category: %w", err)
	}
	return n, nil
}

// Count returns the total number of updates.
func (s *UpdateStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM legal_updates`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count updates: %w", err)
	}
	return n, nil
}

// Create inserts a new update and returns it with ID and timestamps set.
func (s *UpdateStore) Create(ctx context.Context, u *models.Update) (*models.Update, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO legal_updates (heading, content, content_format, category, slug)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, heading, content, content_format, category, slug, created_at, updated_at
	`, u.Heading, u.Content, string(u.ContentFormat), u.Category, u.Slug)
	result, err := scanUpdate(row)
	if err != nil {
		return nil, fmt.Errorf("create update: %w", err)
	}
	return result, nil
}

// Update modifies an existing update. created_at is never changed.
func (s *UpdateStore) Update(ctx context.Context, u *models.Update) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE legal_updates SET
			heading = $1, content = $2, content_format = $3,
			category = $4, slug = $5, updated_at = NOW()
		WHERE id = $6
	`, u.Heading, u.Content, string(u.ContentFormat), u.Category, u.Slug, u.ID)
	if err != nil {
		return fmt.Errorf("update update: %w", err)
	}
	return nil
}

// Delete removes an update by ID.
func (s *UpdateStore) Delete(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM legal_updates WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete update: %w", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// renameCategory moves every update from category oldSlug to newSlug. It
// runs inside the category update transaction.
func renameCategory(ctx context.Context, db execer, oldSlug, newSlug string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE legal_updates SET category = $1 WHERE category = $2`,
		newSlug, oldSlug,
	)
	if err != nil {
		return fmt.Errorf("rename update category: %w", err)
	}
	return nil
}
