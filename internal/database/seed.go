package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"legalupdates/internal/models"
)

// SeedCategories inserts the default categories when the categories table is
// empty. It runs on every start and is a no-op once any category exists.
func SeedCategories(ctx context.Context, db *sql.DB) error {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM legal_update_categories").Scan(&count); err != nil {
		return fmt.Errorf("seed check categories: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, c := range models.DefaultCategories {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO legal_update_categories (slug, name) VALUES ($1, $2)`,
			c.Slug, c.Name,
		); err != nil {
			return fmt.Errorf("seed insert category %s: %w", c.Slug, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit categories: %w", err)
	}

	slog.Info("seeded default categories", "count", len(models.DefaultCategories))
	return nil
}

// SeedAdmin creates a default admin user if none exists. The admin will be
// prompted to set up 2FA on first login (totp_enabled = false).
func SeedAdmin(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("admin user already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO users (email, password_hash, display_name, role, totp_enabled)
		VALUES ($1, $2, $3, $4, $5)
	`, DefaultAdminEmail, string(hash), "Admin", string(models.RoleAdmin), false)
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	slog.Info("database seeded with default admin user",
		"email", DefaultAdminEmail,
		"password", "admin",
	)

	return nil
}

// DefaultAdminEmail is the login of the development admin account.
const DefaultAdminEmail = "admin@legalupdates.local"
