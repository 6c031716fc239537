package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// Seed populates the database with initial development data: a default
// admin user and a handful of starter categories. It is a no-op when
// users already exist.
func Seed(db *sql.DB) error {
	// Check if any users exist already.
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	// Hash the default admin password.
	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	// Insert default admin user. 2FA is not enabled — they must set it up
	// on first login.
	_, err = db.Exec(`
		INSERT INTO users (email, password_hash, display_name, is_admin, totp_enabled)
		VALUES ($1, $2, $3, $4, $5)
	`, "admin@lexipedia.local", string(hash), "Admin", true, false)
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	// Starter categories so the public listing isn't empty on first run.
	categories := []struct {
		name, slug, description string
	}{
		{"Science", "science", "Natural sciences, mathematics, and technology"},
		{"History", "history", "Historical events, periods, and figures"},
		{"Culture", "culture", "Arts, literature, music, and traditions"},
		{"Geography", "geography", "Places, regions, and the physical world"},
	}
	for _, c := range categories {
		_, err = db.Exec(`
			INSERT INTO categories (name, slug, description)
			VALUES ($1, $2, $3)
			ON CONFLICT (name) DO NOTHING
		`, c.name, c.slug, c.description)
		if err != nil {
			return fmt.Errorf("seed insert category %q: %w", c.name, err)
		}
	}

	slog.Info("database seeded with default admin user",
		"email", "admin@lexipedia.local",
		"password", "admin",
	)

	return nil
}
