// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"lexipedia/internal/database"
	"lexipedia/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "lexipedia")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "lexipedia")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := testDSN()
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	// Run migrations to ensure the schema is current.
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Downgrade goose global state.
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// cleanUsers removes test users by email. Deleting the user cascades to
// their entries, comments, and likes. Call in t.Cleanup().
func cleanUsers(t *testing.T, db *sql.DB, emails ...string) {
	t.Helper()
	for _, email := range emails {
		db.Exec("DELETE FROM users WHERE email = $1", email)
	}
}

// cleanEntries removes test entries by slug. Call in t.Cleanup().
func cleanEntries(t *testing.T, db *sql.DB, slugs ...string) {
	t.Helper()
	for _, slug := range slugs {
		db.Exec("DELETE FROM entries WHERE slug = $1", slug)
	}
}

// cleanCategories removes test categories by slug. Call in t.Cleanup().
func cleanCategories(t *testing.T, db *sql.DB, slugs ...string) {
	t.Helper()
	for _, slug := range slugs {
		db.Exec("DELETE FROM categories WHERE slug = $1", slug)
	}
}

// cleanTags removes test tags by name. Call in t.Cleanup().
func cleanTags(t *testing.T, db *sql.DB, names ...string) {
	t.Helper()
	for _, name := range names {
		db.Exec("DELETE FROM tags WHERE name = $1", name)
	}
}

// mustCreateUser inserts a user for a test and registers its cleanup.
func mustCreateUser(t *testing.T, db *sql.DB, email string, isAdmin bool) *models.User {
	t.Helper()
	users := NewUserStore(db)
	u, err := users.Create(email, "test-password", "Test User", isAdmin)
	if err != nil {
		t.Fatalf("create test user %s: %v", email, err)
	}
	t.Cleanup(func() { cleanUsers(t, db, email) })
	return u
}

// mustCreateEntry inserts an entry for a test and registers its cleanup.
func mustCreateEntry(t *testing.T, db *sql.DB, authorID uuid.UUID, slug string, status models.EntryStatus) *models.Entry {
	t.Helper()
	entries := NewEntryStore(db)
	e, err := entries.Create(authorID, EntryInput{
		Title:   "Test " + slug,
		Slug:    slug,
		Content: "Enough content for the minimum length check.",
		Status:  status,
	})
	if err != nil {
		t.Fatalf("create test entry %s: %v", slug, err)
	}
	t.Cleanup(func() { cleanEntries(t, db, slug) })
	return e
}
