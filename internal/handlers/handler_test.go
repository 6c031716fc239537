// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler integration
// tests. Tests are skipped when PostgreSQL or Valkey are unavailable.
package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"lexipedia/internal/cache"
	"lexipedia/internal/database"
	"lexipedia/internal/middleware"
	"lexipedia/internal/models"
	"lexipedia/internal/session"
	"lexipedia/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "lexipedia")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "lexipedia")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkeyClient returns a Redis client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		// Clean up test session and cache keys.
		for _, pattern := range []string{"session:*", "summary:*"} {
			keys, _ := client.Keys(ctx, pattern).Result()
			if len(keys) > 0 {
				client.Del(ctx, keys...)
			}
		}
		client.Close()
	})

	return client
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB            *sql.DB
	Valkey        *redis.Client
	Sessions      *session.Store
	UserStore     *store.UserStore
	EntryStore    *store.EntryStore
	CategoryStore *store.CategoryStore
	TagStore      *store.TagStore
	CommentStore  *store.CommentStore
	LikeStore     *store.LikeStore
	ImageStore    *store.ImageStore
	Summaries     *cache.SummaryCache
	Auth          *Auth
	Public        *Public
	Entries       *Entries
	Admin         *Admin
}

// newTestEnv creates a complete test environment with all handler
// dependencies. S3 storage is left unconfigured — image URLs are simply
// omitted and uploads answer 503.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	vk := testValkeyClient(t)

	sessions := session.NewStore(vk, false)
	userStore := store.NewUserStore(db)
	entryStore := store.NewEntryStore(db)
	categoryStore := store.NewCategoryStore(db)
	tagStore := store.NewTagStore(db)
	commentStore := store.NewCommentStore(db)
	likeStore := store.NewLikeStore(db)
	imageStore := store.NewImageStore(db)
	summaries := cache.NewSummaryCache(vk, cache.DefaultSummaryTTL)

	return &testEnv{
		DB:            db,
		Valkey:        vk,
		Sessions:      sessions,
		UserStore:     userStore,
		EntryStore:    entryStore,
		CategoryStore: categoryStore,
		TagStore:      tagStore,
		CommentStore:  commentStore,
		LikeStore:     likeStore,
		ImageStore:    imageStore,
		Summaries:     summaries,
		Auth:          NewAuth(sessions, userStore),
		Public:        NewPublic(entryStore, categoryStore, tagStore, commentStore, likeStore, imageStore, nil, summaries),
		Entries:       NewEntries(entryStore, commentStore, likeStore, tagStore, imageStore, nil, summaries),
		Admin:         NewAdmin(categoryStore, userStore, summaries),
	}
}

// ctxWithSession adds session data to a context using the middleware key.
func ctxWithSession(ctx context.Context, data *session.Data) context.Context {
	return context.WithValue(ctx, middleware.SessionKey, data)
}

// testSession creates a session.Data for testing.
func testSession(userID uuid.UUID, email string, isAdmin, twoFADone bool) *session.Data {
	return &session.Data{
		UserID:      userID,
		Email:       email,
		DisplayName: "Test User",
		IsAdmin:     isAdmin,
		TwoFADone:   twoFADone,
	}
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// withChiURLParamAndSession adds both chi URL param and session to a request.
func withChiURLParamAndSession(r *http.Request, key, value string, sess *session.Data) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	ctx = context.WithValue(ctx, middleware.SessionKey, sess)
	return r.WithContext(ctx)
}

// cleanUsers removes test users by email; their entries, comments, and
// likes cascade.
func cleanUsers(t *testing.T, db *sql.DB, emails ...string) {
	t.Helper()
	for _, email := range emails {
		db.Exec("DELETE FROM users WHERE email = $1", email)
	}
}

// cleanEntries removes test entries by slug.
func cleanEntries(t *testing.T, db *sql.DB, slugs ...string) {
	t.Helper()
	for _, s := range slugs {
		db.Exec("DELETE FROM entries WHERE slug = $1", s)
	}
}

// cleanCategories removes test categories by slug.
func cleanCategories(t *testing.T, db *sql.DB, slugs ...string) {
	t.Helper()
	for _, s := range slugs {
		db.Exec("DELETE FROM categories WHERE slug = $1", s)
	}
}

// cleanTags removes test tags by name.
func cleanTags(t *testing.T, db *sql.DB, names ...string) {
	t.Helper()
	for _, n := range names {
		db.Exec("DELETE FROM tags WHERE name = $1", n)
	}
}

// mustUser creates a user for a test and registers its cleanup.
func mustUser(t *testing.T, env *testEnv, email string, isAdmin bool) *models.User {
	t.Helper()
	cleanUsers(t, env.DB, email)
	u, err := env.UserStore.Create(email, "test-password", "Test User", isAdmin)
	if err != nil {
		t.Fatalf("create test user %s: %v", email, err)
	}
	t.Cleanup(func() { cleanUsers(t, env.DB, email) })
	return u
}

// mustEntry creates an entry for a test and registers its cleanup.
func mustEntry(t *testing.T, env *testEnv, authorID uuid.UUID, slug string, status models.EntryStatus) *models.Entry {
	t.Helper()
	cleanEntries(t, env.DB, slug)
	e, err := env.EntryStore.Create(authorID, store.EntryInput{
		Title:   "Test " + slug,
		Slug:    slug,
		Content: "Enough content for the minimum length check.",
		Status:  status,
	})
	if err != nil {
		t.Fatalf("create test entry %s: %v", slug, err)
	}
	t.Cleanup(func() { cleanEntries(t, env.DB, slug) })
	return e
}
