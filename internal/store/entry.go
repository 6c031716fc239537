// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"lexipedia/internal/models"
	"lexipedia/internal/slug"
)

// Validation limits for entry fields.
const (
	maxTitleLen   = 200
	maxSlugLen    = 200
	minContentLen = 10
	maxSummaryLen = 500
)

// EntryStore handles all entry-related database operations: CRUD with
// permission checks, the view counter, and the public listing queries.
type EntryStore struct {
	db *sql.DB
}

// NewEntryStore creates a new EntryStore with the given database connection.
func NewEntryStore(db *sql.DB) *EntryStore {
	return &EntryStore{db: db}
}

const entryColumns = `id, title, slug, content, summary, author_id, category_id,
	       status, view_count, like_count, published_at, created_at, updated_at`

// scanEntry scans a row into an Entry struct.
func scanEntry(scanner interface{ Scan(...any) error }) (*models.Entry, error) {
	var e models.Entry
	err := scanner.Scan(
		&e.ID, &e.Title, &e.Slug, &e.Content, &e.Summary, &e.AuthorID,
		&e.CategoryID, &e.Status, &e.ViewCount, &e.LikeCount,
		&e.PublishedAt, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// EntryInput carries the caller-supplied fields for creating or updating
// an entry.
type EntryInput struct {
	Title      string
	Slug       string
	Content    string
	Summary    string
	CategoryID *uuid.UUID
	Status     models.EntryStatus
}

// validate checks the input fields and returns the first problem found.
// All validation runs before any mutation is attempted.
func (in *EntryInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return validationErr("title", "title is required")
	}
	if utf8.RuneCountInString(in.Title) > maxTitleLen {
		return validationErr("title", fmt.Sprintf("title is too long (max %d characters)", maxTitleLen))
	}
	if !slug.Valid(in.Slug) {
		return validationErr("slug", "slug may only contain letters, digits, hyphens, and underscores")
	}
	if utf8.RuneCountInString(in.Slug) > maxSlugLen {
		return validationErr("slug", fmt.Sprintf("slug is too long (max %d characters)", maxSlugLen))
	}
	if utf8.RuneCountInString(strings.TrimSpace(in.Content)) < minContentLen {
		return validationErr("content", fmt.Sprintf("content must be at least %d characters", minContentLen))
	}
	if utf8.RuneCountInString(in.Summary) > maxSummaryLen {
		return validationErr("summary", fmt.Sprintf("summary is too long (max %d characters)", maxSummaryLen))
	}
	if !models.ValidStatus(in.Status) {
		return validationErr("status", "unknown status")
	}
	return nil
}

// Create inserts a new entry owned by authorID and returns it. The status
// defaults to draft; creating directly as published stamps published_at.
// A duplicate slug — whether caught by the pre-check or by the unique
// index at commit time — is reported as a ValidationError.
func (s *EntryStore) Create(authorID uuid.UUID, in EntryInput) (*models.Entry, error) {
	if in.Status == "" {
		in.Status = models.EntryStatusDraft
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	row := s.db.QueryRow(`
		INSERT INTO entries (title, slug, content, summary, author_id, category_id, status, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7,
		        CASE WHEN $7 = 'published' THEN NOW() END)
		RETURNING `+entryColumns,
		in.Title, in.Slug, in.Content, in.Summary, authorID, in.CategoryID, in.Status,
	)
	entry, err := scanEntry(row)
	if err != nil {
		if isUniqueViolation(err, "entries_slug") {
			return nil, validationErr("slug", "slug is already in use")
		}
		if isForeignKeyViolation(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("create entry: %w", err)
	}
	return entry, nil
}

// Update modifies an existing entry on behalf of editorID. Only the
// author or an admin may edit; otherwise ErrPermission is returned
// before anything is written. The first transition to published stamps
// published_at exactly once — later transitions never change it.
func (s *EntryStore) Update(entryID, editorID uuid.UUID, editorIsAdmin bool, in EntryInput) (*models.Entry, error) {
	current, err := s.FindByID(entryID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrNotFound
	}
	if !current.EditableBy(editorID, editorIsAdmin) {
		return nil, ErrPermission
	}

	if in.Status == "" {
		in.Status = current.Status
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	row := s.db.QueryRow(`
		UPDATE entries SET
			title = $1, slug = $2, content = $3, summary = $4,
			category_id = $5, status = $6,
			published_at = CASE WHEN $6 = 'published'
			               THEN COALESCE(published_at, NOW())
			               ELSE published_at END,
			updated_at = NOW()
		WHERE id = $7
		RETURNING `+entryColumns,
		in.Title, in.Slug, in.Content, in.Summary, in.CategoryID, in.Status, entryID,
	)
	entry, err := scanEntry(row)
	if err != nil {
		if isUniqueViolation(err, "entries_slug") {
			return nil, validationErr("slug", "slug is already in use")
		}
		return nil, fmt.Errorf("update entry: %w", err)
	}
	return entry, nil
}

// Delete removes an entry on behalf of requesterID. The same permission
// rule as Update applies. Owned images, comments, likes, and tag links
// are removed by the database cascade.
func (s *EntryStore) Delete(entryID, requesterID uuid.UUID, requesterIsAdmin bool) error {
	current, err := s.FindByID(entryID)
	if err != nil {
		return err
	}
	if current == nil {
		return ErrNotFound
	}
	if !current.EditableBy(requesterID, requesterIsAdmin) {
		return ErrPermission
	}

	if _, err := s.db.Exec(`DELETE FROM entries WHERE id = $1`, entryID); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	return nil
}

// RecordView atomically increments the view counter of a published
// entry. Draft and archived entries are left untouched without error.
// The increment is a single UPDATE so concurrent calls never lose
// updates.
func (s *EntryStore) RecordView(entryID uuid.UUID) error {
	res, err := s.db.Exec(`
		UPDATE entries SET view_count = view_count + 1
		WHERE id = $1 AND status = 'published'
	`, entryID)
	if err != nil {
		return fmt.Errorf("record view: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		// Either the entry is not published (a no-op) or it doesn't
		// exist at all (an error).
		var exists bool
		if err := s.db.QueryRow(`SELECT EXISTS (SELECT 1 FROM entries WHERE id = $1)`, entryID).Scan(&exists); err != nil {
			return fmt.Errorf("record view check: %w", err)
		}
		if !exists {
			return ErrNotFound
		}
	}
	return nil
}

// FindByID retrieves an entry by its UUID regardless of status.
// Returns nil if not found.
func (s *EntryStore) FindByID(id uuid.UUID) (*models.Entry, error) {
	row := s.db.QueryRow(`SELECT `+entryColumns+` FROM entries WHERE id = $1`, id)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find entry by id: %w", err)
	}
	return e, nil
}

// FindBySlug retrieves an entry by its slug regardless of status. Used
// by the edit and delete paths where the owner addresses drafts too.
// Returns nil if not found.
func (s *EntryStore) FindBySlug(slugParam string) (*models.Entry, error) {
	row := s.db.QueryRow(`SELECT `+entryColumns+` FROM entries WHERE slug = $1`, slugParam)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find entry by slug: %w", err)
	}
	return e, nil
}

// FindPublishedBySlug retrieves a published entry by its slug. Used for
// the public detail page. Returns nil if not found or not published.
func (s *EntryStore) FindPublishedBySlug(slugParam string) (*models.Entry, error) {
	row := s.db.QueryRow(`
		SELECT `+entryColumns+` FROM entries
		WHERE slug = $1 AND status = 'published'
	`, slugParam)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find published entry by slug: %w", err)
	}
	return e, nil
}
