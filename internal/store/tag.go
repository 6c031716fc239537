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
)

const maxTagNameLen = 50

// TagStore handles tags and their many-to-many association with entries.
type TagStore struct {
	db *sql.DB
}

// NewTagStore creates a new TagStore with the given database connection.
func NewTagStore(db *sql.DB) *TagStore {
	return &TagStore{db: db}
}

// Ensure returns the tag with the given name, creating it if it does not
// exist yet. Names are trimmed; the lookup and create run as one upsert
// so concurrent calls settle on the same row.
func (s *TagStore) Ensure(name string) (*models.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationErr("name", "tag name is required")
	}
	if utf8.RuneCountInString(name) > maxTagNameLen {
		return nil, validationErr("name", fmt.Sprintf("tag name is too long (max %d characters)", maxTagNameLen))
	}

	// The no-op DO UPDATE makes RETURNING yield the existing row on
	// conflict.
	var t models.Tag
	err := s.db.QueryRow(`
		INSERT INTO tags (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, created_at
	`, name).Scan(&t.ID, &t.Name, &t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("ensure tag: %w", err)
	}
	return &t, nil
}

// FindByName retrieves a tag by its exact name. Returns nil if not found.
func (s *TagStore) FindByName(name string) (*models.Tag, error) {
	var t models.Tag
	err := s.db.QueryRow(`
		SELECT id, name, created_at FROM tags WHERE name = $1
	`, strings.TrimSpace(name)).Scan(&t.ID, &t.Name, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find tag by name: %w", err)
	}
	return &t, nil
}

// Attach links a tag to an entry. Attaching an already-attached tag is a
// no-op; a missing entry or tag returns ErrNotFound.
func (s *TagStore) Attach(entryID, tagID uuid.UUID) error {
	_, err := s.db.Exec(`
		INSERT INTO entry_tags (entry_id, tag_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, entryID, tagID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrNotFound
		}
		return fmt.Errorf("attach tag: %w", err)
	}
	return nil
}

// Detach unlinks a tag from an entry. Detaching a tag that was not
// attached is a no-op.
func (s *TagStore) Detach(entryID, tagID uuid.UUID) error {
	_, err := s.db.Exec(`
		DELETE FROM entry_tags WHERE entry_id = $1 AND tag_id = $2
	`, entryID, tagID)
	if err != nil {
		return fmt.Errorf("detach tag: %w", err)
	}
	return nil
}

// ListForEntry returns the tags attached to an entry, sorted by name.
func (s *TagStore) ListForEntry(entryID uuid.UUID) ([]models.Tag, error) {
	rows, err := s.db.Query(`
		SELECT t.id, t.name, t.created_at
		FROM tags t
		JOIN entry_tags et ON et.tag_id = t.id
		WHERE et.entry_id = $1
		ORDER BY t.name ASC
	`, entryID)
	if err != nil {
		return nil, fmt.Errorf("list entry tags: %w", err)
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// ListAll returns every tag with its count of published entries, sorted
// by name.
func (s *TagStore) ListAll() ([]models.Tag, error) {
	rows, err := s.db.Query(`
		SELECT t.id, t.name, t.created_at,
		       COUNT(e.id) FILTER (WHERE e.status = 'published')
		FROM tags t
		LEFT JOIN entry_tags et ON et.tag_id = t.id
		LEFT JOIN entries e ON e.id = et.entry_id
		GROUP BY t.id
		ORDER BY t.name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt, &t.EntryCount); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}
