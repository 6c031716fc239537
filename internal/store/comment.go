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

// Comment length limits, applied to the trimmed content.
const (
	minCommentLen = 2
	maxCommentLen = 1000
)

// CommentStore handles comment persistence. Comments are never hard
// deleted by moderation; they are flipped inactive and drop out of the
// public listing while staying attributable.
type CommentStore struct {
	db *sql.DB
}

// NewCommentStore creates a new CommentStore with the given database connection.
func NewCommentStore(db *sql.DB) *CommentStore {
	return &CommentStore{db: db}
}

const commentColumns = `id, entry_id, author_id, content, is_active, created_at, updated_at`

func scanComment(scanner interface{ Scan(...any) error }) (*models.Comment, error) {
	var c models.Comment
	err := scanner.Scan(
		&c.ID, &c.EntryID, &c.AuthorID, &c.Content, &c.IsActive,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Add creates an active comment on an entry. The content is trimmed
// before validation and storage. Commenting on a missing entry returns
// ErrNotFound.
func (s *CommentStore) Add(entryID, authorID uuid.UUID, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if n := utf8.RuneCountInString(content); n < minCommentLen {
		return nil, validationErr("content", fmt.Sprintf("comment must be at least %d characters", minCommentLen))
	} else if n > maxCommentLen {
		return nil, validationErr("content", fmt.Sprintf("comment is too long (max %d characters)", maxCommentLen))
	}

	row := s.db.QueryRow(`
		INSERT INTO comments (entry_id, author_id, content)
		VALUES ($1, $2, $3)
		RETURNING `+commentColumns,
		entryID, authorID, content,
	)
	c, err := scanComment(row)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("add comment: %w", err)
	}
	return c, nil
}

// ListActiveByEntry returns the active comments on an entry, oldest
// first, so a thread reads top to bottom.
func (s *CommentStore) ListActiveByEntry(entryID uuid.UUID) ([]models.Comment, error) {
	rows, err := s.db.Query(`
		SELECT `+commentColumns+` FROM comments
		WHERE entry_id = $1 AND is_active = TRUE
		ORDER BY created_at ASC
	`, entryID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, *c)
	}
	return comments, rows.Err()
}

// SetActive flips a comment's moderation flag on behalf of requesterID.
// Only the comment's author or an admin may do so.
func (s *CommentStore) SetActive(commentID, requesterID uuid.UUID, requesterIsAdmin bool, active bool) error {
	current, err := s.FindByID(commentID)
	if err != nil {
		return err
	}
	if current == nil {
		return ErrNotFound
	}
	if current.AuthorID != requesterID && !requesterIsAdmin {
		return ErrPermission
	}

	_, err = s.db.Exec(`
		UPDATE comments SET is_active = $1, updated_at = NOW() WHERE id = $2
	`, active, commentID)
	if err != nil {
		return fmt.Errorf("set comment active: %w", err)
	}
	return nil
}

// FindByID retrieves a comment regardless of its moderation state.
// Returns nil if not found.
func (s *CommentStore) FindByID(id uuid.UUID) (*models.Comment, error) {
	row := s.db.QueryRow(`SELECT `+commentColumns+` FROM comments WHERE id = $1`, id)
	c, err := scanComment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find comment by id: %w", err)
	}
	return c, nil
}
