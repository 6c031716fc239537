// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// LikeStore handles like toggling and lookups. Each user holds at most
// one like per entry, enforced by a unique index on (entry_id, user_id).
type LikeStore struct {
	db *sql.DB
}

// NewLikeStore creates a new LikeStore with the given database connection.
func NewLikeStore(db *sql.DB) *LikeStore {
	return &LikeStore{db: db}
}

// Toggle flips the user's like on an entry and returns the resulting
// state: liked reports whether the like exists after the call, count is
// the entry's like counter after the call. The whole flip runs in one
// transaction so two concurrent toggles by the same user settle on a
// consistent row-plus-counter pair. The insert relies on ON CONFLICT DO
// NOTHING rather than a read-then-write check, so racing inserts never
// double-count.
func (s *LikeStore) Toggle(entryID, userID uuid.UUID) (liked bool, count int, err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return false, 0, fmt.Errorf("begin toggle like: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		INSERT INTO likes (entry_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (entry_id, user_id) DO NOTHING
	`, entryID, userID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, 0, ErrNotFound
		}
		return false, 0, fmt.Errorf("insert like: %w", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return false, 0, fmt.Errorf("toggle like rows affected: %w", err)
	}

	if inserted > 0 {
		liked = true
		err = tx.QueryRow(`
			UPDATE entries SET like_count = like_count + 1
			WHERE id = $1
			RETURNING like_count
		`, entryID).Scan(&count)
	} else {
		liked = false
		res, err = tx.Exec(`
			DELETE FROM likes WHERE entry_id = $1 AND user_id = $2
		`, entryID, userID)
		if err != nil {
			return false, 0, fmt.Errorf("delete like: %w", err)
		}
		var deleted int64
		deleted, err = res.RowsAffected()
		if err != nil {
			return false, 0, fmt.Errorf("toggle like rows affected: %w", err)
		}
		if deleted == 0 {
			// A concurrent toggle removed the row after our insert saw
			// the conflict. This call is the losing retry of the same
			// flip; the counter must not move again.
			err = tx.QueryRow(`
				SELECT like_count FROM entries WHERE id = $1
			`, entryID).Scan(&count)
		} else {
			// The counter never goes below zero even if it drifted out
			// of sync with the likes table.
			err = tx.QueryRow(`
				UPDATE entries SET like_count = GREATEST(like_count - 1, 0)
				WHERE id = $1
				RETURNING like_count
			`, entryID).Scan(&count)
		}
	}
	if err != nil {
		if err == sql.ErrNoRows {
			return false, 0, ErrNotFound
		}
		return false, 0, fmt.Errorf("adjust like count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, 0, fmt.Errorf("commit toggle like: %w", err)
	}
	return liked, count, nil
}

// HasLiked reports whether the user currently likes the entry.
func (s *LikeStore) HasLiked(entryID, userID uuid.UUID) (bool, error) {
	var liked bool
	err := s.db.QueryRow(`
		SELECT EXISTS (SELECT 1 FROM likes WHERE entry_id = $1 AND user_id = $2)
	`, entryID, userID).Scan(&liked)
	if err != nil {
		return false, fmt.Errorf("check like: %w", err)
	}
	return liked, nil
}

// CountForEntry returns the number of like rows for an entry straight
// from the likes table, bypassing the denormalized counter. Used by
// tests and reconciliation.
func (s *LikeStore) CountForEntry(entryID uuid.UUID) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM likes WHERE entry_id = $1`, entryID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count likes: %w", err)
	}
	return n, nil
}
