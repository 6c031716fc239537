// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// EntryStatus represents the lifecycle state of an encyclopedia entry.
type EntryStatus string

const (
	EntryStatusDraft     EntryStatus = "draft"
	EntryStatusPublished EntryStatus = "published"
	EntryStatusArchived  EntryStatus = "archived"
)

// ValidStatus reports whether s is one of the known entry statuses.
func ValidStatus(s EntryStatus) bool {
	switch s {
	case EntryStatusDraft, EntryStatusPublished, EntryStatusArchived:
		return true
	}
	return false
}

// Entry is the central content unit: a short encyclopedia article
// identified publicly by its slug.
type Entry struct {
	ID          uuid.UUID   `json:"id"`
	Title       string      `json:"title"`
	Slug        string      `json:"slug"`
	Content     string      `json:"content"`
	Summary     string      `json:"summary,omitempty"`
	AuthorID    uuid.UUID   `json:"author_id"`
	CategoryID  *uuid.UUID  `json:"category_id,omitempty"`
	Status      EntryStatus `json:"status"`
	ViewCount   int         `json:"view_count"`
	LikeCount   int         `json:"like_count"`
	PublishedAt *time.Time  `json:"published_at,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// IsPublished returns true if the entry is publicly visible.
func (e *Entry) IsPublished() bool {
	return e.Status == EntryStatusPublished
}

// EditableBy reports whether the given user may update or delete the
// entry. Only the author and privileged (admin) users qualify.
func (e *Entry) EditableBy(userID uuid.UUID, isAdmin bool) bool {
	return isAdmin || e.AuthorID == userID
}

// EntryImage is an image attached to an entry. The blob itself lives in
// object storage under S3Key; the row is owned by its entry and removed
// with it.
type EntryImage struct {
	ID         uuid.UUID `json:"id"`
	EntryID    uuid.UUID `json:"entry_id"`
	S3Key      string    `json:"s3_key"`
	Caption    string    `json:"caption,omitempty"`
	UploadedAt time.Time `json:"uploaded_at"`
}
