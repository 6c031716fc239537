// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Category is a flat named grouping of entries. Deleting a category
// clears the reference on its entries rather than cascading.
type Category struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Virtual field populated by store list methods.
	EntryCount int `json:"entry_count"`
}

// CategoryStats aggregates published entries in one category.
type CategoryStats struct {
	Category   Category `json:"category"`
	EntryCount int      `json:"entry_count"`
	TotalViews int      `json:"total_views"`
	TotalLikes int      `json:"total_likes"`
	Popular    []Entry  `json:"popular"`
	Recent     []Entry  `json:"recent"`
}
