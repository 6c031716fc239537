// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// query.go holds the read-only listing queries over entries: filtered and
// searched pagination for the public index, and the popular/latest
// selections used by the homepage.
package store

import (
	"fmt"
	"strings"

	"lexipedia/internal/models"
)

// Pagination defaults for entry listings.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ListFilter narrows an entry listing. A zero Status means "any status";
// public entry points always set it to published.
type ListFilter struct {
	Status       models.EntryStatus
	CategorySlug string
	Search       string
	OrderByViews bool
}

// List returns one page of entries matching the filter plus the total
// match count. Search matches case-insensitively against title, content,
// or summary. Pages are 1-indexed; a page past the end yields an empty
// slice, never an error. Ordering is newest-first unless OrderByViews
// requests popularity order.
func (s *EntryStore) List(f ListFilter, page, pageSize int) ([]models.Entry, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	var conds []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Status != "" {
		conds = append(conds, "e.status = "+arg(f.Status))
	}
	if f.CategorySlug != "" {
		conds = append(conds, "e.category_id = (SELECT id FROM categories WHERE slug = "+arg(f.CategorySlug)+")")
	}
	if f.Search != "" {
		p := arg("%" + f.Search + "%")
		conds = append(conds, fmt.Sprintf("(e.title ILIKE %s OR e.content ILIKE %s OR e.summary ILIKE %s)", p, p, p))
	}

	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM entries e "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count entries: %w", err)
	}

	order := "e.created_at DESC"
	if f.OrderByViews {
		order = "e.view_count DESC, e.created_at DESC"
	}

	query := fmt.Sprintf(
		"SELECT %s FROM entries e %s ORDER BY %s LIMIT %s OFFSET %s",
		entryColumns, where, order, arg(pageSize), arg((page-1)*pageSize),
	)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var items []models.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan entry: %w", err)
		}
		items = append(items, *e)
	}
	return items, total, rows.Err()
}

// Popular returns up to limit published entries ordered by view count
// descending.
func (s *EntryStore) Popular(limit int) ([]models.Entry, error) {
	return s.topPublished("view_count DESC, created_at DESC", limit)
}

// Latest returns up to limit published entries, newest first.
func (s *EntryStore) Latest(limit int) ([]models.Entry, error) {
	return s.topPublished("created_at DESC", limit)
}

// topPublished runs a bounded ordered select over published entries.
func (s *EntryStore) topPublished(order string, limit int) ([]models.Entry, error) {
	rows, err := s.db.Query(fmt.Sprintf(`
		SELECT %s FROM entries
		WHERE status = 'published'
		ORDER BY %s
		LIMIT $1
	`, entryColumns, order), limit)
	if err != nil {
		return nil, fmt.Errorf("top published entries: %w", err)
	}
	defer rows.Close()

	var items []models.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		items = append(items, *e)
	}
	return items, rows.Err()
}
