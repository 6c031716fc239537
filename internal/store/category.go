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

const maxCategoryNameLen = 100

// CategoryStore handles category-related database operations, including
// the per-category statistics panel.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore creates a new CategoryStore with the given database connection.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, name, slug, description, created_at, updated_at`

func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns all categories ordered by name, each carrying its count
// of published entries.
func (s *CategoryStore) List() ([]models.Category, error) {
	rows, err := s.db.Query(`
		SELECT c.id, c.name, c.slug, c.description, c.created_at, c.updated_at,
		       COUNT(e.id) FILTER (WHERE e.status = 'published')
		FROM categories c
		LEFT JOIN entries e ON e.category_id = c.id
		GROUP BY c.id
		ORDER BY c.name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatedAt, &c.UpdatedAt, &c.EntryCount); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// FindByID retrieves a category by UUID. Returns nil if not found.
func (s *CategoryStore) FindByID(id uuid.UUID) (*models.Category, error) {
	row := s.db.QueryRow(`SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// FindBySlug retrieves a category by slug. Returns nil if not found.
func (s *CategoryStore) FindBySlug(slugParam string) (*models.Category, error) {
	row := s.db.QueryRow(`SELECT `+categoryColumns+` FROM categories WHERE slug = $1`, slugParam)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by slug: %w", err)
	}
	return c, nil
}

func validateCategory(name, slugParam string) error {
	if strings.TrimSpace(name) == "" {
		return validationErr("name", "name is required")
	}
	if utf8.RuneCountInString(name) > maxCategoryNameLen {
		return validationErr("name", fmt.Sprintf("name is too long (max %d characters)", maxCategoryNameLen))
	}
	if !slug.Valid(slugParam) {
		return validationErr("slug", "slug may only contain letters, digits, hyphens, and underscores")
	}
	return nil
}

// Create inserts a new category. Name and slug are unique; a duplicate
// of either comes back as a ValidationError.
func (s *CategoryStore) Create(name, slugParam, description string) (*models.Category, error) {
	if err := validateCategory(name, slugParam); err != nil {
		return nil, err
	}

	row := s.db.QueryRow(`
		INSERT INTO categories (name, slug, description)
		VALUES ($1, $2, $3)
		RETURNING `+categoryColumns,
		name, slugParam, description,
	)
	c, err := scanCategory(row)
	if err != nil {
		if isUniqueViolation(err, "categories_name") {
			return nil, validationErr("name", "a category with this name already exists")
		}
		if isUniqueViolation(err, "categories_slug") {
			return nil, validationErr("slug", "slug is already in use")
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

// Update modifies a category's name, slug, and description.
func (s *CategoryStore) Update(id uuid.UUID, name, slugParam, description string) (*models.Category, error) {
	if err := validateCategory(name, slugParam); err != nil {
		return nil, err
	}

	row := s.db.QueryRow(`
		UPDATE categories SET name = $1, slug = $2, description = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING `+categoryColumns,
		name, slugParam, description, id,
	)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		if isUniqueViolation(err, "categories_name") {
			return nil, validationErr("name", "a category with this name already exists")
		}
		if isUniqueViolation(err, "categories_slug") {
			return nil, validationErr("slug", "slug is already in use")
		}
		return nil, fmt.Errorf("update category: %w", err)
	}
	return c, nil
}

// Delete removes a category. Entries that referenced it keep existing
// with a null category via the ON DELETE SET NULL constraint.
func (s *CategoryStore) Delete(id uuid.UUID) error {
	res, err := s.db.Exec(`DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Stats aggregates the category's published entries: total views, total
// likes, the five most viewed, and the five most recent. Totals come
// back as zero, not null, for an empty category.
func (s *CategoryStore) Stats(categoryID uuid.UUID) (*models.CategoryStats, error) {
	cat, err := s.FindByID(categoryID)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, ErrNotFound
	}

	stats := &models.CategoryStats{Category: *cat}
	err = s.db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(view_count), 0), COALESCE(SUM(like_count), 0)
		FROM entries
		WHERE category_id = $1 AND status = 'published'
	`, categoryID).Scan(&stats.EntryCount, &stats.TotalViews, &stats.TotalLikes)
	if err != nil {
		return nil, fmt.Errorf("category totals: %w", err)
	}

	stats.Popular, err = s.topEntries(categoryID, "view_count DESC, created_at DESC")
	if err != nil {
		return nil, err
	}
	stats.Recent, err = s.topEntries(categoryID, "created_at DESC")
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *CategoryStore) topEntries(categoryID uuid.UUID, order string) ([]models.Entry, error) {
	rows, err := s.db.Query(fmt.Sprintf(`
		SELECT %s FROM entries
		WHERE category_id = $1 AND status = 'published'
		ORDER BY %s
		LIMIT 5
	`, entryColumns, order), categoryID)
	if err != nil {
		return nil, fmt.Errorf("category top entries: %w", err)
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
