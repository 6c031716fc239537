// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"lexipedia/internal/models"
)

// ImageStore tracks the entry-image rows. The image bytes themselves
// live in object storage; the store only records the key and caption.
type ImageStore struct {
	db *sql.DB
}

// NewImageStore creates a new ImageStore with the given database connection.
func NewImageStore(db *sql.DB) *ImageStore {
	return &ImageStore{db: db}
}

const imageColumns = `id, entry_id, s3_key, caption, uploaded_at`

func scanImage(scanner interface{ Scan(...any) error }) (*models.EntryImage, error) {
	var img models.EntryImage
	err := scanner.Scan(&img.ID, &img.EntryID, &img.S3Key, &img.Caption, &img.UploadedAt)
	if err != nil {
		return nil, err
	}
	return &img, nil
}

// Create records an uploaded image against an entry.
func (s *ImageStore) Create(entryID uuid.UUID, s3Key, caption string) (*models.EntryImage, error) {
	if s3Key == "" {
		return nil, validationErr("s3_key", "object key is required")
	}

	row := s.db.QueryRow(`
		INSERT INTO entry_images (entry_id, s3_key, caption)
		VALUES ($1, $2, $3)
		RETURNING `+imageColumns,
		entryID, s3Key, caption,
	)
	img, err := scanImage(row)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("create entry image: %w", err)
	}
	return img, nil
}

// ListByEntry returns an entry's images in upload order.
func (s *ImageStore) ListByEntry(entryID uuid.UUID) ([]models.EntryImage, error) {
	rows, err := s.db.Query(`
		SELECT `+imageColumns+` FROM entry_images
		WHERE entry_id = $1
		ORDER BY uploaded_at ASC
	`, entryID)
	if err != nil {
		return nil, fmt.Errorf("list entry images: %w", err)
	}
	defer rows.Close()

	var images []models.EntryImage
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry image: %w", err)
		}
		images = append(images, *img)
	}
	return images, rows.Err()
}

// FindByID retrieves an image row. Returns nil if not found.
func (s *ImageStore) FindByID(id uuid.UUID) (*models.EntryImage, error) {
	row := s.db.QueryRow(`SELECT `+imageColumns+` FROM entry_images WHERE id = $1`, id)
	img, err := scanImage(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find entry image: %w", err)
	}
	return img, nil
}

// Delete removes an image row. The caller is responsible for deleting
// the object from storage first.
func (s *ImageStore) Delete(id uuid.UUID) error {
	res, err := s.db.Exec(`DELETE FROM entry_images WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete entry image: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
