// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"lexipedia/internal/cache"
	"lexipedia/internal/middleware"
	"lexipedia/internal/models"
	"lexipedia/internal/slug"
	"lexipedia/internal/storage"
	"lexipedia/internal/store"
)

// maxImageSize caps entry image uploads at 10 MiB.
const maxImageSize = 10 << 20

// allowedImageTypes are the content types accepted for entry images.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// Entries groups the write-side handlers: entry CRUD, likes, comments,
// tags, and image uploads. Every handler here runs behind RequireAuth.
type Entries struct {
	entries       *store.EntryStore
	comments      *store.CommentStore
	likes         *store.LikeStore
	tags          *store.TagStore
	images        *store.ImageStore
	storageClient *storage.Client
	summaries     *cache.SummaryCache
}

// NewEntries creates a new Entries handler group. storageClient may be
// nil; image uploads then return 503.
func NewEntries(entries *store.EntryStore, comments *store.CommentStore, likes *store.LikeStore, tags *store.TagStore, images *store.ImageStore, storageClient *storage.Client, summaries *cache.SummaryCache) *Entries {
	return &Entries{
		entries:       entries,
		comments:      comments,
		likes:         likes,
		tags:          tags,
		images:        images,
		storageClient: storageClient,
		summaries:     summaries,
	}
}

// entryRequest carries the client-supplied entry fields for create and
// update.
type entryRequest struct {
	Title      string             `json:"title"`
	Slug       string             `json:"slug"`
	Content    string             `json:"content"`
	Summary    string             `json:"summary"`
	CategoryID *uuid.UUID         `json:"category_id"`
	Status     models.EntryStatus `json:"status"`
}

func (req *entryRequest) toInput() store.EntryInput {
	return store.EntryInput{
		Title:      req.Title,
		Slug:       req.Slug,
		Content:    req.Content,
		Summary:    req.Summary,
		CategoryID: req.CategoryID,
		Status:     req.Status,
	}
}

// Create makes a new entry owned by the caller. An omitted slug is
// derived from the title.
func (h *Entries) Create(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	var req entryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Slug == "" {
		req.Slug = slug.Generate(req.Title)
	}

	entry, err := h.entries.Create(sess.UserID, req.toInput())
	if err != nil {
		respondStoreError(w, err)
		return
	}

	h.summaries.InvalidateAll(r.Context())
	respondJSON(w, http.StatusCreated, entry)
}

// Update modifies the entry addressed by slug. The store enforces the
// author-or-admin rule.
func (h *Entries) Update(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	entry, ok := h.findEntry(w, r)
	if !ok {
		return
	}

	var req entryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Slug == "" {
		req.Slug = entry.Slug
	}

	updated, err := h.entries.Update(entry.ID, sess.UserID, sess.IsAdmin, req.toInput())
	if err != nil {
		respondStoreError(w, err)
		return
	}

	h.summaries.InvalidateAll(r.Context())
	respondJSON(w, http.StatusOK, updated)
}

// Delete removes the entry addressed by slug, its stored images
// included.
func (h *Entries) Delete(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	entry, ok := h.findEntry(w, r)
	if !ok {
		return
	}

	// Best-effort removal of the image blobs before the rows cascade.
	if h.storageClient != nil {
		imageRows, err := h.images.ListByEntry(entry.ID)
		if err == nil {
			for _, img := range imageRows {
				if err := h.storageClient.Delete(r.Context(), img.S3Key); err != nil {
					slog.Warn("delete image blob failed", "key", img.S3Key, "error", err)
				}
			}
		}
	}

	if err := h.entries.Delete(entry.ID, sess.UserID, sess.IsAdmin); err != nil {
		respondStoreError(w, err)
		return
	}

	h.summaries.InvalidateAll(r.Context())
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// likeResponse reports the caller's like state after a toggle.
type likeResponse struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}

// ToggleLike flips the caller's like on a published entry.
func (h *Entries) ToggleLike(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	entry, ok := h.findPublishedEntry(w, r)
	if !ok {
		return
	}

	liked, count, err := h.likes.Toggle(entry.ID, sess.UserID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	h.summaries.Invalidate(r.Context(), cache.HomeKey())
	respondJSON(w, http.StatusOK, likeResponse{Liked: liked, LikeCount: count})
}

// AddComment posts a comment on a published entry.
func (h *Entries) AddComment(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	entry, ok := h.findPublishedEntry(w, r)
	if !ok {
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	comment, err := h.comments.Add(entry.ID, sess.UserID, req.Content)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, comment)
}

// SetCommentActive flips a comment's moderation flag. The route decides
// the direction; the store enforces author-or-admin.
func (h *Entries) SetCommentActive(active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := middleware.SessionFromCtx(r.Context())

		commentID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			respondBadRequest(w, "invalid comment id")
			return
		}

		if err := h.comments.SetActive(commentID, sess.UserID, sess.IsAdmin, active); err != nil {
			respondStoreError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]bool{"is_active": active})
	}
}

// AttachTag ensures the named tag exists and links it to the entry.
// Only the entry's author or an admin may tag it.
func (h *Entries) AttachTag(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	entry, ok := h.findEntry(w, r)
	if !ok {
		return
	}
	if !entry.EditableBy(sess.UserID, sess.IsAdmin) {
		respondJSON(w, http.StatusForbidden, errorResponse{Error: "permission denied"})
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	tag, err := h.tags.Ensure(req.Name)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if err := h.tags.Attach(entry.ID, tag.ID); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, tag)
}

// DetachTag unlinks the named tag from the entry.
func (h *Entries) DetachTag(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	entry, ok := h.findEntry(w, r)
	if !ok {
		return
	}
	if !entry.EditableBy(sess.UserID, sess.IsAdmin) {
		respondJSON(w, http.StatusForbidden, errorResponse{Error: "permission denied"})
		return
	}

	tag, err := h.tags.FindByName(chi.URLParam(r, "name"))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if tag == nil {
		respondNotFound(w)
		return
	}
	if err := h.tags.Detach(entry.ID, tag.ID); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "detached"})
}

// UploadImage stores a multipart image upload in S3 and records it
// against the entry. Returns 503 when storage is not configured.
func (h *Entries) UploadImage(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	if h.storageClient == nil {
		respondJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "image storage is not configured"})
		return
	}

	entry, ok := h.findEntry(w, r)
	if !ok {
		return
	}
	if !entry.EditableBy(sess.UserID, sess.IsAdmin) {
		respondJSON(w, http.StatusForbidden, errorResponse{Error: "permission denied"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageSize)
	file, header, err := r.FormFile("image")
	if err != nil {
		respondBadRequest(w, "missing or oversized image file")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !allowedImageTypes[contentType] {
		respondJSON(w, http.StatusUnsupportedMediaType, errorResponse{Error: "unsupported image type"})
		return
	}

	key, err := storage.ImageKey(entry.ID, header.Filename)
	if err != nil {
		slog.Error("build image key failed", "error", err)
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
		return
	}
	if err := h.storageClient.Upload(r.Context(), key, contentType, file, header.Size); err != nil {
		slog.Error("image upload failed", "error", err)
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
		return
	}

	caption := strings.TrimSpace(r.FormValue("caption"))
	img, err := h.images.Create(entry.ID, key, caption)
	if err != nil {
		// Roll back the orphaned blob.
		if delErr := h.storageClient.Delete(r.Context(), key); delErr != nil {
			slog.Warn("orphaned image blob cleanup failed", "key", key, "error", delErr)
		}
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, imageView{
		EntryImage: *img,
		URL:        h.storageClient.FileURL(key),
	})
}

// DeleteImage removes one image, blob and row.
func (h *Entries) DeleteImage(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	imageID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondBadRequest(w, "invalid image id")
		return
	}

	img, err := h.images.FindByID(imageID)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if img == nil {
		respondNotFound(w)
		return
	}

	entry, err := h.entries.FindByID(img.EntryID)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if entry == nil || !entry.EditableBy(sess.UserID, sess.IsAdmin) {
		respondJSON(w, http.StatusForbidden, errorResponse{Error: "permission denied"})
		return
	}

	if h.storageClient != nil {
		if err := h.storageClient.Delete(r.Context(), img.S3Key); err != nil {
			slog.Warn("delete image blob failed", "key", img.S3Key, "error", err)
		}
	}
	if err := h.images.Delete(img.ID); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// findEntry resolves the {slug} route parameter to an entry of any
// status, writing a 404 on miss.
func (h *Entries) findEntry(w http.ResponseWriter, r *http.Request) (*models.Entry, bool) {
	entry, err := h.entries.FindBySlug(chi.URLParam(r, "slug"))
	if err != nil {
		respondStoreError(w, err)
		return nil, false
	}
	if entry == nil {
		respondNotFound(w)
		return nil, false
	}
	return entry, true
}

// findPublishedEntry is findEntry restricted to published entries.
// Interactions (likes, comments) target public content only.
func (h *Entries) findPublishedEntry(w http.ResponseWriter, r *http.Request) (*models.Entry, bool) {
	entry, err := h.entries.FindPublishedBySlug(chi.URLParam(r, "slug"))
	if err != nil {
		respondStoreError(w, err)
		return nil, false
	}
	if entry == nil {
		respondNotFound(w)
		return nil, false
	}
	return entry, true
}
