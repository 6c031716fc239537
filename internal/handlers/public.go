// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"lexipedia/internal/cache"
	"lexipedia/internal/middleware"
	"lexipedia/internal/models"
	"lexipedia/internal/storage"
	"lexipedia/internal/store"
)

// homeCategoryLimit bounds the category strip on the home summary.
const homeCategoryLimit = 8

// summaryEntryLimit bounds the popular/latest panels.
const summaryEntryLimit = 5

// Public groups the read-side handlers: home summary, entry listings and
// detail, category browsing, and tags. The aggregate responses (home,
// category stats) go through the Valkey summary cache; everything else
// reads Postgres directly. storageClient may be nil when S3 is not
// configured — image URLs are then omitted.
type Public struct {
	entries       *store.EntryStore
	categories    *store.CategoryStore
	tags          *store.TagStore
	comments      *store.CommentStore
	likes         *store.LikeStore
	images        *store.ImageStore
	storageClient *storage.Client
	summaries     *cache.SummaryCache
}

// NewPublic creates a new Public handler group.
func NewPublic(entries *store.EntryStore, categories *store.CategoryStore, tags *store.TagStore, comments *store.CommentStore, likes *store.LikeStore, images *store.ImageStore, storageClient *storage.Client, summaries *cache.SummaryCache) *Public {
	return &Public{
		entries:       entries,
		categories:    categories,
		tags:          tags,
		comments:      comments,
		likes:         likes,
		images:        images,
		storageClient: storageClient,
		summaries:     summaries,
	}
}

// homeSummary is the landing payload: most viewed and most recent
// published entries plus the category strip.
type homeSummary struct {
	Popular    []models.Entry    `json:"popular"`
	Latest     []models.Entry    `json:"latest"`
	Categories []models.Category `json:"categories"`
}

// Home serves the home summary, cached in Valkey.
func (p *Public) Home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if cached, ok := p.summaries.Get(ctx, cache.HomeKey()); ok {
		w.Header().Set("Content-Type", "application/json")
		w.Write(cached)
		return
	}

	popular, err := p.entries.Popular(summaryEntryLimit)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	latest, err := p.entries.Latest(summaryEntryLimit)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	categories, err := p.categories.List()
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if len(categories) > homeCategoryLimit {
		categories = categories[:homeCategoryLimit]
	}

	summary := homeSummary{Popular: popular, Latest: latest, Categories: categories}
	body, err := json.Marshal(summary)
	if err != nil {
		slog.Error("marshal home summary failed", "error", err)
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
		return
	}
	p.summaries.Set(ctx, cache.HomeKey(), body)

	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

// entryPage is one page of an entry listing.
type entryPage struct {
	Items    []models.Entry `json:"items"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

// EntriesList serves the published entry index with search, category
// filter, and pagination: ?q=, ?category=, ?page=, ?sort=views.
func (p *Public) EntriesList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}

	filter := store.ListFilter{
		Status:       models.EntryStatusPublished,
		CategorySlug: q.Get("category"),
		Search:       q.Get("q"),
		OrderByViews: q.Get("sort") == "views",
	}

	items, total, err := p.entries.List(filter, page, store.DefaultPageSize)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if items == nil {
		items = []models.Entry{}
	}
	respondJSON(w, http.StatusOK, entryPage{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: store.DefaultPageSize,
	})
}

// imageView is an entry image with its public URL resolved.
type imageView struct {
	models.EntryImage
	URL string `json:"url,omitempty"`
}

// entryDetail is the full entry payload: the entry plus its comments,
// tags, images, and the caller's like state.
type entryDetail struct {
	Entry    models.Entry     `json:"entry"`
	Comments []models.Comment `json:"comments"`
	Tags     []models.Tag     `json:"tags"`
	Images   []imageView      `json:"images"`
	Liked    bool             `json:"liked"`
}

// EntryDetail serves one entry by slug. Published entries are visible to
// everyone and get their view recorded; drafts and archived entries are
// visible only to their author and admins, without counting a view.
func (p *Public) EntryDetail(w http.ResponseWriter, r *http.Request) {
	slugParam := chi.URLParam(r, "slug")
	sess := middleware.SessionFromCtx(r.Context())

	entry, err := p.entries.FindBySlug(slugParam)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if entry == nil {
		respondNotFound(w)
		return
	}

	if entry.IsPublished() {
		if err := p.entries.RecordView(entry.ID); err != nil {
			slog.Warn("record view failed", "error", err, "slug", slugParam)
		} else {
			entry.ViewCount++
		}
	} else {
		// Unpublished entries exist only for their author and admins.
		if sess == nil || !entry.EditableBy(sess.UserID, sess.IsAdmin) {
			respondNotFound(w)
			return
		}
	}

	comments, err := p.comments.ListActiveByEntry(entry.ID)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	tags, err := p.tags.ListForEntry(entry.ID)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	imageRows, err := p.images.ListByEntry(entry.ID)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	images := make([]imageView, 0, len(imageRows))
	for _, img := range imageRows {
		v := imageView{EntryImage: img}
		if p.storageClient != nil {
			v.URL = p.storageClient.FileURL(img.S3Key)
		}
		images = append(images, v)
	}

	var liked bool
	if sess != nil {
		liked, err = p.likes.HasLiked(entry.ID, sess.UserID)
		if err != nil {
			respondStoreError(w, err)
			return
		}
	}

	if comments == nil {
		comments = []models.Comment{}
	}
	if tags == nil {
		tags = []models.Tag{}
	}
	respondJSON(w, http.StatusOK, entryDetail{
		Entry:    *entry,
		Comments: comments,
		Tags:     tags,
		Images:   images,
		Liked:    liked,
	})
}

// CategoriesList serves all categories with their published entry counts.
func (p *Public) CategoriesList(w http.ResponseWriter, r *http.Request) {
	categories, err := p.categories.List()
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if categories == nil {
		categories = []models.Category{}
	}
	respondJSON(w, http.StatusOK, categories)
}

// categoryDetail combines the cached statistics panel with one page of
// the category's published entries.
type categoryDetail struct {
	Stats   json.RawMessage `json:"stats"`
	Entries entryPage       `json:"entries"`
}

// CategoryDetail serves a category's statistics (cached) plus a
// paginated listing of its published entries.
func (p *Public) CategoryDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slugParam := chi.URLParam(r, "slug")

	statsBody, ok := p.summaries.Get(ctx, cache.CategoryStatsKey(slugParam))
	if !ok {
		category, err := p.categories.FindBySlug(slugParam)
		if err != nil {
			respondStoreError(w, err)
			return
		}
		if category == nil {
			respondNotFound(w)
			return
		}
		stats, err := p.categories.Stats(category.ID)
		if err != nil {
			respondStoreError(w, err)
			return
		}
		statsBody, err = json.Marshal(stats)
		if err != nil {
			slog.Error("marshal category stats failed", "error", err)
			respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
			return
		}
		p.summaries.Set(ctx, cache.CategoryStatsKey(slugParam), statsBody)
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	items, total, err := p.entries.List(store.ListFilter{
		Status:       models.EntryStatusPublished,
		CategorySlug: slugParam,
	}, page, store.DefaultPageSize)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if items == nil {
		items = []models.Entry{}
	}

	respondJSON(w, http.StatusOK, categoryDetail{
		Stats: statsBody,
		Entries: entryPage{
			Items:    items,
			Total:    total,
			Page:     page,
			PageSize: store.DefaultPageSize,
		},
	})
}

// TagsList serves all tags with usage counts.
func (p *Public) TagsList(w http.ResponseWriter, r *http.Request) {
	tags, err := p.tags.ListAll()
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if tags == nil {
		tags = []models.Tag{}
	}
	respondJSON(w, http.StatusOK, tags)
}
