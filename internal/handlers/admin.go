// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"lexipedia/internal/cache"
	"lexipedia/internal/slug"
	"lexipedia/internal/store"
)

// Admin groups the admin-only handlers: category management and user
// administration. Routes run behind RequireAuth + Require2FA +
// RequireAdmin.
type Admin struct {
	categories *store.CategoryStore
	users      *store.UserStore
	summaries  *cache.SummaryCache
}

// NewAdmin creates a new Admin handler group.
func NewAdmin(categories *store.CategoryStore, users *store.UserStore, summaries *cache.SummaryCache) *Admin {
	return &Admin{
		categories: categories,
		users:      users,
		summaries:  summaries,
	}
}

type categoryRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

// CategoryCreate adds a category. An omitted slug is derived from the
// name.
func (a *Admin) CategoryCreate(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Slug == "" {
		req.Slug = slug.Generate(req.Name)
	}

	category, err := a.categories.Create(req.Name, req.Slug, req.Description)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	a.summaries.InvalidateAll(r.Context())
	respondJSON(w, http.StatusCreated, category)
}

// CategoryUpdate renames or re-describes a category.
func (a *Admin) CategoryUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondBadRequest(w, "invalid category id")
		return
	}

	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Slug == "" {
		req.Slug = slug.Generate(req.Name)
	}

	category, err := a.categories.Update(id, req.Name, req.Slug, req.Description)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	a.summaries.InvalidateAll(r.Context())
	respondJSON(w, http.StatusOK, category)
}

// CategoryDelete removes a category; its entries stay, uncategorized.
func (a *Admin) CategoryDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondBadRequest(w, "invalid category id")
		return
	}

	if err := a.categories.Delete(id); err != nil {
		respondStoreError(w, err)
		return
	}

	a.summaries.InvalidateAll(r.Context())
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// UsersList returns every account.
func (a *Admin) UsersList(w http.ResponseWriter, r *http.Request) {
	users, err := a.users.List()
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}

// UserResetTwoFA clears a user's TOTP enrollment so they can re-enroll
// on next login.
func (a *Admin) UserResetTwoFA(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondBadRequest(w, "invalid user id")
		return
	}

	if err := a.users.ResetTOTP(id); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "2fa reset"})
}
