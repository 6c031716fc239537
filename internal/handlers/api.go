// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the JSON HTTP API. Handlers decode input,
// call the store layer, and translate its error taxonomy to HTTP status
// codes; no business rules live here.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"lexipedia/internal/store"
)

// maxBodySize caps JSON request bodies. Image uploads have their own
// larger limit.
const maxBodySize = 1 << 20 // 1 MiB

// errorResponse is the JSON body for every non-2xx response.
type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// respondJSON writes v as the JSON response body with the given status.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			slog.Error("encode response failed", "error", err)
		}
	}
}

// respondStoreError maps the store error taxonomy onto HTTP statuses:
// ValidationError → 422, ErrPermission → 403, ErrNotFound → 404,
// anything else → 500 with a generic body (the cause is logged, never
// leaked).
func respondStoreError(w http.ResponseWriter, err error) {
	var verr *store.ValidationError
	switch {
	case errors.As(err, &verr):
		respondJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: verr.Msg, Field: verr.Field})
	case errors.Is(err, store.ErrPermission):
		respondJSON(w, http.StatusForbidden, errorResponse{Error: "permission denied"})
	case errors.Is(err, store.ErrNotFound):
		respondJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	default:
		slog.Error("request failed", "error", err)
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

// respondNotFound writes the standard 404 body.
func respondNotFound(w http.ResponseWriter) {
	respondJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
}

// respondBadRequest writes a 400 with the given message.
func respondBadRequest(w http.ResponseWriter, msg string) {
	respondJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

// decodeJSON reads the request body into dst, enforcing the body size
// cap. Returns false after writing a 400 if the body is not valid JSON.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondBadRequest(w, "invalid JSON body")
		return false
	}
	return true
}
