// Package handlers contains the HTTP handlers for the public site, the
// comment API, and the moderation area. Moderation endpoints speak JSON;
// public article pages are served as rendered HTML.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// respondJSON writes v as a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", "error", err)
	}
}

// respondError writes a JSON error body {"error": message}.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// fieldError writes a validation failure: {"error": message, "field": field}.
func fieldError(w http.ResponseWriter, field, message string) {
	respondJSON(w, http.StatusUnprocessableEntity, map[string]string{
		"error": message,
		"field": field,
	})
}
