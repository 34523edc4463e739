package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Junito34/mon-site/internal/cache"
	"github.com/Junito34/mon-site/internal/middleware"
	"github.com/Junito34/mon-site/internal/store"
)

// Comments groups the reader comment API. Comments are keyed by the
// article's "{year}/{slug}" key, so they follow the article's address, and
// new comments are fanned out over the Valkey feed for connected readers.
type Comments struct {
	commentStore *store.CommentStore
	feed         *cache.CommentFeed
}

// NewComments creates a new Comments handler group. feed may be nil; the
// realtime fan-out is then skipped.
func NewComments(commentStore *store.CommentStore, feed *cache.CommentFeed) *Comments {
	return &Comments{commentStore: commentStore, feed: feed}
}

func articleKeyParam(r *http.Request) string {
	return chi.URLParam(r, "year") + "/" + chi.URLParam(r, "slug")
}

// List returns all comments for an article, oldest first.
func (c *Comments) List(w http.ResponseWriter, r *http.Request) {
	key := articleKeyParam(r)

	comments, err := c.commentStore.ListByKey(r.Context(), key)
	if err != nil {
		slog.Error("list comments failed", "error", err, "key", key)
		respondError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	respondJSON(w, http.StatusOK, comments)
}

// Create posts a new comment as the signed-in user and publishes it to the
// article's realtime feed.
func (c *Comments) Create(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		respondError(w, http.StatusUnauthorized, "Sign in to comment.")
		return
	}
	key := articleKeyParam(r)

	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Malformed request body.")
		return
	}
	if msg := validateComment(req.Content); msg != "" {
		respondError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	comment, err := c.commentStore.Create(r.Context(), key, sess.UserID, req.Content)
	if err != nil {
		slog.Error("create comment failed", "error", err, "key", key)
		respondError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	if c.feed != nil {
		c.feed.Publish(r.Context(), key, comment)
	}

	respondJSON(w, http.StatusCreated, comment)
}

// Update edits the signed-in user's own comment.
func (c *Comments) Update(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		respondError(w, http.StatusUnauthorized, "Sign in first.")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid comment id.")
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Malformed request body.")
		return
	}
	if msg := validateComment(req.Content); msg != "" {
		respondError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	ok, err := c.commentStore.Update(r.Context(), id, sess.UserID, req.Content)
	if err != nil {
		slog.Error("update comment failed", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}
	if !ok {
		respondError(w, http.StatusNotFound, "Comment not found.")
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Delete removes a comment: owners delete their own, admins delete any.
func (c *Comments) Delete(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		respondError(w, http.StatusUnauthorized, "Sign in first.")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid comment id.")
		return
	}

	if sess.Role == "admin" {
		if err := c.commentStore.DeleteAny(r.Context(), id); err != nil {
			slog.Error("moderation delete failed", "error", err, "id", id)
			respondError(w, http.StatusInternalServerError, "An unexpected error occurred.")
			return
		}
		respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
		return
	}

	ok, err := c.commentStore.Delete(r.Context(), id, sess.UserID)
	if err != nil {
		slog.Error("delete comment failed", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}
	if !ok {
		respondError(w, http.StatusNotFound, "Comment not found.")
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Stream pushes new comments for one article over server-sent events until
// the client disconnects.
func (c *Comments) Stream(w http.ResponseWriter, r *http.Request) {
	if c.feed == nil {
		respondError(w, http.StatusNotImplemented, "Realtime feed not available.")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "Streaming unsupported.")
		return
	}

	key := articleKeyParam(r)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	events := c.feed.Subscribe(r.Context(), key)
	for msg := range events {
		fmt.Fprintf(w, "data: %s\n\n", msg)
		flusher.Flush()
	}
}
