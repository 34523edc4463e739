package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Junito34/mon-site/internal/articles"
	"github.com/Junito34/mon-site/internal/cache"
	"github.com/Junito34/mon-site/internal/editor"
	"github.com/Junito34/mon-site/internal/middleware"
	"github.com/Junito34/mon-site/internal/models"
	"github.com/Junito34/mon-site/internal/store"
)

// filePartPrefix names the multipart file parts of a save request: one
// "file:{blockID}" part per image block with a newly picked file.
const filePartPrefix = "file:"

// Moderation groups the authenticated article management endpoints. Saves
// arrive as multipart requests carrying an "article" JSON field plus the
// picked image files; everything else is plain JSON.
type Moderation struct {
	service      *articles.Service
	articleStore *store.ArticleStore
	blockStore   *store.BlockStore
	pageCache    *cache.PageCache
}

// NewModeration creates a new Moderation handler group.
func NewModeration(service *articles.Service, articleStore *store.ArticleStore, blockStore *store.BlockStore, pageCache *cache.PageCache) *Moderation {
	return &Moderation{
		service:      service,
		articleStore: articleStore,
		blockStore:   blockStore,
		pageCache:    pageCache,
	}
}

// ListArticles returns every article for the moderation listing, newest
// created first.
func (m *Moderation) ListArticles(w http.ResponseWriter, r *http.Request) {
	items, err := m.articleStore.List(r.Context())
	if err != nil {
		slog.Error("list articles failed", "error", err)
		respondError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}
	respondJSON(w, http.StatusOK, items)
}

// draftPayload is the wire shape of a draft in both directions: the editor
// posts it inside the "article" multipart field and GetArticle returns it.
type draftPayload struct {
	Title         string         `json:"title"`
	PublishedDate string         `json:"published_date"`
	Slug          string         `json:"slug"`
	Blocks        []models.Block `json:"blocks"`
}

// GetArticle returns one article in editable draft shape.
func (m *Moderation) GetArticle(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid article id.")
		return
	}

	article, err := m.articleStore.FindByID(r.Context(), id)
	if err != nil {
		slog.Error("find article failed", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}
	if article == nil {
		respondError(w, http.StatusNotFound, "Article not found.")
		return
	}

	rows, err := m.blockStore.ListByArticle(r.Context(), id)
	if err != nil {
		slog.Error("list blocks failed", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	draft := editor.FromArticle(article, rows)
	respondJSON(w, http.StatusOK, draftPayload{
		Title:         draft.Title,
		PublishedDate: draft.PublishedDate,
		Slug:          draft.SlugInput,
		Blocks:        draft.Blocks,
	})
}

// CreateArticle saves a new article from a multipart request.
func (m *Moderation) CreateArticle(w http.ResponseWriter, r *http.Request) {
	m.save(w, r, uuid.Nil)
}

// UpdateArticle saves changes to an existing article.
func (m *Moderation) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid article id.")
		return
	}
	m.save(w, r, id)
}

// save runs one save attempt: parse the multipart draft, run the pipeline,
// invalidate cached pages touched by the change.
func (m *Moderation) save(w http.ResponseWriter, r *http.Request, articleID uuid.UUID) {
	ctx := r.Context()
	sess := middleware.SessionFromCtx(ctx)

	// The old canonical key must be invalidated even when the slug or year
	// changes with this save.
	var oldKey string
	if articleID != uuid.Nil {
		existing, err := m.articleStore.FindByID(ctx, articleID)
		if err != nil {
			slog.Error("find article failed", "error", err, "id", articleID)
			respondError(w, http.StatusInternalServerError, "An unexpected error occurred.")
			return
		}
		if existing == nil {
			respondError(w, http.StatusNotFound, "Article not found.")
			return
		}
		oldKey = existing.Key()
	}

	draft, errMsg := parseDraftForm(r, articleID)
	if errMsg != "" {
		respondError(w, http.StatusBadRequest, errMsg)
		return
	}
	if field, msg := validateDraftLimits(draft.Title, draft.SlugInput, len(draft.Blocks)); field != "" {
		fieldError(w, field, msg)
		return
	}
	for _, b := range draft.Blocks {
		if field, msg := validateBlockText(b.Content, b.Caption); field != "" {
			fieldError(w, field, msg)
			return
		}
	}

	var authorID uuid.UUID
	if sess != nil {
		authorID = sess.UserID
	}

	result, err := m.service.Save(ctx, articles.SaveInput{Draft: draft, AuthorID: authorID})
	if err != nil {
		m.respondSaveError(w, err)
		return
	}

	if oldKey != "" {
		m.pageCache.InvalidatePage(ctx, oldKey)
	}
	m.pageCache.InvalidatePage(ctx, result.Article.Key())
	m.pageCache.InvalidateLatest(ctx)

	slog.Info("article saved",
		"id", result.Article.ID,
		"slug", result.Article.Slug,
		"blocks", len(draft.Blocks),
	)
	respondJSON(w, http.StatusOK, map[string]string{
		"id":   result.Article.ID.String(),
		"path": result.Path,
	})
}

// DeleteArticle removes an article, its blocks, and its stored images.
func (m *Moderation) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid article id.")
		return
	}

	article, err := m.articleStore.FindByID(ctx, id)
	if err != nil {
		slog.Error("find article failed", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}
	if article == nil {
		respondError(w, http.StatusNotFound, "Article not found.")
		return
	}

	if err := m.service.Delete(ctx, id); err != nil {
		m.respondSaveError(w, err)
		return
	}

	m.pageCache.InvalidatePage(ctx, article.Key())
	m.pageCache.InvalidateLatest(ctx)

	slog.Info("article deleted", "id", id, "slug", article.Slug)
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// respondSaveError maps pipeline errors onto HTTP statuses. Messages travel
// verbatim so the editor can show them next to the offending field.
func (m *Moderation) respondSaveError(w http.ResponseWriter, err error) {
	var verr *articles.ValidationError
	if errors.As(err, &verr) {
		fieldError(w, verr.Field, verr.Message)
		return
	}
	if errors.Is(err, articles.ErrSessionInvalid) {
		respondError(w, http.StatusUnauthorized, err.Error())
		return
	}

	var serr *articles.StorageError
	if errors.As(err, &serr) {
		slog.Error("storage operation failed", "error", err)
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}

	slog.Error("save pipeline failed", "error", err)
	respondError(w, http.StatusInternalServerError, err.Error())
}

// parseDraftForm decodes a multipart save request into a draft: the
// "article" field carries the draft JSON, and each "file:{blockID}" part is
// attached to its image block. Returns a user-facing message on failure.
func parseDraftForm(r *http.Request, articleID uuid.UUID) (*editor.Draft, string) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxSaveBytes)
	if err := r.ParseMultipartForm(maxSaveBytes); err != nil {
		return nil, "Malformed multipart request."
	}

	var payload draftPayload
	if err := json.Unmarshal([]byte(r.FormValue("article")), &payload); err != nil {
		return nil, "Malformed article payload."
	}

	draft := &editor.Draft{
		ArticleID:     articleID,
		Title:         payload.Title,
		PublishedDate: payload.PublishedDate,
		SlugInput:     payload.Slug,
		Blocks:        payload.Blocks,
	}

	for i := range draft.Blocks {
		if !draft.Blocks[i].Type.Valid() {
			return nil, "Unknown block type."
		}
		if draft.Blocks[i].ID == uuid.Nil {
			draft.Blocks[i].ID = uuid.New()
		}
	}

	if r.MultipartForm == nil {
		return draft, ""
	}
	for name, headers := range r.MultipartForm.File {
		blockID, ok := strings.CutPrefix(name, filePartPrefix)
		if !ok || len(headers) == 0 {
			continue
		}
		id, err := uuid.Parse(blockID)
		if err != nil {
			return nil, "Malformed file part name."
		}

		header := headers[0]
		if header.Size > maxUploadBytes {
			return nil, "Image file is too large (max 8 MB)."
		}
		f, err := header.Open()
		if err != nil {
			return nil, "Could not read uploaded file."
		}
		data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
		f.Close()
		if err != nil || int64(len(data)) > maxUploadBytes {
			return nil, "Image file is too large (max 8 MB)."
		}

		draft.PickImage(id, &models.PendingFile{Name: header.Filename, Data: data})
	}

	return draft, ""
}
