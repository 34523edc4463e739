package handlers

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Junito34/mon-site/internal/cache"
	"github.com/Junito34/mon-site/internal/renderer"
	"github.com/Junito34/mon-site/internal/store"
)

// latestCount is how many articles the latest-articles API returns.
const latestCount = 3

// Public groups handlers for the public-facing site: article pages addressed
// by /{year}/{slug} and the small JSON API the homepage widget consumes.
// It checks the Valkey page cache before touching the database, and stores
// rendered results on miss.
type Public struct {
	articleStore *store.ArticleStore
	blockStore   *store.BlockStore
	userStore    *store.UserStore
	pageCache    *cache.PageCache
}

// NewPublic creates a new Public handler group.
func NewPublic(articleStore *store.ArticleStore, blockStore *store.BlockStore, userStore *store.UserStore, pageCache *cache.PageCache) *Public {
	return &Public{
		articleStore: articleStore,
		blockStore:   blockStore,
		userStore:    userStore,
		pageCache:    pageCache,
	}
}

// ArticlePage serves a published article at its canonical /{year}/{slug}
// address. The year must match the article's publish year; stale addresses
// from before a date change 404 rather than redirect.
func (p *Public) ArticlePage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	year := chi.URLParam(r, "year")
	slugParam := chi.URLParam(r, "slug")
	key := year + "/" + slugParam

	if cached, ok := p.pageCache.Get(ctx, key); ok {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(cached)
		return
	}

	article, err := p.articleStore.FindBySlug(ctx, slugParam)
	if err != nil {
		slog.Error("find article by slug failed", "error", err, "slug", slugParam)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if article == nil || article.Year() != year {
		http.NotFound(w, r)
		return
	}

	rows, err := p.blockStore.ListByArticle(ctx, article.ID)
	if err != nil {
		slog.Error("list blocks failed", "error", err, "article", article.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	page := &renderer.ArticlePage{
		Title: article.Title,
		Year:  article.Year(),
		Path:  article.CanonicalPath(),
		Nodes: renderer.Render(rows),
	}
	if author, err := p.userStore.FindByID(r.Context(), article.AuthorID); err == nil && author != nil {
		page.AuthorName = author.DisplayName
	}

	var buf bytes.Buffer
	if err := renderer.WritePage(&buf, page); err != nil {
		slog.Error("render article failed", "error", err, "article", article.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	p.pageCache.Set(ctx, key, buf.Bytes())

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// latestItem is one entry in the latest-articles payload.
type latestItem struct {
	Title string `json:"title"`
	Href  string `json:"href"`
	Year  string `json:"year"`
}

// LatestArticles returns the three most recently published articles as
// {title, href, year} items for the homepage widget.
func (p *Public) LatestArticles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if cached, ok := p.pageCache.Get(ctx, cache.LatestKey()); ok {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Write(cached)
		return
	}

	latest, err := p.articleStore.ListLatest(ctx, latestCount)
	if err != nil {
		slog.Error("list latest articles failed", "error", err)
		respondError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	items := make([]latestItem, 0, len(latest))
	for i := range latest {
		a := &latest[i]
		items = append(items, latestItem{
			Title: a.Title,
			Href:  a.CanonicalPath(),
			Year:  a.Year(),
		})
	}

	payload, err := json.Marshal(items)
	if err != nil {
		slog.Error("marshal latest articles failed", "error", err)
		respondError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	p.pageCache.Set(ctx, cache.LatestKey(), payload)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Write(payload)
}
