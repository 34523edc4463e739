package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Junito34/mon-site/internal/models"
)

// seedArticle creates an article with one paragraph block for public tests.
func seedArticle(t *testing.T, env *testEnv, title, slug string, date time.Time, authorID uuid.UUID) *models.Article {
	t.Helper()
	ctx := context.Background()
	t.Cleanup(func() { cleanArticles(t, env.DB, slug) })

	article, err := env.ArticleStore.Create(ctx, &models.Article{
		Title: title, Slug: slug, PublishedDate: date, AuthorID: authorID,
	})
	if err != nil {
		t.Fatalf("create article: %v", err)
	}

	rows := []models.BlockRow{
		models.RowFromBlock(models.Block{ID: uuid.New(), Type: models.BlockParagraph, Content: "les vagues & le sable"}, article.ID, 0),
	}
	if err := env.BlockStore.ReplaceForArticle(ctx, article.ID, rows); err != nil {
		t.Fatalf("seed blocks: %v", err)
	}
	return article
}

func TestArticlePage(t *testing.T) {
	env := newTestEnv(t)
	authorID := testUser(t, env, "public-page@handler-test.local", "author")
	article := seedArticle(t, env, "Au bord de la mer", "test-au-bord-de-la-mer",
		time.Date(2003, 8, 1, 0, 0, 0, 0, time.UTC), authorID)

	r := httptest.NewRequest(http.MethodGet, article.CanonicalPath(), nil)
	r = withChiURLParams(r, map[string]string{"year": "2003", "slug": article.Slug})

	w := httptest.NewRecorder()
	env.Public.ArticlePage(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Au bord de la mer") {
		t.Error("page should contain the article title")
	}
	// Ampersand in block text must be escaped, not raw.
	if !strings.Contains(body, "les vagues &amp; le sable") {
		t.Error("block text should be HTML-escaped")
	}

	// Second request is served from cache.
	env.DB.Exec("DELETE FROM article_blocks WHERE article_id = $1", article.ID)
	w2 := httptest.NewRecorder()
	env.Public.ArticlePage(w2, r)
	if w2.Code != http.StatusOK || !strings.Contains(w2.Body.String(), "les vagues &amp; le sable") {
		t.Error("expected cached page on second request")
	}
}

func TestArticlePageWrongYear(t *testing.T) {
	env := newTestEnv(t)
	authorID := testUser(t, env, "public-year@handler-test.local", "author")
	article := seedArticle(t, env, "Mauvaise année", "test-mauvaise-annee",
		time.Date(2005, 3, 1, 0, 0, 0, 0, time.UTC), authorID)

	// Addressed under the wrong year: 404, no redirect.
	r := httptest.NewRequest(http.MethodGet, "/2004/"+article.Slug, nil)
	r = withChiURLParams(r, map[string]string{"year": "2004", "slug": article.Slug})

	w := httptest.NewRecorder()
	env.Public.ArticlePage(w, r)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestArticlePageUnknownSlug(t *testing.T) {
	env := newTestEnv(t)

	r := httptest.NewRequest(http.MethodGet, "/2003/aucun-article-ici", nil)
	r = withChiURLParams(r, map[string]string{"year": "2003", "slug": "aucun-article-ici"})

	w := httptest.NewRecorder()
	env.Public.ArticlePage(w, r)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestLatestArticles(t *testing.T) {
	env := newTestEnv(t)
	authorID := testUser(t, env, "public-latest@handler-test.local", "author")

	// Ensure a cold cache for this test.
	env.PageCache.InvalidateLatest(context.Background())

	seedArticle(t, env, "Premier", "test-latest-premier", time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC), authorID)
	seedArticle(t, env, "Deuxième", "test-latest-deuxieme", time.Date(2002, 1, 1, 0, 0, 0, 0, time.UTC), authorID)

	r := httptest.NewRequest(http.MethodGet, "/api/articles/latest", nil)
	w := httptest.NewRecorder()
	env.Public.LatestArticles(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("content type = %q", ct)
	}

	var items []latestItem
	if err := json.Unmarshal(w.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) == 0 || len(items) > latestCount {
		t.Fatalf("got %d items, want 1..%d", len(items), latestCount)
	}
	for _, item := range items {
		if item.Title == "" || item.Year == "" {
			t.Errorf("incomplete item: %+v", item)
		}
		if !strings.HasPrefix(item.Href, "/"+item.Year+"/") {
			t.Errorf("href %q should start with /%s/", item.Href, item.Year)
		}
	}
}
