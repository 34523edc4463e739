// Package articles orchestrates article persistence: the phased save pipeline
// (validate, upsert, upload pending images, replace blocks) and the cascade
// delete that removes an article together with its stored media.
package articles

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/Junito34/mon-site/internal/editor"
	"github.com/Junito34/mon-site/internal/imaging"
	"github.com/Junito34/mon-site/internal/models"
	"github.com/Junito34/mon-site/internal/storage"
)

// ArticleStore is the subset of the article datastore the service needs.
type ArticleStore interface {
	Create(ctx context.Context, a *models.Article) (*models.Article, error)
	Update(ctx context.Context, a *models.Article) error
	SlugTaken(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error)
	DeleteCascade(ctx context.Context, id uuid.UUID) error
}

// BlockStore is the subset of the block datastore the service needs.
type BlockStore interface {
	ReplaceForArticle(ctx context.Context, articleID uuid.UUID, blocks []models.BlockRow) error
	ListImageURLs(ctx context.Context, articleID uuid.UUID) ([]string, error)
}

// BlobStore is the media storage surface the service needs.
type BlobStore interface {
	Upload(ctx context.Context, key, contentType string, data []byte) error
	DeleteMany(ctx context.Context, keys []string) error
	FileURL(key string) string
	ExtractKey(rawURL string) (string, bool)
}

// Service runs the save and delete pipelines. Blobs may be nil when no
// object storage is configured; saves then fail only if an image upload is
// actually required.
type Service struct {
	articles ArticleStore
	blocks   BlockStore
	blobs    BlobStore
}

// NewService wires the orchestrator to its stores.
func NewService(articles ArticleStore, blocks BlockStore, blobs BlobStore) *Service {
	return &Service{articles: articles, blocks: blocks, blobs: blobs}
}

// SaveInput carries one save attempt: the draft as authored and the session's
// author id, which is only consulted in create mode.
type SaveInput struct {
	Draft    *editor.Draft
	AuthorID uuid.UUID
}

// SaveResult reports where the saved article now lives.
type SaveResult struct {
	Article *models.Article
	Path    string // canonical /{year}/{slug}
}

// Save runs the phased save pipeline. Phases run in order and the first
// failure aborts the rest; an article row already upserted in phase 3 is NOT
// rolled back when a later phase fails, so a retried save will find the slug
// taken by its own article id and proceed as an edit of it.
func (s *Service) Save(ctx context.Context, in SaveInput) (*SaveResult, error) {
	d := in.Draft

	// Phase 1: validation. Nothing is written until all checks pass.
	if strings.TrimSpace(d.Title) == "" {
		return nil, &ValidationError{Field: "title", Message: "title is required"}
	}
	date, ok := d.ParseDate()
	if !ok {
		return nil, &ValidationError{Field: "date", Message: "publish date is required"}
	}
	slugValue := d.ComputedSlug()
	if slugValue == "" {
		return nil, &ValidationError{Field: "slug", Message: "cannot derive a slug"}
	}
	taken, err := s.articles.SlugTaken(ctx, slugValue, d.ArticleID)
	if err != nil {
		return nil, &DatastoreError{Op: "check slug", Err: err}
	}
	if taken {
		return nil, &ValidationError{Field: "slug", Message: "slug already in use"}
	}
	if !d.HasContent() {
		return nil, &ValidationError{Field: "blocks", Message: "at least one block must have content"}
	}

	// Phase 2: create mode needs an authenticated author.
	if !d.IsEdit() && in.AuthorID == uuid.Nil {
		return nil, ErrSessionInvalid
	}

	// Phase 3: upsert the article row.
	article := &models.Article{
		ID:            d.ArticleID,
		Title:         strings.TrimSpace(d.Title),
		Slug:          slugValue,
		PublishedDate: date,
		AuthorID:      in.AuthorID,
	}
	if d.IsEdit() {
		if err := s.articles.Update(ctx, article); err != nil {
			return nil, &DatastoreError{Op: "update article", Err: err}
		}
	} else {
		article, err = s.articles.Create(ctx, article)
		if err != nil {
			return nil, &DatastoreError{Op: "create article", Err: err}
		}
	}

	// Phase 4: upload pending images, then replace the block set. Empty
	// blocks are dropped and the survivors renumbered densely.
	rows := make([]models.BlockRow, 0, len(d.Blocks))
	for _, b := range d.Blocks {
		if !b.HasContent() {
			continue
		}
		if b.Type == models.BlockImage && b.Pending != nil {
			url, err := s.uploadPending(ctx, article.ID, b)
			if err != nil {
				return nil, err
			}
			b.MediaURL = url
		}
		rows = append(rows, models.RowFromBlock(b, article.ID, len(rows)))
	}
	if err := s.blocks.ReplaceForArticle(ctx, article.ID, rows); err != nil {
		return nil, &DatastoreError{Op: "replace blocks", Err: err}
	}

	return &SaveResult{Article: article, Path: article.CanonicalPath()}, nil
}

// uploadPending validates and uploads one picked image. The key is
// deterministic per (article, block), so re-saving overwrites the previous
// object instead of accumulating copies.
func (s *Service) uploadPending(ctx context.Context, articleID uuid.UUID, b models.Block) (string, error) {
	if s.blobs == nil {
		return "", &StorageError{Op: "upload", Err: errNoStorage}
	}
	info, err := imaging.Validate(b.Pending.Data)
	if err != nil {
		return "", &ValidationError{Field: "blocks", Message: err.Error()}
	}
	key := storage.BlockKey(articleID, b.ID, b.Pending.Name)
	if err := s.blobs.Upload(ctx, key, info.ContentType, b.Pending.Data); err != nil {
		return "", &StorageError{Op: "upload", Err: err}
	}
	return s.blobs.FileURL(key), nil
}

// Delete removes an article, its blocks, and its stored images. Media goes
// first: if the blob delete fails the article stays intact and the operation
// can be retried. URLs that don't map back to a storage key are skipped.
func (s *Service) Delete(ctx context.Context, articleID uuid.UUID) error {
	urls, err := s.blocks.ListImageURLs(ctx, articleID)
	if err != nil {
		return &DatastoreError{Op: "list images", Err: err}
	}

	if s.blobs != nil {
		keys := make([]string, 0, len(urls))
		for _, u := range urls {
			if key, ok := s.blobs.ExtractKey(u); ok {
				keys = append(keys, key)
			}
		}
		if err := s.blobs.DeleteMany(ctx, keys); err != nil {
			return &StorageError{Op: "delete", Err: err}
		}
	}

	if err := s.articles.DeleteCascade(ctx, articleID); err != nil {
		return &DatastoreError{Op: "delete article", Err: err}
	}
	return nil
}
