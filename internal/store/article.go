package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/Junito34/mon-site/internal/models"
)

// ArticleStore handles all article-related database operations.
type ArticleStore struct {
	db *sql.DB
}

// NewArticleStore creates a new ArticleStore with the given database connection.
func NewArticleStore(db *sql.DB) *ArticleStore {
	return &ArticleStore{db: db}
}

// List returns all articles ordered by creation date descending, for the
// moderation listing.
func (s *ArticleStore) List(ctx context.Context) ([]models.Article, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, slug, published_date, author_id, created_at
		FROM articles
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()

	return scanArticles(rows)
}

// ListLatest returns the n most recently published articles.
func (s *ArticleStore) ListLatest(ctx context.Context, n int) ([]models.Article, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, slug, published_date, author_id, created_at
		FROM articles
		ORDER BY published_date DESC
		LIMIT $1
	`, n)
	if err != nil {
		return nil, fmt.Errorf("list latest articles: %w", err)
	}
	defer rows.Close()

	return scanArticles(rows)
}

// FindByID retrieves an article by its UUID. Returns nil if not found.
func (s *ArticleStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	a := &models.Article{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, slug, published_date, author_id, created_at
		FROM articles WHERE id = $1
	`, id).Scan(&a.ID, &a.Title, &a.Slug, &a.PublishedDate, &a.AuthorID, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find article by id: %w", err)
	}
	return a, nil
}

// FindBySlug retrieves an article by its slug. Returns nil if not found.
func (s *ArticleStore) FindBySlug(ctx context.Context, slug string) (*models.Article, error) {
	a := &models.Article{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, slug, published_date, author_id, created_at
		FROM articles WHERE slug = $1
	`, slug).Scan(&a.ID, &a.Title, &a.Slug, &a.PublishedDate, &a.AuthorID, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find article by slug: %w", err)
	}
	return a, nil
}

// SlugTaken reports whether another article than excludeID already uses the
// slug. Pass uuid.Nil in create mode so every match counts.
func (s *ArticleStore) SlugTaken(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM articles WHERE slug = $1 AND id <> $2)
	`, slug, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check slug: %w", err)
	}
	return exists, nil
}

// Create inserts a new article and returns it with the generated ID.
// Author and id are immutable after this point.
func (s *ArticleStore) Create(ctx context.Context, a *models.Article) (*models.Article, error) {
	result := &models.Article{}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO articles (title, slug, published_date, author_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, title, slug, published_date, author_id, created_at
	`, a.Title, a.Slug, a.PublishedDate, a.AuthorID,
	).Scan(&result.ID, &result.Title, &result.Slug, &result.PublishedDate, &result.AuthorID, &result.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create article: %w", err)
	}
	return result, nil
}

// Update modifies an existing article's title, slug, and publish date.
func (s *ArticleStore) Update(ctx context.Context, a *models.Article) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE articles SET title = $1, slug = $2, published_date = $3
		WHERE id = $4
	`, a.Title, a.Slug, a.PublishedDate, a.ID)
	if err != nil {
		return fmt.Errorf("update article: %w", err)
	}
	return nil
}

// DeleteCascade removes an article and all of its blocks as one atomic
// operation. The article_blocks foreign key carries ON DELETE CASCADE, so a
// single delete inside a transaction takes both out or neither.
func (s *ArticleStore) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete article cascade: begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete article cascade: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete article cascade: article %s not found", id)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete article cascade: commit: %w", err)
	}
	return nil
}

func scanArticles(rows *sql.Rows) ([]models.Article, error) {
	var items []models.Article
	for rows.Next() {
		var a models.Article
		if err := rows.Scan(&a.ID, &a.Title, &a.Slug, &a.PublishedDate, &a.AuthorID, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		items = append(items, a)
	}
	return items, rows.Err()
}
