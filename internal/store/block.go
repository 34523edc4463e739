package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/Junito34/mon-site/internal/models"
)

// BlockStore handles all article block database operations.
type BlockStore struct {
	db *sql.DB
}

// NewBlockStore creates a new BlockStore with the given database connection.
func NewBlockStore(db *sql.DB) *BlockStore {
	return &BlockStore{db: db}
}

// ListByArticle returns an article's blocks ordered by sort_index ascending.
func (s *BlockStore) ListByArticle(ctx context.Context, articleID uuid.UUID) ([]models.BlockRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, article_id, type, content, media_url, caption, sort_index
		FROM article_blocks
		WHERE article_id = $1
		ORDER BY sort_index ASC
	`, articleID)
	if err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	defer rows.Close()

	var blocks []models.BlockRow
	for rows.Next() {
		var b models.BlockRow
		if err := rows.Scan(&b.ID, &b.ArticleID, &b.Type, &b.Content, &b.MediaURL, &b.Caption, &b.SortIndex); err != nil {
			return nil, fmt.Errorf("scan block: %w", err)
		}
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}

// ReplaceForArticle swaps an article's entire block set in one transaction:
// every existing row is deleted, then the given rows are inserted in order.
// Readers never observe a half-replaced article.
func (s *BlockStore) ReplaceForArticle(ctx context.Context, articleID uuid.UUID, blocks []models.BlockRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace blocks: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM article_blocks WHERE article_id = $1`, articleID); err != nil {
		return fmt.Errorf("replace blocks: delete: %w", err)
	}

	for _, b := range blocks {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO article_blocks (id, article_id, type, content, media_url, caption, sort_index)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, b.ID, articleID, b.Type, b.Content, b.MediaURL, b.Caption, b.SortIndex)
		if err != nil {
			return fmt.Errorf("replace blocks: insert %s: %w", b.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace blocks: commit: %w", err)
	}
	return nil
}

// ListImageURLs returns the media URLs of an article's image blocks, for
// mapping back to storage keys before a cascade delete.
func (s *BlockStore) ListImageURLs(ctx context.Context, articleID uuid.UUID) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT media_url FROM article_blocks
		WHERE article_id = $1 AND type = $2 AND media_url IS NOT NULL
	`, articleID, models.BlockImage)
	if err != nil {
		return nil, fmt.Errorf("list image urls: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("scan image url: %w", err)
		}
		urls = append(urls, u)
	}
	return urls, rows.Err()
}
