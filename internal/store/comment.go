package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/Junito34/mon-site/internal/models"
)

// CommentStore handles reader comment database operations. Comments are
// keyed by the article's canonical key ("{year}/{slug}") rather than its id,
// so they survive article re-saves untouched.
type CommentStore struct {
	db *sql.DB
}

// NewCommentStore creates a new CommentStore with the given database connection.
func NewCommentStore(db *sql.DB) *CommentStore {
	return &CommentStore{db: db}
}

// ListByKey returns all comments for an article key, oldest first.
func (s *CommentStore) ListByKey(ctx context.Context, key string) ([]models.Comment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.article_key, c.author_id, u.display_name, c.content, c.created_at, c.updated_at
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.article_key = $1
		ORDER BY c.created_at ASC
	`, key)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.ArticleKey, &c.AuthorID, &c.AuthorName, &c.Content, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// FindByID retrieves a comment by id. Returns nil if not found.
func (s *CommentStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	c := &models.Comment{}
	err := s.db.QueryRowContext(ctx, `
		SELECT c.id, c.article_key, c.author_id, u.display_name, c.content, c.created_at, c.updated_at
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.id = $1
	`, id).Scan(&c.ID, &c.ArticleKey, &c.AuthorID, &c.AuthorName, &c.Content, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find comment: %w", err)
	}
	return c, nil
}

// Create inserts a new comment and returns it with author name resolved.
func (s *CommentStore) Create(ctx context.Context, key string, authorID uuid.UUID, content string) (*models.Comment, error) {
	var id uuid.UUID
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO comments (article_key, author_id, content)
		VALUES ($1, $2, $3)
		RETURNING id
	`, key, authorID, content).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return s.FindByID(ctx, id)
}

// Update rewrites a comment's content and stamps updated_at. Only the
// author's own comments are touched; returns false when no row matched.
func (s *CommentStore) Update(ctx context.Context, id, authorID uuid.UUID, content string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE comments SET content = $1, updated_at = NOW()
		WHERE id = $2 AND author_id = $3
	`, content, id, authorID)
	if err != nil {
		return false, fmt.Errorf("update comment: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Delete removes a comment owned by authorID. Admins pass ownership checks
// upstream and call DeleteAny instead.
func (s *CommentStore) Delete(ctx context.Context, id, authorID uuid.UUID) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM comments WHERE id = $1 AND author_id = $2
	`, id, authorID)
	if err != nil {
		return false, fmt.Errorf("delete comment: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// DeleteAny removes a comment regardless of owner, for moderation.
func (s *CommentStore) DeleteAny(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}
