package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment is a reader comment attached to an article. Articles are addressed
// by their "{year}/{slug}" key rather than the internal ID, so comments
// survive the article edit flow's full block replacement untouched.
type Comment struct {
	ID         uuid.UUID  `json:"id"`
	ArticleKey string     `json:"article_key"`
	AuthorID   uuid.UUID  `json:"author_id"`
	AuthorName string     `json:"author_name"`
	Content    string     `json:"content"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

// Edited reports whether the comment was modified after posting.
func (c *Comment) Edited() bool {
	return c.UpdatedAt != nil
}
