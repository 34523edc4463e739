package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Article is a dated memorial article. Its body lives in the ordered
// article_blocks rows, never on the article itself.
type Article struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	PublishedDate time.Time `json:"published_date"`
	AuthorID      uuid.UUID `json:"author_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// Year returns the 4-digit publish year used in the canonical URL.
func (a *Article) Year() string {
	return fmt.Sprintf("%04d", a.PublishedDate.Year())
}

// CanonicalPath returns the public address of the article: /{year}/{slug}.
// Changing the publish date or slug changes this path; old paths are not
// redirected.
func (a *Article) CanonicalPath() string {
	return "/" + a.Year() + "/" + a.Slug
}

// Key returns the "{year}/{slug}" identifier that comments are keyed by.
func (a *Article) Key() string {
	return a.Year() + "/" + a.Slug
}
