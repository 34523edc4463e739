package models

import (
	"strings"

	"github.com/google/uuid"
)

// BlockType identifies the kind of content a block carries.
type BlockType string

const (
	BlockTitle     BlockType = "title"
	BlockParagraph BlockType = "paragraph"
	BlockQuote     BlockType = "quote"
	BlockImage     BlockType = "image"
	BlockYouTube   BlockType = "youtube"
)

// Valid reports whether t is one of the known block types.
func (t BlockType) Valid() bool {
	switch t {
	case BlockTitle, BlockParagraph, BlockQuote, BlockImage, BlockYouTube:
		return true
	}
	return false
}

// IsText reports whether the block type carries a text payload in Content.
func (t BlockType) IsText() bool {
	return t == BlockTitle || t == BlockParagraph || t == BlockQuote
}

// PendingFile is an image picked in the editor but not yet uploaded.
// PreviewRef is a transient reference for display only and is never persisted.
type PendingFile struct {
	Name       string `json:"name"`
	Data       []byte `json:"-"`
	PreviewRef string `json:"preview_ref,omitempty"`
}

// Block is one unit of article content as held by the editor. The meaning of
// its fields depends on Type:
//
//	title, paragraph, quote → Content
//	image                   → MediaURL (stored public URL), Caption, Pending
//	youtube                 → MediaURL (source video URL), Caption
//
// IDs are generated in the editor and stay stable across edits and reorders;
// they double as part of the blob storage key for image blocks.
type Block struct {
	ID       uuid.UUID    `json:"id"`
	Type     BlockType    `json:"type"`
	Content  string       `json:"content,omitempty"`
	MediaURL string       `json:"media_url,omitempty"`
	Caption  string       `json:"caption,omitempty"`
	Pending  *PendingFile `json:"pending,omitempty"`
}

// NewBlock returns an empty block of the given type with a fresh ID.
func NewBlock(t BlockType) Block {
	return Block{ID: uuid.New(), Type: t}
}

// Clone returns a deep copy of the block, pending file bytes included.
func (b Block) Clone() Block {
	c := b
	if b.Pending != nil {
		p := *b.Pending
		p.Data = append([]byte(nil), b.Pending.Data...)
		c.Pending = &p
	}
	return c
}

// HasContent reports whether the block counts toward the "at least one
// non-empty block" save rule: text present, an image with a file or URL,
// or a video URL present.
func (b Block) HasContent() bool {
	switch b.Type {
	case BlockImage:
		return b.Pending != nil || b.MediaURL != ""
	case BlockYouTube:
		return strings.TrimSpace(b.MediaURL) != ""
	default:
		return strings.TrimSpace(b.Content) != ""
	}
}

// BlockRow is the persisted shape of a block. Exactly one of Content or
// MediaURL is meaningfully populated depending on Type.
type BlockRow struct {
	ID        uuid.UUID `json:"id"`
	ArticleID uuid.UUID `json:"article_id"`
	Type      BlockType `json:"type"`
	Content   *string   `json:"content"`
	MediaURL  *string   `json:"media_url"`
	Caption   *string   `json:"caption"`
	SortIndex int       `json:"sort_index"`
}

// RowFromBlock maps an editor block to its persisted row. Text payloads are
// trimmed; empty captions become NULL. The pending file is dropped — callers
// upload it and set MediaURL before converting.
func RowFromBlock(b Block, articleID uuid.UUID, sortIndex int) BlockRow {
	row := BlockRow{
		ID:        b.ID,
		ArticleID: articleID,
		Type:      b.Type,
		SortIndex: sortIndex,
	}
	switch b.Type {
	case BlockImage, BlockYouTube:
		row.MediaURL = nullable(strings.TrimSpace(b.MediaURL))
		row.Caption = nullable(strings.TrimSpace(b.Caption))
	default:
		row.Content = nullable(strings.TrimSpace(b.Content))
	}
	return row
}

// BlockFromRow hydrates a persisted row back into an editor block.
func BlockFromRow(row BlockRow) Block {
	b := Block{ID: row.ID, Type: row.Type}
	switch row.Type {
	case BlockImage, BlockYouTube:
		b.MediaURL = deref(row.MediaURL)
		b.Caption = deref(row.Caption)
	default:
		b.Content = deref(row.Content)
	}
	return b
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
