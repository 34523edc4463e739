// Package editor implements the in-memory article draft: an ordered list of
// content blocks plus the title, date, and slug fields being authored.
//
// The draft is the single source of truth at save time. Every operation
// replaces blocks rather than mutating them in place and rebuilds the slice,
// so callers may hold references to previous states safely.
package editor

import (
	"time"

	"github.com/google/uuid"

	"github.com/Junito34/mon-site/internal/models"
	"github.com/Junito34/mon-site/internal/slug"
)

// Draft holds an article's working state during authoring. ArticleID is the
// zero UUID in create mode and the existing article's id in edit mode.
type Draft struct {
	ArticleID     uuid.UUID
	Title         string
	PublishedDate string // calendar date as typed, "2006-01-02"
	SlugInput     string // explicit slug override; empty means derive from title
	Blocks        []models.Block
}

// Patch is a partial block payload for UpdateBlock. Nil fields are left
// untouched.
type Patch struct {
	Content  *string
	MediaURL *string
	Caption  *string
}

// New returns a create-mode draft seeded with a single empty paragraph block.
func New() *Draft {
	return &Draft{
		Blocks: []models.Block{models.NewBlock(models.BlockParagraph)},
	}
}

// FromArticle hydrates an edit-mode draft from a persisted article and its
// block rows, which must already be ordered by sort index.
func FromArticle(a *models.Article, rows []models.BlockRow) *Draft {
	d := &Draft{
		ArticleID:     a.ID,
		Title:         a.Title,
		PublishedDate: a.PublishedDate.Format("2006-01-02"),
		SlugInput:     a.Slug,
		Blocks:        make([]models.Block, 0, len(rows)),
	}
	for _, row := range rows {
		d.Blocks = append(d.Blocks, models.BlockFromRow(row))
	}
	return d
}

// IsEdit reports whether the draft targets an existing article.
func (d *Draft) IsEdit() bool {
	return d.ArticleID != uuid.Nil
}

// ComputedSlug returns the slug the draft would save under: the explicit
// slug input if present, otherwise the title, both run through the
// slug generator.
func (d *Draft) ComputedSlug() string {
	if d.SlugInput != "" {
		return slug.Generate(d.SlugInput)
	}
	return slug.Generate(d.Title)
}

// Year returns the display year of the draft's publish date, or the
// "0000" sentinel when the date is missing or malformed.
func (d *Draft) Year() string {
	return slug.Year(d.PublishedDate)
}

// AddBlock appends an empty block of the given type and returns its id so
// the caller can focus it.
func (d *Draft) AddBlock(t models.BlockType) uuid.UUID {
	b := models.NewBlock(t)
	blocks := make([]models.Block, len(d.Blocks), len(d.Blocks)+1)
	copy(blocks, d.Blocks)
	d.Blocks = append(blocks, b)
	return b.ID
}

// RemoveBlock filters the block out of the draft. Unknown ids are a no-op.
func (d *Draft) RemoveBlock(id uuid.UUID) {
	blocks := make([]models.Block, 0, len(d.Blocks))
	for _, b := range d.Blocks {
		if b.ID != id {
			blocks = append(blocks, b)
		}
	}
	d.Blocks = blocks
}

// DuplicateBlock deep-copies the block with the given id, assigns the copy a
// fresh id, and inserts it immediately after the original. Returns the new
// id, or (uuid.Nil, false) if the id is unknown.
func (d *Draft) DuplicateBlock(id uuid.UUID) (uuid.UUID, bool) {
	i := d.indexOf(id)
	if i < 0 {
		return uuid.Nil, false
	}
	dup := d.Blocks[i].Clone()
	dup.ID = uuid.New()

	blocks := make([]models.Block, 0, len(d.Blocks)+1)
	blocks = append(blocks, d.Blocks[:i+1]...)
	blocks = append(blocks, dup)
	blocks = append(blocks, d.Blocks[i+1:]...)
	d.Blocks = blocks
	return dup.ID, true
}

// UpdateBlock merges the patch into the block with the given id. Unknown ids
// are a no-op. The matched block is replaced with a new value.
func (d *Draft) UpdateBlock(id uuid.UUID, patch Patch) {
	i := d.indexOf(id)
	if i < 0 {
		return
	}
	b := d.Blocks[i]
	if patch.Content != nil {
		b.Content = *patch.Content
	}
	if patch.MediaURL != nil {
		b.MediaURL = *patch.MediaURL
	}
	if patch.Caption != nil {
		b.Caption = *patch.Caption
	}
	d.replace(i, b)
}

// PickImage attaches a locally selected file to an image block and derives a
// transient preview reference from it. Passing nil clears the pending file;
// any previously persisted MediaURL is kept so the old image still shows.
// A replaced pending file's preview reference is dropped with it.
func (d *Draft) PickImage(id uuid.UUID, file *models.PendingFile) {
	i := d.indexOf(id)
	if i < 0 || d.Blocks[i].Type != models.BlockImage {
		return
	}
	b := d.Blocks[i]
	if file != nil {
		f := *file
		f.PreviewRef = "draft://" + id.String() + "/" + f.Name
		b.Pending = &f
	} else {
		b.Pending = nil
	}
	d.replace(i, b)
}

// Reorder moves the block identified by fromID to the position currently
// occupied by toID, preserving the relative order of all other blocks.
// Unknown ids or a self-move are a no-op.
func (d *Draft) Reorder(fromID, toID uuid.UUID) {
	d.Move(d.indexOf(fromID), d.indexOf(toID))
}

// Move relocates a single block from index i to index j. Out-of-range
// indices are a no-op. This is the gesture-free primitive the drag-and-drop
// UI layer resolves to.
func (d *Draft) Move(i, j int) {
	n := len(d.Blocks)
	if i < 0 || j < 0 || i >= n || j >= n || i == j {
		return
	}
	blocks := make([]models.Block, 0, n)
	blocks = append(blocks, d.Blocks[:i]...)
	blocks = append(blocks, d.Blocks[i+1:]...)

	moved := d.Blocks[i]
	blocks = append(blocks[:j], append([]models.Block{moved}, blocks[j:]...)...)
	d.Blocks = blocks
}

// HasContent reports whether at least one block carries effective content.
// A draft of only empty blocks is rejected at save time.
func (d *Draft) HasContent() bool {
	for _, b := range d.Blocks {
		if b.HasContent() {
			return true
		}
	}
	return false
}

// PreviewBlocks projects the draft's blocks into persisted-row shape with
// dense sort indices, for the live preview. Pending image files show their
// transient preview reference in place of a media URL.
func (d *Draft) PreviewBlocks() []models.BlockRow {
	rows := make([]models.BlockRow, 0, len(d.Blocks))
	for i, b := range d.Blocks {
		if b.Type == models.BlockImage && b.Pending != nil {
			b.MediaURL = b.Pending.PreviewRef
		}
		rows = append(rows, models.RowFromBlock(b, d.ArticleID, i))
	}
	return rows
}

// ParseDate parses the draft's publish date. The boolean is false when the
// date is missing or malformed.
func (d *Draft) ParseDate() (time.Time, bool) {
	t, err := time.Parse("2006-01-02", d.PublishedDate)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func (d *Draft) indexOf(id uuid.UUID) int {
	for i, b := range d.Blocks {
		if b.ID == id {
			return i
		}
	}
	return -1
}

// replace writes a new block value at index i into a fresh slice.
func (d *Draft) replace(i int, b models.Block) {
	blocks := make([]models.Block, len(d.Blocks))
	copy(blocks, d.Blocks)
	blocks[i] = b
	d.Blocks = blocks
}
