// Package renderer turns an ordered list of persisted blocks into a
// presentational tree and renders it to HTML. The same code path serves the
// live editor preview and the published article page, so what the author
// sees while editing is exactly what readers get.
package renderer

import (
	"html/template"
	"io"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/Junito34/mon-site/internal/models"
)

// NodeKind identifies the presentational element a block renders to.
type NodeKind string

const (
	NodeHeading   NodeKind = "heading"
	NodeParagraph NodeKind = "paragraph"
	NodeQuote     NodeKind = "quote"
	NodeImage     NodeKind = "image"
	NodeVideo     NodeKind = "video"
)

// Node is one element of the rendered article body.
type Node struct {
	Kind    NodeKind
	BlockID uuid.UUID
	Text    string // heading, paragraph, quote
	Src     string // image URL
	VideoID string // extracted YouTube identifier
	Caption string
}

// Render maps blocks, already sorted by sort index, to presentational nodes.
// It is pure and tolerates unsaved editor state: images without a URL and
// videos without an extractable id are dropped silently rather than failing
// the whole article.
func Render(rows []models.BlockRow) []Node {
	nodes := make([]Node, 0, len(rows))
	for _, row := range rows {
		switch row.Type {
		case models.BlockTitle:
			nodes = append(nodes, Node{Kind: NodeHeading, BlockID: row.ID, Text: text(row.Content)})
		case models.BlockParagraph:
			nodes = append(nodes, Node{Kind: NodeParagraph, BlockID: row.ID, Text: text(row.Content)})
		case models.BlockQuote:
			nodes = append(nodes, Node{Kind: NodeQuote, BlockID: row.ID, Text: text(row.Content)})
		case models.BlockImage:
			src := text(row.MediaURL)
			if src == "" {
				continue
			}
			nodes = append(nodes, Node{Kind: NodeImage, BlockID: row.ID, Src: src, Caption: text(row.Caption)})
		case models.BlockYouTube:
			id, ok := YouTubeID(text(row.MediaURL))
			if !ok {
				continue
			}
			nodes = append(nodes, Node{Kind: NodeVideo, BlockID: row.ID, VideoID: id, Caption: text(row.Caption)})
		}
	}
	return nodes
}

// YouTubeID extracts a video identifier from a YouTube URL. Exactly three
// forms are supported:
//
//	https://youtu.be/<id>
//	https://www.youtube.com/watch?v=<id>
//	https://www.youtube.com/embed/<id>
//
// Anything else returns ("", false) — a non-YouTube or malformed URL renders
// nothing rather than a broken player.
func YouTubeID(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", false
	}

	segments := splitPath(u.Path)
	host := u.Hostname()

	if host == "youtu.be" || strings.HasSuffix(host, ".youtu.be") {
		if len(segments) > 0 {
			return segments[0], true
		}
		return "", false
	}

	if host != "youtube.com" && !strings.HasSuffix(host, ".youtube.com") {
		return "", false
	}

	if v := u.Query().Get("v"); v != "" {
		return v, true
	}

	for i, s := range segments {
		if s == "embed" && i+1 < len(segments) {
			return segments[i+1], true
		}
	}

	return "", false
}

// WriteBody renders the block nodes as an HTML fragment.
func WriteBody(w io.Writer, nodes []Node) error {
	return bodyTmpl.Execute(w, nodes)
}

// ArticlePage is the data for a full public article page.
type ArticlePage struct {
	Title      string
	Year       string
	Path       string
	AuthorName string
	Nodes      []Node
}

// WritePage renders the complete public article page.
func WritePage(w io.Writer, page *ArticlePage) error {
	return pageTmpl.Execute(w, page)
}

func text(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func splitPath(p string) []string {
	var out []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// bodyTmpl renders the presentational tree. Paragraph text keeps embedded
// line breaks verbatim via white-space:pre-wrap; no markup is interpreted.
var bodyTmpl = template.Must(template.New("body").Parse(`{{range .}}{{if eq .Kind "heading"}}<h2 class="block-title">{{.Text}}</h2>
{{else if eq .Kind "paragraph"}}<p class="block-paragraph" style="white-space:pre-wrap">{{.Text}}</p>
{{else if eq .Kind "quote"}}<blockquote class="block-quote">{{.Text}}</blockquote>
{{else if eq .Kind "image"}}<figure class="block-image"><img src="{{.Src}}" alt="{{.Caption}}">{{if .Caption}}<figcaption>{{.Caption}}</figcaption>{{end}}</figure>
{{else if eq .Kind "video"}}<figure class="block-video"><iframe src="https://www.youtube.com/embed/{{.VideoID}}" title="YouTube" allowfullscreen></iframe>{{if .Caption}}<figcaption>{{.Caption}}</figcaption>{{end}}</figure>
{{end}}{{end}}`))

var pageTmpl = template.Must(template.Must(bodyTmpl.Clone()).New("page").Parse(`<!DOCTYPE html>
<html lang="fr">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
</head>
<body>
<main class="article">
<header>
<h1>{{.Title}}</h1>
<div class="article-meta">{{.Year}} — {{.Path}}{{if .AuthorName}} · {{.AuthorName}}{{end}}</div>
</header>
<section class="article-body">
{{template "body" .Nodes}}
</section>
</main>
</body>
</html>
`))
