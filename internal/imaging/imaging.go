// Package imaging validates image uploads before they hit object storage.
// Only decodable raster images within sane pixel bounds are accepted; a
// corrupt or hostile file is rejected here instead of being served to
// readers later.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"net/http"

	_ "golang.org/x/image/webp" // register WebP decoder
)

// maxPixels caps the decoded size to prevent memory bombs.
// 10000x10000 = 100 million pixels, ~400 MB decoded in RGBA.
const maxPixels = 100_000_000

// allowedTypes are the MIME types accepted for article image blocks.
var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Info describes a validated image.
type Info struct {
	ContentType string
	Width       int
	Height      int
}

// Validate sniffs the content type and decodes the image header. It returns
// the detected type and dimensions, or an error when the data is not an
// accepted image or exceeds the pixel cap.
func Validate(data []byte) (*Info, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("imaging: empty file")
	}

	sniffLen := 512
	if len(data) < sniffLen {
		sniffLen = len(data)
	}
	contentType := http.DetectContentType(data[:sniffLen])
	if !allowedTypes[contentType] {
		return nil, fmt.Errorf("imaging: file type %q is not allowed", contentType)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("imaging: decode: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width*cfg.Height > maxPixels {
		return nil, fmt.Errorf("imaging: image dimensions %dx%d out of bounds", cfg.Width, cfg.Height)
	}

	return &Info{ContentType: contentType, Width: cfg.Width, Height: cfg.Height}, nil
}
