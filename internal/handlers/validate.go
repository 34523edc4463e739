package handlers

import (
	"strings"
	"unicode/utf8"
)

// Validation limits for article and comment fields.
const (
	maxTitleLen     = 300
	maxSlugLen      = 300
	maxBlockTextLen = 50_000
	maxCaptionLen   = 1_000
	maxCommentLen   = 5_000
	maxBlockCount   = 200

	// maxUploadBytes caps a single image upload (8 MiB).
	maxUploadBytes = 8 << 20

	// maxSaveBytes caps the whole multipart save request (64 MiB).
	maxSaveBytes = 64 << 20
)

// validateDraftLimits checks field length limits on an incoming draft before
// it reaches the save pipeline. Returns (field, message) or ("", "") when ok.
func validateDraftLimits(title, slugInput string, blockCount int) (string, string) {
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "title", "Title is too long (max 300 characters)."
	}
	if utf8.RuneCountInString(slugInput) > maxSlugLen {
		return "slug", "Slug is too long (max 300 characters)."
	}
	if blockCount > maxBlockCount {
		return "blocks", "Too many blocks (max 200)."
	}
	return "", ""
}

// validateBlockText checks a single block's text payloads.
func validateBlockText(content, caption string) (string, string) {
	if utf8.RuneCountInString(content) > maxBlockTextLen {
		return "blocks", "Block text is too long (max 50,000 characters)."
	}
	if utf8.RuneCountInString(caption) > maxCaptionLen {
		return "blocks", "Caption is too long (max 1,000 characters)."
	}
	return "", ""
}

// validateComment checks a comment body and returns the first error found.
func validateComment(content string) string {
	if strings.TrimSpace(content) == "" {
		return "Comment cannot be empty."
	}
	if utf8.RuneCountInString(content) > maxCommentLen {
		return "Comment is too long (max 5,000 characters)."
	}
	return ""
}
