// Package middleware provides the HTTP middleware chain for the mon-site
// server: panic recovery, request logging, security headers, CSRF protection,
// per-IP rate limiting, and the session-based auth gates guarding the
// moderation API.
package middleware

import (
	"fmt"
	"net/http"
)

// jsonError writes a small JSON error body. The moderation surface and the
// comment API are JSON; middleware rejections must be parseable by the same
// clients.
func jsonError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, "{\"error\":%q}\n", message)
}
