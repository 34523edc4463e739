package middleware

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
)

const (
	// CSRFCookieName holds the double-submit token on the client.
	CSRFCookieName = "ms_csrf"

	// CSRFHeaderName is how the editor frontend echoes the token back on
	// JSON and multipart requests.
	CSRFHeaderName = "X-CSRF-Token"

	// CSRFFormField is the fallback for plain form posts.
	CSRFFormField = "csrf_token"
)

// csrfKey is the context key under which the active token is stored.
const csrfKey contextKey = "csrf"

// NewCSRF returns double-submit cookie CSRF protection for the moderation
// surface. Every request gets a token cookie if it lacks one; state-changing
// methods must echo the cookie value back in the X-CSRF-Token header (the
// editor does this on its fetch calls, including the multipart article saves)
// or in a csrf_token form field. The secure flag follows the session cookie:
// false only in local development over plain HTTP.
func NewCSRF(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := cookieToken(r)
			if token == "" {
				var err error
				token, err = newToken()
				if err != nil {
					jsonError(w, http.StatusInternalServerError, "internal error")
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:  CSRFCookieName,
					Value: token,
					Path:  "/",
					// Not HttpOnly: the frontend reads it to fill the header.
					Secure:   secure,
					SameSite: http.SameSiteStrictMode,
				})
			}

			r = r.WithContext(context.WithValue(r.Context(), csrfKey, token))

			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			submitted := r.Header.Get(CSRFHeaderName)
			if submitted == "" {
				submitted = r.FormValue(CSRFFormField)
			}
			if subtle.ConstantTimeCompare([]byte(token), []byte(submitted)) != 1 {
				jsonError(w, http.StatusForbidden, "csrf token mismatch")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// CSRFTokenFromCtx returns the token the middleware attached to the request,
// or "" outside the middleware chain.
func CSRFTokenFromCtx(ctx context.Context) string {
	token, _ := ctx.Value(csrfKey).(string)
	return token
}

func cookieToken(r *http.Request) string {
	c, err := r.Cookie(CSRFCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
