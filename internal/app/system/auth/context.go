// internal/app/system/auth/context.go
package auth

import (
	"context"
	"net/http"
)

type ctxKey string

const claimsKey ctxKey = "claims"

// CurrentClaims returns the caller's claims and a "found?" flag.
func CurrentClaims(r *http.Request) (Claims, bool) {
	c, ok := r.Context().Value(claimsKey).(Claims)
	return c, ok
}

func withClaims(r *http.Request, c Claims) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), claimsKey, c))
}

// WithTestClaims injects claims directly into the request context,
// bypassing token verification. For handler tests only.
func WithTestClaims(r *http.Request, c Claims) *http.Request {
	return withClaims(r, c)
}
