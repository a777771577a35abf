// internal/app/system/auth/middleware.go
package auth

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Middleware resolves bearer tokens to claims for the API surface.
type Middleware struct {
	Verifier Verifier
	Log      *zap.Logger
}

// NewMiddleware creates the auth middleware.
func NewMiddleware(verifier Verifier, logger *zap.Logger) *Middleware {
	return &Middleware{Verifier: verifier, Log: logger}
}

// LoadClaims injects claims into the request context when a valid
// bearer token is present. Requests without (or with an invalid) token
// continue unauthenticated; enforcement is RequireAuth's job so public
// routes can share the stack.
func (m *Middleware) LoadClaims(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}
		claims, err := m.Verifier.Verify(r.Context(), token)
		if err != nil {
			m.Log.Debug("bearer token rejected", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, withClaims(r, claims))
	})
}

// RequireAuth ensures claims are present in context (set by LoadClaims).
// API callers get a plain 401 JSON body; there is no HTML surface here.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentClaims(r); !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"unauthenticated"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
