// internal/app/features/authpkce/token.go
package authpkce

import (
	"net/http"

	"github.com/dalemusser/circles/internal/app/system/auth"
	"github.com/dalemusser/circles/internal/app/system/httpjson"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

/*─────────────────────────────────────────────────────────────────────────────*
| POST /auth/token                                                             |
| Runs the refresh grant using the refresh-token cookie and returns a fresh    |
| access token. The refresh token itself never leaves the cookie.             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeToken(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessionStore.Get(r, refreshSessionName)
	if err != nil {
		httpjson.Unauthenticated(w)
		return
	}
	refresh, _ := sess.Values["refresh_token"].(string)
	if refresh == "" {
		httpjson.Unauthenticated(w)
		return
	}

	src := h.oauth2Config().TokenSource(r.Context(), &oauth2.Token{RefreshToken: refresh})
	token, err := src.Token()
	if err != nil {
		h.Log.Warn("refresh grant failed", zap.Error(err))
		httpjson.Unauthenticated(w)
		return
	}

	// Some providers rotate the refresh token on every grant.
	if token.RefreshToken != "" && token.RefreshToken != refresh {
		sess.Values["refresh_token"] = token.RefreshToken
		if err := h.sessionStore.Save(r, w, sess); err != nil {
			h.Log.Warn("failed to save rotated refresh token", zap.Error(err))
		}
	}

	httpjson.Respond(w, http.StatusOK, map[string]any{
		"accessToken": token.AccessToken,
		"tokenType":   token.TokenType,
		"expiresAt":   token.Expiry,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/me                                                                 |
| Returns the caller's identity claims from the bearer token.                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.CurrentClaims(r)
	if !ok {
		httpjson.Unauthenticated(w)
		return
	}
	httpjson.Respond(w, http.StatusOK, map[string]any{
		"userId": claims.Subject,
		"name":   claims.Name,
		"email":  claims.Email,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /auth/logout                                                            |
| Clears the refresh-token cookie. Access tokens expire on their own.          |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessionStore.Get(r, refreshSessionName)
	if err == nil {
		sess.Options.MaxAge = -1
		if err := h.sessionStore.Save(r, w, sess); err != nil {
			h.Log.Warn("failed to clear refresh cookie", zap.Error(err))
		}
	}
	httpjson.Respond(w, http.StatusOK, map[string]any{"loggedOut": true})
}
