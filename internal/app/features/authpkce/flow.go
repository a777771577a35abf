// internal/app/features/authpkce/flow.go
package authpkce

import (
	"net/http"

	"github.com/dalemusser/circles/internal/app/system/httpjson"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// oauthState is the transient login attempt stored in the signed,
// encrypted state cookie between /auth/login and /auth/callback.
type oauthState struct {
	State    string `json:"state"`
	Verifier string `json:"verifier"`
	Return   string `json:"return"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/login                                                              |
| Starts the authorization-code flow: random state + PKCE verifier into a      |
| short-lived signed cookie, then redirect to the provider's authorize URL.    |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		h.Log.Warn("identity provider not configured")
		httpjson.Error(w, http.StatusServiceUnavailable, "unavailable", "login is not configured")
		return
	}

	state, err := generateState()
	if err != nil {
		h.Log.Error("failed to generate OAuth state", zap.Error(err))
		httpjson.Internal(w)
		return
	}
	verifier := oauth2.GenerateVerifier()

	payload := oauthState{
		State:    state,
		Verifier: verifier,
		Return:   query.Get(r, "return"),
	}
	encoded, err := h.codec.Encode(oauthCookieName, payload)
	if err != nil {
		h.Log.Error("failed to encode state cookie", zap.Error(err))
		httpjson.Internal(w)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oauthCookieName,
		Value:    encoded,
		Path:     "/auth",
		MaxAge:   oauthCookieMaxAge,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})

	authURL := h.oauth2Config().AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.S256ChallengeOption(verifier))

	h.Log.Debug("initiating login", zap.String("return_url", payload.Return))
	http.Redirect(w, r, authURL, http.StatusTemporaryRedirect)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/callback                                                           |
| Validates state, exchanges code+verifier for tokens, and stores only the     |
| refresh token in an HttpOnly cookie.                                         |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	if errParam := query.Get(r, "error"); errParam != "" {
		h.Log.Warn("provider returned OAuth error",
			zap.String("error", errParam),
			zap.String("description", query.Get(r, "error_description")))
		http.Redirect(w, r, "/?error=login_denied", http.StatusSeeOther)
		return
	}

	cookie, err := r.Cookie(oauthCookieName)
	if err != nil {
		h.Log.Warn("missing OAuth state cookie")
		http.Redirect(w, r, "/?error=invalid_state", http.StatusSeeOther)
		return
	}

	var saved oauthState
	if err := h.codec.Decode(oauthCookieName, cookie.Value, &saved); err != nil {
		h.Log.Warn("invalid OAuth state cookie", zap.Error(err))
		http.Redirect(w, r, "/?error=invalid_state", http.StatusSeeOther)
		return
	}

	if state := query.Get(r, "state"); state == "" || state != saved.State {
		h.Log.Warn("OAuth state mismatch")
		http.Redirect(w, r, "/?error=invalid_state", http.StatusSeeOther)
		return
	}

	code := query.Get(r, "code")
	if code == "" {
		h.Log.Warn("missing OAuth code parameter")
		http.Redirect(w, r, "/?error=invalid_code", http.StatusSeeOther)
		return
	}

	token, err := h.oauth2Config().Exchange(r.Context(), code,
		oauth2.VerifierOption(saved.Verifier))
	if err != nil {
		h.Log.Error("failed to exchange OAuth code", zap.Error(err))
		http.Redirect(w, r, "/?error=token_exchange", http.StatusSeeOther)
		return
	}

	// The state cookie has served its purpose.
	http.SetCookie(w, &http.Cookie{
		Name:     oauthCookieName,
		Value:    "",
		Path:     "/auth",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
	})

	if token.RefreshToken != "" {
		sess, _ := h.sessionStore.Get(r, refreshSessionName)
		sess.Values["refresh_token"] = token.RefreshToken
		if err := h.sessionStore.Save(r, w, sess); err != nil {
			h.Log.Error("failed to save refresh cookie", zap.Error(err))
			http.Redirect(w, r, "/?error=session", http.StatusSeeOther)
			return
		}
	} else {
		h.Log.Warn("token exchange returned no refresh token")
	}

	h.Log.Info("login completed")
	http.Redirect(w, r, urlutil.SafeReturn(saved.Return, "", "/"), http.StatusSeeOther)
}
