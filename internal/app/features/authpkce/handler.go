// internal/app/features/authpkce/handler.go
package authpkce

// Terminology: User Identifiers
//   - UserID / userID / user_id: The identity provider's subject id.
//     Circles keeps no user records of its own; the IdP is authoritative.

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const (
	// oauthCookieName carries the state and PKCE verifier between
	// /auth/login and /auth/callback.
	oauthCookieName = "circles_oauth"
	// refreshSessionName is the HttpOnly cookie holding only the refresh
	// token. Access and id tokens are never persisted server-side.
	refreshSessionName = "circles_refresh"
	// oauthCookieMaxAge bounds how long a login attempt stays valid.
	oauthCookieMaxAge = 600 // seconds
)

// Handler implements the authorization-code-with-PKCE exchange against
// the identity provider.
type Handler struct {
	Log *zap.Logger

	ClientID     string
	ClientSecret string
	AuthorizeURL string
	TokenURL     string
	RedirectURL  string
	Scopes       []string

	secure       bool
	codec        *securecookie.SecureCookie
	sessionStore *sessions.CookieStore
}

// NewHandler creates the PKCE auth handler. hashKey and blockKey sign
// and encrypt the transient state cookie; sessionKey signs the refresh
// cookie. secure controls the cookies' Secure attribute and should be
// true everywhere except local development.
func NewHandler(
	clientID, clientSecret, authorizeURL, tokenURL, baseURL string,
	scopes []string,
	hashKey, blockKey, sessionKey []byte,
	secure bool,
	logger *zap.Logger,
) *Handler {
	store := sessions.NewCookieStore(sessionKey)
	store.Options = &sessions.Options{
		Path:     "/auth",
		MaxAge:   60 * 60 * 24 * 30,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}

	if len(scopes) == 0 {
		scopes = []string{"openid", "profile", "email", "offline_access"}
	}

	return &Handler{
		Log:          logger,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		AuthorizeURL: authorizeURL,
		TokenURL:     tokenURL,
		RedirectURL:  baseURL + "/auth/callback",
		Scopes:       scopes,
		secure:       secure,
		codec:        securecookie.New(hashKey, blockKey),
		sessionStore: store,
	}
}

// IsConfigured reports whether the identity provider is configured.
func (h *Handler) IsConfigured() bool {
	return h.ClientID != "" && h.AuthorizeURL != "" && h.TokenURL != ""
}

// oauth2Config returns the oauth2 configuration for the provider.
func (h *Handler) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.ClientID,
		ClientSecret: h.ClientSecret,
		RedirectURL:  h.RedirectURL,
		Scopes:       h.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  h.AuthorizeURL,
			TokenURL: h.TokenURL,
		},
	}
}

// generateState creates a cryptographically secure random state string.
func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
