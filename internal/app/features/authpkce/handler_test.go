package authpkce_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/dalemusser/circles/internal/app/features/authpkce"
	"github.com/dalemusser/circles/internal/app/system/auth"
	"go.uber.org/zap"
)

var (
	testHashKey    = []byte("0123456789abcdef0123456789abcdef")
	testBlockKey   = []byte("fedcba9876543210fedcba9876543210")
	testSessionKey = []byte("abcdef0123456789abcdef0123456789")
)

func newTestHandler(tokenURL string) *authpkce.Handler {
	return authpkce.NewHandler(
		"test-client", "test-secret",
		"https://idp.example.com/authorize", tokenURL,
		"https://circles.example.com",
		nil,
		testHashKey, testBlockKey, testSessionKey,
		false,
		zap.NewNop())
}

func TestServeLogin(t *testing.T) {
	handler := newTestHandler("https://idp.example.com/token")

	req := httptest.NewRequest("GET", "/auth/login", nil)
	rec := httptest.NewRecorder()
	handler.ServeLogin(rec, req)

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status: got %d, want 307", rec.Code)
	}

	loc, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("bad redirect location: %v", err)
	}
	if loc.Host != "idp.example.com" || loc.Path != "/authorize" {
		t.Errorf("redirect should target the authorize URL, got %s", loc)
	}

	q := loc.Query()
	if q.Get("client_id") != "test-client" {
		t.Errorf("client_id: got %q", q.Get("client_id"))
	}
	if q.Get("state") == "" {
		t.Error("missing state parameter")
	}
	if q.Get("code_challenge") == "" {
		t.Error("missing PKCE code_challenge")
	}
	if q.Get("code_challenge_method") != "S256" {
		t.Errorf("code_challenge_method: got %q, want S256", q.Get("code_challenge_method"))
	}
	if q.Get("redirect_uri") != "https://circles.example.com/auth/callback" {
		t.Errorf("redirect_uri: got %q", q.Get("redirect_uri"))
	}

	var stateCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "circles_oauth" {
			stateCookie = c
		}
	}
	if stateCookie == nil {
		t.Fatal("state cookie not set")
	}
	if !stateCookie.HttpOnly {
		t.Error("state cookie must be HttpOnly")
	}
}

func TestServeLogin_NotConfigured(t *testing.T) {
	handler := authpkce.NewHandler(
		"", "", "", "", "https://circles.example.com",
		nil,
		testHashKey, testBlockKey, testSessionKey,
		false,
		zap.NewNop())

	req := httptest.NewRequest("GET", "/auth/login", nil)
	rec := httptest.NewRecorder()
	handler.ServeLogin(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status: got %d, want 503", rec.Code)
	}
}

func TestServeCallback_MissingStateCookie(t *testing.T) {
	handler := newTestHandler("https://idp.example.com/token")

	req := httptest.NewRequest("GET", "/auth/callback?code=abc&state=xyz", nil)
	rec := httptest.NewRecorder()
	handler.ServeCallback(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/?error=invalid_state" {
		t.Errorf("redirect: got %q, want invalid_state error", loc)
	}
}

func TestServeCallback_StateMismatch(t *testing.T) {
	handler := newTestHandler("https://idp.example.com/token")

	// Start a real login to get a valid state cookie, then answer the
	// callback with a different state value.
	loginReq := httptest.NewRequest("GET", "/auth/login", nil)
	loginRec := httptest.NewRecorder()
	handler.ServeLogin(loginRec, loginReq)

	req := httptest.NewRequest("GET", "/auth/callback?code=abc&state=forged", nil)
	for _, c := range loginRec.Result().Cookies() {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	handler.ServeCallback(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/?error=invalid_state" {
		t.Errorf("redirect: got %q, want invalid_state error", loc)
	}
}

func TestServeCallback_ProviderError(t *testing.T) {
	handler := newTestHandler("https://idp.example.com/token")

	req := httptest.NewRequest("GET", "/auth/callback?error=access_denied", nil)
	rec := httptest.NewRecorder()
	handler.ServeCallback(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/?error=login_denied" {
		t.Errorf("redirect: got %q, want login_denied error", loc)
	}
}

// TestLoginCallbackTokenRoundTrip exercises the whole PKCE exchange
// against a stub token endpoint: login issues the state cookie, the
// callback trades the code for tokens and stores the refresh token,
// and /auth/token runs the refresh grant off that cookie.
func TestLoginCallbackTokenRoundTrip(t *testing.T) {
	tokenCalls := 0
	idp := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenCalls++
		if err := r.ParseForm(); err != nil {
			t.Fatalf("token request not a form: %v", err)
		}
		switch r.PostForm.Get("grant_type") {
		case "authorization_code":
			if r.PostForm.Get("code_verifier") == "" {
				t.Error("token exchange missing PKCE code_verifier")
			}
			if r.PostForm.Get("code") != "test-code" {
				t.Errorf("code: got %q", r.PostForm.Get("code"))
			}
		case "refresh_token":
			if r.PostForm.Get("refresh_token") != "refresh-1" {
				t.Errorf("refresh_token: got %q", r.PostForm.Get("refresh_token"))
			}
		default:
			t.Errorf("unexpected grant_type %q", r.PostForm.Get("grant_type"))
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "access-1",
			"token_type":    "Bearer",
			"refresh_token": "refresh-1",
			"expires_in":    3600,
		})
	}))
	defer idp.Close()

	handler := newTestHandler(idp.URL)

	loginReq := httptest.NewRequest("GET", "/auth/login?return=/circles", nil)
	loginRec := httptest.NewRecorder()
	handler.ServeLogin(loginRec, loginReq)

	loc, err := url.Parse(loginRec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("bad authorize redirect: %v", err)
	}
	state := loc.Query().Get("state")

	cbReq := httptest.NewRequest("GET", "/auth/callback?code=test-code&state="+url.QueryEscape(state), nil)
	for _, c := range loginRec.Result().Cookies() {
		cbReq.AddCookie(c)
	}
	cbRec := httptest.NewRecorder()
	handler.ServeCallback(cbRec, cbReq)

	if cbRec.Code != http.StatusSeeOther {
		t.Fatalf("callback status: got %d, want 303", cbRec.Code)
	}
	if loc := cbRec.Header().Get("Location"); loc != "/circles" {
		t.Errorf("callback should honor the return URL, got %q", loc)
	}

	var refreshCookie *http.Cookie
	for _, c := range cbRec.Result().Cookies() {
		if c.Name == "circles_refresh" && c.Value != "" {
			refreshCookie = c
		}
	}
	if refreshCookie == nil {
		t.Fatal("refresh cookie not set after callback")
	}

	tokenReq := httptest.NewRequest("POST", "/auth/token", nil)
	tokenReq.AddCookie(refreshCookie)
	tokenRec := httptest.NewRecorder()
	handler.ServeToken(tokenRec, tokenReq)

	if tokenRec.Code != http.StatusOK {
		t.Fatalf("token status: got %d, want 200; body: %s", tokenRec.Code, tokenRec.Body.String())
	}

	var resp struct {
		AccessToken string `json:"accessToken"`
		TokenType   string `json:"tokenType"`
	}
	if err := json.Unmarshal(tokenRec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if resp.AccessToken != "access-1" {
		t.Errorf("accessToken: got %q", resp.AccessToken)
	}
	if tokenCalls != 2 {
		t.Errorf("expected 2 token endpoint calls, got %d", tokenCalls)
	}
}

func TestServeToken_NoSession(t *testing.T) {
	handler := newTestHandler("https://idp.example.com/token")

	req := httptest.NewRequest("POST", "/auth/token", nil)
	rec := httptest.NewRecorder()
	handler.ServeToken(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rec.Code)
	}
}

func TestServeMe(t *testing.T) {
	handler := newTestHandler("https://idp.example.com/token")

	req := httptest.NewRequest("GET", "/auth/me", nil)
	req = auth.WithTestClaims(req, auth.Claims{
		Subject: "user_1",
		Name:    "Alex Martin",
		Email:   "alex@example.com",
	})
	rec := httptest.NewRecorder()
	handler.ServeMe(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}

	var resp struct {
		UserID string `json:"userId"`
		Name   string `json:"name"`
		Email  string `json:"email"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if resp.UserID != "user_1" || resp.Name != "Alex Martin" || resp.Email != "alex@example.com" {
		t.Errorf("unexpected identity: %+v", resp)
	}
}

func TestServeMe_Unauthenticated(t *testing.T) {
	handler := newTestHandler("https://idp.example.com/token")

	req := httptest.NewRequest("GET", "/auth/me", nil)
	rec := httptest.NewRecorder()
	handler.ServeMe(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rec.Code)
	}
}

func TestServeLogout(t *testing.T) {
	handler := newTestHandler("https://idp.example.com/token")

	req := httptest.NewRequest("POST", "/auth/logout", nil)
	rec := httptest.NewRecorder()
	handler.ServeLogout(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "loggedOut") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}
