package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/dalemusser/circles/internal/app/system/auth"
	"github.com/google/uuid"
)

// TestClaims returns identity claims for a fresh test user.
func TestClaims(name string) auth.Claims {
	return auth.Claims{
		Subject: "user_" + uuid.NewString(),
		Name:    name,
		Email:   strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@test.com",
	}
}

// WithClaims injects identity claims into the request context,
// bypassing the bearer-token middleware.
func WithClaims(r *http.Request, c auth.Claims) *http.Request {
	return auth.WithTestClaims(r, c)
}

// NewAuthenticatedRequest creates an HTTP request with claims in
// context. body may be empty.
func NewAuthenticatedRequest(method, target string, c auth.Claims, body string) *http.Request {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return WithClaims(req, c)
}

// ResponseRecorder wraps httptest.ResponseRecorder with helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t interface{ Errorf(string, ...any) }, expected int) {
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d", r.Code, expected)
	}
}

// AssertContains checks if the response body contains the expected string.
func (r *ResponseRecorder) AssertContains(t interface{ Errorf(string, ...any) }, expected string) {
	if !strings.Contains(r.Body.String(), expected) {
		t.Errorf("response body does not contain %q", expected)
	}
}
