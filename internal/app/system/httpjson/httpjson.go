// internal/app/system/httpjson/httpjson.go
package httpjson

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// Error codes carried in JSON error bodies. The HTTP status is the
// machine contract; the code is a stable string for clients that want
// to branch without parsing messages.
const (
	CodeUnauthenticated = "unauthenticated"
	CodeForbidden       = "forbidden"
	CodeValidation      = "validation"
	CodeNotFound        = "not_found"
	CodeGone            = "gone"
	CodeConflict        = "conflict"
	CodeRateLimited     = "rate_limited"
	CodeUpstream        = "upstream_error"
	CodeInternal        = "internal"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Respond writes v as JSON with the given status.
func Respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes a JSON error body.
func Error(w http.ResponseWriter, status int, code, message string) {
	Respond(w, status, errorBody{Error: code, Message: message})
}

// Shorthands for the error taxonomy.

func Unauthenticated(w http.ResponseWriter) {
	Error(w, http.StatusUnauthorized, CodeUnauthenticated, "authentication required")
}

func Forbidden(w http.ResponseWriter, message string) {
	Error(w, http.StatusForbidden, CodeForbidden, message)
}

func Validation(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, CodeValidation, message)
}

func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, CodeNotFound, message)
}

func Gone(w http.ResponseWriter, message string) {
	Error(w, http.StatusGone, CodeGone, message)
}

func Conflict(w http.ResponseWriter, message string) {
	Error(w, http.StatusConflict, CodeConflict, message)
}

func RateLimited(w http.ResponseWriter, message string) {
	Error(w, http.StatusTooManyRequests, CodeRateLimited, message)
}

func Upstream(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadGateway, CodeUpstream, message)
}

func Internal(w http.ResponseWriter) {
	Error(w, http.StatusInternalServerError, CodeInternal, "internal error")
}

// Decode reads a JSON request body into v, capping the body at maxBytes.
// Unknown fields are tolerated; malformed JSON is a validation error.
func Decode(r *http.Request, v any, maxBytes int64) error {
	if r.Body == nil {
		return errors.New("empty request body")
	}
	defer io.Copy(io.Discard, r.Body) //nolint:errcheck

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBytes))
	if err := dec.Decode(v); err != nil {
		return err
	}
	return nil
}
