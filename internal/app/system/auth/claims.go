// internal/app/system/auth/claims.go
package auth

import "errors"

// ErrNoSubject is returned when the identity provider's claims bag has
// no subject id.
var ErrNoSubject = errors.New("identity claims missing subject id")

// Claims is the typed view of the identity provider's claims bag. The
// provider's payload is dynamically shaped; this is the only place that
// reads it, and construction fails fast when the subject id is absent
// instead of letting call sites fall through optional lookups.
type Claims struct {
	Subject string // required, the provider's stable user id
	Name    string // optional display name
	Email   string // optional email
}

// NewClaims builds Claims from a raw provider claims bag.
func NewClaims(raw map[string]any) (Claims, error) {
	sub, _ := raw["sub"].(string)
	if sub == "" {
		return Claims{}, ErrNoSubject
	}
	name, _ := raw["name"].(string)
	email, _ := raw["email"].(string)
	return Claims{Subject: sub, Name: name, Email: email}, nil
}

// DisplayName returns the best human-readable name for the user:
// the claimed name, falling back to email, falling back to subject.
func (c Claims) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	if c.Email != "" {
		return c.Email
	}
	return c.Subject
}
