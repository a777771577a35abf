// internal/app/system/auth/verifier.go
package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Verifier resolves a bearer access token to identity claims. Token
// issuance and validation belong to the external identity provider;
// the application only consumes the resulting claims bag.
type Verifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}

// UserInfoVerifier validates access tokens by presenting them to the
// identity provider's userinfo endpoint. Successful results are cached
// briefly (keyed by token digest, never the token itself) so a busy
// client does not hit the provider on every request.
type UserInfoVerifier struct {
	UserInfoURL string
	Client      *http.Client
	TTL         time.Duration
	Log         *zap.Logger

	mu    sync.Mutex
	cache map[string]cachedClaims
}

type cachedClaims struct {
	claims    Claims
	expiresAt time.Time
}

// maxCachedTokens caps the verifier cache. Past it, expired entries are
// dropped first, then the entries closest to expiry.
const maxCachedTokens = 4096

// NewUserInfoVerifier creates a verifier against the given userinfo URL.
func NewUserInfoVerifier(userInfoURL string, ttl time.Duration, logger *zap.Logger) *UserInfoVerifier {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &UserInfoVerifier{
		UserInfoURL: userInfoURL,
		Client:      &http.Client{Timeout: 10 * time.Second},
		TTL:         ttl,
		Log:         logger,
		cache:       make(map[string]cachedClaims),
	}
}

// Verify resolves the token to claims, from cache when fresh.
func (v *UserInfoVerifier) Verify(ctx context.Context, token string) (Claims, error) {
	key := tokenDigest(token)

	v.mu.Lock()
	if entry, ok := v.cache[key]; ok && time.Now().Before(entry.expiresAt) {
		v.mu.Unlock()
		return entry.claims, nil
	}
	v.mu.Unlock()

	claims, err := v.fetch(ctx, token)
	if err != nil {
		return Claims{}, err
	}

	v.mu.Lock()
	v.cache[key] = cachedClaims{claims: claims, expiresAt: time.Now().Add(v.TTL)}
	if len(v.cache) > maxCachedTokens {
		v.evictLocked()
	}
	v.mu.Unlock()

	return claims, nil
}

// evictLocked shrinks the cache back under maxCachedTokens: expired
// entries go first, then the soonest-to-expire live ones. Caller holds
// mu. A burst of distinct tokens therefore cannot grow the map past
// the cap plus the entry just inserted.
func (v *UserInfoVerifier) evictLocked() {
	now := time.Now()
	for k, entry := range v.cache {
		if now.After(entry.expiresAt) {
			delete(v.cache, k)
		}
	}
	for len(v.cache) > maxCachedTokens {
		var oldestKey string
		var oldestExpiry time.Time
		for k, entry := range v.cache {
			if oldestKey == "" || entry.expiresAt.Before(oldestExpiry) {
				oldestKey = k
				oldestExpiry = entry.expiresAt
			}
		}
		delete(v.cache, oldestKey)
	}
}

func (v *UserInfoVerifier) fetch(ctx context.Context, token string) (Claims, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.UserInfoURL, nil)
	if err != nil {
		return Claims{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := v.Client.Do(req)
	if err != nil {
		return Claims{}, fmt.Errorf("userinfo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return Claims{}, fmt.Errorf("token rejected by identity provider (%d)", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return Claims{}, fmt.Errorf("userinfo unexpected status %d", resp.StatusCode)
	}

	var raw map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return Claims{}, fmt.Errorf("decode userinfo: %w", err)
	}
	return NewClaims(raw)
}

func tokenDigest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// StaticVerifier maps fixed tokens to claims. For tests.
type StaticVerifier map[string]Claims

func (s StaticVerifier) Verify(_ context.Context, token string) (Claims, error) {
	c, ok := s[token]
	if !ok {
		return Claims{}, fmt.Errorf("unknown token")
	}
	return c, nil
}
