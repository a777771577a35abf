// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for Circles.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, redis_addr, etc.
//   - Environment variables: CIRCLES_MONGO_URI, CIRCLES_REDIS_ADDR, etc.
//   - Command-line flags: --mongo_uri, --redis_addr, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "circles", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size"},

	// Push-event queue
	{Name: "redis_addr", Default: "localhost:6379", Desc: "Redis address for the push-event queue (blank disables push notifications)"},
	{Name: "redis_password", Default: "", Desc: "Redis password"},
	{Name: "redis_db", Default: 0, Desc: "Redis database number"},

	// Cookie keys
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Refresh cookie signing key (must be strong in production)"},
	{Name: "cookie_hash_key", Default: "dev-only-hash-key-change-me-0123456789AB", Desc: "OAuth state cookie signing key"},
	{Name: "cookie_block_key", Default: "dev-only-block-key-16", Desc: "OAuth state cookie encryption key (16/24/32 bytes)"},

	// Identity provider
	{Name: "oauth_client_id", Default: "", Desc: "Identity provider OAuth2 client ID"},
	{Name: "oauth_client_secret", Default: "", Desc: "Identity provider OAuth2 client secret (blank for public clients)"},
	{Name: "oauth_authorize_url", Default: "", Desc: "Identity provider authorize endpoint"},
	{Name: "oauth_token_url", Default: "", Desc: "Identity provider token endpoint"},
	{Name: "oauth_userinfo_url", Default: "", Desc: "Identity provider userinfo endpoint (bearer token verification)"},
	{Name: "oauth_scopes", Default: "openid,profile,email,offline_access", Desc: "Comma-separated OAuth scopes"},
	{Name: "claims_cache_ttl", Default: "5m", Desc: "How long verified token claims are cached"},

	// Email/SMTP configuration
	{Name: "mail_smtp_host", Default: "localhost", Desc: "SMTP server host"},
	{Name: "mail_smtp_port", Default: 1025, Desc: "SMTP server port"},
	{Name: "mail_smtp_user", Default: "", Desc: "SMTP username"},
	{Name: "mail_smtp_pass", Default: "", Desc: "SMTP password"},
	{Name: "mail_from", Default: "noreply@circles.local", Desc: "From email address"},
	{Name: "mail_from_name", Default: "Circles", Desc: "From display name"},

	// Web Push
	{Name: "vapid_public_key", Default: "", Desc: "VAPID public key for Web Push"},
	{Name: "vapid_private_key", Default: "", Desc: "VAPID private key for Web Push"},
	{Name: "vapid_subscriber", Default: "mailto:admin@circles.local", Desc: "VAPID subscriber contact"},

	// LLM prompt generation
	{Name: "openai_api_key", Default: "", Desc: "API key for the completion endpoint"},
	{Name: "openai_base_url", Default: "", Desc: "Override base URL for an OpenAI-compatible endpoint"},
	{Name: "openai_model", Default: "", Desc: "Completion model (blank for the default)"},

	// Links
	{Name: "base_url", Default: "http://localhost:3000", Desc: "Public base URL for invite links and notifications"},
	{Name: "site_name", Default: "Circles", Desc: "Site name shown in invite emails"},

	// Domain tunables
	{Name: "default_list_limit", Default: 50, Desc: "Default message page size"},
	{Name: "max_list_limit", Default: 200, Desc: "Maximum message page size"},
	{Name: "invite_expire_days", Default: 7, Desc: "Default invitation lifetime in days"},
	{Name: "invitation_sweep_grace", Default: "720h", Desc: "How long past expiry before the cleanup job deletes an invitation"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, CIRCLES_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "CIRCLES", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		RedisAddr:     appValues.String("redis_addr"),
		RedisPassword: appValues.String("redis_password"),
		RedisDB:       appValues.Int("redis_db"),

		SessionKey:     appValues.String("session_key"),
		CookieHashKey:  appValues.String("cookie_hash_key"),
		CookieBlockKey: appValues.String("cookie_block_key"),

		OAuthClientID:     appValues.String("oauth_client_id"),
		OAuthClientSecret: appValues.String("oauth_client_secret"),
		OAuthAuthorizeURL: appValues.String("oauth_authorize_url"),
		OAuthTokenURL:     appValues.String("oauth_token_url"),
		OAuthUserInfoURL:  appValues.String("oauth_userinfo_url"),
		OAuthScopes:       splitScopes(appValues.String("oauth_scopes")),
		ClaimsCacheTTL:    appValues.Duration("claims_cache_ttl", 5*time.Minute),

		MailSMTPHost: appValues.String("mail_smtp_host"),
		MailSMTPPort: appValues.Int("mail_smtp_port"),
		MailSMTPUser: appValues.String("mail_smtp_user"),
		MailSMTPPass: appValues.String("mail_smtp_pass"),
		MailFrom:     appValues.String("mail_from"),
		MailFromName: appValues.String("mail_from_name"),

		VAPIDPublicKey:  appValues.String("vapid_public_key"),
		VAPIDPrivateKey: appValues.String("vapid_private_key"),
		VAPIDSubscriber: appValues.String("vapid_subscriber"),

		OpenAIAPIKey:  appValues.String("openai_api_key"),
		OpenAIBaseURL: appValues.String("openai_base_url"),
		OpenAIModel:   appValues.String("openai_model"),

		BaseURL:  appValues.String("base_url"),
		SiteName: appValues.String("site_name"),

		DefaultListLimit:     appValues.Int("default_list_limit"),
		MaxListLimit:         appValues.Int("max_list_limit"),
		InviteExpireDays:     appValues.Int("invite_expire_days"),
		InvitationSweepGrace: appValues.Duration("invitation_sweep_grace", 30*24*time.Hour),
	}

	return coreCfg, appCfg, nil
}

func splitScopes(raw string) []string {
	var scopes []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			scopes = append(scopes, s)
		}
	}
	return scopes
}

// ValidateConfig performs app-specific config validation.
//
// Circles validates the MongoDB URI format to catch configuration
// errors early, and enforces that push notifications and the identity
// provider are either fully configured or fully off.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if (appCfg.VAPIDPublicKey == "") != (appCfg.VAPIDPrivateKey == "") {
		return fmt.Errorf("vapid_public_key and vapid_private_key must be set together")
	}
	if appCfg.RedisAddr != "" && appCfg.VAPIDPublicKey == "" {
		logger.Warn("redis configured without VAPID keys; push events will queue but never deliver")
	}

	idpFields := []string{appCfg.OAuthClientID, appCfg.OAuthAuthorizeURL, appCfg.OAuthTokenURL, appCfg.OAuthUserInfoURL}
	var set, unset int
	for _, f := range idpFields {
		if f == "" {
			unset++
		} else {
			set++
		}
	}
	if set > 0 && unset > 0 {
		return fmt.Errorf("identity provider configuration is incomplete: oauth_client_id, oauth_authorize_url, oauth_token_url, and oauth_userinfo_url must all be set")
	}
	if set == 0 && coreCfg.Env == "prod" {
		return fmt.Errorf("identity provider must be configured in production")
	}

	if coreCfg.Env == "prod" && strings.HasPrefix(appCfg.SessionKey, "dev-only") {
		return fmt.Errorf("session_key must be changed from its development default in production")
	}

	return nil
}
