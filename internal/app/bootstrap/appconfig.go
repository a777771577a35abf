// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like HTTP/HTTPS
// ports, TLS, logging level, and CORS. AppConfig is everything specific
// to Circles.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Redis (push-event queue). Blank address disables the notification
	// pipeline entirely; message writes still succeed.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Cookie keys. SessionKey signs the refresh-token cookie;
	// CookieHashKey/CookieBlockKey sign and encrypt the transient OAuth
	// state cookie.
	SessionKey     string
	CookieHashKey  string
	CookieBlockKey string

	// Identity provider (authorization code + PKCE)
	OAuthClientID     string
	OAuthClientSecret string // blank for public clients
	OAuthAuthorizeURL string
	OAuthTokenURL     string
	OAuthUserInfoURL  string // bearer-token verification endpoint
	OAuthScopes       []string
	ClaimsCacheTTL    time.Duration // how long verified claims are cached per token

	// Email/SMTP configuration for invite delivery
	MailSMTPHost string // e.g., localhost for Mailpit, email-smtp.us-east-1.amazonaws.com for SES
	MailSMTPPort int
	MailSMTPUser string
	MailSMTPPass string
	MailFrom     string
	MailFromName string

	// Web Push (VAPID) configuration
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	VAPIDSubscriber string // mailto: contact required by push services

	// LLM prompt generation
	OpenAIAPIKey  string
	OpenAIBaseURL string // blank for the default endpoint
	OpenAIModel   string

	// Base URL for invite links and notification click-throughs
	BaseURL  string // e.g., "https://circles.example.com"
	SiteName string // appears in invite emails

	// Domain tunables
	DefaultListLimit     int
	MaxListLimit         int
	InviteExpireDays     int
	InvitationSweepGrace time.Duration // how long past expiry before the sweep deletes
}
