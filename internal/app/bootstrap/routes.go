// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	authfeature "github.com/dalemusser/circles/internal/app/features/authpkce"
	circlesfeature "github.com/dalemusser/circles/internal/app/features/circles"
	healthfeature "github.com/dalemusser/circles/internal/app/features/health"
	notificationsfeature "github.com/dalemusser/circles/internal/app/features/notifications"
	promptsfeature "github.com/dalemusser/circles/internal/app/features/prompts"
	statsfeature "github.com/dalemusser/circles/internal/app/features/stats"
	"github.com/dalemusser/circles/internal/app/system/auth"
	"github.com/dalemusser/circles/internal/app/system/llm"
	"github.com/dalemusser/circles/internal/app/system/mailer"
	"github.com/dalemusser/circles/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this
// WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and the Startup hook have completed, so the stores and workers in rt
// are ready. The handler surface:
//
//	/health                      liveness (Mongo + Redis)
//	/auth/*                      PKCE login flow, token refresh, logout
//	/api/circles/*               messages, circles, members, tags, invitations
//	/api/prompts                 AI conversation prompts
//	/api/stats                   aggregate counts
//	/api/notifications/*         push subscription management
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	secure := coreCfg.Env == "prod"

	// Bearer-token verification against the IdP's userinfo endpoint,
	// with a short-lived per-token claims cache.
	verifier := auth.NewUserInfoVerifier(appCfg.OAuthUserInfoURL, appCfg.ClaimsCacheTTL, logger)
	authMW := auth.NewMiddleware(verifier, logger)

	smtp := mailer.NewSMTPSender(
		appCfg.MailSMTPHost, appCfg.MailSMTPPort,
		appCfg.MailSMTPUser, appCfg.MailSMTPPass,
		appCfg.MailFrom, appCfg.MailFromName, logger)

	var completer llm.Completer
	if appCfg.OpenAIAPIKey != "" {
		completer = llm.NewOpenAIClient(appCfg.OpenAIAPIKey, appCfg.OpenAIBaseURL, appCfg.OpenAIModel)
	}

	r := chi.NewRouter()

	// Global claims middleware: resolves the bearer token into typed
	// claims when present. Enforcement happens per feature router.
	r.Use(authMW.LoadClaims)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, rt.queue, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Authentication (PKCE authorization-code flow)
	authHandler := authfeature.NewHandler(
		appCfg.OAuthClientID, appCfg.OAuthClientSecret,
		appCfg.OAuthAuthorizeURL, appCfg.OAuthTokenURL,
		appCfg.BaseURL, appCfg.OAuthScopes,
		[]byte(appCfg.CookieHashKey), []byte(appCfg.CookieBlockKey), []byte(appCfg.SessionKey),
		secure, logger)
	r.Mount("/auth", authfeature.Routes(authHandler))

	// Circle timeline, membership, and invitations
	circlesHandler := circlesfeature.NewHandler(
		rt.circles, rt.memberships, rt.messages, rt.invitations, rt.tags,
		rt.authz, rt.queue, smtp, ratelimit.NewInviteLimiter(), deps.MongoClient,
		circlesfeature.Config{
			DefaultListLimit: appCfg.DefaultListLimit,
			MaxListLimit:     appCfg.MaxListLimit,
			InviteExpireDays: appCfg.InviteExpireDays,
			BaseURL:          appCfg.BaseURL,
			SiteName:         appCfg.SiteName,
		}, logger)
	r.Mount("/api/circles", circlesfeature.Routes(circlesHandler))

	// AI prompt generation
	promptsHandler := promptsfeature.NewHandler(rt.circles, rt.tags, rt.authz, completer, logger)
	r.Mount("/api/prompts", promptsfeature.Routes(promptsHandler))

	// Aggregate stats
	statsHandler := statsfeature.NewHandler(rt.circles, rt.memberships, logger)
	r.Mount("/api/stats", statsfeature.Routes(statsHandler))

	// Push subscription management
	notifHandler := notificationsfeature.NewHandler(rt.subscriptions, appCfg.VAPIDPublicKey, logger)
	r.Mount("/api/notifications", notificationsfeature.Routes(notifHandler))

	return r, nil
}
