// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	circlestore "github.com/dalemusser/circles/internal/app/store/circles"
	invitationstore "github.com/dalemusser/circles/internal/app/store/invitations"
	membershipstore "github.com/dalemusser/circles/internal/app/store/memberships"
	messagestore "github.com/dalemusser/circles/internal/app/store/messages"
	subscriptionstore "github.com/dalemusser/circles/internal/app/store/subscriptions"
	tagstore "github.com/dalemusser/circles/internal/app/store/tags"
	"github.com/dalemusser/circles/internal/app/system/authz"
	"github.com/dalemusser/circles/internal/app/system/events"
	"github.com/dalemusser/circles/internal/app/system/push"
	"github.com/dalemusser/circles/internal/app/system/tasks"
	"github.com/dalemusser/circles/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// runtime holds the long-lived objects shared between Startup,
// BuildHandler, and Shutdown. Populated once during Startup.
type runtimeDeps struct {
	circles       *circlestore.Store
	memberships   *membershipstore.Store
	messages      *messagestore.Store
	invitations   *invitationstore.Store
	tags          *tagstore.Store
	subscriptions *subscriptionstore.Store
	authz         *authz.Loader

	queue    *events.Queue
	notifier *workers.Notifier
	runner   *tasks.Runner
}

var rt runtimeDeps

// Startup runs one-time application initialization after DB connections
// and schema setup are complete, but before the HTTP handler is built.
// It creates the stores, warms the tag cache, and starts the background
// notification worker and maintenance tasks.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.MongoDatabase

	rt.circles = circlestore.New(db)
	rt.memberships = membershipstore.New(db)
	rt.messages = messagestore.New(db)
	rt.invitations = invitationstore.New(db)
	rt.tags = tagstore.New(db)
	rt.subscriptions = subscriptionstore.New(db)
	rt.authz = authz.NewLoader(rt.memberships)

	// Warm the process-lifetime tag cache; a failure here retries on
	// first use rather than blocking startup.
	if _, err := rt.tags.ListActive(ctx); err != nil {
		logger.Warn("tag cache warm-up failed", zap.Error(err))
	}

	if deps.Redis != nil {
		rt.queue = events.New(deps.Redis, logger)

		if appCfg.VAPIDPublicKey != "" {
			pusher := push.NewWebPusher(appCfg.VAPIDPublicKey, appCfg.VAPIDPrivateKey, appCfg.VAPIDSubscriber)
			rt.notifier = workers.NewNotifier(rt.queue, rt.memberships, rt.subscriptions, pusher, appCfg.BaseURL, logger)
			rt.notifier.Start()
		}
	}

	rt.runner = tasks.NewRunner(logger,
		tasks.InvitationCleanupJob(rt.invitations, logger, appCfg.InvitationSweepGrace),
	)
	rt.runner.Start()

	return nil
}
