// internal/app/features/circles/handler.go
package circles

// Terminology: User Identifiers
//   - UserID / userID / user_id: The identity provider's subject id;
//     circles never mints user ids of its own
//   - familyId: the client-facing query/body name for a circle id, kept
//     for compatibility with existing clients

import (
	circlestore "github.com/dalemusser/circles/internal/app/store/circles"
	invitationstore "github.com/dalemusser/circles/internal/app/store/invitations"
	membershipstore "github.com/dalemusser/circles/internal/app/store/memberships"
	messagestore "github.com/dalemusser/circles/internal/app/store/messages"
	tagstore "github.com/dalemusser/circles/internal/app/store/tags"
	"github.com/dalemusser/circles/internal/app/system/authz"
	"github.com/dalemusser/circles/internal/app/system/events"
	"github.com/dalemusser/circles/internal/app/system/mailer"
	"github.com/dalemusser/circles/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Config carries the tunable knobs for circle endpoints.
type Config struct {
	// DefaultListLimit is used when the client omits limit.
	DefaultListLimit int
	// MaxListLimit clamps the client-supplied limit.
	MaxListLimit int
	// InviteExpireDays is the default invitation lifetime.
	InviteExpireDays int
	// BaseURL is the public origin used in invite links.
	BaseURL string
	// SiteName appears in invite emails.
	SiteName string
}

// Handler handles the /api/circles surface: the message timeline,
// circle creation, membership listing, tags, and invitations.
type Handler struct {
	Circles       *circlestore.Store
	Memberships   *membershipstore.Store
	Messages      *messagestore.Store
	Invitations   *invitationstore.Store
	Tags          *tagstore.Store
	Authz         *authz.Loader
	Queue         *events.Queue
	Mailer        mailer.Sender
	InviteLimiter *ratelimit.InviteLimiter
	Mongo         *mongo.Client
	Cfg           Config
	Log           *zap.Logger
}

// NewHandler creates a circles handler. Queue, Mailer, and Mongo may be
// nil; the corresponding side effects (push events, invite email, the
// accept transaction) degrade gracefully when absent.
func NewHandler(
	circleStore *circlestore.Store,
	memberStore *membershipstore.Store,
	messageStore *messagestore.Store,
	inviteStore *invitationstore.Store,
	tagStore *tagstore.Store,
	authzLoader *authz.Loader,
	queue *events.Queue,
	sender mailer.Sender,
	inviteLimiter *ratelimit.InviteLimiter,
	mongoClient *mongo.Client,
	cfg Config,
	logger *zap.Logger,
) *Handler {
	if cfg.DefaultListLimit <= 0 {
		cfg.DefaultListLimit = 50
	}
	if cfg.MaxListLimit <= 0 {
		cfg.MaxListLimit = 200
	}
	if cfg.InviteExpireDays <= 0 {
		cfg.InviteExpireDays = 7
	}
	return &Handler{
		Circles:       circleStore,
		Memberships:   memberStore,
		Messages:      messageStore,
		Invitations:   inviteStore,
		Tags:          tagStore,
		Authz:         authzLoader,
		Queue:         queue,
		Mailer:        sender,
		InviteLimiter: inviteLimiter,
		Mongo:         mongoClient,
		Cfg:           cfg,
		Log:           logger,
	}
}
