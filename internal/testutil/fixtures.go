package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/circles/internal/app/system/ids"
	"github.com/dalemusser/circles/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateCircle creates a test circle with the given name.
func (f *Fixtures) CreateCircle(ctx context.Context, name, createdBy string, tags ...string) models.Circle {
	f.t.Helper()

	circle := models.Circle{
		ID:        ids.NewCircleID(),
		Name:      name,
		NameCI:    text.Fold(name),
		Tags:      tags,
		CreatedBy: createdBy,
		CreatedAt: time.Now().UTC(),
	}

	if _, err := f.db.Collection("circles").InsertOne(ctx, circle); err != nil {
		f.t.Fatalf("failed to create test circle: %v", err)
	}
	return circle
}

// CreateMembership links a user to a circle with the given role.
func (f *Fixtures) CreateMembership(ctx context.Context, userID, circleID, role string) models.Membership {
	f.t.Helper()

	membership := models.Membership{
		UserID:      userID,
		CircleID:    circleID,
		Role:        role,
		DisplayName: "Test " + userID,
		JoinedAt:    time.Now().UTC(),
	}

	if _, err := f.db.Collection("memberships").InsertOne(ctx, membership); err != nil {
		f.t.Fatalf("failed to create test membership: %v", err)
	}
	return membership
}

// CreateMessage creates a test message in a circle.
func (f *Fixtures) CreateMessage(ctx context.Context, circleID, author, msgType, textBody string) models.Message {
	f.t.Helper()

	msg := models.Message{
		MessageID:   ids.NewMessageID(),
		CircleID:    circleID,
		Author:      author,
		Text:        textBody,
		MessageType: msgType,
		CreatedAt:   time.Now().UTC(),
	}

	if _, err := f.db.Collection("messages").InsertOne(ctx, msg); err != nil {
		f.t.Fatalf("failed to create test message: %v", err)
	}
	return msg
}

// CreateInvitation creates a PENDING test invitation expiring in the
// given duration (negative values create an already-expired one).
func (f *Fixtures) CreateInvitation(ctx context.Context, circleID, email, createdBy string, expiresIn time.Duration) models.Invitation {
	f.t.Helper()

	inv := models.Invitation{
		ID:           ids.NewInvitationID(),
		CircleID:     circleID,
		InvitedEmail: email,
		Role:         models.RoleMember,
		CreatedBy:    createdBy,
		CreatedAt:    time.Now().UTC(),
		ExpiresAt:    time.Now().UTC().Add(expiresIn),
		Status:       models.InvitationPending,
		MaxUses:      1,
	}

	if _, err := f.db.Collection("invitations").InsertOne(ctx, inv); err != nil {
		f.t.Fatalf("failed to create test invitation: %v", err)
	}
	return inv
}

// CreateSubscription registers a push endpoint for a user.
func (f *Fixtures) CreateSubscription(ctx context.Context, userID, endpoint string) models.PushSubscription {
	f.t.Helper()

	sub := models.PushSubscription{
		ID:        ids.NewSubscriptionID(),
		UserID:    userID,
		Endpoint:  endpoint,
		P256dh:    "test-p256dh",
		Auth:      "test-auth",
		CreatedAt: time.Now().UTC(),
	}

	if _, err := f.db.Collection("push_subscriptions").InsertOne(ctx, sub); err != nil {
		f.t.Fatalf("failed to create test subscription: %v", err)
	}
	return sub
}
