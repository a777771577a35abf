// internal/app/store/invitations/invitationstore.go
package invitationstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/circles/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultMaxUses is the use limit applied when the creator does not
// specify one.
const DefaultMaxUses = 1

var (
	// ErrNotFound is returned when no invitation has the given id.
	ErrNotFound = errors.New("invitation not found")
	// ErrExpired is returned when the invitation's expiry has passed.
	ErrExpired = errors.New("invitation expired")
	// ErrAlreadyUsed is returned when the invitation has been consumed:
	// already accepted, or uses_count has reached max_uses.
	ErrAlreadyUsed = errors.New("invitation already used")
	// ErrInvalidState is returned for any other non-PENDING state.
	ErrInvalidState = errors.New("invitation is not pending")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("invitations")}
}

// Create writes a new PENDING invitation.
func (s *Store) Create(ctx context.Context, inv models.Invitation) (models.Invitation, error) {
	inv.Status = models.InvitationPending
	inv.UsesCount = 0
	if inv.MaxUses <= 0 {
		inv.MaxUses = DefaultMaxUses
	}
	inv.CreatedAt = time.Now().UTC()
	if _, err := s.c.InsertOne(ctx, inv); err != nil {
		return models.Invitation{}, err
	}
	return inv, nil
}

// GetByID retrieves an invitation by its id.
func (s *Store) GetByID(ctx context.Context, id string) (models.Invitation, error) {
	var inv models.Invitation
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&inv)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Invitation{}, ErrNotFound
		}
		return models.Invitation{}, err
	}
	return inv, nil
}

// Classify maps an invitation's current state at the given instant to
// the acceptance error it would produce, or nil if acceptance may
// proceed. Expiry and the use limit are evaluated lazily here; there is
// no background state transition to EXPIRED. A consumed invitation —
// already accepted or with its uses exhausted — reports ErrAlreadyUsed
// ahead of the generic not-pending check.
func Classify(inv models.Invitation, now time.Time) error {
	if !inv.ExpiresAt.After(now) {
		return ErrExpired
	}
	if inv.Status == models.InvitationAccepted || inv.UsesCount >= inv.MaxUses {
		return ErrAlreadyUsed
	}
	if inv.Status != models.InvitationPending {
		return ErrInvalidState
	}
	return nil
}

// MarkAccepted performs the single conditional state transition
// PENDING -> ACCEPTED. The filter re-checks status, expiry, and the use
// limit so a concurrent acceptance loses cleanly; when the update
// matches nothing the current document is reloaded and classified to
// return the precise reason.
func (s *Store) MarkAccepted(ctx context.Context, id, acceptedBy string) (models.Invitation, error) {
	now := time.Now().UTC()
	filter := bson.M{
		"_id":        id,
		"status":     models.InvitationPending,
		"expires_at": bson.M{"$gt": now},
		"$expr":      bson.M{"$lt": bson.A{"$uses_count", "$max_uses"}},
	}
	update := bson.M{
		"$set": bson.M{
			"status":      models.InvitationAccepted,
			"accepted_by": acceptedBy,
			"accepted_at": now,
		},
		"$inc": bson.M{"uses_count": 1},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var inv models.Invitation
	err := s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&inv)
	if err == nil {
		return inv, nil
	}
	if err != mongo.ErrNoDocuments {
		return models.Invitation{}, err
	}

	// The conditional update matched nothing: figure out why.
	current, getErr := s.GetByID(ctx, id)
	if getErr != nil {
		return models.Invitation{}, getErr
	}
	if stateErr := Classify(current, now); stateErr != nil {
		return models.Invitation{}, stateErr
	}
	return models.Invitation{}, ErrInvalidState
}

// ListByCircle returns invitations created for a circle, newest first.
func (s *Store) ListByCircle(ctx context.Context, circleID string) ([]models.Invitation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"circle_id": circleID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var invitations []models.Invitation
	if err := cur.All(ctx, &invitations); err != nil {
		return nil, err
	}
	return invitations, nil
}

// CleanupExpired deletes PENDING invitations whose expiry passed more
// than the grace period ago. A backup for lazy expiry evaluation so the
// collection does not accumulate dead tokens.
func (s *Store) CleanupExpired(ctx context.Context, grace time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-grace)
	res, err := s.c.DeleteMany(ctx, bson.M{
		"status":     models.InvitationPending,
		"expires_at": bson.M{"$lt": cutoff},
	})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// EnsureIndexes creates indexes for the invitations collection.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "circle_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_invitation_circle"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "expires_at", Value: 1}},
			Options: options.Index().SetName("idx_invitation_status_expiry"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}
