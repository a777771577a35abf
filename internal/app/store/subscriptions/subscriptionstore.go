// internal/app/store/subscriptions/subscriptionstore.go
package subscriptionstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/circles/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNotFound = errors.New("push subscription not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("push_subscriptions")}
}

// Upsert registers a device endpoint for a user. Re-registering the same
// endpoint refreshes the keys instead of creating a second row, so a
// service worker re-subscribing after key rotation stays a single device.
func (s *Store) Upsert(ctx context.Context, sub models.PushSubscription) (models.PushSubscription, error) {
	filter := bson.M{"user_id": sub.UserID, "endpoint": sub.Endpoint}
	update := bson.M{
		"$set": bson.M{
			"p256dh":     sub.P256dh,
			"auth":       sub.Auth,
			"user_agent": sub.UserAgent,
		},
		"$setOnInsert": bson.M{
			"_id":        sub.ID,
			"user_id":    sub.UserID,
			"endpoint":   sub.Endpoint,
			"created_at": time.Now().UTC(),
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var saved models.PushSubscription
	if err := s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&saved); err != nil {
		return models.PushSubscription{}, err
	}
	return saved, nil
}

// ListByUser returns all registered endpoints for a user.
func (s *Store) ListByUser(ctx context.Context, userID string) ([]models.PushSubscription, error) {
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var subs []models.PushSubscription
	if err := cur.All(ctx, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

// DeleteByEndpoint removes a user's subscription for one endpoint.
func (s *Store) DeleteByEndpoint(ctx context.Context, userID, endpoint string) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"user_id": userID, "endpoint": endpoint})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByID removes a subscription by its id. Used by the fan-out
// worker when the push service reports the endpoint gone.
func (s *Store) DeleteByID(ctx context.Context, id string) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// EnsureIndexes creates indexes for the push_subscriptions collection.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "endpoint", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_subscription_user_endpoint"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}
