// internal/app/store/messages/messagestore.go
package messagestore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/circles/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var ErrDuplicateMessageID = errors.New("a message with this id already exists")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("messages")}
}

// Create appends a message to the circle's timeline. The timeline is
// append-only; there is no update or delete path. The unique index on
// message_id rejects id reuse, including client-supplied ids.
func (s *Store) Create(ctx context.Context, msg models.Message) (models.Message, error) {
	msg.CreatedAt = time.Now().UTC()
	_, err := s.c.InsertOne(ctx, msg)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.Message{}, ErrDuplicateMessageID
		}
		return models.Message{}, err
	}
	return msg, nil
}

// ListByCircle returns the most recent limit messages for a circle in
// descending creation-time order.
func (s *Store) ListByCircle(ctx context.Context, circleID string, limit int64) ([]models.Message, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	cur, err := s.c.Find(ctx, bson.M{"circle_id": circleID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var messages []models.Message
	if err := cur.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// ExistsMessageID reports whether a message with the given id exists in
// the circle. Used only for logging when an answer references an unknown
// question; the link itself is not enforced.
func (s *Store) ExistsMessageID(ctx context.Context, circleID, messageID string) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"circle_id": circleID, "message_id": messageID}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// EnsureIndexes creates indexes for the messages collection.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		// Timeline reads: newest first within a circle
		{
			Keys:    bson.D{{Key: "circle_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_message_circle_created"),
		},
		// Global message id uniqueness
		{
			Keys:    bson.D{{Key: "message_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_message_id"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}
