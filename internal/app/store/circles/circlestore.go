// internal/app/store/circles/circlestore.go
package circlestore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/circles/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrNotFound  = errors.New("circle not found")
	ErrDuplicate = errors.New("a circle with this id already exists")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("circles")}
}

// Create inserts a new circle. The caller supplies the generated id;
// insertion fails with ErrDuplicate on an id collision, which acts as
// the uniqueness guard for the generated id space.
func (s *Store) Create(ctx context.Context, circle models.Circle) (models.Circle, error) {
	circle.NameCI = text.Fold(circle.Name)
	circle.CreatedAt = time.Now().UTC()
	_, err := s.c.InsertOne(ctx, circle)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.Circle{}, ErrDuplicate
		}
		return models.Circle{}, err
	}
	return circle, nil
}

// GetByID retrieves a circle by its id.
func (s *Store) GetByID(ctx context.Context, id string) (models.Circle, error) {
	var circle models.Circle
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&circle)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Circle{}, ErrNotFound
		}
		return models.Circle{}, err
	}
	return circle, nil
}

// GetMany retrieves circles for a batch of ids in one query. Missing ids
// are silently absent from the result.
func (s *Store) GetMany(ctx context.Context, ids []string) (map[string]models.Circle, error) {
	result := make(map[string]models.Circle, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var circle models.Circle
		if err := cur.Decode(&circle); err != nil {
			return nil, err
		}
		result[circle.ID] = circle
	}
	return result, cur.Err()
}

// UpdateTags replaces the circle's tag set.
func (s *Store) UpdateTags(ctx context.Context, id string, tags []string) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{"tags": tags}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the total number of circles.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}

// EnsureIndexes creates indexes for the circles collection.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}},
			Options: options.Index().SetName("idx_circle_name_ci"),
		},
		{
			Keys:    bson.D{{Key: "created_by", Value: 1}},
			Options: options.Index().SetName("idx_circle_created_by"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}
