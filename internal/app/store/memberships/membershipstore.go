// internal/app/store/memberships/membershipstore.go
package membershipstore

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

var (
	errBadRole = errors.New(`role must be "owner" or "member"`)

	ErrDuplicateMembership = errors.New("user is already a member of this circle")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("memberships")}
}

// Add creates a membership row after validating the role. The unique
// index on (user_id, circle_id) is the duplicate guard.
func (s *Store) Add(ctx context.Context, userID, circleID, role, displayName string) error {
	if role != models.RoleOwner && role != models.RoleMember {
		return errBadRole
	}

	doc := bson.M{
		"user_id":      userID,
		"circle_id":    circleID,
		"role":         role,
		"display_name": displayName,
		"joined_at":    time.Now().UTC(),
	}
	_, err := s.c.InsertOne(ctx, doc)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateMembership
		}
		return err
	}
	return nil
}

// Upsert grants membership idempotently: an existing (user, circle) row
// is left untouched except for display_name, a missing one is created.
// Used by invitation acceptance, where re-accepting must not duplicate.
func (s *Store) Upsert(ctx context.Context, userID, circleID, role, displayName string) error {
	if role != models.RoleOwner && role != models.RoleMember {
		return errBadRole
	}

	filter := bson.M{"user_id": userID, "circle_id": circleID}
	update := bson.M{
		"$set": bson.M{"display_name": displayName},
		"$setOnInsert": bson.M{
			"user_id":   userID,
			"circle_id": circleID,
			"role":      role,
			"joined_at": time.Now().UTC(),
		},
	}
	_, err := s.c.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

// Exists reports whether (userID, circleID) has a membership row.
func (s *Store) Exists(ctx context.Context, userID, circleID string) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"user_id": userID, "circle_id": circleID}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListByUser returns all memberships for a user, one partition query.
func (s *Store) ListByUser(ctx context.Context, userID string) ([]models.Membership, error) {
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var memberships []models.Membership
	if err := cur.All(ctx, &memberships); err != nil {
		return nil, err
	}
	return memberships, nil
}

// ListByCircle returns all membership rows for a circle.
func (s *Store) ListByCircle(ctx context.Context, circleID string) ([]models.Membership, error) {
	cur, err := s.c.Find(ctx, bson.M{"circle_id": circleID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var memberships []models.Membership
	if err := cur.All(ctx, &memberships); err != nil {
		return nil, err
	}
	return memberships, nil
}

// Count returns the total number of membership rows.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}

// CountUniqueUsers returns the number of distinct users holding at
// least one membership.
func (s *Store) CountUniqueUsers(ctx context.Context) (int64, error) {
	values, err := s.c.Distinct(ctx, "user_id", bson.M{})
	if err != nil {
		return 0, err
	}
	return int64(len(values)), nil
}

// CountPerCircle returns member counts keyed by circle id, aggregated in
// a single query.
func (s *Store) CountPerCircle(ctx context.Context) (map[string]int, error) {
	result := make(map[string]int)

	cur, err := s.c.Aggregate(ctx, []bson.M{
		{"$group": bson.M{"_id": "$circle_id", "n": bson.M{"$sum": 1}}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var row struct {
			ID string `bson:"_id"`
			N  int    `bson:"n"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		result[row.ID] = row.N
	}
	return result, cur.Err()
}

// EnsureIndexes creates indexes for the memberships collection.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		// One row per (user, circle)
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "circle_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_membership_user_circle"),
		},
		// Fan-out lookups by circle
		{
			Keys:    bson.D{{Key: "circle_id", Value: 1}},
			Options: options.Index().SetName("idx_membership_circle"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}
