// internal/app/store/tags/tagstore.go
package tagstore

import (
	"context"
	"sync"

	"github.com/dalemusser/circles/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CategorySupport switches prompt generation to gentle, support-safe
// phrasing.
const CategorySupport = "support"

// Store reads tag reference data through a process-lifetime cache.
// Tags are near-static: the cache is loaded lazily on first use and
// never invalidated; a deploy is the staleness bound. A failed load is
// retried on the next call.
type Store struct {
	c *mongo.Collection

	mu     sync.RWMutex
	loaded bool
	cache  map[string]models.TagConfig
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("tag_configs")}
}

// snapshot returns the cached tag map, loading it first if needed.
func (s *Store) snapshot(ctx context.Context) (map[string]models.TagConfig, error) {
	s.mu.RLock()
	if s.loaded {
		cache := s.cache
		s.mu.RUnlock()
		return cache, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return s.cache, nil
	}

	cur, err := s.c.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	cache := make(map[string]models.TagConfig)
	for cur.Next(ctx) {
		var tag models.TagConfig
		if err := cur.Decode(&tag); err != nil {
			return nil, err
		}
		cache[tag.Key] = tag
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}

	s.cache = cache
	s.loaded = true
	return cache, nil
}

// Get resolves a tag key. The second return is false for unknown keys.
func (s *Store) Get(ctx context.Context, key string) (models.TagConfig, bool, error) {
	cache, err := s.snapshot(ctx)
	if err != nil {
		return models.TagConfig{}, false, err
	}
	tag, ok := cache[key]
	return tag, ok, nil
}

// ListActive returns all active tag configs.
func (s *Store) ListActive(ctx context.Context) ([]models.TagConfig, error) {
	cache, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	tags := make([]models.TagConfig, 0, len(cache))
	for _, tag := range cache {
		if tag.Active {
			tags = append(tags, tag)
		}
	}
	return tags, nil
}

// FilterKnown keeps only keys that resolve to an active tag, silently
// dropping unknown ones.
func (s *Store) FilterKnown(ctx context.Context, keys []string) ([]string, error) {
	cache, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	known := make([]string, 0, len(keys))
	for _, key := range keys {
		if tag, ok := cache[key]; ok && tag.Active {
			known = append(known, key)
		}
	}
	return known, nil
}

// defaultTags is the reference data seeded on startup.
var defaultTags = []models.TagConfig{
	{Key: "grandparents", DisplayLabel: "Grandparents", Category: "family", Description: "Multi-generation family circle", ToneGuidance: "warm, nostalgic", Active: true},
	{Key: "new_parents", DisplayLabel: "New Parents", Category: "family", Description: "Families with young children", ToneGuidance: "encouraging, practical", Active: true},
	{Key: "long_distance", DisplayLabel: "Long Distance", Category: "family", Description: "Family spread across locations", ToneGuidance: "connective, curious", Active: true},
	{Key: "grief", DisplayLabel: "Grief & Loss", Category: CategorySupport, Description: "Circles coping with loss", ToneGuidance: "gentle, unhurried", Active: true},
	{Key: "caregiving", DisplayLabel: "Caregiving", Category: CategorySupport, Description: "Members caring for a relative", ToneGuidance: "supportive, low-pressure", Active: true},
	{Key: "reunion", DisplayLabel: "Reunion Planning", Category: "activity", Description: "Planning gatherings", ToneGuidance: "upbeat, concrete", Active: true},
}

// EnsureSeed upserts the default tag configs. Existing documents are
// replaced so reference-data fixes ship with a deploy.
func (s *Store) EnsureSeed(ctx context.Context) error {
	for _, tag := range defaultTags {
		opts := options.Replace().SetUpsert(true)
		if _, err := s.c.ReplaceOne(ctx, bson.M{"_id": tag.Key}, tag, opts); err != nil {
			return err
		}
	}
	return nil
}
