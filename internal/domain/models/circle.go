// internal/domain/models/circle.go
package models

import "time"

// Circle is a named group of users sharing a message timeline.
//
// NOTE:
//   - Member lists are not embedded on Circle. All membership is stored
//     in the memberships collection.
//   - The ID is an opaque generated string ("circle_<uuid>") and is never
//     user-supplied or user-guessable.
type Circle struct {
	ID          string    `bson:"_id" json:"circleId"`
	Name        string    `bson:"name" json:"name"`
	NameCI      string    `bson:"name_ci" json:"-"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	Tags        []string  `bson:"tags,omitempty" json:"tags,omitempty"`
	CreatedBy   string    `bson:"created_by" json:"createdBy"`
	CreatedAt   time.Time `bson:"created_at" json:"createdAt"`
}
