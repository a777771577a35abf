// internal/domain/models/membership.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Membership roles.
const (
	RoleOwner  = "owner"
	RoleMember = "member"
)

// Membership is the authoritative join between users and circles.
// Exactly one document per (user_id, circle_id); role is a scalar
// ("owner"|"member"). User ids are the identity provider's subject ids.
type Membership struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	UserID      string             `bson:"user_id" json:"userId"`
	CircleID    string             `bson:"circle_id" json:"circleId"`
	Role        string             `bson:"role" json:"role"`
	DisplayName string             `bson:"display_name,omitempty" json:"displayName,omitempty"`
	JoinedAt    time.Time          `bson:"joined_at" json:"joinedAt"`
}
