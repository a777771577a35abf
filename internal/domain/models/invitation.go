// internal/domain/models/invitation.go
package models

import "time"

// Invitation lifecycle states. PENDING is the only non-terminal state;
// expiry and use limits are evaluated lazily at acceptance time, so no
// EXPIRED or REVOKED state exists.
const (
	InvitationPending  = "PENDING"
	InvitationAccepted = "ACCEPTED"
)

// Invitation is a time- and use-limited token that grants membership in
// a circle upon acceptance. Mutated exactly once, on acceptance.
type Invitation struct {
	ID           string     `bson:"_id" json:"invitationId"`
	CircleID     string     `bson:"circle_id" json:"circleId"`
	InvitedEmail string     `bson:"invited_email" json:"invitedEmail"`
	Role         string     `bson:"role" json:"role"`
	CreatedBy    string     `bson:"created_by" json:"createdBy"`
	CreatedAt    time.Time  `bson:"created_at" json:"createdAt"`
	ExpiresAt    time.Time  `bson:"expires_at" json:"expiresAt"`
	Status       string     `bson:"status" json:"status"`
	MaxUses      int        `bson:"max_uses" json:"maxUses"`
	UsesCount    int        `bson:"uses_count" json:"usesCount"`
	AcceptedBy   string     `bson:"accepted_by,omitempty" json:"acceptedBy,omitempty"`
	AcceptedAt   *time.Time `bson:"accepted_at,omitempty" json:"acceptedAt,omitempty"`
}
