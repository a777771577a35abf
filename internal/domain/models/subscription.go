// internal/domain/models/subscription.go
package models

import "time"

// PushSubscription is one registered push endpoint for a user's device.
// Created when a device registers; deleted on explicit unsubscribe or
// when the push service reports the endpoint gone (404/410).
type PushSubscription struct {
	ID        string    `bson:"_id" json:"subscriptionId"`
	UserID    string    `bson:"user_id" json:"userId"`
	Endpoint  string    `bson:"endpoint" json:"endpoint"`
	P256dh    string    `bson:"p256dh" json:"p256dh"`
	Auth      string    `bson:"auth" json:"auth"`
	UserAgent string    `bson:"user_agent,omitempty" json:"userAgent,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}
