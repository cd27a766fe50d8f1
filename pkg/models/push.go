package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SubscriptionKeys struct {
	P256dh string `bson:"p256dh" json:"p256dh"`
	Auth   string `bson:"auth" json:"auth"`
}

// PushSubscription is one device registration for web push delivery. The
// endpoint URL is the identity: registrations are upserted and pruned by
// endpoint.
type PushSubscription struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Endpoint  string             `bson:"endpoint" json:"endpoint"`
	Keys      SubscriptionKeys   `bson:"keys" json:"keys"`
	UserID    string             `bson:"userId,omitempty" json:"userId,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
