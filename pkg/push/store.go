package push

import (
	"context"
	"time"

	"github.com/example/tableside/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const subscriptionsCollection = "push_subscriptions"

// SubscriptionStore persists device registrations. Endpoint identity is
// the key: Save upserts so a device re-registering never produces a
// duplicate fan-out target.
type SubscriptionStore struct {
	col *mongo.Collection
}

func NewSubscriptionStore(db *mongo.Database) *SubscriptionStore {
	return &SubscriptionStore{col: db.Collection(subscriptionsCollection)}
}

func (s *SubscriptionStore) Save(ctx context.Context, sub *models.PushSubscription) error {
	now := time.Now().UTC()
	filter := bson.M{"endpoint": sub.Endpoint}
	update := bson.M{
		"$set": bson.M{
			"keys":      sub.Keys,
			"userId":    sub.UserID,
			"updatedAt": now,
		},
		"$setOnInsert": bson.M{
			"endpoint":  sub.Endpoint,
			"createdAt": now,
		},
	}
	_, err := s.col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (s *SubscriptionStore) DeleteByEndpoint(ctx context.Context, endpoint string) (int64, error) {
	res, err := s.col.DeleteMany(ctx, bson.M{"endpoint": endpoint})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// List returns all registrations, or only those for userID when set.
func (s *SubscriptionStore) List(ctx context.Context, userID string) ([]models.PushSubscription, error) {
	filter := bson.M{}
	if userID != "" {
		filter["userId"] = userID
	}

	cursor, err := s.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var subs []models.PushSubscription
	if err = cursor.All(ctx, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

func (s *SubscriptionStore) Count(ctx context.Context) (int64, error) {
	return s.col.CountDocuments(ctx, bson.M{})
}
