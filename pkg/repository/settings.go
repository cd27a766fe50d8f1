package repository

import (
	"context"
	"errors"
	"time"

	"github.com/example/tableside/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const settingsCollection = "settings"

// SettingsRepo manages the singleton restaurant settings document.
type SettingsRepo struct {
	col *mongo.Collection
}

func NewSettingsRepo(db *mongo.Database) *SettingsRepo {
	return &SettingsRepo{col: db.Collection(settingsCollection)}
}

func (r *SettingsRepo) Get(ctx context.Context) (*models.RestaurantSettings, error) {
	var s models.RestaurantSettings
	err := r.col.FindOne(ctx, bson.M{"_id": models.SettingsID}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrSettingsNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Replace swaps the whole settings document; partial updates are not
// supported, the admin form always submits the full configuration.
func (r *SettingsRepo) Replace(ctx context.Context, s *models.RestaurantSettings) error {
	s.ID = models.SettingsID
	s.UpdatedAt = time.Now().UTC()

	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": models.SettingsID}, s, opts)
	return err
}

// EnsureDefaults seeds the settings document if it does not exist yet.
func (r *SettingsRepo) EnsureDefaults(ctx context.Context) error {
	_, err := r.Get(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrSettingsNotFound) {
		return err
	}
	return r.Replace(ctx, models.DefaultSettings())
}
