package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/example/tableside/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
)

// AdminRepo backs the database control panel: statistics, backup/restore,
// bulk clears and sample-data seeding.
type AdminRepo struct {
	db *Mongo
}

func NewAdminRepo(db *Mongo) *AdminRepo {
	return &AdminRepo{db: db}
}

// clearableCollections is the whitelist for destructive bulk operations.
var clearableCollections = map[string]bool{
	ordersCollection:        true,
	menuCollection:          true,
	categoriesCollection:    true,
	subscriptionsCollection: true,
}

const subscriptionsCollection = "push_subscriptions"

type OrdersStats struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	Completed int64 `json:"completed"`
}

type MenuStats struct {
	Total       int64 `json:"total"`
	Available   int64 `json:"available"`
	Unavailable int64 `json:"unavailable"`
}

type RevenueStats struct {
	Total           float64 `json:"total"`
	CompletedOrders int64   `json:"completedOrders"`
}

type Stats struct {
	Orders            OrdersStats  `json:"orders"`
	MenuItems         MenuStats    `json:"menuItems"`
	Categories        int64        `json:"categories"`
	PushSubscriptions int64        `json:"pushSubscriptions"`
	Revenue           RevenueStats `json:"revenue"`
	DataSizeBytes     int64        `json:"dataSizeBytes"`
}

func (r *AdminRepo) Stats(ctx context.Context) (*Stats, error) {
	db := r.db.Database()
	stats := &Stats{}

	var err error
	if stats.Orders.Total, err = db.Collection(ordersCollection).CountDocuments(ctx, bson.M{}); err != nil {
		return nil, err
	}
	if stats.Orders.Pending, err = db.Collection(ordersCollection).CountDocuments(ctx, bson.M{"orderStatus": models.StatusPending}); err != nil {
		return nil, err
	}
	if stats.Orders.Completed, err = db.Collection(ordersCollection).CountDocuments(ctx, bson.M{"orderStatus": models.StatusCompleted}); err != nil {
		return nil, err
	}
	if stats.MenuItems.Total, err = db.Collection(menuCollection).CountDocuments(ctx, bson.M{}); err != nil {
		return nil, err
	}
	if stats.MenuItems.Available, err = db.Collection(menuCollection).CountDocuments(ctx, bson.M{"available": true}); err != nil {
		return nil, err
	}
	stats.MenuItems.Unavailable = stats.MenuItems.Total - stats.MenuItems.Available
	if stats.Categories, err = db.Collection(categoriesCollection).CountDocuments(ctx, bson.M{}); err != nil {
		return nil, err
	}
	if stats.PushSubscriptions, err = db.Collection(subscriptionsCollection).CountDocuments(ctx, bson.M{}); err != nil {
		return nil, err
	}

	cursor, err := db.Collection(ordersCollection).Aggregate(ctx, bson.A{
		bson.M{"$match": bson.M{"orderStatus": models.StatusCompleted}},
		bson.M{"$group": bson.M{"_id": nil, "total": bson.M{"$sum": "$total"}}},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var rev []struct {
		Total float64 `bson:"total"`
	}
	if err = cursor.All(ctx, &rev); err != nil {
		return nil, err
	}
	if len(rev) > 0 {
		stats.Revenue.Total = rev[0].Total
	}
	stats.Revenue.CompletedOrders = stats.Orders.Completed

	var dbStats struct {
		DataSize int64 `bson:"dataSize"`
	}
	if err = db.RunCommand(ctx, bson.M{"dbStats": 1}).Decode(&dbStats); err == nil {
		stats.DataSizeBytes = dbStats.DataSize
	}

	return stats, nil
}

type Backup struct {
	Version     string              `json:"version"`
	Timestamp   time.Time           `json:"timestamp"`
	Collections map[string][]bson.M `json:"collections"`
}

var backupCollections = []string{
	ordersCollection, menuCollection, categoriesCollection, settingsCollection,
}

func (r *AdminRepo) Backup(ctx context.Context) (*Backup, error) {
	backup := &Backup{
		Version:     "1.0",
		Timestamp:   time.Now().UTC(),
		Collections: make(map[string][]bson.M, len(backupCollections)),
	}

	db := r.db.Database()
	for _, name := range backupCollections {
		cursor, err := db.Collection(name).Find(ctx, bson.M{})
		if err != nil {
			return nil, fmt.Errorf("dump %s: %w", name, err)
		}
		docs := []bson.M{}
		if err = cursor.All(ctx, &docs); err != nil {
			return nil, fmt.Errorf("dump %s: %w", name, err)
		}
		backup.Collections[name] = docs
	}

	return backup, nil
}

// Restore replaces the contents of every collection present in the
// backup. Unknown collection names are rejected rather than silently
// ignored.
func (r *AdminRepo) Restore(ctx context.Context, backup *Backup) error {
	allowed := make(map[string]bool, len(backupCollections))
	for _, name := range backupCollections {
		allowed[name] = true
	}
	for name := range backup.Collections {
		if !allowed[name] {
			return fmt.Errorf("collection %q is not restorable", name)
		}
	}

	db := r.db.Database()
	for name, docs := range backup.Collections {
		col := db.Collection(name)
		if _, err := col.DeleteMany(ctx, bson.M{}); err != nil {
			return fmt.Errorf("clear %s: %w", name, err)
		}
		if len(docs) == 0 {
			continue
		}
		payload := make([]interface{}, len(docs))
		for i, d := range docs {
			payload[i] = d
		}
		if _, err := col.InsertMany(ctx, payload); err != nil {
			return fmt.Errorf("restore %s: %w", name, err)
		}
	}
	return nil
}

func (r *AdminRepo) ClearCollection(ctx context.Context, name string) (int64, error) {
	if !clearableCollections[name] {
		return 0, fmt.Errorf("%q: %w", name, ErrCollectionNotClearable)
	}
	res, err := r.db.Database().Collection(name).DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Seed loads sample data for a fresh installation. Existing menu items and
// categories are left alone.
func (r *AdminRepo) Seed(ctx context.Context, menu *MenuRepo, categories *CategoryRepo, settings *SettingsRepo) error {
	if err := settings.EnsureDefaults(ctx); err != nil {
		return err
	}

	existing, err := categories.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	for _, c := range []models.Category{
		{Name: "Coffee", Description: "Espresso drinks and filter coffee", Visible: true},
		{Name: "Tea", Description: "Loose leaf and specialty teas", Visible: true},
		{Name: "Pastries", Description: "Baked fresh daily", Visible: true},
	} {
		cat := c
		if err := categories.Insert(ctx, &cat); err != nil {
			return err
		}
	}

	limited := 20
	for _, m := range []models.MenuItem{
		{Name: "Espresso", Description: "Double shot", Price: 400, Currency: "JPY", Category: "Coffee", Available: true},
		{Name: "Cafe Latte", Description: "Espresso with steamed milk", Price: 550, Currency: "JPY", Category: "Coffee", Available: true},
		{Name: "Sencha", Description: "Japanese green tea", Price: 450, Currency: "JPY", Category: "Tea", Available: true},
		{Name: "Croissant", Description: "Butter croissant", Price: 380, Currency: "JPY", Category: "Pastries", Available: true, StockQuantity: &limited, LowStockThreshold: 5},
	} {
		item := m
		if err := menu.Insert(ctx, &item); err != nil {
			return err
		}
	}

	return nil
}
