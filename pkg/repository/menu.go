package repository

import (
	"context"
	"errors"
	"time"

	"github.com/example/tableside/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const menuCollection = "menuItems"

type MenuRepo struct {
	col *mongo.Collection
}

func NewMenuRepo(db *mongo.Database) *MenuRepo {
	return &MenuRepo{col: db.Collection(menuCollection)}
}

func (r *MenuRepo) Insert(ctx context.Context, item *models.MenuItem) error {
	now := time.Now().UTC()
	item.QuantitySold = 0
	if item.LowStockThreshold == 0 {
		item.LowStockThreshold = 5
	}
	item.CreatedAt = now
	item.UpdatedAt = now

	res, err := r.col.InsertOne(ctx, item)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		item.ID = oid
	}
	return nil
}

func (r *MenuRepo) FindByID(ctx context.Context, id string) (*models.MenuItem, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrMenuItemNotFound
	}

	var item models.MenuItem
	err = r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrMenuItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

type MenuFilter struct {
	Category           string
	IncludeUnavailable bool
}

func (r *MenuRepo) List(ctx context.Context, f MenuFilter) ([]models.MenuItem, error) {
	filter := bson.M{}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if !f.IncludeUnavailable {
		filter["available"] = true
	}

	opts := options.Find().SetSort(bson.D{{Key: "category", Value: 1}, {Key: "name", Value: 1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := []models.MenuItem{}
	if err = cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Update applies admin edits. QuantitySold is deliberately absent: only
// order intake mutates it. Available may still be set manually, which is
// how non-tracked items are taken off the menu.
func (r *MenuRepo) Update(ctx context.Context, id string, item *models.MenuItem) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrMenuItemNotFound
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"name":              item.Name,
		"description":       item.Description,
		"price":             item.Price,
		"currency":          item.Currency,
		"category":          item.Category,
		"imageUrl":          item.ImageURL,
		"available":         item.Available,
		"stockQuantity":     item.StockQuantity,
		"lowStockThreshold": item.LowStockThreshold,
		"updatedAt":         time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrMenuItemNotFound
	}
	return nil
}

func (r *MenuRepo) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrMenuItemNotFound
	}

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrMenuItemNotFound
	}
	return nil
}

func (r *MenuRepo) CountByCategory(ctx context.Context, category string) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"category": category})
}

// ReserveStock increments quantitySold by qty as a single conditional
// atomic update: the document only matches while remaining stock covers
// the request, so concurrent orders cannot oversell. Returns the updated
// item, or ErrInsufficientStock when the condition fails. When the
// reservation exhausts the stock, the item is flipped to unavailable.
func (r *MenuRepo) ReserveStock(ctx context.Context, id string, qty int) (*models.MenuItem, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrMenuItemNotFound
	}

	filter := bson.M{
		"_id":           oid,
		"stockQuantity": bson.M{"$ne": nil},
		"$expr": bson.M{"$gte": bson.A{
			bson.M{"$subtract": bson.A{"$stockQuantity", "$quantitySold"}},
			qty,
		}},
	}
	update := bson.M{
		"$inc": bson.M{"quantitySold": qty},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var item models.MenuItem
	err = r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrInsufficientStock
	}
	if err != nil {
		return nil, err
	}

	if item.TracksStock() && item.RemainingStock() <= 0 && item.Available {
		_, err = r.col.UpdateOne(ctx, bson.M{"_id": oid},
			bson.M{"$set": bson.M{"available": false}})
		if err != nil {
			return nil, err
		}
		item.Available = false
	}

	return &item, nil
}

// ReleaseStock undoes a reservation when a later line item in the same
// order fails. Best-effort compensation, not a transaction: a crash
// between reserve and release leaks the reserved quantity.
func (r *MenuRepo) ReleaseStock(ctx context.Context, id string, qty int) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrMenuItemNotFound
	}

	filter := bson.M{"_id": oid, "stockQuantity": bson.M{"$ne": nil}}
	update := bson.M{
		"$inc": bson.M{"quantitySold": -qty},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var item models.MenuItem
	err = r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrMenuItemNotFound
	}
	if err != nil {
		return err
	}

	// Restore availability if the compensated stock makes the item
	// sellable again.
	if item.TracksStock() && item.RemainingStock() > 0 && !item.Available {
		_, err = r.col.UpdateOne(ctx, bson.M{"_id": oid},
			bson.M{"$set": bson.M{"available": true}})
	}
	return err
}
