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

const categoriesCollection = "categories"

type CategoryRepo struct {
	col  *mongo.Collection
	menu *MenuRepo
}

func NewCategoryRepo(db *mongo.Database, menu *MenuRepo) *CategoryRepo {
	return &CategoryRepo{col: db.Collection(categoriesCollection), menu: menu}
}

// Insert appends the category at the end of the display order.
func (r *CategoryRepo) Insert(ctx context.Context, cat *models.Category) error {
	last, err := r.lastOrder(ctx)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	cat.Order = last + 1
	cat.CreatedAt = now
	cat.UpdatedAt = now

	res, err := r.col.InsertOne(ctx, cat)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		cat.ID = oid
	}
	return nil
}

func (r *CategoryRepo) lastOrder(ctx context.Context) (int, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "order", Value: -1}})
	var last models.Category
	err := r.col.FindOne(ctx, bson.M{}, opts).Decode(&last)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return last.Order, nil
}

func (r *CategoryRepo) FindByID(ctx context.Context, id string) (*models.Category, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrCategoryNotFound
	}

	var cat models.Category
	err = r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&cat)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

func (r *CategoryRepo) List(ctx context.Context) ([]models.Category, error) {
	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}})
	cursor, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	cats := []models.Category{}
	if err = cursor.All(ctx, &cats); err != nil {
		return nil, err
	}
	return cats, nil
}

func (r *CategoryRepo) Update(ctx context.Context, id string, cat *models.Category) (*models.Category, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrCategoryNotFound
	}

	update := bson.M{"$set": bson.M{
		"name":        cat.Name,
		"description": cat.Description,
		"imageUrl":    cat.ImageURL,
		"order":       cat.Order,
		"visible":     cat.Visible,
		"updatedAt":   time.Now().UTC(),
	}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Category
	err = r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete refuses to remove a category while menu items reference its
// name. Referential integrity is checked here, not by the storage engine.
func (r *CategoryRepo) Delete(ctx context.Context, id string) error {
	cat, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}

	inUse, err := r.menu.CountByCategory(ctx, cat.Name)
	if err != nil {
		return err
	}
	if inUse > 0 {
		return ErrCategoryInUse
	}

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": cat.ID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrCategoryNotFound
	}
	return nil
}
