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

const ordersCollection = "orders"

type OrderRepo struct {
	col *mongo.Collection
}

func NewOrderRepo(db *mongo.Database) *OrderRepo {
	return &OrderRepo{col: db.Collection(ordersCollection)}
}

// orderIDFilter matches either the human-readable orderId or, when id is
// a valid hex ObjectID, the storage primary key.
func orderIDFilter(id string) bson.M {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"$or": []bson.M{{"orderId": id}, {"_id": oid}}}
	}
	return bson.M{"orderId": id}
}

func (r *OrderRepo) Insert(ctx context.Context, order *models.Order) error {
	res, err := r.col.InsertOne(ctx, order)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		order.ID = oid
	}
	return nil
}

func (r *OrderRepo) FindByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := r.col.FindOne(ctx, orderIDFilter(id)).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

type OrderFilter struct {
	Status        models.OrderStatus
	PaymentMethod models.PaymentMethod
}

// List returns orders newest first.
func (r *OrderRepo) List(ctx context.Context, f OrderFilter) ([]models.Order, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["orderStatus"] = f.Status
	}
	if f.PaymentMethod != "" {
		filter["paymentMethod"] = f.PaymentMethod
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err = cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateStatus applies a staff-driven transition: the status field is
// last-write-wins, but the history entry is always appended.
func (r *OrderRepo) UpdateStatus(ctx context.Context, id string, status models.OrderStatus, note string) (*models.Order, error) {
	now := time.Now().UTC()

	set := bson.M{
		"orderStatus": status,
		"updatedAt":   now,
	}
	if status == models.StatusCompleted {
		set["completedAt"] = now
	}
	update := bson.M{
		"$set": set,
		"$push": bson.M{
			"statusHistory": models.StatusHistoryItem{
				Status:    status,
				Timestamp: now,
				Note:      note,
			},
		},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var order models.Order
	err := r.col.FindOneAndUpdate(ctx, orderIDFilter(id), update, opts).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepo) UpdatePaymentStatus(ctx context.Context, id string, status models.PaymentStatus) (*models.Order, error) {
	update := bson.M{"$set": bson.M{
		"paymentStatus": status,
		"updatedAt":     time.Now().UTC(),
	}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var order models.Order
	err := r.col.FindOneAndUpdate(ctx, orderIDFilter(id), update, opts).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Clear removes every order. Only the database control panel calls this.
func (r *OrderRepo) Clear(ctx context.Context) (int64, error) {
	res, err := r.col.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
