package models

import (
	"fmt"
	"math/rand"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Currency string

type PaymentMethod string

const (
	PaymentPayPay    PaymentMethod = "paypay"
	PaymentMessenger PaymentMethod = "messenger"
)

// PaymentStatus tracks verification of the payment proof, independent of
// the fulfillment stage.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentVerified PaymentStatus = "verified"
	PaymentRejected PaymentStatus = "rejected"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

// ValidOrderStatus reports whether s is a known fulfillment stage.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusPreparing, StatusReady, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func ValidPaymentStatus(s PaymentStatus) bool {
	switch s {
	case PaymentPending, PaymentVerified, PaymentRejected:
		return true
	}
	return false
}

type Customer struct {
	Name                string `bson:"name" json:"name"`
	Phone               string `bson:"phone" json:"phone"`
	SpecialInstructions string `bson:"specialInstructions,omitempty" json:"specialInstructions,omitempty"`
}

type OrderItem struct {
	MenuItemID string  `bson:"menuItemId" json:"menuItemId"`
	Name       string  `bson:"name" json:"name"`
	Price      float64 `bson:"price" json:"price"`
	Quantity   int     `bson:"quantity" json:"quantity"`
}

type StatusHistoryItem struct {
	Status    OrderStatus `bson:"status" json:"status"`
	Timestamp time.Time   `bson:"timestamp" json:"timestamp"`
	Note      string      `bson:"note,omitempty" json:"note,omitempty"`
}

// Order is the durable record of one customer purchase. OrderID is the
// human-readable identifier handed to the customer; the Mongo ObjectID
// stays internal. StatusHistory is append-only.
type Order struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	OrderID       string              `bson:"orderId" json:"orderId"`
	Customer      Customer            `bson:"customer" json:"customer"`
	Items         []OrderItem         `bson:"items" json:"items"`
	Total         float64             `bson:"total" json:"total"`
	Currency      Currency            `bson:"currency" json:"currency"`
	PaymentMethod PaymentMethod       `bson:"paymentMethod" json:"paymentMethod"`
	PaymentProof  string              `bson:"paymentProof,omitempty" json:"paymentProof,omitempty"`
	PaymentStatus PaymentStatus       `bson:"paymentStatus" json:"paymentStatus"`
	OrderStatus   OrderStatus         `bson:"orderStatus" json:"orderStatus"`
	StatusHistory []StatusHistoryItem `bson:"statusHistory" json:"statusHistory"`
	CreatedAt     time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time           `bson:"updatedAt" json:"updatedAt"`
	CompletedAt   *time.Time          `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
}

// GenerateOrderID returns a date-based identifier with a random
// three-digit suffix, e.g. ORD-20260901-042.
func GenerateOrderID() string {
	date := time.Now().UTC().Format("20060102")
	return fmt.Sprintf("ORD-%s-%03d", date, rand.Intn(1000))
}
