package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MenuItem is a purchasable product. A nil StockQuantity means the item is
// not stock-tracked and can be ordered without limit. QuantitySold and the
// automatic Available flip are owned by order intake, not by the edit form.
type MenuItem struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name              string             `bson:"name" json:"name"`
	Description       string             `bson:"description" json:"description"`
	Price             float64            `bson:"price" json:"price"`
	Currency          Currency           `bson:"currency" json:"currency"`
	Category          string             `bson:"category" json:"category"`
	ImageURL          string             `bson:"imageUrl" json:"imageUrl"`
	Available         bool               `bson:"available" json:"available"`
	StockQuantity     *int               `bson:"stockQuantity" json:"stockQuantity"`
	QuantitySold      int                `bson:"quantitySold" json:"quantitySold"`
	LowStockThreshold int                `bson:"lowStockThreshold" json:"lowStockThreshold"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (m *MenuItem) TracksStock() bool {
	return m.StockQuantity != nil
}

// RemainingStock returns the sellable quantity left. Only meaningful when
// TracksStock is true.
func (m *MenuItem) RemainingStock() int {
	if m.StockQuantity == nil {
		return 0
	}
	return *m.StockQuantity - m.QuantitySold
}

func (m *MenuItem) LowStock() bool {
	return m.TracksStock() && m.RemainingStock() <= m.LowStockThreshold
}

// Category groups menu items by name. Deletion is blocked while any menu
// item still references the name.
type Category struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	ImageURL    string             `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	Order       int                `bson:"order" json:"order"`
	Visible     bool               `bson:"visible" json:"visible"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
