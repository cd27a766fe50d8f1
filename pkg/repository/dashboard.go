package repository

import (
	"context"
	"sort"
	"time"

	"github.com/example/tableside/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
)

type DailyRevenue struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

type PaymentBreakdown struct {
	PayPay    int `json:"paypay"`
	Messenger int `json:"messenger"`
}

type TopSellingItem struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Revenue  float64 `json:"revenue"`
}

// DashboardStats feeds the admin dashboard's polling view: today's
// workload by status, today's verified revenue and payment split, a
// 7-day revenue trend and today's best sellers. Only verified payments
// count toward revenue; the best-seller ranking counts every order.
type DashboardStats struct {
	Pending          int64            `json:"pending"`
	Preparing        int64            `json:"preparing"`
	Ready            int64            `json:"ready"`
	CompletedToday   int64            `json:"completedToday"`
	TodayRevenue     float64          `json:"todayRevenue"`
	DailyRevenue     []DailyRevenue   `json:"dailyRevenue"`
	PaymentBreakdown PaymentBreakdown `json:"paymentBreakdown"`
	TopSellingItems  []TopSellingItem `json:"topSellingItems"`
}

func (r *AdminRepo) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	col := r.db.Database().Collection(ordersCollection)
	today := time.Now().UTC().Truncate(24 * time.Hour)

	stats := &DashboardStats{}

	var err error
	if stats.Pending, err = col.CountDocuments(ctx, bson.M{"orderStatus": models.StatusPending}); err != nil {
		return nil, err
	}
	if stats.Preparing, err = col.CountDocuments(ctx, bson.M{"orderStatus": models.StatusPreparing}); err != nil {
		return nil, err
	}
	if stats.Ready, err = col.CountDocuments(ctx, bson.M{"orderStatus": models.StatusReady}); err != nil {
		return nil, err
	}
	if stats.CompletedToday, err = col.CountDocuments(ctx, bson.M{
		"orderStatus": models.StatusCompleted,
		"completedAt": bson.M{"$gte": today},
	}); err != nil {
		return nil, err
	}

	weekStart := today.AddDate(0, 0, -7)
	verified, err := r.findOrders(ctx, bson.M{
		"createdAt":     bson.M{"$gte": weekStart},
		"paymentStatus": models.PaymentVerified,
	})
	if err != nil {
		return nil, err
	}

	for _, o := range verified {
		if o.CreatedAt.Before(today) {
			continue
		}
		stats.TodayRevenue += o.Total
		switch o.PaymentMethod {
		case models.PaymentPayPay:
			stats.PaymentBreakdown.PayPay++
		case models.PaymentMessenger:
			stats.PaymentBreakdown.Messenger++
		}
	}

	stats.DailyRevenue = make([]DailyRevenue, 0, 7)
	for i := 6; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		next := day.AddDate(0, 0, 1)
		var amount float64
		for _, o := range verified {
			if !o.CreatedAt.Before(day) && o.CreatedAt.Before(next) {
				amount += o.Total
			}
		}
		stats.DailyRevenue = append(stats.DailyRevenue, DailyRevenue{
			Date:   day.Format("2006-01-02"),
			Amount: amount,
		})
	}

	todayOrders, err := r.findOrders(ctx, bson.M{"createdAt": bson.M{"$gte": today}})
	if err != nil {
		return nil, err
	}
	stats.TopSellingItems = topSellers(todayOrders, 5)

	return stats, nil
}

func (r *AdminRepo) findOrders(ctx context.Context, filter bson.M) ([]models.Order, error) {
	cursor, err := r.db.Database().Collection(ordersCollection).Find(ctx, filter)
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

// topSellers aggregates line items by name and returns the limit highest
// quantities first.
func topSellers(orders []models.Order, limit int) []TopSellingItem {
	byName := map[string]*TopSellingItem{}
	for _, o := range orders {
		for _, item := range o.Items {
			entry, ok := byName[item.Name]
			if !ok {
				entry = &TopSellingItem{Name: item.Name}
				byName[item.Name] = entry
			}
			entry.Quantity += item.Quantity
			entry.Revenue += item.Price * float64(item.Quantity)
		}
	}

	out := make([]TopSellingItem, 0, len(byName))
	for _, entry := range byName {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Quantity > out[j].Quantity })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
