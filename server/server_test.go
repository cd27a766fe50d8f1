package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/example/tableside/pkg/config"
	"github.com/example/tableside/pkg/events"
	"github.com/example/tableside/pkg/models"
	"github.com/example/tableside/pkg/push"
	"github.com/example/tableside/pkg/repository"
	"github.com/example/tableside/pkg/service"
	"github.com/example/tableside/pkg/stream"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type memMenu struct {
	mu    sync.Mutex
	items map[string]*models.MenuItem
}

func (m *memMenu) FindByID(_ context.Context, id string) (*models.MenuItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return nil, repository.ErrMenuItemNotFound
	}
	clone := *item
	return &clone, nil
}

func (m *memMenu) ReserveStock(_ context.Context, id string, qty int) (*models.MenuItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok || !item.TracksStock() || item.RemainingStock() < qty {
		return nil, repository.ErrInsufficientStock
	}
	item.QuantitySold += qty
	clone := *item
	return &clone, nil
}

func (m *memMenu) ReleaseStock(_ context.Context, id string, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if item, ok := m.items[id]; ok {
		item.QuantitySold -= qty
	}
	return nil
}

type memOrders struct {
	mu     sync.Mutex
	orders map[string]*models.Order
}

func (o *memOrders) Insert(_ context.Context, order *models.Order) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.orders[order.OrderID] = order
	return nil
}

func (o *memOrders) UpdateStatus(_ context.Context, id string, status models.OrderStatus, note string) (*models.Order, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	order, ok := o.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	order.OrderStatus = status
	order.StatusHistory = append(order.StatusHistory, models.StatusHistoryItem{
		Status: status, Timestamp: time.Now().UTC(), Note: note,
	})
	clone := *order
	return &clone, nil
}

func (o *memOrders) UpdatePaymentStatus(_ context.Context, id string, status models.PaymentStatus) (*models.Order, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	order, ok := o.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	order.PaymentStatus = status
	clone := *order
	return &clone, nil
}

type noopNotifier struct{}

func (noopNotifier) Send(context.Context, push.Input) (*push.Report, error) {
	return &push.Report{}, nil
}

type fakeDashboard struct{}

func (fakeDashboard) DashboardStats(context.Context) (*repository.DashboardStats, error) {
	return &repository.DashboardStats{
		Pending:      3,
		TodayRevenue: 1250,
		DailyRevenue: []repository.DailyRevenue{{Date: "2026-09-01", Amount: 1250}},
		PaymentBreakdown: repository.PaymentBreakdown{
			PayPay: 2, Messenger: 1,
		},
		TopSellingItems: []repository.TopSellingItem{
			{Name: "Espresso", Quantity: 4, Revenue: 1600},
		},
	}, nil
}

func testServer(t *testing.T, menu *memMenu) *Server {
	t.Helper()
	logger := zap.NewNop()
	bus := events.NewBus(logger)
	orders := &memOrders{orders: make(map[string]*models.Order)}
	intake := service.NewIntake(menu, orders, bus, noopNotifier{}, nil, logger)

	cfg := &config.Config{}
	cfg.Admin.Token = "test-token"
	cfg.Push.VAPIDPublicKey = "test-public-key"

	srv := NewServer(cfg, logger, Deps{
		Intake:    intake,
		Dashboard: &fakeDashboard{},
		Stream:    stream.NewGateway(bus, logger, time.Minute),
	})
	srv.SetupRoutes()
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path string, body interface{}, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func TestCreateOrderEndpoint(t *testing.T) {
	id := primitive.NewObjectID()
	menu := &memMenu{items: map[string]*models.MenuItem{
		id.Hex(): {ID: id, Name: "Espresso", Price: 400, Available: true},
	}}
	srv := testServer(t, menu)

	w := doJSON(t, srv, http.MethodPost, "/api/orders", gin.H{
		"customer": gin.H{"name": "Aye"},
		"items": []gin.H{
			{"menuItemId": id.Hex(), "name": "Espresso", "price": 400, "quantity": 2},
		},
		"paymentMethod": "paypay",
	}, nil)

	require.Equal(t, http.StatusCreated, w.Code)
	var order models.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
	assert.Regexp(t, `^ORD-\d{8}-\d{3}$`, order.OrderID)
	assert.Equal(t, 800.0, order.Total)
	assert.Equal(t, models.StatusPending, order.OrderStatus)
}

func TestCreateOrderInsufficientStockConflict(t *testing.T) {
	stock := 1
	id := primitive.NewObjectID()
	menu := &memMenu{items: map[string]*models.MenuItem{
		id.Hex(): {ID: id, Name: "Cheesecake", Price: 600, Available: true, StockQuantity: &stock},
	}}
	srv := testServer(t, menu)

	w := doJSON(t, srv, http.MethodPost, "/api/orders", gin.H{
		"customer": gin.H{"name": "Aye"},
		"items": []gin.H{
			{"menuItemId": id.Hex(), "name": "Cheesecake", "price": 600, "quantity": 3},
		},
	}, nil)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "insufficient stock")
}

func TestCreateOrderEmptyItemsRejected(t *testing.T) {
	srv := testServer(t, &memMenu{items: map[string]*models.MenuItem{}})

	w := doJSON(t, srv, http.MethodPost, "/api/orders", gin.H{
		"customer": gin.H{"name": "Aye"},
		"items":    []gin.H{},
	}, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateOrderStatusEndpoint(t *testing.T) {
	id := primitive.NewObjectID()
	menu := &memMenu{items: map[string]*models.MenuItem{
		id.Hex(): {ID: id, Name: "Espresso", Price: 400, Available: true},
	}}
	srv := testServer(t, menu)

	w := doJSON(t, srv, http.MethodPost, "/api/orders", gin.H{
		"customer": gin.H{"name": "Aye"},
		"items": []gin.H{
			{"menuItemId": id.Hex(), "name": "Espresso", "price": 400, "quantity": 1},
		},
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var order models.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))

	w = doJSON(t, srv, http.MethodPatch, "/api/orders/"+order.OrderID+"/status",
		gin.H{"status": "ready", "note": "counter 2"}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var updated models.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, models.StatusReady, updated.OrderStatus)
	require.Len(t, updated.StatusHistory, 2)

	w = doJSON(t, srv, http.MethodPatch, "/api/orders/"+order.OrderID+"/status",
		gin.H{"status": "teleported"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, srv, http.MethodPatch, "/api/orders/ORD-00000000-000/status",
		gin.H{"status": "ready"}, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminTokenGuard(t *testing.T) {
	srv := testServer(t, &memMenu{items: map[string]*models.MenuItem{}})

	w := doJSON(t, srv, http.MethodPost, "/api/menu", gin.H{"name": "Latte", "price": 500}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, srv, http.MethodPost, "/api/menu", gin.H{"name": "Latte", "price": 500},
		map[string]string{"X-Admin-Token": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDashboardStatsEndpoint(t *testing.T) {
	srv := testServer(t, &memMenu{items: map[string]*models.MenuItem{}})

	w := doJSON(t, srv, http.MethodGet, "/api/stats", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats repository.DashboardStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, int64(3), stats.Pending)
	assert.Equal(t, 1250.0, stats.TodayRevenue)
	assert.Equal(t, 2, stats.PaymentBreakdown.PayPay)
	require.Len(t, stats.TopSellingItems, 1)
	assert.Equal(t, "Espresso", stats.TopSellingItems[0].Name)
}

func TestVapidKeyEndpoint(t *testing.T) {
	srv := testServer(t, &memMenu{items: map[string]*models.MenuItem{}})

	w := doJSON(t, srv, http.MethodGet, "/api/notifications/vapid-key", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "test-public-key")
}

func TestHealthEndpoint(t *testing.T) {
	srv := testServer(t, &memMenu{items: map[string]*models.MenuItem{}})

	w := doJSON(t, srv, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

