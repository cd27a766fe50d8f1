package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/example/tableside/pkg/events"
	"github.com/example/tableside/pkg/models"
	"github.com/example/tableside/pkg/push"
	"github.com/example/tableside/pkg/repository"
	"go.uber.org/zap"
)

// totalTolerance absorbs float representation noise when comparing the
// submitted total against the recomputed one.
const totalTolerance = 0.005

// MenuStore is the slice of the menu repository intake needs.
type MenuStore interface {
	FindByID(ctx context.Context, id string) (*models.MenuItem, error)
	ReserveStock(ctx context.Context, id string, qty int) (*models.MenuItem, error)
	ReleaseStock(ctx context.Context, id string, qty int) error
}

type OrderStore interface {
	Insert(ctx context.Context, order *models.Order) error
	UpdateStatus(ctx context.Context, id string, status models.OrderStatus, note string) (*models.Order, error)
	UpdatePaymentStatus(ctx context.Context, id string, status models.PaymentStatus) (*models.Order, error)
}

type Notifier interface {
	Send(ctx context.Context, in push.Input) (*push.Report, error)
}

// OrderCache is optional; a nil cache disables it.
type OrderCache interface {
	CacheOrder(ctx context.Context, order *models.Order) error
	InvalidateOrder(ctx context.Context, orderIDs ...string) error
}

// Intake owns order creation and its stock side effect, plus the
// staff-driven status transitions. Both paths publish to the event bus
// and trigger push dispatch; those side effects are best-effort and never
// fail the business operation.
type Intake struct {
	menu     MenuStore
	orders   OrderStore
	bus      *events.Bus
	notifier Notifier
	cache    OrderCache
	logger   *zap.Logger

	now           func() time.Time
	newOrderID    func() string
	notifyTimeout time.Duration
}

func NewIntake(menu MenuStore, orders OrderStore, bus *events.Bus, notifier Notifier, cache OrderCache, logger *zap.Logger) *Intake {
	return &Intake{
		menu:          menu,
		orders:        orders,
		bus:           bus,
		notifier:      notifier,
		cache:         cache,
		logger:        logger,
		now:           func() time.Time { return time.Now().UTC() },
		newOrderID:    models.GenerateOrderID,
		notifyTimeout: 10 * time.Second,
	}
}

type PlaceOrderRequest struct {
	Customer      models.Customer      `json:"customer"`
	Items         []models.OrderItem   `json:"items"`
	Total         float64              `json:"total"`
	Currency      models.Currency      `json:"currency"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod"`
	PaymentProof  string               `json:"paymentProof"`
}

func (req *PlaceOrderRequest) validate() error {
	if len(req.Items) == 0 {
		return ErrNoItems
	}
	if req.Customer.Name == "" {
		return errors.New("customer name is required")
	}
	for _, item := range req.Items {
		if item.Quantity < 1 {
			return &InvalidQuantityError{Name: item.Name, Quantity: item.Quantity}
		}
	}
	return nil
}

type reservation struct {
	id  string
	qty int
}

// PlaceOrder validates every line item against inventory, reserves stock
// with a conditional atomic decrement per item, and only then creates the
// order record. Any failure rejects the whole order; reservations already
// taken for earlier items are compensated before returning. Notification
// side effects run after the order is durable and cannot roll it back.
func (s *Intake) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*models.Order, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	var reserved []reservation
	rollback := func() {
		for _, r := range reserved {
			if err := s.menu.ReleaseStock(ctx, r.id, r.qty); err != nil {
				s.logger.Error("stock compensation failed",
					zap.String("menu_item_id", r.id),
					zap.Int("quantity", r.qty),
					zap.Error(err))
			}
		}
	}

	items := make([]models.OrderItem, len(req.Items))
	copy(items, req.Items)

	total := 0.0
	for i := range items {
		item := &items[i]
		mi, err := s.menu.FindByID(ctx, item.MenuItemID)
		if errors.Is(err, repository.ErrMenuItemNotFound) {
			rollback()
			return nil, &ItemNotFoundError{ItemID: item.MenuItemID, Name: item.Name}
		}
		if err != nil {
			rollback()
			return nil, fmt.Errorf("look up menu item: %w", err)
		}

		if mi.TracksStock() {
			if _, err := s.menu.ReserveStock(ctx, item.MenuItemID, item.Quantity); err != nil {
				rollback()
				if errors.Is(err, repository.ErrInsufficientStock) {
					return nil, &InsufficientStockError{
						Name:      mi.Name,
						Requested: item.Quantity,
						Remaining: mi.RemainingStock(),
					}
				}
				return nil, fmt.Errorf("reserve stock: %w", err)
			}
			reserved = append(reserved, reservation{id: item.MenuItemID, qty: item.Quantity})
		}

		// The menu record is the pricing authority; whatever the client
		// sent for this line is overwritten before the order is stored.
		item.Price = mi.Price
		total += mi.Price * float64(item.Quantity)
	}

	if req.Total != 0 && math.Abs(req.Total-total) > totalTolerance {
		s.logger.Warn("submitted total disagrees with line items, using computed total",
			zap.Float64("submitted", req.Total),
			zap.Float64("computed", total))
	}

	now := s.now()
	order := &models.Order{
		OrderID:       s.newOrderID(),
		Customer:      req.Customer,
		Items:         items,
		Total:         total,
		Currency:      req.Currency,
		PaymentMethod: req.PaymentMethod,
		PaymentProof:  req.PaymentProof,
		PaymentStatus: models.PaymentPending,
		OrderStatus:   models.StatusPending,
		StatusHistory: []models.StatusHistoryItem{
			{Status: models.StatusPending, Timestamp: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.orders.Insert(ctx, order); err != nil {
		rollback()
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.cacheOrder(ctx, order)
	s.logger.Info("order placed",
		zap.String("order_id", order.OrderID),
		zap.Int("items", len(order.Items)),
		zap.Float64("total", order.Total))

	s.bus.Emit(models.OrderEvent{Type: models.EventNewOrder, Order: order})
	s.notifyAsync(push.NewOrderNotification(order))

	return order, nil
}

// UpdateStatus applies a staff transition and fans out the update.
func (s *Intake) UpdateStatus(ctx context.Context, id string, status models.OrderStatus, note string) (*models.Order, error) {
	if !models.ValidOrderStatus(status) {
		return nil, fmt.Errorf("order status %q: %w", status, ErrInvalidStatus)
	}

	order, err := s.orders.UpdateStatus(ctx, id, status, note)
	if err != nil {
		return nil, err
	}

	s.cacheOrder(ctx, order)
	s.logger.Info("order status updated",
		zap.String("order_id", order.OrderID),
		zap.String("status", string(status)))

	s.bus.Emit(models.OrderEvent{Type: models.EventOrderUpdate, Order: order})
	if in, ok := push.StatusNotification(status, order.OrderID, order.Customer.Name); ok {
		s.notifyAsync(in)
	}

	return order, nil
}

func (s *Intake) UpdatePayment(ctx context.Context, id string, status models.PaymentStatus) (*models.Order, error) {
	if !models.ValidPaymentStatus(status) {
		return nil, fmt.Errorf("payment status %q: %w", status, ErrInvalidStatus)
	}

	order, err := s.orders.UpdatePaymentStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}

	s.cacheOrder(ctx, order)
	s.bus.Emit(models.OrderEvent{Type: models.EventOrderUpdate, Order: order})
	return order, nil
}

func (s *Intake) cacheOrder(ctx context.Context, order *models.Order) {
	if s.cache == nil {
		return
	}
	if err := s.cache.CacheOrder(ctx, order); err != nil {
		s.logger.Warn("order cache write failed",
			zap.String("order_id", order.OrderID), zap.Error(err))
	}
}

// notifyAsync dispatches a push notification in the background. The
// originating request never waits on push delivery.
func (s *Intake) notifyAsync(in push.Input) {
	if s.notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.notifyTimeout)
		defer cancel()

		report, err := s.notifier.Send(ctx, in)
		if err != nil {
			s.logger.Warn("push dispatch failed", zap.Error(err))
			return
		}
		s.logger.Info("push dispatched",
			zap.Int("sent", report.Sent),
			zap.Int("failed", report.Failed),
			zap.Int("total", report.Total))
	}()
}
