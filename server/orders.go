package server

import (
	"errors"
	"net/http"

	"github.com/example/tableside/pkg/models"
	"github.com/example/tableside/pkg/repository"
	"github.com/example/tableside/pkg/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (s *Server) createOrder(c *gin.Context) {
	var req service.PlaceOrderRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := s.deps.Intake.PlaceOrder(c.Request.Context(), req)
	if err != nil {
		s.orderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (s *Server) listOrders(c *gin.Context) {
	f := repository.OrderFilter{
		Status:        models.OrderStatus(c.Query("status")),
		PaymentMethod: models.PaymentMethod(c.Query("paymentMethod")),
	}
	orders, err := s.deps.Orders.List(c.Request.Context(), f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list orders"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders, "total": len(orders)})
}

func (s *Server) getOrder(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()

	if s.deps.Cache != nil {
		if order, err := s.deps.Cache.GetCachedOrder(ctx, id); err == nil {
			c.JSON(http.StatusOK, order)
			return
		}
	}

	order, err := s.deps.Orders.FindByID(ctx, id)
	if errors.Is(err, repository.ErrOrderNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load order"})
		return
	}

	if s.deps.Cache != nil {
		if err := s.deps.Cache.CacheOrder(ctx, order); err != nil {
			s.logger.Warn("order cache write failed", zap.String("order_id", id), zap.Error(err))
		}
	}
	c.JSON(http.StatusOK, order)
}

func (s *Server) updateOrderStatus(c *gin.Context) {
	var req struct {
		Status models.OrderStatus `json:"status"`
		Note   string             `json:"note"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := s.deps.Intake.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status, req.Note)
	if err != nil {
		s.orderError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (s *Server) updateOrderPayment(c *gin.Context) {
	var req struct {
		PaymentStatus models.PaymentStatus `json:"paymentStatus"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := s.deps.Intake.UpdatePayment(c.Request.Context(), c.Param("id"), req.PaymentStatus)
	if err != nil {
		s.orderError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (s *Server) orderError(c *gin.Context, err error) {
	var (
		stock    *service.InsufficientStockError
		notFound *service.ItemNotFoundError
		quantity *service.InvalidQuantityError
	)
	switch {
	case errors.As(err, &stock):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &notFound),
		errors.As(err, &quantity),
		errors.Is(err, service.ErrNoItems),
		errors.Is(err, service.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
	default:
		s.logger.Error("order operation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
