package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/example/tableside/pkg/config"
	"github.com/example/tableside/pkg/push"
	"github.com/example/tableside/pkg/repository"
	"github.com/example/tableside/pkg/service"
	"github.com/example/tableside/pkg/stream"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DashboardSource provides the aggregates the admin dashboard polls.
type DashboardSource interface {
	DashboardStats(ctx context.Context) (*repository.DashboardStats, error)
}

// Deps bundles the wired components the HTTP layer exposes. Cache is
// optional and may be nil when Redis is unreachable.
type Deps struct {
	Intake     *service.Intake
	Orders     *repository.OrderRepo
	Menu       *repository.MenuRepo
	Categories *repository.CategoryRepo
	Settings   *repository.SettingsRepo
	Admin      *repository.AdminRepo
	Dashboard  DashboardSource
	Cache      *repository.RedisRepository
	Subs       *push.SubscriptionStore
	Dispatcher *push.Dispatcher
	Stream     *stream.Gateway
}

type Server struct {
	config *config.Config
	logger *zap.Logger
	router *gin.Engine
	http   *http.Server
	deps   Deps
}

func NewServer(cfg *config.Config, logger *zap.Logger, deps Deps) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggerMiddleware(logger))

	return &Server{
		config: cfg,
		logger: logger,
		router: router,
		deps:   deps,
	}
}

func (s *Server) SetupRoutes() {
	// Health check
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := s.router.Group("/api")
	{
		api.GET("/stats", s.dashboardStats)

		orders := api.Group("/orders")
		{
			orders.POST("", s.createOrder)
			orders.GET("", s.listOrders)
			orders.GET("/stream", s.deps.Stream.Handler())
			orders.GET("/:id", s.getOrder)
			orders.PATCH("/:id/status", s.updateOrderStatus)
			orders.PATCH("/:id/payment", s.updateOrderPayment)
		}

		menu := api.Group("/menu")
		{
			menu.GET("", s.listMenu)
			menu.GET("/:id", s.getMenuItem)
			menu.POST("", s.adminAuth(), s.createMenuItem)
			menu.PUT("/:id", s.adminAuth(), s.updateMenuItem)
			menu.DELETE("/:id", s.adminAuth(), s.deleteMenuItem)
		}

		categories := api.Group("/categories")
		{
			categories.GET("", s.listCategories)
			categories.POST("", s.adminAuth(), s.createCategory)
			categories.PUT("/:id", s.adminAuth(), s.updateCategory)
			categories.DELETE("/:id", s.adminAuth(), s.deleteCategory)
		}

		settings := api.Group("/settings")
		{
			settings.GET("", s.getSettings)
			settings.PUT("", s.adminAuth(), s.updateSettings)
		}

		notifications := api.Group("/notifications")
		{
			notifications.GET("/vapid-key", s.vapidKey)
			notifications.POST("/subscribe", s.subscribePush)
			notifications.DELETE("/subscribe", s.unsubscribePush)
			notifications.POST("/send", s.adminAuth(), s.sendPush)
		}

		database := api.Group("/database", s.adminAuth())
		{
			database.GET("/stats", s.databaseStats)
			database.GET("/backup", s.databaseBackup)
			database.POST("/restore", s.databaseRestore)
			database.DELETE("/collections/:name", s.clearCollection)
			database.POST("/seed", s.seedDatabase)
		}
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.http = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}
	s.logger.Info("Server starting", zap.String("address", addr))
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// Router exposes the configured engine for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func loggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
