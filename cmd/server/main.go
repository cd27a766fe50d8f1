package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/tableside/pkg/config"
	"github.com/example/tableside/pkg/events"
	"github.com/example/tableside/pkg/push"
	"github.com/example/tableside/pkg/repository"
	"github.com/example/tableside/pkg/service"
	"github.com/example/tableside/pkg/stream"
	"github.com/example/tableside/server"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	flag.Parse()

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Setup logger
	logger, err := zap.NewProduction()
	if err != nil {
		panic(fmt.Sprintf("Failed to create logger: %v", err))
	}
	defer logger.Sync()

	logger.Info("Starting tableside server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port))

	// Connect to MongoDB
	db, err := repository.NewMongo(&cfg.MongoDB)
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Close(ctx); err != nil {
			logger.Error("MongoDB disconnect failed", zap.Error(err))
		}
	}()

	ctx := context.Background()
	if err := db.Ping(ctx); err != nil {
		logger.Fatal("MongoDB ping failed", zap.Error(err))
	}
	logger.Info("MongoDB connected successfully")

	// Redis is an optional order cache; the server runs without it.
	var cache *repository.RedisRepository
	redis := repository.NewRedisRepository(&cfg.Redis)
	if err := redis.Ping(ctx); err != nil {
		logger.Warn("Redis connection failed, order caching disabled", zap.Error(err))
		redis.Close()
	} else {
		logger.Info("Redis connected successfully")
		cache = redis
		defer redis.Close()
	}

	// Repositories
	orders := repository.NewOrderRepo(db.Database())
	menu := repository.NewMenuRepo(db.Database())
	categories := repository.NewCategoryRepo(db.Database(), menu)
	settings := repository.NewSettingsRepo(db.Database())
	admin := repository.NewAdminRepo(db)

	if err := settings.EnsureDefaults(ctx); err != nil {
		logger.Warn("Failed to ensure default settings", zap.Error(err))
	}

	// Event fan-out and push delivery
	bus := events.NewBus(logger)
	gateway := stream.NewGateway(bus, logger, cfg.Stream.HeartbeatInterval)
	subs := push.NewSubscriptionStore(db.Database())
	dispatcher := push.NewDispatcher(subs, cfg.Push, logger)

	var orderCache service.OrderCache
	if cache != nil {
		orderCache = cache
	}
	intake := service.NewIntake(menu, orders, bus, dispatcher, orderCache, logger)

	// HTTP server
	srv := server.NewServer(cfg, logger, server.Deps{
		Intake:     intake,
		Orders:     orders,
		Menu:       menu,
		Categories: categories,
		Settings:   settings,
		Admin:      admin,
		Dashboard:  admin,
		Cache:      cache,
		Subs:       subs,
		Dispatcher: dispatcher,
		Stream:     gateway,
	})
	srv.SetupRoutes()

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			serverErr <- err
		}
	}()

	logger.Info("Server started successfully")

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.Info("Received shutdown signal")
	case err := <-serverErr:
		logger.Fatal("Server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}

	logger.Info("Server stopped")
}
