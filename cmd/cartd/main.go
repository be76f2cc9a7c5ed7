package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/nikolayk812/cartkeeper/internal/config"
	"github.com/nikolayk812/cartkeeper/internal/handler"
	"github.com/nikolayk812/cartkeeper/internal/inventory"
	"github.com/nikolayk812/cartkeeper/internal/logger"
	"github.com/nikolayk812/cartkeeper/internal/notify"
	"github.com/nikolayk812/cartkeeper/internal/port"
	"github.com/nikolayk812/cartkeeper/internal/repository"
	"github.com/nikolayk812/cartkeeper/internal/service"
	"github.com/nikolayk812/cartkeeper/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Service: "cartd",
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
	})
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("cartd stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storage, closeStorage, err := openStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("openStorage: %w", err)
	}
	defer closeStorage()
	log.Info("cart storage ready", "driver", cfg.StorageDriver, "key", cfg.StorageKey)

	inventoryClient, err := inventory.NewClient(cfg.InventoryURL, cfg.InventoryTimeout)
	if err != nil {
		return fmt.Errorf("inventory.NewClient: %w", err)
	}

	notifier, closeNotifier := openNotifier(cfg, log)
	defer closeNotifier()

	cartStore := store.New(ctx, storage, log.With("component", "store"))
	cartService := service.New(cartStore, inventoryClient, notifier, log.With("component", "service"),
		service.WithMaxAttempts(cfg.MaxAttempts))

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler.NewHTTPHandler(cartService, cfg.Currency).Register(router)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("httpServer.ListenAndServe: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("httpServer.Shutdown: %w", err)
	}
	log.Info("HTTP server stopped")

	return nil
}

func openStorage(ctx context.Context, cfg config.Config) (port.CartStorage, func(), error) {
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("pgxpool.New: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("pool.Ping: %w", err)
		}

		storage, err := repository.NewPostgresCartStorage(pool, cfg.StorageKey)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("repository.NewPostgresCartStorage: %w", err)
		}
		return storage, pool.Close, nil

	case config.StorageRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("client.Ping: %w", err)
		}

		storage, err := repository.NewRedisCartStorage(client, cfg.StorageKey)
		if err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("repository.NewRedisCartStorage: %w", err)
		}
		return storage, func() { _ = client.Close() }, nil

	default:
		return repository.NewMemoryCartStorage(), func() {}, nil
	}
}

func openNotifier(cfg config.Config, log *slog.Logger) (port.Notifier, func()) {
	if cfg.NotifierDriver == config.NotifierKafka {
		n := notify.NewKafkaNotifier(cfg.KafkaBrokers, cfg.KafkaTopic, log.With("component", "notifier"))
		return n, func() {
			if err := n.Close(); err != nil {
				log.Warn("kafka notifier close failed", "error", err)
			}
		}
	}

	return notify.NewLogNotifier(log.With("component", "notifier")), func() {}
}
