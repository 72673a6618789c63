// Package app wires configuration, storage, collaborators, services, and the
// HTTP server into a runnable unit.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/bazaarhq/checkout/internal/auth"
	"github.com/bazaarhq/checkout/internal/catalog"
	"github.com/bazaarhq/checkout/internal/config"
	"github.com/bazaarhq/checkout/internal/event"
	"github.com/bazaarhq/checkout/internal/gateway"
	handler "github.com/bazaarhq/checkout/internal/handler/http"
	"github.com/bazaarhq/checkout/internal/repository/postgres"
	"github.com/bazaarhq/checkout/internal/repository/redis"
	"github.com/bazaarhq/checkout/internal/service"
	"github.com/bazaarhq/checkout/migrations"
	"github.com/bazaarhq/checkout/pkg/database"
	"github.com/bazaarhq/checkout/pkg/health"
	"github.com/bazaarhq/checkout/pkg/httpclient"
	"github.com/bazaarhq/checkout/pkg/kafka"
	"github.com/bazaarhq/checkout/pkg/logger"
	"github.com/bazaarhq/checkout/pkg/tracing"

	"github.com/jackc/pgx/v5/pgxpool"
)

// App holds the assembled service and its owned resources.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	pool     *pgxpool.Pool
	redis    *goredis.Client
	producer *kafka.Producer
	server   *http.Server

	shutdownTracing func(context.Context) error
}

// New builds the application. Failures here are fatal; the process has
// nothing useful to do without its dependencies.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logger.New(cfg.ServiceName, cfg.LogLevel)

	shutdownTracing, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:  cfg.ServiceName,
		Environment:  cfg.Environment,
		OTLPEndpoint: cfg.TracingEndpoint,
		SampleRate:   cfg.TracingSampleRate,
		Enabled:      cfg.TracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.PostgresConfig(), log)
	if err != nil {
		return nil, err
	}
	if err := database.RunMigrations(ctx, pool, migrations.FS, log); err != nil {
		pool.Close()
		return nil, err
	}
	database.RegisterPoolMetrics(pool, cfg.ServiceName)

	redisClient, err := database.NewRedisClient(ctx, cfg.RedisConfig())
	if err != nil {
		pool.Close()
		return nil, err
	}

	producer := kafka.NewProducer(kafka.DefaultProducerConfig(cfg.KafkaBrokers), log)

	events := event.NewProducer(producer, log)

	catalogClient := catalog.NewHTTPClient(
		httpclient.NewCircuitBreakerClient(
			httpclient.New(httpclient.DefaultConfig()),
			httpclient.DefaultCircuitBreakerConfig("catalog"),
			log,
		),
		cfg.CatalogURL,
	)

	gatewayClient := gateway.NewHTTPClient(
		httpclient.NewCircuitBreakerClient(
			httpclient.New(httpclient.DefaultConfig()),
			httpclient.DefaultCircuitBreakerConfig("payment-gateway"),
			log,
		),
		cfg.GatewayURL, cfg.GatewayKeyID, cfg.GatewayKeySecret,
	)

	cartRepo := postgres.NewCartRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	intentRepo := postgres.NewIntentRepository(pool)
	checkoutRepo := postgres.NewCheckoutRepository(pool)
	locker := redis.NewCheckoutLocker(redisClient, cfg.CheckoutLockTTL, log)

	cartService := service.NewCartService(cartRepo, catalogClient, events, log)
	cartValidator := service.NewCartValidator(cartRepo, catalogClient, log)
	checkoutService := service.NewCheckoutService(service.CheckoutServiceDeps{
		Carts:         cartRepo,
		Orders:        orderRepo,
		Intents:       intentRepo,
		Commits:       checkoutRepo,
		Locker:        locker,
		Catalog:       catalogClient,
		Gateway:       gatewayClient,
		Events:        events,
		WebhookSecret: cfg.WebhookSecret,
		Logger:        log,
	})
	orderService := service.NewOrderService(orderRepo, events, log)

	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.RegisterCritical("redis", func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})
	healthHandler.Register("kafka", func(ctx context.Context) error {
		return producer.Ping(ctx)
	})

	router := handler.NewRouter(handler.RouterConfig{
		ServiceName:      cfg.ServiceName,
		Logger:           log,
		TokenValidator:   auth.NewValidator(cfg.JWTSecret).Validate,
		Health:           healthHandler,
		Cart:             handler.NewCartHandler(cartService, cartValidator, log),
		Checkout:         handler.NewCheckoutHandler(checkoutService, log),
		Orders:           handler.NewOrderHandler(orderService, log),
		Webhook:          handler.NewWebhookHandler(checkoutService, log),
		WebhookRateLimit: cfg.WebhookRateLimit,
		WebhookRateBurst: cfg.WebhookRateBurst,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       time.Minute,
	}

	return &App{
		cfg:             cfg,
		logger:          log,
		pool:            pool,
		redis:           redisClient,
		producer:        producer,
		server:          server,
		shutdownTracing: shutdownTracing,
	}, nil
}

// Run serves HTTP until the context is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", slog.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http shutdown failed", "error", err)
	}
	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close failed", "error", err)
	}
	if err := a.redis.Close(); err != nil {
		a.logger.Error("redis close failed", "error", err)
	}
	a.pool.Close()
	if err := a.shutdownTracing(shutdownCtx); err != nil {
		a.logger.Error("tracing shutdown failed", "error", err)
	}

	return nil
}
