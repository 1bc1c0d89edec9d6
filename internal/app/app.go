package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/Abanoub-Magdy-gabra/style-checkout/pkg/database"
	"github.com/Abanoub-Magdy-gabra/style-checkout/pkg/health"
	pkgkafka "github.com/Abanoub-Magdy-gabra/style-checkout/pkg/kafka"
	"github.com/Abanoub-Magdy-gabra/style-checkout/pkg/middleware"

	"github.com/Abanoub-Magdy-gabra/style-checkout/internal/checkout"
	"github.com/Abanoub-Magdy-gabra/style-checkout/internal/config"
	"github.com/Abanoub-Magdy-gabra/style-checkout/internal/event"
	handler "github.com/Abanoub-Magdy-gabra/style-checkout/internal/handler/http"
	"github.com/Abanoub-Magdy-gabra/style-checkout/internal/repository/postgres"
	"github.com/Abanoub-Magdy-gabra/style-checkout/internal/repository/rediscache"
	"github.com/Abanoub-Magdy-gabra/style-checkout/internal/service"
	"github.com/Abanoub-Magdy-gabra/style-checkout/migrations"
)

// App wires together all dependencies and runs the checkout service.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	pool       *pgxpool.Pool
	redis      *redis.Client
	producer   *pkgkafka.Producer
	httpServer *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg.PostgresDatabaseConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.Postgres.Host),
		slog.Int("port", cfg.Postgres.Port),
		slog.String("database", cfg.Postgres.DBName),
	)

	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	redisClient, err := database.NewRedisClient(ctx, cfg.RedisDatabaseConfig())
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis",
		slog.String("host", cfg.Redis.Host),
		slog.Int("port", cfg.Redis.Port),
	)

	producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.Kafka.Brokers), logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.Kafka.Brokers))

	// Build the dependency graph.
	orderStore := postgres.NewOrderStore(pool)
	fallbackCache := rediscache.NewFallbackCache(redisClient, int64(cfg.Redis.FallbackMaxRecords))
	cartStore := rediscache.NewCartStore(redisClient)
	publisher := event.NewPublisher(producer)

	calc := checkout.NewCalculator(
		checkout.ShippingFees{
			Standard: cfg.Finalization.ShippingStandardFee,
			Express:  cfg.Finalization.ShippingExpressFee,
			SameDay:  cfg.Finalization.ShippingSameDayFee,
		},
		cfg.Finalization.VATRateBP,
		cfg.Finalization.FXRateNum,
		cfg.Finalization.FXRateDen,
	)

	coordinator := service.NewCoordinator(orderStore, fallbackCache, logger)
	finalizer := service.NewFinalizer(
		calc,
		checkout.NewDraftBuilder(),
		coordinator,
		cartStore,
		publisher,
		logger,
		service.FinalizerConfig{
			Deadline:        cfg.Finalization.Deadline,
			ProcessingDelay: cfg.Finalization.ProcessingDelay,
		},
	)

	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.Register("redis", func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})
	if cfg.Kafka.Enabled {
		healthHandler.Register("kafka", func(ctx context.Context) error {
			return producer.Ping(ctx)
		})
	}

	router := handler.NewRouter(handler.RouterConfig{
		Logger: logger,
		Health: healthHandler,
		CORS: middleware.CORSConfig{
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			Environment:    cfg.Environment,
		},
		Checkout: handler.NewCheckoutHandler(finalizer, logger),
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           router,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:        cfg,
		logger:     logger,
		pool:       pool,
		redis:      redisClient,
		producer:   producer,
		httpServer: httpServer,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components in order: drain in-flight HTTP
// requests first, then close the Kafka producer, then the storage clients.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if err := a.redis.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
