package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cashier/internal/catalog"
	"cashier/internal/config"
	"cashier/internal/database"
	"cashier/internal/events"
	"cashier/internal/handler"
	"cashier/internal/idempotency"
	"cashier/internal/repository"
	"cashier/internal/router"
	"cashier/internal/service"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting cashier API server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	productRepo := repository.NewProductRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	userRepo := repository.NewUserRepository(pool, logger)

	if err := seedCatalog(ctx, cfg, productRepo, logger); err != nil {
		return err
	}

	store, closeStore := newIdempotencyStore(ctx, cfg.Redis, logger)
	defer closeStore()

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Kafka.Enabled {
		publisher = events.NewKafkaPublisher(cfg.Kafka, logger)
		logger.Info().
			Strs("brokers", cfg.Kafka.Brokers).
			Str("topic", cfg.Kafka.Topic).
			Msg("publishing order events to kafka")
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close event publisher")
		}
	}()

	productService := service.NewProductService(productRepo, logger)
	orderService := service.NewOrderService(orderRepo, productRepo, store, publisher, cfg.Checkout, logger)
	userService := service.NewUserService(userRepo, logger)

	sync := func(ctx context.Context) error { return database.Migrate(ctx, pool, logger) }

	mux := router.New(router.Handlers{
		Product: handler.NewProductHandler(productService, logger),
		Order:   handler.NewOrderHandler(orderService, logger),
		User:    handler.NewUserHandler(userService, logger),
		System:  handler.NewSystemHandler(pool, sync, logger),
	}, userService, cfg.Auth.APIKey, logger)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// In-flight checkouts finish before the pool closes
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// seedCatalog imports the configured seed files into an empty catalogue,
// reading from S3 first when it is enabled.
func seedCatalog(ctx context.Context, cfg *config.Config, store catalog.ProductStore, logger zerolog.Logger) error {
	if len(cfg.Catalog.SeedFiles) == 0 {
		return nil
	}

	fileLoader := catalog.NewFileLoader(logger)
	var s3Loader catalog.Loader
	s3Enabled := cfg.S3.Enabled

	if s3Enabled {
		l, err := catalog.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
			s3Enabled = false
		} else {
			s3Loader = l
		}
	} else {
		logger.Info().Msg("using local file system for catalog files (S3 disabled)")
	}

	loader := catalog.NewFallbackLoader(s3Loader, fileLoader, cfg.S3.Prefix, s3Enabled, logger)

	if _, err := catalog.NewImporter(store, loader, logger).Seed(ctx, cfg.Catalog.SeedFiles); err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}
	return nil
}

// newIdempotencyStore connects to Redis when enabled. Checkout keeps working
// without idempotency keys when Redis cannot be reached at startup.
func newIdempotencyStore(ctx context.Context, cfg config.RedisConfig, logger zerolog.Logger) (idempotency.Store, func()) {
	if !cfg.Enabled {
		logger.Info().Msg("idempotency keys disabled (redis disabled)")
		return idempotency.NopStore{}, func() {}
	}

	rdb, err := idempotency.NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Warn().Err(err).Str("addr", cfg.Addr).Msg("failed to connect to redis, idempotency keys disabled")
		return idempotency.NopStore{}, func() {}
	}

	logger.Info().Str("addr", cfg.Addr).Msg("idempotency store connected")
	return idempotency.NewRedisStore(rdb, cfg.IdempotencyTTL), func() {
		if err := rdb.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close redis client")
		}
	}
}
