package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/matheusmosca/webshop/internal/api"
	"github.com/matheusmosca/webshop/internal/baskets"
	"github.com/matheusmosca/webshop/internal/config"
	"github.com/matheusmosca/webshop/internal/database"
	"github.com/matheusmosca/webshop/internal/kafka"
	"github.com/matheusmosca/webshop/internal/orders"
	"github.com/matheusmosca/webshop/internal/outbox"
	"github.com/matheusmosca/webshop/internal/products"
	"github.com/matheusmosca/webshop/internal/telemetry"
	"github.com/matheusmosca/webshop/internal/zipcode"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	providers, err := telemetry.Setup(ctx, cfg.Service, cfg.Telemetry.OTLPEndpoint, cfg.Telemetry.Enabled)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := providers.Shutdown(context.Background()); err != nil {
			logger.Warn("Error shutting down telemetry", zap.Error(err))
		}
	}()

	if cfg.Database.MigrateOnBoot {
		if err := database.Migrate(ctx, cfg.Database.DSN()); err != nil {
			return err
		}
		logger.Info("✅ Schema migrated")
	}

	pool, err := database.Connect(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	productUseCase := products.NewProductUseCase(products.NewProductRepository(pool), logger)
	if cfg.Database.Seed {
		if _, err := productUseCase.Seed(ctx); err != nil {
			return err
		}
	}

	store := outbox.NewPostgresStore(pool, cfg.Kafka.Topic)
	basketUseCase := baskets.NewBasketUseCase(baskets.NewBasketRepository(pool), products.NewProductRepository(pool), logger)
	orderUseCase, err := orders.NewOrderUseCase(orders.NewOrderRepository(pool), basketUseCase, store, providers.Meter, logger)
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(
		api.Options{
			Service:     cfg.Service,
			CORSOrigins: cfg.CORS.Origins,
			Logger:      logger,
			Metrics:     telemetry.NewServerMetrics("api"),
		},
		products.NewProductHandler(productUseCase, providers.Tracer),
		orders.NewOrderHandler(orderUseCase, providers.Tracer),
		baskets.NewBasketHandler(basketUseCase, providers.Tracer),
		zipcode.NewHandler(zipcode.NewClient(cfg.ZipCode.URL, cfg.ZipCode.Timeout), providers.Tracer),
	)

	relayCtx, stopRelay := context.WithCancel(ctx)
	defer stopRelay()

	relayDone := make(chan error, 1)
	if cfg.KafkaEnabled() {
		publisher := kafka.NewPublisher(kafka.NewClient(cfg.Kafka.Brokers))
		defer func() { _ = publisher.Close() }()
		go func() {
			relayDone <- newRelay(pool, cfg, publisher, logger).Run(relayCtx)
		}()
	} else {
		logger.Warn("⚠️ Kafka brokers not configured, order events stay in the outbox")
		close(relayDone)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("🚀 Webshop listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	var runErr error
	select {
	case err := <-serverErr:
		if err != nil {
			runErr = fmt.Errorf("failed to start server: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("🛑 Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to shut down server: %w", err)
	}

	stopRelay()
	if err := <-relayDone; err != nil {
		logger.Error("❌ Outbox relay stopped", zap.Error(err))
	}
	return runErr
}

func newRelay(pool *pgxpool.Pool, cfg *config.Config, publisher outbox.Publisher, logger *zap.Logger) *outbox.Relay {
	return outbox.NewRelay(
		outbox.NewPostgresStore(pool, cfg.Kafka.Topic),
		publisher,
		cfg.Kafka.RelayInterval,
		cfg.Kafka.RelayBatch,
		logger,
	)
}
