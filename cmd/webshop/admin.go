package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/matheusmosca/webshop/internal/database"
	"github.com/matheusmosca/webshop/internal/kafka"
	"github.com/matheusmosca/webshop/internal/products"
)

func newMigrateCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if err := database.Migrate(cmd.Context(), cfg.Database.DSN()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✅ Schema migrated")
			return nil
		},
	}
}

func newSeedCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the sample product catalogue (existing products are kept)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			pool, err := database.Connect(cmd.Context(), cfg.Database, logger)
			if err != nil {
				return err
			}
			defer pool.Close()

			created, err := products.NewProductUseCase(products.NewProductRepository(pool), logger).Seed(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Seeded %d products\n", created)
			return nil
		},
	}
}

func newRelayCmd(load configLoader) *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "relay",
		Short: "Publish pending order events from the outbox to Kafka",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if !cfg.KafkaEnabled() {
				return fmt.Errorf("relay requires kafka brokers: %w", kafka.ErrDisabled)
			}

			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			pool, err := database.Connect(ctx, cfg.Database, logger)
			if err != nil {
				return err
			}
			defer pool.Close()

			publisher := kafka.NewPublisher(kafka.NewClient(cfg.Kafka.Brokers))
			defer func() { _ = publisher.Close() }()

			relay := newRelay(pool, cfg, publisher, logger)
			if !once {
				return relay.Run(ctx)
			}

			sent, err := relay.Flush(ctx)
			logger.Info("📤 Outbox flushed", zap.Int("sent", sent))
			return err
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "Flush the pending events a single time and exit")
	return cmd
}
