package main

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/matheusmosca/webshop/internal/config"
	"github.com/matheusmosca/webshop/internal/logging"
)

func init() {
	// preços saem como números no JSON, como o storefront espera
	decimal.MarshalJSONWithoutQuotes = true
}

// newRootCmd monta a árvore de comandos da CLI
func newRootCmd() *cobra.Command {
	var (
		configPath string
		apiURL     string
	)

	rootCmd := &cobra.Command{
		Use:           "webshop",
		Short:         "Webshop backend: product catalogue, baskets and orders",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file (env vars override it)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Base URL of a running webshop (client commands only)")

	load := func() (*config.Config, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		if apiURL != "" {
			cfg.API.URL = apiURL
		}
		return cfg, nil
	}

	rootCmd.AddCommand(
		newServeCmd(load),
		newMigrateCmd(load),
		newSeedCmd(load),
		newRelayCmd(load),
		newProductsCmd(load),
		newOrdersCmd(load),
	)
	return rootCmd
}

type configLoader func() (*config.Config, error)

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	logger, err := logging.New(cfg.Service, cfg.Log.Development)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}
