package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matheusmosca/webshop/internal/client"
	"github.com/matheusmosca/webshop/internal/orders"
)

func newProductsCmd(load configLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Query the product catalogue of a running webshop",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List all products",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := newClient(load)
				if err != nil {
					return err
				}
				list, err := c.ListProducts(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), list)
			},
		},
		&cobra.Command{
			Use:   "get <id>",
			Short: "Show one product",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := newClient(load)
				if err != nil {
					return err
				}
				product, err := c.GetProduct(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), product)
			},
		},
	)
	return cmd
}

func newOrdersCmd(load configLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Inspect and move orders of a running webshop",
	}

	type orderCall func(c *client.Client, cmd *cobra.Command, id int64) (*orders.Order, error)
	sub := func(use, short string, call orderCall) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <id>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid order id %q: %w", args[0], err)
				}
				c, err := newClient(load)
				if err != nil {
					return err
				}
				order, err := call(c, cmd, id)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), order)
			},
		}
	}

	cmd.AddCommand(
		sub("get", "Show one order", func(c *client.Client, cmd *cobra.Command, id int64) (*orders.Order, error) {
			return c.GetOrder(cmd.Context(), id)
		}),
		sub("complete", "Complete an order in progress", func(c *client.Client, cmd *cobra.Command, id int64) (*orders.Order, error) {
			return c.CompleteOrder(cmd.Context(), id)
		}),
		sub("cancel", "Cancel an order in progress", func(c *client.Client, cmd *cobra.Command, id int64) (*orders.Order, error) {
			return c.CancelOrder(cmd.Context(), id)
		}),
	)
	return cmd
}

func newClient(load configLoader) (*client.Client, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	return client.New(cfg.API.URL), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
