// Command cart runs one cart operation against the persisted cart session and prints the
// resulting cart.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/stripe/stripe-go/v79"
	"go.uber.org/zap"

	"gofalre.io/storefront"
	"gofalre.io/storefront/config"
	"gofalre.io/storefront/models"
	"gofalre.io/storefront/notify"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err = newRootCmd(logger).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

const rootLong = `Manage the storefront cart session.

Each run loads the cart snapshot, applies one operation and saves it again.
The snapshot backend comes from SNAPSHOT_BACKEND. The default, memory, lives only
as long as one run, so set SNAPSHOT_BACKEND=redis or SNAPSHOT_BACKEND=postgres to
keep the cart between runs.`

func newRootCmd(logger *zap.Logger) *cobra.Command {
	var asJSON bool

	root := &cobra.Command{
		Use:          "cart",
		Short:        "Manage the storefront cart session",
		Long:         rootLong,
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVar(&asJSON, "json", false, "print the cart as JSON")

	// run opens the session, applies op and prints the cart.
	run := func(cmd *cobra.Command, op func(ctx context.Context, cart *storefront.CartStore) error) error {
		cfg, err := config.LoadConfig(logger)
		if err != nil {
			return err
		}

		stderr := cmd.ErrOrStderr()
		ui := notify.SinkFunc(func(_ context.Context, n models.Notice) {
			fmt.Fprintf(stderr, "! %s\n", n.Message)
		})

		s, err := openSession(cmd.Context(), cfg, ui, logger)
		if err != nil {
			return err
		}
		defer s.Close()

		if err = op(cmd.Context(), s.cart); err != nil {
			return err
		}
		return printCart(cmd.OutOrStdout(), s.cart.Cart(), asJSON)
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the cart",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return run(cmd, func(context.Context, *storefront.CartStore) error { return nil })
			},
		},
		&cobra.Command{
			Use:   "add <product-id>",
			Short: "Add one unit of a product",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				return run(cmd, func(ctx context.Context, cart *storefront.CartStore) error {
					cart.AddProduct(ctx, id)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "remove <product-id>",
			Short: "Remove a product from the cart",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				return run(cmd, func(ctx context.Context, cart *storefront.CartStore) error {
					cart.RemoveProduct(ctx, id)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "update <product-id> <amount>",
			Short: "Set the quantity of a product in the cart",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				amount, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("invalid amount %q: %w", args[1], err)
				}
				return run(cmd, func(ctx context.Context, cart *storefront.CartStore) error {
					cart.UpdateProductAmount(ctx, storefront.UpdateProductAmount{ProductID: id, Amount: amount})
					return nil
				})
			},
		},
		newCheckoutItemsCmd(logger),
	)
	return root
}

// newCheckoutItemsCmd prints the stripe line items a checkout step would receive.
func newCheckoutItemsCmd(logger *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "checkout-items",
		Short: "Print the cart as stripe checkout line items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(logger)
			if err != nil {
				return err
			}
			s, err := openSession(cmd.Context(), cfg, notify.SinkFunc(func(context.Context, models.Notice) {}), logger)
			if err != nil {
				return err
			}
			defer s.Close()

			items, err := s.cart.Cart().CheckoutLineItems(stripe.Currency(cfg.Currency))
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(items)
		},
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid product id %q: %w", s, err)
	}
	return id, nil
}

func printCart(w io.Writer, cart models.Cart, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(cart)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPRODUCT\tPRICE\tAMOUNT\tSUBTOTAL")
	for _, p := range cart {
		fmt.Fprintf(tw, "%d\t%s\t%.2f\t%d\t%.2f\n", p.ID, p.Title, p.Price, p.Amount, p.Price*float64(p.Amount))
	}
	fmt.Fprintf(tw, "\t\t\t%d\t%.2f\n", cart.Count(), cart.Subtotal())
	return tw.Flush()
}
