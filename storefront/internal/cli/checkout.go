package cli

import (
	"errors"
	"fmt"

	"github.com/fjod/ecomart/storefront/internal/checkout"
	"github.com/spf13/cobra"
)

const checkoutSuccess = "Order placed successfully! Check your email for confirmation."

func checkoutCommand(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "checkout",
		Short: "Place an order for the guest cart",
		Long: "Place an order for the guest cart. Requires 'storefront login'.\n\n" +
			"Stock updates and the confirmation email are best-effort: the order is\n" +
			"reported as placed even when some of them fail. Only the guest cart is\n" +
			"checked out; the account cart is left alone.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := app().checkout.Checkout(cmd.Context())
			var unexpected *checkout.UnexpectedCheckoutError
			switch {
			case errors.Is(err, checkout.ErrEmptyCart):
				return errors.New("your cart is empty")
			case errors.Is(err, checkout.ErrAuthenticationRequired):
				return errNotLoggedIn
			case errors.As(err, &unexpected):
				return fmt.Errorf("checkout failed, your cart has been kept: %w", unexpected.Err)
			case err != nil:
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, checkoutSuccess)
			fmt.Fprintf(out, "Order %s, total %s\n", res.OrderID, money(res.Totals.Total))
			return nil
		},
	}
}
