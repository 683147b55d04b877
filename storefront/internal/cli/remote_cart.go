package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/fjod/ecomart/storefront/internal/api"
	"github.com/spf13/cobra"
)

func remoteCartCommand(app func() *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remote-cart",
		Short: "Manage the cart stored with your account",
		Long: "Manage the cart stored with your account. Requires 'storefront login'.\n\n" +
			"This cart is separate from the guest cart; nothing is copied between them.",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show the account cart",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cart, err := app().remote.Get(cmd.Context())
				if err != nil {
					return remoteError(err)
				}
				return printRemoteCart(cmd.OutOrStdout(), "", cart)
			},
		},
		remoteAddCommand(app),
		&cobra.Command{
			Use:   "update <line id> <quantity>",
			Short: "Set a line's quantity; 0 removes it",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				n, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("quantity must be a number: %w", err)
				}
				cart, err := app().remote.UpdateQuantity(cmd.Context(), args[0], n)
				if err != nil {
					return remoteError(err)
				}
				return printRemoteCart(cmd.OutOrStdout(), "Cart updated", cart)
			},
		},
		&cobra.Command{
			Use:   "remove <line id>",
			Short: "Remove a line",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cart, err := app().remote.RemoveItem(cmd.Context(), args[0])
				if err != nil {
					return remoteError(err)
				}
				return printRemoteCart(cmd.OutOrStdout(), "Item removed from cart", cart)
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Empty the account cart",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cart, err := app().remote.Clear(cmd.Context())
				if err != nil {
					return remoteError(err)
				}
				return printRemoteCart(cmd.OutOrStdout(), "Cart cleared", cart)
			},
		},
	)
	return cmd
}

func remoteAddCommand(app func() *App) *cobra.Command {
	var quantity int
	cmd := &cobra.Command{
		Use:   "add <product id|slug>",
		Short: "Add a product to the account cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			p, err := findProduct(cmd.Context(), a.catalog, args[0])
			if err != nil {
				return err
			}
			cart, err := a.remote.AddItem(cmd.Context(), p.ID, quantity)
			if err != nil {
				return remoteError(err)
			}
			return printRemoteCart(cmd.OutOrStdout(), p.Name+" added to cart!", cart)
		},
	}
	cmd.Flags().IntVarP(&quantity, "quantity", "q", 1, "quantity to add")
	return cmd
}

// remoteError turns backend rejections into messages a shopper can act on.
func remoteError(err error) error {
	var apiErr *api.Error
	switch {
	case errors.Is(err, api.ErrAuthenticationRequired):
		return errNotLoggedIn
	case errors.Is(err, api.ErrOutOfStock), errors.Is(err, api.ErrInsufficientStock), errors.Is(err, api.ErrNotFound):
		if errors.As(err, &apiErr) {
			return errors.New(apiErr.Message)
		}
	}
	return err
}

func printRemoteCart(out io.Writer, message string, cart *api.Cart) error {
	if message != "" {
		fmt.Fprintln(out, message)
	}
	if len(cart.Items) == 0 {
		fmt.Fprintln(out, "Your cart is empty.")
		return nil
	}
	err := table(out, "LINE\tPRODUCT\tQTY\tPRICE\tAVAILABLE", func(tw io.Writer) {
		for _, l := range cart.Items {
			avail := strconv.Itoa(l.StockQuantity)
			if !l.InStock {
				avail = "out of stock"
			}
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", l.ID, l.Name, l.Quantity, money(l.Price), avail)
		}
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nItems:    %d\nSubtotal: %s\n", cart.ItemCount, money(cart.Subtotal))
	return nil
}
