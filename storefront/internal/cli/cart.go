package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/fjod/ecomart/storefront/internal/guestcart"
	"github.com/spf13/cobra"
)

func cartCommand(app func() *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Manage the guest cart kept on this device",
	}
	cmd.AddCommand(
		cartAddCommand(app),
		cartShowCommand(app),
		cartUpdateCommand(app),
		cartRemoveCommand(app),
		cartClearCommand(app),
	)
	return cmd
}

func cartAddCommand(app func() *App) *cobra.Command {
	var quantity int
	cmd := &cobra.Command{
		Use:   "add <product id|slug>",
		Short: "Add a product to the guest cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			p, err := findProduct(cmd.Context(), a.catalog, args[0])
			if err != nil {
				return err
			}
			if !p.InStock || p.StockQuantity <= 0 {
				return fmt.Errorf("%s is out of stock", p.Name)
			}

			err = a.cart.AddItem(cmd.Context(), guestcart.Product{
				ID:            p.ID,
				Slug:          p.Slug,
				Name:          p.Name,
				Price:         p.Price,
				Image:         p.Image,
				CategoryName:  p.CategoryName,
				StockQuantity: p.StockQuantity,
			}, quantity)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s added to cart! (%d items)\n", p.Name, a.cart.Count())
			return nil
		},
	}
	cmd.Flags().IntVarP(&quantity, "quantity", "q", 1, "quantity to add")
	return cmd
}

func cartShowCommand(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the guest cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := app()
			items := a.cart.Items()
			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(out, "Your cart is empty.")
				return nil
			}

			err := table(out, "LINE\tPRODUCT\tQTY\tPRICE\tTOTAL", func(tw io.Writer) {
				for _, it := range items {
					fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", it.ID, it.Name, it.Quantity, money(it.Price), money(it.LineTotal()))
				}
			})
			if err != nil {
				return err
			}

			t := a.pricing().Totals(a.cart.Total())
			fmt.Fprintf(out, "\nItems:    %d\n", a.cart.Count())
			fmt.Fprintf(out, "Subtotal: %s\n", money(t.Subtotal))
			if a.cfg.ChargeFees {
				shipping := money(t.Shipping)
				if t.Shipping.IsZero() {
					shipping = "FREE"
				}
				fmt.Fprintf(out, "Shipping: %s\n", shipping)
				fmt.Fprintf(out, "GST:      %s\n", money(t.Tax))
			}
			fmt.Fprintf(out, "Total:    %s\n", money(t.Total))
			return nil
		},
	}
}

func cartUpdateCommand(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "update <line id> <quantity>",
		Short: "Set the quantity of a cart line",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("quantity must be a number: %w", err)
			}
			if n < 1 {
				return errors.New("quantity must be at least 1, use 'cart remove' to drop a line")
			}
			item, ok := findLine(a.cart.Items(), args[0])
			if !ok {
				return fmt.Errorf("no cart line %s", args[0])
			}
			// the store accepts any quantity; the stock seen at add time caps it here
			if n > item.StockQuantity {
				return fmt.Errorf("only %d of %s in stock", item.StockQuantity, item.Name)
			}
			if err := a.cart.UpdateQuantity(cmd.Context(), item.ID, n); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s quantity set to %d\n", item.Name, n)
			return nil
		},
	}
}

func cartRemoveCommand(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <line id>",
		Short: "Remove a cart line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app().cart.RemoveItem(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Item removed from cart")
			return nil
		},
	}
}

func cartClearCommand(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the guest cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app().cart.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Cart cleared")
			return nil
		},
	}
}

func findLine(items []guestcart.Item, id string) (guestcart.Item, bool) {
	for _, it := range items {
		if it.ID == id {
			return it, true
		}
	}
	return guestcart.Item{}, false
}
