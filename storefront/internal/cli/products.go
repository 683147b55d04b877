package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/fjod/ecomart/storefront/internal/api"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func productsCommand(app func() *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Browse the catalog",
	}
	cmd.AddCommand(productsListCommand(app), productsShowCommand(app))
	return cmd
}

func productsListCommand(app func() *App) *cobra.Command {
	var f api.ProductFilter
	var inStock bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List or search products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("in-stock") {
				f.InStock = &inStock
			}
			page, err := app().catalog.ListProducts(cmd.Context(), f)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			err = table(out, "ID\tSLUG\tNAME\tPRICE\tSTOCK", func(tw io.Writer) {
				for _, p := range page.Products {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.Slug, p.Name, money(p.Price), stockLabel(p))
				}
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "page %d of %d, %d products\n", page.Pagination.CurrentPage, page.Pagination.TotalPages, page.Pagination.TotalProducts)
			return nil
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&f.Query, "search", "s", "", "search term")
	fl.StringVar(&f.Category, "category", "", "category slug")
	fl.StringVar(&f.Sort, "sort", "", "createdAt, price, name or rating")
	fl.StringVar(&f.Order, "order", "", "asc or desc")
	fl.IntVar(&f.Page, "page", 1, "page number")
	fl.IntVar(&f.Limit, "limit", 0, "page size")
	fl.BoolVar(&inStock, "in-stock", false, "only products in stock")
	return cmd
}

func productsShowCommand(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id|slug>",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := findProduct(cmd.Context(), app().catalog, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s)\n", p.Name, p.Slug)
			fmt.Fprintf(out, "  id:       %s\n", p.ID)
			fmt.Fprintf(out, "  price:    %s\n", money(p.Price))
			if p.CompareAtPrice != nil {
				fmt.Fprintf(out, "  was:      %s\n", money(*p.CompareAtPrice))
			}
			fmt.Fprintf(out, "  category: %s\n", p.CategoryName)
			fmt.Fprintf(out, "  stock:    %s\n", stockLabel(*p))
			fmt.Fprintf(out, "  rating:   %.1f (%d reviews)\n", p.Rating, p.ReviewCount)
			if p.Description != "" {
				fmt.Fprintf(out, "\n%s\n", p.Description)
			}
			return nil
		},
	}
}

// findProduct accepts either a catalog id or a slug.
func findProduct(ctx context.Context, catalog *api.CatalogClient, ref string) (*api.Product, error) {
	if primitive.IsValidObjectID(ref) {
		return catalog.GetProduct(ctx, ref)
	}
	return catalog.GetProductBySlug(ctx, ref)
}

func stockLabel(p api.Product) string {
	if !p.InStock || p.StockQuantity <= 0 {
		return "out of stock"
	}
	return strconv.Itoa(p.StockQuantity)
}
