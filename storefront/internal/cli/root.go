// Package cli is the storefront command line.
package cli

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var errNotLoggedIn = errors.New("you are not logged in, run 'storefront login' first")

// Execute runs one CLI invocation. The local database is opened after the
// flags are parsed and closed on return, so the guest cart and session
// carry over between runs.
func Execute(ctx context.Context, args []string) error {
	return execute(ctx, args, os.Stdout)
}

func execute(ctx context.Context, args []string, out io.Writer) error {
	root, closeApp := newRootCommand()
	defer closeApp()
	root.SetArgs(args)
	root.SetOut(out)
	return root.ExecuteContext(ctx)
}

func newRootCommand() (*cobra.Command, func()) {
	var app *App

	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Browse the TechStore catalog, manage a cart and place orders",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			app, err = openApp(cmd.Context(), cfg)
			return err
		},
	}
	registerFlags(root.PersistentFlags())

	get := func() *App { return app }
	root.AddCommand(
		loginCommand(get),
		registerCommand(get),
		logoutCommand(get),
		whoamiCommand(get),
		productsCommand(get),
		cartCommand(get),
		remoteCartCommand(get),
		checkoutCommand(get),
	)

	closeApp := func() {
		if app != nil {
			if err := app.Close(); err != nil {
				app.log.Warn().Err(err).Msg("close local database")
			}
		}
	}
	return root, closeApp
}
