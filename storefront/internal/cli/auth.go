package cli

import (
	"errors"
	"fmt"

	"github.com/fjod/ecomart/storefront/internal/authclient"
	"github.com/spf13/cobra"
)

func loginCommand(app func() *App) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and keep the session on this device",
		Long: "Log in and keep the session on this device.\n\n" +
			"The guest cart is not merged into the account cart; the two stay separate.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := app()
			s, err := a.auth.Login(cmd.Context(), email, password)
			if errors.Is(err, authclient.ErrInvalidCredentials) {
				return fmt.Errorf("login failed: %w", err)
			}
			if err != nil {
				return err
			}
			if err := a.sessions.Save(cmd.Context(), s); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Logged in as %s (%s)\n", s.Name, s.Email)
			if n := a.cart.Count(); n > 0 {
				fmt.Fprintf(out, "Your guest cart still holds %d item(s); it is not added to your account cart.\n", n)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account e-mail")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func registerCommand(app func() *App) *cobra.Command {
	var firstName, email, password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app().auth.Register(cmd.Context(), firstName, email, password); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Registration successful. Run 'storefront login' to sign in.")
			return nil
		},
	}
	cmd.Flags().StringVar(&firstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&email, "email", "", "account e-mail")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	for _, f := range []string{"first-name", "email", "password"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

func logoutCommand(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app().sessions.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func whoamiCommand(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, ok := app().sessions.Current()
			if !ok {
				return errNotLoggedIn
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> role=%s\n", s.Name, s.Email, s.Role)
			return nil
		},
	}
}
