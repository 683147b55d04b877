package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fjod/ecomart/pkg/logger"
	"github.com/fjod/ecomart/storefront/internal/api"
	"github.com/fjod/ecomart/storefront/internal/authclient"
	"github.com/fjod/ecomart/storefront/internal/checkout"
	"github.com/fjod/ecomart/storefront/internal/guestcart"
	"github.com/fjod/ecomart/storefront/internal/session"
	"github.com/fjod/ecomart/storefront/internal/storage"
	"github.com/rs/zerolog"
)

// App is everything one CLI invocation works with. It is built after flags
// are parsed and closed when the command returns.
type App struct {
	cfg      Config
	log      zerolog.Logger
	db       *storage.SQLiteStorage
	cart     *guestcart.Store
	sessions *session.Manager
	auth     *authclient.Client
	catalog  *api.CatalogClient
	remote   *api.CartClient
	notify   *api.NotificationClient
	checkout *checkout.Service
}

func openApp(ctx context.Context, cfg Config) (*App, error) {
	log := logger.NewConsole(cfg.LogLevel)

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	db, err := storage.OpenSQLite(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:      cfg,
		log:      log,
		db:       db,
		cart:     guestcart.NewStore(db, log),
		sessions: session.NewManager(db, log),
	}
	if err := a.sessions.Load(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := a.cart.Load(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	hc := api.NewHTTPClient(cfg.Timeout)
	a.auth = authclient.New(cfg.AuthURL, hc)
	a.catalog = api.NewCatalogClient(cfg.CatalogURL, hc)
	a.notify = api.NewNotificationClient(cfg.NotificationURL, hc)
	a.remote = api.NewCartClient(cfg.CartURL, hc, a.token)

	a.checkout = checkout.NewService(a.cart, a.sessions, a.catalog, a.notify, log, checkout.Options{
		Pricing:     a.pricing(),
		StepTimeout: cfg.StepTimeout,
	})
	return a, nil
}

func (a *App) token() string {
	s, ok := a.sessions.Current()
	if !ok {
		return ""
	}
	return s.Token
}

func (a *App) pricing() checkout.Pricing {
	if a.cfg.ChargeFees {
		return checkout.StorePricing
	}
	return checkout.Pricing{}
}

func (a *App) Close() error {
	return a.db.Close()
}
