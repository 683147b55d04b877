package cli

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fjod/ecomart/pkg/config"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "STOREFRONT"

type Config struct {
	DBPath          string        `mapstructure:"db_path"`
	GatewayURL      string        `mapstructure:"gateway_url"`
	AuthURL         string        `mapstructure:"auth_url"`
	CatalogURL      string        `mapstructure:"catalog_url"`
	CartURL         string        `mapstructure:"cart_url"`
	NotificationURL string        `mapstructure:"notification_url"`
	Timeout         time.Duration `mapstructure:"timeout"`
	StepTimeout     time.Duration `mapstructure:"step_timeout"`
	ChargeFees      bool          `mapstructure:"charge_fees"`
	LogLevel        string        `mapstructure:"log_level"`
	Verbose         bool          `mapstructure:"verbose"`
}

func defaultDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "storefront.db"
	}
	return filepath.Join(dir, "ecomart", "storefront.db")
}

func defaults() map[string]any {
	return map[string]any{
		"db_path":          defaultDBPath(),
		"gateway_url":      "",
		"auth_url":         "http://localhost:8080/api/auth",
		"catalog_url":      "http://localhost:8081/api/products",
		"cart_url":         "http://localhost:8082/api/cart",
		"notification_url": "http://localhost:8083/api/email",
		"timeout":          "10s",
		"step_timeout":     "0s",
		"charge_fees":      true,
		"log_level":        "warn",
		"verbose":          false,
	}
}

func registerFlags(fs *pflag.FlagSet) {
	d := defaults()
	fs.String("db-path", d["db_path"].(string), "local database holding the guest cart and session")
	fs.String("gateway-url", "", "API gateway base URL; overrides the per-service URLs")
	fs.String("auth-url", d["auth_url"].(string), "identity service base URL")
	fs.String("catalog-url", d["catalog_url"].(string), "product catalog base URL")
	fs.String("cart-url", d["cart_url"].(string), "account cart base URL")
	fs.String("notification-url", d["notification_url"].(string), "notification service base URL")
	fs.Duration("timeout", 10*time.Second, "HTTP client timeout")
	fs.Duration("step-timeout", 0, "timeout for each checkout call (0 uses --timeout)")
	fs.Bool("charge-fees", true, "add shipping and GST to the order total")
	fs.String("log-level", d["log_level"].(string), "log level")
	fs.BoolP("verbose", "v", false, "debug logging")
}

// loadConfig layers flags over STOREFRONT_* environment variables over
// defaults.
func loadConfig(fs *pflag.FlagSet) (Config, error) {
	v := viper.New()
	var bindErr error
	fs.VisitAll(func(f *pflag.Flag) {
		key := flagKey(f.Name)
		if err := v.BindPFlag(key, f); err != nil && bindErr == nil {
			bindErr = err
		}
	})
	if bindErr != nil {
		return Config{}, bindErr
	}

	var cfg Config
	if err := config.LoadWith(v, envPrefix, defaults(), &cfg); err != nil {
		return Config{}, err
	}
	if cfg.GatewayURL != "" {
		base := strings.TrimRight(cfg.GatewayURL, "/")
		cfg.AuthURL = base + "/api/auth"
		cfg.CatalogURL = base + "/api/products"
		cfg.CartURL = base + "/api/cart"
		cfg.NotificationURL = base + "/api/email"
	}
	if cfg.Verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

func flagKey(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}
