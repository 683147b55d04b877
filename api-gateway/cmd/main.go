package main

import (
	"os"
	"time"

	gatewayhttp "github.com/fjod/ecomart/api-gateway/internal/http"
	"github.com/fjod/ecomart/pkg/auth"
	"github.com/fjod/ecomart/pkg/config"
	"github.com/fjod/ecomart/pkg/httpx"
	"github.com/fjod/ecomart/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Config struct {
	HTTPPort        string        `mapstructure:"http_port"`
	LogLevel        string        `mapstructure:"log_level"`
	JWTSecret       string        `mapstructure:"jwt_secret"`
	AuthURL         string        `mapstructure:"auth_url"`
	ProductURL      string        `mapstructure:"product_url"`
	CartURL         string        `mapstructure:"cart_url"`
	NotificationURL string        `mapstructure:"notification_url"`
	OrdersURL       string        `mapstructure:"orders_url"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

var defaults = map[string]any{
	"http_port":        "8080",
	"log_level":        "info",
	"jwt_secret":       "",
	"auth_url":         "",
	"product_url":      "http://localhost:8081",
	"cart_url":         "http://localhost:8082",
	"notification_url": "http://localhost:8083",
	"orders_url":       "http://localhost:8084",
	"request_timeout":  "30s",
	"shutdown_timeout": "10s",
}

func main() {
	var cfg Config
	if err := config.Load("GATEWAY", defaults, &cfg); err != nil {
		panic(err)
	}
	log := logger.New("api-gateway", cfg.LogLevel)

	upstreams := []gatewayhttp.Upstream{
		{Name: "product-service", Prefix: "/api/products", Target: cfg.ProductURL},
		{Name: "product-service-categories", Prefix: "/api/categories", Target: cfg.ProductURL},
		{Name: "cart-service", Prefix: "/api/cart", Target: cfg.CartURL, Protected: true},
		{Name: "notification-service", Prefix: "/api/email", Target: cfg.NotificationURL},
		{Name: "orders-service", Prefix: "/api/orders", Target: cfg.OrdersURL, Protected: true},
	}
	if cfg.AuthURL != "" {
		upstreams = append(upstreams, gatewayhttp.Upstream{Name: "identity", Prefix: "/api/auth", Target: cfg.AuthURL})
	}

	var verifier *auth.Verifier
	if cfg.JWTSecret != "" {
		verifier = auth.NewVerifier(cfg.JWTSecret)
	} else {
		log.Warn().Msg("GATEWAY_JWT_SECRET not set, tokens are checked by the services only")
	}

	gw, err := gatewayhttp.NewGateway(upstreams, verifier, nil, log)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid upstream configuration")
	}

	r := httpx.NewRouter(log, cfg.RequestTimeout)
	r.Group(func(r chi.Router) {
		r.Use(gatewayhttp.RequestIDHeader)
		r.Use(middleware.Compress(5))
		gw.Routes(r)
	})

	if err := httpx.Run(httpx.NewServer(cfg.HTTPPort, r), log, cfg.ShutdownTimeout); err != nil {
		log.Error().Err(err).Msg("server error")
		os.Exit(1)
	}
}
