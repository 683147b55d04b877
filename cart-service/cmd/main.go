package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/fjod/ecomart/cart-service/internal/cache"
	"github.com/fjod/ecomart/cart-service/internal/catalog"
	carthttp "github.com/fjod/ecomart/cart-service/internal/http"
	"github.com/fjod/ecomart/cart-service/internal/repository"
	"github.com/fjod/ecomart/cart-service/internal/service"
	"github.com/fjod/ecomart/pkg/auth"
	"github.com/fjod/ecomart/pkg/circuitbreaker"
	"github.com/fjod/ecomart/pkg/config"
	"github.com/fjod/ecomart/pkg/httpx"
	"github.com/fjod/ecomart/pkg/logger"
	"github.com/fjod/ecomart/pkg/mongodb"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Config struct {
	HTTPPort        string        `mapstructure:"http_port"`
	LogLevel        string        `mapstructure:"log_level"`
	MongoURI        string        `mapstructure:"mongo_uri"`
	MongoDBName     string        `mapstructure:"mongo_db_name"`
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
	CatalogURL      string        `mapstructure:"catalog_url"`
	CatalogTimeout  time.Duration `mapstructure:"catalog_timeout"`
	JWTSecret       string        `mapstructure:"jwt_secret"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

var defaults = map[string]any{
	"http_port":        "8082",
	"log_level":        "info",
	"mongo_uri":        "mongodb://localhost:27017",
	"mongo_db_name":    "cartdb",
	"redis_addr":       "localhost:6379",
	"redis_password":   "",
	"cache_ttl":        "15m",
	"catalog_url":      "http://localhost:8081",
	"catalog_timeout":  "3s",
	"jwt_secret":       "",
	"request_timeout":  "10s",
	"shutdown_timeout": "10s",
}

func main() {
	var cfg Config
	if err := config.Load("CART", defaults, &cfg); err != nil {
		panic(err)
	}
	log := logger.New("cart-service", cfg.LogLevel)
	if cfg.JWTSecret == "" {
		log.Fatal().Msg("CART_JWT_SECRET must be set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	mongoDB, err := mongodb.Connect(ctx, mongodb.Options{URI: cfg.MongoURI, Database: cfg.MongoDBName})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer func() {
		if err := mongodb.Disconnect(mongoDB); err != nil {
			log.Error().Err(err).Msg("mongo disconnect failed")
		}
	}()

	repo := repository.NewMongoRepository(mongoDB)
	if ic, ok := repo.(repository.IndexCreator); ok {
		if err := ic.CreateIndexes(ctx); err != nil {
			log.Error().Err(err).Msg("failed to create cart indexes")
		}
	}
	log.Info().Str("db", cfg.MongoDBName).Msg("connected to MongoDB")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	log.Info().Str("addr", cfg.RedisAddr).Msg("redis ping succeeded")

	breaker := circuitbreaker.NewTransport(otelhttp.NewTransport(http.DefaultTransport), circuitbreaker.DefaultSettings("catalog"), log)
	catalogClient := catalog.NewClient(cfg.CatalogURL, &http.Client{
		Transport: breaker,
		Timeout:   cfg.CatalogTimeout,
	})

	carts := service.NewCartService(repo, cache.NewRedisCache(redisClient, cfg.CacheTTL), catalogClient, log)
	handler := carthttp.NewCartHandler(carts, cfg.RequestTimeout)

	r := httpx.NewRouter(log, cfg.RequestTimeout)
	r.Route("/api/cart", func(r chi.Router) {
		r.Use(auth.Middleware(auth.NewVerifier(cfg.JWTSecret)))
		handler.Routes(r)
	})

	if err := httpx.Run(httpx.NewServer(cfg.HTTPPort, r), log, cfg.ShutdownTimeout); err != nil {
		log.Error().Err(err).Msg("server error")
		os.Exit(1)
	}
}
