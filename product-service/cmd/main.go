package main

import (
	"context"
	"os"
	"time"

	"github.com/fjod/ecomart/pkg/config"
	"github.com/fjod/ecomart/pkg/httpx"
	"github.com/fjod/ecomart/pkg/logger"
	"github.com/fjod/ecomart/pkg/mongodb"
	producthttp "github.com/fjod/ecomart/product-service/internal/http"
	"github.com/fjod/ecomart/product-service/internal/repository"
	"github.com/fjod/ecomart/product-service/internal/service"
)

type Config struct {
	HTTPPort        string        `mapstructure:"http_port"`
	LogLevel        string        `mapstructure:"log_level"`
	Storage         string        `mapstructure:"storage"`
	MongoURI        string        `mapstructure:"mongo_uri"`
	MongoDBName     string        `mapstructure:"mongo_db_name"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

var defaults = map[string]any{
	"http_port":        "8081",
	"log_level":        "info",
	"storage":          "mongo",
	"mongo_uri":        "mongodb://localhost:27017",
	"mongo_db_name":    "catalogdb",
	"request_timeout":  "10s",
	"shutdown_timeout": "10s",
}

func main() {
	var cfg Config
	if err := config.Load("PRODUCT", defaults, &cfg); err != nil {
		panic(err)
	}
	log := logger.New("product-service", cfg.LogLevel)

	var (
		repo       repository.ProductRepository
		categories repository.CategoryRepository
	)
	switch cfg.Storage {
	case "memory":
		repo = repository.NewMemoryRepository()
		categories = repository.NewMemoryCategoryRepository()
		log.Warn().Msg("using in-memory product storage")
	default:
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		db, err := mongodb.Connect(ctx, mongodb.Options{URI: cfg.MongoURI, Database: cfg.MongoDBName})
		if err != nil {
			cancel()
			log.Fatal().Err(err).Msg("failed to connect to MongoDB")
		}
		mongoRepo := repository.NewMongoRepository(db)
		if err := mongoRepo.CreateIndexes(ctx); err != nil {
			log.Error().Err(err).Msg("failed to create product indexes")
		}
		categoryRepo := repository.NewMongoCategoryRepository(db)
		if err := categoryRepo.CreateIndexes(ctx); err != nil {
			log.Error().Err(err).Msg("failed to create category indexes")
		}
		categories = categoryRepo
		cancel()
		defer func() {
			if err := mongodb.Disconnect(db); err != nil {
				log.Error().Err(err).Msg("mongo disconnect failed")
			}
		}()
		repo = mongoRepo
		log.Info().Str("db", cfg.MongoDBName).Msg("connected to MongoDB")
	}

	catalog := service.NewCatalogService(repo, log)
	handler := producthttp.NewProductHandler(catalog, cfg.RequestTimeout)
	categoryHandler := producthttp.NewCategoryHandler(service.NewCategoryService(categories, repo), cfg.RequestTimeout)

	r := httpx.NewRouter(log, cfg.RequestTimeout)
	r.Route("/api/products", handler.Routes)
	r.Route("/api/categories", categoryHandler.Routes)

	if err := httpx.Run(httpx.NewServer(cfg.HTTPPort, r), log, cfg.ShutdownTimeout); err != nil {
		log.Error().Err(err).Msg("server error")
		os.Exit(1)
	}
}
