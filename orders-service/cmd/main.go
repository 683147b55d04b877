package main

import (
	"context"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fjod/ecomart/orders-service/internal/consumer"
	ordershttp "github.com/fjod/ecomart/orders-service/internal/http"
	"github.com/fjod/ecomart/orders-service/internal/repository"
	"github.com/fjod/ecomart/pkg/auth"
	"github.com/fjod/ecomart/pkg/config"
	"github.com/fjod/ecomart/pkg/httpx"
	"github.com/fjod/ecomart/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type Config struct {
	HTTPPort        string        `mapstructure:"http_port"`
	LogLevel        string        `mapstructure:"log_level"`
	KafkaBrokers    string        `mapstructure:"kafka_brokers"`
	KafkaTopic      string        `mapstructure:"kafka_topic"`
	DBHost          string        `mapstructure:"db_host"`
	DBPort          int           `mapstructure:"db_port"`
	DBUser          string        `mapstructure:"db_user"`
	DBPassword      string        `mapstructure:"db_password"`
	DBName          string        `mapstructure:"db_name"`
	DBSSLMode       string        `mapstructure:"db_sslmode"`
	JWTSecret       string        `mapstructure:"jwt_secret"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

var defaults = map[string]any{
	"http_port":        "8084",
	"log_level":        "info",
	"kafka_brokers":    "localhost:9092",
	"kafka_topic":      consumer.TopicOrderPlaced,
	"db_host":          "localhost",
	"db_port":          5432,
	"db_user":          "postgres",
	"db_password":      "postgres",
	"db_name":          "ecommerce",
	"db_sslmode":       "disable",
	"jwt_secret":       "",
	"request_timeout":  "10s",
	"shutdown_timeout": "10s",
}

func main() {
	var cfg Config
	if err := config.Load("ORDERS", defaults, &cfg); err != nil {
		panic(err)
	}
	log := logger.New("orders-service", cfg.LogLevel)
	if cfg.JWTSecret == "" {
		log.Fatal().Msg("ORDERS_JWT_SECRET must be set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	repo, err := repository.NewRepository(ctx, repository.Credentials{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	})
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer repo.Close()

	if err := repo.RunMigrations(); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}
	log.Info().Msg("database migrations completed")

	var wg sync.WaitGroup
	consumerCtx, consumerCancel := context.WithCancel(context.Background())
	kafkaConsumer := consumer.NewConsumer(repo, log, cfg.KafkaTopic, strings.Split(cfg.KafkaBrokers, ",")...)
	wg.Add(1)
	go func() {
		defer wg.Done()
		kafkaConsumer.Run(consumerCtx)
	}()

	handler := ordershttp.NewOrdersHandler(repo, cfg.RequestTimeout)
	r := httpx.NewRouter(log, cfg.RequestTimeout)
	r.Route("/api/orders", func(r chi.Router) {
		r.Use(auth.Middleware(auth.NewVerifier(cfg.JWTSecret)))
		handler.Routes(r)
	})

	runErr := httpx.Run(httpx.NewServer(cfg.HTTPPort, r), log, cfg.ShutdownTimeout)

	consumerCancel()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		log.Info().Msg("consumer stopped cleanly")
	case <-time.After(cfg.ShutdownTimeout):
		log.Warn().Msg("consumer didn't stop in time")
	}
	kafkaConsumer.Close()

	if runErr != nil {
		log.Error().Err(runErr).Msg("server error")
		repo.Close()
		os.Exit(1)
	}
	log.Info().Msg("orders service stopped")
}
