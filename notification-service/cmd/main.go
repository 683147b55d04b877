package main

import (
	"os"
	"strings"
	"time"

	"github.com/fjod/ecomart/notification-service/internal/events"
	notifyhttp "github.com/fjod/ecomart/notification-service/internal/http"
	"github.com/fjod/ecomart/notification-service/internal/mailer"
	"github.com/fjod/ecomart/notification-service/internal/service"
	"github.com/fjod/ecomart/pkg/config"
	"github.com/fjod/ecomart/pkg/httpx"
	"github.com/fjod/ecomart/pkg/logger"
)

type Config struct {
	HTTPPort        string        `mapstructure:"http_port"`
	LogLevel        string        `mapstructure:"log_level"`
	SendGridAPIKey  string        `mapstructure:"sendgrid_api_key"`
	MailFromName    string        `mapstructure:"mail_from_name"`
	MailFromAddress string        `mapstructure:"mail_from_address"`
	OrdersURL       string        `mapstructure:"orders_url"`
	KafkaBrokers    string        `mapstructure:"kafka_brokers"`
	KafkaTopic      string        `mapstructure:"kafka_topic"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

var defaults = map[string]any{
	"http_port":         "8083",
	"log_level":         "info",
	"sendgrid_api_key":  "",
	"mail_from_name":    "TechStore",
	"mail_from_address": "orders@techstore.local",
	"orders_url":        "http://localhost:3000/orders",
	"kafka_brokers":     "",
	"kafka_topic":       events.TopicOrderPlaced,
	"request_timeout":   "15s",
	"shutdown_timeout":  "10s",
}

func main() {
	var cfg Config
	if err := config.Load("NOTIFY", defaults, &cfg); err != nil {
		panic(err)
	}
	log := logger.New("notification-service", cfg.LogLevel)

	var m mailer.Mailer
	if cfg.SendGridAPIKey != "" {
		m = mailer.NewSendGridMailer(cfg.SendGridAPIKey, cfg.MailFromName, cfg.MailFromAddress, log)
	} else {
		m = mailer.NewLogMailer(log)
		log.Warn().Msg("NOTIFY_SENDGRID_API_KEY not set, e-mails are only logged")
	}

	var pub events.Publisher = events.NopPublisher{}
	if brokers := splitBrokers(cfg.KafkaBrokers); len(brokers) > 0 {
		pub = events.NewKafkaPublisher(cfg.KafkaTopic, brokers...)
		log.Info().Strs("brokers", brokers).Str("topic", cfg.KafkaTopic).Msg("publishing order events")
	}
	defer func() {
		if err := pub.Close(); err != nil {
			log.Error().Err(err).Msg("close publisher")
		}
	}()

	notifications := service.NewNotificationService(mailer.NewRenderer(cfg.OrdersURL), m, pub, log)
	defer notifications.Wait()
	handler := notifyhttp.NewEmailHandler(notifications, cfg.RequestTimeout)

	r := httpx.NewRouter(log, cfg.RequestTimeout)
	r.Route("/api/email", handler.Routes)

	if err := httpx.Run(httpx.NewServer(cfg.HTTPPort, r), log, cfg.ShutdownTimeout); err != nil {
		log.Error().Err(err).Msg("server error")
		os.Exit(1)
	}
}

func splitBrokers(s string) []string {
	var out []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
