package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"rektbot/pkg/errors"
)

type Config struct {
	App           AppConfig
	Telegram      TelegramConfig
	Feed          FeedConfig
	Catalog       CatalogConfig
	Metrics       MetricsConfig
	ErrorTracking ErrorTrackingConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"rektbot"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Debug    bool   `envconfig:"DEBUG" default:"false"`
}

type TelegramConfig struct {
	BotToken   string `envconfig:"TELEGRAM_BOT_TOKEN" required:"true"`
	WebhookURL string `envconfig:"TELEGRAM_WEBHOOK_URL"` // Empty = long polling
	ListenAddr string `envconfig:"TELEGRAM_LISTEN_ADDR" default:":5000"`
}

// WebhookMode reports whether updates arrive via webhook instead of polling
func (c TelegramConfig) WebhookMode() bool {
	return c.WebhookURL != ""
}

type FeedConfig struct {
	URL              string        `envconfig:"FEED_WS_URL" default:"wss://stream.bybit.com/v5/public/linear"`
	GlobalTopic      string        `envconfig:"FEED_GLOBAL_TOPIC" default:"liquidation"`
	ReconnectDelay   time.Duration `envconfig:"FEED_RECONNECT_DELAY" default:"5s"`
	ReadTimeout      time.Duration `envconfig:"FEED_READ_TIMEOUT" default:"60s"`
	HandshakeTimeout time.Duration `envconfig:"FEED_HANDSHAKE_TIMEOUT" default:"10s"`
}

type CatalogConfig struct {
	BaseURL string        `envconfig:"CATALOG_BASE_URL" default:"https://api.bybit.com"`
	Timeout time.Duration `envconfig:"CATALOG_TIMEOUT" default:"10s"`
}

type MetricsConfig struct {
	Enabled    bool   `envconfig:"METRICS_ENABLED" default:"true"`
	ListenAddr string `envconfig:"METRICS_LISTEN_ADDR" default:":9090"`
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"false"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

// Load reads configuration from environment variables
// It first tries to load .env file (useful for local development)
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not exists)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidConfig, err.Error())
	}

	return &cfg, nil
}
