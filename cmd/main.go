package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rektbot/internal/adapters/catalog"
	"rektbot/internal/adapters/config"
	"rektbot/internal/adapters/errors/noop"
	"rektbot/internal/adapters/errors/sentry"
	"rektbot/internal/adapters/feed"
	tgadapter "rektbot/internal/adapters/telegram"
	"rektbot/internal/domain/subscriber"
	"rektbot/internal/metrics"
	"rektbot/internal/services/alert"
	"rektbot/internal/services/settings"
	"rektbot/pkg/errors"
	"rektbot/pkg/logger"
	"rektbot/pkg/reconnect"
	"rektbot/pkg/telegram"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize logger
	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer logger.Sync()

	log := logger.Get()
	log.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Env)

	// Initialize error tracker
	errorTracker := initErrorTracker(cfg, log)
	logger.SetErrorTracker(errorTracker)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Shared subscriber state
	configs := subscriber.NewStore()
	phases := subscriber.NewPhaseStore()

	// Initialize Telegram bot
	bot := initTelegramBot(cfg, log)

	// Wire conversation and notification services
	settingsSvc := settings.NewService(configs, phases, tgadapter.NewReplier(bot), log)
	alertSvc := alert.NewService(configs, tgadapter.NewNotifier(bot, log), log)

	handler := tgadapter.NewHandler(bot, settingsSvc, log)
	bot.SetHandler(handler.Handle)

	// Initialize exchange feed
	symbols := fetchSymbols(ctx, cfg, log)
	subscriberFeed := initFeed(cfg, symbols, alertSvc, log)

	log.Info("System initialized successfully")

	// Start feed in the background
	go subscriberFeed.Run(ctx)

	// Start bot (polling or webhook dispatcher)
	go func() {
		if err := bot.Start(ctx); err != nil {
			log.Errorf("Telegram bot error: %v", err)
		}
	}()

	// HTTP servers for webhook and metrics
	servers := startHTTPServers(cfg, bot, log)

	// Wait for shutdown signal
	waitForShutdown(ctx, cancel, bot, servers, errorTracker, log)
}

// initErrorTracker initializes error tracking (Sentry or no-op)
func initErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return noop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return noop.New()
	}

	log.Info("Error tracking initialized (Sentry)")
	return tracker
}

// initTelegramBot initializes the Telegram transport
func initTelegramBot(cfg *config.Config, log *logger.Logger) *tgadapter.Bot {
	bot, err := tgadapter.NewBot(tgadapter.Config{
		Token:       cfg.Telegram.BotToken,
		Debug:       cfg.App.Debug,
		WebhookMode: cfg.Telegram.WebhookMode(),
	}, log)
	if err != nil {
		log.Fatalf("Failed to create Telegram bot: %v", err)
	}

	if cfg.Telegram.WebhookMode() {
		if err := bot.SetWebhook(cfg.Telegram.WebhookURL); err != nil {
			log.Fatalf("Failed to set webhook: %v", err)
		}
		log.Infof("Telegram bot initialized (webhook: %s)", cfg.Telegram.WebhookURL)
	} else {
		// Leftover webhooks block long polling
		if err := bot.DeleteWebhook(); err != nil {
			log.Warnf("Failed to delete webhook: %v", err)
		}
		log.Info("Telegram bot initialized (long polling)")
	}

	return bot
}

// fetchSymbols loads the venue instrument catalog. Catalog failures are not
// fatal: the feed falls back to the venue's global liquidation topic.
func fetchSymbols(ctx context.Context, cfg *config.Config, log *logger.Logger) []string {
	client := catalog.NewClient(cfg.Catalog.BaseURL, &http.Client{Timeout: cfg.Catalog.Timeout}, log)

	symbols, err := client.Symbols(ctx)
	if err != nil {
		log.Warnf("Failed to fetch instrument catalog, using global topic: %v", err)
		return nil
	}

	log.Infof("Instrument catalog loaded: %d symbols", len(symbols))
	return symbols
}

// initFeed builds the liquidation stream subscriber
func initFeed(cfg *config.Config, symbols []string, alertSvc *alert.Service, log *logger.Logger) *feed.Subscriber {
	manager := reconnect.NewManager(reconnect.Config{
		Delay:            cfg.Feed.ReconnectDelay,
		HeartbeatTimeout: cfg.Feed.ReadTimeout,
	}, log)

	return feed.NewSubscriber(feed.Config{
		URL:              cfg.Feed.URL,
		Topics:           feed.Topics(symbols, cfg.Feed.GlobalTopic),
		HandshakeTimeout: cfg.Feed.HandshakeTimeout,
		ReadTimeout:      cfg.Feed.ReadTimeout,
	}, alertSvc.HandleFrame, manager, log)
}

// startHTTPServers starts the webhook receiver and metrics endpoint as needed
func startHTTPServers(cfg *config.Config, bot *tgadapter.Bot, log *logger.Logger) []*http.Server {
	var servers []*http.Server

	if cfg.Telegram.WebhookMode() {
		wh := telegram.NewWebhookHandler(bot.HandleWebhookUpdate, log)

		mux := http.NewServeMux()
		mux.Handle("/webhook", wh)
		mux.HandleFunc("/healthz", wh.HealthCheck)

		srv := &http.Server{Addr: cfg.Telegram.ListenAddr, Handler: mux}
		servers = append(servers, srv)

		go func() {
			log.Infof("Webhook server listening on %s", cfg.Telegram.ListenAddr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Errorf("Webhook server error: %v", err)
			}
		}()
	}

	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})

		srv := &http.Server{Addr: cfg.Metrics.ListenAddr, Handler: mux}
		servers = append(servers, srv)

		go func() {
			log.Infof("Metrics server listening on %s", cfg.Metrics.ListenAddr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Errorf("Metrics server error: %v", err)
			}
		}()
	}

	return servers
}

// waitForShutdown waits for shutdown signal and performs graceful shutdown
func waitForShutdown(ctx context.Context, cancel context.CancelFunc, bot *tgadapter.Bot, servers []*http.Server, errorTracker errors.Tracker, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Shutting down...")

	cancel()
	bot.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warnf("HTTP server shutdown error: %v", err)
		}
	}

	// Flush error tracker
	if errorTracker != nil {
		if err := errorTracker.Flush(shutdownCtx); err != nil {
			log.Warnf("Failed to flush error tracker: %v", err)
		}
	}

	log.Info("Shutdown complete")
}
