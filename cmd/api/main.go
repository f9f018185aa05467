// Command api is the QuakeConnect data service: earthquake alert scanning,
// news correlation, social fan-out, and the read API.
//
// Usage:
//
//	quakeconnect-api
//	API_PORT=8080 quakeconnect-api
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/bvrtu/quakeconnect-data/internal/alert"
	"github.com/bvrtu/quakeconnect-data/internal/api"
	"github.com/bvrtu/quakeconnect-data/internal/cache"
	"github.com/bvrtu/quakeconnect-data/internal/config"
	"github.com/bvrtu/quakeconnect-data/internal/db"
	"github.com/bvrtu/quakeconnect-data/internal/news"
	"github.com/bvrtu/quakeconnect-data/internal/notify"
	"github.com/bvrtu/quakeconnect-data/internal/observability"
	"github.com/bvrtu/quakeconnect-data/internal/quake"
	"github.com/bvrtu/quakeconnect-data/internal/safety"
	"github.com/bvrtu/quakeconnect-data/internal/scheduler"
	"github.com/bvrtu/quakeconnect-data/internal/social"
	"github.com/bvrtu/quakeconnect-data/internal/store"
	"github.com/bvrtu/quakeconnect-data/internal/stream"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Load .env if present
	_ = godotenv.Load(".env")

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	logger.Info("Connecting to database...")
	pool, err := db.New(ctx, cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("Database connected",
		"min_conns", cfg.DBPoolMinConns,
		"max_conns", cfg.DBPoolMaxConns)

	appCache := cache.New(cfg.CacheEnabled)
	st := store.New(pool)
	metrics := observability.NewMetrics()

	// Push delivery. A nil sender logs instead of sending, so the service
	// runs without Firebase credentials in development.
	sender, err := notify.NewFCMSender(ctx, cfg.FCMCredentialsFile, logger)
	if err != nil {
		logger.Error("Failed to initialize FCM", "error", err)
		os.Exit(1)
	}
	if sender == nil {
		logger.Info("FCM disabled (no FIREBASE_CREDENTIALS_FILE)")
	}
	gateway := notify.NewGateway(st, sender, logger)

	// Optional Kafka audit stream for accepted alert decisions.
	auditor := stream.NewAuditor(cfg.KafkaBrokers, cfg.KafkaAuditTopic, logger)
	if auditor != nil {
		defer auditor.Close()
		logger.Info("Kafka audit stream enabled", "topic", cfg.KafkaAuditTopic)
	}

	feed := quake.NewClient(cfg.EarthquakeFeedURL)

	scanner := alert.NewScanner(feed, st, st, gateway, logger, alert.ScannerOptions{
		FeedLimit: cfg.FeedLimit,
		Lookback:  cfg.AlertLookback,
		Audit:     auditor,
		Metrics:   metrics,
	})

	matcher := news.NewMatcher(feed, news.NewFetcher(), st, cfg.NewsSources, logger, news.MatcherOptions{
		FeedLimit: cfg.FeedLimit,
		Lookback:  cfg.NewsLookback,
		Metrics:   metrics,
	})

	broadcaster := safety.NewBroadcaster(st, gateway, logger)

	// Background work: pipeline tickers and the social LISTEN/NOTIFY
	// consumer.
	sched := scheduler.New(scanner, matcher, scheduler.Config{
		AlertInterval:     cfg.AlertInterval,
		NewsMatchInterval: cfg.NewsMatchInterval,
	}, logger)
	go sched.Start(ctx)

	fanout := social.NewFanout(st, gateway, logger)
	go social.Start(ctx, cfg.DatabaseURL, fanout, logger)

	router := api.NewRouter(api.Deps{
		DB:          pool,
		Cache:       appCache,
		Cfg:         cfg,
		Feed:        feed,
		NewsReader:  st,
		Scanner:     scanner,
		Matcher:     matcher,
		Broadcaster: broadcaster,
	})

	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting QuakeConnect Data API",
			"addr", addr,
			"environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}
