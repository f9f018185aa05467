// Command quakectl is the QuakeConnect operations CLI. Each subcommand runs
// one pipeline pass and exits, for backfills and debugging outside the
// scheduled tickers.
//
// Usage:
//
//	quakectl scan
//	quakectl matchnews
//	quakectl feed --limit 20
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/bvrtu/quakeconnect-data/internal/alert"
	"github.com/bvrtu/quakeconnect-data/internal/config"
	"github.com/bvrtu/quakeconnect-data/internal/db"
	"github.com/bvrtu/quakeconnect-data/internal/news"
	"github.com/bvrtu/quakeconnect-data/internal/notify"
	"github.com/bvrtu/quakeconnect-data/internal/quake"
	"github.com/bvrtu/quakeconnect-data/internal/store"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "quakectl",
		Short: "QuakeConnect operations CLI",
	}

	root.AddCommand(scanCmd())
	root.AddCommand(matchNewsCmd())
	root.AddCommand(feedCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// scan command
// --------------------------------------------------------------------------

func scanCmd() *cobra.Command {
	var lookbackMin int
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run one earthquake alert scan",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithPool(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				st := store.New(pool)
				sender, err := notify.NewFCMSender(ctx, cfg.FCMCredentialsFile, logger)
				if err != nil {
					return fmt.Errorf("initialize FCM: %w", err)
				}
				gateway := notify.NewGateway(st, sender, logger)
				feed := quake.NewClient(cfg.EarthquakeFeedURL)

				scanner := alert.NewScanner(feed, st, st, gateway, logger, alert.ScannerOptions{
					FeedLimit: cfg.FeedLimit,
					Lookback:  time.Duration(lookbackMin) * time.Minute,
				})

				start := time.Now()
				sum := scanner.Scan(ctx)
				logger.Info("Scan finished",
					"duration", time.Since(start).Round(time.Millisecond),
					"summary", sum.String())
				for _, e := range sum.Errors {
					logger.Error("scan error", "error", e)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&lookbackMin, "lookback", 5, "Event window in minutes")
	return cmd
}

// --------------------------------------------------------------------------
// matchnews command
// --------------------------------------------------------------------------

func matchNewsCmd() *cobra.Command {
	var lookbackHours int
	cmd := &cobra.Command{
		Use:   "matchnews",
		Short: "Run one news correlation pass",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithPool(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				st := store.New(pool)
				feed := quake.NewClient(cfg.EarthquakeFeedURL)

				matcher := news.NewMatcher(feed, news.NewFetcher(), st, cfg.NewsSources, logger, news.MatcherOptions{
					FeedLimit: cfg.FeedLimit,
					Lookback:  time.Duration(lookbackHours) * time.Hour,
				})

				start := time.Now()
				sum := matcher.Run(ctx)
				logger.Info("News correlation finished",
					"duration", time.Since(start).Round(time.Millisecond),
					"summary", sum.String())
				for _, e := range sum.Errors {
					logger.Error("correlation error", "error", e)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&lookbackHours, "lookback", 24, "Earthquake window in hours")
	return cmd
}

// --------------------------------------------------------------------------
// feed command
// --------------------------------------------------------------------------

func feedCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Print recent earthquakes from the feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			events, err := quake.NewClient(cfg.EarthquakeFeedURL).Fetch(ctx, limit)
			if err != nil {
				return fmt.Errorf("fetch feed: %w", err)
			}
			for _, eq := range events {
				fmt.Printf("%s  M%.1f  %-40s  %s\n",
					eq.OccurredAt.Format(time.RFC3339), eq.Magnitude, eq.Location, eq.ID)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "Max events to fetch")
	return cmd
}

// --------------------------------------------------------------------------

func runWithPool(fn func(ctx context.Context, cfg *config.Config, pool *db.Pool) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	pool, err := db.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	return fn(ctx, cfg, pool)
}
