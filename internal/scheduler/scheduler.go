// Package scheduler drives the periodic pipelines as Go tickers. The
// service is already persistent for LISTEN/NOTIFY, so all scheduled work
// runs in-process instead of under an external cron.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/bvrtu/quakeconnect-data/internal/alert"
	"github.com/bvrtu/quakeconnect-data/internal/news"
)

// ScanRunner runs one alert scan pass.
type ScanRunner interface {
	Scan(ctx context.Context) alert.Summary
}

// MatchRunner runs one news correlation pass.
type MatchRunner interface {
	Run(ctx context.Context) news.Summary
}

// Config controls pipeline intervals. Zero duration disables a pipeline.
type Config struct {
	AlertInterval     time.Duration
	NewsMatchInterval time.Duration
}

// Scheduler owns the pipeline tickers.
type Scheduler struct {
	scanner ScanRunner
	matcher MatchRunner
	cfg     Config
	clock   clockwork.Clock
	logger  *slog.Logger
}

// New wires a Scheduler.
func New(scanner ScanRunner, matcher MatchRunner, cfg Config, logger *slog.Logger) *Scheduler {
	return newWithClock(scanner, matcher, cfg, clockwork.NewRealClock(), logger)
}

func newWithClock(scanner ScanRunner, matcher MatchRunner, cfg Config, clock clockwork.Clock, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		scanner: scanner,
		matcher: matcher,
		cfg:     cfg,
		clock:   clock,
		logger:  logger,
	}
}

// Start launches the configured tickers and blocks until ctx is cancelled.
// Intended to be called with `go`.
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("pipeline tickers started",
		"alert_interval", s.cfg.AlertInterval,
		"news_match_interval", s.cfg.NewsMatchInterval)

	var tickers []clockwork.Ticker
	defer func() {
		for _, t := range tickers {
			t.Stop()
		}
	}()

	if s.cfg.AlertInterval > 0 {
		t := s.clock.NewTicker(s.cfg.AlertInterval)
		tickers = append(tickers, t)
		go s.runLoop(ctx, t.Chan(), func() {
			sum := s.scanner.Scan(ctx)
			s.logger.Info("scheduled scan finished", "summary", sum.String())
		})
	}

	if s.cfg.NewsMatchInterval > 0 {
		t := s.clock.NewTicker(s.cfg.NewsMatchInterval)
		tickers = append(tickers, t)
		go s.runLoop(ctx, t.Chan(), func() {
			sum := s.matcher.Run(ctx)
			s.logger.Info("scheduled news match finished", "summary", sum.String())
		})
	}

	<-ctx.Done()
	s.logger.Info("pipeline tickers stopped")
}

func (s *Scheduler) runLoop(ctx context.Context, ch <-chan time.Time, fn func()) {
	for {
		select {
		case <-ch:
			fn()
		case <-ctx.Done():
			return
		}
	}
}
