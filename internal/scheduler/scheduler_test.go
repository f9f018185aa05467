package scheduler

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/bvrtu/quakeconnect-data/internal/alert"
	"github.com/bvrtu/quakeconnect-data/internal/news"
)

type notifyingScanner struct{ ran chan struct{} }

func (s *notifyingScanner) Scan(ctx context.Context) alert.Summary {
	s.ran <- struct{}{}
	return alert.Summary{}
}

type notifyingMatcher struct{ ran chan struct{} }

func (m *notifyingMatcher) Run(ctx context.Context) news.Summary {
	m.ran <- struct{}{}
	return news.Summary{}
}

func TestSchedulerRunsPipelinesOnTick(t *testing.T) {
	clock := clockwork.NewFakeClock()
	scanner := &notifyingScanner{ran: make(chan struct{}, 1)}
	matcher := &notifyingMatcher{ran: make(chan struct{}, 1)}

	s := newWithClock(scanner, matcher, Config{
		AlertInterval:     5 * time.Minute,
		NewsMatchInterval: time.Hour,
	}, clock, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Start(ctx)

	// Wait for both tickers to register before advancing.
	clock.BlockUntil(2)

	clock.Advance(5 * time.Minute)
	select {
	case <-scanner.ran:
	case <-time.After(2 * time.Second):
		t.Fatal("scan did not run after one alert interval")
	}

	clock.Advance(55 * time.Minute)
	select {
	case <-matcher.ran:
	case <-time.After(2 * time.Second):
		t.Fatal("news match did not run after one match interval")
	}
}

func TestSchedulerZeroIntervalDisablesPipeline(t *testing.T) {
	clock := clockwork.NewFakeClock()
	scanner := &notifyingScanner{ran: make(chan struct{}, 1)}
	matcher := &notifyingMatcher{ran: make(chan struct{}, 1)}

	s := newWithClock(scanner, matcher, Config{
		AlertInterval:     5 * time.Minute,
		NewsMatchInterval: 0,
	}, clock, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Start(ctx)

	clock.BlockUntil(1)
	clock.Advance(24 * time.Hour)

	select {
	case <-scanner.ran:
	case <-time.After(2 * time.Second):
		t.Fatal("scan did not run")
	}
	select {
	case <-matcher.ran:
		t.Fatal("disabled matcher ran")
	default:
	}
}
