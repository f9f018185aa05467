package news

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/bvrtu/quakeconnect-data/internal/config"
	"github.com/bvrtu/quakeconnect-data/internal/observability"
	"github.com/bvrtu/quakeconnect-data/internal/quake"
)

// EventSource pulls recent earthquakes for correlation.
type EventSource interface {
	Fetch(ctx context.Context, limit int) ([]quake.Event, error)
}

// SourceFetcher pulls articles from one RSS source. *Fetcher implements it.
type SourceFetcher interface {
	Fetch(ctx context.Context, src config.NewsSource) ([]Article, error)
}

// MatchStore owns the persisted earthquake-news associations.
type MatchStore interface {
	// ListMatchURLs returns the urls already attached to an earthquake.
	ListMatchURLs(ctx context.Context, earthquakeID string) (map[string]bool, error)
	// InsertMatch persists a match; returns false when the (earthquake, url)
	// pair already exists.
	InsertMatch(ctx context.Context, m Match) (bool, error)
}

// Summary aggregates one correlation run.
type Summary struct {
	EarthquakesChecked int
	ArticlesFetched    int
	Matched            int
	Errors             []string
	Duration           time.Duration
}

// AddErrorf records a formatted error message.
func (s *Summary) AddErrorf(format string, args ...interface{}) {
	s.Errors = append(s.Errors, fmt.Sprintf(format, args...))
}

// String returns a human-readable summary of the run.
func (s *Summary) String() string {
	return fmt.Sprintf("earthquakes=%d articles=%d matched=%d errors=%d",
		s.EarthquakesChecked, s.ArticlesFetched, s.Matched, len(s.Errors))
}

// Matcher correlates recent earthquakes with articles from all configured
// sources and persists accepted matches idempotently.
type Matcher struct {
	events  EventSource
	fetcher SourceFetcher
	store   MatchStore
	sources []config.NewsSource

	feedLimit int
	lookback  time.Duration
	clock     clockwork.Clock
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// MatcherOptions configures optional Matcher collaborators.
type MatcherOptions struct {
	FeedLimit int           // defaults to 50
	Lookback  time.Duration // defaults to 24 hours
	Clock     clockwork.Clock
	Metrics   *observability.Metrics
}

// NewMatcher wires a Matcher from its collaborators.
func NewMatcher(events EventSource, fetcher SourceFetcher, store MatchStore, sources []config.NewsSource, logger *slog.Logger, opts MatcherOptions) *Matcher {
	if opts.FeedLimit <= 0 {
		opts.FeedLimit = 50
	}
	if opts.Lookback <= 0 {
		opts.Lookback = 24 * time.Hour
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	return &Matcher{
		events:    events,
		fetcher:   fetcher,
		store:     store,
		sources:   sources,
		feedLimit: opts.FeedLimit,
		lookback:  opts.Lookback,
		clock:     opts.Clock,
		logger:    logger,
		metrics:   opts.Metrics,
	}
}

// Run executes one correlation pass: pending earthquakes × all fetched
// articles. Invoking Run twice with the same inputs persists nothing new.
// A failed source is skipped for this run; the next scheduled run retries
// it naturally.
func (m *Matcher) Run(ctx context.Context) Summary {
	start := m.clock.Now()
	var sum Summary
	defer func() {
		sum.Duration = m.clock.Since(start)
		if m.metrics != nil {
			m.metrics.MatchRuns.Inc()
			m.metrics.MatchRunDuration.Observe(sum.Duration.Seconds())
		}
	}()

	events, err := m.events.Fetch(ctx, m.feedLimit)
	if err != nil {
		m.logger.Error("earthquake feed fetch failed", "error", err)
		if m.metrics != nil {
			m.metrics.FeedErrors.Inc()
		}
		sum.AddErrorf("fetch feed: %v", err)
		return sum
	}

	cutoff := start.Add(-m.lookback)
	pending := events[:0:0]
	for _, eq := range events {
		if eq.ID == "" || eq.OccurredAt.Before(cutoff) {
			continue
		}
		pending = append(pending, eq)
	}
	sum.EarthquakesChecked = len(pending)
	if len(pending) == 0 {
		m.logger.Info("no pending earthquakes for news correlation")
		return sum
	}

	articles := m.fetchAllSources(ctx, &sum)
	sum.ArticlesFetched = len(articles)
	if m.metrics != nil {
		m.metrics.ArticlesFetched.Add(float64(len(articles)))
	}

	for _, eq := range pending {
		existing, err := m.store.ListMatchURLs(ctx, eq.ID)
		if err != nil {
			m.logger.Warn("list existing matches failed", "earthquake_id", eq.ID, "error", err)
			sum.AddErrorf("earthquake %s: list matches: %v", eq.ID, err)
			continue
		}

		for _, article := range articles {
			if existing[article.URL] || !IsRelated(article, eq) {
				continue
			}

			inserted, err := m.store.InsertMatch(ctx, Match{
				EarthquakeID: eq.ID,
				URL:          article.URL,
				Title:        article.Title,
				Source:       article.Source,
				PublishedAt:  article.PublishedAt,
				ImageURL:     article.ImageURL,
			})
			if err != nil {
				m.logger.Warn("persist match failed",
					"earthquake_id", eq.ID, "url", article.URL, "error", err)
				sum.AddErrorf("earthquake %s: persist %s: %v", eq.ID, article.URL, err)
				continue
			}
			existing[article.URL] = true
			if inserted {
				sum.Matched++
				m.logger.Info("news match persisted",
					"earthquake_id", eq.ID, "source", article.Source, "url", article.URL)
			}
		}
	}

	if m.metrics != nil {
		m.metrics.MatchesPersisted.Add(float64(sum.Matched))
	}
	m.logger.Info("news correlation complete", "summary", sum.String())
	return sum
}

// fetchAllSources pulls every configured source concurrently. One source's
// failure never blocks the others.
func (m *Matcher) fetchAllSources(ctx context.Context, sum *Summary) []Article {
	type result struct {
		source   string
		articles []Article
		err      error
	}

	ch := make(chan result, len(m.sources))
	var wg sync.WaitGroup
	for _, src := range m.sources {
		wg.Add(1)
		go func(src config.NewsSource) {
			defer wg.Done()
			articles, err := m.fetcher.Fetch(ctx, src)
			ch <- result{source: src.Name, articles: articles, err: err}
		}(src)
	}
	wg.Wait()
	close(ch)

	var all []Article
	for res := range ch {
		if res.err != nil {
			m.logger.Warn("news source fetch failed", "source", res.source, "error", res.err)
			if m.metrics != nil {
				m.metrics.SourceErrors.WithLabelValues(res.source).Inc()
			}
			sum.AddErrorf("source %s: %v", res.source, res.err)
			continue
		}
		all = append(all, res.articles...)
	}
	return all
}
