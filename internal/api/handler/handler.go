// Package handler provides HTTP handlers for all API endpoints. Read
// endpoints serve from the in-memory cache with ETag support; trigger
// endpoints run one scheduler job synchronously and return its summary.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/bvrtu/quakeconnect-data/internal/alert"
	"github.com/bvrtu/quakeconnect-data/internal/api/respond"
	"github.com/bvrtu/quakeconnect-data/internal/cache"
	"github.com/bvrtu/quakeconnect-data/internal/config"
	"github.com/bvrtu/quakeconnect-data/internal/news"
	"github.com/bvrtu/quakeconnect-data/internal/quake"
	"github.com/bvrtu/quakeconnect-data/internal/safety"
	"github.com/bvrtu/quakeconnect-data/internal/store"
)

// Collaborator interfaces, faked in handler tests.
type (
	// FeedSource pulls recent earthquakes for the read endpoint.
	FeedSource interface {
		Fetch(ctx context.Context, limit int) ([]quake.Event, error)
	}

	// NewsReader lists persisted earthquake-news matches.
	NewsReader interface {
		ListNewsMatches(ctx context.Context, earthquakeID string) ([]store.StoredMatch, error)
	}

	// ScanRunner runs one alert scan pass.
	ScanRunner interface {
		Scan(ctx context.Context) alert.Summary
	}

	// MatchRunner runs one news correlation pass.
	MatchRunner interface {
		Run(ctx context.Context) news.Summary
	}

	// Broadcaster fans a safety announcement out to emergency contacts.
	Broadcaster interface {
		Send(ctx context.Context, bc safety.Broadcast) (int, error)
	}

	// DBHealth verifies database connectivity.
	DBHealth interface {
		HealthCheck(ctx context.Context) error
	}
)

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	db          DBHealth
	cache       *cache.Cache
	cfg         *config.Config
	feed        FeedSource
	newsReader  NewsReader
	scanner     ScanRunner
	matcher     MatchRunner
	broadcaster Broadcaster
}

// New creates a Handler with shared dependencies.
func New(db DBHealth, c *cache.Cache, cfg *config.Config, feed FeedSource, newsReader NewsReader, scanner ScanRunner, matcher MatchRunner, broadcaster Broadcaster) *Handler {
	return &Handler{
		db:          db,
		cache:       c,
		cfg:         cfg,
		feed:        feed,
		newsReader:  newsReader,
		scanner:     scanner,
		matcher:     matcher,
		broadcaster: broadcaster,
	}
}

// Root serves API info at /.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"name":    "QuakeConnect Data API",
		"version": "1.0.0",
		"status":  "running",
	})
}

// HealthCheck returns basic health status.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB verifies database connectivity.
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	if err := h.db.HealthCheck(r.Context()); err != nil {
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "unhealthy",
			"database":  "disconnected",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckCache returns cache statistics.
func (h *Handler) HealthCheckCache(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"cache":     h.cache.Stats(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
