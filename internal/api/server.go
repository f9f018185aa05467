package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	corslib "github.com/rs/cors"

	"github.com/bvrtu/quakeconnect-data/internal/api/handler"
	"github.com/bvrtu/quakeconnect-data/internal/cache"
	"github.com/bvrtu/quakeconnect-data/internal/config"
)

// Deps bundles everything the router needs.
type Deps struct {
	DB          handler.DBHealth
	Cache       *cache.Cache
	Cfg         *config.Config
	Feed        handler.FeedSource
	NewsReader  handler.NewsReader
	Scanner     handler.ScanRunner
	Matcher     handler.MatchRunner
	Broadcaster handler.Broadcaster
}

// NewRouter creates and configures the chi router with all middleware and
// routes.
func NewRouter(deps Deps) *chi.Mux {
	cfg := deps.Cfg
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(TimingMiddleware)
	r.Use(middleware.Compress(5)) // gzip

	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Authorization", "Content-Type", "If-None-Match", "Cache-Control"},
		ExposedHeaders:   []string{"X-Process-Time", "X-Cache", "ETag"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	if cfg.RateLimitEnabled {
		r.Use(RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}

	h := handler.New(deps.DB, deps.Cache, cfg, deps.Feed, deps.NewsReader, deps.Scanner, deps.Matcher, deps.Broadcaster)

	// --- Routes ---
	r.Get("/", h.Root)

	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.HealthCheck)
		r.Get("/db", h.HealthCheckDB)
		r.Get("/cache", h.HealthCheckCache)
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/earthquakes", h.GetEarthquakes)
		r.Get("/earthquakes/{earthquakeID}/news", h.GetEarthquakeNews)

		// Internal trigger endpoints
		r.Group(func(r chi.Router) {
			r.Use(InternalAuthMiddleware(cfg.InternalAPIKey))
			r.Post("/alerts/scan", h.TriggerScan)
			r.Post("/news/match", h.TriggerNewsMatch)
			r.Post("/safety/broadcast", h.SafetyBroadcast)
		})

		// Unauthenticated correlation trigger for development flows.
		if !cfg.IsProduction() {
			r.Post("/news/match/test", h.TriggerNewsMatch)
		}
	})

	return r
}
