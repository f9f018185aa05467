// Package config provides centralized configuration loaded from environment
// variables. Shared by both cmd/api and cmd/quakectl.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// --------------------------------------------------------------------------
// News sources
// --------------------------------------------------------------------------

// NewsSource is one RSS endpoint polled by the news matcher.
type NewsSource struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// defaultNewsSources are the national outlets whose general-news feeds
// reliably carry earthquake coverage.
var defaultNewsSources = []NewsSource{
	{Name: "AA", URL: "https://www.aa.com.tr/tr/rss/default?cat=guncel"},
	{Name: "Hurriyet", URL: "https://www.hurriyet.com.tr/rss/gundem"},
	{Name: "CNN Turk", URL: "https://www.cnnturk.com/feed/rss/turkiye/news"},
	{Name: "NTV", URL: "https://www.ntv.com.tr/gundem.rss"},
	{Name: "Sozcu", URL: "https://www.sozcu.com.tr/rss/gundem.xml"},
}

// --------------------------------------------------------------------------
// Config struct — populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// Database
	DatabaseURL    string
	DBPoolMinConns int
	DBPoolMaxConns int
	DBPoolMaxLife  time.Duration

	// API server
	APIHost     string
	APIPort     int
	Environment string // development, staging, production
	Debug       bool

	// Auth for the manual trigger and safety broadcast endpoints.
	InternalAPIKey string

	// CORS
	CORSAllowOrigins []string

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Earthquake feed
	EarthquakeFeedURL string
	FeedLimit         int
	AlertInterval     time.Duration
	AlertLookback     time.Duration

	// News correlation
	NewsSources       []NewsSource
	NewsMatchInterval time.Duration
	NewsLookback      time.Duration

	// Push delivery
	FCMCredentialsFile string

	// Optional Kafka audit stream for accepted decisions.
	KafkaBrokers    []string
	KafkaAuditTopic string

	// Cache
	CacheEnabled bool
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	dbURL := envOr("DATABASE_URL", "")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL must be set")
	}

	sources, err := loadNewsSources()
	if err != nil {
		return nil, err
	}

	return &Config{
		DatabaseURL:    dbURL,
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 2),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 10),
		DBPoolMaxLife:  time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,

		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8000)),
		Environment: envOr("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),

		InternalAPIKey: envOr("INTERNAL_API_KEY", ""),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:8080",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,

		EarthquakeFeedURL: envOr("EARTHQUAKE_FEED_URL", "https://api.orhanaydogdu.com.tr/deprem"),
		FeedLimit:         envInt("EARTHQUAKE_FEED_LIMIT", 10),
		AlertInterval:     time.Duration(envInt("ALERT_INTERVAL_MINUTES", 5)) * time.Minute,
		AlertLookback:     time.Duration(envInt("ALERT_LOOKBACK_MINUTES", 5)) * time.Minute,

		NewsSources:       sources,
		NewsMatchInterval: time.Duration(envInt("NEWS_MATCH_INTERVAL_MINUTES", 60)) * time.Minute,
		NewsLookback:      time.Duration(envInt("NEWS_LOOKBACK_HOURS", 24)) * time.Hour,

		FCMCredentialsFile: envOr("FIREBASE_CREDENTIALS_FILE", ""),

		KafkaBrokers:    envList("KAFKA_BROKERS", nil),
		KafkaAuditTopic: envOr("KAFKA_AUDIT_TOPIC", "quake-decisions"),

		CacheEnabled: envBool("CACHE_ENABLED", true),
	}, nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// loadNewsSources reads sources from NEWS_SOURCES_FILE (YAML) when set,
// otherwise from the built-in list.
func loadNewsSources() ([]NewsSource, error) {
	path := os.Getenv("NEWS_SOURCES_FILE")
	if path == "" {
		return defaultNewsSources, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read news sources file: %w", err)
	}

	var doc struct {
		Sources []NewsSource `yaml:"sources"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse news sources file: %w", err)
	}
	if len(doc.Sources) == 0 {
		return nil, fmt.Errorf("news sources file %s defines no sources", path)
	}
	for _, s := range doc.Sources {
		if s.Name == "" || s.URL == "" {
			return nil, fmt.Errorf("news sources file %s: every source needs name and url", path)
		}
	}
	return doc.Sources, nil
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
