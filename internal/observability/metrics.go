// Package observability holds the Prometheus instrumentation for the alert
// and news-correlation pipelines.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for both scheduled
// pipelines.
type Metrics struct {
	// Alert pipeline.
	ScanRuns        prometheus.Counter
	AlertsSent      prometheus.Counter
	AlertSendErrors prometheus.Counter
	FeedErrors      prometheus.Counter

	// News correlation pipeline.
	MatchRuns        prometheus.Counter
	ArticlesFetched  prometheus.Counter
	MatchesPersisted prometheus.Counter
	SourceErrors     *prometheus.CounterVec // labels: source
	MatchRunDuration prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.ScanRuns,
		m.AlertsSent,
		m.AlertSendErrors,
		m.FeedErrors,
		m.MatchRuns,
		m.ArticlesFetched,
		m.MatchesPersisted,
		m.SourceErrors,
		m.MatchRunDuration,
	)
	return m
}

// NewMetricsForTesting creates Metrics without touching the default registry
// to avoid "already registered" panics across tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ScanRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quakeconnect",
			Name:      "scan_runs_total",
			Help:      "Completed earthquake scan invocations.",
		}),
		AlertsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quakeconnect",
			Name:      "alerts_sent_total",
			Help:      "Earthquake notifications accepted and dispatched.",
		}),
		AlertSendErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quakeconnect",
			Name:      "alert_send_errors_total",
			Help:      "Notification deliveries that failed.",
		}),
		FeedErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quakeconnect",
			Name:      "feed_errors_total",
			Help:      "Earthquake feed fetches that failed or returned an invalid shape.",
		}),
		MatchRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quakeconnect",
			Name:      "news_match_runs_total",
			Help:      "Completed news correlation invocations.",
		}),
		ArticlesFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quakeconnect",
			Name:      "news_articles_fetched_total",
			Help:      "Articles pulled from all configured news sources.",
		}),
		MatchesPersisted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quakeconnect",
			Name:      "news_matches_persisted_total",
			Help:      "Newly persisted earthquake-news matches.",
		}),
		SourceErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quakeconnect",
			Name:      "news_source_errors_total",
			Help:      "News source fetches that failed, by source.",
		}, []string{"source"}),
		MatchRunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "quakeconnect",
			Name:      "news_match_run_duration_seconds",
			Help:      "Duration of a complete news correlation run.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
	}
}
