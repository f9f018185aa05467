// Package news pulls articles from RSS sources and correlates them with
// earthquake events. Correlation has no shared identifier to lean on: it
// combines keyword, location, magnitude-tolerance, and time-window signals,
// and every rejection branch is tuned to suppress false positives at the
// cost of missing some true matches.
package news

import "time"

// Article is a normalized news item from any source. Transient: persisted
// only when matched to an earthquake.
type Article struct {
	Title       string
	URL         string
	Source      string
	PublishedAt time.Time // zero when the feed gave no parseable date
	Content     string    // description or summary snippet
	ImageURL    string
}

// Match is an accepted (earthquake, article) association, unique on
// (EarthquakeID, URL) and immutable once persisted.
type Match struct {
	EarthquakeID string
	URL          string
	Title        string
	Source       string
	PublishedAt  time.Time
	ImageURL     string
}
