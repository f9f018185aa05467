package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bvrtu/quakeconnect-data/internal/news"
)

// ListMatchURLs returns the article urls already attached to an earthquake.
func (s *Store) ListMatchURLs(ctx context.Context, earthquakeID string) (map[string]bool, error) {
	rows, err := s.pool.Query(ctx, "list_match_urls", earthquakeID)
	if err != nil {
		return nil, fmt.Errorf("list match urls: %w", err)
	}
	defer rows.Close()

	urls := make(map[string]bool)
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("scan match url: %w", err)
		}
		urls[url] = true
	}
	return urls, rows.Err()
}

// InsertMatch persists one earthquake-news association. Returns false when
// the (earthquake, url) pair already exists.
func (s *Store) InsertMatch(ctx context.Context, m news.Match) (bool, error) {
	var publishedAt *time.Time
	if !m.PublishedAt.IsZero() {
		publishedAt = &m.PublishedAt
	}
	var imageURL *string
	if m.ImageURL != "" {
		imageURL = &m.ImageURL
	}

	tag, err := s.pool.Exec(ctx, "insert_news_match",
		uuid.New(), m.EarthquakeID, m.URL, m.Title, m.Source, publishedAt, imageURL)
	if err != nil {
		return false, fmt.Errorf("insert news match: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// StoredMatch is a persisted earthquake-news association as served by the
// read API.
type StoredMatch struct {
	ID          uuid.UUID  `json:"id"`
	URL         string     `json:"url"`
	Title       string     `json:"title"`
	Source      string     `json:"source"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	ImageURL    string     `json:"image_url,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ListNewsMatches returns all persisted matches for an earthquake, newest
// publish time first.
func (s *Store) ListNewsMatches(ctx context.Context, earthquakeID string) ([]StoredMatch, error) {
	rows, err := s.pool.Query(ctx, "list_news_matches", earthquakeID)
	if err != nil {
		return nil, fmt.Errorf("list news matches: %w", err)
	}
	defer rows.Close()

	var matches []StoredMatch
	for rows.Next() {
		var (
			m        StoredMatch
			imageURL *string
		)
		if err := rows.Scan(&m.ID, &m.URL, &m.Title, &m.Source, &m.PublishedAt, &imageURL, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan news match: %w", err)
		}
		if imageURL != nil {
			m.ImageURL = *imageURL
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}
