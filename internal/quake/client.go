package quake

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bvrtu/quakeconnect-data/internal/geo"
)

const fetchTimeout = 15 * time.Second

// Date layouts the feed has been observed to use, most common first.
var dateLayouts = []string{
	"2006.01.02 15:04:05",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// Client pulls recent earthquakes from the public feed.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a feed client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: fetchTimeout},
	}
}

// feedResponse is the feed envelope. status != true or a missing result
// list is treated as a fetch failure.
type feedResponse struct {
	Status bool         `json:"status"`
	Result []feedRecord `json:"result"`
}

// feedRecord is one raw earthquake row. The feed is inconsistent about
// numeric types (sometimes quoted) and about the date field name, so the
// record absorbs both shapes.
type feedRecord struct {
	EarthquakeID string    `json:"earthquake_id"`
	Magnitude    flexFloat `json:"magnitude"`
	Latitude     flexFloat `json:"latitude"`
	Longitude    flexFloat `json:"longitude"`
	Location     string    `json:"location"`
	Date         string    `json:"date"`
	DateTime     string    `json:"date_time"`
}

// flexFloat decodes a JSON number that may arrive quoted.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("parse float %q: %w", s, err)
	}
	*f = flexFloat(v)
	return nil
}

// Fetch returns up to limit recent earthquakes, newest first as served by
// the feed. Records without a parseable date are skipped.
func (c *Client) Fetch(ctx context.Context, limit int) ([]Event, error) {
	u := fmt.Sprintf("%s?%s", c.baseURL, url.Values{"limit": {strconv.Itoa(limit)}}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("earthquake feed fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("earthquake feed HTTP %d", resp.StatusCode)
	}

	var feed feedResponse
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("earthquake feed decode: %w", err)
	}
	if !feed.Status || feed.Result == nil {
		return nil, fmt.Errorf("earthquake feed returned invalid response")
	}

	events := make([]Event, 0, len(feed.Result))
	for _, rec := range feed.Result {
		occurredAt, ok := parseDate(rec.Date, rec.DateTime)
		if !ok {
			continue
		}

		id := rec.EarthquakeID
		if id == "" {
			id = DeriveID(float64(rec.Latitude), float64(rec.Longitude), occurredAt)
		}

		events = append(events, Event{
			ID:        id,
			Magnitude: float64(rec.Magnitude),
			Location:  rec.Location,
			Coords: geo.Coordinates{
				Lat: float64(rec.Latitude),
				Lon: float64(rec.Longitude),
			},
			OccurredAt: occurredAt,
		})
	}
	return events, nil
}

// parseDate tries the primary and alternate date fields against all known
// layouts.
func parseDate(date, dateTime string) (time.Time, bool) {
	for _, raw := range []string{date, dateTime} {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				return t.UTC(), true
			}
		}
	}
	return time.Time{}, false
}
