package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bvrtu/quakeconnect-data/internal/api/respond"
	"github.com/bvrtu/quakeconnect-data/internal/cache"
	"github.com/bvrtu/quakeconnect-data/internal/quake"
	"github.com/bvrtu/quakeconnect-data/internal/store"
)

// earthquakeDTO is the wire shape of one event on the read API.
type earthquakeDTO struct {
	ID         string    `json:"id"`
	Magnitude  float64   `json:"magnitude"`
	Location   string    `json:"location"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	OccurredAt time.Time `json:"occurred_at"`
}

func toDTO(events []quake.Event) []earthquakeDTO {
	dtos := make([]earthquakeDTO, len(events))
	for i, eq := range events {
		dtos[i] = earthquakeDTO{
			ID:         eq.ID,
			Magnitude:  eq.Magnitude,
			Location:   eq.Location,
			Latitude:   eq.Coords.Lat,
			Longitude:  eq.Coords.Lon,
			OccurredAt: eq.OccurredAt,
		}
	}
	return dtos
}

// GetEarthquakes serves the recent earthquake list, cached against the
// upstream feed.
func (h *Handler) GetEarthquakes(w http.ResponseWriter, r *http.Request) {
	cacheKey := fmt.Sprintf("earthquakes:%d", h.cfg.FeedLimit)
	if data, etag, ok := h.cache.Get(cacheKey); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, cache.TTLEarthquakes, true)
		return
	}

	events, err := h.feed.Fetch(r.Context(), h.cfg.FeedLimit)
	if err != nil {
		respond.WriteError(w, http.StatusBadGateway, "FEED_UNAVAILABLE",
			"earthquake feed fetch failed")
		return
	}

	data, err := json.Marshal(map[string]interface{}{
		"count":  len(events),
		"result": toDTO(events),
	})
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "ENCODING_FAILED",
			"response encoding failed")
		return
	}

	etag := h.cache.Set(cacheKey, data, cache.TTLEarthquakes)
	if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
		respond.WriteNotModified(w, etag)
		return
	}
	respond.WriteJSON(w, data, etag, cache.TTLEarthquakes, false)
}

// GetEarthquakeNews serves the persisted news matches for one earthquake.
func (h *Handler) GetEarthquakeNews(w http.ResponseWriter, r *http.Request) {
	earthquakeID := chi.URLParam(r, "earthquakeID")
	if earthquakeID == "" {
		respond.WriteError(w, http.StatusBadRequest, "MISSING_EARTHQUAKE_ID",
			"earthquake id is required")
		return
	}

	cacheKey := "earthquake_news:" + earthquakeID
	if data, etag, ok := h.cache.Get(cacheKey); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, cache.TTLNewsMatches, true)
		return
	}

	matches, err := h.newsReader.ListNewsMatches(r.Context(), earthquakeID)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "QUERY_FAILED",
			"news match lookup failed")
		return
	}
	if matches == nil {
		matches = []store.StoredMatch{}
	}

	data, err := json.Marshal(map[string]interface{}{
		"earthquake_id": earthquakeID,
		"count":         len(matches),
		"result":        matches,
	})
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "ENCODING_FAILED",
			"response encoding failed")
		return
	}

	etag := h.cache.Set(cacheKey, data, cache.TTLNewsMatches)
	respond.WriteJSON(w, data, etag, cache.TTLNewsMatches, false)
}
