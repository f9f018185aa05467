// Package quake defines the earthquake event model and the client for the
// public earthquake feed.
package quake

import (
	"strconv"
	"time"

	"github.com/bvrtu/quakeconnect-data/internal/geo"
)

// Event is a single earthquake observation from the feed. Events are value
// objects: constructed fresh on every poll and never mutated. Only decision
// outcomes about an event are persisted, not the event itself.
type Event struct {
	ID         string
	Magnitude  float64
	Location   string
	Coords     geo.Coordinates
	OccurredAt time.Time
}

// DeriveID builds a stable identifier from coordinates and occurrence time,
// used when the feed supplies no native id. Given identical inputs the
// output is byte-identical across fetches, which is what makes the
// (user, earthquake) dedup key reliable.
func DeriveID(lat, lon float64, occurredAt time.Time) string {
	return strconv.FormatFloat(lat, 'g', -1, 64) +
		"_" + strconv.FormatFloat(lon, 'g', -1, 64) +
		"_" + strconv.FormatInt(occurredAt.UnixMilli(), 10)
}
