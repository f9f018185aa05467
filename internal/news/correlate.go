package news

import (
	"strings"
	"time"

	"github.com/bvrtu/quakeconnect-data/internal/quake"
)

const (
	// magnitudeTolerance absorbs inter-agency measurement disagreement.
	magnitudeTolerance = 0.3

	// unstatedMagnitudeFloor: when an article states no magnitude, only
	// major events are accepted on location and keywords alone.
	unstatedMagnitudeFloor = 4.5

	// publishWindow is the maximum gap between the quake and the article.
	publishWindow = 12 * time.Hour
)

// strongKeywords alone establish earthquake-relatedness.
var strongKeywords = []string{
	"deprem", "zelzele", "earthquake", "quake",
}

// weakKeywords indicate earthquake-relatedness only in combination; two or
// more are required when no strong keyword is present.
var weakKeywords = []string{
	"sarsıntı", "sarsinti", "artçı", "aftershock", "tremor",
	"richter", "büyüklüğünde", "magnitude",
	"kandilli", "afad", "sismik", "seismic",
	"fay hattı", "episantr", "epicenter",
}

// negativeKeywords mark weather and other unrelated-disaster stories that
// share vocabulary with earthquake coverage.
var negativeKeywords = []string{
	"hava durumu", "weather",
	"yağmur", "rain", "kar yağışı", "snow",
	"fırtına", "storm", "sel", "flood",
	"sis", "fog", "heyelan", "landslide",
}

// IsRelated decides whether one news article is about one earthquake event.
// The checks run in a fixed order and every rejection suppresses false
// positives; a missed true match is acceptable, a wrong attachment is not.
func IsRelated(article Article, eq quake.Event) bool {
	combined := foldLower(article.Title + " " + article.Content)

	hasStrong := containsAny(combined, strongKeywords)
	hasMultipleWeak := countPresent(combined, weakKeywords) >= 2
	if !hasStrong && !hasMultipleWeak {
		return false
	}

	// Location match is mandatory; nothing below substitutes for it.
	locationKeywords := ExtractLocationKeywords(eq.Location)
	if len(locationKeywords) == 0 || !containsAny(combined, locationKeywords) {
		return false
	}

	// Magnitude runs on the original-case text so the M-prefix pattern
	// still applies.
	if newsMagnitude, ok := ExtractMagnitude(article.Title + " " + article.Content); ok {
		diff := newsMagnitude - eq.Magnitude
		if diff < -magnitudeTolerance || diff > magnitudeTolerance {
			return false
		}
	} else if eq.Magnitude < unstatedMagnitudeFloor {
		return false
	}

	// Articles with no parseable publish time cannot be checked temporally.
	if !article.PublishedAt.IsZero() {
		gap := article.PublishedAt.Sub(eq.OccurredAt)
		if gap < -publishWindow || gap > publishWindow {
			return false
		}
	}

	if !hasStrong && containsAny(combined, negativeKeywords) {
		return false
	}

	return true
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func countPresent(text string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			n++
		}
	}
	return n
}
