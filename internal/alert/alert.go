// Package alert decides which subscribed users are notified about which
// earthquakes and drives delivery.
//
// Pipeline: fetch feed → window filter → per-user eligibility → dedup check
// → gateway send → persist sent record. Decide and BuildMessage are pure;
// only the scanner writes state, and only after a positive decision.
package alert

import (
	"fmt"
	"time"

	"github.com/bvrtu/quakeconnect-data/internal/geo"
)

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

const (
	// proximityRadiusKm is the distance within which a quake alerts a user
	// regardless of their magnitude threshold.
	proximityRadiusKm = 200.0

	// majorMagnitude switches the notification title to the urgent variant.
	majorMagnitude = 5.0

	// DefaultMinMagnitude applies when a user has no settings record.
	DefaultMinMagnitude = 3.0
)

// Decision reasons.
const (
	ReasonAlreadySent       = "already_sent"
	ReasonPushDisabled      = "push_disabled"
	ReasonBelowThreshold    = "below_threshold"
	ReasonMagnitude         = "magnitude_threshold"
	ReasonProximityOverride = "proximity_override"
)

// --------------------------------------------------------------------------
// Types
// --------------------------------------------------------------------------

// UserPreferences is the per-user notification preference state, read-only
// to this package.
type UserPreferences struct {
	PushEnabled      bool
	MinMagnitude     float64
	NearbyAlerts     bool
	CommunityUpdates bool

	// HomeLocation is set only when the user shares their location.
	HomeLocation *geo.Coordinates
}

// DefaultPreferences returns the preferences applied when a user has no
// stored settings record.
func DefaultPreferences() UserPreferences {
	return UserPreferences{
		PushEnabled:      true,
		MinMagnitude:     DefaultMinMagnitude,
		NearbyAlerts:     true,
		CommunityUpdates: true,
	}
}

// Decision is the outcome of evaluating one earthquake against one user.
type Decision struct {
	Notify bool
	Reason string

	// DistanceKm is set when a home location was available, whether or not
	// proximity was the trigger.
	DistanceKm *float64
}

// SentRecord marks that a notification went out for a (user, earthquake)
// pair. Existence of the record is the sole dedup signal.
type SentRecord struct {
	UserID       string
	EarthquakeID string
	Magnitude    float64
	Location     string
	SentAt       time.Time
}

// Subscriber is a user eligible for scanning: has a device token, and may
// have a shared home location.
type Subscriber struct {
	ID   string
	Home *geo.Coordinates
}

// Summary aggregates one scan run.
type Summary struct {
	EventsFetched  int
	EventsInWindow int
	UsersChecked   int
	Notified       int
	Errors         []string
	Duration       time.Duration
}

// AddErrorf records a formatted error message.
func (s *Summary) AddErrorf(format string, args ...interface{}) {
	s.Errors = append(s.Errors, fmt.Sprintf(format, args...))
}

// String returns a human-readable summary of the scan run.
func (s *Summary) String() string {
	return fmt.Sprintf(
		"events=%d in_window=%d users=%d notified=%d errors=%d",
		s.EventsFetched, s.EventsInWindow, s.UsersChecked, s.Notified, len(s.Errors),
	)
}
