package alert

import (
	"fmt"

	"github.com/bvrtu/quakeconnect-data/internal/geo"
	"github.com/bvrtu/quakeconnect-data/internal/quake"
)

// Decide evaluates one earthquake against one user's preferences. Rules run
// in order: the dedup guard, the push toggle, the magnitude threshold, and
// the proximity override. A quake within proximityRadiusKm of the user's
// home alerts even below their threshold.
func Decide(eq quake.Event, prefs UserPreferences, alreadySent bool) Decision {
	if alreadySent {
		return Decision{Reason: ReasonAlreadySent}
	}
	if !prefs.PushEnabled {
		return Decision{Reason: ReasonPushDisabled}
	}

	shouldNotify := eq.Magnitude >= prefs.MinMagnitude
	reason := ReasonMagnitude

	var distance *float64
	if prefs.NearbyAlerts && prefs.HomeLocation != nil {
		d := geo.DistanceKm(*prefs.HomeLocation, eq.Coords)
		distance = &d
		if d <= proximityRadiusKm {
			if !shouldNotify {
				reason = ReasonProximityOverride
			}
			shouldNotify = true
		}
	}

	if !shouldNotify {
		return Decision{Reason: ReasonBelowThreshold, DistanceKm: distance}
	}
	return Decision{Notify: true, Reason: reason, DistanceKm: distance}
}

// BuildMessage constructs the notification title and body for an earthquake.
// The distance suffix is appended whenever a home location is known,
// independent of whether proximity triggered the alert.
func BuildMessage(eq quake.Event, home *geo.Coordinates) (title, body string) {
	title = "Earthquake Detected"
	if eq.Magnitude >= majorMagnitude {
		title = "Major Earthquake Alert"
	}

	body = fmt.Sprintf("M%.1f earthquake in %s", eq.Magnitude, eq.Location)
	if home != nil {
		body += fmt.Sprintf(" - %.0fkm away", geo.DistanceKm(*home, eq.Coords))
	}
	return title, body
}
