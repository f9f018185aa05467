package alert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bvrtu/quakeconnect-data/internal/geo"
	"github.com/bvrtu/quakeconnect-data/internal/quake"
)

var (
	izmirCoords  = geo.Coordinates{Lat: 38.4192, Lon: 27.1287}
	ankaraCoords = geo.Coordinates{Lat: 39.9334, Lon: 32.8597}
)

func izmirEvent(magnitude float64) quake.Event {
	return quake.Event{
		ID:        "eq-1",
		Magnitude: magnitude,
		Location:  "IZMIR",
		Coords:    izmirCoords,
	}
}

func TestDecide(t *testing.T) {
	t.Run("already sent wins over everything", func(t *testing.T) {
		prefs := DefaultPreferences()
		d := Decide(izmirEvent(7.0), prefs, true)
		assert.False(t, d.Notify)
		assert.Equal(t, ReasonAlreadySent, d.Reason)
	})

	t.Run("push disabled blocks even nearby major quakes", func(t *testing.T) {
		prefs := DefaultPreferences()
		prefs.PushEnabled = false
		prefs.HomeLocation = &izmirCoords
		d := Decide(izmirEvent(7.0), prefs, false)
		assert.False(t, d.Notify)
		assert.Equal(t, ReasonPushDisabled, d.Reason)
	})

	t.Run("magnitude at threshold notifies", func(t *testing.T) {
		prefs := DefaultPreferences()
		prefs.MinMagnitude = 4.0
		d := Decide(izmirEvent(4.0), prefs, false)
		assert.True(t, d.Notify)
		assert.Equal(t, ReasonMagnitude, d.Reason)
		assert.Nil(t, d.DistanceKm)
	})

	t.Run("below threshold without home location", func(t *testing.T) {
		prefs := DefaultPreferences()
		prefs.MinMagnitude = 4.0
		d := Decide(izmirEvent(3.5), prefs, false)
		assert.False(t, d.Notify)
		assert.Equal(t, ReasonBelowThreshold, d.Reason)
	})

	t.Run("proximity overrides the threshold", func(t *testing.T) {
		prefs := DefaultPreferences()
		prefs.MinMagnitude = 5.0
		prefs.HomeLocation = &izmirCoords
		d := Decide(izmirEvent(3.5), prefs, false)
		assert.True(t, d.Notify)
		assert.Equal(t, ReasonProximityOverride, d.Reason)
		require.NotNil(t, d.DistanceKm)
		assert.InDelta(t, 0, *d.DistanceKm, 1)
	})

	t.Run("proximity does not relabel a threshold pass", func(t *testing.T) {
		prefs := DefaultPreferences()
		prefs.HomeLocation = &izmirCoords
		d := Decide(izmirEvent(5.5), prefs, false)
		assert.True(t, d.Notify)
		assert.Equal(t, ReasonMagnitude, d.Reason)
		require.NotNil(t, d.DistanceKm)
	})

	t.Run("distant quake below threshold stays rejected", func(t *testing.T) {
		prefs := DefaultPreferences()
		prefs.MinMagnitude = 4.0
		prefs.HomeLocation = &ankaraCoords // ~330 km from Izmir
		d := Decide(izmirEvent(3.5), prefs, false)
		assert.False(t, d.Notify)
		assert.Equal(t, ReasonBelowThreshold, d.Reason)
		require.NotNil(t, d.DistanceKm)
		assert.Greater(t, *d.DistanceKm, proximityRadiusKm)
	})

	t.Run("nearby alerts off disables the override", func(t *testing.T) {
		prefs := DefaultPreferences()
		prefs.MinMagnitude = 5.0
		prefs.NearbyAlerts = false
		prefs.HomeLocation = &izmirCoords
		d := Decide(izmirEvent(3.5), prefs, false)
		assert.False(t, d.Notify)
		assert.Equal(t, ReasonBelowThreshold, d.Reason)
		assert.Nil(t, d.DistanceKm)
	})

	t.Run("defaults notify at magnitude three", func(t *testing.T) {
		d := Decide(izmirEvent(3.0), DefaultPreferences(), false)
		assert.True(t, d.Notify)
	})
}

func TestBuildMessage(t *testing.T) {
	t.Run("standard title below five", func(t *testing.T) {
		title, body := BuildMessage(izmirEvent(4.2), nil)
		assert.Equal(t, "Earthquake Detected", title)
		assert.Equal(t, "M4.2 earthquake in IZMIR", body)
	})

	t.Run("major title at five and above", func(t *testing.T) {
		title, _ := BuildMessage(izmirEvent(5.0), nil)
		assert.Equal(t, "Major Earthquake Alert", title)
	})

	t.Run("distance suffix whenever home is known", func(t *testing.T) {
		_, body := BuildMessage(izmirEvent(6.3), &ankaraCoords)
		assert.Regexp(t, `^M6\.3 earthquake in IZMIR - \d+km away$`, body)
	})

	t.Run("magnitude rounds to one decimal", func(t *testing.T) {
		_, body := BuildMessage(izmirEvent(4.56), nil)
		assert.Equal(t, "M4.6 earthquake in IZMIR", body)
	})
}
