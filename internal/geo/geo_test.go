package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKm(t *testing.T) {
	istanbul := Coordinates{Lat: 41.0082, Lon: 28.9784}
	ankara := Coordinates{Lat: 39.9334, Lon: 32.8597}
	izmir := Coordinates{Lat: 38.4192, Lon: 27.1287}

	t.Run("identity", func(t *testing.T) {
		assert.Equal(t, 0.0, DistanceKm(istanbul, istanbul))
		assert.Equal(t, 0.0, DistanceKm(Coordinates{}, Coordinates{}))
	})

	t.Run("symmetry", func(t *testing.T) {
		assert.InDelta(t, DistanceKm(istanbul, ankara), DistanceKm(ankara, istanbul), 1e-9)
		assert.InDelta(t, DistanceKm(izmir, ankara), DistanceKm(ankara, izmir), 1e-9)
	})

	t.Run("known distances", func(t *testing.T) {
		// Istanbul-Ankara is ~350 km, Istanbul-Izmir ~330 km.
		assert.InDelta(t, 350, DistanceKm(istanbul, ankara), 10)
		assert.InDelta(t, 330, DistanceKm(istanbul, izmir), 10)
	})

	t.Run("antipodal is half circumference", func(t *testing.T) {
		a := Coordinates{Lat: 0, Lon: 0}
		b := Coordinates{Lat: 0, Lon: 180}
		assert.InDelta(t, math.Pi*earthRadiusKm, DistanceKm(a, b), 1)
	})

	t.Run("NaN propagates", func(t *testing.T) {
		a := Coordinates{Lat: math.NaN(), Lon: 28.97}
		assert.True(t, math.IsNaN(DistanceKm(a, ankara)))
	})
}
