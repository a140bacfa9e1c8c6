package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineKm(t *testing.T) {
	t.Run("zero distance for identical points", func(t *testing.T) {
		assert.Equal(t, 0.0, haversineKm(30.0478, 31.2336, 30.0478, 31.2336))
	})

	t.Run("symmetric", func(t *testing.T) {
		d1 := haversineKm(30.0478, 31.2336, 31.2089, 29.9092)
		d2 := haversineKm(31.2089, 29.9092, 30.0478, 31.2336)
		assert.InDelta(t, d1, d2, 1e-9)
	})

	t.Run("cairo to alexandria", func(t *testing.T) {
		// Egyptian Museum Tahrir to Bibliotheca Alexandrina, roughly 181 km.
		d := haversineKm(30.0478, 31.2336, 31.2089, 29.9092)
		assert.InDelta(t, 181, d, 5)
	})

	t.Run("always non-negative", func(t *testing.T) {
		assert.GreaterOrEqual(t, haversineKm(-30, -31, 30, 31), 0.0)
	})
}

func TestMidpoint(t *testing.T) {
	t.Run("midpoint of identical points is the point", func(t *testing.T) {
		lat, lon := midpoint(25.7188, 32.6573, 25.7188, 32.6573)
		assert.InDelta(t, 25.7188, lat, 1e-9)
		assert.InDelta(t, 32.6573, lon, 1e-9)
	})

	t.Run("midpoint lies between the endpoints", func(t *testing.T) {
		lat, lon := midpoint(30.0478, 31.2336, 31.2089, 29.9092)
		assert.Greater(t, lat, 30.0478)
		assert.Less(t, lat, 31.2089)
		assert.Greater(t, lon, 29.9092)
		assert.Less(t, lon, 31.2336)
	})

	t.Run("roughly equidistant from both endpoints", func(t *testing.T) {
		lat, lon := midpoint(30.0478, 31.2336, 31.2089, 29.9092)
		d1 := haversineKm(30.0478, 31.2336, lat, lon)
		d2 := haversineKm(31.2089, 29.9092, lat, lon)
		assert.InDelta(t, d1, d2, 0.1)
	})
}
