package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedRoundTrip(t *testing.T) {
	cases := []float64{0, 45.123456, -122.654321, 1e-7, -89.9999999}
	for _, deg := range cases {
		got := ToFixed(deg).ToFloat()
		assert.InDelta(t, deg, got, 1e-7, "round trip for %v", deg)
	}
}

func TestSegmentFractionClamped(t *testing.T) {
	a := Point{X: 0, Y: 0}
	b := Point{X: 10, Y: 0}

	require.Equal(t, 0.0, SegmentFraction(a, b, Point{X: -5, Y: 0}, 1))
	require.Equal(t, 1.0, SegmentFraction(a, b, Point{X: 15, Y: 0}, 1))
	require.InDelta(t, 0.5, SegmentFraction(a, b, Point{X: 5, Y: 1}, 1), 1e-9)
}

func TestSegmentFractionDegenerate(t *testing.T) {
	p := Point{X: 1, Y: 1}
	assert.Equal(t, 0.0, SegmentFraction(p, p, Point{X: 5, Y: 5}, 1))
}

func TestHaversineKnownDistance(t *testing.T) {
	// Roughly 1 degree of latitude near the equator is ~111.19 km.
	d := HaversineMeters(0, 0, 1, 0)
	assert.InDelta(t, 111194.9, d, 100)
}

func TestPlanarDistanceMatchesHaversineNearby(t *testing.T) {
	planar := PlanarDistanceMeters(37.7749, -122.4194, 37.7750, -122.4195)
	spherical := HaversineMeters(37.7749, -122.4194, 37.7750, -122.4195)
	assert.InDelta(t, spherical, planar, 1.0)
}

func TestCosLatBounds(t *testing.T) {
	assert.InDelta(t, 1.0, CosLat(0), 1e-9)
	assert.InDelta(t, 0.0, CosLat(90), 1e-9)
	assert.True(t, math.Abs(CosLat(45)-0.70710678) < 1e-6)
}
