package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance_IdenticalPoints(t *testing.T) {
	points := []Point{
		{Latitude: 0, Longitude: 0},
		{Latitude: 51.5074, Longitude: -0.1278},
		{Latitude: -90, Longitude: 0},
		{Latitude: 45, Longitude: 180},
	}

	for _, p := range points {
		assert.InDelta(t, 0, Distance(p, p), 1e-9)
	}
}

func TestDistance_Symmetry(t *testing.T) {
	tests := []struct {
		name   string
		p1, p2 Point
	}{
		{
			name: "London and Paris",
			p1:   Point{Latitude: 51.5074, Longitude: -0.1278},
			p2:   Point{Latitude: 48.8566, Longitude: 2.3522},
		},
		{
			name: "Across the equator",
			p1:   Point{Latitude: -33.8688, Longitude: 151.2093},
			p2:   Point{Latitude: 35.6762, Longitude: 139.6503},
		},
		{
			name: "Across the antimeridian",
			p1:   Point{Latitude: 0, Longitude: 179.9},
			p2:   Point{Latitude: 0, Longitude: -179.9},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, Distance(tt.p1, tt.p2), Distance(tt.p2, tt.p1))
		})
	}
}

func TestDistance_KnownDistances(t *testing.T) {
	tests := []struct {
		name     string
		p1, p2   Point
		wantKm   float64
		tolerKm  float64
	}{
		{
			name:    "Antipodal points on the equator",
			p1:      Point{Latitude: 0, Longitude: 0},
			p2:      Point{Latitude: 0, Longitude: 180},
			wantKm:  20015.09,
			tolerKm: 0.5,
		},
		{
			name:    "London to Paris",
			p1:      Point{Latitude: 51.5074, Longitude: -0.1278},
			p2:      Point{Latitude: 48.8566, Longitude: 2.3522},
			wantKm:  343.5,
			tolerKm: 1.0,
		},
		{
			name:    "One degree of longitude on the equator",
			p1:      Point{Latitude: 0, Longitude: 0},
			p2:      Point{Latitude: 0, Longitude: 1},
			wantKm:  111.19,
			tolerKm: 0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.wantKm, Distance(tt.p1, tt.p2), tt.tolerKm)
		})
	}
}

func TestDistance_NeverExceedsHalfCircumference(t *testing.T) {
	maxKm := math.Pi * EarthRadiusKm

	points := []Point{
		{Latitude: 90, Longitude: 0},
		{Latitude: -90, Longitude: 0},
		{Latitude: 45.0000001, Longitude: -134.9999999},
		{Latitude: -45, Longitude: 45},
	}

	for _, p1 := range points {
		for _, p2 := range points {
			d := Distance(p1, p2)
			assert.False(t, math.IsNaN(d))
			assert.GreaterOrEqual(t, d, 0.0)
			assert.LessOrEqual(t, d, maxKm+1e-6)
		}
	}
}

func TestDistance_NaNInputPropagates(t *testing.T) {
	d := Distance(Point{Latitude: math.NaN(), Longitude: 0}, Point{Latitude: 0, Longitude: 0})
	assert.True(t, math.IsNaN(d))
}

func TestWithinRadius_InclusiveBoundary(t *testing.T) {
	ref := Point{Latitude: 0, Longitude: 0}
	p := Point{Latitude: 0, Longitude: 1}
	d := Distance(ref, p)

	assert.True(t, WithinRadius(ref, p, d))
	assert.False(t, WithinRadius(ref, p, d-0.001))
}

func TestWithinRadius_ZeroRadius(t *testing.T) {
	ref := Point{Latitude: 51.5074, Longitude: -0.1278}

	assert.True(t, WithinRadius(ref, ref, 0))
	assert.False(t, WithinRadius(ref, Point{Latitude: 51.5075, Longitude: -0.1278}, 0))
}
