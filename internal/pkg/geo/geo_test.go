package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr(v float64) *float64 { return &v }

func TestDistanceKm_SamePointIsZero(t *testing.T) {
	points := [][2]float64{
		{40.7580, -73.9855},
		{0, 0},
		{-33.8688, 151.2093},
		{90, 180},
	}
	for _, p := range points {
		assert.InDelta(t, 0, DistanceKm(p[0], p[1], p[0], p[1]), 1e-9)
	}
}

func TestDistanceKm_Symmetric(t *testing.T) {
	pairs := [][4]float64{
		{40.7580, -73.9855, 40.7484, -73.9857},
		{51.5074, -0.1278, 48.8566, 2.3522},
		{-6.2088, 106.8456, 1.3521, 103.8198},
	}
	for _, p := range pairs {
		ab := DistanceKm(p[0], p[1], p[2], p[3])
		ba := DistanceKm(p[2], p[3], p[0], p[1])
		assert.InDelta(t, ab, ba, 1e-9)
	}
}

func TestDistanceKm_KnownDistance(t *testing.T) {
	// London to Paris is roughly 343.5 km on a 6371 km sphere.
	d := DistanceKm(51.5074, -0.1278, 48.8566, 2.3522)
	assert.InDelta(t, 343.5, d, 1.0)

	// One degree of latitude along a meridian.
	d = DistanceKm(0, 0, 1, 0)
	assert.InDelta(t, 6371*math.Pi/180, d, 1e-6)
}

func TestValidCoordinate(t *testing.T) {
	cases := []struct {
		lat, lng float64
		want     bool
	}{
		{0, 0, true},
		{90, 180, true},
		{-90, -180, true},
		{90.0001, 0, false},
		{0, -180.5, false},
		{math.NaN(), 0, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ValidCoordinate(c.lat, c.lng), "lat=%v lng=%v", c.lat, c.lng)
	}
}

func TestEvaluator_OnSite(t *testing.T) {
	ev := NewEvaluator(Office{Latitude: 40.7580, Longitude: -73.9855, RadiusKm: 0.5})

	assert.True(t, ev.OnSite(ptr(40.7580), ptr(-73.9855)), "office itself")
	assert.True(t, ev.OnSite(ptr(40.7590), ptr(-73.9850)), "about 120 m away")
	assert.False(t, ev.OnSite(ptr(40.7484), ptr(-73.9857)), "about 1.07 km away")
	assert.False(t, ev.OnSite(nil, nil), "no coordinates")
	assert.False(t, ev.OnSite(ptr(40.7580), nil), "half coordinates")
}
