package geo_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mfreeman451/routepath/geo"
)

func TestHaversineMeters_KnownPoints(t *testing.T) {
	// Two points from spec.md §8 scenario 6, expected to agree with the
	// haversine formula to within 1cm absolute.
	got := geo.HaversineMeters(53.347781, 8.466496, 53.350880, 8.466570)
	require.InDelta(t, 344.628083, got, 0.01, "distance should be ~344.63m")
}

func TestHaversineMeters_ZeroDistance(t *testing.T) {
	got := geo.HaversineMeters(52.5, 13.4, 52.5, 13.4)
	require.InDelta(t, 0.0, got, 1e-6)
}

func TestHaversineMeters_NonFiniteYieldsInf(t *testing.T) {
	cases := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
	}{
		{"nan lat1", math.NaN(), 0, 0, 0},
		{"inf lon2", 0, 0, 0, math.Inf(1)},
		{"neg inf lat2", 0, 0, math.Inf(-1), 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := geo.HaversineMeters(tc.lat1, tc.lon1, tc.lat2, tc.lon2)
			require.True(t, math.IsInf(got, 1))
		})
	}
}

func TestHaversineMeters_Symmetric(t *testing.T) {
	a := geo.HaversineMeters(10, 10, 20, 20)
	b := geo.HaversineMeters(20, 20, 10, 10)
	require.InDelta(t, a, b, 1e-9)
}
