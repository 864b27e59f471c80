package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineKnownRoute(t *testing.T) {
	// Connaught Place to India Gate, New Delhi.
	d := Haversine(28.6139, 77.2090, 28.6129, 77.2295)

	assert.InDelta(t, 2.0, d, 0.01)
	assert.GreaterOrEqual(t, d, 2.0)
	assert.LessOrEqual(t, d, 2.3)
}

func TestHaversineSymmetry(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
	}{
		{"delhi", 28.6139, 77.2090, 28.6129, 77.2295},
		{"cross equator", -12.0464, -77.0428, 51.5074, -0.1278},
		{"antimeridian", 35.6762, 139.6503, 37.7749, -122.4194},
		{"poles", 89.9, 0, -89.9, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ab := Haversine(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			ba := Haversine(tt.lat2, tt.lon2, tt.lat1, tt.lon1)
			assert.Equal(t, ab, ba)
		})
	}
}

func TestHaversineZeroDistance(t *testing.T) {
	assert.Zero(t, Haversine(28.6139, 77.2090, 28.6139, 77.2090))
	assert.Zero(t, Haversine(0, 0, 0, 0))
}
