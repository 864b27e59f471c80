package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidCoordinates(t *testing.T) {
	tests := []struct {
		name string
		lat  float64
		lng  float64
		want bool
	}{
		{"delhi", 28.6139, 77.2090, true},
		{"equator meridian", 0, 0, true},
		{"poles", 90, 180, true},
		{"latitude too high", 91, 77, false},
		{"latitude too low", -90.5, 77, false},
		{"longitude too high", 28, 180.1, false},
		{"longitude too low", 28, -181, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidCoordinates(tt.lat, tt.lng))
		})
	}
}
