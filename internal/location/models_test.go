package location

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalString(t *testing.T) {
	var in Input
	require.NoError(t, json.Unmarshal([]byte(`"  Connaught Place, Delhi "`), &in))
	assert.Equal(t, "Connaught Place, Delhi", in.Address)
	assert.False(t, in.HasCoordinates())
}

func TestUnmarshalCoordinateArray(t *testing.T) {
	var in Input
	require.NoError(t, json.Unmarshal([]byte(`[28.6139, 77.2090]`), &in))
	require.True(t, in.HasCoordinates())
	assert.Equal(t, 28.6139, *in.Latitude)
	assert.Equal(t, 77.2090, *in.Longitude)
}

func TestUnmarshalObjectVariants(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		lat     float64
		lng     float64
	}{
		{"lat lng", `{"lat": 28.6, "lng": 77.2}`, 28.6, 77.2},
		{"latitude longitude", `{"latitude": 28.6, "longitude": 77.2}`, 28.6, 77.2},
		{"coordinates object", `{"coordinates": {"lat": 28.6, "lng": 77.2}}`, 28.6, 77.2},
		{"coordinates array", `{"coordinates": [28.6, 77.2]}`, 28.6, 77.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var in Input
			require.NoError(t, json.Unmarshal([]byte(tt.payload), &in))
			require.True(t, in.HasCoordinates())
			assert.Equal(t, tt.lat, *in.Latitude)
			assert.Equal(t, tt.lng, *in.Longitude)
		})
	}
}

func TestUnmarshalObjectWithAddressAndPlace(t *testing.T) {
	var in Input
	require.NoError(t, json.Unmarshal([]byte(`{"address": "India Gate", "place_id": "ChIJ123"}`), &in))
	assert.Equal(t, "India Gate", in.Address)
	assert.Equal(t, "ChIJ123", in.PlaceID)
	assert.True(t, in.IsUsable())
}

func TestUnmarshalRejectsBadArray(t *testing.T) {
	var in Input
	assert.Error(t, json.Unmarshal([]byte(`[28.6]`), &in))
	assert.Error(t, json.Unmarshal([]byte(`["a", "b"]`), &in))
}

func TestIsUsable(t *testing.T) {
	assert.False(t, (&Input{}).IsUsable())
	assert.True(t, (&Input{Address: "x"}).IsUsable())
	assert.True(t, (&Input{PlaceID: "p"}).IsUsable())

	lat, lng := 1.0, 2.0
	assert.True(t, (&Input{Latitude: &lat, Longitude: &lng}).IsUsable())
	assert.False(t, (&Input{Latitude: &lat}).IsUsable())
}
