package routing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farewise/fare-compare/internal/location"
	"github.com/farewise/fare-compare/pkg/config"
)

var (
	testOrigin      = location.CanonicalLocation{Address: "A", Point: location.Point{Latitude: 28.6139, Longitude: 77.2090}}
	testDestination = location.CanonicalLocation{Address: "B", Point: location.Point{Latitude: 28.6129, Longitude: 77.2295}}
)

func TestDistanceSyntheticWithoutAPIKey(t *testing.T) {
	svc := NewService(&config.GoogleMapsConfig{BaseURL: "http://unused"}, 2*time.Second, nil)

	for i := 0; i < 20; i++ {
		info := svc.Distance(context.Background(), testOrigin, testDestination)
		assert.GreaterOrEqual(t, info.DistanceMeters, 5000)
		assert.LessOrEqual(t, info.DistanceMeters, 15000)
		assert.Equal(t, info.DurationSeconds, (info.DurationSeconds/60)*60)
		assert.NotEmpty(t, info.DistanceText)
		assert.NotEmpty(t, info.DurationText)
	}
}

func TestDistanceFromMatrixAPI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/distancematrix/json", r.URL.Path)
		w.Write([]byte(`{
			"status": "OK",
			"rows": [{"elements": [{
				"status": "OK",
				"distance": {"value": 12500, "text": "12.5 km"},
				"duration": {"value": 1800, "text": "30 mins"}
			}]}]
		}`))
	}))
	defer server.Close()

	svc := NewService(&config.GoogleMapsConfig{APIKey: "k", BaseURL: server.URL}, 2*time.Second, nil)
	info := svc.Distance(context.Background(), testOrigin, testDestination)

	assert.Equal(t, 12500, info.DistanceMeters)
	assert.Equal(t, "12.5 km", info.DistanceText)
	assert.Equal(t, 1800, info.DurationSeconds)
	assert.Equal(t, "30 mins", info.DurationText)
}

func TestDistancePrefersPlaceReferences(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "place_id:ChIJA", r.URL.Query().Get("origins"))
		assert.Equal(t, "place_id:ChIJB", r.URL.Query().Get("destinations"))
		w.Write([]byte(`{
			"status": "OK",
			"rows": [{"elements": [{
				"status": "OK",
				"distance": {"value": 1000, "text": "1 km"},
				"duration": {"value": 300, "text": "5 mins"}
			}]}]
		}`))
	}))
	defer server.Close()

	origin := testOrigin
	origin.PlaceID = "ChIJA"
	destination := testDestination
	destination.PlaceID = "ChIJB"

	svc := NewService(&config.GoogleMapsConfig{APIKey: "k", BaseURL: server.URL}, 2*time.Second, nil)
	info := svc.Distance(context.Background(), origin, destination)
	assert.Equal(t, 1000, info.DistanceMeters)
}

func TestDistanceDegradesOnUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	svc := NewService(&config.GoogleMapsConfig{APIKey: "k", BaseURL: server.URL}, 2*time.Second, nil)
	info := svc.Distance(context.Background(), testOrigin, testDestination)

	require.GreaterOrEqual(t, info.DistanceMeters, 5000)
	require.LessOrEqual(t, info.DistanceMeters, 15000)
}

func TestDistanceDegradesOnElementFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "OK", "rows": [{"elements": [{"status": "NOT_FOUND"}]}]}`))
	}))
	defer server.Close()

	svc := NewService(&config.GoogleMapsConfig{APIKey: "k", BaseURL: server.URL}, 2*time.Second, nil)
	info := svc.Distance(context.Background(), testOrigin, testDestination)
	assert.GreaterOrEqual(t, info.DistanceMeters, 5000)
}
