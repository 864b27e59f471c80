package location

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farewise/fare-compare/pkg/config"
)

func newTestService(baseURL, apiKey string) *Service {
	cfg := &config.GoogleMapsConfig{APIKey: apiKey, BaseURL: baseURL}
	return NewService(cfg, 2*time.Second, nil, nil)
}

func TestNormalizeRejectsEmptyInput(t *testing.T) {
	svc := newTestService("http://unused", "")
	_, err := svc.Normalize(context.Background(), Input{})
	assert.ErrorIs(t, err, ErrInvalidLocation)
}

func TestNormalizePassesThroughValidCoordinates(t *testing.T) {
	svc := newTestService("http://unused", "")
	lat, lng := 28.6139, 77.2090

	loc, err := svc.Normalize(context.Background(), Input{Latitude: &lat, Longitude: &lng})
	require.NoError(t, err)
	assert.Equal(t, 28.6139, loc.Latitude)
	assert.Equal(t, 77.2090, loc.Longitude)
	assert.Equal(t, "28.6139,77.2090", loc.Address)
}

func TestNormalizeKeepsCallerAddressWithCoordinates(t *testing.T) {
	svc := newTestService("http://unused", "")
	lat, lng := 28.6139, 77.2090

	loc, err := svc.Normalize(context.Background(), Input{Address: "Office", Latitude: &lat, Longitude: &lng})
	require.NoError(t, err)
	assert.Equal(t, "Office", loc.Address)
}

func TestNormalizeSyntheticFallbackIsDeterministic(t *testing.T) {
	svc := newTestService("http://unused", "")

	first, err := svc.Normalize(context.Background(), Input{Address: "Connaught Place"})
	require.NoError(t, err)
	second, err := svc.Normalize(context.Background(), Input{Address: "Connaught Place"})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "Connaught Place", first.Address)
	assert.InDelta(t, 28.6139, first.Latitude, 0.1)
	assert.InDelta(t, 77.2090, first.Longitude, 0.1)
}

func TestNormalizeSyntheticCoordinatesStayInRange(t *testing.T) {
	svc := newTestService("http://unused", "")

	addresses := []string{"a", "some very long address with many characters in it", "12345", "x y z"}
	for _, addr := range addresses {
		loc, err := svc.Normalize(context.Background(), Input{Address: addr})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, loc.Latitude, -90.0)
		assert.LessOrEqual(t, loc.Latitude, 90.0)
		assert.GreaterOrEqual(t, loc.Longitude, -180.0)
		assert.LessOrEqual(t, loc.Longitude, 180.0)
	}
}

func TestNormalizeGeocodesFreeText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/geocode/json", r.URL.Path)
		assert.Equal(t, "India Gate", r.URL.Query().Get("address"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		w.Write([]byte(`{
			"status": "OK",
			"results": [{
				"formatted_address": "India Gate, New Delhi, India",
				"place_id": "ChIJIG",
				"geometry": {"location": {"lat": 28.6129, "lng": 77.2295}}
			}]
		}`))
	}))
	defer server.Close()

	svc := newTestService(server.URL, "test-key")
	loc, err := svc.Normalize(context.Background(), Input{Address: "India Gate"})
	require.NoError(t, err)
	assert.Equal(t, "India Gate, New Delhi, India", loc.Address)
	assert.Equal(t, "ChIJIG", loc.PlaceID)
	assert.Equal(t, 28.6129, loc.Latitude)
	assert.Equal(t, 77.2295, loc.Longitude)
}

func TestNormalizePrefersPlaceReference(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ChIJABC", r.URL.Query().Get("place_id"))
		w.Write([]byte(`{
			"status": "OK",
			"results": [{
				"formatted_address": "Resolved Place",
				"place_id": "ChIJABC",
				"geometry": {"location": {"lat": 28.5, "lng": 77.1}}
			}]
		}`))
	}))
	defer server.Close()

	svc := newTestService(server.URL, "test-key")
	lat, lng := 10.0, 20.0
	loc, err := svc.Normalize(context.Background(), Input{
		PlaceID:  "ChIJABC",
		Address:  "ignored",
		Latitude: &lat, Longitude: &lng,
	})
	require.NoError(t, err)
	assert.Equal(t, "Resolved Place", loc.Address)
	assert.Equal(t, 28.5, loc.Latitude)
}

func TestNormalizeFallsBackWhenGeocodeFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	svc := newTestService(server.URL, "test-key")
	loc, err := svc.Normalize(context.Background(), Input{Address: "Somewhere"})
	require.NoError(t, err)
	assert.Equal(t, "Somewhere", loc.Address)
	assert.NotZero(t, loc.Latitude)
}

func TestNormalizeIgnoresOutOfRangeCoordinates(t *testing.T) {
	svc := newTestService("http://unused", "")
	lat, lng := 95.0, 77.0

	// Out-of-range coordinates with an address fall through to geocoding,
	// which degrades to the synthetic location.
	loc, err := svc.Normalize(context.Background(), Input{Address: "Office", Latitude: &lat, Longitude: &lng})
	require.NoError(t, err)
	assert.Equal(t, "Office", loc.Address)
	assert.NotEqual(t, 95.0, loc.Latitude)
}
