package providers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farewise/fare-compare/pkg/config"
)

func TestRapidoFallbackWithoutCredentials(t *testing.T) {
	client := NewRapidoClient(&config.RapidoConfig{BaseURL: "http://unused"}, time.Second, nil)

	result := client.GetEstimates(context.Background(), fallbackPickup, fallbackDrop)
	require.NotNil(t, result)
	assert.True(t, result.Fallback)
	assert.Equal(t, ServiceRapido, result.Service)
	assert.Len(t, result.Options, 2)
}

func TestRapidoLiveEstimatesWithValidSignature(t *testing.T) {
	const secret = "signing-secret"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/estimate-fare", r.URL.Path)
		assert.Equal(t, "api-key", r.Header.Get("X-API-KEY"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		// The signature must verify against the exact request bytes
		mac := hmac.New(sha256.New, []byte(secret))
		mac.Write(body)
		assert.Equal(t, hex.EncodeToString(mac.Sum(nil)), r.Header.Get("X-SIGNATURE"))

		w.Write([]byte(`{
			"success": true,
			"services": [
				{"service_type": "Bike", "fare": 45.5, "eta": 3, "distance": 2.1, "surge": 1.0},
				{"service_type": "Auto", "fare": 72, "eta": 5, "distance": 2.1}
			]
		}`))
	}))
	defer server.Close()

	cfg := &config.RapidoConfig{APIKey: "api-key", APISecret: secret, BaseURL: server.URL}
	client := NewRapidoClient(cfg, time.Second, nil)

	result := client.GetEstimates(context.Background(), fallbackPickup, fallbackDrop)
	require.NotNil(t, result)
	assert.False(t, result.Fallback)
	require.Len(t, result.Options, 2)

	assert.Equal(t, "Bike", result.Options[0].Name)
	assert.Equal(t, "45.50", result.Options[0].Price)
	assert.Equal(t, "₹45.50", result.Options[0].Estimate)

	// Missing surge defaults to 1.0
	assert.Equal(t, 1.0, result.Options[1].SurgeMultiplier)
}

func TestRapidoFallbackOnFailureResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": false}`))
	}))
	defer server.Close()

	cfg := &config.RapidoConfig{APIKey: "k", APISecret: "s", BaseURL: server.URL}
	client := NewRapidoClient(cfg, time.Second, nil)

	result := client.GetEstimates(context.Background(), fallbackPickup, fallbackDrop)
	require.NotNil(t, result)
	assert.True(t, result.Fallback)
}
