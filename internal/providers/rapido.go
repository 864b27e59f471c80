package providers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/farewise/fare-compare/internal/location"
	"github.com/farewise/fare-compare/pkg/config"
	"github.com/farewise/fare-compare/pkg/httpclient"
	"github.com/farewise/fare-compare/pkg/logger"
	"github.com/farewise/fare-compare/pkg/resilience"
)

// RapidoClient fetches fare estimates from the Rapido API. Requests are
// authenticated with an HMAC-SHA256 signature of the JSON payload.
type RapidoClient struct {
	cfg     *config.RapidoConfig
	client  *httpclient.Client
	breaker *resilience.CircuitBreaker
}

// NewRapidoClient creates a Rapido provider client. breaker may be nil.
func NewRapidoClient(cfg *config.RapidoConfig, timeout time.Duration, breaker *resilience.CircuitBreaker) *RapidoClient {
	return &RapidoClient{
		cfg:     cfg,
		client:  httpclient.NewClient(cfg.BaseURL, timeout),
		breaker: breaker,
	}
}

// Name returns the provider name.
func (c *RapidoClient) Name() string { return ServiceRapido }

type rapidoFareRequest struct {
	Pickup rapidoPoint `json:"pickup"`
	Drop   rapidoPoint `json:"drop"`
}

type rapidoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type rapidoFareResponse struct {
	Success  bool `json:"success"`
	Services []struct {
		ServiceType string  `json:"service_type"`
		Fare        float64 `json:"fare"`
		ETA         int     `json:"eta"`
		Distance    float64 `json:"distance"`
		Surge       float64 `json:"surge"`
	} `json:"services"`
}

// GetEstimates returns live Rapido quotes, degrading to synthetic estimates
// when credentials are missing or the API fails.
func (c *RapidoClient) GetEstimates(ctx context.Context, pickup, destination location.CanonicalLocation) *Result {
	if !c.cfg.Configured() {
		return fallbackResult(ServiceRapido, pickup, destination)
	}

	result, err := c.fetch(ctx, pickup, destination)
	if err != nil {
		logger.WarnContext(ctx, "Rapido estimates unavailable, using fallback", zap.Error(err))
		return fallbackResult(ServiceRapido, pickup, destination)
	}
	return result
}

func (c *RapidoClient) fetch(ctx context.Context, pickup, destination location.CanonicalLocation) (*Result, error) {
	payload := rapidoFareRequest{
		Pickup: rapidoPoint{Lat: pickup.Latitude, Lng: pickup.Longitude},
		Drop:   rapidoPoint{Lat: destination.Latitude, Lng: destination.Longitude},
	}

	signature, err := c.sign(payload)
	if err != nil {
		return nil, err
	}

	headers := map[string]string{
		"X-API-KEY":   c.cfg.APIKey,
		"X-SIGNATURE": signature,
	}

	body, err := c.execute(ctx, func() ([]byte, error) {
		return c.client.Post(ctx, "/estimate-fare", payload, headers)
	})
	if err != nil {
		return nil, err
	}

	var resp rapidoFareResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode rapido response: %w", err)
	}
	if !resp.Success || len(resp.Services) == 0 {
		return nil, fmt.Errorf("rapido returned no services")
	}

	options := make([]RideOption, 0, len(resp.Services))
	for _, service := range resp.Services {
		surge := service.Surge
		if surge == 0 {
			surge = 1.0
		}
		options = append(options, RideOption{
			Name:            service.ServiceType,
			Price:           fmt.Sprintf("%.2f", service.Fare),
			Currency:        "INR",
			ETAMinutes:      service.ETA,
			DistanceKm:      service.Distance,
			SurgeMultiplier: surge,
			Estimate:        fmt.Sprintf("₹%.2f", service.Fare),
		})
	}

	return &Result{Service: ServiceRapido, Options: options}, nil
}

// sign computes the hex HMAC-SHA256 of the marshaled payload. The signed
// bytes must match the request body exactly.
func (c *RapidoClient) sign(payload rapidoFareRequest) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal rapido payload: %w", err)
	}

	mac := hmac.New(sha256.New, []byte(c.cfg.APISecret))
	mac.Write(data)
	return hex.EncodeToString(mac.Sum(nil)), nil
}

func (c *RapidoClient) execute(ctx context.Context, fn func() ([]byte, error)) ([]byte, error) {
	if c.breaker == nil {
		return fn()
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}
