package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/farewise/fare-compare/internal/location"
	"github.com/farewise/fare-compare/pkg/config"
	"github.com/farewise/fare-compare/pkg/httpclient"
	"github.com/farewise/fare-compare/pkg/logger"
	"github.com/farewise/fare-compare/pkg/resilience"
)

// OlaClient fetches ride products from the Ola API. Each request performs a
// credential login first; Ola session tokens are short-lived.
type OlaClient struct {
	cfg     *config.OlaConfig
	client  *httpclient.Client
	breaker *resilience.CircuitBreaker
}

// NewOlaClient creates an Ola provider client. breaker may be nil.
func NewOlaClient(cfg *config.OlaConfig, timeout time.Duration, breaker *resilience.CircuitBreaker) *OlaClient {
	return &OlaClient{
		cfg:     cfg,
		client:  httpclient.NewClient(cfg.BaseURL, timeout),
		breaker: breaker,
	}
}

// Name returns the provider name.
func (c *OlaClient) Name() string { return ServiceOla }

type olaAuthResponse struct {
	Status string `json:"status"`
	Token  string `json:"token"`
}

type olaProductsResponse struct {
	Status     string `json:"status"`
	Categories []struct {
		DisplayName string `json:"display_name"`
		ETA         int    `json:"eta"`
		Distance    string `json:"distance"`
		Products    []struct {
			DisplayName string `json:"display_name"`
			FareBreakup struct {
				MinimumFare float64 `json:"minimum_fare"`
				MaximumFare float64 `json:"maximum_fare"`
			} `json:"fare_breakup"`
			SurgeMultiplier float64 `json:"surge_multiplier"`
		} `json:"products"`
	} `json:"categories"`
}

// GetEstimates returns live Ola quotes, degrading to synthetic estimates when
// credentials are missing or the API fails.
func (c *OlaClient) GetEstimates(ctx context.Context, pickup, destination location.CanonicalLocation) *Result {
	if !c.cfg.Configured() {
		return fallbackResult(ServiceOla, pickup, destination)
	}

	result, err := c.fetch(ctx, pickup, destination)
	if err != nil {
		logger.WarnContext(ctx, "Ola estimates unavailable, using fallback", zap.Error(err))
		return fallbackResult(ServiceOla, pickup, destination)
	}
	return result
}

func (c *OlaClient) fetch(ctx context.Context, pickup, destination location.CanonicalLocation) (*Result, error) {
	token, err := c.login(ctx)
	if err != nil {
		return nil, err
	}

	params := url.Values{
		"pickup_lat": {fmt.Sprintf("%f", pickup.Latitude)},
		"pickup_lng": {fmt.Sprintf("%f", pickup.Longitude)},
		"drop_lat":   {fmt.Sprintf("%f", destination.Latitude)},
		"drop_lng":   {fmt.Sprintf("%f", destination.Longitude)},
	}
	headers := map[string]string{
		"X-APP-TOKEN":   c.cfg.APIKey,
		"Authorization": "Bearer " + token,
	}

	body, err := c.execute(ctx, func() ([]byte, error) {
		return c.client.Get(ctx, "/products?"+params.Encode(), headers)
	})
	if err != nil {
		return nil, err
	}

	var resp olaProductsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode ola response: %w", err)
	}
	if resp.Status != "SUCCESS" {
		return nil, fmt.Errorf("ola returned status %s", resp.Status)
	}

	var options []RideOption
	for _, category := range resp.Categories {
		for _, product := range category.Products {
			minFare := product.FareBreakup.MinimumFare
			maxFare := product.FareBreakup.MaximumFare
			surge := product.SurgeMultiplier
			if surge == 0 {
				surge = 1.0
			}

			name := product.DisplayName
			if name == "" {
				name = category.DisplayName
			}

			options = append(options, RideOption{
				Name:            name,
				Price:           fmt.Sprintf("%.2f", (minFare+maxFare)/2),
				Currency:        "INR",
				ETAMinutes:      category.ETA,
				SurgeMultiplier: surge,
				Estimate:        fmt.Sprintf("₹%.2f - ₹%.2f", minFare, maxFare),
			})
		}
	}
	if len(options) == 0 {
		return nil, fmt.Errorf("ola returned no products")
	}

	return &Result{Service: ServiceOla, Options: options}, nil
}

func (c *OlaClient) login(ctx context.Context) (string, error) {
	headers := map[string]string{"X-APP-TOKEN": c.cfg.APIKey}
	payload := map[string]string{
		"userId":   c.cfg.UserID,
		"password": c.cfg.Password,
	}

	body, err := c.execute(ctx, func() ([]byte, error) {
		return c.client.Post(ctx, "/auth", payload, headers)
	})
	if err != nil {
		return "", fmt.Errorf("ola login failed: %w", err)
	}

	var resp olaAuthResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to decode ola auth response: %w", err)
	}
	if resp.Status != "SUCCESS" || resp.Token == "" {
		return "", fmt.Errorf("ola login rejected with status %s", resp.Status)
	}
	return resp.Token, nil
}

func (c *OlaClient) execute(ctx context.Context, fn func() ([]byte, error)) ([]byte, error) {
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
