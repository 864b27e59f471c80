package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/farewise/fare-compare/internal/location"
	"github.com/farewise/fare-compare/internal/providers/uberauth"
	"github.com/farewise/fare-compare/pkg/config"
	"github.com/farewise/fare-compare/pkg/httpclient"
	"github.com/farewise/fare-compare/pkg/logger"
	"github.com/farewise/fare-compare/pkg/resilience"
)

// UberClient fetches price estimates from the Uber API, authenticating via
// the shared token manager.
type UberClient struct {
	cfg     *config.UberConfig
	tokens  *uberauth.Manager
	client  *httpclient.Client
	breaker *resilience.CircuitBreaker
}

// NewUberClient creates an Uber provider client. breaker may be nil.
func NewUberClient(cfg *config.UberConfig, tokens *uberauth.Manager, timeout time.Duration, breaker *resilience.CircuitBreaker) *UberClient {
	return &UberClient{
		cfg:     cfg,
		tokens:  tokens,
		client:  httpclient.NewClient(cfg.APIBaseURL, timeout),
		breaker: breaker,
	}
}

// Name returns the provider name.
func (c *UberClient) Name() string { return ServiceUber }

type uberPriceResponse struct {
	Prices []struct {
		DisplayName     string  `json:"display_name"`
		Estimate        string  `json:"estimate"`
		LowEstimate     float64 `json:"low_estimate"`
		HighEstimate    float64 `json:"high_estimate"`
		CurrencyCode    string  `json:"currency_code"`
		Duration        int     `json:"duration"`
		Distance        float64 `json:"distance"`
		SurgeMultiplier float64 `json:"surge_multiplier"`
	} `json:"prices"`
}

// GetEstimates returns live Uber quotes, degrading to synthetic estimates
// when credentials are missing or the API fails.
func (c *UberClient) GetEstimates(ctx context.Context, pickup, destination location.CanonicalLocation) *Result {
	if !c.cfg.Configured() {
		return fallbackResult(ServiceUber, pickup, destination)
	}

	result, err := c.fetch(ctx, pickup, destination)
	if err != nil {
		logger.WarnContext(ctx, "Uber estimates unavailable, using fallback", zap.Error(err))
		return fallbackResult(ServiceUber, pickup, destination)
	}
	return result
}

func (c *UberClient) fetch(ctx context.Context, pickup, destination location.CanonicalLocation) (*Result, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	params := url.Values{
		"start_latitude":  {fmt.Sprintf("%f", pickup.Latitude)},
		"start_longitude": {fmt.Sprintf("%f", pickup.Longitude)},
		"end_latitude":    {fmt.Sprintf("%f", destination.Latitude)},
		"end_longitude":   {fmt.Sprintf("%f", destination.Longitude)},
	}
	headers := map[string]string{
		"Authorization":   "Bearer " + token,
		"Accept-Language": "en_US",
	}

	body, err := c.execute(ctx, "/estimates/price?"+params.Encode(), headers)
	if err != nil {
		return nil, err
	}

	var resp uberPriceResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode uber response: %w", err)
	}
	if len(resp.Prices) == 0 {
		return nil, fmt.Errorf("uber returned no prices")
	}

	options := make([]RideOption, 0, len(resp.Prices))
	for _, price := range resp.Prices {
		surge := price.SurgeMultiplier
		if surge == 0 {
			surge = 1.0
		}
		options = append(options, RideOption{
			Name:            price.DisplayName,
			Price:           fmt.Sprintf("%.2f", (price.LowEstimate+price.HighEstimate)/2),
			Currency:        price.CurrencyCode,
			ETAMinutes:      price.Duration / 60,
			DistanceKm:      price.Distance,
			SurgeMultiplier: surge,
			Estimate:        price.Estimate,
		})
	}

	return &Result{Service: ServiceUber, Options: options}, nil
}

func (c *UberClient) execute(ctx context.Context, path string, headers map[string]string) ([]byte, error) {
	if c.breaker == nil {
		return c.client.Get(ctx, path, headers)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.client.Get(ctx, path, headers)
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}
