package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/farewise/fare-compare/internal/location"
	"github.com/farewise/fare-compare/pkg/config"
	"github.com/farewise/fare-compare/pkg/httpclient"
	"github.com/farewise/fare-compare/pkg/logger"
	"github.com/farewise/fare-compare/pkg/resilience"
)

// DistanceInfo describes the road distance and travel time between two
// locations.
type DistanceInfo struct {
	DistanceMeters  int    `json:"distance_meters"`
	DistanceText    string `json:"distance_text"`
	DurationSeconds int    `json:"duration_seconds"`
	DurationText    string `json:"duration_text"`
}

// Service resolves road distances via the distance-matrix API, degrading to a
// synthetic estimate when the API is unavailable.
type Service struct {
	cfg     *config.GoogleMapsConfig
	client  *httpclient.Client
	breaker *resilience.CircuitBreaker
}

// NewService creates a routing service. breaker may be nil.
func NewService(cfg *config.GoogleMapsConfig, timeout time.Duration, breaker *resilience.CircuitBreaker) *Service {
	return &Service{
		cfg:     cfg,
		client:  httpclient.NewClient(cfg.BaseURL, timeout),
		breaker: breaker,
	}
}

// Distance resolves the road distance between two canonical locations. It
// never fails: upstream errors degrade to a synthetic estimate.
func (s *Service) Distance(ctx context.Context, origin, destination location.CanonicalLocation) DistanceInfo {
	if !s.cfg.Configured() {
		return syntheticDistance()
	}

	info, err := s.distanceMatrix(ctx, origin, destination)
	if err != nil {
		logger.WarnContext(ctx, "Distance matrix unavailable, using synthetic estimate", zap.Error(err))
		return syntheticDistance()
	}
	return info
}

type distanceMatrixResponse struct {
	Status string `json:"status"`
	Rows   []struct {
		Elements []struct {
			Status   string `json:"status"`
			Distance struct {
				Value int    `json:"value"`
				Text  string `json:"text"`
			} `json:"distance"`
			Duration struct {
				Value int    `json:"value"`
				Text  string `json:"text"`
			} `json:"duration"`
		} `json:"elements"`
	} `json:"rows"`
}

func (s *Service) distanceMatrix(ctx context.Context, origin, destination location.CanonicalLocation) (DistanceInfo, error) {
	params := url.Values{
		"origins":      {locationParam(origin)},
		"destinations": {locationParam(destination)},
		"key":          {s.cfg.APIKey},
	}
	path := "/distancematrix/json?" + params.Encode()

	body, err := s.execute(ctx, path)
	if err != nil {
		return DistanceInfo{}, err
	}

	var resp distanceMatrixResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return DistanceInfo{}, fmt.Errorf("failed to decode distance matrix response: %w", err)
	}

	if resp.Status != "OK" || len(resp.Rows) == 0 || len(resp.Rows[0].Elements) == 0 {
		return DistanceInfo{}, fmt.Errorf("distance matrix returned status %s", resp.Status)
	}

	element := resp.Rows[0].Elements[0]
	if element.Status != "OK" {
		return DistanceInfo{}, fmt.Errorf("distance matrix element status %s", element.Status)
	}

	return DistanceInfo{
		DistanceMeters:  element.Distance.Value,
		DistanceText:    element.Distance.Text,
		DurationSeconds: element.Duration.Value,
		DurationText:    element.Duration.Text,
	}, nil
}

func (s *Service) execute(ctx context.Context, path string) ([]byte, error) {
	if s.breaker == nil {
		return s.client.Get(ctx, path, nil)
	}

	result, err := s.breaker.Execute(func() (interface{}, error) {
		return s.client.Get(ctx, path, nil)
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

// locationParam prefers the place reference over raw coordinates, which gives
// the distance-matrix API a more precise anchor.
func locationParam(loc location.CanonicalLocation) string {
	if loc.PlaceID != "" {
		return "place_id:" + loc.PlaceID
	}
	return fmt.Sprintf("%f,%f", loc.Latitude, loc.Longitude)
}

// syntheticDistance produces a plausible urban trip when the routing API is
// unavailable: 5-15 km at an average pace of 3 minutes per kilometer.
func syntheticDistance() DistanceInfo {
	distanceKm := 5 + rand.Float64()*10
	durationMinutes := int(distanceKm * 3)

	return DistanceInfo{
		DistanceMeters:  int(distanceKm * 1000),
		DistanceText:    fmt.Sprintf("%.1f km", distanceKm),
		DurationSeconds: durationMinutes * 60,
		DurationText:    fmt.Sprintf("%d mins", durationMinutes),
	}
}
