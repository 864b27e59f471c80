package compare

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/farewise/fare-compare/internal/location"
	"github.com/farewise/fare-compare/internal/providers"
	"github.com/farewise/fare-compare/internal/routing"
	"github.com/farewise/fare-compare/pkg/common"
	"github.com/farewise/fare-compare/pkg/logger"
)

// Service aggregates ride prices across providers. Provider fan-out is
// concurrent, and because every provider degrades to synthetic estimates,
// a comparison only fails on invalid input.
type Service struct {
	locations *location.Service
	routes    *routing.Service
	clients   []providers.Client
	repo      RepositoryInterface
}

// NewService creates a comparison service. repo may be nil when persistence
// is disabled.
func NewService(locations *location.Service, routes *routing.Service, clients []providers.Client, repo RepositoryInterface) *Service {
	return &Service{
		locations: locations,
		routes:    routes,
		clients:   clients,
		repo:      repo,
	}
}

// Compare resolves both locations and gathers estimates from every provider.
func (s *Service) Compare(ctx context.Context, pickupIn, destinationIn location.Input, userID *uuid.UUID) (*ComparisonResult, error) {
	pickup, err := s.locations.Normalize(ctx, pickupIn)
	if err != nil {
		if errors.Is(err, location.ErrInvalidLocation) {
			return nil, common.NewBadRequestError("pickup location is invalid", err)
		}
		return nil, common.NewInternalError("failed to resolve pickup location", err)
	}

	destination, err := s.locations.Normalize(ctx, destinationIn)
	if err != nil {
		if errors.Is(err, location.ErrInvalidLocation) {
			return nil, common.NewBadRequestError("destination location is invalid", err)
		}
		return nil, common.NewInternalError("failed to resolve destination location", err)
	}

	var (
		wg       sync.WaitGroup
		distance routing.DistanceInfo
		results  = make([]*providers.Result, len(s.clients))
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		distance = s.routes.Distance(ctx, pickup, destination)
	}()

	for i, client := range s.clients {
		wg.Add(1)
		go func(i int, client providers.Client) {
			defer wg.Done()
			results[i] = client.GetEstimates(ctx, pickup, destination)
		}(i, client)
	}
	wg.Wait()

	comparison := &ComparisonResult{
		Pickup:      pickup,
		Destination: destination,
		Distance:    distance,
		Results:     assembleResults(results),
	}

	s.recordSearch(ctx, userID, comparison)

	return comparison, nil
}

// History returns a user's past searches.
func (s *Service) History(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*SearchRecord, error) {
	if s.repo == nil {
		return nil, common.NewInternalError("search history is not enabled", nil)
	}
	return s.repo.ListSearches(ctx, userID, limit, offset)
}

// Search returns one past search by ID.
func (s *Service) Search(ctx context.Context, id uuid.UUID) (*SearchRecord, error) {
	if s.repo == nil {
		return nil, common.NewInternalError("search history is not enabled", nil)
	}

	record, err := s.repo.GetSearch(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewNotFoundError("search not found", err)
		}
		return nil, common.NewInternalError("failed to load search", err)
	}
	return record, nil
}

// recordSearch persists the comparison without ever failing the request.
func (s *Service) recordSearch(ctx context.Context, userID *uuid.UUID, comparison *ComparisonResult) {
	if s.repo == nil {
		return
	}

	record := &SearchRecord{
		ID:          uuid.New(),
		UserID:      userID,
		Pickup:      comparison.Pickup,
		Destination: comparison.Destination,
		Results:     comparison.Results,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.repo.CreateSearch(ctx, record); err != nil {
		logger.WarnContext(ctx, "Failed to record search", zap.Error(err))
	}
}

// assembleResults maps fan-out results to their named slots so the response
// order is always uber, ola, rapido.
func assembleResults(results []*providers.Result) *ProviderResults {
	assembled := &ProviderResults{}
	for _, result := range results {
		if result == nil {
			continue
		}
		switch result.Service {
		case providers.ServiceUber:
			assembled.Uber = result
		case providers.ServiceOla:
			assembled.Ola = result
		case providers.ServiceRapido:
			assembled.Rapido = result
		}
	}
	return assembled
}
