package compare

import (
	"time"

	"github.com/google/uuid"

	"github.com/farewise/fare-compare/internal/location"
	"github.com/farewise/fare-compare/internal/providers"
	"github.com/farewise/fare-compare/internal/routing"
)

// ProviderResults holds one result per provider. A struct rather than a map
// keeps the JSON field order stable.
type ProviderResults struct {
	Uber   *providers.Result `json:"uber"`
	Ola    *providers.Result `json:"ola"`
	Rapido *providers.Result `json:"rapido"`
}

// ComparisonResult is the full response for one price comparison.
type ComparisonResult struct {
	Pickup      location.CanonicalLocation `json:"pickup"`
	Destination location.CanonicalLocation `json:"destination"`
	Distance    routing.DistanceInfo       `json:"distance"`
	Results     *ProviderResults           `json:"results"`
}

// SearchRecord is a persisted price comparison.
type SearchRecord struct {
	ID          uuid.UUID                  `json:"id"`
	UserID      *uuid.UUID                 `json:"user_id,omitempty"`
	Pickup      location.CanonicalLocation `json:"pickup"`
	Destination location.CanonicalLocation `json:"destination"`
	Results     *ProviderResults           `json:"results"`
	CreatedAt   time.Time                  `json:"created_at"`
}
