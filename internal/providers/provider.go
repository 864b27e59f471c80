package providers

import (
	"context"

	"github.com/farewise/fare-compare/internal/location"
)

// Service names used in responses and logs.
const (
	ServiceUber   = "uber"
	ServiceOla    = "ola"
	ServiceRapido = "rapido"
)

// RideOption is a single ride class quote from a provider.
type RideOption struct {
	Name            string  `json:"name"`
	Price           string  `json:"price"`
	Currency        string  `json:"currency"`
	ETAMinutes      int     `json:"eta"`
	DistanceKm      float64 `json:"distance"`
	SurgeMultiplier float64 `json:"surge_multiplier"`
	Estimate        string  `json:"estimate"`
}

// Result holds every ride option a provider returned for a trip. Fallback is
// true when the options are synthetic rather than live quotes.
type Result struct {
	Service  string       `json:"service"`
	Options  []RideOption `json:"options"`
	Fallback bool         `json:"fallback"`
}

// Client fetches ride estimates from one provider. Implementations never
// return an error: any upstream failure degrades to synthetic estimates, so
// callers always receive a usable Result.
type Client interface {
	Name() string
	GetEstimates(ctx context.Context, pickup, destination location.CanonicalLocation) *Result
}
