package providers

import (
	"fmt"
	"math/rand"

	"github.com/farewise/fare-compare/internal/location"
	"github.com/farewise/fare-compare/pkg/geo"
)

// fareClass defines the synthetic pricing model for one ride class: fare is
// perKm * distance + base, with an ETA drawn from [etaMin, etaMax].
type fareClass struct {
	name   string
	perKm  float64
	base   float64
	etaMin int
	etaMax int
}

var fallbackClasses = map[string][]fareClass{
	ServiceUber: {
		{name: "UberX", perKm: 1.5, base: 2.5, etaMin: 2, etaMax: 7},
		{name: "UberXL", perKm: 2.2, base: 4, etaMin: 3, etaMax: 9},
		{name: "Uber Black", perKm: 3.5, base: 7, etaMin: 4, etaMax: 10},
	},
	ServiceOla: {
		{name: "Mini", perKm: 1.3, base: 2, etaMin: 2, etaMax: 6},
		{name: "Prime", perKm: 2.0, base: 3.5, etaMin: 3, etaMax: 8},
		{name: "SUV", perKm: 3.2, base: 5, etaMin: 4, etaMax: 10},
	},
	ServiceRapido: {
		{name: "Bike", perKm: 0.8, base: 1, etaMin: 1, etaMax: 4},
		{name: "Auto", perKm: 1.2, base: 1.5, etaMin: 2, etaMax: 6},
	},
}

// fallbackResult synthesizes plausible estimates for a provider from the
// straight-line trip distance. Prices are deterministic for a given trip;
// only the ETAs vary.
func fallbackResult(service string, pickup, destination location.CanonicalLocation) *Result {
	distanceKm := geo.Haversine(pickup.Latitude, pickup.Longitude, destination.Latitude, destination.Longitude)

	classes := fallbackClasses[service]
	options := make([]RideOption, 0, len(classes))
	for _, class := range classes {
		fare := class.perKm*distanceKm + class.base
		eta := class.etaMin + rand.Intn(class.etaMax-class.etaMin+1)

		option := RideOption{
			Name:            class.name,
			Price:           fmt.Sprintf("%.2f", fare),
			ETAMinutes:      eta,
			DistanceKm:      distanceKm,
			SurgeMultiplier: 1.0,
		}

		if service == ServiceUber {
			option.Currency = "USD"
			option.Estimate = fmt.Sprintf("$%.2f-$%.2f", fare, fare+5)
		} else {
			option.Currency = "INR"
			option.Estimate = fmt.Sprintf("₹%.2f", fare)
		}

		options = append(options, option)
	}

	return &Result{
		Service:  service,
		Options:  options,
		Fallback: true,
	}
}
