// Package pricing implements the deterministic quotation engine: the
// per-component calculators, the orchestrator that composes them into a
// PricingResult, and the blending policy for external opinions.
//
// Everything in this package is a pure function of its inputs plus the
// injected rate profile. There is no shared mutable state, so arbitrarily
// many calculations may run in parallel.
package pricing

import (
	"math"

	"github.com/movaro/movaro/internal/domain"
	"github.com/movaro/movaro/internal/rates"
)

// DistanceCost converts a one-way distance into a monetary cost.
//
// The ordered tier list is walked cumulatively: each tier charges its rate
// only for the portion of distance falling inside its band. The sum is then
// multiplied by the profile's round-trip factor (the driver drives back) and
// clamped to the configured minimum charge.
func DistanceCost(p *rates.Profile, distanceKm float64) (float64, error) {
	const op = "pricing.distance"

	if distanceKm < 0 {
		return 0, domain.Invalid(op, "distance cannot be negative")
	}

	cost := 0.0
	prevBound := 0.0
	for _, tier := range p.DistanceTiers {
		if distanceKm <= prevBound {
			break
		}
		portion := math.Min(distanceKm, tier.UpToKm) - prevBound
		cost += portion * tier.RatePerKm
		prevBound = tier.UpToKm
	}

	cost *= p.RoundTripFactor
	if cost < p.MinDistanceCost {
		cost = p.MinDistanceCost
	}
	return domain.Round2(cost), nil
}
