package pricing

import (
	"github.com/movaro/movaro/internal/domain"
	"github.com/movaro/movaro/internal/rates"
)

// FloorCost computes the access-difficulty surcharge for both ends of the
// job. Each location is evaluated independently: a floor above ground with
// no lift charges floor times the per-floor rate, capped per location; a
// ground floor or a lift charges nothing.
func FloorCost(p *rates.Profile, pickupFloor int, pickupHasLift bool, deliveryFloor int, deliveryHasLift bool) (float64, error) {
	const op = "pricing.floor"

	if pickupFloor < 0 || deliveryFloor < 0 {
		return 0, domain.Invalid(op, "floor number cannot be negative")
	}

	cost := sideCost(p, pickupFloor, pickupHasLift) + sideCost(p, deliveryFloor, deliveryHasLift)
	return domain.Round2(cost), nil
}

func sideCost(p *rates.Profile, floor int, hasLift bool) float64 {
	if floor <= 0 || hasLift {
		return 0
	}
	cost := float64(floor) * p.FloorRatePerFloor
	if cost > p.FloorCapPerSide {
		cost = p.FloorCapPerSide
	}
	return cost
}
