package pricing

import (
	"math"

	"github.com/movaro/movaro/internal/rates"
)

// VehicleChoice is the resolver's recommendation for a job.
type VehicleChoice struct {
	Label      string
	Trips      int
	Multiplier float64 // Class multiplier times trip count
}

// ResolveVehicle selects the smallest vehicle class whose volume and weight
// capacities both accommodate the job's totals. When nothing fits, the
// largest class runs multiple trips: the trip count is the larger of the
// volume-based and weight-based ceilings, so it is never fewer trips than
// either dimension requires.
//
// The returned multiplier scales the entire raw subtotal, not just a vehicle
// line item: larger or multiple vehicles imply more labor throughout the job.
func ResolveVehicle(p *rates.Profile, totalVolume, totalWeight float64) VehicleChoice {
	for _, class := range p.VehicleClasses {
		if totalVolume <= class.VolumeM3 && totalWeight <= class.WeightKg {
			return VehicleChoice{
				Label:      class.Label,
				Trips:      1,
				Multiplier: class.Multiplier,
			}
		}
	}

	largest := p.VehicleClasses[len(p.VehicleClasses)-1]
	trips := int(math.Max(
		math.Ceil(totalVolume/largest.VolumeM3),
		math.Ceil(totalWeight/largest.WeightKg),
	))
	if trips < 1 {
		trips = 1
	}
	return VehicleChoice{
		Label:      largest.Label,
		Trips:      trips,
		Multiplier: largest.Multiplier * float64(trips),
	}
}
