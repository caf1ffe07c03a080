// Package rates holds the versioned rate configuration for the pricing
// engine. A Profile is pure data: it is injected into the engine at
// construction and never mutated, so rate-table changes are ordinary
// config changes and multiple profiles can coexist in tests.
package rates

import (
	"fmt"
	"math"

	"github.com/movaro/movaro/internal/domain"
)

// DistanceTier is a contiguous distance band with its own per-km rate.
// The final tier of a profile must be unbounded (UpToKm = +Inf).
type DistanceTier struct {
	UpToKm    float64 // Upper bound of the band, cumulative from the previous tier
	RatePerKm float64
}

// VehicleClass is a named capacity bucket with an associated cost multiplier.
// Classes are declared smallest to largest.
type VehicleClass struct {
	Label      string
	VolumeM3   float64 // Maximum load volume
	WeightKg   float64 // Maximum load weight
	Multiplier float64 // Scales the entire raw subtotal
}

// ServicePrice is the price of one opt-in extra service.
type ServicePrice struct {
	Base    float64
	PerItem float64
}

// UrgencyBand maps a lead-time breakpoint to a demand factor. Bands are
// evaluated in order and the first band with LeadDays >= lead time wins;
// a lead time beyond all bands gets the profile's StandardFactor.
type UrgencyBand struct {
	LeadDays int
	Factor   float64
}

// DurationParams are the constants of the estimated-duration formula.
type DurationParams struct {
	MinutesPerItem  float64
	MinutesPerFloor float64
	MinutesPerKm    float64
	MinimumHours    float64
}

// Profile is one complete, versioned rate configuration.
type Profile struct {
	Name            string
	BasePrices      map[string]float64
	DefaultCategory string // Fallback for unrecognized categories

	DistanceTiers   []DistanceTier
	RoundTripFactor float64 // Models the driver's return leg
	MinDistanceCost float64 // Price floor for the distance component

	VehicleClasses []VehicleClass

	FloorRatePerFloor float64
	FloorCapPerSide   float64

	Packing     ServicePrice
	Assembly    ServicePrice
	Disassembly ServicePrice
	Cleaning    ServicePrice
	Insurance   map[domain.InsuranceTier]float64

	WeekdayFactors [7]float64  // Indexed by time.Weekday (Sunday = 0)
	MonthFactors   [13]float64 // Indexed by time.Month (1-12); index 0 unused
	UrgencyBands   []UrgencyBand
	StandardFactor float64

	VATRate         float64
	PlatformFeeRate float64

	Duration DurationParams
}

// Validate checks structural invariants of the profile. It is called once at
// startup; a malformed rate table is a deployment error, not a runtime one.
func (p *Profile) Validate() error {
	if len(p.DistanceTiers) == 0 {
		return fmt.Errorf("profile %q: at least one distance tier is required", p.Name)
	}
	prev := 0.0
	for i, tier := range p.DistanceTiers {
		if tier.UpToKm <= prev {
			return fmt.Errorf("profile %q: distance tier %d bound %.1f must exceed previous bound %.1f",
				p.Name, i, tier.UpToKm, prev)
		}
		if tier.RatePerKm < 0 {
			return fmt.Errorf("profile %q: distance tier %d has negative rate", p.Name, i)
		}
		prev = tier.UpToKm
	}
	if !math.IsInf(p.DistanceTiers[len(p.DistanceTiers)-1].UpToKm, 1) {
		return fmt.Errorf("profile %q: final distance tier must be unbounded", p.Name)
	}
	if len(p.VehicleClasses) == 0 {
		return fmt.Errorf("profile %q: at least one vehicle class is required", p.Name)
	}
	prevVol, prevWt := 0.0, 0.0
	for i, class := range p.VehicleClasses {
		if class.VolumeM3 <= prevVol || class.WeightKg <= prevWt {
			return fmt.Errorf("profile %q: vehicle class %d (%s) capacities must increase monotonically",
				p.Name, i, class.Label)
		}
		prevVol, prevWt = class.VolumeM3, class.WeightKg
	}
	if _, ok := p.BasePrices[p.DefaultCategory]; !ok {
		return fmt.Errorf("profile %q: default category %q has no base price", p.Name, p.DefaultCategory)
	}
	prevLead := -1
	for i, band := range p.UrgencyBands {
		if band.LeadDays <= prevLead {
			return fmt.Errorf("profile %q: urgency band %d lead days must increase monotonically", p.Name, i)
		}
		prevLead = band.LeadDays
	}
	return nil
}

// BasePrice returns the base price for a category, falling back to the
// default category when the key is unknown. Quoting must remain available
// for new categories pending configuration updates, so this never fails.
func (p *Profile) BasePrice(category string) (float64, string) {
	if price, ok := p.BasePrices[category]; ok {
		return price, category
	}
	return p.BasePrices[p.DefaultCategory], p.DefaultCategory
}
