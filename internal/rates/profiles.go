package rates

import (
	"fmt"
	"math"

	"github.com/movaro/movaro/internal/domain"
)

// Standard returns the default rate profile.
func Standard() *Profile {
	return &Profile{
		Name: "standard",
		BasePrices: map[string]float64{
			"small_move":     40,
			"apartment_move": 90,
			"house_move":     150,
			"office_move":    180,
			"single_item":    25,
		},
		DefaultCategory: "small_move",

		DistanceTiers: []DistanceTier{
			{UpToKm: 10, RatePerKm: 2.50},
			{UpToKm: 50, RatePerKm: 1.80},
			{UpToKm: 200, RatePerKm: 1.20},
			{UpToKm: math.Inf(1), RatePerKm: 0.90},
		},
		RoundTripFactor: 1.6,
		MinDistanceCost: 15,

		VehicleClasses: []VehicleClass{
			{Label: "Van", VolumeM3: 8, WeightKg: 800, Multiplier: 1.0},
			{Label: "Box Truck", VolumeM3: 20, WeightKg: 2000, Multiplier: 1.25},
			{Label: "Large Truck", VolumeM3: 40, WeightKg: 5000, Multiplier: 1.6},
		},

		FloorRatePerFloor: 12,
		FloorCapPerSide:   60,

		Packing:     ServicePrice{Base: 30, PerItem: 2.50},
		Assembly:    ServicePrice{Base: 25, PerItem: 4.00},
		Disassembly: ServicePrice{Base: 20, PerItem: 3.00},
		Cleaning:    ServicePrice{Base: 60, PerItem: 0},
		Insurance: map[domain.InsuranceTier]float64{
			domain.InsuranceTierNone:     0,
			domain.InsuranceTierBasic:    0,
			domain.InsuranceTierStandard: 25,
			domain.InsuranceTierPremium:  65,
		},

		// Sunday through Saturday. Saturday is the peak demand day.
		WeekdayFactors: [7]float64{1.15, 0.95, 0.90, 0.90, 0.95, 1.10, 1.25},
		MonthFactors: [13]float64{
			0, // index 0 unused
			0.90, 0.90, 1.00, 1.05, 1.10, 1.20,
			1.25, 1.20, 1.10, 1.00, 0.95, 1.05,
		},
		UrgencyBands: []UrgencyBand{
			{LeadDays: 0, Factor: 1.50}, // same-day
			{LeadDays: 1, Factor: 1.30}, // next-day
			{LeadDays: 3, Factor: 1.20},
			{LeadDays: 7, Factor: 1.10},
		},
		StandardFactor: 1.0,

		VATRate:         0.21,
		PlatformFeeRate: 0.15,

		Duration: DurationParams{
			MinutesPerItem:  4,
			MinutesPerFloor: 5,
			MinutesPerKm:    1.1,
			MinimumHours:    1.0,
		},
	}
}

// Economy returns a reduced-rate profile for the budget tier. It shares the
// standard profile's vehicle, demand, and extras tables but carries its own
// distance rates and minimum charge.
func Economy() *Profile {
	p := Standard()
	p.Name = "economy"
	p.DistanceTiers = []DistanceTier{
		{UpToKm: 10, RatePerKm: 2.00},
		{UpToKm: 50, RatePerKm: 1.40},
		{UpToKm: 200, RatePerKm: 1.00},
		{UpToKm: math.Inf(1), RatePerKm: 0.75},
	}
	p.MinDistanceCost = 10
	return p
}

// ByName resolves a profile selector from configuration.
func ByName(name string) (*Profile, error) {
	switch name {
	case "standard":
		return Standard(), nil
	case "economy":
		return Economy(), nil
	default:
		return nil, fmt.Errorf("unknown rate profile: %q", name)
	}
}
