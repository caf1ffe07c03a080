package pricing

import (
	"fmt"

	"github.com/movaro/movaro/internal/domain"
	"github.com/movaro/movaro/internal/rates"
)

// Engine composes the per-component calculators into a full quote. It is
// stateless and reentrant; the injected profile and learning source are
// read-only after construction.
type Engine struct {
	profile     *rates.Profile
	learning    LearningSource
	taxIncluded bool
}

// NewEngine creates a pricing engine for the given rate profile.
// A nil learning source defaults to NeutralLearning.
func NewEngine(profile *rates.Profile, learning LearningSource, taxIncluded bool) (*Engine, error) {
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rate profile: %w", err)
	}
	if learning == nil {
		learning = NeutralLearning{}
	}
	return &Engine{
		profile:     profile,
		learning:    learning,
		taxIncluded: taxIncluded,
	}, nil
}

// Profile returns the engine's rate profile.
func (e *Engine) Profile() *rates.Profile {
	return e.profile
}

// Calculate computes a full quote from the job's facts.
//
// It rejects type/range violations (negative values, unrecognized insurance
// tier) but never fails on unusual-but-valid inputs: an unknown category
// falls back to the profile's default category and an empty item list is
// treated as zero volume and weight.
func (e *Engine) Calculate(in domain.PricingInput) (*domain.PricingResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	p := e.profile

	basePrice, category := p.BasePrice(in.Category)
	basePrice = domain.Round2(basePrice)

	distanceCost, err := DistanceCost(p, in.DistanceKm)
	if err != nil {
		return nil, err
	}

	floorCost, err := FloorCost(p, in.PickupFloor, in.PickupHasLift, in.DeliveryFloor, in.DeliveryHasLift)
	if err != nil {
		return nil, err
	}

	extrasCost, extraLines := ExtraServices(p, in)

	vehicle := ResolveVehicle(p, in.TotalVolume(), in.TotalWeight())
	demand := DemandMultiplier(p, in.ScheduledDate, in.RequestedAt)

	rawSubtotal := basePrice + distanceCost + floorCost + extrasCost
	afterVehicle := rawSubtotal * vehicle.Multiplier
	afterDemand := afterVehicle * demand

	// Historical adjustments are applied after composition and before final
	// rounding. Neutral sources return 1.0 and leave the figures untouched.
	adjustment := e.learning.AcceptanceAdjustment(category, "") *
		e.learning.SeasonalCorrection(in.ScheduledDate.Month())

	subtotal := domain.Round2(afterDemand * adjustment)

	vat := 0.0
	if e.taxIncluded {
		vat = domain.Round2(subtotal * p.VATRate)
	}
	total := domain.Round2(subtotal + vat)

	result := &domain.PricingResult{
		BasePrice:         basePrice,
		DistanceCost:      distanceCost,
		FloorCost:         floorCost,
		ExtrasCost:        extrasCost,
		VehicleMultiplier: vehicle.Multiplier,
		DemandMultiplier:  demand,
		Subtotal:          subtotal,
		VAT:               vat,
		Total:             total,
		PlatformFee:       domain.Round2(total * p.PlatformFeeRate),
		Vehicle:           vehicle.Label,
		Trips:             vehicle.Trips,
		EstimatedHours:    e.estimateHours(in),
		PriceMin:          PriceRangeMin(total),
		PriceMax:          PriceRangeMax(total),
	}

	result.Breakdown = e.buildBreakdown(in, result, category, extraLines, rawSubtotal, afterVehicle, afterDemand, adjustment)
	return result, nil
}

// estimateHours applies the fixed duration formula: per-item loading and
// unloading time, per-floor carrying time for walk-up floors, and
// distance-based driving time, converted to hours and rounded to 1 decimal.
func (e *Engine) estimateHours(in domain.PricingInput) float64 {
	d := e.profile.Duration
	minutes := float64(in.TotalQuantity())*d.MinutesPerItem +
		float64(in.WalkUpFloors())*d.MinutesPerFloor +
		in.DistanceKm*d.MinutesPerKm
	hours := minutes / 60
	if hours < d.MinimumHours {
		hours = d.MinimumHours
	}
	return roundTo1(hours)
}

func roundTo1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}

// buildBreakdown assembles the ordered breakdown lines. Labels embed the
// numeric basis of each line so the breakdown is self-explanatory without
// external context. Summing all lines reproduces the total within a rounding
// tolerance of 0.02.
func (e *Engine) buildBreakdown(
	in domain.PricingInput,
	r *domain.PricingResult,
	category string,
	extraLines []domain.BreakdownLine,
	rawSubtotal, afterVehicle, afterDemand float64,
	adjustment float64,
) []domain.BreakdownLine {
	lines := []domain.BreakdownLine{
		{Label: fmt.Sprintf("Base price (%s)", category), Amount: r.BasePrice},
		{Label: fmt.Sprintf("Distance (%.1f km)", in.DistanceKm), Amount: r.DistanceCost},
	}
	if r.FloorCost > 0 {
		lines = append(lines, domain.BreakdownLine{
			Label:  "Floor access surcharge",
			Amount: r.FloorCost,
		})
	}
	lines = append(lines, extraLines...)

	if vehicleDelta := domain.Round2(afterVehicle - rawSubtotal); vehicleDelta != 0 {
		lines = append(lines, domain.BreakdownLine{
			Label:  fmt.Sprintf("Vehicle: %s, %d trip(s) (x%.2f)", r.Vehicle, r.Trips, r.VehicleMultiplier),
			Amount: vehicleDelta,
		})
	}
	if demandDelta := domain.Round2(afterDemand - afterVehicle); demandDelta != 0 {
		lines = append(lines, domain.BreakdownLine{
			Label:  fmt.Sprintf("Demand adjustment (x%.2f)", r.DemandMultiplier),
			Amount: demandDelta,
		})
	}
	if adjustment != 1.0 {
		lines = append(lines, domain.BreakdownLine{
			Label:  fmt.Sprintf("Historical adjustment (x%.2f)", adjustment),
			Amount: domain.Round2(afterDemand*adjustment - afterDemand),
		})
	}
	if r.VAT > 0 {
		lines = append(lines, domain.BreakdownLine{
			Label:  fmt.Sprintf("VAT (%.0f%%)", e.profile.VATRate*100),
			Amount: r.VAT,
		})
	}
	return lines
}

// PriceRangeMin derives the low bound of the quoted range from an already
// 2-dp-rounded total: 15% below, rounded to the nearest 5 currency units.
// Both the initial-quote path and the blend path use this same derivation.
func PriceRangeMin(total float64) float64 {
	return domain.RoundTo5(total * 0.85)
}

// PriceRangeMax derives the high bound of the quoted range: 15% above,
// rounded to the nearest 5 currency units.
func PriceRangeMax(total float64) float64 {
	return domain.RoundTo5(total * 1.15)
}
