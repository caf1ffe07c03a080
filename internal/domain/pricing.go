// Package domain contains core business types and interfaces.
//
// This file defines the pricing input and result types shared by the
// quotation engine, the external estimator, and the reprice flow.
package domain

import (
	"strings"
	"time"
)

// =============================================================================
// Insurance Tier
// =============================================================================

// InsuranceTier represents the customer's selected insurance coverage level.
type InsuranceTier string

const (
	InsuranceTierNone     InsuranceTier = "none"
	InsuranceTierBasic    InsuranceTier = "basic"
	InsuranceTierStandard InsuranceTier = "standard"
	InsuranceTierPremium  InsuranceTier = "premium"
)

// String returns the string representation of the tier.
func (t InsuranceTier) String() string {
	return string(t)
}

// IsValid returns true if the tier is a recognized value.
func (t InsuranceTier) IsValid() bool {
	switch t {
	case InsuranceTierNone, InsuranceTierBasic, InsuranceTierStandard, InsuranceTierPremium:
		return true
	}
	return false
}

// =============================================================================
// Pricing Input
// =============================================================================

// LineItem is a single entry on the job's item list.
type LineItem struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	WeightKg float64 `json:"weight_kg"` // per unit
	VolumeM3 float64 `json:"volume_m3"` // per unit
}

// PricingInput contains the validated facts of a transport job used to
// compute a quote. It is immutable per calculation call.
type PricingInput struct {
	Category         string        // Job category key (e.g., "apartment_move")
	DistanceKm       float64       // One-way distance
	Items            []LineItem    // May be empty (treated as zero volume/weight)
	PickupFloor      int           // Floor number at pickup
	PickupHasLift    bool
	DeliveryFloor    int           // Floor number at delivery
	DeliveryHasLift  bool
	NeedsPacking     bool
	NeedsAssembly    bool
	NeedsDisassembly bool
	NeedsCleaning    bool
	Insurance        InsuranceTier
	ScheduledDate    time.Time // When the job is scheduled to happen
	RequestedAt      time.Time // When the quote was requested
}

// Validate checks the input for type/range violations. Unknown-but-plausible
// values (unrecognized category, empty item list) are not errors; the engine
// resolves those via documented fallbacks.
func (in PricingInput) Validate() error {
	const op = "pricing.validate"

	if in.DistanceKm < 0 {
		return Invalid(op, "distance cannot be negative")
	}
	if in.PickupFloor < 0 || in.DeliveryFloor < 0 {
		return Invalid(op, "floor number cannot be negative")
	}
	for _, item := range in.Items {
		if strings.TrimSpace(item.Name) == "" {
			return Invalid(op, "item name is required")
		}
		if item.Quantity < 1 {
			return Invalid(op, "item quantity must be at least 1")
		}
		if item.WeightKg < 0 {
			return Invalid(op, "item weight cannot be negative")
		}
		if item.VolumeM3 < 0 {
			return Invalid(op, "item volume cannot be negative")
		}
	}
	if !in.Insurance.IsValid() {
		return Invalid(op, "unrecognized insurance tier: "+in.Insurance.String())
	}
	return nil
}

// TotalQuantity returns the quantity-weighted item count.
func (in PricingInput) TotalQuantity() int {
	total := 0
	for _, item := range in.Items {
		total += item.Quantity
	}
	return total
}

// TotalVolume returns the aggregate volume across all line items.
func (in PricingInput) TotalVolume() float64 {
	total := 0.0
	for _, item := range in.Items {
		total += item.VolumeM3 * float64(item.Quantity)
	}
	return total
}

// TotalWeight returns the aggregate weight across all line items.
func (in PricingInput) TotalWeight() float64 {
	total := 0.0
	for _, item := range in.Items {
		total += item.WeightKg * float64(item.Quantity)
	}
	return total
}

// WalkUpFloors returns the number of floors that must be climbed without a
// lift, summed over both locations. Used by the duration estimate.
func (in PricingInput) WalkUpFloors() int {
	floors := 0
	if in.PickupFloor > 0 && !in.PickupHasLift {
		floors += in.PickupFloor
	}
	if in.DeliveryFloor > 0 && !in.DeliveryHasLift {
		floors += in.DeliveryFloor
	}
	return floors
}

// =============================================================================
// Pricing Result
// =============================================================================

// BreakdownLine is one human-readable entry of the quote breakdown.
// Insertion order is display order and must be preserved.
type BreakdownLine struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

// PricingResult is the full computed quote. It is produced fresh on every
// calculation and is never persisted as mutable state; only a booking's
// chosen price and its audit trail persist.
type PricingResult struct {
	BasePrice         float64         `json:"base_price"`
	DistanceCost      float64         `json:"distance_cost"`
	FloorCost         float64         `json:"floor_cost"`
	ExtrasCost        float64         `json:"extras_cost"`
	VehicleMultiplier float64         `json:"vehicle_multiplier"`
	DemandMultiplier  float64         `json:"demand_multiplier"`
	Subtotal          float64         `json:"subtotal"`
	VAT               float64         `json:"vat"`
	Total             float64         `json:"total"`
	PlatformFee       float64         `json:"platform_fee"` // informational, not charged to the customer
	Vehicle           string          `json:"vehicle"`
	Trips             int             `json:"trips"`
	EstimatedHours    float64         `json:"estimated_hours"`
	PriceMin          float64         `json:"price_min"`
	PriceMax          float64         `json:"price_max"`
	Breakdown         []BreakdownLine `json:"breakdown"`
}

// BreakdownTotal sums all breakdown line amounts. For a consistent result it
// reproduces Total within a rounding tolerance of 0.02.
func (r *PricingResult) BreakdownTotal() float64 {
	sum := 0.0
	for _, line := range r.Breakdown {
		sum += line.Amount
	}
	return sum
}

// =============================================================================
// Validation Result
// =============================================================================

// ValidationResult is an external estimator's opinion on a computed quote.
// It is never authoritative on its own; the blending policy decides whether
// it affects the price.
type ValidationResult struct {
	Reasonable     bool     `json:"reasonable"`
	SuggestedTotal float64  `json:"suggested_total"` // 0 means no suggestion
	Confidence     int      `json:"confidence"`      // 0-100
	Reasoning      string   `json:"reasoning"`
	Warnings       []string `json:"warnings"`
}
