package pricing

import (
	"testing"
	"time"

	"github.com/movaro/movaro/internal/domain"
	"github.com/movaro/movaro/internal/rates"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedLearning returns constant adjustments for testing the historical hook.
type fixedLearning struct {
	acceptance float64
	seasonal   float64
}

func (f fixedLearning) AcceptanceAdjustment(category, locality string) float64 { return f.acceptance }
func (f fixedLearning) SeasonalCorrection(month time.Month) float64           { return f.seasonal }
func (f fixedLearning) RecordOutcome(outcome QuoteOutcome)                    {}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine(rates.Standard(), nil, true)
	require.NoError(t, err)
	return engine
}

func baseInput() domain.PricingInput {
	return domain.PricingInput{
		Category:   "apartment_move",
		DistanceKm: 20,
		Items: []domain.LineItem{
			{Name: "Sofa", Quantity: 1, WeightKg: 40, VolumeM3: 2.5},
			{Name: "Boxes", Quantity: 10, WeightKg: 10, VolumeM3: 0.1},
		},
		PickupFloor:   2,
		Insurance:     domain.InsuranceTierNone,
		ScheduledDate: date(2025, time.March, 11),
		RequestedAt:   date(2025, time.February, 20),
	}
}

func TestEngine_Calculate(t *testing.T) {
	engine := newTestEngine(t)

	result, err := engine.Calculate(baseInput())
	require.NoError(t, err)

	// base 90 + distance 68.80 + floors 24 = 182.80, Van x1.0,
	// demand 0.90 (Tuesday, March, 19 days lead) -> 164.52
	assert.InDelta(t, 90, result.BasePrice, 0.001)
	assert.InDelta(t, 68.80, result.DistanceCost, 0.001)
	assert.InDelta(t, 24, result.FloorCost, 0.001)
	assert.Zero(t, result.ExtrasCost)
	assert.Equal(t, "Van", result.Vehicle)
	assert.Equal(t, 1, result.Trips)
	assert.InDelta(t, 1.0, result.VehicleMultiplier, 0.001)
	assert.InDelta(t, 0.90, result.DemandMultiplier, 0.0001)

	assert.InDelta(t, 164.52, result.Subtotal, 0.001)
	assert.InDelta(t, 34.55, result.VAT, 0.001)
	assert.InDelta(t, 199.07, result.Total, 0.001)
	assert.InDelta(t, 29.86, result.PlatformFee, 0.001)

	assert.InDelta(t, 170, result.PriceMin, 0.001)
	assert.InDelta(t, 230, result.PriceMax, 0.001)

	// 44 min items + 10 min walk-up + 22 min driving = 76 min
	assert.InDelta(t, 1.3, result.EstimatedHours, 0.001)
}

func TestEngine_Calculate_Invariants(t *testing.T) {
	engine := newTestEngine(t)

	inputs := []domain.PricingInput{
		baseInput(),
		func() domain.PricingInput {
			in := baseInput()
			in.Category = "house_move"
			in.DistanceKm = 180
			in.Items = append(in.Items, domain.LineItem{Name: "Wardrobe", Quantity: 3, WeightKg: 90, VolumeM3: 1.8})
			in.NeedsPacking = true
			in.NeedsCleaning = true
			in.Insurance = domain.InsuranceTierPremium
			return in
		}(),
		func() domain.PricingInput {
			in := baseInput()
			in.DistanceKm = 0
			in.Items = nil
			in.PickupFloor = 0
			return in
		}(),
		func() domain.PricingInput {
			in := baseInput()
			in.Items = []domain.LineItem{{Name: "Machinery", Quantity: 4, WeightKg: 1800, VolumeM3: 14}}
			in.ScheduledDate = date(2025, time.July, 12)
			in.RequestedAt = date(2025, time.July, 12)
			return in
		}(),
	}

	for _, in := range inputs {
		result, err := engine.Calculate(in)
		require.NoError(t, err)

		assert.InDelta(t, result.Total, result.Subtotal+result.VAT, 0.011)
		assert.InDelta(t, result.Total, result.BreakdownTotal(), 0.02)
		assert.LessOrEqual(t, result.PriceMin, result.Total+2.5)
		assert.GreaterOrEqual(t, result.PriceMax, result.Total-2.5)
		assert.Greater(t, result.Total, 0.0)
		assert.GreaterOrEqual(t, result.EstimatedHours, engine.Profile().Duration.MinimumHours)
	}
}

func TestEngine_Calculate_UnknownCategoryFallsBack(t *testing.T) {
	engine := newTestEngine(t)

	in := baseInput()
	in.Category = "interplanetary_move"

	result, err := engine.Calculate(in)
	require.NoError(t, err)

	// default category small_move has base price 40
	assert.InDelta(t, 40, result.BasePrice, 0.001)
	require.NotEmpty(t, result.Breakdown)
	assert.Equal(t, "Base price (small_move)", result.Breakdown[0].Label)
}

func TestEngine_Calculate_EmptyItems(t *testing.T) {
	engine := newTestEngine(t)

	in := baseInput()
	in.Items = nil

	result, err := engine.Calculate(in)
	require.NoError(t, err)
	assert.Equal(t, "Van", result.Vehicle)
	assert.Equal(t, 1, result.Trips)
	assert.Greater(t, result.Total, 0.0)
}

func TestEngine_Calculate_TaxExcluded(t *testing.T) {
	engine, err := NewEngine(rates.Standard(), nil, false)
	require.NoError(t, err)

	result, err := engine.Calculate(baseInput())
	require.NoError(t, err)

	assert.Zero(t, result.VAT)
	assert.InDelta(t, result.Subtotal, result.Total, 0.001)
	for _, line := range result.Breakdown {
		assert.NotContains(t, line.Label, "VAT")
	}
}

func TestEngine_Calculate_InvalidInput(t *testing.T) {
	engine := newTestEngine(t)

	tests := []struct {
		name   string
		mutate func(*domain.PricingInput)
	}{
		{"negative distance", func(in *domain.PricingInput) { in.DistanceKm = -5 }},
		{"negative floor", func(in *domain.PricingInput) { in.PickupFloor = -1 }},
		{"unknown insurance tier", func(in *domain.PricingInput) { in.Insurance = "platinum" }},
		{"zero item quantity", func(in *domain.PricingInput) { in.Items[0].Quantity = 0 }},
		{"blank item name", func(in *domain.PricingInput) { in.Items[0].Name = "  " }},
		{"negative item weight", func(in *domain.PricingInput) { in.Items[0].WeightKg = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := baseInput()
			tt.mutate(&in)

			_, err := engine.Calculate(in)
			require.Error(t, err)
			assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
		})
	}
}

func TestEngine_Calculate_LearningAdjustment(t *testing.T) {
	engine, err := NewEngine(rates.Standard(), fixedLearning{acceptance: 1.10, seasonal: 1.0}, true)
	require.NoError(t, err)

	neutral := newTestEngine(t)

	in := baseInput()
	adjusted, err := engine.Calculate(in)
	require.NoError(t, err)
	base, err := neutral.Calculate(in)
	require.NoError(t, err)

	assert.InDelta(t, domain.Round2(base.Subtotal*1.10), adjusted.Subtotal, 0.011)
	assert.InDelta(t, adjusted.Total, adjusted.BreakdownTotal(), 0.02)

	found := false
	for _, line := range adjusted.Breakdown {
		if line.Label == "Historical adjustment (x1.10)" {
			found = true
		}
	}
	assert.True(t, found, "expected a historical adjustment line")
}

func TestEngine_Calculate_Idempotent(t *testing.T) {
	engine := newTestEngine(t)

	in := baseInput()
	first, err := engine.Calculate(in)
	require.NoError(t, err)
	second, err := engine.Calculate(in)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestNewEngine_RejectsInvalidProfile(t *testing.T) {
	p := rates.Standard()
	p.DistanceTiers = nil

	_, err := NewEngine(p, nil, true)
	assert.Error(t, err)
}

func TestPriceRange(t *testing.T) {
	tests := []struct {
		total   float64
		wantMin float64
		wantMax float64
	}{
		// 116 -> 98.6 and 133.4 -> snapped to 100 and 135
		{116, 100, 135},
		{100, 85, 115},
		{199.07, 170, 230},
		{0, 0, 0},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.wantMin, PriceRangeMin(tt.total), 0.001, "min of %.2f", tt.total)
		assert.InDelta(t, tt.wantMax, PriceRangeMax(tt.total), 0.001, "max of %.2f", tt.total)
	}
}
