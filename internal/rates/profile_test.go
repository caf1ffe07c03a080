package rates

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinProfilesAreValid(t *testing.T) {
	assert.NoError(t, Standard().Validate())
	assert.NoError(t, Economy().Validate())
}

func TestByName(t *testing.T) {
	p, err := ByName("standard")
	require.NoError(t, err)
	assert.Equal(t, "standard", p.Name)

	p, err = ByName("economy")
	require.NoError(t, err)
	assert.Equal(t, "economy", p.Name)

	_, err = ByName("premium")
	assert.Error(t, err)
}

func TestProfile_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Profile)
		wantErr string
	}{
		{
			name:    "no distance tiers",
			mutate:  func(p *Profile) { p.DistanceTiers = nil },
			wantErr: "at least one distance tier",
		},
		{
			name: "non-increasing tier bounds",
			mutate: func(p *Profile) {
				p.DistanceTiers[1].UpToKm = p.DistanceTiers[0].UpToKm
			},
			wantErr: "must exceed previous bound",
		},
		{
			name: "negative tier rate",
			mutate: func(p *Profile) {
				p.DistanceTiers[0].RatePerKm = -0.5
			},
			wantErr: "negative rate",
		},
		{
			name: "bounded final tier",
			mutate: func(p *Profile) {
				p.DistanceTiers[len(p.DistanceTiers)-1].UpToKm = 1000
			},
			wantErr: "final distance tier must be unbounded",
		},
		{
			name:    "no vehicle classes",
			mutate:  func(p *Profile) { p.VehicleClasses = nil },
			wantErr: "at least one vehicle class",
		},
		{
			name: "non-monotone vehicle capacities",
			mutate: func(p *Profile) {
				p.VehicleClasses[1].VolumeM3 = p.VehicleClasses[0].VolumeM3
			},
			wantErr: "capacities must increase monotonically",
		},
		{
			name:    "default category without base price",
			mutate:  func(p *Profile) { p.DefaultCategory = "mystery_move" },
			wantErr: "has no base price",
		},
		{
			name: "non-increasing urgency bands",
			mutate: func(p *Profile) {
				p.UrgencyBands[2].LeadDays = p.UrgencyBands[1].LeadDays
			},
			wantErr: "lead days must increase monotonically",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Standard()
			tt.mutate(p)

			err := p.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestProfile_BasePrice(t *testing.T) {
	p := Standard()

	price, category := p.BasePrice("house_move")
	assert.Equal(t, 150.0, price)
	assert.Equal(t, "house_move", category)

	price, category = p.BasePrice("piano_move")
	assert.Equal(t, 40.0, price)
	assert.Equal(t, "small_move", category)
}

func TestEconomyProfileDivergences(t *testing.T) {
	std, eco := Standard(), Economy()

	assert.Less(t, eco.MinDistanceCost, std.MinDistanceCost)
	for i := range eco.DistanceTiers {
		if math.IsInf(eco.DistanceTiers[i].UpToKm, 1) {
			continue
		}
		assert.Less(t, eco.DistanceTiers[i].RatePerKm, std.DistanceTiers[i].RatePerKm)
	}
	// shared tables are unchanged
	assert.Equal(t, std.VehicleClasses, eco.VehicleClasses)
	assert.Equal(t, std.WeekdayFactors, eco.WeekdayFactors)
}
