package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{1.005, 1.01},
		{1.004, 1.00},
		{-1.005, -1.01},
		{34.5492, 34.55},
		{0, 0},
		{199.065, 199.07},
		{2.675, 2.68}, // float64 literal 2.675 would misround with naive math
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, Round2(tt.in), 0.0001, "Round2(%v)", tt.in)
	}
}

func TestRoundTo5(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{98.6, 100},
		{133.4, 135},
		{97.4, 95},
		{97.5, 100},
		{102.4, 100},
		{0, 0},
		{2.5, 5},
		{-7.5, -10},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, RoundTo5(tt.in), 0.0001, "RoundTo5(%v)", tt.in)
	}
}
