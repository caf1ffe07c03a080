package pricing

import (
	"math"
	"strings"

	"github.com/movaro/movaro/internal/domain"
)

const (
	// blendThreshold is the relative divergence beyond which an external
	// suggestion moves the price.
	blendThreshold = 0.20

	// Engine-weighted blend: the deterministic engine keeps the larger share.
	blendEngineWeight    = 0.6
	blendSuggestedWeight = 0.4
)

// Blend applies the conflict-resolution policy between the engine's total
// and an external estimator's suggestion.
//
// If the opinion carries a positive suggested total diverging from the
// engine's total by more than 20%, the total is recomputed as an
// engine-weighted average (0.6 engine + 0.4 suggestion) and subtotal, VAT,
// and range bounds are re-derived from the blended total. Within the
// threshold the engine's figures are kept unchanged; a close-enough external
// opinion never silently overrides the engine.
//
// Returns the result to use and whether blending was applied. The input
// result is not mutated.
func Blend(result *domain.PricingResult, opinion *domain.ValidationResult, vatRate float64) (*domain.PricingResult, bool) {
	if opinion == nil || opinion.SuggestedTotal <= 0 || result.Total <= 0 {
		return result, false
	}

	diff := math.Abs(opinion.SuggestedTotal - result.Total)
	if diff <= result.Total*blendThreshold {
		return result, false
	}

	blended := *result
	blended.Total = domain.Round2(blendEngineWeight*result.Total + blendSuggestedWeight*opinion.SuggestedTotal)

	// Re-derive subtotal and VAT proportionally so total = subtotal + VAT
	// still holds. A tax-free quote keeps VAT at zero.
	if result.VAT > 0 {
		blended.Subtotal = domain.Round2(blended.Total / (1 + vatRate))
		blended.VAT = domain.Round2(blended.Total - blended.Subtotal)
	} else {
		blended.Subtotal = blended.Total
	}

	// Same round-then-range derivation as the initial quote path.
	blended.PriceMin = PriceRangeMin(blended.Total)
	blended.PriceMax = PriceRangeMax(blended.Total)

	// The itemized breakdown explains the engine's computation. The VAT line
	// is refreshed to the re-derived figure, and an adjustment line records
	// the rest of the external correction so the lines still sum to total.
	lines := append([]domain.BreakdownLine{}, result.Breakdown...)
	for i := range lines {
		if strings.HasPrefix(lines[i].Label, "VAT (") {
			lines[i].Amount = blended.VAT
		}
	}
	blended.Breakdown = append(lines, domain.BreakdownLine{
		Label:  "External estimate adjustment",
		Amount: domain.Round2(blended.Total - result.Total - (blended.VAT - result.VAT)),
	})

	return &blended, true
}
