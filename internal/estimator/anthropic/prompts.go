package anthropic

import (
	"fmt"
	"strings"

	"github.com/movaro/movaro/internal/estimator"
)

// buildReviewPrompt creates the prompt asking the model for an independent
// price opinion on a computed quote.
func buildReviewPrompt(params estimator.ReviewParams) string {
	in := params.Input
	r := params.Result

	var items strings.Builder
	for _, item := range in.Items {
		fmt.Fprintf(&items, "- %s x%d (%.1f kg, %.2f m3 per unit)\n",
			item.Name, item.Quantity, item.WeightKg, item.VolumeM3)
	}
	if items.Len() == 0 {
		items.WriteString("- (no items listed)\n")
	}

	prompt := fmt.Sprintf(`You are an experienced pricing analyst for a goods-transport marketplace. An automated engine has quoted a moving job; give an independent opinion on whether the price is reasonable for this market.

**Job summary:**
- Category: %s
- One-way distance: %.1f km
- Pickup: floor %d, lift: %t
- Delivery: floor %d, lift: %t
- Scheduled: %s (requested %s)
- Extra services: packing=%t assembly=%t disassembly=%t cleaning=%t insurance=%s
- Items:
%s
**Engine quote:**
- Recommended vehicle: %s (%d trip(s))
- Subtotal: %.2f, VAT: %.2f, Total: %.2f
- Quoted range: %.0f - %.0f

**Guidelines:**
- Judge the total against typical market rates for distance, load, and access difficulty
- Only suggest a different total when you have a concrete reason
- List specific warnings for anything that looks mispriced or underspecified`,
		in.Category,
		in.DistanceKm,
		in.PickupFloor, in.PickupHasLift,
		in.DeliveryFloor, in.DeliveryHasLift,
		in.ScheduledDate.Format("2006-01-02"), in.RequestedAt.Format("2006-01-02"),
		in.NeedsPacking, in.NeedsAssembly, in.NeedsDisassembly, in.NeedsCleaning, in.Insurance,
		items.String(),
		r.Vehicle, r.Trips,
		r.Subtotal, r.VAT, r.Total,
		r.PriceMin, r.PriceMax,
	)

	prompt += `

**Response Format:**
Return ONLY a JSON object with this exact structure, no surrounding prose:

{
  "reasonable": true,
  "suggested_total": 0,
  "confidence": 85,
  "reasoning": "Short explanation of your assessment",
  "warnings": ["specific concern, if any"]
}

Set "suggested_total" to 0 when you have no alternative suggestion. "confidence" is 0-100.`

	return prompt
}
