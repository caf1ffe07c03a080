package pricing

import (
	"fmt"

	"github.com/movaro/movaro/internal/domain"
	"github.com/movaro/movaro/internal/rates"
)

// ExtraServices sums the opt-in add-ons. Each enabled service produces
// exactly one breakdown line; disabled services produce none. Line order
// follows a fixed declaration order (packing, assembly, disassembly,
// cleaning, insurance) for reproducibility.
func ExtraServices(p *rates.Profile, in domain.PricingInput) (float64, []domain.BreakdownLine) {
	itemCount := in.TotalQuantity()
	total := 0.0
	var lines []domain.BreakdownLine

	add := func(label string, amount float64) {
		amount = domain.Round2(amount)
		total += amount
		lines = append(lines, domain.BreakdownLine{Label: label, Amount: amount})
	}

	if in.NeedsPacking {
		add(fmt.Sprintf("Packing service (%d items)", itemCount),
			p.Packing.Base+p.Packing.PerItem*float64(itemCount))
	}
	if in.NeedsAssembly {
		add(fmt.Sprintf("Furniture assembly (%d items)", itemCount),
			p.Assembly.Base+p.Assembly.PerItem*float64(itemCount))
	}
	if in.NeedsDisassembly {
		add(fmt.Sprintf("Furniture disassembly (%d items)", itemCount),
			p.Disassembly.Base+p.Disassembly.PerItem*float64(itemCount))
	}
	if in.NeedsCleaning {
		add("End-of-move cleaning", p.Cleaning.Base)
	}
	// Insurance has no per-item component, only a flat tier charge. The
	// lowest tiers may be free; a zero charge still gets its line so the
	// selection shows up on the quote.
	if in.Insurance != domain.InsuranceTierNone {
		add(fmt.Sprintf("Insurance (%s)", in.Insurance), p.Insurance[in.Insurance])
	}

	return domain.Round2(total), lines
}
