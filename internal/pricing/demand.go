package pricing

import (
	"time"

	"github.com/movaro/movaro/internal/rates"
)

// DemandMultiplier composes three independently looked-up factors into one
// multiplier: day-of-week, calendar month, and lead-time urgency. It is a
// pure function of the two timestamps; recomputing with identical inputs
// always yields the same multiplier.
func DemandMultiplier(p *rates.Profile, scheduledDate, requestedAt time.Time) float64 {
	weekday := p.WeekdayFactors[scheduledDate.Weekday()]
	month := p.MonthFactors[scheduledDate.Month()]
	urgency := urgencyFactor(p, leadDays(scheduledDate, requestedAt))
	return weekday * month * urgency
}

// leadDays returns the number of calendar days between the request and the
// scheduled date. A job scheduled in the past relative to the request is
// treated as same-day.
func leadDays(scheduledDate, requestedAt time.Time) int {
	scheduled := scheduledDate.Truncate(24 * time.Hour)
	requested := requestedAt.Truncate(24 * time.Hour)
	days := int(scheduled.Sub(requested).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// urgencyFactor walks the ordered urgency bands; the first band covering the
// lead time wins, so the smallest matching breakpoint takes precedence.
func urgencyFactor(p *rates.Profile, lead int) float64 {
	for _, band := range p.UrgencyBands {
		if lead <= band.LeadDays {
			return band.Factor
		}
	}
	return p.StandardFactor
}
