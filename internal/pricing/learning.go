package pricing

import (
	"time"

	"github.com/google/uuid"
)

// QuoteOutcome is the completed/accepted/quoted price tuple recorded for
// future model training.
type QuoteOutcome struct {
	BookingID   uuid.UUID
	Category    string
	QuotedPrice float64
	FinalPrice  float64
	Accepted    bool
	RecordedAt  time.Time
}

// LearningSource supplies historical adjustment multipliers applied to the
// engine output after composition and before final rounding.
//
// Both adjustments are multiplicative with a neutral value of 1.0. When a
// non-neutral multiplier is returned, the engine rescales subtotal, VAT,
// total, and range bounds together, preserving total = subtotal + VAT.
type LearningSource interface {
	// AcceptanceAdjustment returns a multiplier keyed by job category and an
	// optional locality hint ("" when unknown).
	AcceptanceAdjustment(category, locality string) float64

	// SeasonalCorrection returns a multiplier for the scheduled month.
	SeasonalCorrection(month time.Month) float64

	// RecordOutcome stores a priced outcome for future training.
	RecordOutcome(outcome QuoteOutcome)
}

// NeutralLearning is the default LearningSource: both adjustments return 1.0
// and the recorder is a no-op. A statistical implementation is a drop-in
// replacement; the call sites in the engine do not change.
type NeutralLearning struct{}

func (NeutralLearning) AcceptanceAdjustment(category, locality string) float64 { return 1.0 }

func (NeutralLearning) SeasonalCorrection(month time.Month) float64 { return 1.0 }

func (NeutralLearning) RecordOutcome(outcome QuoteOutcome) {}
