// This file defines the Booking domain type: the persisted facts of a
// transport job plus its committed price. Reprice recomputes from these
// stored facts alone.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Booking Status
// =============================================================================

// BookingStatus represents the lifecycle state of a booking.
type BookingStatus string

const (
	// BookingStatusActive indicates the booking can be edited and repriced.
	BookingStatusActive BookingStatus = "active"

	// BookingStatusCancelled is terminal. No further reprice or edit is
	// permitted once a booking is cancelled.
	BookingStatusCancelled BookingStatus = "cancelled"
)

// String returns the string representation of the status.
func (s BookingStatus) String() string {
	return string(s)
}

// IsValid returns true if the status is a recognized value.
func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusActive, BookingStatusCancelled:
		return true
	}
	return false
}

// =============================================================================
// Booking Domain Type
// =============================================================================

// Booking represents a committed transport job with its stored pricing facts.
type Booking struct {
	ID               uuid.UUID
	Category         string
	DistanceKm       float64
	Items            []LineItem
	PickupFloor      int
	PickupHasLift    bool
	DeliveryFloor    int
	DeliveryHasLift  bool
	NeedsPacking     bool
	NeedsAssembly    bool
	NeedsDisassembly bool
	NeedsCleaning    bool
	Insurance        InsuranceTier
	ScheduledDate    time.Time
	RequestedAt      time.Time
	Price            float64
	Status           BookingStatus
	CancelReason     string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// PricingInput rebuilds the engine input from the booking's stored facts.
// Reprice must use this and nothing else, so the new price is reproducible
// from stored state alone.
func (b *Booking) PricingInput() PricingInput {
	return PricingInput{
		Category:         b.Category,
		DistanceKm:       b.DistanceKm,
		Items:            b.Items,
		PickupFloor:      b.PickupFloor,
		PickupHasLift:    b.PickupHasLift,
		DeliveryFloor:    b.DeliveryFloor,
		DeliveryHasLift:  b.DeliveryHasLift,
		NeedsPacking:     b.NeedsPacking,
		NeedsAssembly:    b.NeedsAssembly,
		NeedsDisassembly: b.NeedsDisassembly,
		NeedsCleaning:    b.NeedsCleaning,
		Insurance:        b.Insurance,
		ScheduledDate:    b.ScheduledDate,
		RequestedAt:      b.RequestedAt,
	}
}

// IsCancelled returns true if the booking has been cancelled.
func (b *Booking) IsCancelled() bool {
	return b.Status == BookingStatusCancelled
}

// =============================================================================
// Booking Service Parameters
// =============================================================================

// CreateBookingParams contains validated parameters for persisting a booking.
type CreateBookingParams struct {
	Input PricingInput // Stored job facts
	Price float64      // The chosen (quoted) price
}

// RepriceQuote is the result of an administrative recompute: the stored price
// alongside a freshly computed one. It carries no side effects; committing is
// a separate, explicit step.
type RepriceQuote struct {
	BookingID uuid.UUID
	OldPrice  float64
	NewPrice  float64
	Result    *PricingResult
}

// CommitRepriceParams contains parameters for committing a reprice.
type CommitRepriceParams struct {
	BookingID uuid.UUID
	AdminID   uuid.UUID
	OldPrice  float64 // The price presented to the administrator at recompute time
	NewPrice  float64
	Note      string // Optional
}

// CancelBookingParams contains parameters for cancelling a booking.
type CancelBookingParams struct {
	BookingID uuid.UUID
	AdminID   uuid.UUID
	Reason    string // Required, minimum 3 characters
}

// EditBookingParams contains the editable stored facts of a booking. The
// service diffs these against the current state and records every changed
// field in the audit entry.
type EditBookingParams struct {
	BookingID  uuid.UUID
	AdminID    uuid.UUID
	DistanceKm float64
	Items      []LineItem
	Note       string // Optional
}
