// This file implements the administrative reprice flow and its audit trail.
//
// Recompute is a pure read: it derives a fresh price from the booking's
// stored facts and writes nothing. Commit is the only operation that mutates
// a stored price, and it appends the matching audit entry in the same
// transaction: a price change with no audit record is a correctness
// violation, so both succeed or neither does.
package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"math"
	"reflect"
	"strings"

	"github.com/google/uuid"
	"github.com/movaro/movaro/internal/domain"
	"github.com/movaro/movaro/internal/metrics"
	"github.com/movaro/movaro/internal/pricing"
	"github.com/movaro/movaro/internal/repository"
)

// priceTolerance is the largest difference between two prices that still
// counts as the same price.
const priceTolerance = 0.009

// BookingStore is the repository surface the reprice flow depends on.
type BookingStore interface {
	GetBookingByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	ListAuditEntriesByBookingID(ctx context.Context, bookingID uuid.UUID) ([]domain.AuditLogEntry, error)
	WithinTx(ctx context.Context, fn func(tx repository.Tx) error) error
}

// RepriceService defines the interface for administrative price operations.
type RepriceService interface {
	// Recompute derives a fresh price from the booking's stored facts.
	// Idempotent and side-effect-free; calling it twice without a commit in
	// between yields identical results.
	// Returns domain.ENOTFOUND if the booking does not exist.
	// Returns domain.ECONFLICT if the booking is cancelled.
	Recompute(ctx context.Context, bookingID uuid.UUID) (*domain.RepriceQuote, error)

	// Commit applies a recomputed price after administrator confirmation.
	// The committed figure is always recomputed from stored facts under the
	// row lock; the confirmed new price only gates the commit.
	// Returns domain.ECONFLICT if the booking is cancelled, its stored price
	// changed since the presented recompute, or the confirmed price no
	// longer matches the recomputed one.
	Commit(ctx context.Context, params domain.CommitRepriceParams) (*domain.AuditLogEntry, error)

	// Edit updates a booking's editable stored facts, reprices it from the
	// new facts, and records every changed field in the audit entry.
	// Returns domain.ECONFLICT if the booking is cancelled.
	Edit(ctx context.Context, params domain.EditBookingParams) (*domain.AuditLogEntry, error)

	// Cancel marks a booking cancelled. Terminal: no further reprice or
	// edit is permitted afterwards.
	// Returns domain.EINVALID if the reason is shorter than 3 characters.
	Cancel(ctx context.Context, params domain.CancelBookingParams) (*domain.AuditLogEntry, error)

	// AuditTrail returns a booking's audit entries, oldest first.
	AuditTrail(ctx context.Context, bookingID uuid.UUID) ([]domain.AuditLogEntry, error)
}

// repriceService implements the RepriceService interface.
type repriceService struct {
	store  BookingStore
	engine *pricing.Engine
	logger *slog.Logger
}

// NewRepriceService creates a new RepriceService.
func NewRepriceService(store BookingStore, engine *pricing.Engine, logger *slog.Logger) RepriceService {
	return &repriceService{
		store:  store,
		engine: engine,
		logger: logger,
	}
}

// txError normalizes a WithinTx failure: domain errors flow through, and
// begin/commit failures become internal errors.
func txError(err error, op string) error {
	var derr *domain.Error
	if errors.As(err, &derr) {
		return err
	}
	return domain.Internal(err, op, "transaction failed")
}

// =============================================================================
// Recompute
// =============================================================================

// Recompute derives a fresh price from stored facts alone. It accepts no ad
// hoc overrides, so the new price is reproducible from stored state.
func (s *repriceService) Recompute(ctx context.Context, bookingID uuid.UUID) (*domain.RepriceQuote, error) {
	const op = "reprice.recompute"

	booking, err := s.store.GetBookingByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "booking", bookingID.String())
		}
		return nil, domain.Internal(err, op, "failed to get booking")
	}

	if booking.IsCancelled() {
		return nil, domain.Conflict(op, "booking is cancelled; cancelled bookings cannot be repriced")
	}

	result, err := s.engine.Calculate(booking.PricingInput())
	if err != nil {
		return nil, err
	}

	return &domain.RepriceQuote{
		BookingID: booking.ID,
		OldPrice:  booking.Price,
		NewPrice:  result.Total,
		Result:    result,
	}, nil
}

// =============================================================================
// Commit
// =============================================================================

// Commit applies a recomputed price inside a row-locked transaction.
func (s *repriceService) Commit(ctx context.Context, params domain.CommitRepriceParams) (*domain.AuditLogEntry, error) {
	const op = "reprice.commit"

	var entry *domain.AuditLogEntry
	var oldPrice, newPrice float64

	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		// The row lock serializes concurrent admin commits per booking.
		booking, err := tx.GetBookingByIDForUpdate(ctx, params.BookingID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.NotFound(op, "booking", params.BookingID.String())
			}
			return domain.Internal(err, op, "failed to lock booking")
		}

		if booking.IsCancelled() {
			metrics.RepriceConflicts.Inc()
			return domain.Conflict(op, "booking is cancelled; cancelled bookings cannot be repriced")
		}

		// The administrator confirmed a specific old/new pair. If another
		// commit landed in between, the confirmation no longer describes
		// reality.
		if math.Abs(booking.Price-params.OldPrice) > priceTolerance {
			metrics.RepriceConflicts.Inc()
			return domain.Conflict(op, "stored price changed since recompute; fetch a fresh recompute and confirm again")
		}

		// The committed figure is always recomputed from stored facts under
		// the lock. The confirmed new price only gates the commit; it is
		// never what gets written, so a client cannot store an arbitrary
		// price through this path.
		result, err := s.engine.Calculate(booking.PricingInput())
		if err != nil {
			return err
		}
		if math.Abs(params.NewPrice-result.Total) > priceTolerance {
			metrics.RepriceConflicts.Inc()
			return domain.Conflict(op, "confirmed price does not match the price recomputed from stored facts; fetch a fresh recompute and confirm again")
		}

		if err := tx.UpdateBookingPrice(ctx, booking.ID, result.Total); err != nil {
			return domain.Internal(err, op, "failed to update price")
		}

		entry, err = tx.CreateAuditEntry(ctx, repository.CreateAuditEntryParams{
			BookingID: booking.ID,
			Action:    domain.AuditActionReprice,
			Diff: domain.AuditDiff{
				"price": {Before: booking.Price, After: result.Total},
			},
			Note:    params.Note,
			AdminID: params.AdminID,
		})
		if err != nil {
			return domain.Internal(err, op, "failed to write audit entry")
		}

		oldPrice, newPrice = booking.Price, result.Total
		return nil
	})
	if err != nil {
		return nil, txError(err, op)
	}

	s.logger.Info("reprice committed",
		"booking_id", params.BookingID,
		"admin_id", params.AdminID,
		"old_price", oldPrice,
		"new_price", newPrice,
	)
	metrics.AuditActionsCommitted.WithLabelValues(domain.AuditActionReprice.String()).Inc()

	return entry, nil
}

// =============================================================================
// Edit
// =============================================================================

// Edit updates the editable stored facts and reprices from the new facts.
func (s *repriceService) Edit(ctx context.Context, params domain.EditBookingParams) (*domain.AuditLogEntry, error) {
	const op = "reprice.edit"

	if params.DistanceKm < 0 {
		return nil, domain.Invalid(op, "distance cannot be negative")
	}

	var entry *domain.AuditLogEntry
	var changed int

	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		booking, err := tx.GetBookingByIDForUpdate(ctx, params.BookingID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.NotFound(op, "booking", params.BookingID.String())
			}
			return domain.Internal(err, op, "failed to lock booking")
		}

		if booking.IsCancelled() {
			return domain.Conflict(op, "booking is cancelled; cancelled bookings cannot be edited")
		}

		diff := domain.AuditDiff{}
		if booking.DistanceKm != params.DistanceKm {
			diff["distance_km"] = domain.FieldChange{Before: booking.DistanceKm, After: params.DistanceKm}
		}
		if !reflect.DeepEqual(booking.Items, params.Items) {
			diff["items"] = domain.FieldChange{Before: booking.Items, After: params.Items}
		}
		if len(diff) == 0 {
			return domain.Invalid(op, "no fields changed")
		}

		// Reprice from the edited facts so the stored price stays
		// reproducible from stored state.
		input := booking.PricingInput()
		input.DistanceKm = params.DistanceKm
		input.Items = params.Items
		result, err := s.engine.Calculate(input)
		if err != nil {
			return err
		}
		if result.Total != booking.Price {
			diff["price"] = domain.FieldChange{Before: booking.Price, After: result.Total}
		}

		if err := tx.UpdateBookingFacts(ctx, booking.ID, params.DistanceKm, params.Items, result.Total); err != nil {
			return domain.Internal(err, op, "failed to update booking")
		}

		entry, err = tx.CreateAuditEntry(ctx, repository.CreateAuditEntryParams{
			BookingID: booking.ID,
			Action:    domain.AuditActionEdit,
			Diff:      diff,
			Note:      params.Note,
			AdminID:   params.AdminID,
		})
		if err != nil {
			return domain.Internal(err, op, "failed to write audit entry")
		}

		changed = len(diff)
		return nil
	})
	if err != nil {
		return nil, txError(err, op)
	}

	s.logger.Info("booking edited",
		"booking_id", params.BookingID,
		"admin_id", params.AdminID,
		"changed_fields", changed,
	)
	metrics.AuditActionsCommitted.WithLabelValues(domain.AuditActionEdit.String()).Inc()

	return entry, nil
}

// =============================================================================
// Cancel
// =============================================================================

// Cancel marks a booking cancelled. The action is terminal.
func (s *repriceService) Cancel(ctx context.Context, params domain.CancelBookingParams) (*domain.AuditLogEntry, error) {
	const op = "reprice.cancel"

	reason := strings.TrimSpace(params.Reason)
	if len(reason) < 3 {
		return nil, domain.Invalid(op, "cancellation reason must be at least 3 characters")
	}

	var entry *domain.AuditLogEntry

	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		booking, err := tx.GetBookingByIDForUpdate(ctx, params.BookingID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.NotFound(op, "booking", params.BookingID.String())
			}
			return domain.Internal(err, op, "failed to lock booking")
		}

		if booking.IsCancelled() {
			return domain.Conflict(op, "booking is already cancelled")
		}

		if err := tx.CancelBooking(ctx, booking.ID, reason); err != nil {
			return domain.Internal(err, op, "failed to cancel booking")
		}

		entry, err = tx.CreateAuditEntry(ctx, repository.CreateAuditEntryParams{
			BookingID: booking.ID,
			Action:    domain.AuditActionCancel,
			Diff: domain.AuditDiff{
				"status":        {Before: booking.Status.String(), After: domain.BookingStatusCancelled.String()},
				"cancel_reason": {Before: "", After: reason},
			},
			Note:    reason,
			AdminID: params.AdminID,
		})
		if err != nil {
			return domain.Internal(err, op, "failed to write audit entry")
		}
		return nil
	})
	if err != nil {
		return nil, txError(err, op)
	}

	s.logger.Info("booking cancelled",
		"booking_id", params.BookingID,
		"admin_id", params.AdminID,
		"reason", reason,
	)
	metrics.AuditActionsCommitted.WithLabelValues(domain.AuditActionCancel.String()).Inc()

	return entry, nil
}

// =============================================================================
// Audit Trail
// =============================================================================

// AuditTrail returns a booking's audit entries, oldest first.
func (s *repriceService) AuditTrail(ctx context.Context, bookingID uuid.UUID) ([]domain.AuditLogEntry, error) {
	const op = "reprice.audit_trail"

	// Confirm the booking exists so a wrong ID is a 404, not an empty list.
	if _, err := s.store.GetBookingByID(ctx, bookingID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "booking", bookingID.String())
		}
		return nil, domain.Internal(err, op, "failed to get booking")
	}

	entries, err := s.store.ListAuditEntriesByBookingID(ctx, bookingID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list audit entries")
	}
	return entries, nil
}
