// Package repository provides database access for bookings and the price
// audit log. Queries run against Postgres through database/sql with the pgx
// stdlib driver.
//
// The audit log is append-only by construction: this package exposes no
// update or delete path for price_audit_log rows.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/movaro/movaro/internal/domain"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so queries can run inside
// or outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Queries holds the prepared query methods.
type Queries struct {
	db DBTX
}

// New creates a Queries instance backed by the given database handle.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a Queries instance that runs against the given transaction.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// =============================================================================
// Bookings
// =============================================================================

const bookingColumns = `id, category, distance_km, items, pickup_floor, pickup_has_lift,
	delivery_floor, delivery_has_lift, needs_packing, needs_assembly, needs_disassembly,
	needs_cleaning, insurance_tier, scheduled_date, requested_at, price, status,
	cancel_reason, created_at, updated_at`

// CreateBooking persists a new booking with its stored job facts and chosen price.
func (q *Queries) CreateBooking(ctx context.Context, arg domain.CreateBookingParams) (*domain.Booking, error) {
	items, err := json.Marshal(arg.Input.Items)
	if err != nil {
		return nil, fmt.Errorf("marshal items: %w", err)
	}

	in := arg.Input
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO bookings (
			category, distance_km, items, pickup_floor, pickup_has_lift,
			delivery_floor, delivery_has_lift, needs_packing, needs_assembly,
			needs_disassembly, needs_cleaning, insurance_tier, scheduled_date,
			requested_at, price, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING `+bookingColumns,
		in.Category, in.DistanceKm, items, in.PickupFloor, in.PickupHasLift,
		in.DeliveryFloor, in.DeliveryHasLift, in.NeedsPacking, in.NeedsAssembly,
		in.NeedsDisassembly, in.NeedsCleaning, in.Insurance.String(), in.ScheduledDate,
		in.RequestedAt, arg.Price, domain.BookingStatusActive.String(),
	)
	return scanBooking(row)
}

// GetBookingByID retrieves a booking by ID.
func (q *Queries) GetBookingByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	return scanBooking(row)
}

// GetBookingByIDForUpdate retrieves a booking with a row-level lock. Must be
// called inside a transaction; the lock serializes concurrent admin commits
// against the same booking.
func (q *Queries) GetBookingByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, id)
	return scanBooking(row)
}

// UpdateBookingPrice sets a booking's stored price.
func (q *Queries) UpdateBookingPrice(ctx context.Context, id uuid.UUID, price float64) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE bookings SET price = $2, updated_at = NOW() WHERE id = $1`, id, price)
	return err
}

// UpdateBookingFacts updates the editable stored facts of a booking.
func (q *Queries) UpdateBookingFacts(ctx context.Context, id uuid.UUID, distanceKm float64, items []domain.LineItem, price float64) error {
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}
	_, err = q.db.ExecContext(ctx, `
		UPDATE bookings
		SET distance_km = $2, items = $3, price = $4, updated_at = NOW()
		WHERE id = $1`,
		id, distanceKm, itemsJSON, price)
	return err
}

// CancelBooking marks a booking cancelled with the given reason.
func (q *Queries) CancelBooking(ctx context.Context, id uuid.UUID, reason string) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE bookings
		SET status = $2, cancel_reason = $3, updated_at = NOW()
		WHERE id = $1`,
		id, domain.BookingStatusCancelled.String(), reason)
	return err
}

func scanBooking(row *sql.Row) (*domain.Booking, error) {
	var b domain.Booking
	var items []byte
	var cancelReason sql.NullString
	var status, insurance string

	err := row.Scan(
		&b.ID, &b.Category, &b.DistanceKm, &items, &b.PickupFloor, &b.PickupHasLift,
		&b.DeliveryFloor, &b.DeliveryHasLift, &b.NeedsPacking, &b.NeedsAssembly,
		&b.NeedsDisassembly, &b.NeedsCleaning, &insurance, &b.ScheduledDate,
		&b.RequestedAt, &b.Price, &status, &cancelReason, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(items, &b.Items); err != nil {
		return nil, fmt.Errorf("unmarshal items: %w", err)
	}
	b.Status = domain.BookingStatus(status)
	b.Insurance = domain.InsuranceTier(insurance)
	if cancelReason.Valid {
		b.CancelReason = cancelReason.String
	}
	return &b, nil
}

// =============================================================================
// Audit log (append-only)
// =============================================================================

// CreateAuditEntryParams contains the fields of a new audit entry.
type CreateAuditEntryParams struct {
	BookingID uuid.UUID
	Action    domain.AuditAction
	Diff      domain.AuditDiff
	Note      string
	AdminID   uuid.UUID
}

// CreateAuditEntry appends an immutable audit record.
func (q *Queries) CreateAuditEntry(ctx context.Context, arg CreateAuditEntryParams) (*domain.AuditLogEntry, error) {
	diff, err := json.Marshal(arg.Diff)
	if err != nil {
		return nil, fmt.Errorf("marshal diff: %w", err)
	}

	var entry domain.AuditLogEntry
	var note sql.NullString
	if arg.Note != "" {
		note = sql.NullString{String: arg.Note, Valid: true}
	}

	row := q.db.QueryRowContext(ctx, `
		INSERT INTO price_audit_log (booking_id, action, diff, note, admin_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		arg.BookingID, arg.Action.String(), diff, note, arg.AdminID)
	if err := row.Scan(&entry.ID, &entry.CreatedAt); err != nil {
		return nil, err
	}

	entry.BookingID = arg.BookingID
	entry.Action = arg.Action
	entry.Diff = arg.Diff
	entry.Note = arg.Note
	entry.AdminID = arg.AdminID
	return &entry, nil
}

// ListAuditEntriesByBookingID returns a booking's audit trail, oldest first.
func (q *Queries) ListAuditEntriesByBookingID(ctx context.Context, bookingID uuid.UUID) ([]domain.AuditLogEntry, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, booking_id, action, diff, note, admin_id, created_at
		FROM price_audit_log
		WHERE booking_id = $1
		ORDER BY created_at ASC`,
		bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.AuditLogEntry
	for rows.Next() {
		var entry domain.AuditLogEntry
		var action string
		var diff []byte
		var note sql.NullString
		var createdAt time.Time

		if err := rows.Scan(&entry.ID, &entry.BookingID, &action, &diff, &note, &entry.AdminID, &createdAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(diff, &entry.Diff); err != nil {
			return nil, fmt.Errorf("unmarshal diff: %w", err)
		}
		entry.Action = domain.AuditAction(action)
		entry.CreatedAt = createdAt
		if note.Valid {
			entry.Note = note.String
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
