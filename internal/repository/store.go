package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/movaro/movaro/internal/domain"
)

// Tx is the query surface available inside a transaction. *Queries satisfies
// it, so transactional callers and tests share one contract.
type Tx interface {
	GetBookingByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	UpdateBookingPrice(ctx context.Context, id uuid.UUID, price float64) error
	UpdateBookingFacts(ctx context.Context, id uuid.UUID, distanceKm float64, items []domain.LineItem, price float64) error
	CancelBooking(ctx context.Context, id uuid.UUID, reason string) error
	CreateAuditEntry(ctx context.Context, arg CreateAuditEntryParams) (*domain.AuditLogEntry, error)
}

// Store couples the query methods with a transaction runner.
type Store struct {
	db *sql.DB
	*Queries
}

// NewStore creates a Store backed by the given database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, Queries: New(db)}
}

// WithinTx runs fn inside a database transaction. The transaction commits
// only when fn returns nil; any error rolls back every write fn made.
func (s *Store) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	txn, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer txn.Rollback()

	if err := fn(s.Queries.WithTx(txn)); err != nil {
		return err
	}

	if err := txn.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
