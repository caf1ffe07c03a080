package domain

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Audit Actions
// =============================================================================

// AuditAction identifies the kind of administrative action recorded.
type AuditAction string

const (
	AuditActionEdit    AuditAction = "EDIT"
	AuditActionReprice AuditAction = "REPRICE"
	AuditActionCancel  AuditAction = "CANCEL"
)

// String returns the string representation of the action.
func (a AuditAction) String() string {
	return string(a)
}

// IsValid returns true if the action is a recognized value.
func (a AuditAction) IsValid() bool {
	switch a {
	case AuditActionEdit, AuditActionReprice, AuditActionCancel:
		return true
	}
	return false
}

// =============================================================================
// Audit Log Entry
// =============================================================================

// FieldChange records one field's before/after values.
type FieldChange struct {
	Before interface{} `json:"before"`
	After  interface{} `json:"after"`
}

// AuditDiff is a structured before/after diff keyed by field name.
type AuditDiff map[string]FieldChange

// AuditLogEntry is an immutable record of one administrative action against a
// committed price. Entries are append-only; a correction is a new entry, not
// a mutation.
type AuditLogEntry struct {
	ID        uuid.UUID
	BookingID uuid.UUID
	Action    AuditAction
	Diff      AuditDiff
	Note      string
	AdminID   uuid.UUID
	CreatedAt time.Time
}
