package handler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/movaro/movaro/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepriceService returns configurable results for handler tests.
type fakeRepriceService struct {
	quote    *domain.RepriceQuote
	entry    *domain.AuditLogEntry
	entries  []domain.AuditLogEntry
	err      error
	lastCall string
}

func (f *fakeRepriceService) Recompute(ctx context.Context, bookingID uuid.UUID) (*domain.RepriceQuote, error) {
	f.lastCall = "recompute"
	return f.quote, f.err
}

func (f *fakeRepriceService) Commit(ctx context.Context, params domain.CommitRepriceParams) (*domain.AuditLogEntry, error) {
	f.lastCall = "commit"
	return f.entry, f.err
}

func (f *fakeRepriceService) Edit(ctx context.Context, params domain.EditBookingParams) (*domain.AuditLogEntry, error) {
	f.lastCall = "edit"
	return f.entry, f.err
}

func (f *fakeRepriceService) Cancel(ctx context.Context, params domain.CancelBookingParams) (*domain.AuditLogEntry, error) {
	f.lastCall = "cancel"
	return f.entry, f.err
}

func (f *fakeRepriceService) AuditTrail(ctx context.Context, bookingID uuid.UUID) ([]domain.AuditLogEntry, error) {
	f.lastCall = "audit"
	return f.entries, f.err
}

func newAdminMux(svc *fakeRepriceService) *http.ServeMux {
	h := NewAdminHandler(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return mux
}

func testAuditEntry(bookingID uuid.UUID, action domain.AuditAction) *domain.AuditLogEntry {
	return &domain.AuditLogEntry{
		ID:        uuid.New(),
		BookingID: bookingID,
		Action:    action,
		Diff: domain.AuditDiff{
			"price": {Before: 199.07, After: 215.30},
		},
		AdminID:   uuid.New(),
		CreatedAt: time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestAdminHandler_Reprice(t *testing.T) {
	id := uuid.New()
	fake := &fakeRepriceService{
		quote: &domain.RepriceQuote{
			BookingID: id,
			OldPrice:  199.07,
			NewPrice:  215.30,
			Result:    &domain.PricingResult{Total: 215.30},
		},
	}
	mux := newAdminMux(fake)

	req := httptest.NewRequest("POST", fmt.Sprintf("/api/v1/admin/bookings/%s/reprice", id), nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "recompute", fake.lastCall)
	assert.Contains(t, rec.Body.String(), `"old_price":199.07`)
	assert.Contains(t, rec.Body.String(), `"new_price":215.3`)
}

func TestAdminHandler_InvalidBookingID(t *testing.T) {
	fake := &fakeRepriceService{}
	mux := newAdminMux(fake)

	req := httptest.NewRequest("POST", "/api/v1/admin/bookings/not-a-uuid/reprice", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Empty(t, fake.lastCall)
}

func TestAdminHandler_CommitReprice(t *testing.T) {
	id := uuid.New()
	fake := &fakeRepriceService{entry: testAuditEntry(id, domain.AuditActionReprice)}
	mux := newAdminMux(fake)

	body := fmt.Sprintf(`{"admin_id": %q, "old_price": 199.07, "new_price": 215.30}`, uuid.New())
	req := httptest.NewRequest("POST", fmt.Sprintf("/api/v1/admin/bookings/%s/reprice/commit", id), strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "commit", fake.lastCall)
	assert.Contains(t, rec.Body.String(), `"action":"REPRICE"`)
}

func TestAdminHandler_CommitReprice_InvalidAdminID(t *testing.T) {
	fake := &fakeRepriceService{}
	mux := newAdminMux(fake)

	body := `{"admin_id": "nope", "old_price": 1, "new_price": 2}`
	req := httptest.NewRequest("POST", fmt.Sprintf("/api/v1/admin/bookings/%s/reprice/commit", uuid.New()), strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Empty(t, fake.lastCall)
}

func TestAdminHandler_CommitReprice_Conflict(t *testing.T) {
	fake := &fakeRepriceService{err: domain.Conflict("reprice.commit", "stored price changed since recompute; fetch a fresh recompute and confirm again")}
	mux := newAdminMux(fake)

	body := fmt.Sprintf(`{"admin_id": %q, "old_price": 1, "new_price": 2}`, uuid.New())
	req := httptest.NewRequest("POST", fmt.Sprintf("/api/v1/admin/bookings/%s/reprice/commit", uuid.New()), strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"conflict"`)
}

func TestAdminHandler_Cancel(t *testing.T) {
	id := uuid.New()
	fake := &fakeRepriceService{entry: testAuditEntry(id, domain.AuditActionCancel)}
	mux := newAdminMux(fake)

	body := fmt.Sprintf(`{"admin_id": %q, "reason": "customer withdrew the job"}`, uuid.New())
	req := httptest.NewRequest("POST", fmt.Sprintf("/api/v1/admin/bookings/%s/cancel", id), strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cancel", fake.lastCall)
	assert.Contains(t, rec.Body.String(), `"action":"CANCEL"`)
}

func TestAdminHandler_Edit_NotFound(t *testing.T) {
	bookingID := uuid.New()
	fake := &fakeRepriceService{err: domain.NotFound("reprice.edit", "booking", bookingID.String())}
	mux := newAdminMux(fake)

	body := fmt.Sprintf(`{"admin_id": %q, "distance_km": 30}`, uuid.New())
	req := httptest.NewRequest("POST", fmt.Sprintf("/api/v1/admin/bookings/%s/edit", bookingID), strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"not_found"`)
}

func TestAdminHandler_AuditTrail(t *testing.T) {
	id := uuid.New()
	fake := &fakeRepriceService{
		entries: []domain.AuditLogEntry{
			*testAuditEntry(id, domain.AuditActionReprice),
			*testAuditEntry(id, domain.AuditActionCancel),
		},
	}
	mux := newAdminMux(fake)

	req := httptest.NewRequest("GET", fmt.Sprintf("/api/v1/admin/bookings/%s/audit", id), nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"entries"`)
	assert.Contains(t, rec.Body.String(), `"REPRICE"`)
	assert.Contains(t, rec.Body.String(), `"CANCEL"`)
}

func TestAdminHandler_AuditTrail_Empty(t *testing.T) {
	fake := &fakeRepriceService{entries: nil}
	mux := newAdminMux(fake)

	req := httptest.NewRequest("GET", fmt.Sprintf("/api/v1/admin/bookings/%s/audit", uuid.New()), nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"entries":[]`)
}
