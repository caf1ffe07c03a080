package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/movaro/movaro/internal/domain"
	"github.com/movaro/movaro/internal/service"
)

// AdminHandler serves the administrative reprice and audit endpoints.
type AdminHandler struct {
	reprices service.RepriceService
	logger   *slog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(reprices service.RepriceService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		reprices: reprices,
		logger:   logger,
	}
}

// RegisterRoutes registers the admin routes on the mux.
func (h *AdminHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/admin/bookings/{id}/reprice", h.Reprice)
	mux.HandleFunc("POST /api/v1/admin/bookings/{id}/reprice/commit", h.CommitReprice)
	mux.HandleFunc("POST /api/v1/admin/bookings/{id}/edit", h.Edit)
	mux.HandleFunc("POST /api/v1/admin/bookings/{id}/cancel", h.Cancel)
	mux.HandleFunc("GET /api/v1/admin/bookings/{id}/audit", h.AuditTrail)
}

func bookingIDFromPath(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, domain.Invalid("handler.booking_id", "invalid booking id")
	}
	return id, nil
}

// repriceResponse is the JSON body of a recompute (dry run).
type repriceResponse struct {
	BookingID string                `json:"booking_id"`
	OldPrice  float64               `json:"old_price"`
	NewPrice  float64               `json:"new_price"`
	Breakdown *domain.PricingResult `json:"breakdown"`
}

// Reprice handles POST /api/v1/admin/bookings/{id}/reprice.
// It recomputes without committing; the response is what the administrator
// confirms in a separate commit call.
func (h *AdminHandler) Reprice(w http.ResponseWriter, r *http.Request) {
	id, err := bookingIDFromPath(r)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	quote, err := h.reprices.Recompute(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, repriceResponse{
		BookingID: quote.BookingID.String(),
		OldPrice:  quote.OldPrice,
		NewPrice:  quote.NewPrice,
		Breakdown: quote.Result,
	})
}

// commitRequest is the JSON body of a reprice commit.
type commitRequest struct {
	AdminID  string  `json:"admin_id"`
	OldPrice float64 `json:"old_price"`
	NewPrice float64 `json:"new_price"`
	Note     string  `json:"note"`
}

// auditEntryResponse is the JSON shape of one audit entry.
type auditEntryResponse struct {
	ID        string           `json:"id"`
	BookingID string           `json:"booking_id"`
	Action    string           `json:"action"`
	Diff      domain.AuditDiff `json:"diff"`
	Note      string           `json:"note,omitempty"`
	AdminID   string           `json:"admin_id"`
	CreatedAt string           `json:"created_at"`
}

func toAuditEntryResponse(entry *domain.AuditLogEntry) auditEntryResponse {
	return auditEntryResponse{
		ID:        entry.ID.String(),
		BookingID: entry.BookingID.String(),
		Action:    entry.Action.String(),
		Diff:      entry.Diff,
		Note:      entry.Note,
		AdminID:   entry.AdminID.String(),
		CreatedAt: entry.CreatedAt.Format(time.RFC3339),
	}
}

// CommitReprice handles POST /api/v1/admin/bookings/{id}/reprice/commit.
func (h *AdminHandler) CommitReprice(w http.ResponseWriter, r *http.Request) {
	id, err := bookingIDFromPath(r)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req commitRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	adminID, err := uuid.Parse(req.AdminID)
	if err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("handler.commit", "invalid admin id"))
		return
	}

	entry, err := h.reprices.Commit(r.Context(), domain.CommitRepriceParams{
		BookingID: id,
		AdminID:   adminID,
		OldPrice:  req.OldPrice,
		NewPrice:  req.NewPrice,
		Note:      req.Note,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toAuditEntryResponse(entry))
}

// editRequest is the JSON body of a booking edit.
type editRequest struct {
	AdminID    string            `json:"admin_id"`
	DistanceKm float64           `json:"distance_km"`
	Items      []domain.LineItem `json:"items"`
	Note       string            `json:"note"`
}

// Edit handles POST /api/v1/admin/bookings/{id}/edit.
func (h *AdminHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, err := bookingIDFromPath(r)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req editRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	adminID, err := uuid.Parse(req.AdminID)
	if err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("handler.edit", "invalid admin id"))
		return
	}

	entry, err := h.reprices.Edit(r.Context(), domain.EditBookingParams{
		BookingID:  id,
		AdminID:    adminID,
		DistanceKm: req.DistanceKm,
		Items:      req.Items,
		Note:       req.Note,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toAuditEntryResponse(entry))
}

// cancelRequest is the JSON body of a booking cancellation.
type cancelRequest struct {
	AdminID string `json:"admin_id"`
	Reason  string `json:"reason"`
}

// Cancel handles POST /api/v1/admin/bookings/{id}/cancel.
func (h *AdminHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := bookingIDFromPath(r)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req cancelRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	adminID, err := uuid.Parse(req.AdminID)
	if err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("handler.cancel", "invalid admin id"))
		return
	}

	entry, err := h.reprices.Cancel(r.Context(), domain.CancelBookingParams{
		BookingID: id,
		AdminID:   adminID,
		Reason:    req.Reason,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toAuditEntryResponse(entry))
}

// AuditTrail handles GET /api/v1/admin/bookings/{id}/audit.
func (h *AdminHandler) AuditTrail(w http.ResponseWriter, r *http.Request) {
	id, err := bookingIDFromPath(r)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	entries, err := h.reprices.AuditTrail(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	out := make([]auditEntryResponse, 0, len(entries))
	for i := range entries {
		out = append(out, toAuditEntryResponse(&entries[i]))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"entries": out})
}
