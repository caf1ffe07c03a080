package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/movaro/movaro/internal/domain"
	"github.com/movaro/movaro/internal/service"
)

// QuoteHandler serves the public quotation endpoints.
type QuoteHandler struct {
	quotes service.QuoteService
	logger *slog.Logger
}

// NewQuoteHandler creates a new QuoteHandler.
func NewQuoteHandler(quotes service.QuoteService, logger *slog.Logger) *QuoteHandler {
	return &QuoteHandler{
		quotes: quotes,
		logger: logger,
	}
}

// RegisterRoutes registers the quote routes on the mux.
func (h *QuoteHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/quotes", h.CreateQuote)
	mux.HandleFunc("POST /api/v1/bookings", h.CreateBooking)
}

// quoteRequest is the JSON body of a quote request.
type quoteRequest struct {
	Category         string            `json:"category"`
	DistanceKm       float64           `json:"distance_km"`
	Items            []domain.LineItem `json:"items"`
	PickupFloor      int               `json:"pickup_floor"`
	PickupHasLift    bool              `json:"pickup_has_lift"`
	DeliveryFloor    int               `json:"delivery_floor"`
	DeliveryHasLift  bool              `json:"delivery_has_lift"`
	NeedsPacking     bool              `json:"needs_packing"`
	NeedsAssembly    bool              `json:"needs_assembly"`
	NeedsDisassembly bool              `json:"needs_disassembly"`
	NeedsCleaning    bool              `json:"needs_cleaning"`
	Insurance        string            `json:"insurance"`
	ScheduledDate    time.Time         `json:"scheduled_date"`
}

// toPricingInput converts the request to a domain input. The quote request
// instant is taken server-side; clients do not get to claim urgency.
func (req *quoteRequest) toPricingInput(now time.Time) domain.PricingInput {
	insurance := domain.InsuranceTier(req.Insurance)
	if req.Insurance == "" {
		insurance = domain.InsuranceTierNone
	}
	return domain.PricingInput{
		Category:         req.Category,
		DistanceKm:       req.DistanceKm,
		Items:            req.Items,
		PickupFloor:      req.PickupFloor,
		PickupHasLift:    req.PickupHasLift,
		DeliveryFloor:    req.DeliveryFloor,
		DeliveryHasLift:  req.DeliveryHasLift,
		NeedsPacking:     req.NeedsPacking,
		NeedsAssembly:    req.NeedsAssembly,
		NeedsDisassembly: req.NeedsDisassembly,
		NeedsCleaning:    req.NeedsCleaning,
		Insurance:        insurance,
		ScheduledDate:    req.ScheduledDate,
		RequestedAt:      now,
	}
}

// quoteResponse is the JSON body of a quote response.
type quoteResponse struct {
	Quote      *domain.PricingResult    `json:"quote"`
	Validation *domain.ValidationResult `json:"validation,omitempty"`
	Blended    bool                     `json:"blended"`
}

// CreateQuote handles POST /api/v1/quotes.
func (h *QuoteHandler) CreateQuote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	quote, err := h.quotes.Quote(r.Context(), req.toPricingInput(time.Now().UTC()))
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, quoteResponse{
		Quote:      quote.Result,
		Validation: quote.Validation,
		Blended:    quote.Blended,
	})
}

// bookingRequest is the JSON body for persisting a quoted job.
type bookingRequest struct {
	quoteRequest
	Price float64 `json:"price"`
}

// bookingResponse is the JSON body of a created booking.
type bookingResponse struct {
	ID            string  `json:"id"`
	Price         float64 `json:"price"`
	Status        string  `json:"status"`
	ScheduledDate string  `json:"scheduled_date"`
}

// CreateBooking handles POST /api/v1/bookings.
func (h *QuoteHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req bookingRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	booking, err := h.quotes.Book(r.Context(), domain.CreateBookingParams{
		Input: req.toPricingInput(time.Now().UTC()),
		Price: req.Price,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, bookingResponse{
		ID:            booking.ID.String(),
		Price:         booking.Price,
		Status:        booking.Status.String(),
		ScheduledDate: booking.ScheduledDate.Format(time.RFC3339),
	})
}
