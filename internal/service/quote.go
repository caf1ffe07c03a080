// Package service contains the business logic layer.
//
// This file implements the quote service: engine calculation, optional
// external validation with blending, and booking persistence.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/movaro/movaro/internal/domain"
	"github.com/movaro/movaro/internal/estimator"
	"github.com/movaro/movaro/internal/metrics"
	"github.com/movaro/movaro/internal/pricing"
	"github.com/movaro/movaro/internal/repository"
)

// Quote pairs the engine's result with the external opinion, when one was
// obtained. Validation is nil whenever the estimator is disabled, timed out,
// or returned a malformed response; the quote itself is always present.
type Quote struct {
	Result     *domain.PricingResult
	Validation *domain.ValidationResult
	Blended    bool
}

// QuoteService defines the interface for quote-related operations.
type QuoteService interface {
	// Quote computes a price for the given job facts. When external
	// validation is enabled, the estimator's opinion is attached and the
	// blending policy may adjust the total; estimator failures degrade to a
	// plain engine quote, never to an error.
	// Returns domain.EINVALID for input validation errors.
	Quote(ctx context.Context, input domain.PricingInput) (*Quote, error)

	// Book persists a quoted job's facts and chosen price so it can later
	// be repriced from stored state.
	Book(ctx context.Context, params domain.CreateBookingParams) (*domain.Booking, error)
}

// quoteService implements the QuoteService interface.
type quoteService struct {
	engine           *pricing.Engine
	validator        estimator.Validator // nil when validation is disabled
	validatorTimeout time.Duration
	queries          *repository.Queries
	logger           *slog.Logger
}

// NewQuoteService creates a new QuoteService. A nil validator disables
// external validation entirely.
func NewQuoteService(
	engine *pricing.Engine,
	validator estimator.Validator,
	validatorTimeout time.Duration,
	queries *repository.Queries,
	logger *slog.Logger,
) QuoteService {
	if validatorTimeout <= 0 {
		validatorTimeout = 30 * time.Second
	}
	return &quoteService{
		engine:           engine,
		validator:        validator,
		validatorTimeout: validatorTimeout,
		queries:          queries,
		logger:           logger,
	}
}

// Quote computes a price, optionally validated and blended.
func (s *quoteService) Quote(ctx context.Context, input domain.PricingInput) (*Quote, error) {
	start := time.Now()

	result, err := s.engine.Calculate(input)
	if err != nil {
		return nil, err
	}
	metrics.QuoteDuration.Observe(time.Since(start).Seconds())

	profile := s.engine.Profile()
	_, category := profile.BasePrice(input.Category)
	metrics.QuotesComputed.WithLabelValues(category, profile.Name).Inc()

	quote := &Quote{Result: result}

	if s.validator != nil {
		quote.Validation = s.reviewQuote(ctx, input, result)
		if quote.Validation != nil {
			blended, applied := pricing.Blend(result, quote.Validation, profile.VATRate)
			if applied {
				s.logger.Info("quote blended with external estimate",
					"engine_total", result.Total,
					"suggested_total", quote.Validation.SuggestedTotal,
					"blended_total", blended.Total,
				)
				metrics.BlendsApplied.Inc()
			}
			quote.Result = blended
			quote.Blended = applied
		}
	}

	return quote, nil
}

// reviewQuote calls the external estimator with a bounded timeout. Any
// failure is logged and degrades to nil: the already-computed engine result
// is never delayed or discarded because of the estimator.
func (s *quoteService) reviewQuote(ctx context.Context, input domain.PricingInput, result *domain.PricingResult) *domain.ValidationResult {
	reviewCtx, cancel := context.WithTimeout(ctx, s.validatorTimeout)
	defer cancel()

	opinion, err := s.validator.Review(reviewCtx, estimator.ReviewParams{
		Input:  input,
		Result: result,
	})
	if err != nil {
		s.logger.Warn("external validation unavailable",
			"error", err,
			"engine_total", result.Total,
		)
		metrics.EstimatorCalls.WithLabelValues("error").Inc()
		return nil
	}

	metrics.EstimatorCalls.WithLabelValues("ok").Inc()
	return opinion
}

// Book persists a quoted job.
func (s *quoteService) Book(ctx context.Context, params domain.CreateBookingParams) (*domain.Booking, error) {
	const op = "quote.book"

	if err := params.Input.Validate(); err != nil {
		return nil, err
	}
	if params.Price <= 0 {
		return nil, domain.Invalid(op, "price must be positive")
	}

	booking, err := s.queries.CreateBooking(ctx, params)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to create booking")
	}

	s.logger.Info("booking created",
		"booking_id", booking.ID,
		"category", booking.Category,
		"price", booking.Price,
	)
	metrics.BookingsCreated.Inc()

	return booking, nil
}
