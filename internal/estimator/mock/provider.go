package mock

import (
	"context"
	"log/slog"

	"github.com/movaro/movaro/internal/domain"
	"github.com/movaro/movaro/internal/estimator"
)

// Provider is a mock estimator for testing and development
type Provider struct {
	logger *slog.Logger

	// Configurable responses for testing
	ReviewResponse *domain.ValidationResult
	ReviewError    error

	// Call tracking for testing
	ReviewCalls int
}

// New creates a new mock estimator provider
func New(logger *slog.Logger) *Provider {
	return &Provider{
		logger: logger,
	}
}

// Review returns a canned opinion agreeing with the engine's total
func (p *Provider) Review(ctx context.Context, params estimator.ReviewParams) (*domain.ValidationResult, error) {
	p.ReviewCalls++

	// If a custom response or error is set, use it
	if p.ReviewError != nil {
		return nil, p.ReviewError
	}
	if p.ReviewResponse != nil {
		return p.ReviewResponse, nil
	}

	// Default canned response: the quote looks fine
	return &domain.ValidationResult{
		Reasonable:     true,
		SuggestedTotal: 0,
		Confidence:     80,
		Reasoning:      "Mock review: total is consistent with distance, load, and access difficulty.",
		Warnings:       nil,
	}, nil
}

// Reset clears call counters and custom responses for testing
func (p *Provider) Reset() {
	p.ReviewCalls = 0
	p.ReviewResponse = nil
	p.ReviewError = nil
}
