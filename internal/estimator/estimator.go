// Package estimator defines the external price-validation capability.
//
// A Validator produces an independent opinion on a computed quote. The
// opinion is advisory: callers degrade to "no opinion" on any failure and
// the blending policy in the pricing package decides whether a divergent
// suggestion moves the price.
package estimator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/movaro/movaro/internal/domain"
)

// Validator is the interface for external quote validation.
type Validator interface {
	// Review asks the external estimator for an opinion on a computed quote.
	// A non-nil error means no opinion is available; it never invalidates
	// the engine result.
	Review(ctx context.Context, params ReviewParams) (*domain.ValidationResult, error)
}

// ReviewParams is the structured summary of a job and its computed quote
// sent to the external estimator.
type ReviewParams struct {
	Input  domain.PricingInput
	Result *domain.PricingResult
}

// ProviderConfig contains common configuration for validator providers.
type ProviderConfig struct {
	MaxRetries     int           // Maximum retry attempts for transient errors
	RetryBaseDelay time.Duration // Base delay for exponential backoff
	RequestTimeout time.Duration // Timeout for individual requests
}

// Error codes for estimator operations
var (
	// ERateLimit indicates the API rate limit has been exceeded
	ERateLimit = errors.New("estimator rate limit exceeded")

	// ETimeout indicates the request timed out
	ETimeout = errors.New("estimator request timed out")

	// EUnavailable indicates the estimator service is temporarily unavailable
	EUnavailable = errors.New("estimator service temporarily unavailable")

	// EUnauthorized indicates invalid API credentials
	EUnauthorized = errors.New("estimator authentication failed")

	// EMalformed indicates the external response was not well-formed
	EMalformed = errors.New("estimator returned a malformed response")
)

// IsRetryable returns true if the error is a transient error that can be retried
func IsRetryable(err error) bool {
	return errors.Is(err, ERateLimit) ||
		errors.Is(err, ETimeout) ||
		errors.Is(err, EUnavailable)
}

// WrapError wraps an error with context about the estimator operation
func WrapError(operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("estimator %s: %w", operation, err)
}
