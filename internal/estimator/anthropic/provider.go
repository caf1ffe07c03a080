package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/movaro/movaro/internal/domain"
	"github.com/movaro/movaro/internal/estimator"
)

const (
	// APIBaseURL is the base URL for the Anthropic API
	APIBaseURL = "https://api.anthropic.com/v1/messages"

	// APIVersion is the Anthropic API version
	APIVersion = "2023-06-01"

	// DefaultModel is the default Claude model to use
	DefaultModel = "claude-3-5-sonnet-20241022"
)

// Config contains configuration for the Anthropic provider
type Config struct {
	APIKey         string
	Model          string
	ProviderConfig estimator.ProviderConfig
}

// Provider implements the Validator interface using Anthropic's Claude API.
// It asks the model for an independent reasonableness check of a quote and
// parses its structured JSON opinion.
type Provider struct {
	config Config
	client *http.Client
	logger *slog.Logger
}

// New creates a new Anthropic estimator provider
func New(config Config, logger *slog.Logger) (*Provider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}

	// Set defaults
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.ProviderConfig.MaxRetries == 0 {
		config.ProviderConfig.MaxRetries = 3
	}
	if config.ProviderConfig.RetryBaseDelay == 0 {
		config.ProviderConfig.RetryBaseDelay = 1 * time.Second
	}
	if config.ProviderConfig.RequestTimeout == 0 {
		config.ProviderConfig.RequestTimeout = 30 * time.Second
	}

	return &Provider{
		config: config,
		client: &http.Client{
			Timeout: config.ProviderConfig.RequestTimeout,
		},
		logger: logger,
	}, nil
}

// Review sends the job summary and engine result to Claude and parses the
// returned opinion. Any failure surfaces as an error the caller treats as
// "no opinion"; a malformed external response must never corrupt the quote.
func (p *Provider) Review(ctx context.Context, params estimator.ReviewParams) (*domain.ValidationResult, error) {
	body, err := p.buildRequestBody(params)
	if err != nil {
		return nil, estimator.WrapError("build request", err)
	}

	resp, err := p.executeWithRetry(ctx, body)
	if err != nil {
		return nil, estimator.WrapError("execute request", err)
	}

	result, err := p.parseOpinion(resp)
	if err != nil {
		return nil, estimator.WrapError("parse response", err)
	}

	return result, nil
}

// buildRequestBody marshals the review prompt into an API request body
func (p *Provider) buildRequestBody(params estimator.ReviewParams) ([]byte, error) {
	reqBody := apiRequest{
		Model:     p.config.Model,
		MaxTokens: 1024,
		Messages: []apiMessage{
			{
				Role:    "user",
				Content: buildReviewPrompt(params),
			},
		},
	}
	return json.Marshal(reqBody)
}

// executeWithRetry executes the HTTP request with exponential backoff retry
func (p *Provider) executeWithRetry(ctx context.Context, body []byte) (*apiResponse, error) {
	var lastErr error

	for attempt := 1; attempt <= p.config.ProviderConfig.MaxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, "POST", APIBaseURL, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-api-key", p.config.APIKey)
		req.Header.Set("anthropic-version", APIVersion)

		resp, err := p.executeRequest(req)
		if err == nil {
			return resp, nil
		}

		lastErr = err

		// Only retry on retryable errors
		if !estimator.IsRetryable(err) {
			return nil, err
		}

		// Don't retry if we've exhausted attempts
		if attempt >= p.config.ProviderConfig.MaxRetries {
			break
		}

		// Exponential backoff: base * 2^(attempt-1)
		delay := p.config.ProviderConfig.RetryBaseDelay * time.Duration(1<<(attempt-1))
		p.logger.Info("Retrying estimator request", "attempt", attempt, "delay", delay, "error", err)

		select {
		case <-time.After(delay):
			// Continue to next attempt
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, lastErr
}

// executeRequest executes a single HTTP request
func (p *Provider) executeRequest(req *http.Request) (*apiResponse, error) {
	resp, err := p.client.Do(req)
	if err != nil {
		// Network errors are typically retryable
		return nil, estimator.EUnavailable
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, p.mapHTTPError(resp.StatusCode, bodyBytes)
	}

	var apiResp apiResponse
	if err := json.Unmarshal(bodyBytes, &apiResp); err != nil {
		return nil, fmt.Errorf("%w: %v", estimator.EMalformed, err)
	}

	return &apiResp, nil
}

// mapHTTPError maps HTTP status codes to estimator errors
func (p *Provider) mapHTTPError(statusCode int, body []byte) error {
	var errResp apiErrorResponse
	_ = json.Unmarshal(body, &errResp)

	switch statusCode {
	case http.StatusUnauthorized:
		return estimator.EUnauthorized
	case http.StatusTooManyRequests:
		return estimator.ERateLimit
	case http.StatusRequestTimeout:
		return estimator.ETimeout
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return estimator.EUnavailable
	default:
		return fmt.Errorf("API error (status %d): %s", statusCode, errResp.Error.Message)
	}
}

// parseOpinion extracts and validates the structured opinion from the API
// response. Missing required fields or wrong types reject the opinion.
func (p *Provider) parseOpinion(resp *apiResponse) (*domain.ValidationResult, error) {
	var textContent string
	for _, content := range resp.Content {
		if content.Type == "text" {
			textContent = content.Text
			break
		}
	}
	if textContent == "" {
		return nil, fmt.Errorf("%w: no text content", estimator.EMalformed)
	}

	var opinion reviewOutput
	if err := json.Unmarshal([]byte(textContent), &opinion); err != nil {
		return nil, fmt.Errorf("%w: %v", estimator.EMalformed, err)
	}

	if opinion.Reasonable == nil {
		return nil, fmt.Errorf("%w: missing 'reasonable' field", estimator.EMalformed)
	}
	if opinion.SuggestedTotal < 0 {
		return nil, fmt.Errorf("%w: negative suggested total", estimator.EMalformed)
	}

	confidence := opinion.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 100 {
		confidence = 100
	}

	return &domain.ValidationResult{
		Reasonable:     *opinion.Reasonable,
		SuggestedTotal: domain.Round2(opinion.SuggestedTotal),
		Confidence:     confidence,
		Reasoning:      opinion.Reasoning,
		Warnings:       opinion.Warnings,
	}, nil
}

// API request/response types

type apiRequest struct {
	Model     string       `json:"model"`
	MaxTokens int          `json:"max_tokens"`
	Messages  []apiMessage `json:"messages"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type apiResponse struct {
	ID      string             `json:"id"`
	Type    string             `json:"type"`
	Role    string             `json:"role"`
	Content []apiContentOutput `json:"content"`
	Model   string             `json:"model"`
}

type apiContentOutput struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type apiErrorResponse struct {
	Type  string   `json:"type"`
	Error apiError `json:"error"`
}

type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// reviewOutput represents the JSON structure returned by the model.
// Reasonable is a pointer so a missing field is distinguishable from false.
type reviewOutput struct {
	Reasonable     *bool    `json:"reasonable"`
	SuggestedTotal float64  `json:"suggested_total"`
	Confidence     int      `json:"confidence"`
	Reasoning      string   `json:"reasoning"`
	Warnings       []string `json:"warnings"`
}
