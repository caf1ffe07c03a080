package anthropic

import (
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/movaro/movaro/internal/domain"
	"github.com/movaro/movaro/internal/estimator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProvider(t *testing.T) *Provider {
	t.Helper()
	p, err := New(Config{APIKey: "test-key"}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return p
}

func textResponse(text string) *apiResponse {
	return &apiResponse{
		Content: []apiContentOutput{{Type: "text", Text: text}},
	}
}

func TestNew(t *testing.T) {
	t.Run("requires an API key", func(t *testing.T) {
		_, err := New(Config{}, nil)
		assert.Error(t, err)
	})

	t.Run("applies defaults", func(t *testing.T) {
		p := testProvider(t)
		assert.Equal(t, DefaultModel, p.config.Model)
		assert.Equal(t, 3, p.config.ProviderConfig.MaxRetries)
	})
}

func TestParseOpinion(t *testing.T) {
	p := testProvider(t)

	t.Run("well-formed opinion", func(t *testing.T) {
		resp := textResponse(`{
			"reasonable": false,
			"suggested_total": 245.509,
			"confidence": 80,
			"reasoning": "Distance cost appears underestimated.",
			"warnings": ["long carry at delivery"]
		}`)

		got, err := p.parseOpinion(resp)
		require.NoError(t, err)
		assert.False(t, got.Reasonable)
		assert.InDelta(t, 245.51, got.SuggestedTotal, 0.001)
		assert.Equal(t, 80, got.Confidence)
		assert.Equal(t, []string{"long carry at delivery"}, got.Warnings)
	})

	t.Run("confidence clamped to range", func(t *testing.T) {
		got, err := p.parseOpinion(textResponse(`{"reasonable": true, "confidence": 150}`))
		require.NoError(t, err)
		assert.Equal(t, 100, got.Confidence)

		got, err = p.parseOpinion(textResponse(`{"reasonable": true, "confidence": -5}`))
		require.NoError(t, err)
		assert.Equal(t, 0, got.Confidence)
	})

	tests := []struct {
		name string
		resp *apiResponse
	}{
		{"no text content", &apiResponse{}},
		{"prose instead of JSON", textResponse("The quote looks fine to me.")},
		{"truncated JSON", textResponse(`{"reasonable": true, "sug`)},
		{"missing reasonable field", textResponse(`{"suggested_total": 120, "confidence": 70}`)},
		{"wrong type for reasonable", textResponse(`{"reasonable": "yes"}`)},
		{"negative suggested total", textResponse(`{"reasonable": true, "suggested_total": -40}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.parseOpinion(tt.resp)
			require.Error(t, err)
			assert.ErrorIs(t, err, estimator.EMalformed)
		})
	}
}

func TestMapHTTPError(t *testing.T) {
	p := testProvider(t)

	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, estimator.EUnauthorized},
		{http.StatusTooManyRequests, estimator.ERateLimit},
		{http.StatusRequestTimeout, estimator.ETimeout},
		{http.StatusBadGateway, estimator.EUnavailable},
		{http.StatusServiceUnavailable, estimator.EUnavailable},
		{http.StatusGatewayTimeout, estimator.EUnavailable},
	}

	for _, tt := range tests {
		err := p.mapHTTPError(tt.status, nil)
		assert.ErrorIs(t, err, tt.want, "status %d", tt.status)
	}

	err := p.mapHTTPError(http.StatusBadRequest, []byte(`{"error":{"message":"bad request"}}`))
	assert.False(t, estimator.IsRetryable(err))
	assert.Contains(t, err.Error(), "bad request")
}

func TestBuildReviewPromptRequestsJSONOnly(t *testing.T) {
	p := testProvider(t)

	params := estimator.ReviewParams{
		Input: domain.PricingInput{
			Category:   "apartment_move",
			DistanceKm: 20,
			Insurance:  domain.InsuranceTierNone,
		},
		Result: &domain.PricingResult{
			Vehicle:  "Van",
			Trips:    1,
			Subtotal: 164.52,
			VAT:      34.55,
			Total:    199.07,
			PriceMin: 170,
			PriceMax: 230,
		},
	}

	body, err := p.buildRequestBody(params)
	require.NoError(t, err)
	assert.Contains(t, string(body), "suggested_total")
	assert.Contains(t, string(body), "apartment_move")
}
