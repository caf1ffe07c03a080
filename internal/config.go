package internal

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env         string
	Port        int
	LogLevel    string
	DatabaseUrl string

	// Pricing configuration
	RateProfile string // "standard" or "economy"
	TaxIncluded bool   // when false, quotes carry zero VAT

	// External estimator configuration
	ValidationEnabled       bool
	EstimatorProvider       string // "anthropic" or "mock"
	AnthropicAPIKey         string
	AnthropicModel          string
	EstimatorMaxRetries     int
	EstimatorRetryBaseDelay time.Duration
	EstimatorTimeout        time.Duration

	// Metrics endpoint authentication
	// If both are empty, the /metrics endpoint will be unprotected (not recommended)
	MetricsUsername string
	MetricsPassword string
}

func NewConfig() (*Config, error) {
	// Load .env file if it exists (ignored in production)
	_ = godotenv.Load()

	cfg := &Config{
		Env:      getEnv("ENV", "development"),
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "debug"),

		// Pricing defaults
		RateProfile: getEnv("RATE_PROFILE", "standard"),
		TaxIncluded: getEnvBool("TAX_INCLUDED", true),

		// Estimator defaults
		ValidationEnabled:       getEnvBool("VALIDATION_ENABLED", false),
		EstimatorProvider:       getEnv("ESTIMATOR_PROVIDER", "mock"),
		AnthropicAPIKey:         getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:          getEnv("ANTHROPIC_MODEL", "claude-3-5-sonnet-20241022"),
		EstimatorMaxRetries:     getEnvInt("ESTIMATOR_MAX_RETRIES", 3),
		EstimatorRetryBaseDelay: getEnvDuration("ESTIMATOR_RETRY_BASE_DELAY", 1*time.Second),
		EstimatorTimeout:        getEnvDuration("ESTIMATOR_TIMEOUT", 30*time.Second),

		// Metrics authentication
		MetricsUsername: getEnv("METRICS_USERNAME", ""),
		MetricsPassword: getEnv("METRICS_PASSWORD", ""),
	}

	// Required
	cfg.DatabaseUrl = os.Getenv("DATABASE_URL")
	if cfg.DatabaseUrl == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	// Validate rate profile
	if cfg.RateProfile != "standard" && cfg.RateProfile != "economy" {
		return nil, fmt.Errorf("RATE_PROFILE must be either 'standard' or 'economy', got: %s", cfg.RateProfile)
	}

	// Validate estimator configuration
	if cfg.ValidationEnabled && cfg.EstimatorProvider == "anthropic" && cfg.AnthropicAPIKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY is required when ESTIMATOR_PROVIDER is 'anthropic'")
	}
	if cfg.EstimatorProvider != "anthropic" && cfg.EstimatorProvider != "mock" {
		return nil, fmt.Errorf("ESTIMATOR_PROVIDER must be either 'anthropic' or 'mock', got: %s", cfg.EstimatorProvider)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
