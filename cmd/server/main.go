package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/movaro/movaro/internal"
	"github.com/movaro/movaro/internal/estimator"
	"github.com/movaro/movaro/internal/estimator/anthropic"
	"github.com/movaro/movaro/internal/estimator/mock"
	"github.com/movaro/movaro/internal/handler"
	"github.com/movaro/movaro/internal/metrics"
	"github.com/movaro/movaro/internal/middleware"
	"github.com/movaro/movaro/internal/pricing"
	"github.com/movaro/movaro/internal/rates"
	"github.com/movaro/movaro/internal/repository"
	"github.com/movaro/movaro/internal/service"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize database connection
	db, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	// Run migrations
	if err := internal.RunMigrations(db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database ready")

	// Initialize repository
	store := repository.NewStore(db)

	// Initialize the pricing engine with the configured rate profile
	profile, err := rates.ByName(cfg.RateProfile)
	if err != nil {
		return fmt.Errorf("rate profile initialization failed: %w", err)
	}
	engine, err := pricing.NewEngine(profile, pricing.NeutralLearning{}, cfg.TaxIncluded)
	if err != nil {
		return fmt.Errorf("engine initialization failed: %w", err)
	}
	logger.Info("Pricing engine ready", "profile", profile.Name, "tax_included", cfg.TaxIncluded)

	// Initialize the external validator, if enabled
	var validator estimator.Validator
	if cfg.ValidationEnabled {
		switch cfg.EstimatorProvider {
		case "anthropic":
			validator, err = anthropic.New(anthropic.Config{
				APIKey: cfg.AnthropicAPIKey,
				Model:  cfg.AnthropicModel,
				ProviderConfig: estimator.ProviderConfig{
					MaxRetries:     cfg.EstimatorMaxRetries,
					RetryBaseDelay: cfg.EstimatorRetryBaseDelay,
					RequestTimeout: cfg.EstimatorTimeout,
				},
			}, logger)
			if err != nil {
				return fmt.Errorf("estimator initialization failed: %w", err)
			}
		case "mock":
			validator = mock.New(logger)
		}
		logger.Info("External validation enabled", "provider", cfg.EstimatorProvider)
	}

	// Initialize services
	quoteService := service.NewQuoteService(engine, validator, cfg.EstimatorTimeout, store.Queries, logger)
	repriceService := service.NewRepriceService(store, engine, logger)

	// Initialize handlers
	quoteHandler := handler.NewQuoteHandler(quoteService, logger)
	adminHandler := handler.NewAdminHandler(repriceService, logger)

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Metrics endpoint (basic auth when configured)
	metricsAuth := middleware.NewMetricsAuthMiddleware(cfg.MetricsUsername, cfg.MetricsPassword)
	mux.Handle("GET /metrics", metricsAuth.Handler(promhttp.Handler()))

	quoteHandler.RegisterRoutes(mux)
	adminHandler.RegisterRoutes(mux)

	// Wrap with request logging and metrics
	logging := middleware.NewRequestLoggingMiddleware(logger)
	root := logging.Handler(metrics.Middleware(mux))

	// ==========================================================================
	// Start server
	// ==========================================================================

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: root,
	}

	// Channel to listen for interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		logger.Info("Server started", "address", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
		}
	}()

	// Wait for interrupt signal
	<-sigChan
	logger.Info("Shutdown signal received, initiating graceful shutdown...")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Graceful shutdown complete")
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
