// Package api provides the HTTP API for Agro-Karfi.
package api

import (
	"context"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/agrokarfi/agrokarfi/internal/api/handler"
	"github.com/agrokarfi/agrokarfi/internal/api/middleware"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics

	// Surveyor backs POST /calculate.
	Surveyor handler.Surveyor

	// Predictor backs POST /predict.
	Predictor handler.Predictor

	// Adviser backs POST /chat.
	Adviser handler.Adviser

	// Readiness checks downstream dependencies for /v1/ops/ready.
	Readiness func(ctx context.Context) error
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Set default service name if not provided
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "agrokarfi-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)
	r.Use(middleware.ContentTypeJSON)      // JSON content type

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Readiness)
	geospatialHandler := handler.NewGeospatialHandler(cfg.Surveyor)
	predictHandler := handler.NewPredictHandler(cfg.Predictor)
	chatHandler := handler.NewChatHandler(cfg.Adviser)

	// Rate limit middleware for different endpoint categories
	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)   // 100 req/min

	// Core endpoints keep their historical root-level paths; the field
	// dashboard calls them directly.
	r.With(expensiveRateLimit).Post("/calculate", geospatialHandler.Calculate)
	r.With(expensiveRateLimit).Post("/predict", predictHandler.Predict)
	r.With(standardRateLimit).Post("/chat", chatHandler.Chat)

	// Ops endpoints (public)
	r.Route("/v1/ops", func(r chi.Router) {
		r.Get("/health", opsHandler.HealthCheck)
		r.Get("/ready", opsHandler.ReadinessCheck)
	})

	return r
}
