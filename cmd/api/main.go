// Package main provides the entrypoint for the Agro-Karfi API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/agrokarfi/agrokarfi/internal/advisor"
	"github.com/agrokarfi/agrokarfi/internal/advisor/gemini"
	"github.com/agrokarfi/agrokarfi/internal/api"
	"github.com/agrokarfi/agrokarfi/internal/api/middleware"
	"github.com/agrokarfi/agrokarfi/internal/config"
	"github.com/agrokarfi/agrokarfi/internal/database"
	"github.com/agrokarfi/agrokarfi/internal/earthengine"
	"github.com/agrokarfi/agrokarfi/internal/geocode/nominatim"
	"github.com/agrokarfi/agrokarfi/internal/openmeteo"
	"github.com/agrokarfi/agrokarfi/internal/predict"
	"github.com/agrokarfi/agrokarfi/internal/predict/modelserver"
	"github.com/agrokarfi/agrokarfi/internal/soilgrids"
	"github.com/agrokarfi/agrokarfi/internal/survey"
	"github.com/agrokarfi/agrokarfi/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "agrokarfi-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting Agro-Karfi API")

	cfg := config.Load(log)

	// Initialize OpenTelemetry
	ctx := context.Background()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.TelemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if cfg.TelemetryEnabled {
		log.Info().
			Str("otlp_endpoint", cfg.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	providerMetrics, err := middleware.NewProviderMetrics(serviceName)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize provider metrics")
		os.Exit(1)
	}

	// Satellite compute gateway (primary signal tier)
	if cfg.EarthEngineBaseURL == "" {
		log.Warn().Msg("EARTHENGINE_BASE_URL not set - primary signal tier will be unavailable")
	}
	engine := earthengine.NewClient(earthengine.ClientConfig{
		BaseURL: cfg.EarthEngineBaseURL,
		APIKey:  cfg.EarthEngineAPIKey,
		Logger:  log,
	})

	// Secondary providers and reverse geocoding
	soilBackup := soilgrids.NewClient(soilgrids.ClientConfig{BaseURL: cfg.SoilGridsBaseURL})
	climateBackup := openmeteo.NewClient(openmeteo.ClientConfig{BaseURL: cfg.OpenMeteoBaseURL})
	geocoder := nominatim.NewClient(nominatim.ClientConfig{
		BaseURL:   cfg.NominatimBaseURL,
		UserAgent: cfg.NominatimUserAgent,
	})

	surveyService := survey.NewService(survey.ServiceConfig{
		Engine:         engine,
		Soil:           soilBackup,
		Climate:        climateBackup,
		Geocoder:       geocoder,
		Logger:         log,
		Metrics:        providerMetrics,
		RequestTimeout: cfg.SurveyTimeout,
	})
	log.Info().Msg("survey service initialized")

	// Prediction: encoder artifacts load once, before serving traffic.
	encoder, err := predict.LoadArtifacts(cfg.EncoderArtifactsPath)
	if err != nil {
		log.Fatal().
			Err(err).
			Str("path", cfg.EncoderArtifactsPath).
			Msg("failed to load encoder artifacts")
	}
	log.Info().
		Int("state_categories", encoder.Categories()).
		Msg("encoder artifacts loaded")

	classifier := modelserver.NewClient(modelserver.ClientConfig{
		BaseURL: cfg.ModelServerBaseURL,
		APIKey:  cfg.ModelServerAPIKey,
	})
	predictService := predict.NewService(predict.ServiceConfig{
		Encoder:    encoder,
		Classifier: classifier,
		Logger:     log,
	})
	log.Info().Msg("prediction service initialized")

	// Advisory: reference documents load once; a missing API key leaves
	// the advisor running in its offline state.
	docs, err := advisor.LoadReferenceDocuments(cfg.ReferenceDocsDir)
	if err != nil {
		log.Fatal().
			Err(err).
			Str("dir", cfg.ReferenceDocsDir).
			Msg("failed to load reference documents")
	}
	log.Info().
		Int("documents", len(docs)).
		Msg("reference documents loaded")

	var generator advisor.Generator
	if cfg.GoogleAPIKey != "" {
		geminiClient, err := gemini.NewClient(ctx, gemini.ClientConfig{
			APIKey:            cfg.GoogleAPIKey,
			Model:             cfg.GeminiModel,
			SystemInstruction: advisor.SystemInstruction,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize Gemini client")
		}
		defer geminiClient.Close()
		generator = geminiClient
		log.Info().Str("model", geminiClient.Name()).Msg("advisory model initialized")
	} else {
		log.Warn().Msg("GOOGLE_API_KEY not set - advisor is offline")
	}

	// Transcript store: Postgres when configured, in-memory otherwise.
	var (
		transcripts advisor.Repository
		pool        *pgxpool.Pool
	)
	if cfg.DatabaseEnabled {
		dbConfig := database.ConfigFromEnv()
		pool, err = database.Connect(ctx, dbConfig)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()
		transcripts = advisor.NewPostgresRepository(pool)
		log.Info().
			Str("host", dbConfig.Host).
			Str("database", dbConfig.Database).
			Msg("database connected, transcripts persisted")
	} else {
		transcripts = advisor.NewInMemoryRepository()
		log.Info().Msg("transcripts held in memory")
	}

	advisorService := advisor.NewService(advisor.ServiceConfig{
		Generator:  generator,
		Repository: transcripts,
		Docs:       docs,
		Logger:     log,
	})
	log.Info().Msg("advisory service initialized")

	var readiness func(ctx context.Context) error
	if pool != nil {
		readiness = pool.Ping
	}

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:     Version,
		BuildTime:   BuildTime,
		Logger:      log,
		ServiceName: serviceName,
		Metrics:     metrics,
		Surveyor:    surveyService,
		Predictor:   predictService,
		Adviser:     advisorService,
		Readiness:   readiness,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
