// Package config loads the service configuration from the environment,
// with optional .env file support for local development.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config holds all service configuration.
type Config struct {
	// Port the HTTP server listens on.
	Port string

	// Environment is the deployment environment (development, production).
	Environment string

	// OTLPEndpoint receives traces/metrics when telemetry is enabled.
	OTLPEndpoint string

	// TelemetryEnabled turns on OTLP export.
	TelemetryEnabled bool

	// EarthEngineBaseURL is the compute gateway that fronts the
	// satellite datasets.
	EarthEngineBaseURL string

	// EarthEngineAPIKey authenticates to the compute gateway.
	EarthEngineAPIKey string

	// SoilGridsBaseURL overrides the SoilGrids REST base URL.
	SoilGridsBaseURL string

	// OpenMeteoBaseURL overrides the Open-Meteo base URL.
	OpenMeteoBaseURL string

	// NominatimBaseURL overrides the Nominatim base URL.
	NominatimBaseURL string

	// NominatimUserAgent identifies this service to Nominatim.
	NominatimUserAgent string

	// ModelServerBaseURL is the crop model serving process.
	ModelServerBaseURL string

	// ModelServerAPIKey authenticates to the model server.
	ModelServerAPIKey string

	// EncoderArtifactsPath is the JSON file with the trained encoder
	// categories.
	EncoderArtifactsPath string

	// ReferenceDocsDir holds the agronomy PDFs grounding the advisor.
	ReferenceDocsDir string

	// GoogleAPIKey authenticates to Gemini. Empty puts the advisor in
	// the offline state.
	GoogleAPIKey string

	// GeminiModel overrides the default advisory model.
	GeminiModel string

	// SurveyTimeout bounds one whole polygon aggregation.
	SurveyTimeout time.Duration

	// DatabaseEnabled turns on the Postgres-backed transcript store.
	DatabaseEnabled bool
}

// Load reads configuration from the environment. A .env file in the
// working directory is merged in first when present; real environment
// variables win.
func Load(logger zerolog.Logger) Config {
	if err := godotenv.Load(); err == nil {
		logger.Info().Msg(".env file loaded")
	}

	surveyTimeout, err := time.ParseDuration(envOrDefault("SURVEY_TIMEOUT", "30s"))
	if err != nil {
		surveyTimeout = 30 * time.Second
	}

	return Config{
		Port:                 envOrDefault("APP_PORT", "8080"),
		Environment:          envOrDefault("APP_ENV", "development"),
		OTLPEndpoint:         envOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		TelemetryEnabled:     envBool("OTEL_ENABLED"),
		EarthEngineBaseURL:   os.Getenv("EARTHENGINE_BASE_URL"),
		EarthEngineAPIKey:    os.Getenv("EARTHENGINE_API_KEY"),
		SoilGridsBaseURL:     os.Getenv("SOILGRIDS_BASE_URL"),
		OpenMeteoBaseURL:     os.Getenv("OPENMETEO_BASE_URL"),
		NominatimBaseURL:     os.Getenv("NOMINATIM_BASE_URL"),
		NominatimUserAgent:   envOrDefault("NOMINATIM_USER_AGENT", "agrokarfi-api"),
		ModelServerBaseURL:   envOrDefault("MODEL_SERVER_BASE_URL", "http://localhost:8501"),
		ModelServerAPIKey:    os.Getenv("MODEL_SERVER_API_KEY"),
		EncoderArtifactsPath: envOrDefault("ENCODER_ARTIFACTS_PATH", "model/encoders.json"),
		ReferenceDocsDir:     envOrDefault("REFERENCE_DOCS_DIR", "data"),
		GoogleAPIKey:         os.Getenv("GOOGLE_API_KEY"),
		GeminiModel:          os.Getenv("GEMINI_MODEL"),
		SurveyTimeout:        surveyTimeout,
		DatabaseEnabled:      envBool("DB_ENABLED"),
	}
}

func envOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func envBool(key string) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && b
}
