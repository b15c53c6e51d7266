// Package predict adapts aggregated environmental signals and farm
// metadata into the feature vector the pretrained crop model expects, and
// decodes the model's integer label back to a crop name.
package predict

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// ErrBadLabel is returned when the classifier emits a label outside the
// trained crop domain. This is an internal fault, never a client error.
var ErrBadLabel = errors.New("label outside crop domain")

// cropNames is the trained label map. The index of each name is its
// integer label. Order is fixed by the training pipeline.
var cropNames = []string{
	"Cassava",
	"Cotton",
	"Guna melon",
	"Maize",
	"Okra",
	"Rice",
	"Soybeans",
	"Sweet potato",
	"Wheat",
	"Yam",
}

// Classifier is the opaque pretrained model boundary.
type Classifier interface {
	// Predict returns the integer crop label for one feature vector.
	Predict(ctx context.Context, features []float64) (int, error)

	// Name identifies the classifier backend for logging.
	Name() string
}

// Features holds the semantic inputs of one prediction: the aggregated
// environmental signals plus the farmer-supplied metadata.
type Features struct {
	State                 string
	RainfallTotalMM       float64
	AvgTempC              float64
	NDVIMean              float64
	SoilPH                float64
	SoilOrgCarbonPct      float64
	FertilizerRateKgPerHa float64
	PesticideRateLPerHa   float64
	FarmSizeHa            float64
	IrrigatedAreaHa       float64
}

// ServiceConfig holds configuration for the prediction service.
type ServiceConfig struct {
	// Encoder maps state names to trained integer codes.
	Encoder *StateEncoder

	// Classifier is the pretrained model backend.
	Classifier Classifier

	// Logger for service operations.
	Logger zerolog.Logger

	// Now supplies the current time (defaults to time.Now). The current
	// year is a model feature.
	Now func() time.Time
}

// Service runs crop predictions.
type Service struct {
	encoder    *StateEncoder
	classifier Classifier
	logger     zerolog.Logger
	now        func() time.Time
}

// NewService creates a new prediction service.
func NewService(cfg ServiceConfig) *Service {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Service{
		encoder:    cfg.Encoder,
		classifier: cfg.Classifier,
		logger:     cfg.Logger,
		now:        now,
	}
}

// Predict encodes the features, invokes the classifier, and decodes the
// label to a crop name. An unrecognized state yields ErrUnknownCategory.
func (s *Service) Predict(ctx context.Context, f Features) (string, error) {
	stateCode, err := s.encoder.Encode(f.State)
	if err != nil {
		return "", err
	}

	vector := featureVector(stateCode, s.now().Year(), f)

	label, err := s.classifier.Predict(ctx, vector)
	if err != nil {
		return "", fmt.Errorf("classifier %s: %w", s.classifier.Name(), err)
	}

	crop, err := cropForLabel(label)
	if err != nil {
		return "", err
	}

	s.logger.Info().
		Str("state", f.State).
		Int("label", label).
		Str("crop", crop).
		Msg("crop predicted")

	return crop, nil
}

// featureVector assembles the numeric vector in the exact order the model
// was trained with. Reordering silently corrupts predictions, so this
// order never changes.
func featureVector(stateCode, year int, f Features) []float64 {
	return []float64{
		float64(stateCode),
		float64(year),
		f.RainfallTotalMM,
		f.AvgTempC,
		f.NDVIMean,
		f.SoilPH,
		f.SoilOrgCarbonPct,
		f.FertilizerRateKgPerHa,
		f.PesticideRateLPerHa,
		f.FarmSizeHa,
		f.IrrigatedAreaHa,
	}
}

// cropForLabel decodes a trained integer label to its crop name.
func cropForLabel(label int) (string, error) {
	if label < 0 || label >= len(cropNames) {
		return "", fmt.Errorf("%w: label %d", ErrBadLabel, label)
	}
	return cropNames[label], nil
}
