package survey

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrokarfi/agrokarfi/internal/earthengine"
	"github.com/agrokarfi/agrokarfi/internal/signal"
	"github.com/agrokarfi/agrokarfi/pkg/geo"
)

// kanoField is a roughly 1 km x 1 km farm polygon near Kano.
var kanoField = []geo.Coordinate{
	{Lat: 12.00, Lon: 8.50},
	{Lat: 12.009, Lon: 8.50},
	{Lat: 12.009, Lon: 8.5092},
	{Lat: 12.00, Lon: 8.5092},
}

// fakeEngine serves canned reductions keyed by dataset and records calls.
type fakeEngine struct {
	mu        sync.Mutex
	values    map[string]map[string]float64
	reduceErr error
	thumb     earthengine.ThumbnailResult
	thumbErr  error
	calls     []string
}

func (f *fakeEngine) ReduceRegion(_ context.Context, req earthengine.ReduceRegionRequest) (map[string]float64, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req.Dataset)
	f.mu.Unlock()

	if f.reduceErr != nil {
		return nil, f.reduceErr
	}
	values, ok := f.values[req.Dataset]
	if !ok {
		return nil, earthengine.ErrNoData
	}
	return values, nil
}

func (f *fakeEngine) Thumbnail(context.Context, earthengine.ThumbnailRequest) (earthengine.ThumbnailResult, error) {
	if f.thumbErr != nil {
		return earthengine.ThumbnailResult{}, f.thumbErr
	}
	return f.thumb, nil
}

func (f *fakeEngine) Name() string { return "fake-engine" }

type fakeSoilProvider struct {
	mu     sync.Mutex
	sample signal.SoilSample
	err    error
	calls  int
}

func (f *fakeSoilProvider) QueryTopsoil(context.Context, float64, float64) (signal.SoilSample, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return signal.SoilSample{}, f.err
	}
	return f.sample, nil
}

func (f *fakeSoilProvider) Name() string { return "fake-soilgrids" }

type fakeClimateProvider struct {
	normals signal.ClimateNormals
	err     error
}

func (f *fakeClimateProvider) QueryClimate(context.Context, float64, float64) (signal.ClimateNormals, error) {
	if f.err != nil {
		return signal.ClimateNormals{}, f.err
	}
	return f.normals, nil
}

func (f *fakeClimateProvider) Name() string { return "fake-openmeteo" }

type fakeGeocoder struct {
	state string
	err   error
}

func (f *fakeGeocoder) StateName(context.Context, float64, float64) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.state, nil
}

func (f *fakeGeocoder) Name() string { return "fake-nominatim" }

func healthyEngine() *fakeEngine {
	return &fakeEngine{
		values: map[string]map[string]float64{
			"projects/soilgrids-isric/phh2o_mean": {"phh2o_0-5cm_mean": 65},
			"projects/soilgrids-isric/soc_mean":   {"soc_0-5cm_mean": 18},
			"NOAA/PERSIANN-CDR":                   {"precipitation": 41 * 950.0},
			"ECMWF/ERA5/MONTHLY":                  {"mean_2m_air_temperature": 300.15},
			"COPERNICUS/S2_SR_HARMONIZED":         {"nd": 0.62},
		},
		thumb: earthengine.ThumbnailResult{URL: "https://earthengine.example/thumb/abc123", BandCount: 3},
	}
}

func TestSurveyAllPrimary(t *testing.T) {
	service := NewService(ServiceConfig{
		Engine:   healthyEngine(),
		Soil:     &fakeSoilProvider{},
		Climate:  &fakeClimateProvider{},
		Geocoder: &fakeGeocoder{state: "Kano"},
		Logger:   zerolog.Nop(),
	})

	report, err := service.Survey(context.Background(), kanoField)
	require.NoError(t, err)

	assert.Equal(t, "https://earthengine.example/thumb/abc123", report.ImageTileURL)
	assert.InDelta(t, 6.5, report.SoilPH, 1e-9)
	assert.InDelta(t, 1.8, report.SoilOrgCarbonPct, 1e-9)
	assert.InDelta(t, 950.0, report.RainfallTotalMM, 1e-9)
	assert.InDelta(t, 27.0, report.AvgTempC, 1e-9)
	assert.InDelta(t, 0.62, report.NDVIMean, 1e-9)
	assert.Equal(t, "Kano", report.StateName)
	assert.Equal(t, kanoField, report.PolygonBounds)
	assert.Greater(t, report.AreaSqM, 900_000.0)

	for _, name := range []string{"imagery", "soil", "climate", "vegetation"} {
		assert.Equal(t, signal.SourcePrimary, report.Sources[name], name)
	}
}

func TestSurveyAllProvidersDown(t *testing.T) {
	engine := &fakeEngine{reduceErr: earthengine.ErrNoData, thumbErr: earthengine.ErrNoData}
	service := NewService(ServiceConfig{
		Engine:   engine,
		Soil:     &fakeSoilProvider{err: signal.ErrUnavailable},
		Climate:  &fakeClimateProvider{err: signal.ErrUnavailable},
		Geocoder: &fakeGeocoder{err: context.DeadlineExceeded},
		Logger:   zerolog.Nop(),
	})

	report, err := service.Survey(context.Background(), kanoField)
	require.NoError(t, err)

	assert.Equal(t, signal.DefaultImageURL, report.ImageTileURL)
	assert.Equal(t, signal.DefaultSoil.PH, report.SoilPH)
	assert.Equal(t, signal.DefaultSoil.OrganicCarbonPct, report.SoilOrgCarbonPct)
	assert.Equal(t, signal.DefaultClimate.RainfallMMPerYear, report.RainfallTotalMM)
	assert.Equal(t, signal.DefaultClimate.MeanTempC, report.AvgTempC)
	assert.Equal(t, signal.DefaultNDVI, report.NDVIMean)
	assert.Equal(t, "Unknown", report.StateName)

	for _, name := range []string{"imagery", "soil", "climate", "vegetation"} {
		assert.Equal(t, signal.SourceDefault, report.Sources[name], name)
	}
}

func TestSurveySecondarySoilUsedWhenPrimaryFails(t *testing.T) {
	engine := healthyEngine()
	delete(engine.values, "projects/soilgrids-isric/phh2o_mean")

	soilBackup := &fakeSoilProvider{sample: signal.SoilSample{PH: 5.9, OrganicCarbonPct: 0.8}}
	service := NewService(ServiceConfig{
		Engine:  engine,
		Soil:    soilBackup,
		Climate: &fakeClimateProvider{},
		Logger:  zerolog.Nop(),
	})

	report, err := service.Survey(context.Background(), kanoField)
	require.NoError(t, err)

	assert.Equal(t, 1, soilBackup.calls)
	assert.InDelta(t, 5.9, report.SoilPH, 1e-9)
	assert.InDelta(t, 0.8, report.SoilOrgCarbonPct, 1e-9)
	assert.Equal(t, signal.SourceSecondary, report.Sources["soil"])

	// Signals with healthy primaries are untouched by the soil fallback.
	assert.Equal(t, signal.SourcePrimary, report.Sources["climate"])
	assert.Equal(t, signal.SourcePrimary, report.Sources["vegetation"])
}

func TestSurveySecondaryNotCalledWhenPrimarySucceeds(t *testing.T) {
	soilBackup := &fakeSoilProvider{sample: signal.SoilSample{PH: 4.0, OrganicCarbonPct: 0.1}}
	service := NewService(ServiceConfig{
		Engine: healthyEngine(),
		Soil:   soilBackup,
		Logger: zerolog.Nop(),
	})

	report, err := service.Survey(context.Background(), kanoField)
	require.NoError(t, err)

	assert.Equal(t, 0, soilBackup.calls)
	assert.InDelta(t, 6.5, report.SoilPH, 1e-9)
}

func TestSurveyRejectsDegeneratePolygon(t *testing.T) {
	service := NewService(ServiceConfig{
		Engine: healthyEngine(),
		Logger: zerolog.Nop(),
	})

	_, err := service.Survey(context.Background(), kanoField[:2])
	require.ErrorIs(t, err, geo.ErrTooFewVertices)
}

func TestSurveyNoSecondariesConfigured(t *testing.T) {
	engine := &fakeEngine{reduceErr: earthengine.ErrNoData, thumbErr: earthengine.ErrNoData}
	service := NewService(ServiceConfig{Engine: engine, Logger: zerolog.Nop()})

	report, err := service.Survey(context.Background(), kanoField)
	require.NoError(t, err)

	assert.Equal(t, signal.DefaultSoil.PH, report.SoilPH)
	assert.Equal(t, signal.DefaultClimate.MeanTempC, report.AvgTempC)
	assert.Equal(t, "Unknown", report.StateName)
}

func TestSurveyHonorsDeadline(t *testing.T) {
	service := NewService(ServiceConfig{
		Engine:         &fakeEngine{reduceErr: context.DeadlineExceeded, thumbErr: context.DeadlineExceeded},
		Logger:         zerolog.Nop(),
		RequestTimeout: 50 * time.Millisecond,
	})

	start := time.Now()
	report, err := service.Survey(context.Background(), kanoField)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)

	// Nothing resolved remotely, so every signal degraded to its default.
	for _, source := range report.Sources {
		assert.Equal(t, signal.SourceDefault, source)
	}
}

type fakeObserver struct {
	mu      sync.Mutex
	records map[string]error
}

func (f *fakeObserver) RecordRequest(_, operation string, _ time.Duration, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.records == nil {
		f.records = map[string]error{}
	}
	f.records[operation] = err
}

func TestSurveyRecordsSignalOutcomes(t *testing.T) {
	observer := &fakeObserver{}
	engine := healthyEngine()
	delete(engine.values, "projects/soilgrids-isric/phh2o_mean")
	delete(engine.values, "projects/soilgrids-isric/soc_mean")

	service := NewService(ServiceConfig{
		Engine:  engine,
		Logger:  zerolog.Nop(),
		Metrics: observer,
	})

	_, err := service.Survey(context.Background(), kanoField)
	require.NoError(t, err)

	observer.mu.Lock()
	defer observer.mu.Unlock()
	require.Len(t, observer.records, 4)
	assert.NoError(t, observer.records["imagery"])
	assert.NoError(t, observer.records["climate"])
	assert.NoError(t, observer.records["vegetation"])
	assert.ErrorIs(t, observer.records["soil"], signal.ErrUnavailable)
}
