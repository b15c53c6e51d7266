// Package survey aggregates the four environmental signals for a farm
// polygon into a single complete report, with fallback resolution fully
// absorbed before the report leaves this package.
package survey

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/agrokarfi/agrokarfi/internal/earthengine"
	"github.com/agrokarfi/agrokarfi/internal/geocode/nominatim"
	"github.com/agrokarfi/agrokarfi/internal/signal"
	"github.com/agrokarfi/agrokarfi/pkg/geo"
)

// SoilProvider is the point-based secondary source for soil chemistry.
type SoilProvider interface {
	QueryTopsoil(ctx context.Context, lat, lon float64) (signal.SoilSample, error)
	Name() string
}

// ClimateProvider is the point-based secondary source for climate normals.
type ClimateProvider interface {
	QueryClimate(ctx context.Context, lat, lon float64) (signal.ClimateNormals, error)
	Name() string
}

// Geocoder resolves a point to an administrative state name, for display
// only.
type Geocoder interface {
	StateName(ctx context.Context, lat, lon float64) (string, error)
	Name() string
}

// ProviderObserver records the outcome of provider-backed resolutions.
type ProviderObserver interface {
	RecordRequest(provider, operation string, duration time.Duration, err error)
}

// Report is the complete aggregated response for one polygon. Every
// numeric field is finite by construction: fallback resolution has already
// run.
type Report struct {
	AreaSqM          float64
	ImageTileURL     string
	RainfallTotalMM  float64
	AvgTempC         float64
	SoilPH           float64
	NDVIMean         float64
	SoilOrgCarbonPct float64

	// StateName is the reverse-geocoded administrative region, or
	// "Unknown". Display only.
	StateName string

	// PolygonBounds echoes the caller's (lat, lon) vertices.
	PolygonBounds []geo.Coordinate

	// Sources records which fallback tier produced each signal, for
	// diagnostics.
	Sources map[string]signal.Source
}

// ServiceConfig holds configuration for the survey service.
type ServiceConfig struct {
	// Engine is the primary geospatial query engine.
	Engine earthengine.Engine

	// Soil is the secondary soil chemistry provider (optional).
	Soil SoilProvider

	// Climate is the secondary climate provider (optional).
	Climate ClimateProvider

	// Geocoder resolves the display state name (optional).
	Geocoder Geocoder

	// Logger for service operations.
	Logger zerolog.Logger

	// Metrics records per-signal resolution outcomes (optional).
	Metrics ProviderObserver

	// RequestTimeout bounds one whole aggregation (default: 30s).
	// Signals unresolved at the deadline fall through to defaults.
	RequestTimeout time.Duration
}

// Service runs the aggregation for farm polygons.
type Service struct {
	imagery    *signal.ImageryFetcher
	soil       *signal.SoilFetcher
	climate    *signal.ClimateFetcher
	vegetation *signal.VegetationFetcher

	soilBackup    SoilProvider
	climateBackup ClimateProvider
	geocoder      Geocoder

	logger         zerolog.Logger
	metrics        ProviderObserver
	requestTimeout time.Duration
}

// NewService creates a new survey service.
func NewService(cfg ServiceConfig) *Service {
	requestTimeout := cfg.RequestTimeout
	if requestTimeout == 0 {
		requestTimeout = 30 * time.Second
	}

	return &Service{
		imagery:        signal.NewImageryFetcher(cfg.Engine),
		soil:           signal.NewSoilFetcher(cfg.Engine),
		climate:        signal.NewClimateFetcher(cfg.Engine),
		vegetation:     signal.NewVegetationFetcher(cfg.Engine),
		soilBackup:     cfg.Soil,
		climateBackup:  cfg.Climate,
		geocoder:       cfg.Geocoder,
		logger:         cfg.Logger,
		metrics:        cfg.Metrics,
		requestTimeout: requestTimeout,
	}
}

// Survey resolves all four signals for the polygon and assembles the
// report. It fails only on malformed geometry; a signal's unavailability
// is absorbed by its fallback tiers. The four resolutions have no data
// dependency on each other and run concurrently.
func (s *Service) Survey(ctx context.Context, vertices []geo.Coordinate) (*Report, error) {
	region, err := geo.NewRegion(vertices)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	point := region.RepresentativePoint()

	var (
		wg       sync.WaitGroup
		imagery  signal.Resolved[string]
		soil     signal.Resolved[signal.SoilSample]
		climate  signal.Resolved[signal.ClimateNormals]
		ndvi     signal.Resolved[float64]
		stateRes string
	)

	wg.Add(5)

	go func() {
		defer wg.Done()
		defer s.observe("imagery", time.Now(), func() signal.Source { return imagery.Source })
		imagery = signal.Resolve(ctx, s.logger, "imagery",
			func(ctx context.Context) (string, error) {
				return s.imagery.Fetch(ctx, region)
			},
			nil, // no secondary imagery source
			signal.DefaultImageURL,
		)
	}()

	go func() {
		defer wg.Done()
		defer s.observe("soil", time.Now(), func() signal.Source { return soil.Source })
		soil = signal.Resolve(ctx, s.logger, "soil",
			func(ctx context.Context) (signal.SoilSample, error) {
				return s.soil.Fetch(ctx, region)
			},
			s.secondarySoil(point),
			signal.DefaultSoil,
		)
	}()

	go func() {
		defer wg.Done()
		defer s.observe("climate", time.Now(), func() signal.Source { return climate.Source })
		climate = signal.Resolve(ctx, s.logger, "climate",
			func(ctx context.Context) (signal.ClimateNormals, error) {
				return s.climate.Fetch(ctx, region)
			},
			s.secondaryClimate(point),
			signal.DefaultClimate,
		)
	}()

	go func() {
		defer wg.Done()
		defer s.observe("vegetation", time.Now(), func() signal.Source { return ndvi.Source })
		ndvi = signal.Resolve(ctx, s.logger, "vegetation",
			func(ctx context.Context) (float64, error) {
				return s.vegetation.Fetch(ctx, region)
			},
			nil, // the static default is the backup NDVI
			signal.DefaultNDVI,
		)
	}()

	go func() {
		defer wg.Done()
		stateRes = s.stateName(ctx, point)
	}()

	wg.Wait()

	report := &Report{
		AreaSqM:          region.AreaSqM(),
		ImageTileURL:     imagery.Value,
		RainfallTotalMM:  climate.Value.RainfallMMPerYear,
		AvgTempC:         climate.Value.MeanTempC,
		SoilPH:           soil.Value.PH,
		NDVIMean:         ndvi.Value,
		SoilOrgCarbonPct: soil.Value.OrganicCarbonPct,
		StateName:        stateRes,
		PolygonBounds:    region.Vertices(),
		Sources: map[string]signal.Source{
			"imagery":    imagery.Source,
			"soil":       soil.Source,
			"climate":    climate.Source,
			"vegetation": ndvi.Source,
		},
	}

	s.logger.Info().
		Float64("area_sq_m", report.AreaSqM).
		Str("imagery_source", string(imagery.Source)).
		Str("soil_source", string(soil.Source)).
		Str("climate_source", string(climate.Source)).
		Str("vegetation_source", string(ndvi.Source)).
		Msg("survey complete")

	return report, nil
}

// observe records the resolution outcome for one signal. A signal that
// fell all the way through to its static default counts as a failed
// provider request.
func (s *Service) observe(operation string, start time.Time, source func() signal.Source) {
	if s.metrics == nil {
		return
	}

	var err error
	if src := source(); src == signal.SourceDefault {
		err = signal.ErrUnavailable
	}
	s.metrics.RecordRequest("survey", operation, time.Since(start), err)
}

// secondarySoil builds the tier-2 fetch for soil chemistry, or nil when no
// secondary provider is configured.
func (s *Service) secondarySoil(point geo.Coordinate) signal.FetchFunc[signal.SoilSample] {
	if s.soilBackup == nil {
		return nil
	}
	return func(ctx context.Context) (signal.SoilSample, error) {
		return s.soilBackup.QueryTopsoil(ctx, point.Lat, point.Lon)
	}
}

// secondaryClimate builds the tier-2 fetch for climate normals, or nil
// when no secondary provider is configured.
func (s *Service) secondaryClimate(point geo.Coordinate) signal.FetchFunc[signal.ClimateNormals] {
	if s.climateBackup == nil {
		return nil
	}
	return func(ctx context.Context) (signal.ClimateNormals, error) {
		return s.climateBackup.QueryClimate(ctx, point.Lat, point.Lon)
	}
}

// stateName reverse-geocodes the representative point. Failures degrade
// to "Unknown" and never affect the report contract.
func (s *Service) stateName(ctx context.Context, point geo.Coordinate) string {
	if s.geocoder == nil {
		return nominatim.UnknownState
	}

	name, err := s.geocoder.StateName(ctx, point.Lat, point.Lon)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Float64("lat", point.Lat).
			Float64("lon", point.Lon).
			Msg("reverse geocoding failed")
		return nominatim.UnknownState
	}

	return name
}
