package signal

import (
	"context"
	"fmt"

	"github.com/agrokarfi/agrokarfi/internal/earthengine"
	"github.com/agrokarfi/agrokarfi/pkg/geo"
)

// Long-term climatology datasets and their full temporal extents.
const (
	precipDataset   = "NOAA/PERSIANN-CDR"
	precipBand      = "precipitation"
	precipStartDate = "1983-01-01"
	precipEndDate   = "2024-01-01"
	precipYears     = 41
	precipScaleM    = 5000

	tempDataset   = "ECMWF/ERA5/MONTHLY"
	tempBand      = "mean_2m_air_temperature"
	tempStartDate = "1979-01-01"
	tempEndDate   = "2024-01-01"
	tempScaleM    = 30000

	kelvinOffset = 273.15
)

// ClimateFetcher reads multi-decade precipitation and temperature normals
// over the polygon.
type ClimateFetcher struct {
	engine earthengine.Engine
}

// NewClimateFetcher creates a climatology fetcher against the given engine.
func NewClimateFetcher(engine earthengine.Engine) *ClimateFetcher {
	return &ClimateFetcher{engine: engine}
}

// Fetch sums the daily precipitation collection over its full extent and
// divides by the years spanned for an average annual total, and takes the
// temporal mean of monthly 2m air temperature converted to Celsius. Either
// reduction yielding no value makes the normals unavailable.
func (f *ClimateFetcher) Fetch(ctx context.Context, region *geo.Region) (ClimateNormals, error) {
	rainfall, err := f.annualRainfall(ctx, region)
	if err != nil {
		return ClimateNormals{}, fmt.Errorf("precipitation: %w", err)
	}

	temp, err := f.meanTemperature(ctx, region)
	if err != nil {
		return ClimateNormals{}, fmt.Errorf("temperature: %w", err)
	}

	return ClimateNormals{
		RainfallMMPerYear: rainfall,
		MeanTempC:         temp,
	}, nil
}

func (f *ClimateFetcher) annualRainfall(ctx context.Context, region *geo.Region) (float64, error) {
	values, err := f.engine.ReduceRegion(ctx, earthengine.ReduceRegionRequest{
		Dataset:    precipDataset,
		Bands:      []string{precipBand},
		StartDate:  precipStartDate,
		EndDate:    precipEndDate,
		Composite:  earthengine.CompositeSum,
		Geometry:   region.Ring(),
		ScaleM:     precipScaleM,
		BestEffort: true,
	})
	if err != nil {
		return 0, err
	}

	total, ok := values[precipBand]
	if !ok {
		return 0, fmt.Errorf("%w: precipitation reduction empty", ErrUnavailable)
	}

	return total / precipYears, nil
}

func (f *ClimateFetcher) meanTemperature(ctx context.Context, region *geo.Region) (float64, error) {
	values, err := f.engine.ReduceRegion(ctx, earthengine.ReduceRegionRequest{
		Dataset:    tempDataset,
		Bands:      []string{tempBand},
		StartDate:  tempStartDate,
		EndDate:    tempEndDate,
		Composite:  earthengine.CompositeMean,
		Geometry:   region.Ring(),
		ScaleM:     tempScaleM,
		BestEffort: true,
	})
	if err != nil {
		return 0, err
	}

	kelvin, ok := values[tempBand]
	if !ok {
		return 0, fmt.Errorf("%w: temperature reduction empty", ErrUnavailable)
	}

	return kelvin - kelvinOffset, nil
}
