package signal

import (
	"context"
	"fmt"

	"github.com/agrokarfi/agrokarfi/internal/earthengine"
	"github.com/agrokarfi/agrokarfi/pkg/geo"
)

// ISRIC SoilGrids v2.0 rasters. Values are stored scaled by 10.
const (
	soilPHDataset     = "projects/soilgrids-isric/phh2o_mean"
	soilPHBand        = "phh2o_0-5cm_mean"
	soilCarbonDataset = "projects/soilgrids-isric/soc_mean"
	soilCarbonBand    = "soc_0-5cm_mean"

	soilScaleM     = 250
	soilValueScale = 10.0
)

// SoilFetcher reads topsoil (0-5 cm) pH and organic carbon over the
// polygon.
type SoilFetcher struct {
	engine earthengine.Engine
}

// NewSoilFetcher creates a soil chemistry fetcher against the given engine.
func NewSoilFetcher(engine earthengine.Engine) *SoilFetcher {
	return &SoilFetcher{engine: engine}
}

// Fetch computes the area-weighted mean of both topsoil layers at 250 m
// using a best-effort reduction. Either mean missing makes the whole
// sample unavailable; the fallback tier supplies both values together.
func (f *SoilFetcher) Fetch(ctx context.Context, region *geo.Region) (SoilSample, error) {
	ph, err := f.reduceBand(ctx, region, soilPHDataset, soilPHBand)
	if err != nil {
		return SoilSample{}, fmt.Errorf("soil pH: %w", err)
	}

	carbon, err := f.reduceBand(ctx, region, soilCarbonDataset, soilCarbonBand)
	if err != nil {
		return SoilSample{}, fmt.Errorf("soil organic carbon: %w", err)
	}

	return SoilSample{
		PH:               ph / soilValueScale,
		OrganicCarbonPct: carbon / soilValueScale,
	}, nil
}

func (f *SoilFetcher) reduceBand(ctx context.Context, region *geo.Region, dataset, band string) (float64, error) {
	values, err := f.engine.ReduceRegion(ctx, earthengine.ReduceRegionRequest{
		Dataset:    dataset,
		Bands:      []string{band},
		Geometry:   region.Ring(),
		ScaleM:     soilScaleM,
		BestEffort: true,
	})
	if err != nil {
		return 0, err
	}

	value, ok := values[band]
	if !ok {
		return 0, fmt.Errorf("%w: band %s missing from reduction", ErrUnavailable, band)
	}

	return value, nil
}
