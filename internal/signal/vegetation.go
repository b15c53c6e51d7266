package signal

import (
	"context"
	"fmt"
	"time"

	"github.com/agrokarfi/agrokarfi/internal/earthengine"
	"github.com/agrokarfi/agrokarfi/pkg/geo"
)

// NDVI over the same Sentinel-2 collection as imagery, with a looser cloud
// threshold since band math tolerates more residual cloud than a visual
// composite does.
const (
	ndviMaxCloudPct = 20
	ndviWindow      = 365 * 24 * time.Hour
	ndviScaleM      = 20

	ndviNIRBand = "B8"
	ndviRedBand = "B4"
	ndviKey     = "nd"
)

// VegetationFetcher computes the mean NDVI of the polygon over the last
// year.
type VegetationFetcher struct {
	engine earthengine.Engine

	now func() time.Time
}

// NewVegetationFetcher creates a vegetation index fetcher against the
// given engine.
func NewVegetationFetcher(engine earthengine.Engine) *VegetationFetcher {
	return &VegetationFetcher{engine: engine, now: time.Now}
}

// Fetch computes (NIR-Red)/(NIR+Red) per image across a one-year
// cloud-filtered collection, takes the temporal mean, and reduces it over
// the polygon at 20 m.
func (f *VegetationFetcher) Fetch(ctx context.Context, region *geo.Region) (float64, error) {
	end := f.now()
	start := end.Add(-ndviWindow)

	values, err := f.engine.ReduceRegion(ctx, earthengine.ReduceRegionRequest{
		Dataset:          sentinel2Dataset,
		StartDate:        start.Format("2006-01-02"),
		EndDate:          end.Format("2006-01-02"),
		MaxCloudCoverPct: ndviMaxCloudPct,
		Composite:        earthengine.CompositeMean,
		NormalizedDifference: &earthengine.BandPair{
			A: ndviNIRBand,
			B: ndviRedBand,
		},
		Geometry:   region.Ring(),
		ScaleM:     ndviScaleM,
		BestEffort: true,
	})
	if err != nil {
		return 0, fmt.Errorf("ndvi reduction: %w", err)
	}

	value, ok := values[ndviKey]
	if !ok {
		return 0, fmt.Errorf("%w: ndvi reduction empty", ErrUnavailable)
	}

	return value, nil
}
