package signal

import (
	"context"
	"fmt"
	"time"

	"github.com/agrokarfi/agrokarfi/internal/earthengine"
	"github.com/agrokarfi/agrokarfi/pkg/geo"
)

// Sentinel-2 surface reflectance, harmonized collection.
const (
	sentinel2Dataset = "COPERNICUS/S2_SR_HARMONIZED"

	imageryMaxCloudPct = 10
	imageryWindow      = 365 * 24 * time.Hour

	// True-color visualization: B4/B3/B2 mapped to RGB with a linear
	// stretch and mild gamma correction.
	imageryStretchMin = 0
	imageryStretchMax = 3000
	imageryGamma      = 1.2
	imageryDimensions = 512
)

// ImageryFetcher renders a recent cloud-filtered true-color composite of
// the region.
type ImageryFetcher struct {
	engine earthengine.Engine

	// now is injectable for tests.
	now func() time.Time
}

// NewImageryFetcher creates an imagery fetcher against the given engine.
func NewImageryFetcher(engine earthengine.Engine) *ImageryFetcher {
	return &ImageryFetcher{engine: engine, now: time.Now}
}

// Fetch queries the most recent one-year window of the cloud-filtered
// collection, takes the per-pixel median composite, clips it to the
// region's (possibly buffered) imagery bounds, and returns the thumbnail
// URL. A composite with zero usable bands is unavailable.
func (f *ImageryFetcher) Fetch(ctx context.Context, region *geo.Region) (string, error) {
	end := f.now()
	start := end.Add(-imageryWindow)

	bounds := region.ImageryBounds()

	result, err := f.engine.Thumbnail(ctx, earthengine.ThumbnailRequest{
		Dataset:          sentinel2Dataset,
		StartDate:        start.Format("2006-01-02"),
		EndDate:          end.Format("2006-01-02"),
		MaxCloudCoverPct: imageryMaxCloudPct,
		Bands:            []string{"B4", "B3", "B2"},
		Min:              imageryStretchMin,
		Max:              imageryStretchMax,
		Gamma:            imageryGamma,
		Geometry:         region.Ring(),
		Region: [4]float64{
			bounds.Min(0), bounds.Min(1),
			bounds.Max(0), bounds.Max(1),
		},
		Dimensions: imageryDimensions,
	})
	if err != nil {
		return "", fmt.Errorf("render composite thumbnail: %w", err)
	}

	if result.BandCount == 0 || result.URL == "" {
		return "", fmt.Errorf("%w: no cloud-free imagery", ErrUnavailable)
	}

	return result.URL, nil
}
