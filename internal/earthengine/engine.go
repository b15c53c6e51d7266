// Package earthengine defines the boundary to the primary geospatial query
// engine: region-based raster reduction and composite thumbnail rendering.
// Credential bootstrap and expression evaluation live on the other side of
// this boundary.
package earthengine

import (
	"context"
	"errors"
)

// Engine errors.
var (
	// ErrNoData is returned when a reduction yields no value for the
	// requested region, e.g. an empty filtered collection.
	ErrNoData = errors.New("no data for region")
)

// Composite selects the pixel-wise statistic applied across a filtered
// image collection.
type Composite string

const (
	CompositeMedian Composite = "median"
	CompositeMean   Composite = "mean"
	CompositeSum    Composite = "sum"
)

// BandPair names the two bands of a per-image normalized difference,
// computed as (A-B)/(A+B) before temporal compositing.
type BandPair struct {
	A string
	B string
}

// ReduceRegionRequest describes a region reduction: a single statistic of a
// raster signal over an arbitrary polygon.
type ReduceRegionRequest struct {
	// Dataset is the engine asset id, e.g. "NOAA/PERSIANN-CDR" or
	// "projects/soilgrids-isric/phh2o_mean".
	Dataset string

	// Bands to reduce. Empty means all bands of the asset.
	Bands []string

	// StartDate/EndDate filter an image collection (ISO dates, end
	// exclusive). Empty for single-image assets.
	StartDate string
	EndDate   string

	// MaxCloudCoverPct filters collection images by cloud metadata.
	// Zero disables the filter.
	MaxCloudCoverPct float64

	// Composite is the temporal statistic applied across the filtered
	// collection before reduction. Ignored for single-image assets.
	Composite Composite

	// NormalizedDifference, when set, is computed per image before the
	// temporal composite, replacing the raw bands.
	NormalizedDifference *BandPair

	// Geometry is the closed polygon ring in (lon, lat) order.
	Geometry [][]float64

	// ScaleM is the nominal reduction resolution in meters.
	ScaleM float64

	// BestEffort tolerates geometry/resolution mismatches by
	// approximating rather than failing.
	BestEffort bool
}

// ThumbnailRequest describes a fixed-size true-color rendering of a cloud
// filtered composite, clipped to a polygon.
type ThumbnailRequest struct {
	Dataset          string
	StartDate        string
	EndDate          string
	MaxCloudCoverPct float64

	// Bands mapped to red, green, blue.
	Bands []string

	// Min/Max define the linear stretch; Gamma the gamma correction.
	Min   float64
	Max   float64
	Gamma float64

	// Geometry is the clip ring in (lon, lat) order.
	Geometry [][]float64

	// Region is the render bounding box: minLon, minLat, maxLon, maxLat.
	Region [4]float64

	// Dimensions is the longest thumbnail side in pixels.
	Dimensions int
}

// ThumbnailResult is the outcome of a thumbnail rendering.
type ThumbnailResult struct {
	// URL serves the rendered tile.
	URL string

	// BandCount is the number of usable bands in the composite. Zero
	// means no cloud-free imagery matched the filters.
	BandCount int
}

// Engine is the primary geospatial data source consumed by the signal
// fetchers.
type Engine interface {
	// ReduceRegion computes the area-weighted mean (or configured
	// statistic) of each requested band over the polygon.
	ReduceRegion(ctx context.Context, req ReduceRegionRequest) (map[string]float64, error)

	// Thumbnail renders a composite thumbnail and returns its URL.
	Thumbnail(ctx context.Context, req ThumbnailRequest) (ThumbnailResult, error)

	// Name returns the engine name for logging.
	Name() string
}
