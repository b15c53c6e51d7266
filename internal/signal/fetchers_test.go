package signal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrokarfi/agrokarfi/internal/earthengine"
	"github.com/agrokarfi/agrokarfi/pkg/geo"
)

type recordingEngine struct {
	values     map[string]map[string]float64
	reduceErr  error
	reduceReqs []earthengine.ReduceRegionRequest

	thumb     earthengine.ThumbnailResult
	thumbErr  error
	thumbReqs []earthengine.ThumbnailRequest
}

func (e *recordingEngine) ReduceRegion(_ context.Context, req earthengine.ReduceRegionRequest) (map[string]float64, error) {
	e.reduceReqs = append(e.reduceReqs, req)
	if e.reduceErr != nil {
		return nil, e.reduceErr
	}
	values, ok := e.values[req.Dataset]
	if !ok {
		return nil, earthengine.ErrNoData
	}
	return values, nil
}

func (e *recordingEngine) Thumbnail(_ context.Context, req earthengine.ThumbnailRequest) (earthengine.ThumbnailResult, error) {
	e.thumbReqs = append(e.thumbReqs, req)
	if e.thumbErr != nil {
		return earthengine.ThumbnailResult{}, e.thumbErr
	}
	return e.thumb, nil
}

func (e *recordingEngine) Name() string { return "recording" }

func testRegion(t *testing.T) *geo.Region {
	t.Helper()
	region, err := geo.NewRegion([]geo.Coordinate{
		{Lat: 12.00, Lon: 8.50},
		{Lat: 12.009, Lon: 8.50},
		{Lat: 12.009, Lon: 8.5092},
		{Lat: 12.00, Lon: 8.5092},
	})
	require.NoError(t, err)
	return region
}

func fixedClock() time.Time {
	return time.Date(2026, time.August, 29, 12, 0, 0, 0, time.UTC)
}

func TestImageryFetcherRequest(t *testing.T) {
	engine := &recordingEngine{
		thumb: earthengine.ThumbnailResult{URL: "https://thumb.example/x", BandCount: 3},
	}
	fetcher := NewImageryFetcher(engine)
	fetcher.now = fixedClock

	url, err := fetcher.Fetch(context.Background(), testRegion(t))
	require.NoError(t, err)
	assert.Equal(t, "https://thumb.example/x", url)

	require.Len(t, engine.thumbReqs, 1)
	req := engine.thumbReqs[0]
	assert.Equal(t, "COPERNICUS/S2_SR_HARMONIZED", req.Dataset)
	assert.Equal(t, "2025-08-29", req.StartDate)
	assert.Equal(t, "2026-08-29", req.EndDate)
	assert.Equal(t, 10.0, req.MaxCloudCoverPct)
	assert.Equal(t, []string{"B4", "B3", "B2"}, req.Bands)
	assert.Equal(t, 0.0, req.Min)
	assert.Equal(t, 3000.0, req.Max)
	assert.Equal(t, 1.2, req.Gamma)
	assert.Equal(t, 512, req.Dimensions)

	// The polygon is ~1 km2 so the render region carries the 500 m buffer.
	assert.Less(t, req.Region[0], 8.50)
	assert.Less(t, req.Region[1], 12.00)
	assert.Greater(t, req.Region[2], 8.5092)
	assert.Greater(t, req.Region[3], 12.009)
}

func TestImageryFetcherNoCloudFreeImagery(t *testing.T) {
	engine := &recordingEngine{
		thumb: earthengine.ThumbnailResult{URL: "https://thumb.example/x", BandCount: 0},
	}
	fetcher := NewImageryFetcher(engine)
	fetcher.now = fixedClock

	_, err := fetcher.Fetch(context.Background(), testRegion(t))
	require.ErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), "no cloud-free imagery")
}

func TestSoilFetcherScalesValues(t *testing.T) {
	engine := &recordingEngine{
		values: map[string]map[string]float64{
			"projects/soilgrids-isric/phh2o_mean": {"phh2o_0-5cm_mean": 63},
			"projects/soilgrids-isric/soc_mean":   {"soc_0-5cm_mean": 14},
		},
	}
	fetcher := NewSoilFetcher(engine)

	sample, err := fetcher.Fetch(context.Background(), testRegion(t))
	require.NoError(t, err)
	assert.InDelta(t, 6.3, sample.PH, 1e-9)
	assert.InDelta(t, 1.4, sample.OrganicCarbonPct, 1e-9)

	require.Len(t, engine.reduceReqs, 2)
	assert.Equal(t, 250.0, engine.reduceReqs[0].ScaleM)
	assert.True(t, engine.reduceReqs[0].BestEffort)
}

func TestSoilFetcherMissingBand(t *testing.T) {
	engine := &recordingEngine{
		values: map[string]map[string]float64{
			"projects/soilgrids-isric/phh2o_mean": {"phh2o_0-5cm_mean": 63},
			// soc reduction returns no band
			"projects/soilgrids-isric/soc_mean": {},
		},
	}
	fetcher := NewSoilFetcher(engine)

	_, err := fetcher.Fetch(context.Background(), testRegion(t))
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestClimateFetcherNormalizesUnits(t *testing.T) {
	engine := &recordingEngine{
		values: map[string]map[string]float64{
			"NOAA/PERSIANN-CDR":  {"precipitation": 41 * 1150.0},
			"ECMWF/ERA5/MONTHLY": {"mean_2m_air_temperature": 299.65},
		},
	}
	fetcher := NewClimateFetcher(engine)

	normals, err := fetcher.Fetch(context.Background(), testRegion(t))
	require.NoError(t, err)
	assert.InDelta(t, 1150.0, normals.RainfallMMPerYear, 1e-6)
	assert.InDelta(t, 26.5, normals.MeanTempC, 1e-9)

	require.Len(t, engine.reduceReqs, 2)
	precip := engine.reduceReqs[0]
	assert.Equal(t, "1983-01-01", precip.StartDate)
	assert.Equal(t, "2024-01-01", precip.EndDate)
	assert.Equal(t, earthengine.CompositeSum, precip.Composite)
	assert.Equal(t, 5000.0, precip.ScaleM)

	temp := engine.reduceReqs[1]
	assert.Equal(t, "1979-01-01", temp.StartDate)
	assert.Equal(t, earthengine.CompositeMean, temp.Composite)
	assert.Equal(t, 30000.0, temp.ScaleM)
}

func TestVegetationFetcherRequest(t *testing.T) {
	engine := &recordingEngine{
		values: map[string]map[string]float64{
			"COPERNICUS/S2_SR_HARMONIZED": {"nd": 0.58},
		},
	}
	fetcher := NewVegetationFetcher(engine)
	fetcher.now = fixedClock

	ndvi, err := fetcher.Fetch(context.Background(), testRegion(t))
	require.NoError(t, err)
	assert.InDelta(t, 0.58, ndvi, 1e-9)

	require.Len(t, engine.reduceReqs, 1)
	req := engine.reduceReqs[0]
	assert.Equal(t, 20.0, req.MaxCloudCoverPct)
	require.NotNil(t, req.NormalizedDifference)
	assert.Equal(t, "B8", req.NormalizedDifference.A)
	assert.Equal(t, "B4", req.NormalizedDifference.B)
	assert.Equal(t, 20.0, req.ScaleM)
}

func TestVegetationFetcherEmptyReduction(t *testing.T) {
	engine := &recordingEngine{
		values: map[string]map[string]float64{
			"COPERNICUS/S2_SR_HARMONIZED": {},
		},
	}
	fetcher := NewVegetationFetcher(engine)
	fetcher.now = fixedClock

	_, err := fetcher.Fetch(context.Background(), testRegion(t))
	require.ErrorIs(t, err, ErrUnavailable)
}
