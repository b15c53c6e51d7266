// Package geo provides geometry utilities for user-drawn farm polygons:
// coordinate-order conversion, spherical area, and metric bounding-box
// buffering for thumbnail rendering.
package geo

import (
	"errors"
	"fmt"
	"math"

	"github.com/twpayne/go-geom"
)

// earthRadiusM is the WGS84 mean earth radius in meters.
const earthRadiusM = 6371008.8

// Buffer thresholds for imagery bounds. Very small polygons otherwise yield
// near-empty image crops.
const (
	smallAreaSqM  = 10_000
	mediumAreaSqM = 100_000

	smallBufferM  = 800
	mediumBufferM = 500
)

// Geometry errors. These indicate malformed caller input and must surface as
// client errors, never as fallback-eligible conditions.
var (
	ErrTooFewVertices = errors.New("polygon must have at least 3 vertices")
	ErrInvalidVertex  = errors.New("vertex out of coordinate range")
)

// Coordinate is a geographic point in (latitude, longitude) order, the
// convention used by callers drawing on a map.
type Coordinate struct {
	Lat float64
	Lon float64
}

// Region is a validated polygon in the query engine's (longitude, latitude)
// convention, with its derived area. A Region belongs to a single request and
// is never shared.
type Region struct {
	polygon  *geom.Polygon
	vertices []Coordinate
	areaSqM  float64
}

// NewRegion builds a Region from ordered (lat, lon) vertices. The ring is
// reversed to (lon, lat) order and closed. Returns ErrTooFewVertices or
// ErrInvalidVertex on malformed input.
func NewRegion(vertices []Coordinate) (*Region, error) {
	if len(vertices) < 3 {
		return nil, ErrTooFewVertices
	}

	for _, v := range vertices {
		if v.Lat < -90 || v.Lat > 90 || v.Lon < -180 || v.Lon > 180 {
			return nil, fmt.Errorf("%w: (%f, %f)", ErrInvalidVertex, v.Lat, v.Lon)
		}
	}

	ring := make([]geom.Coord, 0, len(vertices)+1)
	for _, v := range vertices {
		ring = append(ring, geom.Coord{v.Lon, v.Lat})
	}
	// Close the ring if the caller left it open.
	first := vertices[0]
	last := vertices[len(vertices)-1]
	if first != last {
		ring = append(ring, geom.Coord{first.Lon, first.Lat})
	}

	polygon := geom.NewPolygon(geom.XY)
	if _, err := polygon.SetCoords([][]geom.Coord{ring}); err != nil {
		return nil, fmt.Errorf("construct polygon: %w", err)
	}
	polygon.SetSRID(4326)

	kept := make([]Coordinate, len(vertices))
	copy(kept, vertices)

	return &Region{
		polygon:  polygon,
		vertices: kept,
		areaSqM:  sphericalRingArea(ring),
	}, nil
}

// Polygon returns the closed ring in (lon, lat) order.
func (r *Region) Polygon() *geom.Polygon {
	return r.polygon
}

// Ring returns the closed ring as [lon, lat] pairs, the wire shape the
// query engine expects.
func (r *Region) Ring() [][]float64 {
	coords := r.polygon.Coords()[0]
	ring := make([][]float64, len(coords))
	for i, c := range coords {
		ring[i] = []float64{c[0], c[1]}
	}
	return ring
}

// Vertices returns the original (lat, lon) vertices as supplied by the caller.
func (r *Region) Vertices() []Coordinate {
	return r.vertices
}

// AreaSqM returns the polygon's area in square meters.
func (r *Region) AreaSqM() float64 {
	return r.areaSqM
}

// RepresentativePoint returns the point used for point-based fallback
// queries: the first vertex.
func (r *Region) RepresentativePoint() Coordinate {
	return r.vertices[0]
}

// Bounds returns the polygon's own bounding box.
func (r *Region) Bounds() *geom.Bounds {
	return r.polygon.Bounds()
}

// ImageryBounds returns the bounding box used for thumbnail rendering:
// buffered by 800 m for polygons under 10 000 m², 500 m under 100 000 m²,
// otherwise the polygon's own bounds.
func (r *Region) ImageryBounds() *geom.Bounds {
	var bufferM float64
	switch {
	case r.areaSqM < smallAreaSqM:
		bufferM = smallBufferM
	case r.areaSqM < mediumAreaSqM:
		bufferM = mediumBufferM
	default:
		return r.Bounds()
	}

	bounds := r.Bounds()
	midLat := (bounds.Min(1) + bounds.Max(1)) / 2

	dLat := metersToLatDegrees(bufferM)
	dLon := metersToLonDegrees(bufferM, midLat)

	buffered := geom.NewBounds(geom.XY)
	buffered.Set(
		bounds.Min(0)-dLon, bounds.Min(1)-dLat,
		bounds.Max(0)+dLon, bounds.Max(1)+dLat,
	)
	return buffered
}

// LatLonToLonLat swaps each [lat, lon] pair to [lon, lat], the query
// engine's convention. The swap is its own inverse.
func LatLonToLonLat(pairs [][]float64) [][]float64 {
	swapped := make([][]float64, len(pairs))
	for i, p := range pairs {
		swapped[i] = []float64{p[1], p[0]}
	}
	return swapped
}

// LonLatToLatLon swaps each [lon, lat] pair back to [lat, lon].
func LonLatToLatLon(pairs [][]float64) [][]float64 {
	return LatLonToLonLat(pairs)
}

// sphericalRingArea computes the area of a closed (lon, lat) ring on the
// WGS84 sphere in square meters, via the spherical shoelace formula.
func sphericalRingArea(ring []geom.Coord) float64 {
	if len(ring) < 4 {
		return 0
	}

	total := 0.0
	for i := 0; i < len(ring)-1; i++ {
		lon1 := toRadians(ring[i][0])
		lat1 := toRadians(ring[i][1])
		lon2 := toRadians(ring[i+1][0])
		lat2 := toRadians(ring[i+1][1])

		total += (lon2 - lon1) * (2 + math.Sin(lat1) + math.Sin(lat2))
	}

	return math.Abs(total * earthRadiusM * earthRadiusM / 2)
}

func metersToLatDegrees(m float64) float64 {
	return m / 111_320
}

func metersToLonDegrees(m, atLatDegrees float64) float64 {
	cos := math.Cos(toRadians(atLatDegrees))
	if cos < 0.01 {
		cos = 0.01
	}
	return m / (111_320 * cos)
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
