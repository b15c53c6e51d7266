// Package signal resolves the four satellite-derived environmental signals
// (imagery, soil chemistry, climatology, vegetation index) through a
// three-tier cascading fallback: primary engine dataset, secondary REST
// provider, static default.
package signal

import "errors"

// ErrUnavailable marks a signal the current tier could not produce: an
// empty collection, a missing band, or a reduction with no value. It is
// distinct from a valid-but-extreme value, which is always accepted.
var ErrUnavailable = errors.New("signal unavailable")

// Source identifies which fallback tier produced a resolved value.
type Source string

const (
	SourcePrimary   Source = "primary-dataset"
	SourceSecondary Source = "secondary-dataset"
	SourceDefault   Source = "default"
)

// SoilSample holds topsoil (0-5 cm) chemistry, unscaled.
type SoilSample struct {
	// PH is soil pH in water, 0-14 nominal.
	PH float64

	// OrganicCarbonPct is soil organic carbon in percent.
	OrganicCarbonPct float64
}

// ClimateNormals holds long-term climate averages over the polygon.
type ClimateNormals struct {
	// RainfallMMPerYear is the average annual precipitation total.
	RainfallMMPerYear float64

	// MeanTempC is the long-term mean 2m air temperature in Celsius.
	MeanTempC float64
}

// Static defaults, the third fallback tier. Domain-appropriate values for
// Northern Nigerian farmland.
var (
	DefaultSoil = SoilSample{PH: 6.5, OrganicCarbonPct: 1.2}

	DefaultClimate = ClimateNormals{RainfallMMPerYear: 1200, MeanTempC: 27.0}

	// DefaultNDVI is a typical vegetative index value.
	DefaultNDVI = 0.45

	// DefaultImageURL is the placeholder shown when no thumbnail could
	// be rendered.
	DefaultImageURL = "https://via.placeholder.com/400x300.png?text=No+Satellite+Image"
)
