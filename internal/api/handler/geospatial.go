package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/agrokarfi/agrokarfi/internal/api/models"
	"github.com/agrokarfi/agrokarfi/internal/api/response"
	"github.com/agrokarfi/agrokarfi/internal/survey"
	"github.com/agrokarfi/agrokarfi/pkg/geo"
)

// Surveyor aggregates environmental signals for a farm polygon.
type Surveyor interface {
	Survey(ctx context.Context, vertices []geo.Coordinate) (*survey.Report, error)
}

// GeospatialHandler handles polygon survey endpoints.
type GeospatialHandler struct {
	surveyor Surveyor
}

// NewGeospatialHandler creates a new GeospatialHandler.
func NewGeospatialHandler(surveyor Surveyor) *GeospatialHandler {
	return &GeospatialHandler{surveyor: surveyor}
}

// Calculate handles POST /calculate - the full geospatial report for one
// farm polygon. Geometry problems are client errors and are rejected
// before any provider is contacted.
func (h *GeospatialHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req models.CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	vertices, fieldErrs := parsePolygon(req.Polygon)
	if fieldErrs != nil {
		response.BadRequest(w, r, "invalid polygon", fieldErrs)
		return
	}

	report, err := h.surveyor.Survey(r.Context(), vertices)
	if err != nil {
		if errors.Is(err, geo.ErrTooFewVertices) || errors.Is(err, geo.ErrInvalidVertex) {
			response.BadRequest(w, r, err.Error(), []models.FieldError{
				{Field: "polygon", Message: err.Error(), Code: "invalid_geometry"},
			})
			return
		}
		response.InternalError(w, r, "Geospatial processing failed")
		return
	}

	response.JSON(w, r, http.StatusOK, models.CalculateResponse{
		Status:           "success",
		AreaSqM:          report.AreaSqM,
		PolygonBounds:    boundsPairs(report.PolygonBounds),
		ImageTileURL:     report.ImageTileURL,
		RainfallTotalMM:  report.RainfallTotalMM,
		AvgTempC:         report.AvgTempC,
		SoilPH:           report.SoilPH,
		NDVIMean:         report.NDVIMean,
		SoilOrgCarbonPct: report.SoilOrgCarbonPct,
		StateName:        report.StateName,
	})
}

// parsePolygon converts the wire [lat, lon] pairs to coordinates. Shape
// problems are reported per vertex; range and count checks belong to the
// geometry layer.
func parsePolygon(pairs [][]float64) ([]geo.Coordinate, []models.FieldError) {
	if len(pairs) < 3 {
		return nil, []models.FieldError{
			{Field: "polygon", Message: "Polygon must have at least 3 coordinates.", Code: "too_few_vertices"},
		}
	}

	vertices := make([]geo.Coordinate, 0, len(pairs))
	for i, pair := range pairs {
		if len(pair) != 2 {
			return nil, []models.FieldError{
				{Field: "polygon", Message: "each vertex must be a [lat, lon] pair", Code: "invalid_vertex"},
			}
		}
		vertices = append(vertices, geo.Coordinate{Lat: pairs[i][0], Lon: pairs[i][1]})
	}

	return vertices, nil
}

// boundsPairs echoes coordinates back as wire [lat, lon] pairs.
func boundsPairs(vertices []geo.Coordinate) [][]float64 {
	pairs := make([][]float64, 0, len(vertices))
	for _, v := range vertices {
		pairs = append(pairs, []float64{v.Lat, v.Lon})
	}
	return pairs
}
