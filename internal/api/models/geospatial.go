package models

// CalculateRequest is the body of POST /calculate.
type CalculateRequest struct {
	// Polygon is an ordered list of [lat, lon] vertices.
	Polygon [][]float64 `json:"polygon"`
}

// CalculateResponse is the aggregated geospatial report for one polygon.
// Field names are part of the wire contract consumed by the dashboard;
// soil_pH keeps its historical capitalization.
type CalculateResponse struct {
	Status           string      `json:"status"`
	AreaSqM          float64     `json:"area_sq_m"`
	PolygonBounds    [][]float64 `json:"polygon_bounds"`
	ImageTileURL     string      `json:"image_tile_url"`
	RainfallTotalMM  float64     `json:"rainfall_total_mm"`
	AvgTempC         float64     `json:"avg_temp_c"`
	SoilPH           float64     `json:"soil_pH"`
	NDVIMean         float64     `json:"ndvi_mean"`
	SoilOrgCarbonPct float64     `json:"soil_org_carbon_pct"`
	StateName        string      `json:"state_name"`
}

// PredictRequest is the body of POST /predict: the farm's environmental
// signals plus farmer-supplied metadata.
type PredictRequest struct {
	State                 string  `json:"state"`
	RainfallTotalMM       float64 `json:"rainfall_total_mm"`
	AvgTempC              float64 `json:"avg_temp_c"`
	NDVIMean              float64 `json:"ndvi_mean"`
	SoilPH                float64 `json:"soil_ph"`
	SoilOrgCarbonPct      float64 `json:"soil_org_carbon_pct"`
	FertilizerRateKgPerHa float64 `json:"fertilizer_rate_kg_per_ha"`
	PesticideRateLPerHa   float64 `json:"pesticide_rate_l_per_ha"`
	FarmSizeHa            float64 `json:"farm_size_ha"`
	IrrigatedAreaHa       float64 `json:"irrigated_area_ha"`
}

// PredictResponse is the crop recommendation.
type PredictResponse struct {
	Status        string `json:"status"`
	PredictedCrop string `json:"predicted_crop"`
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	// Message is the farmer's question.
	Message string `json:"message"`

	// Info is the farm profile shown to the advisor.
	Info map[string]any `json:"info"`

	// SessionID keys the conversation transcript (optional).
	SessionID string `json:"session_id,omitempty"`
}

// ChatResponse carries the advisor's reply. Degraded states answer in the
// body text, never with an error status.
type ChatResponse struct {
	Response string `json:"response"`
}
