package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/agrokarfi/agrokarfi/internal/api/models"
	"github.com/agrokarfi/agrokarfi/internal/api/response"
	"github.com/agrokarfi/agrokarfi/internal/predict"
)

// Predictor recommends a crop for one set of farm features.
type Predictor interface {
	Predict(ctx context.Context, features predict.Features) (string, error)
}

// PredictHandler handles crop prediction endpoints.
type PredictHandler struct {
	predictor Predictor
}

// NewPredictHandler creates a new PredictHandler.
func NewPredictHandler(predictor Predictor) *PredictHandler {
	return &PredictHandler{predictor: predictor}
}

// Predict handles POST /predict - crop recommendation from environmental
// signals and farm metadata.
func (h *PredictHandler) Predict(w http.ResponseWriter, r *http.Request) {
	var req models.PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if req.State == "" {
		response.BadRequest(w, r, "state is required", []models.FieldError{
			{Field: "state", Message: "state is required", Code: "required"},
		})
		return
	}

	crop, err := h.predictor.Predict(r.Context(), predict.Features{
		State:                 req.State,
		RainfallTotalMM:       req.RainfallTotalMM,
		AvgTempC:              req.AvgTempC,
		NDVIMean:              req.NDVIMean,
		SoilPH:                req.SoilPH,
		SoilOrgCarbonPct:      req.SoilOrgCarbonPct,
		FertilizerRateKgPerHa: req.FertilizerRateKgPerHa,
		PesticideRateLPerHa:   req.PesticideRateLPerHa,
		FarmSizeHa:            req.FarmSizeHa,
		IrrigatedAreaHa:       req.IrrigatedAreaHa,
	})
	if err != nil {
		if errors.Is(err, predict.ErrUnknownCategory) {
			response.BadRequest(w, r, err.Error(), []models.FieldError{
				{Field: "state", Message: err.Error(), Code: "unknown_category"},
			})
			return
		}
		response.InternalError(w, r, "Prediction failed")
		return
	}

	response.JSON(w, r, http.StatusOK, models.PredictResponse{
		Status:        "success",
		PredictedCrop: crop,
	})
}
