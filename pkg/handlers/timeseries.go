package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/canopywatch/canopy-engine/pkg/models"
	"github.com/canopywatch/canopy-engine/pkg/services"
)

// TimeseriesHandler serves the forecasting endpoint. A batch request is
// rejected as a whole only when the horizon is invalid; per-record
// failures come back inside the affected record's result slot.
type TimeseriesHandler struct {
	svc    *services.ForecastService
	logger *zap.Logger
}

// NewTimeseriesHandler creates a new TimeseriesHandler.
func NewTimeseriesHandler(svc *services.ForecastService, logger *zap.Logger) *TimeseriesHandler {
	return &TimeseriesHandler{svc: svc, logger: logger}
}

// RegisterRoutes registers the timeseries routes on the given mux.
func (h *TimeseriesHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /timeseries/predict", h.Predict)
}

type timeseriesRequest struct {
	Data       []models.Record `json:"data"`
	YearsAhead *int            `json:"years_ahead"`
}

// Predict handles POST /timeseries/predict. years_ahead defaults to 1
// when omitted.
func (h *TimeseriesHandler) Predict(w http.ResponseWriter, r *http.Request) {
	var req timeseriesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if len(req.Data) == 0 {
		_ = ErrorResponse(w, http.StatusBadRequest, "empty_data", "data must contain at least one record")
		return
	}

	yearsAhead := 1
	if req.YearsAhead != nil {
		yearsAhead = *req.YearsAhead
	}

	batch, err := h.svc.ForecastRecords(r.Context(), req.Data, yearsAhead)
	if err != nil {
		h.logger.Warn("forecast request failed", zap.Error(err))
		if werr := WriteError(w, err); werr != nil {
			h.logger.Error("Failed to encode error response", zap.Error(werr))
		}
		return
	}

	payload := Envelope(map[string]any{
		"results":         batch.Results,
		"statistics":      batch.Statistics,
		"recommendations": batch.Recommendations,
		"years_ahead":     yearsAhead,
	}, "arima")
	if err := WriteJSON(w, http.StatusOK, payload); err != nil {
		h.logger.Error("Failed to encode forecast response", zap.Error(err))
	}
}
