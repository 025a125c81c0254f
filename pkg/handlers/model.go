package handlers

import (
	"encoding/csv"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/canopywatch/canopy-engine/pkg/apperrors"
	"github.com/canopywatch/canopy-engine/pkg/services"
)

// ModelHandler serves model metadata and the manual-entry template.
type ModelHandler struct {
	prediction *services.PredictionService
	forecast   *services.ForecastService
	logger     *zap.Logger
}

// NewModelHandler creates a new ModelHandler.
func NewModelHandler(prediction *services.PredictionService, forecast *services.ForecastService, logger *zap.Logger) *ModelHandler {
	return &ModelHandler{prediction: prediction, forecast: forecast, logger: logger}
}

// RegisterRoutes registers the model metadata routes on the given mux.
func (h *ModelHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /models/info", h.Info)
	mux.HandleFunc("GET /model/template", h.Template)
	mux.HandleFunc("GET /model/template/download", h.TemplateDownload)
}

// Info handles GET /models/info: the loaded classification bundle's shape
// and the active forecast configuration.
func (h *ModelHandler) Info(w http.ResponseWriter, r *http.Request) {
	cfg := h.forecast.Config()
	payload := map[string]any{
		"classification_loaded": h.prediction.Ready(),
		"forecast": map[string]any{
			"order": []int{cfg.Order.P, cfg.Order.D, cfg.Order.Q},
			"rmse":  cfg.RMSE,
			"mae":   cfg.MAE,
		},
	}
	if h.prediction.Ready() {
		bundle := h.prediction.Bundle()
		payload["classification"] = map[string]any{
			"model_name":        bundle.ModelName,
			"required_features": bundle.RequiredFeatures,
			"selected_features": bundle.SelectedFeatures,
			"classes":           bundle.Codec.Classes,
		}
	}

	if err := WriteJSON(w, http.StatusOK, Envelope(payload, "")); err != nil {
		h.logger.Error("Failed to encode model info response", zap.Error(err))
	}
}

// Template handles GET /model/template: one zero-valued row covering
// every required feature.
func (h *ModelHandler) Template(w http.ResponseWriter, r *http.Request) {
	template, err := h.prediction.Template()
	if err != nil {
		if werr := WriteError(w, err); werr != nil {
			h.logger.Error("Failed to encode error response", zap.Error(werr))
		}
		return
	}

	payload := Envelope(map[string]any{
		"template": template,
	}, h.prediction.Bundle().ModelName)
	if err := WriteJSON(w, http.StatusOK, payload); err != nil {
		h.logger.Error("Failed to encode template response", zap.Error(err))
	}
}

// TemplateDownload handles GET /model/template/download: the same
// template as a CSV attachment, one header row and one zero row.
func (h *ModelHandler) TemplateDownload(w http.ResponseWriter, r *http.Request) {
	if !h.prediction.Ready() {
		if werr := WriteError(w, apperrors.ErrModelNotLoaded); werr != nil {
			h.logger.Error("Failed to encode error response", zap.Error(werr))
		}
		return
	}

	features := h.prediction.Bundle().RequiredFeatures
	zeros := make([]string, len(features))
	for i := range zeros {
		zeros[i] = strconv.FormatFloat(0, 'f', 1, 64)
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="prediction_template.csv"`)
	writer := csv.NewWriter(w)
	_ = writer.Write(features)
	_ = writer.Write(zeros)
	writer.Flush()
	if err := writer.Error(); err != nil {
		h.logger.Error("Failed to write template csv", zap.Error(err))
	}
}
