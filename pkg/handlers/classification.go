package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/canopywatch/canopy-engine/pkg/models"
	"github.com/canopywatch/canopy-engine/pkg/services"
	"github.com/canopywatch/canopy-engine/pkg/tabular"
)

// ClassificationHandler serves the classification endpoints: single
// record, batch, and file upload. All three delegate to the same service
// path so validation and results are identical regardless of entry point.
type ClassificationHandler struct {
	svc       *services.PredictionService
	maxUpload int64
	logger    *zap.Logger
}

// NewClassificationHandler creates a new ClassificationHandler.
func NewClassificationHandler(svc *services.PredictionService, maxUpload int64, logger *zap.Logger) *ClassificationHandler {
	return &ClassificationHandler{svc: svc, maxUpload: maxUpload, logger: logger}
}

// RegisterRoutes registers the classification routes on the given mux.
func (h *ClassificationHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /classification/predict", h.Predict)
	mux.HandleFunc("POST /classification/predict/batch", h.PredictBatch)
	mux.HandleFunc("POST /classification/predict/file", h.PredictFile)
}

type predictRequest struct {
	Data models.Record `json:"data"`
}

type predictBatchRequest struct {
	Data []models.Record `json:"data"`
}

// Predict handles POST /classification/predict: one record in, one
// labeled prediction out.
func (h *ClassificationHandler) Predict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if len(req.Data) == 0 {
		_ = ErrorResponse(w, http.StatusBadRequest, "empty_data", "data must contain at least one feature")
		return
	}

	prediction, err := h.svc.PredictRecord(req.Data)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	payload := Envelope(map[string]any{
		"prediction": prediction,
	}, h.modelName())
	if err := WriteJSON(w, http.StatusOK, payload); err != nil {
		h.logger.Error("Failed to encode prediction response", zap.Error(err))
	}
}

// PredictBatch handles POST /classification/predict/batch: many records
// in, per-row predictions plus batch statistics and recommendations out.
func (h *ClassificationHandler) PredictBatch(w http.ResponseWriter, r *http.Request) {
	var req predictBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if len(req.Data) == 0 {
		_ = ErrorResponse(w, http.StatusBadRequest, "empty_data", "data must contain at least one record")
		return
	}

	batch, err := h.svc.PredictTable(models.NewTable(req.Data))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeBatch(w, batch, len(req.Data), "")
}

// PredictFile handles POST /classification/predict/file: a multipart
// upload parsed into a table and run through the batch path.
func (h *ClassificationHandler) PredictFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	file, header, err := r.FormFile("file")
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "missing_file", "multipart field 'file' is required")
		return
	}
	defer file.Close()

	if !tabular.Supported(header.Filename) {
		_ = ErrorResponse(w, http.StatusBadRequest, "unsupported_format", "only csv and txt files are supported")
		return
	}

	table, err := tabular.Parse(file, header.Filename)
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "parse_error", err.Error())
		return
	}
	if len(table.Rows) == 0 {
		_ = ErrorResponse(w, http.StatusBadRequest, "empty_file", "file contains no data rows")
		return
	}

	batch, err := h.svc.PredictTable(table)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeBatch(w, batch, len(table.Rows), header.Filename)
}

func (h *ClassificationHandler) writeBatch(w http.ResponseWriter, batch *services.ClassificationBatch, rows int, filename string) {
	payload := map[string]any{
		"predictions":     batch.Predictions,
		"statistics":      batch.Statistics,
		"recommendations": batch.Recommendations,
		"total_rows":      rows,
	}
	if filename != "" {
		payload["filename"] = filename
	}
	if err := WriteJSON(w, http.StatusOK, Envelope(payload, h.modelName())); err != nil {
		h.logger.Error("Failed to encode batch response", zap.Error(err))
	}
}

func (h *ClassificationHandler) writeServiceError(w http.ResponseWriter, err error) {
	h.logger.Warn("classification request failed", zap.Error(err))
	if werr := WriteError(w, err); werr != nil {
		h.logger.Error("Failed to encode error response", zap.Error(werr))
	}
}

func (h *ClassificationHandler) modelName() string {
	if h.svc.Ready() {
		return h.svc.Bundle().ModelName
	}
	return ""
}
