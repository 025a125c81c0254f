package handlers

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/canopywatch/canopy-engine/pkg/apperrors"
	"github.com/canopywatch/canopy-engine/pkg/models"
	"github.com/canopywatch/canopy-engine/pkg/services"
	"github.com/canopywatch/canopy-engine/pkg/tabular"
)

// DataHandler serves the data utility endpoints: exploratory analysis,
// contract validation of uploads, and result export.
type DataHandler struct {
	svc       *services.PredictionService
	maxUpload int64
	logger    *zap.Logger
}

// NewDataHandler creates a new DataHandler.
func NewDataHandler(svc *services.PredictionService, maxUpload int64, logger *zap.Logger) *DataHandler {
	return &DataHandler{svc: svc, maxUpload: maxUpload, logger: logger}
}

// RegisterRoutes registers the data utility routes on the given mux.
func (h *DataHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /analyze/data", h.Analyze)
	mux.HandleFunc("POST /validate/file", h.ValidateFile)
	mux.HandleFunc("POST /export/results", h.Export)
}

type analyzeRequest struct {
	Data []models.Record `json:"data"`
}

// Analyze handles POST /analyze/data: column-level summary of an
// arbitrary table, with contract validation when a model is loaded.
func (h *DataHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if len(req.Data) == 0 {
		_ = ErrorResponse(w, http.StatusBadRequest, "empty_data", "data must contain at least one record")
		return
	}

	analysis := h.svc.AnalyzeTable(models.NewTable(req.Data))
	payload := Envelope(map[string]any{
		"analysis": analysis,
	}, "")
	if err := WriteJSON(w, http.StatusOK, payload); err != nil {
		h.logger.Error("Failed to encode analysis response", zap.Error(err))
	}
}

// ValidateFile handles POST /validate/file: parses an upload and reports
// how it lines up against the loaded model's contract without predicting.
func (h *DataHandler) ValidateFile(w http.ResponseWriter, r *http.Request) {
	if !h.svc.Ready() {
		if werr := WriteError(w, apperrors.ErrModelNotLoaded); werr != nil {
			h.logger.Error("Failed to encode error response", zap.Error(werr))
		}
		return
	}

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

	validation := h.svc.ValidateTable(table)
	payload := Envelope(map[string]any{
		"filename":   header.Filename,
		"rows":       len(table.Rows),
		"columns":    len(table.Columns),
		"validation": validation,
	}, h.svc.Bundle().ModelName)
	if err := WriteJSON(w, http.StatusOK, payload); err != nil {
		h.logger.Error("Failed to encode validation response", zap.Error(err))
	}
}

type exportRequest struct {
	Format  string          `json:"format"`
	Results []models.Record `json:"results"`
}

// Export handles POST /export/results: returns the posted result rows as
// a downloadable csv or json attachment.
func (h *DataHandler) Export(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if len(req.Results) == 0 {
		_ = ErrorResponse(w, http.StatusBadRequest, "empty_data", "results must contain at least one row")
		return
	}

	switch strings.ToLower(req.Format) {
	case "", "csv":
		h.exportCSV(w, req.Results)
	case "json":
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="results.json"`)
		if err := json.NewEncoder(w).Encode(req.Results); err != nil {
			h.logger.Error("Failed to write results json", zap.Error(err))
		}
	default:
		_ = ErrorResponse(w, http.StatusBadRequest, "unsupported_format", "format must be csv or json")
	}
}

func (h *DataHandler) exportCSV(w http.ResponseWriter, rows []models.Record) {
	table := models.NewTable(rows)

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="results.csv"`)
	writer := csv.NewWriter(w)
	_ = writer.Write(table.Columns)
	record := make([]string, len(table.Columns))
	for _, row := range table.Rows {
		for i, col := range table.Columns {
			record[i] = cellString(row[col])
		}
		_ = writer.Write(record)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		h.logger.Error("Failed to write results csv", zap.Error(err))
	}
}

func cellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}
