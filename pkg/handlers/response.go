package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/canopywatch/canopy-engine/pkg/apperrors"
)

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// Envelope stamps the shared response metadata onto a payload: the success
// flag, the model that served the request, an RFC 3339 timestamp, and a
// request id for log correlation. Handlers build their payload map and
// wrap it on the way out.
func Envelope(payload map[string]any, modelUsed string) map[string]any {
	payload["success"] = true
	if modelUsed != "" {
		payload["model_used"] = modelUsed
	}
	payload["timestamp"] = time.Now().UTC().Format(time.RFC3339)
	payload["request_id"] = uuid.NewString()
	return payload
}

// ErrorResponse writes a JSON error response and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(map[string]any{
		"success":    false,
		"error":      errorCode,
		"message":    message,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"request_id": uuid.NewString(),
	})
}

// WriteError maps a service error onto HTTP. Validation failures are the
// caller's to fix and come back as 400 with the offending columns or
// values attached; a missing model is 503; everything else is 500.
func WriteError(w http.ResponseWriter, err error) error {
	payload := map[string]any{
		"success":    false,
		"message":    err.Error(),
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"request_id": uuid.NewString(),
	}

	status := http.StatusInternalServerError
	code := "internal_error"

	switch {
	case errors.Is(err, apperrors.ErrModelNotLoaded):
		status, code = http.StatusServiceUnavailable, "model_not_loaded"
	case errors.Is(err, apperrors.ErrContractMismatch):
		status, code = http.StatusBadRequest, "contract_mismatch"
		var cm *apperrors.ContractMismatchError
		if errors.As(err, &cm) {
			payload["missing_features"] = cm.MissingFeatures
			payload["extra_features"] = cm.ExtraFeatures
		}
	case errors.Is(err, apperrors.ErrInvalidDataType):
		status, code = http.StatusBadRequest, "invalid_data_type"
		var idt *apperrors.InvalidDataTypeError
		if errors.As(err, &idt) {
			payload["invalid_columns"] = idt.Columns
		}
	case errors.Is(err, apperrors.ErrMissingValues):
		status, code = http.StatusBadRequest, "missing_values"
		var mv *apperrors.MissingValuesError
		if errors.As(err, &mv) {
			payload["columns"] = mv.Columns
		}
	case errors.Is(err, apperrors.ErrInvalidYearsAhead):
		status, code = http.StatusBadRequest, "invalid_years_ahead"
	case apperrors.IsValidation(err):
		status, code = http.StatusBadRequest, "validation_error"
	}

	payload["error"] = code
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(payload)
}
