package api

import (
	"encoding/json"
	"net/http"

	"github.com/ibor-valuation/internal/errors"
	"github.com/ibor-valuation/internal/logging"
	"github.com/ibor-valuation/internal/types"
)

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error types.ServiceError `json:"error"`
}

// Common error codes
const (
	ErrCodeInvalidInput     = "INVALID_INPUT"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeUnknownReference = "UNKNOWN_REFERENCE"
	ErrCodeInternalError    = "INTERNAL_ERROR"
)

// respondError sends an error response.
func respondError(w http.ResponseWriter, statusCode int, code, message string, details map[string]interface{}) {
	respondJSON(w, statusCode, ErrorResponse{
		Error: types.ServiceError{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// respondServiceError maps err through its category. Server-side failures
// are logged with the request's logger and their cause is not echoed back.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	catErr := errors.Categorize(err)
	if errors.IsSystemError(catErr) {
		logging.FromContext(r.Context()).WithError(err).
			WithField("category", string(catErr.Category)).
			Error("Request failed")
		respondError(w, catErr.StatusCode, ErrCodeInternalError, "An internal error occurred", nil)
		return
	}
	respondJSON(w, catErr.StatusCode, ErrorResponse{Error: *catErr.ToServiceError()})
}
