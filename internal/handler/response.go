package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ErrorResponse is the body of every non-2xx response. Message is a single
// string, or a list of field messages for validation failures.
type ErrorResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    any    `json:"message"`
	Error      string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON", "error", err)
	}
}

// writeError writes an error body whose error field is the status text
func writeError(w http.ResponseWriter, message any, statusCode int) {
	writeJSON(w, ErrorResponse{
		StatusCode: statusCode,
		Message:    message,
		Error:      http.StatusText(statusCode),
	}, statusCode)
}

// writeBareError writes an error body carrying only the status text
func writeBareError(w http.ResponseWriter, statusCode int) {
	writeJSON(w, ErrorResponse{
		StatusCode: statusCode,
		Message:    http.StatusText(statusCode),
	}, statusCode)
}
