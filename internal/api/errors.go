package api

import (
	"encoding/json"
	"net/http"
)

// ErrorEnvelope is the body of every non-2xx dashboard response.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// APIError pairs a stable machine-readable code (VALIDATION_FAILED,
// INVALID_STATE_TRANSITION, ...) with an operator-facing message.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteError writes the error envelope with the given status.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(ErrorEnvelope{
		Error: APIError{Code: code, Message: message},
	})
}
