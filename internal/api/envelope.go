package api

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// errorResponse is the shared error envelope. ErrorCode carries the HTTP
// status code as a string, matching what API clients already parse.
type errorResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	ErrorCode string `json:"error_code"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{
		Success:   false,
		Message:   message,
		ErrorCode: strconv.Itoa(status),
	})
}
