// Package api provides standardized helper functions for HTTP API responses.
package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// Success sends data as JSON with the given status. The body is encoded
// before the status is written, so a value that cannot be encoded becomes a
// 500 instead of a success with an empty body.
func Success(w http.ResponseWriter, statusCode int, data interface{}) {
	if data == nil {
		w.WriteHeader(statusCode)
		return
	}

	body, err := json.Marshal(data)
	if err != nil {
		zap.L().Error("failed to encode response body", zap.Int("status", statusCode), zap.Error(err))
		Error(w, http.StatusInternalServerError, "An internal error occurred")
		return
	}
	writeJSON(w, statusCode, body)
}

// Error sends {"error": message} with the given status.
func Error(w http.ResponseWriter, statusCode int, message string) {
	body, _ := json.Marshal(map[string]string{"error": message})
	writeJSON(w, statusCode, body)
}

func writeJSON(w http.ResponseWriter, statusCode int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(append(body, '\n'))
}
