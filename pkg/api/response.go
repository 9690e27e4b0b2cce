package api

import (
	"encoding/json"
	"net/http"

	"architecture-risk-engine/pkg/logger"
)

// respondJSON writes a JSON response with the given status code. The body is
// encoded before the header goes out so an unencodable value becomes a 500.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if data == nil {
		w.WriteHeader(status)
		return
	}

	body, err := json.Marshal(data)
	if err != nil {
		logger.Error("Response encoding failed", err)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Internal Server Error"}` + "\n"))
		return
	}

	w.WriteHeader(status)
	w.Write(append(body, '\n'))
}

// respondError writes a structured error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondSimulationError is the traffic endpoints' error shape.
func respondSimulationError(w http.ResponseWriter, status int, errLabel, message string) {
	respondJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   errLabel,
		"message": message,
	})
}
