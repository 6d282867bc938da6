// internal/api/middleware/respond.go
package middleware

import (
	"encoding/json"
	"net/http"
)

// failure is the envelope used by middleware rejections, matching the user API's error shape.
type failure struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeFailure(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(failure{Success: false, Message: message})
}
