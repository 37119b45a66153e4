package utils

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/gilchrisn/linkage-graph-service/pkg/models"
)

// APIResponse is the envelope of every JSON response
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// WriteSuccessResponse writes a successful JSON response
func WriteSuccessResponse(w http.ResponseWriter, message string, data interface{}) {
	response := APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	}

	writeJSONResponse(w, http.StatusOK, response)
}

// WriteErrorResponse writes an error JSON response
func WriteErrorResponse(w http.ResponseWriter, statusCode int, message string, err error) {
	response := APIResponse{
		Success: false,
		Message: message,
	}

	if err != nil {
		response.Error = err.Error()
	}

	writeJSONResponse(w, statusCode, response)
}

// WriteValidationErrorResponse writes a 400 listing every rejected parameter
func WriteValidationErrorResponse(w http.ResponseWriter, message string, errs models.ValidationErrors) {
	response := APIResponse{
		Success: false,
		Message: message,
		Error:   errs.Error(),
		Data:    map[string]interface{}{"validation_errors": errs},
	}

	writeJSONResponse(w, http.StatusBadRequest, response)
}

// writeJSONResponse encodes the body before touching the status line so an
// encoding failure can still be reported as a 500
func writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		log.Error().
			Err(err).
			Int("status_code", statusCode).
			Msg("Failed to encode JSON response")

		statusCode = http.StatusInternalServerError
		body = []byte(`{"success":false,"message":"Internal server error","error":"JSON encoding failed"}`)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(body)
	w.Write([]byte("\n"))
}

// ValidateContentType checks if request has correct content type
func ValidateContentType(r *http.Request, expectedType string) bool {
	contentType := r.Header.Get("Content-Type")
	return strings.HasPrefix(contentType, expectedType)
}

// GetClientIP extracts the real client IP from request
func GetClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first, _, _ := strings.Cut(xff, ","); strings.TrimSpace(first) != "" {
			return strings.TrimSpace(first)
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	if ip, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return ip
	}

	return r.RemoteAddr
}
