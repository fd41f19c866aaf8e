package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ErrorDetails is the error body for not-found, upstream and internal errors
type ErrorDetails struct {
	Timestamp string `json:"timestamp"`
	Message   string `json:"message"`
	Details   string `json:"details"`
}

// ValidationErrorResponse is the error body for failed request validation,
// carrying one message per offending field
type ValidationErrorResponse struct {
	Timestamp string            `json:"timestamp"`
	Status    int               `json:"status"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors"`
}

// RespondWithError sends an ErrorDetails body with the request URI as details
func RespondWithError(w http.ResponseWriter, r *http.Request, statusCode int, message string) {
	response := ErrorDetails{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Message:   message,
		Details:   "uri=" + r.URL.Path,
	}

	RespondWithJSON(w, statusCode, response)
}

// RespondWithValidationErrors sends a 400 with per-field messages
func RespondWithValidationErrors(w http.ResponseWriter, fieldErrors map[string]string) {
	response := ValidationErrorResponse{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Status:    http.StatusBadRequest,
		Message:   "validation failed",
		Errors:    fieldErrors,
	}

	RespondWithJSON(w, http.StatusBadRequest, response)
}

// ErrorHandlingMiddleware catches panics and converts them to 500 errors
func ErrorHandlingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("Panic recovered",
						zap.Any("error", err),
						zap.String("path", r.URL.Path),
						zap.String("method", r.Method),
					)

					RespondWithError(w, r, http.StatusInternalServerError, "internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// RespondWithJSON sends a JSON response
func RespondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}
