// Package api holds the JSON response envelope and domain error mapping.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/portalworks/docportal/internal/domain"
)

// SuccessResponse wraps successful API responses.
type SuccessResponse struct {
	Data interface{} `json:"data"`
}

// ErrorResponse carries a single error message.
type ErrorResponse struct {
	Error string `json:"error"`
}

// JSON writes data with the given status code.
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func Success(w http.ResponseWriter, status int, data interface{}) {
	JSON(w, status, SuccessResponse{Data: data})
}

func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorResponse{Error: message})
}

// statusByCode maps domain error codes to HTTP statuses. Configuration errors
// are the caller's to fix (missing provider keys, no seed data), so they map
// to 400; precondition and persistence failures are server-side.
var statusByCode = map[string]int{
	domain.ErrCodeValidation:    http.StatusBadRequest,
	domain.ErrCodeConfiguration: http.StatusBadRequest,
	domain.ErrCodeUnauthorized:  http.StatusUnauthorized,
	domain.ErrCodeNotFound:      http.StatusNotFound,
	domain.ErrCodePrecondition:  http.StatusInternalServerError,
	domain.ErrCodePersistence:   http.StatusInternalServerError,
	domain.ErrCodeInternalError: http.StatusInternalServerError,
}

// DomainErrorToHTTP resolves the HTTP status for an error anywhere in the
// chain; unknown errors are 500.
func DomainErrorToHTTP(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var derr *domain.DomainError
	if !errors.As(err, &derr) {
		return http.StatusInternalServerError
	}
	if status, ok := statusByCode[derr.Code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// HandleError writes the error with its mapped status.
func HandleError(w http.ResponseWriter, err error) {
	Error(w, DomainErrorToHTTP(err), err.Error())
}
