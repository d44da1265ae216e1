package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/spendtrail/spendtrail/internal/models"
)

// Response is the success envelope: {status, message, data}
type Response struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// ErrorResponse is the failure envelope: {status, message, errors[]}
type ErrorResponse struct {
	Status  int      `json:"status"`
	Message string   `json:"message"`
	Errors  []string `json:"errors"`
}

// WriteSuccess writes the success envelope with the given status code.
// A nil data renders as an empty array, matching the API's envelope shape.
func WriteSuccess(w http.ResponseWriter, statusCode int, message string, data any) {
	if data == nil {
		data = []any{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(Response{
		Status:  statusCode,
		Message: message,
		Data:    data,
	})
}

// WriteError writes the failure envelope with the given status code.
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Status:  statusCode,
		Message: message,
		Errors:  []string{},
	})
}

// Common error writers for consistency
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, message)
}

func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, message)
}

func WriteForbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, message)
}

func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, message)
}

func WriteConflict(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, message)
}

func WriteTooManyRequests(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusTooManyRequests, message)
}

func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, message)
}

// WriteFromError maps sentinel errors to their HTTP status. Unrecognized
// errors become a 500 without leaking internal detail to the caller.
func WriteFromError(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, models.ErrBadRequest):
		WriteBadRequest(w, message)
	case errors.Is(err, models.ErrUnauthorized):
		WriteUnauthorized(w, message)
	case errors.Is(err, models.ErrForbidden):
		WriteForbidden(w, message)
	case errors.Is(err, models.ErrNotFound), errors.Is(err, models.ErrTokenNotFound):
		WriteNotFound(w, message)
	case errors.Is(err, models.ErrConflict):
		WriteConflict(w, message)
	default:
		WriteInternalError(w, "Internal server error")
	}
}
