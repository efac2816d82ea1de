package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/mpavlik/tillbook/internal/adapter/http/dto"
	"github.com/mpavlik/tillbook/internal/domain"
)

// UserIDHeader carries the acting user reference. User management lives
// outside this service; the header is an opaque numeric id kept for audit.
const UserIDHeader = "X-User-ID"

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrEntryNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSaleNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrEntryAlreadyDeleted):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidDescription):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAmountTooLarge):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

// parseIDParam parses a numeric path parameter.
func parseIDParam(value string) (int64, error) {
	return strconv.ParseInt(value, 10, 64)
}

// actingUser extracts the optional acting user reference from the request.
func actingUser(r *http.Request) *int64 {
	val := r.Header.Get(UserIDHeader)
	if val == "" {
		return nil
	}

	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return nil
	}

	return &id
}
