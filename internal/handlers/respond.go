// Package handlers exposes the search service over JSON HTTP endpoints.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"tagboard/internal/contextutil"
	"tagboard/internal/service"
)

// ErrorResponse represents an error response.
//
// swagger:model ErrorResponse
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes v with the given status code.
func writeJSON(ctx context.Context, w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error: message,
	})
}

// handleServiceError maps service errors to appropriate HTTP status codes and responses.
func handleServiceError(w http.ResponseWriter, ctx context.Context, err error, defaultMsg string) {
	logger := contextutil.LoggerFromContext(ctx)

	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		logger.WarnContext(ctx, "request rejected", "field", validationErr.Field)
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Validation error: %s", validationErr.Error()))
		return
	}

	// Check for wrapped errors
	if errors.Is(err, service.ErrInvalidInput) {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	if errors.Is(err, service.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Resource not found")
		return
	}

	logger.ErrorContext(ctx, "service error", "error", err)

	if errors.Is(err, service.ErrSearchFailed) {
		writeError(w, http.StatusServiceUnavailable, "Search temporarily unavailable")
		return
	}

	// Default to internal server error
	writeError(w, http.StatusInternalServerError, defaultMsg)
}

// allowMethod writes 405 and returns false unless r uses method.
func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	ctx := r.Context()
	contextutil.LoggerFromContext(ctx).WarnContext(ctx, "method not allowed", "method", r.Method)
	w.Header().Set("Allow", method)
	writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	return false
}

// intParam parses an optional integer query parameter. Missing or blank values yield def.
func intParam(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &service.ValidationError{Field: name, Message: "must be an integer"}
	}
	return n, nil
}

// listParam splits a comma-separated query parameter, dropping blank entries.
func listParam(r *http.Request, name string) []string {
	var out []string
	for _, part := range strings.Split(r.URL.Query().Get(name), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
