package handlers

import (
	"context"
	"net/http"
	"time"

	"tagboard/internal/contextutil"
	"tagboard/internal/service"
)

// HealthHandler handles HTTP requests for health checks.
type HealthHandler struct {
	searchService      service.SearchService
	healthCheckTimeout time.Duration
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(searchService service.SearchService) *HealthHandler {
	return &HealthHandler{
		searchService:      searchService,
		healthCheckTimeout: 5 * time.Second,
	}
}

// HealthResponse represents the health check response.
//
// swagger:model HealthResponse
type HealthResponse struct {
	// Overall health status: "ok" or "unavailable"
	Status string `json:"status"`

	// Timestamp of the health check
	Timestamp string `json:"timestamp"`

	// Number of entries held by each cache tier
	Caches map[string]int `json:"caches"`
}

// ServeHTTP handles HTTP requests for health checks.
//
// Returns 200 OK if the store answers, 503 Service Unavailable otherwise.
//
// swagger:route GET /api/health healthCheck
//
// # Health check endpoint
//
// ---
// produces:
// - application/json
// responses:
//
//	'200':
//	  description: Store reachable
//	  schema:
//	    "$ref": "#/definitions/HealthResponse"
//	'503':
//	  description: Store unreachable
//	  schema:
//	    "$ref": "#/definitions/HealthResponse"
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	// Create context with timeout for health checks
	checkCtx, cancel := context.WithTimeout(ctx, h.healthCheckTimeout)
	defer cancel()

	httpStatus := http.StatusOK
	health, err := h.searchService.Health(checkCtx)
	if err != nil {
		logger.WarnContext(ctx, "health check failed", "error", err)
		httpStatus = http.StatusServiceUnavailable
		if health.Status == "" {
			health.Status = "unavailable"
		}
	}

	writeJSON(ctx, w, httpStatus, HealthResponse{
		Status:    health.Status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Caches:    health.Caches,
	})
}
