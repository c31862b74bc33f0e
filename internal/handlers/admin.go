package handlers

import (
	"net/http"

	"tagboard/internal/contextutil"
	"tagboard/internal/service"
	"tagboard/internal/storage"
)

// AdminResponse represents the response from an admin action.
type AdminResponse struct {
	Message string                  `json:"message"`
	Status  string                  `json:"status"`
	Stats   *storage.RecomputeStats `json:"stats,omitempty"`
}

// InvalidateHandler handles HTTP requests for dropping every cache tier.
type InvalidateHandler struct {
	searchService service.SearchService
}

// NewInvalidateHandler creates a new InvalidateHandler.
func NewInvalidateHandler(searchService service.SearchService) *InvalidateHandler {
	return &InvalidateHandler{
		searchService: searchService,
	}
}

// ServeHTTP handles HTTP requests for cache invalidation.
func (h *InvalidateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "cache invalidation triggered via API")
	h.searchService.InvalidateAll(ctx)

	writeJSON(ctx, w, http.StatusOK, AdminResponse{
		Message: "All caches invalidated.",
		Status:  "ok",
	})
}

// RecomputeHandler handles HTTP requests for refreshing tag post counts.
type RecomputeHandler struct {
	searchService service.SearchService
}

// NewRecomputeHandler creates a new RecomputeHandler.
func NewRecomputeHandler(searchService service.SearchService) *RecomputeHandler {
	return &RecomputeHandler{
		searchService: searchService,
	}
}

// ServeHTTP handles HTTP requests for tag count recomputation. The request
// blocks until the counts are written and the caches dropped.
func (h *RecomputeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "tag count recompute triggered via API")
	stats, err := h.searchService.Recompute(ctx)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to recompute tag counts")
		return
	}

	writeJSON(ctx, w, http.StatusOK, AdminResponse{
		Message: "Tag counts recomputed and caches invalidated.",
		Status:  "ok",
		Stats:   &stats,
	})
}
