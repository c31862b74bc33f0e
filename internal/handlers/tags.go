package handlers

import (
	"net/http"
	"strings"

	"tagboard/internal/search"
	"tagboard/internal/service"
	"tagboard/internal/storage"
)

// TagTreeHandler handles HTTP requests for progressive tag narrowing.
type TagTreeHandler struct {
	searchService service.SearchService
}

// NewTagTreeHandler creates a new TagTreeHandler.
func NewTagTreeHandler(searchService service.SearchService) *TagTreeHandler {
	return &TagTreeHandler{
		searchService: searchService,
	}
}

// ServeHTTP handles HTTP requests for the tag tree.
//
// swagger:route GET /api/tags/tree tagTree
//
// # Suggest the next tags for a selection
//
// selected is a comma-separated list of tag names every counted post must
// carry. Without a selection the most used tags of each category are returned.
//
// ---
// produces:
// - application/json
// responses:
//
//	'200':
//	  description: Suggested tags with co-occurrence counts
//	'400':
//	  description: Unknown category or malformed limit
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
//	'503':
//	  description: Store unavailable
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
func (h *TagTreeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	limit, err := intParam(r, "limit", 0)
	if err != nil {
		handleServiceError(w, ctx, err, "Invalid limit")
		return
	}

	query := r.URL.Query()
	result, err := h.searchService.TagTree(ctx, service.TagTreeRequest{
		Selected: listParam(r, "selected"),
		Category: query.Get("category"),
		Filter:   query.Get("filter"),
		Limit:    limit,
	})
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to build tag tree")
		return
	}

	writeJSON(ctx, w, http.StatusOK, result)
}

// AutocompleteHandler handles HTTP requests for tag name suggestions.
type AutocompleteHandler struct {
	searchService service.SearchService
}

// NewAutocompleteHandler creates a new AutocompleteHandler.
func NewAutocompleteHandler(searchService service.SearchService) *AutocompleteHandler {
	return &AutocompleteHandler{
		searchService: searchService,
	}
}

// AutocompleteResponse lists suggested tags, most used first.
//
// swagger:model AutocompleteResponse
type AutocompleteResponse struct {
	Tags []storage.Tag `json:"tags"`
}

// ServeHTTP handles HTTP requests for autocomplete.
func (h *AutocompleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	limit, err := intParam(r, "limit", 0)
	if err != nil {
		handleServiceError(w, ctx, err, "Invalid limit")
		return
	}

	tags, err := h.searchService.Autocomplete(ctx, strings.TrimSpace(r.URL.Query().Get("q")), limit)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to autocomplete")
		return
	}
	if tags == nil {
		tags = []storage.Tag{}
	}

	writeJSON(ctx, w, http.StatusOK, AutocompleteResponse{Tags: tags})
}

// CategoryHandler handles HTTP requests for per-category tag counts.
type CategoryHandler struct {
	searchService service.SearchService
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(searchService service.SearchService) *CategoryHandler {
	return &CategoryHandler{
		searchService: searchService,
	}
}

// CategoryResponse maps each category to its number of tags.
//
// swagger:model CategoryResponse
type CategoryResponse struct {
	Categories map[storage.Category]int `json:"categories"`
}

// ServeHTTP handles HTTP requests for category counts.
func (h *CategoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	counts, err := h.searchService.CategoryCounts(ctx)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to count categories")
		return
	}

	writeJSON(ctx, w, http.StatusOK, CategoryResponse{Categories: counts})
}

// MetaTagHandler handles HTTP requests for the meta-tag listing.
type MetaTagHandler struct {
	searchService service.SearchService
}

// NewMetaTagHandler creates a new MetaTagHandler.
func NewMetaTagHandler(searchService service.SearchService) *MetaTagHandler {
	return &MetaTagHandler{
		searchService: searchService,
	}
}

// MetaTagResponse lists every meta-tag with the number of posts satisfying it.
//
// swagger:model MetaTagResponse
type MetaTagResponse struct {
	MetaTags []search.MetaTagCount `json:"metaTags"`
}

// ServeHTTP handles HTTP requests for meta-tags.
func (h *MetaTagHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	metas, err := h.searchService.MetaTags(ctx)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to list meta-tags")
		return
	}

	writeJSON(ctx, w, http.StatusOK, MetaTagResponse{MetaTags: metas})
}
