package handlers

import (
	"net/http"
	"strings"

	"tagboard/internal/contextutil"
	"tagboard/internal/service"
)

// PostSearchHandler handles HTTP requests for tag queries over posts.
type PostSearchHandler struct {
	searchService service.SearchService
}

// NewPostSearchHandler creates a new PostSearchHandler.
func NewPostSearchHandler(searchService service.SearchService) *PostSearchHandler {
	return &PostSearchHandler{
		searchService: searchService,
	}
}

// ServeHTTP handles HTTP requests for post search.
//
// swagger:route GET /api/posts/search searchPosts
//
// # Search posts by tags
//
// Tokens in q are separated by whitespace. A leading '-' excludes a tag,
// '*' expands to matching tags, and meta-tags such as video or landscape test
// post attributes. Invalid wildcards do not fail the request; they are reported
// in the error field of a 200 response.
//
// ---
// produces:
// - application/json
// parameters:
//   - in: query
//     name: q
//     type: string
//   - in: query
//     name: page
//     type: integer
//
// responses:
//
//	'200':
//	  description: One page of posts, newest first
//	'400':
//	  description: Malformed page number
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
//	'503':
//	  description: Store unavailable
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
func (h *PostSearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	page, err := intParam(r, "page", 1)
	if err != nil {
		handleServiceError(w, ctx, err, "Invalid page")
		return
	}

	result, err := h.searchService.SearchPosts(ctx, service.PostSearchRequest{
		Tokens: strings.Fields(r.URL.Query().Get("q")),
		Page:   page,
	})
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to search posts")
		return
	}

	contextutil.LoggerFromContext(ctx).DebugContext(ctx, "post search served", "outcome", result.Outcome, "total", result.TotalCount)
	writeJSON(ctx, w, http.StatusOK, result)
}
