package handlers

import (
	"net/http"

	"tagboard/internal/service"
)

// NoteSearchHandler handles HTTP requests for free-text note search.
type NoteSearchHandler struct {
	searchService service.SearchService
}

// NewNoteSearchHandler creates a new NoteSearchHandler.
func NewNoteSearchHandler(searchService service.SearchService) *NoteSearchHandler {
	return &NoteSearchHandler{
		searchService: searchService,
	}
}

// ServeHTTP handles HTTP requests for note search.
//
// swagger:route GET /api/notes/search searchNotes
//
// # Search post notes
//
// mode is ranked (default, full-text relevance) or substring (slower, matches
// inside words). Identical note bodies attached to several posts are returned
// once with every post listed.
//
// ---
// produces:
// - application/json
// responses:
//
//	'200':
//	  description: One page of note hits
//	'400':
//	  description: Query too short, unknown mode or malformed page
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
//	'503':
//	  description: Store unavailable
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
func (h *NoteSearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	page, err := intParam(r, "page", 1)
	if err != nil {
		handleServiceError(w, ctx, err, "Invalid page")
		return
	}

	query := r.URL.Query()
	result, err := h.searchService.SearchNotes(ctx, service.NoteSearchRequest{
		Query: query.Get("q"),
		Page:  page,
		Mode:  query.Get("mode"),
	})
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to search notes")
		return
	}

	writeJSON(ctx, w, http.StatusOK, result)
}
