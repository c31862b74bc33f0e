package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_search_service.go -package=mocks tagboard/internal/service SearchService
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_admin_store.go -package=mocks tagboard/internal/service TagCountRecomputer,Pinger

import (
	"context"
	"errors"
	"strings"
	"time"

	"tagboard/internal/cache"
	"tagboard/internal/contextutil"
	"tagboard/internal/metrics"
	"tagboard/internal/notes"
	"tagboard/internal/search"
	"tagboard/internal/storage"
)

// Operation names used for metrics and logs.
const (
	opPosts        = "posts"
	opNotes        = "notes"
	opTagTree      = "tag_tree"
	opAutocomplete = "autocomplete"
	opCategories   = "categories"
	opMetaTags     = "meta_tags"
	opNote         = "note"
)

// Outcome labels for operations that have no richer outcome.
const (
	outcomeOK       = "ok"
	outcomeRejected = "rejected"
	outcomeError    = "error"
)

// TagCountRecomputer refreshes the denormalized tag post counts.
type TagCountRecomputer interface {
	RecomputeTagCounts(ctx context.Context) (storage.RecomputeStats, error)
}

// Pinger checks that the store is reachable. *sql.DB implements it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PostSearchRequest is a tag query for one page of posts.
type PostSearchRequest struct {
	Tokens []string
	Page   int
}

// NoteSearchRequest is a free-text query for one page of notes.
type NoteSearchRequest struct {
	Query string
	Page  int
	Mode  string // "ranked" (default) or "substring"
}

// TagTreeRequest asks for narrowing suggestions.
type TagTreeRequest struct {
	Selected []string
	Category string // empty means every category
	Filter   string
	Limit    int
}

// Health reports store reachability and the size of every cache tier.
type Health struct {
	Status string         `json:"status"`
	Caches map[string]int `json:"caches"`
}

// SearchService is the boundary the HTTP layer and admin tooling call.
type SearchService interface {
	// SearchPosts runs a tag query and returns one page of posts.
	SearchPosts(ctx context.Context, req PostSearchRequest) (*search.SearchResult, error)
	// SearchNotes runs a free-text query over post notes.
	SearchNotes(ctx context.Context, req NoteSearchRequest) (*notes.Result, error)
	// Note returns a single note for display.
	Note(ctx context.Context, id int64) (*storage.Note, error)
	// TagTree returns the next tags to offer for a selection.
	TagTree(ctx context.Context, req TagTreeRequest) (*search.TagTreeResult, error)
	// Autocomplete suggests tags for a partially typed name.
	Autocomplete(ctx context.Context, prefix string, limit int) ([]storage.Tag, error)
	// CategoryCounts returns the number of tags per category.
	CategoryCounts(ctx context.Context) (map[storage.Category]int, error)
	// MetaTags lists the meta-tags with the number of posts satisfying each.
	MetaTags(ctx context.Context) ([]search.MetaTagCount, error)
	// InvalidateAll empties every cache tier.
	InvalidateAll(ctx context.Context)
	// Recompute refreshes tag post counts and then invalidates every cache tier.
	Recompute(ctx context.Context) (storage.RecomputeStats, error)
	// Health pings the store.
	Health(ctx context.Context) (Health, error)
}

// Dependencies are the components a SearchService delegates to.
type Dependencies struct {
	Composer *search.Composer
	Narrower *search.Narrower
	Notes    *notes.Searcher
	Caches   *cache.Group
	Stats    TagCountRecomputer
	Store    Pinger
	Metrics  *metrics.Metrics // may be nil
}

// searchService implements SearchService.
type searchService struct {
	composer *search.Composer
	narrower *search.Narrower
	notes    *notes.Searcher
	caches   *cache.Group
	stats    TagCountRecomputer
	store    Pinger
	metrics  *metrics.Metrics
}

// NewSearchService creates a new SearchService.
func NewSearchService(deps Dependencies) SearchService {
	return &searchService{
		composer: deps.Composer,
		narrower: deps.Narrower,
		notes:    deps.Notes,
		caches:   deps.Caches,
		stats:    deps.Stats,
		store:    deps.Store,
		metrics:  deps.Metrics,
	}
}

// SearchPosts runs a tag query. Store failures are logged with the query shape
// only and returned as ErrSearchFailed.
func (s *searchService) SearchPosts(ctx context.Context, req PostSearchRequest) (*search.SearchResult, error) {
	logger := contextutil.LoggerFromContext(ctx)
	start := time.Now()

	q := s.composer.Parse(req.Tokens)
	result, err := s.composer.Execute(ctx, q, req.Page)
	if err != nil {
		s.metrics.RecordSearch(opPosts, outcomeError, time.Since(start))
		logger.ErrorContext(ctx, "post search failed", "shape", q.Shape(), "page", req.Page, "error", err)
		return nil, ErrSearchFailed
	}

	s.metrics.RecordSearch(opPosts, string(result.Outcome), time.Since(start))
	logger.DebugContext(ctx, "post search completed",
		"shape", q.Shape(),
		"page", result.Page,
		"outcome", result.Outcome,
		"total", result.TotalCount,
		"query_time_ms", result.QueryTimeMs,
	)
	return result, nil
}

// SearchNotes validates the mode and query length before running a note search.
func (s *searchService) SearchNotes(ctx context.Context, req NoteSearchRequest) (*notes.Result, error) {
	logger := contextutil.LoggerFromContext(ctx)
	start := time.Now()

	mode, err := notes.ParseMode(req.Mode)
	if err != nil {
		s.metrics.RecordSearch(opNotes, outcomeRejected, time.Since(start))
		logger.WarnContext(ctx, "invalid note search mode", "mode", req.Mode)
		return nil, &ValidationError{Field: "mode", Message: "must be ranked or substring"}
	}

	result, err := s.notes.Search(ctx, req.Query, req.Page, mode)
	if err != nil {
		if errors.Is(err, notes.ErrQueryTooShort) {
			s.metrics.RecordSearch(opNotes, outcomeRejected, time.Since(start))
			return nil, &ValidationError{Field: "q", Message: err.Error()}
		}
		s.metrics.RecordSearch(opNotes, outcomeError, time.Since(start))
		logger.ErrorContext(ctx, "note search failed",
			"mode", mode,
			"query_length", len([]rune(strings.TrimSpace(req.Query))),
			"page", req.Page,
			"error", err,
		)
		return nil, ErrSearchFailed
	}

	s.metrics.RecordSearch(opNotes, outcomeOK, time.Since(start))
	logger.DebugContext(ctx, "note search completed", "mode", mode, "total", result.TotalCount, "page", result.Page)
	return result, nil
}

// Note loads one note. A missing note is ErrNotFound.
func (s *searchService) Note(ctx context.Context, id int64) (*storage.Note, error) {
	start := time.Now()
	note, err := s.notes.Note(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		s.metrics.RecordSearch(opNote, outcomeRejected, time.Since(start))
		return nil, ErrNotFound
	}
	if err != nil {
		s.metrics.RecordSearch(opNote, outcomeError, time.Since(start))
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "note lookup failed", "note_id", id, "error", err)
		return nil, ErrSearchFailed
	}
	s.metrics.RecordSearch(opNote, outcomeOK, time.Since(start))
	return note, nil
}

// TagTree validates the category before asking the narrower.
func (s *searchService) TagTree(ctx context.Context, req TagTreeRequest) (*search.TagTreeResult, error) {
	logger := contextutil.LoggerFromContext(ctx)
	start := time.Now()

	var category storage.Category
	if strings.TrimSpace(req.Category) != "" {
		c, ok := storage.ParseCategory(req.Category)
		if !ok {
			s.metrics.RecordSearch(opTagTree, outcomeRejected, time.Since(start))
			return nil, &ValidationError{Field: "category", Message: "unknown category " + req.Category}
		}
		category = c
	}
	if req.Limit < 0 {
		s.metrics.RecordSearch(opTagTree, outcomeRejected, time.Since(start))
		return nil, &ValidationError{Field: "limit", Message: "must not be negative"}
	}

	result, err := s.narrower.TagTree(ctx, search.TagTreeRequest{
		Selected: req.Selected,
		Category: category,
		Filter:   req.Filter,
		Limit:    req.Limit,
	})
	if err != nil {
		s.metrics.RecordSearch(opTagTree, outcomeError, time.Since(start))
		logger.ErrorContext(ctx, "tag tree failed",
			"selected", len(req.Selected),
			"category", category,
			"filtered", req.Filter != "",
			"error", err,
		)
		return nil, ErrSearchFailed
	}

	s.metrics.RecordSearch(opTagTree, string(result.Outcome), time.Since(start))
	return result, nil
}

// Autocomplete suggests tags for prefix.
func (s *searchService) Autocomplete(ctx context.Context, prefix string, limit int) ([]storage.Tag, error) {
	start := time.Now()
	tags, err := s.narrower.Autocomplete(ctx, prefix, limit)
	if err != nil {
		s.metrics.RecordSearch(opAutocomplete, outcomeError, time.Since(start))
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "autocomplete failed", "prefix_length", len([]rune(prefix)), "error", err)
		return nil, ErrSearchFailed
	}
	s.metrics.RecordSearch(opAutocomplete, outcomeOK, time.Since(start))
	return tags, nil
}

// CategoryCounts returns the number of tags per category.
func (s *searchService) CategoryCounts(ctx context.Context) (map[storage.Category]int, error) {
	start := time.Now()
	counts, err := s.narrower.CategoryCounts(ctx)
	if err != nil {
		s.metrics.RecordSearch(opCategories, outcomeError, time.Since(start))
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "category counts failed", "error", err)
		return nil, ErrSearchFailed
	}
	s.metrics.RecordSearch(opCategories, outcomeOK, time.Since(start))
	return counts, nil
}

// MetaTags lists the meta-tags with standalone counts.
func (s *searchService) MetaTags(ctx context.Context) ([]search.MetaTagCount, error) {
	start := time.Now()
	counts, err := s.composer.MetaTagCounts(ctx)
	if err != nil {
		s.metrics.RecordSearch(opMetaTags, outcomeError, time.Since(start))
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "meta-tag counts failed", "error", err)
		return nil, ErrSearchFailed
	}
	s.metrics.RecordSearch(opMetaTags, outcomeOK, time.Since(start))
	return counts, nil
}

// InvalidateAll empties every cache tier.
func (s *searchService) InvalidateAll(ctx context.Context) {
	s.caches.InvalidateAll()
	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "caches invalidated", "tiers", len(s.caches.Tiers()))
}

// Recompute refreshes tag post counts. Caches are invalidated only after a
// successful recompute.
func (s *searchService) Recompute(ctx context.Context) (storage.RecomputeStats, error) {
	logger := contextutil.LoggerFromContext(ctx)

	stats, err := s.stats.RecomputeTagCounts(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "tag count recompute failed", "error", err)
		return storage.RecomputeStats{}, WrapError(err, "failed to recompute tag counts")
	}
	s.InvalidateAll(ctx)

	logger.InfoContext(ctx, "tag counts recomputed",
		"tags_checked", stats.TagsChecked,
		"tags_updated", stats.TagsUpdated,
		"total_drift", stats.TotalDrift,
		"max_drift", stats.MaxDrift,
		"max_drift_tag", stats.MaxDriftTag,
		"duration", stats.Duration,
	)
	return stats, nil
}

// Health pings the store. The cache sizes are reported either way.
func (s *searchService) Health(ctx context.Context) (Health, error) {
	h := Health{Status: "ok", Caches: s.caches.Stats()}
	if err := s.store.PingContext(ctx); err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "store ping failed", "error", err)
		h.Status = "unavailable"
		return h, WrapError(ErrSearchFailed, "store unreachable")
	}
	return h, nil
}
