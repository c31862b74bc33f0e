// Package notes searches the free-text notes attached to posts.
package notes

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"tagboard/internal/cache"
	"tagboard/internal/contextutil"
	"tagboard/internal/storage"
)

// TierNoteHits is the name of the merged note hit cache tier.
const TierNoteHits = "note_hits"

const snippetRadius = 60

var (
	// ErrQueryTooShort is returned when a query has fewer runes than the configured minimum.
	ErrQueryTooShort = errors.New("query too short")
	// ErrUnknownMode is returned by ParseMode for anything but ranked or substring.
	ErrUnknownMode = errors.New("unknown search mode")
)

// Mode selects how notes are matched.
type Mode string

const (
	// ModeRanked matches words through the full-text index and ranks by relevance.
	ModeRanked Mode = "ranked"
	// ModeSubstring matches raw substrings, newest first.
	ModeSubstring Mode = "substring"
)

// ParseMode parses a mode name. An empty name means ModeRanked.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeRanked:
		return ModeRanked, nil
	case ModeSubstring:
		return ModeSubstring, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// PostRef identifies a post that carries a note hit's content.
type PostRef struct {
	ID         int64     `json:"id"`
	Hash       string    `json:"hash"`
	ImportedAt time.Time `json:"importedAt"`
}

// Hit is one result. Notes with byte-identical bodies are merged into a single
// hit listing every post that carries them, newest first.
type Hit struct {
	NoteID      int64     `json:"noteId"`
	Name        string    `json:"name"`
	Snippet     string    `json:"snippet"` // HTML-escaped, matches wrapped in <mark>
	Score       float64   `json:"score"`
	ContentHash string    `json:"contentHash"`
	ImportedAt  time.Time `json:"importedAt"` // newest import among Posts
	Posts       []PostRef `json:"posts"`
}

// Result is one page of a note search. TotalCount counts every merged hit;
// when it exceeds the candidate limit, Truncated is set and TotalPages covers
// only the hits that can be paged through.
type Result struct {
	Notes       []Hit `json:"notes"`
	TotalCount  int   `json:"totalCount"`
	TotalPages  int   `json:"totalPages"`
	Truncated   bool  `json:"truncated"`
	Page        int   `json:"page"`
	Mode        Mode  `json:"mode"`
	QueryTimeMs int64 `json:"queryTimeMs"`
}

// hitSet is the cached outcome of one query: the best hits in order and the
// number of merged hits before the candidate limit applied.
type hitSet struct {
	hits  []Hit
	total int
}

// Config configures a Searcher.
type Config struct {
	PageSize       int
	MinQueryLength int
	// CandidateLimit bounds the merged hits kept per query after ranking.
	CandidateLimit int
	CacheSize      int
	CacheTTL       time.Duration
}

// Searcher runs note queries. It shares nothing with tag search but the cache group.
type Searcher struct {
	store    storage.NoteStore
	cfg      Config
	plain    *PlainText
	hitCache *cache.TTL[string, hitSet]
}

// NewSearcher creates a Searcher and registers its cache tier with caches.
func NewSearcher(store storage.NoteStore, caches *cache.Group, cfg Config) (*Searcher, error) {
	if cfg.PageSize <= 0 {
		return nil, fmt.Errorf("note page size must be positive, got %d", cfg.PageSize)
	}
	if cfg.CandidateLimit <= 0 {
		return nil, fmt.Errorf("note candidate limit must be positive, got %d", cfg.CandidateLimit)
	}
	hitCache, err := cache.NewTTL[string, hitSet](caches, TierNoteHits, cfg.CacheSize, cfg.CacheTTL)
	if err != nil {
		return nil, err
	}
	return &Searcher{
		store:    store,
		cfg:      cfg,
		plain:    NewPlainText(),
		hitCache: hitCache,
	}, nil
}

// MinQueryLength returns the minimum number of runes a query needs.
func (s *Searcher) MinQueryLength() int {
	return s.cfg.MinQueryLength
}

// Note returns a single note by id. Missing notes fail with storage.ErrNotFound.
func (s *Searcher) Note(ctx context.Context, id int64) (*storage.Note, error) {
	return s.store.Get(ctx, id)
}

// Search returns the requested page of hits for query. Pages are 1-based; page < 1
// means 1. A query shorter than the minimum fails with ErrQueryTooShort before
// the store is touched. A ranked query with no searchable word yields no hits.
func (s *Searcher) Search(ctx context.Context, query string, page int, mode Mode) (*Result, error) {
	start := time.Now()
	query = strings.TrimSpace(query)
	if n := utf8.RuneCountInString(query); n < s.cfg.MinQueryLength {
		return nil, fmt.Errorf("%w: need at least %d characters, got %d", ErrQueryTooShort, s.cfg.MinQueryLength, n)
	}
	if page < 1 {
		page = 1
	}

	set, err := s.hits(ctx, query, mode)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Notes:      []Hit{},
		TotalCount: set.total,
		TotalPages: (len(set.hits) + s.cfg.PageSize - 1) / s.cfg.PageSize,
		Truncated:  set.total > len(set.hits),
		Page:       page,
		Mode:       mode,
	}
	// page <= TotalPages keeps the offset within len(set.hits).
	if page <= result.TotalPages {
		from := (page - 1) * s.cfg.PageSize
		to := min(from+s.cfg.PageSize, len(set.hits))
		result.Notes = set.hits[from:to]
	}

	result.QueryTimeMs = time.Since(start).Milliseconds()
	return result, nil
}

// hits returns the merged hits for query, best first, from cache when possible.
// Every match is ranked before the candidate limit applies, so the limit never
// drops a better hit in favour of a worse one.
func (s *Searcher) hits(ctx context.Context, query string, mode Mode) (hitSet, error) {
	var key, expr string
	var fetch func() ([]storage.NoteMatch, error)

	switch mode {
	case ModeRanked:
		expr = MatchExpression(query)
		if expr == "" {
			return hitSet{hits: []Hit{}}, nil
		}
		key = string(mode) + "|" + expr
		fetch = func() ([]storage.NoteMatch, error) {
			return s.store.MatchRanked(ctx, expr)
		}
	case ModeSubstring:
		key = string(mode) + "|" + strings.ToLower(query)
		fetch = func() ([]storage.NoteMatch, error) {
			return s.store.MatchSubstring(ctx, "%"+storage.EscapeLike(query)+"%")
		}
	default:
		return hitSet{}, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}

	gen := s.hitCache.Generation()
	if cached, ok := s.hitCache.Get(key); ok {
		return cached, nil
	}

	matches, err := fetch()
	if err != nil {
		return hitSet{}, fmt.Errorf("failed to search notes: %w", err)
	}

	hits := s.merge(matches, mode)
	set := hitSet{hits: hits, total: len(hits)}
	if len(set.hits) > s.cfg.CandidateLimit {
		set.hits = set.hits[:s.cfg.CandidateLimit]
	}
	if err := s.attachSnippets(ctx, set.hits, query, expr, mode); err != nil {
		return hitSet{}, err
	}

	contextutil.LoggerFromContext(ctx).Debug("note search",
		"mode", mode,
		"query_length", utf8.RuneCountInString(query),
		"matches", len(matches),
		"hits", set.total,
		"truncated", set.total > len(set.hits),
	)

	s.hitCache.AddIfCurrent(gen, key, set)
	return set, nil
}

// attachSnippets loads the text of each hit's representative note in one store
// call and sets its snippet.
func (s *Searcher) attachSnippets(ctx context.Context, hits []Hit, query, expr string, mode Mode) error {
	if len(hits) == 0 {
		return nil
	}
	ids := make([]int64, len(hits))
	for i, hit := range hits {
		ids[i] = hit.NoteID
	}
	texts, err := s.store.Texts(ctx, ids, expr)
	if err != nil {
		return fmt.Errorf("failed to load note texts: %w", err)
	}
	for i := range hits {
		hits[i].Snippet = s.snippet(texts[hits[i].NoteID], query, mode)
	}
	return nil
}

// merge groups matches by content hash and sorts the groups. A group's score is
// its best member's, and that member represents it.
func (s *Searcher) merge(matches []storage.NoteMatch, mode Mode) []Hit {
	type group struct {
		hit   Hit
		best  storage.NoteMatch
		posts map[int64]struct{}
	}

	groups := make(map[string]*group, len(matches))
	order := make([]string, 0, len(matches))
	for _, m := range matches {
		score := 0.0
		if mode == ModeRanked {
			score = rankScore(m.MatchInfo)
		}

		g, ok := groups[m.ContentHash]
		if !ok {
			g = &group{
				hit:   Hit{NoteID: m.NoteID, Name: m.Name, Score: score, ContentHash: m.ContentHash, ImportedAt: m.ImportedAt},
				best:  m,
				posts: make(map[int64]struct{}),
			}
			groups[m.ContentHash] = g
			order = append(order, m.ContentHash)
		} else if betterMatch(score, m, g.hit.Score, g.best) {
			g.hit.NoteID, g.hit.Name, g.hit.Score = m.NoteID, m.Name, score
			g.best = m
		}

		if m.ImportedAt.After(g.hit.ImportedAt) {
			g.hit.ImportedAt = m.ImportedAt
		}
		if _, dup := g.posts[m.PostID]; !dup {
			g.posts[m.PostID] = struct{}{}
			g.hit.Posts = append(g.hit.Posts, PostRef{ID: m.PostID, Hash: m.PostHash, ImportedAt: m.ImportedAt})
		}
	}

	hits := make([]Hit, 0, len(order))
	for _, hash := range order {
		g := groups[hash]
		sort.Slice(g.hit.Posts, func(i, j int) bool {
			a, b := g.hit.Posts[i], g.hit.Posts[j]
			if !a.ImportedAt.Equal(b.ImportedAt) {
				return a.ImportedAt.After(b.ImportedAt)
			}
			return a.ID < b.ID
		})
		hits = append(hits, g.hit)
	}

	sort.Slice(hits, func(i, j int) bool {
		a, b := hits[i], hits[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.ImportedAt.Equal(b.ImportedAt) {
			return a.ImportedAt.After(b.ImportedAt)
		}
		return a.NoteID < b.NoteID
	})
	return hits
}

func betterMatch(score float64, m storage.NoteMatch, bestScore float64, best storage.NoteMatch) bool {
	if score != bestScore {
		return score > bestScore
	}
	if !m.ImportedAt.Equal(best.ImportedAt) {
		return m.ImportedAt.After(best.ImportedAt)
	}
	return m.NoteID < best.NoteID
}

func (s *Searcher) snippet(text storage.NoteText, query string, mode Mode) string {
	if mode == ModeRanked && text.Snippet != "" {
		return highlight(text.Snippet)
	}
	return highlight(excerpt(s.plain.Render(text.Body), query, snippetRadius))
}
