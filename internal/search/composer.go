package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"tagboard/internal/cache"
	"tagboard/internal/storage"
)

// TierMetaCounts is the name of the meta-tag count cache tier.
const TierMetaCounts = "meta_counts"

// Terms are the tokens on one side of a query, grouped by kind.
type Terms struct {
	Regular   []string
	Wildcards []string // patterns without the negation marker
	Meta      []*MetaTag
}

func (t Terms) len() int {
	return len(t.Regular) + len(t.Wildcards) + len(t.Meta)
}

// Query is a parsed and classified token list.
type Query struct {
	Include Terms
	Exclude Terms
	// Invalid holds a *PatternError for every rejected wildcard token.
	Invalid []error
}

// Empty reports whether no usable token remains.
func (q Query) Empty() bool {
	return q.Include.len() == 0 && q.Exclude.len() == 0
}

// ErrorMessage joins the wildcard validation errors, or returns "".
func (q Query) ErrorMessage() string {
	if len(q.Invalid) == 0 {
		return ""
	}
	msgs := make([]string, len(q.Invalid))
	for i, err := range q.Invalid {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Shape returns the token counts of q.
func (q Query) Shape() Shape {
	return Shape{
		IncludeRegular:  len(q.Include.Regular),
		IncludeWildcard: len(q.Include.Wildcards),
		IncludeMeta:     len(q.Include.Meta),
		ExcludeRegular:  len(q.Exclude.Regular),
		ExcludeWildcard: len(q.Exclude.Wildcards),
		ExcludeMeta:     len(q.Exclude.Meta),
		Invalid:         len(q.Invalid),
	}
}

// Shape describes a query by token kind counts only, so it can be logged without user text.
type Shape struct {
	IncludeRegular  int
	IncludeWildcard int
	IncludeMeta     int
	ExcludeRegular  int
	ExcludeWildcard int
	ExcludeMeta     int
	Invalid         int
}

// LogValue implements slog.LogValuer.
func (s Shape) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("include_regular", s.IncludeRegular),
		slog.Int("include_wildcard", s.IncludeWildcard),
		slog.Int("include_meta", s.IncludeMeta),
		slog.Int("exclude_regular", s.ExcludeRegular),
		slog.Int("exclude_wildcard", s.ExcludeWildcard),
		slog.Int("exclude_meta", s.ExcludeMeta),
		slog.Int("invalid", s.Invalid),
	)
}

// SearchResult is one page of a post search.
type SearchResult struct {
	Posts             []storage.Post     `json:"posts"`
	TotalCount        int                `json:"totalCount"`
	TotalPages        int                `json:"totalPages"`
	Page              int                `json:"page"`
	QueryTimeMs       int64              `json:"queryTimeMs"`
	ResolvedWildcards []ResolvedWildcard `json:"resolvedWildcards"`
	Outcome           Outcome            `json:"outcome"`
	UnresolvedTags    []string           `json:"unresolvedTags,omitempty"`
	Error             string             `json:"error,omitempty"`
}

// MetaTagCount is a meta-tag with the number of posts satisfying it.
type MetaTagCount struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Category    storage.Category `json:"category"`
	Count       int              `json:"count"`
}

// ComposerConfig configures a Composer.
type ComposerConfig struct {
	PageSize     int
	MetaCountTTL time.Duration
}

// Composer turns token lists into predicate trees and runs them against the post store.
type Composer struct {
	posts      storage.PostStore
	resolver   *Resolver
	wildcards  *WildcardEngine
	registry   *Registry
	pageSize   int
	metaCounts *cache.TTL[string, []MetaTagCount]
}

// NewComposer creates a Composer.
func NewComposer(posts storage.PostStore, resolver *Resolver, wildcards *WildcardEngine, registry *Registry, caches *cache.Group, cfg ComposerConfig) (*Composer, error) {
	if cfg.PageSize <= 0 {
		return nil, fmt.Errorf("page size must be positive, got %d", cfg.PageSize)
	}
	metaCounts, err := cache.NewTTL[string, []MetaTagCount](caches, TierMetaCounts, 1, cfg.MetaCountTTL)
	if err != nil {
		return nil, err
	}
	return &Composer{
		posts:      posts,
		resolver:   resolver,
		wildcards:  wildcards,
		registry:   registry,
		pageSize:   cfg.PageSize,
		metaCounts: metaCounts,
	}, nil
}

// PageSize returns the number of posts per page.
func (c *Composer) PageSize() int {
	return c.pageSize
}

// Parse normalizes, deduplicates and classifies tokens. Wildcard tokens are tested
// first, then meta-tag names; everything else is a regular tag name. Invalid
// wildcards are dropped into Invalid without affecting the other tokens.
func (c *Composer) Parse(tokens []string) Query {
	var q Query
	seen := make(map[string]struct{}, len(tokens))

	for _, raw := range tokens {
		token := normalizeName(raw)
		name, negated := splitNegation(token)
		if name == "" {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}

		terms := &q.Include
		if negated {
			terms = &q.Exclude
		}

		if IsWildcard(token) {
			if err := c.wildcards.Validate(token); err != nil {
				q.Invalid = append(q.Invalid, err)
				continue
			}
			terms.Wildcards = append(terms.Wildcards, name)
			continue
		}
		if meta, ok := c.registry.Lookup(name); ok {
			terms.Meta = append(terms.Meta, meta)
			continue
		}
		terms.Regular = append(terms.Regular, name)
	}

	return q
}

// Search parses tokens and returns the requested page.
func (c *Composer) Search(ctx context.Context, tokens []string, page int) (*SearchResult, error) {
	return c.Execute(ctx, c.Parse(tokens), page)
}

// Execute resolves q and returns the requested page. Pages are 1-based; page < 1
// means 1. An unresolved included tag yields OutcomeNoSuchTag without querying
// posts; a query left without conditions yields OutcomeEmptyQuery. Store errors
// are returned as is and no partial result is produced.
func (c *Composer) Execute(ctx context.Context, q Query, page int) (*SearchResult, error) {
	start := time.Now()
	if page < 1 {
		page = 1
	}

	result := &SearchResult{
		Posts:             []storage.Post{},
		Page:              page,
		ResolvedWildcards: []ResolvedWildcard{},
		Outcome:           OutcomeEmptyQuery,
		Error:             q.ErrorMessage(),
	}
	finish := func() (*SearchResult, error) {
		result.QueryTimeMs = time.Since(start).Milliseconds()
		return result, nil
	}

	if q.Empty() {
		return finish()
	}

	names := make([]string, 0, len(q.Include.Regular)+len(q.Exclude.Regular))
	names = append(names, q.Include.Regular...)
	names = append(names, q.Exclude.Regular...)
	ids, err := c.resolver.Resolve(ctx, names)
	if err != nil {
		return nil, err
	}

	var include, exclude []Expr
	for _, name := range q.Include.Regular {
		id, ok := ids[name]
		if !ok {
			result.UnresolvedTags = append(result.UnresolvedTags, name)
			continue
		}
		include = append(include, HasTag{ID: id})
	}
	for _, name := range q.Exclude.Regular {
		if id, ok := ids[name]; ok {
			exclude = append(exclude, Not{X: HasTag{ID: id}})
		}
	}

	// Wildcards resolve even when a tag is missing so callers can show what they matched.
	emptyWildcard := false
	for _, pattern := range q.Include.Wildcards {
		resolved, err := c.wildcards.Resolve(ctx, pattern)
		if err != nil {
			return nil, err
		}
		result.ResolvedWildcards = append(result.ResolvedWildcards, resolved)
		if len(resolved.TagIDs) == 0 {
			emptyWildcard = true
		}
		include = append(include, HasAnyTag{IDs: resolved.TagIDs})
	}
	for _, pattern := range q.Exclude.Wildcards {
		resolved, err := c.wildcards.Resolve(ctx, negationPrefix+pattern)
		if err != nil {
			return nil, err
		}
		result.ResolvedWildcards = append(result.ResolvedWildcards, resolved)
		if len(resolved.TagIDs) > 0 {
			exclude = append(exclude, Not{X: HasAnyTag{IDs: resolved.TagIDs}})
		}
	}

	if len(result.UnresolvedTags) > 0 {
		result.Outcome = OutcomeNoSuchTag
		return finish()
	}

	for _, meta := range q.Include.Meta {
		include = append(include, Attr{Meta: meta})
	}
	for _, meta := range q.Exclude.Meta {
		exclude = append(exclude, Not{X: Attr{Meta: meta}})
	}

	if len(include)+len(exclude) == 0 {
		return finish()
	}
	result.Outcome = OutcomeMatched
	if emptyWildcard {
		return finish()
	}

	where := Compile(append(And(include), exclude...))

	var posts []storage.Post
	var total int
	g, gctx := errgroup.WithContext(ctx)
	// A page whose offset overflows lies past any result set.
	if offset, ok := pageOffset(page, c.pageSize); ok {
		g.Go(func() error {
			var err error
			posts, err = c.posts.List(gctx, where, c.pageSize, offset)
			return err
		})
	}
	g.Go(func() error {
		var err error
		total, err = c.posts.Count(gctx, where)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if posts != nil {
		result.Posts = posts
	}
	result.TotalCount = total
	result.TotalPages = totalPages(total, c.pageSize)
	return finish()
}

// MetaTagCounts returns every registered meta-tag with the number of posts satisfying it.
func (c *Composer) MetaTagCounts(ctx context.Context) ([]MetaTagCount, error) {
	const key = "all"
	gen := c.metaCounts.Generation()
	if cached, ok := c.metaCounts.Get(key); ok {
		return cached, nil
	}

	metas := c.registry.All()
	counts := make([]MetaTagCount, len(metas))
	g, gctx := errgroup.WithContext(ctx)
	for i, meta := range metas {
		counts[i] = MetaTagCount{Name: meta.Name, Description: meta.Description, Category: meta.Category}
		g.Go(func() error {
			n, err := c.posts.Count(gctx, storage.Where{Clause: meta.Condition})
			if err != nil {
				return fmt.Errorf("failed to count meta-tag %s: %w", meta.Name, err)
			}
			counts[i].Count = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	c.metaCounts.AddIfCurrent(gen, key, counts)
	return counts, nil
}
