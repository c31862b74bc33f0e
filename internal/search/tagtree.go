package search

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"tagboard/internal/cache"
	"tagboard/internal/storage"
)

// Cache tier names owned by the Narrower.
const (
	TierPostSets       = "post_sets"
	TierTagTree        = "tag_tree"
	TierTagBrowse      = "tag_browse"
	TierCategoryCounts = "category_counts"
)

const (
	// DefaultTreeLimit applies when a tag-tree request has no limit.
	DefaultTreeLimit = 50
	// MaxTreeLimit caps any tag-tree request.
	MaxTreeLimit = 500
	// DefaultAutocompleteLimit applies when an autocomplete request has no limit.
	DefaultAutocompleteLimit = 10
	// MaxAutocompleteLimit caps any autocomplete request.
	MaxAutocompleteLimit = 100
)

// NarrowerConfig configures a Narrower.
type NarrowerConfig struct {
	// CategoryCaps bounds each category in the no-selection listing. Categories
	// without a positive cap are left out of it.
	CategoryCaps map[storage.Category]int
	// Blacklist holds tag name patterns ('*' allowed) hidden from suggestions.
	Blacklist        []string
	MinLiterals      int
	PostSetCacheSize int
	TreeCacheSize    int
	TreeCacheTTL     time.Duration
	BrowseCacheTTL   time.Duration
}

// TagTreeRequest asks for the next tags to add to a selection.
type TagTreeRequest struct {
	Selected []string
	Category storage.Category // empty means every category
	Filter   string           // case-insensitive substring of the tag name
	Limit    int
}

// TagNode is one suggested tag. Count is the co-occurrence count for a selection,
// or the post count snapshot when nothing is selected.
type TagNode struct {
	ID       int64            `json:"id"`
	Name     string           `json:"name"`
	Category storage.Category `json:"category"`
	Count    int              `json:"count"`
}

// TagTreeResult is the answer to a TagTreeRequest.
type TagTreeResult struct {
	Tags           []TagNode `json:"tags"`
	PostCount      int       `json:"postCount"`
	SelectedTags   []string  `json:"selectedTags"`
	Outcome        Outcome   `json:"outcome"`
	UnresolvedTags []string  `json:"unresolvedTags,omitempty"`
}

// Narrower computes co-occurrence suggestions for progressive tag pickers.
type Narrower struct {
	tags        storage.TagStore
	posts       storage.PostStore
	resolver    *Resolver
	caps        map[storage.Category]int
	blacklist   []string
	minLiterals int

	postSets       *cache.LRU[string, []int64]
	responses      *cache.TTL[string, TagTreeResult]
	browse         *cache.TTL[string, TagTreeResult]
	categoryCounts *cache.TTL[string, map[storage.Category]int]
}

// NewNarrower creates a Narrower and registers its cache tiers with caches.
func NewNarrower(tags storage.TagStore, posts storage.PostStore, resolver *Resolver, caches *cache.Group, cfg NarrowerConfig) (*Narrower, error) {
	postSets, err := cache.NewLRU[string, []int64](caches, TierPostSets, cfg.PostSetCacheSize)
	if err != nil {
		return nil, err
	}
	responses, err := cache.NewTTL[string, TagTreeResult](caches, TierTagTree, cfg.TreeCacheSize, cfg.TreeCacheTTL)
	if err != nil {
		return nil, err
	}
	browse, err := cache.NewTTL[string, TagTreeResult](caches, TierTagBrowse, cfg.TreeCacheSize, cfg.BrowseCacheTTL)
	if err != nil {
		return nil, err
	}
	categoryCounts, err := cache.NewTTL[string, map[storage.Category]int](caches, TierCategoryCounts, 1, cfg.BrowseCacheTTL)
	if err != nil {
		return nil, err
	}

	caps := make(map[storage.Category]int, len(cfg.CategoryCaps))
	for c, n := range cfg.CategoryCaps {
		caps[c] = n
	}

	return &Narrower{
		tags:           tags,
		posts:          posts,
		resolver:       resolver,
		caps:           caps,
		blacklist:      blacklistPatterns(cfg.Blacklist),
		minLiterals:    cfg.MinLiterals,
		postSets:       postSets,
		responses:      responses,
		browse:         browse,
		categoryCounts: categoryCounts,
	}, nil
}

func blacklistPatterns(names []string) []string {
	patterns := make([]string, 0, len(names))
	for _, name := range names {
		name = normalizeName(name)
		if name == "" {
			continue
		}
		patterns = append(patterns, ToStorePattern(name))
	}
	return patterns
}

// TagTree returns suggestions for req. With no selection it lists the top tags of
// each category under its cap. With a selection it counts, in one aggregate, how
// many posts carrying every selected tag also carry each other tag.
func (n *Narrower) TagTree(ctx context.Context, req TagTreeRequest) (*TagTreeResult, error) {
	gen := n.responses.Generation()
	limit := clampLimit(req.Limit, DefaultTreeLimit, MaxTreeLimit)
	filter := normalizeName(req.Filter)
	selected := normalizeNames(req.Selected)

	if len(selected) == 0 {
		return n.topByCategory(ctx, gen, req, filter, limit)
	}

	resolved, err := n.resolver.Resolve(ctx, selected)
	if err != nil {
		return nil, err
	}
	result := TagTreeResult{Tags: []TagNode{}, SelectedTags: selected, Outcome: OutcomeMatched}
	ids := make([]int64, 0, len(selected))
	for _, name := range selected {
		id, ok := resolved[name]
		if !ok {
			result.UnresolvedTags = append(result.UnresolvedTags, name)
			continue
		}
		ids = append(ids, id)
	}
	if len(result.UnresolvedTags) > 0 {
		result.Outcome = OutcomeNoSuchTag
		return &result, nil
	}
	ids = sortedUnique(ids)

	key := treeKey(ids, req.Category, filter, limit)
	if cached, ok := n.responses.Get(key); ok {
		cached.SelectedTags = selected
		return &cached, nil
	}

	postIDs, err := n.postSet(ctx, ids)
	if err != nil {
		return nil, err
	}
	result.PostCount = len(postIDs)

	counts, err := n.tags.CoOccurring(ctx, postIDs, ids, n.filter(req.Category, filter), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to count co-occurring tags: %w", err)
	}
	for _, c := range counts {
		if c.Count <= 0 {
			continue
		}
		result.Tags = append(result.Tags, TagNode{ID: c.ID, Name: c.Name, Category: c.Category, Count: c.Count})
	}

	n.responses.AddIfCurrent(gen, key, result)
	return &result, nil
}

func (n *Narrower) topByCategory(ctx context.Context, gen cache.Generation, req TagTreeRequest, filter string, limit int) (*TagTreeResult, error) {
	// Without a category, the request limit only lowers each category's cap.
	bound := limit
	if req.Category == "" {
		bound = max(req.Limit, 0)
	}
	key := treeKey(nil, req.Category, filter, bound)
	tier := n.responses
	if req.Category == "" && filter == "" {
		tier = n.browse
	}
	if cached, ok := tier.Get(key); ok {
		return &cached, nil
	}

	categories := storage.Categories
	if req.Category != "" {
		categories = []storage.Category{req.Category}
	}

	groups := make([][]storage.Tag, len(categories))
	var total int
	g, gctx := errgroup.WithContext(ctx)
	for i, category := range categories {
		capacity := n.caps[category]
		switch {
		case req.Category != "":
			capacity = limit
		case bound > 0 && bound < capacity:
			capacity = bound
		}
		if capacity <= 0 {
			continue
		}
		f := n.filter(category, filter)
		f.NonEmpty = true
		g.Go(func() error {
			tags, err := n.tags.Find(gctx, f, capacity)
			if err != nil {
				return fmt.Errorf("failed to list %s tags: %w", category, err)
			}
			groups[i] = tags
			return nil
		})
	}
	g.Go(func() error {
		var err error
		total, err = n.posts.Count(gctx, storage.Where{})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := TagTreeResult{Tags: []TagNode{}, SelectedTags: []string{}, PostCount: total, Outcome: OutcomeMatched}
	for _, tags := range groups {
		for _, tag := range tags {
			result.Tags = append(result.Tags, TagNode{ID: tag.ID, Name: tag.Name, Category: tag.Category, Count: tag.PostCount})
		}
	}

	tier.AddIfCurrent(gen, key, result)
	return &result, nil
}

// postSet returns the ids of posts carrying every tag in ids (sorted, unique).
func (n *Narrower) postSet(ctx context.Context, ids []int64) ([]int64, error) {
	key := idsKey(ids)
	gen := n.postSets.Generation()
	if cached, ok := n.postSets.Get(key); ok {
		return cached, nil
	}
	postIDs, err := n.posts.IDsWithAllTags(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to compute post set: %w", err)
	}
	n.postSets.AddIfCurrent(gen, key, postIDs)
	return postIDs, nil
}

func (n *Narrower) filter(category storage.Category, text string) storage.TagFilter {
	f := storage.TagFilter{Category: category, ExcludePatterns: n.blacklist}
	if text != "" {
		f.NamePattern = "%" + storage.EscapeLike(text) + "%"
	}
	return f
}

// Autocomplete suggests tags whose name starts with prefix, or matches it when it
// contains '*'. Input too short to form a valid pattern yields no suggestions.
func (n *Narrower) Autocomplete(ctx context.Context, prefix string, limit int) ([]storage.Tag, error) {
	pattern, _ := splitNegation(normalizeName(prefix))
	if pattern == "" {
		return []storage.Tag{}, nil
	}
	if !strings.Contains(pattern, wildcardChar) {
		pattern += wildcardChar
	}
	if err := ValidatePattern(pattern, n.minLiterals); err != nil {
		return []storage.Tag{}, nil
	}

	tags, err := n.tags.Find(ctx, storage.TagFilter{
		NamePattern:     ToStorePattern(pattern),
		ExcludePatterns: n.blacklist,
	}, clampLimit(limit, DefaultAutocompleteLimit, MaxAutocompleteLimit))
	if err != nil {
		return nil, fmt.Errorf("failed to autocomplete tags: %w", err)
	}
	return tags, nil
}

// CategoryCounts returns the number of tags per category.
func (n *Narrower) CategoryCounts(ctx context.Context) (map[storage.Category]int, error) {
	const key = "all"
	gen := n.categoryCounts.Generation()
	if cached, ok := n.categoryCounts.Get(key); ok {
		return cached, nil
	}
	counts, err := n.tags.CategoryCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count categories: %w", err)
	}
	n.categoryCounts.AddIfCurrent(gen, key, counts)
	return counts, nil
}

func treeKey(ids []int64, category storage.Category, filter string, limit int) string {
	return fmt.Sprintf("%s|%s|%s|%d", idsKey(ids), category, filter, limit)
}

func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

func normalizeNames(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		name = normalizeName(name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

func sortedUnique(ids []int64) []int64 {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if len(out) > 0 && out[len(out)-1] == id {
			continue
		}
		out = append(out, id)
	}
	return out
}
