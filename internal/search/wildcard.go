package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tagboard/internal/cache"
	"tagboard/internal/storage"
)

// TierWildcards is the name of the wildcard resolution cache tier.
const TierWildcards = "wildcards"

const wildcardChar = "*"

var (
	// ErrPatternTooBroad is returned for an included pattern without literal characters.
	ErrPatternTooBroad = errors.New("pattern is too broad")
	// ErrCannotExcludeAll is returned for an excluded pattern without literal characters.
	ErrCannotExcludeAll = errors.New("cannot exclude all tags")
	// ErrTooFewLiterals is returned when a pattern has fewer literal characters than required.
	ErrTooFewLiterals = errors.New("pattern has too few literal characters")
)

// PatternError reports an invalid wildcard token.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid wildcard %q: %v", e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

// IsWildcard reports whether token, ignoring a leading negation marker, contains '*'.
func IsWildcard(token string) bool {
	pattern, _ := splitNegation(token)
	return strings.Contains(pattern, wildcardChar)
}

// ValidatePattern checks a wildcard token before any store access.
// A pattern needs at least minLiterals non-'*' characters.
func ValidatePattern(token string, minLiterals int) error {
	pattern, negated := splitNegation(token)

	literals := 0
	for _, r := range pattern {
		if r != '*' {
			literals++
		}
	}

	switch {
	case literals == 0 && negated:
		return &PatternError{Pattern: token, Err: ErrCannotExcludeAll}
	case literals == 0:
		return &PatternError{Pattern: token, Err: ErrPatternTooBroad}
	case literals < minLiterals:
		return &PatternError{
			Pattern: token,
			Err:     fmt.Errorf("%w: need %d, got %d", ErrTooFewLiterals, minLiterals, literals),
		}
	}
	return nil
}

// ToStorePattern translates a user pattern into a LIKE pattern for use with ESCAPE '\'.
// LIKE metacharacters in the input are escaped first; only then is '*' replaced with '%'.
func ToStorePattern(pattern string) string {
	return strings.ReplaceAll(storage.EscapeLike(pattern), wildcardChar, "%")
}

// WildcardConfig bounds wildcard resolution.
type WildcardConfig struct {
	TagLimit    int
	MinLiterals int
	CacheSize   int
	CacheTTL    time.Duration
}

// WildcardEngine validates and resolves wildcard tokens to tag sets.
type WildcardEngine struct {
	tags        storage.TagStore
	cache       *cache.TTL[string, ResolvedWildcard]
	limit       int
	minLiterals int
}

// NewWildcardEngine creates an engine with its own TTL cache tier.
func NewWildcardEngine(tags storage.TagStore, caches *cache.Group, cfg WildcardConfig) (*WildcardEngine, error) {
	if cfg.TagLimit <= 0 {
		return nil, fmt.Errorf("wildcard tag limit must be positive, got %d", cfg.TagLimit)
	}
	c, err := cache.NewTTL[string, ResolvedWildcard](caches, TierWildcards, cfg.CacheSize, cfg.CacheTTL)
	if err != nil {
		return nil, err
	}
	return &WildcardEngine{
		tags:        tags,
		cache:       c,
		limit:       cfg.TagLimit,
		minLiterals: cfg.MinLiterals,
	}, nil
}

// MinLiterals returns the configured minimum literal character count.
func (e *WildcardEngine) MinLiterals() int {
	return e.minLiterals
}

// Validate checks token against the engine's minimum literal count.
func (e *WildcardEngine) Validate(token string) error {
	return ValidatePattern(token, e.minLiterals)
}

// Resolve expands token to the most used matching tags. At most TagLimit tags are
// returned; Truncated is set when more exist. Results are cached by pattern without
// its negation marker, so "x*" and "-x*" share one store query.
func (e *WildcardEngine) Resolve(ctx context.Context, token string) (ResolvedWildcard, error) {
	token = normalizeName(token)
	if err := e.Validate(token); err != nil {
		return ResolvedWildcard{}, err
	}
	pattern, negated := splitNegation(token)

	gen := e.cache.Generation()
	if cached, ok := e.cache.Get(pattern); ok {
		cached.Negated = negated
		return cached, nil
	}

	tags, err := e.tags.Find(ctx, storage.TagFilter{NamePattern: ToStorePattern(pattern)}, e.limit+1)
	if err != nil {
		return ResolvedWildcard{}, fmt.Errorf("failed to resolve wildcard: %w", err)
	}

	resolved := ResolvedWildcard{
		Pattern:    pattern,
		TagIDs:     make([]int64, 0, len(tags)),
		TagNames:   make([]string, 0, len(tags)),
		Categories: make([]storage.Category, 0, len(tags)),
	}
	if len(tags) > e.limit {
		tags = tags[:e.limit]
		resolved.Truncated = true
	}
	for _, tag := range tags {
		resolved.TagIDs = append(resolved.TagIDs, tag.ID)
		resolved.TagNames = append(resolved.TagNames, tag.Name)
		resolved.Categories = append(resolved.Categories, tag.Category)
	}
	e.cache.AddIfCurrent(gen, pattern, resolved)

	resolved.Negated = negated
	return resolved, nil
}
