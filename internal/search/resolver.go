package search

import (
	"context"
	"fmt"

	"tagboard/internal/cache"
	"tagboard/internal/storage"
)

// TierTagIDs is the name of the name-to-id cache tier.
const TierTagIDs = "tag_ids"

// Resolver maps tag names to ids through a bounded LRU.
// Concurrent misses for the same name are not coalesced.
type Resolver struct {
	tags  storage.TagStore
	cache *cache.LRU[string, int64]
}

// NewResolver creates a Resolver whose cache tier holds up to size names.
func NewResolver(tags storage.TagStore, caches *cache.Group, size int) (*Resolver, error) {
	c, err := cache.NewLRU[string, int64](caches, TierTagIDs, size)
	if err != nil {
		return nil, err
	}
	return &Resolver{tags: tags, cache: c}, nil
}

// Resolve returns ids keyed by lowercased name. Unknown names are absent from
// the map; they are not an error and are not cached. All misses are fetched in
// one store round trip.
func (r *Resolver) Resolve(ctx context.Context, names []string) (map[string]int64, error) {
	gen := r.cache.Generation()
	resolved := make(map[string]int64, len(names))
	var misses []string
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

		if id, ok := r.cache.Get(name); ok {
			resolved[name] = id
			continue
		}
		misses = append(misses, name)
	}

	if len(misses) == 0 {
		return resolved, nil
	}

	tags, err := r.tags.GetByNames(ctx, misses)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve tag names: %w", err)
	}
	for _, tag := range tags {
		r.cache.AddIfCurrent(gen, tag.Name, tag.ID)
		resolved[tag.Name] = tag.ID
	}

	return resolved, nil
}
