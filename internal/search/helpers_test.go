package search

import (
	"sort"
	"testing"
	"time"

	"tagboard/internal/cache"
	"tagboard/internal/storage"
	"tagboard/internal/storage/storagetest"
)

type engineConfig struct {
	wildcard WildcardConfig
	pageSize int
	narrower NarrowerConfig
}

type engine struct {
	caches    *cache.Group
	resolver  *Resolver
	wildcards *WildcardEngine
	composer  *Composer
	narrower  *Narrower
}

func defaultEngineConfig() engineConfig {
	return engineConfig{
		wildcard: WildcardConfig{TagLimit: 500, MinLiterals: 2, CacheSize: 64, CacheTTL: time.Minute},
		pageSize: 40,
		narrower: NarrowerConfig{
			CategoryCaps: map[storage.Category]int{
				storage.CategoryArtist:    15,
				storage.CategoryCopyright: 15,
				storage.CategoryCharacter: 20,
				storage.CategoryGeneral:   40,
				storage.CategoryMeta:      10,
			},
			MinLiterals:      2,
			PostSetCacheSize: 16,
			TreeCacheSize:    16,
			TreeCacheTTL:     time.Minute,
			BrowseCacheTTL:   time.Hour,
		},
	}
}

// newEngine wires every search component over the given stores with isolated caches.
func newEngine(t testing.TB, tags storage.TagStore, posts storage.PostStore, mods ...func(*engineConfig)) *engine {
	t.Helper()

	cfg := defaultEngineConfig()
	for _, mod := range mods {
		mod(&cfg)
	}

	caches := cache.NewGroup(nil)
	resolver, err := NewResolver(tags, caches, 128)
	if err != nil {
		t.Fatalf("NewResolver() error = %v", err)
	}
	wildcards, err := NewWildcardEngine(tags, caches, cfg.wildcard)
	if err != nil {
		t.Fatalf("NewWildcardEngine() error = %v", err)
	}
	composer, err := NewComposer(posts, resolver, wildcards, DefaultRegistry(), caches, ComposerConfig{
		PageSize:     cfg.pageSize,
		MetaCountTTL: time.Minute,
	})
	if err != nil {
		t.Fatalf("NewComposer() error = %v", err)
	}
	narrower, err := NewNarrower(tags, posts, resolver, caches, cfg.narrower)
	if err != nil {
		t.Fatalf("NewNarrower() error = %v", err)
	}

	return &engine{
		caches:    caches,
		resolver:  resolver,
		wildcards: wildcards,
		composer:  composer,
		narrower:  narrower,
	}
}

// newStoreEngine seeds a SQLite store and wires the engine over real repositories.
func newStoreEngine(t testing.TB, posts []storagetest.PostSpec, mods ...func(*engineConfig)) (*engine, *storagetest.Fixture) {
	t.Helper()

	db := storagetest.NewDB(t)
	f := storagetest.Seed(t, db, posts)
	e := newEngine(t, storage.NewTagRepo(db), storage.NewPostRepo(db), mods...)
	return e, f
}

// exampleScenario is P1 [artist:jane, blue_eyes], P2 [artist:jane, red_eyes], P3 [artist:sam, blue_eyes].
func exampleScenario() []storagetest.PostSpec {
	return []storagetest.PostSpec{
		{Label: "P1", Tags: []string{"artist:jane", "blue_eyes"}},
		{Label: "P2", Tags: []string{"artist:jane", "red_eyes"}},
		{Label: "P3", Tags: []string{"artist:sam", "blue_eyes"}},
	}
}

func sortedLabels(f *storagetest.Fixture, posts []storage.Post) []string {
	labels := f.Labels(posts)
	sort.Strings(labels)
	return labels
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
