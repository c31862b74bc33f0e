// Package cache provides the in-process cache tiers used by the search engine.
// Tiers register with a Group, which owns the single coarse InvalidateAll.
package cache

import (
	"fmt"
	"sort"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Recorder receives cache events. *metrics.Metrics implements it.
type Recorder interface {
	CacheHit(tier string)
	CacheMiss(tier string)
	CacheInvalidated()
}

type tier interface {
	Purge()
	Len() int
}

// Generation identifies the span between two InvalidateAll calls. A value read
// from the store under one generation must not be cached under a later one.
type Generation uint64

// Group owns a set of named tiers.
type Group struct {
	mu       sync.Mutex
	tiers    map[string]tier
	recorder Recorder

	// genMu orders InvalidateAll against AddIfCurrent.
	genMu sync.RWMutex
	gen   Generation
}

// NewGroup creates an empty group. rec may be nil.
func NewGroup(rec Recorder) *Group {
	return &Group{
		tiers:    make(map[string]tier),
		recorder: rec,
	}
}

func (g *Group) register(name string, t tier) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.tiers[name]; exists {
		return fmt.Errorf("cache tier %q already registered", name)
	}
	g.tiers[name] = t
	return nil
}

// InvalidateAll purges every registered tier and starts a new generation, so
// lookups that missed before the call cannot repopulate a tier afterwards.
// Safe to call repeatedly.
func (g *Group) InvalidateAll() {
	g.genMu.Lock()
	defer g.genMu.Unlock()
	g.mu.Lock()
	defer g.mu.Unlock()

	g.gen++
	for _, t := range g.tiers {
		t.Purge()
	}
	if g.recorder != nil {
		g.recorder.CacheInvalidated()
	}
}

// Generation returns the current generation. Capture it before reading the
// store and pass it to AddIfCurrent.
func (g *Group) Generation() Generation {
	g.genMu.RLock()
	defer g.genMu.RUnlock()
	return g.gen
}

// ifCurrent runs add unless InvalidateAll has run since gen was captured.
func (g *Group) ifCurrent(gen Generation, add func()) bool {
	g.genMu.RLock()
	defer g.genMu.RUnlock()
	if gen != g.gen {
		return false
	}
	add()
	return true
}

// Stats returns the current entry count per tier.
func (g *Group) Stats() map[string]int {
	g.mu.Lock()
	defer g.mu.Unlock()

	stats := make(map[string]int, len(g.tiers))
	for name, t := range g.tiers {
		stats[name] = t.Len()
	}
	return stats
}

// Tiers lists registered tier names in sorted order.
func (g *Group) Tiers() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	names := make([]string, 0, len(g.tiers))
	for name := range g.tiers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (g *Group) hit(name string) {
	if g.recorder != nil {
		g.recorder.CacheHit(name)
	}
}

func (g *Group) miss(name string) {
	if g.recorder != nil {
		g.recorder.CacheMiss(name)
	}
}

// LRU is a bounded least-recently-used tier.
type LRU[K comparable, V any] struct {
	name  string
	group *Group
	c     *lru.Cache[K, V]
}

// NewLRU creates an LRU tier holding at most size entries and registers it with g.
func NewLRU[K comparable, V any](g *Group, name string, size int) (*LRU[K, V], error) {
	c, err := lru.New[K, V](size)
	if err != nil {
		return nil, fmt.Errorf("cache tier %q: %w", name, err)
	}
	l := &LRU[K, V]{name: name, group: g, c: c}
	if err := g.register(name, l); err != nil {
		return nil, err
	}
	return l, nil
}

// Get returns the cached value for key.
func (l *LRU[K, V]) Get(key K) (V, bool) {
	v, ok := l.c.Get(key)
	if ok {
		l.group.hit(l.name)
	} else {
		l.group.miss(l.name)
	}
	return v, ok
}

// Add stores value under key, evicting the least recently used entry when full.
// Values read from the store go through AddIfCurrent instead.
func (l *LRU[K, V]) Add(key K, value V) {
	l.c.Add(key, value)
}

// Generation returns the owning group's current generation.
func (l *LRU[K, V]) Generation() Generation {
	return l.group.Generation()
}

// AddIfCurrent stores value under key only if the group is still at gen. It
// reports whether the value was stored.
func (l *LRU[K, V]) AddIfCurrent(gen Generation, key K, value V) bool {
	return l.group.ifCurrent(gen, func() { l.c.Add(key, value) })
}

// Purge removes every entry.
func (l *LRU[K, V]) Purge() {
	l.c.Purge()
}

// Len returns the number of entries.
func (l *LRU[K, V]) Len() int {
	return l.c.Len()
}

// TTL is a bounded tier whose entries also expire a fixed duration after insertion.
type TTL[K comparable, V any] struct {
	name  string
	group *Group
	c     *expirable.LRU[K, V]
}

// NewTTL creates a TTL tier and registers it with g.
func NewTTL[K comparable, V any](g *Group, name string, size int, ttl time.Duration) (*TTL[K, V], error) {
	if size <= 0 {
		return nil, fmt.Errorf("cache tier %q: size must be positive, got %d", name, size)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("cache tier %q: ttl must be positive, got %s", name, ttl)
	}
	t := &TTL[K, V]{name: name, group: g, c: expirable.NewLRU[K, V](size, nil, ttl)}
	if err := g.register(name, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Get returns the cached value for key if it has not expired.
func (t *TTL[K, V]) Get(key K) (V, bool) {
	v, ok := t.c.Get(key)
	if ok {
		t.group.hit(t.name)
	} else {
		t.group.miss(t.name)
	}
	return v, ok
}

// Add stores value under key with the tier's TTL, whatever the generation.
func (t *TTL[K, V]) Add(key K, value V) {
	t.c.Add(key, value)
}

// Generation returns the owning group's current generation.
func (t *TTL[K, V]) Generation() Generation {
	return t.group.Generation()
}

// AddIfCurrent stores value under key only if the group is still at gen. It
// reports whether the value was stored.
func (t *TTL[K, V]) AddIfCurrent(gen Generation, key K, value V) bool {
	return t.group.ifCurrent(gen, func() { t.c.Add(key, value) })
}

// Purge removes every entry.
func (t *TTL[K, V]) Purge() {
	t.c.Purge()
}

// Len returns the number of entries, including any not yet reaped after expiry.
func (t *TTL[K, V]) Len() int {
	return t.c.Len()
}
