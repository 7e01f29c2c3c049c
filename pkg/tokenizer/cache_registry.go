package tokenizer

import (
	"log/slog"
	"runtime"
	"sort"
	"sync"
	"weak"
)

type cacheKey struct {
	index string
	opts  Options
}

// CacheRegistry hands out one Cache per index and configuration. Caches are
// held weakly: once no tokenizer uses a cache it can be collected, and the
// next Get creates a fresh one.
type CacheRegistry struct {
	mu     sync.Mutex
	caches map[cacheKey]weak.Pointer[Cache]
	logger *slog.Logger
}

// NewCacheRegistry creates an empty registry.
func NewCacheRegistry() *CacheRegistry {
	return &CacheRegistry{
		caches: make(map[cacheKey]weak.Pointer[Cache]),
		logger: slog.Default().With("component", "cache-registry"),
	}
}

// Get returns the live cache for index and opts, creating it if needed.
func (r *CacheRegistry) Get(index string, opts Options) *Cache {
	key := cacheKey{index: index, opts: opts}

	r.mu.Lock()
	defer r.mu.Unlock()

	if wp, ok := r.caches[key]; ok {
		if c := wp.Value(); c != nil {
			return c
		}
	}

	c := NewCache(opts)
	r.caches[key] = weak.Make(c)
	runtime.AddCleanup(c, r.forget, key)
	r.logger.Info("analysis cache created",
		"index", index,
		"strategy", opts.Strategy.String(),
		"capacity", opts.Capacity,
		"max_input", opts.MaxInput,
	)
	return c
}

func (r *CacheRegistry) forget(key cacheKey) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if wp, ok := r.caches[key]; ok && wp.Value() == nil {
		delete(r.caches, key)
	}
}

// IndexStats are the counters of one live cache.
type IndexStats struct {
	Index   string
	Options Options
	Stats   Stats
}

// Snapshot returns the stats of every live cache sorted by index.
func (r *CacheRegistry) Snapshot() []IndexStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]IndexStats, 0, len(r.caches))
	for key, wp := range r.caches {
		c := wp.Value()
		if c == nil {
			continue
		}
		out = append(out, IndexStats{Index: key.index, Options: key.opts, Stats: c.Stats()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}
