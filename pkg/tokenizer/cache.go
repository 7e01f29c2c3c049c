package tokenizer

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/kerem-kaynak/ja-analysis/pkg/input"
	"github.com/kerem-kaynak/ja-analysis/pkg/morph"
)

const (
	// DefaultCapacity is the default number of cached analyses per generation.
	DefaultCapacity = 32
	// DefaultWeight is the default weight budget of the weighted strategy.
	DefaultWeight = 4 << 20
)

// Strategy selects the eviction policy.
type Strategy int

const (
	// StrategyGenerational keeps two generations and drops the older one
	// when the newer fills up.
	StrategyGenerational Strategy = iota
	// StrategyWeighted keeps a recency list bounded by entry count and total
	// weight.
	StrategyWeighted
)

// ParseStrategy parses "generational" or "weighted". An empty string selects
// StrategyGenerational.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "generational", "":
		return StrategyGenerational, nil
	case "weighted":
		return StrategyWeighted, nil
	}
	return StrategyGenerational, fmt.Errorf("invalid cache strategy %q", s)
}

func (s Strategy) String() string {
	switch s {
	case StrategyGenerational:
		return "generational"
	case StrategyWeighted:
		return "weighted"
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// Options configures a Cache. Options is comparable and identifies a cache
// in the registry.
type Options struct {
	// Capacity bounds entries; <= 0 disables caching.
	Capacity int
	// MaxInput bounds cacheable input in runes.
	MaxInput int
	Strategy Strategy
	// Weight is the weight budget of StrategyWeighted; <= 0 disables caching.
	Weight    int
	Extractor input.Strategy
}

// DefaultOptions returns the default cache configuration.
func DefaultOptions() Options {
	return Options{
		Capacity:  DefaultCapacity,
		MaxInput:  input.DefaultMaxSize,
		Strategy:  StrategyGenerational,
		Weight:    DefaultWeight,
		Extractor: input.StrategyChained,
	}
}

// Stats is a point-in-time view of cache counters.
type Stats struct {
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Evictions uint64 `json:"evictions"`
	Entries   int    `json:"entries"`
}

type store interface {
	get(key string) (*morph.List, bool)
	put(key string, list *morph.List)
	len() int
	purge()
}

// Cache maps input text to its mode C analysis. One cache serves every
// analysis of an index and is safe for concurrent use.
//
// Concurrent misses on one key are collapsed, but a key may still be
// analyzed twice when a lookup races an eviction; the last write is kept.
type Cache struct {
	opts      Options
	extractor *input.Extractor
	store     store
	group     singleflight.Group
	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// NewCache creates a cache with opts.
func NewCache(opts Options) *Cache {
	c := &Cache{
		opts:      opts,
		extractor: input.NewExtractor(opts.Extractor, opts.MaxInput),
	}
	logger := slog.Default().With("component", "analysis-cache")

	switch {
	case opts.Capacity <= 0:
	case opts.Strategy == StrategyWeighted:
		if opts.Weight > 0 {
			c.store = newWeightedStore(opts.Capacity, opts.Weight, &c.evictions)
		}
	default:
		c.store = newGenerationalStore(opts.Capacity, &c.evictions, logger)
	}
	return c
}

// Options returns the configuration the cache was created with.
func (c *Cache) Options() Options {
	return c.opts
}

// Enabled reports whether the cache stores anything.
func (c *Cache) Enabled() bool {
	return c != nil && c.store != nil
}

// Analyze returns the morphemes of r in mode. Input that fits the extraction
// bound is served from the cache; anything longer is streamed through engine.
func (c *Cache) Analyze(engine morph.Tokenizer, mode morph.SplitMode, r io.Reader) (MorphemeIterator, error) {
	if !c.Enabled() || !c.extractor.CanExtract(r) {
		return NonCachedAnalysis(engine, r, mode), nil
	}

	res, err := c.extractor.Extract(r)
	if err != nil {
		return nil, morph.Wrap(morph.StageExtraction, err)
	}
	if res.Remaining {
		return NonCachedAnalysis(engine, input.Concat(res.Data, res.Rest), mode), nil
	}

	list, err := c.lookup(engine, res.Data)
	if err != nil {
		return nil, err
	}
	return CachedAnalysis(list, mode), nil
}

func (c *Cache) lookup(engine morph.Tokenizer, key string) (*morph.List, error) {
	dict := engine.Dictionary()
	if list, ok := c.store.get(key); ok && list.Dictionary() == dict {
		c.hits.Add(1)
		return list, nil
	}
	c.misses.Add(1)

	v, err, _ := c.group.Do(key, func() (any, error) {
		return c.compute(engine, key)
	})
	if err != nil {
		return nil, err
	}
	list := v.(*morph.List)
	// a concurrent caller on another dictionary instance won the flight
	if list.Dictionary() != dict {
		return c.compute(engine, key)
	}
	return list, nil
}

func (c *Cache) compute(engine morph.Tokenizer, key string) (*morph.List, error) {
	list, err := engine.Tokenize(morph.SplitModeC, key)
	if err != nil {
		return nil, morph.Wrap(morph.StageTokenizer, err)
	}
	c.store.put(key, list)
	return list, nil
}

// Stats returns the current counters.
func (c *Cache) Stats() Stats {
	if c == nil {
		return Stats{}
	}
	s := Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
	if c.store != nil {
		s.Entries = c.store.len()
	}
	return s
}

// Purge drops every entry. Dropped entries count as evictions.
func (c *Cache) Purge() {
	if c.Enabled() {
		c.store.purge()
	}
}
