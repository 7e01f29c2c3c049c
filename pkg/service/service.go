// Package service wires configured dictionaries and indexes into analyzers.
package service

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/kerem-kaynak/ja-analysis/pkg/config"
	"github.com/kerem-kaynak/ja-analysis/pkg/dictionary"
	"github.com/kerem-kaynak/ja-analysis/pkg/input"
	"github.com/kerem-kaynak/ja-analysis/pkg/kagome"
	"github.com/kerem-kaynak/ja-analysis/pkg/lexicon"
	"github.com/kerem-kaynak/ja-analysis/pkg/morph"
	"github.com/kerem-kaynak/ja-analysis/pkg/tokenizer"
)

var ErrUnknownIndex = errors.New("unknown index")

// NewLoader builds dictionaries from their configuration.
func NewLoader(dicts map[string]config.DictionaryConfig) dictionary.Loader {
	return func(name string) (morph.Dictionary, error) {
		dc, ok := dicts[name]
		if !ok {
			return nil, fmt.Errorf("no configuration for dictionary %q", name)
		}
		switch dc.Engine {
		case config.EngineLexicon:
			d, err := lexicon.Open(dc.Path)
			if err != nil {
				return nil, err
			}
			return d, nil
		case config.EngineKagome:
			d, err := kagome.New(dc.Variant)
			if err != nil {
				return nil, err
			}
			return d, nil
		}
		return nil, fmt.Errorf("dictionary %q: unknown engine %q", name, dc.Engine)
	}
}

// Index analyzes text for one configured index. It is safe for concurrent
// use; each call borrows a pooled tokenizer.
type Index struct {
	name    string
	mode    morph.SplitMode
	discard bool
	dict    *dictionary.Reloadable
	cache   *tokenizer.Cache
	pools   [3]sync.Pool
}

func newIndex(name string, mode morph.SplitMode, discard bool, stopTags [][]string, dict *dictionary.Reloadable, cache *tokenizer.Cache) *Index {
	ix := &Index{
		name:    name,
		mode:    mode,
		discard: discard,
		dict:    dict,
		cache:   cache,
	}
	for m := range ix.pools {
		mode := morph.SplitMode(m)
		ix.pools[m].New = func() any {
			return tokenizer.NewCachingTokenizer(dictionary.NewTokenizer(dict), mode, cache, discard).
				WithStopTags(stopTags)
		}
	}
	return ix
}

// Name returns the index name.
func (ix *Index) Name() string { return ix.name }

// Mode returns the configured split mode.
func (ix *Index) Mode() morph.SplitMode { return ix.mode }

// Dictionary returns the dictionary handle of the index.
func (ix *Index) Dictionary() *dictionary.Reloadable { return ix.dict }

// CacheStats returns the counters of the index cache.
func (ix *Index) CacheStats() tokenizer.Stats { return ix.cache.Stats() }

// Analyze tokenizes r in mode and returns tokens at absolute offsets along
// with the length of the input in runes.
func (ix *Index) Analyze(r io.Reader, mode morph.SplitMode) ([]tokenizer.Token, int, error) {
	if mode < morph.SplitModeA || mode > morph.SplitModeC {
		return nil, 0, fmt.Errorf("invalid split mode %v", mode)
	}
	pool := &ix.pools[mode]
	tok := pool.Get().(*tokenizer.CachingTokenizer)
	defer pool.Put(tok)

	it, err := tok.Tokenize(r)
	if err != nil {
		return nil, 0, err
	}
	return tokenizer.Collect(it)
}

// AnalyzeString tokenizes text in the index mode.
func (ix *Index) AnalyzeString(text string) ([]tokenizer.Token, error) {
	tokens, _, err := ix.Analyze(input.NewStringReader(text), ix.mode)
	return tokens, err
}

// Service owns the shared dictionaries and caches of all indexes.
type Service struct {
	registry *dictionary.Registry
	caches   *tokenizer.CacheRegistry
	mu       sync.RWMutex
	indexes  map[string]*Index
	releases []func()
	logger   *slog.Logger
}

// New builds every configured index with dictionaries from cfg.
func New(cfg *config.Config) (*Service, error) {
	return NewWithLoader(cfg, NewLoader(cfg.Dictionaries))
}

// NewWithLoader builds every configured index with dictionaries from loader.
func NewWithLoader(cfg *config.Config, loader dictionary.Loader) (*Service, error) {
	s := &Service{
		registry: dictionary.NewRegistry(loader),
		caches:   tokenizer.NewCacheRegistry(),
		indexes:  make(map[string]*Index),
		logger:   slog.Default().With("component", "service"),
	}

	names := make([]string, 0, len(cfg.Indexes))
	for name := range cfg.Indexes {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := s.addIndex(name, cfg.Indexes[name]); err != nil {
			s.Close()
			return nil, fmt.Errorf("index %s: %w", name, err)
		}
	}
	return s, nil
}

func (s *Service) addIndex(name string, ic config.IndexConfig) error {
	mode, err := ic.Mode()
	if err != nil {
		return err
	}
	opts, err := ic.CacheOptions()
	if err != nil {
		return err
	}

	dict, release, err := s.registry.Acquire(ic.Dictionary)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.indexes[name] = newIndex(name, mode, ic.Punctuation(), ic.StopTagPrefixes(), dict, s.caches.Get(name, opts))
	s.releases = append(s.releases, release)
	s.mu.Unlock()

	s.logger.Info("index ready",
		"index", name,
		"dictionary", ic.Dictionary,
		"mode", mode.String(),
		"cache_strategy", opts.Strategy.String(),
		"cache_size", opts.Capacity,
	)
	return nil
}

// Index returns the named index.
func (s *Service) Index(name string) (*Index, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ix, ok := s.indexes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownIndex, name)
	}
	return ix, nil
}

// Indexes returns the index names in sorted order.
func (s *Service) Indexes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.indexes))
	for name := range s.indexes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reload rebuilds the named dictionary and swaps it under every index that
// uses it.
func (s *Service) Reload(name string) (uint64, error) {
	return s.registry.Reload(name)
}

// CacheStats returns the counters of every live cache.
func (s *Service) CacheStats() []tokenizer.IndexStats {
	return s.caches.Snapshot()
}

// DictionaryVersions returns the version of every loaded dictionary.
func (s *Service) DictionaryVersions() map[string]uint64 {
	return s.registry.Versions()
}

// Close drops all indexes and releases their dictionaries.
func (s *Service) Close() {
	s.mu.Lock()
	releases := s.releases
	s.releases = nil
	s.indexes = make(map[string]*Index)
	s.mu.Unlock()

	for _, release := range releases {
		release()
	}
}
