package tokenizer

import (
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/kerem-kaynak/ja-analysis/pkg/morph"
)

// morphemeWeight approximates the memory of one cached morpheme.
const morphemeWeight = 64

func weightOf(key string, list *morph.List) int64 {
	return int64(len(key) + list.Len()*morphemeWeight)
}

// weightedStore is an LRU bounded by entry count and by total weight.
type weightedStore struct {
	mu        sync.Mutex // serializes puts for weight accounting
	cache     *lru.Cache[string, *morph.List]
	budget    int64
	weight    atomic.Int64
	evictions *atomic.Uint64
}

func newWeightedStore(capacity, budget int, evictions *atomic.Uint64) *weightedStore {
	s := &weightedStore{
		budget:    int64(budget),
		evictions: evictions,
	}
	// capacity is positive, so NewWithEvict cannot fail
	s.cache, _ = lru.NewWithEvict[string, *morph.List](capacity, s.onEvict)
	return s
}

func (s *weightedStore) onEvict(key string, list *morph.List) {
	s.weight.Add(-weightOf(key, list))
	s.evictions.Add(1)
}

func (s *weightedStore) get(key string) (*morph.List, bool) {
	return s.cache.Get(key)
}

func (s *weightedStore) put(key string, list *morph.List) {
	w := weightOf(key, list)
	if w > s.budget {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.cache.Peek(key); ok {
		// replacing a value does not trigger the eviction callback
		s.weight.Add(-weightOf(key, old))
	}
	s.cache.Add(key, list)
	s.weight.Add(w)

	for s.weight.Load() > s.budget {
		if _, _, ok := s.cache.RemoveOldest(); !ok {
			break
		}
	}
}

func (s *weightedStore) len() int {
	return s.cache.Len()
}

func (s *weightedStore) purge() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Purge()
}
