package tokenizer

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/kerem-kaynak/ja-analysis/pkg/morph"
)

type generation struct {
	mu      sync.RWMutex
	entries map[string]*morph.List
}

func newGeneration(capacity int) *generation {
	return &generation{entries: make(map[string]*morph.List, capacity)}
}

func (g *generation) get(key string) (*morph.List, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	list, ok := g.entries[key]
	return list, ok
}

func (g *generation) size() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.entries)
}

// missingFrom counts the keys of g that other does not hold. Keys promoted
// from g into other stay live when g is dropped.
func (g *generation) missingFrom(other *generation) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	other.mu.RLock()
	defer other.mu.RUnlock()
	n := 0
	for key := range g.entries {
		if _, ok := other.entries[key]; !ok {
			n++
		}
	}
	return n
}

// generationalStore is a pseudo-LRU of two generations. Inserts go to main;
// when main is full it becomes the fallback and the old fallback is dropped.
// Hits in the fallback are copied back into main. At most 2*capacity entries
// are live.
type generationalStore struct {
	capacity  int
	rotateMu  sync.Mutex
	main      atomic.Pointer[generation]
	fallback  atomic.Pointer[generation]
	evictions *atomic.Uint64
	logger    *slog.Logger
}

func newGenerationalStore(capacity int, evictions *atomic.Uint64, logger *slog.Logger) *generationalStore {
	s := &generationalStore{
		capacity:  capacity,
		evictions: evictions,
		logger:    logger,
	}
	s.main.Store(newGeneration(capacity))
	s.fallback.Store(newGeneration(0))
	return s
}

func (s *generationalStore) get(key string) (*morph.List, bool) {
	if list, ok := s.main.Load().get(key); ok {
		return list, true
	}
	if list, ok := s.fallback.Load().get(key); ok {
		s.put(key, list)
		return list, true
	}
	return nil, false
}

func (s *generationalStore) put(key string, list *morph.List) {
	for {
		main := s.main.Load()
		main.mu.Lock()
		_, exists := main.entries[key]
		if exists || len(main.entries) < s.capacity {
			main.entries[key] = list
			main.mu.Unlock()
			return
		}
		main.mu.Unlock()
		s.rotate(main)
	}
}

func (s *generationalStore) rotate(full *generation) {
	s.rotateMu.Lock()
	defer s.rotateMu.Unlock()
	if s.main.Load() != full {
		return
	}
	dropped := s.fallback.Load().missingFrom(full)
	s.fallback.Store(full)
	s.main.Store(newGeneration(s.capacity))
	s.evictions.Add(uint64(dropped))
	s.logger.Debug("cache generation rotated", "dropped", dropped)
}

func (s *generationalStore) len() int {
	return s.main.Load().size() + s.fallback.Load().size()
}

func (s *generationalStore) purge() {
	s.rotateMu.Lock()
	defer s.rotateMu.Unlock()
	main := s.main.Load()
	dropped := main.size() + s.fallback.Load().missingFrom(main)
	s.main.Store(newGeneration(s.capacity))
	s.fallback.Store(newGeneration(0))
	s.evictions.Add(uint64(dropped))
}
