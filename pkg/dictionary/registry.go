package dictionary

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/kerem-kaynak/ja-analysis/pkg/morph"
)

var ErrNotLoaded = errors.New("dictionary not loaded")

// Loader builds a fresh dictionary instance for a configuration name.
type Loader func(name string) (morph.Dictionary, error)

type entry struct {
	dict *Reloadable
	refs int
}

// Registry shares one Reloadable per configuration name among all holders.
// An entry lives while it is acquired; the last release drops it and closes
// the instance if it implements io.Closer.
type Registry struct {
	loader  Loader
	mu      sync.Mutex
	entries map[string]*entry
	group   singleflight.Group
	logger  *slog.Logger
}

// NewRegistry creates a registry that builds dictionaries with loader.
func NewRegistry(loader Loader) *Registry {
	return &Registry{
		loader:  loader,
		entries: make(map[string]*entry),
		logger:  slog.Default().With("component", "dictionary-registry"),
	}
}

// Acquire returns the shared handle for name, loading it on first use. The
// returned release func must be called once the caller no longer needs it.
func (r *Registry) Acquire(name string) (*Reloadable, func(), error) {
	for {
		r.mu.Lock()
		if e, ok := r.entries[name]; ok {
			e.refs++
			r.mu.Unlock()
			return e.dict, r.releaser(name, e), nil
		}
		r.mu.Unlock()

		if _, err, _ := r.group.Do(name, func() (any, error) {
			return nil, r.load(name)
		}); err != nil {
			return nil, nil, err
		}
		// the loaded entry may have been released by others before we
		// could pin it; loop until we pin a live one
	}
}

func (r *Registry) load(name string) error {
	r.mu.Lock()
	_, ok := r.entries[name]
	r.mu.Unlock()
	if ok {
		return nil
	}

	dict, err := r.loader(name)
	if err != nil {
		return morph.Wrap(morph.StageDictionary, fmt.Errorf("loading %s: %w", name, err))
	}

	r.mu.Lock()
	r.entries[name] = &entry{dict: New(name, dict)}
	r.mu.Unlock()
	r.logger.Info("dictionary loaded", "name", name)
	return nil
}

func (r *Registry) releaser(name string, e *entry) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			e.refs--
			last := e.refs == 0 && r.entries[name] == e
			if last {
				delete(r.entries, name)
			}
			r.mu.Unlock()

			if !last {
				return
			}
			if c, ok := e.dict.Get().(io.Closer); ok {
				if err := c.Close(); err != nil {
					r.logger.Warn("closing dictionary failed", "name", name, "error", err)
				}
			}
			r.logger.Info("dictionary released", "name", name)
		})
	}
}

// Reload loads a fresh instance for name and swaps it into the live handle.
// In-flight analyses keep the instance they started with.
func (r *Registry) Reload(name string) (uint64, error) {
	r.mu.Lock()
	e, ok := r.entries[name]
	r.mu.Unlock()
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNotLoaded, name)
	}

	dict, err := r.loader(name)
	if err != nil {
		r.logger.Error("dictionary reload failed", "name", name, "error", err)
		return 0, morph.Wrap(morph.StageDictionary, fmt.Errorf("reloading %s: %w", name, err))
	}

	// The last holder may have released the entry while loading. The swap
	// happens under r.mu so the releaser closes whichever instance it sees.
	r.mu.Lock()
	if r.entries[name] != e {
		r.mu.Unlock()
		if c, ok := dict.(io.Closer); ok {
			if err := c.Close(); err != nil {
				r.logger.Warn("closing dictionary failed", "name", name, "error", err)
			}
		}
		return 0, fmt.Errorf("%w: %s", ErrNotLoaded, name)
	}
	err = e.dict.Reload(New(name, dict))
	version := e.dict.Version()
	r.mu.Unlock()
	if err != nil {
		return 0, morph.Wrap(morph.StageDictionary, err)
	}

	r.logger.Info("dictionary reloaded", "name", name, "version", version)
	return version, nil
}

// Versions returns the current version of every live dictionary.
func (r *Registry) Versions() map[string]uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]uint64, len(r.entries))
	for name, e := range r.entries {
		out[name] = e.dict.Version()
	}
	return out
}

// Names returns the live dictionary names in sorted order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
