package dictionary

import (
	"sync/atomic"

	"github.com/kerem-kaynak/ja-analysis/pkg/morph"
)

type derived[T any] struct {
	value  T
	source *holder
}

// ReloadAware caches a value computed from a dictionary and recomputes it
// when the dictionary version moves.
type ReloadAware[T any] struct {
	compute func(morph.Dictionary) (T, error)
	state   atomic.Pointer[derived[T]]
}

// NewReloadAware returns an uninitialized handle; call MaybeReload before Get.
func NewReloadAware[T any](compute func(morph.Dictionary) (T, error)) *ReloadAware[T] {
	return &ReloadAware[T]{compute: compute}
}

// Derive creates a handle already computed from d.
func Derive[T any](d *Reloadable, compute func(morph.Dictionary) (T, error)) (*ReloadAware[T], error) {
	a := NewReloadAware(compute)
	if _, err := a.MaybeReload(d); err != nil {
		return nil, err
	}
	return a, nil
}

// MaybeReload returns the cached value if it was computed from the current
// version of d and recomputes it otherwise.
func (a *ReloadAware[T]) MaybeReload(d *Reloadable) (T, error) {
	h := d.snapshot()
	if s := a.state.Load(); s != nil && s.source == h {
		return s.value, nil
	}
	value, err := a.compute(h.dict)
	if err != nil {
		var zero T
		return zero, err
	}
	a.state.Store(&derived[T]{value: value, source: h})
	return value, nil
}

// Get returns the last computed value.
func (a *ReloadAware[T]) Get() (T, error) {
	s := a.state.Load()
	if s == nil {
		var zero T
		return zero, morph.ErrUninitialized
	}
	return s.value, nil
}

// Version returns the dictionary version the value was computed from.
func (a *ReloadAware[T]) Version() (uint64, bool) {
	s := a.state.Load()
	if s == nil {
		return 0, false
	}
	return s.source.version, true
}
