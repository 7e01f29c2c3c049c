// Package dictionary holds versioned dictionary handles that can be swapped
// at runtime, and the derived values that follow them.
package dictionary

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/kerem-kaynak/ja-analysis/pkg/morph"
)

// Current is a dictionary handle that can be read at its current version.
type Current interface {
	morph.Dictionary
	Version() uint64
	Get() morph.Dictionary
}

type holder struct {
	version uint64
	dict    morph.Dictionary
}

// reloadMu serializes reloads so two handles are updated as one step.
var reloadMu sync.Mutex

// Reloadable owns a versioned dictionary instance. Readers always observe a
// whole (version, instance) pair.
type Reloadable struct {
	name    string
	current atomic.Pointer[holder]
}

// New wraps dict at version 0.
func New(name string, dict morph.Dictionary) *Reloadable {
	r := &Reloadable{name: name}
	r.current.Store(&holder{dict: dict})
	return r
}

// Name returns the configuration name the handle was built for.
func (r *Reloadable) Name() string {
	return r.name
}

// Version returns the current version.
func (r *Reloadable) Version() uint64 {
	return r.current.Load().version
}

// Get returns the current dictionary instance.
func (r *Reloadable) Get() morph.Dictionary {
	return r.current.Load().dict
}

func (r *Reloadable) snapshot() *holder {
	return r.current.Load()
}

// NewTokenizer creates an engine on the current instance.
func (r *Reloadable) NewTokenizer() (morph.Tokenizer, error) {
	return r.Get().NewTokenizer()
}

// Reload adopts the instance of next. Both handles end up sharing the same
// pair, versioned one above the larger of the two. A nil next is a no-op.
func (r *Reloadable) Reload(next Current) error {
	if next == nil {
		return nil
	}
	n, ok := next.(*Reloadable)
	if !ok {
		return fmt.Errorf("%w: %T", morph.ErrUnsupportedDictionary, next)
	}
	if n == nil {
		return nil
	}

	reloadMu.Lock()
	defer reloadMu.Unlock()

	self, other := r.current.Load(), n.current.Load()
	h := &holder{
		version: max(self.version, other.version) + 1,
		dict:    other.dict,
	}
	r.current.Store(h)
	n.current.Store(h)
	return nil
}
