package dictionary

import (
	"github.com/kerem-kaynak/ja-analysis/pkg/morph"
)

// Tokenizer is a long-lived engine handle for one consumer. The engine it
// returns is rebuilt whenever the dictionary is reloaded; callers keep the
// handle and fetch an engine per analysis.
type Tokenizer struct {
	dict   *Reloadable
	engine *ReloadAware[morph.Tokenizer]
}

// NewTokenizer binds a handle to d. The engine is built on first use.
func NewTokenizer(d *Reloadable) *Tokenizer {
	return &Tokenizer{
		dict: d,
		engine: NewReloadAware(func(dict morph.Dictionary) (morph.Tokenizer, error) {
			return dict.NewTokenizer()
		}),
	}
}

// Get returns an engine built on the current dictionary version.
func (t *Tokenizer) Get() (morph.Tokenizer, error) {
	engine, err := t.engine.MaybeReload(t.dict)
	if err != nil {
		return nil, morph.Wrap(morph.StageDictionary, err)
	}
	return engine, nil
}

// MaybeReload reloads the dictionary from next, then returns a fresh engine.
func (t *Tokenizer) MaybeReload(next Current) (morph.Tokenizer, error) {
	if err := t.dict.Reload(next); err != nil {
		return nil, morph.Wrap(morph.StageDictionary, err)
	}
	return t.Get()
}

// Dictionary returns the handle the tokenizer follows.
func (t *Tokenizer) Dictionary() *Reloadable {
	return t.dict
}

// EngineVersion returns the dictionary version of the last built engine.
func (t *Tokenizer) EngineVersion() (uint64, bool) {
	return t.engine.Version()
}
