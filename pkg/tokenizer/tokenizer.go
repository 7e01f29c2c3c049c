// Package tokenizer caches morphological analyses per index and exposes
// them as morpheme iterators.
package tokenizer

import (
	"io"

	"github.com/kerem-kaynak/ja-analysis/pkg/dictionary"
	"github.com/kerem-kaynak/ja-analysis/pkg/input"
	"github.com/kerem-kaynak/ja-analysis/pkg/morph"
)

// CachingTokenizer analyzes input through a shared Cache using an engine
// that follows dictionary reloads. A CachingTokenizer is used by one
// goroutine at a time; the cache behind it is shared.
type CachingTokenizer struct {
	tok                *dictionary.Tokenizer
	mode               morph.SplitMode
	cache              *Cache
	discardPunctuation bool
	stopTags           *dictionary.ReloadAware[*POSMatcher]
}

// NewCachingTokenizer creates a tokenizer. A nil cache streams every input.
func NewCachingTokenizer(tok *dictionary.Tokenizer, mode morph.SplitMode, cache *Cache, discardPunctuation bool) *CachingTokenizer {
	return &CachingTokenizer{
		tok:                tok,
		mode:               mode,
		cache:              cache,
		discardPunctuation: discardPunctuation,
	}
}

// WithStopTags drops morphemes whose part of speech starts with one of
// prefixes. The matcher is rebuilt when the dictionary is reloaded.
func (t *CachingTokenizer) WithStopTags(prefixes [][]string) *CachingTokenizer {
	if len(prefixes) == 0 {
		return t
	}
	t.stopTags = dictionary.NewReloadAware(func(dict morph.Dictionary) (*POSMatcher, error) {
		return NewPOSMatcher(dict, prefixes), nil
	})
	return t
}

// Tokenize returns the morphemes of r.
func (t *CachingTokenizer) Tokenize(r io.Reader) (MorphemeIterator, error) {
	engine, err := t.tok.Get()
	if err != nil {
		return nil, err
	}
	it, err := t.cache.Analyze(engine, t.mode, r)
	if err != nil {
		return nil, err
	}
	if t.discardPunctuation {
		it = NonPunctuation(it)
	}
	if t.stopTags != nil {
		matcher, err := t.stopTags.MaybeReload(t.tok.Dictionary())
		if err != nil {
			return nil, morph.Wrap(morph.StageDictionary, err)
		}
		it = POSFilter(it, matcher)
	}
	return it, nil
}

// TokenizeString analyzes text and collects tokens at absolute offsets.
func (t *CachingTokenizer) TokenizeString(text string) ([]Token, error) {
	it, err := t.Tokenize(input.NewStringReader(text))
	if err != nil {
		return nil, err
	}
	tokens, _, err := Collect(it)
	return tokens, err
}

// Mode returns the split mode of produced morphemes.
func (t *CachingTokenizer) Mode() morph.SplitMode {
	return t.mode
}

// CacheStats returns the counters of the shared cache.
func (t *CachingTokenizer) CacheStats() Stats {
	return t.cache.Stats()
}

// Dictionary returns the dictionary handle the tokenizer follows.
func (t *CachingTokenizer) Dictionary() *dictionary.Reloadable {
	return t.tok.Dictionary()
}
