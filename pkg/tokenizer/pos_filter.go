package tokenizer

import (
	"slices"
	"strings"

	"github.com/kerem-kaynak/ja-analysis/pkg/morph"
)

// POSMatcher matches part-of-speech tags against a set of prefixes. For
// dictionaries that list their tags, decisions are precomputed per tag.
type POSMatcher struct {
	prefixes [][]string
	known    map[string]bool
}

// NewPOSMatcher builds a matcher for the tags of dict.
func NewPOSMatcher(dict morph.Dictionary, prefixes [][]string) *POSMatcher {
	m := &POSMatcher{prefixes: prefixes}
	if lister, ok := dict.(morph.POSLister); ok {
		tags := lister.PartsOfSpeech()
		m.known = make(map[string]bool, len(tags))
		for _, pos := range tags {
			m.known[strings.Join(pos, ",")] = m.matchPrefix(pos)
		}
	}
	return m
}

// Match reports whether pos starts with one of the prefixes.
func (m *POSMatcher) Match(pos []string) bool {
	if v, ok := m.known[strings.Join(pos, ",")]; ok {
		return v
	}
	return m.matchPrefix(pos)
}

func (m *POSMatcher) matchPrefix(pos []string) bool {
	for _, p := range m.prefixes {
		if len(p) <= len(pos) && slices.Equal(p, pos[:len(p)]) {
			return true
		}
	}
	return false
}

type posFilter struct {
	inner   MorphemeIterator
	matcher *POSMatcher
}

// POSFilter drops morphemes whose part of speech matches matcher.
func POSFilter(inner MorphemeIterator, matcher *POSMatcher) MorphemeIterator {
	return &posFilter{inner: inner, matcher: matcher}
}

func (f *posFilter) Next() (morph.Morpheme, bool) {
	for {
		m, ok := f.inner.Next()
		if !ok {
			return m, false
		}
		if !f.matcher.Match(m.PartOfSpeech) {
			return m, true
		}
	}
}

func (f *posFilter) BaseOffset() int { return f.inner.BaseOffset() }

func (f *posFilter) Err() error { return f.inner.Err() }
