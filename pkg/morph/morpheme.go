// Package morph defines the morpheme data model shared by the analysis
// cache, the reloadable dictionary handles and the tokenizer engines.
package morph

import (
	"fmt"
	"io"
	"strings"
)

// SplitMode controls segmentation granularity, from finest (A) to coarsest (C).
type SplitMode int

const (
	SplitModeA SplitMode = iota
	SplitModeB
	SplitModeC
)

// ParseSplitMode parses "a", "b" or "c" (case-insensitive). An empty string
// selects C.
func ParseSplitMode(s string) (SplitMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "a":
		return SplitModeA, nil
	case "b":
		return SplitModeB, nil
	case "c", "":
		return SplitModeC, nil
	}
	return SplitModeC, fmt.Errorf("invalid split mode %q", s)
}

func (m SplitMode) String() string {
	switch m {
	case SplitModeA:
		return "A"
	case SplitModeB:
		return "B"
	case SplitModeC:
		return "C"
	}
	return fmt.Sprintf("SplitMode(%d)", int(m))
}

// Morpheme is one analyzed unit. Offsets are rune positions relative to the
// analysis unit that produced it.
type Morpheme struct {
	Begin          int
	End            int
	Surface        string
	NormalizedForm string
	DictionaryForm string
	ReadingForm    string
	PartOfSpeech   []string
}

// Len returns the morpheme length in runes.
func (m Morpheme) Len() int {
	return m.End - m.Begin
}

// Splitter re-segments a morpheme into a finer mode. It returns nil when the
// morpheme has no finer units.
type Splitter interface {
	Split(m Morpheme, mode SplitMode) []Morpheme
}

// Dictionary is a compiled dictionary instance. Instances are compared by
// identity, so implementations must be comparable (usually pointers).
type Dictionary interface {
	NewTokenizer() (Tokenizer, error)
}

// Tokenizer is an engine bound to one dictionary instance.
type Tokenizer interface {
	// Tokenize analyzes text as one unit.
	Tokenize(mode SplitMode, text string) (*List, error)
	// TokenizeSentences analyzes r sentence by sentence. Offsets of each
	// sentence are relative to the sentence start.
	TokenizeSentences(mode SplitMode, r io.Reader) SentenceIterator
	// Dictionary returns the instance the engine was created from.
	Dictionary() Dictionary
}

// SentenceIterator yields sentence lists in input order.
type SentenceIterator interface {
	Next() bool
	Sentence() *List
	Err() error
}

// List is an immutable sequence of morphemes covering one analysis unit.
// Lists are shared between goroutines once cached and must not be modified.
type List struct {
	morphemes []Morpheme
	mode      SplitMode
	dict      Dictionary
	splitter  Splitter
}

// NewList wraps morphemes produced in mode by dict. The slice is owned by the
// list afterwards.
func NewList(morphemes []Morpheme, mode SplitMode, dict Dictionary, splitter Splitter) *List {
	return &List{
		morphemes: morphemes,
		mode:      mode,
		dict:      dict,
		splitter:  splitter,
	}
}

// Len returns the number of morphemes.
func (l *List) Len() int {
	return len(l.morphemes)
}

// At returns the i-th morpheme.
func (l *List) At(i int) Morpheme {
	return l.morphemes[i]
}

// Morphemes returns a copy of the morphemes.
func (l *List) Morphemes() []Morpheme {
	out := make([]Morpheme, len(l.morphemes))
	copy(out, l.morphemes)
	return out
}

// Mode is the split mode the list was produced in.
func (l *List) Mode() SplitMode {
	return l.mode
}

// Dictionary is the dictionary instance that produced the list.
func (l *List) Dictionary() Dictionary {
	return l.dict
}

// End returns the end offset of the last morpheme, or 0 for an empty list.
func (l *List) End() int {
	if len(l.morphemes) == 0 {
		return 0
	}
	return l.morphemes[len(l.morphemes)-1].End
}

// SplitMorpheme returns the i-th morpheme segmented for mode. Modes equal to
// or coarser than the list mode return the morpheme itself.
func (l *List) SplitMorpheme(i int, mode SplitMode) []Morpheme {
	m := l.morphemes[i]
	if mode >= l.mode || l.splitter == nil {
		return []Morpheme{m}
	}
	parts := l.splitter.Split(m, mode)
	if len(parts) == 0 {
		return []Morpheme{m}
	}
	return parts
}

// Split returns the list segmented for mode. The receiver is never modified.
func (l *List) Split(mode SplitMode) *List {
	if mode >= l.mode || l.splitter == nil {
		return l
	}
	out := make([]Morpheme, 0, len(l.morphemes))
	for i := range l.morphemes {
		out = append(out, l.SplitMorpheme(i, mode)...)
	}
	return NewList(out, mode, l.dict, l.splitter)
}
