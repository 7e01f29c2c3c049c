package lexicon

import (
	"io"
	"strings"
	"unicode/utf8"

	"github.com/kerem-kaynak/ja-analysis/pkg/morph"
)

// Tokenizer segments text against one Dictionary. It is stateless and safe
// for concurrent use.
type Tokenizer struct {
	dict *Dictionary
}

// NewTokenizer returns an engine bound to d.
func (d *Dictionary) NewTokenizer() (morph.Tokenizer, error) {
	return &Tokenizer{dict: d}, nil
}

// Dictionary returns the dictionary the engine was created from.
func (t *Tokenizer) Dictionary() morph.Dictionary {
	return t.dict
}

// Tokenize segments text sentence by sentence in mode C and re-splits for
// finer modes.
func (t *Tokenizer) Tokenize(mode morph.SplitMode, text string) (*morph.List, error) {
	list := morph.NewList(morph.SegmentSentences(text, t.dict.segment), morph.SplitModeC, t.dict, t.dict)
	return list.Split(mode), nil
}

// TokenizeSentences analyzes r one sentence at a time.
func (t *Tokenizer) TokenizeSentences(mode morph.SplitMode, r io.Reader) morph.SentenceIterator {
	return morph.NewSentenceIterator(r, mode, t.Tokenize)
}

// segment finds the longest lexicon word at each position. Text not covered
// by the lexicon is grouped into runs of one character class.
func (d *Dictionary) segment(text string) []morph.Morpheme {
	// offs[i] is the byte offset of rune i; invalid bytes count as one rune
	offs := make([]int, 0, len(text)+1)
	classes := make([]CharClass, 0, len(text))
	for i, r := range text {
		offs = append(offs, i)
		classes = append(classes, classOf(r))
	}
	offs = append(offs, len(text))
	n := len(classes)

	var out []morph.Morpheme
	for i := 0; i < n; {
		if e, size, ok := d.longestMatch(text, offs, i); ok {
			out = append(out, known(e, i, i+size))
			i += size
			continue
		}

		j := i + 1
		c := classes[i]
		for c.groups() && j < n && classes[j] == c {
			if c.breaksAtWords() {
				if _, _, ok := d.longestMatch(text, offs, j); ok {
					break
				}
			}
			j++
		}
		out = append(out, d.unknown(text[offs[i]:offs[j]], c, i, j))
		i = j
	}
	return out
}

func (d *Dictionary) longestMatch(text string, offs []int, i int) (Entry, int, bool) {
	limit := len(offs) - 1 - i
	if limit > d.maxLen {
		limit = d.maxLen
	}
	for size := limit; size > 0; size-- {
		if e, ok := d.Lookup(text[offs[i]:offs[i+size]]); ok {
			return e, size, true
		}
	}
	return Entry{}, 0, false
}

func known(e Entry, begin, end int) morph.Morpheme {
	return morph.Morpheme{
		Begin:          begin,
		End:            end,
		Surface:        e.Surface,
		NormalizedForm: e.NormalizedForm,
		DictionaryForm: e.DictionaryForm,
		ReadingForm:    e.ReadingForm,
		PartOfSpeech:   e.PartOfSpeech,
	}
}

func (d *Dictionary) unknown(surface string, c CharClass, begin, end int) morph.Morpheme {
	reading := surface
	if c == ClassHiragana || c == ClassKatakana {
		reading = toKatakana(surface)
	}
	return morph.Morpheme{
		Begin:          begin,
		End:            end,
		Surface:        surface,
		NormalizedForm: d.normalizer.Normalize(surface),
		DictionaryForm: surface,
		ReadingForm:    reading,
		PartOfSpeech:   unknownPOS(c),
	}
}

// Split returns the A or B units of a lexicon word, or nil when the word is
// atomic in mode. A falls back to the B units.
func (d *Dictionary) Split(m morph.Morpheme, mode morph.SplitMode) []morph.Morpheme {
	if mode >= morph.SplitModeC {
		return nil
	}
	e, ok := d.Lookup(m.Surface)
	if !ok {
		return nil
	}
	units := e.SplitB
	if mode == morph.SplitModeA && len(e.SplitA) > 0 {
		units = e.SplitA
	}
	if len(units) < 2 || strings.Join(units, "") != m.Surface {
		return nil
	}

	out := make([]morph.Morpheme, 0, len(units))
	begin := m.Begin
	for _, u := range units {
		end := begin + utf8.RuneCountInString(u)
		if ue, ok := d.Lookup(u); ok {
			out = append(out, known(ue, begin, end))
		} else {
			out = append(out, d.unknown(u, classOf(firstRune(u)), begin, end))
		}
		begin = end
	}
	return out
}
