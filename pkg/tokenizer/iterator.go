package tokenizer

import (
	"io"

	"github.com/kerem-kaynak/ja-analysis/pkg/morph"
)

// MorphemeIterator is a forward-only, single-use morpheme sequence. Morpheme
// offsets are relative to BaseOffset at the time the morpheme is returned.
type MorphemeIterator interface {
	Next() (morph.Morpheme, bool)
	BaseOffset() int
	Err() error
}

type cachedAnalysis struct {
	list    *morph.List
	mode    morph.SplitMode
	index   int
	pending []morph.Morpheme
	lastEnd int
	base    int
}

// CachedAnalysis iterates a shared list, splitting each morpheme into mode
// as it is reached. The list is never modified.
func CachedAnalysis(list *morph.List, mode morph.SplitMode) MorphemeIterator {
	return &cachedAnalysis{list: list, mode: mode}
}

func (c *cachedAnalysis) Next() (morph.Morpheme, bool) {
	for len(c.pending) == 0 {
		if c.index >= c.list.Len() {
			c.base = c.lastEnd
			return morph.Morpheme{}, false
		}
		c.pending = c.list.SplitMorpheme(c.index, c.mode)
		c.index++
	}
	m := c.pending[0]
	c.pending = c.pending[1:]
	c.lastEnd = m.End
	return m, true
}

func (c *cachedAnalysis) BaseOffset() int { return c.base }

func (c *cachedAnalysis) Err() error { return nil }

type nonCachedAnalysis struct {
	sentences morph.SentenceIterator
	current   *morph.List
	index     int
	base      int
	err       error
}

// NonCachedAnalysis streams r through the engine sentence by sentence. The
// base offset advances past each finished sentence.
func NonCachedAnalysis(engine morph.Tokenizer, r io.Reader, mode morph.SplitMode) MorphemeIterator {
	return &nonCachedAnalysis{sentences: engine.TokenizeSentences(mode, r)}
}

func (n *nonCachedAnalysis) Next() (morph.Morpheme, bool) {
	for {
		if n.current != nil {
			if n.index < n.current.Len() {
				m := n.current.At(n.index)
				n.index++
				return m, true
			}
			n.base += n.current.End()
			n.current = nil
		}
		if n.err != nil || n.sentences == nil {
			return morph.Morpheme{}, false
		}
		if !n.sentences.Next() {
			n.err = morph.Wrap(morph.StageTokenizer, n.sentences.Err())
			n.sentences = nil
			return morph.Morpheme{}, false
		}
		n.current = n.sentences.Sentence()
		n.index = 0
	}
}

func (n *nonCachedAnalysis) BaseOffset() int { return n.base }

func (n *nonCachedAnalysis) Err() error { return n.err }

type nonPunctuation struct {
	inner MorphemeIterator
}

// NonPunctuation drops morphemes whose normalized form is punctuation.
func NonPunctuation(inner MorphemeIterator) MorphemeIterator {
	return &nonPunctuation{inner: inner}
}

func (p *nonPunctuation) Next() (morph.Morpheme, bool) {
	for {
		m, ok := p.inner.Next()
		if !ok {
			return m, false
		}
		if !morph.IsPunctuation(m.NormalizedForm) {
			return m, true
		}
	}
}

func (p *nonPunctuation) BaseOffset() int { return p.inner.BaseOffset() }

func (p *nonPunctuation) Err() error { return p.inner.Err() }

type empty struct{}

// Empty returns an iterator with no morphemes.
func Empty() MorphemeIterator { return empty{} }

func (empty) Next() (morph.Morpheme, bool) { return morph.Morpheme{}, false }
func (empty) BaseOffset() int              { return 0 }
func (empty) Err() error                   { return nil }

// Token is a morpheme placed at absolute rune offsets in the input.
type Token struct {
	Surface        string   `json:"surface"`
	NormalizedForm string   `json:"normalized_form"`
	DictionaryForm string   `json:"dictionary_form"`
	ReadingForm    string   `json:"reading_form"`
	PartOfSpeech   []string `json:"part_of_speech"`
	Start          int      `json:"start"`
	End            int      `json:"end"`
}

// Collect drains it into tokens. It also returns the final offset, the
// length of the consumed input in runes.
func Collect(it MorphemeIterator) ([]Token, int, error) {
	var tokens []Token
	for {
		m, ok := it.Next()
		if !ok {
			break
		}
		base := it.BaseOffset()
		tokens = append(tokens, Token{
			Surface:        m.Surface,
			NormalizedForm: m.NormalizedForm,
			DictionaryForm: m.DictionaryForm,
			ReadingForm:    m.ReadingForm,
			PartOfSpeech:   m.PartOfSpeech,
			Start:          base + m.Begin,
			End:            base + m.End,
		})
	}
	if err := it.Err(); err != nil {
		return nil, 0, err
	}
	return tokens, it.BaseOffset(), nil
}
