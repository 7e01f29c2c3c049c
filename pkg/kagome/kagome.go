// Package kagome adapts the kagome analyzer with the IPA dictionary to the
// morph engine contract.
package kagome

import (
	"fmt"
	"io"

	"github.com/ikawaha/kagome-dict/dict"
	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"

	"github.com/kerem-kaynak/ja-analysis/pkg/morph"
)

const (
	VariantIPA       = "ipa"
	VariantIPAShrink = "ipa-shrink"
)

// Dictionary is one loaded kagome dictionary. kagome analyzes in two modes,
// so C maps to normal segmentation and both A and B to search segmentation.
type Dictionary struct {
	variant string
	tok     *tokenizer.Tokenizer
}

// New loads a dictionary variant. An empty variant selects ipa.
func New(variant string) (*Dictionary, error) {
	var d *dict.Dict
	switch variant {
	case VariantIPA, "":
		variant = VariantIPA
		d = ipa.Dict()
	case VariantIPAShrink:
		d = ipa.DictShrink()
	default:
		return nil, fmt.Errorf("unknown kagome variant %q", variant)
	}

	tok, err := tokenizer.New(d, tokenizer.OmitBosEos())
	if err != nil {
		return nil, err
	}
	return &Dictionary{variant: variant, tok: tok}, nil
}

// Variant returns the loaded dictionary variant.
func (d *Dictionary) Variant() string {
	return d.variant
}

// NewTokenizer returns an engine bound to d.
func (d *Dictionary) NewTokenizer() (morph.Tokenizer, error) {
	return &Tokenizer{dict: d}, nil
}

// Split re-analyzes a normal-mode morpheme in search mode.
func (d *Dictionary) Split(m morph.Morpheme, mode morph.SplitMode) []morph.Morpheme {
	if mode >= morph.SplitModeC {
		return nil
	}
	tokens := d.tok.Analyze(m.Surface, tokenizer.Search)
	if len(tokens) < 2 {
		return nil
	}
	return convert(tokens, m.Begin)
}

// Tokenizer analyzes text with one Dictionary.
type Tokenizer struct {
	dict *Dictionary
}

func (t *Tokenizer) Tokenize(mode morph.SplitMode, text string) (*morph.List, error) {
	morphemes := morph.SegmentSentences(text, func(sentence string) []morph.Morpheme {
		return convert(t.dict.tok.Analyze(sentence, tokenizer.Normal), 0)
	})
	list := morph.NewList(morphemes, morph.SplitModeC, t.dict, t.dict)
	return list.Split(mode), nil
}

func (t *Tokenizer) TokenizeSentences(mode morph.SplitMode, r io.Reader) morph.SentenceIterator {
	return morph.NewSentenceIterator(r, mode, t.Tokenize)
}

func (t *Tokenizer) Dictionary() morph.Dictionary {
	return t.dict
}

func convert(tokens []tokenizer.Token, offset int) []morph.Morpheme {
	out := make([]morph.Morpheme, 0, len(tokens))
	for _, tok := range tokens {
		base, ok := tok.BaseForm()
		if !ok || base == "*" {
			base = tok.Surface
		}
		reading, ok := tok.Reading()
		if !ok || reading == "*" {
			reading = tok.Surface
		}
		out = append(out, morph.Morpheme{
			Begin:          offset + tok.Start,
			End:            offset + tok.End,
			Surface:        tok.Surface,
			NormalizedForm: base,
			DictionaryForm: base,
			ReadingForm:    reading,
			PartOfSpeech:   tok.POS(),
		})
	}
	return out
}
