package lexicon

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizerFunc defines a single normalization step.
type NormalizerFunc func(string) string

// Normalizer derives the normalized form of unknown words.
type Normalizer struct {
	steps []NormalizerFunc
}

// NewNormalizer creates a normalizer with the default pipeline.
func NewNormalizer() *Normalizer {
	return &Normalizer{
		steps: []NormalizerFunc{
			NFKC,
			RemoveControlChars,
			Lowercase,
		},
	}
}

// NewNormalizerWithSteps creates a normalizer with a custom pipeline.
func NewNormalizerWithSteps(steps ...NormalizerFunc) *Normalizer {
	return &Normalizer{steps: steps}
}

// Normalize applies all configured steps in order.
func (n *Normalizer) Normalize(s string) string {
	for _, step := range n.steps {
		s = step(s)
	}
	return s
}

// NFKC applies Unicode NFKC normalization.
// Folds full-width latin and half-width katakana: ＡＢＣ → ABC, ｶﾀｶﾅ → カタカナ.
func NFKC(s string) string {
	return norm.NFKC.String(s)
}

// RemoveControlChars removes Unicode control characters.
func RemoveControlChars(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if !unicode.IsControl(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// Lowercase converts to lowercase.
func Lowercase(s string) string {
	return strings.ToLower(s)
}
