package lexicon

import (
	"strings"
	"unicode"
)

// CharClass identifies the script class of a rune. Unknown words are runs of
// one class.
type CharClass int

const (
	ClassOther CharClass = iota
	ClassSpace
	ClassHiragana
	ClassKatakana
	ClassKanji
	ClassLatin
	ClassDigit
	ClassSymbol
)

func (c CharClass) String() string {
	switch c {
	case ClassSpace:
		return "space"
	case ClassHiragana:
		return "hiragana"
	case ClassKatakana:
		return "katakana"
	case ClassKanji:
		return "kanji"
	case ClassLatin:
		return "latin"
	case ClassDigit:
		return "digit"
	case ClassSymbol:
		return "symbol"
	}
	return "other"
}

// classOf determines the script class of r.
func classOf(r rune) CharClass {
	switch {
	case unicode.IsSpace(r):
		return ClassSpace
	case unicode.Is(unicode.Hiragana, r):
		return ClassHiragana
	case unicode.Is(unicode.Katakana, r), r == 'ー':
		return ClassKatakana
	case unicode.Is(unicode.Han, r), r == '々':
		return ClassKanji
	case unicode.IsDigit(r):
		return ClassDigit
	case unicode.IsLetter(r):
		return ClassLatin
	case unicode.IsPunct(r), unicode.IsSymbol(r):
		return ClassSymbol
	}
	return ClassOther
}

// groups reports whether adjacent runes of the class form one unknown word.
func (c CharClass) groups() bool {
	return c != ClassSymbol && c != ClassOther
}

// breaksAtWords reports whether an unknown run of the class ends where a
// lexicon word starts. Katakana, latin and digit runs are kept whole.
func (c CharClass) breaksAtWords() bool {
	return c == ClassHiragana || c == ClassKanji
}

func unknownPOS(c CharClass) []string {
	switch c {
	case ClassSpace:
		return []string{"空白", "*", "*", "*"}
	case ClassDigit:
		return []string{"名詞", "数詞", "*", "*"}
	case ClassSymbol:
		return []string{"補助記号", "一般", "*", "*"}
	case ClassLatin, ClassKatakana, ClassKanji:
		return []string{"名詞", "普通名詞", "一般", "*"}
	}
	return []string{"未知語", "*", "*", "*"}
}

// toKatakana converts hiragana to katakana and leaves other runes alone.
func toKatakana(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'ぁ' && r <= 'ゖ' {
			return r + 0x60
		}
		return r
	}, s)
}
