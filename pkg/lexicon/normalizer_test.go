package lexicon

import "testing"

func TestNormalizer(t *testing.T) {
	n := NewNormalizer()
	tests := []struct {
		input    string
		expected string
	}{
		{"ＡＢＣ", "abc"},
		{"ｶﾀｶﾅ", "カタカナ"},
		{"１２３", "123"},
		{"東京", "東京"},
		{"a\u0000b", "ab"},
	}

	for _, tt := range tests {
		if got := n.Normalize(tt.input); got != tt.expected {
			t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestClassOf(t *testing.T) {
	tests := []struct {
		r        rune
		expected CharClass
	}{
		{'あ', ClassHiragana},
		{'カ', ClassKatakana},
		{'ー', ClassKatakana},
		{'東', ClassKanji},
		{'a', ClassLatin},
		{'7', ClassDigit},
		{'。', ClassSymbol},
		{' ', ClassSpace},
	}

	for _, tt := range tests {
		if got := classOf(tt.r); got != tt.expected {
			t.Errorf("classOf(%q) = %v, want %v", tt.r, got, tt.expected)
		}
	}
}

func TestToKatakana(t *testing.T) {
	if got := toKatakana("ひらがなカ"); got != "ヒラガナカ" {
		t.Errorf("toKatakana = %q", got)
	}
}
