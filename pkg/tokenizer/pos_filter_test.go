package tokenizer

import (
	"testing"

	"github.com/kerem-kaynak/ja-analysis/pkg/dictionary"
	"github.com/kerem-kaynak/ja-analysis/pkg/morph"
)

func TestPOSMatcher(t *testing.T) {
	dict := newTestDictionary(t)
	prefixes := [][]string{morph.ParsePOS("助詞"), morph.ParsePOS("名詞,固有名詞,*")}
	m := NewPOSMatcher(dict, prefixes)

	if len(m.known) == 0 {
		t.Fatal("Expected tags precomputed for a lexicon dictionary")
	}

	tests := []struct {
		pos      []string
		expected bool
	}{
		{[]string{"助詞", "格助詞", "*", "*"}, true},
		{[]string{"名詞", "固有名詞", "地名", "一般"}, true},
		{[]string{"名詞", "普通名詞", "一般", "*"}, false},
		{[]string{"助動詞", "*", "*", "*"}, false},
		// not in the dictionary, matched by prefix
		{[]string{"助詞", "終助詞"}, true},
		{nil, false},
	}
	for _, tt := range tests {
		if got := m.Match(tt.pos); got != tt.expected {
			t.Errorf("Match(%v) = %v, want %v", tt.pos, got, tt.expected)
		}
	}

	plain := NewPOSMatcher(nil, prefixes)
	if plain.known != nil || !plain.Match([]string{"助詞", "格助詞"}) {
		t.Error("Expected prefix matching without a tag list")
	}
}

func TestParsePOS(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{"名詞", 1},
		{"名詞, 固有名詞", 2},
		{"名詞,固有名詞,*,*", 2},
		{"*", 0},
	}
	for _, tt := range tests {
		if got := morph.ParsePOS(tt.input); len(got) != tt.expected {
			t.Errorf("ParsePOS(%q) = %v, want %d levels", tt.input, got, tt.expected)
		}
	}
}

func TestCachingTokenizer_StopTags(t *testing.T) {
	dict := newTestDictionary(t)
	cache := NewCache(DefaultOptions())
	tok := newCachingTokenizer(t, dict, morph.SplitModeC, cache, true).
		WithStopTags([][]string{{"助詞"}, {"助動詞"}})

	tokens, err := tok.TokenizeString("東京都に行った。")
	if err != nil {
		t.Fatalf("TokenizeString failed: %v", err)
	}
	if got := tokenSurfaces(tokens); got != "東京都|行っ" {
		t.Errorf("surfaces = %q, want 東京都|行っ", got)
	}
	if tokens[1].Start != 4 || tokens[1].End != 6 {
		t.Errorf("行っ at (%d,%d), want (4,6)", tokens[1].Start, tokens[1].End)
	}
}

func TestCachingTokenizer_StopTagsFollowReload(t *testing.T) {
	old := newInlineDictionary(t, "東京\t名詞\nへ\t助詞\n")
	fresh := newInlineDictionary(t, "東京\t名詞\nへ\t格助詞\n")

	handle := dictionary.New("test", old)
	tok := NewCachingTokenizer(dictionary.NewTokenizer(handle), morph.SplitModeC, NewCache(DefaultOptions()), false).
		WithStopTags([][]string{{"助詞"}})

	before, _ := tok.TokenizeString("東京へ")
	if got := tokenSurfaces(before); got != "東京" {
		t.Fatalf("before reload = %q, want 東京", got)
	}

	if err := handle.Reload(dictionary.New("test", fresh)); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	after, _ := tok.TokenizeString("東京へ")
	if got := tokenSurfaces(after); got != "東京|へ" {
		t.Errorf("after reload = %q, want 東京|へ", got)
	}
}

func TestCachingTokenizer_NoStopTags(t *testing.T) {
	tok := newCachingTokenizer(t, newTestDictionary(t), morph.SplitModeC, nil, true)
	if tok.WithStopTags(nil).stopTags != nil {
		t.Error("Expected no filter for empty prefixes")
	}
}
