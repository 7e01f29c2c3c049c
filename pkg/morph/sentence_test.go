package morph

import (
	"bufio"
	"strings"
	"testing"
	"testing/iotest"
	"unicode/utf8"
)

func scanAll(t *testing.T, text string, oneByte bool) []string {
	t.Helper()
	var r = strings.NewReader(text)
	scanner := bufio.NewScanner(r)
	if oneByte {
		scanner = bufio.NewScanner(iotest.OneByteReader(r))
	}
	scanner.Buffer(make([]byte, 0, 16), (MaxSentenceLength+1)*utf8.UTFMax)
	scanner.Split(ScanSentences)
	var out []string
	for scanner.Scan() {
		out = append(out, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	return out
}

func TestScanSentences(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"東京都に行った。京都に行った。", []string{"東京都に行った。", "京都に行った。"}},
		{"本当！？はい", []string{"本当！？", "はい"}},
		{"東京都  \n  に行った", []string{"東京都  \n", "  に行った"}},
		{"はい。\n次", []string{"はい。", "\n", "次"}},
		{"", nil},
	}

	for _, tt := range tests {
		for _, oneByte := range []bool{false, true} {
			got := scanAll(t, tt.input, oneByte)
			if strings.Join(got, "|") != strings.Join(tt.expected, "|") || len(got) != len(tt.expected) {
				t.Errorf("ScanSentences(%q, oneByte=%v) = %q, want %q", tt.input, oneByte, got, tt.expected)
			}
		}
	}
}

func TestScanSentences_CutsLongSentences(t *testing.T) {
	text := strings.Repeat("あ", MaxSentenceLength+10)
	got := scanAll(t, text, true)
	if len(got) != 2 || utf8.RuneCountInString(got[0]) != MaxSentenceLength {
		t.Errorf("got %d sentences, first of %d runes", len(got), utf8.RuneCountInString(got[0]))
	}
}

func TestSegmentSentences(t *testing.T) {
	perRune := func(sentence string) []Morpheme {
		var out []Morpheme
		i := 0
		for _, r := range sentence {
			out = append(out, Morpheme{Begin: i, End: i + 1, Surface: string(r)})
			i++
		}
		return out
	}
	var sentences []string
	segmentOnly := func(sentence string) []Morpheme {
		sentences = append(sentences, sentence)
		return perRune(sentence)
	}

	got := SegmentSentences("はい。\n次！？", segmentOnly)
	if strings.Join(sentences, "|") != "はい。|\n|次！？" {
		t.Errorf("sentences = %q", sentences)
	}
	if len(got) != 7 {
		t.Fatalf("got %d morphemes, want 7", len(got))
	}
	for i, m := range got {
		if m.Begin != i || m.End != i+1 {
			t.Errorf("morpheme %d %q at (%d,%d), want (%d,%d)", i, m.Surface, m.Begin, m.End, i, i+1)
		}
	}
}
