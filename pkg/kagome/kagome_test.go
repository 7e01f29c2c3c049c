package kagome

import (
	"strings"
	"testing"

	"github.com/kerem-kaynak/ja-analysis/pkg/morph"
)

func TestNew_UnknownVariant(t *testing.T) {
	if _, err := New("unidic"); err == nil {
		t.Error("Expected error for unknown variant")
	}
}

func TestTokenize_SplitModes(t *testing.T) {
	d, err := New(VariantIPA)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	tok, _ := d.NewTokenizer()

	tests := []struct {
		mode     morph.SplitMode
		expected []string
		begins   []int
	}{
		{morph.SplitModeC, []string{"関西国際空港"}, []int{0}},
		{morph.SplitModeA, []string{"関西", "国際", "空港"}, []int{0, 2, 4}},
	}

	for _, tt := range tests {
		list, err := tok.Tokenize(tt.mode, "関西国際空港")
		if err != nil {
			t.Fatalf("Tokenize failed: %v", err)
		}
		var got []string
		for i, m := range list.Morphemes() {
			got = append(got, m.Surface)
			if i < len(tt.begins) && m.Begin != tt.begins[i] {
				t.Errorf("mode %v morpheme %q Begin = %d, want %d", tt.mode, m.Surface, m.Begin, tt.begins[i])
			}
		}
		if strings.Join(got, "|") != strings.Join(tt.expected, "|") {
			t.Errorf("mode %v = %v, want %v", tt.mode, got, tt.expected)
		}
	}
}

func TestTokenize_Features(t *testing.T) {
	d, err := New(VariantIPA)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	tok, _ := d.NewTokenizer()
	list, _ := tok.Tokenize(morph.SplitModeC, "行った")

	if list.Len() == 0 {
		t.Fatal("Expected morphemes")
	}
	first := list.At(0)
	if first.DictionaryForm != "行く" {
		t.Errorf("DictionaryForm = %q, want 行く", first.DictionaryForm)
	}
	if len(first.PartOfSpeech) == 0 || first.PartOfSpeech[0] != "動詞" {
		t.Errorf("PartOfSpeech = %v, want 動詞 first", first.PartOfSpeech)
	}
	if list.Dictionary() != morph.Dictionary(d) {
		t.Error("Expected the list to reference its dictionary")
	}
}
