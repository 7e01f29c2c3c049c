// Package lexicon is a small morphological engine backed by a TSV lexicon
// compiled into an FST. It segments by longest match and knows the A/B split
// units of each entry, so coarse results can be re-split without a new
// analysis.
package lexicon

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/blevesearch/vellum"
)

// Entry is one lexicon word.
type Entry struct {
	Surface        string
	PartOfSpeech   []string
	ReadingForm    string
	NormalizedForm string
	DictionaryForm string
	// SplitA and SplitB list the surfaces of the finer units, empty when the
	// word is atomic in that mode.
	SplitA []string
	SplitB []string
}

// ParseEntry parses a TSV line:
// surface, pos, reading, normalized, dictionary form, A split, B split.
// Only the surface is required; "*" or a missing column selects the default.
func ParseEntry(line string) (Entry, error) {
	cols := strings.Split(line, "\t")
	surface := strings.TrimSpace(cols[0])
	if surface == "" {
		return Entry{}, fmt.Errorf("empty surface in %q", line)
	}
	col := func(i int) string {
		if i >= len(cols) {
			return ""
		}
		v := strings.TrimSpace(cols[i])
		if v == "*" {
			return ""
		}
		return v
	}

	e := Entry{
		Surface:        surface,
		ReadingForm:    orDefault(col(2), surface),
		NormalizedForm: orDefault(col(3), surface),
		DictionaryForm: orDefault(col(4), surface),
		SplitA:         splitUnits(col(5)),
		SplitB:         splitUnits(col(6)),
	}
	if pos := col(1); pos != "" {
		e.PartOfSpeech = strings.Split(pos, ",")
	} else {
		e.PartOfSpeech = unknownPOS(classOf(firstRune(surface)))
	}

	for _, units := range [][]string{e.SplitA, e.SplitB} {
		if len(units) > 0 && strings.Join(units, "") != surface {
			return Entry{}, fmt.Errorf("split units %v do not cover %q", units, surface)
		}
	}
	return e, nil
}

// String formats the entry as a TSV line.
func (e Entry) String() string {
	return strings.Join([]string{
		e.Surface,
		strings.Join(e.PartOfSpeech, ","),
		e.ReadingForm,
		e.NormalizedForm,
		e.DictionaryForm,
		joinUnits(e.SplitA),
		joinUnits(e.SplitB),
	}, "\t")
}

// ParseEntries reads entries from r, skipping blank lines and # comments.
func ParseEntries(r io.Reader) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		e, err := ParseEntry(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		entries = append(entries, e)
	}
	return entries, scanner.Err()
}

// ReadEntries reads a lexicon file.
func ReadEntries(path string) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ParseEntries(file)
}

// WriteEntries writes entries to path sorted by surface.
func WriteEntries(path string, entries []Entry) error {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Surface < sorted[j].Surface })

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	if _, err := w.WriteString("# surface\tpos\treading\tnormalized\tdictionary\ta_split\tb_split\n"); err != nil {
		return err
	}
	for _, e := range sorted {
		if _, err := w.WriteString(e.String() + "\n"); err != nil {
			return err
		}
	}
	return w.Flush()
}

// Dictionary is an immutable compiled lexicon. It is safe for concurrent use.
type Dictionary struct {
	fst        *vellum.FST
	entries    []Entry
	maxLen     int
	normalizer *Normalizer
}

// Open loads and compiles a lexicon file.
func Open(path string) (*Dictionary, error) {
	entries, err := ReadEntries(path)
	if err != nil {
		return nil, fmt.Errorf("reading lexicon %s: %w", path, err)
	}
	return New(entries)
}

// Load compiles a lexicon read from r.
func Load(r io.Reader) (*Dictionary, error) {
	entries, err := ParseEntries(r)
	if err != nil {
		return nil, err
	}
	return New(entries)
}

// New compiles entries into an FST. The first entry wins for duplicate
// surfaces.
func New(entries []Entry) (*Dictionary, error) {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Surface < sorted[j].Surface })

	unique := sorted[:0]
	for _, e := range sorted {
		if len(unique) > 0 && e.Surface == unique[len(unique)-1].Surface {
			continue
		}
		unique = append(unique, e)
	}

	var buf bytes.Buffer
	builder, err := vellum.New(&buf, nil)
	if err != nil {
		return nil, err
	}

	maxLen := 0
	for i, e := range unique {
		if err := builder.Insert([]byte(e.Surface), uint64(i)); err != nil {
			builder.Close()
			return nil, fmt.Errorf("inserting %q: %w", e.Surface, err)
		}
		if n := utf8.RuneCountInString(e.Surface); n > maxLen {
			maxLen = n
		}
	}
	if err := builder.Close(); err != nil {
		return nil, err
	}

	fst, err := vellum.Load(buf.Bytes())
	if err != nil {
		return nil, err
	}

	return &Dictionary{
		fst:        fst,
		entries:    unique,
		maxLen:     maxLen,
		normalizer: NewNormalizer(),
	}, nil
}

// Lookup returns the entry with exactly this surface.
func (d *Dictionary) Lookup(surface string) (Entry, bool) {
	idx, exists, err := d.fst.Get([]byte(surface))
	if err != nil || !exists {
		return Entry{}, false
	}
	return d.entries[idx], true
}

// Contains reports whether surface is a lexicon word.
func (d *Dictionary) Contains(surface string) bool {
	_, ok := d.Lookup(surface)
	return ok
}

// WordCount returns the number of distinct surfaces.
func (d *Dictionary) WordCount() int {
	return len(d.entries)
}

// Entries returns a copy of the entries in surface order.
func (d *Dictionary) Entries() []Entry {
	out := make([]Entry, len(d.entries))
	copy(out, d.entries)
	return out
}

// PartsOfSpeech lists the distinct tags of the entries and of unknown words.
func (d *Dictionary) PartsOfSpeech() [][]string {
	seen := make(map[string]bool)
	var out [][]string
	add := func(pos []string) {
		key := strings.Join(pos, ",")
		if !seen[key] {
			seen[key] = true
			out = append(out, pos)
		}
	}
	for _, e := range d.entries {
		add(e.PartOfSpeech)
	}
	for c := ClassOther; c <= ClassSymbol; c++ {
		add(unknownPOS(c))
	}
	return out
}

// Close releases FST resources.
func (d *Dictionary) Close() error {
	return d.fst.Close()
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func splitUnits(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "/")
}

func joinUnits(units []string) string {
	if len(units) == 0 {
		return "*"
	}
	return strings.Join(units, "/")
}

func firstRune(s string) rune {
	r, _ := utf8.DecodeRuneInString(s)
	return r
}
