package morph

import (
	"bufio"
	"io"
	"unicode/utf8"
)

// MaxSentenceLength bounds a sentence in runes. Longer runs without a
// terminator are cut at this length.
const MaxSentenceLength = 4096

func isSentenceEnd(r rune) bool {
	switch r {
	case '。', '．', '！', '？', '!', '?', '\n':
		return true
	}
	return false
}

// ScanSentences is a bufio.SplitFunc that yields sentences including their
// terminators.
func ScanSentences(data []byte, atEOF bool) (advance int, token []byte, err error) {
	runes := 0
	for i := 0; i < len(data); {
		if !utf8.FullRune(data[i:]) && !atEOF {
			break
		}
		r, size := utf8.DecodeRune(data[i:])
		if runes == MaxSentenceLength {
			return i, data[:i], nil
		}
		runes++
		i += size
		if isSentenceEnd(r) {
			// keep runs like "！？" together
			for r != '\n' && runes < MaxSentenceLength {
				if i == len(data) || !utf8.FullRune(data[i:]) {
					if !atEOF {
						// the run may continue in the next read
						return 0, nil, nil
					}
					break
				}
				next, n := utf8.DecodeRune(data[i:])
				if !isSentenceEnd(next) || next == '\n' {
					break
				}
				runes++
				i += n
			}
			return i, data[:i], nil
		}
	}
	if atEOF && len(data) > 0 {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// SegmentSentences splits text the way the sentence iterator does, segments
// each sentence and places the morphemes at offsets into text. Engines use
// it so whole-text and streamed analyses of the same input agree.
func SegmentSentences(text string, segment func(sentence string) []Morpheme) []Morpheme {
	var out []Morpheme
	base := 0
	data := []byte(text)
	for len(data) > 0 {
		advance, token, _ := ScanSentences(data, true)
		if advance == 0 {
			break
		}
		for _, m := range segment(string(token)) {
			m.Begin += base
			m.End += base
			out = append(out, m)
		}
		base += utf8.RuneCount(token)
		data = data[advance:]
	}
	return out
}

// TokenizeFunc analyzes one unit of text.
type TokenizeFunc func(mode SplitMode, text string) (*List, error)

type sentenceIterator struct {
	scanner  *bufio.Scanner
	mode     SplitMode
	tokenize TokenizeFunc
	current  *List
	err      error
}

// NewSentenceIterator splits r into sentences and analyzes each with tokenize.
func NewSentenceIterator(r io.Reader, mode SplitMode, tokenize TokenizeFunc) SentenceIterator {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), (MaxSentenceLength+1)*utf8.UTFMax)
	scanner.Split(ScanSentences)
	return &sentenceIterator{
		scanner:  scanner,
		mode:     mode,
		tokenize: tokenize,
	}
}

func (s *sentenceIterator) Next() bool {
	if s.err != nil {
		return false
	}
	if !s.scanner.Scan() {
		s.err = s.scanner.Err()
		s.current = nil
		return false
	}
	list, err := s.tokenize(s.mode, s.scanner.Text())
	if err != nil {
		s.err = err
		s.current = nil
		return false
	}
	s.current = list
	return true
}

func (s *sentenceIterator) Sentence() *List {
	return s.current
}

func (s *sentenceIterator) Err() error {
	return s.err
}
