package input

import (
	"io"
	"strings"
)

// StringReader is a resettable reader over a string whose full text the
// chained extractor can take without copying.
type StringReader struct {
	*strings.Reader
	text string
}

// NewStringReader returns a reader over s.
func NewStringReader(s string) *StringReader {
	return &StringReader{Reader: strings.NewReader(s), text: s}
}

// Reset rewinds the reader onto s.
func (r *StringReader) Reset(s string) {
	r.text = s
	r.Reader.Reset(s)
}

// Text returns the backing string.
func (r *StringReader) Text() string {
	return r.text
}

func (r *StringReader) untouched() bool {
	return r.Reader.Len() == len(r.text)
}

func (r *StringReader) take() ExtractionResult {
	_, _ = r.Reader.Seek(0, io.SeekEnd)
	return ExtractionResult{Data: r.text, Remaining: false, Rest: r}
}
