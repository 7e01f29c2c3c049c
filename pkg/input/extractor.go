// Package input reads a bounded prefix of a character stream so the analysis
// cache can decide whether the whole input is small enough to cache.
package input

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode/utf8"
)

// DefaultMaxSize is the default extraction bound in runes.
const DefaultMaxSize = 32767

// Strategy selects how input is extracted.
type Strategy int

const (
	// StrategyNone never extracts; all input is streamed.
	StrategyNone Strategy = iota
	// StrategyCopy copies up to the bound into a pooled buffer.
	StrategyCopy
	// StrategyChained takes the whole text of an unread StringReader without
	// copying and falls back to StrategyCopy for other readers.
	StrategyChained
)

// ParseStrategy parses "none", "copy" or "chained". An empty string selects
// StrategyChained.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "noop":
		return StrategyNone, nil
	case "copy":
		return StrategyCopy, nil
	case "chained", "":
		return StrategyChained, nil
	}
	return StrategyNone, fmt.Errorf("invalid extractor strategy %q", s)
}

func (s Strategy) String() string {
	switch s {
	case StrategyNone:
		return "none"
	case StrategyCopy:
		return "copy"
	case StrategyChained:
		return "chained"
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// ExtractionResult is the outcome of a bounded read.
type ExtractionResult struct {
	// Data is the extracted prefix.
	Data string
	// Remaining is true when unread input may follow Data.
	Remaining bool
	// Rest continues the stream right after Data.
	Rest io.Reader
}

// Extractor is safe for concurrent use; buffers are pooled per call.
type Extractor struct {
	strategy Strategy
	maxSize  int
}

// NewExtractor creates an extractor bounded to maxSize runes.
func NewExtractor(strategy Strategy, maxSize int) *Extractor {
	return &Extractor{strategy: strategy, maxSize: maxSize}
}

// Strategy returns the configured strategy.
func (e *Extractor) Strategy() Strategy {
	return e.strategy
}

// MaxSize returns the extraction bound in runes.
func (e *Extractor) MaxSize() int {
	return e.maxSize
}

// CanExtract reports whether Extract can do anything useful with r.
func (e *Extractor) CanExtract(r io.Reader) bool {
	switch e.strategy {
	case StrategyCopy, StrategyChained:
		return true
	}
	return false
}

// Extract reads at most MaxSize runes from r. Data shorter than the bound
// with Remaining false is the entire input. I/O errors are returned as is.
func (e *Extractor) Extract(r io.Reader) (ExtractionResult, error) {
	switch e.strategy {
	case StrategyCopy:
		return e.copy(r)
	case StrategyChained:
		if sr, ok := e.fastPath(r); ok {
			return sr.take(), nil
		}
		return e.copy(r)
	}
	return ExtractionResult{Remaining: true, Rest: r}, nil
}

func (e *Extractor) fastPath(r io.Reader) (*StringReader, bool) {
	sr, ok := r.(*StringReader)
	if !ok || !sr.untouched() {
		return nil, false
	}
	text := sr.Text()
	if len(text) < e.maxSize {
		return sr, true
	}
	return sr, utf8.RuneCountInString(text) < e.maxSize
}

var (
	readerPool = sync.Pool{New: func() any { return bufio.NewReaderSize(nil, 4096) }}
	bufferPool = sync.Pool{New: func() any { return new(bytes.Buffer) }}
)

func (e *Extractor) copy(r io.Reader) (ExtractionResult, error) {
	if e.maxSize <= 0 {
		return ExtractionResult{Remaining: true, Rest: r}, nil
	}

	br := readerPool.Get().(*bufio.Reader)
	br.Reset(r)
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufferPool.Put(buf)

	for count := 0; count < e.maxSize; count++ {
		ch, size, err := br.ReadRune()
		if err == io.EOF {
			data := buf.String()
			br.Reset(nil)
			readerPool.Put(br)
			return ExtractionResult{Data: data, Remaining: false, Rest: r}, nil
		}
		if err != nil {
			br.Reset(nil)
			readerPool.Put(br)
			return ExtractionResult{}, err
		}
		if ch == utf8.RuneError && size == 1 {
			// copy invalid bytes verbatim
			_ = br.UnreadRune()
			b, _ := br.ReadByte()
			buf.WriteByte(b)
			continue
		}
		buf.WriteRune(ch)
	}

	// br owns bytes read ahead of the bound, so it becomes the rest of the
	// stream and is not returned to the pool.
	return ExtractionResult{Data: buf.String(), Remaining: true, Rest: br}, nil
}

// Concat re-joins an extracted prefix with the rest of its stream.
func Concat(prefix string, rest io.Reader) io.Reader {
	if prefix == "" {
		return rest
	}
	return io.MultiReader(strings.NewReader(prefix), rest)
}
