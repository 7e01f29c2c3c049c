package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kerem-kaynak/ja-analysis/pkg/dictionary"
	"github.com/kerem-kaynak/ja-analysis/pkg/input"
	"github.com/kerem-kaynak/ja-analysis/pkg/lexicon"
	"github.com/kerem-kaynak/ja-analysis/pkg/morph"
	"github.com/kerem-kaynak/ja-analysis/pkg/tokenizer"
)

const (
	iterations = 100000
	warmup     = 1000
	boxWidth   = 62

	// ANSI color codes
	colorReset  = "\033[0m"
	colorCyan   = "\033[36m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorDim    = "\033[2m"
)

var line = strings.Repeat("─", boxWidth)

func main() {
	dictPath := "dictionaries/ja_core.tsv"
	if len(os.Args) > 1 {
		dictPath = os.Args[1]
	}

	// Load lexicon
	fmt.Print("Loading Japanese core lexicon... ")
	start := time.Now()
	dict, err := lexicon.Open(dictPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer dict.Close()
	fmt.Printf("done (%d words in %v)\n", dict.WordCount(), time.Since(start).Round(time.Millisecond))
	fmt.Printf("Iterations: %d (warmup: %d)\n", iterations, warmup)
	fmt.Println("Reference: 1 second = 1,000,000,000 ns")
	fmt.Println()

	handle := dictionary.New("core", dict)
	engine, err := dict.NewTokenizer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Test data
	shortText := "東京都に行った。"
	sentence := "国家公務員が東京都に行った。京都にも行った。"
	longText := strings.Repeat(sentence, 2000)

	cached := func(mode morph.SplitMode, opts tokenizer.Options) *tokenizer.CachingTokenizer {
		return tokenizer.NewCachingTokenizer(dictionary.NewTokenizer(handle), mode, tokenizer.NewCache(opts), true)
	}
	weighted := tokenizer.DefaultOptions()
	weighted.Strategy = tokenizer.StrategyWeighted
	disabled := tokenizer.DefaultOptions()
	disabled.Capacity = 0

	// Full pipeline benchmarks
	printHeader("CACHED ANALYSIS THROUGHPUT")
	for _, mode := range []morph.SplitMode{morph.SplitModeA, morph.SplitModeB, morph.SplitModeC} {
		tok := cached(mode, tokenizer.DefaultOptions())
		bench(fmt.Sprintf("Sentence (mode %s)", mode), func() { _, _ = tok.TokenizeString(sentence) })
	}
	weightedTok := cached(morph.SplitModeC, weighted)
	bench("Sentence (weighted)", func() { _, _ = weightedTok.TokenizeString(sentence) })
	printFooter()
	fmt.Println()

	printHeader("UNCACHED ANALYSIS THROUGHPUT")
	for _, mode := range []morph.SplitMode{morph.SplitModeA, morph.SplitModeC} {
		tok := cached(mode, disabled)
		bench(fmt.Sprintf("Sentence (mode %s)", mode), func() { _, _ = tok.TokenizeString(sentence) })
	}
	longTok := cached(morph.SplitModeC, tokenizer.DefaultOptions())
	benchN("Long text (bypass)", 100, func() { _, _ = longTok.TokenizeString(longText) })
	printFooter()
	fmt.Println()

	// Component breakdown
	printHeader("COMPONENT BREAKDOWN")
	bench("Lexicon lookup", func() {
		dict.Lookup("国家公務員")
	})
	bench("Engine tokenize (C)", func() {
		_, _ = engine.Tokenize(morph.SplitModeC, shortText)
	})
	list, _ := engine.Tokenize(morph.SplitModeC, sentence)
	bench("Re-split list to A", func() {
		list.Split(morph.SplitModeA)
	})
	copyEx := input.NewExtractor(input.StrategyCopy, input.DefaultMaxSize)
	bench("Extract (copy)", func() {
		_, _ = copyEx.Extract(strings.NewReader(sentence))
	})
	chainedEx := input.NewExtractor(input.StrategyChained, input.DefaultMaxSize)
	bench("Extract (chained)", func() {
		_, _ = chainedEx.Extract(input.NewStringReader(sentence))
	})
	printFooter()
	fmt.Println()

	// Normalizer steps
	printHeader("NORMALIZER STEPS BREAKDOWN")
	norm := lexicon.NewNormalizer()
	bench("Normalizer (full)", func() {
		norm.Normalize("ＡＢＣ東京ﾃｽﾄ")
	})
	bench("NFKC", func() {
		lexicon.NFKC("ＡＢＣ東京ﾃｽﾄ")
	})
	bench("Remove control chars", func() {
		lexicon.RemoveControlChars("東京\t都")
	})
	bench("Lowercase", func() {
		lexicon.Lowercase("ABC東京")
	})
	printFooter()
}

func bench(name string, fn func()) {
	benchN(name, iterations, fn)
}

func benchN(name string, n int, fn func()) {
	for i := 0; i < min(warmup, n); i++ {
		fn()
	}

	start := time.Now()
	for i := 0; i < n; i++ {
		fn()
	}
	elapsed := time.Since(start)

	opsPerSec := float64(n) / elapsed.Seconds()
	nsPerOp := float64(elapsed.Nanoseconds()) / float64(n)

	// Truncate name if too long
	displayName := name
	if len(displayName) > 26 {
		displayName = displayName[:26]
	}

	// Format with colors - build plain string for padding, colored for display
	plain := fmt.Sprintf("  %-26s %10.0f ops/sec %8.0f ns", displayName, opsPerSec, nsPerOp)
	padded := padLine(plain)

	// Now colorize the padded string
	colored := fmt.Sprintf("  %-26s %s%10.0f%s ops/sec %s%8.0f%s ns",
		displayName,
		colorGreen, opsPerSec, colorReset,
		colorYellow, nsPerOp, colorReset)

	// Calculate how much padding we added
	extraPad := len(padded) - len(plain)
	if extraPad > 0 {
		colored += strings.Repeat(" ", extraPad)
	}

	fmt.Println(colorDim + "│" + colorReset + colored + colorDim + "│" + colorReset)
}

func padLine(content string) string {
	if len(content) >= boxWidth {
		return content[:boxWidth]
	}
	return content + strings.Repeat(" ", boxWidth-len(content))
}

func printHeader(title string) {
	fmt.Println(colorDim + "┌" + line + "┐" + colorReset)
	printTitleRow("  " + title)
	fmt.Println(colorDim + "├" + line + "┤" + colorReset)
}

func printFooter() {
	fmt.Println(colorDim + "└" + line + "┘" + colorReset)
}

func printTitleRow(content string) {
	fmt.Println(colorDim + "│" + colorReset + colorCyan + padLine(content) + colorReset + colorDim + "│" + colorReset)
}
