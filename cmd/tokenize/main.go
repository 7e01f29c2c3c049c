package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/kerem-kaynak/ja-analysis/pkg/dictionary"
	"github.com/kerem-kaynak/ja-analysis/pkg/kagome"
	"github.com/kerem-kaynak/ja-analysis/pkg/lexicon"
	"github.com/kerem-kaynak/ja-analysis/pkg/morph"
	"github.com/kerem-kaynak/ja-analysis/pkg/tokenizer"
)

func main() {
	modeFlag := flag.String("mode", "c", "split mode: a, b or c")
	keepPunct := flag.Bool("punct", false, "keep punctuation tokens")
	flag.Usage = func() {
		fmt.Println("Usage: tokenize [-mode a|b|c] [-punct] <lexicon.tsv|kagome:ipa> [text]")
		fmt.Println("       tokenize [-mode a|b|c] <lexicon.tsv|kagome:ipa>          (interactive mode)")
	}
	flag.Parse()
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	mode, err := morph.ParseSplitMode(*modeFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	dict, desc, err := openDictionary(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading dictionary: %v\n", err)
		os.Exit(1)
	}

	handle := dictionary.New(flag.Arg(0), dict)
	cache := tokenizer.NewCache(tokenizer.DefaultOptions())
	tok := tokenizer.NewCachingTokenizer(dictionary.NewTokenizer(handle), mode, cache, !*keepPunct)

	// If text provided as argument, tokenize and exit
	if flag.NArg() > 1 {
		text := strings.Join(flag.Args()[1:], " ")
		printTokens(tok, text, "")
		return
	}

	// Interactive mode
	fmt.Println("Japanese Tokenizer (interactive mode)")
	fmt.Printf("Dictionary loaded: %s, split mode %s\n", desc, mode)
	fmt.Println("Type a sentence, press Enter to tokenize. :stats shows cache counters. Ctrl+C to exit.")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		text := scanner.Text()
		switch text {
		case "":
			continue
		case ":stats":
			stats := tok.CacheStats()
			fmt.Printf("  hits=%d misses=%d evictions=%d entries=%d\n\n", stats.Hits, stats.Misses, stats.Evictions, stats.Entries)
			continue
		}
		printTokens(tok, text, "  ")
		fmt.Println()
	}
}

func openDictionary(arg string) (morph.Dictionary, string, error) {
	if variant, ok := strings.CutPrefix(arg, "kagome:"); ok {
		d, err := kagome.New(variant)
		if err != nil {
			return nil, "", err
		}
		return d, "kagome " + variant, nil
	}
	d, err := lexicon.Open(arg)
	if err != nil {
		return nil, "", err
	}
	return d, fmt.Sprintf("%d words", d.WordCount()), nil
}

func printTokens(tok *tokenizer.CachingTokenizer, text, indent string) {
	tokens, err := tok.TokenizeString(text)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%sError: %v\n", indent, err)
		return
	}
	output, _ := json.Marshal(tokens)
	fmt.Printf("%s%s\n", indent, output)
}
