package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kerem-kaynak/ja-analysis/pkg/config"
	"github.com/kerem-kaynak/ja-analysis/pkg/lexicon"
	"github.com/kerem-kaynak/ja-analysis/pkg/reload"
)

func main() {
	if len(os.Args) < 3 {
		printUsage()
		os.Exit(1)
	}

	dictPath := os.Args[1]
	command := os.Args[2]

	entries, err := lexicon.ReadEntries(dictPath)
	if err != nil && !(os.IsNotExist(err) && command == "add") {
		fmt.Fprintf(os.Stderr, "Error loading lexicon: %v\n", err)
		os.Exit(1)
	}

	switch command {
	case "add":
		if len(os.Args) < 4 {
			fmt.Println("Error: add requires at least one entry")
			os.Exit(1)
		}
		for _, line := range os.Args[3:] {
			e, err := lexicon.ParseEntry(line)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error parsing entry '%s': %v\n", line, err)
				os.Exit(1)
			}
			if i := indexOf(entries, e.Surface); i >= 0 {
				entries[i] = e
				fmt.Printf("Updated: %s\n", e.Surface)
			} else {
				entries = append(entries, e)
				fmt.Printf("Added: %s\n", e.Surface)
			}
		}
		save(dictPath, entries)

	case "remove":
		if len(os.Args) < 4 {
			fmt.Println("Error: remove requires at least one word")
			os.Exit(1)
		}
		for _, word := range os.Args[3:] {
			i := indexOf(entries, word)
			if i < 0 {
				fmt.Fprintf(os.Stderr, "Error removing word '%s': not in lexicon\n", word)
				os.Exit(1)
			}
			entries = append(entries[:i], entries[i+1:]...)
			fmt.Printf("Removed: %s\n", word)
		}
		save(dictPath, entries)

	case "lookup":
		if len(os.Args) < 4 {
			fmt.Println("Error: lookup requires a word")
			os.Exit(1)
		}
		dict := compile(entries)
		defer dict.Close()
		word := os.Args[3]
		e, ok := dict.Lookup(word)
		if !ok {
			fmt.Printf("'%s' NOT in lexicon\n", word)
			os.Exit(1)
		}
		fmt.Println(e.String())

	case "check":
		dict := compile(entries)
		defer dict.Close()
		fmt.Printf("Lexicon compiles. Total words: %d\n", dict.WordCount())

	case "stats":
		dict := compile(entries)
		defer dict.Close()
		splitA, splitB := 0, 0
		for _, e := range dict.Entries() {
			if len(e.SplitA) > 0 {
				splitA++
			}
			if len(e.SplitB) > 0 {
				splitB++
			}
		}
		fmt.Printf("Lexicon: %s\n", dictPath)
		fmt.Printf("Word count: %d\n", dict.WordCount())
		fmt.Printf("Entries with A split: %d\n", splitA)
		fmt.Printf("Entries with B split: %d\n", splitB)

	case "reload":
		if len(os.Args) < 4 {
			fmt.Println("Error: reload requires a dictionary name")
			os.Exit(1)
		}
		configPath := "configs/development.yaml"
		if len(os.Args) > 4 {
			configPath = os.Args[4]
		}
		compile(entries).Close()
		publishReload(configPath, os.Args[3])

	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func indexOf(entries []lexicon.Entry, surface string) int {
	surface = strings.TrimSpace(surface)
	for i, e := range entries {
		if e.Surface == surface {
			return i
		}
	}
	return -1
}

func compile(entries []lexicon.Entry) *lexicon.Dictionary {
	dict, err := lexicon.New(entries)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error compiling lexicon: %v\n", err)
		os.Exit(1)
	}
	return dict
}

func save(path string, entries []lexicon.Entry) {
	compile(entries).Close()
	if err := lexicon.WriteEntries(path, entries); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing lexicon: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Total words: %d\n", len(entries))
}

func publishReload(configPath, name string) {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if len(cfg.Kafka.Brokers) == 0 || cfg.Kafka.ReloadTopic == "" {
		fmt.Fprintln(os.Stderr, "Error: config has no kafka brokers or reload topic")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := reload.Publish(ctx, cfg.Kafka, name); err != nil {
		fmt.Fprintf(os.Stderr, "Error publishing reload: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Reload requested for '%s' on %s\n", name, cfg.Kafka.ReloadTopic)
}

func printUsage() {
	fmt.Println("Usage: dictmgr <lexicon.tsv> <command> [args...]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  add <entry> [entry...]     Add or replace entries (tab separated columns)")
	fmt.Println("  remove <word> [word...]    Remove words from the lexicon")
	fmt.Println("  lookup <word>              Print the entry of a word")
	fmt.Println("  check                      Compile the lexicon and report errors")
	fmt.Println("  stats                      Show lexicon statistics")
	fmt.Println("  reload <name> [config]     Validate, then ask running services to reload <name>")
}
