package morph

import "strings"

// POSLister is implemented by dictionaries that can enumerate the
// part-of-speech tags they produce.
type POSLister interface {
	PartsOfSpeech() [][]string
}

// ParsePOS parses a comma separated tag prefix such as "名詞,固有名詞".
// Trailing "*" levels match anything and are dropped.
func ParsePOS(s string) []string {
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	for len(parts) > 0 && (parts[len(parts)-1] == "*" || parts[len(parts)-1] == "") {
		parts = parts[:len(parts)-1]
	}
	return parts
}
