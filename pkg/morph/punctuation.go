package morph

import "unicode"

var punctuationTables = []*unicode.RangeTable{
	unicode.Zs, unicode.Zl, unicode.Zp,
	unicode.Cc, unicode.Cf,
	unicode.P,
	unicode.S,
}

// IsPunctuation reports whether s is non-empty and made only of separator,
// control, format, punctuation or symbol runes.
func IsPunctuation(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsOneOf(punctuationTables, r) {
			return false
		}
	}
	return true
}
