package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kerem-kaynak/ja-analysis/pkg/tokenizer"
)

type staticSource struct {
	stats    []tokenizer.IndexStats
	versions map[string]uint64
}

func (s staticSource) CacheStats() []tokenizer.IndexStats   { return s.stats }
func (s staticSource) DictionaryVersions() map[string]uint64 { return s.versions }

func TestCollector(t *testing.T) {
	source := staticSource{
		stats: []tokenizer.IndexStats{{
			Index:   "products",
			Options: tokenizer.DefaultOptions(),
			Stats:   tokenizer.Stats{Hits: 5, Misses: 2, Evictions: 1, Entries: 3},
		}},
		versions: map[string]uint64{"core": 2},
	}

	expected := `
# HELP ja_analysis_cache_hits_total Analyses served from the cache.
# TYPE ja_analysis_cache_hits_total counter
ja_analysis_cache_hits_total{index="products",strategy="generational"} 5
# HELP ja_analysis_cache_entries Live cache entries.
# TYPE ja_analysis_cache_entries gauge
ja_analysis_cache_entries{index="products",strategy="generational"} 3
# HELP ja_analysis_dictionary_version Number of reloads applied to a dictionary.
# TYPE ja_analysis_dictionary_version gauge
ja_analysis_dictionary_version{dictionary="core"} 2
`
	err := testutil.CollectAndCompare(NewCollector(source), strings.NewReader(expected),
		"ja_analysis_cache_hits_total",
		"ja_analysis_cache_entries",
		"ja_analysis_dictionary_version",
	)
	if err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}

	if n := testutil.CollectAndCount(NewCollector(source)); n != 5 {
		t.Errorf("metric count = %d, want 5", n)
	}
}
