// Package metrics exports analysis cache and dictionary state to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kerem-kaynak/ja-analysis/pkg/tokenizer"
)

// Source provides the state a Collector reports on each scrape.
type Source interface {
	CacheStats() []tokenizer.IndexStats
	DictionaryVersions() map[string]uint64
}

// Collector reads cache counters and dictionary versions at scrape time, so
// the hot path keeps its own atomic counters and never touches Prometheus.
type Collector struct {
	source    Source
	hits      *prometheus.Desc
	misses    *prometheus.Desc
	evictions *prometheus.Desc
	entries   *prometheus.Desc
	version   *prometheus.Desc
}

// NewCollector creates a collector over source.
func NewCollector(source Source) *Collector {
	labels := []string{"index", "strategy"}
	return &Collector{
		source: source,
		hits: prometheus.NewDesc(
			"ja_analysis_cache_hits_total",
			"Analyses served from the cache.",
			labels, nil,
		),
		misses: prometheus.NewDesc(
			"ja_analysis_cache_misses_total",
			"Analyses computed because the cache had no entry.",
			labels, nil,
		),
		evictions: prometheus.NewDesc(
			"ja_analysis_cache_evictions_total",
			"Cache entries dropped by the eviction policy.",
			labels, nil,
		),
		entries: prometheus.NewDesc(
			"ja_analysis_cache_entries",
			"Live cache entries.",
			labels, nil,
		),
		version: prometheus.NewDesc(
			"ja_analysis_dictionary_version",
			"Number of reloads applied to a dictionary.",
			[]string{"dictionary"}, nil,
		),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.hits
	ch <- c.misses
	ch <- c.evictions
	ch <- c.entries
	ch <- c.version
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, s := range c.source.CacheStats() {
		strategy := s.Options.Strategy.String()
		ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(s.Stats.Hits), s.Index, strategy)
		ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(s.Stats.Misses), s.Index, strategy)
		ch <- prometheus.MustNewConstMetric(c.evictions, prometheus.CounterValue, float64(s.Stats.Evictions), s.Index, strategy)
		ch <- prometheus.MustNewConstMetric(c.entries, prometheus.GaugeValue, float64(s.Stats.Entries), s.Index, strategy)
	}
	for name, v := range c.source.DictionaryVersions() {
		ch <- prometheus.MustNewConstMetric(c.version, prometheus.GaugeValue, float64(v), name)
	}
}

// Register adds a collector over source to the default registry.
func Register(source Source) *Collector {
	c := NewCollector(source)
	prometheus.MustRegister(c)
	return c
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
