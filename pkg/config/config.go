// Package config loads and validates service configuration from YAML files
// with environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kerem-kaynak/ja-analysis/pkg/input"
	"github.com/kerem-kaynak/ja-analysis/pkg/morph"
	"github.com/kerem-kaynak/ja-analysis/pkg/tokenizer"
)

// Engines accepted in dictionary configuration.
const (
	EngineLexicon = "lexicon"
	EngineKagome  = "kagome"
)

// Config is the top-level configuration.
type Config struct {
	Server       ServerConfig                `yaml:"server"`
	Logging      LoggingConfig               `yaml:"logging"`
	Metrics      MetricsConfig               `yaml:"metrics"`
	Kafka        KafkaConfig                 `yaml:"kafka"`
	Dictionaries map[string]DictionaryConfig `yaml:"dictionaries"`
	Indexes      map[string]IndexConfig      `yaml:"indexes"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// KafkaConfig holds the reload topic subscription.
type KafkaConfig struct {
	Enabled       bool     `yaml:"enabled"`
	Brokers       []string `yaml:"brokers"`
	ConsumerGroup string   `yaml:"consumerGroup"`
	ReloadTopic   string   `yaml:"reloadTopic"`
}

// DictionaryConfig describes how to build one dictionary.
type DictionaryConfig struct {
	Engine string `yaml:"engine"`
	// Path is the lexicon TSV file of the lexicon engine.
	Path string `yaml:"path"`
	// Variant selects the kagome dictionary.
	Variant string `yaml:"variant"`
}

// IndexConfig configures analysis for one index.
type IndexConfig struct {
	Dictionary         string `yaml:"dictionary"`
	SplitMode          string `yaml:"splitMode"`
	DiscardPunctuation *bool  `yaml:"discardPunctuation"`
	CacheSize          *int   `yaml:"cacheSize"`
	CacheMaxInput      *int   `yaml:"cacheMaxInput"`
	CacheStrategy      string `yaml:"cacheStrategy"`
	CacheWeight        *int   `yaml:"cacheWeight"`
	Extractor          string `yaml:"extractor"`
	// StopTags drops morphemes by part-of-speech prefix, e.g. "助詞" or
	// "名詞,固有名詞".
	StopTags []string `yaml:"stopTags"`
}

// Punctuation reports whether punctuation is dropped, true by default.
func (c IndexConfig) Punctuation() bool {
	return c.DiscardPunctuation == nil || *c.DiscardPunctuation
}

// StopTagPrefixes returns the parsed stop tag prefixes. Empty tags are
// skipped.
func (c IndexConfig) StopTagPrefixes() [][]string {
	var out [][]string
	for _, tag := range c.StopTags {
		if pos := morph.ParsePOS(tag); len(pos) > 0 {
			out = append(out, pos)
		}
	}
	return out
}

// Mode returns the parsed split mode.
func (c IndexConfig) Mode() (morph.SplitMode, error) {
	return morph.ParseSplitMode(c.SplitMode)
}

// CacheOptions resolves the cache settings over their defaults.
func (c IndexConfig) CacheOptions() (tokenizer.Options, error) {
	opts := tokenizer.DefaultOptions()
	if c.CacheSize != nil {
		opts.Capacity = *c.CacheSize
	}
	if c.CacheMaxInput != nil {
		opts.MaxInput = *c.CacheMaxInput
	}
	if c.CacheWeight != nil {
		opts.Weight = *c.CacheWeight
	}

	strategy, err := tokenizer.ParseStrategy(c.CacheStrategy)
	if err != nil {
		return opts, err
	}
	opts.Strategy = strategy

	extractor, err := input.ParseStrategy(c.Extractor)
	if err != nil {
		return opts, err
	}
	opts.Extractor = extractor
	return opts, nil
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides over the defaults.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyDefaultIndexes(cfg)
	applyEnvOverrides(cfg)
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
		},
		Kafka: KafkaConfig{
			Brokers:       []string{"localhost:9092"},
			ConsumerGroup: "ja-analysis",
			ReloadTopic:   "dictionary-reload",
		},
	}
}

// applyDefaultIndexes adds a kagome-backed default index when the file
// configures none. It runs after decoding so file maps replace rather than
// merge with the defaults.
func applyDefaultIndexes(cfg *Config) {
	if len(cfg.Dictionaries) == 0 {
		cfg.Dictionaries = map[string]DictionaryConfig{
			"default": {Engine: EngineKagome, Variant: "ipa"},
		}
	}
	if len(cfg.Indexes) == 0 {
		cfg.Indexes = map[string]IndexConfig{
			"default": {Dictionary: "default"},
		}
	}
}

// applyEnvOverrides reads JA_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("JA_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("JA_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("JA_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("JA_METRICS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Metrics.Port = port
		}
	}
	if v := os.Getenv("JA_KAFKA_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Kafka.Enabled = enabled
		}
	}
	if v := os.Getenv("JA_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("JA_KAFKA_RELOAD_TOPIC"); v != "" {
		cfg.Kafka.ReloadTopic = v
	}
}

// Validate checks engines, modes, strategies and index references.
func (c *Config) Validate() error {
	for _, name := range sortedKeys(c.Dictionaries) {
		d := c.Dictionaries[name]
		switch d.Engine {
		case EngineLexicon:
			if d.Path == "" {
				return fmt.Errorf("dictionary %s: lexicon engine requires a path", name)
			}
		case EngineKagome:
		default:
			return fmt.Errorf("dictionary %s: unknown engine %q", name, d.Engine)
		}
	}

	for _, name := range sortedKeys(c.Indexes) {
		idx := c.Indexes[name]
		if _, ok := c.Dictionaries[idx.Dictionary]; !ok {
			return fmt.Errorf("index %s: unknown dictionary %q", name, idx.Dictionary)
		}
		if _, err := idx.Mode(); err != nil {
			return fmt.Errorf("index %s: %w", name, err)
		}
		if _, err := idx.CacheOptions(); err != nil {
			return fmt.Errorf("index %s: %w", name, err)
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
