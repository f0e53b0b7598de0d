package config

import (
	"fmt"
	"log"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv   = "NEWSINTEL_CONFIG"
	databasePathEnv = "NEWSINTEL_DB"
	logLevelEnv     = "NEWSINTEL_LOG_LEVEL"
)

// Config holds high-level settings required across the application.
type Config struct {
	Database   DatabaseConfig   `yaml:"database"`
	Logging    LoggingConfig    `yaml:"logging"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
	Collector  CollectorConfig  `yaml:"collector"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Signals    SignalConfig     `yaml:"signals"`
	Sentiment  SentimentConfig  `yaml:"sentiment"`
	Categories CategoryTaxonomy `yaml:"categories"`
	Sources    []SourceConfig   `yaml:"sources"`
}

// DatabaseConfig describes the SQLite database location.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig controls slog verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// SchedulerConfig defines how often collection cycles run.
type SchedulerConfig struct {
	Interval Duration `yaml:"interval"`
	// RetrainInterval drives the coarser periodic retraining path; zero
	// disables it.
	RetrainInterval Duration `yaml:"retrainInterval"`
}

// CollectorConfig bounds feed fetching and the per-source backoff machine.
type CollectorConfig struct {
	MaxConcurrency        int      `yaml:"maxConcurrency"`
	SourceTimeout         Duration `yaml:"sourceTimeout"`
	MaxArticlesPerSource  int      `yaml:"maxArticlesPerSource"`
	DegradedAfterFailures int      `yaml:"degradedAfterFailures"`
	BackoffFactor         float64  `yaml:"backoffFactor"`
	MaxBackoffInterval    Duration `yaml:"maxBackoffInterval"`
}

// ClassifierConfig tunes training and prediction.
type ClassifierConfig struct {
	HoldoutFraction         float64 `yaml:"holdoutFraction"`
	MinExamplesPerCategory  int     `yaml:"minExamplesPerCategory"`
	Smoothing               float64 `yaml:"smoothing"`
	ReclassifyOnRetrain     bool    `yaml:"reclassifyOnRetrain"`
	RecomputeSignalsOnRecat bool    `yaml:"recomputeSignalsOnReclassify"`
}

// SignalConfig carries the weighted risk/opportunity lexicons and thresholds.
type SignalConfig struct {
	MinSeverity        float64            `yaml:"minSeverity"`
	DecayHalfLife      Duration           `yaml:"decayHalfLife"`
	RiskLexicon        map[string]float64 `yaml:"risk"`
	OpportunityLexicon map[string]float64 `yaml:"opportunity"`
}

// SentimentConfig carries the weighted positive/negative term lists.
type SentimentConfig struct {
	Positive map[string]float64 `yaml:"positive"`
	Negative map[string]float64 `yaml:"negative"`
}

// CategoryTaxonomy maps a category name to its weighted seed keywords, used to
// bootstrap a training corpus when the store holds no labeled articles.
type CategoryTaxonomy map[string]map[string]float64

// Names returns the taxonomy's category names in sorted order.
func (t CategoryTaxonomy) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SourceConfig describes a single feed endpoint.
type SourceConfig struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Endpoint string `yaml:"endpoint"`
	Enabled  bool   `yaml:"enabled"`
}

// Load reads YAML configuration (if present) and applies environment
// overrides. The result is always validated.
func Load() (Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				return Config{}, fmt.Errorf("parse %s: %w", path, err)
			}
			cfg = mergeConfig(cfg, fileCfg)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databasePathEnv); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

// Validate rejects configurations that would break invariants at runtime
// rather than failing mid-cycle.
func (c Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("config: database path is empty")
	}
	if c.Scheduler.Interval <= 0 {
		return fmt.Errorf("config: scheduler interval must be positive")
	}
	if c.Collector.MaxConcurrency <= 0 {
		return fmt.Errorf("config: collector maxConcurrency must be positive")
	}
	if c.Collector.SourceTimeout <= 0 {
		return fmt.Errorf("config: collector sourceTimeout must be positive")
	}
	if c.Collector.BackoffFactor < 1 {
		return fmt.Errorf("config: backoffFactor must be >= 1")
	}
	if c.Classifier.HoldoutFraction <= 0 || c.Classifier.HoldoutFraction >= 1 {
		return fmt.Errorf("config: holdoutFraction must be in (0, 1)")
	}
	if c.Classifier.MinExamplesPerCategory < 2 {
		return fmt.Errorf("config: minExamplesPerCategory must be at least 2")
	}
	if len(c.Categories) == 0 {
		return fmt.Errorf("config: category taxonomy is empty")
	}

	seen := map[string]bool{}
	for _, src := range c.Sources {
		if src.ID == "" || src.Endpoint == "" {
			return fmt.Errorf("config: source %q needs both id and endpoint", src.Name)
		}
		if seen[src.ID] {
			return fmt.Errorf("config: duplicate source id %q", src.ID)
		}
		seen[src.ID] = true
	}
	return nil
}

// EnabledSources filters the registry down to sources the collector may visit.
func (c Config) EnabledSources() []SourceConfig {
	enabled := make([]SourceConfig, 0, len(c.Sources))
	for _, src := range c.Sources {
		if src.Enabled {
			enabled = append(enabled, src)
		}
	}
	return enabled
}

func mergeConfig(base, override Config) Config {
	if override.Database.Path != "" {
		base.Database = override.Database
	}
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	if override.Scheduler.Interval != 0 {
		base.Scheduler.Interval = override.Scheduler.Interval
	}
	if override.Scheduler.RetrainInterval != 0 {
		base.Scheduler.RetrainInterval = override.Scheduler.RetrainInterval
	}

	if override.Collector.MaxConcurrency != 0 {
		base.Collector.MaxConcurrency = override.Collector.MaxConcurrency
	}
	if override.Collector.SourceTimeout != 0 {
		base.Collector.SourceTimeout = override.Collector.SourceTimeout
	}
	if override.Collector.MaxArticlesPerSource != 0 {
		base.Collector.MaxArticlesPerSource = override.Collector.MaxArticlesPerSource
	}
	if override.Collector.DegradedAfterFailures != 0 {
		base.Collector.DegradedAfterFailures = override.Collector.DegradedAfterFailures
	}
	if override.Collector.BackoffFactor != 0 {
		base.Collector.BackoffFactor = override.Collector.BackoffFactor
	}
	if override.Collector.MaxBackoffInterval != 0 {
		base.Collector.MaxBackoffInterval = override.Collector.MaxBackoffInterval
	}

	if override.Classifier.HoldoutFraction != 0 {
		base.Classifier.HoldoutFraction = override.Classifier.HoldoutFraction
	}
	if override.Classifier.MinExamplesPerCategory != 0 {
		base.Classifier.MinExamplesPerCategory = override.Classifier.MinExamplesPerCategory
	}
	if override.Classifier.Smoothing != 0 {
		base.Classifier.Smoothing = override.Classifier.Smoothing
	}
	if override.Classifier.ReclassifyOnRetrain {
		base.Classifier.ReclassifyOnRetrain = true
	}
	if override.Classifier.RecomputeSignalsOnRecat {
		base.Classifier.RecomputeSignalsOnRecat = true
	}

	if override.Signals.MinSeverity != 0 {
		base.Signals.MinSeverity = override.Signals.MinSeverity
	}
	if override.Signals.DecayHalfLife != 0 {
		base.Signals.DecayHalfLife = override.Signals.DecayHalfLife
	}
	if len(override.Signals.RiskLexicon) > 0 {
		base.Signals.RiskLexicon = override.Signals.RiskLexicon
	}
	if len(override.Signals.OpportunityLexicon) > 0 {
		base.Signals.OpportunityLexicon = override.Signals.OpportunityLexicon
	}

	if len(override.Sentiment.Positive) > 0 {
		base.Sentiment.Positive = override.Sentiment.Positive
	}
	if len(override.Sentiment.Negative) > 0 {
		base.Sentiment.Negative = override.Sentiment.Negative
	}

	if len(override.Categories) > 0 {
		base.Categories = override.Categories
	}
	if len(override.Sources) > 0 {
		base.Sources = override.Sources
	}

	return base
}
