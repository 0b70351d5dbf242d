package config

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/evdnx/tacore/indicator/filter"
)

// -----------------------------------------------------------------------------
// Exported defaults
// -----------------------------------------------------------------------------
const (
	DefaultWorkers       = 4
	DefaultPlanCacheSize = 128
	DefaultLogLevel      = "info"
	DefaultSeed          = string(filter.SeedSMA)

	// Upper bound for worker and cache sizes; larger values are treated as
	// configuration mistakes.
	maxReasonableSize = 1_000_000
)

// -----------------------------------------------------------------------------
// Config – central place for all engine and registry settings
// -----------------------------------------------------------------------------
type Config struct {
	Workers       int    `json:"workers" yaml:"workers"`             // concurrent node computations
	PlanCacheSize int    `json:"planCacheSize" yaml:"planCacheSize"` // compiled plans kept in the LRU
	LogLevel      string `json:"logLevel" yaml:"logLevel"`
	// DefaultSeed is the seed policy of recursive filters whose request does
	// not name one (sma, first or missing).
	DefaultSeed string `json:"defaultSeed" yaml:"defaultSeed"`

	Indicators []IndicatorRequest `json:"indicators,omitempty" yaml:"indicators,omitempty"`
}

// IndicatorRequest is one requested indicator: a registry name, an optional
// column label override and its parameters.
type IndicatorRequest struct {
	Name   string         `json:"name" yaml:"name"`
	As     string         `json:"as,omitempty" yaml:"as,omitempty"`
	Params map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
}

// DefaultConfig returns a sensible set of defaults with no requests.
func DefaultConfig() Config {
	return Config{
		Workers:       DefaultWorkers,
		PlanCacheSize: DefaultPlanCacheSize,
		LogLevel:      DefaultLogLevel,
		DefaultSeed:   DefaultSeed,
	}
}

// Validate checks that the configuration values are sensible.
func (c Config) Validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0, got %d", c.Workers)
	}
	if c.Workers > maxReasonableSize {
		return fmt.Errorf("workers is unreasonably large (%d); must be ≤ %d", c.Workers, maxReasonableSize)
	}
	if c.PlanCacheSize <= 0 {
		return fmt.Errorf("planCacheSize must be greater than 0, got %d", c.PlanCacheSize)
	}
	if c.PlanCacheSize > maxReasonableSize {
		return fmt.Errorf("planCacheSize is unreasonably large (%d); must be ≤ %d", c.PlanCacheSize, maxReasonableSize)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("logLevel: %w", err)
	}
	if _, err := filter.ParseSeed(c.DefaultSeed); err != nil {
		return fmt.Errorf("defaultSeed: %w", err)
	}
	for i, req := range c.Indicators {
		if req.Name == "" {
			return fmt.Errorf("indicators[%d]: name is required", i)
		}
	}
	return nil
}

// Level returns the parsed log level. Validate must have succeeded.
func (c Config) Level() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// Seed returns the parsed default seed policy. Validate must have succeeded.
func (c Config) Seed() filter.Seed {
	seed, err := filter.ParseSeed(c.DefaultSeed)
	if err != nil {
		return filter.SeedSMA
	}
	return seed
}

// Parse decodes a YAML document on top of DefaultConfig and validates the
// result. Fields absent from the document keep their defaults.
func Parse(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads and parses a YAML configuration file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return Parse(data)
}
