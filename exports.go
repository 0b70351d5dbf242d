// Package tacore computes technical-analysis indicators over aligned numeric
// series. This package re-exports the most common entry points; the
// sub-packages hold the full API.
package tacore

import (
	"github.com/evdnx/tacore/config"
	"github.com/evdnx/tacore/engine"
	"github.com/evdnx/tacore/indicator"
	"github.com/evdnx/tacore/indicator/core"
	"github.com/evdnx/tacore/suite"
)

// ---- Data ----
type Frame = core.Frame
type Series = core.Series
type Params = core.Params

func NewFrame(index []int64, columns map[string][]float64) (*core.Frame, error) {
	return core.NewFrame(index, columns)
}

func NewSequenceFrame(columns map[string][]float64) (*core.Frame, error) {
	return core.NewSequenceFrame(columns)
}

// IsMissing reports whether v encodes a missing observation.
func IsMissing(v float64) bool { return core.IsMissing(v) }

// ---- Errors ----
var (
	ErrInvalidParameter = core.ErrInvalidParameter
	ErrMissingInput     = core.ErrMissingInput
	ErrUnknownIndicator = core.ErrUnknownIndicator
	ErrNonFinite        = core.ErrNonFinite
)

type ConfigError = core.ConfigError
type MissingInputError = core.MissingInputError
type NumericError = core.NumericError

// ---- Configuration ----
type Config = config.Config

func DefaultConfig() config.Config { return config.DefaultConfig() }

func LoadConfig(path string) (config.Config, error) { return config.Load(path) }

// ---- Engine ----
type Engine = engine.Engine
type Request = engine.Request

// NewEngine creates an engine over every built-in indicator.
func NewEngine(opts ...engine.Option) (*engine.Engine, error) {
	return engine.New(indicator.NewRegistry(), opts...)
}

// NewEngineWithConfig creates an engine over every built-in indicator using
// cfg for the engine settings and the default seed policy.
func NewEngineWithConfig(cfg config.Config, opts ...engine.Option) (*engine.Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return engine.NewWithConfig(indicator.NewRegistryWithConfig(cfg), cfg, opts...)
}

// ---- Indicator suite ----
type IndicatorSuite = suite.IndicatorSuite

func NewIndicatorSuite() (*suite.IndicatorSuite, error) {
	return suite.NewIndicatorSuite()
}

func NewIndicatorSuiteWithConfig(cfg config.Config) (*suite.IndicatorSuite, error) {
	return suite.NewIndicatorSuiteWithConfig(cfg)
}

func NewScalpingIndicatorSuite() (*suite.IndicatorSuite, error) {
	return suite.NewScalpingIndicatorSuite()
}
