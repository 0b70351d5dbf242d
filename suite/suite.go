package suite

import (
	"fmt"

	"github.com/evdnx/tacore/config"
	"github.com/evdnx/tacore/engine"
	"github.com/evdnx/tacore/indicator"
	"github.com/evdnx/tacore/indicator/core"
)

// ---------------------------------------------------------------------
// IndicatorSuite – a registry, an engine and a fixed request set.
// ---------------------------------------------------------------------

type IndicatorSuite struct {
	engine   *engine.Engine
	requests []engine.Request
}

// DefaultRequests is the standard preset: SMA 20, EMA 20, RSI 14,
// MACD 12/26/9, Bollinger 20/2 and ATR 14.
func DefaultRequests() []engine.Request {
	return []engine.Request{
		{Name: indicator.SMA, Params: core.Params{"span": 20}},
		{Name: indicator.EMA, Params: core.Params{"span": 20}},
		{Name: indicator.RSI, Params: core.Params{"span": 14}},
		{Name: indicator.MACD, Params: core.Params{"fast": 12, "slow": 26, "signal": 9}},
		{Name: indicator.BBands, Params: core.Params{"span": 20, "k": 2.0}},
		{Name: indicator.ATR, Params: core.Params{"span": 14}},
	}
}

// ScalpingRequests is a short-horizon preset for intraday bars.
func ScalpingRequests() []engine.Request {
	return []engine.Request{
		{Name: indicator.EMA, Params: core.Params{"span": 9}},
		{Name: indicator.EMA, Params: core.Params{"span": 21}},
		{Name: indicator.HMA, Params: core.Params{"span": 9}},
		{Name: indicator.RSI, Params: core.Params{"span": 5}},
		{Name: indicator.MFI, Params: core.Params{"span": 5}},
		{Name: indicator.Stoch, Params: core.Params{"k": 5, "d": 3}},
		{Name: indicator.ATR, Params: core.Params{"span": 7}},
		{Name: indicator.VWAP},
	}
}

// NewIndicatorSuite creates a suite with the library defaults and the
// standard preset.
func NewIndicatorSuite() (*IndicatorSuite, error) {
	return NewIndicatorSuiteWithConfig(config.DefaultConfig())
}

// NewScalpingIndicatorSuite creates a suite evaluating ScalpingRequests.
func NewScalpingIndicatorSuite() (*IndicatorSuite, error) {
	cfg := config.DefaultConfig()
	cfg.Indicators = toConfig(ScalpingRequests())
	return NewIndicatorSuiteWithConfig(cfg)
}

// NewIndicatorSuiteWithConfig builds a suite from cfg. The configured
// indicators replace the standard preset when present. Every request is
// validated here, so a suite that was created never fails on configuration.
func NewIndicatorSuiteWithConfig(cfg config.Config, opts ...engine.Option) (*IndicatorSuite, error) {
	eng, err := engine.NewWithConfig(indicator.NewRegistryWithConfig(cfg), cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	requests := DefaultRequests()
	if len(cfg.Indicators) > 0 {
		requests = engine.RequestsFromConfig(cfg.Indicators)
	}
	if _, err := eng.Columns(requests); err != nil {
		return nil, fmt.Errorf("invalid suite requests: %w", err)
	}

	return &IndicatorSuite{
		engine:   eng,
		requests: requests,
	}, nil
}

// Requests returns a copy of the suite's request set.
func (suite *IndicatorSuite) Requests() []engine.Request {
	out := make([]engine.Request, len(suite.requests))
	copy(out, suite.requests)
	return out
}

// Columns returns the output column names in evaluation order.
func (suite *IndicatorSuite) Columns() []string {
	cols, _ := suite.engine.Columns(suite.requests)
	return cols
}

// Evaluate computes every indicator of the suite over frame.
func (suite *IndicatorSuite) Evaluate(frame *core.Frame) (*core.Frame, error) {
	return suite.engine.Evaluate(frame, suite.requests)
}

// Latest evaluates frame and returns the last value of every output column.
// Columns still in warm-up report a missing value.
func (suite *IndicatorSuite) Latest(frame *core.Frame) (map[string]float64, error) {
	out, err := suite.Evaluate(frame)
	if err != nil {
		return nil, err
	}
	latest := make(map[string]float64, len(out.Names()))
	for _, name := range out.Names() {
		col, _ := out.Column(name)
		latest[name] = col.Last()
	}
	return latest, nil
}

func toConfig(reqs []engine.Request) []config.IndicatorRequest {
	out := make([]config.IndicatorRequest, len(reqs))
	for i, r := range reqs {
		out[i] = config.IndicatorRequest{Name: r.Name, As: r.As, Params: r.Params}
	}
	return out
}
