package momentum

import (
	"github.com/evdnx/tacore/indicator/core"
	"github.com/evdnx/tacore/indicator/filter"
)

const (
	DefaultMACDFastPeriod   = 12
	DefaultMACDSlowPeriod   = 26
	DefaultMACDSignalPeriod = 9
)

// MACD output names.
const (
	MACDSignal    = "signal"
	MACDHistogram = "histogram"
)

// MACD implements the Moving Average Convergence Divergence indicator:
// the MACD line (fast EMA − slow EMA), the signal line (EMA of MACD) and the
// histogram (MACD − signal). The fast and slow EMAs are the same graph nodes
// a standalone EMA request of that span and seed produces.
type MACD struct {
	core.Definition
	fastPeriod   int
	slowPeriod   int
	signalPeriod int
	seed         filter.Seed
	source       core.Field
}

// NewMACD creates a MACD with the standard 12/26/9 periods.
func NewMACD() (*MACD, error) {
	return NewMACDWithParams(DefaultMACDFastPeriod, DefaultMACDSlowPeriod, DefaultMACDSignalPeriod, filter.SeedSMA, core.Close)
}

// NewMACDWithParams creates a MACD with custom fast/slow/signal periods.
func NewMACDWithParams(fastPeriod, slowPeriod, signalPeriod int, seed filter.Seed, source core.Field) (*MACD, error) {
	switch {
	case fastPeriod < 1:
		return nil, core.InvalidParam("fast", "must be at least 1, got %d", fastPeriod)
	case slowPeriod < 1:
		return nil, core.InvalidParam("slow", "must be at least 1, got %d", slowPeriod)
	case signalPeriod < 1:
		return nil, core.InvalidParam("signal", "must be at least 1, got %d", signalPeriod)
	case fastPeriod >= slowPeriod:
		return nil, core.InvalidParam("fast", "must be less than slow (%d), got %d", slowPeriod, fastPeriod)
	}

	fast, err := filter.NewNode(filter.KindEMA, source, fastPeriod, seed)
	if err != nil {
		return nil, err
	}
	slow, err := filter.NewNode(filter.KindEMA, source, slowPeriod, seed)
	if err != nil {
		return nil, err
	}
	line := core.Sub(fast, slow)
	signal, err := filter.NewNode(filter.KindEMA, line, signalPeriod, seed)
	if err != nil {
		return nil, err
	}
	hist := core.Sub(line, signal)

	label := core.SourceLabel("macd", source, seed.LabelParams(fastPeriod, slowPeriod, signalPeriod)...)
	return &MACD{
		Definition: core.NewDefinition("macd", label,
			core.Output{Node: line},
			core.Output{Name: MACDSignal, Node: signal},
			core.Output{Name: MACDHistogram, Node: hist},
		),
		fastPeriod:   fastPeriod,
		slowPeriod:   slowPeriod,
		signalPeriod: signalPeriod,
		seed:         seed,
		source:       source,
	}, nil
}

// MACDFromParams builds a MACD from request parameters (fast, slow, signal,
// seed, source). defaultSeed applies when the request does not name a seed.
func MACDFromParams(p core.Params, defaultSeed filter.Seed) (core.Indicator, error) {
	if err := p.Check("fast", "slow", "signal", "seed", "source"); err != nil {
		return nil, err
	}
	fast, err := p.Int("fast", DefaultMACDFastPeriod)
	if err != nil {
		return nil, err
	}
	slow, err := p.Int("slow", DefaultMACDSlowPeriod)
	if err != nil {
		return nil, err
	}
	signal, err := p.Int("signal", DefaultMACDSignalPeriod)
	if err != nil {
		return nil, err
	}
	seed, err := filter.SeedParam(p, defaultSeed)
	if err != nil {
		return nil, err
	}
	source, err := p.Source(core.Close)
	if err != nil {
		return nil, err
	}
	macd, err := NewMACDWithParams(fast, slow, signal, seed, source)
	if err != nil {
		return nil, err
	}
	return macd, nil
}

// Periods returns the fast, slow and signal periods.
func (m *MACD) Periods() (fast, slow, signal int) {
	return m.fastPeriod, m.slowPeriod, m.signalPeriod
}
