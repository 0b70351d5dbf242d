package momentum

import (
	"github.com/evdnx/tacore/indicator/core"
	"github.com/evdnx/tacore/indicator/window"
)

const (
	DefaultStochasticKPeriod = 14
	DefaultStochasticDPeriod = 3
)

// Stochastic output names.
const (
	StochasticK = "k"
	StochasticD = "d"
)

// StochasticOscillator computes the fast stochastic oscillator:
//
//	%K = 100 · (close − lowest low) / (highest high − lowest low)
//	%D = SMA(%K, dPeriod)
//
// A flat window (zero range) yields %K = 0.
type StochasticOscillator struct {
	core.Definition
	kPeriod int
	dPeriod int
}

// NewStochasticOscillator creates the oscillator with the default 14/3 periods.
func NewStochasticOscillator() (*StochasticOscillator, error) {
	return NewStochasticOscillatorWithParams(DefaultStochasticKPeriod, DefaultStochasticDPeriod)
}

// NewStochasticOscillatorWithParams creates the oscillator with custom
// %K and %D periods.
func NewStochasticOscillatorWithParams(kPeriod, dPeriod int) (*StochasticOscillator, error) {
	if kPeriod < 1 {
		return nil, core.InvalidParam("k", "must be at least 1, got %d", kPeriod)
	}
	if dPeriod < 1 {
		return nil, core.InvalidParam("d", "must be at least 1, got %d", dPeriod)
	}
	lowest, err := window.NewNode(window.KindMin, core.Low, kPeriod)
	if err != nil {
		return nil, err
	}
	highest, err := window.NewNode(window.KindMax, core.High, kPeriod)
	if err != nil {
		return nil, err
	}
	k := core.NewPointwise("stoch.k", nil, func(x []float64) float64 {
		close, lo, hi := x[0], x[1], x[2]
		rangeHL := hi - lo
		if rangeHL == 0 {
			return 0
		}
		return (close - lo) / rangeHL * 100
	}, core.Close, lowest, highest)
	d, err := window.NewNode(window.KindMean, k, dPeriod)
	if err != nil {
		return nil, err
	}
	return &StochasticOscillator{
		Definition: core.NewDefinition("stoch", core.Label("stoch", kPeriod, dPeriod),
			core.Output{Name: StochasticK, Node: k},
			core.Output{Name: StochasticD, Node: d},
		),
		kPeriod: kPeriod,
		dPeriod: dPeriod,
	}, nil
}

// StochasticOscillatorFromParams builds the oscillator from request
// parameters (k, d).
func StochasticOscillatorFromParams(p core.Params) (core.Indicator, error) {
	if err := p.Check("k", "d"); err != nil {
		return nil, err
	}
	k, err := p.Int("k", DefaultStochasticKPeriod)
	if err != nil {
		return nil, err
	}
	d, err := p.Int("d", DefaultStochasticDPeriod)
	if err != nil {
		return nil, err
	}
	stoch, err := NewStochasticOscillatorWithParams(k, d)
	if err != nil {
		return nil, err
	}
	return stoch, nil
}
