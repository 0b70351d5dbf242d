package momentum

import (
	"github.com/evdnx/tacore/indicator/core"
	"github.com/evdnx/tacore/indicator/filter"
)

const (
	DefaultRSISpan = 14

	// rsiNeutral is reported when the window holds neither gains nor losses.
	rsiNeutral = 50.0
)

// RelativeStrengthIndex follows J. Wilder's formulation: gains and losses
// are smoothed with Wilder's average (seeded by default with the simple
// average of the first span changes) and combined as
//
//	RSI = 100 · avgGain / (avgGain + avgLoss)
//
// which equals 100 − 100/(1 + RS). A zero average loss yields 100; zero gains
// and losses yield 50.
type RelativeStrengthIndex struct {
	core.Definition
	span   int
	seed   filter.Seed
	source core.Field
}

// NewRelativeStrengthIndex creates an RSI of close with the default span (14).
func NewRelativeStrengthIndex() (*RelativeStrengthIndex, error) {
	return NewRelativeStrengthIndexWithParams(DefaultRSISpan, filter.SeedSMA, core.Close)
}

// NewRelativeStrengthIndexWithParams creates an RSI with a custom span, seed
// policy for both averages, and source.
func NewRelativeStrengthIndexWithParams(span int, seed filter.Seed, source core.Field) (*RelativeStrengthIndex, error) {
	if span < 1 {
		return nil, core.InvalidParam("span", "must be at least 1, got %d", span)
	}
	change := core.Sub(source, core.Prev(source))
	gain := core.NewPointwise("gain", nil, func(x []float64) float64 {
		if x[0] > 0 {
			return x[0]
		}
		return 0
	}, change)
	loss := core.NewPointwise("loss", nil, func(x []float64) float64 {
		if x[0] < 0 {
			return -x[0]
		}
		return 0
	}, change)

	avgGain, err := filter.NewNode(filter.KindWilder, gain, span, seed)
	if err != nil {
		return nil, err
	}
	avgLoss, err := filter.NewNode(filter.KindWilder, loss, span, seed)
	if err != nil {
		return nil, err
	}
	rsi := core.NewPointwise("rsi.ratio", nil, strengthRatio, avgGain, avgLoss)

	return &RelativeStrengthIndex{
		Definition: core.NewDefinition("rsi", core.SourceLabel("rsi", source, seed.LabelParams(span)...), core.Output{Node: rsi}),
		span:       span,
		seed:       seed,
		source:     source,
	}, nil
}

// RelativeStrengthIndexFromParams builds an RSI from request parameters
// (span, seed, source).
func RelativeStrengthIndexFromParams(p core.Params) (core.Indicator, error) {
	if err := p.Check("span", "seed", "source"); err != nil {
		return nil, err
	}
	span, err := p.Int("span", DefaultRSISpan)
	if err != nil {
		return nil, err
	}
	seed, err := filter.SeedParam(p, filter.SeedSMA)
	if err != nil {
		return nil, err
	}
	source, err := p.Source(core.Close)
	if err != nil {
		return nil, err
	}
	rsi, err := NewRelativeStrengthIndexWithParams(span, seed, source)
	if err != nil {
		return nil, err
	}
	return rsi, nil
}

func (r *RelativeStrengthIndex) Span() int { return r.span }

// strengthRatio maps the (gain, loss) averages to 0–100.
func strengthRatio(x []float64) float64 {
	up, down := x[0], x[1]
	switch {
	case down == 0 && up == 0:
		return rsiNeutral
	case down == 0:
		return 100
	}
	return 100 * up / (up + down)
}
