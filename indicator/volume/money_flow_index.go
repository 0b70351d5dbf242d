package volume

import (
	"github.com/evdnx/tacore/indicator/core"
	"github.com/evdnx/tacore/indicator/window"
)

// DefaultMFIPeriod is the standard Money Flow Index period.
const DefaultMFIPeriod = 14

// MoneyFlowIndex is a volume-weighted RSI. Raw money flow (typical price ×
// volume) counts as positive when the typical price rises against the
// previous bar and negative when it falls; over the last period bars
//
//	MFI = 100 · positive / (positive + negative)
//
// Textbook edge cases are kept: no negative flow yields 100, no flow at all
// yields 50.
type MoneyFlowIndex struct {
	core.Definition
	period int
}

// NewMoneyFlowIndex creates an MFI with the default period (14).
func NewMoneyFlowIndex() (*MoneyFlowIndex, error) {
	return NewMoneyFlowIndexWithParams(DefaultMFIPeriod)
}

// NewMoneyFlowIndexWithParams creates an MFI with a custom period.
func NewMoneyFlowIndexWithParams(period int) (*MoneyFlowIndex, error) {
	if period < 1 {
		return nil, core.InvalidParam("span", "must be at least 1, got %d", period)
	}
	tp := core.TypicalPrice()
	prevTP := core.Prev(tp)
	flow := rawMoneyFlow()

	positive := core.NewPointwise("mfi.positive", nil, func(x []float64) float64 {
		if x[0] > x[1] {
			return x[2]
		}
		return 0
	}, tp, prevTP, flow)
	negative := core.NewPointwise("mfi.negative", nil, func(x []float64) float64 {
		if x[0] < x[1] {
			return x[2]
		}
		return 0
	}, tp, prevTP, flow)

	posSum, err := window.NewNode(window.KindSum, positive, period)
	if err != nil {
		return nil, err
	}
	negSum, err := window.NewNode(window.KindSum, negative, period)
	if err != nil {
		return nil, err
	}
	mfi := core.NewPointwise("mfi.ratio", nil, func(x []float64) float64 {
		pos, neg := x[0], x[1]
		switch {
		case pos == 0 && neg == 0:
			return 50
		case neg == 0:
			return 100
		case pos == 0:
			return 0
		}
		return 100 * pos / (pos + neg)
	}, posSum, negSum)

	return &MoneyFlowIndex{
		Definition: core.NewDefinition("mfi", core.Label("mfi", period), core.Output{Node: mfi}),
		period:     period,
	}, nil
}

// MoneyFlowIndexFromParams builds an MFI from request parameters (span).
func MoneyFlowIndexFromParams(p core.Params) (core.Indicator, error) {
	if err := p.Check("span"); err != nil {
		return nil, err
	}
	period, err := p.Int("span", DefaultMFIPeriod)
	if err != nil {
		return nil, err
	}
	mfi, err := NewMoneyFlowIndexWithParams(period)
	if err != nil {
		return nil, err
	}
	return mfi, nil
}

func (m *MoneyFlowIndex) Period() int { return m.period }

// rawMoneyFlow returns the typical price × volume node.
func rawMoneyFlow() core.Node {
	return core.NewPointwise("money_flow", nil, func(x []float64) float64 {
		return x[0] * x[1]
	}, core.TypicalPrice(), core.Volume)
}
