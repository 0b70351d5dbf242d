package trend

import (
	"math"

	"github.com/evdnx/tacore/indicator/core"
	"github.com/evdnx/tacore/indicator/window"
)

// DefaultHMASpan is the standard Hull Moving Average period.
const DefaultHMASpan = 9

// HullMovingAverage calculates the Hull Moving Average (HMA):
//
//	HMA(n) = WMA(2·WMA(n/2) − WMA(n), ⌊√n⌋)
//
// n/2 and ⌊√n⌋ are floored at 1.
type HullMovingAverage struct {
	core.Definition
	span   int
	source core.Field
}

// NewHullMovingAverage initializes with the standard period (9).
func NewHullMovingAverage() (*HullMovingAverage, error) {
	return NewHullMovingAverageWithParams(DefaultHMASpan, core.Close)
}

// NewHullMovingAverageWithParams initializes with a custom period and source.
func NewHullMovingAverageWithParams(span int, source core.Field) (*HullMovingAverage, error) {
	if span < 1 {
		return nil, core.InvalidParam("span", "must be at least 1, got %d", span)
	}
	half := span / 2
	if half < 1 {
		half = 1
	}
	sqrtSpan := int(math.Sqrt(float64(span)))
	if sqrtSpan < 1 {
		sqrtSpan = 1
	}

	full, err := window.NewNode(window.KindWMA, source, span)
	if err != nil {
		return nil, err
	}
	halfWMA, err := window.NewNode(window.KindWMA, source, half)
	if err != nil {
		return nil, err
	}
	raw := core.NewLinear(core.Term{Coef: 2, Node: halfWMA}, core.Term{Coef: -1, Node: full})
	hma, err := window.NewNode(window.KindWMA, raw, sqrtSpan)
	if err != nil {
		return nil, err
	}
	return &HullMovingAverage{
		Definition: core.NewDefinition("hma", core.SourceLabel("hma", source, span), core.Output{Node: hma}),
		span:       span,
		source:     source,
	}, nil
}

// HullMovingAverageFromParams builds an HMA from request parameters (span, source).
func HullMovingAverageFromParams(p core.Params) (core.Indicator, error) {
	if err := p.Check("span", "source"); err != nil {
		return nil, err
	}
	span, err := p.Int("span", DefaultHMASpan)
	if err != nil {
		return nil, err
	}
	source, err := p.Source(core.Close)
	if err != nil {
		return nil, err
	}
	hma, err := NewHullMovingAverageWithParams(span, source)
	if err != nil {
		return nil, err
	}
	return hma, nil
}

func (h *HullMovingAverage) Span() int { return h.span }
