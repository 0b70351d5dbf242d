package volume

import (
	"fmt"

	"github.com/evdnx/tacore/indicator/core"
	"github.com/evdnx/tacore/indicator/window"
)

// VWAP calculates the Volume Weighted Average Price of the typical price.
// With span 0 the sums are cumulative from the first bar; otherwise they
// cover the last span bars. Positions with no traded volume are missing.
type VWAP struct {
	core.Definition
	span int
}

// NewVWAP constructs a cumulative VWAP.
func NewVWAP() *VWAP {
	vwap, _ := NewVWAPWithParams(0)
	return vwap
}

// NewVWAPWithParams constructs a cumulative (span 0) or rolling VWAP.
func NewVWAPWithParams(span int) (*VWAP, error) {
	if span < 0 {
		return nil, core.InvalidParam("span", "must be 0 (cumulative) or positive, got %d", span)
	}
	pv := rawMoneyFlow()

	var node core.Node
	label := "vwap"
	if span == 0 {
		node = &cumulativeVWAP{
			inputs: []core.Node{pv, core.Volume},
			key:    core.NodeKey("vwap.cumulative", nil, pv, core.Volume),
		}
	} else {
		pvSum, err := window.NewNode(window.KindSum, pv, span)
		if err != nil {
			return nil, err
		}
		volSum, err := window.NewNode(window.KindSum, core.Volume, span)
		if err != nil {
			return nil, err
		}
		node = core.NewPointwise("vwap.ratio", nil, vwapRatio, pvSum, volSum)
		label = core.Label("vwap", span)
	}
	return &VWAP{
		Definition: core.NewDefinition("vwap", label, core.Output{Node: node}),
		span:       span,
	}, nil
}

// VWAPFromParams builds a VWAP from request parameters (span).
func VWAPFromParams(p core.Params) (core.Indicator, error) {
	if err := p.Check("span"); err != nil {
		return nil, err
	}
	span, err := p.Int("span", 0)
	if err != nil {
		return nil, err
	}
	vwap, err := NewVWAPWithParams(span)
	if err != nil {
		return nil, err
	}
	return vwap, nil
}

func (v *VWAP) Span() int { return v.span }

func vwapRatio(x []float64) float64 {
	if x[1] == 0 {
		return core.Missing()
	}
	return x[0] / x[1]
}

// cumulativeVWAP folds price·volume and volume from the first bar. Bars with
// a missing input are skipped and emit missing.
type cumulativeVWAP struct {
	inputs []core.Node
	key    string
}

func (n *cumulativeVWAP) Key() string { return n.key }

func (n *cumulativeVWAP) Inputs() []core.Node { return n.inputs }

func (n *cumulativeVWAP) Compute(in []core.Series) (core.Series, error) {
	if len(in) != 2 {
		return core.Series{}, fmt.Errorf("%s: expected 2 inputs, got %d", n.key, len(in))
	}
	pv, vol := in[0], in[1]
	out := core.MissingSlice(pv.Len())
	var cumPV, cumVol float64
	for i := range out {
		p, v := pv.At(i), vol.At(i)
		if core.IsMissing(p) || core.IsMissing(v) {
			continue
		}
		cumPV += p
		cumVol += v
		if cumVol > 0 {
			out[i] = cumPV / cumVol
		}
	}
	return pv.Derive(out), nil
}
