package trend

import (
	"fmt"
	"math"

	"github.com/evdnx/tacore/indicator/core"
)

const (
	DefaultSARStep    = 0.02
	DefaultSARMaxStep = 0.2
)

// ParabolicSAR implements Wilder's Parabolic SAR (Stop and Reverse) from
// high/low data. The first value appears on the second valid bar.
type ParabolicSAR struct {
	core.Definition
	step    float64
	maxStep float64
}

// NewParabolicSAR creates a SAR with default step (0.02) and maximum step (0.2).
func NewParabolicSAR() (*ParabolicSAR, error) {
	return NewParabolicSARWithParams(DefaultSARStep, DefaultSARMaxStep)
}

// NewParabolicSARWithParams allows custom acceleration parameters.
func NewParabolicSARWithParams(step, maxStep float64) (*ParabolicSAR, error) {
	if !(step > 0) {
		return nil, core.InvalidParam("step", "must be positive, got %v", step)
	}
	if !(maxStep > 0) {
		return nil, core.InvalidParam("max_step", "must be positive, got %v", maxStep)
	}
	if step > maxStep {
		return nil, core.InvalidParam("step", "must not exceed max_step %v, got %v", maxStep, step)
	}
	node := &sarNode{
		step:    step,
		maxStep: maxStep,
		key:     core.NodeKey("psar", core.Params{"step": step, "max_step": maxStep}, core.High, core.Low),
	}
	return &ParabolicSAR{
		Definition: core.NewDefinition("psar", core.Label("psar", step, maxStep), core.Output{Node: node}),
		step:       step,
		maxStep:    maxStep,
	}, nil
}

// ParabolicSARFromParams builds a SAR from request parameters (step, max_step).
func ParabolicSARFromParams(p core.Params) (core.Indicator, error) {
	if err := p.Check("step", "max_step"); err != nil {
		return nil, err
	}
	step, err := p.Float("step", DefaultSARStep)
	if err != nil {
		return nil, err
	}
	maxStep, err := p.Float("max_step", DefaultSARMaxStep)
	if err != nil {
		return nil, err
	}
	sar, err := NewParabolicSARWithParams(step, maxStep)
	if err != nil {
		return nil, err
	}
	return sar, nil
}

/* ---------- graph node ---------- */

type sarNode struct {
	step, maxStep float64
	key           string
}

func (n *sarNode) Key() string { return n.key }

func (n *sarNode) Inputs() []core.Node { return []core.Node{core.High, core.Low} }

// Compute folds over the valid bars; a bar with a missing high or low emits
// missing and leaves the state untouched.
func (n *sarNode) Compute(in []core.Series) (core.Series, error) {
	if len(in) != 2 {
		return core.Series{}, fmt.Errorf("%s: expected 2 inputs, got %d", n.key, len(in))
	}
	high, low := in[0], in[1]
	out := core.MissingSlice(high.Len())

	st := sarState{step: n.step, maxStep: n.maxStep}
	seen := 0
	for i := range out {
		h, l := high.At(i), low.At(i)
		if core.IsMissing(h) || core.IsMissing(l) {
			continue
		}
		st.push(h, l)
		seen++
		switch seen {
		case 1:
			continue
		case 2:
			st.initializeTrend()
		default:
			st.update()
		}
		out[i] = st.sar
	}
	return high.Derive(out), nil
}

// sarState carries the trend, extreme point (EP), acceleration factor (AF)
// and the last three bars.
type sarState struct {
	step, maxStep float64

	af      float64
	ep      float64
	sar     float64
	uptrend bool

	highs [3]float64 // highs[2] is the current bar
	lows  [3]float64
}

func (p *sarState) push(h, l float64) {
	p.highs[0], p.highs[1], p.highs[2] = p.highs[1], p.highs[2], h
	p.lows[0], p.lows[1], p.lows[2] = p.lows[1], p.lows[2], l
}

func (p *sarState) initializeTrend() {
	prevMid := (p.highs[1] + p.lows[1]) / 2
	currMid := (p.highs[2] + p.lows[2]) / 2
	p.uptrend = currMid >= prevMid
	if p.uptrend {
		p.ep = math.Max(p.highs[2], p.highs[1])
		p.sar = p.lows[1]
	} else {
		p.ep = math.Min(p.lows[2], p.lows[1])
		p.sar = p.highs[1]
	}
	p.af = p.step
}

func (p *sarState) update() {
	newSAR := p.sar + p.af*(p.ep-p.sar)
	prevLow := math.Min(p.lows[1], p.lows[0])
	prevHigh := math.Max(p.highs[1], p.highs[0])

	if p.uptrend {
		newSAR = math.Min(newSAR, prevLow)
		if p.lows[2] < newSAR {
			// Reversal to downtrend.
			p.uptrend = false
			newSAR = p.ep
			p.ep = p.lows[2]
			p.af = p.step
		} else if p.highs[2] > p.ep {
			p.ep = p.highs[2]
			p.af = math.Min(p.af+p.step, p.maxStep)
		}
	} else {
		newSAR = math.Max(newSAR, prevHigh)
		if p.highs[2] > newSAR {
			// Reversal to uptrend.
			p.uptrend = true
			newSAR = p.ep
			p.ep = p.highs[2]
			p.af = p.step
		} else if p.lows[2] < p.ep {
			p.ep = p.lows[2]
			p.af = math.Min(p.af+p.step, p.maxStep)
		}
	}
	p.sar = newSAR
}
