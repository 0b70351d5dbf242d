package volatility

import (
	"fmt"
	"math"

	"github.com/evdnx/tacore/indicator/core"
	"github.com/evdnx/tacore/indicator/filter"
	"github.com/evdnx/tacore/indicator/window"
)

// DefaultATRPeriod is Wilder's standard ATR period.
const DefaultATRPeriod = 14

// Smoothing selects the average applied to the true range.
type Smoothing string

const (
	SmoothRMA Smoothing = "rma" // Wilder's running average, alpha = 1/n
	SmoothEMA Smoothing = "ema"
	SmoothSMA Smoothing = "sma"
)

// ParseSmoothing validates a smoothing name.
func ParseSmoothing(name string) (Smoothing, error) {
	switch s := Smoothing(name); s {
	case SmoothRMA, SmoothEMA, SmoothSMA:
		return s, nil
	default:
		return "", core.InvalidParam("ma", "must be one of rma, ema, sma, got %q", name)
	}
}

// AverageTrueRange calculates the Average True Range (ATR): the true range
// smoothed with Wilder's average (default), an EMA or an SMA.
type AverageTrueRange struct {
	core.Definition
	period    int
	smoothing Smoothing
	seed      filter.Seed
}

/* ---------- Functional options ---------- */

// ATROption configures an AverageTrueRange instance.
type ATROption func(*AverageTrueRange)

// WithSmoothing selects the average applied to the true range.
func WithSmoothing(s Smoothing) ATROption {
	return func(a *AverageTrueRange) { a.smoothing = s }
}

// WithATRSeed selects the seed policy of the RMA and EMA smoothings.
func WithATRSeed(seed filter.Seed) ATROption {
	return func(a *AverageTrueRange) { a.seed = seed }
}

/* ---------- Constructors ---------- */

// NewAverageTrueRange creates an ATR calculator with the default period (14).
func NewAverageTrueRange() (*AverageTrueRange, error) {
	return NewAverageTrueRangeWithParams(DefaultATRPeriod)
}

// NewAverageTrueRangeWithParams creates an ATR calculator with a custom period.
// Additional functional options can be passed to modify the instance.
func NewAverageTrueRangeWithParams(period int, opts ...ATROption) (*AverageTrueRange, error) {
	atr := &AverageTrueRange{
		period:    period,
		smoothing: SmoothRMA,
		seed:      filter.SeedSMA,
	}
	for _, opt := range opts {
		opt(atr)
	}
	if period < 1 {
		return nil, core.InvalidParam("span", "must be at least 1, got %d", period)
	}
	if _, err := ParseSmoothing(string(atr.smoothing)); err != nil {
		return nil, err
	}

	tr := TrueRangeNode()
	var (
		avg core.Node
		err error
	)
	switch atr.smoothing {
	case SmoothRMA:
		avg, err = filter.NewNode(filter.KindWilder, tr, period, atr.seed)
	case SmoothEMA:
		avg, err = filter.NewNode(filter.KindEMA, tr, period, atr.seed)
	case SmoothSMA:
		avg, err = window.NewNode(window.KindMean, tr, period)
	}
	if err != nil {
		return nil, err
	}
	params := []any{period}
	if atr.smoothing != SmoothRMA {
		params = append(params, string(atr.smoothing))
	}
	if atr.smoothing != SmoothSMA {
		params = atr.seed.LabelParams(params...)
	}
	label := core.Label("atr", params...)
	atr.Definition = core.NewDefinition("atr", label, core.Output{Node: avg})
	return atr, nil
}

// AverageTrueRangeFromParams builds an ATR from request parameters
// (span, ma, seed). The seed only applies to the recursive smoothings.
func AverageTrueRangeFromParams(p core.Params) (core.Indicator, error) {
	if err := p.Check("span", "ma", "seed"); err != nil {
		return nil, err
	}
	period, err := p.Int("span", DefaultATRPeriod)
	if err != nil {
		return nil, err
	}
	ma, err := p.String("ma", string(SmoothRMA))
	if err != nil {
		return nil, err
	}
	smoothing, err := ParseSmoothing(ma)
	if err != nil {
		return nil, err
	}
	seed, err := filter.SeedParam(p, filter.SeedSMA)
	if err != nil {
		return nil, err
	}
	if _, ok := p["seed"]; ok && smoothing == SmoothSMA {
		return nil, core.InvalidParam("seed", "not used by ma=sma")
	}
	atr, err := NewAverageTrueRangeWithParams(period, WithSmoothing(smoothing), WithATRSeed(seed))
	if err != nil {
		return nil, err
	}
	return atr, nil
}

func (atr *AverageTrueRange) Period() int { return atr.period }

func (atr *AverageTrueRange) Smoothing() Smoothing { return atr.smoothing }

/* ---------- True range ---------- */

// TrueRange exposes the raw true range as an indicator.
type TrueRange struct {
	core.Definition
}

// NewTrueRange creates the true-range indicator.
func NewTrueRange() *TrueRange {
	return &TrueRange{Definition: core.NewDefinition("trange", "trange", core.Output{Node: TrueRangeNode()})}
}

// TrueRangeFromParams builds the true-range indicator; it takes no parameters.
func TrueRangeFromParams(p core.Params) (core.Indicator, error) {
	if err := p.Check(); err != nil {
		return nil, err
	}
	return NewTrueRange(), nil
}

// TrueRangeNode returns the node computing
//
//	TR = max(high − low, |high − prevClose|, |low − prevClose|)
//
// On the first bar, or after a missing close, TR is high − low.
func TrueRangeNode() core.Node {
	prev := core.Prev(core.Close)
	return &trueRangeNode{
		inputs: []core.Node{core.High, core.Low, prev},
		key:    core.NodeKey("trange", nil, core.High, core.Low, prev),
	}
}

type trueRangeNode struct {
	inputs []core.Node
	key    string
}

func (n *trueRangeNode) Key() string { return n.key }

func (n *trueRangeNode) Inputs() []core.Node { return n.inputs }

func (n *trueRangeNode) Compute(in []core.Series) (core.Series, error) {
	if len(in) != 3 {
		return core.Series{}, fmt.Errorf("%s: expected 3 inputs, got %d", n.key, len(in))
	}
	high, low, prevClose := in[0], in[1], in[2]
	out := make([]float64, high.Len())
	for i := range out {
		h, l, pc := high.At(i), low.At(i), prevClose.At(i)
		if core.IsMissing(h) || core.IsMissing(l) {
			out[i] = core.Missing()
			continue
		}
		highLow := h - l
		if core.IsMissing(pc) {
			out[i] = highLow
			continue
		}
		out[i] = math.Max(highLow, math.Max(math.Abs(h-pc), math.Abs(l-pc)))
	}
	return high.Derive(out), nil
}
