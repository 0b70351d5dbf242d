package trend

import (
	"math"

	"github.com/evdnx/tacore/indicator/core"
	"github.com/evdnx/tacore/indicator/filter"
	"github.com/evdnx/tacore/indicator/window"
)

const (
	DefaultT3Span      = 5
	DefaultT3VFactor   = 0.7
	DefaultNT3Period   = 200
	DefaultNT3Span     = 2
	DefaultNT3VFactor  = 0.7
	nt3NeutralSentinel = 0.5
)

// T3 is Tillson's T3 moving average: six chained EMAs of the same span,
// combined with coefficients derived from the volume factor v.
type T3 struct {
	core.Definition
	span    int
	vfactor float64
	seed    filter.Seed
	source  core.Field
}

// NewT3 creates a T3 of close with span 5 and volume factor 0.7.
func NewT3() (*T3, error) {
	return NewT3WithParams(DefaultT3Span, DefaultT3VFactor, filter.SeedSMA, core.Close)
}

// NewT3WithParams creates a T3 with custom parameters.
func NewT3WithParams(span int, vfactor float64, seed filter.Seed, source core.Field) (*T3, error) {
	node, err := t3Node(source, span, vfactor, seed)
	if err != nil {
		return nil, err
	}
	return &T3{
		Definition: core.NewDefinition("t3", core.SourceLabel("t3", source, seed.LabelParams(span, vfactor)...), core.Output{Node: node}),
		span:       span,
		vfactor:    vfactor,
		seed:       seed,
		source:     source,
	}, nil
}

// T3FromParams builds a T3 from request parameters (span, vfactor, seed, source).
func T3FromParams(p core.Params, defaultSeed filter.Seed) (core.Indicator, error) {
	if err := p.Check("span", "vfactor", "seed", "source"); err != nil {
		return nil, err
	}
	span, err := p.Int("span", DefaultT3Span)
	if err != nil {
		return nil, err
	}
	vfactor, err := p.Float("vfactor", DefaultT3VFactor)
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
	t3, err := NewT3WithParams(span, vfactor, seed, source)
	if err != nil {
		return nil, err
	}
	return t3, nil
}

func (t *T3) Span() int { return t.span }

func (t *T3) VFactor() float64 { return t.vfactor }

// T3Coefficients returns c1..c4 for volume factor v.
func T3Coefficients(v float64) (c1, c2, c3, c4 float64) {
	v2, v3 := v*v, v*v*v
	c1 = -v3
	c2 = 3*v2 + 3*v3
	c3 = -6*v2 - 3*v - 3*v3
	c4 = 1 + 3*v + v3 + 3*v2
	return c1, c2, c3, c4
}

func t3Node(source core.Node, span int, vfactor float64, seed filter.Seed) (core.Node, error) {
	if math.IsNaN(vfactor) || vfactor <= 0 || vfactor > 1 {
		return nil, core.InvalidParam("vfactor", "must be within (0, 1], got %v", vfactor)
	}
	var (
		stages [6]core.Node
		in     = source
	)
	for i := range stages {
		e, err := filter.NewNode(filter.KindEMA, in, span, seed)
		if err != nil {
			return nil, err
		}
		stages[i] = e
		in = e
	}
	c1, c2, c3, c4 := T3Coefficients(vfactor)
	return core.NewLinear(
		core.Term{Coef: c1, Node: stages[5]},
		core.Term{Coef: c2, Node: stages[4]},
		core.Term{Coef: c3, Node: stages[3]},
		core.Term{Coef: c4, Node: stages[2]},
	), nil
}

// NormalizedT3 rescales T3 into [0, 1] against its own range over the last
// period values: (t3 − min) / (max − min). A flat range yields 0.5.
type NormalizedT3 struct {
	core.Definition
	period  int
	span    int
	vfactor float64
	source  core.Field
}

// NewNormalizedT3 creates the oscillator with period 200, T3 span 2 and
// volume factor 0.7.
func NewNormalizedT3() (*NormalizedT3, error) {
	return NewNormalizedT3WithParams(DefaultNT3Period, DefaultNT3Span, DefaultNT3VFactor, filter.SeedSMA, core.Close)
}

// NewNormalizedT3WithParams creates the oscillator with custom parameters.
func NewNormalizedT3WithParams(period, span int, vfactor float64, seed filter.Seed, source core.Field) (*NormalizedT3, error) {
	if period < 1 {
		return nil, core.InvalidParam("period", "must be at least 1, got %d", period)
	}
	t3, err := t3Node(source, span, vfactor, seed)
	if err != nil {
		return nil, err
	}
	lo, err := window.NewNode(window.KindMin, t3, period)
	if err != nil {
		return nil, err
	}
	hi, err := window.NewNode(window.KindMax, t3, period)
	if err != nil {
		return nil, err
	}
	norm := core.NewPointwise("nt3.scale", nil, func(x []float64) float64 {
		rng := x[2] - x[1]
		if rng == 0 {
			return nt3NeutralSentinel
		}
		return (x[0] - x[1]) / rng
	}, t3, lo, hi)

	return &NormalizedT3{
		Definition: core.NewDefinition("nt3", core.SourceLabel("nt3", source, seed.LabelParams(period, span, vfactor)...), core.Output{Node: norm}),
		period:     period,
		span:       span,
		vfactor:    vfactor,
		source:     source,
	}, nil
}

// NormalizedT3FromParams builds the oscillator from request parameters
// (period, span, vfactor, seed, source).
func NormalizedT3FromParams(p core.Params, defaultSeed filter.Seed) (core.Indicator, error) {
	if err := p.Check("period", "span", "vfactor", "seed", "source"); err != nil {
		return nil, err
	}
	period, err := p.Int("period", DefaultNT3Period)
	if err != nil {
		return nil, err
	}
	span, err := p.Int("span", DefaultNT3Span)
	if err != nil {
		return nil, err
	}
	vfactor, err := p.Float("vfactor", DefaultNT3VFactor)
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
	nt3, err := NewNormalizedT3WithParams(period, span, vfactor, seed, source)
	if err != nil {
		return nil, err
	}
	return nt3, nil
}

func (n *NormalizedT3) Period() int { return n.period }
