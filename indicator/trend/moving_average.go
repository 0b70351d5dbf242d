package trend

import (
	"github.com/evdnx/tacore/indicator/core"
	"github.com/evdnx/tacore/indicator/filter"
	"github.com/evdnx/tacore/indicator/window"
)

const (
	DefaultSMASpan = 20
	DefaultEMASpan = 20
	DefaultWMASpan = 20
)

// SMA is the simple moving average: the rolling mean of the source column.
type SMA struct {
	core.Definition
	span   int
	source core.Field
}

// NewSMA creates an SMA of close with the default span (20).
func NewSMA() (*SMA, error) {
	return NewSMAWithParams(DefaultSMASpan, core.Close)
}

// NewSMAWithParams creates an SMA with a custom span and source column.
func NewSMAWithParams(span int, source core.Field) (*SMA, error) {
	node, err := window.NewNode(window.KindMean, source, span)
	if err != nil {
		return nil, err
	}
	return &SMA{
		Definition: core.NewDefinition("sma", core.SourceLabel("sma", source, span), core.Output{Node: node}),
		span:       span,
		source:     source,
	}, nil
}

// SMAFromParams builds an SMA from request parameters (span, source).
func SMAFromParams(p core.Params) (core.Indicator, error) {
	if err := p.Check("span", "source"); err != nil {
		return nil, err
	}
	span, err := p.Int("span", DefaultSMASpan)
	if err != nil {
		return nil, err
	}
	source, err := p.Source(core.Close)
	if err != nil {
		return nil, err
	}
	sma, err := NewSMAWithParams(span, source)
	if err != nil {
		return nil, err
	}
	return sma, nil
}

func (s *SMA) Span() int { return s.span }

// EMA is the exponential moving average with alpha = 2/(span+1).
type EMA struct {
	core.Definition
	span   int
	seed   filter.Seed
	source core.Field
}

// NewEMA creates an EMA of close with the default span (20), seeded with the
// simple average of the first span values.
func NewEMA() (*EMA, error) {
	return NewEMAWithParams(DefaultEMASpan, filter.SeedSMA, core.Close)
}

// NewEMAWithParams creates an EMA with a custom span, seed policy and source.
func NewEMAWithParams(span int, seed filter.Seed, source core.Field) (*EMA, error) {
	node, err := filter.NewNode(filter.KindEMA, source, span, seed)
	if err != nil {
		return nil, err
	}
	return &EMA{
		Definition: core.NewDefinition("ema", core.SourceLabel("ema", source, seed.LabelParams(span)...), core.Output{Node: node}),
		span:       span,
		seed:       seed,
		source:     source,
	}, nil
}

// EMAFromParams builds an EMA from request parameters (span, seed, source).
// defaultSeed applies when the request does not name a seed policy.
func EMAFromParams(p core.Params, defaultSeed filter.Seed) (core.Indicator, error) {
	if err := p.Check("span", "seed", "source"); err != nil {
		return nil, err
	}
	span, err := p.Int("span", DefaultEMASpan)
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
	ema, err := NewEMAWithParams(span, seed, source)
	if err != nil {
		return nil, err
	}
	return ema, nil
}

func (e *EMA) Span() int { return e.span }

func (e *EMA) Seed() filter.Seed { return e.seed }

// WMA is the linearly weighted moving average.
type WMA struct {
	core.Definition
	span   int
	source core.Field
}

// NewWMA creates a WMA of close with the default span (20).
func NewWMA() (*WMA, error) {
	return NewWMAWithParams(DefaultWMASpan, core.Close)
}

// NewWMAWithParams creates a WMA with a custom span and source.
func NewWMAWithParams(span int, source core.Field) (*WMA, error) {
	node, err := window.NewNode(window.KindWMA, source, span)
	if err != nil {
		return nil, err
	}
	return &WMA{
		Definition: core.NewDefinition("wma", core.SourceLabel("wma", source, span), core.Output{Node: node}),
		span:       span,
		source:     source,
	}, nil
}

// WMAFromParams builds a WMA from request parameters (span, source).
func WMAFromParams(p core.Params) (core.Indicator, error) {
	if err := p.Check("span", "source"); err != nil {
		return nil, err
	}
	span, err := p.Int("span", DefaultWMASpan)
	if err != nil {
		return nil, err
	}
	source, err := p.Source(core.Close)
	if err != nil {
		return nil, err
	}
	wma, err := NewWMAWithParams(span, source)
	if err != nil {
		return nil, err
	}
	return wma, nil
}

func (w *WMA) Span() int { return w.span }
