package volatility

import (
	"math"

	"github.com/evdnx/tacore/indicator/core"
	"github.com/evdnx/tacore/indicator/window"
)

const (
	DefaultBollingerPeriod     = 20
	DefaultBollingerMultiplier = 2.0
)

// Bollinger output names.
const (
	BandUpper  = "upper"
	BandMiddle = "middle"
	BandLower  = "lower"
)

// BollingerBands calculates upper/middle/lower bands from the rolling mean
// and standard deviation of the source column:
//
//	middle = SMA(n), upper/lower = middle ± k·σ(n)
//
// The middle band is the same graph node as a standalone SMA of that span.
type BollingerBands struct {
	core.Definition
	period     int
	multiplier float64
	ddof       int
	source     core.Field
}

// BollingerOption configures a BollingerBands instance.
type BollingerOption func(*BollingerBands)

// WithBollingerSource selects the input column (close by default).
func WithBollingerSource(source core.Field) BollingerOption {
	return func(b *BollingerBands) { b.source = source }
}

// WithStdDevDDOF selects the population (0, default) or sample (1) standard
// deviation.
func WithStdDevDDOF(ddof int) BollingerOption {
	return func(b *BollingerBands) { b.ddof = ddof }
}

// NewBollingerBands creates Bollinger Bands with default settings (20, 2).
func NewBollingerBands() (*BollingerBands, error) {
	return NewBollingerBandsWithParams(DefaultBollingerPeriod, DefaultBollingerMultiplier)
}

// NewBollingerBandsWithParams creates Bollinger Bands with a custom period
// and multiplier.
func NewBollingerBandsWithParams(period int, multiplier float64, opts ...BollingerOption) (*BollingerBands, error) {
	b := &BollingerBands{
		period:     period,
		multiplier: multiplier,
		source:     core.Close,
	}
	for _, opt := range opts {
		opt(b)
	}
	if period < 1 {
		return nil, core.InvalidParam("span", "must be at least 1, got %d", period)
	}
	if math.IsNaN(multiplier) || math.IsInf(multiplier, 0) || multiplier <= 0 {
		return nil, core.InvalidParam("k", "must be a positive number, got %v", multiplier)
	}

	middle, err := window.NewNode(window.KindMean, b.source, period)
	if err != nil {
		return nil, err
	}
	sd, err := window.NewNode(window.KindStdDev, b.source, period, window.WithDDOF(b.ddof))
	if err != nil {
		return nil, err
	}
	upper := core.NewLinear(core.Term{Coef: 1, Node: middle}, core.Term{Coef: multiplier, Node: sd})
	lower := core.NewLinear(core.Term{Coef: 1, Node: middle}, core.Term{Coef: -multiplier, Node: sd})

	params := []any{period, multiplier}
	if b.ddof != 0 {
		params = append(params, "ddof"+core.FormatValue(b.ddof))
	}
	b.Definition = core.NewDefinition("bbands", core.SourceLabel("bbands", b.source, params...),
		core.Output{Name: BandUpper, Node: upper},
		core.Output{Name: BandMiddle, Node: middle},
		core.Output{Name: BandLower, Node: lower},
	)
	return b, nil
}

// BollingerBandsFromParams builds the bands from request parameters
// (span, k, ddof, source).
func BollingerBandsFromParams(p core.Params) (core.Indicator, error) {
	if err := p.Check("span", "k", "ddof", "source"); err != nil {
		return nil, err
	}
	period, err := p.Int("span", DefaultBollingerPeriod)
	if err != nil {
		return nil, err
	}
	k, err := p.Float("k", DefaultBollingerMultiplier)
	if err != nil {
		return nil, err
	}
	ddof, err := p.Int("ddof", 0)
	if err != nil {
		return nil, err
	}
	source, err := p.Source(core.Close)
	if err != nil {
		return nil, err
	}
	bb, err := NewBollingerBandsWithParams(period, k, WithStdDevDDOF(ddof), WithBollingerSource(source))
	if err != nil {
		return nil, err
	}
	return bb, nil
}

func (b *BollingerBands) Period() int { return b.period }

func (b *BollingerBands) Multiplier() float64 { return b.multiplier }
