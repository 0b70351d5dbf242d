package momentum

import (
	"github.com/evdnx/tacore/indicator/core"
	"github.com/evdnx/tacore/indicator/window"
)

const (
	DefaultCCIPeriod = 20
	cciConstant      = 0.015
)

// CommodityChannelIndex implements the CCI indicator.
// It uses typical price [(H+L+C)/3], a simple moving average of typical prices,
// and the mean deviation around that average:
//
//	CCI = (TP − SMA(TP)) / (0.015 · meanDev)
//
// A zero mean deviation yields 0.
type CommodityChannelIndex struct {
	core.Definition
	period int
}

// NewCommodityChannelIndex builds a CCI with the default 20-period window.
func NewCommodityChannelIndex() (*CommodityChannelIndex, error) {
	return NewCommodityChannelIndexWithParams(DefaultCCIPeriod)
}

// NewCommodityChannelIndexWithParams allows a custom period.
func NewCommodityChannelIndexWithParams(period int) (*CommodityChannelIndex, error) {
	if period < 1 {
		return nil, core.InvalidParam("span", "must be at least 1, got %d", period)
	}
	tp := core.TypicalPrice()
	ma, err := window.NewNode(window.KindMean, tp, period)
	if err != nil {
		return nil, err
	}
	dev, err := window.NewNode(window.KindMeanDev, tp, period)
	if err != nil {
		return nil, err
	}
	cci := core.NewPointwise("cci", nil, func(x []float64) float64 {
		tp, ma, meanDev := x[0], x[1], x[2]
		if meanDev == 0 {
			return 0
		}
		return (tp - ma) / (cciConstant * meanDev)
	}, tp, ma, dev)

	return &CommodityChannelIndex{
		Definition: core.NewDefinition("cci", core.Label("cci", period), core.Output{Node: cci}),
		period:     period,
	}, nil
}

// CommodityChannelIndexFromParams builds a CCI from request parameters (span).
func CommodityChannelIndexFromParams(p core.Params) (core.Indicator, error) {
	if err := p.Check("span"); err != nil {
		return nil, err
	}
	period, err := p.Int("span", DefaultCCIPeriod)
	if err != nil {
		return nil, err
	}
	cci, err := NewCommodityChannelIndexWithParams(period)
	if err != nil {
		return nil, err
	}
	return cci, nil
}

func (c *CommodityChannelIndex) Period() int { return c.period }
