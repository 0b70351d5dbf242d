// Package indicator assembles the built-in indicator set into an engine
// registry.
package indicator

import (
	"github.com/evdnx/tacore/config"
	"github.com/evdnx/tacore/engine"
	"github.com/evdnx/tacore/indicator/core"
	"github.com/evdnx/tacore/indicator/filter"
	"github.com/evdnx/tacore/indicator/momentum"
	"github.com/evdnx/tacore/indicator/trend"
	"github.com/evdnx/tacore/indicator/volatility"
	"github.com/evdnx/tacore/indicator/volume"
)

// Registry names of the built-in indicators.
const (
	SMA       = "sma"
	EMA       = "ema"
	WMA       = "wma"
	HMA       = "hma"
	T3        = "t3"
	NT3       = "nt3"
	PSAR      = "psar"
	RSI       = "rsi"
	MACD      = "macd"
	Stoch     = "stoch"
	CCI       = "cci"
	BBands    = "bbands"
	ATR       = "atr"
	TrueRange = "trange"
	MFI       = "mfi"
	VWAP      = "vwap"
)

type options struct {
	defaultSeed filter.Seed
}

// Option configures the built-in registry.
type Option func(*options)

// WithDefaultSeed sets the seed policy used by EMA-based indicators (ema,
// macd, t3, nt3) whose request does not pass a "seed" parameter.
func WithDefaultSeed(seed filter.Seed) Option {
	return func(o *options) { o.defaultSeed = seed }
}

// NewRegistry returns a registry holding every built-in indicator.
func NewRegistry(opts ...Option) *engine.Registry {
	o := options{defaultSeed: filter.SeedSMA}
	for _, opt := range opts {
		opt(&o)
	}
	seed := o.defaultSeed

	r := engine.NewRegistry()

	// ---- Trend ----
	r.MustRegister(SMA, trend.SMAFromParams)
	r.MustRegister(EMA, func(p core.Params) (core.Indicator, error) { return trend.EMAFromParams(p, seed) })
	r.MustRegister(WMA, trend.WMAFromParams)
	r.MustRegister(HMA, trend.HullMovingAverageFromParams)
	r.MustRegister(T3, func(p core.Params) (core.Indicator, error) { return trend.T3FromParams(p, seed) })
	r.MustRegister(NT3, func(p core.Params) (core.Indicator, error) { return trend.NormalizedT3FromParams(p, seed) })
	r.MustRegister(PSAR, trend.ParabolicSARFromParams)

	// ---- Momentum ----
	r.MustRegister(RSI, momentum.RelativeStrengthIndexFromParams)
	r.MustRegister(MACD, func(p core.Params) (core.Indicator, error) { return momentum.MACDFromParams(p, seed) })
	r.MustRegister(Stoch, momentum.StochasticOscillatorFromParams)
	r.MustRegister(CCI, momentum.CommodityChannelIndexFromParams)

	// ---- Volatility ----
	r.MustRegister(BBands, volatility.BollingerBandsFromParams)
	r.MustRegister(ATR, volatility.AverageTrueRangeFromParams)
	r.MustRegister(TrueRange, volatility.TrueRangeFromParams)

	// ---- Volume ----
	r.MustRegister(MFI, volume.MoneyFlowIndexFromParams)
	r.MustRegister(VWAP, volume.VWAPFromParams)

	return r
}

// NewRegistryWithConfig builds the registry using the configured default
// seed policy. cfg must be valid.
func NewRegistryWithConfig(cfg config.Config) *engine.Registry {
	return NewRegistry(WithDefaultSeed(cfg.Seed()))
}
