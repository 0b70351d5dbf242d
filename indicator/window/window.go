// Package window implements rolling-window reducers over a Series.
//
// Output position i reduces input positions [i-span+1, i]. Positions before
// span-1 are always missing. A missing value inside the window makes the
// output missing unless WithMinValid lowers the number of valid observations
// required.
//
// Sum, Mean, Variance, StdDev, Min, Max and WMA update in O(1) amortised time
// per step, so a series of length L costs O(L) regardless of span. Rank and
// MeanDeviation rescan the window.
package window

import (
	"fmt"

	"github.com/evdnx/tacore/indicator/core"
)

// Kind names a window reduction.
type Kind string

const (
	KindSum      Kind = "sum"
	KindMean     Kind = "mean"
	KindVariance Kind = "variance"
	KindStdDev   Kind = "stddev"
	KindMin      Kind = "min"
	KindMax      Kind = "max"
	KindRank     Kind = "rank"
	KindWMA      Kind = "wma"
	KindMeanDev  Kind = "meandev"
)

type options struct {
	minValid int
	ddof     int
}

// Option configures a window reduction.
type Option func(*options)

// WithMinValid sets how many valid observations a window needs to produce a
// value. Values outside [1, span] are rejected by the reducers.
func WithMinValid(n int) Option {
	return func(o *options) { o.minValid = n }
}

// WithDDOF sets the delta degrees of freedom of Variance and StdDev: 0 for the
// population estimate (default), 1 for the sample estimate.
func WithDDOF(ddof int) Option {
	return func(o *options) { o.ddof = ddof }
}

func buildOptions(span int, opts []Option) (options, error) {
	if span < 1 {
		return options{}, core.InvalidParam("span", "must be at least 1, got %d", span)
	}
	o := options{minValid: span}
	for _, opt := range opts {
		opt(&o)
	}
	if o.minValid < 1 || o.minValid > span {
		return options{}, core.InvalidParam("min_valid", "must be within [1, %d], got %d", span, o.minValid)
	}
	if o.ddof != 0 && o.ddof != 1 {
		return options{}, core.InvalidParam("ddof", "must be 0 or 1, got %d", o.ddof)
	}
	return o, nil
}

// Apply runs the reduction kind over s.
func Apply(kind Kind, s core.Series, span int, opts ...Option) (core.Series, error) {
	o, err := buildOptions(span, opts)
	if err != nil {
		return core.Series{}, err
	}
	vals := s.Values()
	var out []float64
	switch kind {
	case KindSum:
		out = slide(vals, span, o, newRefolding(vals, span, &kahanSum{}))
	case KindMean:
		out = slide(vals, span, o, newRefolding(vals, span, &welford{mode: welfordMean}))
	case KindVariance:
		out = slide(vals, span, o, newRefolding(vals, span, &welford{mode: welfordVariance, ddof: o.ddof}))
	case KindStdDev:
		out = slide(vals, span, o, newRefolding(vals, span, &welford{mode: welfordStdDev, ddof: o.ddof}))
	case KindMin:
		out = slide(vals, span, o, newExtremum(vals, true))
	case KindMax:
		out = slide(vals, span, o, newExtremum(vals, false))
	case KindRank:
		out = slide(vals, span, o, &ranker{vals: vals, span: span})
	case KindMeanDev:
		out = slide(vals, span, o, &meanDeviation{vals: vals, span: span})
	case KindWMA:
		out = weighted(vals, span, o)
	default:
		return core.Series{}, fmt.Errorf("unknown window reduction %q", kind)
	}
	return s.Derive(out), nil
}

// Sum returns the rolling sum.
func Sum(s core.Series, span int, opts ...Option) (core.Series, error) {
	return Apply(KindSum, s, span, opts...)
}

// Mean returns the rolling arithmetic mean.
func Mean(s core.Series, span int, opts ...Option) (core.Series, error) {
	return Apply(KindMean, s, span, opts...)
}

// Variance returns the rolling variance (population unless WithDDOF(1)).
func Variance(s core.Series, span int, opts ...Option) (core.Series, error) {
	return Apply(KindVariance, s, span, opts...)
}

// StdDev returns the rolling standard deviation.
func StdDev(s core.Series, span int, opts ...Option) (core.Series, error) {
	return Apply(KindStdDev, s, span, opts...)
}

// Min returns the rolling minimum.
func Min(s core.Series, span int, opts ...Option) (core.Series, error) {
	return Apply(KindMin, s, span, opts...)
}

// Max returns the rolling maximum.
func Max(s core.Series, span int, opts ...Option) (core.Series, error) {
	return Apply(KindMax, s, span, opts...)
}

// Rank returns the 1-based rank of the current value within its window. Ties
// share the average of their ranks. A missing current value yields missing.
func Rank(s core.Series, span int, opts ...Option) (core.Series, error) {
	return Apply(KindRank, s, span, opts...)
}

// WMA returns the linearly weighted moving average; the newest observation
// weighs span, the oldest 1.
func WMA(s core.Series, span int, opts ...Option) (core.Series, error) {
	return Apply(KindWMA, s, span, opts...)
}

// MeanDeviation returns the mean absolute deviation around the window mean.
func MeanDeviation(s core.Series, span int, opts ...Option) (core.Series, error) {
	return Apply(KindMeanDev, s, span, opts...)
}

/* -------------------------------------------------------------------------
   Sliding driver
--------------------------------------------------------------------------*/

// accumulator is updated with every valid value entering and leaving the
// window; value is read once the window is full enough.
type accumulator interface {
	add(i int, v float64)
	remove(i int, v float64)
	value(i int) float64
}

func slide(vals []float64, span int, o options, acc accumulator) []float64 {
	out := make([]float64, len(vals))
	valid := 0
	for i, v := range vals {
		if j := i - span; j >= 0 {
			if old := vals[j]; !core.IsMissing(old) {
				acc.remove(j, old)
				valid--
			}
		}
		if !core.IsMissing(v) {
			acc.add(i, v)
			valid++
		}
		if i < span-1 || valid < o.minValid {
			out[i] = core.Missing()
			continue
		}
		out[i] = acc.value(i)
	}
	return out
}
