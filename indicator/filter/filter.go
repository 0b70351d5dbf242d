// Package filter implements recursive smoothing filters.
//
// A filter is an explicit fold over the valid observations of a series: a
// seed policy produces the initial state and a step function advances it one
// observation at a time, strictly in index order. A missing observation emits
// missing and leaves the state untouched; recursion resumes from that state at
// the next valid observation.
package filter

import (
	"math"

	"github.com/evdnx/tacore/indicator/core"
)

// Seed selects how a filter obtains its initial state.
type Seed string

const (
	// SeedSMA seeds with the simple average of the first span valid
	// observations; earlier positions are missing.
	SeedSMA Seed = "sma"
	// SeedFirst seeds with the first valid observation, which is also the
	// first output.
	SeedFirst Seed = "first"
	// SeedMissing starts recursing from the first valid observation but
	// reports missing until span valid observations have been consumed.
	SeedMissing Seed = "missing"
)

// ParseSeed validates a seed policy name.
func ParseSeed(name string) (Seed, error) {
	switch s := Seed(name); s {
	case SeedSMA, SeedFirst, SeedMissing:
		return s, nil
	default:
		return "", core.InvalidParam("seed", "must be one of sma, first, missing, got %q", name)
	}
}

// SeedParam reads the "seed" parameter, falling back to def.
func SeedParam(p core.Params, def Seed) (Seed, error) {
	name, err := p.String("seed", string(def))
	if err != nil {
		return "", err
	}
	return ParseSeed(name)
}

// LabelParams appends the seed policy to label parameters unless it is
// SeedSMA, so requests differing only in their seed get distinct columns.
func (s Seed) LabelParams(params ...any) []any {
	if s == SeedSMA {
		return params
	}
	return append(params, string(s))
}

// warmUp returns how many valid observations the policy consumes before the
// first output.
func (s Seed) warmUp(span int) int {
	if s == SeedFirst {
		return 1
	}
	return span
}

// Step advances the filter state with one valid observation.
type Step func(state, x float64) float64

// Fold runs step over s. span is the seed requirement of the SMA and missing
// policies. A series with fewer valid observations than the requirement
// yields an all-missing result.
func Fold(s core.Series, span int, seed Seed, step Step) (core.Series, error) {
	if span < 1 {
		return core.Series{}, core.InvalidParam("span", "must be at least 1, got %d", span)
	}
	if _, err := ParseSeed(string(seed)); err != nil {
		return core.Series{}, err
	}
	warm := seed.warmUp(span)

	out := make([]float64, s.Len())
	var state float64
	seen := 0
	for i := range out {
		x := s.At(i)
		if core.IsMissing(x) {
			out[i] = core.Missing()
			continue
		}
		seen++
		switch {
		case seen == 1:
			state = x
		case seed == SeedSMA && seen <= span:
			// Running mean of the seed window.
			state += (x - state) / float64(seen)
		default:
			state = step(state, x)
		}
		if seen < warm {
			out[i] = core.Missing()
			continue
		}
		out[i] = state
	}
	return s.Derive(out), nil
}

// Smooth applies exponential smoothing with factor alpha:
// state ← state + alpha·(x − state).
func Smooth(s core.Series, alpha float64, span int, seed Seed) (core.Series, error) {
	if err := checkAlpha(alpha); err != nil {
		return core.Series{}, err
	}
	return Fold(s, span, seed, func(state, x float64) float64 {
		return state + alpha*(x-state)
	})
}

// EMA returns the exponential moving average with alpha = 2/(span+1).
func EMA(s core.Series, span int, seed Seed) (core.Series, error) {
	if span < 1 {
		return core.Series{}, core.InvalidParam("span", "must be at least 1, got %d", span)
	}
	return Smooth(s, EMAAlpha(span), span, seed)
}

// Wilder returns Wilder's running moving average (RMA) with alpha = 1/span.
func Wilder(s core.Series, span int, seed Seed) (core.Series, error) {
	if span < 1 {
		return core.Series{}, core.InvalidParam("span", "must be at least 1, got %d", span)
	}
	return Smooth(s, WilderAlpha(span), span, seed)
}

// EMAAlpha is the smoothing factor of an EMA of the given span.
func EMAAlpha(span int) float64 { return 2 / float64(span+1) }

// WilderAlpha is the smoothing factor of Wilder's average of the given span.
func WilderAlpha(span int) float64 { return 1 / float64(span) }

func checkAlpha(alpha float64) error {
	if math.IsNaN(alpha) || alpha <= 0 || alpha > 1 {
		return core.InvalidParam("alpha", "must be within (0, 1], got %v", alpha)
	}
	return nil
}
