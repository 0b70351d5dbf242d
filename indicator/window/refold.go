package window

import (
	"math"

	"github.com/evdnx/tacore/indicator/core"
)

// refoldRatio is how far the largest magnitude folded into a running state may
// exceed the largest magnitude still in the window before the state is
// rebuilt. The rounding residue of an inverse update scales with the former.
const refoldRatio = 1 << 10

// drift tracks when a running state built from add/remove pairs has to be
// refolded from the live window: after span removals, or once the largest
// value folded in since the last refold has left the window.
type drift struct {
	span    int
	mag     *extremum // window maximum of |v|
	n       int       // valid values in the window
	peak    float64   // max |v| folded in since the last refold
	removed int
}

func newDrift(vals []float64, span int) *drift {
	abs := make([]float64, len(vals))
	for i, v := range vals {
		abs[i] = math.Abs(v)
	}
	return &drift{span: span, mag: newExtremum(abs, false)}
}

func (d *drift) add(i int, v float64) {
	a := math.Abs(v)
	d.mag.add(i, a)
	d.n++
	if a > d.peak {
		d.peak = a
	}
}

func (d *drift) remove(i int) {
	d.mag.remove(i, 0)
	d.n--
	d.removed++
}

func (d *drift) stale() bool {
	switch {
	case d.removed == 0:
		return false
	case d.removed >= d.span || d.n == 0:
		return true
	default:
		return d.peak > refoldRatio*d.mag.value(0)
	}
}

func (d *drift) refolded() {
	d.removed = 0
	d.peak = 0
	if d.n > 0 {
		d.peak = d.mag.value(0)
	}
}

type resettable interface {
	accumulator
	reset()
}

// refolding wraps an accumulator whose remove is an inverse update and
// rebuilds it from the live window whenever drift reports it stale. A refold
// costs O(span) and happens at most once per span removals on ordinary data,
// so the amortised cost per step stays O(1).
type refolding struct {
	inner resettable
	vals  []float64
	span  int
	drift *drift
}

func newRefolding(vals []float64, span int, inner resettable) *refolding {
	return &refolding{inner: inner, vals: vals, span: span, drift: newDrift(vals, span)}
}

func (r *refolding) add(i int, v float64) {
	r.inner.add(i, v)
	r.drift.add(i, v)
}

func (r *refolding) remove(i int, v float64) {
	r.inner.remove(i, v)
	r.drift.remove(i)
}

func (r *refolding) value(i int) float64 {
	if r.drift.stale() {
		r.inner.reset()
		for j := i - r.span + 1; j <= i; j++ {
			if v := r.vals[j]; !core.IsMissing(v) {
				r.inner.add(j, v)
			}
		}
		r.drift.refolded()
	}
	return r.inner.value(i)
}
