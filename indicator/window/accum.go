package window

import (
	"math"

	"github.com/evdnx/tacore/indicator/core"
)

// kahanSum keeps a compensated running sum so long series do not drift.
type kahanSum struct {
	sum  float64
	comp float64
}

func (k *kahanSum) kahanAdd(v float64) {
	y := v - k.comp
	t := k.sum + y
	k.comp = (t - k.sum) - y
	k.sum = t
}

func (k *kahanSum) add(_ int, v float64)    { k.kahanAdd(v) }
func (k *kahanSum) remove(_ int, v float64) { k.kahanAdd(-v) }
func (k *kahanSum) value(int) float64       { return k.sum }
func (k *kahanSum) reset()                  { *k = kahanSum{} }

type welfordMode int

const (
	welfordMean welfordMode = iota
	welfordVariance
	welfordStdDev
)

// welford maintains mean and the sum of squared deviations (m2) with
// Welford's update, extended with the matching removal step so the window can
// slide without rescanning.
type welford struct {
	mode  welfordMode
	ddof  int
	count int
	mean  float64
	m2    float64
}

func (w *welford) add(_ int, x float64) {
	w.count++
	delta := x - w.mean
	w.mean += delta / float64(w.count)
	w.m2 += delta * (x - w.mean)
}

func (w *welford) remove(_ int, x float64) {
	w.count--
	if w.count == 0 {
		w.mean, w.m2 = 0, 0
		return
	}
	delta := x - w.mean
	w.mean -= delta / float64(w.count)
	w.m2 -= delta * (x - w.mean)
	if w.m2 < 0 {
		w.m2 = 0 // rounding
	}
}

func (w *welford) reset() {
	w.count, w.mean, w.m2 = 0, 0, 0
}

func (w *welford) value(int) float64 {
	if w.mode == welfordMean {
		return w.mean
	}
	dof := w.count - w.ddof
	if dof <= 0 {
		return core.Missing()
	}
	variance := w.m2 / float64(dof)
	if w.mode == welfordStdDev {
		return math.Sqrt(variance)
	}
	return variance
}
