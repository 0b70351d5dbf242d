package window

import (
	"math"

	"github.com/evdnx/tacore/indicator/core"
)

// ranker and meanDeviation read the window directly; they have no sliding
// form and cost O(span) per step.

type ranker struct {
	vals []float64
	span int
}

func (r *ranker) add(int, float64)    {}
func (r *ranker) remove(int, float64) {}

func (r *ranker) value(i int) float64 {
	cur := r.vals[i]
	if core.IsMissing(cur) {
		return core.Missing()
	}
	less, equal := 0, 0
	for _, v := range r.vals[i-r.span+1 : i+1] {
		switch {
		case core.IsMissing(v):
		case v < cur:
			less++
		case v == cur:
			equal++
		}
	}
	return float64(less) + float64(equal+1)/2
}

type meanDeviation struct {
	vals []float64
	span int
}

func (m *meanDeviation) add(int, float64)    {}
func (m *meanDeviation) remove(int, float64) {}

func (m *meanDeviation) value(i int) float64 {
	win := m.vals[i-m.span+1 : i+1]
	sum, n := 0.0, 0
	for _, v := range win {
		if !core.IsMissing(v) {
			sum += v
			n++
		}
	}
	mean := sum / float64(n)
	dev := 0.0
	for _, v := range win {
		if !core.IsMissing(v) {
			dev += math.Abs(v - mean)
		}
	}
	return dev / float64(n)
}
