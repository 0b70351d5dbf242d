package window

import "github.com/evdnx/tacore/indicator/core"

// weighted computes the linearly weighted moving average in one pass.
//
// Each step every weight in the window drops by one, which subtracts the
// plain sums from the weighted sums; the value leaving the window has weight
// zero by then and only leaves the plain sums. Missing observations carry no
// weight, so with WithMinValid the average is normalised by the weights of
// the valid observations only. The sums are refolded from the live window
// whenever drift reports them stale.
func weighted(vals []float64, span int, o options) []float64 {
	out := make([]float64, len(vals))
	var (
		num, den float64 // Σ wᵢ·xᵢ, Σ wᵢ over valid observations
		sum      float64 // Σ xᵢ
		count    int
	)
	d := newDrift(vals, span)
	w := float64(span)
	for i, v := range vals {
		num -= sum
		den -= float64(count)
		if j := i - span; j >= 0 {
			if old := vals[j]; !core.IsMissing(old) {
				sum -= old
				count--
				d.remove(j)
			}
		}
		if !core.IsMissing(v) {
			num += w * v
			den += w
			sum += v
			count++
			d.add(i, v)
		}
		if i < span-1 || count < o.minValid {
			out[i] = core.Missing()
			continue
		}
		if d.stale() {
			num, den, sum = 0, 0, 0
			for j := i - span + 1; j <= i; j++ {
				if x := vals[j]; !core.IsMissing(x) {
					wj := float64(span - (i - j))
					num += wj * x
					den += wj
					sum += x
				}
			}
			d.refolded()
		}
		out[i] = num / den
	}
	return out
}
