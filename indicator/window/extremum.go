package window

// extremum tracks the window minimum (or maximum) with a monotonic deque of
// positions. Every position enters and leaves the deque at most once.
type extremum struct {
	vals []float64
	min  bool
	dq   []int
	head int
}

func newExtremum(vals []float64, min bool) *extremum {
	return &extremum{vals: vals, min: min}
}

// dominates reports whether a newer value a makes an older value b useless.
func (e *extremum) dominates(a, b float64) bool {
	if e.min {
		return a <= b
	}
	return a >= b
}

func (e *extremum) add(i int, v float64) {
	for len(e.dq) > e.head && e.dominates(v, e.vals[e.dq[len(e.dq)-1]]) {
		e.dq = e.dq[:len(e.dq)-1]
	}
	e.dq = append(e.dq, i)
}

func (e *extremum) remove(i int, _ float64) {
	if len(e.dq) > e.head && e.dq[e.head] == i {
		e.head++
	}
	// Reclaim the consumed prefix once it dominates the slice.
	if e.head > 64 && e.head*2 > len(e.dq) {
		n := copy(e.dq, e.dq[e.head:])
		e.dq = e.dq[:n]
		e.head = 0
	}
}

func (e *extremum) value(int) float64 {
	return e.vals[e.dq[e.head]]
}
