package core

import (
	"errors"
	"fmt"
	"math"
)

// Series is an immutable ordered sequence of (index, value) pairs. The index
// is strictly increasing; a missing value is stored as NaN.
//
// Every transform returns a new Series. Derived series share the index slice
// of their source, which is never written after construction.
type Series struct {
	index  []int64
	values []float64
}

// Missing returns the value used to mark a missing observation.
func Missing() float64 { return math.NaN() }

// IsMissing reports whether v marks a missing observation.
func IsMissing(v float64) bool { return math.IsNaN(v) }

// IsFinite reports whether v is neither missing nor infinite.
func IsFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// NewSeries builds a Series from an index and its values. Both slices are
// copied so the caller may reuse them.
func NewSeries(index []int64, values []float64) (Series, error) {
	if len(index) != len(values) {
		return Series{}, fmt.Errorf("index length %d does not match value length %d", len(index), len(values))
	}
	if err := validateIndex(index); err != nil {
		return Series{}, err
	}
	return Series{index: copyIndex(index), values: CopySlice(values)}, nil
}

// FromValues builds a Series indexed by sequence position 0..len-1.
func FromValues(values []float64) Series {
	index := make([]int64, len(values))
	for i := range index {
		index[i] = int64(i)
	}
	return Series{index: index, values: CopySlice(values)}
}

// Derive returns a new Series over the same index holding values. The slice
// is owned by the returned Series and must not be modified afterwards.
// It panics if the length differs from s.
func (s Series) Derive(values []float64) Series {
	if len(values) != len(s.index) {
		panic(fmt.Sprintf("derived series length %d does not match index length %d", len(values), len(s.index)))
	}
	return Series{index: s.index, values: values}
}

// Len returns the number of observations.
func (s Series) Len() int { return len(s.values) }

// At returns the value at position i.
func (s Series) At(i int) float64 { return s.values[i] }

// IndexAt returns the index label at position i.
func (s Series) IndexAt(i int) int64 { return s.index[i] }

// Valid reports whether the value at position i is present.
func (s Series) Valid(i int) bool { return !IsMissing(s.values[i]) }

// Values returns a defensive copy of the values.
func (s Series) Values() []float64 { return CopySlice(s.values) }

// Index returns a defensive copy of the index.
func (s Series) Index() []int64 { return copyIndex(s.index) }

// Last returns the final value, or Missing for an empty series.
func (s Series) Last() float64 {
	if len(s.values) == 0 {
		return Missing()
	}
	return s.values[len(s.values)-1]
}

// ValidCount returns the number of non-missing observations.
func (s Series) ValidCount() int {
	n := 0
	for _, v := range s.values {
		if !IsMissing(v) {
			n++
		}
	}
	return n
}

// SameIndex reports whether two series are aligned on an identical index.
func (s Series) SameIndex(o Series) bool {
	if len(s.index) != len(o.index) {
		return false
	}
	if len(s.index) == 0 || &s.index[0] == &o.index[0] {
		return true
	}
	for i := range s.index {
		if s.index[i] != o.index[i] {
			return false
		}
	}
	return true
}

var errIndexOrder = errors.New("index must be strictly increasing")

func validateIndex(index []int64) error {
	for i := 1; i < len(index); i++ {
		if index[i] <= index[i-1] {
			return fmt.Errorf("%w: position %d (%d) follows %d", errIndexOrder, i, index[i], index[i-1])
		}
	}
	return nil
}

func copyIndex(src []int64) []int64 {
	if src == nil {
		return nil
	}
	dst := make([]int64, len(src))
	copy(dst, src)
	return dst
}

// CopySlice returns a defensive copy of src.
func CopySlice(src []float64) []float64 {
	if src == nil {
		return nil
	}
	dst := make([]float64, len(src))
	copy(dst, src)
	return dst
}

// MissingSlice returns a slice of n missing values.
func MissingSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
