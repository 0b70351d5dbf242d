package core

import (
	"fmt"
	"sort"
)

// Frame is a table of named numeric columns sharing one index. It is the
// input and output container of an evaluation.
type Frame struct {
	index   []int64
	names   []string
	columns map[string][]float64
}

// NewFrame builds a Frame from an index and named columns. Every column must
// have the same length as the index. Columns are ordered by name.
func NewFrame(index []int64, columns map[string][]float64) (*Frame, error) {
	if err := validateIndex(index); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(columns))
	for name := range columns {
		names = append(names, name)
	}
	sort.Strings(names)

	f := &Frame{
		index:   copyIndex(index),
		names:   names,
		columns: make(map[string][]float64, len(columns)),
	}
	for _, name := range names {
		col := columns[name]
		if len(col) != len(index) {
			return nil, fmt.Errorf("column %q has %d values, index has %d", name, len(col), len(index))
		}
		f.columns[name] = CopySlice(col)
		if f.columns[name] == nil {
			f.columns[name] = []float64{}
		}
	}
	return f, nil
}

// NewSequenceFrame builds a Frame indexed by position 0..n-1.
func NewSequenceFrame(columns map[string][]float64) (*Frame, error) {
	n := -1
	for name, col := range columns {
		if n >= 0 && len(col) != n {
			return nil, fmt.Errorf("column %q has %d values, expected %d", name, len(col), n)
		}
		n = len(col)
	}
	if n < 0 {
		n = 0
	}
	index := make([]int64, n)
	for i := range index {
		index[i] = int64(i)
	}
	return NewFrame(index, columns)
}

// AssembleFrame builds a Frame from series already aligned to index. Column
// order follows names. Duplicate names or misaligned series are rejected.
func AssembleFrame(index []int64, names []string, series []Series) (*Frame, error) {
	if len(names) != len(series) {
		return nil, fmt.Errorf("%d column names for %d series", len(names), len(series))
	}
	f := &Frame{
		index:   index,
		names:   make([]string, 0, len(names)),
		columns: make(map[string][]float64, len(names)),
	}
	for i, name := range names {
		if _, dup := f.columns[name]; dup {
			return nil, fmt.Errorf("duplicate column %q", name)
		}
		s := series[i]
		if s.Len() != len(index) {
			return nil, fmt.Errorf("column %q has %d values, index has %d", name, s.Len(), len(index))
		}
		f.names = append(f.names, name)
		f.columns[name] = s.values
	}
	return f, nil
}

// Len returns the number of rows.
func (f *Frame) Len() int { return len(f.index) }

// Names returns the column names in frame order.
func (f *Frame) Names() []string {
	out := make([]string, len(f.names))
	copy(out, f.names)
	return out
}

// Has reports whether the frame holds a column called name.
func (f *Frame) Has(name string) bool {
	_, ok := f.columns[name]
	return ok
}

// Index returns a defensive copy of the shared index.
func (f *Frame) Index() []int64 { return copyIndex(f.index) }

// Column returns the named column as a Series aligned to the frame index.
func (f *Frame) Column(name string) (Series, bool) {
	col, ok := f.columns[name]
	if !ok {
		return Series{}, false
	}
	return Series{index: f.index, values: col}, true
}

// Values returns a defensive copy of the named column's values.
func (f *Frame) Values(name string) []float64 {
	return CopySlice(f.columns[name])
}
