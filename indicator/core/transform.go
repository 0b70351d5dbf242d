package core

import (
	"errors"
	"fmt"
)

// -----------------------------------------------------------------------------
// Pointwise – f(x₁ᵢ, …, xₖᵢ) over aligned inputs
// -----------------------------------------------------------------------------

// Pointwise applies fn position by position. A position is missing when any
// input is missing there; fn only sees valid values. fn must be pure.
type Pointwise struct {
	fn     func(x []float64) float64
	inputs []Node
	key    string
}

// NewPointwise builds a Pointwise node. kind and params identify fn in the
// node key, so two nodes built with the same kind and params must use the
// same function.
func NewPointwise(kind string, params Params, fn func(x []float64) float64, inputs ...Node) *Pointwise {
	return &Pointwise{
		fn:     fn,
		inputs: inputs,
		key:    NodeKey(kind, params, inputs...),
	}
}

func (p *Pointwise) Key() string { return p.key }

func (p *Pointwise) Inputs() []Node { return p.inputs }

func (p *Pointwise) Compute(in []Series) (Series, error) {
	if len(in) != len(p.inputs) || len(in) == 0 {
		return Series{}, fmt.Errorf("%s: expected %d inputs, got %d", p.key, len(p.inputs), len(in))
	}
	n := in[0].Len()
	out := make([]float64, n)
	args := make([]float64, len(in))
	for i := 0; i < n; i++ {
		missing := false
		for j, s := range in {
			args[j] = s.values[i]
			if IsMissing(args[j]) {
				missing = true
				break
			}
		}
		if missing {
			out[i] = Missing()
			continue
		}
		out[i] = p.fn(args)
	}
	return in[0].Derive(out), nil
}

// -----------------------------------------------------------------------------
// Shift – lag a series by k positions
// -----------------------------------------------------------------------------

// Shift moves values k positions later; the first k positions are missing.
type Shift struct {
	k      int
	source Node
	key    string
}

// NewShift lags source by k ≥ 1 positions.
func NewShift(source Node, k int) (*Shift, error) {
	if k < 1 {
		return nil, InvalidParam("lag", "must be at least 1, got %d", k)
	}
	return &Shift{k: k, source: source, key: NodeKey("shift", Params{"k": k}, source)}, nil
}

// Prev lags source by one position.
func Prev(source Node) *Shift {
	return &Shift{k: 1, source: source, key: NodeKey("shift", Params{"k": 1}, source)}
}

func (s *Shift) Key() string { return s.key }

func (s *Shift) Inputs() []Node { return []Node{s.source} }

func (s *Shift) Compute(in []Series) (Series, error) {
	if len(in) != 1 {
		return Series{}, errors.New("shift: expected 1 input")
	}
	n := in[0].Len()
	out := MissingSlice(n)
	if s.k < n {
		copy(out[s.k:], in[0].values[:n-s.k])
	}
	return in[0].Derive(out), nil
}

// -----------------------------------------------------------------------------
// Definition – the common Indicator implementation
// -----------------------------------------------------------------------------

// Definition is a ready-made Indicator. Concrete indicators embed it and add
// accessors for their parameters.
type Definition struct {
	name    string
	label   string
	outputs []Output
}

// NewDefinition builds a Definition. The first output is the primary one.
func NewDefinition(name, label string, outputs ...Output) Definition {
	return Definition{name: name, label: label, outputs: outputs}
}

func (d Definition) Name() string { return d.name }

func (d Definition) Label() string { return d.label }

// Outputs returns a copy of the output list.
func (d Definition) Outputs() []Output {
	out := make([]Output, len(d.outputs))
	copy(out, d.outputs)
	return out
}

// Primary returns the node of the first output.
func (d Definition) Primary() Node { return d.outputs[0].Node }

// TypicalPrice returns the (high + low + close) / 3 node.
func TypicalPrice() *Pointwise {
	return NewPointwise("typical", nil, func(x []float64) float64 {
		return (x[0] + x[1] + x[2]) / 3
	}, High, Low, Close)
}
