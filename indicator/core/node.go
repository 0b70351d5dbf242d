package core

import (
	"errors"
	"strings"
)

// Node is one vertex of an indicator dependency graph. A node is a pure
// description: Compute receives the already evaluated outputs of Inputs, in
// order, and must not retain or modify them.
//
// Key identifies the computation (kind, canonical parameters and input keys),
// so two nodes with equal keys produce identical series.
type Node interface {
	Key() string
	Inputs() []Node
	Compute(inputs []Series) (Series, error)
}

// NodeKey builds the canonical key "kind(params)<input,...>".
func NodeKey(kind string, params Params, inputs ...Node) string {
	var sb strings.Builder
	sb.WriteString(kind)
	sb.WriteByte('(')
	sb.WriteString(params.Canonical())
	sb.WriteByte(')')
	if len(inputs) > 0 {
		sb.WriteByte('<')
		for i, in := range inputs {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(in.Key())
		}
		sb.WriteByte('>')
	}
	return sb.String()
}

// NodeKind returns the kind prefix of a node key.
func NodeKind(n Node) string {
	key := n.Key()
	if i := strings.IndexByte(key, '('); i >= 0 {
		return key[:i]
	}
	return key
}

// -----------------------------------------------------------------------------
// Field – the only root node; it reads a named column of the input frame.
// -----------------------------------------------------------------------------

// Field reads an input column by name. The evaluator resolves fields directly
// from the frame, so Compute is never reached during a normal evaluation.
type Field string

// Common input fields.
const (
	Open   Field = "open"
	High   Field = "high"
	Low    Field = "low"
	Close  Field = "close"
	Volume Field = "volume"
)

func (f Field) Key() string { return "field(" + string(f) + ")" }

func (f Field) Inputs() []Node { return nil }

func (f Field) Compute([]Series) (Series, error) {
	return Series{}, errors.New("field " + string(f) + " must be resolved from the input frame")
}

// -----------------------------------------------------------------------------
// Linear – Σ cᵢ·xᵢ over aligned inputs
// -----------------------------------------------------------------------------

// Linear combines its inputs position by position. A position is missing when
// any input is missing there.
type Linear struct {
	coefs  []float64
	inputs []Node
	key    string
}

// Term is one coefficient/input pair of a Linear node.
type Term struct {
	Coef float64
	Node Node
}

// NewLinear builds Σ coef·node over the given terms.
func NewLinear(terms ...Term) *Linear {
	l := &Linear{
		coefs:  make([]float64, len(terms)),
		inputs: make([]Node, len(terms)),
	}
	coefs := make([]string, len(terms))
	for i, t := range terms {
		l.coefs[i] = t.Coef
		l.inputs[i] = t.Node
		coefs[i] = FormatValue(t.Coef)
	}
	l.key = NodeKey("linear", Params{"c": strings.Join(coefs, ";")}, l.inputs...)
	return l
}

// Sub returns a − b.
func Sub(a, b Node) *Linear {
	return NewLinear(Term{Coef: 1, Node: a}, Term{Coef: -1, Node: b})
}

func (l *Linear) Key() string { return l.key }

func (l *Linear) Inputs() []Node { return l.inputs }

func (l *Linear) Compute(in []Series) (Series, error) {
	if len(in) != len(l.inputs) {
		return Series{}, errors.New("linear: input count mismatch")
	}
	if len(in) == 0 {
		return Series{}, errors.New("linear: no inputs")
	}
	n := in[0].Len()
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		sum := 0.0
		for j, s := range in {
			v := s.values[i]
			if IsMissing(v) {
				sum = Missing()
				break
			}
			sum += l.coefs[j] * v
		}
		out[i] = sum
	}
	return in[0].Derive(out), nil
}

// -----------------------------------------------------------------------------
// Indicator definitions
// -----------------------------------------------------------------------------

// Output is one named sub-series of an indicator. The primary output of an
// indicator has an empty Name.
type Output struct {
	Name string
	Node Node
}

// Indicator is a validated, stateless indicator definition. Evaluating its
// output nodes creates fresh filter state on every call.
type Indicator interface {
	// Name returns the registry name, e.g. "macd".
	Name() string
	// Label returns the default column label, e.g. "macd_12_26_9".
	Label() string
	// Outputs lists the produced sub-series.
	Outputs() []Output
}

// Label joins an indicator name and its parameters with underscores.
func Label(name string, params ...any) string {
	parts := make([]string, 0, len(params)+1)
	parts = append(parts, name)
	for _, p := range params {
		parts = append(parts, FormatValue(p))
	}
	return strings.Join(parts, "_")
}

// SourceLabel is Label with the source column appended unless it is close.
func SourceLabel(name string, source Field, params ...any) string {
	if source != Close {
		params = append(params, string(source))
	}
	return Label(name, params...)
}

// ColumnName returns the output column for a sub-series of label.
func ColumnName(label, output string) string {
	if output == "" {
		return label
	}
	return label + "." + output
}
