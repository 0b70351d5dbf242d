package window

import (
	"fmt"

	"github.com/evdnx/tacore/indicator/core"
)

// Node applies a window reduction to the output of another node.
type Node struct {
	kind   Kind
	span   int
	opts   options
	source core.Node
	key    string
}

// NewNode validates the window parameters and builds a graph node.
func NewNode(kind Kind, source core.Node, span int, opts ...Option) (*Node, error) {
	o, err := buildOptions(span, opts)
	if err != nil {
		return nil, err
	}
	params := core.Params{"span": span}
	if o.minValid != span {
		params["min_valid"] = o.minValid
	}
	if (kind == KindVariance || kind == KindStdDev) && o.ddof != 0 {
		params["ddof"] = o.ddof
	}
	return &Node{
		kind:   kind,
		span:   span,
		opts:   o,
		source: source,
		key:    core.NodeKey("window."+string(kind), params, source),
	}, nil
}

// Span returns the window length.
func (n *Node) Span() int { return n.span }

func (n *Node) Key() string { return n.key }

func (n *Node) Inputs() []core.Node { return []core.Node{n.source} }

func (n *Node) Compute(in []core.Series) (core.Series, error) {
	if len(in) != 1 {
		return core.Series{}, fmt.Errorf("%s: expected 1 input, got %d", n.key, len(in))
	}
	return Apply(n.kind, in[0], n.span, WithMinValid(n.opts.minValid), WithDDOF(n.opts.ddof))
}
