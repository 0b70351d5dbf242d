package filter

import (
	"fmt"

	"github.com/evdnx/tacore/indicator/core"
)

// Kind names a smoothing filter.
type Kind string

const (
	KindEMA    Kind = "ema"
	KindWilder Kind = "wilder"
)

// Node smooths the output of another node. Every Compute call folds with
// fresh state.
type Node struct {
	kind   Kind
	span   int
	alpha  float64
	seed   Seed
	source core.Node
	key    string
}

// NewNode validates the filter parameters and builds a graph node.
func NewNode(kind Kind, source core.Node, span int, seed Seed) (*Node, error) {
	if span < 1 {
		return nil, core.InvalidParam("span", "must be at least 1, got %d", span)
	}
	if _, err := ParseSeed(string(seed)); err != nil {
		return nil, err
	}
	var alpha float64
	switch kind {
	case KindEMA:
		alpha = EMAAlpha(span)
	case KindWilder:
		alpha = WilderAlpha(span)
	default:
		return nil, fmt.Errorf("unknown filter %q", kind)
	}
	return &Node{
		kind:   kind,
		span:   span,
		alpha:  alpha,
		seed:   seed,
		source: source,
		key:    core.NodeKey("filter."+string(kind), core.Params{"span": span, "seed": string(seed)}, source),
	}, nil
}

// Span returns the filter period.
func (n *Node) Span() int { return n.span }

func (n *Node) Key() string { return n.key }

func (n *Node) Inputs() []core.Node { return []core.Node{n.source} }

func (n *Node) Compute(in []core.Series) (core.Series, error) {
	if len(in) != 1 {
		return core.Series{}, fmt.Errorf("%s: expected 1 input, got %d", n.key, len(in))
	}
	return Smooth(in[0], n.alpha, n.span, n.seed)
}
