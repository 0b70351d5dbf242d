package core

import "fmt"

// Evaluate computes nodes over frame in a single goroutine, visiting every
// distinct key once. It is the reference evaluator used for single indicators;
// the engine package schedules the same graphs concurrently.
func Evaluate(frame *Frame, nodes ...Node) ([]Series, error) {
	memo := make(map[string]Series)
	active := make(map[string]bool)

	var visit func(n Node) (Series, error)
	visit = func(n Node) (Series, error) {
		key := n.Key()
		if s, ok := memo[key]; ok {
			return s, nil
		}
		if f, ok := n.(Field); ok {
			s, ok := frame.Column(string(f))
			if !ok {
				return Series{}, &MissingInputError{Field: string(f)}
			}
			memo[key] = s
			return s, nil
		}
		if active[key] {
			return Series{}, fmt.Errorf("%w at %s", ErrCycle, key)
		}
		active[key] = true
		defer delete(active, key)

		deps := n.Inputs()
		in := make([]Series, len(deps))
		for i, d := range deps {
			s, err := visit(d)
			if err != nil {
				return Series{}, err
			}
			in[i] = s
		}
		s, err := n.Compute(in)
		if err != nil {
			return Series{}, fmt.Errorf("%s: %w", key, err)
		}
		memo[key] = s
		return s, nil
	}

	out := make([]Series, len(nodes))
	for i, n := range nodes {
		s, err := visit(n)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}
