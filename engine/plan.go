package engine

import (
	"errors"
	"fmt"
	"sort"

	"go.uber.org/multierr"

	"github.com/evdnx/tacore/indicator/core"
)

// plan is a compiled request list: every distinct node once, in dependency
// order, with the frame fields it reads and the output columns it produces.
// A plan is immutable and may be shared by concurrent evaluations.
type plan struct {
	slots   int
	fields  []fieldUse
	steps   []step
	columns []column
}

// step computes one non-field node from the slots of its inputs.
type step struct {
	node core.Node
	key  string
	kind string
	slot int
	deps []int
}

// fieldUse is one input column and the indicators that read it, in request
// order.
type fieldUse struct {
	field string
	slot  int
	users []string
}

type column struct {
	name      string
	indicator string
	slot      int
}

const (
	visiting = iota + 1
	visited
)

type planBuilder struct {
	slotOf   map[string]int
	state    map[string]int
	fieldsOf map[string][]string
	fieldIdx map[string]int

	plan plan
}

func newPlanBuilder() *planBuilder {
	return &planBuilder{
		slotOf:   make(map[string]int),
		state:    make(map[string]int),
		fieldsOf: make(map[string][]string),
		fieldIdx: make(map[string]int),
	}
}

// compile resolves every request through the registry and merges the
// resulting graphs. All request errors are reported together.
func compile(reg *Registry, reqs []Request) (*plan, error) {
	b := newPlanBuilder()
	owner := make(map[string]string)

	var errs error
	for _, req := range reqs {
		ind, err := instantiate(reg, req)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		label := req.As
		if label == "" {
			label = ind.Label()
		}
		for _, out := range ind.Outputs() {
			name := core.ColumnName(label, out.Name)
			if prev, dup := owner[name]; dup {
				errs = multierr.Append(errs, &core.ConfigError{
					Indicator: req.Name,
					Err:       fmt.Errorf("output column %q is already produced by %q", name, prev),
				})
				continue
			}
			owner[name] = req.Name

			slot, err := b.visit(out.Node)
			if err != nil {
				errs = multierr.Append(errs, &core.ConfigError{Indicator: req.Name, Err: err})
				continue
			}
			b.plan.columns = append(b.plan.columns, column{name: name, indicator: req.Name, slot: slot})
			for _, f := range b.fieldsOf[out.Node.Key()] {
				b.use(f, req.Name)
			}
		}
	}
	if errs != nil {
		return nil, errs
	}
	p := b.plan
	return &p, nil
}

func instantiate(reg *Registry, req Request) (core.Indicator, error) {
	factory, ok := reg.Lookup(req.Name)
	if !ok {
		return nil, &core.ConfigError{Indicator: req.Name, Err: core.ErrUnknownIndicator}
	}
	ind, err := factory(req.Params)
	if err != nil {
		ce := &core.ConfigError{Indicator: req.Name, Err: err}
		var pe *core.ParamError
		if errors.As(err, &pe) {
			ce.Param = pe.Param
		}
		return nil, ce
	}
	if ind == nil || len(ind.Outputs()) == 0 {
		return nil, &core.ConfigError{Indicator: req.Name, Err: errors.New("factory produced no outputs")}
	}
	return ind, nil
}

// visit appends n and its unvisited dependencies to the plan in post-order
// and returns the slot holding n's series.
func (b *planBuilder) visit(n core.Node) (int, error) {
	if n == nil {
		return 0, errors.New("nil node")
	}
	key := n.Key()
	switch b.state[key] {
	case visited:
		return b.slotOf[key], nil
	case visiting:
		return 0, fmt.Errorf("%w at %s", core.ErrCycle, key)
	}

	if f, ok := n.(core.Field); ok {
		slot := b.alloc(key)
		b.fieldsOf[key] = []string{string(f)}
		b.fieldIdx[string(f)] = len(b.plan.fields)
		b.plan.fields = append(b.plan.fields, fieldUse{field: string(f), slot: slot})
		b.state[key] = visited
		return slot, nil
	}

	b.state[key] = visiting
	inputs := n.Inputs()
	deps := make([]int, len(inputs))
	var fields []string
	for i, in := range inputs {
		slot, err := b.visit(in)
		if err != nil {
			delete(b.state, key)
			return 0, err
		}
		deps[i] = slot
		fields = append(fields, b.fieldsOf[in.Key()]...)
	}

	slot := b.alloc(key)
	b.fieldsOf[key] = dedupe(fields)
	b.plan.steps = append(b.plan.steps, step{
		node: n,
		key:  key,
		kind: core.NodeKind(n),
		slot: slot,
		deps: deps,
	})
	b.state[key] = visited
	return slot, nil
}

func (b *planBuilder) alloc(key string) int {
	slot := b.plan.slots
	b.plan.slots++
	b.slotOf[key] = slot
	return slot
}

func (b *planBuilder) use(field, indicator string) {
	fu := &b.plan.fields[b.fieldIdx[field]]
	for _, u := range fu.users {
		if u == indicator {
			return
		}
	}
	fu.users = append(fu.users, indicator)
}

func dedupe(s []string) []string {
	if len(s) < 2 {
		return s
	}
	sort.Strings(s)
	out := s[:1]
	for _, v := range s[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}
