// Package engine evaluates sets of indicator requests over a frame.
//
// Requests are compiled into a plan: the union of the indicators' node graphs
// with every distinct node key appearing once, in dependency order. A node
// shared by several indicators (the fast EMA of a MACD and a standalone EMA of
// the same span, the middle Bollinger band and an SMA) is therefore computed
// once per evaluation, also when independent branches run concurrently.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/evdnx/tacore/config"
	"github.com/evdnx/tacore/indicator/core"
)

var log = logrus.WithField("component", "engine")

// Engine evaluates indicator requests. It is safe for concurrent use.
type Engine struct {
	registry  *Registry
	workers   int
	cacheSize int
	logger    logrus.FieldLogger
	metrics   *Metrics
	plans     *lru.Cache[string, *plan]
}

/* ---------- Functional options ---------- */

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers bounds the number of nodes computed concurrently. One worker
// evaluates the plan sequentially in the calling goroutine.
func WithWorkers(n int) Option {
	return func(e *Engine) { e.workers = n }
}

// WithLogger replaces the default component logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithMetrics enables prometheus instrumentation.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithPlanCacheSize sets how many compiled request sets are kept.
func WithPlanCacheSize(n int) Option {
	return func(e *Engine) { e.cacheSize = n }
}

/* ---------- Constructors ---------- */

// New creates an engine over registry with the default configuration.
func New(registry *Registry, opts ...Option) (*Engine, error) {
	if registry == nil {
		return nil, errors.New("engine: nil registry")
	}
	e := &Engine{
		registry:  registry,
		workers:   config.DefaultWorkers,
		cacheSize: config.DefaultPlanCacheSize,
		logger:    log,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.workers < 1 {
		return nil, fmt.Errorf("engine: workers must be at least 1, got %d", e.workers)
	}
	plans, err := lru.New[string, *plan](e.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("engine: plan cache: %w", err)
	}
	e.plans = plans
	return e, nil
}

// NewWithConfig creates an engine from a validated configuration. Options
// are applied after the configured values and take precedence.
func NewWithConfig(registry *Registry, cfg config.Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	logger := logrus.New()
	logger.SetLevel(cfg.Level())

	base := []Option{
		WithWorkers(cfg.Workers),
		WithPlanCacheSize(cfg.PlanCacheSize),
		WithLogger(logger.WithField("component", "engine")),
	}
	return New(registry, append(base, opts...)...)
}

func (e *Engine) Workers() int { return e.workers }

/* ---------- Evaluation ---------- */

// Columns validates requests without evaluating them and returns the output
// column names in the order Evaluate would produce them.
func (e *Engine) Columns(reqs []Request) ([]string, error) {
	p, err := e.plan(reqs)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(p.columns))
	for i, c := range p.columns {
		names[i] = c.name
	}
	return names, nil
}

// Evaluate computes every request over frame and returns a frame sharing its
// index, with columns in request order. Any invalid request, absent input
// field or infinite input value fails the whole evaluation; the error then
// lists every problem found.
func (e *Engine) Evaluate(frame *core.Frame, reqs []Request) (*core.Frame, error) {
	start := time.Now()
	out, err := e.evaluate(frame, reqs)
	elapsed := time.Since(start)
	e.metrics.observeEvaluation(err, elapsed.Seconds())

	logger := e.logger.WithFields(logrus.Fields{
		"requests": len(reqs),
		"elapsed":  elapsed,
	})
	if err != nil {
		logger.WithError(err).Warn("evaluation failed")
		return nil, err
	}
	logger.WithField("columns", len(out.Names())).Debug("evaluation finished")
	return out, nil
}

func (e *Engine) evaluate(frame *core.Frame, reqs []Request) (*core.Frame, error) {
	if frame == nil {
		return nil, errors.New("engine: nil frame")
	}
	p, err := e.plan(reqs)
	if err != nil {
		return nil, err
	}
	if err := checkInputs(p, frame); err != nil {
		return nil, err
	}

	m := newMemo(p.slots)
	for _, fu := range p.fields {
		col, _ := frame.Column(fu.field)
		m.store(fu.slot, col)
	}
	if e.workers == 1 || len(p.steps) < 2 {
		err = e.runSequential(p, m)
	} else {
		err = e.runParallel(p, m)
	}
	if err != nil {
		return nil, err
	}

	names := make([]string, len(p.columns))
	series := make([]core.Series, len(p.columns))
	for i, c := range p.columns {
		names[i] = c.name
		series[i], _ = m.load(c.slot)
	}
	return core.AssembleFrame(frame.Index(), names, series)
}

// plan returns the compiled plan for reqs, compiling on a cache miss. Failed
// compilations are not cached.
func (e *Engine) plan(reqs []Request) (*plan, error) {
	sig := signature(reqs)
	if p, ok := e.plans.Get(sig); ok {
		e.metrics.observePlanCache(true)
		e.logger.Debug("plan cache hit")
		return p, nil
	}
	e.metrics.observePlanCache(false)

	p, err := compile(e.registry, reqs)
	if err != nil {
		return nil, err
	}
	e.plans.Add(sig, p)
	e.logger.WithFields(logrus.Fields{
		"nodes":   len(p.steps),
		"fields":  len(p.fields),
		"columns": len(p.columns),
	}).Debug("compiled plan")
	return p, nil
}

// checkInputs verifies that every field the plan reads exists in frame and
// holds no infinite value.
func checkInputs(p *plan, frame *core.Frame) error {
	var errs error
	for _, fu := range p.fields {
		col, ok := frame.Column(fu.field)
		if !ok {
			for _, user := range fu.users {
				errs = multierr.Append(errs, &core.MissingInputError{Indicator: user, Field: fu.field})
			}
			continue
		}
		for i := 0; i < col.Len(); i++ {
			v := col.At(i)
			if !math.IsInf(v, 0) {
				continue
			}
			for _, user := range fu.users {
				errs = multierr.Append(errs, &core.NumericError{Indicator: user, Field: fu.field, Index: i, Value: v})
			}
			break
		}
	}
	return errs
}

func (e *Engine) runSequential(p *plan, m *memo) error {
	for i := range p.steps {
		st := &p.steps[i]
		s, err := e.compute(st, m)
		if err != nil {
			return err
		}
		m.store(st.slot, s)
	}
	return nil
}

// runParallel schedules every step in dependency order on a bounded worker
// group. A step whose inputs are still in flight waits for them through the
// memo instead of recomputing them.
func (e *Engine) runParallel(p *plan, m *memo) error {
	producer := make(map[int]*step, len(p.steps))
	for i := range p.steps {
		producer[p.steps[i].slot] = &p.steps[i]
	}

	var resolve func(ctx context.Context, st *step) (core.Series, error)
	resolve = func(ctx context.Context, st *step) (core.Series, error) {
		return m.once(st.key, st.slot, func() (core.Series, error) {
			if err := ctx.Err(); err != nil {
				return core.Series{}, err
			}
			for _, d := range st.deps {
				dep, ok := producer[d]
				if !ok {
					continue
				}
				if _, err := resolve(ctx, dep); err != nil {
					return core.Series{}, err
				}
			}
			return e.compute(st, m)
		})
	}

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(e.workers)
	for i := range p.steps {
		st := &p.steps[i]
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			_, err := resolve(ctx, st)
			return err
		})
	}
	return g.Wait()
}

// compute runs one node over its already available inputs.
func (e *Engine) compute(st *step, m *memo) (core.Series, error) {
	in := make([]core.Series, len(st.deps))
	for i, d := range st.deps {
		s, ok := m.load(d)
		if !ok {
			return core.Series{}, fmt.Errorf("%s: input %d not evaluated", st.key, i)
		}
		in[i] = s
	}
	s, err := st.node.Compute(in)
	if err != nil {
		return core.Series{}, fmt.Errorf("%s: %w", st.key, err)
	}
	e.metrics.observeNode(st.kind)
	return s, nil
}
