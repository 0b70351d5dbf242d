package engine

import (
	"errors"
	"math"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/evdnx/tacore/config"
	"github.com/evdnx/tacore/indicator/core"
	"github.com/evdnx/tacore/indicator/filter"
	"github.com/evdnx/tacore/indicator/momentum"
	"github.com/evdnx/tacore/indicator/trend"
	"github.com/evdnx/tacore/indicator/volatility"
	"github.com/evdnx/tacore/indicator/volume"
)

func testRegistry() *Registry {
	r := NewRegistry()
	r.MustRegister("sma", trend.SMAFromParams)
	r.MustRegister("ema", func(p core.Params) (core.Indicator, error) { return trend.EMAFromParams(p, filter.SeedSMA) })
	r.MustRegister("macd", func(p core.Params) (core.Indicator, error) { return momentum.MACDFromParams(p, filter.SeedSMA) })
	r.MustRegister("rsi", momentum.RelativeStrengthIndexFromParams)
	r.MustRegister("stoch", momentum.StochasticOscillatorFromParams)
	r.MustRegister("bbands", volatility.BollingerBandsFromParams)
	r.MustRegister("atr", volatility.AverageTrueRangeFromParams)
	r.MustRegister("mfi", volume.MoneyFlowIndexFromParams)
	return r
}

// ohlcvFrame builds a deterministic random walk with consistent bars.
func ohlcvFrame(t testing.TB, n int, seed int64) *core.Frame {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	cols := map[string][]float64{
		"open": make([]float64, n), "high": make([]float64, n), "low": make([]float64, n),
		"close": make([]float64, n), "volume": make([]float64, n),
	}
	price := 100.0
	for i := 0; i < n; i++ {
		open := price
		price += rng.NormFloat64()
		cols["open"][i] = open
		cols["close"][i] = price
		cols["high"][i] = math.Max(open, price) + rng.Float64()
		cols["low"][i] = math.Min(open, price) - rng.Float64()
		cols["volume"][i] = 1000 + 500*rng.Float64()
	}
	f, err := core.NewSequenceFrame(cols)
	require.NoError(t, err)
	return f
}

func newEngine(t testing.TB, opts ...Option) (*Engine, *Metrics) {
	t.Helper()
	m, err := NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)
	e, err := New(testRegistry(), append([]Option{WithMetrics(m)}, opts...)...)
	require.NoError(t, err)
	return e, m
}

func sameValues(t *testing.T, want, got []float64, msg string) {
	t.Helper()
	require.Len(t, got, len(want), msg)
	for i := range want {
		if core.IsMissing(want[i]) && core.IsMissing(got[i]) {
			continue
		}
		if math.Float64bits(want[i]) != math.Float64bits(got[i]) {
			t.Fatalf("%s: position %d: got %v, want %v", msg, i, got[i], want[i])
		}
	}
}

var standardRequests = []Request{
	{Name: "sma", Params: core.Params{"span": 20}},
	{Name: "ema", Params: core.Params{"span": 12}},
	{Name: "macd"},
	{Name: "rsi"},
	{Name: "bbands"},
	{Name: "atr"},
	{Name: "stoch"},
	{Name: "mfi"},
}

func TestEvaluate_ColumnsInRequestOrder(t *testing.T) {
	e, _ := newEngine(t)
	out, err := e.Evaluate(ohlcvFrame(t, 50, 1), standardRequests)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"sma_20", "ema_12",
		"macd_12_26_9", "macd_12_26_9.signal", "macd_12_26_9.histogram",
		"rsi_14",
		"bbands_20_2.upper", "bbands_20_2.middle", "bbands_20_2.lower",
		"atr_14",
		"stoch_14_3.k", "stoch_14_3.d",
		"mfi_14",
	}, out.Names())

	cols, err := e.Columns(standardRequests)
	require.NoError(t, err)
	assert.Equal(t, out.Names(), cols)
}

func TestEvaluate_SharedNodesComputedOnce(t *testing.T) {
	for _, workers := range []int{1, 4} {
		e, m := newEngine(t, WithWorkers(workers))
		f := ohlcvFrame(t, 200, 2)

		out, err := e.Evaluate(f, []Request{
			{Name: "macd"},
			{Name: "ema", Params: core.Params{"span": 12}},
			{Name: "ema", As: "fast", Params: core.Params{"span": 12}},
		})
		require.NoError(t, err)

		// fast, slow and signal; the standalone EMAs reuse the fast one.
		assert.Equal(t, 3.0, testutil.ToFloat64(m.nodeComputations.WithLabelValues("filter.ema")), "workers=%d", workers)
		assert.Equal(t, 2.0, testutil.ToFloat64(m.nodeComputations.WithLabelValues("linear")), "workers=%d", workers)

		ema, err := trend.NewEMAWithParams(12, filter.SeedSMA, core.Close)
		require.NoError(t, err)
		ref, err := core.Evaluate(f, ema.Primary())
		require.NoError(t, err)
		sameValues(t, ref[0].Values(), out.Values("ema_12"), "standalone ema")
		sameValues(t, out.Values("ema_12"), out.Values("fast"), "aliased ema")
	}
}

func TestEvaluate_BollingerMiddleIsSMA(t *testing.T) {
	e, m := newEngine(t)
	out, err := e.Evaluate(ohlcvFrame(t, 80, 3), []Request{
		{Name: "sma", Params: core.Params{"span": 20}},
		{Name: "bbands", Params: core.Params{"span": 20}},
	})
	require.NoError(t, err)
	sameValues(t, out.Values("sma_20"), out.Values("bbands_20_2.middle"), "middle band")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.nodeComputations.WithLabelValues("window.mean")))
}

// countingNode negates its input and counts how often it is computed.
type countingNode struct {
	calls *atomic.Int64
}

func (n countingNode) Key() string { return "count()<field(close)>" }

func (n countingNode) Inputs() []core.Node { return []core.Node{core.Close} }

func (n countingNode) Compute(in []core.Series) (core.Series, error) {
	n.calls.Add(1)
	vals := in[0].Values()
	for i := range vals {
		vals[i] = -vals[i]
	}
	return in[0].Derive(vals), nil
}

func TestEvaluate_ComputeOnceUnderConcurrency(t *testing.T) {
	var calls atomic.Int64
	shared := countingNode{calls: &calls}

	r := NewRegistry()
	for _, name := range []string{"a", "b", "c", "d"} {
		r.MustRegister(name, func(core.Params) (core.Indicator, error) {
			node := core.NewPointwise("scale."+name, nil, func(x []float64) float64 { return 2 * x[0] }, shared)
			return core.NewDefinition(name, name, core.Output{Node: node}), nil
		})
	}
	e, err := New(r, WithWorkers(8))
	require.NoError(t, err)

	f := ohlcvFrame(t, 1000, 4)
	reqs := []Request{{Name: "a"}, {Name: "b"}, {Name: "c"}, {Name: "d"}}
	const rounds = 25
	var wg sync.WaitGroup
	for i := 0; i < rounds; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.Evaluate(f, reqs)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(rounds), calls.Load(), "shared node must run once per evaluation")
}

func TestEvaluate_ParallelMatchesSequential(t *testing.T) {
	f := ohlcvFrame(t, 500, 5)
	seq, _ := newEngine(t, WithWorkers(1))
	par, _ := newEngine(t, WithWorkers(8))

	want, err := seq.Evaluate(f, standardRequests)
	require.NoError(t, err)
	got, err := par.Evaluate(f, standardRequests)
	require.NoError(t, err)

	require.Equal(t, want.Names(), got.Names())
	for _, name := range want.Names() {
		sameValues(t, want.Values(name), got.Values(name), name)
	}
}

func TestEvaluate_Idempotent(t *testing.T) {
	e, _ := newEngine(t)
	f := ohlcvFrame(t, 300, 6)
	first, err := e.Evaluate(f, standardRequests)
	require.NoError(t, err)
	second, err := e.Evaluate(f, standardRequests)
	require.NoError(t, err)
	for _, name := range first.Names() {
		sameValues(t, first.Values(name), second.Values(name), name)
	}
}

func TestEvaluate_AlignedToInputIndex(t *testing.T) {
	index := []int64{1000, 1060, 1120, 1500, 1560, 1620, 9000}
	closes := []float64{1, 2, 3, 4, 5, 6, 7}
	f, err := core.NewFrame(index, map[string][]float64{"close": closes})
	require.NoError(t, err)

	e, _ := newEngine(t)
	out, err := e.Evaluate(f, []Request{{Name: "sma", Params: core.Params{"span": 3}}})
	require.NoError(t, err)

	assert.Equal(t, index, out.Index())
	vals := out.Values("sma_3")
	require.Len(t, vals, len(closes))
	assert.True(t, core.IsMissing(vals[0]))
	assert.True(t, core.IsMissing(vals[1]))
	assert.InDelta(t, 2.0, vals[2], 1e-12)
	assert.InDelta(t, 6.0, vals[6], 1e-12)
}

func TestEvaluate_EmptyFrame(t *testing.T) {
	f, err := core.NewSequenceFrame(map[string][]float64{
		"high": {}, "low": {}, "close": {}, "volume": {},
	})
	require.NoError(t, err)

	e, _ := newEngine(t, WithWorkers(4))
	out, err := e.Evaluate(f, standardRequests)
	require.NoError(t, err)
	assert.Equal(t, 0, out.Len())
	assert.Len(t, out.Names(), 13)
}

func TestEvaluate_NoRequests(t *testing.T) {
	e, _ := newEngine(t)
	out, err := e.Evaluate(ohlcvFrame(t, 10, 7), nil)
	require.NoError(t, err)
	assert.Empty(t, out.Names())
	assert.Equal(t, 10, out.Len())
}

func TestEvaluate_RSIAllGains(t *testing.T) {
	f, err := core.NewSequenceFrame(map[string][]float64{"close": {1, 2, 3, 4, 5, 6}})
	require.NoError(t, err)
	e, _ := newEngine(t)
	out, err := e.Evaluate(f, []Request{{Name: "rsi", Params: core.Params{"span": 2}}})
	require.NoError(t, err)

	vals := out.Values("rsi_2")
	assert.True(t, core.IsMissing(vals[1]))
	for i := 2; i < len(vals); i++ {
		assert.Equal(t, 100.0, vals[i], "position %d", i)
	}
}

func TestEvaluate_UnknownIndicator(t *testing.T) {
	e, _ := newEngine(t)
	_, err := e.Evaluate(ohlcvFrame(t, 10, 8), []Request{{Name: "zigzag"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrUnknownIndicator)

	var ce *core.ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "zigzag", ce.Indicator)
}

func TestEvaluate_InvalidParameters(t *testing.T) {
	e, m := newEngine(t)
	f := ohlcvFrame(t, 10, 9)
	reqs := []Request{
		{Name: "sma", Params: core.Params{"span": 0}},
		{Name: "ema", Params: core.Params{"span": 5}},
		{Name: "macd", Params: core.Params{"fast": 26, "slow": 12}},
	}
	out, err := e.Evaluate(f, reqs)
	require.Error(t, err)
	assert.Nil(t, out, "no partial frame")
	assert.ErrorIs(t, err, core.ErrInvalidParameter)

	errs := multierr.Errors(err)
	require.Len(t, errs, 2)
	var ce *core.ConfigError
	require.ErrorAs(t, errs[0], &ce)
	assert.Equal(t, "sma", ce.Indicator)
	assert.Equal(t, "span", ce.Param)
	require.ErrorAs(t, errs[1], &ce)
	assert.Equal(t, "macd", ce.Indicator)
	assert.Equal(t, "fast", ce.Param)

	// Failed compilations are not cached.
	_, err = e.Evaluate(f, reqs)
	require.Error(t, err)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.planCache.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.evaluations.WithLabelValues("error")))
}

func TestEvaluate_MissingInputField(t *testing.T) {
	f, err := core.NewSequenceFrame(map[string][]float64{"close": {1, 2, 3, 4}})
	require.NoError(t, err)
	e, _ := newEngine(t)

	_, err = e.Evaluate(f, []Request{{Name: "sma", Params: core.Params{"span": 2}}, {Name: "atr"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrMissingInput)

	var missing []string
	for _, one := range multierr.Errors(err) {
		var mi *core.MissingInputError
		require.ErrorAs(t, one, &mi)
		assert.Equal(t, "atr", mi.Indicator)
		missing = append(missing, mi.Field)
	}
	assert.ElementsMatch(t, []string{"high", "low"}, missing)
}

func TestEvaluate_InfiniteInput(t *testing.T) {
	f, err := core.NewSequenceFrame(map[string][]float64{"close": {1, 2, math.Inf(1), 4}})
	require.NoError(t, err)
	e, _ := newEngine(t)

	_, err = e.Evaluate(f, []Request{{Name: "ema", Params: core.Params{"span": 2}}})
	require.Error(t, err)
	var ne *core.NumericError
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, "ema", ne.Indicator)
	assert.Equal(t, "close", ne.Field)
	assert.Equal(t, 2, ne.Index)
	assert.ErrorIs(t, err, core.ErrNonFinite)
}

func TestEvaluate_MissingValuesAreNotErrors(t *testing.T) {
	f, err := core.NewSequenceFrame(map[string][]float64{"close": {1, 2, core.Missing(), 4, 5}})
	require.NoError(t, err)
	e, _ := newEngine(t)
	out, err := e.Evaluate(f, []Request{{Name: "sma", Params: core.Params{"span": 2}}})
	require.NoError(t, err)
	vals := out.Values("sma_2")
	assert.True(t, core.IsMissing(vals[2]))
	assert.True(t, core.IsMissing(vals[3]))
	assert.InDelta(t, 4.5, vals[4], 1e-12)
}

func TestEvaluate_DuplicateColumns(t *testing.T) {
	e, _ := newEngine(t)
	f := ohlcvFrame(t, 30, 10)

	_, err := e.Evaluate(f, []Request{
		{Name: "sma", Params: core.Params{"span": 5}},
		{Name: "sma", Params: core.Params{"span": 5}},
	})
	var ce *core.ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "sma", ce.Indicator)

	_, err = e.Evaluate(f, []Request{
		{Name: "sma", As: "x", Params: core.Params{"span": 5}},
		{Name: "ema", As: "x", Params: core.Params{"span": 5}},
	})
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "ema", ce.Indicator)

	out, err := e.Evaluate(f, []Request{
		{Name: "sma", Params: core.Params{"span": 5}},
		{Name: "sma", As: "sma_again", Params: core.Params{"span": 5}},
	})
	require.NoError(t, err)
	sameValues(t, out.Values("sma_5"), out.Values("sma_again"), "aliased sma")
}

// loopNode depends on itself.
type loopNode struct{}

func (loopNode) Key() string { return "loop()" }

func (n loopNode) Inputs() []core.Node { return []core.Node{n} }

func (loopNode) Compute([]core.Series) (core.Series, error) { return core.Series{}, nil }

func TestEvaluate_CycleRejected(t *testing.T) {
	r := testRegistry()
	r.MustRegister("loop", func(core.Params) (core.Indicator, error) {
		return core.NewDefinition("loop", "loop", core.Output{Node: loopNode{}}), nil
	})
	e, err := New(r)
	require.NoError(t, err)

	_, err = e.Evaluate(ohlcvFrame(t, 5, 11), []Request{{Name: "sma", Params: core.Params{"span": 2}}, {Name: "loop"}})
	assert.ErrorIs(t, err, core.ErrCycle)
	var ce *core.ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "loop", ce.Indicator)
}

func TestEvaluate_PlanCache(t *testing.T) {
	e, m := newEngine(t, WithPlanCacheSize(2))
	f := ohlcvFrame(t, 40, 12)

	for i := 0; i < 3; i++ {
		_, err := e.Evaluate(f, standardRequests)
		require.NoError(t, err)
	}
	assert.Equal(t, 1.0, testutil.ToFloat64(m.planCache.WithLabelValues("miss")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.planCache.WithLabelValues("hit")))

	// A string span is a different request from an int span.
	_, err := e.Evaluate(f, []Request{{Name: "sma", Params: core.Params{"span": 20}}})
	require.NoError(t, err)
	_, err = e.Evaluate(f, []Request{{Name: "sma", Params: core.Params{"span": 20.0}}})
	require.NoError(t, err)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.planCache.WithLabelValues("miss")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.evaluations.WithLabelValues("ok")))
}

func TestEvaluate_NilFrame(t *testing.T) {
	e, _ := newEngine(t)
	_, err := e.Evaluate(nil, standardRequests)
	assert.Error(t, err)
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)

	_, err = New(testRegistry(), WithWorkers(0))
	assert.Error(t, err)

	_, err = New(testRegistry(), WithPlanCacheSize(0))
	assert.Error(t, err)
}

func TestNewWithConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Workers = 3
	e, err := NewWithConfig(testRegistry(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 3, e.Workers())

	e, err = NewWithConfig(testRegistry(), cfg, WithWorkers(1))
	require.NoError(t, err)
	assert.Equal(t, 1, e.Workers(), "options override configuration")

	cfg.LogLevel = "chatty"
	_, err = NewWithConfig(testRegistry(), cfg)
	assert.Error(t, err)
}

func TestRequestsFromConfig(t *testing.T) {
	reqs := RequestsFromConfig([]config.IndicatorRequest{
		{Name: "ema", As: "fast", Params: map[string]any{"span": 5}},
	})
	require.Len(t, reqs, 1)
	assert.Equal(t, Request{Name: "ema", As: "fast", Params: core.Params{"span": 5}}, reqs[0])
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("b", trend.SMAFromParams))
	require.NoError(t, r.Register("a", trend.WMAFromParams))
	assert.Error(t, r.Register("a", trend.WMAFromParams))
	assert.Error(t, r.Register("", trend.WMAFromParams))
	assert.Error(t, r.Register("c", nil))
	assert.Equal(t, []string{"a", "b"}, r.Names())

	_, ok := r.Lookup("a")
	assert.True(t, ok)
	_, ok = r.Lookup("z")
	assert.False(t, ok)

	assert.Panics(t, func() { r.MustRegister("a", trend.WMAFromParams) })
}

func TestMetrics_RegisterTwiceFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewMetrics(reg)
	require.NoError(t, err)
	_, err = NewMetrics(reg)
	assert.Error(t, err)

	m, err := NewMetrics(nil)
	require.NoError(t, err)
	assert.NotNil(t, m)
}

func TestEvaluate_FailedNodeAbortsEvaluation(t *testing.T) {
	r := NewRegistry()
	r.MustRegister("bad", func(core.Params) (core.Indicator, error) {
		return core.NewDefinition("bad", "bad", core.Output{Node: failingNode{}}), nil
	})
	r.MustRegister("sma", trend.SMAFromParams)
	for _, workers := range []int{1, 4} {
		e, err := New(r, WithWorkers(workers))
		require.NoError(t, err)
		out, err := e.Evaluate(ohlcvFrame(t, 20, 13), []Request{{Name: "sma"}, {Name: "bad"}})
		assert.Nil(t, out)
		assert.True(t, errors.Is(err, errBoom), "workers=%d: %v", workers, err)
	}
}

var errBoom = errors.New("boom")

type failingNode struct{}

func (failingNode) Key() string { return "fail()<field(close)>" }

func (failingNode) Inputs() []core.Node { return []core.Node{core.Close} }

func (failingNode) Compute([]core.Series) (core.Series, error) { return core.Series{}, errBoom }
