package momentum

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/evdnx/tacore/indicator/core"
)

func approxEqual(a, b float64) bool {
	const eps = 1e-6
	return math.Abs(a-b) <= eps
}

type bar struct {
	h, l, c float64
}

func barFrame(t testing.TB, bars []bar) *core.Frame {
	t.Helper()
	cols := map[string][]float64{
		"high":  make([]float64, len(bars)),
		"low":   make([]float64, len(bars)),
		"close": make([]float64, len(bars)),
	}
	for i, b := range bars {
		cols["high"][i], cols["low"][i], cols["close"][i] = b.h, b.l, b.c
	}
	f, err := core.NewSequenceFrame(cols)
	require.NoError(t, err)
	return f
}

func closeFrame(t testing.TB, closes []float64) *core.Frame {
	t.Helper()
	f, err := core.NewSequenceFrame(map[string][]float64{"close": closes})
	require.NoError(t, err)
	return f
}

func randomCloses(n int, seed int64) []float64 {
	r := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	price := 100.0
	for i := range out {
		price += r.NormFloat64()
		out[i] = price
	}
	return out
}

// outputs evaluates every output of ind over f, keyed by output name.
func outputs(t testing.TB, ind core.Indicator, f *core.Frame) map[string]core.Series {
	t.Helper()
	outs := ind.Outputs()
	nodes := make([]core.Node, len(outs))
	for i, o := range outs {
		nodes[i] = o.Node
	}
	series, err := core.Evaluate(f, nodes...)
	require.NoError(t, err)
	res := make(map[string]core.Series, len(outs))
	for i, o := range outs {
		res[o.Name] = series[i]
	}
	return res
}
