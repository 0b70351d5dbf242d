package volatility

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/evdnx/tacore/indicator/core"
)

// generateOHLC builds a deterministic series: high = base+1, low = base-1,
// close = base.
func generateOHLC(start, step float64, n int) (highs, lows, closes []float64) {
	highs = make([]float64, n)
	lows = make([]float64, n)
	closes = make([]float64, n)
	for i := 0; i < n; i++ {
		base := start + float64(i)*step
		highs[i] = base + 1.0
		lows[i] = base - 1.0
		closes[i] = base
	}
	return
}

func ohlcFrame(t testing.TB, highs, lows, closes []float64) *core.Frame {
	t.Helper()
	f, err := core.NewSequenceFrame(map[string][]float64{"high": highs, "low": lows, "close": closes})
	require.NoError(t, err)
	return f
}

func evalOutputs(t testing.TB, ind core.Indicator, f *core.Frame) map[string]core.Series {
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
