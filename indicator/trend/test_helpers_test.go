package trend

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

func randVals(n int) []float64 {
	r := rand.New(rand.NewSource(42))
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = r.Float64() * 100
	}
	return vals
}

func closeFrame(t testing.TB, closes []float64) *core.Frame {
	t.Helper()
	f, err := core.NewSequenceFrame(map[string][]float64{"close": closes, "open": closes})
	require.NoError(t, err)
	return f
}

// primary evaluates the first output of ind over f.
func primary(t testing.TB, ind core.Indicator, f *core.Frame) core.Series {
	t.Helper()
	out, err := core.Evaluate(f, ind.Outputs()[0].Node)
	require.NoError(t, err)
	return out[0]
}
