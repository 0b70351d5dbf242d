package volume

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/evdnx/tacore/indicator/core"
)

type candle struct {
	h, l, c, v float64
}

func candleFrame(t testing.TB, candles []candle) *core.Frame {
	t.Helper()
	cols := map[string][]float64{
		"high":   make([]float64, len(candles)),
		"low":    make([]float64, len(candles)),
		"close":  make([]float64, len(candles)),
		"volume": make([]float64, len(candles)),
	}
	for i, c := range candles {
		cols["high"][i], cols["low"][i], cols["close"][i], cols["volume"][i] = c.h, c.l, c.c, c.v
	}
	f, err := core.NewSequenceFrame(cols)
	require.NoError(t, err)
	return f
}

func primary(t testing.TB, ind core.Indicator, f *core.Frame) core.Series {
	t.Helper()
	out, err := core.Evaluate(f, ind.Outputs()[0].Node)
	require.NoError(t, err)
	return out[0]
}
