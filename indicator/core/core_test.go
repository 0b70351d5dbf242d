package core

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSeries_Validation(t *testing.T) {
	if _, err := NewSeries([]int64{1, 2}, []float64{1}); err == nil {
		t.Fatal("expected error for length mismatch")
	}
	if _, err := NewSeries([]int64{1, 1}, []float64{1, 2}); err == nil {
		t.Fatal("expected error for duplicate index")
	}
	if _, err := NewSeries([]int64{2, 1}, []float64{1, 2}); err == nil {
		t.Fatal("expected error for decreasing index")
	}
	s, err := NewSeries(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())
	assert.True(t, IsMissing(s.Last()))
}

func TestSeries_Immutable(t *testing.T) {
	values := []float64{1, 2, 3}
	s, err := NewSeries([]int64{10, 20, 30}, values)
	require.NoError(t, err)

	values[0] = 99
	assert.Equal(t, 1.0, s.At(0))

	got := s.Values()
	got[1] = 42
	assert.Equal(t, 2.0, s.At(1))

	d := s.Derive([]float64{4, 5, 6})
	assert.True(t, d.SameIndex(s))
	assert.Equal(t, int64(30), d.IndexAt(2))
	assert.Equal(t, 1.0, s.At(0))
}

func TestSeries_Derive_LengthMismatchPanics(t *testing.T) {
	s := FromValues([]float64{1, 2})
	assert.Panics(t, func() { s.Derive([]float64{1}) })
}

func TestSeries_ValidCount(t *testing.T) {
	s := FromValues([]float64{1, math.NaN(), 3})
	assert.Equal(t, 2, s.ValidCount())
	assert.False(t, s.Valid(1))
}

func TestFrame_ColumnsAndOrder(t *testing.T) {
	f, err := NewFrame([]int64{1, 2, 3}, map[string][]float64{
		"close": {1, 2, 3},
		"high":  {2, 3, 4},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"close", "high"}, f.Names())
	assert.True(t, f.Has("high"))
	assert.False(t, f.Has("low"))

	c, ok := f.Column("close")
	require.True(t, ok)
	assert.Equal(t, []int64{1, 2, 3}, c.Index())
	assert.Equal(t, []float64{1, 2, 3}, c.Values())
}

func TestFrame_Validation(t *testing.T) {
	_, err := NewFrame([]int64{1, 2}, map[string][]float64{"close": {1}})
	assert.Error(t, err)

	_, err = NewSequenceFrame(map[string][]float64{"a": {1, 2}, "b": {1}})
	assert.Error(t, err)

	f, err := NewSequenceFrame(map[string][]float64{"close": {}})
	require.NoError(t, err)
	assert.Equal(t, 0, f.Len())
	c, ok := f.Column("close")
	require.True(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestAssembleFrame_RejectsDuplicates(t *testing.T) {
	s := FromValues([]float64{1, 2})
	_, err := AssembleFrame(s.Index(), []string{"a", "a"}, []Series{s, s})
	assert.Error(t, err)

	f, err := AssembleFrame(s.Index(), []string{"b", "a"}, []Series{s, s})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, f.Names())
}

func TestParams_Getters(t *testing.T) {
	p := Params{"span": 14, "k": 2.5, "whole": 3.0, "frac": 3.5, "source": "high"}

	n, err := p.Int("span", 0)
	require.NoError(t, err)
	assert.Equal(t, 14, n)

	n, err = p.Int("whole", 0)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = p.Int("frac", 0)
	assert.ErrorIs(t, err, ErrInvalidParameter)

	k, err := p.Float("k", 0)
	require.NoError(t, err)
	assert.Equal(t, 2.5, k)

	s, err := p.String("source", "close")
	require.NoError(t, err)
	assert.Equal(t, "high", s)

	_, err = p.String("span", "")
	assert.Error(t, err)

	def, err := p.Int("missing", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, def)
}

func TestParams_CheckAndCanonical(t *testing.T) {
	p := Params{"slow": 26, "fast": 12, "k": 0.5}
	assert.Equal(t, "fast=12,k=0.5,slow=26", p.Canonical())

	err := p.Check("fast", "slow")
	var pe *ParamError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "k", pe.Param)
	assert.NoError(t, p.Check("fast", "slow", "k"))
}

func TestLinear_SubExact(t *testing.T) {
	a0, a3 := 0.1, 1e-9
	b0, b3 := 0.3, 3.3
	a := FromValues([]float64{a0, 0.7, math.NaN(), a3})
	b := a.Derive([]float64{b0, math.NaN(), 2, b3})
	sub := Sub(Field("a"), Field("b"))

	out, err := sub.Compute([]Series{a, b})
	require.NoError(t, err)
	// Runtime float64 subtraction; the untyped constant 0.1-0.3 rounds differently.
	assert.Equal(t, a0-b0, out.At(0))
	assert.True(t, IsMissing(out.At(1)))
	assert.True(t, IsMissing(out.At(2)))
	assert.Equal(t, a3-b3, out.At(3))
	assert.Equal(t, "linear(c=1;-1)<field(a),field(b)>", sub.Key())
}

func TestErrors_Unwrap(t *testing.T) {
	err := &ConfigError{Indicator: "sma", Param: "span", Err: InvalidParam("span", "must be at least 1")}
	assert.ErrorIs(t, err, ErrInvalidParameter)
	assert.Contains(t, err.Error(), `"sma"`)

	mi := &MissingInputError{Indicator: "atr_14", Field: "high"}
	assert.ErrorIs(t, mi, ErrMissingInput)
	assert.Contains(t, mi.Error(), "high")

	ne := &NumericError{Indicator: "sma_3", Field: "close", Index: 4, Value: math.Inf(1)}
	assert.ErrorIs(t, ne, ErrNonFinite)
	assert.Contains(t, ne.Error(), "position 4")
}

func TestLabelAndColumnName(t *testing.T) {
	assert.Equal(t, "macd_12_26_9", Label("macd", 12, 26, 9))
	assert.Equal(t, "bbands_20_2", Label("bbands", 20, 2.0))
	assert.Equal(t, "bb.upper", ColumnName("bb", "upper"))
	assert.Equal(t, "sma_3", ColumnName("sma_3", ""))
}
