package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/quantityfield/internal/quantityfield"
)

func TestSummariseHayBaleWeights(t *testing.T) {
	_, store := setupTestDB(t)
	ctx := context.Background()

	empty, err := store.SummariseHayBaleWeights(ctx, Query{})
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Count)
	assert.Equal(t, "no bales", empty.String())

	seedHayBales(t, store)

	s, err := store.SummariseHayBaleWeights(ctx, Query{})
	require.NoError(t, err)
	assert.Equal(t, 4, s.Count)
	assert.InDelta(t, (100+283.49523125+1+1000)/4, s.Mean.Float64(), 1e-9)
	assert.Equal(t, 1.0, s.Min.Float64())
	assert.Equal(t, 1000.0, s.Max.Float64())
	assert.InDelta(t, (100+283.49523125)/2, s.Median.Float64(), 1e-9)
	assert.Greater(t, s.StdDev.Float64(), 0.0)
	for _, q := range []string{s.Mean.Units().Name(), s.Min.Units().Name(), s.StdDev.Units().Name()} {
		assert.Equal(t, "gram", q)
	}
	assert.Contains(t, s.String(), "count=4")

	heavy, err := store.SummariseHayBaleWeights(ctx, Query{Filters: []Filter{{Column: "weight", Lookup: quantityfield.GTE, Value: "1 kilogram"}}})
	require.NoError(t, err)
	assert.Equal(t, 1, heavy.Count)
	assert.Equal(t, 0.0, heavy.StdDev.Float64())
	assert.Equal(t, "1000.0 gram", heavy.Mean.String())
}

func TestMedian(t *testing.T) {
	tests := []struct {
		in   []float64
		want float64
	}{
		{[]float64{7}, 7},
		{[]float64{1, 2, 3}, 2},
		{[]float64{1, 2, 3, 4}, 2.5},
		{[]float64{1, 1000}, 500.5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, median(tt.in), "%v", tt.in)
	}
}

func TestSummariseHayBaleWeights_EvenCountMedian(t *testing.T) {
	_, store := setupTestDB(t)
	ctx := context.Background()
	for i, w := range []int{4, 1, 3, 2} {
		b := newHayBale(t, fmt.Sprintf("bale-%d", i), map[string]any{"weight": w})
		require.NoError(t, store.CreateHayBale(ctx, &b))
	}

	s, err := store.SummariseHayBaleWeights(ctx, Query{})
	require.NoError(t, err)
	assert.Equal(t, 2.5, s.Median.Float64())
	assert.Equal(t, 1.0, s.Min.Float64())
	assert.Equal(t, 4.0, s.Max.Float64())
}
