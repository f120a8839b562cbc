package db

import (
	"context"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/quantityfield/internal/units"
)

// WeightSummary describes the weight column of a set of hay bales. The
// quantities are in the column's base unit; they are zero when Count is 0.
type WeightSummary struct {
	Count  int
	Mean   units.Quantity
	StdDev units.Quantity
	Min    units.Quantity
	Max    units.Quantity
	Median units.Quantity
}

func (s WeightSummary) String() string {
	if s.Count == 0 {
		return "no bales"
	}
	return fmt.Sprintf("count=%d mean=%s stddev=%s min=%s median=%s max=%s",
		s.Count, s.Mean, s.StdDev, s.Min, s.Median, s.Max)
}

// SummariseHayBaleWeights computes count, mean, sample standard deviation,
// min, median and max of the weight of the bales matching q.
func (s *Store) SummariseHayBaleWeights(ctx context.Context, q Query) (WeightSummary, error) {
	bales, err := s.ListHayBales(ctx, Query{Filters: q.Filters})
	if err != nil {
		return WeightSummary{}, err
	}

	base := HayBaleWeight.Units()
	weights := make([]float64, 0, len(bales))
	for _, b := range bales {
		w, ok := b.Weight.Quantity()
		if !ok {
			continue
		}
		weights = append(weights, w.Float64())
	}

	summary := WeightSummary{Count: len(weights)}
	if len(weights) == 0 {
		return summary, nil
	}

	mean, std := stat.MeanStdDev(weights, nil)
	if len(weights) < 2 || math.IsNaN(std) {
		std = 0
	}
	sorted := append([]float64(nil), weights...)
	sort.Float64s(sorted)

	summary.Mean = units.New(mean, base)
	summary.StdDev = units.New(std, base)
	summary.Min = units.New(floats.Min(weights), base)
	summary.Max = units.New(floats.Max(weights), base)
	summary.Median = units.New(median(sorted), base)
	return summary, nil
}

// median of sorted values; an even count averages the two middle values.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return stat.Mean(sorted[n/2-1:n/2+1], nil)
}
