// Package report renders weight samples as charts: a static histogram via
// gonum/plot and an interactive bar chart via go-echarts.
package report

import (
	"errors"
	"fmt"

	"github.com/banshee-data/quantityfield/internal/units"
)

// ErrNoSamples is returned when there is nothing to chart.
var ErrNoSamples = errors.New("report: no samples")

// Sample is one labelled weight.
type Sample struct {
	Label  string
	Weight units.Quantity
}

// magnitudes converts every sample into display and returns the bare
// magnitudes in sample order.
func magnitudes(samples []Sample, display units.Unit) ([]float64, error) {
	if len(samples) == 0 {
		return nil, ErrNoSamples
	}
	out := make([]float64, len(samples))
	for i, s := range samples {
		q, err := s.Weight.To(display)
		if err != nil {
			return nil, fmt.Errorf("sample %q: %w", s.Label, err)
		}
		out[i] = q.Float64()
	}
	return out, nil
}
