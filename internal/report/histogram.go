package report

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/quantityfield/internal/units"
)

// DefaultBins is used when Histogram is asked for fewer than one bin.
const DefaultBins = 10

// Histogram writes a histogram of the sample weights, in the display unit,
// to path. The image format follows the file extension (png, svg, pdf...).
func Histogram(samples []Sample, display units.Unit, bins int, title, path string) error {
	values, err := magnitudes(samples, display)
	if err != nil {
		return err
	}
	if bins < 1 {
		bins = DefaultBins
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = fmt.Sprintf("Weight (%s)", display.Name())
	p.Y.Label.Text = "Bales"

	h, err := plotter.NewHist(plotter.Values(values), bins)
	if err != nil {
		return fmt.Errorf("failed to bin weights: %w", err)
	}
	h.FillColor = color.RGBA{R: 196, G: 160, B: 60, A: 255}
	h.LineStyle.Width = vg.Points(0.5)
	p.Add(h)

	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save histogram %s: %w", path, err)
	}
	return nil
}
