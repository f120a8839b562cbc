package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/quantityfield/internal/units"
)

// BarChart renders an HTML page with one bar per sample, heights in the
// display unit.
func BarChart(w io.Writer, samples []Sample, display units.Unit, title string) error {
	values, err := magnitudes(samples, display)
	if err != nil {
		return err
	}

	x := make([]string, len(samples))
	y := make([]opts.BarData, len(samples))
	for i, s := range samples {
		x[i] = s.Label
		y[i] = opts.BarData{Value: values[i]}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "100%", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("bales=%d unit=%s", len(samples), display.Name())}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: display.Name(), NameLocation: "middle", NameGap: 40}),
	)
	bar.SetXAxis(x).
		AddSeries("weight", y,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)

	page := components.NewPage()
	page.AddCharts(bar)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render error: %w", err)
	}
	return nil
}
