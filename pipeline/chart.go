package pipeline

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// RenderSearchChart writes an HTML bar chart of the signal of every ordering tried.
func RenderSearchChart(w io.Writer, res *SearchResult) error {
	labels := make([]string, len(res.All))
	items := make([]opts.BarData, len(res.All))
	for i, r := range res.All {
		labels[i] = fmt.Sprint(r.Phases)
		items[i] = opts.BarData{Value: r.Signal}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Amplifier phase search",
			Subtitle: fmt.Sprintf("best %d with phases %v", res.Best.Signal, res.Best.Phases),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(labels).AddSeries("signal", items)

	page := components.NewPage()
	page.AddCharts(bar)
	return page.Render(w)
}
