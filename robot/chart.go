package robot

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// RenderHullChart writes an HTML heat map of the hull, one cell per panel, with the
// top row of the hull drawn at the top.
func (r *Robot) RenderHullChart(w io.Writer) error {
	lo, hi := r.Bounds()
	xs := make([]string, 0, hi.X-lo.X+1)
	for x := lo.X; x <= hi.X; x++ {
		xs = append(xs, fmt.Sprint(x))
	}
	ys := make([]string, 0, hi.Y-lo.Y+1)
	for y := hi.Y; y >= lo.Y; y-- {
		ys = append(ys, fmt.Sprint(y))
	}

	data := make([]opts.HeatMapData, 0, len(r.hull))
	for p, c := range r.hull {
		data = append(data, opts.HeatMapData{Value: [3]interface{}{p.X - lo.X, hi.Y - p.Y, int(c)}})
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Hull",
			Subtitle: fmt.Sprintf("%d panels painted, %d moves", len(r.painted), r.moves),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Data: xs}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: ys}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Min:     0,
			Max:     1,
			InRange: &opts.VisualMapInRange{Color: []string{"#101010", "#f5f5f5"}},
		}),
	)
	hm.SetXAxis(xs).AddSeries("panels", data)

	page := components.NewPage()
	page.AddCharts(hm)
	return page.Render(w)
}
