package plot

import (
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/pivolan/survey_analyzer/survey"
)

// RenderDistributionsHTML writes one interactive bar chart per distribution to
// w as a single HTML page. Distributions without answers are left out.
func RenderDistributionsHTML(w io.Writer, title string, ds []*survey.Distribution, limit int) error {
	page := components.NewPage()
	page.PageTitle = title
	for _, d := range ds {
		if d == nil || !d.HasData() {
			continue
		}
		page.AddCharts(distributionChart(d, limit))
	}
	return page.Render(w)
}

func distributionChart(d *survey.Distribution, limit int) *charts.Bar {
	g := newDistributionForGraph(d, limit)

	items := make([]opts.BarData, len(g.yValues))
	for i, v := range g.yValues {
		items[i] = opts.BarData{Value: roundPercent(v)}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    d.Question.Column,
			Subtitle: d.Question.Text,
		}),
	)
	bar.SetXAxis(g.labels).AddSeries(g.nameYAxis, items)
	return bar
}

func roundPercent(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
