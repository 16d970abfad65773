package plot

import (
	"fmt"
	"math"

	"github.com/pivolan/survey_analyzer/survey"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const maxLabelRunes = 40

// distributionForGraph is the top of a distribution as bars of percentages.
type distributionForGraph struct {
	labels    []string
	yValues   []float64
	nameYAxis string
	nameGraph string
}

// newDistributionForGraph keeps the limit most frequent answers; limit <= 0
// keeps all of them.
func newDistributionForGraph(d *survey.Distribution, limit int) distributionForGraph {
	values := d.Values()
	if limit > 0 && len(values) > limit {
		values = values[:limit]
	}
	g := distributionForGraph{
		labels:    make([]string, len(values)),
		yValues:   make([]float64, len(values)),
		nameYAxis: "% of respondents",
		nameGraph: d.Question.Column,
	}
	for i, v := range values {
		g.labels[i] = Label(v.Value)
		g.yValues[i] = v.Percent
	}
	return g
}

// Label shortens an answer for display on an axis.
func Label(s string) string {
	r := []rune(s)
	if len(r) <= maxLabelRunes {
		return s
	}
	return string(r[:maxLabelRunes-1]) + "…"
}

func (d distributionForGraph) GetNameGraph() string {
	return d.nameGraph
}
func (d distributionForGraph) getNameYAxis() string {
	return d.nameYAxis
}
func (d distributionForGraph) getYValues() []float64 {
	return d.yValues
}

func (d distributionForGraph) lenXValues() int {
	return len(d.labels)
}

func (d distributionForGraph) calculateChartDimensions(minBarWidth float64) (width, height int) {
	if len(d.yValues) == 0 || d.lenXValues() <= 0 || minBarWidth <= 0 {
		return 0, 0
	}
	x := 1.1
	if d.lenXValues() < 2 {
		x = 10.0
	} else if d.lenXValues() < 10 {
		x = 3.0
	}

	const (
		paddingY     = 100
		spacingRatio = 0.2
		aspectRatio  = 9.0 / 16.0
	)

	barSpacing := minBarWidth * spacingRatio
	totalWidth := (minBarWidth+barSpacing)*float64(d.lenXValues()) + paddingY
	width = int(totalWidth*x) + paddingY
	height = int(float64(width) * aspectRatio)
	return width, height
}

func (d distributionForGraph) generateBarValues() []chart.Value {
	bars := make([]chart.Value, 0, len(d.labels))
	for i, label := range d.labels {
		bars = append(bars, chart.Value{
			Value: d.yValues[i],
			Label: label,
			Style: chart.Style{
				FillColor: drawing.ColorPurple.WithAlpha(100),
			},
		})
	}
	return bars
}

func (d distributionForGraph) generateGrid() []chart.Tick {
	var ticks []chart.Tick
	max := findMaxValue(d.yValues)
	gridStep := calculateGridStep(max)
	if gridStep <= 0 {
		return nil
	}
	top := math.Ceil(max/gridStep) * gridStep
	for i := 0.0; i <= top+gridStep/2; i += gridStep {
		ticks = append(ticks, chart.Tick{
			Value: i,
			Label: fmt.Sprintf("%.1f", i),
		})
	}
	return ticks
}
