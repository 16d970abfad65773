package survey

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/pivolan/survey_analyzer/domain/models"
)

// QuantileLevels are the quantiles reported by NumericSummary.
var QuantileLevels = []float64{0.01, 0.025, 0.1, 0.25, 0.75, 0.9, 0.975, 0.99}

// NumericSummary describes the answers of a numeric question. Cells that do
// not parse as numbers are counted in Skipped. The result is nil when no cell
// holds a number.
func (t *Table) NumericSummary(column string) (*models.NumberStats, error) {
	q, err := t.schema.Question(column)
	if err != nil {
		return nil, err
	}
	if q.Type != models.Numeric {
		return nil, invalidType(column)
	}

	var numbers []float64
	skipped := 0
	t.answers(q, func(_ int, answers []string) {
		for _, a := range answers {
			n, ok := parseNumber(a)
			if !ok {
				skipped++
				continue
			}
			numbers = append(numbers, n)
		}
	})

	stats := AnalyzeNumbers(numbers)
	if stats != nil {
		stats.Skipped = skipped
	}
	return stats, nil
}

// parseNumber accepts '.' or ',' as the decimal separator.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return n, true
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		if n, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

// calculateQuantile interpolates linearly between the closest ranks.
func calculateQuantile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}

	pos := p * float64(len(sorted)-1)
	floor := math.Floor(pos)
	ceil := math.Ceil(pos)

	if floor == ceil {
		return sorted[int(pos)]
	}

	lower := sorted[int(floor)]
	upper := sorted[int(ceil)]
	fraction := pos - floor

	return lower + fraction*(upper-lower)
}

// findOutliers returns values outside the 1.5 IQR fences.
func findOutliers(numbers []float64, q1 float64, q3 float64, iqr float64) []float64 {
	outliers := make([]float64, 0)
	lowerBound := q1 - 1.5*iqr
	upperBound := q3 + 1.5*iqr

	for _, num := range numbers {
		if num < lowerBound || num > upperBound {
			outliers = append(outliers, num)
		}
	}
	return outliers
}

// AnalyzeNumbers computes descriptive statistics rounded to two decimals.
func AnalyzeNumbers(numbers []float64) *models.NumberStats {
	if len(numbers) == 0 {
		return nil
	}

	sorted := make([]float64, len(numbers))
	copy(sorted, numbers)
	sort.Float64s(sorted)

	sum := 0.0
	for _, num := range numbers {
		sum += num
	}
	avg := sum / float64(len(numbers))

	var median float64
	if len(sorted)%2 == 0 {
		median = (sorted[len(sorted)/2-1] + sorted[len(sorted)/2]) / 2
	} else {
		median = sorted[len(sorted)/2]
	}

	quantiles := make(map[float64]float64, len(QuantileLevels))
	for _, p := range QuantileLevels {
		quantiles[p] = roundToTwo(calculateQuantile(sorted, p))
	}

	iqr := quantiles[0.75] - quantiles[0.25]

	return &models.NumberStats{
		Average:   roundToTwo(avg),
		Median:    roundToTwo(median),
		Min:       roundToTwo(sorted[0]),
		Max:       roundToTwo(sorted[len(sorted)-1]),
		Count:     len(numbers),
		Quantiles: quantiles,
		IQR:       roundToTwo(iqr),
		Outliers:  findOutliers(sorted, quantiles[0.25], quantiles[0.75], iqr),
	}
}

func roundToTwo(num float64) float64 {
	return math.Round(num*100) / 100
}
