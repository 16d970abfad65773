package main

import (
	"strings"
	"testing"

	"github.com/pivolan/survey_analyzer/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateQuestionsTable(t *testing.T) {
	questions := newTestTable(t).Questions()

	all := GenerateQuestionsTable(questions, 0)
	for _, q := range questions {
		assert.Contains(t, all, q.Column)
		assert.Contains(t, all, q.Text)
	}
	assert.NotContains(t, all, "MORE")

	limited := GenerateQuestionsTable(questions, 2)
	assert.Contains(t, limited, "Languages")
	assert.NotContains(t, limited, "Country")
	assert.Contains(t, limited, "3 MORE")
}

func TestGenerateDistributionTable(t *testing.T) {
	table := newTestTable(t)

	d, err := table.Distribution("Country")
	require.NoError(t, err)

	out := GenerateDistributionTable(d, 0)
	assert.True(t, strings.HasPrefix(out, "Country: Where do you live? (Single choice)\n"))
	assert.Contains(t, out, "Respondents answering: 3")
	assert.Contains(t, out, "66.7%")
	assert.Contains(t, out, "Germany")
	assert.Less(t, strings.Index(out, "United States"), strings.Index(out, "Germany"))

	filtered := GenerateDistributionTable(d, 50)
	assert.Contains(t, filtered, "United States")
	assert.NotContains(t, filtered, "Germany")
}

func TestGenerateDistributionTableNoAnswers(t *testing.T) {
	table := newTestTable(t)
	s, err := table.CreateSubset("Country", "Germany")
	require.NoError(t, err)

	d, err := table.DistributionWithin("Comment", s)
	require.NoError(t, err)
	assert.Contains(t, GenerateDistributionTable(d, 0), "No answers.")
}

func TestGenerateSubsetSummary(t *testing.T) {
	table := newTestTable(t)
	s, err := table.CreateSubset("Age", "18-24")
	require.NoError(t, err)

	assert.Equal(t, "Subset Age = \"18-24\": 2 of 4 respondents (50.0%)\n",
		GenerateSubsetSummary(s, table.RespondentCount()))
	assert.Equal(t, "Subset all respondents: 4 of 4 respondents (100.0%)\n",
		GenerateSubsetSummary(table.All(), table.RespondentCount()))
}

func TestGenerateOptionTables(t *testing.T) {
	table := newTestTable(t)

	matches := GenerateOptionMatchesTable(table.SearchOptions("o"))
	assert.Contains(t, matches, "Go")
	assert.Contains(t, matches, "Python")

	options, err := table.QuestionOptions("Languages")
	require.NoError(t, err)
	list := GenerateOptionsList("Languages", options)
	assert.Less(t, strings.Index(list, "Python"), strings.Index(list, "Rust"))
	assert.Less(t, strings.Index(list, "Rust"), strings.Index(list, "Go"))
}

func TestGenerateNumericTable(t *testing.T) {
	assert.Equal(t, "Years: no numeric answers\n", GenerateNumericTable("Years", nil))

	out := GenerateNumericTable("Years", &models.NumberStats{
		Count:     3,
		Average:   6,
		Median:    5,
		Min:       3,
		Max:       10,
		Quantiles: map[float64]float64{0.01: 3.04, 0.25: 4, 0.75: 7.5, 0.99: 9.9},
		IQR:       3.5,
	})
	assert.Contains(t, out, "Years")
	assert.Contains(t, out, "3.04 / 9.90")
	assert.Contains(t, out, "7.5")
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "33.3%", formatPercent(100.0/3))
	assert.Equal(t, "0.0%", formatPercent(0))
}
