package main

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pivolan/survey_analyzer/domain/models"
	"github.com/pivolan/survey_analyzer/survey"
)

// GenerateQuestionsTable lists questions with their type. limit <= 0 lists all.
func GenerateQuestionsTable(questions []models.Question, limit int) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"#", "Column", "Type", "Question"})
	shown := questions
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}
	for _, q := range shown {
		t.AppendRow(table.Row{q.ID + 1, q.Column, q.Type.String(), q.Text})
	}
	if len(shown) < len(questions) {
		t.AppendFooter(table.Row{"", "", "", fmt.Sprintf("... %d more", len(questions)-len(shown))})
	}
	t.SetStyle(table.StyleDefault)
	return t.Render()
}

// GenerateDistributionTable renders the answers of d whose percentage is at
// least threshold.
func GenerateDistributionTable(d *survey.Distribution, threshold float64) string {
	b := &strings.Builder{}
	fmt.Fprintf(b, "%s: %s (%s)\n", d.Question.Column, d.Question.Text, d.Question.Type)
	if !d.HasData() {
		b.WriteString("No answers.\n")
		return b.String()
	}
	fmt.Fprintf(b, "Respondents answering: %d\n", d.Total)

	t := table.NewWriter()
	t.AppendHeader(table.Row{"Answer", "Count", "Percent"})
	for _, v := range d.AboveThreshold(threshold) {
		t.AppendRow(table.Row{v.Value, v.Count, formatPercent(v.Percent)})
	}
	t.SetStyle(table.StyleDefault)
	b.WriteString(t.Render())
	b.WriteString("\n")
	return b.String()
}

// GenerateSubsetSummary describes a subset relative to the table it came from.
func GenerateSubsetSummary(s *survey.Subset, respondents int) string {
	return fmt.Sprintf("Subset %s: %d of %d respondents (%s)\n",
		s.Description(), s.Size(), respondents, formatPercent(s.PercentageOf(respondents)))
}

func GenerateOptionMatchesTable(matches []survey.OptionMatch) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Column", "Answer", "Question"})
	for _, m := range matches {
		t.AppendRow(table.Row{m.Question.Column, m.Answer, m.Question.Text})
	}
	t.SetStyle(table.StyleDefault)
	return t.Render()
}

func GenerateOptionsList(column string, options []string) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"#", column})
	for i, o := range options {
		t.AppendRow(table.Row{i + 1, o})
	}
	t.SetStyle(table.StyleDefault)
	return t.Render()
}

// GenerateNumericTable renders a numeric summary; stats is nil when no cell
// held a number.
func GenerateNumericTable(column string, stats *models.NumberStats) string {
	if stats == nil {
		return fmt.Sprintf("%s: no numeric answers\n", column)
	}
	t := table.NewWriter()
	t.SetTitle(column)
	t.AppendHeader(table.Row{"Metric", "Value"})
	t.AppendRows([]table.Row{
		{"Count", stats.Count},
		{"Skipped", stats.Skipped},
		{"Average", stats.Average},
		{"Median", stats.Median},
		{"Min", stats.Min},
		{"Max", stats.Max},
		{"Q1 (25%)", stats.Quantiles[0.25]},
		{"Q3 (75%)", stats.Quantiles[0.75]},
		{"P1 / P99", fmt.Sprintf("%.2f / %.2f", stats.Quantiles[0.01], stats.Quantiles[0.99])},
		{"IQR", stats.IQR},
		{"Outliers", len(stats.Outliers)},
	})
	t.SetStyle(table.StyleDefault)
	return t.Render()
}

func formatPercent(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}
