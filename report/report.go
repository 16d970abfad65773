// Package report renders survey tables as a Markdown document.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mozillazg/go-unidecode"
	"github.com/pivolan/survey_analyzer/domain/models"
	"github.com/pivolan/survey_analyzer/plot"
	"github.com/pivolan/survey_analyzer/survey"
)

const DefaultTitle = "Survey Analysis Report"

// Group selects respondents for a subset comparison.
type Group struct {
	Column string
	Answer string
}

func (g Group) String() string {
	return fmt.Sprintf("%s = %q", g.Column, g.Answer)
}

type Options struct {
	Title string
	// Columns get a distribution section each; empty means every choice question.
	Columns []string
	// Groups are compared on CompareColumns.
	Groups         []Group
	CompareColumns []string
	// Limit caps the rows of each distribution table; 0 keeps all.
	Limit int
	// ChartDir, when set, links <ChartDir>/<slug>.png under each distribution.
	ChartDir string
	Now      func() time.Time
}

// Generate builds the whole report for t.
func Generate(t *survey.Table, opts Options) (string, error) {
	if opts.Title == "" {
		opts.Title = DefaultTitle
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	columns := opts.Columns
	if len(columns) == 0 {
		columns = ChoiceColumns(t)
	}

	dists := make([]*survey.Distribution, 0, len(columns))
	for _, column := range columns {
		d, err := t.Distribution(column)
		if err != nil {
			return "", err
		}
		dists = append(dists, d)
	}

	b := &strings.Builder{}
	fmt.Fprintf(b, "# %s\n\n", opts.Title)
	fmt.Fprintf(b, "_Generated %s_\n\n", opts.Now().Format("2006-01-02 15:04:05"))

	b.WriteString("## Summary\n\n")
	if t.Source() != "" {
		fmt.Fprintf(b, "- Source: `%s`\n", t.Source())
	}
	fmt.Fprintf(b, "- Questions: %d\n", len(t.Questions()))
	fmt.Fprintf(b, "- Respondents: %d\n\n", t.RespondentCount())

	if len(dists) > 0 {
		b.WriteString("## Contents\n\n")
		for _, d := range dists {
			fmt.Fprintf(b, "- [%s](#%s)\n", d.Question.Column, Slug(d.Question.Column))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Questions\n\n")
	b.WriteString(questionsTable(t.Questions()))
	b.WriteString("\n\n")

	if len(dists) > 0 {
		b.WriteString("## Distributions\n\n")
		for _, d := range dists {
			writeDistribution(b, d, t.RespondentCount(), opts)
		}
	}

	if len(opts.Groups) > 0 {
		if err := writeComparisons(b, t, opts); err != nil {
			return "", err
		}
	}

	return b.String(), nil
}

// ChoiceColumns lists the single and multiple choice columns in schema order.
func ChoiceColumns(t *survey.Table) []string {
	var columns []string
	for _, q := range t.Questions() {
		if q.Type.IsCategorical() {
			columns = append(columns, q.Column)
		}
	}
	return columns
}

func writeDistribution(b *strings.Builder, d *survey.Distribution, respondents int, opts Options) {
	slug := Slug(d.Question.Column)
	fmt.Fprintf(b, "<a id=\"%s\"></a>\n\n", slug)
	fmt.Fprintf(b, "### %s\n\n", d.Question.Column)
	fmt.Fprintf(b, "> %s (%s)\n\n", d.Question.Text, d.Question.Type)

	if !d.HasData() {
		b.WriteString("No answers.\n\n")
		return
	}
	fmt.Fprintf(b, "Answered by %d of %d respondents.\n\n", d.Total, respondents)
	b.WriteString(DistributionTable(d, opts.Limit))
	b.WriteString("\n\n")
	if top, ok := d.MostPopular(); ok {
		fmt.Fprintf(b, "Most popular: **%s** (%.1f%%)\n\n", top.Value, top.Percent)
	}
	if opts.ChartDir != "" {
		fmt.Fprintf(b, "![%s](%s)\n\n", d.Question.Column, filepath.ToSlash(filepath.Join(opts.ChartDir, slug+".png")))
	}
}

func writeComparisons(b *strings.Builder, t *survey.Table, opts Options) error {
	b.WriteString("## Subset comparisons\n\n")
	for _, g := range opts.Groups {
		s, err := t.CreateSubset(g.Column, g.Answer)
		if err != nil {
			return err
		}
		fmt.Fprintf(b, "### %s\n\n", s.Description())
		fmt.Fprintf(b, "%d respondents (%.1f%% of all).\n\n", s.Size(), s.Percentage())
		for _, column := range opts.CompareColumns {
			d, err := t.DistributionWithin(column, s)
			if err != nil {
				return err
			}
			fmt.Fprintf(b, "#### %s within subset\n\n", column)
			if !d.HasData() {
				b.WriteString("No answers.\n\n")
				continue
			}
			b.WriteString(DistributionTable(d, opts.Limit))
			b.WriteString("\n\n")
		}
	}
	return nil
}

func questionsTable(questions []models.Question) string {
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"#", "Column", "Type", "Question"})
	for _, q := range questions {
		tw.AppendRow(table.Row{q.ID + 1, q.Column, q.Type.Code(), escape(q.Text)})
	}
	return tw.RenderMarkdown()
}

// DistributionTable renders the frequency table of d as Markdown.
func DistributionTable(d *survey.Distribution, limit int) string {
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"Answer", "Count", "Percent"})
	values := d.Values()
	if limit > 0 && len(values) > limit {
		values = values[:limit]
	}
	for _, v := range values {
		tw.AppendRow(table.Row{escape(v.Value), v.Count, fmt.Sprintf("%.1f%%", v.Percent)})
	}
	return tw.RenderMarkdown()
}

func escape(s string) string {
	return strings.NewReplacer("\n", " ", "\r", "").Replace(s)
}

// Slug turns a column name into an ASCII anchor and file name.
func Slug(s string) string {
	ascii := strings.ToLower(unidecode.Unidecode(s))
	var b strings.Builder
	dash := false
	for _, r := range ascii {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return "question"
	}
	return slug
}

// WriteFile replaces the report at path.
func WriteFile(path, content string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, []byte(content), 0644)
}

// WriteCharts writes a PNG per distribution and an index.html with all of
// them into dir. It returns the paths it wrote.
func WriteCharts(dir string, ds []*survey.Distribution, limit int) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	var written []string
	for _, d := range ds {
		if !d.HasData() {
			continue
		}
		png, err := plot.DrawDistributionBar(d, limit)
		if err != nil {
			return written, fmt.Errorf("chart %q: %w", d.Question.Column, err)
		}
		path := filepath.Join(dir, Slug(d.Question.Column)+".png")
		if err := os.WriteFile(path, png, 0644); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	path := filepath.Join(dir, "index.html")
	f, err := os.Create(path)
	if err != nil {
		return written, err
	}
	if err := plot.RenderDistributionsHTML(f, DefaultTitle, ds, limit); err != nil {
		f.Close()
		return written, err
	}
	if err := f.Close(); err != nil {
		return written, err
	}
	return append(written, path), nil
}
