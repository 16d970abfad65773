package survey

import (
	"fmt"
	"sort"

	"github.com/pivolan/survey_analyzer/domain/models"
)

// Distribution holds answer counts for one question. Counts are per answer,
// Total is per respondent: a multiple choice row with two answers adds two
// counts but only one to Total.
//
// Table.Distribution hands the same memoized value to every caller; treat it
// as read-only.
type Distribution struct {
	Question models.Question
	Total    int

	counts map[string]int

	order []string // first appearance across the rows
}

type DistributionOption func(*distributionConfig)

type distributionConfig struct {
	categoricalOnly bool
}

// CategoricalOnly rejects free text questions with ErrInvalidQuestionType.
func CategoricalOnly() DistributionOption {
	return func(c *distributionConfig) {
		c.categoricalOnly = true
	}
}

func newDistribution(q models.Question) *Distribution {
	return &Distribution{
		Question: q,
		counts:   map[string]int{},
	}
}

func (d *Distribution) add(answers []string) {
	if len(answers) == 0 {
		return
	}
	d.Total++
	for _, a := range answers {
		if _, seen := d.counts[a]; !seen {
			d.order = append(d.order, a)
		}
		d.counts[a]++
	}
}

// HasData reports whether at least one respondent answered.
func (d *Distribution) HasData() bool {
	return d.Total > 0
}

func (d *Distribution) Count(answer string) int {
	return d.counts[answer]
}

// Counts returns a copy of the per answer counts.
func (d *Distribution) Counts() map[string]int {
	out := make(map[string]int, len(d.counts))
	for answer, n := range d.counts {
		out[answer] = n
	}
	return out
}

// Percentage is the share of answering respondents that gave answer, 0..100.
// It is 0 when nobody answered; check HasData to tell that apart.
func (d *Distribution) Percentage(answer string) float64 {
	if d.Total == 0 {
		return 0
	}
	return float64(d.counts[answer]) / float64(d.Total) * 100
}

// Answers returns the distinct answers in first-appearance order.
func (d *Distribution) Answers() []string {
	return append([]string(nil), d.order...)
}

func (d *Distribution) Len() int {
	return len(d.order)
}

// Values returns the frequency table, most frequent first. Ties keep
// first-appearance order.
func (d *Distribution) Values() []models.ValueCount {
	values := make([]models.ValueCount, 0, len(d.order))
	for _, a := range d.order {
		values = append(values, models.ValueCount{
			Value:   a,
			Count:   int64(d.counts[a]),
			Percent: d.Percentage(a),
		})
	}
	sort.SliceStable(values, func(i, j int) bool {
		return values[i].Count > values[j].Count
	})
	return values
}

// MostPopular returns the top row of Values. ok is false when nobody answered.
func (d *Distribution) MostPopular() (models.ValueCount, bool) {
	values := d.Values()
	if len(values) == 0 {
		return models.ValueCount{}, false
	}
	return values[0], true
}

// AboveThreshold returns the rows of Values whose percentage is at least p.
func (d *Distribution) AboveThreshold(p float64) []models.ValueCount {
	var out []models.ValueCount
	for _, v := range d.Values() {
		if v.Percent >= p {
			out = append(out, v)
		}
	}
	return out
}

func (t *Table) checkColumn(column string, opts []DistributionOption) (models.Question, error) {
	cfg := &distributionConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	q, err := t.schema.Question(column)
	if err != nil {
		return models.Question{}, err
	}
	if cfg.categoricalOnly && q.Type == models.Text {
		return models.Question{}, invalidType(column)
	}
	return q, nil
}

// Distribution counts the answers of one question over every respondent.
// The result is computed once per table and shared; callers must not modify it.
func (t *Table) Distribution(column string, opts ...DistributionOption) (*Distribution, error) {
	q, err := t.checkColumn(column, opts)
	if err != nil {
		return nil, err
	}
	if cached, ok := t.distributions.Load(q.Column); ok {
		return cached.(*Distribution), nil
	}
	v, _, _ := t.inflight.Do(q.Column, func() (interface{}, error) {
		if cached, ok := t.distributions.Load(q.Column); ok {
			return cached, nil
		}
		d := newDistribution(q)
		t.answers(q, func(_ int, answers []string) {
			d.add(answers)
		})
		t.distributions.Store(q.Column, d)
		t.log.Debug("distribution computed", "column", q.Column, "total", d.Total, "answers", d.Len())
		return d, nil
	})
	return v.(*Distribution), nil
}

// DistributionWithin counts the answers of one question over the members of s.
func (t *Table) DistributionWithin(column string, s *Subset, opts ...DistributionOption) (*Distribution, error) {
	q, err := t.checkColumn(column, opts)
	if err != nil {
		return nil, err
	}
	if s == nil || s.tableID != t.id {
		return nil, fmt.Errorf("%w: distribution of %q", ErrIncompatibleSubset, column)
	}
	d := newDistribution(q)
	t.answers(q, func(row int, answers []string) {
		if s.Contains(row) {
			d.add(answers)
		}
	})
	return d, nil
}
