package survey

import (
	"strings"

	"github.com/pivolan/survey_analyzer/domain/models"
	"golang.org/x/text/cases"
)

// OptionMatch is an answer found by SearchOptions.
type OptionMatch struct {
	Question models.Question
	Answer   string
}

type matcher struct {
	fold cases.Caser
	term string
}

func newMatcher(term string) *matcher {
	m := &matcher{fold: cases.Fold()}
	m.term = m.fold.String(strings.TrimSpace(term))
	return m
}

func (m *matcher) match(s string) bool {
	if m.term == "" {
		return true
	}
	return strings.Contains(m.fold.String(s), m.term)
}

// SearchQuestions returns questions whose text or column contains term,
// ignoring case, in schema order. An empty term matches every question.
func (t *Table) SearchQuestions(term string) []models.Question {
	m := newMatcher(term)
	out := []models.Question{}
	for _, q := range t.schema.questions {
		if m.match(q.Text) || m.match(q.Column) {
			out = append(out, q)
		}
	}
	return out
}

// SearchOptions returns the answers of choice questions that contain term,
// ignoring case. An empty term lists every answer.
func (t *Table) SearchOptions(term string) []OptionMatch {
	m := newMatcher(term)
	out := []OptionMatch{}
	for _, q := range t.schema.questions {
		if !q.Type.IsCategorical() {
			continue
		}
		d, err := t.Distribution(q.Column)
		if err != nil {
			continue
		}
		for _, answer := range d.order {
			if m.match(answer) {
				out = append(out, OptionMatch{Question: q, Answer: answer})
			}
		}
	}
	return out
}

// QuestionOptions lists the distinct answers given to column in
// first-appearance order.
func (t *Table) QuestionOptions(column string) ([]string, error) {
	d, err := t.Distribution(column)
	if err != nil {
		return nil, err
	}
	return d.Answers(), nil
}
