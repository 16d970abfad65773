package survey

import (
	"fmt"
	"strings"

	"github.com/pivolan/survey_analyzer/domain/models"
)

// SchemaEntry is one row of the schema sheet as read from the source file.
type SchemaEntry struct {
	Column   string
	Text     string
	TypeCode string
}

// Schema is the ordered set of questions of a survey.
type Schema struct {
	questions []models.Question
	slots     map[string]int
	unknown   []string // columns whose type code was not recognised
}

// NewSchema builds a schema from entries in sheet order. Entries with an empty
// column name are skipped; a repeated column is an error.
func NewSchema(entries []SchemaEntry) (*Schema, error) {
	s := &Schema{
		questions: make([]models.Question, 0, len(entries)),
		slots:     make(map[string]int, len(entries)),
	}
	for _, entry := range entries {
		column := strings.TrimSpace(entry.Column)
		if column == "" {
			continue
		}
		if _, exists := s.slots[column]; exists {
			return nil, fmt.Errorf("%w: duplicate schema column %q", ErrUnsupportedFormat, column)
		}
		qType, ok := models.ParseQuestionType(entry.TypeCode)
		if !ok {
			s.unknown = append(s.unknown, column)
		}
		text := strings.TrimSpace(entry.Text)
		if text == "" {
			text = column
		}
		s.slots[column] = len(s.questions)
		s.questions = append(s.questions, models.Question{
			ID:     len(s.questions),
			Column: column,
			Text:   text,
			Type:   qType,
		})
	}
	return s, nil
}

func (s *Schema) Len() int {
	return len(s.questions)
}

// Questions returns a copy of the questions in schema order.
func (s *Schema) Questions() []models.Question {
	out := make([]models.Question, len(s.questions))
	copy(out, s.questions)
	return out
}

func (s *Schema) Question(column string) (models.Question, error) {
	slot, ok := s.slots[column]
	if !ok {
		return models.Question{}, notFound(column)
	}
	return s.questions[slot], nil
}

func (s *Schema) slot(column string) (int, bool) {
	slot, ok := s.slots[column]
	return slot, ok
}

// UnknownTypeColumns lists columns whose type code fell back to Text.
func (s *Schema) UnknownTypeColumns() []string {
	return append([]string(nil), s.unknown...)
}

var inferenceRules = []struct {
	keywords []string
	code     string
}{
	{keywords: []string{"select all", "multiple"}, code: "MC"},
	{keywords: []string{"age", "years", "salary"}, code: "NU"},
	{keywords: []string{"describe", "other", "comment"}, code: "TE"},
}

// InferSchema guesses a schema from data headers alone, for sources that ship
// without one. Every header becomes a question whose text is the header.
func InferSchema(header []string) []SchemaEntry {
	entries := make([]SchemaEntry, 0, len(header))
	for _, h := range header {
		entries = append(entries, SchemaEntry{
			Column:   h,
			Text:     h,
			TypeCode: inferTypeCode(h),
		})
	}
	return entries
}

func inferTypeCode(header string) string {
	lower := strings.ToLower(header)
	for _, rule := range inferenceRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.code
			}
		}
	}
	return "SC"
}
