package survey

import (
	"strings"
	"testing"

	"github.com/pivolan/survey_analyzer/domain/models"
	"github.com/stretchr/testify/assert"
)

func TestIsMissing(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "empty", input: "", want: true},
		{name: "whitespace", input: " \t ", want: true},
		{name: "NA", input: "NA", want: true},
		{name: "lowercase na", input: " na ", want: true},
		{name: "answer", input: "Rust", want: false},
		{name: "N/A is an answer", input: "N/A", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsMissing(tt.input))
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		qType models.QuestionType
		want  []string
	}{
		{name: "single choice trimmed", raw: "  18-24 years old ", qType: models.SingleChoice, want: []string{"18-24 years old"}},
		{name: "single choice missing", raw: "NA", qType: models.SingleChoice, want: nil},
		{name: "single choice keeps comma", raw: "5,000", qType: models.SingleChoice, want: []string{"5,000"}},
		{name: "single choice keeps semicolon", raw: "a;b", qType: models.SingleChoice, want: []string{"a;b"}},
		{name: "text whole cell", raw: "good, but slow", qType: models.Text, want: []string{"good, but slow"}},
		{name: "numeric", raw: " 42 ", qType: models.Numeric, want: []string{"42"}},
		{name: "multiple semicolon", raw: "Python; Rust", qType: models.MultipleChoice, want: []string{"Python", "Rust"}},
		{name: "multiple comma fallback", raw: "Python, Rust", qType: models.MultipleChoice, want: []string{"Python", "Rust"}},
		{name: "semicolon wins over comma", raw: "Go, the language;Rust", qType: models.MultipleChoice, want: []string{"Go, the language", "Rust"}},
		{name: "multiple dedup keeps first", raw: "Rust;Rust;Python", qType: models.MultipleChoice, want: []string{"Rust", "Python"}},
		{name: "multiple drops empty tokens", raw: ";Rust;;", qType: models.MultipleChoice, want: []string{"Rust"}},
		{name: "multiple drops NA tokens", raw: "NA;Go", qType: models.MultipleChoice, want: []string{"Go"}},
		{name: "only delimiters", raw: ";;;", qType: models.MultipleChoice, want: nil},
		{name: "only markers", raw: "NA; na ;", qType: models.MultipleChoice, want: nil},
		{name: "multiple missing", raw: "", qType: models.MultipleChoice, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.raw, tt.qType))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	cells := []string{"Rust;Rust;Python", "Python, Rust", " C++ ", "a;;b; c", "Go, the language;Rust"}
	for _, cell := range cells {
		for _, token := range Normalize(cell, models.MultipleChoice) {
			if strings.Contains(token, ",") {
				continue
			}
			assert.Equal(t, []string{token}, Normalize(token, models.MultipleChoice), "cell %q", cell)
		}
	}
}

// A comma kept inside a ';' separated token triggers the comma fallback once
// the token stands alone.
func TestNormalizeCommaTokenSplitsAlone(t *testing.T) {
	answers := Normalize("Go, the language;Rust", models.MultipleChoice)
	assert.Equal(t, []string{"Go, the language", "Rust"}, answers)
	assert.Equal(t, []string{"Go", "the language"}, Normalize(answers[0], models.MultipleChoice))
	assert.Equal(t, []string{"Go, the language"}, Normalize(answers[0], models.SingleChoice))
}
