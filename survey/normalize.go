package survey

import (
	"strings"

	"github.com/pivolan/go_utils"
	"github.com/pivolan/survey_analyzer/domain/models"
)

const (
	primaryDelimiter  = ";"
	fallbackDelimiter = ","
)

var missingMarkers = []string{"", "NA"}

// IsMissing reports whether a cell carries no answer: empty, whitespace only or NA.
func IsMissing(s string) bool {
	return go_utils.InArray(strings.ToUpper(strings.TrimSpace(s)), missingMarkers)
}

// Normalize turns a raw cell into the answers it carries for a question type.
//
// Multiple choice cells split on ';', or on ',' when no ';' is present, and
// behave as a set: a token repeated in one cell is returned once. Every other
// type yields the trimmed cell as its single answer. Missing cells and cells
// made of delimiters and missing markers only yield nothing.
//
// A multiple choice token that holds a comma, such as "a, b" out of "a, b;c",
// splits again when normalized on its own.
func Normalize(raw string, t models.QuestionType) []string {
	if t != models.MultipleChoice {
		if IsMissing(raw) {
			return nil
		}
		return []string{strings.TrimSpace(raw)}
	}
	return splitMultiple(raw)
}

func splitMultiple(raw string) []string {
	if IsMissing(raw) {
		return nil
	}
	sep := primaryDelimiter
	if !strings.Contains(raw, primaryDelimiter) {
		sep = fallbackDelimiter
	}
	parts := strings.Split(raw, sep)
	answers := make([]string, 0, len(parts))
	for _, part := range parts {
		token := strings.TrimSpace(part)
		if IsMissing(token) || containsString(answers, token) {
			continue
		}
		answers = append(answers, token)
	}
	if len(answers) == 0 {
		return nil
	}
	return answers
}

func containsString(items []string, s string) bool {
	for _, item := range items {
		if item == s {
			return true
		}
	}
	return false
}
