package loader

import (
	"fmt"
	"strings"

	"github.com/pivolan/survey_analyzer/survey"
)

var schemaHeaders = [3]string{"column", "question_text", "type"}

// parseSchema turns schema sheet rows into entries. The first row is a header;
// the column, question_text and type cells are found by name and fall back to
// the first three positions when a name is absent.
func parseSchema(rows [][]string) ([]survey.SchemaEntry, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty schema", survey.ErrUnsupportedFormat)
	}
	header := rows[0]
	if len(header) < len(schemaHeaders) {
		return nil, fmt.Errorf("%w: schema header needs %s", survey.ErrUnsupportedFormat, strings.Join(schemaHeaders[:], ", "))
	}

	idx := [3]int{0, 1, 2}
	found := 0
	for i, want := range schemaHeaders {
		for j, cell := range header {
			if strings.EqualFold(strings.TrimSpace(cell), want) {
				idx[i] = j
				found++
				break
			}
		}
	}
	if found < len(schemaHeaders) {
		idx = [3]int{0, 1, 2}
	}
	last := 0
	for _, i := range idx {
		if i > last {
			last = i
		}
	}

	entries := make([]survey.SchemaEntry, 0, len(rows)-1)
	for _, row := range rows[1:] {
		// spreadsheet readers trim trailing blank cells; a blank text or type
		// still describes a question
		if len(row) <= idx[0] || strings.TrimSpace(row[idx[0]]) == "" {
			continue
		}
		if len(row) <= last {
			row = append(row, make([]string, last+1-len(row))...)
		}
		entries = append(entries, survey.SchemaEntry{
			Column:   row[idx[0]],
			Text:     row[idx[1]],
			TypeCode: row[idx[2]],
		})
	}
	return entries, nil
}
