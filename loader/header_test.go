package loader

import (
	"testing"

	"github.com/pivolan/survey_analyzer/survey"
	"github.com/stretchr/testify/assert"
)

func TestValidateHeaders(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "Unique headers",
			input: []string{"Age", "Country", "Languages"},
			want:  []string{"Age", "Country", "Languages"},
		},
		{
			name:  "Duplicate headers",
			input: []string{"Name", "Name", "Name", "Age"},
			want:  []string{"Name", "Name_1", "Name_2", "Age"},
		},
		{
			name:  "Whitespace trimmed",
			input: []string{" Age ", "Age"},
			want:  []string{"Age", "Age_1"},
		},
		{
			name:  "Empty headers",
			input: []string{"Age", "", ""},
			want:  []string{"Age", "column_2", "column_3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateHeaders(tt.input))
		})
	}
}

func TestParseSchema(t *testing.T) {
	tests := []struct {
		name    string
		rows    [][]string
		want    []survey.SchemaEntry
		wantErr error
	}{
		{
			name: "columns by name",
			rows: [][]string{
				{"type", "column", "question_text"},
				{"MC", "Languages", "Which languages?"},
			},
			want: []survey.SchemaEntry{{Column: "Languages", Text: "Which languages?", TypeCode: "MC"}},
		},
		{
			name: "positional fallback",
			rows: [][]string{
				{"Field", "Question", "Kind"},
				{"Age", "What is your age?", "SC"},
			},
			want: []survey.SchemaEntry{{Column: "Age", Text: "What is your age?", TypeCode: "SC"}},
		},
		{
			name: "short rows padded",
			rows: [][]string{
				{"column", "question_text", "type"},
				{"Age", "What is your age?"},
				{"Notes"},
				{"Role", "Your role", "SC"},
			},
			want: []survey.SchemaEntry{
				{Column: "Age", Text: "What is your age?", TypeCode: ""},
				{Column: "Notes", Text: "", TypeCode: ""},
				{Column: "Role", Text: "Your role", TypeCode: "SC"},
			},
		},
		{
			name: "rows without column skipped",
			rows: [][]string{
				{"type", "question_text", "column"},
				{"SC", "Orphan text"},
				{"SC", "Blank column", "  "},
				{"MC", "Your tools", "Tools"},
			},
			want: []survey.SchemaEntry{{Column: "Tools", Text: "Your tools", TypeCode: "MC"}},
		},
		{
			name:    "empty",
			rows:    nil,
			wantErr: survey.ErrUnsupportedFormat,
		},
		{
			name:    "narrow header",
			rows:    [][]string{{"column", "type"}},
			wantErr: survey.ErrUnsupportedFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSchema(tt.rows)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
