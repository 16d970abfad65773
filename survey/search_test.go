package survey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func columns(t *Table, term string) []string {
	var out []string
	for _, q := range t.SearchQuestions(term) {
		out = append(out, q.Column)
	}
	return out
}

func TestSearchQuestions(t *testing.T) {
	table := newFixture(t)

	tests := []struct {
		name string
		term string
		want []string
	}{
		{name: "empty term returns all", term: "", want: []string{"Age", "Languages", "Comment", "Salary", "Years"}},
		{name: "case insensitive text", term: "PROGRAMMING", want: []string{"Languages"}},
		{name: "matches column", term: "salary", want: []string{"Salary"}},
		{name: "several in schema order", term: "e", want: []string{"Age", "Languages", "Comment", "Salary", "Years"}},
		{name: "no match", term: "zebra", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, columns(table, tt.term))
		})
	}

	assert.NotNil(t, table.SearchQuestions("zebra"))
}

func TestSearchOptions(t *testing.T) {
	table := newFixture(t)

	matches := table.SearchOptions("years")
	require.Len(t, matches, 4)
	assert.Equal(t, "Age", matches[0].Question.Column)
	assert.Equal(t, "18-24 years old", matches[0].Answer)

	matches = table.SearchOptions("script")
	require.Len(t, matches, 1)
	assert.Equal(t, "Languages", matches[0].Question.Column)
	assert.Equal(t, "JavaScript", matches[0].Answer)

	// free text and numeric answers are not options
	assert.Empty(t, table.SearchOptions("love"))
	assert.Empty(t, table.SearchOptions("25"))

	all := table.SearchOptions("")
	assert.Len(t, all, 4+4+2)
}

func TestQuestionOptions(t *testing.T) {
	table := newFixture(t)

	options, err := table.QuestionOptions("Languages")
	require.NoError(t, err)
	assert.Equal(t, []string{"Python", "Rust", "C++", "JavaScript"}, options)

	options, err = table.QuestionOptions("Comment")
	require.NoError(t, err)
	assert.Equal(t, []string{"love it", "meh"}, options)

	_, err = table.QuestionOptions("Nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
}
