package main

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/pivolan/survey_analyzer/survey"
	"github.com/stretchr/testify/require"
)

var fixtureSchema = [][]string{
	{"column", "question_text", "type"},
	{"Age", "What is your age?", "SC"},
	{"Languages", "Which programming languages do you use?", "MC"},
	{"Country", "Where do you live?", "SC"},
	{"Years", "Years of experience", "NU"},
	{"Comment", "Anything else?", "TE"},
}

var fixtureData = [][]string{
	{"Age", "Languages", "Country", "Years", "Comment"},
	{"18-24", "Python;Rust", "United States", "3", "great"},
	{"18-24", "Python", "Germany", "5", ""},
	{"25-34", "Rust;Go", "United States", "10", "NA"},
	{"25-34", "Go", "NA", "", ""},
}

func fixtureEntries() []survey.SchemaEntry {
	entries := make([]survey.SchemaEntry, 0, len(fixtureSchema)-1)
	for _, row := range fixtureSchema[1:] {
		entries = append(entries, survey.SchemaEntry{Column: row[0], Text: row[1], TypeCode: row[2]})
	}
	return entries
}

func newTestTable(t *testing.T) *survey.Table {
	t.Helper()
	table, err := survey.New(fixtureEntries(), fixtureData[0], fixtureData[1:])
	require.NoError(t, err)
	return table
}

func writeCSV(t *testing.T, path string, rows [][]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	w := csv.NewWriter(f)
	require.NoError(t, w.WriteAll(rows))
	require.NoError(t, f.Close())
}

// writeSurvey stores the fixture as survey.csv with its schema companion.
func writeSurvey(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "survey.csv")
	writeCSV(t, path, fixtureData)
	writeCSV(t, filepath.Join(dir, "survey.schema.csv"), fixtureSchema)
	return path
}
