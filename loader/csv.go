package loader

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pivolan/survey_analyzer/survey"
)

// SchemaSuffix names the schema companion of a delimited data file:
// survey.csv is described by survey.schema.csv.
const SchemaSuffix = ".schema.csv"

// readDelimited reads a csv or tsv data file and its schema companion. The
// companion is looked up next to the unpacked file and in origin, the
// directory the caller's source lives in.
func readDelimited(path, origin string, o *options) (*sheets, error) {
	data, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	s := &sheets{data: data}

	schemaPath := o.schemaFile
	if schemaPath == "" {
		schemaPath = findCompanion(path, origin)
	}
	if schemaPath == "" {
		if o.inferSchema {
			return s, nil
		}
		return nil, fmt.Errorf("%w: no schema file for %s", survey.ErrMissingRequiredSheet, filepath.Base(path))
	}

	s.schema, err = readCSV(schemaPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", survey.ErrMissingRequiredSheet, schemaPath)
		}
		return nil, err
	}
	if s.schema == nil {
		s.schema = [][]string{}
	}
	return s, nil
}

func findCompanion(path, origin string) string {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base)) + SchemaSuffix
	for _, dir := range []string{filepath.Dir(path), origin} {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// readCSV reads every record of a delimited file. Records may differ in length.
func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		reader.Comma = '\t'
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", survey.ErrUnsupportedFormat, filepath.Base(path), err)
	}
	return stripBOM(records), nil
}

func stripBOM(records [][]string) [][]string {
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
	}
	return records
}
