package loader

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pivolan/survey_analyzer/survey"
	"github.com/xuri/excelize/v2"
)

// readWorkbook reads the data and schema sheets of an xlsx workbook. Sheet
// names are matched ignoring case and surrounding spaces.
func readWorkbook(path string, o *options) (*sheets, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", survey.ErrUnsupportedFormat, filepath.Base(path), err)
	}
	defer f.Close()

	names := f.GetSheetList()
	dataName, ok := findSheet(names, o.dataSheet)
	if !ok {
		return nil, fmt.Errorf("%w: sheet %q in %s", survey.ErrMissingRequiredSheet, o.dataSheet, filepath.Base(path))
	}
	data, err := f.GetRows(dataName)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", dataName, err)
	}

	s := &sheets{data: data}
	schemaName, ok := findSheet(names, o.schemaSheet)
	switch {
	case ok:
		s.schema, err = f.GetRows(schemaName)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", schemaName, err)
		}
		if s.schema == nil {
			s.schema = [][]string{}
		}
	case !o.inferSchema:
		return nil, fmt.Errorf("%w: sheet %q in %s", survey.ErrMissingRequiredSheet, o.schemaSheet, filepath.Base(path))
	}
	return s, nil
}

func findSheet(names []string, want string) (string, bool) {
	want = strings.TrimSpace(want)
	for _, name := range names {
		if strings.EqualFold(strings.TrimSpace(name), want) {
			return name, true
		}
	}
	return "", false
}
