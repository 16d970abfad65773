package survey

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a column is not part of the schema.
	ErrNotFound = errors.New("question not found")
	// ErrInvalidQuestionType is returned when an operation does not apply to a question's type.
	ErrInvalidQuestionType = errors.New("invalid question type for operation")
	// ErrIncompatibleSubset is returned when subsets come from different tables.
	ErrIncompatibleSubset = errors.New("subsets belong to different datasets")
	// ErrEmptyDataset is returned when a table would contain no respondents.
	ErrEmptyDataset = errors.New("empty dataset")
	// ErrMissingRequiredSheet is returned when the data or schema sheet is absent.
	ErrMissingRequiredSheet = errors.New("missing required sheet")
	// ErrUnsupportedFormat is returned for unreadable inputs and malformed schemas.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrFileNotFound is returned when the survey source does not exist.
	ErrFileNotFound = errors.New("file not found")
)

// ColumnError ties a failure to the column that caused it.
//
// The sentinel (ErrNotFound, ErrInvalidQuestionType) is reachable via errors.Is.
type ColumnError struct {
	Column string
	Err    error
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("%v: %q", e.Err, e.Column)
}

func (e *ColumnError) Unwrap() error { return e.Err }

func notFound(column string) error {
	return &ColumnError{Column: column, Err: ErrNotFound}
}

func invalidType(column string) error {
	return &ColumnError{Column: column, Err: ErrInvalidQuestionType}
}
