package models

import (
	"fmt"
	"strings"
)

type QuestionType int

const (
	SingleChoice QuestionType = iota
	MultipleChoice
	Text
	Numeric
)

// ParseQuestionType maps a schema type code onto a QuestionType.
// ok is false for codes it does not recognise; those fall back to Text.
func ParseQuestionType(code string) (t QuestionType, ok bool) {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case "SC":
		return SingleChoice, true
	case "MC":
		return MultipleChoice, true
	case "TE":
		return Text, true
	case "NU", "NUM", "NUMERIC":
		return Numeric, true
	}
	return Text, false
}

// Code returns the canonical schema code of the type.
func (t QuestionType) Code() string {
	switch t {
	case SingleChoice:
		return "SC"
	case MultipleChoice:
		return "MC"
	case Text:
		return "TE"
	case Numeric:
		return "NU"
	}
	return fmt.Sprintf("QuestionType(%d)", int(t))
}

func (t QuestionType) String() string {
	switch t {
	case SingleChoice:
		return "Single choice"
	case MultipleChoice:
		return "Multiple choice"
	case Text:
		return "Text"
	case Numeric:
		return "Numeric"
	}
	return t.Code()
}

// IsCategorical reports whether answers of the type form a fixed option set.
func (t QuestionType) IsCategorical() bool {
	return t == SingleChoice || t == MultipleChoice
}

type Question struct {
	ID     int    // order of appearance in the schema sheet
	Column string // unique key
	Text   string
	Type   QuestionType
}

// ValueCount is one row of a frequency table.
type ValueCount struct {
	Value   string
	Count   int64
	Percent float64
}

type NumberStats struct {
	Average   float64
	Median    float64
	Min       float64
	Max       float64
	Count     int
	Skipped   int                 // non-missing cells that did not parse as numbers
	Quantiles map[float64]float64 // level -> value
	IQR       float64
	Outliers  []float64
}
