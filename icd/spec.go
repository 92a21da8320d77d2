// Package icd models the Interface Control Document: the declarative
// description of a data file's physical format, its fields and its
// document-wide checks. Parse turns the table-shaped ICD text into an
// immutable Spec consumed by the validation engine.
package icd

import (
	"fmt"

	"github.com/rowlint/rowlint/ranges"
)

// FieldType enumerates the supported field types. The set is closed; the
// engine dispatches on it with an explicit switch.
type FieldType string

const (
	FieldText     FieldType = "Text"
	FieldInteger  FieldType = "Integer"
	FieldChoice   FieldType = "Choice"
	FieldDateTime FieldType = "DateTime"
	FieldPattern  FieldType = "Pattern"
	FieldRegEx    FieldType = "RegEx"
)

// CheckType enumerates the supported document-wide checks.
type CheckType string

const (
	CheckDistinctCount CheckType = "DistinctCount"
	CheckIsUnique      CheckType = "IsUnique"
)

// Field describes one named, typed column of the data being validated.
type Field struct {
	Name         string
	Example      string
	EmptyAllowed bool
	// Length constrains the cell's character count; for Integer fields it
	// constrains the numeric value itself.
	Length ranges.Range
	Type   FieldType
	// Rule is interpreted per Type: a value range for Integer, a value list
	// for Choice, a template for DateTime, a wildcard for Pattern, a regular
	// expression for RegEx. Empty for Text.
	Rule string
}

// Check describes one rule spanning multiple rows.
type Check struct {
	Description string
	Type        CheckType
	// Rule grammar is check specific: "field OP limit" for DistinctCount,
	// a comma-separated field list for IsUnique.
	Rule string
}

// Spec aggregates the data format, the ordered field list and the ordered
// check list. It is immutable after Parse.
type Spec struct {
	Format DataFormat
	Fields []Field
	Checks []Check
}

// FieldIndex maps field names to their zero-based column position.
func (s *Spec) FieldIndex() map[string]int {
	idx := make(map[string]int, len(s.Fields))
	for i, f := range s.Fields {
		idx[f.Name] = i
	}
	return idx
}

// FieldWidths returns the exact column widths of a fixed-width Spec, in
// field order. It must only be called when Format.Format is FormatFixed;
// Parse guarantees every fixed field length is a single point.
func (s *Spec) FieldWidths() []int {
	widths := make([]int, len(s.Fields))
	for i, f := range s.Fields {
		items := f.Length.Items()
		widths[i] = int(*items[0].Lower)
	}
	return widths
}

// SyntaxError reports a malformed ICD. Row and Column are 1-based; Column 0
// means the error concerns the row as a whole.
type SyntaxError struct {
	Row     int
	Column  int
	Message string
}

func (e *SyntaxError) Error() string {
	switch {
	case e.Row > 0 && e.Column > 0:
		return fmt.Sprintf("ICD row %d, column %d: %s", e.Row, e.Column, e.Message)
	case e.Row > 0:
		return fmt.Sprintf("ICD row %d: %s", e.Row, e.Message)
	default:
		return "ICD: " + e.Message
	}
}
