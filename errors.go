package rowlint

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rowlint/rowlint/checks"
	"github.com/rowlint/rowlint/fields"
)

// Issue codes (exported consts for IDE completion and type safety by
// convention). Field and check codes are re-exported from their packages so
// callers only need this one.
const (
	CodeIcdSyntax    = "icd_syntax"
	CodeDataFormat   = "data_format"
	CodeRowStructure = "row_structure"
	CodeCharSet      = "char_outside_set"

	CodeEmptyValue       = fields.CodeEmpty
	CodeLengthOutOfRange = fields.CodeLength
	CodeParseError       = fields.CodeParse
	CodeValueRange       = fields.CodeRange
	CodeInvalidEnum      = fields.CodeEnum
	CodeDateTime         = fields.CodeDateTime
	CodePattern          = fields.CodePattern
	CodeRegEx            = fields.CodeRegEx

	CodeDistinctCount = checks.CodeDistinctCount
	CodeNotUnique     = checks.CodeNotUnique
)

// Class groups issue codes into the five diagnostic classes. The first two
// are fatal: they abort the run and are reported as the sole diagnostic.
type Class int

const (
	ClassIcdSyntax Class = iota
	ClassDataFormat
	ClassStructural
	ClassFieldValue
	ClassCheckViolation
)

func (c Class) String() string {
	switch c {
	case ClassIcdSyntax:
		return "icd syntax error"
	case ClassDataFormat:
		return "data format error"
	case ClassStructural:
		return "structural error"
	case ClassFieldValue:
		return "field value error"
	case ClassCheckViolation:
		return "check violation"
	default:
		return "unknown"
	}
}

// Fatal reports whether issues of this class abort the validation run.
func (c Class) Fatal() bool {
	return c == ClassIcdSyntax || c == ClassDataFormat
}

// MarshalJSON renders the class as its string name.
func (c Class) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.String() + `"`), nil
}

// ClassOf maps an issue code to its class.
func ClassOf(code string) Class {
	switch code {
	case CodeIcdSyntax:
		return ClassIcdSyntax
	case CodeDataFormat:
		return ClassDataFormat
	case CodeRowStructure:
		return ClassStructural
	case CodeDistinctCount, CodeNotUnique:
		return ClassCheckViolation
	default:
		return ClassFieldValue
	}
}

// Issue represents a single validation diagnostic. Row is the 1-based data
// row (0 for document-level issues); Column is the 1-based cell index and
// Field the field name for field-scoped issues.
type Issue struct {
	Code    string         `json:"code"`
	Class   Class          `json:"class"`
	Message string         `json:"message"`
	Row     int64          `json:"row,omitempty"`
	Column  int            `json:"column,omitempty"`
	Field   string         `json:"field,omitempty"`
	Params  map[string]any `json:"params,omitempty"`
}

// Where renders the issue's location, always resolving to at least a row.
func (it Issue) Where() string {
	switch {
	case it.Row == 0:
		return "document"
	case it.Column == 0:
		return fmt.Sprintf("row %d", it.Row)
	case it.Field == "":
		return fmt.Sprintf("row %d, column %d", it.Row, it.Column)
	default:
		return fmt.Sprintf("row %d, column %d (%s)", it.Row, it.Column, it.Field)
	}
}

// Issues is a collection of validation diagnostics that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		fmt.Fprintf(b, "%s at %s", it.Code, it.Where())
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendIssues appends issues to the destination, initializing the slice
// when needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	return append(dst, more...)
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}
