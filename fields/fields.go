// Package fields implements the field type system: one validator per field
// type, each consuming a raw cell string and producing acceptance or a
// single typed violation. The type set is closed; New dispatches with an
// explicit switch, never by reflection.
package fields

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/rowlint/rowlint/icd"
	"github.com/rowlint/rowlint/ranges"
)

// Violation codes. The root package re-exports them alongside its own.
const (
	CodeEmpty    = "empty_value"
	CodeLength   = "length_out_of_range"
	CodeParse    = "parse_error"
	CodeRange    = "value_range"
	CodeEnum     = "invalid_enum"
	CodeDateTime = "datetime_mismatch"
	CodePattern  = "pattern_mismatch"
	CodeRegEx    = "regex_mismatch"
)

// Violation is one rejected cell value. The orchestrator attaches row and
// column location before reporting it.
type Violation struct {
	Code    string
	Message string
	Params  map[string]any
}

// Validator accepts or rejects one raw cell value against its field spec.
// A nil result means the value is accepted.
type Validator interface {
	Validate(value string) *Violation
}

// New compiles the validator for a field. It fails when the field's rule
// string does not parse under the field's type.
func New(f icd.Field) (Validator, error) {
	switch f.Type {
	case icd.FieldText:
		return &textValidator{common: common{f: f}}, nil
	case icd.FieldInteger:
		return newInteger(f)
	case icd.FieldChoice:
		return newChoice(f)
	case icd.FieldDateTime:
		return newDateTime(f)
	case icd.FieldPattern:
		return newPattern(f)
	case icd.FieldRegEx:
		return newRegEx(f)
	default:
		return nil, fmt.Errorf("field %q: unsupported field type %q", f.Name, f.Type)
	}
}

// common implements the uniform front shared by every type: emptiness and
// character-count length. Integer overrides the flow because its length
// range constrains the numeric value instead.
type common struct {
	f icd.Field
}

// pre runs the shared checks. done reports that validation is complete (the
// value was empty and allowed to be).
func (c *common) pre(value string) (v *Violation, done bool) {
	if value == "" {
		if c.f.EmptyAllowed {
			return nil, true
		}
		return &Violation{
			Code:    CodeEmpty,
			Message: fmt.Sprintf("field %q must not be empty", c.f.Name),
		}, true
	}
	n := int64(utf8.RuneCountInString(value))
	if !c.f.Length.Contains(n) {
		return &Violation{
			Code:    CodeLength,
			Message: fmt.Sprintf("value %q has %d characters but length must be within range %s", value, n, c.f.Length.String()),
			Params:  map[string]any{"length": n, "range": c.f.Length.String()},
		}, true
	}
	return nil, false
}

type textValidator struct {
	common
}

func (t *textValidator) Validate(value string) *Violation {
	v, _ := t.pre(value)
	return v
}

type integerValidator struct {
	f    icd.Field
	rule ranges.Range
}

func newInteger(f icd.Field) (*integerValidator, error) {
	rule, err := ranges.Parse(f.Rule)
	if err != nil {
		return nil, fmt.Errorf("field %q: rule of Integer field: %w", f.Name, err)
	}
	return &integerValidator{f: f, rule: rule}, nil
}

func (iv *integerValidator) Validate(value string) *Violation {
	if value == "" {
		if iv.f.EmptyAllowed {
			return nil
		}
		return &Violation{Code: CodeEmpty, Message: fmt.Sprintf("field %q must not be empty", iv.f.Name)}
	}
	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return &Violation{
			Code:    CodeParse,
			Message: fmt.Sprintf("value %q must be an integer", value),
			Params:  map[string]any{"value": value},
		}
	}
	// Both the length range and the rule range constrain the value itself.
	for _, r := range []ranges.Range{iv.f.Length, iv.rule} {
		if !r.Contains(n) {
			return &Violation{
				Code:    CodeRange,
				Message: fmt.Sprintf("value is %d but must be within range %s", n, r.String()),
				Params:  map[string]any{"value": n, "range": r.String()},
			}
		}
	}
	return nil
}

type choiceValidator struct {
	common
	choices []string
}

func newChoice(f icd.Field) (*choiceValidator, error) {
	if strings.TrimSpace(f.Rule) == "" {
		return nil, fmt.Errorf("field %q: Choice field requires a comma-separated value list", f.Name)
	}
	parts := strings.Split(f.Rule, ",")
	choices := make([]string, len(parts))
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return nil, fmt.Errorf("field %q: Choice value list must not contain empty entries", f.Name)
		}
		choices[i] = p
	}
	return &choiceValidator{common: common{f: f}, choices: choices}, nil
}

func (cv *choiceValidator) Validate(value string) *Violation {
	if v, done := cv.pre(value); done {
		return v
	}
	for _, c := range cv.choices {
		if value == c {
			return nil
		}
	}
	return &Violation{
		Code:    CodeEnum,
		Message: fmt.Sprintf("value %q must be one of: %s", value, strings.Join(cv.choices, ", ")),
		Params:  map[string]any{"value": value, "choices": cv.choices},
	}
}
