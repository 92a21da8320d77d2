package fields

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rowlint/rowlint/icd"
)

type patternValidator struct {
	common
	rx *regexp.Regexp
}

// newPattern compiles a wildcard rule where "?" matches exactly one
// character and "*" matches zero or more; no escaping is supported. The
// match is anchored at both ends.
func newPattern(f icd.Field) (*patternValidator, error) {
	if f.Rule == "" {
		return nil, fmt.Errorf("field %q: Pattern field requires a wildcard rule", f.Name)
	}
	var b strings.Builder
	b.WriteString(`\A(?s:`)
	for _, r := range f.Rule {
		switch r {
		case '?':
			b.WriteString(".")
		case '*':
			b.WriteString(".*")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString(`)\z`)
	rx, err := regexp.Compile(b.String())
	if err != nil {
		return nil, fmt.Errorf("field %q: pattern %q: %w", f.Name, f.Rule, err)
	}
	return &patternValidator{common: common{f: f}, rx: rx}, nil
}

func (pv *patternValidator) Validate(value string) *Violation {
	if v, done := pv.pre(value); done {
		return v
	}
	if !pv.rx.MatchString(value) {
		return &Violation{
			Code:    CodePattern,
			Message: fmt.Sprintf("value %q must match pattern %q", value, pv.f.Rule),
			Params:  map[string]any{"value": value, "pattern": pv.f.Rule},
		}
	}
	return nil
}

type regExValidator struct {
	common
	rx *regexp.Regexp
}

// newRegEx compiles a regular-expression rule with full-match semantics
// (the whole cell value must match).
func newRegEx(f icd.Field) (*regExValidator, error) {
	if f.Rule == "" {
		return nil, fmt.Errorf("field %q: RegEx field requires a regular expression rule", f.Name)
	}
	rx, err := regexp.Compile(`\A(?:` + f.Rule + `)\z`)
	if err != nil {
		return nil, fmt.Errorf("field %q: regular expression %q: %w", f.Name, f.Rule, err)
	}
	return &regExValidator{common: common{f: f}, rx: rx}, nil
}

func (rv *regExValidator) Validate(value string) *Violation {
	if v, done := rv.pre(value); done {
		return v
	}
	if !rv.rx.MatchString(value) {
		return &Violation{
			Code:    CodeRegEx,
			Message: fmt.Sprintf("value %q must match regular expression %q", value, rv.f.Rule),
			Params:  map[string]any{"value": value, "regex": rv.f.Rule},
		}
	}
	return nil
}
