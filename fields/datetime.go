package fields

import (
	"fmt"
	"strings"

	"github.com/rowlint/rowlint/icd"
)

// dtToken is one element of a DateTime template: either a placeholder with a
// fixed digit width and numeric range, or a literal rune matched verbatim.
type dtToken struct {
	name    string // "YYYY", "MM", ... ; empty for literals
	width   int
	min     int
	max     int
	literal rune
}

// placeholders in longest-match order so that "YYYY" wins over "YY".
var dtPlaceholders = []dtToken{
	{name: "YYYY", width: 4, min: 1, max: 9999},
	{name: "YY", width: 2, min: 0, max: 99},
	{name: "MM", width: 2, min: 1, max: 12},
	{name: "DD", width: 2, min: 1, max: 31},
	{name: "hh", width: 2, min: 0, max: 23},
	{name: "mm", width: 2, min: 0, max: 59},
	// 61 tolerates leap seconds.
	{name: "ss", width: 2, min: 0, max: 61},
}

type dateTimeValidator struct {
	common
	tokens []dtToken
}

func newDateTime(f icd.Field) (*dateTimeValidator, error) {
	if f.Rule == "" {
		return nil, fmt.Errorf("field %q: DateTime field requires a format template such as YYYY-MM-DD", f.Name)
	}
	var tokens []dtToken
	rule := f.Rule
	for len(rule) > 0 {
		matched := false
		for _, ph := range dtPlaceholders {
			if strings.HasPrefix(rule, ph.name) {
				tokens = append(tokens, ph)
				rule = rule[len(ph.name):]
				matched = true
				break
			}
		}
		if !matched {
			r := []rune(rule)[0]
			tokens = append(tokens, dtToken{literal: r})
			rule = rule[len(string(r)):]
		}
	}
	return &dateTimeValidator{common: common{f: f}, tokens: tokens}, nil
}

func (dv *dateTimeValidator) Validate(value string) *Violation {
	if v, done := dv.pre(value); done {
		return v
	}
	runes := []rune(value)
	pos := 0
	for _, tok := range dv.tokens {
		if tok.name == "" {
			if pos >= len(runes) || runes[pos] != tok.literal {
				return dv.mismatch(value, fmt.Sprintf("expected %q at position %d", string(tok.literal), pos+1))
			}
			pos++
			continue
		}
		if pos+tok.width > len(runes) {
			return dv.mismatch(value, fmt.Sprintf("expected %d digits for %s at position %d", tok.width, tok.name, pos+1))
		}
		n := 0
		for i := 0; i < tok.width; i++ {
			d := runes[pos+i]
			if d < '0' || d > '9' {
				return dv.mismatch(value, fmt.Sprintf("expected digit for %s at position %d", tok.name, pos+i+1))
			}
			n = n*10 + int(d-'0')
		}
		if n < tok.min || n > tok.max {
			return dv.mismatch(value, fmt.Sprintf("%s is %d but must be within %d..%d", tok.name, n, tok.min, tok.max))
		}
		pos += tok.width
	}
	if pos != len(runes) {
		return dv.mismatch(value, fmt.Sprintf("unexpected trailing text at position %d", pos+1))
	}
	return nil
}

func (dv *dateTimeValidator) mismatch(value, detail string) *Violation {
	return &Violation{
		Code:    CodeDateTime,
		Message: fmt.Sprintf("value %q must match date/time template %q: %s", value, dv.f.Rule, detail),
		Params:  map[string]any{"value": value, "template": dv.f.Rule},
	}
}
