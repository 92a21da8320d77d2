// Package checks implements the document-wide check engine: stateful
// accumulators that observe every row in document order and emit violations
// either as soon as they are provable or at finalization. The check set is
// closed; New dispatches with an explicit switch.
package checks

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rowlint/rowlint/icd"
)

// Violation codes. The root package re-exports them alongside its own.
const (
	CodeDistinctCount = "distinct_count"
	CodeNotUnique     = "not_unique"
)

// Violation is one broken document-wide rule.
type Violation struct {
	Code    string
	Message string
	// Row is the data row that triggered the violation; 0 means the
	// violation concerns the document as a whole.
	Row    int64
	Params map[string]any
}

// Check observes rows in document order and reports violations. Observe may
// emit eagerly (IsUnique, provable DistinctCount limits); Finalize runs once
// after the last row and must not repeat eager emissions.
type Check interface {
	Description() string
	Observe(rowNumber int64, cells []string) []Violation
	Finalize() []Violation
}

// New compiles the accumulator for a check. fieldIndex maps field names to
// their zero-based column position. It fails when the check's rule does not
// parse or names an unknown field.
func New(c icd.Check, fieldIndex map[string]int) (Check, error) {
	switch c.Type {
	case icd.CheckDistinctCount:
		return newDistinctCount(c, fieldIndex)
	case icd.CheckIsUnique:
		return newIsUnique(c, fieldIndex)
	default:
		return nil, fmt.Errorf("check %q: unsupported check type %q", c.Description, c.Type)
	}
}

// ---- DistinctCount ----

var distinctRuleRx = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9_]*)\s*(<=|>=|==|!=|<|>)\s*(-?[0-9]+)$`)

type distinctCount struct {
	desc    string
	field   string
	col     int
	op      string
	limit   int64
	seen    map[string]struct{}
	emitted bool
}

func newDistinctCount(c icd.Check, fieldIndex map[string]int) (*distinctCount, error) {
	m := distinctRuleRx.FindStringSubmatch(strings.TrimSpace(c.Rule))
	if m == nil {
		return nil, fmt.Errorf("check %q: DistinctCount rule %q must have the form: field OP limit (OP one of <, <=, >, >=, ==, !=)", c.Description, c.Rule)
	}
	col, ok := fieldIndex[m[1]]
	if !ok {
		return nil, fmt.Errorf("check %q: rule names unknown field %q", c.Description, m[1])
	}
	limit, err := strconv.ParseInt(m[3], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("check %q: limit %q must be an integer", c.Description, m[3])
	}
	return &distinctCount{
		desc:  c.Description,
		field: m[1],
		col:   col,
		op:    m[2],
		limit: limit,
		seen:  make(map[string]struct{}),
	}, nil
}

func (d *distinctCount) Description() string { return d.desc }

func (d *distinctCount) holds(count int64) bool {
	switch d.op {
	case "<":
		return count < d.limit
	case "<=":
		return count <= d.limit
	case ">":
		return count > d.limit
	case ">=":
		return count >= d.limit
	case "==":
		return count == d.limit
	default: // "!="
		return count != d.limit
	}
}

func (d *distinctCount) violation(row int64) Violation {
	count := int64(len(d.seen))
	return Violation{
		Code:    CodeDistinctCount,
		Message: fmt.Sprintf("%s: number of distinct values for field %q is %d but must fulfill: %s %s %d", d.desc, d.field, count, d.field, d.op, d.limit),
		Row:     row,
		Params:  map[string]any{"field": d.field, "count": count, "operator": d.op, "limit": d.limit},
	}
}

func (d *distinctCount) Observe(rowNumber int64, cells []string) []Violation {
	d.seen[cells[d.col]] = struct{}{}
	// The distinct count never shrinks, so a broken upper bound is provable
	// as soon as it is exceeded.
	if d.emitted || (d.op != "<" && d.op != "<=") {
		return nil
	}
	if !d.holds(int64(len(d.seen))) {
		d.emitted = true
		return []Violation{d.violation(rowNumber)}
	}
	return nil
}

func (d *distinctCount) Finalize() []Violation {
	if d.emitted || d.holds(int64(len(d.seen))) {
		return nil
	}
	return []Violation{d.violation(0)}
}

// ---- IsUnique ----

// tupleSep joins tuple values into a map key. U+001F keeps distinct tuples
// distinct even when cell values contain commas.
const tupleSep = "\x1f"

type isUnique struct {
	desc     string
	fields   []string
	cols     []int
	firstRow map[string]int64
}

func newIsUnique(c icd.Check, fieldIndex map[string]int) (*isUnique, error) {
	parts := strings.Split(c.Rule, ",")
	u := &isUnique{desc: c.Description, firstRow: make(map[string]int64)}
	for _, p := range parts {
		name := strings.TrimSpace(p)
		if name == "" {
			return nil, fmt.Errorf("check %q: IsUnique field list must not contain empty entries", c.Description)
		}
		col, ok := fieldIndex[name]
		if !ok {
			return nil, fmt.Errorf("check %q: rule names unknown field %q", c.Description, name)
		}
		u.fields = append(u.fields, name)
		u.cols = append(u.cols, col)
	}
	return u, nil
}

func (u *isUnique) Description() string { return u.desc }

func (u *isUnique) Observe(rowNumber int64, cells []string) []Violation {
	values := make([]string, len(u.cols))
	for i, col := range u.cols {
		values[i] = cells[col]
	}
	key := strings.Join(values, tupleSep)
	if first, ok := u.firstRow[key]; ok {
		return []Violation{{
			Code:    CodeNotUnique,
			Message: fmt.Sprintf("%s: values for (%s) must be unique: (%s) in row %d already occurred in row %d", u.desc, strings.Join(u.fields, ", "), strings.Join(values, ", "), rowNumber, first),
			Row:     rowNumber,
			Params:  map[string]any{"fields": u.fields, "values": values, "first_row": first},
		}}
	}
	u.firstRow[key] = rowNumber
	return nil
}

func (u *isUnique) Finalize() []Violation { return nil }
