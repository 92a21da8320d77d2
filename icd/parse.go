package icd

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rowlint/rowlint/ranges"
)

var fieldNameRx = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// Parse builds a Spec from the table-shaped ICD. Each row is dispatched on
// its first cell: D for a data-format property, F for a field, C for a
// check. Rows with an empty first cell are comments; columns beyond the ones
// a row kind defines are ignored.
func Parse(rows [][]string) (*Spec, error) {
	b := &builder{
		propRow: make(map[string]int),
		nameRow: make(map[string]int),
	}
	for i, row := range rows {
		n := i + 1
		if len(row) == 0 {
			continue
		}
		marker := strings.ToUpper(strings.TrimSpace(row[0]))
		var err error
		switch marker {
		case "":
			continue
		case "D":
			err = b.addProperty(n, row)
		case "F":
			err = b.addField(n, row)
		case "C":
			err = b.addCheck(n, row)
		default:
			err = &SyntaxError{Row: n, Column: 1, Message: fmt.Sprintf("unknown row marker %q (expected D, F or C)", strings.TrimSpace(row[0]))}
		}
		if err != nil {
			return nil, err
		}
	}
	return b.finish()
}

type builder struct {
	format    DataFormat
	hasFormat bool
	propRow   map[string]int // normalized property name -> ICD row that set it

	fields    []Field
	fieldRows []int
	nameRow   map[string]int

	checks []Check
}

func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

func (b *builder) addProperty(n int, row []string) error {
	name := cell(row, 1)
	if name == "" {
		return &SyntaxError{Row: n, Column: 2, Message: "data format property name must not be empty"}
	}
	value := cell(row, 2)
	key := normalizeProperty(name)
	// Last value wins on duplicate keys.
	b.propRow[key] = n
	switch key {
	case propFormat:
		f, ok := parseFormat(value)
		if !ok {
			return &SyntaxError{Row: n, Column: 3, Message: fmt.Sprintf("format %q must be one of: Delimited, CSV, Fixed, Excel, ODS", value)}
		}
		b.format.Format = f
		b.hasFormat = true
	case propEncoding:
		if value == "" {
			return &SyntaxError{Row: n, Column: 3, Message: "encoding must not be empty"}
		}
		b.format.Encoding = strings.ToLower(value)
	case propLineDelimiter:
		d, ok := parseLineDelimiter(value)
		if !ok {
			return &SyntaxError{Row: n, Column: 3, Message: fmt.Sprintf("line delimiter %q must be one of: any, cr, lf, crlf", value)}
		}
		b.format.LineDelimiter = d
	case propItemDelimiter, propQuote, propEscape:
		c, err := parseCharacter(value)
		if err != nil {
			return &SyntaxError{Row: n, Column: 3, Message: err.Error()}
		}
		switch key {
		case propItemDelimiter:
			b.format.ItemDelimiter = c
		case propQuote:
			b.format.Quote = c
		case propEscape:
			b.format.Escape = c
		}
	case propAllowed:
		r, err := ranges.Parse(value)
		if err != nil {
			return &SyntaxError{Row: n, Column: 3, Message: err.Error()}
		}
		b.format.AllowedCharacters = r
	case propHeader:
		h, err := strconv.Atoi(value)
		if err != nil || h < 0 {
			return &SyntaxError{Row: n, Column: 3, Message: fmt.Sprintf("header %q must be a non-negative integer", value)}
		}
		b.format.Header = h
	case propSheet:
		s, err := strconv.Atoi(value)
		if err != nil || s < 1 {
			return &SyntaxError{Row: n, Column: 3, Message: fmt.Sprintf("sheet %q must be a positive integer (1 is the first sheet)", value)}
		}
		b.format.Sheet = s
	default:
		return &SyntaxError{Row: n, Column: 2, Message: fmt.Sprintf("unknown data format property %q", name)}
	}
	return nil
}

var fieldTypes = map[string]FieldType{
	"text":     FieldText,
	"integer":  FieldInteger,
	"choice":   FieldChoice,
	"datetime": FieldDateTime,
	"pattern":  FieldPattern,
	"regex":    FieldRegEx,
}

func (b *builder) addField(n int, row []string) error {
	f := Field{
		Name:    cell(row, 1),
		Example: cell(row, 2),
		Rule:    cell(row, 6),
	}
	if f.Name == "" {
		return &SyntaxError{Row: n, Column: 2, Message: "field name must not be empty"}
	}
	if !fieldNameRx.MatchString(f.Name) {
		return &SyntaxError{Row: n, Column: 2, Message: fmt.Sprintf("field name %q must start with a letter and contain only letters, digits and underscores", f.Name)}
	}
	if first, ok := b.nameRow[f.Name]; ok {
		return &SyntaxError{Row: n, Column: 2, Message: fmt.Sprintf("field name %q already declared in row %d", f.Name, first)}
	}
	switch strings.ToUpper(cell(row, 3)) {
	case "":
		f.EmptyAllowed = false
	case "X":
		f.EmptyAllowed = true
	default:
		return &SyntaxError{Row: n, Column: 4, Message: fmt.Sprintf("empty flag %q must be blank or X", cell(row, 3))}
	}
	length, err := ranges.Parse(cell(row, 4))
	if err != nil {
		return &SyntaxError{Row: n, Column: 5, Message: err.Error()}
	}
	f.Length = length
	typeTag := cell(row, 5)
	if typeTag == "" {
		f.Type = FieldText
	} else {
		ft, ok := fieldTypes[strings.ToLower(typeTag)]
		if !ok {
			return &SyntaxError{Row: n, Column: 6, Message: fmt.Sprintf("field type %q must be one of: Text, Integer, Choice, DateTime, Pattern, RegEx", typeTag)}
		}
		f.Type = ft
	}
	b.nameRow[f.Name] = n
	b.fields = append(b.fields, f)
	b.fieldRows = append(b.fieldRows, n)
	return nil
}

var checkTypes = map[string]CheckType{
	"distinctcount": CheckDistinctCount,
	"isunique":      CheckIsUnique,
}

func (b *builder) addCheck(n int, row []string) error {
	c := Check{
		Description: cell(row, 1),
		Rule:        cell(row, 3),
	}
	if c.Description == "" {
		return &SyntaxError{Row: n, Column: 2, Message: "check description must not be empty"}
	}
	typeTag := cell(row, 2)
	ct, ok := checkTypes[strings.ToLower(typeTag)]
	if !ok {
		return &SyntaxError{Row: n, Column: 3, Message: fmt.Sprintf("check type %q must be one of: DistinctCount, IsUnique", typeTag)}
	}
	c.Type = ct
	if c.Rule == "" {
		return &SyntaxError{Row: n, Column: 4, Message: "check rule must not be empty"}
	}
	b.checks = append(b.checks, c)
	return nil
}

func (b *builder) finish() (*Spec, error) {
	if !b.hasFormat {
		return nil, &SyntaxError{Message: "missing data format property: Format"}
	}
	if err := b.finishFormat(); err != nil {
		return nil, err
	}
	if len(b.fields) == 0 {
		return nil, &SyntaxError{Message: "ICD must declare at least one field (F row)"}
	}
	if b.format.Format == FormatFixed {
		for i, f := range b.fields {
			if !isFixedWidth(f.Length) {
				return nil, &SyntaxError{Row: b.fieldRows[i], Column: 5, Message: fmt.Sprintf("length of fixed-width field %q must be a single positive width, not %q", f.Name, f.Length.String())}
			}
		}
	}
	return &Spec{Format: b.format, Fields: b.fields, Checks: b.checks}, nil
}

func (b *builder) forbid(key, label string) error {
	if n, ok := b.propRow[key]; ok {
		return &SyntaxError{Row: n, Column: 2, Message: fmt.Sprintf("format %s does not support the %s property", b.format.Format, label)}
	}
	return nil
}

func (b *builder) finishFormat() error {
	f := &b.format
	switch {
	case f.Format.isText():
		if err := b.forbid(propSheet, "sheet"); err != nil {
			return err
		}
		if f.Encoding == "" {
			f.Encoding = "ascii"
		}
		if f.Format == FormatFixed {
			for _, p := range []struct{ key, label string }{
				{propItemDelimiter, "item delimiter"},
				{propQuote, "quote character"},
				{propEscape, "escape character"},
			} {
				if err := b.forbid(p.key, p.label); err != nil {
					return err
				}
			}
			return nil
		}
		// Delimited and CSV.
		if _, ok := b.propRow[propItemDelimiter]; !ok {
			if f.Format == FormatDelimited {
				return &SyntaxError{Message: "format Delimited requires an item delimiter property"}
			}
			f.ItemDelimiter = ','
		}
		if f.ItemDelimiter == 0 {
			return &SyntaxError{Row: b.propRow[propItemDelimiter], Column: 3, Message: "item delimiter must not be empty"}
		}
		if _, ok := b.propRow[propQuote]; !ok {
			f.Quote = '"'
		}
		if _, ok := b.propRow[propEscape]; !ok {
			f.Escape = f.Quote
		}
		if f.Quote == 0 && f.Escape != 0 {
			return &SyntaxError{Row: b.propRow[propEscape], Column: 3, Message: "escape character requires a quote character"}
		}
	case f.Format.isSheet():
		for _, p := range []struct{ key, label string }{
			{propEncoding, "encoding"},
			{propLineDelimiter, "line delimiter"},
			{propItemDelimiter, "item delimiter"},
			{propQuote, "quote character"},
			{propEscape, "escape character"},
		} {
			if err := b.forbid(p.key, p.label); err != nil {
				return err
			}
		}
		if f.Sheet == 0 {
			f.Sheet = 1
		}
	}
	return nil
}

func isFixedWidth(r ranges.Range) bool {
	items := r.Items()
	if len(items) != 1 {
		return false
	}
	it := items[0]
	return it.Lower != nil && it.Upper != nil && *it.Lower == *it.Upper && *it.Lower > 0
}
