package icd

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rowlint/rowlint/ranges"
)

// Format enumerates the supported physical container formats.
type Format string

const (
	FormatDelimited Format = "Delimited"
	FormatCSV       Format = "CSV"
	FormatFixed     Format = "Fixed"
	FormatExcel     Format = "Excel"
	FormatODS       Format = "ODS"
)

// LineDelimiter selects the line terminator of a text format. LineAny
// triggers auto-detection on the first lines of the data; once detected the
// terminator must stay consistent for the whole file.
type LineDelimiter int

const (
	LineAny LineDelimiter = iota
	LineCR
	LineLF
	LineCRLF
)

func (d LineDelimiter) String() string {
	switch d {
	case LineCR:
		return "cr"
	case LineLF:
		return "lf"
	case LineCRLF:
		return "crlf"
	default:
		return "any"
	}
}

// DataFormat holds the physical format properties of the data file, filled
// from the ICD's D rows with per-format defaults applied.
type DataFormat struct {
	Format        Format
	Encoding      string
	LineDelimiter LineDelimiter
	// ItemDelimiter separates cells of a delimited line; 0 when the format
	// has none.
	ItemDelimiter rune
	// Quote is the quote character; 0 disables quoting entirely (an
	// explicitly empty "quote character" property selects this).
	Quote rune
	// Escape escapes a quote inside a quoted cell by doubling; it may equal
	// Quote.
	Escape rune
	// AllowedCharacters constrains the code points of every raw cell; the
	// zero Range allows everything.
	AllowedCharacters ranges.Range
	// Header is the number of rows skipped before data; applies to every
	// format.
	Header int
	// Sheet is the 1-based sheet index for spreadsheet formats.
	Sheet int
}

// property keys after normalization (lowercased, separators removed).
const (
	propFormat        = "format"
	propEncoding      = "encoding"
	propLineDelimiter = "linedelimiter"
	propItemDelimiter = "itemdelimiter"
	propQuote         = "quotecharacter"
	propEscape        = "escapecharacter"
	propAllowed       = "allowedcharacters"
	propHeader        = "header"
	propSheet         = "sheet"
)

func normalizeProperty(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '-':
			return -1
		}
		return r
	}, name)
}

func parseFormat(value string) (Format, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "delimited":
		return FormatDelimited, true
	case "csv":
		return FormatCSV, true
	case "fixed":
		return FormatFixed, true
	case "excel", "xlsx":
		return FormatExcel, true
	case "ods":
		return FormatODS, true
	}
	return "", false
}

func parseLineDelimiter(value string) (LineDelimiter, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "any":
		return LineAny, true
	case "cr":
		return LineCR, true
	case "lf":
		return LineLF, true
	case "crlf":
		return LineCRLF, true
	}
	return 0, false
}

// parseCharacter resolves a delimiter-ish property value to a single rune.
// Accepted forms: a literal character, a quoted character ('x' or "x"), a
// decimal or hexadecimal code point, or a symbolic name such as "tab". An
// empty value yields 0, which disables the property where that is legal.
func parseCharacter(value string) (rune, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return 0, nil
	}
	runes := []rune(v)
	if len(runes) == 1 {
		return runes[0], nil
	}
	if len(runes) == 3 && (runes[0] == '\'' || runes[0] == '"') && runes[2] == runes[0] {
		return runes[1], nil
	}
	if code, ok := ranges.Symbolic[strings.ToLower(v)]; ok {
		return rune(code), nil
	}
	if code, err := parseCode(v); err == nil {
		if code < 0 || code > utf8.MaxRune {
			return 0, fmt.Errorf("character code %d is outside the valid range", code)
		}
		return rune(code), nil
	}
	return 0, fmt.Errorf("value %q must be a single character, a character code or a symbolic name", value)
}

func parseCode(v string) (int64, error) {
	r, err := ranges.Parse(v)
	if err != nil {
		return 0, err
	}
	items := r.Items()
	if len(items) != 1 || items[0].Lower == nil || items[0].Upper == nil || *items[0].Lower != *items[0].Upper {
		return 0, fmt.Errorf("value %q is not a single code point", v)
	}
	return *items[0].Lower, nil
}

func (f Format) isText() bool {
	return f == FormatDelimited || f == FormatCSV || f == FormatFixed
}

func (f Format) isSheet() bool {
	return f == FormatExcel || f == FormatODS
}
