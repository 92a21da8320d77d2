package icd_test

import (
	"strings"
	"testing"

	"github.com/rowlint/rowlint/icd"
)

func rows(rr ...[]string) [][]string { return rr }

func d(name, value string) []string { return []string{"D", name, value} }

func f(cells ...string) []string { return append([]string{"F"}, cells...) }

func minimalCSV(extra ...[]string) [][]string {
	out := [][]string{d("Format", "CSV"), f("customer_id", "", "", "", "Integer", "0:99999")}
	return append(out, extra...)
}

func mustParse(t *testing.T, rr [][]string) *icd.Spec {
	t.Helper()
	spec, err := icd.Parse(rr)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return spec
}

func syntaxErr(t *testing.T, rr [][]string) *icd.SyntaxError {
	t.Helper()
	_, err := icd.Parse(rr)
	if err == nil {
		t.Fatal("Parse should fail")
	}
	se, ok := err.(*icd.SyntaxError)
	if !ok {
		t.Fatalf("error = %T (%v), want *icd.SyntaxError", err, err)
	}
	return se
}

func TestParseCSVDefaults(t *testing.T) {
	spec := mustParse(t, minimalCSV())
	df := spec.Format
	if df.Format != icd.FormatCSV {
		t.Errorf("format = %s", df.Format)
	}
	if df.Encoding != "ascii" {
		t.Errorf("encoding = %q, want ascii", df.Encoding)
	}
	if df.LineDelimiter != icd.LineAny {
		t.Errorf("line delimiter = %s, want any", df.LineDelimiter)
	}
	if df.ItemDelimiter != ',' || df.Quote != '"' || df.Escape != '"' {
		t.Errorf("delimiters = %q %q %q, want , \" \"", df.ItemDelimiter, df.Quote, df.Escape)
	}
	if !df.AllowedCharacters.Unconstrained() {
		t.Error("allowed characters should default to unconstrained")
	}
}

func TestParsePropertyNormalizationAndLastWins(t *testing.T) {
	spec := mustParse(t, rows(
		d("Format", "CSV"),
		d("Item_Delimiter", ";"),
		d("item delimiter", "tab"), // last value wins; symbolic name
		d("LINE-DELIMITER", "crlf"),
		f("x", "", "", "", "Text", ""),
	))
	if spec.Format.ItemDelimiter != '\t' {
		t.Errorf("item delimiter = %q, want tab", spec.Format.ItemDelimiter)
	}
	if spec.Format.LineDelimiter != icd.LineCRLF {
		t.Errorf("line delimiter = %s, want crlf", spec.Format.LineDelimiter)
	}
}

func TestParseCharacterForms(t *testing.T) {
	for value, want := range map[string]rune{"44": ',', "0x3b": ';', "';'": ';', `","`: ',', "|": '|'} {
		spec := mustParse(t, rows(d("Format", "Delimited"), d("Item delimiter", value), f("x", "", "", "", "Text", "")))
		if spec.Format.ItemDelimiter != want {
			t.Errorf("item delimiter %q = %q, want %q", value, spec.Format.ItemDelimiter, want)
		}
	}
}

func TestParseEmptyQuoteDisablesQuoting(t *testing.T) {
	spec := mustParse(t, rows(d("Format", "CSV"), d("Quote character", ""), f("x", "", "", "", "Text", "")))
	if spec.Format.Quote != 0 {
		t.Errorf("quote = %q, want disabled", spec.Format.Quote)
	}
}

func TestParseCommentRowsIgnored(t *testing.T) {
	spec := mustParse(t, rows(
		[]string{"", "just", "a", "comment"},
		[]string{},
		d("Format", "CSV"),
		f("x", "", "", "", "Text", "", "trailing", "comment", "columns"),
	))
	if len(spec.Fields) != 1 {
		t.Fatalf("fields = %d, want 1", len(spec.Fields))
	}
}

func TestParseUnknownMarker(t *testing.T) {
	se := syntaxErr(t, rows(d("Format", "CSV"), []string{"Q", "what"}))
	if se.Row != 2 || se.Column != 1 {
		t.Errorf("error at row %d column %d, want 2/1", se.Row, se.Column)
	}
}

func TestParseMissingFormat(t *testing.T) {
	se := syntaxErr(t, rows(f("x", "", "", "", "Text", "")))
	if !strings.Contains(se.Message, "Format") {
		t.Errorf("message %q should name the missing Format property", se.Message)
	}
}

func TestParseRequiresFields(t *testing.T) {
	syntaxErr(t, rows(d("Format", "CSV")))
}

func TestParseDelimitedRequiresItemDelimiter(t *testing.T) {
	syntaxErr(t, rows(d("Format", "Delimited"), f("x", "", "", "", "Text", "")))
}

func TestParseFixedInvariants(t *testing.T) {
	// Item delimiter is not a fixed-width property.
	se := syntaxErr(t, rows(d("Format", "Fixed"), d("Item delimiter", ","), f("x", "", "", "5", "Text", "")))
	if se.Row != 2 {
		t.Errorf("error row = %d, want 2 (the offending property row)", se.Row)
	}
	// Every field length must be one exact width.
	se = syntaxErr(t, rows(d("Format", "Fixed"), f("x", "", "", "3:5", "Text", "")))
	if se.Row != 2 || se.Column != 5 {
		t.Errorf("error at row %d column %d, want 2/5", se.Row, se.Column)
	}
	spec := mustParse(t, rows(d("Format", "Fixed"), f("x", "", "", "5", "Text", ""), f("y", "", "", "7", "Text", "")))
	if w := spec.FieldWidths(); w[0] != 5 || w[1] != 7 {
		t.Errorf("widths = %v, want [5 7]", w)
	}
}

func TestParseSheetDefaultsAndInvariants(t *testing.T) {
	spec := mustParse(t, rows(d("Format", "Excel"), f("x", "", "", "", "Text", "")))
	if spec.Format.Header != 0 || spec.Format.Sheet != 1 {
		t.Errorf("header/sheet = %d/%d, want 0/1", spec.Format.Header, spec.Format.Sheet)
	}
	spec = mustParse(t, rows(d("Format", "ODS"), d("Header", "2"), d("Sheet", "3"), f("x", "", "", "", "Text", "")))
	if spec.Format.Header != 2 || spec.Format.Sheet != 3 {
		t.Errorf("header/sheet = %d/%d, want 2/3", spec.Format.Header, spec.Format.Sheet)
	}
	syntaxErr(t, rows(d("Format", "Excel"), d("Quote character", "'"), f("x", "", "", "", "Text", "")))
	syntaxErr(t, rows(d("Format", "Excel"), d("Encoding", "utf-8"), f("x", "", "", "", "Text", "")))
	syntaxErr(t, rows(d("Format", "CSV"), d("Sheet", "2"), f("x", "", "", "", "Text", "")))
}

func TestParseFieldRow(t *testing.T) {
	spec := mustParse(t, rows(
		d("Format", "CSV"),
		f("surname", "Miller", "", "1:60", "Text", ""),
		f("gender", "", "X", "", "Choice", "female, male"),
	))
	s := spec.Fields[0]
	if s.Name != "surname" || s.Example != "Miller" || s.EmptyAllowed || s.Type != icd.FieldText {
		t.Errorf("surname field = %+v", s)
	}
	g := spec.Fields[1]
	if !g.EmptyAllowed || g.Type != icd.FieldChoice || g.Rule != "female, male" {
		t.Errorf("gender field = %+v", g)
	}
	if idx := spec.FieldIndex(); idx["gender"] != 1 {
		t.Errorf("field index = %v", idx)
	}
}

func TestParseFieldDefaultsToText(t *testing.T) {
	spec := mustParse(t, rows(d("Format", "CSV"), f("note", "", "", "", "", "")))
	if spec.Fields[0].Type != icd.FieldText {
		t.Errorf("type = %s, want Text", spec.Fields[0].Type)
	}
}

func TestParseFieldErrors(t *testing.T) {
	cases := []struct {
		row    []string
		column int
	}{
		{f("", "", "", "", "Text", ""), 2},
		{f("1bad", "", "", "", "Text", ""), 2},
		{f("has space", "", "", "", "Text", ""), 2},
		{f("x", "", "maybe", "", "Text", ""), 4},
		{f("x", "", "", "nonsense", "Text", ""), 5},
		{f("x", "", "", "", "Float", ""), 6},
	}
	for _, c := range cases {
		se := syntaxErr(t, rows(d("Format", "CSV"), c.row))
		if se.Row != 2 || se.Column != c.column {
			t.Errorf("row %v: error at %d/%d, want 2/%d", c.row, se.Row, se.Column, c.column)
		}
	}
	// Duplicate field names.
	se := syntaxErr(t, rows(d("Format", "CSV"), f("x", "", "", "", "Text", ""), f("x", "", "", "", "Text", "")))
	if se.Row != 3 {
		t.Errorf("duplicate name error row = %d, want 3", se.Row)
	}
}

func TestParseCheckRow(t *testing.T) {
	spec := mustParse(t, minimalCSV(
		[]string{"C", "ids must be unique", "IsUnique", "customer_id"},
		[]string{"C", "few branches", "distinctcount", "customer_id < 5"},
	))
	if len(spec.Checks) != 2 {
		t.Fatalf("checks = %d, want 2", len(spec.Checks))
	}
	if spec.Checks[0].Type != icd.CheckIsUnique || spec.Checks[1].Type != icd.CheckDistinctCount {
		t.Errorf("check types = %v %v", spec.Checks[0].Type, spec.Checks[1].Type)
	}
}

func TestParseCheckErrors(t *testing.T) {
	se := syntaxErr(t, minimalCSV([]string{"C", "bad", "CountDistinct", "x"}))
	if se.Column != 3 {
		t.Errorf("unknown check type error column = %d, want 3", se.Column)
	}
	se = syntaxErr(t, minimalCSV([]string{"C", "", "IsUnique", "customer_id"}))
	if se.Column != 2 {
		t.Errorf("missing description error column = %d, want 2", se.Column)
	}
	se = syntaxErr(t, minimalCSV([]string{"C", "bad", "IsUnique", ""}))
	if se.Column != 4 {
		t.Errorf("missing rule error column = %d, want 4", se.Column)
	}
}

func TestParseUnknownProperty(t *testing.T) {
	se := syntaxErr(t, rows(d("Format", "CSV"), d("Color", "red"), f("x", "", "", "", "Text", "")))
	if se.Row != 2 || se.Column != 2 {
		t.Errorf("error at %d/%d, want 2/2", se.Row, se.Column)
	}
}
