package rowio

import (
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/rowlint/rowlint/icd"
)

func csvFormat() icd.DataFormat {
	return icd.DataFormat{
		Format:        icd.FormatCSV,
		Encoding:      "ascii",
		LineDelimiter: icd.LineAny,
		ItemDelimiter: ',',
		Quote:         '"',
		Escape:        '"',
	}
}

func readAll(t *testing.T, r Reader) []Row {
	t.Helper()
	var rows []Row
	for {
		row, err := r.ReadRow()
		if err == io.EOF {
			return rows
		}
		if err != nil {
			t.Fatalf("ReadRow: %v", err)
		}
		rows = append(rows, row)
	}
}

func mustOpen(t *testing.T, data string, f icd.DataFormat, widths []int, pol FixedPolicy) Reader {
	t.Helper()
	r, err := Open(strings.NewReader(data), f, widths, pol)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return r
}

func TestDelimitedBasic(t *testing.T) {
	r := mustOpen(t, "123456,Miller\nabcdef,Smith\n", csvFormat(), nil, FixedStrict)
	rows := readAll(t, r)
	want := []Row{
		{Number: 1, Cells: []string{"123456", "Miller"}},
		{Number: 2, Cells: []string{"abcdef", "Smith"}},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Fatalf("rows = %v, want %v", rows, want)
	}
}

func TestDelimitedQuoting(t *testing.T) {
	r := mustOpen(t, "\"Miller, John\",2\n\"say \"\"hi\"\"\",3\n", csvFormat(), nil, FixedStrict)
	rows := readAll(t, r)
	if got := rows[0].Cells[0]; got != "Miller, John" {
		t.Errorf("quoted delimiter: got %q", got)
	}
	if got := rows[1].Cells[0]; got != `say "hi"` {
		t.Errorf("doubled escape: got %q", got)
	}
}

func TestDelimitedSeparateEscapeCharacter(t *testing.T) {
	f := csvFormat()
	f.Escape = '\\'
	r := mustOpen(t, "\"a \\\"b\\\" c\",2\n", f, nil, FixedStrict)
	rows := readAll(t, r)
	if got := rows[0].Cells[0]; got != `a "b" c` {
		t.Errorf("escaped quote: got %q", got)
	}
}

func TestDelimitedQuoteDisabled(t *testing.T) {
	f := csvFormat()
	f.Quote = 0
	f.Escape = 0
	r := mustOpen(t, "\"a,b\n", f, nil, FixedStrict)
	rows := readAll(t, r)
	want := []string{"\"a", "b"}
	if !reflect.DeepEqual(rows[0].Cells, want) {
		t.Fatalf("cells = %v, want %v", rows[0].Cells, want)
	}
}

func TestDelimitedUnterminatedQuoteIsFatal(t *testing.T) {
	r := mustOpen(t, "\"never closed,2\n", csvFormat(), nil, FixedStrict)
	_, err := r.ReadRow()
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want *FormatError", err)
	}
	if fe.Row != 1 {
		t.Errorf("error row = %d, want 1", fe.Row)
	}
}

func TestDelimitedTextAfterClosingQuoteIsFatal(t *testing.T) {
	r := mustOpen(t, "\"done\"oops,2\n", csvFormat(), nil, FixedStrict)
	if _, err := r.ReadRow(); err == nil {
		t.Fatal("text after closing quote must be rejected")
	}
}

func TestDelimitedTabDelimiter(t *testing.T) {
	f := csvFormat()
	f.ItemDelimiter = '\t'
	r := mustOpen(t, "a\tb\tc\n", f, nil, FixedStrict)
	rows := readAll(t, r)
	if !reflect.DeepEqual(rows[0].Cells, []string{"a", "b", "c"}) {
		t.Fatalf("cells = %v", rows[0].Cells)
	}
}

func TestDelimitedSkipsBlankLines(t *testing.T) {
	r := mustOpen(t, "a,b\n\nc,d\n", csvFormat(), nil, FixedStrict)
	rows := readAll(t, r)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[1].Number != 3 {
		t.Errorf("second row number = %d, want physical line 3", rows[1].Number)
	}
}

func TestHeaderRowsSkipped(t *testing.T) {
	f := csvFormat()
	f.Header = 1
	r := mustOpen(t, "id,name\n1,Miller\n", f, nil, FixedStrict)
	rows := readAll(t, r)
	if len(rows) != 1 || rows[0].Number != 1 {
		t.Fatalf("rows = %v, want one data row numbered 1", rows)
	}
	if rows[0].Cells[0] != "1" {
		t.Errorf("header row leaked into data: %v", rows[0].Cells)
	}
}

func TestLineDelimiterDetectionAndConsistency(t *testing.T) {
	// CRLF detected from the first lines; a later LF-only line is fatal.
	r := mustOpen(t, "a,b\r\nc,d\r\ne,f\ng,h\r\n", csvFormat(), nil, FixedStrict)
	var err error
	for err == nil {
		_, err = r.ReadRow()
	}
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("mixed terminators: err = %v, want *FormatError", err)
	}
	if fe.Row != 3 {
		t.Errorf("error row = %d, want 3", fe.Row)
	}
}

func TestLineDelimiterExplicitModeEnforced(t *testing.T) {
	f := csvFormat()
	f.LineDelimiter = icd.LineCRLF
	r := mustOpen(t, "a,b\n", f, nil, FixedStrict)
	if _, err := r.ReadRow(); err == nil {
		t.Fatal("LF line under crlf mode must be rejected")
	}
}

func TestLineDelimiterCROnly(t *testing.T) {
	r := mustOpen(t, "a,b\rc,d\r", csvFormat(), nil, FixedStrict)
	rows := readAll(t, r)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
}

func TestASCIIDecodeFailure(t *testing.T) {
	r := mustOpen(t, "caf\xe9,2\n", csvFormat(), nil, FixedStrict)
	if _, err := r.ReadRow(); err == nil {
		t.Fatal("non-ascii byte under ascii encoding must be rejected")
	}
}

func TestLatin1Decoding(t *testing.T) {
	f := csvFormat()
	f.Encoding = "iso-8859-1"
	r := mustOpen(t, "caf\xe9,2\n", f, nil, FixedStrict)
	rows := readAll(t, r)
	if rows[0].Cells[0] != "café" {
		t.Errorf("latin-1 decode: got %q", rows[0].Cells[0])
	}
}

func TestUnknownEncoding(t *testing.T) {
	f := csvFormat()
	f.Encoding = "no-such-encoding"
	if _, err := Open(strings.NewReader("a\n"), f, nil, FixedStrict); err == nil {
		t.Fatal("unknown encoding must be rejected at open time")
	}
}

func fixedFormat() icd.DataFormat {
	return icd.DataFormat{Format: icd.FormatFixed, Encoding: "ascii", LineDelimiter: icd.LineAny}
}

func TestFixedBasic(t *testing.T) {
	r := mustOpen(t, "38000Miller \n38001Smith  \n", fixedFormat(), []int{5, 7}, FixedStrict)
	rows := readAll(t, r)
	want := []Row{
		{Number: 1, Cells: []string{"38000", "Miller "}},
		{Number: 2, Cells: []string{"38001", "Smith  "}},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Fatalf("rows = %v, want %v", rows, want)
	}
}

func TestFixedStrictLengthMismatch(t *testing.T) {
	r := mustOpen(t, "38000Mill\n", fixedFormat(), []int{5, 7}, FixedStrict)
	_, err := r.ReadRow()
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want *FormatError", err)
	}
}

func TestFixedPadPolicy(t *testing.T) {
	r := mustOpen(t, "38000Mill\n38001Miller and more\n", fixedFormat(), []int{5, 7}, FixedPad)
	rows := readAll(t, r)
	if rows[0].Cells[1] != "Mill   " {
		t.Errorf("short line pad: got %q", rows[0].Cells[1])
	}
	if rows[1].Cells[1] != "Miller " {
		t.Errorf("long line truncate: got %q", rows[1].Cells[1])
	}
}
