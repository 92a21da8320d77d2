// Package sheet reads spreadsheet containers (Excel-like workbooks and
// Open-Document spreadsheets) into the row stream of internal/rowio. Cell
// values arrive as their displayed text so the field type system always
// validates strings.
package sheet

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/rowlint/rowlint/icd"
	"github.com/rowlint/rowlint/internal/rowio"
)

// OpenXLSX reads the workbook and positions a lazy row iterator on the
// 1-based sheet configured in f, skipping f.Header rows. Rows shorter than
// fieldCount are right-padded with empty cells: a spreadsheet cannot
// distinguish a trailing blank cell from a missing one.
func OpenXLSX(r io.Reader, f icd.DataFormat, fieldCount int) (rowio.Reader, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &rowio.FormatError{Message: fmt.Sprintf("cannot read workbook: %v", err)}
	}
	sheets := wb.GetSheetList()
	if f.Sheet > len(sheets) {
		_ = wb.Close()
		return nil, &rowio.FormatError{Message: fmt.Sprintf("sheet %d does not exist; workbook has %d sheet(s)", f.Sheet, len(sheets))}
	}
	rows, err := wb.Rows(sheets[f.Sheet-1])
	if err != nil {
		_ = wb.Close()
		return nil, &rowio.FormatError{Message: fmt.Sprintf("cannot read sheet %q: %v", sheets[f.Sheet-1], err)}
	}
	return &xlsxReader{wb: wb, rows: rows, skip: f.Header, width: fieldCount}, nil
}

type xlsxReader struct {
	wb    *excelize.File
	rows  *excelize.Rows
	skip  int
	width int
	n     int64
}

func (x *xlsxReader) ReadRow() (rowio.Row, error) {
	for x.rows.Next() {
		if x.skip > 0 {
			x.skip--
			continue
		}
		cells, err := x.rows.Columns()
		if err != nil {
			_ = x.Close()
			return rowio.Row{}, &rowio.FormatError{Row: x.n + 1, Message: err.Error()}
		}
		x.n++
		return rowio.Row{Number: x.n, Cells: padCells(cells, x.width)}, nil
	}
	err := x.rows.Error()
	_ = x.Close()
	if err != nil {
		return rowio.Row{}, &rowio.FormatError{Message: err.Error()}
	}
	return rowio.Row{}, io.EOF
}

// Close releases the workbook; safe to call more than once.
func (x *xlsxReader) Close() error {
	_ = x.rows.Close()
	return x.wb.Close()
}

// padCells right-pads a short row with empty cells up to width. Over-long
// rows pass through unchanged; the orchestrator reports those.
func padCells(cells []string, width int) []string {
	for len(cells) < width {
		cells = append(cells, "")
	}
	return cells
}
