// Package rowio turns raw text data sources into a uniform, lazy stream of
// rows. It covers the delimited and fixed-width formats; spreadsheet
// containers live in internal/sheet and produce the same Row stream.
package rowio

import (
	"fmt"
	"io"

	"github.com/rowlint/rowlint/icd"
)

// Row is one ordered sequence of raw cell strings. Number is 1-based and
// counts data rows only (header rows are skipped before numbering starts).
type Row struct {
	Number int64
	Cells  []string
}

// Reader produces rows one at a time, forward-only, terminated by io.EOF.
// Readers are not restartable; reopen the source to re-read.
type Reader interface {
	ReadRow() (Row, error)
}

// FixedPolicy decides what happens to a fixed-width line whose length does
// not equal the sum of the declared field widths.
type FixedPolicy int

const (
	// FixedStrict rejects the file with a FormatError naming the row.
	FixedStrict FixedPolicy = iota
	// FixedPad right-pads short lines with spaces and truncates long ones.
	FixedPad
)

// FormatError is a fatal defect of the physical data format: undecodable
// bytes, a delimiter or quote mismatch, or inconsistent line terminators.
// Row is 0 when the defect is not tied to a single row.
type FormatError struct {
	Row     int64
	Message string
}

func (e *FormatError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("data format error in row %d: %s", e.Row, e.Message)
	}
	return "data format error: " + e.Message
}

// Open builds the reader for a text data format. widths carries the exact
// field widths for FormatFixed and is ignored otherwise.
func Open(r io.Reader, f icd.DataFormat, widths []int, pol FixedPolicy) (Reader, error) {
	lines, err := newLineScanner(r, f)
	if err != nil {
		return nil, err
	}
	switch f.Format {
	case icd.FormatDelimited, icd.FormatCSV:
		return &delimitedReader{lines: lines, format: f}, nil
	case icd.FormatFixed:
		return &fixedReader{lines: lines, widths: widths, pol: pol}, nil
	default:
		return nil, &FormatError{Message: fmt.Sprintf("format %s is not a text format", f.Format)}
	}
}
