package rowio

import (
	"fmt"

	"github.com/rowlint/rowlint/icd"
)

// delimitedReader splits decoded lines on the item delimiter outside quoted
// regions. Quotes are recognized at cell start only; inside a quoted cell
// the escape character followed by the quote yields a literal quote (with
// escape == quote this is the usual doubling rule). Completely blank lines
// are skipped.
type delimitedReader struct {
	lines  *lineScanner
	format icd.DataFormat
}

func (d *delimitedReader) ReadRow() (Row, error) {
	for {
		line, n, err := d.lines.next()
		if err != nil {
			return Row{}, err
		}
		if line == "" {
			continue
		}
		cells, err := splitDelimited(line, n, d.format)
		if err != nil {
			return Row{}, err
		}
		return Row{Number: n, Cells: cells}, nil
	}
}

func splitDelimited(line string, row int64, f icd.DataFormat) ([]string, error) {
	var (
		cells    []string
		cell     []rune
		inQuote  bool
		wasQuote bool // current cell was quoted and is closed
		started  bool // current cell has consumed at least one rune
	)
	endCell := func() {
		cells = append(cells, string(cell))
		cell = cell[:0]
		wasQuote = false
		started = false
	}
	runes := []rune(line)
	i := 0
	for i < len(runes) {
		c := runes[i]
		switch {
		case inQuote:
			if c == f.Escape && i+1 < len(runes) && runes[i+1] == f.Quote {
				cell = append(cell, f.Quote)
				i += 2
				continue
			}
			if c == f.Quote {
				inQuote = false
				wasQuote = true
				i++
				continue
			}
			cell = append(cell, c)
			i++
		case c == f.ItemDelimiter:
			endCell()
			i++
		case wasQuote:
			return nil, &FormatError{Row: row, Message: fmt.Sprintf("closing quote must be followed by item delimiter but found %q", string(c))}
		case f.Quote != 0 && c == f.Quote && !started:
			inQuote = true
			started = true
			i++
		default:
			cell = append(cell, c)
			started = true
			i++
		}
	}
	if inQuote {
		return nil, &FormatError{Row: row, Message: "unterminated quote at end of line"}
	}
	endCell()
	return cells, nil
}
