package rowio

import (
	"fmt"
	"strings"
)

// fixedReader cuts each line into cells using the exact field widths, in
// field order. Width accounting is in characters, not bytes.
type fixedReader struct {
	lines  *lineScanner
	widths []int
	pol    FixedPolicy
}

func (f *fixedReader) ReadRow() (Row, error) {
	line, n, err := f.lines.next()
	if err != nil {
		return Row{}, err
	}
	total := 0
	for _, w := range f.widths {
		total += w
	}
	runes := []rune(line)
	if len(runes) != total {
		if f.pol == FixedStrict {
			return Row{}, &FormatError{
				Row:     n,
				Message: fmt.Sprintf("line has %d characters but fixed-width fields require exactly %d", len(runes), total),
			}
		}
		if len(runes) < total {
			runes = append(runes, []rune(strings.Repeat(" ", total-len(runes)))...)
		} else {
			runes = runes[:total]
		}
	}
	cells := make([]string, len(f.widths))
	pos := 0
	for i, w := range f.widths {
		cells[i] = string(runes[pos : pos+w])
		pos += w
	}
	return Row{Number: n, Cells: cells}, nil
}
