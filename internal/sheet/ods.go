package sheet

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rowlint/rowlint/icd"
	"github.com/rowlint/rowlint/internal/rowio"
)

// OpenODS reads an Open-Document spreadsheet. The container is a zip
// archive; rows are decoded lazily from the content.xml stream of the
// 1-based sheet configured in f, skipping f.Header rows. Rows shorter than
// fieldCount are right-padded with empty cells, like OpenXLSX.
func OpenODS(r io.Reader, f icd.DataFormat, fieldCount int) (rowio.Reader, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &rowio.FormatError{Message: err.Error()}
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &rowio.FormatError{Message: fmt.Sprintf("cannot read ODS container: %v", err)}
	}
	var content io.ReadCloser
	for _, zf := range zr.File {
		if zf.Name == "content.xml" {
			content, err = zf.Open()
			if err != nil {
				return nil, &rowio.FormatError{Message: err.Error()}
			}
			break
		}
	}
	if content == nil {
		return nil, &rowio.FormatError{Message: "ODS container has no content.xml"}
	}
	dec := xml.NewDecoder(content)
	if err := seekTable(dec, f.Sheet); err != nil {
		_ = content.Close()
		return nil, err
	}
	return &odsReader{dec: dec, content: content, skip: f.Header, width: fieldCount}, nil
}

// seekTable advances the decoder past the opening tag of the n-th
// table:table element (1-based).
func seekTable(dec *xml.Decoder, n int) error {
	seen := 0
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return &rowio.FormatError{Message: fmt.Sprintf("sheet %d does not exist; document has %d sheet(s)", n, seen)}
		}
		if err != nil {
			return &rowio.FormatError{Message: err.Error()}
		}
		if se, ok := tok.(xml.StartElement); ok && se.Name.Local == "table" {
			seen++
			if seen == n {
				return nil
			}
			if err := dec.Skip(); err != nil {
				return &rowio.FormatError{Message: err.Error()}
			}
		}
	}
}

type odsReader struct {
	dec     *xml.Decoder
	content io.Closer
	skip    int
	width   int
	n       int64
	done    bool
}

func (o *odsReader) ReadRow() (rowio.Row, error) {
	for !o.done {
		tok, err := o.dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			o.done = true
			return rowio.Row{}, &rowio.FormatError{Row: o.n + 1, Message: err.Error()}
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "table-row" {
				continue
			}
			cells, err := o.readCells()
			if err != nil {
				o.done = true
				return rowio.Row{}, err
			}
			if o.skip > 0 {
				o.skip--
				continue
			}
			o.n++
			return rowio.Row{Number: o.n, Cells: padCells(cells, o.width)}, nil
		case xml.EndElement:
			if t.Name.Local == "table" {
				o.done = true
			}
		}
	}
	_ = o.Close()
	return rowio.Row{}, io.EOF
}

// Close releases the content stream; safe to call more than once.
func (o *odsReader) Close() error {
	o.done = true
	return o.content.Close()
}

// readCells consumes one table-row element. A trailing run of repeated
// empty cells is dropped; ODS writers pad every row to the sheet's column
// maximum, and ReadRow pads back up to the declared field count.
func (o *odsReader) readCells() ([]string, error) {
	cells := []string{}
	pendingEmpty := 0
	for {
		tok, err := o.dec.Token()
		if err != nil {
			return nil, &rowio.FormatError{Row: o.n + 1, Message: fmt.Sprintf("truncated table row: %v", err)}
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "table-cell" && t.Name.Local != "covered-table-cell" {
				continue
			}
			text, repeat, err := o.readCell(t)
			if err != nil {
				return nil, err
			}
			if text == "" {
				pendingEmpty += repeat
				continue
			}
			for i := 0; i < pendingEmpty; i++ {
				cells = append(cells, "")
			}
			pendingEmpty = 0
			for i := 0; i < repeat; i++ {
				cells = append(cells, text)
			}
		case xml.EndElement:
			if t.Name.Local == "table-row" {
				return cells, nil
			}
		}
	}
}

// readCell consumes one cell element and returns its displayed text and
// repeat count. The display text of the text:p children wins; the typed
// office:*-value attribute is the fallback.
func (o *odsReader) readCell(start xml.StartElement) (string, int, error) {
	repeat := 1
	fallback := ""
	for _, a := range start.Attr {
		switch a.Name.Local {
		case "number-columns-repeated":
			if n, err := strconv.Atoi(a.Value); err == nil && n > 0 {
				repeat = n
			}
		case "value", "date-value", "time-value", "boolean-value":
			if fallback == "" {
				fallback = a.Value
			}
		}
	}
	var paragraphs []string
	depth := 0
	var text strings.Builder
	for {
		tok, err := o.dec.Token()
		if err != nil {
			return "", 0, &rowio.FormatError{Row: o.n + 1, Message: fmt.Sprintf("truncated table cell: %v", err)}
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "p" {
				depth++
				text.Reset()
			}
		case xml.CharData:
			if depth > 0 {
				text.Write(t)
			}
		case xml.EndElement:
			switch {
			case t.Name.Local == "p" && depth > 0:
				depth--
				paragraphs = append(paragraphs, text.String())
			case t.Name.Local == start.Name.Local:
				value := strings.Join(paragraphs, "\n")
				if value == "" {
					value = fallback
				}
				return value, repeat, nil
			}
		}
	}
}
