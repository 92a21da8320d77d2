package rowio

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"

	"github.com/rowlint/rowlint/icd"
)

// sniffSize bounds how far line-delimiter auto-detection looks ahead.
const sniffSize = 4096

// lineScanner yields decoded lines and enforces a single consistent line
// terminator for the whole file. With LineAny the terminator is detected
// from the first chunk; afterwards any deviating line is a fatal error.
type lineScanner struct {
	br       *bufio.Reader
	mode     icd.LineDelimiter
	validate func(line string, row int64) error
	skip     int   // header lines still to skip
	row      int64 // data rows handed out so far
	done     bool
}

func newLineScanner(r io.Reader, f icd.DataFormat) (*lineScanner, error) {
	decoded, validate, err := decodeReader(r, f.Encoding)
	if err != nil {
		return nil, err
	}
	br := bufio.NewReader(decoded)
	mode := f.LineDelimiter
	if mode == icd.LineAny {
		mode = sniffLineDelimiter(br)
	}
	return &lineScanner{br: br, mode: mode, validate: validate, skip: f.Header}, nil
}

// sniffLineDelimiter counts candidate terminators in the first chunk and
// picks the most frequent; LF wins ties and terminator-free input.
func sniffLineDelimiter(br *bufio.Reader) icd.LineDelimiter {
	buf, _ := br.Peek(sniffSize)
	s := string(buf)
	crlf := strings.Count(s, "\r\n")
	cr := strings.Count(s, "\r") - crlf
	lf := strings.Count(s, "\n") - crlf
	switch {
	case crlf > cr && crlf > lf:
		return icd.LineCRLF
	case cr > lf:
		return icd.LineCR
	default:
		return icd.LineLF
	}
}

// next returns the following line without its terminator. The final line
// may be unterminated. io.EOF signals the end of input.
func (ls *lineScanner) next() (string, int64, error) {
	for {
		line, err := ls.readLine()
		if err != nil {
			return "", 0, err
		}
		if ls.skip > 0 {
			ls.skip--
			continue
		}
		ls.row++
		if ls.validate != nil {
			if verr := ls.validate(line, ls.row); verr != nil {
				return "", 0, verr
			}
		}
		return line, ls.row, nil
	}
}

func (ls *lineScanner) readLine() (string, error) {
	if ls.done {
		return "", io.EOF
	}
	var b strings.Builder
	for {
		c, _, err := ls.br.ReadRune()
		if err == io.EOF {
			ls.done = true
			if b.Len() == 0 {
				return "", io.EOF
			}
			return b.String(), nil
		}
		if err != nil {
			return "", &FormatError{Row: ls.row + 1, Message: err.Error()}
		}
		switch c {
		case '\r':
			if next, _, err := ls.br.ReadRune(); err == nil {
				if next == '\n' {
					return b.String(), ls.checkTerminator(icd.LineCRLF)
				}
				_ = ls.br.UnreadRune()
			}
			return b.String(), ls.checkTerminator(icd.LineCR)
		case '\n':
			return b.String(), ls.checkTerminator(icd.LineLF)
		default:
			b.WriteRune(c)
		}
	}
}

func (ls *lineScanner) checkTerminator(found icd.LineDelimiter) error {
	if found != ls.mode {
		return &FormatError{
			Row:     ls.row + 1,
			Message: fmt.Sprintf("line delimiter is %s but must be %s consistently for the whole file", found, ls.mode),
		}
	}
	return nil
}

// decodeReader wraps r with the decoder for the named character encoding
// and returns a per-line validation hook for encodings whose decode
// failures surface as replacement characters.
func decodeReader(r io.Reader, name string) (io.Reader, func(string, int64) error, error) {
	switch strings.ToLower(name) {
	case "", "ascii", "us-ascii":
		return r, validateASCII, nil
	case "utf-8", "utf8":
		return r, validateNoReplacement, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return nil, nil, &FormatError{Message: fmt.Sprintf("unknown encoding %q", name)}
	}
	return transform.NewReader(r, enc.NewDecoder()), validateNoReplacement, nil
}

func validateASCII(line string, row int64) error {
	for i := 0; i < len(line); i++ {
		if line[i] > 0x7f {
			return &FormatError{Row: row, Message: fmt.Sprintf("byte 0x%02x cannot be decoded as ascii", line[i])}
		}
	}
	return nil
}

// A replacement character in the decoded text means the raw bytes were not
// valid for the declared encoding.
func validateNoReplacement(line string, row int64) error {
	if strings.ContainsRune(line, '�') {
		return &FormatError{Row: row, Message: "input cannot be decoded with the declared encoding"}
	}
	return nil
}
