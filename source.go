package rowlint

import (
	"bytes"
	"errors"
	"io"
	"os"
)

// Source abstracts over polymorphic data inputs. A Source is opened once per
// validation run; readers are single-pass and not restartable, so re-running
// a validation needs a Source whose Open can be called again (files and byte
// slices can, a wrapped io.Reader cannot).
type Source interface {
	Open() (io.ReadCloser, error)
	Name() string
}

// FileSource reads the data from a file path.
func FileSource(path string) Source { return fileSource(path) }

type fileSource string

func (f fileSource) Open() (io.ReadCloser, error) { return os.Open(string(f)) }
func (f fileSource) Name() string                 { return string(f) }

// BytesSource reads the data from an in-memory byte slice; Open may be
// called any number of times.
func BytesSource(name string, data []byte) Source {
	return &bytesSource{name: name, data: data}
}

type bytesSource struct {
	name string
	data []byte
}

func (b *bytesSource) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b.data)), nil
}
func (b *bytesSource) Name() string { return b.name }

// ErrSourceConsumed is returned when a ReaderSource is opened a second time.
var ErrSourceConsumed = errors.New("rowlint: reader source already consumed")

// ReaderSource wraps a plain io.Reader as a one-shot Source.
func ReaderSource(name string, r io.Reader) Source {
	return &readerSource{name: name, r: r}
}

type readerSource struct {
	name string
	r    io.Reader
}

func (rs *readerSource) Open() (io.ReadCloser, error) {
	if rs.r == nil {
		return nil, ErrSourceConsumed
	}
	r := rs.r
	rs.r = nil
	if rc, ok := r.(io.ReadCloser); ok {
		return rc, nil
	}
	return io.NopCloser(r), nil
}
func (rs *readerSource) Name() string { return rs.name }
