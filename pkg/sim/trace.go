package sim

import (
	"bufio"
	"encoding/json"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/ulikunitz/xz"
)

// traceWriter appends JSON lines to the trace file, compressing on the fly
// when the path ends in .xz.
type traceWriter struct {
	file   *os.File
	xz     *xz.Writer
	buf    *bufio.Writer
	closed bool
}

func newTraceWriter(path string) (*traceWriter, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to create trace file %s", path)
	}

	w := &traceWriter{file: file}
	if strings.HasSuffix(path, ".xz") {
		w.xz, err = xz.NewWriter(file)
		if err != nil {
			file.Close()
			return nil, eris.Wrap(err, "failed to initialize xz writer")
		}
		w.buf = bufio.NewWriter(w.xz)
	} else {
		w.buf = bufio.NewWriter(file)
	}
	return w, nil
}

func (w *traceWriter) WriteLine(record any) error {
	data, err := json.Marshal(record)
	if err != nil {
		return eris.Wrap(err, "failed to encode trace record")
	}

	if _, err = w.buf.Write(data); err != nil {
		return eris.Wrap(err, "failed to write trace record")
	}
	return eris.Wrap(w.buf.WriteByte('\n'), "failed to write trace record")
}

// Close flushes the buffered (and compressed) data and closes the file.
// Nothing is guaranteed to be on disk until it returns; its error must not
// be discarded. Calling Close again is a no-op.
func (w *traceWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if err := w.buf.Flush(); err != nil {
		w.file.Close()
		return eris.Wrap(err, "failed to flush trace")
	}
	if w.xz != nil {
		if err := w.xz.Close(); err != nil {
			w.file.Close()
			return eris.Wrap(err, "failed to finalize xz stream")
		}
	}
	return eris.Wrap(w.file.Close(), "failed to close trace file")
}
