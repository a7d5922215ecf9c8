package trace

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"os"
	"sync"
)

// JSONLTraceWriter writes TraceStep records as JSON Lines.
// It is safe for concurrent use by multiple goroutines.
type JSONLTraceWriter struct {
	mu     sync.Mutex
	enc    *json.Encoder
	buf    *bufio.Writer
	closer io.Closer // set only when the writer owns the destination
	closed bool
}

// ErrTraceWriterClosed is returned when WriteStep is called after Close.
var ErrTraceWriterClosed = errors.New("jsonl trace writer is closed")

func newJSONLTraceWriter(w io.Writer, size int, closer io.Closer) *JSONLTraceWriter {
	buf := bufio.NewWriterSize(w, size)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	return &JSONLTraceWriter{enc: enc, buf: buf, closer: closer}
}

// NewJSONLTraceWriter wraps w. Close flushes but never closes w.
func NewJSONLTraceWriter(w io.Writer) *JSONLTraceWriter {
	return newJSONLTraceWriter(w, 64*1024, nil)
}

// NewJSONLTraceWriterFile creates (or truncates) path; Close flushes and closes the file.
func NewJSONLTraceWriterFile(path string) (*JSONLTraceWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return newJSONLTraceWriter(f, 64*1024, f), nil
}

// NewJSONLTraceWriterStdout writes to stdout through a small buffer.
func NewJSONLTraceWriterStdout() *JSONLTraceWriter {
	return newJSONLTraceWriter(os.Stdout, 4*1024, nil)
}

func (w *JSONLTraceWriter) WriteStep(step *TraceStep) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrTraceWriterClosed
	}
	return w.enc.Encode(step)
}

func (w *JSONLTraceWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrTraceWriterClosed
	}
	return w.buf.Flush()
}

func (w *JSONLTraceWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true

	if err := w.buf.Flush(); err != nil {
		if w.closer != nil {
			_ = w.closer.Close()
		}
		return err
	}
	if w.closer != nil {
		return w.closer.Close()
	}
	return nil
}
