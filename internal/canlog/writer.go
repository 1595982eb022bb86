package canlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/canviz/candbc/internal/can"
)

// Writer emits frames as "time,bus,id,data" CSV rows that Load can read
// back. Times are written as seconds relative to the first frame.
type Writer struct {
	cw    *csv.Writer
	close io.Closer
	base  time.Time
	wrote bool
}

// NewWriter wraps w. If w is also an io.Closer, Close closes it.
func NewWriter(w io.Writer) (*Writer, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"time", "bus", "id", "data"}); err != nil {
		return nil, fmt.Errorf("canlog: write header: %w", err)
	}
	lw := &Writer{cw: cw}
	if c, ok := w.(io.Closer); ok {
		lw.close = c
	}
	return lw, nil
}

// Create opens path for writing and returns a Writer over it.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("canlog: create %s: %w", path, err)
	}
	w, err := NewWriter(f)
	if err != nil {
		return nil, combineErrors(err, f.Close())
	}
	return w, nil
}

// Write appends one frame.
func (w *Writer) Write(f can.Frame) error {
	if !w.wrote {
		w.base = f.Timestamp
		w.wrote = true
	}
	rel := f.Timestamp.Sub(w.base).Seconds()
	rec := []string{
		strconv.FormatFloat(rel, 'f', 6, 64),
		strconv.Itoa(int(f.Bus)),
		"0x" + strconv.FormatUint(uint64(f.ID), 16),
		f.HexData(),
	}
	if err := w.cw.Write(rec); err != nil {
		return fmt.Errorf("canlog: write row: %w", err)
	}
	return nil
}

// Close flushes buffered rows and closes the underlying writer if owned.
func (w *Writer) Close() error {
	w.cw.Flush()
	err := w.cw.Error()
	if w.close != nil {
		err = combineErrors(err, w.close.Close())
	}
	return err
}
