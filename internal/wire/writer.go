// internal/wire/writer.go
package wire

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
)

// Writer buffers big-endian output. The first error sticks and is
// returned by Err and Flush; later writes become no-ops.
type Writer struct {
	w   *bufio.Writer
	err error
	buf [binary.MaxVarintLen64]byte
}

// NewWriter wraps w in a buffered writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Err returns the first error encountered.
func (w *Writer) Err() error {
	return w.err
}

// Write implements io.Writer.
func (w *Writer) Write(p []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	n, err := w.w.Write(p)
	w.err = err
	return n, err
}

// Raw writes p unchanged.
func (w *Writer) Raw(p []byte) {
	_, _ = w.Write(p)
}

// Uint8 writes one byte.
func (w *Writer) Uint8(v uint8) {
	if w.err != nil {
		return
	}
	w.err = w.w.WriteByte(v)
}

// Uint16 writes a big-endian uint16.
func (w *Writer) Uint16(v uint16) {
	binary.BigEndian.PutUint16(w.buf[:2], v)
	w.Raw(w.buf[:2])
}

// Uint32 writes a big-endian uint32.
func (w *Writer) Uint32(v uint32) {
	binary.BigEndian.PutUint32(w.buf[:4], v)
	w.Raw(w.buf[:4])
}

// Uint64 writes a big-endian uint64.
func (w *Writer) Uint64(v uint64) {
	binary.BigEndian.PutUint64(w.buf[:8], v)
	w.Raw(w.buf[:8])
}

// Float64 writes a big-endian IEEE-754 double.
func (w *Writer) Float64(v float64) {
	w.Uint64(math.Float64bits(v))
}

// Float32 writes a big-endian IEEE-754 single.
func (w *Writer) Float32(v float32) {
	w.Uint32(math.Float32bits(v))
}

// Uvarint writes an unsigned LEB128 varint.
func (w *Writer) Uvarint(v uint64) {
	n := binary.PutUvarint(w.buf[:], v)
	w.Raw(w.buf[:n])
}

// Varint writes a zig-zag encoded signed varint.
func (w *Writer) Varint(v int64) {
	n := binary.PutVarint(w.buf[:], v)
	w.Raw(w.buf[:n])
}

// Prefixed writes a uvarint length followed by p.
func (w *Writer) Prefixed(p []byte) {
	w.Uvarint(uint64(len(p)))
	w.Raw(p)
}

// Flush writes any buffered data to the underlying writer.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	w.err = w.w.Flush()
	return w.err
}
