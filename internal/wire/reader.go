// internal/wire/reader.go
// Package wire provides big-endian primitives for the record codecs.
package wire

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

var (
	// ErrTruncated indicates the stream ended before a value was complete
	ErrTruncated = errors.New("truncated stream")
	// ErrTooLarge indicates a length prefix exceeds the configured limit
	ErrTooLarge = errors.New("length exceeds limit")
)

// Reader is a read-only, forward-only view on a byte stream.
// Every read advances the offset used in error messages.
type Reader struct {
	r      io.ByteReader
	src    io.Reader
	offset int64
	buf    [8]byte
}

// NewReader wraps r. A *bufio.Reader is used as-is.
func NewReader(r io.Reader) *Reader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Reader{r: br, src: br}
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int64 {
	return r.offset
}

func (r *Reader) fail(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w at offset %d", ErrTruncated, r.offset)
	}
	return err
}

// Full reads exactly len(p) bytes.
func (r *Reader) Full(p []byte) error {
	n, err := io.ReadFull(r.src, p)
	r.offset += int64(n)
	if err != nil {
		return r.fail(err)
	}
	return nil
}

// Bytes reads n bytes into a new slice.
func (r *Reader) Bytes(n int) ([]byte, error) {
	if n == 0 {
		return []byte{}, nil
	}
	p := make([]byte, n)
	if err := r.Full(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Skip discards n bytes.
func (r *Reader) Skip(n int64) error {
	got, err := io.CopyN(io.Discard, r.src, n)
	r.offset += got
	if err != nil {
		return r.fail(err)
	}
	return nil
}

// Uint8 reads one byte.
func (r *Reader) Uint8() (uint8, error) {
	b, err := r.r.ReadByte()
	if err != nil {
		return 0, r.fail(err)
	}
	r.offset++
	return b, nil
}

// Uint16 reads a big-endian uint16.
func (r *Reader) Uint16() (uint16, error) {
	if err := r.Full(r.buf[:2]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(r.buf[:2]), nil
}

// Uint32 reads a big-endian uint32.
func (r *Reader) Uint32() (uint32, error) {
	if err := r.Full(r.buf[:4]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(r.buf[:4]), nil
}

// Uint64 reads a big-endian uint64.
func (r *Reader) Uint64() (uint64, error) {
	if err := r.Full(r.buf[:8]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(r.buf[:8]), nil
}

// Float64 reads a big-endian IEEE-754 double.
func (r *Reader) Float64() (float64, error) {
	n, err := r.Uint64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(n), nil
}

// Float32 reads a big-endian IEEE-754 single.
func (r *Reader) Float32() (float32, error) {
	n, err := r.Uint32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(n), nil
}

// Uvarint reads an unsigned LEB128 varint.
func (r *Reader) Uvarint() (uint64, error) {
	v, err := binary.ReadUvarint(r)
	if err != nil {
		return 0, r.fail(err)
	}
	return v, nil
}

// Varint reads a zig-zag encoded signed varint.
func (r *Reader) Varint() (int64, error) {
	v, err := binary.ReadVarint(r)
	if err != nil {
		return 0, r.fail(err)
	}
	return v, nil
}

// ReadByte implements io.ByteReader so the varint helpers keep the offset.
func (r *Reader) ReadByte() (byte, error) {
	b, err := r.r.ReadByte()
	if err != nil {
		return 0, err
	}
	r.offset++
	return b, nil
}

// Prefixed reads a uvarint length followed by that many bytes.
// Lengths above limit fail with ErrTooLarge.
func (r *Reader) Prefixed(limit int) ([]byte, error) {
	n, err := r.Uvarint()
	if err != nil {
		return nil, err
	}
	if n > uint64(limit) {
		return nil, fmt.Errorf("%w: %d > %d at offset %d", ErrTooLarge, n, limit, r.offset)
	}
	return r.Bytes(int(n))
}

// AtEOF reports whether the stream has no bytes left.
func (r *Reader) AtEOF() (bool, error) {
	_, err := r.r.ReadByte()
	if errors.Is(err, io.EOF) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	r.offset++
	return false, nil
}
