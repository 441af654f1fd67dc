// internal/txdr/txdr.go
// Package txdr implements the native, versioned TextData record format.
//
// Layout (version 1):
//
//	magic   "TXDR"
//	version u8
//	count   u8, always 4
//	field   name (uvarint length, bytes), kind (u8), payload
//
// Payloads by kind: null has none, int is a zig-zag varint, float is an
// 8 byte big-endian IEEE-754 double, bool is one byte, string and bytes
// are uvarint length prefixed. Fields may appear in any order.
package txdr

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/ColonelBlimp/textdump/internal/record"
	"github.com/ColonelBlimp/textdump/internal/wire"
)

const (
	Magic   = "TXDR"
	Version = 1

	// DefaultMaxBlobSize bounds string and byte payloads.
	DefaultMaxBlobSize = 16 << 20

	maxNameLen = 64
)

var (
	ErrBadMagic     = errors.New("not a TXDR stream")
	ErrBadVersion   = errors.New("unsupported TXDR version")
	ErrFieldCount   = errors.New("wrong field count")
	ErrUnknownField = errors.New("unknown field")
	ErrDuplicate    = errors.New("duplicate field")
	ErrBadKind      = errors.New("unknown value kind")
	ErrTrailingData = errors.New("trailing data after record")
)

// Codec reads and writes TXDR records.
type Codec struct {
	// MaxBlobSize bounds string and byte payloads; 0 means DefaultMaxBlobSize.
	MaxBlobSize int
}

func (c Codec) limit() int {
	if c.MaxBlobSize <= 0 {
		return DefaultMaxBlobSize
	}
	return c.MaxBlobSize
}

// Decode reads exactly one record and requires the stream to end after it.
func (c Codec) Decode(r io.Reader) (record.Record, error) {
	var rec record.Record
	wr := wire.NewReader(r)

	magic := make([]byte, len(Magic))
	if err := wr.Full(magic); err != nil {
		return rec, fmt.Errorf("read magic: %w", err)
	}
	if !bytes.Equal(magic, []byte(Magic)) {
		return rec, fmt.Errorf("%w: % x", ErrBadMagic, magic)
	}
	version, err := wr.Uint8()
	if err != nil {
		return rec, fmt.Errorf("read version: %w", err)
	}
	if version != Version {
		return rec, fmt.Errorf("%w: %d", ErrBadVersion, version)
	}
	count, err := wr.Uint8()
	if err != nil {
		return rec, fmt.Errorf("read field count: %w", err)
	}
	if int(count) != len(record.FieldNames) {
		return rec, fmt.Errorf("%w: %d, want %d", ErrFieldCount, count, len(record.FieldNames))
	}

	seen := make(map[string]bool, count)
	for i := 0; i < int(count); i++ {
		name, v, err := c.readField(wr)
		if err != nil {
			return rec, fmt.Errorf("read field %d: %w", i, err)
		}
		if seen[name] {
			return rec, fmt.Errorf("%w: %s", ErrDuplicate, name)
		}
		seen[name] = true
		if err := rec.Set(name, v); err != nil {
			return rec, fmt.Errorf("%w: %s", ErrUnknownField, name)
		}
	}

	eof, err := wr.AtEOF()
	if err != nil {
		return rec, fmt.Errorf("check trailing data: %w", err)
	}
	if !eof {
		return rec, fmt.Errorf("%w at offset %d", ErrTrailingData, wr.Offset()-1)
	}
	return rec, nil
}

func (c Codec) readField(wr *wire.Reader) (string, record.Value, error) {
	nb, err := wr.Prefixed(maxNameLen)
	if err != nil {
		return "", record.Value{}, fmt.Errorf("name: %w", err)
	}
	name := string(nb)
	if !record.IsField(name) {
		return "", record.Value{}, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}

	k, err := wr.Uint8()
	if err != nil {
		return "", record.Value{}, fmt.Errorf("%s kind: %w", name, err)
	}
	kind := record.Kind(k)

	var v record.Value
	switch kind {
	case record.KindNull:
		v = record.Null()
	case record.KindInt:
		n, err := wr.Varint()
		if err != nil {
			return "", v, fmt.Errorf("%s: %w", name, err)
		}
		v = record.Int(n)
	case record.KindFloat:
		f, err := wr.Float64()
		if err != nil {
			return "", v, fmt.Errorf("%s: %w", name, err)
		}
		v = record.Float(f)
	case record.KindBool:
		b, err := wr.Uint8()
		if err != nil {
			return "", v, fmt.Errorf("%s: %w", name, err)
		}
		if b > 1 {
			return "", v, fmt.Errorf("%w: bool byte 0x%02x for %s", ErrBadKind, b, name)
		}
		v = record.Bool(b == 1)
	case record.KindString, record.KindBytes:
		p, err := wr.Prefixed(c.limit())
		if err != nil {
			return "", v, fmt.Errorf("%s: %w", name, err)
		}
		if kind == record.KindString {
			v = record.String(string(p))
		} else {
			v = record.Bytes(p)
		}
	default:
		return "", v, fmt.Errorf("%w: %d for %s", ErrBadKind, k, name)
	}
	return name, v, nil
}

// Encode writes rec in the current version, fields in output order.
func (c Codec) Encode(w io.Writer, rec record.Record) error {
	ww := wire.NewWriter(w)
	ww.Raw([]byte(Magic))
	ww.Uint8(Version)
	ww.Uint8(uint8(len(record.FieldNames)))
	for _, f := range rec.Fields() {
		ww.Prefixed([]byte(f.Name))
		ww.Uint8(uint8(f.Value.Kind()))
		switch f.Value.Kind() {
		case record.KindInt:
			ww.Varint(f.Value.Int())
		case record.KindFloat:
			ww.Float64(f.Value.Float())
		case record.KindBool:
			if f.Value.Bool() {
				ww.Uint8(1)
			} else {
				ww.Uint8(0)
			}
		case record.KindString:
			ww.Prefixed([]byte(f.Value.Str()))
		case record.KindBytes:
			ww.Prefixed(f.Value.BytesVal())
		}
	}
	return ww.Flush()
}
