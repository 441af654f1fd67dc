// internal/loader/format.go
package loader

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/ColonelBlimp/textdump/internal/txdr"
	"github.com/pierrec/lz4"
)

// Format identifies an input encoding.
type Format int

const (
	FormatUnknown Format = iota
	FormatJava
	FormatNative
	FormatLZ4
)

func (f Format) String() string {
	switch f {
	case FormatJava:
		return "java"
	case FormatNative:
		return "native"
	case FormatLZ4:
		return "lz4"
	}
	return "unknown"
}

var (
	javaMagic   = []byte{0xAC, 0xED}
	nativeMagic = []byte(txdr.Magic)
	lz4Magic    = []byte{0x04, 0x22, 0x4D, 0x18}
)

// maxFrames bounds nested LZ4 frames.
const maxFrames = 2

// Detect identifies the format from the leading bytes of b.
func Detect(b []byte) Format {
	switch {
	case bytes.HasPrefix(b, lz4Magic):
		return FormatLZ4
	case bytes.HasPrefix(b, nativeMagic):
		return FormatNative
	case bytes.HasPrefix(b, javaMagic):
		return FormatJava
	}
	return FormatUnknown
}

// sniff peeks at r and returns the detected format with a reader that
// still yields every byte. LZ4 frames are unwrapped and sniffed again.
func sniff(r io.Reader) (Format, io.Reader, error) {
	for frames := 0; ; frames++ {
		br := bufio.NewReader(r)
		head, err := br.Peek(len(lz4Magic))
		if len(head) == 0 {
			if err == nil || errors.Is(err, io.EOF) {
				return FormatUnknown, nil, errEmptyInput
			}
			return FormatUnknown, nil, err
		}
		switch f := Detect(head); f {
		case FormatJava, FormatNative:
			return f, br, nil
		case FormatLZ4:
			if frames >= maxFrames {
				return FormatUnknown, nil, fmt.Errorf("%w: too many nested lz4 frames", errUnrecognized)
			}
			r = lz4.NewReader(br)
		default:
			return FormatUnknown, nil, fmt.Errorf("%w: leading bytes % x", errUnrecognized, head)
		}
	}
}
