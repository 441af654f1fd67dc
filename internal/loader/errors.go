// internal/loader/errors.go
package loader

import (
	"errors"
	"fmt"
	"io/fs"
)

// Kind classifies a load failure.
type Kind int

const (
	// KindIO covers missing or unreadable files and close failures.
	KindIO Kind = iota
	// KindDecode covers every malformed, truncated or unsupported input.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "IOError"
	case KindDecode:
		return "DecodeError"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

var (
	// ErrIO matches any *Error of KindIO via errors.Is
	ErrIO = errors.New("io error")
	// ErrDecode matches any *Error of KindDecode via errors.Is
	ErrDecode = errors.New("decode error")

	errEmptyInput   = errors.New("empty input")
	errUnrecognized = errors.New("unrecognized format")
)

// Error is the only error type returned by Load.
type Error struct {
	Kind Kind
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e.Kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrIO:
		return e.Kind == KindIO
	case ErrDecode:
		return e.Kind == KindDecode
	}
	return false
}

// classify wraps err in an *Error. Filesystem errors are IO, anything
// else that escaped a decoder is a decode failure.
func classify(path string, err error) *Error {
	var le *Error
	if errors.As(err, &le) {
		return le
	}
	var pe *fs.PathError
	if errors.As(err, &pe) {
		return &Error{Kind: KindIO, Path: path, Err: err}
	}
	return &Error{Kind: KindDecode, Path: path, Err: err}
}
