// internal/recovery/recovery.go
package recovery

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"strings"
)

// ErrPanic wraps a panic recovered by Guard.
var ErrPanic = errors.New("panic")

// HandlePanic should be deferred at the top of main().
// It reports the panic as an Exception line on stdout, writes the
// stack to stderr and exits with code 1.
func HandlePanic() {
	if r := recover(); r != nil {
		_, _ = fmt.Fprintf(os.Stdout, "Exception: %s\n", oneLine(fmt.Sprint(r)))
		_, _ = fmt.Fprintf(os.Stderr, "FATAL: %v\n\nStack trace:\n%s\n", r, debug.Stack())
		os.Exit(1)
	}
}

// Guard runs fn and converts a panic inside it into an error wrapping
// ErrPanic. Decoders run under Guard so a malformed input cannot take
// down the process.
func Guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = fmt.Errorf("%w: %w", ErrPanic, e)
				return
			}
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	return fn()
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
