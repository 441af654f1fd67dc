// internal/loader/loader.go
// Package loader opens an input file, decodes exactly one record and
// prints it, reporting any failure as a single Exception line.
package loader

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ColonelBlimp/textdump/internal/record"
	"github.com/ColonelBlimp/textdump/internal/recovery"
	"github.com/ColonelBlimp/textdump/internal/render"
	"github.com/ColonelBlimp/textdump/internal/textdata"
	"github.com/ColonelBlimp/textdump/internal/txdr"
	"github.com/spf13/afero"
)

// DefaultInput is read when no path is given.
const DefaultInput = "java.bin"

// Options configures a Loader.
type Options struct {
	ClassName   string
	StrictClass bool
	MaxBlobSize int
	Logger      *slog.Logger
}

// Loader reads records from a filesystem.
type Loader struct {
	fs     afero.Fs
	java   textdata.Codec
	native txdr.Codec
	log    *slog.Logger
}

// New returns a Loader reading from fs. A nil fs means the OS filesystem.
func New(fs afero.Fs, opts Options) *Loader {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	className := opts.ClassName
	if className == "" {
		className = textdata.ClassName
	}
	return &Loader{
		fs: fs,
		java: textdata.Codec{
			ClassName:   className,
			Strict:      opts.StrictClass,
			MaxBlobSize: opts.MaxBlobSize,
		},
		native: txdr.Codec{MaxBlobSize: opts.MaxBlobSize},
		log:    log,
	}
}

// Load opens path, decodes one record and closes the file. The returned
// error, if any, is always an *Error.
func (l *Loader) Load(path string) (rec record.Record, err error) {
	if path == "" {
		path = DefaultInput
	}

	f, err := l.fs.Open(path)
	if err != nil {
		return record.Record{}, &Error{Kind: KindIO, Path: path, Err: err}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			rec = record.Record{}
			err = &Error{Kind: KindIO, Path: path, Err: fmt.Errorf("close: %w", cerr)}
		}
	}()

	err = recovery.Guard(func() error {
		var derr error
		rec, derr = l.decode(f)
		return derr
	})
	if err != nil {
		l.log.Debug("decode failed", "path", path, "error", err)
		return record.Record{}, classify(path, err)
	}
	return rec, nil
}

func (l *Loader) decode(r io.Reader) (record.Record, error) {
	format, r, err := sniff(r)
	if err != nil {
		return record.Record{}, err
	}
	l.log.Debug("detected input format", "format", format)

	switch format {
	case FormatJava:
		return l.java.Decode(r)
	case FormatNative:
		return l.native.Decode(r)
	}
	return record.Record{}, errUnrecognized
}

// Run loads path and renders the record to w. A load failure is written
// as one "Exception: ..." line and is not returned; only write errors are.
func (l *Loader) Run(w io.Writer, path string, r render.Renderer) error {
	rec, err := l.Load(path)
	if err != nil {
		var le *Error
		if errors.As(err, &le) {
			l.log.Debug("load failed", "path", le.Path, "kind", le.Kind)
		}
		_, werr := fmt.Fprintf(w, "Exception: %s\n", oneLine(err.Error()))
		return werr
	}

	l.log.Debug("loaded record", "path", path)
	return r.Render(w, rec)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
