// internal/render/render.go
// Package render writes decoded records in the supported output formats.
package render

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/ColonelBlimp/textdump/internal/record"
	"github.com/davecgh/go-spew/spew"
	"github.com/fxamacker/cbor/v2"
	"go.mongodb.org/mongo-driver/bson"
	"gopkg.in/yaml.v3"
)

var (
	// ErrUnknownFormat indicates an unsupported output format name
	ErrUnknownFormat = errors.New("unknown output format")
	// ErrUnknownEncoding indicates an unsupported bytes encoding name
	ErrUnknownEncoding = errors.New("unknown bytes encoding")
)

// Renderer writes one record.
type Renderer interface {
	Render(w io.Writer, rec record.Record) error
}

// Options configures New.
type Options struct {
	// Format is one of text, yaml, cbor, bson or dump.
	Format string
	// BytesEncoding is base64 or hex; it applies to text output.
	BytesEncoding string
}

// New returns the renderer for opts.Format.
func New(opts Options) (Renderer, error) {
	switch opts.Format {
	case "", "text":
		enc, err := bytesEncoder(opts.BytesEncoding)
		if err != nil {
			return nil, err
		}
		return Text{EncodeBytes: enc}, nil
	case "yaml":
		return YAML{}, nil
	case "cbor":
		return CBOR{}, nil
	case "bson":
		return BSON{}, nil
	case "dump":
		return Dump{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, opts.Format)
}

func bytesEncoder(name string) (func([]byte) string, error) {
	switch name {
	case "", "base64":
		return base64.StdEncoding.EncodeToString, nil
	case "hex":
		return hex.EncodeToString, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
}

// Text prints one field per line in output order.
type Text struct {
	EncodeBytes func([]byte) string
}

// Render writes the four lines in a single write.
func (t Text) Render(w io.Writer, rec record.Record) error {
	enc := t.EncodeBytes
	if enc == nil {
		enc = base64.StdEncoding.EncodeToString
	}
	var buf bytes.Buffer
	for _, f := range rec.Fields() {
		if f.Value.Kind() == record.KindBytes {
			buf.WriteString(enc(f.Value.BytesVal()))
		} else {
			buf.WriteString(f.Value.String())
		}
		buf.WriteByte('\n')
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// document is the keyed form used by the structured encoders.
type document struct {
	BackgroundColor any `yaml:"backgroundColor" cbor:"backgroundColor" bson:"backgroundColor"`
	FontStyle       any `yaml:"fontStyle" cbor:"fontStyle" bson:"fontStyle"`
	TextColor       any `yaml:"textColor" cbor:"textColor" bson:"textColor"`
	Thumbnail       any `yaml:"thumbnail" cbor:"thumbnail" bson:"thumbnail"`
}

func toDocument(rec record.Record) document {
	return document{
		BackgroundColor: rec.BackgroundColor.Interface(),
		FontStyle:       rec.FontStyle.Interface(),
		TextColor:       rec.TextColor.Interface(),
		Thumbnail:       rec.Thumbnail.Interface(),
	}
}

// YAML writes a YAML mapping; blobs use the !!binary tag.
type YAML struct{}

func (YAML) Render(w io.Writer, rec record.Record) error {
	doc := toDocument(rec)
	for _, v := range []*any{&doc.BackgroundColor, &doc.FontStyle, &doc.TextColor, &doc.Thumbnail} {
		if b, ok := (*v).([]byte); ok {
			*v = &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!binary", Value: base64.StdEncoding.EncodeToString(b)}
		}
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// CBOR writes an RFC 8949 map.
type CBOR struct{}

func (CBOR) Render(w io.Writer, rec record.Record) error {
	b, err := cbor.Marshal(toDocument(rec))
	if err != nil {
		return fmt.Errorf("encode cbor: %w", err)
	}
	_, err = w.Write(b)
	return err
}

// BSON writes a single BSON document.
type BSON struct{}

func (BSON) Render(w io.Writer, rec record.Record) error {
	b, err := bson.Marshal(toDocument(rec))
	if err != nil {
		return fmt.Errorf("encode bson: %w", err)
	}
	_, err = w.Write(b)
	return err
}

// Dump writes a go-spew structural dump of the field values.
type Dump struct{}

func (Dump) Render(w io.Writer, rec record.Record) error {
	cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, DisableCapacities: true, SortKeys: true}
	var buf bytes.Buffer
	for _, f := range rec.Fields() {
		fmt.Fprintf(&buf, "%s (%s): ", f.Name, f.Value.Kind())
		cfg.Fdump(&buf, f.Value.Interface())
	}
	_, err := w.Write(buf.Bytes())
	return err
}
