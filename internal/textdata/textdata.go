// internal/textdata/textdata.go
// Package textdata maps serialized com.whatsapp.TextData objects to records.
package textdata

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/ColonelBlimp/textdump/internal/javaser"
	"github.com/ColonelBlimp/textdump/internal/record"
)

// ClassName is the Java class the dump tool expects by default.
const ClassName = "com.whatsapp.TextData"

// SerialVersionUID is written by Encode. Decode accepts any value.
const SerialVersionUID int64 = 1

var (
	// ErrNotObject indicates the stream's top-level content is not an object
	ErrNotObject = errors.New("stream does not contain an object")
	// ErrClassMismatch indicates the object has an unexpected class name
	ErrClassMismatch = errors.New("class mismatch")
	// ErrMissingField indicates a required field is absent from the object
	ErrMissingField = errors.New("missing field")
)

// Codec decodes and encodes records as Java serialization streams.
type Codec struct {
	// ClassName is the expected class; empty means ClassName.
	ClassName string
	// Strict rejects objects whose class name differs from ClassName.
	Strict bool
	// MaxBlobSize bounds array and long string lengths; 0 means the javaser default.
	MaxBlobSize int
}

// NewCodec returns a strict codec for com.whatsapp.TextData.
func NewCodec() Codec {
	return Codec{ClassName: ClassName, Strict: true}
}

func (c Codec) className() string {
	if c.ClassName == "" {
		return ClassName
	}
	return c.ClassName
}

// Decode reads one object from r and maps its fields onto a Record.
func (c Codec) Decode(r io.Reader) (record.Record, error) {
	d := javaser.NewDecoder(r)
	d.SetMaxArrayLen(c.MaxBlobSize)
	v, err := d.ReadObject()
	if err != nil {
		return record.Record{}, err
	}
	obj, ok := v.(*javaser.Object)
	if !ok {
		return record.Record{}, fmt.Errorf("%w: got %s", ErrNotObject, describe(v))
	}
	return c.FromObject(obj)
}

// FromObject maps a decoded object onto a Record.
func (c Codec) FromObject(obj *javaser.Object) (record.Record, error) {
	var rec record.Record
	if c.Strict && obj.Class.Name != c.className() {
		return rec, fmt.Errorf("%w: expected %s, got %s", ErrClassMismatch, c.className(), obj.Class.Name)
	}
	for _, name := range record.FieldNames {
		raw, ok := obj.Get(name)
		if !ok {
			return rec, fmt.Errorf("%w: %s.%s", ErrMissingField, obj.Class.Name, name)
		}
		v, err := record.ValueOf(unbox(raw))
		if err != nil {
			return rec, fmt.Errorf("field %s: %w (%s)", name, err, describe(raw))
		}
		if err := rec.Set(name, v); err != nil {
			return rec, err
		}
	}
	return rec, nil
}

// Encode writes rec as a Java serialization stream.
func (c Codec) Encode(w io.Writer, rec record.Record) error {
	return javaser.Encode(w, c.ToObject(rec))
}

// ToObject builds the object ObjectOutputStream would write for rec.
// Fields are ordered primitives first, then references, each by name.
func (c Codec) ToObject(rec record.Record) *javaser.Object {
	cd := &javaser.ClassDesc{
		Name:             c.className(),
		SerialVersionUID: SerialVersionUID,
		Flags:            javaser.SCSerializable,
	}
	values := make(map[string]any, len(record.FieldNames))
	for _, f := range rec.Fields() {
		cd.Fields = append(cd.Fields, fieldDesc(f))
		values[f.Name] = f.Value.Interface()
	}
	sort.SliceStable(cd.Fields, func(i, j int) bool {
		pi, pj := javaser.IsPrimitive(cd.Fields[i].Type), javaser.IsPrimitive(cd.Fields[j].Type)
		if pi != pj {
			return pi
		}
		return cd.Fields[i].Name < cd.Fields[j].Name
	})

	obj := &javaser.Object{Class: cd}
	for _, f := range cd.Fields {
		obj.Values = append(obj.Values, javaser.FieldValue{Class: cd.Name, Name: f.Name, Value: values[f.Name]})
	}
	return obj
}

func fieldDesc(f record.Field) javaser.FieldDesc {
	fd := javaser.FieldDesc{Name: f.Name}
	switch f.Value.Kind() {
	case record.KindInt:
		if n := f.Value.Int(); n >= math.MinInt32 && n <= math.MaxInt32 {
			fd.Type = javaser.TypeInt
		} else {
			fd.Type = javaser.TypeLong
		}
	case record.KindFloat:
		fd.Type = javaser.TypeDouble
	case record.KindBool:
		fd.Type = javaser.TypeBoolean
	case record.KindString:
		fd.Type, fd.ClassName = javaser.TypeObject, "Ljava/lang/String;"
	case record.KindBytes:
		fd.Type, fd.ClassName = javaser.TypeArray, "[B"
	default:
		if f.Name == record.FieldThumbnail {
			fd.Type, fd.ClassName = javaser.TypeArray, "[B"
		} else {
			fd.Type, fd.ClassName = javaser.TypeObject, "Ljava/lang/Object;"
		}
	}
	return fd
}

// boxClasses are the java.lang wrappers whose single value field
// stands in for the object.
var boxClasses = map[string]bool{
	"java.lang.Boolean":   true,
	"java.lang.Byte":      true,
	"java.lang.Character": true,
	"java.lang.Double":    true,
	"java.lang.Float":     true,
	"java.lang.Integer":   true,
	"java.lang.Long":      true,
	"java.lang.Short":     true,
}

// unbox returns the primitive inside a boxed java.lang value, or v unchanged.
func unbox(v any) any {
	obj, ok := v.(*javaser.Object)
	if !ok || obj.Class == nil || !boxClasses[obj.Class.Name] {
		return v
	}
	if inner, ok := obj.Get("value"); ok {
		return inner
	}
	return v
}

func describe(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case *javaser.Object:
		return "object " + t.Class.Name
	case *javaser.Array:
		return "array " + t.Class.Name
	case *javaser.Enum:
		return "enum " + t.Class.Name + "." + t.Name
	case *javaser.ClassDesc:
		return "class " + t.Name
	case string:
		return "string"
	case []byte:
		return "byte array"
	}
	return fmt.Sprintf("%T", v)
}
