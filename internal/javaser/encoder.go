// internal/javaser/encoder.go
package javaser

import (
	"fmt"
	"io"
	"math"

	"github.com/ColonelBlimp/textdump/internal/wire"
)

// Encoder writes values in the layout ObjectOutputStream produces for
// the same graph. Strings are shared by value and class descriptors by
// pointer, so repeated values become TC_REFERENCE tokens.
type Encoder struct {
	w       *wire.Writer
	next    int32
	strings map[string]int32
	classes map[*ClassDesc]int32
	header  bool
}

// NewEncoder returns an Encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{
		w:       wire.NewWriter(w),
		next:    BaseWireHandle,
		strings: make(map[string]int32),
		classes: make(map[*ClassDesc]int32),
	}
}

// Encode writes the stream header followed by v.
func Encode(w io.Writer, v any) error {
	e := NewEncoder(w)
	if err := e.WriteObject(v); err != nil {
		return err
	}
	return e.Flush()
}

// WriteObject writes v, preceded by the stream header on first use.
// Supported values are nil, string, []byte, *Object, *Array and *Enum.
func (e *Encoder) WriteObject(v any) error {
	if !e.header {
		e.w.Uint16(StreamMagic)
		e.w.Uint16(StreamVersion)
		e.header = true
	}
	if err := e.writeContent(v); err != nil {
		return err
	}
	return e.w.Err()
}

// Flush writes buffered output.
func (e *Encoder) Flush() error {
	return e.w.Flush()
}

func (e *Encoder) handle() int32 {
	h := e.next
	e.next++
	return h
}

func (e *Encoder) writeReference(h int32) {
	e.w.Uint8(TCReference)
	e.w.Uint32(uint32(h))
}

func (e *Encoder) writeContent(v any) error {
	switch t := v.(type) {
	case nil:
		e.w.Uint8(TCNull)
		return nil
	case string:
		e.writeString(t)
		return nil
	case []byte:
		e.w.Uint8(TCArray)
		e.writeClassDesc(ByteArrayClass)
		e.handle()
		e.w.Uint32(uint32(len(t)))
		e.w.Raw(t)
		return nil
	case *Object:
		return e.writeNewObject(t)
	case *Array:
		return e.writeNewArray(t)
	case *Enum:
		e.w.Uint8(TCEnum)
		e.writeClassDesc(t.Class)
		e.handle()
		e.writeString(t.Name)
		return nil
	}
	return fmt.Errorf("%w: cannot encode %T", ErrUnsupported, v)
}

func (e *Encoder) writeUTF(s string) {
	b := encodeModifiedUTF8(s)
	if len(b) > math.MaxUint16 {
		e.w.Uint64(uint64(len(b)))
	} else {
		e.w.Uint16(uint16(len(b)))
	}
	e.w.Raw(b)
}

func (e *Encoder) writeString(s string) {
	if h, ok := e.strings[s]; ok {
		e.writeReference(h)
		return
	}
	if len(encodeModifiedUTF8(s)) > math.MaxUint16 {
		e.w.Uint8(TCLongString)
	} else {
		e.w.Uint8(TCString)
	}
	e.strings[s] = e.handle()
	e.writeUTF(s)
}

func (e *Encoder) writeClassDesc(cd *ClassDesc) {
	if cd == nil {
		e.w.Uint8(TCNull)
		return
	}
	if h, ok := e.classes[cd]; ok {
		e.writeReference(h)
		return
	}
	e.w.Uint8(TCClassDesc)
	b := encodeModifiedUTF8(cd.Name)
	e.w.Uint16(uint16(len(b)))
	e.w.Raw(b)
	e.w.Uint64(uint64(cd.SerialVersionUID))
	e.classes[cd] = e.handle()
	e.w.Uint8(cd.Flags)
	e.w.Uint16(uint16(len(cd.Fields)))
	for _, f := range cd.Fields {
		e.w.Uint8(f.Type)
		fb := encodeModifiedUTF8(f.Name)
		e.w.Uint16(uint16(len(fb)))
		e.w.Raw(fb)
		if !IsPrimitive(f.Type) {
			e.writeString(f.ClassName)
		}
	}
	e.w.Uint8(TCEndBlockData)
	e.writeClassDesc(cd.Super)
}

func (e *Encoder) writeNewObject(o *Object) error {
	if o.Class == nil {
		return fmt.Errorf("%w: object without class descriptor", ErrUnsupported)
	}
	e.w.Uint8(TCObject)
	e.writeClassDesc(o.Class)
	e.handle()

	for _, c := range o.Class.Hierarchy() {
		for _, f := range c.Fields {
			v, ok := o.lookup(c.Name, f.Name)
			if !ok {
				return fmt.Errorf("%w: missing value for %s.%s", ErrBadValue, c.Name, f.Name)
			}
			if err := e.writeFieldValue(f.Type, v); err != nil {
				return fmt.Errorf("write %s.%s: %w", c.Name, f.Name, err)
			}
		}
		if c.Flags&SCWriteMethod != 0 {
			e.w.Uint8(TCEndBlockData)
		}
	}
	return nil
}

func (o *Object) lookup(class, name string) (any, bool) {
	for _, fv := range o.Values {
		if fv.Class == class && fv.Name == name {
			return fv.Value, true
		}
	}
	return nil, false
}

func (e *Encoder) writeNewArray(a *Array) error {
	if a.Class == nil || len(a.Class.Name) < 2 || a.Class.Name[0] != TypeArray {
		return fmt.Errorf("%w: array without array class descriptor", ErrUnsupported)
	}
	e.w.Uint8(TCArray)
	e.writeClassDesc(a.Class)
	e.handle()
	e.w.Uint32(uint32(len(a.Values)))
	elem := a.Class.Name[1]
	for i, v := range a.Values {
		if err := e.writeFieldValue(elem, v); err != nil {
			return fmt.Errorf("write element %d: %w", i, err)
		}
	}
	return nil
}

func (e *Encoder) writeFieldValue(code byte, v any) error {
	if !IsPrimitive(code) {
		return e.writeContent(v)
	}
	switch code {
	case TypeBoolean:
		b, ok := v.(bool)
		if !ok {
			return fmt.Errorf("%w: %T for boolean", ErrBadValue, v)
		}
		if b {
			e.w.Uint8(1)
		} else {
			e.w.Uint8(0)
		}
		return nil
	case TypeChar:
		s, ok := v.(string)
		r := []rune(s)
		if !ok || len(r) != 1 || r[0] > math.MaxUint16 {
			return fmt.Errorf("%w: %v for char", ErrBadValue, v)
		}
		e.w.Uint16(uint16(r[0]))
		return nil
	case TypeDouble, TypeFloat:
		f, ok := asFloat64(v)
		if !ok {
			return fmt.Errorf("%w: %T for floating point", ErrBadValue, v)
		}
		if code == TypeDouble {
			e.w.Float64(f)
		} else {
			e.w.Float32(float32(f))
		}
		return nil
	}

	n, ok := asInt64(v)
	if !ok {
		return fmt.Errorf("%w: %T for integer", ErrBadValue, v)
	}
	switch code {
	case TypeByte:
		if n < math.MinInt8 || n > math.MaxInt8 {
			return fmt.Errorf("%w: %d overflows byte", ErrBadValue, n)
		}
		e.w.Uint8(uint8(int8(n)))
	case TypeShort:
		if n < math.MinInt16 || n > math.MaxInt16 {
			return fmt.Errorf("%w: %d overflows short", ErrBadValue, n)
		}
		e.w.Uint16(uint16(int16(n)))
	case TypeInt:
		if n < math.MinInt32 || n > math.MaxInt32 {
			return fmt.Errorf("%w: %d overflows int", ErrBadValue, n)
		}
		e.w.Uint32(uint32(int32(n)))
	case TypeLong:
		e.w.Uint64(uint64(n))
	}
	return nil
}

func asInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case int64:
		return t, true
	case int32:
		return int64(t), true
	case int16:
		return int64(t), true
	case int8:
		return int64(t), true
	case int:
		return int64(t), true
	}
	return 0, false
}

func asFloat64(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int64:
		return float64(t), true
	}
	return 0, false
}
