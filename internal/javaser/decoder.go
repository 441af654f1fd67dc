// internal/javaser/decoder.go
package javaser

import (
	"fmt"
	"io"

	"github.com/ColonelBlimp/textdump/internal/wire"
)

// Decoder reads one serialization stream. Handles are shared across
// all objects read from the same Decoder, as in ObjectInputStream.
type Decoder struct {
	r           *wire.Reader
	handles     []any
	maxArrayLen int
	depth       int
	header      bool
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{
		r:           wire.NewReader(r),
		maxArrayLen: DefaultMaxArrayLen,
	}
}

// SetMaxArrayLen bounds the element count of any array in the stream.
func (d *Decoder) SetMaxArrayLen(n int) {
	if n > 0 {
		d.maxArrayLen = n
	}
}

// Offset returns the number of bytes consumed.
func (d *Decoder) Offset() int64 {
	return d.r.Offset()
}

// ReadHeader consumes and checks the stream magic and version.
func (d *Decoder) ReadHeader() error {
	magic, err := d.r.Uint16()
	if err != nil {
		return fmt.Errorf("read stream magic: %w", err)
	}
	if magic != StreamMagic {
		return fmt.Errorf("%w: magic 0x%04x", ErrBadMagic, magic)
	}
	version, err := d.r.Uint16()
	if err != nil {
		return fmt.Errorf("read stream version: %w", err)
	}
	if version != StreamVersion {
		return fmt.Errorf("%w: %d", ErrBadVersion, version)
	}
	d.header = true
	return nil
}

// ReadObject reads the next content element. The header is read first
// if it has not been consumed yet.
func (d *Decoder) ReadObject() (any, error) {
	if !d.header {
		if err := d.ReadHeader(); err != nil {
			return nil, err
		}
	}
	tc, err := d.r.Uint8()
	if err != nil {
		return nil, fmt.Errorf("read token: %w", err)
	}
	return d.readContent(tc)
}

// Decode reads the header and exactly one object from r.
func Decode(r io.Reader) (any, error) {
	return NewDecoder(r).ReadObject()
}

func (d *Decoder) newHandle(v any) int {
	d.handles = append(d.handles, v)
	return len(d.handles) - 1
}

func (d *Decoder) setHandle(idx int, v any) {
	d.handles[idx] = v
}

func (d *Decoder) readHandle() (any, error) {
	h, err := d.r.Uint32()
	if err != nil {
		return nil, fmt.Errorf("read handle: %w", err)
	}
	idx := int64(int32(h)) - int64(BaseWireHandle)
	if idx < 0 || idx >= int64(len(d.handles)) {
		return nil, fmt.Errorf("%w: 0x%08x", ErrBadHandle, h)
	}
	return d.handles[idx], nil
}

func (d *Decoder) enter() error {
	d.depth++
	if d.depth > MaxDepth {
		return fmt.Errorf("%w: more than %d levels", ErrTooDeep, MaxDepth)
	}
	return nil
}

func (d *Decoder) leave() {
	d.depth--
}

func (d *Decoder) readContent(tc byte) (any, error) {
	if err := d.enter(); err != nil {
		return nil, err
	}
	defer d.leave()

	switch tc {
	case TCNull:
		return nil, nil
	case TCReference:
		return d.readHandle()
	case TCObject:
		return d.readNewObject()
	case TCString:
		return d.readNewString(false)
	case TCLongString:
		return d.readNewString(true)
	case TCArray:
		return d.readNewArray()
	case TCEnum:
		return d.readNewEnum()
	case TCClassDesc:
		return d.readNewClassDesc()
	case TCClass:
		cd, err := d.readClassDesc()
		if err != nil {
			return nil, err
		}
		d.newHandle(cd)
		return cd, nil
	case TCReset:
		d.handles = d.handles[:0]
		next, err := d.r.Uint8()
		if err != nil {
			return nil, fmt.Errorf("read token: %w", err)
		}
		return d.readContent(next)
	case TCProxyClassDesc, TCException:
		return nil, fmt.Errorf("%w: %s at offset %d", ErrUnsupported, tokenName(tc), d.r.Offset()-1)
	}
	return nil, fmt.Errorf("%w: %s (0x%02x) at offset %d", ErrUnexpectedToken, tokenName(tc), tc, d.r.Offset()-1)
}

func (d *Decoder) readUTF(long bool) (string, error) {
	var n uint64
	if long {
		v, err := d.r.Uint64()
		if err != nil {
			return "", fmt.Errorf("read string length: %w", err)
		}
		if v > uint64(d.maxArrayLen) {
			return "", fmt.Errorf("%w: string of %d bytes", ErrTooLarge, v)
		}
		n = v
	} else {
		v, err := d.r.Uint16()
		if err != nil {
			return "", fmt.Errorf("read string length: %w", err)
		}
		n = uint64(v)
	}
	b, err := d.r.Bytes(int(n))
	if err != nil {
		return "", fmt.Errorf("read string: %w", err)
	}
	return decodeModifiedUTF8(b)
}

func (d *Decoder) readNewString(long bool) (string, error) {
	s, err := d.readUTF(long)
	if err != nil {
		return "", err
	}
	d.newHandle(s)
	return s, nil
}

// readString reads a string object: new string or a back reference.
func (d *Decoder) readString() (string, error) {
	tc, err := d.r.Uint8()
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	switch tc {
	case TCString:
		return d.readNewString(false)
	case TCLongString:
		return d.readNewString(true)
	case TCReference:
		v, err := d.readHandle()
		if err != nil {
			return "", err
		}
		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("%w: reference to %T where string expected", ErrUnexpectedToken, v)
		}
		return s, nil
	}
	return "", fmt.Errorf("%w: %s where string expected", ErrUnexpectedToken, tokenName(tc))
}

// readClassDesc reads a classDesc production, which may be null.
func (d *Decoder) readClassDesc() (*ClassDesc, error) {
	tc, err := d.r.Uint8()
	if err != nil {
		return nil, fmt.Errorf("read class descriptor: %w", err)
	}
	switch tc {
	case TCNull:
		return nil, nil
	case TCClassDesc:
		return d.readNewClassDesc()
	case TCReference:
		v, err := d.readHandle()
		if err != nil {
			return nil, err
		}
		cd, ok := v.(*ClassDesc)
		if !ok {
			return nil, fmt.Errorf("%w: reference to %T where class descriptor expected", ErrUnexpectedToken, v)
		}
		return cd, nil
	case TCProxyClassDesc:
		return nil, fmt.Errorf("%w: proxy class descriptor", ErrUnsupported)
	}
	return nil, fmt.Errorf("%w: %s where class descriptor expected", ErrUnexpectedToken, tokenName(tc))
}

func (d *Decoder) readNewClassDesc() (*ClassDesc, error) {
	name, err := d.readUTF(false)
	if err != nil {
		return nil, fmt.Errorf("read class name: %w", err)
	}
	suid, err := d.r.Uint64()
	if err != nil {
		return nil, fmt.Errorf("read serialVersionUID of %s: %w", name, err)
	}
	cd := &ClassDesc{Name: name, SerialVersionUID: int64(suid)}
	d.newHandle(cd)

	if cd.Flags, err = d.r.Uint8(); err != nil {
		return nil, fmt.Errorf("read flags of %s: %w", name, err)
	}
	if cd.Flags&SCExternalizable != 0 {
		return nil, fmt.Errorf("%w: externalizable class %s", ErrUnsupported, name)
	}

	count, err := d.r.Uint16()
	if err != nil {
		return nil, fmt.Errorf("read field count of %s: %w", name, err)
	}
	cd.Fields = make([]FieldDesc, 0, count)
	for i := 0; i < int(count); i++ {
		f, err := d.readFieldDesc()
		if err != nil {
			return nil, fmt.Errorf("read field %d of %s: %w", i, name, err)
		}
		cd.Fields = append(cd.Fields, f)
	}

	if err := d.skipAnnotation(); err != nil {
		return nil, fmt.Errorf("read class annotation of %s: %w", name, err)
	}
	if cd.Super, err = d.readSuperClassDesc(cd); err != nil {
		return nil, fmt.Errorf("read superclass of %s: %w", name, err)
	}
	return cd, nil
}

// readSuperClassDesc reads the superclass of cd. Superclass chains count
// against MaxDepth and may not lead back to cd.
func (d *Decoder) readSuperClassDesc(cd *ClassDesc) (*ClassDesc, error) {
	if err := d.enter(); err != nil {
		return nil, err
	}
	defer d.leave()

	super, err := d.readClassDesc()
	if err != nil {
		return nil, err
	}
	n := 0
	for c := super; c != nil; c = c.Super {
		if c == cd {
			return nil, fmt.Errorf("%w: class %s is its own superclass", ErrUnexpectedToken, cd.Name)
		}
		if n++; n > MaxDepth {
			return nil, fmt.Errorf("%w: superclass chain of %s", ErrTooDeep, cd.Name)
		}
	}
	return super, nil
}

func (d *Decoder) readFieldDesc() (FieldDesc, error) {
	code, err := d.r.Uint8()
	if err != nil {
		return FieldDesc{}, err
	}
	name, err := d.readUTF(false)
	if err != nil {
		return FieldDesc{}, err
	}
	f := FieldDesc{Type: code, Name: name}
	switch {
	case IsPrimitive(code):
	case code == TypeArray || code == TypeObject:
		if f.ClassName, err = d.readString(); err != nil {
			return FieldDesc{}, err
		}
	default:
		return FieldDesc{}, fmt.Errorf("%w: %q for field %s", ErrBadTypeCode, code, name)
	}
	return f, nil
}

// skipAnnotation discards optional block data and objects up to TC_ENDBLOCKDATA.
func (d *Decoder) skipAnnotation() error {
	for {
		tc, err := d.r.Uint8()
		if err != nil {
			return err
		}
		switch tc {
		case TCEndBlockData:
			return nil
		case TCBlockData:
			n, err := d.r.Uint8()
			if err != nil {
				return err
			}
			if err := d.r.Skip(int64(n)); err != nil {
				return err
			}
		case TCBlockDataLong:
			n, err := d.r.Uint32()
			if err != nil {
				return err
			}
			if err := d.r.Skip(int64(n)); err != nil {
				return err
			}
		default:
			if _, err := d.readContent(tc); err != nil {
				return err
			}
		}
	}
}

func (d *Decoder) readNewObject() (*Object, error) {
	cd, err := d.readClassDesc()
	if err != nil {
		return nil, err
	}
	if cd == nil {
		return nil, fmt.Errorf("%w: object with null class descriptor", ErrUnexpectedToken)
	}
	obj := &Object{Class: cd}
	d.newHandle(obj)

	for _, c := range cd.Hierarchy() {
		if c.Flags&SCSerializable == 0 {
			return nil, fmt.Errorf("%w: class %s is not serializable", ErrUnsupported, c.Name)
		}
		for _, f := range c.Fields {
			v, err := d.readFieldValue(f)
			if err != nil {
				return nil, fmt.Errorf("read %s.%s: %w", c.Name, f.Name, err)
			}
			obj.Values = append(obj.Values, FieldValue{Class: c.Name, Name: f.Name, Value: v})
		}
		if c.Flags&SCWriteMethod != 0 {
			if err := d.skipAnnotation(); err != nil {
				return nil, fmt.Errorf("read writeObject data of %s: %w", c.Name, err)
			}
		}
	}
	return obj, nil
}

func (d *Decoder) readFieldValue(f FieldDesc) (any, error) {
	if IsPrimitive(f.Type) {
		return d.readPrimitive(f.Type)
	}
	tc, err := d.r.Uint8()
	if err != nil {
		return nil, err
	}
	return d.readContent(tc)
}

func (d *Decoder) readPrimitive(code byte) (any, error) {
	switch code {
	case TypeByte:
		b, err := d.r.Uint8()
		return int64(int8(b)), err
	case TypeChar:
		c, err := d.r.Uint16()
		return string(rune(c)), err
	case TypeDouble:
		return d.r.Float64()
	case TypeFloat:
		f, err := d.r.Float32()
		return float64(f), err
	case TypeInt:
		i, err := d.r.Uint32()
		return int64(int32(i)), err
	case TypeLong:
		l, err := d.r.Uint64()
		return int64(l), err
	case TypeShort:
		s, err := d.r.Uint16()
		return int64(int16(s)), err
	case TypeBoolean:
		b, err := d.r.Uint8()
		return b != 0, err
	}
	return nil, fmt.Errorf("%w: %q", ErrBadTypeCode, code)
}

func (d *Decoder) readNewArray() (any, error) {
	cd, err := d.readClassDesc()
	if err != nil {
		return nil, err
	}
	if cd == nil || len(cd.Name) < 2 || cd.Name[0] != TypeArray {
		return nil, fmt.Errorf("%w: array with non-array class descriptor", ErrUnexpectedToken)
	}
	idx := d.newHandle(nil)

	n, err := d.r.Uint32()
	if err != nil {
		return nil, fmt.Errorf("read array length: %w", err)
	}
	size := int64(int32(n))
	if size < 0 || size > int64(d.maxArrayLen) {
		return nil, fmt.Errorf("%w: %d elements of %s", ErrTooLarge, size, cd.Name)
	}

	elem := cd.Name[1]
	if elem == TypeByte {
		b, err := d.r.Bytes(int(size))
		if err != nil {
			return nil, fmt.Errorf("read byte array: %w", err)
		}
		d.setHandle(idx, b)
		return b, nil
	}

	arr := &Array{Class: cd, Values: make([]any, 0, min(size, 1024))}
	d.setHandle(idx, arr)
	for i := int64(0); i < size; i++ {
		var v any
		if IsPrimitive(elem) {
			v, err = d.readPrimitive(elem)
		} else {
			v, err = d.readFieldValue(FieldDesc{Type: elem})
		}
		if err != nil {
			return nil, fmt.Errorf("read element %d of %s: %w", i, cd.Name, err)
		}
		arr.Values = append(arr.Values, v)
	}
	return arr, nil
}

func (d *Decoder) readNewEnum() (*Enum, error) {
	cd, err := d.readClassDesc()
	if err != nil {
		return nil, err
	}
	e := &Enum{Class: cd}
	d.newHandle(e)
	if e.Name, err = d.readString(); err != nil {
		return nil, fmt.Errorf("read enum constant: %w", err)
	}
	return e, nil
}
