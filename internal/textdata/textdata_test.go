package textdata

import (
	"bytes"
	"testing"

	"github.com/ColonelBlimp/textdump/internal/javaser"
	"github.com/ColonelBlimp/textdump/internal/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() record.Record {
	return record.Record{
		BackgroundColor: record.Int(0xFFFFFF),
		FontStyle:       record.Int(1),
		TextColor:       record.Int(0x000000),
		Thumbnail:       record.Bytes([]byte{}),
	}
}

func assertRecordEqual(t *testing.T, want, got record.Record) {
	t.Helper()
	wf, gf := want.Fields(), got.Fields()
	for i := range wf {
		assert.True(t, wf[i].Value.Equal(gf[i].Value), "%s: want %v (%s), got %v (%s)",
			wf[i].Name, wf[i].Value, wf[i].Value.Kind(), gf[i].Value, gf[i].Value.Kind())
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		rec  record.Record
	}{
		{"scenario", sample()},
		{"thumbnail bytes", record.Record{
			BackgroundColor: record.Int(-1),
			FontStyle:       record.Int(3),
			TextColor:       record.Int(0x25D366),
			Thumbnail:       record.Bytes([]byte{0xFF, 0xD8, 0xFF, 0xE0}),
		}},
		{"null thumbnail", record.Record{
			BackgroundColor: record.Int(0),
			FontStyle:       record.Int(0),
			TextColor:       record.Int(0),
			Thumbnail:       record.Null(),
		}},
		{"mixed kinds", record.Record{
			BackgroundColor: record.String("#FFFFFF"),
			FontStyle:       record.Int(1 << 40),
			TextColor:       record.Float(0.5),
			Thumbnail:       record.Bool(true),
		}},
	}

	c := NewCodec()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, c.Encode(&buf, tt.rec))
			got, err := c.Decode(&buf)
			require.NoError(t, err)
			assertRecordEqual(t, tt.rec, got)
		})
	}
}

func TestToObject_FieldOrder(t *testing.T) {
	rec := sample()
	rec.BackgroundColor = record.String("white")
	obj := NewCodec().ToObject(rec)

	var names []string
	for _, f := range obj.Class.Fields {
		names = append(names, f.Name)
	}
	// primitives sorted by name, then references sorted by name
	assert.Equal(t, []string{"fontStyle", "textColor", "backgroundColor", "thumbnail"}, names)
	assert.Equal(t, javaser.TypeInt, obj.Class.Fields[0].Type)
	assert.Equal(t, "Ljava/lang/String;", obj.Class.Fields[2].ClassName)
	assert.Equal(t, "[B", obj.Class.Fields[3].ClassName)
	assert.Equal(t, ClassName, obj.Class.Name)
}

func TestToObject_WideIntegersUseLong(t *testing.T) {
	rec := sample()
	rec.FontStyle = record.Int(1 << 33)
	obj := NewCodec().ToObject(rec)
	for _, f := range obj.Class.Fields {
		if f.Name == record.FieldFontStyle {
			assert.Equal(t, javaser.TypeLong, f.Type)
		}
	}
}

func TestDecode_ClassMismatch(t *testing.T) {
	var buf bytes.Buffer
	other := Codec{ClassName: "com.whatsapp.MediaData"}
	require.NoError(t, other.Encode(&buf, sample()))
	data := buf.Bytes()

	_, err := NewCodec().Decode(bytes.NewReader(data))
	assert.ErrorIs(t, err, ErrClassMismatch)

	lenient := Codec{Strict: false}
	got, err := lenient.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assertRecordEqual(t, sample(), got)
}

func TestDecode_MissingField(t *testing.T) {
	cd := &javaser.ClassDesc{
		Name:   ClassName,
		Flags:  javaser.SCSerializable,
		Fields: []javaser.FieldDesc{{Type: javaser.TypeInt, Name: "backgroundColor"}},
	}
	var buf bytes.Buffer
	require.NoError(t, javaser.Encode(&buf, &javaser.Object{
		Class:  cd,
		Values: []javaser.FieldValue{{Class: ClassName, Name: "backgroundColor", Value: int64(1)}},
	}))

	_, err := NewCodec().Decode(&buf)
	assert.ErrorIs(t, err, ErrMissingField)
}

func TestDecode_NotAnObject(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, javaser.Encode(&buf, "just a string"))
	_, err := NewCodec().Decode(&buf)
	assert.ErrorIs(t, err, ErrNotObject)
}

func TestDecode_NestedObjectUnsupported(t *testing.T) {
	inner := &javaser.ClassDesc{Name: "android.graphics.Bitmap", Flags: javaser.SCSerializable}
	rec := sample()
	obj := NewCodec().ToObject(rec)
	for i, f := range obj.Class.Fields {
		if f.Name == record.FieldThumbnail {
			obj.Class.Fields[i].Type = javaser.TypeObject
			obj.Class.Fields[i].ClassName = "Landroid/graphics/Bitmap;"
		}
	}
	for i, v := range obj.Values {
		if v.Name == record.FieldThumbnail {
			obj.Values[i].Value = &javaser.Object{Class: inner}
		}
	}

	var buf bytes.Buffer
	require.NoError(t, javaser.Encode(&buf, obj))
	_, err := NewCodec().Decode(&buf)
	assert.ErrorIs(t, err, record.ErrUnsupportedValue)
	assert.Contains(t, err.Error(), "android.graphics.Bitmap")
}

func TestDecode_BlobLimit(t *testing.T) {
	rec := sample()
	rec.Thumbnail = record.Bytes(make([]byte, 128))
	var buf bytes.Buffer
	require.NoError(t, NewCodec().Encode(&buf, rec))

	c := NewCodec()
	c.MaxBlobSize = 64
	_, err := c.Decode(&buf)
	assert.ErrorIs(t, err, javaser.ErrTooLarge)
}

// boxedTextData declares the colour and style fields as java.lang.Integer.
func boxedTextData(values ...int64) *javaser.Object {
	number := &javaser.ClassDesc{Name: "java.lang.Number", SerialVersionUID: -8742448824652078965, Flags: javaser.SCSerializable}
	integer := &javaser.ClassDesc{
		Name:             "java.lang.Integer",
		SerialVersionUID: 1360826667806852920,
		Flags:            javaser.SCSerializable,
		Fields:           []javaser.FieldDesc{{Type: javaser.TypeInt, Name: "value"}},
		Super:            number,
	}
	cd := &javaser.ClassDesc{
		Name:             ClassName,
		SerialVersionUID: SerialVersionUID,
		Flags:            javaser.SCSerializable,
		Fields: []javaser.FieldDesc{
			{Type: javaser.TypeObject, Name: record.FieldBackgroundColor, ClassName: "Ljava/lang/Integer;"},
			{Type: javaser.TypeObject, Name: record.FieldFontStyle, ClassName: "Ljava/lang/Integer;"},
			{Type: javaser.TypeObject, Name: record.FieldTextColor, ClassName: "Ljava/lang/Integer;"},
			{Type: javaser.TypeArray, Name: record.FieldThumbnail, ClassName: "[B"},
		},
	}
	obj := &javaser.Object{Class: cd}
	for i, f := range cd.Fields[:3] {
		boxed := &javaser.Object{Class: integer, Values: []javaser.FieldValue{{Class: integer.Name, Name: "value", Value: values[i]}}}
		obj.Values = append(obj.Values, javaser.FieldValue{Class: cd.Name, Name: f.Name, Value: boxed})
	}
	obj.Values = append(obj.Values, javaser.FieldValue{Class: cd.Name, Name: record.FieldThumbnail, Value: []byte{}})
	return obj
}

func TestDecode_BoxedIntegers(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, javaser.Encode(&buf, boxedTextData(0xFFFFFF, 1, 0)))

	got, err := NewCodec().Decode(&buf)
	require.NoError(t, err)
	assertRecordEqual(t, sample(), got)

	var lines []string
	for _, f := range got.Fields()[:3] {
		lines = append(lines, f.Value.String())
	}
	assert.Equal(t, []string{"16777215", "1", "0"}, lines)
}

func TestUnbox(t *testing.T) {
	box := func(class string, v any) *javaser.Object {
		cd := &javaser.ClassDesc{Name: class, Flags: javaser.SCSerializable}
		return &javaser.Object{Class: cd, Values: []javaser.FieldValue{{Class: class, Name: "value", Value: v}}}
	}

	tests := []struct {
		name string
		in   any
		want any
	}{
		{"integer", box("java.lang.Integer", int64(7)), int64(7)},
		{"long", box("java.lang.Long", int64(1) << 40), int64(1) << 40},
		{"short", box("java.lang.Short", int64(-3)), int64(-3)},
		{"byte", box("java.lang.Byte", int64(9)), int64(9)},
		{"boolean", box("java.lang.Boolean", true), true},
		{"character", box("java.lang.Character", "x"), "x"},
		{"float", box("java.lang.Float", 0.5), 0.5},
		{"double", box("java.lang.Double", 2.25), 2.25},
		{"primitive untouched", int64(3), int64(3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, unbox(tt.in))
		})
	}

	other := box("com.example.Color", int64(1))
	assert.Same(t, other, unbox(other))
}
