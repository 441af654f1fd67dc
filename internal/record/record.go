// internal/record/record.go
// Package record defines the TextData record and its opaque field values.
package record

import (
	"errors"
	"fmt"
)

// Field names in output order.
const (
	FieldBackgroundColor = "backgroundColor"
	FieldFontStyle       = "fontStyle"
	FieldTextColor       = "textColor"
	FieldThumbnail       = "thumbnail"
)

// FieldNames lists the record fields in the order they are printed.
var FieldNames = [4]string{
	FieldBackgroundColor,
	FieldFontStyle,
	FieldTextColor,
	FieldThumbnail,
}

var (
	// ErrUnknownField indicates a field name outside FieldNames
	ErrUnknownField = errors.New("unknown field")
	// ErrUnsupportedValue indicates a decoded value has no Value representation
	ErrUnsupportedValue = errors.New("unsupported value type")
)

// Record is the single decoded TextData value. Fields are forwarded
// to output without validation.
type Record struct {
	BackgroundColor Value
	FontStyle       Value
	TextColor       Value
	Thumbnail       Value
}

// Field pairs a field name with its value.
type Field struct {
	Name  string
	Value Value
}

// Fields returns the four fields in output order.
func (r Record) Fields() []Field {
	return []Field{
		{FieldBackgroundColor, r.BackgroundColor},
		{FieldFontStyle, r.FontStyle},
		{FieldTextColor, r.TextColor},
		{FieldThumbnail, r.Thumbnail},
	}
}

// Get returns the named field.
func (r Record) Get(name string) (Value, error) {
	switch name {
	case FieldBackgroundColor:
		return r.BackgroundColor, nil
	case FieldFontStyle:
		return r.FontStyle, nil
	case FieldTextColor:
		return r.TextColor, nil
	case FieldThumbnail:
		return r.Thumbnail, nil
	}
	return Value{}, fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// Set assigns the named field.
func (r *Record) Set(name string, v Value) error {
	switch name {
	case FieldBackgroundColor:
		r.BackgroundColor = v
	case FieldFontStyle:
		r.FontStyle = v
	case FieldTextColor:
		r.TextColor = v
	case FieldThumbnail:
		r.Thumbnail = v
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return nil
}

// IsField reports whether name is one of FieldNames.
func IsField(name string) bool {
	for _, n := range FieldNames {
		if n == name {
			return true
		}
	}
	return false
}
