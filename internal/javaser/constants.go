// internal/javaser/constants.go
// Package javaser reads and writes the subset of the Java Object
// Serialization Stream Protocol used by flat data classes: objects with
// primitive, string and array fields.
package javaser

import "errors"

// Stream header
const (
	StreamMagic   uint16 = 0xACED
	StreamVersion uint16 = 5
)

// Type tokens
const (
	TCNull           byte = 0x70
	TCReference      byte = 0x71
	TCClassDesc      byte = 0x72
	TCObject         byte = 0x73
	TCString         byte = 0x74
	TCArray          byte = 0x75
	TCClass          byte = 0x76
	TCBlockData      byte = 0x77
	TCEndBlockData   byte = 0x78
	TCReset          byte = 0x79
	TCBlockDataLong  byte = 0x7A
	TCException      byte = 0x7B
	TCLongString     byte = 0x7C
	TCProxyClassDesc byte = 0x7D
	TCEnum           byte = 0x7E
)

// BaseWireHandle is the first handle assigned in a stream.
const BaseWireHandle int32 = 0x7E0000

// Class descriptor flags
const (
	SCWriteMethod    byte = 0x01
	SCSerializable   byte = 0x02
	SCExternalizable byte = 0x04
	SCBlockData      byte = 0x08
	SCEnum           byte = 0x10
)

// Field type codes
const (
	TypeByte    byte = 'B'
	TypeChar    byte = 'C'
	TypeDouble  byte = 'D'
	TypeFloat   byte = 'F'
	TypeInt     byte = 'I'
	TypeLong    byte = 'J'
	TypeShort   byte = 'S'
	TypeBoolean byte = 'Z'
	TypeArray   byte = '['
	TypeObject  byte = 'L'
)

// Limits
const (
	DefaultMaxArrayLen = 16 << 20
	MaxDepth           = 64
)

var (
	ErrBadMagic        = errors.New("not a java serialization stream")
	ErrBadVersion      = errors.New("unsupported stream version")
	ErrUnexpectedToken = errors.New("unexpected token")
	ErrBadHandle       = errors.New("invalid handle reference")
	ErrUnsupported     = errors.New("unsupported construct")
	ErrTooLarge        = errors.New("array too large")
	ErrTooDeep         = errors.New("object graph too deep")
	ErrBadTypeCode     = errors.New("invalid field type code")
	ErrBadUTF          = errors.New("malformed modified UTF-8")
	ErrBadValue        = errors.New("value does not match field type")
)

// IsPrimitive reports whether code is a primitive field type.
func IsPrimitive(code byte) bool {
	switch code {
	case TypeByte, TypeChar, TypeDouble, TypeFloat, TypeInt, TypeLong, TypeShort, TypeBoolean:
		return true
	}
	return false
}

func tokenName(tc byte) string {
	switch tc {
	case TCNull:
		return "TC_NULL"
	case TCReference:
		return "TC_REFERENCE"
	case TCClassDesc:
		return "TC_CLASSDESC"
	case TCObject:
		return "TC_OBJECT"
	case TCString:
		return "TC_STRING"
	case TCArray:
		return "TC_ARRAY"
	case TCClass:
		return "TC_CLASS"
	case TCBlockData:
		return "TC_BLOCKDATA"
	case TCEndBlockData:
		return "TC_ENDBLOCKDATA"
	case TCReset:
		return "TC_RESET"
	case TCBlockDataLong:
		return "TC_BLOCKDATALONG"
	case TCException:
		return "TC_EXCEPTION"
	case TCLongString:
		return "TC_LONGSTRING"
	case TCProxyClassDesc:
		return "TC_PROXYCLASSDESC"
	case TCEnum:
		return "TC_ENUM"
	}
	return "unknown"
}
