// internal/javaser/types.go
package javaser

import "slices"

// ClassDesc describes a serializable class.
type ClassDesc struct {
	Name             string
	SerialVersionUID int64
	Flags            byte
	Fields           []FieldDesc
	Super            *ClassDesc
}

// FieldDesc describes one serialized field. ClassName is the JVM type
// signature for array and object fields, e.g. "[B" or "Ljava/lang/String;".
type FieldDesc struct {
	Type      byte
	Name      string
	ClassName string
}

// Hierarchy returns the class chain from the top-most superclass down to c.
// A cyclic chain is cut at the first repeated descriptor.
func (c *ClassDesc) Hierarchy() []*ClassDesc {
	var chain []*ClassDesc
	for cd := c; cd != nil && !slices.Contains(chain, cd); cd = cd.Super {
		chain = append(chain, cd)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// FieldValue is one decoded field of an object.
type FieldValue struct {
	Class string
	Name  string
	Value any
}

// Object is a decoded serializable instance. Values holds fields in
// stream order: superclass fields first.
//
// Field values are int64 (byte, short, int, long), float64 (float,
// double), bool, string (also char), []byte, nil, *Object, *Array,
// *Enum or *ClassDesc.
type Object struct {
	Class  *ClassDesc
	Values []FieldValue
}

// Get returns the value of the named field. When a subclass shadows a
// superclass field the subclass value wins.
func (o *Object) Get(name string) (any, bool) {
	for i := len(o.Values) - 1; i >= 0; i-- {
		if o.Values[i].Name == name {
			return o.Values[i].Value, true
		}
	}
	return nil, false
}

// Array is a decoded non-byte array. Byte arrays decode to []byte.
type Array struct {
	Class  *ClassDesc
	Values []any
}

// Enum is a decoded enum constant.
type Enum struct {
	Class *ClassDesc
	Name  string
}

// ByteArrayClass is the descriptor the JDK writes for byte[].
var ByteArrayClass = &ClassDesc{
	Name:             "[B",
	SerialVersionUID: -5984413125824719648,
	Flags:            SCSerializable,
}
