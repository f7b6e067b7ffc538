// This file lays out the element-type enum for raster volumes, playing the
// same role DVID's own dvid.DataType played for key/value instance element
// layout (dvid/datavalues.go in the teacher), but restricted to the fused
// set of types the core kernels are specialized over.
package raster

import (
	"encoding/json"
	"fmt"
)

// ElemType names the concrete numeric type backing a raster volume's voxels.
type ElemType uint8

const (
	U8 ElemType = iota
	U16
	U32
	I32
	F32
	F64
)

var elemTypeBytes = map[ElemType]int64{
	U8:  1,
	U16: 2,
	U32: 4,
	I32: 4,
	F32: 4,
	F64: 8,
}

var elemTypeNames = map[ElemType]string{
	U8:  "u8",
	U16: "u16",
	U32: "u32",
	I32: "i32",
	F32: "f32",
	F64: "f64",
}

var namesToElemType = map[string]ElemType{
	"u8":  U8,
	"u16": U16,
	"u32": U32,
	"i32": I32,
	"f32": F32,
	"f64": F64,
}

// Bytes returns the size in bytes of one element of this type.
func (t ElemType) Bytes() int64 {
	n, ok := elemTypeBytes[t]
	if !ok {
		return 0
	}
	return n
}

// IsLabelType reports whether this element type may back a label volume,
// per spec: label volumes are i32 or u32.
func (t ElemType) IsLabelType() bool {
	return t == I32 || t == U32
}

func (t ElemType) String() string {
	name, ok := elemTypeNames[t]
	if !ok {
		return fmt.Sprintf("ElemType(%d)", uint8(t))
	}
	return name
}

// ParseElemType converts a name like "u16" or "f32" into its ElemType.
func ParseElemType(name string) (ElemType, error) {
	t, ok := namesToElemType[name]
	if !ok {
		return 0, fmt.Errorf("unrecognized element type %q", name)
	}
	return t, nil
}

// MarshalJSON implements the json.Marshaler interface, following the
// teacher's DataValue.MarshalJSON convention of emitting the type name
// rather than the numeric enum value.
func (t ElemType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (t *ElemType) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return err
	}
	parsed, err := ParseElemType(name)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
