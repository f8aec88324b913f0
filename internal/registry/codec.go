// internal/registry/codec.go
package registry

import (
	"fmt"
	"math"
)

// Value is one decoded register value.
type Value struct {
	Type DataType
	Num  float64 // numeric types, after scale
	Bool bool    // Bool type only
}

// Scalar returns the value as a plain bool or float64.
func (v Value) Scalar() any {
	if v.Type == Bool {
		return v.Bool
	}
	return v.Num
}

// DecodeError reports a data-shape problem for a single register.
// It never escalates past the affected register.
type DecodeError struct {
	Register string
	Msg      string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %s", e.Register, e.Msg)
}

// EncodeError reports a value that cannot be represented on the wire.
type EncodeError struct {
	Register string
	Msg      string
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode %s: %s", e.Register, e.Msg)
}

// Decode turns the raw word(s) read at a descriptor's address into a typed
// value. 32-bit types consume exactly two words, high word first:
// value = (high<<16) | low. The declared scale is the only adjustment.
func Decode(d Descriptor, words []uint16) (Value, error) {
	if len(words) != int(d.Span()) {
		return Value{}, &DecodeError{
			Register: d.Name,
			Msg:      fmt.Sprintf("want %d words, got %d", d.Span(), len(words)),
		}
	}

	switch d.Type {
	case Bool:
		return Value{Type: Bool, Bool: words[0] != 0}, nil
	case Int16:
		raw := int16(words[0])
		return Value{Type: Int16, Num: float64(raw) * d.Scale}, nil
	case UInt16:
		return Value{Type: UInt16, Num: float64(words[0]) * d.Scale}, nil
	case Int32:
		raw := int32(uint32(words[0])<<16 | uint32(words[1]))
		return Value{Type: Int32, Num: float64(raw) * d.Scale}, nil
	case UInt32:
		raw := uint32(words[0])<<16 | uint32(words[1])
		return Value{Type: UInt32, Num: float64(raw) * d.Scale}, nil
	}

	return Value{}, &DecodeError{Register: d.Name, Msg: "unsupported data type"}
}

// Encode is the inverse mapping for writable descriptors: the value is
// divided by the scale, rounded, range-checked against the type width and
// split into words (high first for 32-bit types).
func Encode(d Descriptor, v Value) ([]uint16, error) {
	if d.Access != ReadWrite {
		return nil, &EncodeError{Register: d.Name, Msg: "register is read-only"}
	}
	if v.Type != d.Type {
		return nil, &EncodeError{
			Register: d.Name,
			Msg:      fmt.Sprintf("value type %s does not match register type %s", v.Type, d.Type),
		}
	}

	if d.Type == Bool {
		var w uint16
		if v.Bool {
			w = 1
		}
		return []uint16{w}, nil
	}

	raw := math.Round(v.Num / d.Scale)
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return nil, &EncodeError{Register: d.Name, Msg: "value is not finite"}
	}

	switch d.Type {
	case Int16:
		if raw < math.MinInt16 || raw > math.MaxInt16 {
			return nil, &EncodeError{Register: d.Name, Msg: rangeMsg(raw, "int16")}
		}
		return []uint16{uint16(int16(raw))}, nil
	case UInt16:
		if raw < 0 || raw > math.MaxUint16 {
			return nil, &EncodeError{Register: d.Name, Msg: rangeMsg(raw, "uint16")}
		}
		return []uint16{uint16(raw)}, nil
	case Int32:
		if raw < math.MinInt32 || raw > math.MaxInt32 {
			return nil, &EncodeError{Register: d.Name, Msg: rangeMsg(raw, "int32")}
		}
		u := uint32(int32(raw))
		return []uint16{uint16(u >> 16), uint16(u)}, nil
	case UInt32:
		if raw < 0 || raw > math.MaxUint32 {
			return nil, &EncodeError{Register: d.Name, Msg: rangeMsg(raw, "uint32")}
		}
		u := uint32(raw)
		return []uint16{uint16(u >> 16), uint16(u)}, nil
	}

	return nil, &EncodeError{Register: d.Name, Msg: "unsupported data type"}
}

// NumValue builds a numeric Value matching the descriptor's type.
func NumValue(d Descriptor, n float64) Value {
	return Value{Type: d.Type, Num: n}
}

// BoolValue builds a Bool value.
func BoolValue(b bool) Value {
	return Value{Type: Bool, Bool: b}
}

func rangeMsg(raw float64, width string) string {
	return fmt.Sprintf("scaled value %g overflows %s", raw, width)
}
