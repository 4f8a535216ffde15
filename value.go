package ygggo_session

import (
	"fmt"
	"math"
	"strconv"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
	KindBytes
)

var kindNames = [...]string{
	KindNull:    "null",
	KindBool:    "bool",
	KindInt8:    "int8",
	KindInt16:   "int16",
	KindInt32:   "int32",
	KindInt64:   "int64",
	KindUint8:   "uint8",
	KindUint16:  "uint16",
	KindUint32:  "uint32",
	KindUint64:  "uint64",
	KindFloat32: "float32",
	KindFloat64: "float64",
	KindBytes:   "bytes",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is a tagged scalar decoded from a result column.
// The zero Value is Null.
type Value struct {
	kind Kind
	bits uint64 // integers, bools and floats
	b    []byte
}

func NullValue() Value           { return Value{} }
func BoolValue(v bool) Value     { return Value{kind: KindBool, bits: boolBits(v)} }
func Int8Value(v int8) Value     { return Value{kind: KindInt8, bits: uint64(int64(v))} }
func Int16Value(v int16) Value   { return Value{kind: KindInt16, bits: uint64(int64(v))} }
func Int32Value(v int32) Value   { return Value{kind: KindInt32, bits: uint64(int64(v))} }
func Int64Value(v int64) Value   { return Value{kind: KindInt64, bits: uint64(v)} }
func Uint8Value(v uint8) Value   { return Value{kind: KindUint8, bits: uint64(v)} }
func Uint16Value(v uint16) Value { return Value{kind: KindUint16, bits: uint64(v)} }
func Uint32Value(v uint32) Value { return Value{kind: KindUint32, bits: uint64(v)} }
func Uint64Value(v uint64) Value { return Value{kind: KindUint64, bits: v} }
func Float32Value(v float32) Value {
	return Value{kind: KindFloat32, bits: math.Float64bits(float64(v))}
}
func Float64Value(v float64) Value { return Value{kind: KindFloat64, bits: math.Float64bits(v)} }

// BytesValue holds text, blobs and canonical renderings of decimal and
// temporal columns. The slice is not copied.
func BytesValue(v []byte) Value { return Value{kind: KindBytes, b: v} }

func boolBits(v bool) uint64 {
	if v {
		return 1
	}
	return 0
}

func (v Value) Kind() Kind    { return v.kind }
func (v Value) IsNull() bool  { return v.kind == KindNull }
func (v Value) Bytes() []byte { return v.b }

// Bool returns the value of a KindBool.
func (v Value) Bool() (bool, bool) { return v.bits == 1, v.kind == KindBool }

// Int returns any signed integer kind widened to int64.
func (v Value) Int() (int64, bool) {
	switch v.kind {
	case KindInt8, KindInt16, KindInt32, KindInt64:
		return int64(v.bits), true
	}
	return 0, false
}

// Uint returns any unsigned integer kind widened to uint64.
func (v Value) Uint() (uint64, bool) {
	switch v.kind {
	case KindUint8, KindUint16, KindUint32, KindUint64:
		return v.bits, true
	}
	return 0, false
}

// Float returns either float kind widened to float64.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindFloat32, KindFloat64:
		return math.Float64frombits(v.bits), true
	}
	return 0, false
}

// Any returns the native Go value: nil, bool, int8..int64, uint8..uint64,
// float32, float64 or []byte.
func (v Value) Any() any {
	switch v.kind {
	case KindBool:
		return v.bits == 1
	case KindInt8:
		return int8(int64(v.bits))
	case KindInt16:
		return int16(int64(v.bits))
	case KindInt32:
		return int32(int64(v.bits))
	case KindInt64:
		return int64(v.bits)
	case KindUint8:
		return uint8(v.bits)
	case KindUint16:
		return uint16(v.bits)
	case KindUint32:
		return uint32(v.bits)
	case KindUint64:
		return v.bits
	case KindFloat32:
		return float32(math.Float64frombits(v.bits))
	case KindFloat64:
		return math.Float64frombits(v.bits)
	case KindBytes:
		return v.b
	}
	return nil
}

func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "NULL"
	case KindBytes:
		return string(v.b)
	}
	return fmt.Sprint(v.Any())
}

// Column is one named cell of a Row.
type Column struct {
	Name  string
	Value Value
}

// Row keeps columns in server order. Names may repeat.
type Row []Column

// Get returns the first column called name.
func (r Row) Get(name string) (Value, bool) {
	for _, c := range r {
		if c.Name == name {
			return c.Value, true
		}
	}
	return Value{}, false
}

// Names returns the column names in order.
func (r Row) Names() []string {
	out := make([]string, len(r))
	for i, c := range r {
		out[i] = c.Name
	}
	return out
}
