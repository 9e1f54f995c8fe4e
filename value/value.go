// Package value implements the runtime tagged-value scheme every VM
// instruction consumes and produces (spec.md §3, §4.1).
//
// Grounded on original_source/lib/pvm.h's pvm_val: a 64-bit word whose
// low 3 bits tag one of eleven kinds. Tags 0-3 there pack a sign- or
// zero-extended magnitude plus a width-minus-one directly into the
// word (PVM_VAL_INT/PVM_VAL_INT_SIZE); everything else is a tagged
// pointer to a box (PVM_VAL_BOX/PVM_VAL_BOX_TAG). Go cannot union a tag
// into a pointer's low bits the way C does, so Value is a small struct
// instead: a Kind discriminator plus an inline int64 arm for Int/UInt
// (the spec's "must not require heap allocation" requirement — a Value
// is passed by copy, so make_int/make_uint never touch the heap), and
// an `any` box arm for every other kind, mirroring PVM_VAL_BOX_TAG's
// second-level dispatch. Long/ULong are boxed here even though they
// are plain integers, because spec.md §3.1 only exempts widths <= 32
// from boxing.
package value

import (
	"fmt"

	"github.com/gmofishsauce/bkl/types"
)

// Kind is the value's discriminator. It is total over every Value this
// package can construct and is checked in O(1) (a single field
// comparison), matching spec.md §9's "is_X and kind_of are O(1) and
// total" requirement.
type Kind uint8

const (
	KindNull Kind = iota // zero value: the single invalid sentinel
	KindInt
	KindUInt
	KindLong
	KindULong
	KindString
	KindArray
	KindStruct
	KindType
	KindOffset
	KindClosure
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInt:
		return "int"
	case KindUInt:
		return "uint"
	case KindLong:
		return "long"
	case KindULong:
		return "ulong"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindStruct:
		return "struct"
	case KindType:
		return "type"
	case KindOffset:
		return "offset"
	case KindClosure:
		return "closure"
	default:
		return "invalid"
	}
}

// Value is the tagged representation. The zero Value is Null.
type Value struct {
	kind   Kind
	width  int   // Int/UInt: 1..32
	inline int64 // Int/UInt: the sign- or zero-extended magnitude
	box    any   // everything else
}

// InvalidWidthError reports a width outside a kind's permitted range.
type InvalidWidthError struct {
	Kind  Kind
	Width int
}

func (e *InvalidWidthError) Error() string {
	return fmt.Sprintf("invalid width %d for %s", e.Width, e.Kind)
}

// Null is the single invalid sentinel value, distinguishable from every
// valid value in constant time: its Kind is always KindNull, and no
// constructor below ever produces KindNull.
var Null = Value{}

func (v Value) IsNull() bool    { return v.kind == KindNull }
func (v Value) Kind() Kind      { return v.kind }
func (v Value) IsInt() bool     { return v.kind == KindInt }
func (v Value) IsUInt() bool    { return v.kind == KindUInt }
func (v Value) IsLong() bool    { return v.kind == KindLong }
func (v Value) IsULong() bool   { return v.kind == KindULong }
func (v Value) IsString() bool  { return v.kind == KindString }
func (v Value) IsArray() bool   { return v.kind == KindArray }
func (v Value) IsStruct() bool  { return v.kind == KindStruct }
func (v Value) IsType() bool    { return v.kind == KindType }
func (v Value) IsOffset() bool  { return v.kind == KindOffset }
func (v Value) IsClosure() bool { return v.kind == KindClosure }

// IsIntegral reports whether v is one of the four integral kinds.
func (v Value) IsIntegral() bool {
	switch v.kind {
	case KindInt, KindUInt, KindLong, KindULong:
		return true
	}
	return false
}

// IsMappable reports whether v is a container kind the mapping layer
// can attach I/O state to (spec.md §4.1: "a uniform predicate for 'is
// this a mappable container?'").
func (v Value) IsMappable() bool { return v.kind == KindArray || v.kind == KindStruct }

// longBox holds a boxed Long or ULong (widths 33..64).
type longBox struct {
	signed bool
	width  int
	i      int64  // valid when signed
	u      uint64 // valid when !signed
}

func signExtend(v int64, width int) int64 {
	shift := 64 - width
	return (v << shift) >> shift
}

func zeroExtendMask(width int) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << width) - 1
}

// MakeInt constructs a signed integer of width w (1..32), sign-extending v.
func MakeInt(v int64, w int) (Value, error) {
	if w < 1 || w > 32 {
		return Null, &InvalidWidthError{KindInt, w}
	}
	return Value{kind: KindInt, width: w, inline: signExtend(v, w)}, nil
}

// MakeUInt constructs an unsigned integer of width w (1..32), zero-extending v.
func MakeUInt(v uint64, w int) (Value, error) {
	if w < 1 || w > 32 {
		return Null, &InvalidWidthError{KindUInt, w}
	}
	return Value{kind: KindUInt, width: w, inline: int64(v & zeroExtendMask(w))}, nil
}

// MakeLong constructs a signed integer of width w (33..64).
func MakeLong(v int64, w int) (Value, error) {
	if w < 33 || w > 64 {
		return Null, &InvalidWidthError{KindLong, w}
	}
	return Value{kind: KindLong, box: &longBox{signed: true, width: w, i: signExtend(v, w)}}, nil
}

// MakeULong constructs an unsigned integer of width w (33..64).
func MakeULong(v uint64, w int) (Value, error) {
	if w < 33 || w > 64 {
		return Null, &InvalidWidthError{KindULong, w}
	}
	return Value{kind: KindULong, box: &longBox{signed: false, width: w, u: v & zeroExtendMask(w)}}, nil
}

// IntVal returns the signed magnitude of an Int, or 0 if v is not one.
func (v Value) IntVal() int64 {
	if v.kind != KindInt {
		return 0
	}
	return v.inline
}

// UIntVal returns the unsigned magnitude of a UInt, or 0 if v is not one.
func (v Value) UIntVal() uint64 {
	if v.kind != KindUInt {
		return 0
	}
	return uint64(v.inline)
}

// LongVal returns the signed magnitude of a Long, or 0 if v is not one.
func (v Value) LongVal() int64 {
	b, ok := v.box.(*longBox)
	if v.kind != KindLong || !ok {
		return 0
	}
	return b.i
}

// ULongVal returns the unsigned magnitude of a ULong, or 0 if v is not one.
func (v Value) ULongVal() uint64 {
	b, ok := v.box.(*longBox)
	if v.kind != KindULong || !ok {
		return 0
	}
	return b.u
}

// Width returns the bit width of any integral value, or 0 otherwise.
func (v Value) Width() int {
	switch v.kind {
	case KindInt, KindUInt:
		return v.width
	case KindLong, KindULong:
		if b, ok := v.box.(*longBox); ok {
			return b.width
		}
	}
	return 0
}

// Signed reports whether an integral value is signed. Meaningless for
// non-integral kinds.
func (v Value) Signed() bool {
	switch v.kind {
	case KindInt, KindLong:
		return true
	}
	return false
}

// AsInt64 returns an integral value widened to int64/interpreted per its
// own signedness, useful for generic arithmetic in callers that already
// checked IsIntegral. Unsigned values are returned as their bit pattern
// cast to int64 (never sign-extended past what the value already carries).
func (v Value) AsInt64() int64 {
	switch v.kind {
	case KindInt:
		return v.inline
	case KindUInt:
		return v.inline
	case KindLong:
		return v.LongVal()
	case KindULong:
		return int64(v.ULongVal())
	default:
		return 0
	}
}

// stringBox holds a String value's immutable byte sequence.
type stringBox struct {
	bytes []byte
}

// MakeString copies bytes and returns an immutable string value; never
// returns Null.
func MakeString(b []byte) Value {
	cp := make([]byte, len(b))
	copy(cp, b)
	return Value{kind: KindString, box: &stringBox{bytes: cp}}
}

// Bytes returns the string's bytes, or nil if v is not a string. The
// returned slice aliases the value's storage and must not be mutated.
func (v Value) Bytes() []byte {
	b, ok := v.box.(*stringBox)
	if v.kind != KindString || !ok {
		return nil
	}
	return b.bytes
}

// typeBox holds a reified Type value.
type typeBox struct {
	t *types.Type
}

// MakeType reifies t as a Type value.
func MakeType(t *types.Type) Value {
	return Value{kind: KindType, box: &typeBox{t: t}}
}

// TypeVal returns the reified type, or nil if v is not a Type value.
func (v Value) TypeVal() *types.Type {
	b, ok := v.box.(*typeBox)
	if v.kind != KindType || !ok {
		return nil
	}
	return b.t
}

// offsetBox holds an Offset value: an integral magnitude and a unit.
type offsetBox struct {
	magnitude Value
	unit      uint64
}

// MakeOffset constructs an offset value. magnitude must be integral and
// unit must be a positive integer (bits per unit).
func MakeOffset(magnitude Value, unit uint64) (Value, error) {
	if !magnitude.IsIntegral() {
		return Null, fmt.Errorf("offset magnitude must be integral, got %s", magnitude.Kind())
	}
	if unit == 0 {
		return Null, fmt.Errorf("offset unit must be a positive integer")
	}
	return Value{kind: KindOffset, box: &offsetBox{magnitude: magnitude, unit: unit}}, nil
}

// Magnitude returns an offset's magnitude, or Null otherwise.
func (v Value) Magnitude() Value {
	b, ok := v.box.(*offsetBox)
	if v.kind != KindOffset || !ok {
		return Null
	}
	return b.magnitude
}

// Unit returns an offset's unit, or 0 otherwise.
func (v Value) Unit() uint64 {
	b, ok := v.box.(*offsetBox)
	if v.kind != KindOffset || !ok {
		return 0
	}
	return b.unit
}

// closureBox holds a reference to a compiled program, entry point, and
// captured environment. Program/Env are opaque (any): the bytecode
// emitter and the environment store are external collaborators to this
// package (spec.md §1), so value avoids importing either.
type closureBox struct {
	program    any
	entryPoint uint64
	env        any
	fnType     *types.Type
}

// MakeClosure captures program (an opaque compiled-code reference), its
// entry point, the current environment, and the closure's type.
func MakeClosure(program any, entryPoint uint64, env any, fnType *types.Type) Value {
	return Value{kind: KindClosure, box: &closureBox{program: program, entryPoint: entryPoint, env: env, fnType: fnType}}
}

func (v Value) ClosureProgram() any {
	b, ok := v.box.(*closureBox)
	if v.kind != KindClosure || !ok {
		return nil
	}
	return b.program
}

func (v Value) ClosureEntryPoint() uint64 {
	b, ok := v.box.(*closureBox)
	if v.kind != KindClosure || !ok {
		return 0
	}
	return b.entryPoint
}

func (v Value) ClosureEnv() any {
	b, ok := v.box.(*closureBox)
	if v.kind != KindClosure || !ok {
		return nil
	}
	return b.env
}

func (v Value) ClosureType() *types.Type {
	b, ok := v.box.(*closureBox)
	if v.kind != KindClosure || !ok {
		return nil
	}
	return b.fnType
}

// SizeOf returns a value's size in bits (spec.md §4.1). It is defined
// for every non-Null value except a Type value; for Null and for a Type
// value it returns an error.
func SizeOf(v Value) (uint64, error) {
	switch v.kind {
	case KindNull:
		return 0, fmt.Errorf("size_of: value is null")
	case KindInt, KindUInt, KindLong, KindULong:
		return uint64(v.Width()), nil
	case KindString:
		return 8 * uint64(len(v.Bytes())+1), nil
	case KindArray:
		var total uint64
		a := v.arrayBox()
		for _, e := range a.elems {
			n, err := SizeOf(e.Value)
			if err != nil {
				return 0, err
			}
			total += n
		}
		return total, nil
	case KindStruct:
		s := v.structBox()
		var total uint64
		for _, f := range s.fields {
			n, err := SizeOf(f.Value)
			if err != nil {
				return 0, err
			}
			// Rounded to field offsets: the struct's size is the last
			// field's offset plus its size, not merely the sum of
			// field sizes, so padding introduced by explicit field
			// offsets is accounted for.
			end := f.Offset + n
			if end > total {
				total = end
			}
		}
		return total, nil
	case KindOffset:
		return SizeOf(v.Magnitude())
	case KindClosure:
		return 0, nil
	default:
		return 0, fmt.Errorf("size_of: unknown kind %s", v.kind)
	}
}

// ElemCount returns a value's element count (spec.md §4.1): strings
// return their byte length, arrays/structs their element/field count,
// everything else 1.
func ElemCount(v Value) uint64 {
	switch v.kind {
	case KindString:
		return uint64(len(v.Bytes()))
	case KindArray:
		return uint64(len(v.arrayBox().elems))
	case KindStruct:
		return uint64(len(v.structBox().fields))
	default:
		return 1
	}
}

// TypeOf returns a Type value describing v's type, allocating a new Type
// box if necessary.
func TypeOf(v Value) Value {
	switch v.kind {
	case KindInt, KindUInt, KindLong, KindULong:
		return MakeType(types.IntegralType(v.Width(), v.Signed()))
	case KindString:
		return MakeType(types.StringType())
	case KindArray:
		a := v.arrayBox()
		return MakeType(types.ArrayType(a.elemType, types.Bound{
			Present: true, InBits: false, Constant: true, Value: int64(len(a.elems)),
		}))
	case KindStruct:
		return MakeType(v.structBox().structType)
	case KindOffset:
		mt := types.IntegralType(v.Magnitude().Width(), v.Magnitude().Signed())
		return MakeType(types.OffsetType(mt, v.Unit()))
	case KindClosure:
		return MakeType(v.ClosureType())
	case KindType:
		return MakeType(types.AnyType()) // a Type value's own type is represented as any
	default:
		return Null
	}
}
