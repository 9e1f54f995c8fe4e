package value

import "github.com/gmofishsauce/bkl/types"

// arrayElem is one array element: its value and its logical bit offset
// within the array. The offset is always defined (it is a property of
// the container, not of mapping) even when the array as a whole is
// unmapped; only the I/O-space offset recorded in ArrayMapping depends
// on mapping (spec.md §3.2).
type arrayElem struct {
	Value  Value
	Offset uint64
}

// ArrayMapping is the mapping state of an array value (spec.md §3.2): the
// I/O space and bit offset it was mapped from, exactly one of a declared
// element-count or byte-size bound, and the mapper/writer closures used
// to (re)materialize and flush it. Every array carries one of these —
// not only mapped ones — with every field at its Null/nil zero value
// when the array is unmapped; this is what lets the mapping setters work
// uniformly whether or not the array happens to be mapped right now
// (spec.md §9's "polymorphic nop" law gates on *kind*, array vs.
// non-container, not on current mapped-ness). Grounded on
// original_source/lib/pvm.h's PVM_VAL_ARR_MAPPER and siblings, which are
// plain struct fields of every array box, defaulting to PVM_NULL.
type ArrayMapping struct {
	IOS        Value
	BitOffset  Value
	ElemsBound *uint64
	SizeBound  *uint64
	Mapper     Value
	Writer     Value
}

type arrayBox struct {
	elemType *types.Type
	elems    []arrayElem
	mapping  ArrayMapping
}

func (v Value) arrayBox() *arrayBox {
	b, _ := v.box.(*arrayBox)
	return b
}

// MakeArray constructs an unmapped array of elemType, computing each
// element's logical offset cumulatively from the preceding elements'
// sizes.
func MakeArray(elemType *types.Type, elems []Value) (Value, error) {
	ab := &arrayBox{elemType: elemType}
	var off uint64
	for _, e := range elems {
		ab.elems = append(ab.elems, arrayElem{Value: e, Offset: off})
		n, err := SizeOf(e)
		if err != nil {
			return Null, err
		}
		off += n
	}
	return Value{kind: KindArray, box: ab}, nil
}

// ArrayElemType returns an array's declared element type, or nil.
func (v Value) ArrayElemType() *types.Type {
	a := v.arrayBox()
	if a == nil {
		return nil
	}
	return a.elemType
}

// ArrayLen returns an array's element count, or 0 if v is not an array.
func (v Value) ArrayLen() int {
	a := v.arrayBox()
	if a == nil {
		return 0
	}
	return len(a.elems)
}

// ArrayElem returns the i'th element, or Null if out of range.
func (v Value) ArrayElem(i int) Value {
	a := v.arrayBox()
	if a == nil || i < 0 || i >= len(a.elems) {
		return Null
	}
	return a.elems[i].Value
}

// SetArrayElem replaces the i'th element in place, recomputing every
// following element's offset (the new value may have a different size
// than the one it replaces). Reports whether i was in range.
func (v Value) SetArrayElem(i int, val Value) bool {
	a := v.arrayBox()
	if a == nil || i < 0 || i >= len(a.elems) {
		return false
	}
	a.elems[i].Value = val
	off := a.elems[i].Offset
	for j := i; j < len(a.elems); j++ {
		a.elems[j].Offset = off
		n, err := SizeOf(a.elems[j].Value)
		if err != nil {
			n = 0
		}
		off += n
	}
	return true
}

// ArrayElemOffset returns the i'th element's logical offset as an
// Offset value in bits, or Null if out of range.
func (v Value) ArrayElemOffset(i int) Value {
	a := v.arrayBox()
	if a == nil || i < 0 || i >= len(a.elems) {
		return Null
	}
	mag, _ := MakeULong(a.elems[i].Offset, 64)
	off, _ := MakeOffset(mag, 1)
	return off
}

// MapArray attaches mapping state to an array value. A no-op if v is
// not an array (the polymorphic-setter law, spec.md §9).
func (v Value) MapArray(ios, bitOffset Value, elemsBound, sizeBound *uint64, mapper, writer Value) {
	a := v.arrayBox()
	if a == nil {
		return
	}
	a.mapping = ArrayMapping{
		IOS: ios, BitOffset: bitOffset,
		ElemsBound: elemsBound, SizeBound: sizeBound,
		Mapper: mapper, Writer: writer,
	}
}

// Unmap resets an array or struct's mapping state to its unmapped zero
// value. A no-op on any other kind (the polymorphic-setter law, spec.md
// §9): `unmap` runs over any value, so it must tolerate being handed
// one that was never mappable at all.
func (v Value) Unmap() {
	switch v.kind {
	case KindArray:
		if a := v.arrayBox(); a != nil {
			a.mapping = ArrayMapping{}
		}
	case KindStruct:
		if s := v.structBox(); s != nil {
			s.mapping = StructMapping{}
		}
	}
}
