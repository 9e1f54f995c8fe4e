package value

// This file implements the uniform mapping-state accessors spec.md §4.1
// requires: mapper/writer/offset/ios/elems_bound/size_bound readers that
// work across both mappable kinds, and setters that are a no-op on a
// kind that can't carry mapping state at all (the polymorphic nop law,
// spec.md §9) rather than panicking. Grounded on
// PVM_VAL_MAPPED/PVM_VAL_OFFSET/PVM_VAL_IOS/PVM_VAL_MAPPER/PVM_VAL_WRITER
// in original_source/lib/pvm.h, which apply uniformly to PVM_VAL_ARR and
// PVM_VAL_SCT values through plain struct fields present on every array
// or struct box, mapped or not — so the setters here never gate on
// whether the container happens to be mapped right now, only on whether
// it is an array or struct at all.

// IsMapped reports whether v is a container currently attached to an
// I/O space.
func (v Value) IsMapped() bool {
	switch v.kind {
	case KindArray:
		if a := v.arrayBox(); a != nil {
			return !a.mapping.IOS.IsNull()
		}
	case KindStruct:
		if s := v.structBox(); s != nil {
			return !s.mapping.IOS.IsNull()
		}
	}
	return false
}

// IOS returns the I/O space a mapped container is attached to, or Null.
func (v Value) IOS() Value {
	switch v.kind {
	case KindArray:
		if a := v.arrayBox(); a != nil {
			return a.mapping.IOS
		}
	case KindStruct:
		if s := v.structBox(); s != nil {
			return s.mapping.IOS
		}
	}
	return Null
}

// MapOffset returns a mapped container's bit offset into its I/O space,
// or Null.
func (v Value) MapOffset() Value {
	switch v.kind {
	case KindArray:
		if a := v.arrayBox(); a != nil {
			return a.mapping.BitOffset
		}
	case KindStruct:
		if s := v.structBox(); s != nil {
			return s.mapping.BitOffset
		}
	}
	return Null
}

// Mapper returns a container's mapper closure, or Null.
func (v Value) Mapper() Value {
	switch v.kind {
	case KindArray:
		if a := v.arrayBox(); a != nil {
			return a.mapping.Mapper
		}
	case KindStruct:
		if s := v.structBox(); s != nil {
			return s.mapping.Mapper
		}
	}
	return Null
}

// Writer returns a container's writer closure, or Null.
func (v Value) Writer() Value {
	switch v.kind {
	case KindArray:
		if a := v.arrayBox(); a != nil {
			return a.mapping.Writer
		}
	case KindStruct:
		if s := v.structBox(); s != nil {
			return s.mapping.Writer
		}
	}
	return Null
}

// ElemsBound returns a mapped array's declared element-count bound as a
// UInt<64> value, or Null if v is not an array or was bounded by size
// instead.
func (v Value) ElemsBound() Value {
	a := v.arrayBox()
	if a == nil || a.mapping.ElemsBound == nil {
		return Null
	}
	n, _ := MakeULong(*a.mapping.ElemsBound, 64)
	return n
}

// SizeBound returns a mapped array's declared byte-size bound as a
// UInt<64> value, or Null if v is not an array or was bounded by element
// count instead.
func (v Value) SizeBound() Value {
	a := v.arrayBox()
	if a == nil || a.mapping.SizeBound == nil {
		return Null
	}
	n, _ := MakeULong(*a.mapping.SizeBound, 64)
	return n
}

// SetMapper overwrites a container's mapper closure. A no-op on any
// non-mappable kind — array and struct values accept this unconditionally,
// whether or not they are currently mapped (the "polymorphic setter nop
// law" of spec.md §9 is about kind, not mapped-ness, so that `unmap` can
// call every setter polymorphically and a round-trip set/clear works on
// an unmapped array too).
func (v Value) SetMapper(m Value) {
	switch v.kind {
	case KindArray:
		if a := v.arrayBox(); a != nil {
			a.mapping.Mapper = m
		}
	case KindStruct:
		if s := v.structBox(); s != nil {
			s.mapping.Mapper = m
		}
	}
}

// SetWriter overwrites a container's writer closure. A no-op on any
// non-mappable kind.
func (v Value) SetWriter(w Value) {
	switch v.kind {
	case KindArray:
		if a := v.arrayBox(); a != nil {
			a.mapping.Writer = w
		}
	case KindStruct:
		if s := v.structBox(); s != nil {
			s.mapping.Writer = w
		}
	}
}

// SetMapOffset overwrites a container's bit offset, e.g. after a rebase.
// A no-op on any non-mappable kind.
func (v Value) SetMapOffset(off Value) {
	switch v.kind {
	case KindArray:
		if a := v.arrayBox(); a != nil {
			a.mapping.BitOffset = off
		}
	case KindStruct:
		if s := v.structBox(); s != nil {
			s.mapping.BitOffset = off
		}
	}
}

// SetIOS overwrites a container's I/O space. A no-op on any non-mappable
// kind.
func (v Value) SetIOS(ios Value) {
	switch v.kind {
	case KindArray:
		if a := v.arrayBox(); a != nil {
			a.mapping.IOS = ios
		}
	case KindStruct:
		if s := v.structBox(); s != nil {
			s.mapping.IOS = ios
		}
	}
}
