package value

import "github.com/gmofishsauce/bkl/types"

// StructField is one field slot of a struct value: its name, its bit
// offset within the struct, its current value, and whether it has been
// written since the struct was constructed or last written back
// (spec.md §3.3's "modified" flag, used by the writer to skip
// unchanged fields on flush).
type StructField struct {
	Name     string
	Offset   uint64
	Value    Value
	Modified bool
}

// StructMethod is one named closure attached to a struct value (a
// poke "method").
type StructMethod struct {
	Name  string
	Value Value
}

// StructMapping mirrors ArrayMapping minus the bound: a struct's size
// is always derivable from its field types, so there is nothing
// equivalent to ElemsBound/SizeBound to record (spec.md §3.3). Every
// struct value carries one, present at its zero value when unmapped —
// see ArrayMapping's doc comment for why.
type StructMapping struct {
	IOS       Value
	BitOffset Value
	Mapper    Value
	Writer    Value
}

type structBox struct {
	structType *types.Type
	fields     []StructField
	methods    []StructMethod
	mapping    StructMapping
}

func (v Value) structBox() *structBox {
	b, _ := v.box.(*structBox)
	return b
}

// MakeStruct constructs an unmapped struct value of structType from
// fields and methods, in declaration order.
func MakeStruct(structType *types.Type, fields []StructField, methods []StructMethod) Value {
	return Value{kind: KindStruct, box: &structBox{structType: structType, fields: fields, methods: methods}}
}

// StructType returns a struct value's type, or nil if v is not a struct.
func (v Value) StructType() *types.Type {
	s := v.structBox()
	if s == nil {
		return nil
	}
	return s.structType
}

// StructFields returns a struct's fields in declaration order, or nil.
func (v Value) StructFields() []StructField {
	s := v.structBox()
	if s == nil {
		return nil
	}
	return s.fields
}

// StructField looks up a field by name.
func (v Value) StructField(name string) (Value, bool) {
	s := v.structBox()
	if s == nil {
		return Null, false
	}
	for _, f := range s.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return Null, false
}

// SetStructField overwrites a field by name and marks it modified.
// Reports whether the field exists.
func (v Value) SetStructField(name string, val Value) bool {
	s := v.structBox()
	if s == nil {
		return false
	}
	for i := range s.fields {
		if s.fields[i].Name == name {
			s.fields[i].Value = val
			s.fields[i].Modified = true
			return true
		}
	}
	return false
}

// StructFieldOffset returns a field's bit offset as an Offset value, or
// Null if the field does not exist.
func (v Value) StructFieldOffset(name string) Value {
	s := v.structBox()
	if s == nil {
		return Null
	}
	for _, f := range s.fields {
		if f.Name == name {
			mag, _ := MakeULong(f.Offset, 64)
			off, _ := MakeOffset(mag, 1)
			return off
		}
	}
	return Null
}

// StructMethod looks up a method by name.
func (v Value) StructMethod(name string) (Value, bool) {
	s := v.structBox()
	if s == nil {
		return Null, false
	}
	for _, m := range s.methods {
		if m.Name == name {
			return m.Value, true
		}
	}
	return Null, false
}

// MapStruct attaches mapping state to a struct value. A no-op if v is
// not a struct.
func (v Value) MapStruct(ios, bitOffset, mapper, writer Value) {
	s := v.structBox()
	if s == nil {
		return
	}
	s.mapping = StructMapping{IOS: ios, BitOffset: bitOffset, Mapper: mapper, Writer: writer}
}
