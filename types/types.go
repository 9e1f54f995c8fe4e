// Package types implements the compile-time and run-time notion of a
// type: integral, string, array, struct, offset, closure, and any.
//
// A *Type is the compiler's answer to "what kind of value flows through
// this expression" — it is built by the inference pass (package
// typecheck) and consumed by completeness analysis and, downstream, by
// code generation. Structural equality, duplication and pretty-printing
// all live here so that the inference pass never has to know the
// representation of a type, only its algebra.
package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Code is the discriminator for the type algebra's arms.
type Code int

const (
	Invalid Code = iota
	Integral
	String
	Array
	Struct
	Offset
	Closure
	Any
	Void // function return type only; never a value's type
)

func (c Code) String() string {
	switch c {
	case Integral:
		return "integral"
	case String:
		return "string"
	case Array:
		return "array"
	case Struct:
		return "struct"
	case Offset:
		return "offset"
	case Closure:
		return "closure"
	case Any:
		return "any"
	case Void:
		return "void"
	default:
		return "invalid"
	}
}

// Bound describes an array type's optional bound: an element count or a
// size-in-bits, either of which may be a compile-time constant or left
// to be resolved at run time. At most one of count/size is meaningful;
// which one is indicated by InBits. A zero-value Bound (Present == false)
// means the array carries no declared bound at all.
type Bound struct {
	Present  bool
	InBits   bool // true: Bound expresses a size in bits; false: an element count
	Constant bool // true iff Value is known at compile time
	Value    int64
}

// Field is one (name, type) pair of a struct type, in declaration order.
type Field struct {
	Name string
	Type *Type
}

// Arg is one positional argument descriptor of a closure type. Name is
// carried so that named-argument call reordering (spec.md §4.2.7 step
// 5) has formal names to match against; it plays no role in structural
// equality (closures "agree on return type, arity, and positional
// argument types" only, per spec.md §3.4).
type Arg struct {
	Name     string
	Type     *Type
	Optional bool // has a default initializer
	Vararg   bool // final argument, collects the rest
}

// Type is the algebraic type descriptor described in spec.md §3.4.
type Type struct {
	Code Code

	// Integral
	Width  int
	Signed bool

	// Array
	Elem  *Type
	ArrBound Bound

	// Struct
	Name   string // optional
	Fields []Field

	// Offset
	Base *Type // integral base type
	Unit uint64

	// Closure
	Return *Type
	Args   []Arg
}

// IntegralType constructs an Integral type of the given width and signedness.
func IntegralType(width int, signed bool) *Type {
	return &Type{Code: Integral, Width: width, Signed: signed}
}

// StringType is the single string type; all strings share it.
func StringType() *Type { return &Type{Code: String} }

// ArrayType constructs an array type over elem with the given bound.
func ArrayType(elem *Type, bound Bound) *Type {
	return &Type{Code: Array, Elem: elem, ArrBound: bound}
}

// StructType constructs a (possibly anonymous) struct type.
func StructType(name string, fields []Field) *Type {
	return &Type{Code: Struct, Name: name, Fields: fields}
}

// OffsetType constructs an offset type with the given integral base type
// and unit (bits per unit).
func OffsetType(base *Type, unit uint64) *Type {
	return &Type{Code: Offset, Base: base, Unit: unit}
}

// ClosureType constructs a function type.
func ClosureType(ret *Type, args []Arg) *Type {
	return &Type{Code: Closure, Return: ret, Args: args}
}

// AnyType is the universal top type.
func AnyType() *Type { return &Type{Code: Any} }

// VoidType is the "no value" return type.
func VoidType() *Type { return &Type{Code: Void} }

var (
	Int32  = IntegralType(32, true)
	UInt32 = IntegralType(32, false)
	UInt64 = IntegralType(64, false)
)

// BoolType is the boolean representation used for comparison and logical
// operator results: int<32>, per spec.md §4.2.1/§4.2.2.
func BoolType() *Type { return IntegralType(32, true) }

// IsIntegral reports whether t is an integral type (any width/signedness).
func (t *Type) IsIntegral() bool { return t != nil && t.Code == Integral }

// IsFunction reports whether t is a closure (function) type.
func (t *Type) IsFunction() bool { return t != nil && t.Code == Closure }

// IsAny reports whether t is the universal top type.
func (t *Type) IsAny() bool { return t != nil && t.Code == Any }

// Equal implements structural type equality (spec.md §3.4). any equals
// any only — it is never silently compatible with anything else here;
// that relaxation is the separate "compatible" rule used during
// argument/assignment checking (package typecheck).
func Equal(a, b *Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Code != b.Code {
		return false
	}
	switch a.Code {
	case Integral:
		return a.Width == b.Width && a.Signed == b.Signed
	case String:
		return true
	case Array:
		if !Equal(a.Elem, b.Elem) {
			return false
		}
		return boundsEqual(a.ArrBound, b.ArrBound)
	case Struct:
		if len(a.Fields) != len(b.Fields) {
			return false
		}
		for i := range a.Fields {
			if a.Fields[i].Name != b.Fields[i].Name || !Equal(a.Fields[i].Type, b.Fields[i].Type) {
				return false
			}
		}
		return true
	case Offset:
		return Equal(a.Base, b.Base) && a.Unit == b.Unit
	case Closure:
		if !Equal(a.Return, b.Return) || len(a.Args) != len(b.Args) {
			return false
		}
		for i := range a.Args {
			if !Equal(a.Args[i].Type, b.Args[i].Type) {
				return false
			}
		}
		return true
	case Any:
		return true
	case Void:
		return true
	default:
		return false
	}
}

// boundsEqual compares two array bounds "by value only when both are
// constant" (spec.md §3.4): two non-constant (runtime) bounds are
// considered equal regardless of their underlying expression, and a
// constant bound never equals a non-constant one.
func boundsEqual(a, b Bound) bool {
	if !a.Present && !b.Present {
		return true
	}
	if a.Present != b.Present {
		return false
	}
	if a.Constant != b.Constant {
		return false
	}
	if a.Constant {
		return a.InBits == b.InBits && a.Value == b.Value
	}
	return true
}

// Duplicate makes a deep copy of t. Used where code generation or a
// later pass needs a type it can mutate without perturbing the original.
func Duplicate(t *Type) *Type {
	if t == nil {
		return nil
	}
	cp := *t
	cp.Elem = Duplicate(t.Elem)
	cp.Base = Duplicate(t.Base)
	cp.Return = Duplicate(t.Return)
	if t.Fields != nil {
		cp.Fields = make([]Field, len(t.Fields))
		for i, f := range t.Fields {
			cp.Fields[i] = Field{Name: f.Name, Type: Duplicate(f.Type)}
		}
	}
	if t.Args != nil {
		cp.Args = make([]Arg, len(t.Args))
		for i, a := range t.Args {
			cp.Args[i] = Arg{Name: a.Name, Type: Duplicate(a.Type), Optional: a.Optional, Vararg: a.Vararg}
		}
	}
	return &cp
}

// IsComplete reports whether t's bit-size is a compile-time constant
// (spec.md §3.4). Closures and any are never complete.
func (t *Type) IsComplete() bool {
	if t == nil {
		return false
	}
	switch t.Code {
	case Integral:
		return true
	case String:
		return true
	case Offset:
		return t.Base.IsComplete()
	case Array:
		return t.Elem.IsComplete() && t.ArrBound.Present && t.ArrBound.Constant && !t.ArrBound.InBits
	case Struct:
		for _, f := range t.Fields {
			if !f.Type.IsComplete() {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// String renders t for diagnostics, e.g. "int<16>", "offset<uint<64>,8>",
// "[10]uint<8>", "struct Point{x:int<32>,y:int<32>}".
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Code {
	case Integral:
		kind := "int"
		if !t.Signed {
			kind = "uint"
		}
		return fmt.Sprintf("%s<%d>", kind, t.Width)
	case String:
		return "string"
	case Array:
		b := ""
		if t.ArrBound.Present && t.ArrBound.Constant {
			b = strconv.FormatInt(t.ArrBound.Value, 10)
		}
		return fmt.Sprintf("[%s]%s", b, t.Elem.String())
	case Struct:
		var sb strings.Builder
		sb.WriteString("struct ")
		if t.Name != "" {
			sb.WriteString(t.Name)
		}
		sb.WriteString("{")
		for i, f := range t.Fields {
			if i > 0 {
				sb.WriteString(",")
			}
			sb.WriteString(f.Name)
			sb.WriteString(":")
			sb.WriteString(f.Type.String())
		}
		sb.WriteString("}")
		return sb.String()
	case Offset:
		return fmt.Sprintf("offset<%s,%d>", t.Base.String(), t.Unit)
	case Closure:
		var sb strings.Builder
		sb.WriteString("(")
		for i, a := range t.Args {
			if i > 0 {
				sb.WriteString(",")
			}
			if a.Vararg {
				sb.WriteString("...")
			}
			sb.WriteString(a.Type.String())
			if a.Optional {
				sb.WriteString("?")
			}
		}
		sb.WriteString(")")
		sb.WriteString(t.Return.String())
		return sb.String()
	case Any:
		return "any"
	case Void:
		return "void"
	default:
		return "<invalid>"
	}
}
