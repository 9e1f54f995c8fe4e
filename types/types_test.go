package types

import "testing"

func TestEqualReflexive(t *testing.T) {
	cases := []*Type{
		IntegralType(32, true),
		IntegralType(8, false),
		StringType(),
		ArrayType(IntegralType(8, false), Bound{Present: true, Constant: true, Value: 10}),
		StructType("Point", []Field{{Name: "x", Type: Int32}, {Name: "y", Type: Int32}}),
		OffsetType(UInt64, 8),
		ClosureType(Int32, []Arg{{Name: "a", Type: Int32}}),
		AnyType(),
		VoidType(),
	}
	for _, ty := range cases {
		if !Equal(ty, ty) {
			t.Errorf("Equal(%s, %s) = false, want true", ty, ty)
		}
	}
}

func TestEqualSymmetric(t *testing.T) {
	pairs := [][2]*Type{
		{IntegralType(16, true), IntegralType(16, true)},
		{IntegralType(16, true), IntegralType(16, false)},
		{IntegralType(16, true), IntegralType(32, true)},
		{StringType(), IntegralType(8, false)},
		{OffsetType(UInt64, 8), OffsetType(Int32, 8)},
		{AnyType(), VoidType()},
	}
	for _, p := range pairs {
		if Equal(p[0], p[1]) != Equal(p[1], p[0]) {
			t.Errorf("Equal not symmetric for %s and %s", p[0], p[1])
		}
	}
}

func TestEqualIgnoresArgNames(t *testing.T) {
	a := ClosureType(VoidType(), []Arg{{Name: "a", Type: Int32}, {Name: "b", Type: UInt32}})
	b := ClosureType(VoidType(), []Arg{{Name: "x", Type: Int32}, {Name: "y", Type: UInt32}})
	if !Equal(a, b) {
		t.Errorf("closures differing only in argument names should be structurally equal")
	}
}

func TestEqualArrayBoundRules(t *testing.T) {
	unbounded1 := ArrayType(Int32, Bound{})
	unbounded2 := ArrayType(Int32, Bound{})
	if !Equal(unbounded1, unbounded2) {
		t.Errorf("two unbounded arrays of the same element type should be equal")
	}
	const5 := ArrayType(Int32, Bound{Present: true, Constant: true, Value: 5})
	const6 := ArrayType(Int32, Bound{Present: true, Constant: true, Value: 6})
	if Equal(const5, const6) {
		t.Errorf("arrays with different constant bounds should not be equal")
	}
	nonConst1 := ArrayType(Int32, Bound{Present: true, Constant: false})
	nonConst2 := ArrayType(Int32, Bound{Present: true, Constant: false})
	if !Equal(nonConst1, nonConst2) {
		t.Errorf("two non-constant bounds should be considered equal regardless of their expression")
	}
	if Equal(const5, nonConst1) {
		t.Errorf("a constant bound should never equal a non-constant one")
	}
}

func TestIsCompleteMonotone(t *testing.T) {
	complete := StructType("", []Field{{Name: "a", Type: Int32}, {Name: "b", Type: UInt64}})
	if !complete.IsComplete() {
		t.Errorf("struct of all-complete fields should be complete")
	}
	incompleteField := StructType("", []Field{{Name: "a", Type: Int32}, {Name: "b", Type: ClosureType(VoidType(), nil)}})
	if incompleteField.IsComplete() {
		t.Errorf("struct with one incomplete field should not be complete")
	}
	sizedArr := ArrayType(Int32, Bound{Present: true, Constant: true, Value: 3})
	if !sizedArr.IsComplete() {
		t.Errorf("array with a constant element-count bound over a complete element should be complete")
	}
	unsizedArr := ArrayType(Int32, Bound{})
	if unsizedArr.IsComplete() {
		t.Errorf("array with no bound should not be complete")
	}
	inBitsArr := ArrayType(Int32, Bound{Present: true, Constant: true, InBits: true, Value: 96})
	if inBitsArr.IsComplete() {
		t.Errorf("array bounded in bits rather than element count should not be complete (per §3.4)")
	}
	if ClosureType(Int32, nil).IsComplete() {
		t.Errorf("closure types are never complete")
	}
	if AnyType().IsComplete() {
		t.Errorf("any is never complete")
	}
}

func TestDuplicateIsDeepAndPreservesArgNames(t *testing.T) {
	orig := ClosureType(Int32, []Arg{{Name: "a", Type: IntegralType(8, false), Optional: true}})
	dup := Duplicate(orig)
	if !Equal(orig, dup) {
		t.Errorf("duplicate should be structurally equal to the original")
	}
	if dup.Args[0].Name != "a" {
		t.Errorf("Duplicate must preserve Arg.Name, got %q", dup.Args[0].Name)
	}
	dup.Args[0].Type.Width = 64
	if orig.Args[0].Type.Width == 64 {
		t.Errorf("Duplicate must produce an independent copy, mutation leaked into original")
	}
}

func TestStringRendering(t *testing.T) {
	cases := []struct {
		ty   *Type
		want string
	}{
		{IntegralType(16, true), "int<16>"},
		{IntegralType(8, false), "uint<8>"},
		{StringType(), "string"},
		{OffsetType(UInt64, 8), "offset<uint<64>,8>"},
		{AnyType(), "any"},
		{VoidType(), "void"},
	}
	for _, c := range cases {
		if got := c.ty.String(); got != c.want {
			t.Errorf("String() = %q, want %q", got, c.want)
		}
	}
}
