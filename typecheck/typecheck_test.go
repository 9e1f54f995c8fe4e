package typecheck

import (
	"testing"

	"github.com/gmofishsauce/bkl/ast"
	"github.com/gmofishsauce/bkl/diag"
	"github.com/gmofishsauce/bkl/types"
)

// newChecker returns a Checker reporting into a fresh *diag.Collector,
// exactly as every test in this package wants: no caller-supplied Sink
// to wire up, just a Checker and somewhere to inspect what it reported.
func newChecker() *Checker {
	return NewChecker(diag.NewReporter(nil))
}

func lit(t *types.Type, iv int64) *ast.LiteralExpr {
	n := &ast.LiteralExpr{IntVal: iv}
	n.SetType(t)
	return n
}

func strLit(t *types.Type, s string) *ast.LiteralExpr {
	n := &ast.LiteralExpr{StrVal: s, IsStr: true}
	n.SetType(t)
	return n
}

func TestIntegralPromotionOnAdd(t *testing.T) {
	n := &ast.BinaryExpr{Op: ast.OpAdd, Left: lit(types.IntegralType(8, false), 3), Right: lit(types.IntegralType(16, true), -1)}
	c := newChecker()
	c.inferBinary(n)
	if c.Diag.Halted {
		t.Fatal("unexpected halt")
	}
	want := types.IntegralType(16, false)
	if !types.Equal(n.GetType(), want) {
		t.Fatalf("want %s, got %s", want, n.GetType())
	}
}

func TestBitConcatOverflow(t *testing.T) {
	n := &ast.BinaryExpr{Op: ast.OpBconc, Left: lit(types.IntegralType(40, false), 0), Right: lit(types.IntegralType(25, false), 0)}
	c := newChecker()
	c.inferBinary(n)
	if !c.Diag.Halted {
		t.Fatal("expected a halt on width overflow")
	}
	col := c.Diag.Sink.(*diag.Collector)
	if col.Len() != 1 || col.Diagnostics()[0].Code != diag.WidthOverflow {
		t.Fatalf("want one WidthOverflow diagnostic, got %+v", col.Diagnostics())
	}
}

func TestBitConcatWithinRangeStillUsesLeftSignedness(t *testing.T) {
	n := &ast.BinaryExpr{Op: ast.OpBconc, Left: lit(types.IntegralType(8, true), 0), Right: lit(types.IntegralType(8, false), 0)}
	c := newChecker()
	c.inferBinary(n)
	if c.Diag.Halted {
		t.Fatal("unexpected halt")
	}
	want := types.IntegralType(16, true)
	if !types.Equal(n.GetType(), want) {
		t.Fatalf("want %s, got %s", want, n.GetType())
	}
}

func TestOffsetArithmetic(t *testing.T) {
	// (10#B) * 3, where #B is an 8-bit unit and the magnitude is uint<64>.
	offLit := &ast.OffsetLitExpr{Magnitude: lit(types.UInt64, 10), Unit: 8}
	mul := &ast.BinaryExpr{Op: ast.OpMul, Left: offLit, Right: lit(types.Int32, 3)}
	c := newChecker()
	c.inferBinary(mul)
	if c.Diag.Halted {
		t.Fatal("unexpected halt")
	}
	want := types.OffsetType(types.UInt64, 8)
	if !types.Equal(mul.GetType(), want) {
		t.Fatalf("want %s, got %s", want, mul.GetType())
	}
}

func TestOffsetLiteralRequiresIntegralMagnitude(t *testing.T) {
	n := &ast.OffsetLitExpr{Magnitude: strLit(types.StringType(), "x"), Unit: 8}
	c := newChecker()
	c.inferOffsetLit(n)
	if !c.Diag.Halted {
		t.Fatal("expected a halt: offset magnitude must be integral")
	}
}

func TestVoidInValueContextInsideArrayLiteral(t *testing.T) {
	voidFunc := &ast.IdentExpr{Name: "f", Decl: &ast.VarDecl{ResolvedType: types.ClosureType(types.VoidType(), nil)}}
	call := &ast.CallExpr{Callee: voidFunc}
	arr := &ast.ArrayLitExpr{Elems: []ast.Expr{call}}
	c := newChecker()
	c.inferArrayLit(arr)
	if !c.Diag.Halted {
		t.Fatal("expected a halt: array element must not be void")
	}
	col := c.Diag.Sink.(*diag.Collector)
	if col.Len() != 1 || col.Diagnostics()[0].Code != diag.VoidInValueContext {
		t.Fatalf("want one VoidInValueContext diagnostic, got %+v", col.Diagnostics())
	}
}

func TestIsaFoldsTrueWhenTargetIsAny(t *testing.T) {
	n := &ast.IsaExpr{Operand: lit(types.IntegralType(32, true), 5), Target: &ast.TypeNode{Kind: ast.TNAny}}
	c := newChecker()
	c.inferIsa(n)
	if c.Diag.Halted {
		t.Fatal("unexpected halt")
	}
	if n.Folded == nil || *n.Folded != 1 {
		t.Fatalf("want folded 1, got %v", n.Folded)
	}
}

func TestIsaFoldsAgainstKnownOperandType(t *testing.T) {
	c := newChecker()
	match := &ast.IsaExpr{Operand: lit(types.IntegralType(16, false), 0), Target: &ast.TypeNode{Kind: ast.TNIntegral, Width: 16, Signed: false}}
	c.inferIsa(match)
	if c.Diag.Halted {
		t.Fatal("unexpected halt")
	}
	if match.Folded == nil || *match.Folded != 1 {
		t.Fatalf("want folded 1 for a matching type, got %v", match.Folded)
	}

	c2 := newChecker()
	mismatch := &ast.IsaExpr{Operand: lit(types.IntegralType(16, true), 0), Target: &ast.TypeNode{Kind: ast.TNIntegral, Width: 16, Signed: false}}
	c2.inferIsa(mismatch)
	if c2.Diag.Halted {
		t.Fatal("unexpected halt")
	}
	if mismatch.Folded == nil || *mismatch.Folded != 0 {
		t.Fatalf("want folded 0 for a non-matching type, got %v", mismatch.Folded)
	}
}

func TestIsaDeferredWhenOperandIsAny(t *testing.T) {
	x := &ast.IdentExpr{Name: "x", Decl: &ast.VarDecl{ResolvedType: types.AnyType()}}
	n := &ast.IsaExpr{Operand: x, Target: &ast.TypeNode{Kind: ast.TNIntegral, Width: 16, Signed: true}}
	c := newChecker()
	c.inferIsa(n)
	if c.Diag.Halted {
		t.Fatal("unexpected halt")
	}
	if n.Folded != nil {
		t.Fatalf("want isa against an any-typed operand deferred to run time, got folded %v", *n.Folded)
	}
	if !types.Equal(n.GetType(), types.BoolType()) {
		t.Fatalf("isa must still type as int<32>, got %s", n.GetType())
	}
}

func TestAssignRejectsIncompatibleTypes(t *testing.T) {
	n := &ast.AssignExpr{LHS: lit(types.IntegralType(32, true), 0), RHS: strLit(types.StringType(), "x")}
	c := newChecker()
	c.inferAssign(n)
	if !c.Diag.Halted {
		t.Fatal("expected a halt: cannot assign a string into an integral lvalue")
	}
}

func TestAssignToAnyAcceptsAnything(t *testing.T) {
	n := &ast.AssignExpr{LHS: lit(types.AnyType(), 0), RHS: strLit(types.StringType(), "x")}
	c := newChecker()
	c.inferAssign(n)
	if c.Diag.Halted {
		t.Fatal("unexpected halt: any lvalue accepts anything")
	}
}
