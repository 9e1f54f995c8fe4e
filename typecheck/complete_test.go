package typecheck

import (
	"testing"

	"github.com/gmofishsauce/bkl/ast"
	"github.com/gmofishsauce/bkl/diag"
	"github.com/gmofishsauce/bkl/types"
)

// TestSizedArrayInArgPositionRejected builds fun f = (a: [10]int<32>) void: {}
// and expects the completeness pass to reject the sized array formal.
func TestSizedArrayInArgPositionRejected(t *testing.T) {
	sizedArray := &ast.TypeNode{
		Kind:  ast.TNArray,
		Elem:  &ast.TypeNode{Kind: ast.TNIntegral, Width: 32, Signed: true},
		Bound: lit(types.Int32, 10),
	}
	param := &ast.Param{Name: "a", TypeNode: sizedArray}
	fn := &ast.FuncExpr{Params: []*ast.Param{param}, ReturnType: &ast.TypeNode{Kind: ast.TNVoid}}

	c := newChecker()
	c.inferFunc(fn)
	if c.Diag.Halted {
		t.Fatalf("unexpected halt during inference: %+v", c.Diag.Sink.(*diag.Collector).Diagnostics())
	}

	c.completeExpr(fn)
	if !c.Diag.Halted {
		t.Fatal("expected a halt: a sized array must not be a function argument's declared type")
	}
	col := c.Diag.Sink.(*diag.Collector)
	if col.Diagnostics()[len(col.Diagnostics())-1].Code != diag.SizedArrayInArgPos {
		t.Fatalf("want SizedArrayInArgPosition, got %s", col.Diagnostics()[0].Code)
	}
}

func TestUnsizedArrayInArgPositionAccepted(t *testing.T) {
	unsizedArray := &ast.TypeNode{Kind: ast.TNArray, Elem: &ast.TypeNode{Kind: ast.TNIntegral, Width: 32, Signed: true}}
	param := &ast.Param{Name: "a", TypeNode: unsizedArray}
	fn := &ast.FuncExpr{Params: []*ast.Param{param}, ReturnType: &ast.TypeNode{Kind: ast.TNVoid}}

	c := newChecker()
	c.inferFunc(fn)
	if c.Diag.Halted {
		t.Fatalf("unexpected halt during inference: %+v", c.Diag.Sink.(*diag.Collector).Diagnostics())
	}
	c.completeExpr(fn)
	if c.Diag.Halted {
		t.Fatal("unexpected halt: an unsized array formal is legal")
	}
	if unsizedArray.Complete == nil || *unsizedArray.Complete {
		t.Fatal("an unbounded array type is never complete")
	}
}

func TestCompleteFlagsIntegralAndStructTypes(t *testing.T) {
	st := &ast.TypeNode{
		Kind: ast.TNStruct,
		Name: "Point",
		Fields: []ast.StructElemNode{
			{Name: "x", Type: &ast.TypeNode{Kind: ast.TNIntegral, Width: 32, Signed: true}},
			{Name: "y", Type: &ast.TypeNode{Kind: ast.TNIntegral, Width: 32, Signed: true}},
		},
	}
	c := newChecker()
	c.resolveTypeNode(st)
	if c.Diag.Halted {
		t.Fatalf("unexpected halt resolving the fixture: %+v", c.Diag.Sink.(*diag.Collector).Diagnostics())
	}
	c.completeTypeNode(st)
	if c.Diag.Halted {
		t.Fatal("unexpected halt")
	}
	if st.Complete == nil || !*st.Complete {
		t.Fatal("a struct of two int<32> fields is complete")
	}
	for _, f := range st.Fields {
		if f.Type.Complete == nil || !*f.Type.Complete {
			t.Fatalf("field %q should be marked complete", f.Name)
		}
	}
}
