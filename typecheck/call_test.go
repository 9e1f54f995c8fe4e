package typecheck

import (
	"testing"

	"github.com/gmofishsauce/bkl/ast"
	"github.com/gmofishsauce/bkl/diag"
	"github.com/gmofishsauce/bkl/types"
)

func closureIdent(ret *types.Type, args []types.Arg) *ast.IdentExpr {
	return &ast.IdentExpr{Name: "f", Decl: &ast.VarDecl{ResolvedType: types.ClosureType(ret, args)}}
}

func TestCheckPositionalArityTooFew(t *testing.T) {
	c := newChecker()
	formals := []types.Arg{{Name: "a", Type: types.Int32}, {Name: "b", Type: types.Int32}}
	if c.checkPositionalArity(ast.Loc{}, formals, 1) {
		t.Fatal("want arity failure: only 1 of 2 required arguments given")
	}
}

func TestCheckPositionalArityOptionalFillsIn(t *testing.T) {
	c := newChecker()
	formals := []types.Arg{{Name: "a", Type: types.Int32}, {Name: "b", Type: types.Int32, Optional: true}}
	if !c.checkPositionalArity(ast.Loc{}, formals, 1) {
		t.Fatal("want arity success: b is optional")
	}
}

func TestCheckPositionalArityVarargAcceptsExtra(t *testing.T) {
	c := newChecker()
	formals := []types.Arg{{Name: "a", Type: types.Int32}, {Name: "rest", Type: types.Int32, Vararg: true}}
	if !c.checkPositionalArity(ast.Loc{}, formals, 5) {
		t.Fatal("want arity success: trailing vararg absorbs extra actuals")
	}
}

func TestCheckPositionalArityTooManyWithoutVararg(t *testing.T) {
	c := newChecker()
	formals := []types.Arg{{Name: "a", Type: types.Int32}}
	if c.checkPositionalArity(ast.Loc{}, formals, 2) {
		t.Fatal("want arity failure: no vararg formal to absorb the second actual")
	}
}

// TestReorderNamedArgsFillsOptionalDefaultAndReorders mirrors a call
// f(c=3, b=7) against a declaration fun f = (a=1, b, c=2) ...: the
// caller omits the optional "a", so it's filled from its formal's own
// type, and the result comes back in declaration order (a, b, c)
// regardless of the order the caller named them in.
func TestReorderNamedArgsFillsOptionalDefaultAndReorders(t *testing.T) {
	formals := []types.Arg{
		{Name: "a", Type: types.Int32, Optional: true},
		{Name: "b", Type: types.Int32},
		{Name: "c", Type: types.Int32, Optional: true},
	}
	n := &ast.CallExpr{
		Args: []ast.CallArg{
			{Name: "c", Value: lit(types.Int32, 3)},
			{Name: "b", Value: lit(types.Int32, 7)},
		},
	}
	c := newChecker()
	ordered := c.reorderNamedArgs(n, formals)
	if c.Diag.Halted {
		t.Fatalf("unexpected halt: %+v", c.Diag.Sink.(*diag.Collector).Diagnostics())
	}
	if len(ordered) != 3 {
		t.Fatalf("want 3 reordered args, got %d", len(ordered))
	}
	if ordered[0].Name != "a" || ordered[1].Name != "b" || ordered[2].Name != "c" {
		t.Fatalf("want declaration order a,b,c, got %v", []string{ordered[0].Name, ordered[1].Name, ordered[2].Name})
	}
	if ordered[1].Value.(*ast.LiteralExpr).IntVal != 7 {
		t.Fatalf("want b=7, got %d", ordered[1].Value.(*ast.LiteralExpr).IntVal)
	}
	if ordered[2].Value.(*ast.LiteralExpr).IntVal != 3 {
		t.Fatalf("want c=3, got %d", ordered[2].Value.(*ast.LiteralExpr).IntVal)
	}
	if !types.Equal(ordered[0].Value.GetType(), types.Int32) {
		t.Fatalf("want omitted optional 'a' filled in with its formal type, got %s", ordered[0].Value.GetType())
	}
}

func TestReorderNamedArgsMissingRequired(t *testing.T) {
	formals := []types.Arg{{Name: "a", Type: types.Int32}, {Name: "b", Type: types.Int32}}
	n := &ast.CallExpr{Args: []ast.CallArg{{Name: "a", Value: lit(types.Int32, 1)}}}
	c := newChecker()
	c.reorderNamedArgs(n, formals)
	if !c.Diag.Halted {
		t.Fatal("expected a halt: required argument b was never supplied")
	}
	col := c.Diag.Sink.(*diag.Collector)
	if col.Diagnostics()[0].Code != diag.MissingRequiredArg {
		t.Fatalf("want MissingRequiredArg, got %s", col.Diagnostics()[0].Code)
	}
}

func TestReorderNamedArgsRejectsUnknownName(t *testing.T) {
	formals := []types.Arg{{Name: "a", Type: types.Int32}}
	n := &ast.CallExpr{Args: []ast.CallArg{{Name: "zzz", Value: lit(types.Int32, 1)}}}
	c := newChecker()
	c.reorderNamedArgs(n, formals)
	if !c.Diag.Halted {
		t.Fatal("expected a halt: no formal named zzz")
	}
}

func TestInferCallFullRoundTrip(t *testing.T) {
	callee := closureIdent(types.StringType(), []types.Arg{{Name: "n", Type: types.Int32}})
	call := &ast.CallExpr{Callee: callee, Args: []ast.CallArg{{Value: lit(types.Int32, 9)}}}
	c := newChecker()
	c.inferCall(call)
	if c.Diag.Halted {
		t.Fatalf("unexpected halt: %+v", c.Diag.Sink.(*diag.Collector).Diagnostics())
	}
	if !types.Equal(call.GetType(), types.StringType()) {
		t.Fatalf("want string, got %s", call.GetType())
	}
}

func TestInferCallWrongArgType(t *testing.T) {
	callee := closureIdent(types.StringType(), []types.Arg{{Name: "n", Type: types.Int32}})
	call := &ast.CallExpr{Callee: callee, Args: []ast.CallArg{{Value: strLit(types.StringType(), "x")}}}
	c := newChecker()
	c.inferCall(call)
	if !c.Diag.Halted {
		t.Fatal("expected a halt: string actual against an integral formal")
	}
	col := c.Diag.Sink.(*diag.Collector)
	if col.Diagnostics()[0].Code != diag.WrongArgType {
		t.Fatalf("want WrongArgType, got %s", col.Diagnostics()[0].Code)
	}
}

func TestInferCallNotCallable(t *testing.T) {
	call := &ast.CallExpr{Callee: lit(types.Int32, 1)}
	c := newChecker()
	c.inferCall(call)
	if !c.Diag.Halted {
		t.Fatal("expected a halt: an int<32> is not callable")
	}
	col := c.Diag.Sink.(*diag.Collector)
	if col.Diagnostics()[0].Code != diag.NotCallable {
		t.Fatalf("want NotCallable, got %s", col.Diagnostics()[0].Code)
	}
}
