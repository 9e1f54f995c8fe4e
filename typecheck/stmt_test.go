package typecheck

import (
	"testing"

	"github.com/gmofishsauce/bkl/ast"
	"github.com/gmofishsauce/bkl/diag"
	"github.com/gmofishsauce/bkl/types"
)

func TestInferIfRequiresInt32Condition(t *testing.T) {
	n := &ast.IfStmt{Cond: lit(types.StringType(), 0)}
	c := newChecker()
	c.inferIf(n)
	if !c.Diag.Halted {
		t.Fatal("expected a halt: if condition must be int<32>")
	}
}

func TestInferIfAcceptsInt32Condition(t *testing.T) {
	n := &ast.IfStmt{Cond: lit(types.Int32, 1)}
	c := newChecker()
	c.inferIf(n)
	if c.Diag.Halted {
		t.Fatal("unexpected halt")
	}
}

func TestInferLoopBindsIteratorToElementType(t *testing.T) {
	arr := &ast.ArrayLitExpr{Elems: []ast.Expr{lit(types.IntegralType(8, false), 1)}}
	c := newChecker()
	c.inferExpr(arr)
	if c.Diag.Halted {
		t.Fatalf("unexpected halt building the fixture: %+v", c.Diag.Sink.(*diag.Collector).Diagnostics())
	}
	iter := &ast.VarDecl{Name: "x"}
	loop := &ast.LoopStmt{Container: arr, Iterator: iter}
	c.inferLoop(loop)
	if c.Diag.Halted {
		t.Fatal("unexpected halt")
	}
	if !types.Equal(iter.ResolvedType, types.IntegralType(8, false)) {
		t.Fatalf("want iterator bound to uint<8>, got %s", iter.ResolvedType)
	}
}

func TestInferLoopContainerMustBeArrayOrString(t *testing.T) {
	loop := &ast.LoopStmt{Container: lit(types.Int32, 1)}
	c := newChecker()
	c.inferLoop(loop)
	if !c.Diag.Halted {
		t.Fatal("expected a halt: an int<32> is not iterable")
	}
}

func TestInferPrintRequiresString(t *testing.T) {
	n := &ast.PrintStmt{X: lit(types.Int32, 1)}
	c := newChecker()
	c.inferPrint(n)
	if !c.Diag.Halted {
		t.Fatal("expected a halt: print requires a string operand")
	}
}

func TestInferRaiseRequiresIntegralOperand(t *testing.T) {
	n := &ast.RaiseStmt{Exception: strLit(types.StringType(), "x")}
	c := newChecker()
	c.inferRaise(n)
	if !c.Diag.Halted {
		t.Fatal("expected a halt: raise operand must be integral")
	}
}

func TestInferRaiseWithNoOperandIsAlwaysFine(t *testing.T) {
	n := &ast.RaiseStmt{}
	c := newChecker()
	c.inferRaise(n)
	if c.Diag.Halted {
		t.Fatal("unexpected halt: bare reraise needs no typing")
	}
}

func TestInferTryBindsCatchArgToInt32(t *testing.T) {
	catchArg := &ast.VarDecl{Name: "e"}
	n := &ast.TryStmt{CatchArg: catchArg}
	c := newChecker()
	c.inferTry(n)
	if c.Diag.Halted {
		t.Fatal("unexpected halt")
	}
	if !types.Equal(catchArg.ResolvedType, types.IntegralType(32, true)) {
		t.Fatalf("want catch binding typed int<32>, got %s", catchArg.ResolvedType)
	}
}

func TestInferReturnVoidFunctionRejectsValue(t *testing.T) {
	c := newChecker()
	c.retStack = append(c.retStack, types.VoidType())
	n := &ast.ReturnStmt{Value: lit(types.Int32, 1)}
	c.inferReturn(n)
	if !c.Diag.Halted {
		t.Fatal("expected a halt: a void function cannot return a value")
	}
}

func TestInferReturnNonVoidRequiresCompatibleValue(t *testing.T) {
	c := newChecker()
	c.retStack = append(c.retStack, types.StringType())
	n := &ast.ReturnStmt{Value: lit(types.Int32, 1)}
	c.inferReturn(n)
	if !c.Diag.Halted {
		t.Fatal("expected a halt: returning an int<32> where string is declared")
	}
}

func TestInferReturnNonVoidRequiresAValue(t *testing.T) {
	c := newChecker()
	c.retStack = append(c.retStack, types.StringType())
	n := &ast.ReturnStmt{}
	c.inferReturn(n)
	if !c.Diag.Halted {
		t.Fatal("expected a halt: a non-void function must return a value")
	}
}

func TestInferFuncBuildsClosureTypeBeforeVisitingBody(t *testing.T) {
	// fun f = () int<32>: { return f(); } -- the recursive self-call
	// inside the body must see f's own closure type, which only exists
	// because inferFunc sets it pre-order, before Body is visited.
	decl := &ast.VarDecl{Name: "f"}
	fn := &ast.FuncExpr{ReturnType: &ast.TypeNode{Kind: ast.TNIntegral, Width: 32, Signed: true}}
	selfIdent := &ast.IdentExpr{Name: "f", Decl: decl}
	fn.Body = []ast.Stmt{&ast.ReturnStmt{Value: &ast.CallExpr{Callee: selfIdent}}}
	decl.Init = fn

	c := newChecker()
	c.inferFunc(fn)
	if c.Diag.Halted {
		t.Fatalf("unexpected halt: %+v", c.Diag.Sink.(*diag.Collector).Diagnostics())
	}
	if !fn.GetType().IsFunction() {
		t.Fatal("want fn's own type set to a closure type")
	}
}
