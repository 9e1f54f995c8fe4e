package typecheck

import (
	"github.com/gmofishsauce/bkl/ast"
	"github.com/gmofishsauce/bkl/diag"
	"github.com/gmofishsauce/bkl/types"
)

// inferStmts types a statement list in order, stopping at the first
// failure.
func (c *Checker) inferStmts(ss []ast.Stmt) {
	for _, s := range ss {
		if c.Diag.Halted {
			return
		}
		c.inferStmt(s)
	}
}

func (c *Checker) inferStmt(s ast.Stmt) {
	if c.Diag.Halted || s == nil {
		return
	}
	switch n := s.(type) {
	case *ast.ExprStmt:
		c.inferExpr(n.X)
	case *ast.ReturnStmt:
		c.inferReturn(n)
	case *ast.IfStmt:
		c.inferIf(n)
	case *ast.LoopStmt:
		c.inferLoop(n)
	case *ast.PrintStmt:
		c.inferPrint(n)
	case *ast.RaiseStmt:
		c.inferRaise(n)
	case *ast.TryStmt:
		c.inferTry(n)
	case *ast.BreakStmt, *ast.ContinueStmt:
		// No type obligations.
	default:
		c.Diag.ICE(c.loc(s.GetLoc()), "inferStmt: unhandled statement node %T", s)
	}
}

// inferFunc types a function literal pre-order (spec.md §4.2.7): the
// closure type is built from the declared signature — and, critically,
// set on n — before Body is visited, so a self-referential recursive
// call inside Body sees the enclosing declaration's type already in
// place. Each formal's types.Arg carries its declared Name, enabling
// named-argument call reordering (call.go) against this
// closure; a closure type resolved from a bare type-node annotation
// (resolveTypeNode's TNClosure case) has no such names.
func (c *Checker) inferFunc(n *ast.FuncExpr) {
	ret := c.resolveTypeNode(n.ReturnType)
	if c.Diag.Halted {
		return
	}

	args := make([]types.Arg, 0, len(n.Params))
	for _, p := range n.Params {
		pt := c.resolveTypeNode(p.TypeNode)
		if c.Diag.Halted {
			return
		}
		if p.Decl == nil {
			p.Decl = &ast.VarDecl{Loc: n.Loc, Name: p.Name}
		}
		p.Decl.ResolvedType = pt
		args = append(args, types.Arg{Name: p.Name, Type: pt, Optional: p.Default != nil, Vararg: p.Vararg})
	}
	n.SetType(types.ClosureType(ret, args))

	for i, p := range n.Params {
		if p.Default == nil {
			continue
		}
		c.inferExpr(p.Default)
		if c.Diag.Halted {
			return
		}
		if !c.checkNotVoid(n.Loc, p.Default.GetType(), "variable initializer") {
			return
		}
		if !compatible(args[i].Type, p.Default.GetType()) {
			c.Diag.Error(c.loc(n.Loc), diag.TypeMismatch,
				"default value for parameter %q has type %s, expected %s", p.Name, p.Default.GetType(), args[i].Type)
			return
		}
	}

	c.retStack = append(c.retStack, ret)
	c.inferStmts(n.Body)
	c.retStack = c.retStack[:len(c.retStack)-1]
}

// inferIf types the condition and both branches. spec.md §4.2.9
// enumerates Loop/Print/Raise/Try/Return's condition/operand rules but
// is silent on If; requiring int<32> here mirrors Loop's explicit rule
// so every conditional construct in the language agrees on what a
// "condition" is.
func (c *Checker) inferIf(n *ast.IfStmt) {
	c.inferExpr(n.Cond)
	if c.Diag.Halted {
		return
	}
	if !conditionIsBool(n.Cond.GetType()) {
		c.Diag.Error(c.loc(n.Loc), diag.TypeMismatch, "if condition must be int<32>, got %s", n.Cond.GetType())
		return
	}
	c.inferStmts(n.Then)
	if c.Diag.Halted {
		return
	}
	c.inferStmts(n.Else)
}

func conditionIsBool(t *types.Type) bool {
	return t != nil && t.Code == types.Integral && t.Width == 32 && t.Signed
}

// inferLoop types the container-iteration and plain-while forms
// (spec.md §4.2.9): Container, when present, must be an array or
// string, and Iterator's ResolvedType becomes its element type (or
// uint<8> for a string, matching inferIndex's string-indexing rule);
// Cond, when present, must be exactly int<32>; Body is typed last so
// it sees both bindings.
func (c *Checker) inferLoop(n *ast.LoopStmt) {
	if n.Container != nil {
		c.inferExpr(n.Container)
		if c.Diag.Halted {
			return
		}
		ct := n.Container.GetType()
		var elemType *types.Type
		switch {
		case ct.Code == types.Array:
			elemType = ct.Elem
		case ct.Code == types.String:
			elemType = types.IntegralType(8, false)
		default:
			c.Diag.Error(c.loc(n.Loc), diag.InvalidIndexTarget, "loop container must be an array or string, got %s", ct)
			return
		}
		if n.Iterator != nil {
			n.Iterator.ResolvedType = elemType
		}
	}
	if n.Cond != nil {
		c.inferExpr(n.Cond)
		if c.Diag.Halted {
			return
		}
		if !conditionIsBool(n.Cond.GetType()) {
			c.Diag.Error(c.loc(n.Loc), diag.TypeMismatch, "loop condition must be int<32>, got %s", n.Cond.GetType())
			return
		}
	}
	c.inferStmts(n.Body)
}

// inferPrint requires a string operand.
func (c *Checker) inferPrint(n *ast.PrintStmt) {
	c.inferExpr(n.X)
	if c.Diag.Halted {
		return
	}
	if !c.checkNotVoid(n.Loc, n.X.GetType(), "expression operand") {
		return
	}
	if n.X.GetType().Code != types.String {
		c.Diag.Error(c.loc(n.Loc), diag.TypeMismatch, "print operand must be a string, got %s", n.X.GetType())
	}
}

// inferRaise requires an integral exception-number expression when one
// is given; "raise" with no operand reraises the current exception and
// needs no typing.
func (c *Checker) inferRaise(n *ast.RaiseStmt) {
	if n.Exception == nil {
		return
	}
	c.inferExpr(n.Exception)
	if c.Diag.Halted {
		return
	}
	if !c.checkNotVoid(n.Loc, n.Exception.GetType(), "expression operand") {
		return
	}
	if !n.Exception.GetType().IsIntegral() {
		c.Diag.Error(c.loc(n.Loc), diag.InvalidOperands, "raise operand must be integral, got %s", n.Exception.GetType())
	}
}

// inferTry types the protected body, binds CatchArg to int<32> (the
// exception number ABI type, per package abi), requires CatchCond, when
// present, to be integral, then types the catch body.
func (c *Checker) inferTry(n *ast.TryStmt) {
	c.inferStmts(n.Body)
	if c.Diag.Halted {
		return
	}
	if n.CatchArg != nil {
		n.CatchArg.ResolvedType = types.IntegralType(32, true)
	}
	if n.CatchCond != nil {
		c.inferExpr(n.CatchCond)
		if c.Diag.Halted {
			return
		}
		if !n.CatchCond.GetType().IsIntegral() {
			c.Diag.Error(c.loc(n.Loc), diag.InvalidOperands,
				"catch condition must be integral, got %s", n.CatchCond.GetType())
			return
		}
	}
	c.inferStmts(n.Catch)
}

// inferReturn enforces the enclosing function's declared return type: a
// void function accepts no value, a non-void function requires one
// compatible with its declared return type.
func (c *Checker) inferReturn(n *ast.ReturnStmt) {
	if len(c.retStack) == 0 {
		c.Diag.ICE(c.loc(n.Loc), "return statement outside of any function")
		return
	}
	want := c.retStack[len(c.retStack)-1]
	if want.Code == types.Void {
		if n.Value != nil {
			c.Diag.Error(c.loc(n.Loc), diag.TypeMismatch, "void function cannot return a value")
		}
		return
	}
	if n.Value == nil {
		c.Diag.Error(c.loc(n.Loc), diag.TypeMismatch, "function declared to return %s must return a value", want)
		return
	}
	c.inferExpr(n.Value)
	if c.Diag.Halted {
		return
	}
	if !c.checkNotVoid(n.Loc, n.Value.GetType(), "expression operand") {
		return
	}
	if !compatible(want, n.Value.GetType()) {
		c.Diag.Error(c.loc(n.Loc), diag.TypeMismatch,
			"returned value has type %s, expected %s", n.Value.GetType(), want)
	}
}
