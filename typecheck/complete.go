package typecheck

import (
	"github.com/gmofishsauce/bkl/ast"
	"github.com/gmofishsauce/bkl/diag"
)

// CompleteProgram runs the completeness pass (spec.md §4.3): a second
// traversal, invoked only once InferProgram has succeeded, that
// annotates every type node's Complete flag and enforces
// SizedArrayInArgPosition — a sized array type must never be the
// declared type of a function-type argument.
func (c *Checker) CompleteProgram(p *ast.Program) bool {
	for _, d := range p.Decls {
		if c.Diag.Halted {
			return false
		}
		c.completeVarDecl(d)
	}
	return !c.Diag.Halted
}

func (c *Checker) completeVarDecl(d *ast.VarDecl) {
	if d.TypeNode != nil {
		c.completeTypeNode(d.TypeNode)
	}
	if d.Init != nil {
		c.completeExpr(d.Init)
	}
}

// completeTypeNode annotates tn.Complete and recurses into its
// children, enforcing SizedArrayInArgPosition on every closure formal
// it encounters along the way.
func (c *Checker) completeTypeNode(tn *ast.TypeNode) {
	if c.Diag.Halted || tn == nil || tn.Complete != nil {
		return
	}
	switch tn.Kind {
	case ast.TNArray:
		c.completeTypeNode(tn.Elem)
	case ast.TNStruct:
		for _, f := range tn.Fields {
			c.completeTypeNode(f.Type)
		}
	case ast.TNOffset:
		c.completeTypeNode(tn.Base)
	case ast.TNClosure:
		c.completeTypeNode(tn.Return)
		for _, a := range tn.Args {
			c.completeTypeNode(a.Type)
			if isSizedArray(a.Type) {
				c.Diag.Error(c.loc(tn.Loc), diag.SizedArrayInArgPos,
					"sized array type %s must not be used as a function argument's declared type", a.Type.Resolved)
				return
			}
		}
	}
	complete := tn.Resolved.IsComplete()
	tn.Complete = &complete
}

func isSizedArray(tn *ast.TypeNode) bool {
	return tn != nil && tn.Kind == ast.TNArray && tn.Bound != nil
}

// completeExpr walks every expression that can carry a nested
// TypeNode — casts, isa, sizeof-of-type, map, struct constructors, and
// function literals (whose parameter/return type nodes are exactly the
// SizedArrayInArgPosition rule's target) — plus every subexpression,
// so a sizeof(T) applied to an incomplete T is re-annotated as the
// spec calls out explicitly.
func (c *Checker) completeExpr(e ast.Expr) {
	if c.Diag.Halted || e == nil {
		return
	}
	switch n := e.(type) {
	case *ast.LiteralExpr, *ast.IdentExpr:
		// Leaves; nothing to recurse into.
	case *ast.UnaryExpr:
		c.completeExpr(n.Operand)
	case *ast.BinaryExpr:
		c.completeExpr(n.Left)
		c.completeExpr(n.Right)
	case *ast.AttrExpr:
		c.completeExpr(n.Operand)
	case *ast.CastExpr:
		c.completeTypeNode(n.Target)
		c.completeExpr(n.Operand)
	case *ast.IsaExpr:
		c.completeTypeNode(n.Target)
		c.completeExpr(n.Operand)
	case *ast.SizeofExpr:
		if n.TargetType != nil {
			c.completeTypeNode(n.TargetType)
		} else {
			c.completeExpr(n.TargetExpr)
		}
	case *ast.OffsetLitExpr:
		c.completeExpr(n.Magnitude)
	case *ast.ArrayLitExpr:
		for _, el := range n.Elems {
			c.completeExpr(el)
		}
	case *ast.StructLitExpr:
		for _, f := range n.Fields {
			c.completeExpr(f.Value)
		}
	case *ast.TrimExpr:
		c.completeExpr(n.Entity)
		c.completeExpr(n.From)
		c.completeExpr(n.To)
	case *ast.IndexExpr:
		c.completeExpr(n.Entity)
		c.completeExpr(n.Index)
	case *ast.FieldExpr:
		c.completeExpr(n.Entity)
	case *ast.MapExpr:
		c.completeTypeNode(n.Target)
		c.completeExpr(n.Offset)
	case *ast.StructCtorExpr:
		c.completeTypeNode(n.Target)
		for _, f := range n.Fields {
			c.completeExpr(f.Value)
		}
	case *ast.CallExpr:
		c.completeExpr(n.Callee)
		for _, a := range n.Args {
			c.completeExpr(a.Value)
		}
	case *ast.AssignExpr:
		c.completeExpr(n.LHS)
		c.completeExpr(n.RHS)
	case *ast.FuncExpr:
		c.completeTypeNode(n.ReturnType)
		for _, p := range n.Params {
			c.completeTypeNode(p.TypeNode)
			if isSizedArray(p.TypeNode) {
				c.Diag.Error(c.loc(n.Loc), diag.SizedArrayInArgPos,
					"sized array type %s must not be used as a function argument's declared type", p.TypeNode.Resolved)
				return
			}
			if p.Default != nil {
				c.completeExpr(p.Default)
			}
		}
		c.completeStmts(n.Body)
	default:
		c.Diag.ICE(c.loc(e.GetLoc()), "completeExpr: unhandled expression node %T", e)
	}
}

func (c *Checker) completeStmts(ss []ast.Stmt) {
	for _, s := range ss {
		if c.Diag.Halted {
			return
		}
		c.completeStmt(s)
	}
}

func (c *Checker) completeStmt(s ast.Stmt) {
	if c.Diag.Halted || s == nil {
		return
	}
	switch n := s.(type) {
	case *ast.ExprStmt:
		c.completeExpr(n.X)
	case *ast.ReturnStmt:
		c.completeExpr(n.Value)
	case *ast.IfStmt:
		c.completeExpr(n.Cond)
		c.completeStmts(n.Then)
		c.completeStmts(n.Else)
	case *ast.LoopStmt:
		c.completeExpr(n.Container)
		c.completeExpr(n.Cond)
		c.completeStmts(n.Body)
	case *ast.PrintStmt:
		c.completeExpr(n.X)
	case *ast.RaiseStmt:
		c.completeExpr(n.Exception)
	case *ast.TryStmt:
		c.completeStmts(n.Body)
		c.completeExpr(n.CatchCond)
		c.completeStmts(n.Catch)
	case *ast.BreakStmt, *ast.ContinueStmt:
	default:
		c.Diag.ICE(c.loc(s.GetLoc()), "completeStmt: unhandled statement node %T", s)
	}
}
