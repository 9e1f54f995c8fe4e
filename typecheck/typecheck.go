// Package typecheck implements the two-phase compile-time analysis
// over package ast's node shapes: type inference (this file and its
// siblings expr.go/call.go/stmt.go) and, in complete.go, the
// completeness pass that runs once inference succeeds.
//
// Grounded on github.com/gmofishsauce/wut4's lang/sem/lang/ysem
// Analyzer: a struct holding accumulated errors plus a table of
// globals/structs, walked with one handler method per node kind,
// generalized here into a driver keyed on Go type switches (the
// teacher's AST is itself a closed, Go-native node set, so a type
// switch plays the role its node.Kind-keyed dispatch table plays in a
// language without sum types).
package typecheck

import (
	"github.com/gmofishsauce/bkl/ast"
	"github.com/gmofishsauce/bkl/diag"
	"github.com/gmofishsauce/bkl/types"
)

// Checker drives the type-inference traversal. It halts at the first
// rule failure (spec.md §5's cooperative-termination model): every
// handler checks c.Diag.Halted before doing further work and returns
// early if it's already set.
type Checker struct {
	Diag *diag.Reporter

	// named holds named struct types as they are declared, so that a
	// TNNamed type node can resolve to the type it names. The AST
	// model (package ast) carries no separate "type declaration" node;
	// a named struct becomes known to the checker the first time a
	// TNStruct type node carrying that name is resolved.
	named map[string]*types.Type

	// retStack is the declared return type of each function currently
	// being typed, innermost last; inferReturn consults its top.
	retStack []*types.Type
}

// NewChecker returns a Checker reporting through r (or a fresh
// *diag.Collector if r is nil).
func NewChecker(r *diag.Reporter) *Checker {
	if r == nil {
		r = diag.NewReporter(nil)
	}
	return &Checker{Diag: r, named: make(map[string]*types.Type)}
}

// InferProgram types every top-level declaration in order, stopping at
// the first failure. It reports whether the program is well-typed.
func (c *Checker) InferProgram(p *ast.Program) bool {
	for _, d := range p.Decls {
		if c.Diag.Halted {
			return false
		}
		c.inferVarDecl(d)
	}
	return !c.Diag.Halted
}

func (c *Checker) loc(l ast.Loc) diag.Location {
	return diag.Location{File: l.File, Line: l.Line}
}

func (c *Checker) inferVarDecl(d *ast.VarDecl) {
	if d.Init == nil {
		// A declaration with no initializer can only be a parameter,
		// loop iterator, or catch binding, all of which are bound
		// directly by their owning construct, never visited here.
		return
	}
	c.inferExpr(d.Init)
	if c.Diag.Halted {
		return
	}
	if !c.checkNotVoid(d.Loc, d.Init.GetType(), "variable initializer") {
		return
	}
	if d.TypeNode != nil {
		declared := c.resolveTypeNode(d.TypeNode)
		if c.Diag.Halted {
			return
		}
		if !compatible(declared, d.Init.GetType()) {
			c.Diag.Error(c.loc(d.Loc), diag.TypeMismatch,
				"variable %q declared as %s but initialized with %s", d.Name, declared, d.Init.GetType())
		}
	}
}

// checkNotVoid enforces spec.md §4.2.7 step 7's void-in-value-context
// rule at one of the listed value-consuming positions.
func (c *Checker) checkNotVoid(loc ast.Loc, t *types.Type, context string) bool {
	if t != nil && t.Code == types.Void {
		c.Diag.Error(c.loc(loc), diag.VoidInValueContext, "void value used in %s context", context)
		return false
	}
	return true
}

// compatible implements spec.md §4.2.7 step 6 / §4.2.8's argument and
// assignment compatibility rule: structural equality, or the formal
// (lvalue) side is any, or both sides are integral, or both sides are
// offset.
func compatible(formal, actual *types.Type) bool {
	if types.Equal(formal, actual) {
		return true
	}
	if formal.IsAny() {
		return true
	}
	if formal.IsIntegral() && actual.IsIntegral() {
		return true
	}
	if formal.Code == types.Offset && actual.Code == types.Offset {
		return true
	}
	return false
}

// promoteIntegral implements the integral promotion rule shared by
// most arithmetic/bitwise operators (spec.md §4.2.3): result width is
// the wider operand's width, result is unsigned iff either operand is.
func promoteIntegral(a, b *types.Type) *types.Type {
	w := a.Width
	if b.Width > w {
		w = b.Width
	}
	return types.IntegralType(w, a.Signed && b.Signed)
}

// resolveTypeNode turns a syntactic type expression into a *types.Type,
// applying spec.md §4.2.10's validations and memoizing the result onto
// the node.
func (c *Checker) resolveTypeNode(tn *ast.TypeNode) *types.Type {
	if tn == nil {
		return types.VoidType()
	}
	if tn.Resolved != nil {
		return tn.Resolved
	}
	var t *types.Type
	switch tn.Kind {
	case ast.TNIntegral:
		if tn.Width < 1 || tn.Width > 64 {
			c.Diag.Error(c.loc(tn.Loc), diag.InvalidWidth, "integral type width %d out of range [1,64]", tn.Width)
			return types.VoidType()
		}
		t = types.IntegralType(tn.Width, tn.Signed)
	case ast.TNString:
		t = types.StringType()
	case ast.TNArray:
		elem := c.resolveTypeNode(tn.Elem)
		if c.Diag.Halted {
			return types.VoidType()
		}
		bound := types.Bound{}
		if tn.Bound != nil {
			c.inferExpr(tn.Bound)
			if c.Diag.Halted {
				return types.VoidType()
			}
			bt := tn.Bound.GetType()
			if !bt.IsIntegral() && bt.Code != types.Offset {
				c.Diag.Error(c.loc(tn.Loc), diag.InvalidOperands, "array bound must be integral or offset, got %s", bt)
				return types.VoidType()
			}
			bound = boundOf(tn.Bound, bt)
		}
		t = types.ArrayType(elem, bound)
	case ast.TNStruct:
		fields := make([]types.Field, 0, len(tn.Fields))
		for _, f := range tn.Fields {
			ft := c.resolveTypeNode(f.Type)
			if c.Diag.Halted {
				return types.VoidType()
			}
			if ft.IsFunction() {
				c.Diag.Error(c.loc(tn.Loc), diag.InvalidOperands,
					"struct element %q must not be a function type", f.Name)
				return types.VoidType()
			}
			fields = append(fields, types.Field{Name: f.Name, Type: ft})
		}
		t = types.StructType(tn.Name, fields)
		if tn.Name != "" {
			c.named[tn.Name] = t
		}
	case ast.TNOffset:
		base := c.resolveTypeNode(tn.Base)
		if c.Diag.Halted {
			return types.VoidType()
		}
		t = types.OffsetType(base, tn.Unit)
	case ast.TNClosure:
		ret := c.resolveTypeNode(tn.Return)
		if c.Diag.Halted {
			return types.VoidType()
		}
		args := make([]types.Arg, 0, len(tn.Args))
		for _, a := range tn.Args {
			at := c.resolveTypeNode(a.Type)
			if c.Diag.Halted {
				return types.VoidType()
			}
			args = append(args, types.Arg{Type: at, Optional: a.Optional, Vararg: a.Vararg})
		}
		t = types.ClosureType(ret, args)
	case ast.TNAny:
		t = types.AnyType()
	case ast.TNVoid:
		t = types.VoidType()
	case ast.TNNamed:
		named, ok := c.named[tn.Name]
		if !ok {
			c.Diag.Error(c.loc(tn.Loc), diag.UnknownType, "undefined type %q", tn.Name)
			return types.VoidType()
		}
		t = named
	default:
		c.Diag.ICE(c.loc(tn.Loc), "resolveTypeNode: unhandled type node kind %v", tn.Kind)
		return types.VoidType()
	}
	tn.Resolved = t
	return t
}

// boundOf turns an already-typed array bound expression into a
// types.Bound. An integral literal folds to a constant element-count
// bound; an offset-typed bound is tracked as a size-in-bits bound, but
// is only folded to a constant when it is itself an integral literal
// offset (an OffsetLitExpr whose magnitude is a literal) — anything
// more general is a compile-time-unknown size bound.
func boundOf(e ast.Expr, bt *types.Type) types.Bound {
	if bt.Code == types.Offset {
		if lit, ok := e.(*ast.OffsetLitExpr); ok {
			if mag, ok := lit.Magnitude.(*ast.LiteralExpr); ok && !mag.IsStr {
				return types.Bound{Present: true, InBits: true, Constant: true, Value: mag.IntVal * int64(lit.Unit)}
			}
		}
		return types.Bound{Present: true, InBits: true, Constant: false}
	}
	if lit, ok := e.(*ast.LiteralExpr); ok && !lit.IsStr {
		return types.Bound{Present: true, Constant: true, Value: lit.IntVal}
	}
	return types.Bound{Present: true, Constant: false}
}
