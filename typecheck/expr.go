package typecheck

import (
	"github.com/gmofishsauce/bkl/ast"
	"github.com/gmofishsauce/bkl/diag"
	"github.com/gmofishsauce/bkl/types"
)

// inferExpr types e and its descendants. Dispatch is post-order for
// every node kind except *ast.FuncExpr, whose own type depends only on
// its declared signature (not its body), so it can be set before the
// body is visited — this is the one pre-order case spec.md §4.2.7
// calls out, and it falls naturally out of inferFunc doing its own
// descent instead of relying on a generic post-order walk.
func (c *Checker) inferExpr(e ast.Expr) {
	if c.Diag.Halted || e == nil {
		return
	}
	switch n := e.(type) {
	case *ast.LiteralExpr:
		c.inferLiteral(n)
	case *ast.IdentExpr:
		c.inferIdent(n)
	case *ast.UnaryExpr:
		c.inferUnary(n)
	case *ast.BinaryExpr:
		c.inferBinary(n)
	case *ast.AttrExpr:
		c.inferAttr(n)
	case *ast.CastExpr:
		c.inferCast(n)
	case *ast.IsaExpr:
		c.inferIsa(n)
	case *ast.SizeofExpr:
		c.inferSizeof(n)
	case *ast.OffsetLitExpr:
		c.inferOffsetLit(n)
	case *ast.ArrayLitExpr:
		c.inferArrayLit(n)
	case *ast.StructLitExpr:
		c.inferStructLit(n)
	case *ast.TrimExpr:
		c.inferTrim(n)
	case *ast.IndexExpr:
		c.inferIndex(n)
	case *ast.FieldExpr:
		c.inferField(n)
	case *ast.MapExpr:
		c.inferMap(n)
	case *ast.StructCtorExpr:
		c.inferStructCtor(n)
	case *ast.CallExpr:
		c.inferCall(n)
	case *ast.AssignExpr:
		c.inferAssign(n)
	case *ast.FuncExpr:
		c.inferFunc(n)
	default:
		c.Diag.ICE(c.loc(e.GetLoc()), "inferExpr: unhandled expression node %T", e)
	}
}

// inferLiteral asserts the lexer's contract (spec.md §6: "literal nodes
// ... arrive already typed by the lexer") instead of assigning a type.
func (c *Checker) inferLiteral(n *ast.LiteralExpr) {
	if n.GetType() == nil {
		c.Diag.ICE(c.loc(n.Loc), "literal node reached typify without a type from the lexer")
	}
}

// inferIdent gives a variable reference the type of its declaration
// (spec.md §4.2.7): well-defined because lexical scoping guarantees the
// declaration was typed first, except for the function pre-order case,
// which is handled by inferFunc setting its own type before recursing.
func (c *Checker) inferIdent(n *ast.IdentExpr) {
	t := n.Decl.Type()
	if t == nil {
		c.Diag.ICE(c.loc(n.Loc), "identifier %q resolved to a declaration with no type yet", n.Name)
		return
	}
	n.SetType(t)
}

// ---------------------------------------------------------------------
// 4.2.1 Unary operators
// ---------------------------------------------------------------------

func (c *Checker) inferUnary(n *ast.UnaryExpr) {
	c.inferExpr(n.Operand)
	if c.Diag.Halted {
		return
	}
	if !c.checkNotVoid(n.Loc, n.Operand.GetType(), "expression operand") {
		return
	}
	ot := n.Operand.GetType()
	switch n.Op {
	case ast.OpNot:
		if !ot.IsIntegral() {
			c.Diag.Error(c.loc(n.Loc), diag.InvalidOperands, "operand of ! must be integral, got %s", ot)
			return
		}
		n.SetType(types.BoolType())
	case ast.OpNeg, ast.OpPos, ast.OpBNot:
		n.SetType(ot)
	default:
		c.Diag.ICE(c.loc(n.Loc), "inferUnary: unhandled operator %v", n.Op)
	}
}

// ---------------------------------------------------------------------
// 4.2.2 / 4.2.3 Binary operators
// ---------------------------------------------------------------------

func (c *Checker) inferBinary(n *ast.BinaryExpr) {
	c.inferExpr(n.Left)
	c.inferExpr(n.Right)
	if c.Diag.Halted {
		return
	}
	if !c.checkNotVoid(n.Loc, n.Left.GetType(), "expression operand") {
		return
	}
	if !c.checkNotVoid(n.Loc, n.Right.GetType(), "expression operand") {
		return
	}
	lt, rt := n.Left.GetType(), n.Right.GetType()
	switch {
	case n.Op.IsRelational():
		c.inferRelational(n, lt, rt)
	case n.Op.IsLogical():
		n.SetType(types.BoolType())
	case n.Op == ast.OpSl || n.Op == ast.OpSr:
		if !lt.IsIntegral() || !rt.IsIntegral() {
			c.Diag.Error(c.loc(n.Loc), diag.InvalidOperands, "shift requires integral operands, got %s and %s", lt, rt)
			return
		}
		n.SetType(lt)
	case n.Op == ast.OpBconc:
		c.inferBconc(n, lt, rt)
	case n.Op == ast.OpAdd:
		c.inferAdd(n, lt, rt)
	case n.Op == ast.OpSub:
		c.inferSub(n, lt, rt)
	case n.Op == ast.OpMul:
		c.inferMul(n, lt, rt)
	case n.Op == ast.OpDiv:
		c.inferDiv(n, lt, rt)
	case n.Op == ast.OpMod:
		c.inferMod(n, lt, rt)
	case n.Op == ast.OpIor || n.Op == ast.OpXor || n.Op == ast.OpBand:
		if !lt.IsIntegral() || !rt.IsIntegral() {
			c.Diag.Error(c.loc(n.Loc), diag.InvalidOperands, "operands of %s must be integral, got %s and %s", n.Op, lt, rt)
			return
		}
		n.SetType(promoteIntegral(lt, rt))
	default:
		c.Diag.ICE(c.loc(n.Loc), "inferBinary: unhandled operator %v", n.Op)
	}
}

func (c *Checker) inferRelational(n *ast.BinaryExpr, lt, rt *types.Type) {
	ok := (lt.IsIntegral() && rt.IsIntegral()) ||
		(lt.Code == types.String && rt.Code == types.String) ||
		(lt.Code == types.Offset && rt.Code == types.Offset)
	if !ok {
		c.Diag.Error(c.loc(n.Loc), diag.InvalidOperands,
			"operands of %s must share the same top-level kind, got %s and %s", n.Op, lt, rt)
		return
	}
	n.SetType(types.BoolType())
}

func (c *Checker) inferAdd(n *ast.BinaryExpr, lt, rt *types.Type) {
	switch {
	case lt.IsIntegral() && rt.IsIntegral():
		n.SetType(promoteIntegral(lt, rt))
	case lt.Code == types.String && rt.Code == types.String:
		n.SetType(types.StringType())
	case lt.Code == types.Offset && rt.Code == types.Offset:
		n.SetType(types.OffsetType(promoteIntegral(lt.Base, rt.Base), 1))
	default:
		c.Diag.Error(c.loc(n.Loc), diag.InvalidOperands, "invalid operands to +: %s and %s", lt, rt)
	}
}

func (c *Checker) inferSub(n *ast.BinaryExpr, lt, rt *types.Type) {
	switch {
	case lt.IsIntegral() && rt.IsIntegral():
		n.SetType(promoteIntegral(lt, rt))
	case lt.Code == types.Offset && rt.Code == types.Offset:
		n.SetType(types.OffsetType(promoteIntegral(lt.Base, rt.Base), 1))
	default:
		c.Diag.Error(c.loc(n.Loc), diag.InvalidOperands, "invalid operands to -: %s and %s", lt, rt)
	}
}

func (c *Checker) inferMul(n *ast.BinaryExpr, lt, rt *types.Type) {
	switch {
	case lt.IsIntegral() && rt.IsIntegral():
		n.SetType(promoteIntegral(lt, rt))
	case lt.IsIntegral() && rt.Code == types.Offset:
		n.SetType(types.OffsetType(promoteIntegral(lt, rt.Base), rt.Unit))
	case lt.Code == types.Offset && rt.IsIntegral():
		n.SetType(types.OffsetType(promoteIntegral(lt.Base, rt), lt.Unit))
	default:
		c.Diag.Error(c.loc(n.Loc), diag.InvalidOperands, "invalid operands to *: %s and %s", lt, rt)
	}
}

func (c *Checker) inferDiv(n *ast.BinaryExpr, lt, rt *types.Type) {
	switch {
	case lt.IsIntegral() && rt.IsIntegral():
		n.SetType(promoteIntegral(lt, rt))
	case lt.Code == types.Offset && rt.Code == types.Offset:
		n.SetType(promoteIntegral(lt.Base, rt.Base))
	default:
		c.Diag.Error(c.loc(n.Loc), diag.InvalidOperands, "invalid operands to /: %s and %s", lt, rt)
	}
}

func (c *Checker) inferMod(n *ast.BinaryExpr, lt, rt *types.Type) {
	switch {
	case lt.IsIntegral() && rt.IsIntegral():
		n.SetType(promoteIntegral(lt, rt))
	case lt.Code == types.Offset && rt.Code == types.Offset:
		n.SetType(types.OffsetType(lt.Base, rt.Unit))
	default:
		c.Diag.Error(c.loc(n.Loc), diag.InvalidOperands, "invalid operands to %%: %s and %s", lt, rt)
	}
}

func (c *Checker) inferBconc(n *ast.BinaryExpr, lt, rt *types.Type) {
	if !lt.IsIntegral() || !rt.IsIntegral() {
		c.Diag.Error(c.loc(n.Loc), diag.InvalidOperands, "operands of :: must be integral, got %s and %s", lt, rt)
		return
	}
	w := lt.Width + rt.Width
	if w > 64 {
		c.Diag.Error(c.loc(n.Loc), diag.WidthOverflow, "bit-concatenation width %d exceeds 64", w)
		return
	}
	n.SetType(types.IntegralType(w, lt.Signed))
}

// ---------------------------------------------------------------------
// 4.2.4 Attributes
// ---------------------------------------------------------------------

func (c *Checker) inferAttr(n *ast.AttrExpr) {
	c.inferExpr(n.Operand)
	if c.Diag.Halted {
		return
	}
	ot := n.Operand.GetType()
	invalid := func() {
		c.Diag.Error(c.loc(n.Loc), diag.InvalidAttribute, "attribute '%s has no operand of type %s", n.Attr, ot)
	}
	switch n.Attr {
	case ast.AttrSize:
		if !(ot.IsIntegral() || ot.Code == types.String || ot.Code == types.Array || ot.Code == types.Struct || ot.Code == types.Offset) {
			invalid()
			return
		}
		n.SetType(types.OffsetType(types.UInt64, 1))
	case ast.AttrSigned:
		if !ot.IsIntegral() {
			invalid()
			return
		}
		n.SetType(types.BoolType())
	case ast.AttrMagnitude, ast.AttrUnit:
		if ot.Code != types.Offset {
			invalid()
			return
		}
		n.SetType(types.UInt64)
	case ast.AttrLength:
		if !(ot.Code == types.Array || ot.Code == types.Struct || ot.Code == types.String) {
			invalid()
			return
		}
		n.SetType(types.UInt64)
	case ast.AttrAlignment:
		if ot.Code != types.Struct {
			invalid()
			return
		}
		n.SetType(types.UInt64)
	case ast.AttrOffset:
		if !(ot.Code == types.Array || ot.Code == types.Struct) {
			invalid()
			return
		}
		n.SetType(types.OffsetType(types.UInt64, 1))
	case ast.AttrMapped:
		n.SetType(types.BoolType())
	default:
		c.Diag.ICE(c.loc(n.Loc), "inferAttr: unhandled attribute %v", n.Attr)
	}
}

// ---------------------------------------------------------------------
// 4.2.5 Casts, isa, sizeof, offset literal
// ---------------------------------------------------------------------

func (c *Checker) inferCast(n *ast.CastExpr) {
	c.inferExpr(n.Operand)
	if c.Diag.Halted {
		return
	}
	if !c.checkNotVoid(n.Loc, n.Operand.GetType(), "cast operand") {
		return
	}
	target := c.resolveTypeNode(n.Target)
	if c.Diag.Halted {
		return
	}
	if target.IsAny() || target.IsFunction() {
		c.Diag.Error(c.loc(n.Loc), diag.InvalidCast, "cannot cast to %s", target)
		return
	}
	ot := n.Operand.GetType()
	if ot.IsFunction() {
		c.Diag.Error(c.loc(n.Loc), diag.InvalidCast, "cannot cast a function value")
		return
	}
	if target.Code == types.String && !(ot.IsIntegral() && ot.Width == 8 && !ot.Signed) {
		c.Diag.Error(c.loc(n.Loc), diag.InvalidCast, "cast to string requires uint<8>, got %s", ot)
		return
	}
	n.SetType(target)
}

func (c *Checker) inferIsa(n *ast.IsaExpr) {
	c.inferExpr(n.Operand)
	if c.Diag.Halted {
		return
	}
	target := c.resolveTypeNode(n.Target)
	if c.Diag.Halted {
		return
	}
	ot := n.Operand.GetType()
	switch {
	case target.IsAny():
		v := int64(1)
		n.Folded = &v
	case !ot.IsAny():
		v := int64(0)
		if types.Equal(ot, target) {
			v = 1
		}
		n.Folded = &v
	default:
		n.Folded = nil // deferred to run time
	}
	n.SetType(types.BoolType())
}

func (c *Checker) inferSizeof(n *ast.SizeofExpr) {
	if n.TargetType != nil {
		c.resolveTypeNode(n.TargetType)
	} else {
		c.inferExpr(n.TargetExpr)
		if c.Diag.Halted {
			return
		}
		c.checkNotVoid(n.Loc, n.TargetExpr.GetType(), "expression operand")
	}
	if c.Diag.Halted {
		return
	}
	n.SetType(types.OffsetType(types.UInt64, 1))
}

func (c *Checker) inferOffsetLit(n *ast.OffsetLitExpr) {
	c.inferExpr(n.Magnitude)
	if c.Diag.Halted {
		return
	}
	if !c.checkNotVoid(n.Loc, n.Magnitude.GetType(), "offset magnitude") {
		return
	}
	mt := n.Magnitude.GetType()
	if !mt.IsIntegral() {
		c.Diag.Error(c.loc(n.Loc), diag.InvalidOperands, "offset literal magnitude must be integral, got %s", mt)
		return
	}
	n.SetType(types.OffsetType(mt, n.Unit))
}

// ---------------------------------------------------------------------
// 4.2.6 Composite constructors and references
// ---------------------------------------------------------------------

func (c *Checker) inferArrayLit(n *ast.ArrayLitExpr) {
	for _, e := range n.Elems {
		c.inferExpr(e)
		if c.Diag.Halted {
			return
		}
		if !c.checkNotVoid(n.Loc, e.GetType(), "array-initializer") {
			return
		}
	}
	if len(n.Elems) == 0 {
		n.SetType(types.ArrayType(types.AnyType(), types.Bound{}))
		return
	}
	first := n.Elems[0].GetType()
	for _, e := range n.Elems[1:] {
		if !types.Equal(e.GetType(), first) {
			c.Diag.Error(c.loc(n.Loc), diag.TypeMismatch,
				"array literal element type %s does not match %s", e.GetType(), first)
			return
		}
	}
	n.SetType(types.ArrayType(first, types.Bound{Present: true, Constant: true, Value: int64(len(n.Elems))}))
}

func (c *Checker) inferStructLit(n *ast.StructLitExpr) {
	seen := make(map[string]bool, len(n.Fields))
	fields := make([]types.Field, 0, len(n.Fields))
	for _, f := range n.Fields {
		c.inferExpr(f.Value)
		if c.Diag.Halted {
			return
		}
		if !c.checkNotVoid(n.Loc, f.Value.GetType(), "struct-element") {
			return
		}
		if seen[f.Name] {
			c.Diag.Error(c.loc(n.Loc), diag.DuplicateField, "duplicate struct literal field %q", f.Name)
			return
		}
		seen[f.Name] = true
		fields = append(fields, types.Field{Name: f.Name, Type: f.Value.GetType()})
	}
	n.SetType(types.StructType("", fields))
}

func (c *Checker) inferTrim(n *ast.TrimExpr) {
	c.inferExpr(n.Entity)
	c.inferExpr(n.From)
	c.inferExpr(n.To)
	if c.Diag.Halted {
		return
	}
	if !n.From.GetType().IsIntegral() || !n.To.GetType().IsIntegral() {
		c.Diag.Error(c.loc(n.Loc), diag.InvalidOperands, "trim bounds must be integral, got %s and %s",
			n.From.GetType(), n.To.GetType())
		return
	}
	n.SetType(n.Entity.GetType())
}

func (c *Checker) inferIndex(n *ast.IndexExpr) {
	c.inferExpr(n.Entity)
	c.inferExpr(n.Index)
	if c.Diag.Halted {
		return
	}
	if !c.checkNotVoid(n.Loc, n.Entity.GetType(), "indexer") {
		return
	}
	if !n.Index.GetType().IsIntegral() {
		c.Diag.Error(c.loc(n.Loc), diag.InvalidOperands, "index must be integral, got %s", n.Index.GetType())
		return
	}
	et := n.Entity.GetType()
	switch et.Code {
	case types.Array:
		n.SetType(et.Elem)
	case types.String:
		n.SetType(types.IntegralType(8, false))
	default:
		c.Diag.Error(c.loc(n.Loc), diag.InvalidIndexTarget, "cannot index a value of type %s", et)
	}
}

func (c *Checker) inferField(n *ast.FieldExpr) {
	c.inferExpr(n.Entity)
	if c.Diag.Halted {
		return
	}
	et := n.Entity.GetType()
	if et.Code != types.Struct {
		c.Diag.Error(c.loc(n.Loc), diag.InvalidIndexTarget, "cannot select a field of non-struct type %s", et)
		return
	}
	for _, f := range et.Fields {
		if f.Name == n.Field {
			n.SetType(f.Type)
			return
		}
	}
	c.Diag.Error(c.loc(n.Loc), diag.NoSuchField, "type %s has no field %q", et, n.Field)
}

func (c *Checker) inferMap(n *ast.MapExpr) {
	c.inferExpr(n.Offset)
	if c.Diag.Halted {
		return
	}
	if !c.checkNotVoid(n.Loc, n.Offset.GetType(), "map expression") {
		return
	}
	if n.Offset.GetType().Code != types.Offset {
		c.Diag.Error(c.loc(n.Loc), diag.TypeMismatch, "map offset must be an offset value, got %s", n.Offset.GetType())
		return
	}
	target := c.resolveTypeNode(n.Target)
	if c.Diag.Halted {
		return
	}
	n.SetType(target)
}

func (c *Checker) inferStructCtor(n *ast.StructCtorExpr) {
	target := c.resolveTypeNode(n.Target)
	if c.Diag.Halted {
		return
	}
	if target.Code != types.Struct {
		c.Diag.Error(c.loc(n.Loc), diag.TypeMismatch, "struct constructor target %s is not a struct type", target)
		return
	}
	for _, f := range n.Fields {
		c.inferExpr(f.Value)
		if c.Diag.Halted {
			return
		}
		if !c.checkNotVoid(n.Loc, f.Value.GetType(), "struct-element") {
			return
		}
	}
	n.SetType(target)
}

// ---------------------------------------------------------------------
// 4.2.8 Assignment
// ---------------------------------------------------------------------

func (c *Checker) inferAssign(n *ast.AssignExpr) {
	c.inferExpr(n.LHS)
	c.inferExpr(n.RHS)
	if c.Diag.Halted {
		return
	}
	if !c.checkNotVoid(n.Loc, n.RHS.GetType(), "expression operand") {
		return
	}
	lt := n.LHS.GetType()
	if !lt.IsAny() && !compatible(lt, n.RHS.GetType()) {
		c.Diag.Error(c.loc(n.Loc), diag.TypeMismatch,
			"cannot assign %s to an lvalue of type %s", n.RHS.GetType(), lt)
		return
	}
	n.SetType(lt)
}
