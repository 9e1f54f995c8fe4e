package astio

import (
	"encoding/json"
	"fmt"

	"github.com/gmofishsauce/bkl/ast"
)

// decoder carries the lexical-scope stack needed to resolve IdentExpr
// references by name — the JSON wire format has no pointer identity,
// so a name that does not resolve against any enclosing scope is a
// decode-time error rather than something deferred to the type checker.
type decoder struct {
	scopes []map[string]*ast.VarDecl
}

func (d *decoder) pushScope()          { d.scopes = append(d.scopes, map[string]*ast.VarDecl{}) }
func (d *decoder) popScope()           { d.scopes = d.scopes[:len(d.scopes)-1] }
func (d *decoder) bind(v *ast.VarDecl) { d.scopes[len(d.scopes)-1][v.Name] = v }

func (d *decoder) lookup(name string) *ast.VarDecl {
	for i := len(d.scopes) - 1; i >= 0; i-- {
		if v, ok := d.scopes[i][name]; ok {
			return v
		}
	}
	return nil
}

func decodeLoc(l locWire) ast.Loc { return ast.Loc{File: l.File, Line: l.Line} }

func (d *decoder) decodeVarDecl(w varDeclWire) (*ast.VarDecl, error) {
	vd := &ast.VarDecl{Loc: decodeLoc(w.Loc), Name: w.Name}
	d.bind(vd) // bound before Init is decoded: self-referential functions.
	if w.TypeNode != nil {
		tn, err := d.decodeTypeNode(w.TypeNode)
		if err != nil {
			return nil, err
		}
		vd.TypeNode = tn
	}
	if len(w.Init) > 0 {
		e, err := d.decodeExprRaw(w.Init)
		if err != nil {
			return nil, err
		}
		vd.Init = e
	}
	return vd, nil
}

func (d *decoder) decodeTypeNode(w *typeNodeWire) (*ast.TypeNode, error) {
	if w == nil {
		return nil, nil
	}
	tn := &ast.TypeNode{Loc: decodeLoc(w.Loc), Width: w.Width, Signed: w.Signed, Name: w.Name, Unit: w.Unit}
	switch w.Kind {
	case "integral":
		tn.Kind = ast.TNIntegral
	case "string":
		tn.Kind = ast.TNString
	case "array":
		tn.Kind = ast.TNArray
		elem, err := d.decodeTypeNode(w.Elem)
		if err != nil {
			return nil, err
		}
		tn.Elem = elem
		if len(w.Bound) > 0 {
			b, err := d.decodeExprRaw(w.Bound)
			if err != nil {
				return nil, err
			}
			tn.Bound = b
		}
	case "struct":
		tn.Kind = ast.TNStruct
		for _, f := range w.Fields {
			ft, err := d.decodeTypeNode(f.Type)
			if err != nil {
				return nil, err
			}
			tn.Fields = append(tn.Fields, ast.StructElemNode{Name: f.Name, Type: ft})
		}
	case "offset":
		tn.Kind = ast.TNOffset
		base, err := d.decodeTypeNode(w.Base)
		if err != nil {
			return nil, err
		}
		tn.Base = base
	case "closure":
		tn.Kind = ast.TNClosure
		ret, err := d.decodeTypeNode(w.Return)
		if err != nil {
			return nil, err
		}
		tn.Return = ret
		for _, a := range w.Args {
			at, err := d.decodeTypeNode(a.Type)
			if err != nil {
				return nil, err
			}
			tn.Args = append(tn.Args, ast.ArgTypeNode{Type: at, Optional: a.Optional, Vararg: a.Vararg})
		}
	case "any":
		tn.Kind = ast.TNAny
	case "void", "":
		tn.Kind = ast.TNVoid
	case "named":
		tn.Kind = ast.TNNamed
	default:
		return nil, fmt.Errorf("astio: unknown type node kind %q", w.Kind)
	}
	return tn, nil
}

func decodeBinaryOp(s string) (ast.BinaryOp, error) {
	table := map[string]ast.BinaryOp{
		"eq": ast.OpEq, "ne": ast.OpNe, "lt": ast.OpLt, "gt": ast.OpGt, "le": ast.OpLe, "ge": ast.OpGe,
		"and": ast.OpAnd, "or": ast.OpOr, "ior": ast.OpIor, "xor": ast.OpXor, "band": ast.OpBand,
		"add": ast.OpAdd, "sub": ast.OpSub, "mul": ast.OpMul, "div": ast.OpDiv, "mod": ast.OpMod,
		"sl": ast.OpSl, "sr": ast.OpSr, "bconc": ast.OpBconc,
	}
	op, ok := table[s]
	if !ok {
		return 0, fmt.Errorf("astio: unknown binary operator %q", s)
	}
	return op, nil
}

func decodeUnaryOp(s string) (ast.UnaryOp, error) {
	table := map[string]ast.UnaryOp{"not": ast.OpNot, "neg": ast.OpNeg, "pos": ast.OpPos, "bnot": ast.OpBNot}
	op, ok := table[s]
	if !ok {
		return 0, fmt.Errorf("astio: unknown unary operator %q", s)
	}
	return op, nil
}

func decodeAttr(s string) (ast.Attr, error) {
	table := map[string]ast.Attr{
		"size": ast.AttrSize, "signed": ast.AttrSigned, "magnitude": ast.AttrMagnitude,
		"unit": ast.AttrUnit, "length": ast.AttrLength, "alignment": ast.AttrAlignment,
		"offset": ast.AttrOffset, "mapped": ast.AttrMapped,
	}
	a, ok := table[s]
	if !ok {
		return 0, fmt.Errorf("astio: unknown attribute %q", s)
	}
	return a, nil
}

func (d *decoder) decodeExprRaw(raw json.RawMessage) (ast.Expr, error) {
	var w exprWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("astio: decode expr: %w", err)
	}
	return d.decodeExpr(w)
}

// decodeExpr builds the concrete node for w.Kind. Every node type here
// embeds package ast's unexported baseExpr, so it cannot be built with
// a positional literal from this package; each case constructs with a
// keyed literal of only its own directly-declared fields, then sets
// Loc through the promoted (exported) selector.
func (d *decoder) decodeExpr(w exprWire) (ast.Expr, error) {
	loc := decodeLoc(w.Loc)
	switch w.Kind {
	case "literal":
		n := &ast.LiteralExpr{IntVal: w.IntVal, StrVal: w.StrVal, IsStr: w.IsStr}
		n.Loc = loc
		return n, nil
	case "ident":
		decl := d.lookup(w.Name)
		if decl == nil {
			return nil, fmt.Errorf("astio: undefined identifier %q", w.Name)
		}
		n := &ast.IdentExpr{Name: w.Name, Decl: decl}
		n.Loc = loc
		return n, nil
	case "unary":
		op, err := decodeUnaryOp(w.Op)
		if err != nil {
			return nil, err
		}
		operand, err := d.decodeExprRaw(w.Operand)
		if err != nil {
			return nil, err
		}
		n := &ast.UnaryExpr{Op: op, Operand: operand}
		n.Loc = loc
		return n, nil
	case "binary":
		op, err := decodeBinaryOp(w.Op)
		if err != nil {
			return nil, err
		}
		l, err := d.decodeExprRaw(w.Left)
		if err != nil {
			return nil, err
		}
		r, err := d.decodeExprRaw(w.Right)
		if err != nil {
			return nil, err
		}
		n := &ast.BinaryExpr{Op: op, Left: l, Right: r}
		n.Loc = loc
		return n, nil
	case "attr":
		a, err := decodeAttr(w.Attr)
		if err != nil {
			return nil, err
		}
		operand, err := d.decodeExprRaw(w.Operand)
		if err != nil {
			return nil, err
		}
		n := &ast.AttrExpr{Attr: a, Operand: operand}
		n.Loc = loc
		return n, nil
	case "cast":
		target, err := d.decodeTypeNode(w.Target)
		if err != nil {
			return nil, err
		}
		operand, err := d.decodeExprRaw(w.Operand)
		if err != nil {
			return nil, err
		}
		n := &ast.CastExpr{Target: target, Operand: operand}
		n.Loc = loc
		return n, nil
	case "isa":
		target, err := d.decodeTypeNode(w.Target)
		if err != nil {
			return nil, err
		}
		operand, err := d.decodeExprRaw(w.Operand)
		if err != nil {
			return nil, err
		}
		n := &ast.IsaExpr{Target: target, Operand: operand}
		n.Loc = loc
		return n, nil
	case "sizeof":
		n := &ast.SizeofExpr{}
		n.Loc = loc
		if w.TargetType != nil {
			tt, err := d.decodeTypeNode(w.TargetType)
			if err != nil {
				return nil, err
			}
			n.TargetType = tt
		} else {
			te, err := d.decodeExprRaw(w.TargetExpr)
			if err != nil {
				return nil, err
			}
			n.TargetExpr = te
		}
		return n, nil
	case "offsetLit":
		mag, err := d.decodeExprRaw(w.Magnitude)
		if err != nil {
			return nil, err
		}
		n := &ast.OffsetLitExpr{Magnitude: mag, Unit: w.Unit}
		n.Loc = loc
		return n, nil
	case "arrayLit":
		n := &ast.ArrayLitExpr{}
		n.Loc = loc
		for _, raw := range w.Elems {
			e, err := d.decodeExprRaw(raw)
			if err != nil {
				return nil, err
			}
			n.Elems = append(n.Elems, e)
		}
		return n, nil
	case "structLit":
		n := &ast.StructLitExpr{}
		n.Loc = loc
		fields, err := d.decodeLitFields(w.Fields)
		if err != nil {
			return nil, err
		}
		n.Fields = fields
		return n, nil
	case "trim":
		entity, err := d.decodeExprRaw(w.Entity)
		if err != nil {
			return nil, err
		}
		from, err := d.decodeExprRaw(w.From)
		if err != nil {
			return nil, err
		}
		to, err := d.decodeExprRaw(w.To)
		if err != nil {
			return nil, err
		}
		n := &ast.TrimExpr{Entity: entity, From: from, To: to}
		n.Loc = loc
		return n, nil
	case "index":
		entity, err := d.decodeExprRaw(w.Entity)
		if err != nil {
			return nil, err
		}
		idx, err := d.decodeExprRaw(w.Index)
		if err != nil {
			return nil, err
		}
		n := &ast.IndexExpr{Entity: entity, Index: idx}
		n.Loc = loc
		return n, nil
	case "field":
		entity, err := d.decodeExprRaw(w.Entity)
		if err != nil {
			return nil, err
		}
		n := &ast.FieldExpr{Entity: entity, Field: w.Field}
		n.Loc = loc
		return n, nil
	case "map":
		target, err := d.decodeTypeNode(w.Target)
		if err != nil {
			return nil, err
		}
		off, err := d.decodeExprRaw(w.Offset)
		if err != nil {
			return nil, err
		}
		n := &ast.MapExpr{Target: target, Offset: off}
		n.Loc = loc
		return n, nil
	case "structCtor":
		target, err := d.decodeTypeNode(w.Target)
		if err != nil {
			return nil, err
		}
		fields, err := d.decodeLitFields(w.Fields)
		if err != nil {
			return nil, err
		}
		n := &ast.StructCtorExpr{Target: target, Fields: fields}
		n.Loc = loc
		return n, nil
	case "call":
		callee, err := d.decodeExprRaw(w.Callee)
		if err != nil {
			return nil, err
		}
		n := &ast.CallExpr{Callee: callee}
		n.Loc = loc
		for _, a := range w.Args {
			v, err := d.decodeExprRaw(a.Value)
			if err != nil {
				return nil, err
			}
			n.Args = append(n.Args, ast.CallArg{Name: a.Name, Value: v})
		}
		return n, nil
	case "assign":
		lhs, err := d.decodeExprRaw(w.LHS)
		if err != nil {
			return nil, err
		}
		rhs, err := d.decodeExprRaw(w.RHS)
		if err != nil {
			return nil, err
		}
		n := &ast.AssignExpr{LHS: lhs, RHS: rhs}
		n.Loc = loc
		return n, nil
	case "func":
		return d.decodeFunc(loc, w)
	default:
		return nil, fmt.Errorf("astio: unknown expression kind %q", w.Kind)
	}
}

func (d *decoder) decodeLitFields(fs []fieldWire) ([]ast.StructLitField, error) {
	out := make([]ast.StructLitField, 0, len(fs))
	for _, f := range fs {
		v, err := d.decodeExprRaw(f.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, ast.StructLitField{Name: f.Name, Value: v})
	}
	return out, nil
}

func (d *decoder) decodeFunc(loc ast.Loc, w exprWire) (ast.Expr, error) {
	n := &ast.FuncExpr{}
	n.Loc = loc
	rt, err := d.decodeTypeNode(w.ReturnType)
	if err != nil {
		return nil, err
	}
	n.ReturnType = rt

	d.pushScope()
	defer d.popScope()

	for _, pw := range w.Params {
		pt, err := d.decodeTypeNode(pw.TypeNode)
		if err != nil {
			return nil, err
		}
		p := &ast.Param{Name: pw.Name, TypeNode: pt, Vararg: pw.Vararg}
		p.Decl = &ast.VarDecl{Loc: loc, Name: pw.Name}
		d.bind(p.Decl)
		if len(pw.Default) > 0 {
			def, err := d.decodeExprRaw(pw.Default)
			if err != nil {
				return nil, err
			}
			p.Default = def
		}
		n.Params = append(n.Params, p)
	}
	body, err := d.decodeStmtList(w.Body)
	if err != nil {
		return nil, err
	}
	n.Body = body
	return n, nil
}

func (d *decoder) decodeStmtList(raws []json.RawMessage) ([]ast.Stmt, error) {
	out := make([]ast.Stmt, 0, len(raws))
	for _, raw := range raws {
		var w stmtWire
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, fmt.Errorf("astio: decode stmt: %w", err)
		}
		s, err := d.decodeStmt(w)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (d *decoder) decodeStmt(w stmtWire) (ast.Stmt, error) {
	loc := decodeLoc(w.Loc)
	switch w.Kind {
	case "expr":
		x, err := d.decodeExprRaw(w.X)
		if err != nil {
			return nil, err
		}
		n := &ast.ExprStmt{X: x}
		n.Loc = loc
		return n, nil
	case "return":
		var v ast.Expr
		if len(w.Value) > 0 {
			var err error
			v, err = d.decodeExprRaw(w.Value)
			if err != nil {
				return nil, err
			}
		}
		n := &ast.ReturnStmt{Value: v}
		n.Loc = loc
		return n, nil
	case "if":
		cond, err := d.decodeExprRaw(w.Cond)
		if err != nil {
			return nil, err
		}
		then, err := d.decodeStmtList(w.Then)
		if err != nil {
			return nil, err
		}
		els, err := d.decodeStmtList(w.Else)
		if err != nil {
			return nil, err
		}
		n := &ast.IfStmt{Cond: cond, Then: then, Else: els}
		n.Loc = loc
		return n, nil
	case "loop":
		n := &ast.LoopStmt{}
		n.Loc = loc
		d.pushScope()
		defer d.popScope()
		if len(w.Container) > 0 {
			c, err := d.decodeExprRaw(w.Container)
			if err != nil {
				return nil, err
			}
			n.Container = c
		}
		if w.Iterator != nil {
			it, err := d.decodeVarDecl(*w.Iterator)
			if err != nil {
				return nil, err
			}
			n.Iterator = it
		}
		if len(w.Cond) > 0 {
			c, err := d.decodeExprRaw(w.Cond)
			if err != nil {
				return nil, err
			}
			n.Cond = c
		}
		body, err := d.decodeStmtList(w.Body)
		if err != nil {
			return nil, err
		}
		n.Body = body
		return n, nil
	case "print":
		x, err := d.decodeExprRaw(w.X)
		if err != nil {
			return nil, err
		}
		n := &ast.PrintStmt{X: x}
		n.Loc = loc
		return n, nil
	case "raise":
		var ex ast.Expr
		if len(w.Exception) > 0 {
			var err error
			ex, err = d.decodeExprRaw(w.Exception)
			if err != nil {
				return nil, err
			}
		}
		n := &ast.RaiseStmt{Exception: ex}
		n.Loc = loc
		return n, nil
	case "try":
		n := &ast.TryStmt{}
		n.Loc = loc
		body, err := d.decodeStmtList(w.Body)
		if err != nil {
			return nil, err
		}
		n.Body = body
		d.pushScope()
		defer d.popScope()
		if w.CatchArg != nil {
			ca, err := d.decodeVarDecl(*w.CatchArg)
			if err != nil {
				return nil, err
			}
			n.CatchArg = ca
		}
		if len(w.CatchCond) > 0 {
			cc, err := d.decodeExprRaw(w.CatchCond)
			if err != nil {
				return nil, err
			}
			n.CatchCond = cc
		}
		catch, err := d.decodeStmtList(w.Catch)
		if err != nil {
			return nil, err
		}
		n.Catch = catch
		return n, nil
	case "break":
		n := &ast.BreakStmt{}
		n.Loc = loc
		return n, nil
	case "continue":
		n := &ast.ContinueStmt{}
		n.Loc = loc
		return n, nil
	default:
		return nil, fmt.Errorf("astio: unknown statement kind %q", w.Kind)
	}
}
