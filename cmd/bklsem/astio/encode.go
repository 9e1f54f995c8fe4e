package astio

import (
	"encoding/json"

	"github.com/gmofishsauce/bkl/ast"
)

func encodeLoc(l ast.Loc) locWire { return locWire{File: l.File, Line: l.Line} }

func encodeVarDecl(d *ast.VarDecl) varDeclWire {
	w := varDeclWire{Loc: encodeLoc(d.Loc), Name: d.Name}
	if d.Init != nil {
		w.Init, _ = json.Marshal(encodeExpr(d.Init))
	}
	if d.TypeNode != nil {
		tn := encodeTypeNode(d.TypeNode)
		w.TypeNode = &tn
	}
	return w
}

func encodeTypeNode(tn *ast.TypeNode) typeNodeWire {
	if tn == nil {
		return typeNodeWire{Kind: "void"}
	}
	w := typeNodeWire{Loc: encodeLoc(tn.Loc), Width: tn.Width, Signed: tn.Signed, Name: tn.Name, Unit: tn.Unit}
	switch tn.Kind {
	case ast.TNIntegral:
		w.Kind = "integral"
	case ast.TNString:
		w.Kind = "string"
	case ast.TNArray:
		w.Kind = "array"
		elem := encodeTypeNode(tn.Elem)
		w.Elem = &elem
		if tn.Bound != nil {
			w.Bound, _ = json.Marshal(encodeExpr(tn.Bound))
		}
	case ast.TNStruct:
		w.Kind = "struct"
		for _, f := range tn.Fields {
			ft := encodeTypeNode(f.Type)
			w.Fields = append(w.Fields, structElemWire{Name: f.Name, Type: &ft})
		}
	case ast.TNOffset:
		w.Kind = "offset"
		base := encodeTypeNode(tn.Base)
		w.Base = &base
	case ast.TNClosure:
		w.Kind = "closure"
		ret := encodeTypeNode(tn.Return)
		w.Return = &ret
		for _, a := range tn.Args {
			at := encodeTypeNode(a.Type)
			w.Args = append(w.Args, argTypeWire{Type: &at, Optional: a.Optional, Vararg: a.Vararg})
		}
	case ast.TNAny:
		w.Kind = "any"
	case ast.TNVoid:
		w.Kind = "void"
	case ast.TNNamed:
		w.Kind = "named"
	}
	return w
}

func encodeBinaryOp(op ast.BinaryOp) string {
	names := []string{"eq", "ne", "lt", "gt", "le", "ge", "and", "or", "ior", "xor", "band", "add", "sub", "mul", "div", "mod", "sl", "sr", "bconc"}
	if int(op) < len(names) {
		return names[op]
	}
	return "?"
}

func encodeUnaryOp(op ast.UnaryOp) string {
	names := []string{"not", "neg", "pos", "bnot"}
	if int(op) < len(names) {
		return names[op]
	}
	return "?"
}

func encodeExpr(e ast.Expr) exprWire {
	w := exprWire{Loc: encodeLoc(e.GetLoc())}
	switch n := e.(type) {
	case *ast.LiteralExpr:
		w.Kind = "literal"
		w.IntVal, w.StrVal, w.IsStr = n.IntVal, n.StrVal, n.IsStr
	case *ast.IdentExpr:
		w.Kind = "ident"
		w.Name = n.Name
	case *ast.UnaryExpr:
		w.Kind = "unary"
		w.Op = encodeUnaryOp(n.Op)
		w.Operand, _ = json.Marshal(encodeExpr(n.Operand))
	case *ast.BinaryExpr:
		w.Kind = "binary"
		w.Op = encodeBinaryOp(n.Op)
		w.Left, _ = json.Marshal(encodeExpr(n.Left))
		w.Right, _ = json.Marshal(encodeExpr(n.Right))
	case *ast.AttrExpr:
		w.Kind = "attr"
		w.Attr = n.Attr.String()
		w.Operand, _ = json.Marshal(encodeExpr(n.Operand))
	case *ast.CastExpr:
		w.Kind = "cast"
		tn := encodeTypeNode(n.Target)
		w.Target = &tn
		w.Operand, _ = json.Marshal(encodeExpr(n.Operand))
	case *ast.IsaExpr:
		w.Kind = "isa"
		tn := encodeTypeNode(n.Target)
		w.Target = &tn
		w.Operand, _ = json.Marshal(encodeExpr(n.Operand))
	case *ast.SizeofExpr:
		w.Kind = "sizeof"
		if n.TargetType != nil {
			tn := encodeTypeNode(n.TargetType)
			w.TargetType = &tn
		} else {
			w.TargetExpr, _ = json.Marshal(encodeExpr(n.TargetExpr))
		}
	case *ast.OffsetLitExpr:
		w.Kind = "offsetLit"
		w.Unit = n.Unit
		w.Magnitude, _ = json.Marshal(encodeExpr(n.Magnitude))
	case *ast.ArrayLitExpr:
		w.Kind = "arrayLit"
		for _, el := range n.Elems {
			b, _ := json.Marshal(encodeExpr(el))
			w.Elems = append(w.Elems, b)
		}
	case *ast.StructLitExpr:
		w.Kind = "structLit"
		w.Fields = encodeFields(n.Fields)
	case *ast.TrimExpr:
		w.Kind = "trim"
		w.Entity, _ = json.Marshal(encodeExpr(n.Entity))
		w.From, _ = json.Marshal(encodeExpr(n.From))
		w.To, _ = json.Marshal(encodeExpr(n.To))
	case *ast.IndexExpr:
		w.Kind = "index"
		w.Entity, _ = json.Marshal(encodeExpr(n.Entity))
		w.Index, _ = json.Marshal(encodeExpr(n.Index))
	case *ast.FieldExpr:
		w.Kind = "field"
		w.Entity, _ = json.Marshal(encodeExpr(n.Entity))
		w.Field = n.Field
	case *ast.MapExpr:
		w.Kind = "map"
		tn := encodeTypeNode(n.Target)
		w.Target = &tn
		w.Offset, _ = json.Marshal(encodeExpr(n.Offset))
	case *ast.StructCtorExpr:
		w.Kind = "structCtor"
		tn := encodeTypeNode(n.Target)
		w.Target = &tn
		w.Fields = encodeFields(n.Fields)
	case *ast.CallExpr:
		w.Kind = "call"
		w.Callee, _ = json.Marshal(encodeExpr(n.Callee))
		for _, a := range n.Args {
			b, _ := json.Marshal(encodeExpr(a.Value))
			w.Args = append(w.Args, argWire{Name: a.Name, Value: b})
		}
	case *ast.AssignExpr:
		w.Kind = "assign"
		w.LHS, _ = json.Marshal(encodeExpr(n.LHS))
		w.RHS, _ = json.Marshal(encodeExpr(n.RHS))
	case *ast.FuncExpr:
		w.Kind = "func"
		rt := encodeTypeNode(n.ReturnType)
		w.ReturnType = &rt
		for _, p := range n.Params {
			pt := encodeTypeNode(p.TypeNode)
			pw := paramWire{Name: p.Name, TypeNode: &pt, Vararg: p.Vararg}
			if p.Default != nil {
				pw.Default, _ = json.Marshal(encodeExpr(p.Default))
			}
			w.Params = append(w.Params, pw)
		}
		for _, s := range n.Body {
			b, _ := json.Marshal(encodeStmt(s))
			w.Body = append(w.Body, b)
		}
	}
	return w
}

func encodeFields(fs []ast.StructLitField) []fieldWire {
	out := make([]fieldWire, 0, len(fs))
	for _, f := range fs {
		b, _ := json.Marshal(encodeExpr(f.Value))
		out = append(out, fieldWire{Name: f.Name, Value: b})
	}
	return out
}

func encodeStmt(s ast.Stmt) stmtWire {
	w := stmtWire{Loc: encodeLoc(s.GetLoc())}
	switch n := s.(type) {
	case *ast.ExprStmt:
		w.Kind = "expr"
		w.X, _ = json.Marshal(encodeExpr(n.X))
	case *ast.ReturnStmt:
		w.Kind = "return"
		if n.Value != nil {
			w.Value, _ = json.Marshal(encodeExpr(n.Value))
		}
	case *ast.IfStmt:
		w.Kind = "if"
		w.Cond, _ = json.Marshal(encodeExpr(n.Cond))
		w.Then = encodeStmtList(n.Then)
		w.Else = encodeStmtList(n.Else)
	case *ast.LoopStmt:
		w.Kind = "loop"
		if n.Container != nil {
			w.Container, _ = json.Marshal(encodeExpr(n.Container))
		}
		if n.Iterator != nil {
			it := encodeVarDecl(n.Iterator)
			w.Iterator = &it
		}
		if n.Cond != nil {
			w.Cond, _ = json.Marshal(encodeExpr(n.Cond))
		}
		w.Body = encodeStmtList(n.Body)
	case *ast.PrintStmt:
		w.Kind = "print"
		w.X, _ = json.Marshal(encodeExpr(n.X))
	case *ast.RaiseStmt:
		w.Kind = "raise"
		if n.Exception != nil {
			w.Exception, _ = json.Marshal(encodeExpr(n.Exception))
		}
	case *ast.TryStmt:
		w.Kind = "try"
		w.Body = encodeStmtList(n.Body)
		if n.CatchArg != nil {
			ca := encodeVarDecl(n.CatchArg)
			w.CatchArg = &ca
		}
		if n.CatchCond != nil {
			w.CatchCond, _ = json.Marshal(encodeExpr(n.CatchCond))
		}
		w.Catch = encodeStmtList(n.Catch)
	case *ast.BreakStmt:
		w.Kind = "break"
	case *ast.ContinueStmt:
		w.Kind = "continue"
	}
	return w
}

func encodeStmtList(ss []ast.Stmt) []json.RawMessage {
	out := make([]json.RawMessage, 0, len(ss))
	for _, s := range ss {
		b, _ := json.Marshal(encodeStmt(s))
		out = append(out, b)
	}
	return out
}
