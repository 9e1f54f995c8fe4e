// Package ast is the semantic (not syntactic) description of the AST
// nodes the type-inference and completeness passes read and annotate.
// It exists so that package typecheck can be specified and tested
// without any source-file vocabulary — the parser that actually builds
// these nodes from text is an external collaborator (spec.md §1).
//
// Grounded on github.com/gmofishsauce/wut4's lang/sem and lang/ysem AST
// (Program/Stmt/Expr/Type node shapes, baseStmt/baseExpr embedding),
// widened to the operator and attribute vocabulary of spec.md §4.2.
package ast

import "github.com/gmofishsauce/bkl/types"

// Loc is a source location, carried so diagnostics can report it.
// Parser-supplied; the type phase never constructs one.
type Loc struct {
	File string
	Line int
}

// Program is the root of the AST: a flat list of top-level variable
// declarations. Functions are ordinary declarations whose initializer is
// a *FuncExpr (spec.md §4.2.7): "fun f = ...(...): {...}" desugars to
// "var f = (...)...: {...}".
type Program struct {
	SourceFile string
	Decls      []*VarDecl
}

// VarDecl is a global, local, or struct-field-less variable/function
// binding. Its resolved type is always the type of Init (spec.md
// §4.2.7: "A variable reference has the type of its declaration's
// initializer").
type VarDecl struct {
	Loc  Loc
	Name string
	Init Expr

	// TypeNode, when non-nil, is an explicit declared type to check
	// Init against in addition to inferring from Init.
	TypeNode *TypeNode

	// ResolvedType backs Type() for declarations with no Init
	// expression of their own: function parameters, loop iterators,
	// and try/catch exception bindings. Set directly by typecheck
	// instead of being derived from an initializer.
	ResolvedType *types.Type
}

// Type returns this declaration's type: an initializer's inferred type
// takes precedence (spec.md §4.2.7: "a variable reference has the type
// of its declaration's initializer"); declarations with no initializer
// (parameters, loop iterators, catch bindings) fall back to
// ResolvedType, set directly by whatever rule binds them.
func (d *VarDecl) Type() *types.Type {
	if d == nil {
		return nil
	}
	if d.Init != nil {
		return d.Init.GetType()
	}
	return d.ResolvedType
}

// ---------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------

type Stmt interface {
	stmtNode()
	GetLoc() Loc
}

type baseStmt struct{ Loc Loc }

func (s baseStmt) stmtNode()    {}
func (s baseStmt) GetLoc() Loc  { return s.Loc }

// ExprStmt evaluates an expression for effect.
type ExprStmt struct {
	baseStmt
	X Expr
}

// ReturnStmt returns from the enclosing function, with an optional value.
type ReturnStmt struct {
	baseStmt
	Value Expr // nil for void return
}

// IfStmt is a conditional.
type IfStmt struct {
	baseStmt
	Cond Expr
	Then []Stmt
	Else []Stmt
}

// LoopStmt covers both "while (cond) body" and the container-iteration
// form "for (iter in container; cond) body" (spec.md §4.2.9). Container
// and Iterator are both nil for a plain while-loop.
type LoopStmt struct {
	baseStmt
	Container Expr     // array or string expression, nil if none
	Iterator  *VarDecl // bound to the element type of Container
	Cond      Expr     // optional loop condition, nil if none
	Body      []Stmt
}

// PrintStmt prints a string expression.
type PrintStmt struct {
	baseStmt
	X Expr
}

// RaiseStmt raises an exception, with an optional integral exception
// number expression (spec.md §4.2.9, §6).
type RaiseStmt struct {
	baseStmt
	Exception Expr // nil for "reraise current exception"
}

// TryStmt is try/catch. CatchArg, when present, is bound to the raised
// exception number (int<32>); CatchCond, when present, restricts which
// exceptions this handler catches.
type TryStmt struct {
	baseStmt
	Body      []Stmt
	CatchArg  *VarDecl
	CatchCond Expr
	Catch     []Stmt
}

type BreakStmt struct{ baseStmt }
type ContinueStmt struct{ baseStmt }

// ---------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------

type Expr interface {
	exprNode()
	GetLoc() Loc
	GetType() *types.Type
	SetType(*types.Type)
}

type baseExpr struct {
	Loc  Loc
	Type *types.Type
}

func (e *baseExpr) exprNode()               {}
func (e *baseExpr) GetLoc() Loc              { return e.Loc }
func (e *baseExpr) GetType() *types.Type     { return e.Type }
func (e *baseExpr) SetType(t *types.Type)    { e.Type = t }

// LiteralExpr is an already-typed literal (spec.md §6: "literal nodes
// ... arrive already typed by the lexer"). IsOffset literals are
// represented by OffsetLitExpr instead.
type LiteralExpr struct {
	baseExpr
	IntVal int64
	StrVal string
	IsStr  bool
}

// IdentExpr references a declaration by name. Decl is resolved by
// whatever pass does name binding (out of scope here, per spec.md §1);
// typecheck only reads Decl.Type().
type IdentExpr struct {
	baseExpr
	Name string
	Decl *VarDecl
}

// UnaryOp enumerates spec.md §4.2.1's unary operators.
type UnaryOp int

const (
	OpNot UnaryOp = iota // logical NOT
	OpNeg                // arithmetic negation
	OpPos                // unary plus
	OpBNot               // bitwise complement
)

type UnaryExpr struct {
	baseExpr
	Op      UnaryOp
	Operand Expr
}

// BinaryOp enumerates spec.md §4.2.2/§4.2.3's binary operators.
type BinaryOp int

const (
	OpEq BinaryOp = iota
	OpNe
	OpLt
	OpGt
	OpLe
	OpGe
	OpAnd // logical AND
	OpOr  // logical OR
	OpIor // bitwise inclusive or
	OpXor
	OpBand // bitwise and
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpSl // shift left
	OpSr // shift right
	OpBconc
)

type BinaryExpr struct {
	baseExpr
	Op    BinaryOp
	Left  Expr
	Right Expr
}

// IsRelational reports whether op is one of the six comparison operators.
func (op BinaryOp) IsRelational() bool {
	switch op {
	case OpEq, OpNe, OpLt, OpGt, OpLe, OpGe:
		return true
	default:
		return false
	}
}

// IsLogical reports whether op is the short-circuiting AND/OR operator.
func (op BinaryOp) IsLogical() bool {
	return op == OpAnd || op == OpOr
}

func (op BinaryOp) String() string {
	switch op {
	case OpEq:
		return "=="
	case OpNe:
		return "!="
	case OpLt:
		return "<"
	case OpGt:
		return ">"
	case OpLe:
		return "<="
	case OpGe:
		return ">="
	case OpAnd:
		return "&&"
	case OpOr:
		return "||"
	case OpIor:
		return "|"
	case OpXor:
		return "^"
	case OpBand:
		return "&"
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpMod:
		return "%"
	case OpSl:
		return "<<"
	case OpSr:
		return ">>"
	case OpBconc:
		return "::"
	default:
		return "?"
	}
}

// Attr enumerates spec.md §4.2.4's attribute codes.
type Attr int

const (
	AttrSize Attr = iota
	AttrSigned
	AttrMagnitude
	AttrUnit
	AttrLength
	AttrAlignment
	AttrOffset
	AttrMapped
)

func (a Attr) String() string {
	switch a {
	case AttrSize:
		return "size"
	case AttrSigned:
		return "signed"
	case AttrMagnitude:
		return "magnitude"
	case AttrUnit:
		return "unit"
	case AttrLength:
		return "length"
	case AttrAlignment:
		return "alignment"
	case AttrOffset:
		return "offset"
	case AttrMapped:
		return "mapped"
	default:
		return "?"
	}
}

// AttrExpr is e'ATTR.
type AttrExpr struct {
	baseExpr
	Attr    Attr
	Operand Expr
}

// CastExpr is (target)expr.
type CastExpr struct {
	baseExpr
	Target  *TypeNode
	Operand Expr
}

// IsaExpr is expr isa type. Folded records the compile-time-known
// result (0 or 1) when §4.2.5's folding rule applies; nil means the
// check is deferred to run time (the operand's static type is any).
type IsaExpr struct {
	baseExpr
	Target  *TypeNode
	Operand Expr
	Folded  *int64
}

// SizeofExpr is sizeof(type) or sizeof(expr); exactly one of TargetType
// / TargetExpr is non-nil.
type SizeofExpr struct {
	baseExpr
	TargetType *TypeNode
	TargetExpr Expr
}

// OffsetLitExpr is the literal "m:U".
type OffsetLitExpr struct {
	baseExpr
	Magnitude Expr
	Unit      uint64
}

// ArrayLitExpr is "[e0, e1, ...]".
type ArrayLitExpr struct {
	baseExpr
	Elems []Expr
}

// StructLitField is one "name: value" pair of a struct literal/constructor.
type StructLitField struct {
	Name  string
	Value Expr
}

// StructLitExpr is an anonymous struct literal.
type StructLitExpr struct {
	baseExpr
	Fields []StructLitField
}

// TrimExpr is "e[a..b]".
type TrimExpr struct {
	baseExpr
	Entity Expr
	From   Expr
	To     Expr
}

// IndexExpr is "e[i]".
type IndexExpr struct {
	baseExpr
	Entity Expr
	Index  Expr
}

// FieldExpr is "e.f".
type FieldExpr struct {
	baseExpr
	Entity Expr
	Field  string
}

// MapExpr is "T @ o".
type MapExpr struct {
	baseExpr
	Target *TypeNode
	Offset Expr
}

// StructCtorExpr is "T { field: value, ... }".
type StructCtorExpr struct {
	baseExpr
	Target *TypeNode
	Fields []StructLitField
}

// CallArg is one actual argument of a call: Name is non-empty in
// named-argument mode.
type CallArg struct {
	Name  string
	Value Expr
}

// CallExpr is a function call. Callee is typically an IdentExpr but may
// be any expression whose type is a closure.
type CallExpr struct {
	baseExpr
	Callee Expr
	Args   []CallArg
}

// AssignExpr is "lvalue := expr".
type AssignExpr struct {
	baseExpr
	LHS Expr
	RHS Expr
}

// Param is one declared formal of a FuncExpr.
type Param struct {
	Name     string
	TypeNode *TypeNode
	Default  Expr // non-nil iff this formal is optional
	Vararg   bool // true iff this is the final, rest-collecting formal
	Decl     *VarDecl
}

// FuncExpr is a function literal: "(params) returnType: { body }". It is
// handled pre-order (spec.md §4.2.7) so that its closure type exists
// before Body is typed, letting Body reference the enclosing VarDecl
// recursively.
type FuncExpr struct {
	baseExpr
	Params     []*Param
	ReturnType *TypeNode
	Body       []Stmt
}

// ---------------------------------------------------------------------
// Type nodes: the syntactic type expressions the parser hands in, as
// distinct from the resolved types.Type the inference pass produces
// (spec.md §4.2.10, §4.3).
// ---------------------------------------------------------------------

type TypeNodeKind int

const (
	TNIntegral TypeNodeKind = iota
	TNString
	TNArray
	TNStruct
	TNOffset
	TNClosure
	TNAny
	TNVoid
	TNNamed // a reference to a named struct type declared elsewhere
)

// StructElemNode is one field declaration inside a struct type node.
type StructElemNode struct {
	Name string
	Type *TypeNode
}

// ArgTypeNode is one formal's declared type inside a closure type node.
type ArgTypeNode struct {
	Type     *TypeNode
	Optional bool
	Vararg   bool
}

// TypeNode is the syntactic type expression that appears in casts, sizeof,
// map, struct-constructor, var declarations and function signatures.
// Resolved and Complete are filled in by typecheck.Infer and
// typecheck.Complete respectively.
type TypeNode struct {
	Loc  Loc
	Kind TypeNodeKind

	Width  int  // TNIntegral
	Signed bool // TNIntegral

	Elem  *TypeNode // TNArray
	Bound Expr      // TNArray, optional: integral or offset expression

	Name   string           // TNStruct (optional) / TNNamed
	Fields []StructElemNode // TNStruct

	Base *TypeNode // TNOffset
	Unit uint64    // TNOffset

	Return *TypeNode     // TNClosure
	Args   []ArgTypeNode // TNClosure

	Resolved *types.Type // set by typecheck.Infer
	Complete *bool       // set by typecheck.Complete; nil until phase 2 runs
}
