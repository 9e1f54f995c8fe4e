// Package astio reads and writes package ast's *ast.Program as JSON,
// playing the same external-interface role as the teacher's
// line-oriented ASTReader (lang/sem/reader.go): a textual format an
// external parser process can emit and this one can consume,
// independent of the analyzer's in-memory representation. The format
// itself differs — JSON with a "kind" string discriminator per node,
// rather than the teacher's "STRUCT …"/"FUNC …" line grammar — because
// this AST has many more node kinds (every operator and attribute
// spec.md §4.2 names) than YAPL's.
package astio

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/gmofishsauce/bkl/ast"
)

// Decode reads a JSON-encoded program from r. Identifier references are
// resolved by name against the nearest enclosing declaration with that
// name, since JSON carries no pointer identity; an unresolved name is a
// decode error, not deferred to the type checker.
func Decode(r io.Reader) (*ast.Program, error) {
	var raw programWire
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("astio: decode: %w", err)
	}
	d := &decoder{scopes: []map[string]*ast.VarDecl{{}}}
	p := &ast.Program{SourceFile: raw.SourceFile}
	for _, dw := range raw.Decls {
		vd, err := d.decodeVarDecl(dw)
		if err != nil {
			return nil, err
		}
		p.Decls = append(p.Decls, vd)
	}
	return p, nil
}

// Encode writes p to w as JSON.
func Encode(w io.Writer, p *ast.Program) error {
	wire := programWire{SourceFile: p.SourceFile}
	for _, d := range p.Decls {
		wire.Decls = append(wire.Decls, encodeVarDecl(d))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(wire); err != nil {
		return fmt.Errorf("astio: encode: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------
// Wire shapes. Every node carries its own Kind string; recursive fields
// are json.RawMessage so the decoder can dispatch on Kind before fully
// unmarshaling children.
// ---------------------------------------------------------------------

type locWire struct {
	File string `json:"file,omitempty"`
	Line int    `json:"line,omitempty"`
}

type programWire struct {
	SourceFile string         `json:"sourceFile"`
	Decls      []varDeclWire  `json:"decls"`
}

type varDeclWire struct {
	Loc      locWire          `json:"loc"`
	Name     string           `json:"name"`
	Init     json.RawMessage  `json:"init,omitempty"`
	TypeNode *typeNodeWire    `json:"typeNode,omitempty"`
}

type paramWire struct {
	Name     string          `json:"name"`
	TypeNode *typeNodeWire   `json:"typeNode"`
	Default  json.RawMessage `json:"default,omitempty"`
	Vararg   bool            `json:"vararg,omitempty"`
}

type structElemWire struct {
	Name string        `json:"name"`
	Type *typeNodeWire `json:"type"`
}

type argTypeWire struct {
	Type     *typeNodeWire `json:"type"`
	Optional bool          `json:"optional,omitempty"`
	Vararg   bool          `json:"vararg,omitempty"`
}

type typeNodeWire struct {
	Loc    locWire          `json:"loc"`
	Kind   string           `json:"kind"`
	Width  int              `json:"width,omitempty"`
	Signed bool             `json:"signed,omitempty"`
	Elem   *typeNodeWire    `json:"elem,omitempty"`
	Bound  json.RawMessage  `json:"bound,omitempty"`
	Name   string           `json:"name,omitempty"`
	Fields []structElemWire `json:"fields,omitempty"`
	Base   *typeNodeWire    `json:"base,omitempty"`
	Unit   uint64           `json:"unit,omitempty"`
	Return *typeNodeWire    `json:"return,omitempty"`
	Args   []argTypeWire    `json:"args,omitempty"`
}

// exprWire/stmtWire are the generic envelopes: Kind selects which of
// the kind-specific fields below apply. A single flat struct (rather
// than one Go type per node) keeps the decoder to one switch instead of
// one json.Unmarshaler per node kind, at the cost of most fields being
// omitempty and irrelevant to most kinds — the same tradeoff the
// teacher's reader.go line grammar makes by keying on a leading verb.
type exprWire struct {
	Loc    locWire         `json:"loc"`
	Kind   string          `json:"kind"`
	IntVal int64           `json:"intVal,omitempty"`
	StrVal string          `json:"strVal,omitempty"`
	IsStr  bool            `json:"isStr,omitempty"`
	Name   string          `json:"name,omitempty"`
	Op     string          `json:"op,omitempty"`
	Attr   string          `json:"attr,omitempty"`
	Field  string          `json:"field,omitempty"`

	Operand json.RawMessage `json:"operand,omitempty"`
	Left    json.RawMessage `json:"left,omitempty"`
	Right   json.RawMessage `json:"right,omitempty"`
	Entity  json.RawMessage `json:"entity,omitempty"`
	From    json.RawMessage `json:"from,omitempty"`
	To      json.RawMessage `json:"to,omitempty"`
	Index   json.RawMessage `json:"index,omitempty"`
	Offset  json.RawMessage `json:"offset,omitempty"`
	Magnitude json.RawMessage `json:"magnitude,omitempty"`
	Callee  json.RawMessage `json:"callee,omitempty"`
	LHS     json.RawMessage `json:"lhs,omitempty"`
	RHS     json.RawMessage `json:"rhs,omitempty"`
	TargetExpr json.RawMessage `json:"targetExpr,omitempty"`

	Unit uint64 `json:"unit,omitempty"`

	Target     *typeNodeWire `json:"target,omitempty"`
	TargetType *typeNodeWire `json:"targetType,omitempty"`
	ReturnType *typeNodeWire `json:"returnType,omitempty"`

	Elems  []json.RawMessage `json:"elems,omitempty"`
	Fields []fieldWire       `json:"fields,omitempty"`
	Args   []argWire         `json:"args,omitempty"`
	Params []paramWire       `json:"params,omitempty"`
	Body   []json.RawMessage `json:"body,omitempty"`
}

type fieldWire struct {
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value"`
}

type argWire struct {
	Name  string          `json:"name,omitempty"`
	Value json.RawMessage `json:"value"`
}

type stmtWire struct {
	Loc  locWire `json:"loc"`
	Kind string  `json:"kind"`

	X         json.RawMessage `json:"x,omitempty"`
	Value     json.RawMessage `json:"value,omitempty"`
	Cond      json.RawMessage `json:"cond,omitempty"`
	Then      []json.RawMessage `json:"then,omitempty"`
	Else      []json.RawMessage `json:"else,omitempty"`
	Container json.RawMessage `json:"container,omitempty"`
	Iterator  *varDeclWire    `json:"iterator,omitempty"`
	Body      []json.RawMessage `json:"body,omitempty"`
	Exception json.RawMessage `json:"exception,omitempty"`
	CatchArg  *varDeclWire    `json:"catchArg,omitempty"`
	CatchCond json.RawMessage `json:"catchCond,omitempty"`
	Catch     []json.RawMessage `json:"catch,omitempty"`
}
