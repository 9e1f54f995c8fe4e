// Package diag is the diagnostic reporting façade used by package
// typecheck. It accepts a source location and a message; callers never
// need to know how — or whether — a diagnostic is ultimately rendered
// (spec.md §4.2 intro, §6 "Diagnostics out").
//
// Grounded on github.com/gmofishsauce/wut4's lang/sem/lang/ysem
// Analyzer.error/errorAt (an accumulating []string of "file:line: msg"
// strings), generalized into a typed Severity and a stable Code so a
// caller can match on failure kind instead of parsing message text.
package diag

import "fmt"

// Severity distinguishes a user-facing type error from a bug in the
// compiler itself (spec.md §7).
type Severity int

const (
	Error Severity = iota
	ICE             // internal compiler error
)

func (s Severity) String() string {
	if s == ICE {
		return "internal-compiler-error"
	}
	return "error"
}

// Code names the failure kind, matching the rule names spec.md §4.2/4.3
// use ("InvalidWidth", "WidthOverflow", ...).
type Code string

const (
	InvalidWidth          Code = "InvalidWidth"
	InvalidOperands       Code = "InvalidOperands"
	WidthOverflow         Code = "WidthOverflow"
	InvalidAttribute      Code = "InvalidAttribute"
	InvalidIndexTarget    Code = "InvalidIndexTarget"
	NoSuchField           Code = "NoSuchField"
	NotCallable           Code = "NotCallable"
	TooFewArgs            Code = "TooFewArgs"
	TooManyArgs           Code = "TooManyArgs"
	NoSuchArgument        Code = "NoSuchArgument"
	MissingRequiredArg    Code = "MissingRequiredArg"
	WrongArgType          Code = "WrongArgType"
	VoidInValueContext    Code = "VoidInValueContext"
	TypeMismatch          Code = "TypeMismatch"
	UndefinedIdentifier   Code = "UndefinedIdentifier"
	SizedArrayInArgPos    Code = "SizedArrayInArgPosition"
	InvalidCast           Code = "InvalidCast"
	DuplicateField        Code = "DuplicateField"
	UnknownType           Code = "UnknownType"
	Unknown               Code = "UnknownCode" // ICE: unhandled node/operator/attribute code
)

// Location is a minimal source position, decoupled from package ast so
// diag has no import-time dependency on the AST shape.
type Location struct {
	File string
	Line int
}

func (l Location) String() string {
	if l.File == "" {
		return fmt.Sprintf("line %d", l.Line)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// Diagnostic is one (severity, location, message) triple.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Loc      Location
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Loc, d.Severity, d.Message)
}

// Sink is the append-only, write-only surface a Reporter writes to. The
// default sink used by NewReporter simply collects; callers that want
// the diagnostics rendered as they arrive (e.g. a REPL) supply their
// own Sink.
type Sink interface {
	Report(Diagnostic)
}

// Collector is a Sink that accumulates every diagnostic it's given, in
// order. It is the default Sink and the one used by every test in this
// module.
type Collector struct {
	diags []Diagnostic
}

func (c *Collector) Report(d Diagnostic) { c.diags = append(c.diags, d) }

func (c *Collector) Diagnostics() []Diagnostic { return c.diags }

func (c *Collector) Len() int { return len(c.diags) }

// Reporter is what package typecheck actually calls. It tracks an error
// count and a halted flag so the traversal driver can implement
// cooperative termination (spec.md §5): any rule failure sets Halted,
// and the driver checks it at every handler boundary before descending
// further.
type Reporter struct {
	Sink   Sink
	Halted bool
	errors int
}

// NewReporter wraps sink; if sink is nil a fresh *Collector is used.
func NewReporter(sink Sink) *Reporter {
	if sink == nil {
		sink = &Collector{}
	}
	return &Reporter{Sink: sink}
}

// Error reports a user-facing type error at loc and halts the pass.
func (r *Reporter) Error(loc Location, code Code, format string, args ...interface{}) {
	r.report(Error, code, loc, format, args...)
	r.Halted = true
}

// ICE reports an internal compiler error: a node/operator/attribute code
// reached a handler that doesn't recognize it (spec.md §7). Also halts.
func (r *Reporter) ICE(loc Location, format string, args ...interface{}) {
	r.report(ICE, Unknown, loc, format, args...)
	r.Halted = true
}

func (r *Reporter) report(sev Severity, code Code, loc Location, format string, args ...interface{}) {
	r.errors++
	r.Sink.Report(Diagnostic{
		Severity: sev,
		Code:     code,
		Loc:      loc,
		Message:  fmt.Sprintf(format, args...),
	})
}

// ErrorCount is the number of diagnostics reported through this
// Reporter. A caller should not invoke the completeness pass or code
// generation when ErrorCount() > 0 (spec.md §7).
func (r *Reporter) ErrorCount() int { return r.errors }
