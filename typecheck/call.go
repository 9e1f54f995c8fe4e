package typecheck

import (
	"github.com/gmofishsauce/bkl/ast"
	"github.com/gmofishsauce/bkl/diag"
	"github.com/gmofishsauce/bkl/types"
)

// inferCall implements spec.md §4.2.7's call-checking procedure: the
// callee must be a function type, arity must match (accounting for
// optional and vararg formals), named-argument mode is detected and
// reordered against the callee's formal names, every actual is checked
// against its formal with the same compatible() rule used for
// assignment, and the call's own type is the function's return type
// (subject to the void-in-value-context rule wherever the call itself
// appears).
func (c *Checker) inferCall(n *ast.CallExpr) {
	c.inferExpr(n.Callee)
	if c.Diag.Halted {
		return
	}
	ft := n.Callee.GetType()
	if !ft.IsFunction() {
		c.Diag.Error(c.loc(n.Loc), diag.NotCallable, "cannot call a value of type %s", ft)
		return
	}

	named := false
	for _, a := range n.Args {
		if a.Name != "" {
			named = true
			break
		}
	}

	var ordered []ast.CallArg
	if named {
		ordered = c.reorderNamedArgs(n, ft.Args)
		if c.Diag.Halted {
			return
		}
	} else {
		if !c.checkPositionalArity(n.Loc, ft.Args, len(n.Args)) {
			return
		}
		ordered = n.Args
	}

	for i, a := range ordered {
		c.inferExpr(a.Value)
		if c.Diag.Halted {
			return
		}
		if !c.checkNotVoid(n.Loc, a.Value.GetType(), "argument") {
			return
		}
		if i >= len(ft.Args) {
			// Extra actuals beyond the declared formals are only legal
			// against a trailing vararg formal, already validated by
			// the arity check above.
			continue
		}
		formal := ft.Args[i]
		if !compatible(formal.Type, a.Value.GetType()) {
			c.Diag.Error(c.loc(n.Loc), diag.WrongArgType,
				"argument %d: cannot pass %s where %s is expected", i+1, a.Value.GetType(), formal.Type)
			return
		}
	}

	// A named-argument call leaves with its actuals in formal order.
	n.Args = ordered
	n.SetType(ft.Return)
}

// checkPositionalArity validates a positional (non-named) call's actual
// count against formals: every non-optional, non-vararg formal is
// mandatory, and a trailing vararg formal accepts any count at or above
// the mandatory minimum.
func (c *Checker) checkPositionalArity(loc ast.Loc, formals []types.Arg, nActual int) bool {
	mandatory := 0
	hasVararg := false
	for _, f := range formals {
		if f.Vararg {
			hasVararg = true
			continue
		}
		if !f.Optional {
			mandatory++
		}
	}
	max := len(formals)
	if nActual < mandatory {
		c.Diag.Error(c.loc(loc), diag.TooFewArgs, "call requires at least %d argument(s), got %d", mandatory, nActual)
		return false
	}
	if !hasVararg && nActual > max {
		c.Diag.Error(c.loc(loc), diag.TooManyArgs, "call accepts at most %d argument(s), got %d", max, nActual)
		return false
	}
	return true
}

// reorderNamedArgs implements spec.md §4.2.7 step 5: every actual in a
// named-argument call is matched to the formal of the same name, each
// omitted optional formal gets a placeholder literal typed as that
// formal's type (the default expression itself is not placed in the
// call), an omitted vararg formal gets no actual at all, and the result
// is the positional ordering inferCall expects. A vararg formal named
// explicitly receives that single actual; no further vararg tail is
// collected in named-argument mode. Formal
// names are only available when the callee's closure type was built
// from an actual function literal (types.Arg.Name is populated by
// inferFunc); a closure type resolved from a bare TNClosure type node
// carries no names and can never be called in named-argument mode.
func (c *Checker) reorderNamedArgs(n *ast.CallExpr, formals []types.Arg) []ast.CallArg {
	byName := make(map[string]ast.Expr, len(n.Args))
	for _, a := range n.Args {
		if a.Name == "" {
			c.Diag.Error(c.loc(n.Loc), diag.NoSuchArgument, "cannot mix named and positional arguments in one call")
			return nil
		}
		if _, ok := byName[a.Name]; ok {
			c.Diag.Error(c.loc(n.Loc), diag.NoSuchArgument, "duplicate named argument %q", a.Name)
			return nil
		}
		found := false
		for _, f := range formals {
			if f.Name == a.Name {
				found = true
				break
			}
		}
		if !found {
			c.Diag.Error(c.loc(n.Loc), diag.NoSuchArgument, "no such argument %q", a.Name)
			return nil
		}
		byName[a.Name] = a.Value
	}

	ordered := make([]ast.CallArg, 0, len(formals))
	for _, f := range formals {
		if v, ok := byName[f.Name]; ok {
			ordered = append(ordered, ast.CallArg{Name: f.Name, Value: v})
			continue
		}
		if f.Vararg {
			continue
		}
		if !f.Optional {
			c.Diag.Error(c.loc(n.Loc), diag.MissingRequiredArg, "missing required argument %q", f.Name)
			return nil
		}
		// Optional formal omitted by the caller: stand in with a
		// placeholder already typed as the formal's own type, so the
		// argument-compatibility check below passes trivially instead
		// of re-typing the default expression (already typed once, in
		// place, by inferFunc when the closure was declared).
		placeholder := &ast.LiteralExpr{}
		placeholder.SetType(f.Type)
		ordered = append(ordered, ast.CallArg{Name: f.Name, Value: placeholder})
	}
	return ordered
}
