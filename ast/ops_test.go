package ast

import "testing"

func TestUnaryOpString(t *testing.T) {
	cases := []struct {
		op   UnaryOp
		want string
	}{
		{OpNot, "!"},
		{OpNeg, "-"},
		{OpPos, "+"},
		{OpBNot, "~"},
		{UnaryOp(99), "?"},
	}
	for _, c := range cases {
		if got := c.op.String(); got != c.want {
			t.Errorf("UnaryOp(%d).String() = %q, want %q", c.op, got, c.want)
		}
	}
}

func TestBinaryOpIsIntegralArith(t *testing.T) {
	arith := []BinaryOp{OpIor, OpXor, OpBand, OpAdd, OpSub, OpMul, OpDiv, OpMod}
	for _, op := range arith {
		if !op.IsIntegralArith() {
			t.Errorf("%s should use the integral-promotion rule", op)
		}
	}
	notArith := []BinaryOp{OpEq, OpAnd, OpOr, OpSl, OpSr, OpBconc}
	for _, op := range notArith {
		if op.IsIntegralArith() {
			t.Errorf("%s should not use the integral-promotion rule", op)
		}
	}
}

func TestBinaryOpIsRelationalAndLogical(t *testing.T) {
	rel := []BinaryOp{OpEq, OpNe, OpLt, OpGt, OpLe, OpGe}
	for _, op := range rel {
		if !op.IsRelational() {
			t.Errorf("%s should be relational", op)
		}
		if op.IsLogical() {
			t.Errorf("%s should not be logical", op)
		}
	}
	if !OpAnd.IsLogical() || !OpOr.IsLogical() {
		t.Fatal("&& and || must be logical")
	}
	if OpAdd.IsRelational() || OpAdd.IsLogical() {
		t.Fatal("+ is neither relational nor logical")
	}
}
