package minilogic

import (
	"math"
	"testing"
)

// =======================
// Constant Folding Tests
// =======================

func TestFoldArithmetic(t *testing.T) {
	tests := []struct {
		name string
		expr Expr
		want Value
	}{
		{"add", Binary(OpAdd, IntLit(2), IntLit(3)), IntValue{Val: 5}},
		{"sub", Binary(OpSub, IntLit(2), IntLit(3)), IntValue{Val: -1}},
		{"mul", Binary(OpMul, IntLit(4), IntLit(3)), IntValue{Val: 12}},
		{"div", Binary(OpDiv, IntLit(7), IntLit(2)), IntValue{Val: 3}},
		{"mod", Binary(OpMod, IntLit(7), IntLit(2)), IntValue{Val: 1}},
		{"bitand", Binary(OpBitAnd, IntLit(6), IntLit(3)), IntValue{Val: 2}},
		{"bitor", Binary(OpBitOr, IntLit(4), IntLit(1)), IntValue{Val: 5}},
		{"xor", Binary(OpBitXor, IntLit(5), IntLit(1)), IntValue{Val: 4}},
		{"shl", Binary(OpShl, IntLit(1), IntLit(4)), IntValue{Val: 16}},
		{"neg", UnaryExpr{Op: OpNeg, Operand: IntLit(4)}, IntValue{Val: -4}},
		{"bitnot", UnaryExpr{Op: OpBitNot, Operand: IntLit(0)}, IntValue{Val: -1}},
		{"div unsigned", Binary(OpDivUn, IntLit(-2), IntLit(2)), IntValue{Val: math.MaxInt64}},
	}

	for _, tt := range tests {
		got := Fold(tt.expr)
		if !got.Equal(tt.want) {
			t.Errorf("%s: Fold(%s) = %v, want %v", tt.name, tt.expr, got, tt.want)
		}
	}
}

func TestFoldDivisionByZeroStaysSymbolic(t *testing.T) {
	for _, op := range []BinaryOp{OpDiv, OpDivUn, OpMod, OpModUn} {
		got := Fold(Binary(op, IntLit(1), Binary(OpSub, IntLit(2), IntLit(2))))
		if _, ok := got.(SymbolicValue); !ok {
			t.Errorf("Expected symbolic result for %s by zero, got %v", op, got)
		}
	}
}

func TestFoldShiftCounts(t *testing.T) {
	tests := []struct {
		name string
		expr Expr
		want Value
	}{
		{"shl in range", Binary(OpShl, IntLit(1), IntLit(3)), IntValue{Val: 8}},
		{"shr in range", Binary(OpShr, IntLit(-16), IntLit(2)), IntValue{Val: -4}},
		{"shl by 63", Binary(OpShl, IntLit(1), IntLit(63)), IntValue{Val: math.MinInt64}},
		{"shl by 64", Binary(OpShl, IntLit(1), IntLit(64)), nil},
		{"shr by 70", Binary(OpShr, IntLit(1), IntLit(70)), nil},
		{"shl negative", Binary(OpShl, IntLit(1), IntLit(-1)), nil},
	}

	for _, tt := range tests {
		got := Fold(tt.expr)
		if tt.want == nil {
			if _, ok := got.(SymbolicValue); !ok {
				t.Errorf("%s: Fold(%s) = %v, want symbolic", tt.name, tt.expr, got)
			}
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("%s: Fold(%s) = %v, want %v", tt.name, tt.expr, got, tt.want)
		}
	}
}

func TestFoldComparisons(t *testing.T) {
	tests := []struct {
		expr Expr
		want bool
	}{
		{Eq(IntLit(3), IntLit(3)), true},
		{Neq(IntLit(3), IntLit(3)), false},
		{Lt(IntLit(-1), IntLit(0)), true},
		{Binary(OpLtUn, IntLit(-1), IntLit(0)), false},
		{Binary(OpGtUn, IntLit(-1), IntLit(0)), true},
		{Binary(OpGteUn, IntLit(0), IntLit(0)), true},
		{Eq(NullLit(), NullLit()), true},
		{Eq(NullLit(), IntLit(0)), true},
		{Not(BoolLit(false)), true},
	}

	for _, tt := range tests {
		got, ok := FoldTruth(tt.expr)
		if !ok {
			t.Errorf("Expected %s to fold", tt.expr)
			continue
		}
		if got != tt.want {
			t.Errorf("FoldTruth(%s) = %v, want %v", tt.expr, got, tt.want)
		}
	}
}

func TestFoldLogicalShortCircuit(t *testing.T) {
	x := Var("x")

	if got, ok := FoldTruth(And(BoolLit(false), x)); !ok || got {
		t.Errorf("Expected false && x to fold to false, got %v (ok=%v)", got, ok)
	}
	if got, ok := FoldTruth(Or(x, BoolLit(true))); !ok || !got {
		t.Errorf("Expected x || true to fold to true, got %v (ok=%v)", got, ok)
	}
	if _, ok := FoldTruth(And(BoolLit(true), x)); ok {
		t.Errorf("Expected true && x to stay symbolic")
	}
}

func TestFoldVariablesAreSymbolic(t *testing.T) {
	got := Fold(Binary(OpAdd, Var("x"), IntLit(1)))
	if _, ok := got.(SymbolicValue); !ok {
		t.Errorf("Expected symbolic value, got %v", got)
	}
}

// =======================
// Parser Tests
// =======================

func TestParse(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"x != null", "(x != null)"},
		{"this.count >= 0", "(this.count >= 0)"},
		{"!(a && b)", "(!(a && b))"},
		{"lt_un(x, 10)", "(x <un 10)"},
		{"-1 + 0x10", "((-1) + 16)"},
		{"false", "false"},
	}

	for _, tt := range tests {
		got, err := Parse(tt.src)
		if err != nil {
			t.Errorf("Parse(%q) returned error: %v", tt.src, err)
			continue
		}
		if got.String() != tt.want {
			t.Errorf("Parse(%q) = %s, want %s", tt.src, got, tt.want)
		}
	}
}

func TestParseRejectsUnsupported(t *testing.T) {
	for _, src := range []string{`"str"`, "f(x)", "x[0]", "a +"} {
		if _, err := Parse(src); err == nil {
			t.Errorf("Expected error for %q", src)
		}
	}
}

func TestVariables(t *testing.T) {
	got := Variables(MustParse("x > 0 && (y == x || z)"))
	want := []string{"x", "y", "z"}
	if len(got) != len(want) {
		t.Fatalf("Variables = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Variables[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}
