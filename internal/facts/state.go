package facts

import (
	"github.com/gnoverse/ccheck/internal/analysis/lattice"
	"github.com/gnoverse/ccheck/internal/minilogic"
)

// state is the abstract state at a program point: the zero-ness of every
// variable plus the variables bound to a known constant. A nil kinds map
// means the point is unreachable.
type state struct {
	kinds  lattice.AbstractState
	consts map[string]minilogic.Value
}

var unreachable = state{}

func topState() state {
	return state{kinds: lattice.AbstractState{}, consts: map[string]minilogic.Value{}}
}

func (s state) reachable() bool {
	return s.kinds != nil
}

func (s state) clone() state {
	if !s.reachable() {
		return unreachable
	}
	consts := make(map[string]minilogic.Value, len(s.consts))
	for k, v := range s.consts {
		consts[k] = v
	}
	return state{kinds: s.kinds.Clone(), consts: consts}
}

func (s state) kind(name string) lattice.ValueKind {
	return s.kinds.Get(name)
}

// bind records the result of an assignment.
func (s state) bind(name string, kind lattice.ValueKind, val minilogic.Value) {
	s.kinds.Set(name, kind)
	if val != nil && minilogic.IsConstant(val) {
		s.consts[name] = val
	} else {
		delete(s.consts, name)
	}
}

// assume narrows name to kind and reports whether the result is still
// reachable.
func (s state) assume(name string, kind lattice.ValueKind) bool {
	m := lattice.Meet(s.kinds.Get(name), kind)
	if m == lattice.Bottom {
		return false
	}
	s.kinds.Set(name, m)
	return true
}

func joinState(a, b state) state {
	if !a.reachable() {
		return b.clone()
	}
	if !b.reachable() {
		return a.clone()
	}
	out := state{kinds: lattice.JoinStates(a.kinds, b.kinds), consts: map[string]minilogic.Value{}}
	for k, va := range a.consts {
		if vb, ok := b.consts[k]; ok && va.Equal(vb) {
			out.consts[k] = va
		}
	}
	return out
}

func stateEqual(a, b state) bool {
	if !lattice.StateEqual(a.kinds, b.kinds) || len(a.consts) != len(b.consts) {
		return false
	}
	for k, va := range a.consts {
		if vb, ok := b.consts[k]; !ok || !va.Equal(vb) {
			return false
		}
	}
	return true
}

// substitute replaces variables bound to constants.
func (s state) substitute(e minilogic.Expr) minilogic.Expr {
	if len(s.consts) == 0 {
		return e
	}
	switch x := e.(type) {
	case minilogic.VarExpr:
		if v, ok := s.consts[x.Name]; ok {
			return minilogic.LiteralExpr{Val: v}
		}
		return x
	case minilogic.BinaryExpr:
		return minilogic.BinaryExpr{Op: x.Op, Left: s.substitute(x.Left), Right: s.substitute(x.Right)}
	case minilogic.UnaryExpr:
		return minilogic.UnaryExpr{Op: x.Op, Operand: s.substitute(x.Operand)}
	default:
		return e
	}
}

// eval returns the zero-ness and, when known, the constant value of e.
func (s state) eval(e minilogic.Expr) (lattice.ValueKind, minilogic.Value) {
	if v, ok := e.(minilogic.VarExpr); ok {
		return s.kind(v.Name), s.consts[v.Name]
	}
	val := minilogic.Fold(s.substitute(e))
	if truth, ok := minilogic.Truth(val); ok {
		if truth {
			return lattice.NonZero, val
		}
		return lattice.Zero, val
	}
	return lattice.Top, nil
}

// refine narrows s, in place, under the assumption that cond has the given
// truth value. It reports false when the assumption cannot hold.
func (s state) refine(cond minilogic.Expr, truth bool) bool {
	cond = s.substitute(cond)
	if b, ok := minilogic.FoldTruth(cond); ok {
		return b == truth
	}

	switch e := cond.(type) {
	case minilogic.VarExpr:
		if truth {
			return s.assume(e.Name, lattice.NonZero)
		}
		return s.assume(e.Name, lattice.Zero)

	case minilogic.UnaryExpr:
		if e.Op == minilogic.OpNot {
			return s.refine(e.Operand, !truth)
		}

	case minilogic.BinaryExpr:
		switch e.Op {
		case minilogic.OpAnd:
			if truth {
				return s.refine(e.Left, true) && s.refine(e.Right, true)
			}
		case minilogic.OpOr:
			if !truth {
				return s.refine(e.Left, false) && s.refine(e.Right, false)
			}
		case minilogic.OpEq, minilogic.OpNeq:
			if e.Op == minilogic.OpNeq {
				truth = !truth
			}
			return s.refineEquality(e.Left, e.Right, truth)
		case minilogic.OpGt, minilogic.OpLt:
			// x > c with c >= 0, or x < c with c <= 0, excludes zero
			name, c, ok := varAndConst(e.Left, e.Right)
			if !ok || !truth {
				return true
			}
			op := e.Op
			if _, leftIsVar := e.Left.(minilogic.VarExpr); !leftIsVar {
				op = flip(op)
			}
			if op == minilogic.OpGt && c >= 0 || op == minilogic.OpLt && c <= 0 {
				return s.assume(name, lattice.NonZero)
			}
		}
	}
	return true
}

func (s state) refineEquality(left, right minilogic.Expr, equal bool) bool {
	name, lit, ok := varAndLiteral(left, right)
	if !ok {
		return true
	}
	truth, _ := minilogic.Truth(lit)
	switch {
	case !truth && equal:
		return s.assume(name, lattice.Zero)
	case !truth && !equal:
		return s.assume(name, lattice.NonZero)
	case truth && equal:
		if !s.assume(name, lattice.NonZero) {
			return false
		}
		s.consts[name] = lit
	}
	return true
}

func varAndLiteral(a, b minilogic.Expr) (string, minilogic.Value, bool) {
	if v, ok := a.(minilogic.VarExpr); ok {
		if l, ok := b.(minilogic.LiteralExpr); ok {
			return v.Name, l.Val, true
		}
	}
	if v, ok := b.(minilogic.VarExpr); ok {
		if l, ok := a.(minilogic.LiteralExpr); ok {
			return v.Name, l.Val, true
		}
	}
	return "", nil, false
}

func varAndConst(a, b minilogic.Expr) (string, int64, bool) {
	name, lit, ok := varAndLiteral(a, b)
	if !ok {
		return "", 0, false
	}
	iv, ok := lit.(minilogic.IntValue)
	if !ok {
		return "", 0, false
	}
	return name, iv.Val, true
}

func flip(op minilogic.BinaryOp) minilogic.BinaryOp {
	if op == minilogic.OpGt {
		return minilogic.OpLt
	}
	return minilogic.OpGt
}
