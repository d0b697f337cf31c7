package factquery

import (
	"github.com/gnoverse/ccheck/internal/analysis/lattice"
	"github.com/gnoverse/ccheck/internal/facts"
	"github.com/gnoverse/ccheck/internal/minilogic"
)

// SimpleLogicInference rewrites null tests and boolean comparisons into
// fact base questions, and answers literals directly.
type SimpleLogicInference struct {
	facts facts.FactBase
}

var _ Query = (*SimpleLogicInference)(nil)

func NewSimpleLogicInference(fb facts.FactBase) *SimpleLogicInference {
	return &SimpleLogicInference{facts: fb}
}

func (q *SimpleLogicInference) IsTrue(pc facts.APC, e minilogic.Expr) lattice.ProofOutcome {
	if v, ok := literal(e); ok {
		if truth, ok := minilogic.Truth(v); ok {
			return lattice.FromBool(truth)
		}
		return lattice.ProofTop
	}

	b, ok := e.(minilogic.BinaryExpr)
	if !ok || (b.Op != minilogic.OpEq && b.Op != minilogic.OpNeq) {
		return lattice.ProofTop
	}

	// (x == null) == true and friends
	if inner, ok := nullTest(b.Left); ok {
		if bv, ok := literal(b.Right); ok {
			if truth, ok := minilogic.Truth(bv); ok {
				return q.nullTest(pc, inner, truth == (b.Op == minilogic.OpEq))
			}
		}
	}
	if inner, ok := nullTest(b.Right); ok {
		if bv, ok := literal(b.Left); ok {
			if truth, ok := minilogic.Truth(bv); ok {
				return q.nullTest(pc, inner, truth == (b.Op == minilogic.OpEq))
			}
		}
	}

	// x == null, x != null
	if isNullLiteral(b.Right) || isNullLiteral(b.Left) {
		return q.nullTest(pc, b, true)
	}
	return lattice.ProofTop
}

// nullTest answers whether the null test t has the given truth value.
func (q *SimpleLogicInference) nullTest(pc facts.APC, t minilogic.BinaryExpr, want bool) lattice.ProofOutcome {
	operand := t.Left
	if isNullLiteral(t.Left) {
		operand = t.Right
	}
	isNull := t.Op == minilogic.OpEq
	if isNull == want {
		return q.IsNull(pc, operand)
	}
	return q.IsNonNull(pc, operand)
}

// nullTest recognizes x == null and x != null.
func nullTest(e minilogic.Expr) (minilogic.BinaryExpr, bool) {
	b, ok := e.(minilogic.BinaryExpr)
	if !ok || (b.Op != minilogic.OpEq && b.Op != minilogic.OpNeq) {
		return b, false
	}
	return b, isNullLiteral(b.Left) || isNullLiteral(b.Right)
}

func (q *SimpleLogicInference) IsNull(pc facts.APC, e minilogic.Expr) lattice.ProofOutcome {
	if v, ok := literal(e); ok {
		if truth, ok := minilogic.Truth(v); ok {
			return lattice.FromBool(!truth)
		}
		return lattice.ProofTop
	}
	if v, ok := variable(e); ok {
		return q.facts.IsNull(pc, v)
	}
	return lattice.ProofTop
}

func (q *SimpleLogicInference) IsNonNull(pc facts.APC, e minilogic.Expr) lattice.ProofOutcome {
	if v, ok := literal(e); ok {
		if truth, ok := minilogic.Truth(v); ok {
			return lattice.FromBool(truth)
		}
		return lattice.ProofTop
	}
	if v, ok := variable(e); ok {
		return q.facts.IsNonNull(pc, v)
	}
	return lattice.ProofTop
}

func (q *SimpleLogicInference) IsNonZero(pc facts.APC, e minilogic.Expr) lattice.ProofOutcome {
	if v, ok := literal(e); ok {
		if truth, ok := minilogic.Truth(v); ok {
			return lattice.FromBool(truth)
		}
	}
	if v, ok := variable(e); ok {
		return q.facts.IsNonZero(pc, v)
	}
	return lattice.ProofTop
}

func (q *SimpleLogicInference) IsTrueImply(pc facts.APC, _, _ []minilogic.Expr, goal minilogic.Expr) lattice.ProofOutcome {
	if r := q.IsTrue(pc, goal); r.IsTrue() || r.IsBottom() {
		return r
	}
	return lattice.ProofTop
}

func (q *SimpleLogicInference) IsGreaterEqualZero(pc facts.APC, e minilogic.Expr) lattice.ProofOutcome {
	if v, ok := literal(e); ok {
		if iv, ok := v.(minilogic.IntValue); ok {
			return lattice.FromBool(iv.Val >= 0)
		}
		return lattice.ProofTop
	}
	if v, ok := variable(e); ok {
		return q.facts.IsGreaterEqualZero(pc, v)
	}
	return lattice.ProofTop
}

func (q *SimpleLogicInference) IsLessThan(pc facts.APC, a, b minilogic.Expr) lattice.ProofOutcome {
	va, aok := variable(a)
	vb, bok := variable(b)
	if aok && bok {
		return q.facts.IsLessThan(pc, va, vb)
	}
	return lattice.ProofTop
}

func (q *SimpleLogicInference) IsUnreachable(pc facts.APC) bool {
	return q.facts.IsUnreachable(pc)
}
