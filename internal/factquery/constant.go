package factquery

import (
	"github.com/gnoverse/ccheck/internal/analysis/lattice"
	"github.com/gnoverse/ccheck/internal/facts"
	"github.com/gnoverse/ccheck/internal/minilogic"
)

// ConstantPropagation decides questions by folding constant
// sub-expressions. It consults no facts; division by a zero constant stays
// unknown.
type ConstantPropagation struct{}

var _ Query = ConstantPropagation{}

func (ConstantPropagation) IsTrue(pc facts.APC, e minilogic.Expr) lattice.ProofOutcome {
	if truth, ok := minilogic.FoldTruth(e); ok {
		return lattice.FromBool(truth)
	}
	// e == 0 and e != 0 reduce to the truth of e
	if b, ok := e.(minilogic.BinaryExpr); ok && (b.Op == minilogic.OpEq || b.Op == minilogic.OpNeq) {
		var operand minilogic.Expr
		switch {
		case isNullLiteral(b.Right):
			operand = b.Left
		case isNullLiteral(b.Left):
			operand = b.Right
		default:
			return lattice.ProofTop
		}
		r := ConstantPropagation{}.IsTrue(pc, operand)
		if b.Op == minilogic.OpEq {
			return r.Negate()
		}
		return r
	}
	return lattice.ProofTop
}

func (ConstantPropagation) IsNull(_ facts.APC, e minilogic.Expr) lattice.ProofOutcome {
	if truth, ok := minilogic.Truth(minilogic.Fold(e)); ok {
		return lattice.FromBool(!truth)
	}
	return lattice.ProofTop
}

func (q ConstantPropagation) IsNonNull(pc facts.APC, e minilogic.Expr) lattice.ProofOutcome {
	return q.IsNull(pc, e).Negate()
}

func (q ConstantPropagation) IsNonZero(pc facts.APC, e minilogic.Expr) lattice.ProofOutcome {
	return q.IsNonNull(pc, e)
}

func (q ConstantPropagation) IsTrueImply(pc facts.APC, pos, neg []minilogic.Expr, goal minilogic.Expr) lattice.ProofOutcome {
	// a false assumption makes the implication hold vacuously
	for _, p := range pos {
		if q.IsTrue(pc, p).IsFalse() {
			return lattice.ProofTrue
		}
	}
	for _, n := range neg {
		if q.IsTrue(pc, n).IsTrue() {
			return lattice.ProofTrue
		}
	}
	if r := q.IsTrue(pc, goal); r.IsTrue() {
		return r
	}
	return lattice.ProofTop
}

func (ConstantPropagation) IsGreaterEqualZero(_ facts.APC, e minilogic.Expr) lattice.ProofOutcome {
	if v, ok := minilogic.Fold(e).(minilogic.IntValue); ok {
		return lattice.FromBool(v.Val >= 0)
	}
	return lattice.ProofTop
}

func (ConstantPropagation) IsLessThan(_ facts.APC, a, b minilogic.Expr) lattice.ProofOutcome {
	if truth, ok := minilogic.FoldTruth(minilogic.Lt(a, b)); ok {
		return lattice.FromBool(truth)
	}
	return lattice.ProofTop
}

func (ConstantPropagation) IsUnreachable(facts.APC) bool {
	return false
}
