package factquery

import (
	"github.com/gnoverse/ccheck/internal/analysis/lattice"
	"github.com/gnoverse/ccheck/internal/facts"
	"github.com/gnoverse/ccheck/internal/minilogic"
)

// Basic forwards questions about plain variables to a fact base.
type Basic struct {
	facts facts.FactBase
}

var _ Query = (*Basic)(nil)

func NewBasic(fb facts.FactBase) *Basic {
	return &Basic{facts: fb}
}

func (q *Basic) IsNull(pc facts.APC, e minilogic.Expr) lattice.ProofOutcome {
	if v, ok := variable(e); ok {
		return q.facts.IsNull(pc, v)
	}
	return lattice.ProofTop
}

func (q *Basic) IsNonNull(pc facts.APC, e minilogic.Expr) lattice.ProofOutcome {
	if v, ok := variable(e); ok {
		return q.facts.IsNonNull(pc, v)
	}
	return lattice.ProofTop
}

// IsTrue is IsNonZero.
func (q *Basic) IsTrue(pc facts.APC, e minilogic.Expr) lattice.ProofOutcome {
	return q.IsNonZero(pc, e)
}

func (q *Basic) IsTrueImply(pc facts.APC, _, _ []minilogic.Expr, goal minilogic.Expr) lattice.ProofOutcome {
	if r := q.IsTrue(pc, goal); r.IsTrue() || r.IsBottom() {
		return r
	}
	return lattice.ProofTop
}

func (q *Basic) IsGreaterEqualZero(pc facts.APC, e minilogic.Expr) lattice.ProofOutcome {
	if v, ok := variable(e); ok {
		return q.facts.IsGreaterEqualZero(pc, v)
	}
	return lattice.ProofTop
}

func (q *Basic) IsLessThan(pc facts.APC, a, b minilogic.Expr) lattice.ProofOutcome {
	va, ok := variable(a)
	if !ok {
		return lattice.ProofTop
	}
	vb, ok := variable(b)
	if !ok {
		return lattice.ProofTop
	}
	return q.facts.IsLessThan(pc, va, vb)
}

// IsNonZero is IsNonNull; zero and null are one value to the fact base.
func (q *Basic) IsNonZero(pc facts.APC, e minilogic.Expr) lattice.ProofOutcome {
	return q.IsNonNull(pc, e)
}

func (q *Basic) IsUnreachable(pc facts.APC) bool {
	return q.facts.IsUnreachable(pc)
}
