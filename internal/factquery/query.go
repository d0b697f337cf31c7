// Package factquery answers proof questions about boxed expressions at a
// program point. Each query is a partial decision procedure; Composed
// combines several of them.
package factquery

import (
	"github.com/gnoverse/ccheck/internal/analysis/lattice"
	"github.com/gnoverse/ccheck/internal/facts"
	"github.com/gnoverse/ccheck/internal/minilogic"
)

// Query is a fact query. ProofTop means the query cannot tell, ProofBottom
// that the program point is unreachable.
type Query interface {
	IsNull(pc facts.APC, e minilogic.Expr) lattice.ProofOutcome
	IsNonNull(pc facts.APC, e minilogic.Expr) lattice.ProofOutcome
	IsTrue(pc facts.APC, e minilogic.Expr) lattice.ProofOutcome
	// IsTrueImply asks whether goal holds assuming every pos is true and
	// every neg is false.
	IsTrueImply(pc facts.APC, pos, neg []minilogic.Expr, goal minilogic.Expr) lattice.ProofOutcome
	IsGreaterEqualZero(pc facts.APC, e minilogic.Expr) lattice.ProofOutcome
	IsLessThan(pc facts.APC, a, b minilogic.Expr) lattice.ProofOutcome
	IsNonZero(pc facts.APC, e minilogic.Expr) lattice.ProofOutcome
	IsUnreachable(pc facts.APC) bool
}

func variable(e minilogic.Expr) (string, bool) {
	v, ok := e.(minilogic.VarExpr)
	return v.Name, ok
}

func literal(e minilogic.Expr) (minilogic.Value, bool) {
	l, ok := e.(minilogic.LiteralExpr)
	if !ok {
		return nil, false
	}
	return l.Val, true
}

func isNullLiteral(e minilogic.Expr) bool {
	v, ok := literal(e)
	if !ok {
		return false
	}
	truth, _ := minilogic.Truth(v)
	return !truth
}
