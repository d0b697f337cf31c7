package factquery

import (
	"github.com/gnoverse/ccheck/internal/analysis/lattice"
	"github.com/gnoverse/ccheck/internal/facts"
	"github.com/gnoverse/ccheck/internal/minilogic"
)

// Composed asks its children in order.
//
// For IsTrue the first True or Bottom answer wins. A False answer is kept
// only if no later child proves True or Bottom, and when every child is
// unknown two structural rewrites are tried: comparisons of a relational
// expression against null, and negation.
//
// Every other question returns the first answer that is not Top.
type Composed struct {
	children []Query
	// alwaysUnreachable is consulted before the children in IsUnreachable.
	alwaysUnreachable func(facts.APC) bool
}

var _ Query = (*Composed)(nil)

// NewComposed returns a query over children. alwaysUnreachable may be nil.
func NewComposed(alwaysUnreachable func(facts.APC) bool, children ...Query) *Composed {
	return &Composed{children: children, alwaysUnreachable: alwaysUnreachable}
}

func (q *Composed) IsTrue(pc facts.APC, e minilogic.Expr) lattice.ProofOutcome {
	sawFalse := false
	for _, child := range q.children {
		switch r := child.IsTrue(pc, e); r {
		case lattice.ProofTrue, lattice.ProofBottom:
			return r
		case lattice.ProofFalse:
			sawFalse = true
		}
	}
	if sawFalse {
		return lattice.ProofFalse
	}

	switch x := e.(type) {
	case minilogic.BinaryExpr:
		if x.Op == minilogic.OpEq || x.Op == minilogic.OpNeq {
			return q.isTrueEquality(pc, x)
		}
	case minilogic.UnaryExpr:
		if x.Op == minilogic.OpNot {
			return q.IsTrue(pc, x.Operand).Negate()
		}
	}
	return lattice.ProofTop
}

// isTrueEquality handles rel == null, rel != null and integer literals.
func (q *Composed) isTrueEquality(pc facts.APC, e minilogic.BinaryExpr) lattice.ProofOutcome {
	if l, ok := literal(e.Left); ok {
		if r, ok := literal(e.Right); ok {
			li, lok := l.(minilogic.IntValue)
			ri, rok := r.(minilogic.IntValue)
			if lok && rok {
				return lattice.FromBool((li.Val == ri.Val) == (e.Op == minilogic.OpEq))
			}
		}
	}

	rel, other := e.Left, e.Right
	if !isRelational(rel) {
		rel, other = other, rel
	}
	if !isRelational(rel) || !q.IsNull(pc, other).IsTrue() {
		return lattice.ProofTop
	}
	r := q.IsTrue(pc, rel)
	if e.Op == minilogic.OpEq {
		return r.Negate()
	}
	return r
}

func isRelational(e minilogic.Expr) bool {
	b, ok := e.(minilogic.BinaryExpr)
	return ok && b.Op.IsRelational()
}

func (q *Composed) first(ask func(Query) lattice.ProofOutcome) lattice.ProofOutcome {
	for _, child := range q.children {
		if r := ask(child); !r.IsTop() {
			return r
		}
	}
	return lattice.ProofTop
}

func (q *Composed) IsNull(pc facts.APC, e minilogic.Expr) lattice.ProofOutcome {
	return q.first(func(c Query) lattice.ProofOutcome { return c.IsNull(pc, e) })
}

func (q *Composed) IsNonNull(pc facts.APC, e minilogic.Expr) lattice.ProofOutcome {
	return q.first(func(c Query) lattice.ProofOutcome { return c.IsNonNull(pc, e) })
}

func (q *Composed) IsTrueImply(pc facts.APC, pos, neg []minilogic.Expr, goal minilogic.Expr) lattice.ProofOutcome {
	return q.first(func(c Query) lattice.ProofOutcome { return c.IsTrueImply(pc, pos, neg, goal) })
}

func (q *Composed) IsGreaterEqualZero(pc facts.APC, e minilogic.Expr) lattice.ProofOutcome {
	return q.first(func(c Query) lattice.ProofOutcome { return c.IsGreaterEqualZero(pc, e) })
}

func (q *Composed) IsLessThan(pc facts.APC, a, b minilogic.Expr) lattice.ProofOutcome {
	return q.first(func(c Query) lattice.ProofOutcome { return c.IsLessThan(pc, a, b) })
}

func (q *Composed) IsNonZero(pc facts.APC, e minilogic.Expr) lattice.ProofOutcome {
	return q.first(func(c Query) lattice.ProofOutcome { return c.IsNonZero(pc, e) })
}

func (q *Composed) IsUnreachable(pc facts.APC) bool {
	if q.alwaysUnreachable != nil && q.alwaysUnreachable(pc) {
		return true
	}
	for _, child := range q.children {
		if child.IsUnreachable(pc) {
			return true
		}
	}
	return false
}

// Default composes the standard procedures over a fact base:
// Basic, ConstantPropagation and SimpleLogicInference.
func Default(fb facts.FactBase) *Composed {
	return NewComposed(nil, NewBasic(fb), ConstantPropagation{}, NewSimpleLogicInference(fb))
}
