package facts

import (
	"github.com/gnoverse/ccheck/internal/analysis/cfg"
	"github.com/gnoverse/ccheck/internal/analysis/lattice"
	"github.com/gnoverse/ccheck/internal/il"
	"github.com/gnoverse/ccheck/internal/minilogic"
)

// Analysis is a forward zero-ness and constant analysis over a method
// subroutine and its fault/finally handlers. It implements FactBase.
type Analysis struct {
	in map[*cfg.Block]state
}

var _ FactBase = (*Analysis)(nil)

// Analyze runs the analysis on method. The precondition attached to the
// entry edge is assumed to hold.
func Analyze(method *cfg.Subroutine) *Analysis {
	a := &Analysis{in: make(map[*cfg.Block]state)}
	subs := []*cfg.Subroutine{method}
	for i := 0; i < len(subs); i++ {
		a.run(subs[i])
		subs = append(subs, subs[i].FaultFinallySubroutines()...)
	}
	return a
}

func (a *Analysis) run(sub *cfg.Subroutine) {
	blocks := sub.Blocks()
	out := make(map[*cfg.Block]state, len(blocks))

	var worklist []*cfg.Block
	inWorklist := make(map[*cfg.Block]bool, len(blocks))
	for _, b := range blocks {
		// blocks without predecessors are the entry, handler headers and
		// code following a throw
		if len(sub.Preds(b)) == 0 {
			worklist = append(worklist, b)
			inWorklist[b] = true
		}
	}

	for len(worklist) > 0 {
		b := worklist[0]
		worklist = worklist[1:]
		inWorklist[b] = false

		newIn := computeIn(sub, b, out)
		a.in[b] = newIn

		newOut := transferBlock(b, newIn, len(b.Labels()))
		if prev, seen := out[b]; seen && stateEqual(newOut, prev) {
			continue
		}
		out[b] = newOut

		for _, e := range sub.Succs(b) {
			if inWorklist[e.To] {
				continue
			}
			worklist = append(worklist, e.To)
			inWorklist[e.To] = true
		}
	}
}

func computeIn(sub *cfg.Subroutine, b *cfg.Block, out map[*cfg.Block]state) state {
	preds := sub.Preds(b)
	if len(preds) == 0 {
		return topState()
	}
	joined := unreachable
	for _, e := range preds {
		from, ok := out[e.From]
		if !ok {
			continue
		}
		joined = joinState(joined, refineForEdge(sub, e, from))
	}
	return joined
}

// refineForEdge narrows the state flowing along e: the branch outcome
// recorded by assume blocks and the precondition on the entry edge.
func refineForEdge(sub *cfg.Subroutine, e cfg.Edge, from state) state {
	if !from.reachable() {
		return unreachable
	}
	s := from.clone()

	if e.Tag == cfg.Entry {
		for _, es := range sub.EdgeSubroutines(e.From, e.To) {
			for _, cond := range ContractConditions(es.Subroutine, il.OpRequires) {
				if !s.refine(cond, true) {
					return unreachable
				}
			}
		}
	}

	to := e.To
	switch to.Kind {
	case cfg.AssumeBlock:
		ins := to.Subroutine().Code().Decode(to.BranchLabel)
		if ins.Cond != nil && !s.refine(ins.Cond, to.Sense == cfg.True) {
			return unreachable
		}
	case cfg.SwitchCaseBlock:
		ins := to.Subroutine().Code().Decode(to.BranchLabel)
		if ins.Cond != nil && !s.refine(minilogic.Eq(ins.Cond, minilogic.IntLit(int64(to.CaseIndex))), true) {
			return unreachable
		}
	}
	return s
}

// transferBlock applies the first n labels of b to in.
func transferBlock(b *cfg.Block, in state, n int) state {
	if !in.reachable() {
		return unreachable
	}
	s := in.clone()
	for i := 0; i < n && i < b.Len(); i++ {
		if !transfer(s, b.Instruction(i)) {
			return unreachable
		}
	}
	return s
}

func transfer(s state, ins il.Instruction) bool {
	switch ins.Op {
	case il.OpAssign:
		kind, val := s.eval(ins.Cond)
		s.bind(ins.Dest, kind, val)
	case il.OpNewObj:
		if ins.Dest != "" {
			s.bind(ins.Dest, lattice.NonZero, nil)
		}
	case il.OpCall, il.OpConstrainedCall, il.OpLdfld:
		if ins.Dest != "" {
			s.bind(ins.Dest, lattice.Top, nil)
		}
	case il.OpAssert, il.OpAssume, il.OpRequires:
		// execution continues only where the condition held
		return s.refine(ins.Cond, true)
	}
	return true
}

// ContractConditions returns the clause conditions of a contract
// subroutine with the given op, including those of the contracts it
// inherits. Each contract is visited once.
func ContractConditions(sub *cfg.Subroutine, op il.Op) []minilogic.Expr {
	var out []minilogic.Expr
	seen := map[*cfg.Subroutine]bool{}
	var walk func(*cfg.Subroutine)
	walk = func(s *cfg.Subroutine) {
		if s == nil || seen[s] {
			return
		}
		seen[s] = true
		for _, b := range s.Blocks() {
			for i := range b.Labels() {
				if ins := b.Instruction(i); ins.Op == op && ins.Cond != nil {
					out = append(out, ins.Cond)
				}
			}
			for _, e := range s.Succs(b) {
				for _, es := range s.EdgeSubroutines(e.From, e.To) {
					if es.Tag == cfg.Inherited {
						walk(es.Subroutine)
					}
				}
			}
		}
	}
	walk(sub)
	return out
}

func (a *Analysis) stateAt(pc APC) state {
	in, ok := a.in[pc.Block]
	if !ok {
		return unreachable
	}
	return transferBlock(pc.Block, in, pc.Index)
}

func (a *Analysis) IsUnreachable(pc APC) bool {
	return !a.stateAt(pc).reachable()
}

func (a *Analysis) IsNull(pc APC, v string) lattice.ProofOutcome {
	return a.stateAt(pc).kind(v).IsZero()
}

func (a *Analysis) IsNonNull(pc APC, v string) lattice.ProofOutcome {
	return a.stateAt(pc).kind(v).IsNonZero()
}

// IsNonZero treats zero and null alike.
func (a *Analysis) IsNonZero(pc APC, v string) lattice.ProofOutcome {
	return a.IsNonNull(pc, v)
}

func (a *Analysis) IsGreaterEqualZero(pc APC, v string) lattice.ProofOutcome {
	s := a.stateAt(pc)
	if !s.reachable() {
		return lattice.ProofBottom
	}
	if iv, ok := s.consts[v].(minilogic.IntValue); ok {
		return lattice.FromBool(iv.Val >= 0)
	}
	if s.kind(v) == lattice.Zero {
		return lattice.ProofTrue
	}
	return lattice.ProofTop
}

func (a *Analysis) IsLessThan(pc APC, x, y string) lattice.ProofOutcome {
	s := a.stateAt(pc)
	if !s.reachable() {
		return lattice.ProofBottom
	}
	xv, xok := s.consts[x].(minilogic.IntValue)
	yv, yok := s.consts[y].(minilogic.IntValue)
	if xok && yok {
		return lattice.FromBool(xv.Val < yv.Val)
	}
	return lattice.ProofTop
}

func (a *Analysis) Refine(pc APC, e minilogic.Expr) minilogic.Expr {
	s := a.stateAt(pc)
	if !s.reachable() {
		return e
	}
	return s.substitute(e)
}
