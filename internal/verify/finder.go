package verify

import (
	"github.com/gnoverse/ccheck/internal/analysis/cfg"
	"github.com/gnoverse/ccheck/internal/facts"
	"github.com/gnoverse/ccheck/internal/il"
)

// FindAssertions returns the obligations of a method subroutine in
// collection order: blocks of the method in creation order, then the blocks
// of its fault and finally handlers. Postconditions are collected at the
// end of each return block.
func FindAssertions(method *cfg.Subroutine) []Obligation {
	var out []Obligation
	subs := []*cfg.Subroutine{method}
	for i := 0; i < len(subs); i++ {
		out = appendSubroutine(out, subs[i])
		subs = append(subs, subs[i].FaultFinallySubroutines()...)
	}
	return out
}

func appendSubroutine(out []Obligation, sub *cfg.Subroutine) []Obligation {
	for _, b := range sub.Blocks() {
		for i := range b.Labels() {
			ins := b.Instruction(i)
			switch {
			case ins.Op == il.OpAssert:
				out = append(out, Obligation{
					PC:   facts.APC{Block: b, Index: i},
					Kind: AssertObligation,
					Tag:  cfg.FallThrough,
					Cond: ins.Cond,
				})
			case ins.Op == il.OpAssume && ins.Tag == il.UserAssumeTag:
				out = append(out, Obligation{
					PC:   facts.APC{Block: b, Index: i},
					Kind: AssumeObligation,
					Tag:  cfg.FallThrough,
					Cond: ins.Cond,
				})
			}
		}

		for _, e := range sub.Succs(b) {
			for _, es := range sub.EdgeSubroutines(e.From, e.To) {
				// callee preconditions are the callee's business
				if es.Tag != cfg.Exit {
					continue
				}
				for _, cond := range facts.ContractConditions(es.Subroutine, il.OpEnsures) {
					out = append(out, Obligation{
						PC:   facts.APC{Block: b, Index: b.Len()},
						Kind: EnsuresObligation,
						Tag:  cfg.Exit,
						Cond: cond,
					})
				}
			}
		}
	}
	return out
}
