// Package facts computes per-program-point facts about method variables
// and exposes them to the proof-obligation queries.
package facts

import (
	"fmt"

	"github.com/gnoverse/ccheck/internal/analysis/cfg"
	"github.com/gnoverse/ccheck/internal/analysis/lattice"
	"github.com/gnoverse/ccheck/internal/il"
	"github.com/gnoverse/ccheck/internal/minilogic"
)

// APC is a program point: the position before the Index-th label of Block.
// Index equal to the block length is the end of the block.
type APC struct {
	Block *cfg.Block
	Index int
}

// Label returns the label at the program point.
func (pc APC) Label() (il.Label, bool) {
	labels := pc.Block.Labels()
	if pc.Index < 0 || pc.Index >= len(labels) {
		return 0, false
	}
	return labels[pc.Index], true
}

func (pc APC) String() string {
	if l, ok := pc.Label(); ok {
		return l.String()
	}
	if l, ok := pc.Block.LastLabel(); ok && pc.Index == pc.Block.Len() {
		return "after " + l.String()
	}
	return fmt.Sprintf("SR%d:B%d", pc.Block.Subroutine().ID(), pc.Block.Index)
}

// FactBase answers variable-level questions at a program point.
// Unreachable program points answer ProofBottom.
type FactBase interface {
	IsNull(pc APC, v string) lattice.ProofOutcome
	IsNonNull(pc APC, v string) lattice.ProofOutcome
	IsNonZero(pc APC, v string) lattice.ProofOutcome
	IsGreaterEqualZero(pc APC, v string) lattice.ProofOutcome
	IsLessThan(pc APC, a, b string) lattice.ProofOutcome
	IsUnreachable(pc APC) bool
	// Refine replaces the variables of e that hold a known constant at pc.
	Refine(pc APC, e minilogic.Expr) minilogic.Expr
}
