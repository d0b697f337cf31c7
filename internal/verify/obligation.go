package verify

import (
	"fmt"

	"github.com/gnoverse/ccheck/internal/analysis/cfg"
	"github.com/gnoverse/ccheck/internal/facts"
	"github.com/gnoverse/ccheck/internal/minilogic"
)

// ObligationKind tells what produced an obligation.
type ObligationKind int

const (
	AssertObligation ObligationKind = iota
	AssumeObligation
	EnsuresObligation
)

func (k ObligationKind) String() string {
	switch k {
	case AssertObligation:
		return "assert"
	case AssumeObligation:
		return "assume"
	case EnsuresObligation:
		return "ensures"
	default:
		return "unknown"
	}
}

// Obligation is a condition that must hold at a program point.
type Obligation struct {
	PC   facts.APC
	Kind ObligationKind
	// Tag is the edge the condition was reached through: Exit for
	// postconditions, FallThrough for conditions in the method body.
	Tag  cfg.EdgeTag
	Cond minilogic.Expr
}

// IsAssume reports whether the obligation is a user assumption.
func (o Obligation) IsAssume() bool {
	return o.Kind == AssumeObligation
}

func (o Obligation) String() string {
	return fmt.Sprintf("%s: %s %s", o.PC, o.Kind, o.Cond)
}
