package verify

import (
	"fmt"

	"github.com/gnoverse/ccheck/internal/analysis/lattice"
	"github.com/gnoverse/ccheck/internal/factquery"
	"github.com/gnoverse/ccheck/internal/facts"
)

// PreconditionUnsatisfiable is the only report line of a method whose
// precondition can never hold.
const PreconditionUnsatisfiable = "Method precondition is unsatisfiable"

// OutcomeText renders a proof outcome for the report.
func OutcomeText(o lattice.ProofOutcome) string {
	switch o {
	case lattice.ProofTop:
		return "unproven"
	case lattice.ProofTrue:
		return "true"
	case lattice.ProofFalse:
		return "false"
	case lattice.ProofBottom:
		return "unreachable"
	default:
		return "unknown"
	}
}

// Result is the outcome of one obligation.
type Result struct {
	Obligation Obligation
	Outcome    lattice.ProofOutcome
}

func (r Result) String() string {
	return fmt.Sprintf("%s: %s", r.Obligation, OutcomeText(r.Outcome))
}

// Check evaluates the obligations of the driver's method. It reports
// unsatisfiable when the code after the precondition is unreachable, in
// which case no obligation is evaluated. Obligations at unreachable
// program points are ProofBottom whatever their condition.
func Check(q factquery.Query, d *Driver) (results []Result, unsatisfiable bool) {
	if q.IsUnreachable(facts.APC{Block: d.CFG.EntryAfterRequires()}) {
		return nil, true
	}
	for _, ob := range FindAssertions(d.CFG) {
		outcome := lattice.ProofBottom
		if !q.IsUnreachable(ob.PC) {
			outcome = q.IsTrue(ob.PC, d.Facts.Refine(ob.PC, ob.Cond))
		}
		results = append(results, Result{Obligation: ob, Outcome: outcome})
	}
	return results, false
}

// ValidateAssertions returns the report lines of the driver's method.
func ValidateAssertions(q factquery.Query, d *Driver) []string {
	results, unsat := Check(q, d)
	if unsat {
		return []string{PreconditionUnsatisfiable}
	}
	lines := make([]string, len(results))
	for i, r := range results {
		lines[i] = r.String()
	}
	return lines
}
