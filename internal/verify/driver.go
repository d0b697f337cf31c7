package verify

import (
	"github.com/gnoverse/ccheck/internal/analysis/cfg"
	"github.com/gnoverse/ccheck/internal/factquery"
	"github.com/gnoverse/ccheck/internal/facts"
	"github.com/gnoverse/ccheck/internal/il"
)

// Driver holds what verification of one method needs.
type Driver struct {
	Method il.Method
	Meta   il.Metadata
	CFG    *cfg.Subroutine
	Facts  facts.FactBase
	Query  factquery.Query
}

// NewDriver builds the CFG of m, runs the fact analysis over it and
// composes the default queries.
func NewDriver(mc *cfg.MethodCache, meta il.Metadata, m il.Method) (*Driver, error) {
	sub, err := mc.GetCFG(m)
	if err != nil {
		return nil, err
	}
	fb := facts.Analyze(sub)
	return &Driver{
		Method: m,
		Meta:   meta,
		CFG:    sub,
		Facts:  fb,
		Query:  factquery.Default(fb),
	}, nil
}

// Validate is ValidateAssertions with the driver's own query.
func (d *Driver) Validate() []string {
	return ValidateAssertions(d.Query, d)
}

// Check is Check with the driver's own query.
func (d *Driver) Check() ([]Result, bool) {
	return Check(d.Query, d)
}
