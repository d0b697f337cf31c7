package types

// ObligationReport is one evaluated proof obligation.
type ObligationReport struct {
	PC      string `json:"pc"`
	Kind    string `json:"kind"`
	Cond    string `json:"cond"`
	Outcome string `json:"outcome"`
}

// MethodReport is the verification result of one method.
type MethodReport struct {
	Filename string `json:"filename"`
	Method   string `json:"method"`
	// Lines is the textual report, one line per obligation.
	Lines       []string           `json:"lines"`
	Obligations []ObligationReport `json:"obligations,omitempty"`
	// Unsatisfiable is set when the precondition can never hold.
	Unsatisfiable bool `json:"unsatisfiable,omitempty"`
	// Err is set when the method could not be analyzed.
	Err string `json:"error,omitempty"`
}

// Failed reports whether an obligation was proven false or the method
// could not be analyzed.
func (r MethodReport) Failed() bool {
	if r.Err != "" {
		return true
	}
	for _, ob := range r.Obligations {
		if ob.Outcome == "false" {
			return true
		}
	}
	return false
}

// Counts tallies obligations by outcome.
func (r MethodReport) Counts() map[string]int {
	counts := make(map[string]int)
	for _, ob := range r.Obligations {
		counts[ob.Outcome]++
	}
	return counts
}
