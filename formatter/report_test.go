package formatter

import (
	"os"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	tt "github.com/gnoverse/ccheck/internal/types"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func TestGenerateFormattedReport(t *testing.T) {
	t.Parallel()

	reports := []tt.MethodReport{
		{
			Filename: "shapes.yaml",
			Method:   "Circle.Area",
			Lines:    []string{"L0: assert (scale != 0): true"},
			Obligations: []tt.ObligationReport{
				{PC: "L0", Kind: "assert", Cond: "(scale != 0)", Outcome: "true"},
			},
		},
		{
			Filename: "shapes.yaml",
			Method:   "Circle.Broken",
			Lines: []string{
				"L1: assert (x != 0): false",
				"L2: assert (y != null): unproven",
			},
			Obligations: []tt.ObligationReport{
				{PC: "L1", Kind: "assert", Cond: "(x != 0)", Outcome: "false"},
				{PC: "L2", Kind: "assert", Cond: "(y != null)", Outcome: "unproven"},
			},
		},
		{
			Filename:      "shapes.yaml",
			Method:        "Circle.Never",
			Lines:         []string{"Method precondition is unsatisfiable"},
			Unsatisfiable: true,
		},
		{
			Method: "Circle.Bad",
			Err:    "at L2: try region closed out of order",
		},
	}

	expected := `ok: Circle.Area
 --> shapes.yaml
  | L0: assert (scale != 0): true

error: Circle.Broken
 --> shapes.yaml
  | L1: assert (x != 0): false
  | L2: assert (y != null): unproven

warning: Circle.Never
 --> shapes.yaml
  | Method precondition is unsatisfiable

error: Circle.Bad
  = at L2: try region closed out of order

`
	assert.Equal(t, expected, GenerateFormattedReport(reports))
}

func TestSeverity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		report   tt.MethodReport
		expected string
	}{
		{"empty", tt.MethodReport{}, "ok"},
		{"unproven", tt.MethodReport{Obligations: []tt.ObligationReport{{Outcome: "unproven"}}}, "warning"},
		{"false", tt.MethodReport{Obligations: []tt.ObligationReport{{Outcome: "false"}}}, "error"},
		{"unsatisfiable", tt.MethodReport{Unsatisfiable: true}, "warning"},
		{"error", tt.MethodReport{Err: "boom"}, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Severity(tt.report))
		})
	}
}
