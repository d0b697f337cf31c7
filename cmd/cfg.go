package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnoverse/ccheck/internal/analysis/cfg"
	"github.com/gnoverse/ccheck/internal/il"
	"github.com/gnoverse/ccheck/internal/program"
	"github.com/gnoverse/ccheck/lint"
)

// variable for flags
var (
	cfgMethod string
	cfgOutput string
	cfgTable  bool
)

var cfgCmd = &cobra.Command{
	Use:   "cfg [listing]",
	Short: "Print the control flow graph of a method",
	Long: `Outputs the control flow graph of a method, including its contract and
handler subroutines, as GraphViz source, a block table, or a rendered file.
Example) ccheck cfg --method Circle.Area shapes.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := lint.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}
		inherit := config.InheritContracts == nil || *config.InheritContracts
		return runCFGAnalysis(logger, cmd.OutOrStdout(), args[0], il.Method(cfgMethod), cfgOptions{
			Output:           cfgOutput,
			Table:            cfgTable,
			InheritContracts: inherit,
		})
	},
}

func init() {
	cfgCmd.Flags().StringVar(&cfgMethod, "method", "", "Method whose graph is printed")
	cfgCmd.Flags().StringVarP(&cfgOutput, "output", "o", "", "Output path for rendered GraphViz file")
	cfgCmd.Flags().BoolVar(&cfgTable, "table", false, "Print the blocks as a table instead of GraphViz source")
	_ = cfgCmd.MarkFlagRequired("method")
}

type cfgOptions struct {
	Output           string
	Table            bool
	InheritContracts bool
}

func runCFGAnalysis(logger *zap.Logger, w io.Writer, path string, m il.Method, opts cfgOptions) error {
	p, err := program.Load(path)
	if err != nil {
		return err
	}
	if !p.Has(m) {
		return fmt.Errorf("method not found: %s", m)
	}

	mc := cfg.NewMethodCache(p, p, p, cfg.WithLogger(logger), cfg.WithContractInheritance(opts.InheritContracts))
	sub, err := mc.GetCFG(m)
	if err != nil {
		return fmt.Errorf("building graph of %s: %w", m, err)
	}

	if opts.Table {
		printBlockTable(w, sub)
		return nil
	}

	var buf strings.Builder
	cfg.PrintDot(&buf, sub)
	if opts.Output == "" {
		fmt.Fprintf(w, "CFG for method %s in file %s:\n%s\n", m, path, buf.String())
		return nil
	}
	if err := cfg.RenderToGraphVizFile([]byte(buf.String()), opts.Output); err != nil {
		return fmt.Errorf("rendering GraphViz file: %w", err)
	}
	fmt.Fprintf(w, "GraphViz file created: %s\n", opts.Output)
	return nil
}

// printBlockTable lists the blocks of sub and of every subroutine it uses.
func printBlockTable(w io.Writer, sub *cfg.Subroutine) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Subroutine", "Block", "Labels", "Successors"})
	table.SetAutoWrapText(false)

	seen := map[*cfg.Subroutine]bool{}
	queue := []*cfg.Subroutine{sub}
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		if seen[s] {
			continue
		}
		seen[s] = true

		for _, b := range s.Blocks() {
			labels := make([]string, 0, b.Len())
			for _, l := range b.Labels() {
				labels = append(labels, fmt.Sprint(l))
			}
			succs := make([]string, 0, len(s.Succs(b)))
			for _, e := range s.Succs(b) {
				succs = append(succs, fmt.Sprintf("B%d (%s)", e.To.Index, e.Tag))
			}
			table.Append([]string{s.String(), b.String(), strings.Join(labels, " "), strings.Join(succs, ", ")})
		}
		queue = append(queue, s.UsedSubroutines()...)
	}
	table.Render()
}
