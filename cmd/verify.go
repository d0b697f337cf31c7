package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnoverse/ccheck/formatter"
	"github.com/gnoverse/ccheck/internal"
	tt "github.com/gnoverse/ccheck/internal/types"
	"github.com/gnoverse/ccheck/lint"
)

var (
	verifyJSONOutput bool
	verifyOutPath    string
	verifyWatch      bool
	verifyMethods    []string
	verifySkip       []string
	verifySummary    bool
)

var verifyCmd = &cobra.Command{
	Use:   "verify [paths...]",
	Short: "Verify the assertions and contracts of methods in listing files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, jsonOutput, err := newVerifyEngine()
		if err != nil {
			return err
		}

		if verifyWatch {
			return watchListings(cmd.Context(), engine, args, cmd.OutOrStdout())
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		failed, err := runVerifyProcess(ctx, logger, engine, args, cmd.OutOrStdout(), reportOptions{
			JSON:    jsonOutput,
			OutPath: verifyOutPath,
			Summary: verifySummary,
		})
		if err != nil {
			return err
		}
		if failed {
			return ErrVerificationFailed
		}
		return nil
	},
}

func init() {
	verifyCmd.Flags().BoolVar(&verifyJSONOutput, "json", false, "Output reports in JSON format")
	verifyCmd.Flags().StringVarP(&verifyOutPath, "output", "o", "", "Output path (when using JSON)")
	verifyCmd.Flags().BoolVar(&verifyWatch, "watch", false, "Re-verify listings when they change")
	verifyCmd.Flags().StringSliceVar(&verifyMethods, "method", nil, "Only verify methods matching these patterns")
	verifyCmd.Flags().StringSliceVar(&verifySkip, "skip", nil, "Skip methods matching these patterns")
	verifyCmd.Flags().BoolVar(&verifySummary, "summary", true, "Print a summary table after the reports")
}

func newVerifyEngine() (*internal.Engine, bool, error) {
	config, err := lint.LoadConfig(cfgFile)
	if err != nil {
		return nil, false, fmt.Errorf("loading configuration: %w", err)
	}
	if len(verifyMethods) > 0 {
		config.Methods = verifyMethods
	}
	// cached reports reflect the configured selection only
	if len(verifyMethods) > 0 || len(verifySkip) > 0 {
		config.CacheDir = ""
	}

	engine, err := lint.NewFromConfig(logger, config, cfgFile)
	if err != nil {
		return nil, false, fmt.Errorf("initializing engine: %w", err)
	}
	for _, pattern := range verifySkip {
		engine.IgnoreMethod(pattern)
	}
	return engine, verifyJSONOutput || config.Report.JSON, nil
}

type reportOptions struct {
	JSON    bool
	OutPath string
	Summary bool
}

// runVerifyProcess verifies paths and prints the reports to w. It reports
// whether any method failed.
func runVerifyProcess(
	ctx context.Context,
	logger *zap.Logger,
	engine lint.VerifyEngine,
	paths []string,
	w io.Writer,
	opts reportOptions,
) (bool, error) {
	reports, err := lint.ProcessFiles(ctx, logger, engine, paths, lint.ProcessFile)
	if err != nil {
		return false, fmt.Errorf("processing files: %w", err)
	}

	sortReports(reports)
	if err := printReports(w, reports, opts); err != nil {
		return false, err
	}

	for _, r := range reports {
		if r.Failed() {
			return true, nil
		}
	}
	return false, nil
}

func sortReports(reports []tt.MethodReport) {
	sort.SliceStable(reports, func(i, j int) bool {
		if reports[i].Filename != reports[j].Filename {
			return reports[i].Filename < reports[j].Filename
		}
		return reports[i].Method < reports[j].Method
	})
}

func printReports(w io.Writer, reports []tt.MethodReport, opts reportOptions) error {
	if !opts.JSON {
		// text output
		fmt.Fprint(w, formatter.GenerateFormattedReport(reports))
		if opts.Summary && len(reports) > 0 {
			printSummary(w, reports)
		}
		return nil
	}

	// JSON output
	reportsByFile := make(map[string][]tt.MethodReport)
	for _, r := range reports {
		reportsByFile[r.Filename] = append(reportsByFile[r.Filename], r)
	}
	d, err := json.Marshal(reportsByFile)
	if err != nil {
		return fmt.Errorf("marshalling reports to JSON: %w", err)
	}
	if opts.OutPath == "" {
		fmt.Fprintln(w, string(d))
		return nil
	}
	if err := os.WriteFile(opts.OutPath, d, 0o644); err != nil {
		return fmt.Errorf("writing JSON output file: %w", err)
	}
	return nil
}

var summaryOutcomes = []string{"true", "false", "unproven", "unreachable"}

func printSummary(w io.Writer, reports []tt.MethodReport) {
	table := tablewriter.NewWriter(w)
	header := append([]string{"Method"}, summaryOutcomes...)
	table.SetHeader(append(header, "Status"))

	for _, r := range reports {
		counts := r.Counts()
		row := []string{r.Method}
		for _, outcome := range summaryOutcomes {
			row = append(row, strconv.Itoa(counts[outcome]))
		}
		table.Append(append(row, formatter.Severity(r)))
	}
	table.Render()
}

// watchListings prints fresh reports whenever a listing below dirs changes,
// until ctx is done or the process is interrupted.
func watchListings(ctx context.Context, engine *internal.Engine, dirs []string, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	err := engine.Watch(dirs, func(filename string, reports []tt.MethodReport) {
		sortReports(reports)
		fmt.Fprint(w, formatter.GenerateFormattedReport(reports))
	})
	if err != nil {
		return fmt.Errorf("starting watch mode: %w", err)
	}
	fmt.Fprintf(w, "Watching %d path(s) for changes\n", len(dirs))

	<-ctx.Done()
	return engine.StopWatching()
}
