package cmd

import (
	"errors"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnoverse/ccheck/lint"
)

const defaultTimeout = 5 * time.Minute

// ErrVerificationFailed is returned when an obligation is refuted or a
// method cannot be analyzed.
var ErrVerificationFailed = errors.New("verification failed")

var (
	cfgFile string
	timeout time.Duration

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:              "ccheck [paths...]",
	Short:            "ccheck - a static checker for method contracts and assertions",
	TraverseChildren: true, // Prioritize subcommands
	SilenceUsage:     true,
	SilenceErrors:    true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// no subcommand
		if len(args) == 0 {
			return cmd.Help()
		}
		// ccheck [path1 path2 ...] behaves like the verify subcommand
		return verifyCmd.RunE(cmd, args)
	},
}

// Execute runs the command line with l as the logger.
func Execute(l *zap.Logger) error {
	logger = l
	if logger == nil {
		logger = zap.NewNop()
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", lint.DefaultConfigFile, "Path to the configuration file")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", defaultTimeout, "Set a timeout for verification")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(cfgCmd)
}
