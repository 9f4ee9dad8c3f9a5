package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"cyclerc/pkg/sim"
)

// options holds the global flags
type options struct {
	verbose bool
	quiet   bool
	jsonOut bool
	noColor bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "cyclerc",
		Short: "Run heap scripts against the cycle-aware reference counter",
		Long: `cyclerc drives the cycle-collecting reference counter from small
S-expression heap scripts: create objects, clone and adopt handles, record
reachability edges, release handles and watch cycles get collected.`,
		Version:       "0.1.0",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.noColor {
				pterm.DisableColor()
			}
		},
	}

	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log collector activity to stderr")
	root.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "Suppress command output")
	root.PersistentFlags().BoolVar(&opts.jsonOut, "json", false, "Print statistics as JSON")
	root.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	root.AddCommand(newRunCmd(opts), newReplCmd(opts))
	return root
}

// newMachine builds a machine wired to the command's output and flags
func newMachine(cmd *cobra.Command, opts *options) *sim.Machine {
	var out io.Writer = cmd.OutOrStdout()
	if opts.quiet {
		out = io.Discard
	}
	machineOpts := []sim.Option{sim.WithOutput(out)}
	if opts.verbose {
		logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
		machineOpts = append(machineOpts, sim.WithLogger(logger))
	}
	return sim.NewMachine(machineOpts...)
}

// printVerbose prints a message to stderr if verbose mode is enabled
func printVerbose(cmd *cobra.Command, opts *options, format string, args ...interface{}) {
	if opts.verbose && !opts.quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), format, args...)
	}
}
