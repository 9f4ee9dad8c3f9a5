package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"cyclerc/pkg/parser"
)

func newRunCmd(opts *options) *cobra.Command {
	var expr string
	cmd := &cobra.Command{
		Use:   "run [script]",
		Short: "Run a heap script",
		Long: `The run command evaluates a heap script from a file, from -e or from
stdin, releases every handle still bound at the end and prints the heap
statistics. A non-zero live count afterwards means cells were leaked.

Example:
  cyclerc run cycle.rc
  cyclerc run -e '(new a b) (link a b) (link b a) (release a b)'
  cyclerc run --json cycle.rc`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(cmd, expr, args)
			if err != nil {
				return err
			}
			return runScript(cmd, opts, input)
		},
	}
	cmd.Flags().StringVarP(&expr, "expr", "e", "", "Evaluate a script given on the command line")
	return cmd
}

func readInput(cmd *cobra.Command, expr string, args []string) (string, error) {
	if expr != "" {
		if len(args) > 0 {
			return "", fmt.Errorf("cannot use both -e and a script file")
		}
		return expr, nil
	}
	if len(args) > 0 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("failed to read script: %w", err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

func runScript(cmd *cobra.Command, opts *options, input string) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("no commands to run")
	}
	exprs, err := parser.ParseAllString(input)
	if err != nil {
		return fmt.Errorf("parse error: %w", err)
	}

	m := newMachine(cmd, opts)
	printVerbose(cmd, opts, "Running %d commands\n", len(exprs))
	if err := m.Run(exprs); err != nil {
		return err
	}
	m.Close()
	return report(cmd.OutOrStdout(), opts, m)
}
