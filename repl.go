package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"cyclerc/pkg/parser"
	"cyclerc/pkg/sim"
)

func newReplCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Interactive heap script session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL(cmd, opts)
		},
	}
}

func runREPL(cmd *cobra.Command, opts *options) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "cyclerc REPL - cycle-aware reference counting")
	fmt.Fprintln(out, "Type 'help' for commands, 'quit' to exit")
	fmt.Fprintln(out)

	m := newMachine(cmd, opts)
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "cyclerc> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		// Handle REPL commands first (before parsing)
		switch line {
		case "quit", "exit":
			fmt.Fprintln(out, "Goodbye!")
			return nil
		case "help":
			printREPLHelp(out)
			continue
		case "stats":
			if err := report(out, opts, m); err != nil {
				return err
			}
			continue
		case "reset":
			m.Close()
			m = newMachine(cmd, opts)
			fmt.Fprintln(out, "Heap reset")
			continue
		}

		if !strings.HasPrefix(line, "(") {
			fmt.Fprintf(out, "Unknown command: %s (use 'help' for commands)\n", line)
			continue
		}

		exprs, err := parser.ParseAllString(line)
		if err != nil {
			fmt.Fprintf(out, "Parse error: %v\n", err)
			continue
		}
		if err := m.Run(exprs); err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	return nil
}

func printREPLHelp(out io.Writer) {
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  quit     - exit the REPL")
	fmt.Fprintln(out, "  stats    - show heap statistics")
	fmt.Fprintln(out, "  reset    - release everything and start a new heap")
	fmt.Fprintln(out, "  help     - show this help")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Heap script:")
	for _, line := range sim.Usage() {
		fmt.Fprintf(out, "  %s\n", line)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Example:")
	fmt.Fprintln(out, "  (new a b) (link a b) (link b a) (release a b) (alive a b)")
}
