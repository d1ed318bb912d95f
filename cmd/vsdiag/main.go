package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"vsdiag/internal/prof"
	"vsdiag/internal/version"
)

// errFindings makes the process exit with status 1 after the command has
// already printed why.
var errFindings = errors.New("diagnostics reported errors")

var rootCmd = &cobra.Command{
	Use:           "vsdiag",
	Short:         "Diagnostics, fixes and renames over C# syntax snapshots",
	Long:          `vsdiag runs rules over program snapshots exported by a host, applies their fixes and renames symbols across files.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cleanup, err := setupTracing(cmd)
		if err != nil {
			return err
		}
		traceCleanup = cleanup
		profiling, err = setupProfiling(cmd)
		return err
	},
}

var (
	traceCleanup = func() {}
	profiling    *prof.Session
)

func init() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(diagnoseCmd)
	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(renameCmd)
	rootCmd.AddCommand(normalizeCmd)
	rootCmd.AddCommand(versionCmd)

	flags := rootCmd.PersistentFlags()
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.Bool("quiet", false, "suppress non-essential output")
	flags.Bool("timings", false, "show timing information")
	flags.Int("max-diagnostics", 0, "maximum number of diagnostics to keep (0 = config)")
	flags.Int("jobs", 0, "max parallel workers (0 = config, then GOMAXPROCS)")
	flags.String("config", "", "path to vsdiag.toml (default: search upwards from the working directory)")
	flags.String("trace", "", "trace output file (- for stderr)")
	flags.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	flags.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	flags.String("trace-format", "auto", "trace format (auto|text|ndjson)")
	flags.Int("trace-ring-size", 4096, "events kept in ring mode")
	flags.String("cpu-profile", "", "write a CPU profile to this file")
	flags.String("mem-profile", "", "write a heap profile to this file on exit")
	flags.String("runtime-trace", "", "write a Go runtime trace to this file")
}

func main() {
	err := rootCmd.Execute()
	if perr := profiling.Stop(); perr != nil {
		fmt.Fprintln(os.Stderr, "profile:", perr)
	}
	traceCleanup()
	if err != nil {
		if !errors.Is(err, errFindings) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
