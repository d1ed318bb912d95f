package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"vsdiag/internal/diag"
	"vsdiag/internal/diagfmt"
	"vsdiag/internal/driver"
)

var fixCmd = &cobra.Command{
	Use:   "fix [flags] <snapshot>",
	Short: "Apply the fixes of the enabled rules until nothing is left to fix",
	Args:  cobra.ExactArgs(1),
	RunE:  runFix,
}

func init() {
	fixCmd.Flags().String("rule", "", "only apply fixes of this rule")
	fixCmd.Flags().Bool("once", false, "apply the first available fix and stop")
	fixCmd.Flags().Int("max-rounds", 16, "upper bound on analyze-and-fix rounds")
	fixCmd.Flags().String("out", "", "write the fixed files and snapshot to this directory")
	fixCmd.Flags().String("format", "pretty", "report format (pretty|json)")
}

func runFix(cmd *cobra.Command, args []string) error {
	path := args[0]
	format, err := readFormat(cmd)
	if err != nil {
		return err
	}
	rule, err := cmd.Flags().GetString("rule")
	if err != nil {
		return fmt.Errorf("failed to get rule flag: %w", err)
	}
	once, err := cmd.Flags().GetBool("once")
	if err != nil {
		return fmt.Errorf("failed to get once flag: %w", err)
	}
	maxRounds, err := cmd.Flags().GetInt("max-rounds")
	if err != nil {
		return fmt.Errorf("failed to get max-rounds flag: %w", err)
	}
	outDir, err := cmd.Flags().GetString("out")
	if err != nil {
		return fmt.Errorf("failed to get out flag: %w", err)
	}
	opts, err := driverOptions(cmd)
	if err != nil {
		return err
	}

	res, err := driver.Fix(cmd.Context(), path, driver.FixOptions{
		Options:   opts,
		Rule:      diag.RuleID(rule),
		Once:      once,
		MaxRounds: maxRounds,
	})
	if err != nil {
		return fmt.Errorf("fix failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if format == "json" {
		if err := diagfmt.JSONFixes(out, res.Applied, res.Skipped, res.FileSet, diagfmt.JSONOpts{IncludePositions: true}); err != nil {
			return fmt.Errorf("failed to format fixes: %w", err)
		}
	} else {
		color, err := useColor(cmd)
		if err != nil {
			return err
		}
		diagfmt.PrettyFixes(out, res.Applied, res.Skipped, res.FileSet, diagfmt.PrettyOpts{Color: color})
	}
	if !quiet(cmd) {
		if !res.Converged && !once {
			fmt.Fprintf(cmd.ErrOrStderr(), "stopped after %d rounds with fixes still pending\n", res.Rounds)
		}
		for _, f := range res.Faults {
			fmt.Fprintln(cmd.ErrOrStderr(), "rule fault:", f)
		}
	}

	if outDir != "" {
		idx := opts.Timer.Begin("write")
		if err := driver.WriteOutput(outDir, res.Unit, filepath.Base(path)); err != nil {
			return err
		}
		opts.Timer.End(idx, outDir)
	}
	printTimings(os.Stderr, opts)
	return nil
}
