package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"vsdiag/internal/diag"
	"vsdiag/internal/diagfmt"
	"vsdiag/internal/driver"
)

var diagnoseCmd = &cobra.Command{
	Use:     "diagnose [flags] <snapshot>...",
	Aliases: []string{"diag"},
	Short:   "Run the enabled rules over program snapshots",
	Args:    cobra.MinimumNArgs(1),
	RunE:    runDiagnose,
}

func init() {
	diagnoseCmd.Flags().String("format", "pretty", "output format (pretty|json|short)")
	diagnoseCmd.Flags().String("ui", "auto", "progress view (auto|on|off)")
	diagnoseCmd.Flags().String("paths", "auto", "path style in output (auto|absolute|relative|basename)")
	diagnoseCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	diagnoseCmd.Flags().Int("context", 0, "source lines shown above each diagnostic")
}

// runDiagnose prints the diagnostics of every snapshot and fails when any
// of them is an error.
func runDiagnose(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	format = strings.ToLower(format)
	switch format {
	case "pretty", "json", "short":
	default:
		return fmt.Errorf("unsupported format %q (must be pretty, json or short)", format)
	}
	uiStr, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiStr)
	if err != nil {
		return err
	}
	pathsStr, err := cmd.Flags().GetString("paths")
	if err != nil {
		return fmt.Errorf("failed to get paths flag: %w", err)
	}
	pathMode, err := diagfmt.ParsePathMode(pathsStr)
	if err != nil {
		return err
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	contextLines, err := cmd.Flags().GetInt("context")
	if err != nil {
		return fmt.Errorf("failed to get context flag: %w", err)
	}
	opts, err := driverOptions(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	diagnose := func(o driver.Options) (*driver.DiagnoseResult, error) {
		return driver.Diagnose(ctx, args, o)
	}
	var res *driver.DiagnoseResult
	if shouldUseTUI(mode, format) && !quiet(cmd) {
		res, err = runWithUI("diagnose", driver.StageAnalyze, args, opts, diagnose)
	} else {
		res, err = diagnose(opts)
	}
	if err != nil {
		return fmt.Errorf("diagnosis failed: %w", err)
	}

	out := cmd.OutOrStdout()
	switch format {
	case "short":
		if text := diag.FormatShort(res.Bag.Items(), res.FileSet, withNotes); text != "" {
			fmt.Fprintln(out, text)
		}
	case "json":
		jsonOpts := diagfmt.JSONOpts{IncludePositions: true, PathMode: pathMode, IncludeNotes: withNotes}
		if err := diagfmt.JSON(out, res.Bag, res.FileSet, jsonOpts); err != nil {
			return fmt.Errorf("failed to format diagnostics: %w", err)
		}
	default:
		color, err := useColor(cmd)
		if err != nil {
			return err
		}
		diagfmt.Pretty(out, res.Bag, res.FileSet, diagfmt.PrettyOpts{
			Color:     color,
			Context:   contextLines,
			PathMode:  pathMode,
			ShowNotes: withNotes,
		})
	}
	if !quiet(cmd) {
		for _, f := range res.Faults {
			fmt.Fprintln(cmd.ErrOrStderr(), "rule fault:", f)
		}
	}
	printTimings(os.Stderr, opts)

	if res.Bag.HasErrors() {
		return errFindings
	}
	return nil
}
