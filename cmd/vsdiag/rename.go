package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"vsdiag/internal/driver"
)

var renameCmd = &cobra.Command{
	Use:   "rename [flags] <snapshot>",
	Short: "Rename a symbol in every file of a snapshot",
	Long: `Rename a symbol in every file of a snapshot. The symbol is given by ID
("12" or "sym#12") or by qualified name ("Counter.Inc").`,
	Args: cobra.ExactArgs(1),
	RunE: runRename,
}

func init() {
	renameCmd.Flags().String("symbol", "", "symbol to rename (ID or qualified name)")
	renameCmd.Flags().String("to", "", "new name")
	renameCmd.Flags().String("out", "", "write the renamed files and snapshot to this directory")
	_ = renameCmd.MarkFlagRequired("symbol")
	_ = renameCmd.MarkFlagRequired("to")
}

func runRename(cmd *cobra.Command, args []string) error {
	path := args[0]
	ref, err := cmd.Flags().GetString("symbol")
	if err != nil {
		return fmt.Errorf("failed to get symbol flag: %w", err)
	}
	to, err := cmd.Flags().GetString("to")
	if err != nil {
		return fmt.Errorf("failed to get to flag: %w", err)
	}
	outDir, err := cmd.Flags().GetString("out")
	if err != nil {
		return fmt.Errorf("failed to get out flag: %w", err)
	}
	opts, err := driverOptions(cmd)
	if err != nil {
		return err
	}

	res, err := driver.RenameSymbol(cmd.Context(), path, ref, to, opts)
	if err != nil {
		return fmt.Errorf("rename failed: %w", err)
	}
	if !quiet(cmd) {
		fmt.Fprintf(cmd.OutOrStdout(), "renamed %s: %d occurrences in %d files\n", res.Symbol, res.Occurrences, res.Files)
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
