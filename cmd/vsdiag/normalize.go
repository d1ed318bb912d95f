package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vsdiag/internal/naming"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize [flags] <identifier>...",
	Short: "Print identifiers rewritten to a naming convention",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		convStr, err := cmd.Flags().GetString("convention")
		if err != nil {
			return fmt.Errorf("failed to get convention flag: %w", err)
		}
		conv, err := naming.ParseConvention(convStr)
		if err != nil {
			return err
		}
		for _, id := range args {
			fmt.Fprintln(cmd.OutOrStdout(), naming.Normalize(id, conv))
		}
		return nil
	},
}

func init() {
	normalizeCmd.Flags().String("convention", "upperCamel",
		"target convention (lowerCamel|upperCamel|underscoreLowerCamel|interfacePrefixUpperCamel)")
}
