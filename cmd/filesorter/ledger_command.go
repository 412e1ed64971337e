package main

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"
)

func newLedgerCommand(ctx *commandContext) *cobra.Command {
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect undo data",
	}
	ledgerCmd.AddCommand(newLedgerExportCommand(ctx))
	return ledgerCmd
}

func newLedgerExportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "export <dir>",
		Short: "Print the undoable run for a directory as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			org, err := ctx.openOrganizer(args[0])
			if err != nil {
				return err
			}
			defer org.Close()

			run, err := org.ActiveRun(cmd.Context())
			if err != nil {
				return err
			}
			if run == nil {
				return errors.New("no undoable run recorded for this directory")
			}
			return writeJSON(cmd, run)
		},
	}
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
