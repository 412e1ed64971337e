package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"filesorter/internal/ledger"
)

func newUndoCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "undo <dir>",
		Short: "Reverse the last organize run in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			org, err := ctx.openOrganizer(args[0])
			if err != nil {
				return err
			}
			defer org.Close()

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			result, err := org.Undo(cmd.Context())
			if ledger.IsNothingToUndo(err) {
				fmt.Fprintln(out, paint(statusInfo, result.Message, colorize))
				return nil
			}
			if err != nil {
				return err
			}
			renderUndoResult(out, result, colorize)
			if !result.Success {
				return errors.New(result.Message)
			}
			return nil
		},
	}
}

func renderUndoResult(out io.Writer, result ledger.UndoResult, colorize bool) {
	fmt.Fprintln(out, summaryLine(result.Success, result.Failed > 0, result.Message, colorize))
	for _, r := range result.Renamed {
		fmt.Fprintf(out, "  %s restored as %s (original path was taken)\n", r.Original, r.Restored)
	}
	if n := len(result.RemovedDirs); n > 0 {
		fmt.Fprintf(out, "  Removed %d empty category folders\n", n)
	}
	printErrors(out, result.Errors, result.Failed)
}
