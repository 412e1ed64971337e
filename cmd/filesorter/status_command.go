package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"filesorter/internal/config"
	"filesorter/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status [dir]",
		Short: "Check directories, the undo ledger, and undo availability",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			target := ""
			if len(args) == 1 {
				if target, err = config.ExpandPath(args[0]); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			lines := renderSectionHeader("Checks", colorize)
			for _, r := range preflight.RunAll(cmd.Context(), cfg, target) {
				kind := statusOK
				if !r.Passed {
					kind = statusError
				}
				lines = append(lines, renderStatusLine(r.Name, kind, r.Detail, colorize))
			}

			if target != "" {
				lines = append(lines, "")
				lines = append(lines, renderSectionHeader("Undo", colorize)...)
				lines = append(lines, undoStatusLines(cmd, ctx, target, colorize)...)
			}
			fmt.Fprintln(out, strings.Join(lines, "\n"))
			return nil
		},
	}
}

func undoStatusLines(cmd *cobra.Command, ctx *commandContext, target string, colorize bool) []string {
	org, err := ctx.openOrganizer(target)
	if err != nil {
		return []string{renderStatusLine("Undo", statusError, err.Error(), colorize)}
	}
	defer org.Close()

	run, err := org.ActiveRun(cmd.Context())
	if err != nil {
		return []string{renderStatusLine("Undo", statusError, err.Error(), colorize)}
	}
	available := org.CanUndo(cmd.Context())
	kind := statusInfo
	if available {
		kind = statusOK
	}
	lines := []string{renderStatusLine("Undo available", kind, yesNo(available), colorize)}
	if run != nil {
		moved := len(run.Successful())
		lines = append(lines,
			renderStatusLine("Last run", statusInfo, shortID(run.ID), colorize),
			renderStatusLine("Started", statusInfo, run.StartedAt.Local().Format("2006-01-02 15:04:05"), colorize),
			renderStatusLine("Moves", statusInfo, fmt.Sprintf("%d moved, %d failed", moved, len(run.Records)-moved), colorize),
		)
	}
	return lines
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
